// Package assist is the boundary between the board and a language model.
//
// It defines the Completer interface that LLM providers implement, builds
// the prompts used to categorize, break down and expand tasks, and parses
// the model replies into typed results. Provider implementations live in
// platform/openrouter and platform/gemini; the package itself performs no
// network calls.
package assist
