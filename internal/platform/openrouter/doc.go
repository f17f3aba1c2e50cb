// Package openrouter implements assist.Completer against the OpenRouter
// chat completions API. Requests are rate limited and retried with
// exponential backoff on 429, 5xx and transport failures.
package openrouter
