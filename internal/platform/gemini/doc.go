// Package gemini provides an implementation of the assist.Completer interface
// that uses Google's Gemini API through the google.golang.org/genai client.
//
// It is an infrastructure adapter: the board asks for a completion, and this
// package translates the request into a GenerateContent call, retries
// transient failures with exponential backoff, and reports safety blocks as
// assist.ErrContentBlocked.
package gemini
