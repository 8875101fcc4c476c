// Package llm abstracts chat-completion providers behind a single interface
// so the opportunity generator does not care which vendor backs it.
package llm

import "context"

// Client is a minimal chat-completion interface. Complete sends a system
// prompt and a user prompt and returns the assistant's text response.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
