// Package llm provides the text-completion clients used for end-of-call
// summary generation. The realtime voice model is a separate concern
// owned by the voice package.
package llm

import "context"

// Client produces a completion for a single prompt.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}
