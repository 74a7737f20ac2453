package llm

import (
	"context"
	"errors"
)

var ErrUnavailable = errors.New("llm unavailable")

// Responder is one prompt-in, text-out call to a language model endpoint.
// Endpoint reports the configured base URL so callers can name it in
// user-facing degradation messages.
type Responder interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Endpoint() string
}
