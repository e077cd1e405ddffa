package ai

import (
	"context"
)

// TextGenerator turns a prompt into generated text.
// Implementations return one of the error types in errors.go on failure.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}
