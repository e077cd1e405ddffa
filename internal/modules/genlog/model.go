// README: Generation log: one metadata row per upstream generation attempt.
package genlog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event describes how one generation went. It never carries the prompt or the generated text.
type Event struct {
	ID             uuid.UUID
	RequestID      string
	Model          string
	PromptStyle    string
	Outcome        string
	UpstreamStatus int
	LatencyMs      int64
	CreatedAt      time.Time
}

func NewEvent(requestID, model, style string) Event {
	return Event{
		ID:          uuid.New(),
		RequestID:   requestID,
		Model:       model,
		PromptStyle: style,
		CreatedAt:   time.Now().UTC(),
	}
}

// Recorder persists generation events.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Record(context.Context, Event) error { return nil }
