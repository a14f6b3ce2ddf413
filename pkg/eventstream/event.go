package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeAnswerCompleted is emitted after every synthesis run.
	EventTypeAnswerCompleted = "medrag.answer.completed"

	// StatusAccepted marks an answer the critic accepted.
	StatusAccepted = "accepted"

	// StatusExhausted marks an answer returned at the breadth bound.
	StatusExhausted = "exhausted"

	// StatusFailed marks a run that ended in a retrieval or generation error.
	StatusFailed = "failed"
)

// AnswerEvent is a transport-neutral event payload for one synthesis run.
type AnswerEvent struct {
	SchemaVersion int        `json:"schema_version"`
	EventType     string     `json:"event_type"`
	EventID       string     `json:"event_id"`
	EmittedAt     time.Time  `json:"emitted_at"`
	Model         string     `json:"model"`
	Query         string     `json:"query"`
	Status        string     `json:"status"`
	Critic        CriticMeta `json:"critic"`
	Timing        TimingMeta `json:"timing"`
}

// CriticMeta captures how the critic loop converged.
type CriticMeta struct {
	Attempts     int  `json:"attempts"`
	Retries      int  `json:"retries"`
	FinalBreadth int  `json:"final_breadth"`
	Accepted     bool `json:"accepted"`
}

// TimingMeta captures the run's wall-clock span.
type TimingMeta struct {
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
}

// NewAnswerEvent stamps a new event with an ID, type and emit time.
func NewAnswerEvent(model, query, status string, critic CriticMeta, started time.Time) *AnswerEvent {
	now := time.Now().UTC()
	return &AnswerEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeAnswerCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     now,
		Model:         model,
		Query:         query,
		Status:        status,
		Critic:        critic,
		Timing: TimingMeta{
			StartedAt:   started.UTC(),
			CompletedAt: now,
			DurationMs:  now.Sub(started).Milliseconds(),
		},
	}
}
