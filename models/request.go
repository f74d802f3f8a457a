package models

import (
	"time"

	"github.com/google/uuid"

	"instant-translator/internal/language"
)

// Stage is a step of a single recomputation.
type Stage string

const (
	StageIdle          Stage = "idle"
	StageValidating    Stage = "validating"
	StageEnsuringModel Stage = "ensuring_model"
	StageTranslating   Stage = "translating"
	StageCompleted     Stage = "completed"
)

// TranslationRequest is a snapshot of the inputs for one recomputation and
// its progress through the pipeline.
type TranslationRequest struct {
	ID   string
	Seq  uint64
	Text string
	Pair language.Pair

	// HasText is false when the source text field was never set.
	HasText bool

	Stage       Stage
	Result      Result
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// NewTranslationRequest snapshots the inputs of recomputation seq.
func NewTranslationRequest(seq uint64, text string, hasText bool, pair language.Pair) *TranslationRequest {
	return &TranslationRequest{
		ID:        uuid.New().String(),
		Seq:       seq,
		Text:      text,
		HasText:   hasText,
		Pair:      pair,
		Stage:     StageIdle,
		CreatedAt: time.Now(),
	}
}

// Empty reports whether there is nothing to translate: missing text or
// language, or empty text.
func (r *TranslationRequest) Empty() bool {
	return !r.HasText || r.Text == "" || !r.Pair.Complete()
}

// SetStage moves the request to stage.
func (r *TranslationRequest) SetStage(stage Stage) {
	r.Stage = stage
}

// Complete records the outcome.
func (r *TranslationRequest) Complete(result Result) {
	r.Stage = StageCompleted
	r.Result = result
	now := time.Now()
	r.CompletedAt = &now
}

// Duration returns how long the request took, or zero if still running.
func (r *TranslationRequest) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.CreatedAt)
}

// StatusText returns a short user-facing description of the stage.
func (r *TranslationRequest) StatusText() string {
	switch r.Stage {
	case StageIdle:
		return "Waiting..."
	case StageValidating:
		return "Checking input..."
	case StageEnsuringModel:
		return "Preparing language model..."
	case StageTranslating:
		return "Translating..."
	case StageCompleted:
		if r.Result.IsErr() {
			return "Failed: " + r.Result.Err().Error()
		}
		return "Done"
	default:
		return string(r.Stage)
	}
}
