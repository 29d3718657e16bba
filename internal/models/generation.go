package models

import "time"

// GenerationState is the lifecycle of an automated generation run.
type GenerationState string

const (
	GenerationStateIdle      GenerationState = "IDLE"
	GenerationStateRunning   GenerationState = "RUNNING"
	GenerationStateCompleted GenerationState = "COMPLETED"
	GenerationStateFailed    GenerationState = "FAILED"
	GenerationStateCancelled GenerationState = "CANCELLED"
)

// Terminal reports whether the state can no longer change.
func (s GenerationState) Terminal() bool {
	switch s {
	case GenerationStateCompleted, GenerationStateFailed, GenerationStateCancelled:
		return true
	}
	return false
}

// GenerationRun tracks one background generation task. Progress is a
// fraction in [0, 1] tied to actual search iterations.
type GenerationRun struct {
	ID          string          `json:"id"`
	State       GenerationState `json:"state"`
	Progress    float64         `json:"progress"`
	Placed      int             `json:"placed"`
	Unplaced    int             `json:"unplaced"`
	Iterations  int             `json:"iterations"`
	Diagnostics []string        `json:"diagnostics,omitempty"`
	Metrics     ScenarioMetrics `json:"metrics"`
	Error       string          `json:"error,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  *time.Time      `json:"finished_at,omitempty"`
}
