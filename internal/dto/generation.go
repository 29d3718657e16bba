package dto

import (
	"time"

	"github.com/noah-isme/campus-timetable-api/internal/models"
)

// WeightsPayload overrides the objective weights for one run. Weights do not
// need to sum to 100.
type WeightsPayload struct {
	Satisfaction float64 `json:"satisfaction" validate:"gte=0"`
	Balance      float64 `json:"balance" validate:"gte=0"`
	Utilization  float64 `json:"utilization" validate:"gte=0"`
}

// GenerateRequest starts an automated generation run.
type GenerateRequest struct {
	Weights               *WeightsPayload `json:"weights,omitempty"`
	ImprovementIterations *int            `json:"improvement_iterations,omitempty" validate:"omitempty,gte=0,lte=100000"`
	Seed                  *int64          `json:"seed,omitempty"`
}

// GenerationRunResponse reports a run's state and progress to clients.
type GenerationRunResponse struct {
	RunID       string                 `json:"run_id"`
	State       models.GenerationState `json:"state"`
	Progress    float64                `json:"progress"`
	Placed      int                    `json:"placed"`
	Unplaced    int                    `json:"unplaced"`
	Iterations  int                    `json:"iterations"`
	Diagnostics []string               `json:"diagnostics,omitempty"`
	Metrics     models.ScenarioMetrics `json:"metrics"`
	Error       string                 `json:"error,omitempty"`
	StartedAt   time.Time              `json:"started_at"`
	FinishedAt  *time.Time             `json:"finished_at,omitempty"`
}
