package dto

import (
	"time"

	"github.com/noah-isme/campus-timetable-api/internal/models"
)

// SaveScenarioRequest snapshots an assignment set as a new scenario. Exactly
// one source must be given: a finished generation run or an open board draft.
type SaveScenarioRequest struct {
	Name       string `json:"name" validate:"required,max=120"`
	RunID      string `json:"run_id,omitempty"`
	ScenarioID string `json:"scenario_id,omitempty"`
}

// ScenarioResponse is the list/detail view of a saved scenario.
type ScenarioResponse struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Version   int                    `json:"version"`
	Status    models.ScenarioStatus  `json:"status"`
	IsActive  bool                   `json:"is_active"`
	Metrics   models.ScenarioMetrics `json:"metrics"`
	CreatedAt time.Time              `json:"created_at"`
}

// ScenarioDetailResponse adds the assignment set to the scenario view.
type ScenarioDetailResponse struct {
	ScenarioResponse
	Assignments []models.Assignment `json:"assignments"`
}

// BoardView groups a scenario's assignments for the interactive board.
type BoardView struct {
	ScenarioID string                         `json:"scenario_id"`
	GroupBy    string                         `json:"group_by"`
	Groups     map[string][]models.Assignment `json:"groups"`
}
