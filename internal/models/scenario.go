package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ScenarioStatus represents lifecycle phases for saved timetables.
type ScenarioStatus string

const (
	ScenarioStatusDraft    ScenarioStatus = "DRAFT"
	ScenarioStatusActive   ScenarioStatus = "ACTIVE"
	ScenarioStatusArchived ScenarioStatus = "ARCHIVED"
)

// ScenarioMetrics are the soft-objective scores for a complete assignment
// set. The three component metrics are normalized to [0, 100].
type ScenarioMetrics struct {
	StudentSatisfaction float64 `json:"student_satisfaction"`
	FacultyBalance      float64 `json:"faculty_balance"`
	RoomUtilization     float64 `json:"room_utilization"`
	Objective           float64 `json:"objective"`
	Conflicts           int     `json:"conflicts"`
	Placed              int     `json:"placed"`
	Unplaced            int     `json:"unplaced"`
}

// Scenario is a named, scored snapshot of a complete assignment set.
// Scenarios are immutable once saved; edits produce a new Scenario.
type Scenario struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Version   int            `db:"version" json:"version"`
	Status    ScenarioStatus `db:"status" json:"status"`
	Metrics   types.JSONText `db:"metrics" json:"metrics"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// IsActive reports whether this scenario is the published one.
func (s Scenario) IsActive() bool {
	return s.Status == ScenarioStatusActive
}

// ScenarioComparison reports metric deltas between two scenarios (B minus A).
type ScenarioComparison struct {
	ScenarioA ScenarioMetricsView `json:"scenario_a"`
	ScenarioB ScenarioMetricsView `json:"scenario_b"`
	Deltas    ScenarioMetrics     `json:"deltas"`
}

// ScenarioMetricsView pairs a scenario identity with its decoded metrics.
type ScenarioMetricsView struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Metrics ScenarioMetrics `json:"metrics"`
}
