package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/campus-timetable-api/internal/models"
)

// ScenarioRepository persists saved timetable scenarios and their
// assignment sets. Scenarios are immutable after insert except for the
// status transition performed by Promote.
type ScenarioRepository struct {
	db *sqlx.DB
}

// NewScenarioRepository constructs repository.
func NewScenarioRepository(db *sqlx.DB) *ScenarioRepository {
	return &ScenarioRepository{db: db}
}

func (r *ScenarioRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateVersioned inserts a scenario assigning the next version for its name.
func (r *ScenarioRepository) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, scenario *models.Scenario) error {
	if scenario == nil {
		return fmt.Errorf("scenario payload is nil")
	}
	if scenario.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if scenario.ID == "" {
		scenario.ID = uuid.NewString()
	}
	if scenario.Status == "" {
		scenario.Status = models.ScenarioStatusDraft
	}
	if len(scenario.Metrics) == 0 {
		scenario.Metrics = types.JSONText(`{}`)
	}
	now := time.Now().UTC()
	if scenario.CreatedAt.IsZero() {
		scenario.CreatedAt = now
	}
	scenario.UpdatedAt = now

	target := r.exec(exec)

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM scenarios WHERE name = $1`
	if err := sqlx.GetContext(ctx, target, &scenario.Version, nextVersionQuery, scenario.Name); err != nil {
		return fmt.Errorf("compute next scenario version: %w", err)
	}

	const insertQuery = `
INSERT INTO scenarios (id, name, version, status, metrics, created_at, updated_at)
VALUES (:id, :name, :version, :status, :metrics, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, scenario); err != nil {
		return fmt.Errorf("insert scenario: %w", err)
	}
	return nil
}

// InsertAssignments stores a scenario's assignment rows in one batch.
func (r *ScenarioRepository) InsertAssignments(ctx context.Context, exec sqlx.ExtContext, scenarioID string, assignments []models.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	type row struct {
		models.Assignment
		ScenarioID string `db:"scenario_id"`
	}
	rows := make([]row, 0, len(assignments))
	for _, a := range assignments {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		rows = append(rows, row{Assignment: a, ScenarioID: scenarioID})
	}

	const query = `
INSERT INTO scenario_assignments (id, scenario_id, section_id, faculty_id, room_id, day, period, cohort, created_at)
VALUES (:id, :scenario_id, :section_id, :faculty_id, :room_id, :day, :period, :cohort, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, query, rows); err != nil {
		return fmt.Errorf("insert scenario assignments: %w", err)
	}
	return nil
}

// FindByID loads a scenario by its identifier.
func (r *ScenarioRepository) FindByID(ctx context.Context, id string) (*models.Scenario, error) {
	const query = `SELECT id, name, version, status, metrics, created_at, updated_at FROM scenarios WHERE id = $1`
	var scenario models.Scenario
	if err := r.db.GetContext(ctx, &scenario, query, id); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// List returns all scenarios, newest first.
func (r *ScenarioRepository) List(ctx context.Context) ([]models.Scenario, error) {
	const query = `SELECT id, name, version, status, metrics, created_at, updated_at
FROM scenarios ORDER BY created_at DESC`
	var scenarios []models.Scenario
	if err := r.db.SelectContext(ctx, &scenarios, query); err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	return scenarios, nil
}

// ListAssignments returns a scenario's assignment set in grid order.
func (r *ScenarioRepository) ListAssignments(ctx context.Context, scenarioID string) ([]models.Assignment, error) {
	const query = `SELECT id, section_id, faculty_id, room_id, day, period, cohort, created_at
FROM scenario_assignments WHERE scenario_id = $1 ORDER BY day, period, room_id`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, scenarioID); err != nil {
		return nil, fmt.Errorf("list scenario assignments: %w", err)
	}
	return assignments, nil
}

// ClearActive demotes the currently active scenario, if any.
func (r *ScenarioRepository) ClearActive(ctx context.Context, exec sqlx.ExtContext) error {
	const query = `UPDATE scenarios SET status = $1, updated_at = $2 WHERE status = $3`
	if _, err := r.exec(exec).ExecContext(ctx, query, models.ScenarioStatusArchived, time.Now().UTC(), models.ScenarioStatusActive); err != nil {
		return fmt.Errorf("clear active scenario: %w", err)
	}
	return nil
}

// SetStatus updates a scenario's lifecycle status and reports whether the
// scenario existed.
func (r *ScenarioRepository) SetStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.ScenarioStatus) (bool, error) {
	const query = `UPDATE scenarios SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.exec(exec).ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("set scenario status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set scenario status rows: %w", err)
	}
	return affected > 0, nil
}

// Delete removes a scenario and its assignments.
func (r *ScenarioRepository) Delete(ctx context.Context, id string) error {
	const deleteAssignments = `DELETE FROM scenario_assignments WHERE scenario_id = $1`
	if _, err := r.db.ExecContext(ctx, deleteAssignments, id); err != nil {
		return fmt.Errorf("delete scenario assignments: %w", err)
	}
	const deleteScenario = `DELETE FROM scenarios WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, deleteScenario, id); err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}
	return nil
}
