package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/pkg/config"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
)

const activeScenarioCacheKey = "scenario:active"

type scenarioStore interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, scenario *models.Scenario) error
	InsertAssignments(ctx context.Context, exec sqlx.ExtContext, scenarioID string, assignments []models.Assignment) error
	FindByID(ctx context.Context, id string) (*models.Scenario, error)
	List(ctx context.Context) ([]models.Scenario, error)
	ListAssignments(ctx context.Context, scenarioID string) ([]models.Assignment, error)
	ClearActive(ctx context.Context, exec sqlx.ExtContext) error
	SetStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.ScenarioStatus) (bool, error)
	Delete(ctx context.Context, id string) error
}

type txBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type runResultSource interface {
	Assignments(runID string) ([]models.Assignment, models.ScenarioMetrics, error)
}

type boardResultSource interface {
	Assignments(ctx context.Context, scenarioID string) ([]models.Assignment, models.ScenarioMetrics, error)
	Discard(scenarioID string)
}

type cacheClient interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// scenarioCache wraps the cache client for the active-scenario key. A nil
// client turns every operation into a no-op.
type scenarioCache struct {
	client cacheClient
	ttl    time.Duration
}

func (c *scenarioCache) get(ctx context.Context) (dto.ScenarioResponse, bool) {
	if c.client == nil {
		return dto.ScenarioResponse{}, false
	}
	var resp dto.ScenarioResponse
	if err := c.client.Get(ctx, activeScenarioCacheKey, &resp); err != nil {
		return dto.ScenarioResponse{}, false
	}
	return resp, true
}

func (c *scenarioCache) put(ctx context.Context, resp dto.ScenarioResponse) {
	if c.client == nil {
		return
	}
	_ = c.client.Set(ctx, activeScenarioCacheKey, resp, c.ttl)
}

func (c *scenarioCache) invalidate(ctx context.Context) {
	if c.client == nil {
		return
	}
	_ = c.client.Delete(ctx, activeScenarioCacheKey)
}

// ScenarioService manages saved timetable scenarios: immutable versioned
// snapshots, the single-active promote flow, and side-by-side comparison.
type ScenarioService struct {
	repo   scenarioStore
	db     txBeginner
	runs   runResultSource
	boards boardResultSource
	cache  *scenarioCache
	cfg    config.ScenariosConfig
	logger *zap.Logger
}

// NewScenarioService constructs the service. cache may be nil.
func NewScenarioService(repo scenarioStore, db txBeginner, runs runResultSource, boards boardResultSource, cache cacheClient, cfg config.ScenariosConfig, logger *zap.Logger) *ScenarioService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScenarioService{
		repo:   repo,
		db:     db,
		runs:   runs,
		boards: boards,
		cache:  &scenarioCache{client: cache, ttl: cfg.ActiveCacheTTL},
		cfg:    cfg,
		logger: logger,
	}
}

// Save snapshots an assignment set as a new scenario version. The source is
// either a finished generation run or an open board; exactly one must be
// given. Saving never mutates the source.
func (s *ScenarioService) Save(ctx context.Context, req dto.SaveScenarioRequest) (dto.ScenarioResponse, error) {
	if (req.RunID == "") == (req.ScenarioID == "") {
		return dto.ScenarioResponse{}, appErrors.Clone(appErrors.ErrValidation, "exactly one of run_id and scenario_id must be provided")
	}

	var (
		assignments []models.Assignment
		metrics     models.ScenarioMetrics
		err         error
	)
	if req.RunID != "" {
		assignments, metrics, err = s.runs.Assignments(req.RunID)
	} else {
		assignments, metrics, err = s.boards.Assignments(ctx, req.ScenarioID)
	}
	if err != nil {
		return dto.ScenarioResponse{}, err
	}

	payload, err := json.Marshal(metrics)
	if err != nil {
		return dto.ScenarioResponse{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode scenario metrics")
	}
	scenario := &models.Scenario{
		Name:    req.Name,
		Status:  models.ScenarioStatusDraft,
		Metrics: types.JSONText(payload),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return dto.ScenarioResponse{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.repo.CreateVersioned(ctx, tx, scenario); err != nil {
		return dto.ScenarioResponse{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save scenario")
	}
	if err := s.repo.InsertAssignments(ctx, tx, scenario.ID, assignments); err != nil {
		return dto.ScenarioResponse{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save scenario assignments")
	}
	if err := tx.Commit(); err != nil {
		return dto.ScenarioResponse{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit scenario")
	}

	s.logger.Sugar().Infow("scenario saved",
		"scenario_id", scenario.ID, "name", scenario.Name, "version", scenario.Version, "assignments", len(assignments))
	return toScenarioResponse(*scenario), nil
}

// Promote makes one scenario the active timetable, demoting any previously
// active one in the same transaction so at most one scenario is ever active.
func (s *ScenarioService) Promote(ctx context.Context, id string) (dto.ScenarioResponse, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return dto.ScenarioResponse{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.repo.ClearActive(ctx, tx); err != nil {
		return dto.ScenarioResponse{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to demote active scenario")
	}
	ok, err := s.repo.SetStatus(ctx, tx, id, models.ScenarioStatusActive)
	if err != nil {
		return dto.ScenarioResponse{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to promote scenario")
	}
	if !ok {
		return dto.ScenarioResponse{}, appErrors.Clone(appErrors.ErrNotFound, "scenario not found")
	}
	if err := tx.Commit(); err != nil {
		return dto.ScenarioResponse{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit promotion")
	}

	s.cache.invalidate(ctx)

	scenario, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.ScenarioResponse{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload promoted scenario")
	}
	s.logger.Sugar().Infow("scenario promoted", "scenario_id", id, "name", scenario.Name, "version", scenario.Version)
	return toScenarioResponse(*scenario), nil
}

// Active returns the currently published scenario, cache-first.
func (s *ScenarioService) Active(ctx context.Context) (dto.ScenarioResponse, error) {
	if cached, ok := s.cache.get(ctx); ok {
		return cached, nil
	}

	scenarios, err := s.repo.List(ctx)
	if err != nil {
		return dto.ScenarioResponse{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list scenarios")
	}
	for _, sc := range scenarios {
		if sc.IsActive() {
			resp := toScenarioResponse(sc)
			s.cache.put(ctx, resp)
			return resp, nil
		}
	}
	return dto.ScenarioResponse{}, appErrors.Clone(appErrors.ErrNotFound, "no active scenario")
}

// List returns all saved scenarios, newest first.
func (s *ScenarioService) List(ctx context.Context) ([]dto.ScenarioResponse, error) {
	scenarios, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list scenarios")
	}
	out := make([]dto.ScenarioResponse, 0, len(scenarios))
	for _, sc := range scenarios {
		out = append(out, toScenarioResponse(sc))
	}
	return out, nil
}

// Get returns a scenario with its full assignment set.
func (s *ScenarioService) Get(ctx context.Context, id string) (dto.ScenarioDetailResponse, error) {
	scenario, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dto.ScenarioDetailResponse{}, appErrors.Clone(appErrors.ErrNotFound, "scenario not found")
		}
		return dto.ScenarioDetailResponse{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scenario")
	}
	assignments, err := s.repo.ListAssignments(ctx, id)
	if err != nil {
		return dto.ScenarioDetailResponse{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scenario assignments")
	}
	return dto.ScenarioDetailResponse{
		ScenarioResponse: toScenarioResponse(*scenario),
		Assignments:      assignments,
	}, nil
}

// Compare reports metric-by-metric deltas between two scenarios (B minus A).
func (s *ScenarioService) Compare(ctx context.Context, idA, idB string) (models.ScenarioComparison, error) {
	a, err := s.loadMetricsView(ctx, idA)
	if err != nil {
		return models.ScenarioComparison{}, err
	}
	b, err := s.loadMetricsView(ctx, idB)
	if err != nil {
		return models.ScenarioComparison{}, err
	}

	return models.ScenarioComparison{
		ScenarioA: a,
		ScenarioB: b,
		Deltas: models.ScenarioMetrics{
			StudentSatisfaction: b.Metrics.StudentSatisfaction - a.Metrics.StudentSatisfaction,
			FacultyBalance:      b.Metrics.FacultyBalance - a.Metrics.FacultyBalance,
			RoomUtilization:     b.Metrics.RoomUtilization - a.Metrics.RoomUtilization,
			Objective:           b.Metrics.Objective - a.Metrics.Objective,
			Conflicts:           b.Metrics.Conflicts - a.Metrics.Conflicts,
			Placed:              b.Metrics.Placed - a.Metrics.Placed,
			Unplaced:            b.Metrics.Unplaced - a.Metrics.Unplaced,
		},
	}, nil
}

// Remove deletes a scenario and its assignments. The active scenario cannot
// be deleted; promote another one first.
func (s *ScenarioService) Remove(ctx context.Context, id string) error {
	scenario, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "scenario not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scenario")
	}
	if scenario.IsActive() {
		return appErrors.Clone(appErrors.ErrConflict, "active scenario cannot be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete scenario")
	}
	s.boards.Discard(id)
	return nil
}

func (s *ScenarioService) loadMetricsView(ctx context.Context, id string) (models.ScenarioMetricsView, error) {
	scenario, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ScenarioMetricsView{}, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("scenario %s not found", id))
		}
		return models.ScenarioMetricsView{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scenario")
	}
	return models.ScenarioMetricsView{
		ID:      scenario.ID,
		Name:    scenario.Name,
		Metrics: decodeMetrics(scenario.Metrics),
	}, nil
}

func toScenarioResponse(scenario models.Scenario) dto.ScenarioResponse {
	return dto.ScenarioResponse{
		ID:        scenario.ID,
		Name:      scenario.Name,
		Version:   scenario.Version,
		Status:    scenario.Status,
		IsActive:  scenario.IsActive(),
		Metrics:   decodeMetrics(scenario.Metrics),
		CreatedAt: scenario.CreatedAt,
	}
}

func decodeMetrics(raw types.JSONText) models.ScenarioMetrics {
	var metrics models.ScenarioMetrics
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &metrics)
	}
	return metrics
}
