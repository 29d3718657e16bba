package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/engine"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/pkg/config"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
)

// Board group-by modes accepted by View.
const (
	GroupByProgram = "program"
	GroupByFaculty = "faculty"
	GroupByRoom    = "room"
	GroupByCohort  = "cohort"
)

type scenarioReader interface {
	FindByID(ctx context.Context, id string) (*models.Scenario, error)
	ListAssignments(ctx context.Context, scenarioID string) ([]models.Assignment, error)
}

type board struct {
	mu    sync.Mutex
	draft *engine.Draft
}

// BoardService hosts interactive editing boards. A board is an in-memory
// working copy of a saved scenario's assignment set over a fresh catalog
// snapshot; it is opened lazily on first access and discarded explicitly.
// Edits never touch the saved scenario; SaveScenario snapshots the board
// into a new version.
type BoardService struct {
	catalog   snapshotLoader
	scenarios scenarioReader
	cfg       config.EngineConfig
	logger    *zap.Logger

	mu     sync.RWMutex
	boards map[string]*board
}

// NewBoardService constructs the board service.
func NewBoardService(catalog snapshotLoader, scenarios scenarioReader, cfg config.EngineConfig, logger *zap.Logger) *BoardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BoardService{
		catalog:   catalog,
		scenarios: scenarios,
		cfg:       cfg,
		logger:    logger,
		boards:    make(map[string]*board),
	}
}

// Check validates a placement against the board without committing it.
func (s *BoardService) Check(ctx context.Context, scenarioID string, req dto.PlacementRequest) (dto.ConflictSetResponse, error) {
	b, err := s.open(ctx, scenarioID)
	if err != nil {
		return dto.ConflictSetResponse{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	conflicts := b.draft.CheckPlacement(s.toAssignment(b.draft, req, ""), "")
	return dto.ConflictSetResponse{Valid: len(conflicts) == 0, Conflicts: conflicts}, nil
}

// Place commits a new assignment to the board. Hard constraint violations
// reject the placement; a weekly-hours overrun is committed and flagged.
func (s *BoardService) Place(ctx context.Context, scenarioID string, req dto.PlacementRequest) (dto.PlacementResponse, error) {
	b, err := s.open(ctx, scenarioID)
	if err != nil {
		return dto.PlacementResponse{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	candidate := s.toAssignment(b.draft, req, uuid.NewString())
	flagged, err := b.draft.Apply(candidate)
	if err != nil {
		return dto.PlacementResponse{}, err
	}
	committed, _ := b.draft.Get(candidate.ID)
	return dto.PlacementResponse{Assignment: committed, Flagged: flagged}, nil
}

// Move relocates an assignment to a new cell, optionally changing its room
// or faculty at the same time.
func (s *BoardService) Move(ctx context.Context, scenarioID, assignmentID string, req dto.MoveRequest) (dto.PlacementResponse, error) {
	b, err := s.open(ctx, scenarioID)
	if err != nil {
		return dto.PlacementResponse{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	flagged, err := b.draft.Relocate(assignmentID, req.Day, req.Period, req.RoomID, req.FacultyID)
	if err != nil {
		return dto.PlacementResponse{}, mapDraftError(err)
	}
	committed, _ := b.draft.Get(assignmentID)
	return dto.PlacementResponse{Assignment: committed, Flagged: flagged}, nil
}

// Edit swaps an assignment's room or faculty while keeping its time cell.
func (s *BoardService) Edit(ctx context.Context, scenarioID, assignmentID string, req dto.EditRequest) (dto.PlacementResponse, error) {
	b, err := s.open(ctx, scenarioID)
	if err != nil {
		return dto.PlacementResponse{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	current, ok := b.draft.Get(assignmentID)
	if !ok {
		return dto.PlacementResponse{}, appErrors.Clone(appErrors.ErrNotFound, "assignment not found on the board")
	}
	flagged, err := b.draft.Relocate(assignmentID, current.Day, current.Period, req.RoomID, req.FacultyID)
	if err != nil {
		return dto.PlacementResponse{}, mapDraftError(err)
	}
	committed, _ := b.draft.Get(assignmentID)
	return dto.PlacementResponse{Assignment: committed, Flagged: flagged}, nil
}

// Delete removes an assignment from the board.
func (s *BoardService) Delete(ctx context.Context, scenarioID, assignmentID string) error {
	b, err := s.open(ctx, scenarioID)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.draft.Remove(assignmentID); err != nil {
		return mapDraftError(err)
	}
	return nil
}

// View groups the board's assignments by program, faculty, room or cohort.
func (s *BoardService) View(ctx context.Context, scenarioID, groupBy string) (dto.BoardView, error) {
	if groupBy == "" {
		groupBy = GroupByProgram
	}
	switch groupBy {
	case GroupByProgram, GroupByFaculty, GroupByRoom, GroupByCohort:
	default:
		return dto.BoardView{}, appErrors.Clone(appErrors.ErrValidation, "group_by must be one of program, faculty, room, cohort")
	}

	b, err := s.open(ctx, scenarioID)
	if err != nil {
		return dto.BoardView{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	groups := make(map[string][]models.Assignment)
	for _, a := range b.draft.Assignments() {
		key := s.groupKey(b.draft, a, groupBy)
		groups[key] = append(groups[key], a)
	}
	return dto.BoardView{ScenarioID: scenarioID, GroupBy: groupBy, Groups: groups}, nil
}

// Metrics scores the board's current state on demand.
func (s *BoardService) Metrics(ctx context.Context, scenarioID string) (models.ScenarioMetrics, error) {
	b, err := s.open(ctx, scenarioID)
	if err != nil {
		return models.ScenarioMetrics{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	metrics := engine.Score(b.draft)
	metrics.Objective = engine.Objective(metrics, s.weights())
	return metrics, nil
}

// Assignments returns the board's committed set with its current metrics so
// the scenario service can save it as a new version.
func (s *BoardService) Assignments(ctx context.Context, scenarioID string) ([]models.Assignment, models.ScenarioMetrics, error) {
	b, err := s.open(ctx, scenarioID)
	if err != nil {
		return nil, models.ScenarioMetrics{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	metrics := engine.Score(b.draft)
	metrics.Objective = engine.Objective(metrics, s.weights())
	return b.draft.Assignments(), metrics, nil
}

// Discard drops a board's working copy. The next access reloads the saved
// scenario from scratch.
func (s *BoardService) Discard(scenarioID string) {
	s.mu.Lock()
	delete(s.boards, scenarioID)
	s.mu.Unlock()
}

// open returns the working copy for a scenario, loading it on first access.
func (s *BoardService) open(ctx context.Context, scenarioID string) (*board, error) {
	s.mu.RLock()
	b, ok := s.boards[scenarioID]
	s.mu.RUnlock()
	if ok {
		return b, nil
	}

	loaded, err := s.load(ctx, scenarioID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.boards[scenarioID]; ok {
		return existing, nil
	}
	s.boards[scenarioID] = loaded
	return loaded, nil
}

func (s *BoardService) load(ctx context.Context, scenarioID string) (*board, error) {
	if _, err := s.scenarios.FindByID(ctx, scenarioID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "scenario not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scenario")
	}
	assignments, err := s.scenarios.ListAssignments(ctx, scenarioID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scenario assignments")
	}
	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	draft := engine.NewDraft(s.grid(), snapshot)
	skipped := 0
	for _, a := range assignments {
		if _, err := draft.Apply(a); err != nil {
			// the catalog may have changed since the scenario was saved
			skipped++
		}
	}
	if skipped > 0 {
		s.logger.Sugar().Warnw("board opened with stale assignments dropped",
			"scenario_id", scenarioID, "skipped", skipped, "kept", draft.Len())
	}
	return &board{draft: draft}, nil
}

func (s *BoardService) grid() engine.TimeGrid {
	grid := engine.NewTimeGrid(s.cfg.Days, s.cfg.PeriodsPerDay, s.cfg.ProtectedPeriod)
	if !grid.WellFormed() {
		return engine.DefaultGrid()
	}
	return grid
}

func (s *BoardService) weights() engine.Weights {
	w := engine.Weights{
		Satisfaction: s.cfg.SatisfactionWeight,
		Balance:      s.cfg.BalanceWeight,
		Utilization:  s.cfg.UtilizationWeight,
	}
	if !w.Valid() {
		return engine.DefaultWeights()
	}
	return w
}

// toAssignment fills the cohort from the catalog when the request omits it.
func (s *BoardService) toAssignment(draft *engine.Draft, req dto.PlacementRequest, id string) models.Assignment {
	cohort := req.Cohort
	if cohort == "" {
		if section, ok := draft.Section(req.SectionID); ok {
			cohort = section.Cohort
		}
	}
	return models.Assignment{
		ID:        id,
		SectionID: req.SectionID,
		FacultyID: req.FacultyID,
		RoomID:    req.RoomID,
		Day:       req.Day,
		Period:    req.Period,
		Cohort:    cohort,
	}
}

func (s *BoardService) groupKey(draft *engine.Draft, a models.Assignment, groupBy string) string {
	switch groupBy {
	case GroupByFaculty:
		return a.FacultyID
	case GroupByRoom:
		return a.RoomID
	case GroupByCohort:
		if a.Cohort == "" {
			return "unassigned"
		}
		return a.Cohort
	default:
		if section, ok := draft.Section(a.SectionID); ok {
			return section.CourseCode
		}
		return "unknown"
	}
}

func mapDraftError(err error) error {
	if errors.Is(err, engine.ErrAssignmentNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, "assignment not found on the board")
	}
	return err
}
