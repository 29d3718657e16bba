package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/engine"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/pkg/config"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
	"github.com/noah-isme/campus-timetable-api/pkg/jobs"
)

type snapshotLoader interface {
	Snapshot(ctx context.Context) (*models.CatalogSnapshot, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type runObserver interface {
	ObserveGeneration(state models.GenerationState, duration time.Duration)
}

type runRecord struct {
	run         models.GenerationRun
	snapshot    *models.CatalogSnapshot
	cfg         engine.Config
	cancel      context.CancelFunc
	runCtx      context.Context
	assignments []models.Assignment
}

// GenerationService owns the lifecycle of automated generation runs: it
// snapshots the catalog, hands the search to a background worker, and keeps
// an in-memory registry of run state that clients poll.
type GenerationService struct {
	catalog    snapshotLoader
	dispatcher jobDispatcher
	observer   runObserver
	cfg        config.EngineConfig
	logger     *zap.Logger

	mu   sync.RWMutex
	runs map[string]*runRecord
}

// NewGenerationService constructs the service. The job dispatcher is attached
// separately because the queue's handler is this service's Execute method.
func NewGenerationService(catalog snapshotLoader, cfg config.EngineConfig, logger *zap.Logger) *GenerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerationService{
		catalog: catalog,
		cfg:     cfg,
		logger:  logger,
		runs:    make(map[string]*runRecord),
	}
}

// AttachQueue wires the background dispatcher. Must be called before Start.
func (s *GenerationService) AttachQueue(dispatcher jobDispatcher) {
	s.dispatcher = dispatcher
}

// AttachObserver wires optional run metrics.
func (s *GenerationService) AttachObserver(observer runObserver) {
	s.observer = observer
}

// Start snapshots the catalog, registers a new run and enqueues it. The
// snapshot is taken here so the caller learns about an empty or malformed
// catalog synchronously instead of through a failed background job.
func (s *GenerationService) Start(ctx context.Context, req dto.GenerateRequest) (models.GenerationRun, error) {
	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return models.GenerationRun{}, err
	}

	engineCfg := engine.Config{
		Weights: engine.Weights{
			Satisfaction: s.cfg.SatisfactionWeight,
			Balance:      s.cfg.BalanceWeight,
			Utilization:  s.cfg.UtilizationWeight,
		},
		ImprovementIterations: s.cfg.ImprovementIterations,
		Seed:                  s.cfg.Seed,
	}
	if req.Weights != nil {
		w := engine.Weights{
			Satisfaction: req.Weights.Satisfaction,
			Balance:      req.Weights.Balance,
			Utilization:  req.Weights.Utilization,
		}
		if !w.Valid() {
			return models.GenerationRun{}, appErrors.Clone(appErrors.ErrInvalidWeights, "weights must be non-negative with a positive sum")
		}
		engineCfg.Weights = w
	}
	if req.ImprovementIterations != nil {
		engineCfg.ImprovementIterations = *req.ImprovementIterations
	}
	if req.Seed != nil {
		engineCfg.Seed = *req.Seed
	}

	runCtx, cancel := context.WithCancel(context.Background())
	record := &runRecord{
		run: models.GenerationRun{
			ID:        uuid.NewString(),
			State:     models.GenerationStateRunning,
			StartedAt: time.Now().UTC(),
		},
		snapshot: snapshot,
		cfg:      engineCfg,
		cancel:   cancel,
		runCtx:   runCtx,
	}

	s.mu.Lock()
	s.pruneLocked(time.Now().UTC())
	s.runs[record.run.ID] = record
	s.mu.Unlock()

	job := jobs.Job{ID: record.run.ID, Type: "timetable.generate"}
	if err := s.dispatcher.Enqueue(job); err != nil {
		cancel()
		s.fail(record.run.ID, err)
		return models.GenerationRun{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue generation run")
	}

	s.logger.Sugar().Infow("generation run started",
		"run_id", record.run.ID,
		"sections", len(snapshot.Sections),
		"iterations", engineCfg.ImprovementIterations,
		"seed", engineCfg.Seed)
	return record.run, nil
}

// Execute is the queue handler for one generation job. The queue context and
// the run's own cancel signal are merged so both shutdown and an explicit
// cancel request stop the search.
func (s *GenerationService) Execute(ctx context.Context, job jobs.Job) error {
	s.mu.RLock()
	record, ok := s.runs[job.ID]
	s.mu.RUnlock()
	if !ok {
		s.logger.Sugar().Warnw("generation job without run record", "run_id", job.ID)
		return nil
	}

	stop := context.AfterFunc(ctx, record.cancel)
	defer stop()

	started := time.Now()
	draft := engine.NewDraft(s.grid(), record.snapshot)
	generator := engine.NewGenerator(record.cfg, s.logger)

	result, err := generator.Run(record.runCtx, draft, func(p engine.Progress) {
		s.updateProgress(job.ID, p.Fraction)
	})
	if err != nil {
		s.fail(job.ID, err)
		s.observe(models.GenerationStateFailed, time.Since(started))
		return err
	}

	state := models.GenerationStateCompleted
	if result.Cancelled {
		state = models.GenerationStateCancelled
	}
	s.complete(job.ID, state, result, draft.Assignments())
	s.observe(state, time.Since(started))
	return nil
}

// Cancel requests cooperative cancellation of a running run. The run keeps
// its best committed result and transitions to CANCELLED once the worker
// observes the signal.
func (s *GenerationService) Cancel(runID string) (models.GenerationRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.runs[runID]
	if !ok {
		return models.GenerationRun{}, appErrors.Clone(appErrors.ErrNotFound, "generation run not found")
	}
	if record.run.State.Terminal() {
		return models.GenerationRun{}, appErrors.Clone(appErrors.ErrConflict, "generation run already finished")
	}
	record.cancel()
	return copyRun(record.run), nil
}

// Get returns the current state of a run.
func (s *GenerationService) Get(runID string) (models.GenerationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.runs[runID]
	if !ok {
		return models.GenerationRun{}, appErrors.Clone(appErrors.ErrNotFound, "generation run not found")
	}
	return copyRun(record.run), nil
}

// Assignments returns the committed assignment set of a finished run so it
// can be saved as a scenario. Cancelled runs qualify: their partial result is
// still constraint-satisfying.
func (s *GenerationService) Assignments(runID string) ([]models.Assignment, models.ScenarioMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.runs[runID]
	if !ok {
		return nil, models.ScenarioMetrics{}, appErrors.Clone(appErrors.ErrNotFound, "generation run not found")
	}
	switch record.run.State {
	case models.GenerationStateCompleted, models.GenerationStateCancelled:
	default:
		return nil, models.ScenarioMetrics{}, appErrors.Clone(appErrors.ErrConflict, "generation run has no saved result yet")
	}

	out := make([]models.Assignment, len(record.assignments))
	copy(out, record.assignments)
	return out, record.run.Metrics, nil
}

func (s *GenerationService) grid() engine.TimeGrid {
	grid := engine.NewTimeGrid(s.cfg.Days, s.cfg.PeriodsPerDay, s.cfg.ProtectedPeriod)
	if !grid.WellFormed() {
		return engine.DefaultGrid()
	}
	return grid
}

func (s *GenerationService) updateProgress(runID string, fraction float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.runs[runID]
	if !ok || record.run.State.Terminal() {
		return
	}
	if fraction > 1 {
		fraction = 1
	}
	if fraction > record.run.Progress {
		record.run.Progress = fraction
	}
}

func (s *GenerationService) complete(runID string, state models.GenerationState, result *engine.Result, assignments []models.Assignment) {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.runs[runID]
	if !ok {
		return
	}
	record.run.State = state
	record.run.Progress = 1
	record.run.Placed = result.Placed
	record.run.Unplaced = result.Unplaced
	record.run.Iterations = result.Iterations
	record.run.Diagnostics = result.Diagnostics
	record.run.Metrics = result.Metrics
	record.run.FinishedAt = &now
	record.assignments = assignments
	record.snapshot = nil

	s.logger.Sugar().Infow("generation run finished",
		"run_id", runID,
		"state", state,
		"placed", result.Placed,
		"unplaced", result.Unplaced,
		"objective", result.Metrics.Objective)
}

func (s *GenerationService) fail(runID string, err error) {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.runs[runID]
	if !ok {
		return
	}
	record.run.State = models.GenerationStateFailed
	record.run.Error = err.Error()
	record.run.FinishedAt = &now
	record.snapshot = nil

	s.logger.Sugar().Errorw("generation run failed", "run_id", runID, "error", err)
}

func (s *GenerationService) observe(state models.GenerationState, duration time.Duration) {
	if s.observer != nil {
		s.observer.ObserveGeneration(state, duration)
	}
}

// pruneLocked drops terminal runs older than the configured TTL. Callers
// hold s.mu.
func (s *GenerationService) pruneLocked(now time.Time) {
	if s.cfg.RunTTL <= 0 {
		return
	}
	for id, record := range s.runs {
		if record.run.State.Terminal() && record.run.FinishedAt != nil &&
			now.Sub(*record.run.FinishedAt) > s.cfg.RunTTL {
			delete(s.runs, id)
		}
	}
}

func copyRun(run models.GenerationRun) models.GenerationRun {
	out := run
	if run.Diagnostics != nil {
		out.Diagnostics = make([]string, len(run.Diagnostics))
		copy(out.Diagnostics, run.Diagnostics)
	}
	return out
}
