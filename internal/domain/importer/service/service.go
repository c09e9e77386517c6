// Package service runs the chunked import: it partitions projected rows
// into batches, submits them to the contact store strictly in order, and
// folds every batch outcome into a single run state the UI can observe.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/contact-importer/internal/domain/importer/projector"
	"github.com/FACorreiaa/contact-importer/internal/domain/importer/remote"
	"github.com/FACorreiaa/contact-importer/pkg/metrics"
)

// State is the lifecycle of one import run. There is no pause or cancel;
// a run is observed to completion or failure.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateAborted   State = "aborted-on-conflict"
	StateCompleted State = "completed"
)

// DefaultBatchSize caps how many rows go to the store in one submission.
const DefaultBatchSize = 3000

var (
	// ErrImportRunning is returned when a run is started twice.
	ErrImportRunning = errors.New("import already running")

	// ErrNoRowsImported marks a run where the store accepted nothing; the
	// run resets to idle and is reported as a failed operation.
	ErrNoRowsImported = errors.New("no contacts were imported")
)

// BatchImporter submits one batch of rows to the contact store.
type BatchImporter interface {
	ImportBatch(ctx context.Context, rows []projector.ProjectedRow) (*remote.BatchResult, error)
}

// ActivityLogger records the single audit entry for a finished run.
type ActivityLogger interface {
	RecordActivityLog(ctx context.Context, totalImported int) error
}

const activityLogTimeout = 30 * time.Second

// ImportService executes import runs against the contact store.
type ImportService struct {
	store     BatchImporter
	audit     ActivityLogger // optional
	metrics   *metrics.Metrics
	logger    *slog.Logger
	batchSize int
}

// NewImportService creates the orchestrator.
func NewImportService(store BatchImporter, logger *slog.Logger) *ImportService {
	return &ImportService{
		store:     store,
		logger:    logger,
		batchSize: DefaultBatchSize,
	}
}

// WithActivityLogger wires the audit-log collaborator.
func (s *ImportService) WithActivityLogger(audit ActivityLogger) *ImportService {
	s.audit = audit
	return s
}

// WithMetrics wires Prometheus collectors.
func (s *ImportService) WithMetrics(m *metrics.Metrics) *ImportService {
	s.metrics = m
	return s
}

// WithBatchSize overrides the batch cap; values below 1 keep the default.
func (s *ImportService) WithBatchSize(n int) *ImportService {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// Run is the observable state of one import. Reads go through Snapshot;
// all mutation happens on the single goroutine executing the run.
type Run struct {
	ID uuid.UUID

	// OnProgress, when set before Execute, is called after every progress
	// change. Used by the UI surface to push updates and by tests.
	OnProgress func(progress int)

	mu       sync.Mutex
	state    State
	progress int
	outcome  Outcome
	message  string
}

// NewRun creates an idle run.
func (s *ImportService) NewRun() *Run {
	return &Run{ID: uuid.New(), state: StateIdle}
}

// Snapshot returns the run's current state, progress, outcome, and
// user-facing message.
func (r *Run) Snapshot() (State, int, Outcome, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, r.progress, r.outcome, r.message
}

func (r *Run) setProgress(p int) {
	r.mu.Lock()
	r.progress = p
	r.mu.Unlock()
	if r.OnProgress != nil {
		r.OnProgress(p)
	}
}

func (r *Run) setOutcome(o Outcome) {
	r.mu.Lock()
	r.outcome = o
	r.mu.Unlock()
}

func (r *Run) transition(state State, message string) {
	r.mu.Lock()
	r.state = state
	r.message = message
	r.mu.Unlock()
}

// begin moves the run from idle to running, rejecting concurrent starts.
func (r *Run) begin() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateRunning {
		return ErrImportRunning
	}
	r.state = StateRunning
	r.progress = 0
	r.outcome = Outcome{}
	r.message = ""
	return nil
}

// Execute runs the whole chunked import synchronously. Batches are
// submitted strictly one at a time, in file order: a conflict detected in
// batch i must abort before batch i+1 is ever sent, and sequential
// submission keeps progress monotonic and row rebasing exact.
func (s *ImportService) Execute(ctx context.Context, run *Run, rows []projector.ProjectedRow) (Outcome, error) {
	if err := run.begin(); err != nil {
		return Outcome{}, err
	}

	if s.metrics != nil {
		s.metrics.ImportsStarted.Inc()
		s.metrics.ActiveImports.Inc()
		defer s.metrics.ActiveImports.Dec()
	}

	batches := partition(rows, s.batchSize)
	outcome := Outcome{}

	s.logger.Info("import run started",
		slog.String("run_id", run.ID.String()),
		slog.Int("rows", len(rows)),
		slog.Int("batches", len(batches)),
	)

	for i, batch := range batches {
		// Publish before the blocking call so a slow store never leaves
		// the user without feedback.
		run.setProgress(progressFor(i, len(batches)))

		started := time.Now()
		result, err := s.store.ImportBatch(ctx, batch)
		if s.metrics != nil {
			s.metrics.BatchDuration.Observe(time.Since(started).Seconds())
		}

		if err != nil {
			if conflict, ok := remote.AsConflict(err); ok {
				outcome.ExistingEmails = append(outcome.ExistingEmails, conflict.ExistingEmails...)
				run.setOutcome(outcome)
				run.setProgress(100)
				run.transition(StateAborted, conflict.Error())
				s.finishMetrics(StateAborted)
				s.logger.Warn("import aborted on duplicate conflict",
					slog.String("run_id", run.ID.String()),
					slog.Int("batch", i),
					slog.Int("existing_emails", len(conflict.ExistingEmails)),
				)
				return outcome, conflict
			}

			// A transient or batch-specific failure must not block the
			// rest of the file.
			outcome = applyBatchFailure(outcome, i, s.batchSize, len(batch), err)
			run.setOutcome(outcome)
			if s.metrics != nil {
				s.metrics.RowsFailed.Add(float64(len(batch)))
			}
			s.logger.Warn("batch import failed, continuing",
				slog.String("run_id", run.ID.String()),
				slog.Int("batch", i),
				slog.Any("error", err),
			)
			continue
		}

		outcome = applyBatch(outcome, i, s.batchSize, result)
		run.setOutcome(outcome)
		if s.metrics != nil {
			s.metrics.RowsImported.Add(float64(result.Imported))
			s.metrics.RowsFailed.Add(float64(result.Failed))
		}
	}

	run.setProgress(100)

	if outcome.Imported == 0 {
		run.transition(StateIdle, ErrNoRowsImported.Error())
		run.setProgress(0)
		s.finishMetrics(StateIdle)
		s.logger.Warn("import run produced no imported rows",
			slog.String("run_id", run.ID.String()),
		)
		return outcome, ErrNoRowsImported
	}

	s.recordActivityLog(run, outcome.Imported)

	run.transition(StateCompleted, "")
	s.finishMetrics(StateCompleted)

	s.logger.Info("import run completed",
		slog.String("run_id", run.ID.String()),
		slog.Int("imported", outcome.Imported),
		slog.Int("failed", outcome.Failed),
		slog.Int("errors", len(outcome.Errors)),
	)
	return outcome, nil
}

// recordActivityLog fires the best-effort audit call. Its failure never
// affects the outcome reported to the user.
func (s *ImportService) recordActivityLog(run *Run, totalImported int) {
	if s.audit == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), activityLogTimeout)
		defer cancel()
		if err := s.audit.RecordActivityLog(ctx, totalImported); err != nil {
			s.logger.Warn("failed to record import activity log",
				slog.String("run_id", run.ID.String()),
				slog.Any("error", err),
			)
		}
	}()
}

func (s *ImportService) finishMetrics(state State) {
	if s.metrics != nil {
		s.metrics.ImportsFinished.WithLabelValues(string(state)).Inc()
	}
}
