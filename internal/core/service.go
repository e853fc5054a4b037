package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/JonMunkholm/shiprec/internal/archive"
	"github.com/JonMunkholm/shiprec/internal/domain"
	"github.com/JonMunkholm/shiprec/internal/exchange"
	"github.com/JonMunkholm/shiprec/internal/logging"
	"github.com/JonMunkholm/shiprec/internal/metrics"
	"github.com/JonMunkholm/shiprec/internal/store"
)

// Config holds the service's job settings.
type Config struct {
	// ExportDir receives exported files. Defaults to the working directory.
	ExportDir string

	// JobTimeout bounds a submitted job (default 10m).
	JobTimeout time.Duration

	// MaxConcurrent and MaxWait configure the KindLimiter.
	MaxConcurrent int
	MaxWait       time.Duration

	// RetainJobs is how long finished jobs stay queryable by id (default 1h).
	RetainJobs time.Duration
}

// Service runs imports and exports as jobs. Every run is recorded as a
// JobStatus row, and runs of the same kind never overlap.
type Service struct {
	store    *store.Store
	cfg      Config
	limiter  *KindLimiter
	metrics  *metrics.Metrics
	archiver archive.Archiver
	tracer   trace.Tracer
	now      func() time.Time

	wg   sync.WaitGroup
	mu   sync.RWMutex
	jobs map[string]*activeJob
}

// Option customizes a Service.
type Option func(*Service)

// WithMetrics records job and record counts.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithArchiver copies every file export to a.
func WithArchiver(a archive.Archiver) Option {
	return func(s *Service) { s.archiver = a }
}

// WithClock replaces time.Now for job timestamps and import snapshots.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

type activeJob struct {
	mu       sync.Mutex
	progress JobProgress
	cancel   context.CancelFunc
	done     chan struct{}
}

func (j *activeJob) snapshot() JobProgress {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.progress
}

func (j *activeJob) update(fn func(p *JobProgress)) {
	j.mu.Lock()
	fn(&j.progress)
	j.mu.Unlock()
}

// NewService creates a Service over s.
func NewService(s *store.Store, cfg Config, opts ...Option) *Service {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 10 * time.Minute
	}
	if cfg.RetainJobs <= 0 {
		cfg.RetainJobs = time.Hour
	}

	svc := &Service{
		store:   s,
		cfg:     cfg,
		limiter: NewKindLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		tracer:  otel.Tracer("github.com/JonMunkholm/shiprec/internal/core"),
		now:     time.Now,
		jobs:    make(map[string]*activeJob),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Kinds returns the registered kinds in import order.
func (s *Service) Kinds() []Kind {
	return All()
}

// Store returns the underlying store.
func (s *Service) Store() *store.Store {
	return s.store
}

// Limiter exposes the job limiter for monitoring.
func (s *Service) Limiter() *KindLimiter {
	return s.limiter
}

func lookup(key string) (Kind, error) {
	k, ok := Get(key)
	if !ok {
		return Kind{}, fmt.Errorf("%w: %s", ErrUnknownKind, key)
	}
	return k, nil
}

// ============================================================================
// Synchronous runs
// ============================================================================

// Import runs an import of lines, header first, and waits for it.
func (s *Service) Import(ctx context.Context, key, fileName string, lines []string) (JobProgress, error) {
	k, err := lookup(key)
	if err != nil {
		return JobProgress{}, err
	}
	job := s.track(k, OpImport, fileName, nil)
	err = s.run(ctx, job, k, fileName, s.importWork(k, lines))
	return job.snapshot(), err
}

// ImportReader reads r and imports its lines. A read failure is recorded
// against the job like any other import failure.
func (s *Service) ImportReader(ctx context.Context, key, fileName string, r io.Reader) (JobProgress, error) {
	k, err := lookup(key)
	if err != nil {
		return JobProgress{}, err
	}
	job := s.track(k, OpImport, fileName, nil)
	err = s.run(ctx, job, k, fileName, s.readImportWork(k, fileName, func() (io.ReadCloser, error) {
		return io.NopCloser(r), nil
	}))
	return job.snapshot(), err
}

// ImportFile imports the file at path. The kind is resolved before the
// file is opened.
func (s *Service) ImportFile(ctx context.Context, key, path string) (JobProgress, error) {
	k, err := lookup(key)
	if err != nil {
		return JobProgress{}, err
	}
	fileName := filepath.Base(path)
	job := s.track(k, OpImport, fileName, nil)
	err = s.run(ctx, job, k, fileName, s.readImportWork(k, fileName, func() (io.ReadCloser, error) {
		return os.Open(path)
	}))
	return job.snapshot(), err
}

// Export writes every entity of key to fileName inside the export
// directory, archiving it when an archiver is configured.
func (s *Service) Export(ctx context.Context, key, fileName string) (JobProgress, error) {
	k, err := lookup(key)
	if err != nil {
		return JobProgress{}, err
	}
	fileName = s.exportName(k, fileName)
	job := s.track(k, OpExport, fileName, nil)
	err = s.run(ctx, job, k, fileName, s.exportFileWork(k, s.ExportPath(fileName)))
	return job.snapshot(), err
}

// ExportTo streams every entity of key to w.
func (s *Service) ExportTo(ctx context.Context, key string, w io.Writer) (JobProgress, error) {
	k, err := lookup(key)
	if err != nil {
		return JobProgress{}, err
	}
	job := s.track(k, OpExport, "", nil)
	err = s.run(ctx, job, k, "download", s.exportWork(k, w))
	return job.snapshot(), err
}

// ExportPath returns where an export named fileName is written.
func (s *Service) ExportPath(fileName string) string {
	return filepath.Join(s.cfg.ExportDir, filepath.Base(fileName))
}

func (s *Service) exportName(k Kind, fileName string) string {
	if fileName == "" {
		return k.Key + ".csv"
	}
	return filepath.Base(fileName)
}

// ============================================================================
// Background runs
// ============================================================================

// SubmitImport starts an import in the background and returns its job id.
// The job outlives ctx.
func (s *Service) SubmitImport(ctx context.Context, key, fileName string, lines []string) (string, error) {
	k, err := lookup(key)
	if err != nil {
		return "", err
	}
	return s.submit(ctx, k, OpImport, fileName, s.importWork(k, lines)), nil
}

// SubmitExport starts a file export in the background and returns its job
// id.
func (s *Service) SubmitExport(ctx context.Context, key, fileName string) (string, error) {
	k, err := lookup(key)
	if err != nil {
		return "", err
	}
	fileName = s.exportName(k, fileName)
	return s.submit(ctx, k, OpExport, fileName, s.exportFileWork(k, s.ExportPath(fileName))), nil
}

// submit detaches the job from ctx's cancellation but keeps its values, so
// request ids and requester details still reach the job's logs.
func (s *Service) submit(ctx context.Context, k Kind, op JobOperation, fileName string, work func(context.Context, Observer) error) string {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.JobTimeout)
	job := s.track(k, op, fileName, cancel)
	id := job.progress.JobID

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		_ = s.run(ctx, job, k, fileName, work)
	}()

	return id
}

// Job returns the progress of a tracked job.
func (s *Service) Job(id string) (JobProgress, error) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()

	if !ok {
		return JobProgress{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return job.snapshot(), nil
}

// Jobs returns every tracked job, newest first.
func (s *Service) Jobs() []JobProgress {
	s.mu.RLock()
	result := make([]JobProgress, 0, len(s.jobs))
	for _, job := range s.jobs {
		result = append(result, job.snapshot())
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartedAt.Equal(result[j].StartedAt) {
			return result[i].StartedAt.After(result[j].StartedAt)
		}
		return result[i].JobID < result[j].JobID
	})
	return result
}

// Wait blocks until the job finishes or ctx is done.
func (s *Service) Wait(ctx context.Context, id string) (JobProgress, error) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()

	if !ok {
		return JobProgress{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	select {
	case <-job.done:
		return job.snapshot(), nil
	case <-ctx.Done():
		return job.snapshot(), ctx.Err()
	}
}

// Cancel cancels a running background job.
func (s *Service) Cancel(id string) error {
	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if job.cancel != nil {
		job.cancel()
	}
	return nil
}

// History returns recorded job statuses, newest first.
func (s *Service) History(ctx context.Context, page, size int) ([]domain.JobStatus, error) {
	all, err := s.store.JobStatuses.List(ctx, store.All[domain.JobStatus], 1, store.AllRows)
	if err != nil {
		return nil, fmt.Errorf("list job statuses: %w", err)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return store.Page(all, nil, page, size), nil
}

// Shutdown waits for background jobs to finish or ctx to end.
func (s *Service) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.mu.RLock()
		for _, job := range s.jobs {
			if job.cancel != nil {
				job.cancel()
			}
		}
		s.mu.RUnlock()
		return ctx.Err()
	}
}

// ============================================================================
// Job execution
// ============================================================================

func (s *Service) track(k Kind, op JobOperation, fileName string, cancel context.CancelFunc) *activeJob {
	job := &activeJob{
		progress: JobProgress{
			JobID:     uuid.New().String(),
			Kind:      k.Key,
			Operation: op,
			FileName:  fileName,
			Phase:     PhaseQueued,
			StartedAt: s.now(),
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	s.jobs[job.progress.JobID] = job
	s.mu.Unlock()
	return job
}

func jobName(k Kind, op JobOperation) string {
	if op == OpImport {
		return k.Label + " Import"
	}
	return k.Label + " Export"
}

// run records a JobStatus row, runs work under the kind's slot and records
// the outcome. The outcome is recorded even when ctx was cancelled.
func (s *Service) run(ctx context.Context, job *activeJob, k Kind, params string, work func(context.Context, Observer) error) (err error) {
	p := job.snapshot()
	logger := logging.WithFields(ctx, "job_id", p.JobID, "kind", k.Key, "operation", string(p.Operation)).With(requester(ctx)...)

	ctx, span := s.tracer.Start(ctx, "shiprec."+string(p.Operation), trace.WithAttributes(
		attribute.String("shiprec.kind", k.Key),
		attribute.String("shiprec.job_id", p.JobID),
		attribute.String("shiprec.file", p.FileName),
	))
	defer span.End()

	defer func() {
		s.finish(job, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Error("job failed", "error", err, "code", MapError(err).Code)
		} else {
			logger.Info("job completed", "records", job.snapshot().Records)
		}
	}()

	status, err := s.store.JobStatuses.Add(ctx, jobName(k, p.Operation), params)
	if err != nil {
		return fmt.Errorf("record job start: %w", err)
	}
	job.update(func(p *JobProgress) { p.StatusID = status.ID })

	err = s.limiter.Acquire(ctx, k.Key)
	if err == nil {
		start := time.Now()
		s.metrics.JobStarted()
		logger.Info("job started")

		err = work(ctx, s.observer(job, k, logger))

		s.metrics.JobFinished(k.Key, string(p.Operation), start, err)
		s.limiter.Release(k.Key)
	}

	var msg string
	if err != nil {
		msg = err.Error()
	}
	if _, uerr := s.store.JobStatuses.Update(context.WithoutCancel(ctx), status.ID, msg); uerr != nil {
		logger.Error("record job end failed", "error", uerr)
		if err == nil {
			err = fmt.Errorf("record job end: %w", uerr)
		}
	}
	return err
}

func (s *Service) observer(job *activeJob, k Kind, logger *slog.Logger) Observer {
	op := job.snapshot().Operation
	return Observer{
		Logger: logger,
		Now:    s.now,
		OnPhase: func(ph exchange.Phase) {
			job.update(func(p *JobProgress) { p.Phase = ph })
		},
		OnRecord: func(count int) {
			job.update(func(p *JobProgress) { p.Records = count })
			if op == OpImport {
				s.metrics.RecordImported(k.Key)
			} else {
				s.metrics.RecordExported(k.Key)
			}
		},
	}
}

func (s *Service) finish(job *activeJob, err error) {
	finished := s.now()
	job.update(func(p *JobProgress) {
		p.FinishedAt = &finished
		if err != nil {
			p.Phase = exchange.PhaseFailed
			p.Error = err.Error()
			p.Code = MapError(err).Code
		} else {
			p.Phase = exchange.PhaseDone
		}
	})
	close(job.done)

	id := job.snapshot().JobID
	time.AfterFunc(s.cfg.RetainJobs, func() {
		s.mu.Lock()
		delete(s.jobs, id)
		s.mu.Unlock()
	})
}

func (s *Service) importWork(k Kind, lines []string) func(context.Context, Observer) error {
	return func(ctx context.Context, obs Observer) error {
		return k.Import(ctx, s.store, lines, obs)
	}
}

func (s *Service) readImportWork(k Kind, fileName string, open func() (io.ReadCloser, error)) func(context.Context, Observer) error {
	return func(ctx context.Context, obs Observer) error {
		rc, err := open()
		if err != nil {
			return fmt.Errorf("open %s: %w", fileName, err)
		}
		defer rc.Close()

		lines, err := exchange.ReadLines(rc)
		if err != nil {
			return fmt.Errorf("read %s: %w", fileName, err)
		}
		return k.Import(ctx, s.store, lines, obs)
	}
}

func (s *Service) exportWork(k Kind, w io.Writer) func(context.Context, Observer) error {
	return func(ctx context.Context, obs Observer) error {
		obs.OnPhase(PhaseRunning)
		return k.Export(ctx, s.store, w, obs)
	}
}

func (s *Service) exportFileWork(k Kind, path string) func(context.Context, Observer) error {
	return func(ctx context.Context, obs Observer) error {
		obs.OnPhase(PhaseRunning)
		if err := k.ExportFile(ctx, s.store, path, obs); err != nil {
			return err
		}

		if s.archiver != nil {
			if err := archive.File(ctx, s.archiver, path); err != nil {
				return fmt.Errorf("archive export: %w", err)
			}
			obs.Logger.Info("export archived", "file", filepath.Base(path))
		}
		return nil
	}
}

