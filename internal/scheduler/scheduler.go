// Package scheduler runs the background jobs on cron schedules and lets
// operators list, trigger and cancel them.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vmunix/mediarr/internal/events"
)

var (
	ErrUnknownJob = errors.New("unknown job")
	ErrJobRunning = errors.New("job already running")
	ErrDuplicate  = errors.New("job already registered")
)

// Job is a long-running background task. Run must be single-flight and
// return promptly after Cancel.
type Job interface {
	Run(ctx context.Context) error
	Cancel()
	Running() bool
}

// Spec registers one job.
type Spec struct {
	ID       string
	Name     string
	Schedule string // standard 5-field cron
	Job      Job
	// Aborted is the error Run returns after Cancel. It is logged as a
	// cancellation rather than a failure.
	Aborted error
}

// Info is the externally visible state of a job.
type Info struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Schedule  string    `json:"schedule"`
	Running   bool      `json:"running"`
	NextRun   time.Time `json:"next_run"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

type entry struct {
	Spec
	cronID cron.EntryID

	mu        sync.Mutex
	lastRun   time.Time
	lastError string
}

// Scheduler owns the cron runner and the job registry.
type Scheduler struct {
	cron   *cron.Cron
	events events.Publisher
	log    *slog.Logger

	mu   sync.RWMutex
	jobs map[string]*entry

	ctx     context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup
	started atomic.Bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Scheduler) {
		if log != nil {
			s.log = log
		}
	}
}

// WithPublisher sets where job start and finish events go.
func WithPublisher(p events.Publisher) Option {
	return func(s *Scheduler) { s.events = p }
}

// WithLocation sets the time zone schedules are evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		s.cron = cron.New(cron.WithLocation(loc))
	}
}

// New creates a stopped Scheduler.
func New(opts ...Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron: cron.New(),
		log:  slog.Default(),
		jobs: make(map[string]*entry),
		ctx:  ctx,
		stop: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "scheduler")
	return s
}

// Register adds a job. An empty schedule registers a manual-only job.
func (s *Scheduler) Register(spec Spec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[spec.ID]; ok {
		return fmt.Errorf("%s: %w", spec.ID, ErrDuplicate)
	}
	e := &entry{Spec: spec}
	if spec.Schedule != "" {
		id, err := s.cron.AddFunc(spec.Schedule, func() { s.run(e, false) })
		if err != nil {
			return fmt.Errorf("schedule %s %q: %w", spec.ID, spec.Schedule, err)
		}
		e.cronID = id
	}
	s.jobs[spec.ID] = e
	s.log.Debug("job registered", "job", spec.ID, "schedule", spec.Schedule)
	return nil
}

// Start begins firing scheduled jobs.
func (s *Scheduler) Start() {
	if s.started.CompareAndSwap(false, true) {
		s.cron.Start()
		s.log.Info("scheduler started", "jobs", len(s.jobs))
	}
}

// Stop halts the schedule, cancels running jobs and waits for them to
// return or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	cronDone := s.cron.Stop()
	s.stop()
	s.mu.RLock()
	for _, e := range s.jobs {
		if e.Job.Running() {
			e.Job.Cancel()
		}
	}
	s.mu.RUnlock()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.log.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Jobs lists every registered job sorted by id.
func (s *Scheduler) Jobs() []Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Info, 0, len(s.jobs))
	for _, e := range s.jobs {
		out = append(out, s.info(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Job returns the state of one job.
func (s *Scheduler) Job(id string) (Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.jobs[id]
	if !ok {
		return Info{}, fmt.Errorf("%s: %w", id, ErrUnknownJob)
	}
	return s.info(e), nil
}

func (s *Scheduler) info(e *entry) Info {
	e.mu.Lock()
	defer e.mu.Unlock()
	info := Info{
		ID:        e.ID,
		Name:      e.Name,
		Schedule:  e.Schedule,
		Running:   e.Job.Running(),
		LastRun:   e.lastRun,
		LastError: e.lastError,
	}
	if e.cronID != 0 {
		info.NextRun = s.cron.Entry(e.cronID).Next
	}
	return info
}

// RunNow starts a job in the background outside its schedule.
func (s *Scheduler) RunNow(id string) error {
	s.mu.RLock()
	e, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrUnknownJob)
	}
	if e.Job.Running() {
		return fmt.Errorf("%s: %w", id, ErrJobRunning)
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(e, true)
	}()
	return nil
}

// Cancel asks a running job to stop. Cancelling an idle job is a no-op.
func (s *Scheduler) Cancel(id string) error {
	s.mu.RLock()
	e, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrUnknownJob)
	}
	if e.Job.Running() {
		s.log.Info("cancelling job", "job", id)
		e.Job.Cancel()
	}
	return nil
}

func (s *Scheduler) run(e *entry, manual bool) {
	if s.ctx.Err() != nil {
		return
	}
	log := s.log.With("job", e.ID, "manual", manual)
	log.Info("job started")
	s.publish(&events.JobStarted{
		BaseEvent: events.NewBaseEvent(events.EventJobStarted, events.EntityJob, 0),
		JobID:     e.ID,
		Manual:    manual,
	})

	start := time.Now()
	err := e.Job.Run(s.ctx)
	elapsed := time.Since(start)

	finished := &events.JobFinished{
		BaseEvent:  events.NewBaseEvent(events.EventJobFinished, events.EntityJob, 0),
		JobID:      e.ID,
		DurationMS: elapsed.Milliseconds(),
	}
	e.mu.Lock()
	e.lastRun = start
	e.lastError = ""
	switch {
	case err == nil:
		log.Info("job finished", "duration", elapsed)
	case e.Aborted != nil && errors.Is(err, e.Aborted), errors.Is(err, context.Canceled):
		log.Warn("job cancelled", "duration", elapsed)
	default:
		e.lastError = err.Error()
		finished.Error = err.Error()
		log.Error("job failed", "duration", elapsed, "error", err)
	}
	e.mu.Unlock()
	s.publish(finished)
}

func (s *Scheduler) publish(e events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(context.Background(), e); err != nil {
		s.log.Warn("publish event failed", "type", e.EventType(), "error", err)
	}
}

// Func adapts a plain function into a single-flight Job. Cancel is a no-op,
// the function is expected to be short.
type Func struct {
	fn      func(ctx context.Context) error
	running atomic.Bool
}

// NewFunc wraps fn.
func NewFunc(fn func(ctx context.Context) error) *Func {
	return &Func{fn: fn}
}

func (f *Func) Run(ctx context.Context) error {
	if !f.running.CompareAndSwap(false, true) {
		return nil
	}
	defer f.running.Store(false)
	return f.fn(ctx)
}

func (f *Func) Cancel() {}

func (f *Func) Running() bool { return f.running.Load() }
