package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/hivdash/pkg/logger"
)

// Scheduler runs registered jobs on their cron schedules
// ⭐ SSOT: every periodic task is registered here
type Scheduler struct {
	cron *cron.Cron
	log  *logger.Logger

	// ctx is cancelled by Stop; running attempts and retry waits observe it
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.RWMutex
	jobs map[string]*entry

	maxRetries   int
	retryDelay   time.Duration
	historyLimit int
}

type entry struct {
	job     Job
	id      cron.EntryID
	history *History
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithRetry overrides the retry count and delay (default 3 retries, 1 minute apart)
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(s *Scheduler) {
		s.maxRetries = maxRetries
		s.retryDelay = delay
	}
}

// WithHistory sets how many runs are kept per job (default 100)
func WithHistory(limit int) Option {
	return func(s *Scheduler) {
		if limit > 0 {
			s.historyLimit = limit
		}
	}
}

// New creates a scheduler. A job whose previous run is still going is skipped.
func New(log *logger.Logger, opts ...Option) *Scheduler {
	log = log.Component("scheduler")
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{log})),
		),
		log:          log,
		ctx:          ctx,
		cancel:       cancel,
		jobs:         make(map[string]*entry),
		maxRetries:   3,
		retryDelay:   time.Minute,
		historyLimit: 100,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddJob registers job under its name
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already exists", name)
	}

	id, err := s.cron.AddFunc(job.Schedule(), func() { s.execute(job) })
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}
	s.jobs[name] = &entry{job: job, id: id, history: newHistory(s.historyLimit)}

	s.log.WithFields(map[string]interface{}{
		"job":      name,
		"schedule": job.Schedule(),
	}).Info("Job added to scheduler")
	return nil
}

// RemoveJob unregisters a job. Its history is dropped.
func (s *Scheduler) RemoveJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}
	s.cron.Remove(e.id)
	delete(s.jobs, name)

	s.log.WithField("job", name).Info("Job removed from scheduler")
	return nil
}

// Start begins firing schedules in the background
func (s *Scheduler) Start() {
	s.log.Info("Starting scheduler")
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return
func (s *Scheduler) Stop() {
	s.log.Info("Stopping scheduler")
	s.cancel()
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.log.Info("Scheduler stopped")
}

// RunNow executes a job immediately, outside its schedule, and returns the run
func (s *Scheduler) RunNow(name string) (Run, error) {
	s.mu.RLock()
	e, exists := s.jobs[name]
	s.mu.RUnlock()
	if !exists {
		return Run{}, fmt.Errorf("job %s not found", name)
	}
	return s.execute(e.job), nil
}

// execute runs job with retries. Permanent errors and Stop end the loop early.
func (s *Scheduler) execute(job Job) Run {
	s.wg.Add(1)
	defer s.wg.Done()

	name := job.Name()
	log := s.log.WithField("job", name)
	run := Run{Job: name, Started: time.Now()}
	log.Debug("Job started")

	var err error
	for run.Attempts < s.maxRetries+1 {
		run.Attempts++
		if err = job.Run(s.ctx); err == nil {
			break
		}
		if IsPermanent(err) || run.Attempts > s.maxRetries {
			break
		}

		log.WithError(err).WithField("attempt", run.Attempts).Warn("Job failed, retrying")
		select {
		case <-s.ctx.Done():
		case <-time.After(s.retryDelay):
		}
		if s.ctx.Err() != nil {
			break
		}
	}

	run.Duration = time.Since(run.Started)
	if err != nil {
		run.Err = err.Error()
		log.WithError(err).WithField("attempts", run.Attempts).Error("Job failed")
	} else {
		log.WithField("duration", run.Duration).Info("Job completed")
	}

	s.mu.Lock()
	if e, ok := s.jobs[name]; ok {
		e.history.add(run)
	}
	s.mu.Unlock()

	return run
}

// Jobs returns the registered job names, sorted
func (s *Scheduler) Jobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// History returns the stored runs of a job, oldest first
func (s *Scheduler) History(name string) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.jobs[name]
	if !exists {
		return nil, fmt.Errorf("job %s not found", name)
	}
	return e.history.Runs(), nil
}

// Stats summarizes one job
type Stats struct {
	Job         string     `json:"job"`
	Schedule    string     `json:"schedule"`
	Runs        int        `json:"runs"`
	Failures    int        `json:"failures"`
	SuccessRate float64    `json:"success_rate"`
	LastRun     *time.Time `json:"last_run,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

// Stats returns per-job statistics over the stored history
func (s *Scheduler) Stats() map[string]Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Stats, len(s.jobs))
	for name, e := range s.jobs {
		st := Stats{
			Job:         name,
			Schedule:    e.job.Schedule(),
			Runs:        len(e.history.runs),
			SuccessRate: e.history.SuccessRate(),
		}
		for _, r := range e.history.runs {
			if !r.OK() {
				st.Failures++
			}
		}
		if last, ok := e.history.Last(); ok {
			started := last.Started
			st.LastRun = &started
			st.LastError = last.Err
		}
		out[name] = st
	}
	return out
}

// cronLogger routes robfig/cron's own messages (skipped runs, panics) to our logger
type cronLogger struct {
	log *logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.WithFields(kv(keysAndValues)).Debug(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.WithError(err).WithFields(kv(keysAndValues)).Error(msg)
}

func kv(pairs []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		fields[fmt.Sprint(pairs[i])] = pairs[i+1]
	}
	return fields
}
