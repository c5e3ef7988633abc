package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/hivdash/pkg/logger"
)

type fakeJob struct {
	name      string
	schedule  string
	fails     int32 // number of leading runs that fail
	permanent bool
	runs      atomic.Int32
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }
func (j *fakeJob) Run(ctx context.Context) error {
	if n := j.runs.Add(1); n <= j.fails {
		if j.permanent {
			return Permanent(errors.New("export dir is a file"))
		}
		return errors.New("transient")
	}
	return nil
}

func newTestScheduler(retries int, opts ...Option) *Scheduler {
	return New(logger.Nop(), append([]Option{WithRetry(retries, time.Millisecond)}, opts...)...)
}

func TestAddJob(t *testing.T) {
	s := newTestScheduler(0)

	require.NoError(t, s.AddJob(&fakeJob{name: "report_export", schedule: "0 0 6 * * *"}))
	require.NoError(t, s.AddJob(&fakeJob{name: "cache_warm", schedule: "@hourly"}))
	assert.Equal(t, []string{"cache_warm", "report_export"}, s.Jobs())

	err := s.AddJob(&fakeJob{name: "report_export", schedule: "0 0 6 * * *"})
	assert.Error(t, err, "duplicate names are rejected")

	err = s.AddJob(&fakeJob{name: "bad", schedule: "not a schedule"})
	assert.Error(t, err)
	assert.Len(t, s.Jobs(), 2)
}

func TestRemoveJob(t *testing.T) {
	s := newTestScheduler(0)
	require.NoError(t, s.AddJob(&fakeJob{name: "report_export", schedule: "@hourly"}))

	require.NoError(t, s.RemoveJob("report_export"))
	assert.Empty(t, s.Jobs())
	assert.Error(t, s.RemoveJob("report_export"))

	_, err := s.RunNow("report_export")
	assert.Error(t, err)
	_, err = s.History("report_export")
	assert.Error(t, err)
}

func TestRunNow(t *testing.T) {
	tests := []struct {
		name         string
		retries      int
		fails        int32
		permanent    bool
		wantAttempts int
		wantOK       bool
	}{
		{"first try", 2, 0, false, 1, true},
		{"retries until success", 2, 2, false, 3, true},
		{"retries exhausted", 1, 10, false, 2, false},
		{"permanent error is not retried", 5, 10, true, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScheduler(tt.retries)
			job := &fakeJob{name: "report_export", schedule: "@hourly", fails: tt.fails, permanent: tt.permanent}
			require.NoError(t, s.AddJob(job))

			run, err := s.RunNow("report_export")
			require.NoError(t, err)
			assert.Equal(t, tt.wantAttempts, run.Attempts)
			assert.Equal(t, tt.wantOK, run.OK())
			assert.Equal(t, int32(tt.wantAttempts), job.runs.Load())

			runs, err := s.History("report_export")
			require.NoError(t, err)
			require.Len(t, runs, 1)
			assert.Equal(t, run.Attempts, runs[0].Attempts)
		})
	}
}

func TestStats(t *testing.T) {
	s := newTestScheduler(0)
	job := &fakeJob{name: "report_export", schedule: "@hourly", fails: 1}
	require.NoError(t, s.AddJob(job))

	st := s.Stats()["report_export"]
	assert.Zero(t, st.Runs)
	assert.Nil(t, st.LastRun)

	_, _ = s.RunNow("report_export") // fails
	_, _ = s.RunNow("report_export") // succeeds

	st = s.Stats()["report_export"]
	assert.Equal(t, "@hourly", st.Schedule)
	assert.Equal(t, 2, st.Runs)
	assert.Equal(t, 1, st.Failures)
	assert.InDelta(t, 0.5, st.SuccessRate, 1e-9)
	assert.NotNil(t, st.LastRun)
	assert.Empty(t, st.LastError)
}

func TestStopCancelsRetryWait(t *testing.T) {
	s := New(logger.Nop(), WithRetry(3, time.Hour))
	job := &fakeJob{name: "report_export", schedule: "@hourly", fails: 10}
	require.NoError(t, s.AddJob(job))
	s.Start()

	done := make(chan Run, 1)
	go func() {
		run, _ := s.RunNow("report_export")
		done <- run
	}()

	require.Eventually(t, func() bool { return job.runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	s.Stop()

	select {
	case run := <-done:
		assert.False(t, run.OK())
		assert.Equal(t, 1, run.Attempts)
	case <-time.After(5 * time.Second):
		t.Fatal("retry wait was not cancelled by Stop")
	}
}

func TestHistory_Bounded(t *testing.T) {
	h := newHistory(3)
	_, ok := h.Last()
	assert.False(t, ok)
	assert.Equal(t, 0.0, h.SuccessRate())

	for i := 0; i < 5; i++ {
		r := Run{Attempts: i + 1}
		if i%2 == 1 {
			r.Err = "failed"
		}
		h.add(r)
	}

	runs := h.Runs()
	require.Len(t, runs, 3)
	assert.Equal(t, 3, runs[0].Attempts)
	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, 5, last.Attempts)
	assert.InDelta(t, 2.0/3.0, h.SuccessRate(), 1e-9)
}

func TestPermanent(t *testing.T) {
	assert.NoError(t, Permanent(nil))

	base := errors.New("disk full")
	err := Permanent(base)
	assert.True(t, IsPermanent(err))
	assert.ErrorIs(t, err, base)
	assert.False(t, IsPermanent(base))
}
