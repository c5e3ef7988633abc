package scheduler

import (
	"context"
	"errors"
	"time"
)

// Job is a unit of periodic work
// ⭐ SSOT: the only job contract
type Job interface {
	Name() string
	Run(ctx context.Context) error

	// Schedule is a cron expression with a seconds field,
	// e.g. "0 0 6 * * *" (06:00 daily) or "@hourly"
	Schedule() string
}

// permanentError marks a failure that retrying cannot fix
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so the scheduler records it without retrying
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was wrapped by Permanent
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// Run is the outcome of one scheduled or manual execution
type Run struct {
	Job      string        `json:"job"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Attempts int           `json:"attempts"`
	Err      string        `json:"error,omitempty"`
}

// OK reports whether the run ended without error
func (r Run) OK() bool { return r.Err == "" }

// History keeps the most recent runs of one job, oldest first
type History struct {
	limit int
	runs  []Run
}

func newHistory(limit int) *History {
	return &History{limit: limit}
}

func (h *History) add(r Run) {
	h.runs = append(h.runs, r)
	if over := len(h.runs) - h.limit; over > 0 {
		h.runs = append(h.runs[:0:0], h.runs[over:]...)
	}
}

// Runs returns a copy of the stored runs
func (h *History) Runs() []Run {
	return append([]Run(nil), h.runs...)
}

// Last returns the most recent run, if any
func (h *History) Last() (Run, bool) {
	if len(h.runs) == 0 {
		return Run{}, false
	}
	return h.runs[len(h.runs)-1], true
}

// SuccessRate is the share of stored runs that succeeded, 0 when empty
func (h *History) SuccessRate() float64 {
	if len(h.runs) == 0 {
		return 0
	}
	ok := 0
	for _, r := range h.runs {
		if r.OK() {
			ok++
		}
	}
	return float64(ok) / float64(len(h.runs))
}
