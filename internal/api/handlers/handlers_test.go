package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/hivdash/internal/contracts"
	"github.com/wonny/hivdash/internal/dashboard"
	"github.com/wonny/hivdash/internal/model"
	"github.com/wonny/hivdash/pkg/config"
	"github.com/wonny/hivdash/pkg/logger"
	"github.com/wonny/hivdash/pkg/redis"
)

type denyLimiter struct{ err error }

func (d denyLimiter) Allow(context.Context) (redis.Decision, error) {
	return redis.Decision{RetryAfter: time.Second}, d.err
}

func testPipeline(t *testing.T) *dashboard.Pipeline {
	t.Helper()
	table := contracts.NewTable([]contracts.Record{
		{DistrictName: "CIBINONG", Gender: contracts.GenderMale, Year: 2021, Count: 10},
		{DistrictName: "CIBINONG", Gender: contracts.GenderFemale, Year: 2022, Count: 4},
	}, contracts.LoadStats{TotalRows: 2})
	adapter := model.NewAdapter(model.RegressorFunc(func(x []float64) (float64, error) {
		return x[0] + x[1], nil
	}), contracts.CanonicalGenders(), "sum", zerolog.Nop())

	p, err := dashboard.New(table, adapter, dashboard.DefaultOptions(), zerolog.Nop())
	require.NoError(t, err)
	return p
}

func testConfig() config.DashboardConfig {
	return config.DashboardConfig{DefaultReductionPct: 10, ReductionStepPct: 5, TopN: 5, ChartCacheTTL: time.Minute}
}

func newWSHandler(t *testing.T, limiter Limiter) *WSHandler {
	t.Helper()
	return NewWSHandler(testPipeline(t), testConfig(), limiter, nil, logger.Nop())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", contracts.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("x: %w", contracts.ErrNotFound), http.StatusNotFound},
		{ErrRateLimited, http.StatusTooManyRequests},
		{invalidParam("n", "abc"), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestIntParam(t *testing.T) {
	r := httptest.NewRequest("GET", "/?n=7&bad=x&blank=%20", nil)

	v, err := intParam(r, "n", 1)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	v, err = intParam(r, "missing", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = intParam(r, "blank", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	_, err = intParam(r, "bad", 0)
	assert.ErrorIs(t, err, contracts.ErrInvalidInput)
	assert.Equal(t, `invalid bad "x"`, err.Error())
}

func TestWSHandle(t *testing.T) {
	h := newWSHandler(t, NewLocalLimiter(100, 100))
	ctx := context.Background()
	pct := 50
	badPct := 12

	tests := []struct {
		name   string
		req    WSRequest
		status int
	}{
		{"summary", WSRequest{Type: "summary"}, 0},
		{"view default", WSRequest{Type: "view"}, 0},
		{"view detail", WSRequest{Type: "VIEW", Mode: "district-detail", District: "CIBINONG"}, 0},
		{"view bad mode", WSRequest{Type: "view", Mode: "radar"}, http.StatusBadRequest},
		{"view unknown district", WSRequest{Type: "view", Mode: "district-detail", District: "X"}, http.StatusNotFound},
		{"filter", WSRequest{Type: "filter", Gender: contracts.GenderFemale}, 0},
		{"predict", WSRequest{Type: "predict", Male: 1, Female: 2}, 0},
		{"predict negative", WSRequest{Type: "predict", Male: -1}, http.StatusBadRequest},
		{"scenario default", WSRequest{Type: "scenario"}, 0},
		{"scenario custom", WSRequest{Type: "scenario", Reduction: &pct}, 0},
		{"scenario off step", WSRequest{Type: "scenario", Reduction: &badPct}, http.StatusBadRequest},
		{"unknown type", WSRequest{Type: "draw"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := h.Handle(ctx, tt.req)
			assert.Equal(t, tt.status, resp.Status, resp.Error)
			if tt.status == 0 {
				assert.NotNil(t, resp.Data)
				assert.Empty(t, resp.Error)
			} else {
				assert.Nil(t, resp.Data)
				assert.NotEmpty(t, resp.Error)
			}
		})
	}
}

func TestWSHandle_Values(t *testing.T) {
	h := newWSHandler(t, NewLocalLimiter(100, 100))
	pct := 50

	resp := h.Handle(context.Background(), WSRequest{Type: "scenario", Reduction: &pct})
	sc, ok := resp.Data.(contracts.Scenario)
	require.True(t, ok)
	assert.Equal(t, 50.0, sc.ReductionPct)
	assert.InDelta(t, 5.0, sc.Points[0].Adjusted, 1e-9)

	resp = h.Handle(context.Background(), WSRequest{Type: "filter", Gender: "Unknown"})
	res, ok := resp.Data.(contracts.GenderFilterResult)
	require.True(t, ok)
	assert.Equal(t, dashboard.WarnGenderNotFound, res.Warning)
}

func TestWSHandle_RateLimited(t *testing.T) {
	resp := newWSHandler(t, denyLimiter{}).Handle(context.Background(), WSRequest{Type: "predict", Male: 1})
	assert.Equal(t, http.StatusTooManyRequests, resp.Status)

	resp = newWSHandler(t, denyLimiter{err: errors.New("redis down")}).Handle(context.Background(), WSRequest{Type: "predict", Male: 1})
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
}

func TestNewLimiter(t *testing.T) {
	client, err := redis.New(&config.Config{})
	require.NoError(t, err)

	l := NewLimiter(client, 1, 2)
	_, isLocal := l.(*LocalLimiter)
	assert.True(t, isLocal)

	for i := 0; i < 2; i++ {
		d, err := l.Allow(context.Background())
		require.NoError(t, err)
		assert.True(t, d.Allowed, "call %d", i+1)
	}
	d, err := l.Allow(context.Background())
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, d.RetryAfter, time.Second)

	shared := NewSharedLimiter(redis.NewRateLimiter(client, "test"), redis.PredictRateLimit(1))
	d, err = shared.Allow(context.Background())
	require.NoError(t, err)
	assert.True(t, d.Allowed) // disabled Redis allows everything
}
