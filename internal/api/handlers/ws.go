package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/hivdash/internal/contracts"
	"github.com/wonny/hivdash/internal/dashboard"
	"github.com/wonny/hivdash/internal/metrics"
	"github.com/wonny/hivdash/pkg/config"
	"github.com/wonny/hivdash/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Widget message types
const (
	MsgSummary  = "summary"
	MsgView     = "view"
	MsgFilter   = "filter"
	MsgPredict  = "predict"
	MsgScenario = "scenario"
	MsgError    = "error"
)

// WSRequest is one widget interaction sent by the page
type WSRequest struct {
	Type      string `json:"type"`
	Mode      string `json:"mode,omitempty"`
	District  string `json:"district,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Male      int    `json:"male,omitempty"`
	Female    int    `json:"female,omitempty"`
	Reduction *int   `json:"reduction,omitempty"`
}

// WSResponse answers one WSRequest
type WSResponse struct {
	Type   string      `json:"type"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
	Status int         `json:"status,omitempty"`
}

// WSHandler runs the widget channel. Messages on one connection are handled in order.
type WSHandler struct {
	pipeline *dashboard.Pipeline
	cfg      config.DashboardConfig
	limiter  Limiter
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

// NewWSHandler creates a websocket handler
func NewWSHandler(p *dashboard.Pipeline, cfg config.DashboardConfig, limiter Limiter, m *metrics.Metrics, log *logger.Logger) *WSHandler {
	return &WSHandler{
		pipeline: p,
		cfg:      cfg,
		limiter:  limiter,
		metrics:  m,
		logger:   log,
	}
}

// Serve upgrades the connection and answers widget messages until the client leaves
// GET /ws
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer ws.Close()
	ws.SetReadLimit(4096)

	// Server shutdown cancels the request context
	stop := context.AfterFunc(r.Context(), func() {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
		ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		ws.Close()
	})
	defer stop()

	if err := ws.WriteJSON(WSResponse{Type: MsgSummary, Data: h.pipeline.Summary()}); err != nil {
		return
	}

	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.FromContext(r.Context(), h.logger).WithError(err).Debug("Websocket closed")
			}
			break
		}

		var req WSRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			if err := ws.WriteJSON(WSResponse{Type: MsgError, Error: "invalid message", Status: http.StatusBadRequest}); err != nil {
				break
			}
			continue
		}

		if err := ws.WriteJSON(h.Handle(r.Context(), req)); err != nil {
			break
		}
	}
}

// Handle answers one widget message
func (h *WSHandler) Handle(ctx context.Context, req WSRequest) WSResponse {
	msgType := strings.ToLower(strings.TrimSpace(req.Type))
	h.metrics.IncrementWSMessage(msgType)

	data, err := h.dispatch(ctx, msgType, req)
	if err != nil {
		return WSResponse{Type: msgType, Error: err.Error(), Status: StatusFor(err)}
	}
	return WSResponse{Type: msgType, Data: data}
}

func (h *WSHandler) dispatch(ctx context.Context, msgType string, req WSRequest) (interface{}, error) {
	switch msgType {
	case MsgSummary:
		return h.pipeline.Summary(), nil

	case MsgView:
		mode, err := contracts.ParseVisualMode(req.Mode)
		if err != nil {
			return nil, err
		}
		return h.pipeline.View(mode, req.District)

	case MsgFilter:
		return h.pipeline.FilterByGender(req.Gender)

	case MsgPredict:
		d, err := h.limiter.Allow(ctx)
		if err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
		if !d.Allowed {
			h.metrics.IncrementRateLimited()
			return nil, ErrRateLimited
		}
		pred, err := h.pipeline.Predict(req.Male, req.Female)
		if err != nil {
			h.metrics.IncrementPrediction(outcome(err))
			return nil, err
		}
		h.metrics.IncrementPrediction("ok")
		return pred, nil

	case MsgScenario:
		pct := h.cfg.DefaultReductionPct
		if req.Reduction != nil {
			pct = *req.Reduction
		}
		if err := dashboard.ValidateReduction(pct, h.cfg.ReductionStepPct); err != nil {
			return nil, err
		}
		return h.pipeline.Scenario(float64(pct)), nil

	default:
		return nil, fmt.Errorf("unknown message type %q: %w", req.Type, contracts.ErrInvalidInput)
	}
}
