// Package oraclehttp serves the discriminator oracle over HTTP
// (spec.md §4.12, SPEC_FULL.md §6.7, action C14): a single
// POST /v1/predict endpoint, authenticated with an HS256 JWT bearer
// token, that scores the submitted layout pairs and returns the
// model's judgment for each. This is the only API endpoint (router.go
// also serves an unauthenticated GET /healthz liveness probe) — the
// excluded reporting UI is a separate, un-built concern.
package oraclehttp

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/5gon12eder/graphstudy-go/internal/idfp"
	"github.com/5gon12eder/graphstudy-go/internal/oracle"
)

// PredictHandler answers POST /v1/predict with an Oracle's judgments.
type PredictHandler struct {
	oracle *oracle.Oracle
}

// NewPredictHandler wraps o as a gin handler.
func NewPredictHandler(o *oracle.Oracle) *PredictHandler {
	return &PredictHandler{oracle: o}
}

type predictPairRequest struct {
	LHS string `json:"lhs" binding:"required"`
	RHS string `json:"rhs" binding:"required"`
}

type predictRequest struct {
	Pairs         []predictPairRequest `json:"pairs" binding:"required,min=1"`
	Bidirectional bool                 `json:"bidirectional"`
}

type predictResultResponse struct {
	Forward  float64  `json:"forward"`
	Backward *float64 `json:"backward,omitempty"`
}

type predictResponse struct {
	Results []predictResultResponse `json:"results"`
}

// Predict handles POST /v1/predict.
func (h *PredictHandler) Predict(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	pairs := make([]oracle.Pair, len(req.Pairs))
	for i, p := range req.Pairs {
		lhs, err := idfp.Parse(p.LHS)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_layout_id", err)
			return
		}
		rhs, err := idfp.Parse(p.RHS)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_layout_id", err)
			return
		}
		pairs[i] = oracle.Pair{LHS: lhs, RHS: rhs}
	}

	forward, backward, err := h.oracle.Predict(c.Request.Context(), pairs, req.Bidirectional)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "predict_failed", err)
		return
	}

	results := make([]predictResultResponse, len(pairs))
	for i := range pairs {
		results[i] = predictResultResponse{Forward: forward[i]}
		if req.Bidirectional {
			b := backward[i]
			results[i].Backward = &b
		}
	}
	RespondOK(c, predictResponse{Results: results})
}
