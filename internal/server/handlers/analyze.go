package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/prooflens/prooflens/internal/analysis"
	"github.com/prooflens/prooflens/internal/analysis/openai"
	apperrors "github.com/prooflens/prooflens/internal/errors"
	"github.com/prooflens/prooflens/internal/metrics"
)

// maxBodyBytes caps the request body read. Generous relative to the 4000
// character text limit so the validator, not the reader, produces the error.
const maxBodyBytes = 1 << 20

// GrammarAnalyzer is the handler's view of the analysis service.
type GrammarAnalyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (analysis.Result, error)
}

// AnalyzeHandler serves the grammar-check route: validate, call upstream,
// normalize, respond. Method and quota gates run as middleware before it.
type AnalyzeHandler struct {
	analyzer GrammarAnalyzer
}

// NewAnalyzeHandler creates the handler.
func NewAnalyzeHandler(analyzer GrammarAnalyzer) *AnalyzeHandler {
	return &AnalyzeHandler{analyzer: analyzer}
}

func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		apperrors.RespondWithError(w, r, apperrors.NewMalformedInput(`Provide body { "text": string }`))
		return
	}

	req, err := analysis.ParseRequest(body)
	if err != nil {
		switch {
		case errors.Is(err, analysis.ErrTextTooLong):
			apperrors.RespondWithError(w, r, apperrors.NewPayloadTooLarge("Text too long (max 4000 chars)"))
		default:
			apperrors.RespondWithError(w, r, apperrors.NewMalformedInput(`Provide body { "text": string }`))
		}
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), req)
	if err != nil {
		h.respondUpstreamFailure(w, r, err)
		return
	}

	metrics.RecordUpstreamResult("ok")

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(result)
}

// respondUpstreamFailure relays a non-success upstream status and error
// payload verbatim; transport failures map to a plain 500.
func (h *AnalyzeHandler) respondUpstreamFailure(w http.ResponseWriter, r *http.Request, err error) {
	var ue *openai.UpstreamError
	if errors.As(err, &ue) {
		if ue.StatusCode >= http.StatusInternalServerError {
			metrics.RecordUpstreamResult("upstream_5xx")
		} else {
			metrics.RecordUpstreamResult("upstream_4xx")
		}

		if payload := ue.ErrorValue(); payload != nil {
			apperrors.RespondWithErrorValue(w, r, ue.StatusCode, payload)
			return
		}
		apperrors.RespondWithError(w, r, apperrors.NewUpstream(ue.StatusCode, "upstream error", err))
		return
	}

	metrics.RecordUpstreamResult("transport")
	apperrors.RespondWithError(w, r, apperrors.WrapInternal(err, "analysis failed"))
}
