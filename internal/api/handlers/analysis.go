package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"scambait/internal/domain/services"
	"scambait/pkg/logger"
)

// AnalysisHandler exposes the detection, extraction and URL-check
// services as standalone endpoints for tooling and manual triage.
type AnalysisHandler struct {
	detector  *services.Detector
	extractor *services.Extractor
	checker   *services.URLChecker
	logger    *logger.Logger
}

func NewAnalysisHandler(d *services.Detector, e *services.Extractor, c *services.URLChecker, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		detector:  d,
		extractor: e,
		checker:   c,
		logger:    log.WithComponent("analysis-handler"),
	}
}

type messageRequest struct {
	Message string `json:"message"`
}

// Detect handles POST /api/v1/detect
func (h *AnalysisHandler) Detect(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	respondJSON(w, http.StatusOK, h.detector.Detect(r.Context(), req.Message, nil))
}

// Extract handles POST /api/v1/extract
func (h *AnalysisHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	respondJSON(w, http.StatusOK, h.extractor.Extract(r.Context(), req.Message))
}

type urlCheckRequest struct {
	URL string `json:"url"`
}

// CheckURL handles POST /api/v1/url/check
func (h *AnalysisHandler) CheckURL(w http.ResponseWriter, r *http.Request) {
	var req urlCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	respondJSON(w, http.StatusOK, h.checker.Check(r.Context(), req.URL))
}
