package handlers

import (
	"encoding/json"
	"net/http"

	"scambait/internal/domain/services"
	"scambait/internal/infrastructure/cache"
	"scambait/internal/infrastructure/database/repository"
	"scambait/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health   *HealthHandler
	Honeypot *HoneypotHandler
	Analysis *AnalysisHandler
	Reports  *ReportsHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Orchestrator *services.Orchestrator
	Detector     *services.Detector
	Extractor    *services.Extractor
	URLChecker   *services.URLChecker
	Cache        *cache.RedisCache
	Reports      *repository.ReportRepository
	Logger       *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Cache, deps.Reports, deps.Logger),
		Honeypot: NewHoneypotHandler(deps.Orchestrator, deps.Cache, deps.Logger),
		Analysis: NewAnalysisHandler(deps.Detector, deps.Extractor, deps.URLChecker, deps.Logger),
		Reports:  NewReportsHandler(deps.Reports, deps.Logger),
	}
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError writes a JSON error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
