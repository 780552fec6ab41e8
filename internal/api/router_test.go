package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scambait/internal/api/handlers"
	"scambait/internal/config"
	"scambait/internal/domain/models"
	"scambait/internal/domain/services"
	"scambait/internal/infrastructure/cache"
	"scambait/pkg/logger"
)

const testAPIKey = "test-api-key"

func newTestServer(t *testing.T) (http.Handler, *cache.RedisCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	log := logger.NewDefault()
	store := cache.NewRedisWithClient(client, "scambait:", log)

	cfg := config.Config{}
	cfg.Auth.APIKey = testAPIKey
	cfg.Detection = config.DetectionConfig{
		DecisionThreshold:  70,
		RuleShortCircuit:   95,
		ShortMessageRunes:  80,
		ModelBandLow:       40,
		ModelBandHigh:      90,
		ValidatorMaxAdjust: 10,
		DatasetBoostFactor: 0.5,
		FuzzyMatchRatio:    0.8,
	}
	cfg.Engage = config.EngageConfig{MaxTurns: 15, HistoryWindow: 6, EarlyExitScore: 90, EarlyExitTurns: 6}
	cfg.Session = config.SessionConfig{TTL: time.Hour, LockTTL: 10 * time.Second, LockWait: time.Second}

	lib := services.NewPatternLibrary()
	checker := services.NewURLChecker(lib, log)
	detector := services.NewDetector(lib, checker, nil, cfg.Detection, log)
	extractor := services.NewExtractor(lib, checker, log)
	engine := services.NewEngine(nil, cfg.Engage, log)
	orchestrator := services.NewOrchestrator(
		detector, extractor, engine, store,
		nil, nil, cfg.Session, cfg.Callback, log,
	)

	h := handlers.NewHandlers(handlers.Dependencies{
		Orchestrator: orchestrator,
		Detector:     detector,
		Extractor:    extractor,
		URLChecker:   checker,
		Cache:        store,
		Logger:       log,
	})
	return NewRouter(cfg, h, store, log).Setup(), store
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+testAPIKey)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpointIsPublic(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRequiresKey(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/detect", map[string]string{"message": "hello"}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDetectEndpoint(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/detect",
		map[string]string{"message": "Congratulations! You won the lottery lucky draw. Pay registration fee to claim your prize money immediately"}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.DetectionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.IsScam)
	assert.Equal(t, models.CategoryLottery, result.Category)
}

func TestDetectEndpointRejectsEmptyMessage(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/detect", map[string]string{"message": "  "}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtractEndpoint(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/extract",
		map[string]string{"message": "Send payment to scammer@upi or call 9876543210"}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var delta models.IntelligenceDelta
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &delta))
	assert.Equal(t, []string{"scammer@upi"}, delta.UPIIDs)
	assert.Equal(t, []string{"+919876543210"}, delta.PhoneNumbers)
}

func TestURLCheckEndpoint(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/url/check",
		map[string]string{"url": "http://phishing-site.com/login"}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var intel models.URLIntel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &intel))
	assert.True(t, intel.KnownPhishing)
	assert.Equal(t, 100, intel.Risk)
}

func TestTurnEndpointRoundTrip(t *testing.T) {
	handler, store := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/honeypot/turn",
		models.TurnRequest{Message: "You won the lottery! Pay the registration fee to scammer@upi to claim your prize"}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.TurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.ScamDetected)
	assert.NotEmpty(t, resp.ConversationID)
	assert.NotEmpty(t, resp.Reply)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/honeypot/sessions/"+resp.ConversationID, nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	session, err := store.GetSession(context.Background(), resp.ConversationID)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, 1, session.TurnCount)
}

func TestTurnEndpointRejectsBlankMessage(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/honeypot/turn",
		models.TurnRequest{Message: "   "}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionLookupMissing(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/honeypot/sessions/no-such-id", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
