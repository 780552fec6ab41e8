package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scambait/internal/config"
	"scambait/internal/domain/models"
	"scambait/pkg/logger"
)

func TestSinkDeliversReport(t *testing.T) {
	var received models.TerminalReport
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sink := NewHTTPReportSink(config.CallbackConfig{Enabled: true, URL: srv.URL}, logger.NewDefault())
	report := &models.TerminalReport{
		ReportID:       "rep-1",
		ConversationID: "conv-1",
		Category:       models.CategoryBank,
		EndReason:      "turn limit reached",
	}

	require.NoError(t, sink.Send(context.Background(), report))
	assert.Equal(t, "rep-1", received.ReportID)
	assert.Equal(t, models.CategoryBank, received.Category)
}

func TestSinkRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewHTTPReportSink(config.CallbackConfig{Enabled: true, URL: srv.URL, Retries: 2}, logger.NewDefault())

	require.NoError(t, sink.Send(context.Background(), &models.TerminalReport{ReportID: "rep-2"}))
	assert.Equal(t, int32(2), calls.Load())
}

func TestSinkGivesUpAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := NewHTTPReportSink(config.CallbackConfig{Enabled: true, URL: srv.URL, Retries: 1}, logger.NewDefault())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := sink.Send(ctx, &models.TerminalReport{ReportID: "rep-3"})
	assert.Error(t, err)
}
