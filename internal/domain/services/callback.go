package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"scambait/internal/config"
	"scambait/internal/domain/models"
	"scambait/pkg/logger"
)

// ReportSink delivers terminal reports to downstream consumers.
type ReportSink interface {
	Send(ctx context.Context, report *models.TerminalReport) error
}

// HTTPReportSink POSTs terminal reports to a configured callback URL
// with bounded retries. Delivery is best-effort; a report that cannot
// be delivered is logged and dropped.
type HTTPReportSink struct {
	client *http.Client
	cfg    config.CallbackConfig
	logger *logger.Logger
}

func NewHTTPReportSink(cfg config.CallbackConfig, log *logger.Logger) *HTTPReportSink {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPReportSink{
		client: &http.Client{Timeout: timeout},
		cfg:    cfg,
		logger: log.WithComponent("report-sink"),
	}
}

// Send posts the report, retrying on failure with a short backoff.
func (s *HTTPReportSink) Send(ctx context.Context, report *models.TerminalReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= s.cfg.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			s.logger.Info().
				Str("report_id", report.ReportID).
				Str("conversation_id", report.ConversationID).
				Msg("report delivered")
			return nil
		}
		lastErr = fmt.Errorf("callback returned %d", resp.StatusCode)
	}

	return fmt.Errorf("report delivery failed after %d attempts: %w", s.cfg.Retries+1, lastErr)
}
