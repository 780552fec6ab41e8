package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"

	"scambait/internal/domain/models"
	"scambait/pkg/logger"
)

func sampleReport() *models.TerminalReport {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.TerminalReport{
		ReportID:       "rep-1",
		ConversationID: "conv-1",
		Category:       models.CategoryLottery,
		Confidence:     95,
		Persona:        models.PersonaYoungEager,
		TurnCount:      12,
		Completeness:   70,
		Intelligence: models.Intelligence{
			UPIIDs:       []string{"scammer@upi"},
			PhoneNumbers: []string{"+919876543210"},
		},
		EndReason: "extraction goals met",
		StartedAt: now.Add(-time.Hour),
		EndedAt:   now,
	}
}

func TestInsertReport(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewReportRepository(mock, logger.NewDefault())
	report := sampleReport()

	intel, _ := json.Marshal(report.Intelligence)
	mock.ExpectExec("INSERT INTO reports").
		WithArgs(
			report.ReportID,
			report.ConversationID,
			string(report.Category),
			report.Confidence,
			string(report.Persona),
			report.TurnCount,
			report.Completeness,
			intel,
			report.EndReason,
			report.StartedAt,
			report.EndedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Insert(context.Background(), report); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsertDuplicateIsSilent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewReportRepository(mock, logger.NewDefault())

	// ON CONFLICT DO NOTHING reports zero rows affected
	mock.ExpectExec("INSERT INTO reports").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	if err := repo.Insert(context.Background(), sampleReport()); err != nil {
		t.Fatalf("duplicate insert must not error: %v", err)
	}
}

func TestListReports(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewReportRepository(mock, logger.NewDefault())
	want := sampleReport()
	intel, _ := json.Marshal(want.Intelligence)

	rows := pgxmock.NewRows([]string{
		"report_id", "conversation_id", "category", "confidence", "persona",
		"turn_count", "completeness", "intelligence", "end_reason", "started_at", "ended_at",
	}).AddRow(
		want.ReportID, want.ConversationID, string(want.Category), want.Confidence,
		string(want.Persona), want.TurnCount, want.Completeness, intel,
		want.EndReason, want.StartedAt, want.EndedAt,
	)
	mock.ExpectQuery("SELECT (.+) FROM reports").
		WithArgs(10, 0).
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 report, got %d", len(got))
	}
	if got[0].ReportID != want.ReportID {
		t.Errorf("report_id = %q, want %q", got[0].ReportID, want.ReportID)
	}
	if got[0].Category != models.CategoryLottery {
		t.Errorf("category = %q, want %q", got[0].Category, models.CategoryLottery)
	}
	if len(got[0].Intelligence.UPIIDs) != 1 || got[0].Intelligence.UPIIDs[0] != "scammer@upi" {
		t.Errorf("intelligence not decoded: %+v", got[0].Intelligence)
	}
}
