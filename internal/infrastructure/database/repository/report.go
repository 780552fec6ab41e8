package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"scambait/internal/domain/models"
	"scambait/internal/infrastructure/database"
	"scambait/pkg/logger"
)

// ReportRepository archives terminal conversation reports.
type ReportRepository struct {
	db     database.DBTX
	logger *logger.Logger
}

func NewReportRepository(db database.DBTX, log *logger.Logger) *ReportRepository {
	return &ReportRepository{
		db:     db,
		logger: log.WithComponent("report-repository"),
	}
}

const insertReportSQL = `
INSERT INTO reports (
	report_id, conversation_id, category, confidence, persona,
	turn_count, completeness, intelligence, end_reason, started_at, ended_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (report_id) DO NOTHING`

// Insert archives one terminal report. Intelligence is stored as a
// jsonb document; the columns cover the fields operators filter on.
func (r *ReportRepository) Insert(ctx context.Context, report *models.TerminalReport) error {
	intel, err := json.Marshal(report.Intelligence)
	if err != nil {
		return fmt.Errorf("failed to marshal intelligence: %w", err)
	}

	_, err = r.db.Exec(ctx, insertReportSQL,
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
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

const listReportsSQL = `
SELECT report_id, conversation_id, category, confidence, persona,
       turn_count, completeness, intelligence, end_reason, started_at, ended_at
FROM reports
ORDER BY ended_at DESC
LIMIT $1 OFFSET $2`

// List returns archived reports, newest first.
func (r *ReportRepository) List(ctx context.Context, limit, offset int) ([]models.TerminalReport, error) {
	rows, err := r.db.Query(ctx, listReportsSQL, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []models.TerminalReport
	for rows.Next() {
		var rep models.TerminalReport
		var category, persona string
		var intel []byte
		if err := rows.Scan(
			&rep.ReportID,
			&rep.ConversationID,
			&category,
			&rep.Confidence,
			&persona,
			&rep.TurnCount,
			&rep.Completeness,
			&intel,
			&rep.EndReason,
			&rep.StartedAt,
			&rep.EndedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		rep.Category = models.ScamCategory(category)
		rep.Persona = models.PersonaID(persona)
		if len(intel) > 0 {
			if err := json.Unmarshal(intel, &rep.Intelligence); err != nil {
				r.logger.Warn().Str("report_id", rep.ReportID).Err(err).Msg("corrupt intelligence document")
			}
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}
