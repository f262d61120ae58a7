package postgres

import (
	"context"
	"fmt"

	"remitchat/internal/core/domain"
)

// ReportRepo implements ports.ReportRepository.
type ReportRepo struct {
	pool Pool
}

// NewReportRepo creates a new ReportRepo.
func NewReportRepo(pool Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

// Create inserts a thread abuse report. Excerpts are stored as a text
// array; they are reporter-revealed plaintext, never decrypted server
// material.
func (r *ReportRepo) Create(ctx context.Context, report *domain.ThreadReport) error {
	query := `INSERT INTO thread_reports (id, thread_id, reporter_id, reported_id, reason, excerpts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		report.ID, report.ThreadID, report.ReporterID, report.ReportedID,
		report.Reason, report.Excerpts, report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert thread report: %w", err)
	}
	return nil
}
