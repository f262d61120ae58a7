package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Report excerpt caps. Excerpts are plaintext the reporter chooses to
// reveal from their own decrypted view; the server never has the keys
// to verify them against the stored ciphertext.
const (
	MaxReportExcerpts  = 10
	MaxExcerptLen      = 500
	MaxReportReasonLen = 1000
)

// ThreadReport is a reporter-filed complaint about a thread.
type ThreadReport struct {
	ID         uuid.UUID `json:"id"`
	ThreadID   uuid.UUID `json:"thread_id"`
	ReporterID uuid.UUID `json:"reporter_id"`
	ReportedID uuid.UUID `json:"reported_id"`
	Reason     string    `json:"reason"`
	Excerpts   []string  `json:"excerpts,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate enforces excerpt count and length caps.
func (r *ThreadReport) Validate() error {
	if len(r.Reason) > MaxReportReasonLen {
		return fmt.Errorf("reason exceeds %d characters", MaxReportReasonLen)
	}
	if len(r.Excerpts) > MaxReportExcerpts {
		return fmt.Errorf("at most %d excerpts allowed", MaxReportExcerpts)
	}
	for i, e := range r.Excerpts {
		if len([]rune(e)) > MaxExcerptLen {
			return fmt.Errorf("excerpt %d exceeds %d characters", i, MaxExcerptLen)
		}
	}
	return nil
}
