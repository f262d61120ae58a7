package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionPublishKey    AuditAction = "PUBLISH_KEY"
	AuditActionOpenThread    AuditAction = "OPEN_THREAD"
	AuditActionSendMessage   AuditAction = "SEND_MESSAGE"
	AuditActionPayRequest    AuditAction = "PAY_REQUEST"
	AuditActionCancelRequest AuditAction = "CANCEL_REQUEST"
	AuditActionIssueCode     AuditAction = "ISSUE_CODE"
	AuditActionReportThread  AuditAction = "REPORT_THREAD"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	UserID       *uuid.UUID  `json:"user_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
