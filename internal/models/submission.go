package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	SubmissionPending            = "pending"
	SubmissionOrderFailed        = "order_failed"
	SubmissionAwaitingPayment    = "awaiting_payment"
	SubmissionAbandoned          = "abandoned"
	SubmissionVerificationFailed = "verification_failed"
	SubmissionRecorded           = "recorded"
	SubmissionAppendFailed       = "append_failed"
)

// Submission is the audit trail of one submit: one order, at most one row.
type Submission struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SessionID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"-"`
	Payload    datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	OrderID    string         `gorm:"size:64;index" json:"order_id,omitempty"`
	Amount     int64          `json:"amount,omitempty"`
	Currency   string         `gorm:"size:10" json:"currency,omitempty"`
	Status     string         `gorm:"size:30;not null;default:'pending';index" json:"status"`
	Notice     string         `gorm:"type:text" json:"notice,omitempty"`
	RecordedAt *time.Time     `json:"recorded_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Terminal reports whether the submission has finished its workflow.
func (s *Submission) Terminal() bool {
	switch s.Status {
	case SubmissionPending, SubmissionAwaitingPayment:
		return false
	}
	return true
}
