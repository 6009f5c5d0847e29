package services

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/dto"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/models"
	"github.com/google/uuid"
)

// StoreJournal writes workflow progress onto the submission row.
type StoreJournal struct {
	submissions SubmissionStore
}

func NewStoreJournal(submissions SubmissionStore) *StoreJournal {
	return &StoreJournal{submissions: submissions}
}

func (j *StoreJournal) OrderCreated(ctx context.Context, submissionID uuid.UUID, order *dto.PaymentOrder) error {
	return j.submissions.Update(ctx, submissionID, map[string]interface{}{
		"order_id": order.ID,
		"amount":   order.Amount,
		"currency": order.Currency,
		"status":   models.SubmissionAwaitingPayment,
	})
}

func (j *StoreJournal) Finished(ctx context.Context, out Outcome) error {
	fields := map[string]interface{}{
		"status": out.Status,
		"notice": out.Notice,
	}
	if out.Recorded() {
		recordedAt := time.Now()
		if out.Row != nil {
			recordedAt = out.Row.Timestamp
		}
		fields["recorded_at"] = recordedAt
	}
	return j.submissions.Update(ctx, out.SubmissionID, fields)
}
