package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/dto"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/models"
	"github.com/google/uuid"
)

const NoticeRecorded = "User details submitted successfully"

type WorkflowConfig struct {
	// Amount is sent as-is to the order endpoint, in rupees.
	Amount int64
	// Currency labels orders whose response omits one.
	Currency string
}

type RunRequest struct {
	SubmissionID uuid.UUID
	AccessToken  string
	Payload      dto.FormPayload
}

// Outcome is the result of one Run. Notice is what the user is shown; it
// is empty for the silent failure paths.
type Outcome struct {
	SubmissionID uuid.UUID
	Status       string
	Notice       string
	Order        *dto.PaymentOrder
	Row          *dto.SheetRow
	Err          error
}

func (o Outcome) Recorded() bool {
	return o.Status == models.SubmissionRecorded
}

// Workflow runs order -> checkout -> verify -> append for one submission.
// Nothing is retried; each Run creates exactly one order.
type Workflow struct {
	cfg      WorkflowConfig
	gateway  PaymentGateway
	appender RecordAppender
	journal  SubmissionJournal
	now      func() time.Time
}

func NewWorkflow(cfg WorkflowConfig, gateway PaymentGateway, appender RecordAppender, journal SubmissionJournal) *Workflow {
	return &Workflow{
		cfg:      cfg,
		gateway:  gateway,
		appender: appender,
		journal:  journal,
		now:      time.Now,
	}
}

func (w *Workflow) Run(ctx context.Context, req RunRequest) Outcome {
	log := slog.With("submission_id", req.SubmissionID.String())
	out := Outcome{SubmissionID: req.SubmissionID}

	order, err := w.gateway.CreateOrder(ctx, w.cfg.Amount, req.SubmissionID.String())
	if err != nil {
		log.Error("payment order creation failed", "action", "create_order", "error", err)
		out.Status = models.SubmissionOrderFailed
		out.Err = err
		return w.finish(ctx, out)
	}
	if order.Currency == "" {
		order.Currency = w.cfg.Currency
	}
	out.Order = order
	log = log.With("order_id", order.ID)

	// Complete finds the submission by order id, so an unrecorded order
	// could never receive its payment result.
	if err := w.journal.OrderCreated(ctx, req.SubmissionID, order); err != nil {
		log.Error("failed to journal order", "action", "create_order", "error", err)
		out.Status = models.SubmissionOrderFailed
		out.Err = fmt.Errorf("%w: order %s not recorded: %v", ErrOrderFailed, order.ID, err)
		return w.finish(ctx, out)
	}

	result, err := w.gateway.OpenPaymentUI(ctx, order)
	if err != nil || result == nil {
		log.Info("checkout ended without a payment result", "action", "checkout", "error", err)
		out.Status = models.SubmissionAbandoned
		out.Err = err
		return w.finish(ctx, out)
	}

	verified, err := w.gateway.VerifyPayment(ctx, result)
	if err != nil {
		log.Error("payment verification failed", "action", "verify_payment", "error", err)
		out.Status = models.SubmissionVerificationFailed
		out.Err = err
		return w.finish(ctx, out)
	}
	if !verified {
		log.Warn("payment verification reported no success", "action", "verify_payment", "payment_id", result.RazorpayPaymentID)
		out.Status = models.SubmissionVerificationFailed
		return w.finish(ctx, out)
	}

	row := dto.SheetRow{
		Name:      req.Payload.Name,
		Mobile:    req.Payload.Mobile,
		Age:       req.Payload.Age,
		Gender:    req.Payload.Gender,
		Address:   req.Payload.Address,
		Timestamp: w.now(),
	}
	out.Row = &row

	if err := w.appender.AppendRow(ctx, req.AccessToken, row); err != nil {
		status, body := 0, ""
		var appendErr *AppendError
		if errors.As(err, &appendErr) {
			status, body = appendErr.StatusCode, appendErr.Body
		}
		log.Error("sheet append failed", "action", "append_row", "status", status, "body", body, "error", err)
		out.Status = models.SubmissionAppendFailed
		out.Notice = fmt.Sprintf("Failed: %d", status)
		out.Err = err
		return w.finish(ctx, out)
	}

	log.Info("submission recorded", "action", "append_row")
	out.Status = models.SubmissionRecorded
	out.Notice = NoticeRecorded
	return w.finish(ctx, out)
}

// finish journals the outcome even if ctx already ended (abandonment).
func (w *Workflow) finish(ctx context.Context, out Outcome) Outcome {
	if err := w.journal.Finished(context.WithoutCancel(ctx), out); err != nil {
		slog.Error("failed to journal submission outcome",
			"submission_id", out.SubmissionID.String(), "status", out.Status, "error", err)
	}
	return out
}
