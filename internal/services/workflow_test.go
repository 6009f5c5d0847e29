package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/dto"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type workflowFixture struct {
	workflow    *Workflow
	gateway     *mockGateway
	appender    *mockAppender
	submissions *mockSubmissionStore
	subID       uuid.UUID
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()

	f := &workflowFixture{
		gateway: &mockGateway{
			order:    &dto.PaymentOrder{ID: "o1", Amount: 35000, Currency: "INR"},
			verified: true,
		},
		appender:    &mockAppender{},
		submissions: newMockSubmissionStore(),
		subID:       uuid.New(),
	}
	require.NoError(t, f.submissions.Create(context.Background(), &models.Submission{
		ID:     f.subID,
		Status: models.SubmissionPending,
	}))

	f.workflow = NewWorkflow(WorkflowConfig{Amount: 350}, f.gateway, f.appender, NewStoreJournal(f.submissions))
	return f
}

func (f *workflowFixture) run() Outcome {
	return f.workflow.Run(context.Background(), RunRequest{
		SubmissionID: f.subID,
		AccessToken:  "T",
		Payload: dto.FormPayload{
			Name:    "A",
			Mobile:  "9999999999",
			Age:     "30",
			Gender:  "male",
			Address: "X",
		},
	})
}

func TestWorkflowRecordsRowAfterVerifiedPayment(t *testing.T) {
	f := newWorkflowFixture(t)
	appendedAt := time.Date(2025, 3, 1, 10, 30, 0, 123000000, time.UTC)
	f.workflow.now = func() time.Time { return appendedAt }

	out := f.run()

	require.Equal(t, models.SubmissionRecorded, out.Status)
	assert.Equal(t, NoticeRecorded, out.Notice)
	assert.Equal(t, int64(350), f.gateway.lastAmount)
	assert.Equal(t, "o1", f.gateway.lastResult.RazorpayOrderID)

	require.Len(t, f.appender.rows, 1)
	assert.Equal(t, []string{"T"}, f.appender.tokens)
	assert.Equal(t, []interface{}{"A", "9999999999", "30", "male", "X", "2025-03-01T10:30:00.123Z"},
		f.appender.rows[0].Values())

	assert.Equal(t, models.SubmissionRecorded, f.submissions.status(f.subID))
}

func TestWorkflowTimestampTakenAfterOrderCreation(t *testing.T) {
	f := newWorkflowFixture(t)

	var orderedAt time.Time
	f.gateway.OpenFunc = func(_ context.Context, order *dto.PaymentOrder) (*dto.PaymentResult, error) {
		orderedAt = time.Now()
		return &dto.PaymentResult{RazorpayOrderID: order.ID, RazorpayPaymentID: "pay", RazorpaySignature: "sig"}, nil
	}
	f.workflow.now = func() time.Time { return orderedAt.Add(time.Millisecond) }

	out := f.run()

	require.NotNil(t, out.Row)
	assert.True(t, out.Row.Timestamp.After(orderedAt))
}

func TestWorkflowOrderFailureSkipsCheckoutAndAppend(t *testing.T) {
	f := newWorkflowFixture(t)
	f.gateway.orderErr = ErrOrderFailed

	out := f.run()

	assert.Equal(t, models.SubmissionOrderFailed, out.Status)
	assert.ErrorIs(t, out.Err, ErrOrderFailed)
	assert.Empty(t, out.Notice)
	assert.Equal(t, 0, f.gateway.openCalls)
	assert.Equal(t, 0, f.gateway.verifyCalls)
	assert.Equal(t, 0, f.appender.calls())
	assert.Equal(t, models.SubmissionOrderFailed, f.submissions.status(f.subID))
}

func TestWorkflowAbandonedCheckoutEndsSilently(t *testing.T) {
	f := newWorkflowFixture(t)
	f.gateway.OpenFunc = func(context.Context, *dto.PaymentOrder) (*dto.PaymentResult, error) {
		return nil, nil
	}

	out := f.run()

	assert.Equal(t, models.SubmissionAbandoned, out.Status)
	assert.Empty(t, out.Notice)
	assert.Equal(t, 0, f.gateway.verifyCalls)
	assert.Equal(t, 0, f.appender.calls())
}

func TestWorkflowVerificationWithoutMessageSkipsAppend(t *testing.T) {
	f := newWorkflowFixture(t)
	f.gateway.verified = false

	out := f.run()

	assert.Equal(t, models.SubmissionVerificationFailed, out.Status)
	assert.Empty(t, out.Notice)
	assert.NoError(t, out.Err)
	assert.Equal(t, 0, f.appender.calls())
}

func TestWorkflowVerificationErrorSkipsAppend(t *testing.T) {
	f := newWorkflowFixture(t)
	f.gateway.verifyErr = ErrVerifyFailed

	out := f.run()

	assert.Equal(t, models.SubmissionVerificationFailed, out.Status)
	assert.ErrorIs(t, out.Err, ErrVerifyFailed)
	assert.Equal(t, 0, f.appender.calls())
}

func TestWorkflowAppendFailureReportsStatus(t *testing.T) {
	f := newWorkflowFixture(t)
	f.appender.err = &AppendError{StatusCode: 403, Body: `{"error":{"code":403}}`, Err: errMockUpstream}

	out := f.run()

	assert.Equal(t, models.SubmissionAppendFailed, out.Status)
	assert.Equal(t, "Failed: 403", out.Notice)
	assert.True(t, errors.Is(out.Err, errMockUpstream))
	assert.Equal(t, 1, f.appender.calls())
	assert.Equal(t, models.SubmissionAppendFailed, f.submissions.status(f.subID))
}

func TestWorkflowCreatesOneOrderPerRun(t *testing.T) {
	f := newWorkflowFixture(t)
	f.appender.err = &AppendError{Err: errMockUpstream}

	f.run()
	f.run()

	assert.Equal(t, 2, f.gateway.createCalls)
	assert.Equal(t, 2, f.appender.calls())
}

func TestWorkflowLabelsOrderWithoutCurrency(t *testing.T) {
	f := newWorkflowFixture(t)
	f.gateway.order = &dto.PaymentOrder{ID: "o1", Amount: 35000}
	f.workflow.cfg.Currency = "INR"

	out := f.run()

	require.NotNil(t, out.Order)
	assert.Equal(t, "INR", out.Order.Currency)
}

type failingJournal struct {
	finished []Outcome
}

func (j *failingJournal) OrderCreated(_ context.Context, _ uuid.UUID, _ *dto.PaymentOrder) error {
	return errMockUpstream
}

func (j *failingJournal) Finished(_ context.Context, out Outcome) error {
	j.finished = append(j.finished, out)
	return nil
}

func TestWorkflowUnrecordedOrderNeverOpensCheckout(t *testing.T) {
	f := newWorkflowFixture(t)
	journal := &failingJournal{}
	f.workflow.journal = journal

	out := f.run()

	assert.Equal(t, models.SubmissionOrderFailed, out.Status)
	assert.ErrorIs(t, out.Err, ErrOrderFailed)
	assert.Empty(t, out.Notice)
	assert.Equal(t, 1, f.gateway.createCalls)
	assert.Equal(t, 0, f.gateway.openCalls)
	assert.Equal(t, 0, f.appender.calls())
	require.Len(t, journal.finished, 1)
	assert.Equal(t, models.SubmissionOrderFailed, journal.finished[0].Status)
}
