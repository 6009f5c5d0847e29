package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/dto"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/models"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/store"
	"github.com/google/uuid"
)

var (
	ErrValidation         = errors.New("invalid form fields")
	ErrSubmissionInFlight = errors.New("a submission is already awaiting payment")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrOrderMismatch      = errors.New("payment result does not match order")
)

var mobilePattern = regexp.MustCompile(`^\d{10}$`)

var genders = map[string]bool{"male": true, "female": true, "other": true}

// ValidationError names the first offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// CredentialSource resolves the signed-in profile and Google token of a session.
type CredentialSource interface {
	Credentials(ctx context.Context, sessionID uuid.UUID) (*dto.UserProfile, string, error)
}

type CheckoutConfig struct {
	KeyID       string
	Name        string
	Description string
	ThemeColor  string
	// Timeout bounds the whole workflow, checkout included.
	Timeout time.Duration
}

type inflightRun struct {
	submissionID uuid.UUID
	done         chan struct{}
	outcome      Outcome
}

// FormService owns the per-session form draft and drives submissions.
type FormService struct {
	credentials CredentialSource
	drafts      DraftStore
	submissions SubmissionStore
	workflow    *Workflow
	broker      *CheckoutBroker
	checkout    CheckoutConfig

	mu       sync.Mutex
	inflight map[uuid.UUID]*inflightRun
}

func NewFormService(
	credentials CredentialSource,
	drafts DraftStore,
	submissions SubmissionStore,
	workflow *Workflow,
	broker *CheckoutBroker,
	checkout CheckoutConfig,
) *FormService {
	if checkout.Timeout == 0 {
		checkout.Timeout = 15 * time.Minute
	}
	return &FormService{
		credentials: credentials,
		drafts:      drafts,
		submissions: submissions,
		workflow:    workflow,
		broker:      broker,
		checkout:    checkout,
		inflight:    make(map[uuid.UUID]*inflightRun),
	}
}

func (s *FormService) Load(ctx context.Context, sessionID uuid.UUID) (*dto.FormView, error) {
	profile, token, err := s.credentials.Credentials(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	draft, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(sessionID, profile, token, draft), nil
}

// Update validates and stores the mutable fields.
func (s *FormService) Update(ctx context.Context, sessionID uuid.UUID, fields dto.FormFields) (*dto.FormView, error) {
	profile, token, err := s.credentials.Credentials(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	fields = normalizeFields(fields)
	if err := validateFields(fields); err != nil {
		return nil, err
	}

	draft := &models.FormDraft{
		SessionID: sessionID,
		Mobile:    fields.Mobile,
		Age:       fields.Age,
		Gender:    fields.Gender,
		Address:   fields.Address,
	}
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return s.view(sessionID, profile, token, draft), nil
}

// Reset blanks mobile, age, gender and address without signing out.
func (s *FormService) Reset(ctx context.Context, sessionID uuid.UUID) (*dto.FormView, error) {
	profile, token, err := s.credentials.Credentials(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.drafts.ClearFields(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.view(sessionID, profile, token, &models.FormDraft{SessionID: sessionID}), nil
}

// Submit starts one workflow run and returns once the checkout options are
// ready, or once the run ended before reaching checkout.
func (s *FormService) Submit(ctx context.Context, sessionID uuid.UUID, fields *dto.FormFields) (*dto.SubmitResponse, error) {
	if fields != nil {
		if _, err := s.Update(ctx, sessionID, *fields); err != nil {
			return nil, err
		}
	}

	profile, token, err := s.credentials.Credentials(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	draft, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	current := dto.FormFields{Mobile: draft.Mobile, Age: draft.Age, Gender: draft.Gender, Address: draft.Address}
	if err := validateFields(current); err != nil {
		return nil, err
	}
	payload := dto.FormPayload{
		Name:    profile.Name,
		Mobile:  current.Mobile,
		Age:     current.Age,
		Gender:  current.Gender,
		Address: current.Address,
	}

	run := &inflightRun{submissionID: uuid.New(), done: make(chan struct{})}
	if err := s.reserve(sessionID, run); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		s.release(sessionID, run)
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	sub := &models.Submission{
		ID:        run.submissionID,
		SessionID: sessionID,
		Payload:   raw,
		Status:    models.SubmissionPending,
	}
	if err := s.submissions.Create(ctx, sub); err != nil {
		s.release(sessionID, run)
		return nil, err
	}

	receipt := run.submissionID.String()
	presented := s.broker.Expect(receipt)

	go func() {
		runCtx, cancel := context.WithTimeout(context.Background(), s.checkout.Timeout)
		defer cancel()

		out := s.workflow.Run(runCtx, RunRequest{
			SubmissionID: run.submissionID,
			AccessToken:  token,
			Payload:      payload,
		})
		s.complete(sessionID, run, out)
	}()

	select {
	case order := <-presented:
		return &dto.SubmitResponse{
			SubmissionID: receipt,
			Status:       models.SubmissionAwaitingPayment,
			Checkout:     s.checkoutOptions(order, profile, payload),
		}, nil
	case <-run.done:
		if run.outcome.Status == models.SubmissionOrderFailed {
			return nil, run.outcome.Err
		}
		return &dto.SubmitResponse{
			SubmissionID: receipt,
			Status:       run.outcome.Status,
			Notice:       run.outcome.Notice,
		}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Complete passes the widget result to the waiting workflow and blocks until
// the run finishes or ctx ends.
func (s *FormService) Complete(ctx context.Context, sessionID uuid.UUID, orderID string, result dto.PaymentResult) (*dto.CompleteResponse, error) {
	if result.RazorpayOrderID == "" {
		result.RazorpayOrderID = orderID
	}
	if result.RazorpayOrderID != orderID {
		return nil, ErrOrderMismatch
	}

	sub, err := s.submissions.FindByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	if sub.SessionID != sessionID {
		return nil, ErrSubmissionNotFound
	}

	s.mu.Lock()
	run := s.inflight[sessionID]
	s.mu.Unlock()

	if err := s.broker.Deliver(orderID, &result); err != nil {
		if sub.Terminal() {
			return s.statusResponse(sub), nil
		}
		return nil, err
	}

	if run == nil || run.submissionID != sub.ID {
		return s.statusResponse(sub), nil
	}

	select {
	case <-run.done:
	case <-ctx.Done():
		return &dto.CompleteResponse{SubmissionID: sub.ID.String(), Status: models.SubmissionAwaitingPayment}, nil
	}

	resp := &dto.CompleteResponse{
		SubmissionID: sub.ID.String(),
		Status:       run.outcome.Status,
		Notice:       run.outcome.Notice,
	}
	if run.outcome.Recorded() {
		if view, err := s.Load(ctx, sessionID); err == nil {
			resp.Form = view
		}
	}
	return resp, nil
}

func (s *FormService) Submission(ctx context.Context, sessionID, submissionID uuid.UUID) (*models.Submission, error) {
	sub, err := s.submissions.Get(ctx, submissionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	if sub.SessionID != sessionID {
		return nil, ErrSubmissionNotFound
	}
	return sub, nil
}

// Unreconciled lists submissions whose order may exist without a recorded row.
func (s *FormService) Unreconciled(ctx context.Context, limit int) ([]models.Submission, error) {
	return s.submissions.ListByStatus(ctx, []string{
		models.SubmissionAwaitingPayment,
		models.SubmissionAbandoned,
		models.SubmissionVerificationFailed,
		models.SubmissionAppendFailed,
	}, limit)
}

func (s *FormService) reserve(sessionID uuid.UUID, run *inflightRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[sessionID]; busy {
		return ErrSubmissionInFlight
	}
	s.inflight[sessionID] = run
	return nil
}

func (s *FormService) release(sessionID uuid.UUID, run *inflightRun) {
	s.mu.Lock()
	if s.inflight[sessionID] == run {
		delete(s.inflight, sessionID)
	}
	s.mu.Unlock()
}

func (s *FormService) complete(sessionID uuid.UUID, run *inflightRun, out Outcome) {
	if out.Recorded() {
		if err := s.drafts.ClearFields(context.Background(), sessionID); err != nil {
			slog.Error("failed to clear form after submission",
				"session_id", sessionID.String(), "submission_id", run.submissionID.String(), "error", err)
		}
	}

	s.broker.Forget(run.submissionID.String())
	run.outcome = out
	s.release(sessionID, run)
	close(run.done)
}

func (s *FormService) busy(sessionID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[sessionID]
	return ok
}

func (s *FormService) view(sessionID uuid.UUID, profile *dto.UserProfile, token string, draft *models.FormDraft) *dto.FormView {
	return &dto.FormView{
		Name:      profile.Name,
		Email:     profile.Email,
		Mobile:    draft.Mobile,
		Age:       draft.Age,
		Gender:    draft.Gender,
		Address:   draft.Address,
		CanSubmit: token != "" && !s.busy(sessionID),
	}
}

func (s *FormService) checkoutOptions(order dto.PaymentOrder, profile *dto.UserProfile, payload dto.FormPayload) *dto.CheckoutOptions {
	return &dto.CheckoutOptions{
		Key:         s.checkout.KeyID,
		Amount:      order.Amount,
		Currency:    order.Currency,
		Name:        s.checkout.Name,
		Description: s.checkout.Description,
		OrderID:     order.ID,
		Prefill: &dto.CheckoutUser{
			Name:    profile.Name,
			Email:   profile.Email,
			Contact: payload.Mobile,
		},
		Theme: dto.CheckoutTheme{Color: s.checkout.ThemeColor},
	}
}

func (s *FormService) statusResponse(sub *models.Submission) *dto.CompleteResponse {
	return &dto.CompleteResponse{
		SubmissionID: sub.ID.String(),
		Status:       sub.Status,
		Notice:       sub.Notice,
	}
}

func normalizeFields(f dto.FormFields) dto.FormFields {
	return dto.FormFields{
		Mobile:  strings.TrimSpace(f.Mobile),
		Age:     strings.TrimSpace(f.Age),
		Gender:  strings.ToLower(strings.TrimSpace(f.Gender)),
		Address: strings.TrimSpace(f.Address),
	}
}

// validateFields mirrors the form's required/pattern constraints.
func validateFields(f dto.FormFields) error {
	if !mobilePattern.MatchString(f.Mobile) {
		return &ValidationError{Field: "mobile", Reason: "must be exactly 10 digits"}
	}
	if age, err := strconv.Atoi(f.Age); err != nil || age <= 0 || age > 150 {
		return &ValidationError{Field: "age", Reason: "must be a positive whole number"}
	}
	if !genders[f.Gender] {
		return &ValidationError{Field: "gender", Reason: "must be male, female or other"}
	}
	if f.Address == "" {
		return &ValidationError{Field: "address", Reason: "is required"}
	}
	return nil
}
