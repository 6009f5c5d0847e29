package services

import (
	"context"
	"errors"
	"sync"

	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/dto"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/models"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/store"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var errMockUpstream = errors.New("mock upstream error")

type mockSessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.Session
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[uuid.UUID]*models.Session)}
}

func (m *mockSessionStore) Create(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *mockSessionStore) Get(_ context.Context, id uuid.UUID) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockSessionStore) SaveProfile(_ context.Context, id uuid.UUID, profile datatypes.JSON) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return store.ErrNotFound
	}
	s.GoogleUser = profile
	return nil
}

func (m *mockSessionStore) Clear(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return store.ErrNotFound
	}
	s.GoogleUser = nil
	s.GoogleAccessToken = ""
	return nil
}

type mockDraftStore struct {
	mu     sync.Mutex
	drafts map[uuid.UUID]models.FormDraft
}

func newMockDraftStore() *mockDraftStore {
	return &mockDraftStore{drafts: make(map[uuid.UUID]models.FormDraft)}
}

func (m *mockDraftStore) Get(_ context.Context, sessionID uuid.UUID) (*models.FormDraft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[sessionID]
	if !ok {
		return &models.FormDraft{SessionID: sessionID}, nil
	}
	return &d, nil
}

func (m *mockDraftStore) Save(_ context.Context, d *models.FormDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[d.SessionID] = *d
	return nil
}

func (m *mockDraftStore) ClearFields(ctx context.Context, sessionID uuid.UUID) error {
	return m.Save(ctx, &models.FormDraft{SessionID: sessionID})
}

type mockSubmissionStore struct {
	mu   sync.Mutex
	subs map[uuid.UUID]*models.Submission
	// orderErr fails updates that record an order id.
	orderErr error
}

func newMockSubmissionStore() *mockSubmissionStore {
	return &mockSubmissionStore{subs: make(map[uuid.UUID]*models.Submission)}
}

func (m *mockSubmissionStore) Create(_ context.Context, sub *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sub
	m.subs[sub.ID] = &cp
	return nil
}

func (m *mockSubmissionStore) Get(_ context.Context, id uuid.UUID) (*models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

func (m *mockSubmissionStore) FindByOrder(_ context.Context, orderID string) (*models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sub := range m.subs {
		if sub.OrderID == orderID {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockSubmissionStore) Update(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, hasOrder := fields["order_id"]; hasOrder && m.orderErr != nil {
		return m.orderErr
	}
	sub, ok := m.subs[id]
	if !ok {
		return store.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "order_id":
			sub.OrderID = v.(string)
		case "amount":
			sub.Amount = v.(int64)
		case "currency":
			sub.Currency = v.(string)
		case "status":
			sub.Status = v.(string)
		case "notice":
			sub.Notice = v.(string)
		}
	}
	return nil
}

func (m *mockSubmissionStore) ListByStatus(_ context.Context, statuses []string, limit int) ([]models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	var out []models.Submission
	for _, sub := range m.subs {
		if want[sub.Status] && len(out) < limit {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (m *mockSubmissionStore) status(id uuid.UUID) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub, ok := m.subs[id]; ok {
		return sub.Status
	}
	return ""
}

type mockIdentity struct {
	mu          sync.Mutex
	token       string
	exchangeErr error
	profile     *dto.UserProfile
	profileErr  error
	fetchCalls  int
	lastToken   string
}

func (m *mockIdentity) AuthURL(state string, forcePrompt bool) string {
	if forcePrompt {
		return "https://consent.example/?prompt=consent&state=" + state
	}
	return "https://consent.example/?state=" + state
}

func (m *mockIdentity) Exchange(_ context.Context, code string) (string, error) {
	if m.exchangeErr != nil {
		return "", m.exchangeErr
	}
	return m.token, nil
}

func (m *mockIdentity) FetchProfile(_ context.Context, token string) (*dto.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchCalls++
	m.lastToken = token
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	cp := *m.profile
	return &cp, nil
}

// mockGateway records every call; OpenFunc defaults to an immediate result.
type mockGateway struct {
	mu          sync.Mutex
	order       *dto.PaymentOrder
	orderErr    error
	verified    bool
	verifyErr   error
	OpenFunc    func(ctx context.Context, order *dto.PaymentOrder) (*dto.PaymentResult, error)
	createCalls int
	openCalls   int
	verifyCalls int
	lastAmount  int64
	lastResult  *dto.PaymentResult
}

func (m *mockGateway) CreateOrder(_ context.Context, amount int64, receipt string) (*dto.PaymentOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	m.lastAmount = amount
	if m.orderErr != nil {
		return nil, m.orderErr
	}
	cp := *m.order
	cp.Receipt = receipt
	return &cp, nil
}

func (m *mockGateway) OpenPaymentUI(ctx context.Context, order *dto.PaymentOrder) (*dto.PaymentResult, error) {
	m.mu.Lock()
	m.openCalls++
	open := m.OpenFunc
	m.mu.Unlock()
	if open != nil {
		return open(ctx, order)
	}
	return &dto.PaymentResult{
		RazorpayOrderID:   order.ID,
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: "sig",
	}, nil
}

func (m *mockGateway) VerifyPayment(_ context.Context, result *dto.PaymentResult) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifyCalls++
	m.lastResult = result
	return m.verified, m.verifyErr
}

type mockAppender struct {
	mu     sync.Mutex
	err    error
	rows   []dto.SheetRow
	tokens []string
}

func (m *mockAppender) AppendRow(_ context.Context, token string, row dto.SheetRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, token)
	if m.err != nil {
		return m.err
	}
	m.rows = append(m.rows, row)
	return nil
}

func (m *mockAppender) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}
