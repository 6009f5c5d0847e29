package services

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/dto"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SessionStore persists the profile and access token of a browser session.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id uuid.UUID) (*models.Session, error)
	SaveProfile(ctx context.Context, id uuid.UUID, profile datatypes.JSON) error
	Clear(ctx context.Context, id uuid.UUID) error
}

type DraftStore interface {
	Get(ctx context.Context, sessionID uuid.UUID) (*models.FormDraft, error)
	Save(ctx context.Context, draft *models.FormDraft) error
	ClearFields(ctx context.Context, sessionID uuid.UUID) error
}

type SubmissionStore interface {
	Create(ctx context.Context, sub *models.Submission) error
	Get(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	FindByOrder(ctx context.Context, orderID string) (*models.Submission, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	ListByStatus(ctx context.Context, statuses []string, limit int) ([]models.Submission, error)
}

// IdentityProvider is the consumed side of Google sign-in.
type IdentityProvider interface {
	AuthURL(state string, forcePrompt bool) string
	Exchange(ctx context.Context, code string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (*dto.UserProfile, error)
}

// PaymentGateway wraps the order endpoint, the checkout widget and the
// verify endpoint.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, receipt string) (*dto.PaymentOrder, error)
	// OpenPaymentUI returns nil, nil when the user never completes checkout.
	OpenPaymentUI(ctx context.Context, order *dto.PaymentOrder) (*dto.PaymentResult, error)
	VerifyPayment(ctx context.Context, result *dto.PaymentResult) (bool, error)
}

type RecordAppender interface {
	AppendRow(ctx context.Context, accessToken string, row dto.SheetRow) error
}

// SubmissionJournal records workflow progress.
type SubmissionJournal interface {
	OrderCreated(ctx context.Context, submissionID uuid.UUID, order *dto.PaymentOrder) error
	Finished(ctx context.Context, outcome Outcome) error
}
