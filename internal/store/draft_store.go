package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DraftStore struct {
	db *gorm.DB
}

func NewDraftStore(db *gorm.DB) *DraftStore {
	return &DraftStore{db: db}
}

// Get returns the session's draft, or an empty one if nothing was saved yet.
func (s *DraftStore) Get(ctx context.Context, sessionID uuid.UUID) (*models.FormDraft, error) {
	var draft models.FormDraft
	err := s.db.WithContext(ctx).Scopes(ForSession(sessionID)).First(&draft).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.FormDraft{SessionID: sessionID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load form draft: %w", err)
	}
	return &draft, nil
}

func (s *DraftStore) Save(ctx context.Context, draft *models.FormDraft) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"mobile", "age", "gender", "address", "updated_at"}),
	}).Create(draft).Error
	if err != nil {
		return fmt.Errorf("failed to save form draft: %w", err)
	}
	return nil
}

func (s *DraftStore) ClearFields(ctx context.Context, sessionID uuid.UUID) error {
	return s.Save(ctx, &models.FormDraft{SessionID: sessionID})
}
