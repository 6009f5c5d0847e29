package models

import (
	"time"

	"github.com/google/uuid"
)

// FormDraft holds the mutable form fields for a session. Name and email are
// never stored here; they always come from the signed-in profile.
type FormDraft struct {
	SessionID uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	Mobile    string    `gorm:"size:20" json:"mobile"`
	Age       string    `gorm:"size:3" json:"age"`
	Gender    string    `gorm:"size:10" json:"gender"`
	Address   string    `gorm:"type:text" json:"address"`
	UpdatedAt time.Time `json:"updated_at"`
}
