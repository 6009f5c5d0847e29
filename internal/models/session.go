package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Session is this application's record of one browser's Google sign-in.
// GoogleUser and GoogleAccessToken are cleared together on sign-out; the
// Google-side session is left untouched.
type Session struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	GoogleUser        datatypes.JSON `gorm:"column:google_user;type:jsonb" json:"-"`
	GoogleAccessToken string         `gorm:"column:google_access_token;type:text" json:"-"`
	SignedOutAt       *time.Time     `json:"signed_out_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}
