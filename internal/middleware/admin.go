package middleware

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/config"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ProfileSource resolves session tokens and the stored Google profile of a
// session.
type ProfileSource interface {
	SessionResolver
	Profile(ctx context.Context, sessionID uuid.UUID) (*dto.UserProfile, error)
}

// AdminRequired admits requests carrying X-Admin-Token, or a session whose
// Google email is listed in ADMIN_EMAILS.
func AdminRequired(cfg *config.Config, profiles ProfileSource) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" {
			if subtle.ConstantTimeCompare([]byte(c.Get("X-Admin-Token")), []byte(cfg.AdminToken)) == 1 {
				return c.Next()
			}
		}

		sessionID, err := sessionFromToken(c, profiles)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		profile, err := profiles.Profile(c.UserContext(), sessionID)
		if err == nil && contains(adminEmails, strings.ToLower(profile.Email)) {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(p))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
