package middleware

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const sessionIDKey = "session_id"

// SessionResolver validates an application session token and returns the
// session it names.
type SessionResolver interface {
	SessionIDFromToken(token string) (uuid.UUID, error)
}

// SessionScope runs after JWTProtected. Only session tokens pass; login
// state tokens are signed with the same key and must not.
func SessionScope(sessions SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, err := sessionFromToken(c, sessions)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		c.Locals(sessionIDKey, sessionID)
		return c.Next()
	}
}

// GetSessionID returns the session stored by SessionScope.
func GetSessionID(c *fiber.Ctx) (uuid.UUID, error) {
	if id, ok := c.Locals(sessionIDKey).(uuid.UUID); ok {
		return id, nil
	}
	return uuid.Nil, errors.New("no session in context")
}

func sessionFromToken(c *fiber.Ctx, sessions SessionResolver) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return uuid.Nil, errors.New("invalid token in context")
	}
	return sessions.SessionIDFromToken(token.Raw)
}
