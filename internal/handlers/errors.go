package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/dto"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// serviceError maps service sentinels to HTTP statuses. Anything unknown is
// logged and hidden behind a generic 500.
func serviceError(c *fiber.Ctx, err error, action string) error {
	status, message := fiber.StatusInternalServerError, "Internal server error"

	switch {
	case errors.Is(err, services.ErrValidation):
		status, message = fiber.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, services.ErrNotSignedIn):
		status, message = fiber.StatusUnauthorized, "Sign in with Google first"
	case errors.Is(err, services.ErrSessionNotFound):
		status, message = fiber.StatusUnauthorized, "Session not found"
	case errors.Is(err, services.ErrInvalidState):
		status, message = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrSubmissionInFlight):
		status, message = fiber.StatusConflict, err.Error()
	case errors.Is(err, services.ErrSubmissionNotFound), errors.Is(err, services.ErrCheckoutNotFound):
		status, message = fiber.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrOrderMismatch):
		status, message = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrOrderFailed), errors.Is(err, services.ErrGatewayUnavailable):
		status, message = fiber.StatusBadGateway, "Payment order could not be created"
	case errors.Is(err, services.ErrTokenExchange), errors.Is(err, services.ErrProfileFetch):
		status, message = fiber.StatusBadGateway, "Google sign-in failed"
	}

	if status >= fiber.StatusInternalServerError {
		slog.Error("request failed", "action", action, "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func currentSession(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := middleware.GetSessionID(c)
	if err != nil {
		return uuid.Nil, c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}
	return id, nil
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: message})
}
