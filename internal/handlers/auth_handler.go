package handlers

import (
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/dto"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	sessionService *services.SessionService
}

func NewAuthHandler(sessionService *services.SessionService) *AuthHandler {
	return &AuthHandler{sessionService: sessionService}
}

// LoginURL starts a brand new session's Google consent.
func (h *AuthHandler) LoginURL(c *fiber.Ctx) error {
	url, err := h.sessionService.BeginLogin()
	if err != nil {
		return serviceError(c, err, "login_url")
	}
	return c.JSON(dto.LoginURLResponse{URL: url})
}

func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	if reason := c.Query("error"); reason != "" {
		return badRequest(c, "Google sign-in was not completed: "+reason)
	}

	code, state := c.Query("code"), c.Query("state")
	if code == "" || state == "" {
		return badRequest(c, "code and state are required")
	}

	resp, err := h.sessionService.CompleteLogin(c.UserContext(), code, state)
	if err != nil {
		return serviceError(c, err, "login")
	}
	return c.JSON(resp)
}

// Session restores the signed-in view on page load.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	sessionID, err := currentSession(c)
	if err != nil {
		return err
	}

	state, err := h.sessionService.Restore(c.UserContext(), sessionID)
	if err != nil {
		return serviceError(c, err, "restore_session")
	}
	return c.JSON(state)
}

func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	sessionID, err := currentSession(c)
	if err != nil {
		return err
	}

	state, err := h.sessionService.SignOut(c.UserContext(), sessionID)
	if err != nil {
		return serviceError(c, err, "sign_out")
	}
	return c.JSON(state)
}
