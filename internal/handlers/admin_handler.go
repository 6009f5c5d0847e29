package handlers

import (
	"strconv"

	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/dto"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	formService *services.FormService
}

func NewAdminHandler(formService *services.FormService) *AdminHandler {
	return &AdminHandler{formService: formService}
}

// ListSubmissions returns submissions that may hold a payment without a
// recorded row.
func (h *AdminHandler) ListSubmissions(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	subs, err := h.formService.Unreconciled(c.UserContext(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch submissions",
		})
	}

	return c.JSON(fiber.Map{
		"submissions": subs,
		"count":       len(subs),
		"limit":       limit,
	})
}
