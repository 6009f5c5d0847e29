package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// GatewayProbe reports whether the checkout script was reachable at startup.
type GatewayProbe interface {
	Ready() bool
}

type HealthHandler struct {
	ping    func() error
	gateway GatewayProbe
}

func NewHealthHandler(ping func() error, gateway GatewayProbe) *HealthHandler {
	return &HealthHandler{ping: ping, gateway: gateway}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := h.ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	gatewayStatus := "ok"
	if !h.gateway.Ready() {
		gatewayStatus = "unavailable"
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Gateway:   gatewayStatus,
	})
}
