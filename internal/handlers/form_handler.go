package handlers

import (
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/dto"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type FormHandler struct {
	formService *services.FormService
}

func NewFormHandler(formService *services.FormService) *FormHandler {
	return &FormHandler{formService: formService}
}

func (h *FormHandler) Get(c *fiber.Ctx) error {
	sessionID, err := currentSession(c)
	if err != nil {
		return err
	}

	view, err := h.formService.Load(c.UserContext(), sessionID)
	if err != nil {
		return serviceError(c, err, "load_form")
	}
	return c.JSON(view)
}

func (h *FormHandler) Update(c *fiber.Ctx) error {
	sessionID, err := currentSession(c)
	if err != nil {
		return err
	}

	var req dto.FormFields
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	view, err := h.formService.Update(c.UserContext(), sessionID, req)
	if err != nil {
		return serviceError(c, err, "update_form")
	}
	return c.JSON(view)
}

func (h *FormHandler) Reset(c *fiber.Ctx) error {
	sessionID, err := currentSession(c)
	if err != nil {
		return err
	}

	view, err := h.formService.Reset(c.UserContext(), sessionID)
	if err != nil {
		return serviceError(c, err, "reset_form")
	}
	return c.JSON(view)
}

// Submit creates the order and answers 202 with the checkout options the
// browser opens the widget with.
func (h *FormHandler) Submit(c *fiber.Ctx) error {
	sessionID, err := currentSession(c)
	if err != nil {
		return err
	}

	var req dto.SubmitRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	resp, err := h.formService.Submit(c.UserContext(), sessionID, req.Fields)
	if err != nil {
		return serviceError(c, err, "submit_form")
	}

	status := fiber.StatusAccepted
	if resp.Checkout == nil {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(resp)
}

// Complete receives the widget result for an order.
func (h *FormHandler) Complete(c *fiber.Ctx) error {
	sessionID, err := currentSession(c)
	if err != nil {
		return err
	}

	orderID := c.Params("order_id")
	if orderID == "" {
		return badRequest(c, "order_id is required")
	}

	var result dto.PaymentResult
	if err := c.BodyParser(&result); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if result.RazorpayPaymentID == "" || result.RazorpaySignature == "" {
		return badRequest(c, "razorpay_payment_id and razorpay_signature are required")
	}

	resp, err := h.formService.Complete(c.UserContext(), sessionID, orderID, result)
	if err != nil {
		return serviceError(c, err, "complete_checkout")
	}
	return c.JSON(resp)
}

func (h *FormHandler) SubmissionStatus(c *fiber.Ctx) error {
	sessionID, err := currentSession(c)
	if err != nil {
		return err
	}

	submissionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid submission ID")
	}

	sub, err := h.formService.Submission(c.UserContext(), sessionID, submissionID)
	if err != nil {
		return serviceError(c, err, "submission_status")
	}
	return c.JSON(dto.CompleteResponse{
		SubmissionID: sub.ID.String(),
		Status:       sub.Status,
		Notice:       sub.Notice,
	})
}
