package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
)

type PaymentOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	// Receipt is the submission id the order was created for; it is not
	// echoed by the order endpoint.
	Receipt string `json:"-"`
}

// PaymentResult is the signed result handed back by the Razorpay widget.
type PaymentResult struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

type CreateOrderRequest struct {
	Amount int64 `json:"amount"`
}

type CreateOrderResponse struct {
	Data *PaymentOrder `json:"data"`
}

// VerifyPaymentResponse keeps message raw; any JSON type may signal success.
type VerifyPaymentResponse struct {
	Message json.RawMessage `json:"message"`
}

// Verified reports whether message is truthy: anything except a missing
// field, null, false, "" or 0.
func (r VerifyPaymentResponse) Verified() bool {
	raw := bytes.TrimSpace(r.Message)
	if len(raw) == 0 {
		return false
	}

	switch raw[0] {
	case 'n', 'f':
		return false
	case 't', '{', '[':
		return true
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return false
		}
		return s != ""
	}

	n, err := strconv.ParseFloat(string(raw), 64)
	return err == nil && n != 0
}

// CheckoutOptions are passed verbatim to the Razorpay checkout widget.
type CheckoutOptions struct {
	Key         string        `json:"key"`
	Amount      int64         `json:"amount"`
	Currency    string        `json:"currency"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	OrderID     string        `json:"order_id"`
	Prefill     *CheckoutUser `json:"prefill,omitempty"`
	Theme       CheckoutTheme `json:"theme"`
}

type CheckoutUser struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact,omitempty"`
}

type CheckoutTheme struct {
	Color string `json:"color"`
}
