package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/dto"
)

var (
	ErrOrderFailed        = errors.New("payment order creation failed")
	ErrVerifyFailed       = errors.New("payment verification request failed")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

type GatewayConfig struct {
	// APIURL is the base of the application-controlled order/verify backend.
	APIURL string
	// ScriptURL is the checkout script the browser loads.
	ScriptURL string
	Timeout   time.Duration
}

// RazorpayGateway creates and verifies orders over HTTP and delegates the
// checkout itself to the broker.
type RazorpayGateway struct {
	httpClient *http.Client
	apiURL     string
	scriptURL  string
	broker     *CheckoutBroker
	ready      atomic.Bool
}

func NewRazorpayGateway(cfg GatewayConfig, broker *CheckoutBroker) *RazorpayGateway {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &RazorpayGateway{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		scriptURL:  cfg.ScriptURL,
		broker:     broker,
	}
}

// Init confirms the checkout script is reachable. The caller bounds it with
// a context deadline.
func (g *RazorpayGateway) Init(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, g.scriptURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: checkout script returned status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	g.ready.Store(true)
	return nil
}

func (g *RazorpayGateway) Ready() bool {
	return g.ready.Load()
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount int64, receipt string) (*dto.PaymentOrder, error) {
	var out dto.CreateOrderResponse
	status, body, err := g.postJSON(ctx, "/api/payment/order", dto.CreateOrderRequest{Amount: amount}, &out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderFailed, err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrOrderFailed, status, body)
	}
	if out.Data == nil || out.Data.ID == "" {
		return nil, fmt.Errorf("%w: response carries no order", ErrOrderFailed)
	}

	order := *out.Data
	order.Receipt = receipt
	return &order, nil
}

func (g *RazorpayGateway) OpenPaymentUI(ctx context.Context, order *dto.PaymentOrder) (*dto.PaymentResult, error) {
	return g.broker.Present(ctx, order)
}

// VerifyPayment reports success when the verify endpoint answers 2xx with a
// truthy message.
func (g *RazorpayGateway) VerifyPayment(ctx context.Context, result *dto.PaymentResult) (bool, error) {
	var out dto.VerifyPaymentResponse
	status, body, err := g.postJSON(ctx, "/api/payment/verify", result, &out)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrVerifyFailed, err)
	}
	if status < 200 || status >= 300 {
		return false, fmt.Errorf("%w: status %d: %s", ErrVerifyFailed, status, body)
	}
	return out.Verified(), nil
}

// postJSON returns the status and raw body; out is decoded only for 2xx.
func (g *RazorpayGateway) postJSON(ctx context.Context, path string, in, out interface{}) (int, string, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return 0, "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.Unmarshal(body, out); err != nil {
			return resp.StatusCode, string(body), fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, string(body), nil
}
