package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRazorpayGatewayCreateOrder(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		wantErr   bool
		wantOrder *dto.PaymentOrder
	}{
		{
			name: "order created",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/payment/order", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var body dto.CreateOrderRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, int64(350), body.Amount)

				w.Write([]byte(`{"data":{"id":"o1","amount":35000,"currency":"INR"}}`))
			},
			wantOrder: &dto.PaymentOrder{ID: "o1", Amount: 35000, Currency: "INR", Receipt: "sub-1"},
		},
		{
			name: "non-success status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"message":"boom"}`))
			},
			wantErr: true,
		},
		{
			name: "missing order data",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"data":null}`))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			g := NewRazorpayGateway(GatewayConfig{APIURL: srv.URL + "/"}, NewCheckoutBroker())
			order, err := g.CreateOrder(context.Background(), 350, "sub-1")

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrOrderFailed)
				assert.Nil(t, order)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOrder, order)
		})
	}
}

func TestRazorpayGatewayCreateOrderTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	g := NewRazorpayGateway(GatewayConfig{APIURL: srv.URL, Timeout: time.Second}, NewCheckoutBroker())
	_, err := g.CreateOrder(context.Background(), 350, "sub")

	assert.ErrorIs(t, err, ErrOrderFailed)
}

func TestRazorpayGatewayVerifyPayment(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    bool
		wantErr bool
	}{
		{name: "message means success", status: http.StatusOK, body: `{"message":"ok"}`, want: true},
		{name: "empty message", status: http.StatusOK, body: `{"message":""}`, want: false},
		{name: "no message field", status: http.StatusOK, body: `{"success":true}`, want: false},
		{name: "boolean message", status: http.StatusOK, body: `{"message":true}`, want: true},
		{name: "object message", status: http.StatusOK, body: `{"message":{"status":"captured"}}`, want: true},
		{name: "numeric message", status: http.StatusOK, body: `{"message":1}`, want: true},
		{name: "false message", status: http.StatusOK, body: `{"message":false}`, want: false},
		{name: "null message", status: http.StatusOK, body: `{"message":null}`, want: false},
		{name: "zero message", status: http.StatusOK, body: `{"message":0}`, want: false},
		{name: "error status", status: http.StatusBadRequest, body: `{"message":"invalid signature"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/payment/verify", r.URL.Path)

				var body map[string]string
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, map[string]string{
					"razorpay_order_id":   "o1",
					"razorpay_payment_id": "pay_1",
					"razorpay_signature":  "sig",
				}, body)

				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g := NewRazorpayGateway(GatewayConfig{APIURL: srv.URL}, NewCheckoutBroker())
			ok, err := g.VerifyPayment(context.Background(), &dto.PaymentResult{
				RazorpayOrderID:   "o1",
				RazorpayPaymentID: "pay_1",
				RazorpaySignature: "sig",
			})

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrVerifyFailed)
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestRazorpayGatewayInit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		if r.URL.Path != "/v1/checkout.js" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	g := NewRazorpayGateway(GatewayConfig{ScriptURL: srv.URL + "/v1/checkout.js"}, NewCheckoutBroker())
	assert.False(t, g.Ready())
	require.NoError(t, g.Init(context.Background()))
	assert.True(t, g.Ready())

	missing := NewRazorpayGateway(GatewayConfig{ScriptURL: srv.URL + "/nope.js"}, NewCheckoutBroker())
	assert.ErrorIs(t, missing.Init(context.Background()), ErrGatewayUnavailable)
	assert.False(t, missing.Ready())
}

func TestRazorpayGatewayInitRespectsDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	g := NewRazorpayGateway(GatewayConfig{ScriptURL: srv.URL}, NewCheckoutBroker())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, g.Init(ctx), ErrGatewayUnavailable)
}
