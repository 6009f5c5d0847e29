package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutBrokerDeliversResult(t *testing.T) {
	b := NewCheckoutBroker()
	presented := b.Expect("sub-1")
	order := &dto.PaymentOrder{ID: "o1", Amount: 35000, Currency: "INR", Receipt: "sub-1"}

	got := make(chan *dto.PaymentResult, 1)
	go func() {
		result, err := b.Present(context.Background(), order)
		assert.NoError(t, err)
		got <- result
	}()

	select {
	case o := <-presented:
		assert.Equal(t, "o1", o.ID)
	case <-time.After(time.Second):
		t.Fatal("order was never presented")
	}

	want := &dto.PaymentResult{RazorpayOrderID: "o1", RazorpayPaymentID: "pay_1", RazorpaySignature: "sig"}
	require.NoError(t, b.Deliver("o1", want))

	select {
	case result := <-got:
		assert.Equal(t, want, result)
	case <-time.After(time.Second):
		t.Fatal("result was never delivered")
	}
	assert.Equal(t, 0, b.Pending())
}

func TestCheckoutBrokerAbandonOnContextEnd(t *testing.T) {
	b := NewCheckoutBroker()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	result, err := b.Present(ctx, &dto.PaymentOrder{ID: "o2"})

	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, b.Deliver("o2", &dto.PaymentResult{}), ErrCheckoutNotFound)
}

func TestCheckoutBrokerAcceptsOneResultPerOrder(t *testing.T) {
	b := NewCheckoutBroker()
	presented := b.Expect("sub-3")
	go b.Present(context.Background(), &dto.PaymentOrder{ID: "o3", Receipt: "sub-3"})
	<-presented

	require.NoError(t, b.Deliver("o3", &dto.PaymentResult{RazorpayOrderID: "o3"}))
	assert.ErrorIs(t, b.Deliver("o3", &dto.PaymentResult{RazorpayOrderID: "o3"}), ErrCheckoutNotFound)
}

func TestCheckoutBrokerUnknownOrder(t *testing.T) {
	b := NewCheckoutBroker()
	assert.ErrorIs(t, b.Deliver("missing", &dto.PaymentResult{}), ErrCheckoutNotFound)
}
