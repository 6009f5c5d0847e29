package services

import (
	"context"
	"errors"
	"sync"

	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/dto"
)

var ErrCheckoutNotFound = errors.New("no checkout is waiting for this order")

// CheckoutBroker stands in for the Razorpay widget. Present parks the
// workflow until the browser posts the widget result back through Deliver,
// or until the workflow context ends, which counts as abandonment.
type CheckoutBroker struct {
	mu       sync.Mutex
	pending  map[string]chan *dto.PaymentResult
	watchers map[string]chan dto.PaymentOrder
}

func NewCheckoutBroker() *CheckoutBroker {
	return &CheckoutBroker{
		pending:  make(map[string]chan *dto.PaymentResult),
		watchers: make(map[string]chan dto.PaymentOrder),
	}
}

// Expect returns a channel that receives the order once it is presented
// for the given receipt.
func (b *CheckoutBroker) Expect(receipt string) <-chan dto.PaymentOrder {
	ch := make(chan dto.PaymentOrder, 1)
	b.mu.Lock()
	b.watchers[receipt] = ch
	b.mu.Unlock()
	return ch
}

func (b *CheckoutBroker) Forget(receipt string) {
	b.mu.Lock()
	delete(b.watchers, receipt)
	b.mu.Unlock()
}

func (b *CheckoutBroker) Present(ctx context.Context, order *dto.PaymentOrder) (*dto.PaymentResult, error) {
	results := make(chan *dto.PaymentResult, 1)

	b.mu.Lock()
	b.pending[order.ID] = results
	if w, ok := b.watchers[order.Receipt]; ok {
		w <- *order
		delete(b.watchers, order.Receipt)
	}
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		if b.pending[order.ID] == results {
			delete(b.pending, order.ID)
		}
		b.mu.Unlock()
	}()

	select {
	case result := <-results:
		return result, nil
	case <-ctx.Done():
		return nil, nil
	}
}

// Deliver hands a widget result to the checkout waiting on orderID. Each
// order accepts exactly one result.
func (b *CheckoutBroker) Deliver(orderID string, result *dto.PaymentResult) error {
	b.mu.Lock()
	results, ok := b.pending[orderID]
	if ok {
		delete(b.pending, orderID)
	}
	b.mu.Unlock()

	if !ok {
		return ErrCheckoutNotFound
	}
	results <- result
	return nil
}

func (b *CheckoutBroker) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
