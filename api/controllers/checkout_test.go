package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gestfood/digital-menu/internal/cart"
	"github.com/gestfood/digital-menu/internal/checkout"
	"github.com/gestfood/digital-menu/pkg/enums"
	"github.com/gestfood/digital-menu/pkg/logger"
)

type recordingCheckout struct {
	Checkout
	submitCtx context.Context
	editCtx   context.Context
}

func (c *recordingCheckout) Submit(ctx context.Context, _ checkout.SubmitInput) (checkout.State, error) {
	c.submitCtx = ctx
	return checkout.State{Step: enums.CheckoutStepAwaitingPaymentMethod}, nil
}

func (c *recordingCheckout) CartEditable() bool { return true }

func (c *recordingCheckout) EditCart(ctx context.Context, fn func() error) error {
	c.editCtx = ctx
	return fn()
}

type recordingCart struct {
	CartStore
	clearCtx context.Context
}

func (c *recordingCart) Clear(ctx context.Context) { c.clearCtx = ctx }

func (c *recordingCart) Snapshot() cart.Snapshot { return cart.Snapshot{Items: []cart.LineItem{}} }

func cancelledRequest(method, path string) *http.Request {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return httptest.NewRequest(method, path, nil).WithContext(ctx)
}

func TestCheckoutSubmitOutlivesClientDisconnect(t *testing.T) {
	machine := &recordingCheckout{}
	w := httptest.NewRecorder()
	CheckoutSubmit(machine, logger.Nop())(w, cancelledRequest(http.MethodPost, "/api/v1/checkout/submit"))

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}
	if machine.submitCtx == nil || machine.submitCtx.Err() != nil {
		t.Fatalf("submit must not see the request cancellation, got %v", machine.submitCtx)
	}
}

func TestCartClearOutlivesClientDisconnect(t *testing.T) {
	machine := &recordingCheckout{}
	store := &recordingCart{}
	w := httptest.NewRecorder()
	CartClear(store, machine, logger.Nop())(w, cancelledRequest(http.MethodDelete, "/api/v1/cart"))

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}
	if machine.editCtx == nil || machine.editCtx.Err() != nil {
		t.Fatalf("edit guard must not see the request cancellation")
	}
	if store.clearCtx == nil || store.clearCtx.Err() != nil {
		t.Fatalf("cart write must not see the request cancellation")
	}
}
