package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gestfood/digital-menu/internal/cart"
	"github.com/gestfood/digital-menu/internal/payment"
	"github.com/gestfood/digital-menu/internal/session"
	"github.com/gestfood/digital-menu/pkg/config"
	"github.com/gestfood/digital-menu/pkg/enums"
	pkgerrors "github.com/gestfood/digital-menu/pkg/errors"
	"github.com/gestfood/digital-menu/pkg/kvstore"
	"github.com/gestfood/digital-menu/pkg/logger"
	"github.com/gestfood/digital-menu/pkg/types"
	"github.com/shopspring/decimal"
)

type stubOrders struct {
	calls  int32
	id     string
	err    error
	drafts []cart.OrderDraft
	mu     sync.Mutex

	entered chan struct{}
	release chan struct{}
}

func (s *stubOrders) Create(ctx context.Context, draft cart.OrderDraft) (string, error) {
	atomic.AddInt32(&s.calls, 1)
	s.mu.Lock()
	s.drafts = append(s.drafts, draft)
	s.mu.Unlock()
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.release != nil {
		<-s.release
	}
	return s.id, s.err
}

type fixture struct {
	machine *Machine
	cart    *cart.Store
	session *session.Store
	orders  *stubOrders
}

func newFixture(t *testing.T, loggedIn bool) *fixture {
	t.Helper()
	kv := kvstore.NewMemory()
	cartStore, err := cart.NewStore(kv, logger.Nop())
	if err != nil {
		t.Fatalf("cart store: %v", err)
	}
	sessionStore, err := session.NewStore(kv, logger.Nop())
	if err != nil {
		t.Fatalf("session store: %v", err)
	}
	if loggedIn {
		if err := sessionStore.SetIdentity(context.Background(), session.Identity{ClientID: "c1", ClientName: "Ana", DeskCode: "M07"}); err != nil {
			t.Fatalf("set identity: %v", err)
		}
	}
	orders := &stubOrders{id: "order-1"}
	machine, err := NewMachine(Params{
		Cart:     cartStore,
		Session:  sessionStore,
		Orders:   orders,
		Payments: payment.NewSimulator(config.PaymentConfig{}),
	})
	if err != nil {
		t.Fatalf("new machine: %v", err)
	}
	return &fixture{machine: machine, cart: cartStore, session: sessionStore, orders: orders}
}

func (f *fixture) addPastel(qty int) {
	f.cart.AddItem(context.Background(), types.Product{ID: "p1", Name: "Pastel", Price: decimal.RequireFromString("8.00")}, qty)
}

func requireConflict(t *testing.T, err error) {
	t.Helper()
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestHappyPathCompletesAndClearsCart(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	f.addPastel(2)

	state, err := f.machine.Submit(ctx, SubmitInput{Note: "sem cebola"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if state.Step != enums.CheckoutStepAwaitingPaymentMethod || state.OrderID != "order-1" {
		t.Fatalf("unexpected state after submit %+v", state)
	}
	if f.orders.drafts[0].Description != "2x Pastel | Obs: sem cebola" || f.orders.drafts[0].ClientID != "c1" {
		t.Fatalf("unexpected draft %+v", f.orders.drafts[0])
	}
	if f.machine.CartEditable() {
		t.Fatalf("cart must be locked while awaiting payment")
	}

	state, err = f.machine.ChoosePix(ctx)
	if err != nil {
		t.Fatalf("choose pix: %v", err)
	}
	if state.Step != enums.CheckoutStepPaymentInProgress || state.Method != enums.PaymentMethodPix || state.Pix == nil {
		t.Fatalf("unexpected pix state %+v", state)
	}
	if !strings.Contains(state.Pix.Payload, "540616.00") {
		t.Fatalf("pix payload should carry the order total, got %s", state.Pix.Payload)
	}

	state, err = f.machine.SimulateSuccess(ctx)
	if err != nil {
		t.Fatalf("simulate success: %v", err)
	}
	if state.Step != enums.CheckoutStepReviewing || state.ConfirmedOrderID != "order-1" || state.OrderID != "" {
		t.Fatalf("unexpected completed state %+v", state)
	}
	if !f.cart.IsEmpty() {
		t.Fatalf("completion must clear the cart")
	}

	f.addPastel(1)
	if got := f.machine.State().ConfirmedOrderID; got != "" {
		t.Fatalf("confirmation should be dropped on the next cart mutation, got %q", got)
	}
}

func TestEmptyCartFailsWithoutBackend(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	state, err := f.machine.Submit(ctx, SubmitInput{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if state.Step != enums.CheckoutStepFailed || state.Failure == nil || state.Failure.Reason != enums.FailureReasonEmptyCart {
		t.Fatalf("unexpected state %+v", state)
	}
	if atomic.LoadInt32(&f.orders.calls) != 0 {
		t.Fatalf("empty cart must not reach the backend")
	}

	state, err = f.machine.Acknowledge(ctx)
	if err != nil || state.Step != enums.CheckoutStepReviewing || state.Failure != nil {
		t.Fatalf("acknowledge should return to reviewing, got %+v %v", state, err)
	}
}

func TestSubmitRequiresSession(t *testing.T) {
	f := newFixture(t, false)
	f.addPastel(1)

	state, err := f.machine.Submit(context.Background(), SubmitInput{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if state.Step != enums.CheckoutStepFailed || state.Failure.Reason != enums.FailureReasonValidation {
		t.Fatalf("unexpected state %+v", state)
	}
	if atomic.LoadInt32(&f.orders.calls) != 0 {
		t.Fatalf("missing session must not reach the backend")
	}
}

func TestConcurrentSubmitIsRejected(t *testing.T) {
	f := newFixture(t, true)
	f.orders.entered = make(chan struct{}, 1)
	f.orders.release = make(chan struct{})
	f.addPastel(1)
	ctx := context.Background()

	done := make(chan State, 1)
	go func() {
		state, _ := f.machine.Submit(ctx, SubmitInput{})
		done <- state
	}()
	<-f.orders.entered

	if step := f.machine.State().Step; step != enums.CheckoutStepSubmitting {
		t.Fatalf("expected submitting while request is in flight, got %s", step)
	}
	if f.machine.CartEditable() {
		t.Fatalf("cart must be locked while submitting")
	}

	_, err := f.machine.Submit(ctx, SubmitInput{})
	requireConflict(t, err)

	close(f.orders.release)
	state := <-done
	if state.Step != enums.CheckoutStepAwaitingPaymentMethod {
		t.Fatalf("first submit should complete, got %+v", state)
	}
	if calls := atomic.LoadInt32(&f.orders.calls); calls != 1 {
		t.Fatalf("expected exactly one backend call, got %d", calls)
	}
}

func TestSubmitFailureReasons(t *testing.T) {
	tests := []struct {
		err    error
		reason enums.FailureReason
	}{
		{err: pkgerrors.New(pkgerrors.CodeNetwork, "down"), reason: enums.FailureReasonNetwork},
		{err: pkgerrors.New(pkgerrors.CodeValidation, "bad"), reason: enums.FailureReasonValidation},
		{err: pkgerrors.New(pkgerrors.CodeUpstream, "500"), reason: enums.FailureReasonServer},
		{err: pkgerrors.New(pkgerrors.CodeNotFound, "404"), reason: enums.FailureReasonNotFound},
		{err: errors.New("weird"), reason: enums.FailureReasonUnknown},
	}
	for _, tt := range tests {
		f := newFixture(t, true)
		f.orders.err = tt.err
		f.orders.id = ""
		f.addPastel(1)

		state, err := f.machine.Submit(context.Background(), SubmitInput{})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if state.Step != enums.CheckoutStepFailed || state.Failure.Reason != tt.reason {
			t.Fatalf("error %v expected reason %s, got %+v", tt.err, tt.reason, state)
		}
		if f.cart.TotalItemCount() != 1 {
			t.Fatalf("failed submit must keep the cart")
		}
	}
}

func TestInvalidTransitionsAreRejected(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	_, err := f.machine.ChoosePix(ctx)
	requireConflict(t, err)
	_, err = f.machine.Cancel(ctx)
	requireConflict(t, err)
	_, err = f.machine.SimulateSuccess(ctx)
	requireConflict(t, err)
	_, err = f.machine.Acknowledge(ctx)
	requireConflict(t, err)
	_, err = f.machine.BackToMethodSelection(ctx)
	requireConflict(t, err)
	_, err = f.machine.FailPayment(ctx, "declined")
	requireConflict(t, err)

	if f.machine.State().Step != enums.CheckoutStepReviewing {
		t.Fatalf("rejected transitions must not change state")
	}
}

func TestCancelKeepsCartAndLeavesOrder(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	f.addPastel(2)

	if _, err := f.machine.Submit(ctx, SubmitInput{}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	state, err := f.machine.Cancel(ctx)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if state.Step != enums.CheckoutStepReviewing || state.OrderID != "" {
		t.Fatalf("unexpected state after cancel %+v", state)
	}
	if f.cart.TotalItemCount() != 2 || !f.machine.CartEditable() {
		t.Fatalf("cancel must keep the cart editable and intact")
	}
}

func TestCardBackAndDeclinedPayment(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	f.addPastel(3)

	if _, err := f.machine.Submit(ctx, SubmitInput{}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	state, err := f.machine.ChooseCard(ctx)
	if err != nil || state.Card == nil || len(state.Card.Installments) != 6 {
		t.Fatalf("unexpected card state %+v %v", state, err)
	}

	state, err = f.machine.BackToMethodSelection(ctx)
	if err != nil || state.Step != enums.CheckoutStepAwaitingPaymentMethod || state.Method != "" {
		t.Fatalf("unexpected state after back %+v %v", state, err)
	}

	if _, err := f.machine.Choose(ctx, enums.PaymentMethod("cash")); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected unsupported method to fail validation, got %v", err)
	}
	if _, err := f.machine.Choose(ctx, enums.PaymentMethodCard); err != nil {
		t.Fatalf("choose card: %v", err)
	}
	state, err = f.machine.FailPayment(ctx, "cartão recusado")
	if err != nil || state.Step != enums.CheckoutStepFailed || state.Failure.Reason != enums.FailureReasonPayment {
		t.Fatalf("unexpected declined state %+v %v", state, err)
	}

	state, err = f.machine.Acknowledge(ctx)
	if err != nil || state.Step != enums.CheckoutStepReviewing {
		t.Fatalf("acknowledge: %+v %v", state, err)
	}
	if f.cart.TotalItemCount() != 3 {
		t.Fatalf("declined payment must keep the cart")
	}
}

func TestZeroQuantityCartCountsAsEmpty(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	f.addPastel(1)
	f.cart.SetQuantity(ctx, "p1", 0)

	state, err := f.machine.Submit(ctx, SubmitInput{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if state.Step != enums.CheckoutStepFailed || state.Failure == nil || state.Failure.Reason != enums.FailureReasonEmptyCart {
		t.Fatalf("unexpected state %+v", state)
	}
	if atomic.LoadInt32(&f.orders.calls) != 0 {
		t.Fatalf("a cart with nothing to order must not reach the backend")
	}
}

func TestNegativeQuantityDoesNotWedgeTheMachine(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	f.addPastel(1)
	f.cart.AddItem(ctx, types.Product{ID: "p2", Name: "Suco", Price: decimal.RequireFromString("7.00")}, 1)
	f.cart.SetQuantity(ctx, "p1", -3)

	state, err := f.machine.Submit(ctx, SubmitInput{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if state.Step != enums.CheckoutStepAwaitingPaymentMethod {
		t.Fatalf("unexpected state %+v", state)
	}
	draft := f.orders.drafts[0]
	if draft.Description != "1x Suco" || len(draft.ProductsIDs) != 1 {
		t.Fatalf("negative line must be left out of the draft, got %+v", draft)
	}

	done := make(chan struct{})
	go func() {
		f.machine.State()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("machine lock still held after submit")
	}
}

func TestEditCartIsRejectedOutsideReviewing(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	f.addPastel(1)

	ran := false
	if err := f.machine.EditCart(ctx, func() error { ran = true; return nil }); err != nil || !ran {
		t.Fatalf("edit in reviewing should run, err=%v ran=%v", err, ran)
	}

	if _, err := f.machine.Submit(ctx, SubmitInput{}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	ran = false
	err := f.machine.EditCart(ctx, func() error { ran = true; return nil })
	requireConflict(t, err)
	if ran {
		t.Fatalf("edit must not run while awaiting payment")
	}
}

func TestSubmitWaitsForInFlightCartEdit(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	f.addPastel(1)

	editing := make(chan struct{})
	finish := make(chan struct{})
	editDone := make(chan error, 1)
	go func() {
		editDone <- f.machine.EditCart(ctx, func() error {
			close(editing)
			<-finish
			f.cart.AddItem(ctx, types.Product{ID: "p2", Name: "Suco", Price: decimal.RequireFromString("7.00")}, 1)
			return nil
		})
	}()
	<-editing

	submitted := make(chan State, 1)
	go func() {
		state, _ := f.machine.Submit(ctx, SubmitInput{})
		submitted <- state
	}()

	select {
	case <-submitted:
		t.Fatal("submit must wait for the cart edit to finish")
	case <-time.After(50 * time.Millisecond):
	}
	close(finish)

	if err := <-editDone; err != nil {
		t.Fatalf("edit: %v", err)
	}
	state := <-submitted
	if state.Step != enums.CheckoutStepAwaitingPaymentMethod {
		t.Fatalf("unexpected state %+v", state)
	}
	if ids := f.orders.drafts[0].ProductsIDs; len(ids) != 2 || ids[1] != "p2" {
		t.Fatalf("draft should include the edit that was in flight, got %v", ids)
	}
}
