package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gestfood/digital-menu/internal/cart"
	"github.com/gestfood/digital-menu/internal/payment"
	"github.com/gestfood/digital-menu/internal/session"
	"github.com/gestfood/digital-menu/pkg/enums"
	pkgerrors "github.com/gestfood/digital-menu/pkg/errors"
	"github.com/gestfood/digital-menu/pkg/logger"
	"github.com/gestfood/digital-menu/pkg/metrics"
	"github.com/shopspring/decimal"
)

type cartStore interface {
	BuildOrderDraft(clientID string, note ...string) cart.OrderDraft
	Clear(ctx context.Context)
	Subscribe(fn cart.Listener)
}

type identityReader interface {
	Identity() session.Identity
}

type orderCreator interface {
	Create(ctx context.Context, draft cart.OrderDraft) (string, error)
}

type paymentSimulator interface {
	NewPixCharge(amount decimal.Decimal) payment.PixCharge
	CardInstructions(amount decimal.Decimal) payment.CardInstructions
}

// Machine drives checkout from cart review to payment confirmation. Transitions
// are serialized; Submit releases the lock while the order request is in
// flight and the Submitting step rejects concurrent submits. Cart edits made
// through EditCart hold the edit gate shared, Submit holds it exclusively
// until the draft is built.
type Machine struct {
	gate sync.RWMutex
	mu   sync.Mutex

	step             enums.CheckoutStep
	orderID          string
	orderTotal       decimal.Decimal
	method           enums.PaymentMethod
	failure          *Failure
	confirmedOrderID string

	cart     cartStore
	session  identityReader
	orders   orderCreator
	payments paymentSimulator
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger
}

// Params packages the machine dependencies.
type Params struct {
	Cart     cartStore
	Session  identityReader
	Orders   orderCreator
	Payments paymentSimulator
	Metrics  *metrics.CheckoutMetrics
	Logger   *logger.Logger
}

func NewMachine(params Params) (*Machine, error) {
	if params.Cart == nil {
		return nil, errors.New("cart store required")
	}
	if params.Session == nil {
		return nil, errors.New("session store required")
	}
	if params.Orders == nil {
		return nil, errors.New("order service required")
	}
	if params.Payments == nil {
		return nil, errors.New("payment simulator required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}

	m := &Machine{
		step:     enums.CheckoutStepReviewing,
		cart:     params.Cart,
		session:  params.Session,
		orders:   params.Orders,
		payments: params.Payments,
		metrics:  params.Metrics,
		logg:     logg,
	}
	params.Cart.Subscribe(m.onCartChanged)
	return m, nil
}

// State returns a snapshot of the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// CartEditable reports whether the cart may be mutated.
func (m *Machine) CartEditable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step == enums.CheckoutStepReviewing
}

// EditCart runs fn while the cart is editable. Submit cannot build a draft
// until fn returns, and fn never runs once checkout has left Reviewing.
func (m *Machine) EditCart(ctx context.Context, fn func() error) error {
	m.gate.RLock()
	defer m.gate.RUnlock()

	m.mu.Lock()
	if m.step != enums.CheckoutStepReviewing {
		defer m.mu.Unlock()
		m.logg.Warn(m.logg.WithField(ctx, "step", m.step), "checkout.cart_edit_rejected")
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is locked while checkout is in progress").
			WithDetails(map[string]any{"step": m.step, "action": "edit cart"})
	}
	m.mu.Unlock()

	// fn notifies onCartChanged, which takes mu.
	return fn()
}

// Submit turns the cart into a backend order. It only runs from Reviewing. A
// cart with nothing to order or a missing session fails without contacting
// the backend.
func (m *Machine) Submit(ctx context.Context, input SubmitInput) (State, error) {
	draft, done, err := m.beginSubmit(ctx, input)
	if done != nil {
		return *done, err
	}

	ctx = m.logg.WithClientID(ctx, draft.ClientID)
	started := time.Now()
	orderID, err := m.orders.Create(ctx, draft)
	elapsed := time.Since(started)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		reason := reasonFor(err)
		m.metrics.ObserveSubmit(string(reason), elapsed)
		m.failLocked(ctx, newFailure(reason, err.Error()))
		return m.snapshotLocked(), nil
	}

	m.metrics.ObserveSubmit("success", elapsed)
	m.orderID = orderID
	m.orderTotal = draft.TotalAmount
	m.transitionLocked(m.logg.WithOrderID(ctx, orderID), enums.CheckoutStepAwaitingPaymentMethod)
	return m.snapshotLocked(), nil
}

// beginSubmit builds the draft and enters Submitting. A non-nil state means
// the submit ended without a backend call.
func (m *Machine) beginSubmit(ctx context.Context, input SubmitInput) (cart.OrderDraft, *State, error) {
	m.gate.Lock()
	defer m.gate.Unlock()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.step != enums.CheckoutStepReviewing {
		state := m.snapshotLocked()
		return cart.OrderDraft{}, &state, m.conflictLocked("submit")
	}
	m.confirmedOrderID = ""

	identity := m.session.Identity()
	draft := m.cart.BuildOrderDraft(identity.ClientID, input.Note)
	if len(draft.ProductsIDs) == 0 {
		m.failLocked(ctx, newFailure(enums.FailureReasonEmptyCart, ""))
		m.metrics.ObserveSubmit(string(enums.FailureReasonEmptyCart), 0)
		state := m.snapshotLocked()
		return cart.OrderDraft{}, &state, nil
	}
	if identity.ClientID == "" {
		m.failLocked(ctx, newFailure(enums.FailureReasonValidation, "client session required"))
		m.metrics.ObserveSubmit(string(enums.FailureReasonValidation), 0)
		state := m.snapshotLocked()
		return cart.OrderDraft{}, &state, nil
	}

	m.transitionLocked(ctx, enums.CheckoutStepSubmitting)
	return draft, nil, nil
}

// Acknowledge dismisses a failure and returns to Reviewing. The cart is kept.
func (m *Machine) Acknowledge(ctx context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != enums.CheckoutStepFailed {
		return m.snapshotLocked(), m.conflictLocked("acknowledge")
	}
	m.resetOrderLocked()
	m.transitionLocked(ctx, enums.CheckoutStepReviewing)
	return m.snapshotLocked(), nil
}

// ChoosePix starts the simulated Pix payment.
func (m *Machine) ChoosePix(ctx context.Context) (State, error) {
	return m.choose(ctx, enums.PaymentMethodPix)
}

// ChooseCard starts the simulated card payment.
func (m *Machine) ChooseCard(ctx context.Context) (State, error) {
	return m.choose(ctx, enums.PaymentMethodCard)
}

// Choose starts the payment with a parsed method.
func (m *Machine) Choose(ctx context.Context, method enums.PaymentMethod) (State, error) {
	if !method.IsValid() {
		return m.State(), pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported payment method %q", method))
	}
	return m.choose(ctx, method)
}

func (m *Machine) choose(ctx context.Context, method enums.PaymentMethod) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != enums.CheckoutStepAwaitingPaymentMethod {
		return m.snapshotLocked(), m.conflictLocked("choose payment method")
	}
	m.method = method
	m.transitionLocked(m.logg.WithField(ctx, "payment_method", method), enums.CheckoutStepPaymentInProgress)
	return m.snapshotLocked(), nil
}

// Cancel abandons payment and returns to Reviewing. The created order remains
// on the backend.
func (m *Machine) Cancel(ctx context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != enums.CheckoutStepAwaitingPaymentMethod {
		return m.snapshotLocked(), m.conflictLocked("cancel")
	}
	m.logg.Warn(m.logg.WithOrderID(ctx, m.orderID), "checkout.cancelled_order_left_on_backend")
	m.resetOrderLocked()
	m.transitionLocked(ctx, enums.CheckoutStepReviewing)
	return m.snapshotLocked(), nil
}

// BackToMethodSelection leaves the payment screen for the method picker.
func (m *Machine) BackToMethodSelection(ctx context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != enums.CheckoutStepPaymentInProgress {
		return m.snapshotLocked(), m.conflictLocked("go back to method selection")
	}
	m.method = ""
	m.transitionLocked(ctx, enums.CheckoutStepAwaitingPaymentMethod)
	return m.snapshotLocked(), nil
}

// FailPayment records a declined simulated payment.
func (m *Machine) FailPayment(ctx context.Context, detail string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != enums.CheckoutStepPaymentInProgress {
		return m.snapshotLocked(), m.conflictLocked("fail payment")
	}
	m.failLocked(m.logg.WithOrderID(ctx, m.orderID), newFailure(enums.FailureReasonPayment, detail))
	return m.snapshotLocked(), nil
}

// SimulateSuccess confirms the payment, clears the cart and returns to
// Reviewing. The confirmed order id is kept until the next cart mutation.
func (m *Machine) SimulateSuccess(ctx context.Context) (State, error) {
	m.mu.Lock()
	if m.step != enums.CheckoutStepPaymentInProgress {
		defer m.mu.Unlock()
		return m.snapshotLocked(), m.conflictLocked("complete payment")
	}
	orderID := m.orderID
	ctx = m.logg.WithOrderID(ctx, orderID)
	m.transitionLocked(ctx, enums.CheckoutStepCompleted)
	m.mu.Unlock()

	// Clear notifies onCartChanged, which takes the lock.
	m.cart.Clear(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetOrderLocked()
	m.confirmedOrderID = orderID
	m.transitionLocked(ctx, enums.CheckoutStepReviewing)
	return m.snapshotLocked(), nil
}

func (m *Machine) onCartChanged() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step == enums.CheckoutStepReviewing {
		m.confirmedOrderID = ""
	}
}

func (m *Machine) transitionLocked(ctx context.Context, to enums.CheckoutStep) {
	from := m.step
	m.step = to
	m.metrics.ObserveTransition(string(from), string(to))
	m.logg.Info(m.logg.WithFields(ctx, map[string]any{"from": from, "to": to}), "checkout.transition")
}

func (m *Machine) failLocked(ctx context.Context, failure *Failure) {
	m.failure = failure
	m.method = ""
	ctx = m.logg.WithFields(ctx, map[string]any{"reason": failure.Reason, "detail": failure.Detail})
	m.transitionLocked(ctx, enums.CheckoutStepFailed)
}

func (m *Machine) resetOrderLocked() {
	m.orderID = ""
	m.orderTotal = decimal.Zero
	m.method = ""
	m.failure = nil
}

func (m *Machine) conflictLocked(action string) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot %s while %s", action, m.step)).
		WithDetails(map[string]any{"step": m.step, "action": action})
}

func (m *Machine) snapshotLocked() State {
	state := State{
		Step:             m.step,
		OrderID:          m.orderID,
		Method:           m.method,
		ConfirmedOrderID: m.confirmedOrderID,
	}
	if m.failure != nil {
		failure := *m.failure
		state.Failure = &failure
	}
	if m.orderID != "" {
		total := m.orderTotal
		state.OrderTotal = &total
	}
	if m.step == enums.CheckoutStepPaymentInProgress {
		switch m.method {
		case enums.PaymentMethodPix:
			charge := m.payments.NewPixCharge(m.orderTotal)
			state.Pix = &charge
		case enums.PaymentMethodCard:
			card := m.payments.CardInstructions(m.orderTotal)
			state.Card = &card
		}
	}
	return state
}

// reasonFor maps an order submission error onto a checkout failure reason.
func reasonFor(err error) enums.FailureReason {
	switch pkgerrors.CodeOf(err) {
	case pkgerrors.CodeNetwork:
		return enums.FailureReasonNetwork
	case pkgerrors.CodeValidation, pkgerrors.CodeInvalidArgument:
		return enums.FailureReasonValidation
	case pkgerrors.CodeUpstream:
		return enums.FailureReasonServer
	case pkgerrors.CodeNotFound:
		return enums.FailureReasonNotFound
	default:
		return enums.FailureReasonUnknown
	}
}
