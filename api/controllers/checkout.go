package controllers

import (
	"context"
	"net/http"

	"github.com/gestfood/digital-menu/api/responses"
	"github.com/gestfood/digital-menu/api/validators"
	"github.com/gestfood/digital-menu/internal/checkout"
	"github.com/gestfood/digital-menu/pkg/logger"
)

// Checkout is the state machine driven by the checkout screens.
type Checkout interface {
	CartGuard
	State() checkout.State
	Submit(ctx context.Context, input checkout.SubmitInput) (checkout.State, error)
	Acknowledge(ctx context.Context) (checkout.State, error)
	ChoosePix(ctx context.Context) (checkout.State, error)
	ChooseCard(ctx context.Context) (checkout.State, error)
	Cancel(ctx context.Context) (checkout.State, error)
	BackToMethodSelection(ctx context.Context) (checkout.State, error)
	SimulateSuccess(ctx context.Context) (checkout.State, error)
	FailPayment(ctx context.Context, detail string) (checkout.State, error)
}

type failPaymentRequest struct {
	Detail string `json:"detail" validate:"max=200"`
}

func CheckoutState(machine Checkout) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, machine.State())
	}
}

// CheckoutSubmit accepts an optional {"note": "..."} body. The order request
// is not cancelled when the client disconnects; the transport timeout bounds it.
func CheckoutSubmit(machine Checkout, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkout.SubmitInput
		if err := validators.DecodeOptionalJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeTransition(w, r, logg)(machine.Submit(context.WithoutCancel(r.Context()), payload))
	}
}

func CheckoutFailPayment(machine Checkout, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload failPaymentRequest
		if err := validators.DecodeOptionalJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeTransition(w, r, logg)(machine.FailPayment(context.WithoutCancel(r.Context()), payload.Detail))
	}
}

// CheckoutTransition adapts a body-less machine intent.
func CheckoutTransition(intent func(context.Context) (checkout.State, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeTransition(w, r, logg)(intent(context.WithoutCancel(r.Context())))
	}
}

func writeTransition(w http.ResponseWriter, r *http.Request, logg *logger.Logger) func(checkout.State, error) {
	return func(state checkout.State, err error) {
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}
