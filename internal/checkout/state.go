package checkout

import (
	"github.com/gestfood/digital-menu/internal/payment"
	"github.com/gestfood/digital-menu/pkg/enums"
	"github.com/shopspring/decimal"
)

// Failure explains why checkout stopped.
type Failure struct {
	Reason    enums.FailureReason `json:"reason"`
	Message   string              `json:"message"`
	Detail    string              `json:"detail,omitempty"`
	Retryable bool                `json:"retryable"`
}

func newFailure(reason enums.FailureReason, detail string) *Failure {
	return &Failure{
		Reason:    reason,
		Message:   reason.Message(),
		Detail:    detail,
		Retryable: reason.Retryable(),
	}
}

// State is a snapshot of the machine. Only the fields relevant to Step are set.
type State struct {
	Step             enums.CheckoutStep        `json:"step"`
	OrderID          string                    `json:"orderId,omitempty"`
	OrderTotal       *decimal.Decimal          `json:"orderTotal,omitempty"`
	Method           enums.PaymentMethod       `json:"method,omitempty"`
	Failure          *Failure                  `json:"failure,omitempty"`
	ConfirmedOrderID string                    `json:"confirmedOrderId,omitempty"`
	Pix              *payment.PixCharge        `json:"pix,omitempty"`
	Card             *payment.CardInstructions `json:"card,omitempty"`
}

// SubmitInput carries the optional customer note.
type SubmitInput struct {
	Note string `json:"note" validate:"max=500"`
}
