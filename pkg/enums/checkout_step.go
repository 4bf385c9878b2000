package enums

// CheckoutStep names the tag of the checkout state.
type CheckoutStep string

const (
	CheckoutStepReviewing             CheckoutStep = "reviewing"
	CheckoutStepSubmitting            CheckoutStep = "submitting"
	CheckoutStepAwaitingPaymentMethod CheckoutStep = "awaiting_payment_method"
	CheckoutStepPaymentInProgress     CheckoutStep = "payment_in_progress"
	CheckoutStepCompleted             CheckoutStep = "completed"
	CheckoutStepFailed                CheckoutStep = "failed"
)

var validCheckoutSteps = []CheckoutStep{
	CheckoutStepReviewing,
	CheckoutStepSubmitting,
	CheckoutStepAwaitingPaymentMethod,
	CheckoutStepPaymentInProgress,
	CheckoutStepCompleted,
	CheckoutStepFailed,
}

// String implements fmt.Stringer.
func (s CheckoutStep) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CheckoutStep.
func (s CheckoutStep) IsValid() bool {
	for _, candidate := range validCheckoutSteps {
		if candidate == s {
			return true
		}
	}
	return false
}
