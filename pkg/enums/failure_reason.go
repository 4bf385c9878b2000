package enums

// FailureReason classifies why checkout landed in the failed step.
type FailureReason string

const (
	FailureReasonEmptyCart  FailureReason = "empty_cart"
	FailureReasonNetwork    FailureReason = "network"
	FailureReasonValidation FailureReason = "validation"
	FailureReasonServer     FailureReason = "server"
	FailureReasonNotFound   FailureReason = "not_found"
	FailureReasonPayment    FailureReason = "payment"
	FailureReasonUnknown    FailureReason = "unknown"
)

var failureReasonMessages = map[FailureReason]string{
	FailureReasonEmptyCart:  "Seu carrinho está vazio.",
	FailureReasonNetwork:    "Sem conexão com o servidor. Verifique sua rede e tente novamente.",
	FailureReasonValidation: "Dados do pedido inválidos.",
	FailureReasonServer:     "Erro no servidor. Tente novamente em instantes.",
	FailureReasonNotFound:   "Recurso não encontrado.",
	FailureReasonPayment:    "Pagamento não aprovado.",
	FailureReasonUnknown:    "Erro inesperado ao finalizar o pedido.",
}

// String implements fmt.Stringer.
func (r FailureReason) String() string {
	return string(r)
}

// Message returns the user-facing message for the reason.
func (r FailureReason) Message() string {
	if msg, ok := failureReasonMessages[r]; ok {
		return msg
	}
	return failureReasonMessages[FailureReasonUnknown]
}

// Retryable reports whether resubmitting the same cart can succeed.
func (r FailureReason) Retryable() bool {
	return r == FailureReasonNetwork || r == FailureReasonServer
}
