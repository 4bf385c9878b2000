package orders

import (
	"time"

	"github.com/gestfood/digital-menu/internal/cart"
	"github.com/gestfood/digital-menu/pkg/enums"
	"github.com/shopspring/decimal"
)

// Order is the backend order resource.
type Order struct {
	ID          string            `json:"id"`
	Description string            `json:"description"`
	TotalAmount decimal.Decimal   `json:"totalAmount"`
	Status      enums.OrderStatus `json:"status"`
	ClientID    string            `json:"clientId"`
	ProductsIDs []string          `json:"productsIds"`
	CreatedAt   *time.Time        `json:"createdAt,omitempty"`
}

// StatusLabel is the display label for the order status.
func (o Order) StatusLabel() string {
	return o.Status.Label()
}

// payload is the request body for create and update. The backend expects the
// amount as a JSON number.
type payload struct {
	Description string            `json:"description"`
	TotalAmount float64           `json:"totalAmount"`
	Status      enums.OrderStatus `json:"status"`
	ClientID    string            `json:"clientId"`
	ProductsIDs []string          `json:"productsIds"`
}

func payloadFromDraft(draft cart.OrderDraft) payload {
	ids := draft.ProductsIDs
	if ids == nil {
		ids = []string{}
	}
	status := draft.Status
	if status == "" {
		status = enums.OrderStatusPending
	}
	return payload{
		Description: draft.Description,
		TotalAmount: draft.TotalAmount.Round(2).InexactFloat64(),
		Status:      status,
		ClientID:    draft.ClientID,
		ProductsIDs: ids,
	}
}

func payloadFromOrder(order Order) payload {
	return payloadFromDraft(cart.OrderDraft{
		Description: order.Description,
		TotalAmount: order.TotalAmount,
		Status:      order.Status,
		ClientID:    order.ClientID,
		ProductsIDs: order.ProductsIDs,
	})
}
