package cart

import (
	"github.com/gestfood/digital-menu/pkg/enums"
	"github.com/gestfood/digital-menu/pkg/types"
	"github.com/shopspring/decimal"
)

// LineItem is one product in the cart. Product is nil when the snapshot was
// never captured; such lines count as zero-priced.
type LineItem struct {
	ProductID string         `json:"productId"`
	Quantity  int            `json:"quantity"`
	Product   *types.Product `json:"product,omitempty"`
}

func (l LineItem) clone() LineItem {
	out := l
	if l.Product != nil {
		product := l.Product.Clone()
		out.Product = &product
	}
	return out
}

// Snapshot is the derived view rendered by the cart screen.
type Snapshot struct {
	Items             []LineItem      `json:"items"`
	TotalItemCount    int             `json:"totalItemCount"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	MissingPriceItems []string        `json:"missingPriceItems"`
}

// OrderDraft is the payload derived from the cart when the client checks out.
type OrderDraft struct {
	Description string            `json:"description"`
	TotalAmount decimal.Decimal   `json:"totalAmount"`
	Status      enums.OrderStatus `json:"status"`
	ClientID    string            `json:"clientId"`
	ProductsIDs []string          `json:"productsIds"`
}
