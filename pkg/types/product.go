package types

import "github.com/shopspring/decimal"

// Product is a menu item as served by the backend and embedded in cart lines.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	ImagesNames []string        `json:"imagesNames,omitempty"`
}

// Clone returns a deep copy.
func (p Product) Clone() Product {
	out := p
	if p.ImagesNames != nil {
		out.ImagesNames = append([]string(nil), p.ImagesNames...)
	}
	return out
}
