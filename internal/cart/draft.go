package cart

import (
	"fmt"
	"strings"

	"github.com/gestfood/digital-menu/pkg/enums"
	"github.com/shopspring/decimal"
)

const (
	// MaxNoteLength bounds the optional customer note, in characters.
	MaxNoteLength = 500
	// MaxLineQuantity bounds the quantity a single line may reach through the
	// HTTP surface.
	MaxLineQuantity = 99

	unnamedProduct     = "Produto"
	defaultDescription = "Pedido do cardápio online"
	noteSeparator      = " | Obs: "
)

func totalItemCount(items []LineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func totalAmount(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func missingPriceItems(items []LineItem) []string {
	missing := []string{}
	for _, item := range items {
		if item.Product == nil {
			missing = append(missing, item.ProductID)
		}
	}
	return missing
}

// buildDraft derives the order from lines with a positive quantity. Lines at
// zero or below are left out of the description, the ids and the total.
func buildDraft(items []LineItem, clientID, note string) OrderDraft {
	orderable := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.Quantity > 0 {
			orderable = append(orderable, item)
		}
	}

	parts := make([]string, 0, len(orderable))
	productIDs := make([]string, 0, totalItemCount(orderable))
	for _, item := range orderable {
		name := unnamedProduct
		if item.Product != nil && strings.TrimSpace(item.Product.Name) != "" {
			name = item.Product.Name
		}
		parts = append(parts, fmt.Sprintf("%dx %s", item.Quantity, name))
		for i := 0; i < item.Quantity; i++ {
			productIDs = append(productIDs, item.ProductID)
		}
	}

	description := strings.Join(parts, ", ")
	if description == "" {
		description = defaultDescription
	}
	if trimmed := truncateNote(note); trimmed != "" {
		description += noteSeparator + trimmed
	}

	return OrderDraft{
		Description: description,
		TotalAmount: totalAmount(orderable),
		Status:      enums.OrderStatusPending,
		ClientID:    clientID,
		ProductsIDs: productIDs,
	}
}

func truncateNote(note string) string {
	trimmed := strings.TrimSpace(note)
	runes := []rune(trimmed)
	if len(runes) > MaxNoteLength {
		trimmed = strings.TrimSpace(string(runes[:MaxNoteLength]))
	}
	return trimmed
}
