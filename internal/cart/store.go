package cart

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/gestfood/digital-menu/pkg/kvstore"
	"github.com/gestfood/digital-menu/pkg/logger"
	"github.com/gestfood/digital-menu/pkg/types"
	"github.com/shopspring/decimal"
)

// Listener is notified after every cart mutation.
type Listener func()

// Store owns the device cart. Every mutation is written through to the
// key-value store before the call returns; write failures are logged and the
// in-memory state stays authoritative.
type Store struct {
	mu        sync.Mutex
	items     []LineItem
	kv        kvstore.Store
	logg      *logger.Logger
	listeners []Listener
}

// NewStore builds an empty cart. Call Load to restore persisted state.
func NewStore(kv kvstore.Store, logg *logger.Logger) (*Store, error) {
	if kv == nil {
		return nil, errors.New("kv store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{kv: kv, logg: logg}, nil
}

// Load restores the cart from the persisted cart key. A missing or malformed
// payload leaves the cart empty.
func (s *Store) Load(ctx context.Context) {
	raw, found, err := s.kv.Get(ctx, kvstore.KeyCart)
	if err != nil {
		s.logg.Error(ctx, "cart.load_failed", err)
		return
	}
	if !found || strings.TrimSpace(raw) == "" {
		return
	}

	var persisted []LineItem
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart.load_malformed")
		return
	}

	merged := make([]LineItem, 0, len(persisted))
	index := map[string]int{}
	for _, item := range persisted {
		if strings.TrimSpace(item.ProductID) == "" || item.Quantity <= 0 {
			s.logg.Warn(s.logg.WithField(ctx, "product_id", item.ProductID), "cart.load_skipped_line")
			continue
		}
		if pos, ok := index[item.ProductID]; ok {
			merged[pos].Quantity += item.Quantity
			if item.Product != nil {
				merged[pos].Product = item.Product
			}
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}

	s.mu.Lock()
	s.items = merged
	s.mu.Unlock()
	s.logg.Debug(s.logg.WithField(ctx, "lines", len(merged)), "cart.loaded")
}

// Subscribe registers fn to run after each mutation.
func (s *Store) Subscribe(fn Listener) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// AddItem appends the product or, when a line for it exists, increases the
// quantity and refreshes the snapshot. A blank product id or a non-positive
// quantity is logged and ignored.
func (s *Store) AddItem(ctx context.Context, product types.Product, quantity int) {
	productID := strings.TrimSpace(product.ID)
	if productID == "" {
		s.logg.Warn(ctx, "cart.add_item_missing_product_id")
		return
	}
	if quantity <= 0 {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"product_id": productID, "quantity": quantity}), "cart.add_item_invalid_quantity")
		return
	}

	snapshot := product.Clone()
	snapshot.ID = productID

	s.mutate(ctx, func(items []LineItem) []LineItem {
		for i := range items {
			if items[i].ProductID == productID {
				items[i].Quantity += quantity
				items[i].Product = &snapshot
				return items
			}
		}
		return append(items, LineItem{ProductID: productID, Quantity: quantity, Product: &snapshot})
	})
}

// RemoveItem deletes the line for productID. Removing an absent id is a no-op.
func (s *Store) RemoveItem(ctx context.Context, productID string) {
	s.mutate(ctx, func(items []LineItem) []LineItem {
		out := items[:0]
		for _, item := range items {
			if item.ProductID != productID {
				out = append(out, item)
			}
		}
		return out
	})
}

// SetQuantity overwrites the quantity of an existing line. Unknown ids are
// ignored.
func (s *Store) SetQuantity(ctx context.Context, productID string, quantity int) {
	s.mutate(ctx, func(items []LineItem) []LineItem {
		for i := range items {
			if items[i].ProductID == productID {
				items[i].Quantity = quantity
			}
		}
		return items
	})
}

// Clear empties the cart and removes the persisted cart key.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	if err := s.kv.Remove(ctx, kvstore.KeyCart); err != nil {
		s.logg.Error(ctx, "cart.persist_failed", err)
	}
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	notify(listeners)
}

// Items returns a copy of the current lines in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// Quantity returns the quantity on the line for productID, zero when absent.
func (s *Store) Quantity(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}

// IsEmpty reports whether the cart has no lines.
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

func (s *Store) TotalItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalItemCount(s.items)
}

func (s *Store) TotalAmount() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalAmount(s.items)
}

// Snapshot returns the derived cart view.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Items:             cloneItems(s.items),
		TotalItemCount:    totalItemCount(s.items),
		TotalAmount:       totalAmount(s.items),
		MissingPriceItems: missingPriceItems(s.items),
	}
}

// BuildOrderDraft derives the order payload for clientID without touching the
// cart. The optional note is appended to the description.
func (s *Store) BuildOrderDraft(clientID string, note ...string) OrderDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return buildDraft(s.items, clientID, strings.Join(note, " "))
}

func (s *Store) mutate(ctx context.Context, fn func([]LineItem) []LineItem) {
	s.mu.Lock()
	s.items = fn(s.items)
	s.persistLocked(ctx)
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	notify(listeners)
}

func (s *Store) persistLocked(ctx context.Context) {
	items := s.items
	if items == nil {
		items = []LineItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		s.logg.Error(ctx, "cart.persist_failed", err)
		return
	}
	if err := s.kv.Set(ctx, kvstore.KeyCart, string(payload)); err != nil {
		s.logg.Error(ctx, "cart.persist_failed", err)
	}
}

func notify(listeners []Listener) {
	for _, fn := range listeners {
		fn()
	}
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, item.clone())
	}
	return out
}
