package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gestfood/digital-menu/api/responses"
	"github.com/gestfood/digital-menu/api/validators"
	"github.com/gestfood/digital-menu/internal/cart"
	pkgerrors "github.com/gestfood/digital-menu/pkg/errors"
	"github.com/gestfood/digital-menu/pkg/logger"
	"github.com/gestfood/digital-menu/pkg/types"
)

// CartStore is the cart surface the handlers mutate.
type CartStore interface {
	Snapshot() cart.Snapshot
	Quantity(productID string) int
	AddItem(ctx context.Context, product types.Product, quantity int)
	SetQuantity(ctx context.Context, productID string, quantity int)
	RemoveItem(ctx context.Context, productID string)
	Clear(ctx context.Context)
}

// CartGuard gates cart edits on the checkout step. EditCart runs the mutation
// only while the cart is editable.
type CartGuard interface {
	CartEditable() bool
	EditCart(ctx context.Context, fn func() error) error
}

// ProductReader resolves menu items.
type ProductReader interface {
	List(ctx context.Context) ([]types.Product, error)
	Get(ctx context.Context, id string) (*types.Product, error)
}

type cartResponse struct {
	cart.Snapshot
	Editable bool `json:"editable"`
}

type addCartItemRequest struct {
	ProductID string         `json:"productId" validate:"required"`
	Quantity  int            `json:"quantity" validate:"gt=0,max=99"`
	Product   *types.Product `json:"product,omitempty"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0,max=99"`
}

func CartGet(store CartStore, guard CartGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, newCartResponse(store, guard))
	}
}

// CartAddItem adds a product by id. The product snapshot comes from the body
// when supplied, otherwise from the menu.
func CartAddItem(store CartStore, guard CartGuard, menu ProductReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireEditable(w, r, guard, logg) {
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID := strings.TrimSpace(payload.ProductID)
		product := payload.Product
		if product == nil || product.ID != productID {
			fetched, err := menu.Get(r.Context(), productID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			product = fetched
		}

		ctx := context.WithoutCancel(r.Context())
		err := guard.EditCart(ctx, func() error {
			if store.Quantity(productID)+payload.Quantity > cart.MaxLineQuantity {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity per item is limited to %d", cart.MaxLineQuantity)).
					WithDetails(map[string]any{"productId": productID})
			}
			store.AddItem(ctx, *product, payload.Quantity)
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(store, guard))
	}
}

func CartSetQuantity(store CartStore, guard CartGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID := chi.URLParam(r, "productId")
		editCart(w, r, store, guard, logg, func(ctx context.Context) {
			store.SetQuantity(ctx, productID, *payload.Quantity)
		})
	}
}

func CartRemoveItem(store CartStore, guard CartGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := chi.URLParam(r, "productId")
		editCart(w, r, store, guard, logg, func(ctx context.Context) {
			store.RemoveItem(ctx, productID)
		})
	}
}

func CartClear(store CartStore, guard CartGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		editCart(w, r, store, guard, logg, store.Clear)
	}
}

// editCart applies mutate under the checkout guard. The mutation outlives a
// dropped client so the persisted cart stays in step with memory.
func editCart(w http.ResponseWriter, r *http.Request, store CartStore, guard CartGuard, logg *logger.Logger, mutate func(ctx context.Context)) {
	ctx := context.WithoutCancel(r.Context())
	err := guard.EditCart(ctx, func() error {
		mutate(ctx)
		return nil
	})
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, newCartResponse(store, guard))
}

func newCartResponse(store CartStore, guard CartGuard) cartResponse {
	return cartResponse{Snapshot: store.Snapshot(), Editable: guard.CartEditable()}
}

func requireEditable(w http.ResponseWriter, r *http.Request, guard CartGuard, logg *logger.Logger) bool {
	if guard.CartEditable() {
		return true
	}
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is locked while checkout is in progress").
		WithDetails(map[string]any{"action": "edit cart"}))
	return false
}
