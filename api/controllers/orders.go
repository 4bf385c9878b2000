package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gestfood/digital-menu/api/responses"
	"github.com/gestfood/digital-menu/api/validators"
	"github.com/gestfood/digital-menu/internal/orders"
	pkgerrors "github.com/gestfood/digital-menu/pkg/errors"
	"github.com/gestfood/digital-menu/pkg/logger"
	"github.com/gestfood/digital-menu/pkg/pagination"
)

// OrderReader fetches orders from the backend.
type OrderReader interface {
	GetByID(ctx context.Context, id string) (*orders.Order, error)
	List(ctx context.Context) ([]orders.Order, error)
}

type orderResponse struct {
	orders.Order
	StatusLabel string `json:"statusLabel"`
}

func newOrderResponse(order orders.Order) orderResponse {
	return orderResponse{Order: order, StatusLabel: order.StatusLabel()}
}

// OrdersList pages through the seated client's orders, newest first.
func OrdersList(svc OrderReader, store SessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, ok := requireClient(w, r, store, logg)
		if !ok {
			return
		}
		params, err := validators.PageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		all, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := pagination.Slice(orders.ForClient(all, clientID), params, orderCursor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := pagination.Page[orderResponse]{
			Items:      make([]orderResponse, 0, len(page.Items)),
			NextCursor: page.NextCursor,
		}
		for _, order := range page.Items {
			out.Items = append(out.Items, newOrderResponse(order))
		}
		responses.WriteSuccess(w, out)
	}
}

// OrdersGet returns one of the seated client's orders.
func OrdersGet(svc OrderReader, store SessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, ok := requireClient(w, r, store, logg)
		if !ok {
			return
		}
		order, err := svc.GetByID(r.Context(), chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if order.ClientID != clientID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
			return
		}
		responses.WriteSuccess(w, newOrderResponse(*order))
	}
}

func orderCursor(order orders.Order) pagination.Cursor {
	cursor := pagination.Cursor{ID: order.ID}
	if order.CreatedAt != nil {
		cursor.CreatedAt = *order.CreatedAt
	}
	return cursor
}

func requireClient(w http.ResponseWriter, r *http.Request, store SessionStore, logg *logger.Logger) (string, bool) {
	identity := store.Identity()
	if identity.ClientID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "client session required"))
		return "", false
	}
	return identity.ClientID, true
}
