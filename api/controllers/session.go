package controllers

import (
	"context"
	"net/http"

	"github.com/gestfood/digital-menu/api/responses"
	"github.com/gestfood/digital-menu/api/validators"
	"github.com/gestfood/digital-menu/internal/catalog"
	"github.com/gestfood/digital-menu/internal/seating"
	"github.com/gestfood/digital-menu/internal/session"
	"github.com/gestfood/digital-menu/pkg/logger"
)

// SessionStore is the identity surface exposed to the view layer.
type SessionStore interface {
	Identity() session.Identity
	IsLoggedIn() bool
	DeskID(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
}

// Seating establishes sessions from backend credentials.
type Seating interface {
	Desks(ctx context.Context) ([]catalog.Desk, error)
	Login(ctx context.Context, input seating.LoginInput) (session.Identity, error)
	Register(ctx context.Context, input seating.RegisterInput) (session.Identity, error)
}

type sessionResponse struct {
	session.Identity
	LoggedIn bool   `json:"loggedIn"`
	DeskID   string `json:"deskId,omitempty"`
}

func SessionGet(store SessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := newSessionResponse(r.Context(), store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

func SessionLogin(svc Seating, store SessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload seating.LoginInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := svc.Login(r.Context(), payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeSession(w, r, store, logg, http.StatusOK)
	}
}

func SessionRegister(svc Seating, store SessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload seating.RegisterInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := svc.Register(r.Context(), payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeSession(w, r, store, logg, http.StatusCreated)
	}
}

func SessionLogout(store SessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Logout(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeSession(w, r, store, logg, http.StatusOK)
	}
}

func DesksList(svc Seating, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		desks, err := svc.Desks(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, desks)
	}
}

func writeSession(w http.ResponseWriter, r *http.Request, store SessionStore, logg *logger.Logger, status int) {
	resp, err := newSessionResponse(r.Context(), store)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, status, resp)
}

func newSessionResponse(ctx context.Context, store SessionStore) (sessionResponse, error) {
	deskID, err := store.DeskID(ctx)
	if err != nil {
		return sessionResponse{}, err
	}
	return sessionResponse{
		Identity: store.Identity(),
		LoggedIn: store.IsLoggedIn(),
		DeskID:   deskID,
	}, nil
}
