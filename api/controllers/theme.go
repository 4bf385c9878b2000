package controllers

import (
	"context"
	"net/http"

	"github.com/gestfood/digital-menu/api/responses"
	"github.com/gestfood/digital-menu/api/validators"
	"github.com/gestfood/digital-menu/pkg/enums"
	"github.com/gestfood/digital-menu/pkg/logger"
)

// ThemeStore persists the UI theme.
type ThemeStore interface {
	Get(ctx context.Context) (enums.Theme, error)
	Set(ctx context.Context, raw string) (enums.Theme, error)
	Toggle(ctx context.Context) (enums.Theme, error)
}

type themeRequest struct {
	Theme string `json:"theme" validate:"required"`
}

type themeResponse struct {
	Theme enums.Theme `json:"theme"`
}

func ThemeGet(store ThemeStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeTheme(w, r, logg)(store.Get(r.Context()))
	}
}

func ThemeSet(store ThemeStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload themeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeTheme(w, r, logg)(store.Set(r.Context(), payload.Theme))
	}
}

func ThemeToggle(store ThemeStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeTheme(w, r, logg)(store.Toggle(r.Context()))
	}
}

func writeTheme(w http.ResponseWriter, r *http.Request, logg *logger.Logger) func(enums.Theme, error) {
	return func(theme enums.Theme, err error) {
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, themeResponse{Theme: theme})
	}
}
