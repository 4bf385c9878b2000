package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gestfood/digital-menu/api/responses"
	pkgerrors "github.com/gestfood/digital-menu/pkg/errors"
	"github.com/gestfood/digital-menu/pkg/logger"
)

// Recoverer turns a handler panic into a 500 envelope. It sits outside the
// request id and device middleware, so it tags the log with both itself.
// http.ErrAbortHandler is re-raised for net/http to drop the connection.
func Recoverer(logg *logger.Logger, deviceID string) func(http.Handler) http.Handler {
	if logg == nil {
		logg = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				err := fmt.Errorf("panic: %v", rec)
				ctx := logg.WithFields(r.Context(), map[string]any{
					"panic":  fmt.Sprint(rec),
					"method": r.Method,
					"path":   r.URL.Path,
					"stack":  string(debug.Stack()),
				})
				if deviceID != "" {
					ctx = logg.WithDeviceID(ctx, deviceID)
				}
				if reqID := w.Header().Get(requestIDHeader); reqID != "" {
					ctx = logg.WithRequestID(ctx, reqID)
				}
				logg.Error(ctx, "request.panic", err)
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
