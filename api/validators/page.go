package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/gestfood/digital-menu/pkg/errors"
	"github.com/gestfood/digital-menu/pkg/pagination"
)

const (
	limitParam  = "limit"
	cursorParam = "cursor"
)

// PageParams reads ?limit= and ?cursor= for list endpoints. A missing limit
// takes the default page size; the cursor is checked for shape here and
// matched against the list later.
func PageParams(r *http.Request) (pagination.Params, error) {
	query := r.URL.Query()
	params := pagination.Params{Limit: pagination.DefaultLimit}

	if raw := strings.TrimSpace(query.Get(limitParam)); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return pagination.Params{}, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a whole number").
				WithDetails(map[string]any{"field": limitParam})
		}
		if limit < 1 || limit > pagination.MaxLimit {
			return pagination.Params{}, pkgerrors.New(pkgerrors.CodeValidation, "limit out of range").
				WithDetails(map[string]any{"field": limitParam, "min": 1, "max": pagination.MaxLimit})
		}
		params.Limit = limit
	}

	params.Cursor = strings.TrimSpace(query.Get(cursorParam))
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return pagination.Params{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor").
			WithDetails(map[string]any{"field": cursorParam})
	}
	return params, nil
}
