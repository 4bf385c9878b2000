package validators

import (
	"net/http/httptest"
	"testing"
	"time"

	pkgerrors "github.com/gestfood/digital-menu/pkg/errors"
	"github.com/gestfood/digital-menu/pkg/pagination"
)

func TestPageParamsDefaults(t *testing.T) {
	params, err := PageParams(httptest.NewRequest("GET", "/api/v1/orders", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.Limit != pagination.DefaultLimit || params.Cursor != "" {
		t.Fatalf("unexpected params %+v", params)
	}
}

func TestPageParamsAcceptsCursor(t *testing.T) {
	cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), ID: "o9"})
	params, err := PageParams(httptest.NewRequest("GET", "/api/v1/orders?limit=5&cursor="+cursor, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.Limit != 5 || params.Cursor != cursor {
		t.Fatalf("unexpected params %+v", params)
	}
}

func TestPageParamsRejectsBadInput(t *testing.T) {
	for _, query := range []string{"limit=0", "limit=101", "limit=dez", "cursor=%25%25%25"} {
		_, err := PageParams(httptest.NewRequest("GET", "/api/v1/orders?"+query, nil))
		if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", query, err)
		}
	}
}
