package pagination

import (
	"testing"
	"time"

	pkgerrors "github.com/gestfood/digital-menu/pkg/errors"
)

type row struct {
	id string
	at time.Time
}

func rowKey(r row) Cursor {
	return Cursor{ID: r.id, CreatedAt: r.at}
}

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	cursor, err := ParseCursor(EncodeCursor(Cursor{CreatedAt: at, ID: "o-9"}))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cursor.ID != "o-9" || !cursor.CreatedAt.Equal(at) {
		t.Fatalf("unexpected cursor %+v", cursor)
	}

	cursor, err = ParseCursor(EncodeCursor(Cursor{ID: "no-time"}))
	if err != nil || cursor.ID != "no-time" || !cursor.CreatedAt.IsZero() {
		t.Fatalf("expected cursor without timestamp, got %+v %v", cursor, err)
	}

	if cursor, err := ParseCursor("  "); cursor != nil || err != nil {
		t.Fatalf("blank cursor should be nil, got %+v %v", cursor, err)
	}
	if _, err := ParseCursor("%%%"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestSliceWalksPages(t *testing.T) {
	rows := []row{{id: "a"}, {id: "b"}, {id: "c"}, {id: "d"}, {id: "e"}}

	first, err := Slice(rows, Params{Limit: 2}, rowKey)
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.Items) != 2 || first.Items[0].id != "a" || first.NextCursor == "" {
		t.Fatalf("unexpected first page %+v", first)
	}

	second, err := Slice(rows, Params{Limit: 2, Cursor: first.NextCursor}, rowKey)
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if second.Items[0].id != "c" || second.Items[1].id != "d" {
		t.Fatalf("unexpected second page %+v", second)
	}

	last, err := Slice(rows, Params{Limit: 2, Cursor: second.NextCursor}, rowKey)
	if err != nil {
		t.Fatalf("last page: %v", err)
	}
	if len(last.Items) != 1 || last.NextCursor != "" {
		t.Fatalf("expected a final single-item page, got %+v", last)
	}
}

func TestSliceRejectsUnknownCursor(t *testing.T) {
	_, err := Slice([]row{{id: "a"}}, Params{Cursor: EncodeCursor(Cursor{ID: "zzz"})}, rowKey)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNormalizeLimit(t *testing.T) {
	if NormalizeLimit(0) != DefaultLimit || NormalizeLimit(1000) != MaxLimit || NormalizeLimit(7) != 7 {
		t.Fatalf("unexpected limit normalization")
	}
}
