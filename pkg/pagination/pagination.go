package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/gestfood/digital-menu/pkg/errors"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 20
	// MaxLimit caps how many items any page can hold.
	MaxLimit = 100
)

// Params holds cursor pagination inputs from controllers.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor points at the last item of the previous page.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// Page is one window of an ordered list.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// EncodeCursor builds a URL-safe cursor string from the provided values.
func EncodeCursor(cursor Cursor) string {
	ts := ""
	if !cursor.CreatedAt.IsZero() {
		ts = cursor.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	payload := fmt.Sprintf("%s|%s", ts, cursor.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes the cursor string back into its components. A blank
// value yields nil.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil, fmt.Errorf("invalid cursor format")
	}

	cursor := &Cursor{ID: parts[1]}
	if parts[0] != "" {
		t, err := time.Parse(time.RFC3339Nano, parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
		}
		cursor.CreatedAt = t
	}
	return cursor, nil
}

// Slice pages through items, which must already be in display order. key
// returns the cursor identity of an item.
func Slice[T any](items []T, params Params, key func(T) Cursor) (Page[T], error) {
	limit := NormalizeLimit(params.Limit)

	start := 0
	cursor, err := ParseCursor(params.Cursor)
	if err != nil {
		return Page[T]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		start = -1
		for i, item := range items {
			if key(item).ID == cursor.ID {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return Page[T]{}, pkgerrors.New(pkgerrors.CodeValidation, "cursor no longer matches any item")
		}
	}

	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	page := Page[T]{Items: append([]T{}, items[start:end]...)}
	if end < len(items) && end > start {
		page.NextCursor = EncodeCursor(key(items[end-1]))
	}
	return page, nil
}
