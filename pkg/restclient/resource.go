package restclient

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/gestfood/digital-menu/pkg/errors"
)

// Resource is a JSON CRUD collection such as /clients or /orders.
type Resource[T any] struct {
	client *Client
	path   string
}

func NewResource[T any](client *Client, path string) *Resource[T] {
	return &Resource[T]{client: client, path: "/" + strings.Trim(path, "/")}
}

// Path returns the collection path.
func (r *Resource[T]) Path() string {
	return r.path
}

// List fetches the collection. A 404 reply means the collection is empty.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	err := r.client.JSON(ctx, http.MethodGet, r.path, nil, &items)
	if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Get fetches one item. A blank id fails locally without a round-trip.
func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	path, err := r.itemPath(id)
	if err != nil {
		return nil, err
	}
	var item T
	if err := r.client.JSON(ctx, http.MethodGet, path, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create posts the item and returns the id assigned by the backend.
func (r *Resource[T]) Create(ctx context.Context, item any, opts ...RequestOption) (string, error) {
	raw, err := r.client.Raw(ctx, http.MethodPost, r.path, item, opts...)
	if err != nil {
		return "", err
	}
	return DecodeID(raw)
}

// Update replaces the item and returns the id echoed by the backend.
func (r *Resource[T]) Update(ctx context.Context, id string, item any, opts ...RequestOption) (string, error) {
	path, err := r.itemPath(id)
	if err != nil {
		return "", err
	}
	raw, err := r.client.Raw(ctx, http.MethodPut, path, item, opts...)
	if err != nil {
		return "", err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return strings.TrimSpace(id), nil
	}
	return DecodeID(raw)
}

// Delete removes the item.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	path, err := r.itemPath(id)
	if err != nil {
		return err
	}
	_, err = r.client.Raw(ctx, http.MethodDelete, path, nil)
	return err
}

func (r *Resource[T]) itemPath(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeInvalidArgument, "id is required")
	}
	return r.path + "/" + url.PathEscape(trimmed), nil
}
