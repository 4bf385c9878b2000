package orders

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/gestfood/digital-menu/internal/cart"
	pkgerrors "github.com/gestfood/digital-menu/pkg/errors"
	"github.com/gestfood/digital-menu/pkg/logger"
	"github.com/gestfood/digital-menu/pkg/restclient"
	"github.com/google/uuid"
)

const resourcePath = "/orders"

// Service is the order submission transport. Errors carry the restclient
// classification: NETWORK_ERROR, VALIDATION_ERROR, NOT_FOUND or UPSTREAM_ERROR.
type Service interface {
	Create(ctx context.Context, draft cart.OrderDraft) (string, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	Update(ctx context.Context, id string, order Order) (string, error)
	Remove(ctx context.Context, id string) error
}

type service struct {
	orders *restclient.Resource[Order]
	logg   *logger.Logger
	newKey func() string
}

func NewService(client *restclient.Client, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, errors.New("rest client required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		orders: restclient.NewResource[Order](client, resourcePath),
		logg:   logg,
		newKey: func() string { return uuid.NewString() },
	}, nil
}

// Create posts the draft and returns the backend-assigned id. Each call carries
// a fresh idempotency key.
func (s *service) Create(ctx context.Context, draft cart.OrderDraft) (string, error) {
	if strings.TrimSpace(draft.ClientID) == "" {
		return "", pkgerrors.New(pkgerrors.CodeInvalidArgument, "clientId is required")
	}

	key := s.newKey()
	ctx = s.logg.WithClientID(ctx, draft.ClientID)
	id, err := s.orders.Create(ctx, payloadFromDraft(draft), restclient.WithIdempotencyKey(key))
	if err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"idempotency_key": key, "error": err.Error()}), "orders.create_failed")
		return "", err
	}
	s.logg.Info(s.logg.WithOrderID(ctx, id), "orders.created")
	return id, nil
}

// GetByID fetches one order. A blank id fails with INVALID_ARGUMENT before any
// request is made.
func (s *service) GetByID(ctx context.Context, id string) (*Order, error) {
	return s.orders.Get(ctx, id)
}

// List returns all orders; a 404 yields an empty list.
func (s *service) List(ctx context.Context) ([]Order, error) {
	return s.orders.List(ctx)
}

func (s *service) Update(ctx context.Context, id string, order Order) (string, error) {
	return s.orders.Update(ctx, id, payloadFromOrder(order))
}

func (s *service) Remove(ctx context.Context, id string) error {
	return s.orders.Delete(ctx, id)
}

// ForClient filters orders placed by clientID, newest first. Orders without a
// timestamp go last, in backend order.
func ForClient(all []Order, clientID string) []Order {
	out := make([]Order, 0, len(all))
	for _, order := range all {
		if order.ClientID == clientID {
			out = append(out, order)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return newer(out[i], out[j]) })
	return out
}

func newer(a, b Order) bool {
	switch {
	case a.CreatedAt == nil:
		return false
	case b.CreatedAt == nil:
		return true
	default:
		return a.CreatedAt.After(*b.CreatedAt)
	}
}
