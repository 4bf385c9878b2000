package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	pkgerrors "github.com/gestfood/digital-menu/pkg/errors"
	"github.com/gestfood/digital-menu/pkg/kvstore"
	"github.com/gestfood/digital-menu/pkg/logger"
	"go.uber.org/multierr"
)

// Identity is the seated client bound to this device.
type Identity struct {
	ClientID   string `json:"clientId"`
	ClientName string `json:"clientName"`
	DeskCode   string `json:"deskCode"`
}

func (i Identity) complete() bool {
	return i.ClientID != "" && i.ClientName != "" && i.DeskCode != ""
}

var identityKeys = []string{kvstore.KeyClientID, kvstore.KeyClientName, kvstore.KeyDeskCode}

// Store holds the session identity. An identity is either fully present or
// fully absent, in memory and in the key-value store.
type Store struct {
	mu       sync.RWMutex
	identity Identity
	kv       kvstore.Store
	logg     *logger.Logger
}

func NewStore(kv kvstore.Store, logg *logger.Logger) (*Store, error) {
	if kv == nil {
		return nil, errors.New("kv store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{kv: kv, logg: logg}, nil
}

// Load restores the identity when a clientId is persisted.
func (s *Store) Load(ctx context.Context) error {
	values := make(map[string]string, len(identityKeys))
	for _, key := range identityKeys {
		value, _, err := s.kv.Get(ctx, key)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore session")
		}
		values[key] = value
	}
	if values[kvstore.KeyClientID] == "" {
		return nil
	}

	identity := Identity{
		ClientID:   values[kvstore.KeyClientID],
		ClientName: values[kvstore.KeyClientName],
		DeskCode:   values[kvstore.KeyDeskCode],
	}
	s.mu.Lock()
	s.identity = identity
	s.mu.Unlock()
	s.logg.Info(s.logg.WithClientID(ctx, identity.ClientID), "session.restored")
	return nil
}

// SetIdentity persists all three fields when all are present. Any missing field
// evicts the whole identity.
func (s *Store) SetIdentity(ctx context.Context, identity Identity) error {
	identity = Identity{
		ClientID:   strings.TrimSpace(identity.ClientID),
		ClientName: strings.TrimSpace(identity.ClientName),
		DeskCode:   strings.TrimSpace(identity.DeskCode),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !identity.complete() {
		s.identity = Identity{}
		if err := s.kv.Remove(ctx, identityKeys...); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "evict session")
		}
		return nil
	}

	var err error
	err = multierr.Append(err, s.kv.Set(ctx, kvstore.KeyClientID, identity.ClientID))
	err = multierr.Append(err, s.kv.Set(ctx, kvstore.KeyClientName, identity.ClientName))
	err = multierr.Append(err, s.kv.Set(ctx, kvstore.KeyDeskCode, identity.DeskCode))
	if err != nil {
		s.identity = Identity{}
		rollbackErr := s.kv.Remove(ctx, identityKeys...)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, multierr.Append(err, rollbackErr), "persist session")
	}

	s.identity = identity
	s.logg.Info(s.logg.WithClientID(ctx, identity.ClientID), "session.established")
	return nil
}

// Logout clears the identity and the remembered desk.
func (s *Store) Logout(ctx context.Context) error {
	err := s.SetIdentity(ctx, Identity{})
	if removeErr := s.kv.Remove(ctx, kvstore.KeyDeskID); removeErr != nil {
		err = multierr.Append(err, pkgerrors.Wrap(pkgerrors.CodeDependency, removeErr, "evict desk"))
	}
	s.logg.Info(ctx, "session.logged_out")
	return err
}

// RememberSeating stores the CPF and desk chosen while establishing a session.
func (s *Store) RememberSeating(ctx context.Context, cpf, deskID string) error {
	err := multierr.Append(
		s.kv.Set(ctx, kvstore.KeyClientCPF, cpf),
		s.kv.Set(ctx, kvstore.KeyDeskID, deskID),
	)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist seating")
	}
	return nil
}

// Identity returns the current identity.
func (s *Store) Identity() Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// IsLoggedIn is true exactly when a clientId is held.
func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity.ClientID != ""
}

// DeskID returns the remembered desk id, if any.
func (s *Store) DeskID(ctx context.Context) (string, error) {
	value, _, err := s.kv.Get(ctx, kvstore.KeyDeskID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read desk id")
	}
	return value, nil
}
