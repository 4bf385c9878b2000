package theme

import (
	"context"
	"errors"
	"sync"

	"github.com/gestfood/digital-menu/pkg/enums"
	pkgerrors "github.com/gestfood/digital-menu/pkg/errors"
	"github.com/gestfood/digital-menu/pkg/kvstore"
	"github.com/gestfood/digital-menu/pkg/logger"
)

// Default is used when nothing valid is persisted.
const Default = enums.ThemeDark

// Store keeps the UI theme preference under the theme key.
type Store struct {
	mu   sync.Mutex
	kv   kvstore.Store
	logg *logger.Logger
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

// Get returns the persisted theme. Unknown values fall back to dark.
func (s *Store) Get(ctx context.Context) (enums.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(ctx)
}

// Set validates and persists the theme.
func (s *Store) Set(ctx context.Context, raw string) (enums.Theme, error) {
	theme, err := enums.ParseTheme(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "theme must be light or dark")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return theme, s.setLocked(ctx, theme)
}

// Toggle flips between light and dark.
func (s *Store) Toggle(ctx context.Context) (enums.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.getLocked(ctx)
	if err != nil {
		return "", err
	}
	next := current.Opposite()
	return next, s.setLocked(ctx, next)
}

func (s *Store) getLocked(ctx context.Context) (enums.Theme, error) {
	raw, found, err := s.kv.Get(ctx, kvstore.KeyTheme)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read theme")
	}
	if !found {
		return Default, nil
	}
	theme, err := enums.ParseTheme(raw)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "theme", raw), "theme.invalid_persisted_value")
		return Default, nil
	}
	return theme, nil
}

func (s *Store) setLocked(ctx context.Context, theme enums.Theme) error {
	if err := s.kv.Set(ctx, kvstore.KeyTheme, theme.String()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist theme")
	}
	return nil
}
