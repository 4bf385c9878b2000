package kvstore

import (
	"context"
	"errors"
	"time"

	"github.com/gestfood/digital-menu/pkg/db/models"
	pkgerrors "github.com/gestfood/digital-menu/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQL stores values in the kv_entries table, scoped by namespace.
type SQL struct {
	db        *gorm.DB
	namespace string
	now       func() time.Time
}

func NewSQL(db *gorm.DB, namespace string) (*SQL, error) {
	if db == nil {
		return nil, errors.New("gorm db required")
	}
	if namespace == "" {
		return nil, errors.New("namespace required")
	}
	return &SQL{db: db, namespace: namespace, now: time.Now}, nil
}

func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	var entry models.KVEntry
	err := s.db.WithContext(ctx).
		Where("namespace = ? AND entry_key = ?", s.namespace, key).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read kv entry")
	}
	return entry.Value, true, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	entry := models.KVEntry{
		Namespace: s.namespace,
		Key:       key,
		Value:     value,
		UpdatedAt: s.now().UTC(),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "namespace"}, {Name: "entry_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write kv entry")
	}
	return nil
}

func (s *SQL) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Where("namespace = ? AND entry_key IN ?", s.namespace, keys).
		Delete(&models.KVEntry{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove kv entries")
	}
	return nil
}
