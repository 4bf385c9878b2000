package models

import "time"

// KVEntry is one persisted device-state value.
type KVEntry struct {
	Namespace string    `gorm:"column:namespace;primaryKey"`
	Key       string    `gorm:"column:entry_key;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (KVEntry) TableName() string { return "kv_entries" }
