package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type kvRecord struct {
	Key       string `gorm:"column:storage_key;primaryKey"`
	Value     string `gorm:"column:storage_value;not null"`
	UpdatedAt time.Time
}

func (kvRecord) TableName() string {
	return "kv_store"
}

// GormMedium is the kv_store table behind gorm, for deployments that already
// run the gorm sqlite/postgres stack.
type GormMedium struct {
	db *gorm.DB
}

func NewGormMedium(db *gorm.DB) *GormMedium {
	return &GormMedium{db: db}
}

func (m *GormMedium) Init(ctx context.Context) error {
	return m.db.WithContext(ctx).AutoMigrate(&kvRecord{})
}

func (m *GormMedium) Get(ctx context.Context, key string) (string, bool, error) {
	var rec kvRecord
	err := m.db.WithContext(ctx).Where("storage_key = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rec.Value, true, nil
}

func (m *GormMedium) Set(ctx context.Context, key, value string) error {
	rec := kvRecord{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"storage_value", "updated_at"}),
	}).Create(&rec).Error
}

func (m *GormMedium) Remove(ctx context.Context, key string) error {
	return m.db.WithContext(ctx).Where("storage_key = ?", key).Delete(&kvRecord{}).Error
}

func (m *GormMedium) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	q := m.db.WithContext(ctx).Model(&kvRecord{})
	if prefix != "" {
		q = q.Where("substr(storage_key, 1, ?) = ?", len(prefix), prefix)
	}
	err := q.Order("storage_key").Pluck("storage_key", &keys).Error
	return keys, err
}

func (m *GormMedium) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
