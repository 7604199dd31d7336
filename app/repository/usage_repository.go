package repository

import (
	"context"
	"time"

	"github.com/ManuelReschke/AdEngine/app/models"
	"gorm.io/gorm"
)

type usageRepository struct {
	db *gorm.DB
}

// NewUsageRepository creates a new usage ledger repository instance
func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepository{db: db}
}

// Create appends one row. CreatedAt is kept when the caller set it.
func (r *usageRepository) Create(ctx context.Context, record *models.UsageRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *usageRepository) CountInRange(ctx context.Context, userID uint, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UsageRecord{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from.UTC(), to.UTC()).
		Count(&count).Error
	return count, err
}

func (r *usageRepository) ListInRange(ctx context.Context, from, to time.Time, offset, limit int) ([]models.UsageRecord, error) {
	var records []models.UsageRecord
	q := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Order("created_at ASC").Order("id ASC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&records).Error
	return records, err
}
