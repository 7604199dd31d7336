package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UsageRecord is one row per successful generation call. Rows are append-only;
// the monthly quota counts rows, GenerationCount is informational.
type UsageRecord struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UUID            string    `gorm:"type:char(36);uniqueIndex" json:"uuid"`
	UserID          uint      `gorm:"not null;index:idx_usage_records_user_created,priority:1" json:"user_id"`
	InputURL        string    `gorm:"type:text;not null" json:"input_url"`
	GenerationCount int       `gorm:"not null;default:1" json:"generation_count"`
	AIModelUsed     string    `gorm:"column:ai_model_used;type:varchar(100);not null" json:"ai_model_used"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index:idx_usage_records_user_created,priority:2" json:"created_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (r *UsageRecord) BeforeCreate(tx *gorm.DB) error {
	if r.UUID == "" {
		r.UUID = uuid.NewString()
	}
	return nil
}
