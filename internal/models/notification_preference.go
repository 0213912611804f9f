package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationPreference is the per-service alert policy. At most one
// exists per service; the API upserts it. LastAlertTime is only mutated
// by the notifier after a successful delivery.
type NotificationPreference struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ServiceID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"service_id"`
	NotificationMethod string     `gorm:"not null;default:'slack'" json:"notification_method"`
	AlertFrequency     string     `gorm:"not null;default:'always'" json:"alert_frequency"`
	WebhookURL         string     `gorm:"not null" json:"webhook_url"`
	NotifyOnRecovery   bool       `gorm:"default:true" json:"notify_on_recovery"`
	LastAlertTime      *time.Time `json:"last_alert_time"`

	// Relationships
	Service Service `gorm:"foreignKey:ServiceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

func (p *NotificationPreference) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
