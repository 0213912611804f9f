package models

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrFutureObservation = errors.New("observation timestamp is in the future")
	ErrNegativeLatency   = errors.New("response time must not be negative")
)

// ServiceStat is one probe result for a service. Records are append-only:
// once written they are never mutated.
type ServiceStat struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ServiceID uuid.UUID `gorm:"type:uuid;not null;index" json:"service_id"`
	Status    bool      `gorm:"not null" json:"status"` // true = up
	// ResponseTime is in milliseconds, rounded to one decimal.
	// Nil when the probe failed outright.
	ResponseTime *float64  `json:"response_time"`
	PingDate     time.Time `gorm:"not null;index" json:"ping_date"`

	// Relationships
	Service Service `gorm:"foreignKey:ServiceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

func (s *ServiceStat) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Validate enforces the write-boundary invariants: an observation must not
// be dated in the future and its latency, when present, must not be negative.
func (s *ServiceStat) Validate(now time.Time) error {
	if s.PingDate.After(now) {
		return ErrFutureObservation
	}
	if s.ResponseTime != nil && *s.ResponseTime < 0 {
		return ErrNegativeLatency
	}
	return nil
}

// RoundResponseTime rounds a latency in milliseconds to one decimal place.
// Every writer of ServiceStat.ResponseTime goes through this.
func RoundResponseTime(ms float64) float64 {
	return math.Round(ms*10) / 10
}
