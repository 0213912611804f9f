package gormrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pingmaster-dev/pingmaster/internal/models"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListServices(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	if err := s.db.WithContext(ctx).Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (s *Store) LatestStat(ctx context.Context, serviceID uuid.UUID) (*models.ServiceStat, error) {
	var stat models.ServiceStat
	err := s.db.WithContext(ctx).
		Where("service_id = ?", serviceID).
		Order("ping_date DESC").
		First(&stat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stat, nil
}

func (s *Store) BulkInsertStats(ctx context.Context, stats []models.ServiceStat) error {
	if len(stats) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for i := range stats {
		if err := stats[i].Validate(now); err != nil {
			return fmt.Errorf("invalid observation for service %s: %w", stats[i].ServiceID, err)
		}
		if stats[i].ResponseTime != nil {
			rounded := models.RoundResponseTime(*stats[i].ResponseTime)
			stats[i].ResponseTime = &rounded
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&stats).Error
	})
}

func (s *Store) StatsSince(ctx context.Context, serviceID uuid.UUID, since time.Time) ([]models.ServiceStat, error) {
	var stats []models.ServiceStat
	err := s.db.WithContext(ctx).
		Where("service_id = ? AND ping_date >= ?", serviceID, since).
		Order("ping_date DESC").
		Find(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Store) PreferenceByService(ctx context.Context, serviceID uuid.UUID) (*models.NotificationPreference, error) {
	var pref models.NotificationPreference
	err := s.db.WithContext(ctx).
		Where("service_id = ?", serviceID).
		First(&pref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pref, nil
}

func (s *Store) SavePreference(ctx context.Context, pref *models.NotificationPreference) error {
	return s.db.WithContext(ctx).Save(pref).Error
}
