package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pingmaster-dev/pingmaster/db"
	"github.com/pingmaster-dev/pingmaster/internal/models"
	"github.com/pingmaster-dev/pingmaster/internal/monitor"
	"github.com/pingmaster-dev/pingmaster/internal/repo/gormrepo"
	"github.com/pingmaster-dev/pingmaster/internal/types"
	"github.com/pingmaster-dev/pingmaster/internal/utils"
)

type CreateServiceRequest struct {
	Name             string `json:"name" binding:"required"`
	URL              string `json:"url" binding:"required,url"`
	RefreshFrequency string `json:"refresh_frequency"`
}

type UpdateServiceRequest struct {
	Name             string `json:"name" binding:"required"`
	URL              string `json:"url" binding:"required,url"`
	RefreshFrequency string `json:"refresh_frequency" binding:"required"`
}

type ServiceSummary struct {
	ID               uuid.UUID    `json:"id"`
	Name             string       `json:"name"`
	URL              string       `json:"url"`
	RefreshFrequency string       `json:"refresh_frequency"`
	CreatedAt        time.Time    `json:"created_at"`
	LastCheck        *StatSummary `json:"last_check"`
}

type StatSummary struct {
	Status       bool      `json:"status"`
	ResponseTime *float64  `json:"response_time"`
	PingDate     time.Time `json:"ping_date"`
}

func CreateService(ctx *gin.Context) {
	var req CreateServiceRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.RefreshFrequency == "" {
		req.RefreshFrequency = types.FrequencyOneHour
	}

	if !types.ValidFrequency(req.RefreshFrequency) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid refresh frequency"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	service := models.Service{
		UserID:           userID,
		Name:             req.Name,
		URL:              req.URL,
		RefreshFrequency: req.RefreshFrequency,
	}

	if err := db.DB.Create(&service).Error; err != nil {
		log.Printf("Failed to create service: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create service"})
		return
	}

	ctx.JSON(http.StatusCreated, service)
}

func ListServices(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var services []models.Service

	if err := db.DB.Where("user_id = ?", userID).Find(&services).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve services"})
		return
	}

	summaries := make([]ServiceSummary, 0, len(services))

	for _, service := range services {
		summary := ServiceSummary{
			ID:               service.ID,
			Name:             service.Name,
			URL:              service.URL,
			RefreshFrequency: service.RefreshFrequency,
			CreatedAt:        service.CreatedAt,
		}

		var lastStat models.ServiceStat
		err := db.DB.Where("service_id = ?", service.ID).
			Order("ping_date DESC").
			First(&lastStat).Error

		if err == nil {
			summary.LastCheck = &StatSummary{
				Status:       lastStat.Status,
				ResponseTime: lastStat.ResponseTime,
				PingDate:     lastStat.PingDate,
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Failed to fetch last check for service %s: %v", service.ID, err)
		}

		summaries = append(summaries, summary)
	}

	ctx.JSON(http.StatusOK, summaries)
}

func UpdateService(ctx *gin.Context) {
	var req UpdateServiceRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !types.ValidFrequency(req.RefreshFrequency) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid refresh frequency"})
		return
	}

	service, ok := ownedService(ctx)
	if !ok {
		return
	}

	service.Name = req.Name
	service.URL = req.URL
	service.RefreshFrequency = req.RefreshFrequency

	if err := db.DB.Save(&service).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update service"})
		return
	}

	ctx.JSON(http.StatusOK, service)
}

func DeleteService(ctx *gin.Context) {
	service, ok := ownedService(ctx)
	if !ok {
		return
	}

	if err := db.DB.Delete(&service).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete service"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

func GetServiceStats(ctx *gin.Context) {
	service, ok := ownedService(ctx)
	if !ok {
		return
	}

	period := ctx.DefaultQuery("period", types.Period24h)
	window, valid := types.PeriodWindow(period)

	if !valid {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid period"})
		return
	}

	start := time.Now().UTC().Add(-window)
	store := gormrepo.NewStore(db.DB)

	stats, err := monitor.PeriodStats(ctx.Request.Context(), store, service.ID, start, period)

	if err != nil {
		log.Printf("Failed to aggregate stats for service %s: %v", service.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate stats"})
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

// ownedService loads the path service scoped to the current user. A
// service owned by someone else reads as not found, never as forbidden.
func ownedService(ctx *gin.Context) (models.Service, bool) {
	var service models.Service

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return service, false
	}

	serviceID, err := utils.GetServiceID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return service, false
	}

	if err := db.DB.Where("id = ? AND user_id = ?", serviceID, userID).First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve service"})
		}
		return service, false
	}

	return service, true
}
