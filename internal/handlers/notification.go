package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pingmaster-dev/pingmaster/db"
	"github.com/pingmaster-dev/pingmaster/internal/models"
	"github.com/pingmaster-dev/pingmaster/internal/types"
)

type PreferenceRequest struct {
	NotificationMethod string `json:"notification_method"`
	AlertFrequency     string `json:"alert_frequency"`
	WebhookURL         string `json:"webhook_url" binding:"required,url"`
	NotifyOnRecovery   *bool  `json:"notify_on_recovery"`
}

// UpsertPreference creates the service's notification preference or
// overwrites every field of an existing one. Reconfiguring resets
// last_alert_time so the new policy starts fresh.
func UpsertPreference(ctx *gin.Context) {
	var req PreferenceRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.NotificationMethod == "" {
		req.NotificationMethod = types.MethodSlack
	}
	if req.NotificationMethod != types.MethodSlack {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported notification method"})
		return
	}

	if req.AlertFrequency == "" {
		req.AlertFrequency = types.AlertAlways
	}
	if req.AlertFrequency != types.AlertAlways && req.AlertFrequency != types.AlertDaily {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alert frequency"})
		return
	}

	notifyOnRecovery := true
	if req.NotifyOnRecovery != nil {
		notifyOnRecovery = *req.NotifyOnRecovery
	}

	service, ok := ownedService(ctx)
	if !ok {
		return
	}

	var pref models.NotificationPreference
	err := db.DB.Where("service_id = ?", service.ID).First(&pref).Error

	created := false
	if errors.Is(err, gorm.ErrRecordNotFound) {
		pref = models.NotificationPreference{ServiceID: service.ID}
		created = true
	} else if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve preference"})
		return
	}

	pref.NotificationMethod = req.NotificationMethod
	pref.AlertFrequency = req.AlertFrequency
	pref.WebhookURL = req.WebhookURL
	pref.NotifyOnRecovery = notifyOnRecovery
	pref.LastAlertTime = nil

	if err := db.DB.Save(&pref).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preference"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	ctx.JSON(status, pref)
}

func GetPreference(ctx *gin.Context) {
	service, ok := ownedService(ctx)
	if !ok {
		return
	}

	var pref models.NotificationPreference

	if err := db.DB.Where("service_id = ?", service.ID).First(&pref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "No notification preferences found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve preference"})
		}
		return
	}

	ctx.JSON(http.StatusOK, pref)
}
