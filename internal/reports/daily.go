// Package reports produces the daily usage digest posted to the ops
// webhook: user, service and ping totals with their 24-hour deltas.
package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pingmaster-dev/pingmaster/internal/models"
	"github.com/pingmaster-dev/pingmaster/internal/notifications"
)

type dailyStats struct {
	totalUsers    int64
	newUsers      []string
	totalServices int64
	newServices   int64
	totalPings    int64
	pings24h      int64
}

type Reporter struct {
	logger     *zap.Logger
	db         *gorm.DB
	notifier   *notifications.Notifier
	webhookURL string
}

func NewReporter(logger *zap.Logger, db *gorm.DB, notifier *notifications.Notifier, webhookURL string) *Reporter {
	return &Reporter{
		logger:     logger,
		db:         db,
		notifier:   notifier,
		webhookURL: webhookURL,
	}
}

// Run collects and sends one daily report. With no webhook configured it
// is a no-op.
func (r *Reporter) Run(ctx context.Context) error {
	if r.webhookURL == "" {
		r.logger.Info("no report webhook configured, skipping daily report")
		return nil
	}

	stats, err := r.collect(ctx)
	if err != nil {
		return fmt.Errorf("collecting daily stats: %w", err)
	}

	if !r.notifier.SendSlack(ctx, r.webhookURL, formatReport(stats)) {
		return fmt.Errorf("daily report delivery failed")
	}

	r.logger.Info("daily report sent")
	return nil
}

func (r *Reporter) collect(ctx context.Context) (dailyStats, error) {
	var stats dailyStats
	yesterday := time.Now().UTC().Add(-24 * time.Hour)
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.User{}).Count(&stats.totalUsers).Error; err != nil {
		return stats, err
	}

	var newUsers []models.User
	if err := db.Where("created_at >= ?", yesterday).Find(&newUsers).Error; err != nil {
		return stats, err
	}
	for _, user := range newUsers {
		stats.newUsers = append(stats.newUsers, "• "+user.Username)
	}

	if err := db.Model(&models.Service{}).Count(&stats.totalServices).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.Service{}).Where("created_at >= ?", yesterday).Count(&stats.newServices).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.ServiceStat{}).Count(&stats.totalPings).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.ServiceStat{}).Where("ping_date >= ?", yesterday).Count(&stats.pings24h).Error; err != nil {
		return stats, err
	}

	return stats, nil
}

func formatReport(stats dailyStats) notifications.SlackMessage {
	message := notifications.SlackMessage{
		Blocks: []notifications.SlackBlock{
			{
				Type: "header",
				Text: &notifications.SlackText{Type: "plain_text", Text: "PingMaster daily report"},
			},
			{
				Type: "section",
				Fields: []notifications.SlackText{
					{Type: "mrkdwn", Text: fmt.Sprintf("*Total users:*\n%d", stats.totalUsers)},
					{Type: "mrkdwn", Text: fmt.Sprintf("*New users (24h):*\n%d", len(stats.newUsers))},
					{Type: "mrkdwn", Text: fmt.Sprintf("*Total services:*\n%d", stats.totalServices)},
					{Type: "mrkdwn", Text: fmt.Sprintf("*New services (24h):*\n%d", stats.newServices)},
					{Type: "mrkdwn", Text: fmt.Sprintf("*Total pings:*\n%d", stats.totalPings)},
					{Type: "mrkdwn", Text: fmt.Sprintf("*Pings (24h):*\n%d", stats.pings24h)},
				},
			},
		},
	}

	if len(stats.newUsers) > 0 {
		message.Blocks = append(message.Blocks,
			notifications.SlackBlock{Type: "divider"},
			notifications.SlackBlock{
				Type: "section",
				Text: &notifications.SlackText{
					Type: "mrkdwn",
					Text: "*New users:*\n" + strings.Join(stats.newUsers, "\n"),
				},
			})
	}

	return message
}
