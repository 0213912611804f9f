package notifications

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pingmaster-dev/pingmaster/internal/models"
	"github.com/pingmaster-dev/pingmaster/internal/repo"
	"github.com/pingmaster-dev/pingmaster/internal/types"
)

// Notifier dispatches status-change alerts according to each service's
// notification preference. After a successful delivery it advances the
// preference's last_alert_time; a failed delivery leaves it untouched so
// the alert fires again on the next eligible cycle.
type Notifier struct {
	logger *zap.Logger
	client *http.Client
	prefs  repo.PreferenceStore
}

func NewNotifier(logger *zap.Logger, prefs repo.PreferenceStore) *Notifier {
	return &Notifier{
		logger: logger,
		client: &http.Client{Timeout: types.RequestTimeout},
		prefs:  prefs,
	}
}

// NotifyServiceStatus runs the alert pipeline for one fresh observation.
// It never returns an error: a service whose alert cannot be delivered is
// still a service whose observation must be persisted.
func (n *Notifier) NotifyServiceStatus(ctx context.Context, service models.Service, previous, current *models.ServiceStat) {
	pref, err := n.prefs.PreferenceByService(ctx, service.ID)
	if err != nil {
		n.logger.Error("failed to load notification preference",
			zap.String("service", service.Name),
			zap.Error(err))
		return
	}
	if pref == nil {
		return
	}

	now := time.Now().UTC()
	if !ShouldNotify(pref, previous, current, now) {
		return
	}

	if pref.NotificationMethod != types.MethodSlack {
		n.logger.Warn("unsupported notification method",
			zap.String("service", service.Name),
			zap.String("method", pref.NotificationMethod))
		return
	}

	if !n.SendSlack(ctx, pref.WebhookURL, statusMessage(service, current)) {
		return
	}

	pref.LastAlertTime = &now
	if err := n.prefs.SavePreference(ctx, pref); err != nil {
		n.logger.Error("failed to record alert time",
			zap.String("service", service.Name),
			zap.Error(err))
	}
}

func statusMessage(service models.Service, current *models.ServiceStat) SlackMessage {
	emoji := "🟢"
	status := "ONLINE"
	if !current.Status {
		emoji = "🔴"
		status = "OFFLINE"
	}

	return SlackMessage{
		Blocks: []SlackBlock{
			{
				Type: "header",
				Text: &SlackText{Type: "plain_text", Text: fmt.Sprintf("%s Service Status Alert", emoji)},
			},
			{
				Type: "section",
				Fields: []SlackText{
					{Type: "mrkdwn", Text: fmt.Sprintf("*Service Name:*\n%s", service.Name)},
					{Type: "mrkdwn", Text: fmt.Sprintf("*Status:*\n%s", status)},
				},
			},
			{
				Type: "section",
				Text: &SlackText{Type: "mrkdwn", Text: fmt.Sprintf("*URL:* <%s|%s>", service.URL, service.URL)},
			},
			{
				Type: "context",
				Elements: []SlackText{
					{Type: "mrkdwn", Text: "Message delivered by: <https://pingmaster.fr/dashboard|PingMaster>"},
				},
			},
		},
	}
}
