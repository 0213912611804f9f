package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type SlackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type SlackBlock struct {
	Type     string      `json:"type"`
	Text     *SlackText  `json:"text,omitempty"`
	Fields   []SlackText `json:"fields,omitempty"`
	Elements []SlackText `json:"elements,omitempty"`
}

type SlackMessage struct {
	Blocks []SlackBlock `json:"blocks"`
}

// SendSlack posts a block-structured message to a Slack-compatible webhook.
// One attempt, no retry: the result is a boolean and failures are logged.
func (n *Notifier) SendSlack(ctx context.Context, webhookURL string, message SlackMessage) bool {
	body, err := json.Marshal(message)
	if err != nil {
		n.logger.Error("failed to marshal webhook payload", zap.Error(err))
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewBuffer(body))
	if err != nil {
		n.logger.Error("failed to build webhook request", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Error("failed to send webhook", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		n.logger.Error("webhook returned non-200 status",
			zap.Int("status", resp.StatusCode),
			zap.String("url", webhookURL))
		return false
	}

	return true
}
