package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ai-invoicing-be/internal/pkg/logger"
)

type outboundMessage struct {
	Channel        string `json:"channel"`
	ConversationId string `json:"conversation_id"`
	Text           string `json:"text"`
}

// HTTPTransport POSTs assistant replies to the channel gateway. With no URL
// configured it only logs the reply, which is enough for local development.
type HTTPTransport struct {
	url    string
	client *http.Client
	logger logger.ILogger
}

func NewHTTPTransport(url string, log logger.ILogger) *HTTPTransport {
	return &HTTPTransport{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: log,
	}
}

func (t *HTTPTransport) SendMessage(ctx context.Context, channel, conversationID, text string) error {
	if t.url == "" {
		t.logger.Info("bot_transport", "Outbound URL not configured, reply logged only", map[string]interface{}{
			"channel":         channel,
			"conversation_id": conversationID,
			"text":            text,
		})
		return nil
	}

	body, err := json.Marshal(outboundMessage{
		Channel:        channel,
		ConversationId: conversationID,
		Text:           text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal outbound message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build outbound request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver reply: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("gateway rejected reply with status %d", resp.StatusCode)
	}
	return nil
}
