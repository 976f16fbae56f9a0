package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/vadiminshakov/coinwatch/internal/domain"
)

const telegramAPIURL = "https://api.telegram.org"

type telegramMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// TelegramNotifier sends fired alarms to a chat through the Bot API.
type TelegramNotifier struct {
	baseURL  string
	botToken string
	chatID   string
	client   *http.Client
}

func NewTelegramNotifier(botToken, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		baseURL:  telegramAPIURL,
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// WithBaseURL points the notifier at another API host.
func (n *TelegramNotifier) WithBaseURL(u string) *TelegramNotifier {
	n.baseURL = strings.TrimRight(u, "/")
	return n
}

func (n *TelegramNotifier) Notify(ctx context.Context, fired domain.FiredAlarm) error {
	text := fmt.Sprintf("%s\nprice: %s, 24h: %s%%",
		fired.Rule.Message(), fired.Record.Price.String(), fired.Record.PercentChange24h.StringFixed(2))

	body, err := json.Marshal(telegramMessage{ChatID: n.chatID, Text: text})
	if err != nil {
		return errors.Wrap(err, "failed to marshal message")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send message")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("received non-200 response: %s", resp.Status)
	}

	return nil
}
