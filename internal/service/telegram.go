package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sumire/phlink/internal/domain"
)

// TelegramNotifier sends link-success messages through the Telegram Bot API.
type TelegramNotifier struct {
	token      string
	apiBase    string
	httpClient *http.Client
}

// NewTelegramNotifier creates a new TelegramNotifier. apiBase is the API
// origin without a trailing slash, normally https://api.telegram.org.
func NewTelegramNotifier(token, apiBase string) *TelegramNotifier {
	return &TelegramNotifier{
		token:      token,
		apiBase:    apiBase,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

// LinkSucceeded tells the chat that its Product Hunt account is linked.
func (n *TelegramNotifier) LinkSucceeded(ctx context.Context, chatID int64, profile domain.ProviderProfile) error {
	text := fmt.Sprintf(
		"✅ Authorization successful!\n\nWelcome, %s!\nYour Product Hunt account is now linked.\nUsername: @%s",
		profile.DisplayName, profile.Username,
	)

	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("marshal sendMessage request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("telegram sendMessage returned status %d: %s", resp.StatusCode, detail)
	}
	return nil
}
