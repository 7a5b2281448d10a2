package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/logger"
)

// chatServiceImpl proxies assistant-widget messages to the chat webhook.
type chatServiceImpl struct {
	httpClient http.Client
	webhookURL string
}

func NewChatService(webhookURL string) ChatService {
	return &chatServiceImpl{
		httpClient: http.Client{Timeout: 30 * time.Second},
		webhookURL: webhookURL,
	}
}

func (s *chatServiceImpl) SendMessage(userID int64, message string) (string, error) {
	if s.webhookURL == "" {
		return "", fmt.Errorf("chat webhook not configured")
	}

	payload, err := json.Marshal(map[string]interface{}{
		"user_id": userID,
		"message": message,
	})
	if err != nil {
		return "", err
	}

	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("chat webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.L.Warn("Chat webhook returned non-success status", "status", resp.StatusCode)
		return "", fmt.Errorf("chat webhook returned status %d", resp.StatusCode)
	}

	var reply struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", fmt.Errorf("malformed chat webhook response: %w", err)
	}
	return reply.Response, nil
}
