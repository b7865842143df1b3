package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/shiftwise/shiftwise-backend/internal/application/port"
)

const defaultEndpoint = "https://exp.host/--/api/v2/push/send"

// ExpoSender implements port.PushSender against the Expo push API, which is
// what the mobile clients register their tokens with.
type ExpoSender struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewExpoSender creates a new Expo push sender. An empty endpoint selects the
// public Expo API.
func NewExpoSender(endpoint string, timeout time.Duration, logger *zap.Logger) *ExpoSender {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &ExpoSender{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type expoMessage struct {
	To    string `json:"to"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound"`
}

type expoResponse struct {
	Data []struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"data"`
}

// Send delivers one push message to a device token.
func (s *ExpoSender) Send(ctx context.Context, pushToken, title, body string) error {
	payload, err := json.Marshal([]expoMessage{{
		To:    pushToken,
		Title: title,
		Body:  body,
		Sound: "default",
	}})
	if err != nil {
		return fmt.Errorf("marshal push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read push response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("push API returned %d: %s", resp.StatusCode, respBody)
	}

	var parsed expoResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return fmt.Errorf("parse push response: %w", err)
	}

	for _, ticket := range parsed.Data {
		if ticket.Status == "error" {
			return fmt.Errorf("push rejected: %s", ticket.Message)
		}
	}

	s.logger.Debug("Push delivered", zap.String("title", title))
	return nil
}

var _ port.PushSender = (*ExpoSender)(nil)
