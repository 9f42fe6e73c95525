package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
)

// Client отправляет события во внешнюю систему по HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// endpoint ресурс внешней системы для события.
func endpoint(event string) (string, error) {
	switch event {
	case entity.EventUserCreated:
		return "users", nil
	case entity.EventListingCreated:
		return "listings", nil
	default:
		return "", fmt.Errorf("mirror: неизвестное событие %q", event)
	}
}

// Deliver отправляет одно событие. Любой ответ вне 2xx считается ошибкой.
func (c *Client) Deliver(ctx context.Context, ev *entity.OutboxEvent) error {
	if c.baseURL == "" {
		return fmt.Errorf("mirror: baseURL не задан")
	}
	path, err := endpoint(ev.Event)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+path, bytes.NewReader(ev.Payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", ev.ID.String())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorBody map[string]any
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		if json.Unmarshal(raw, &errorBody) != nil {
			return fmt.Errorf("mirror: код ответа %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		}
		return fmt.Errorf("mirror: код ответа %d: %v", resp.StatusCode, errorBody)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
