// Package notify delivers alerts to external systems.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"trackiq/internal/core/id"
	"trackiq/internal/domain/reports"
)

// LowStockAlert is the webhook payload for one brand.
type LowStockAlert struct {
	BrandID     id.ID                   `json:"brandId"`
	Brand       string                  `json:"brand"`
	Items       []reports.InventoryItem `json:"items"`
	GeneratedAt time.Time               `json:"generatedAt"`
}

// WebhookConfig configures the webhook client.
type WebhookConfig struct {
	URL        string
	Timeout    time.Duration
	RetryCount int
	// Secret, when set, is sent as a bearer token
	Secret string
}

// WebhookNotifier posts alerts as JSON to a single URL.
type WebhookNotifier struct {
	client *resty.Client
	url    string
}

// NewWebhookNotifier builds a resty-backed notifier.
func NewWebhookNotifier(cfg WebhookConfig) *WebhookNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "trackiq-worker")
	if cfg.Secret != "" {
		client.SetAuthToken(cfg.Secret)
	}

	return &WebhookNotifier{client: client, url: cfg.URL}
}

// NotifyLowStock posts one alert. Any non-2xx answer is an error.
func (n *WebhookNotifier) NotifyLowStock(ctx context.Context, alert LowStockAlert) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(alert).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("post low-stock alert: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("post low-stock alert: webhook answered %s", resp.Status())
	}
	return nil
}
