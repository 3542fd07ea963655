package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/labstack-dev/labledger/internal/config"
)

// Client delivers alert digests to an external webhook sink (chat bridge,
// pager, whatever the deployment points it at).
type Client interface {
	SendAlertDigest(ctx context.Context, digest AlertDigest) error
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a webhook client using the provided configuration values.
func NewClient(cfg config.WebhookConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(cfg.URL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	if cfg.AuthToken != "" {
		restyClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.AuthToken))
	}

	return &APIClient{httpClient: restyClient}
}

// AlertDigest is the payload posted after a scheduled alert scan.
type AlertDigest struct {
	ScannedAt     time.Time         `json:"scanned_at"`
	LowStockCount int               `json:"low_stock_count"`
	ExpiringCount int               `json:"expiring_count"`
	Lines         []AlertDigestLine `json:"lines"`
}

// AlertDigestLine is one alerting item in the digest.
type AlertDigestLine struct {
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	LabID    string `json:"lab_id"`
	Status   string `json:"status"`
	Detail   string `json:"detail"`
}

type apiError struct {
	Error string `json:"error"`
}

// SendAlertDigest posts the digest, treating any non-2xx response as failure.
func (c *APIClient) SendAlertDigest(ctx context.Context, digest AlertDigest) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(digest).
		SetError(apiErr).
		Post("")
	if err != nil {
		return fmt.Errorf("send alert digest: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("alert webhook error: status=%d, message=%s", resp.StatusCode(), apiErr.Error)
	}

	return nil
}
