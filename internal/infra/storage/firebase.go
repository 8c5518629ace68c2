// Package storage implements the blob store on Firebase Storage's REST API.
// Card logos are the only blobs Synapse keeps.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/synapse-finance/synapse-go/internal/domain"
	"github.com/synapse-finance/synapse-go/internal/infra/resilience"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("storage")

const baseURL = "https://firebasestorage.googleapis.com/v0"

// Client talks to one Firebase Storage bucket.
type Client struct {
	httpClient *http.Client
	bucket     string
	token      string
	cfg        resilience.Config
	logger     *zap.Logger
}

func NewClient(httpClient *http.Client, bucket, token string, cfg resilience.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		bucket:     bucket,
		token:      token,
		cfg:        cfg,
		logger:     logger,
	}
}

func (c *Client) objectURL(path string) string {
	return fmt.Sprintf("%s/b/%s/o/%s", baseURL, c.bucket, url.PathEscape(path))
}

// Upload stores the object and returns its public download URL.
func (c *Client) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	ctx, span := tracer.Start(ctx, "Storage.Upload")
	defer span.End()

	uploadURL := fmt.Sprintf("%s/b/%s/o?uploadType=media&name=%s", baseURL, c.bucket, url.QueryEscape(path))

	err := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
		req.Header.Set("Content-Type", contentType)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error("storage: upload failed", zap.String("path", path), zap.Error(err))
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		body, _ := io.ReadAll(resp.Body)
		c.logger.Warn("storage: non-2xx upload response",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return fmt.Errorf("storage returned status %d", resp.StatusCode)
	})
	if err != nil {
		return "", &domain.ErrExternalService{Service: "storage", Err: err}
	}

	return c.objectURL(path) + "?alt=media", nil
}

// Delete removes the object. A missing object is treated as success so that
// cleanup stays idempotent.
func (c *Client) Delete(ctx context.Context, path string) error {
	ctx, span := tracer.Start(ctx, "Storage.Delete")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.objectURL(path), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.ErrExternalService{Service: "storage", Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &domain.ErrExternalService{
		Service: "storage",
		Err:     fmt.Errorf("storage returned status %d", resp.StatusCode),
	}
}
