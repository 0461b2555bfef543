package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/vk/sosgridgo/internal/array"
	"github.com/vk/sosgridgo/internal/ctxlog"
)

// DefaultHTTPTimeout bounds a single POST.
const DefaultHTTPTimeout = 10 * time.Second

// HTTPConfig configures an HTTP publisher.
type HTTPConfig struct {
	URL     string
	Timeout time.Duration
}

// HTTP posts every completed timestep as a JSON Message to a fixed URL.
type HTTP struct {
	url    string
	client *http.Client
}

// NewHTTP validates cfg and creates a publisher with a pooled client.
func NewHTTP(cfg HTTPConfig) (*HTTP, error) {
	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") || parsedURL.Host == "" {
		return nil, fmt.Errorf("URL %q needs an http(s) scheme and a host", cfg.URL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &HTTP{
		url: cfg.URL,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// Publish posts the timestep message. Any non-2xx response is an error.
func (p *HTTP) Publish(ctx context.Context, run string, timestep int, results map[string]array.Data) error {
	body, err := json.Marshal(NewMessage(run, timestep, results))
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("publishing timestep %d of %q: unexpected status %s", timestep, run, resp.Status)
	}
	ctxlog.FromContext(ctx).Debug("Published timestep.", "publisher", "http", "model_run", run, "timestep", timestep)
	return nil
}

// Close releases idle connections.
func (p *HTTP) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
