package stock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client fetches quotes from a stock endpoint.
type Client struct {
	base string
	http *http.Client
	log  *zap.Logger
}

// NewClient returns a client for the endpoint rooted at base.
func NewClient(base string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// Get returns the quote for a country. Every failure, including a
// response whose status is not "ok", wraps ErrUnavailable; a cancelled
// context is returned as is.
func (c *Client) Get(ctx context.Context, code string) (Quote, error) {
	code = normalizeCode(code)
	u := fmt.Sprintf("%s/api/country/%s/stock", c.base, url.PathEscape(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Quote{}, ctxErr
		}
		c.log.Debug("stock request failed", zap.String("code", code), zap.Error(err))
		return Quote{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	// a 404 still carries a JSON body with the reason
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Quote{}, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	var q Quote
	if err := json.Unmarshal(body, &q); err != nil {
		return Quote{}, fmt.Errorf("%w: HTTP %d: %v", ErrUnavailable, resp.StatusCode, err)
	}
	if resp.StatusCode/100 != 2 || !q.OK() {
		reason := q.Error
		if reason == "" {
			reason = "status " + q.Status
		}
		c.log.Debug("stock quote unavailable",
			zap.String("code", code), zap.Int("http_status", resp.StatusCode), zap.String("reason", reason))
		return q, fmt.Errorf("%w: HTTP %d: %s", ErrUnavailable, resp.StatusCode, reason)
	}
	return q, nil
}

// IsUnavailable reports whether err means "no stock data" rather than a
// cancellation.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrNotFound)
}
