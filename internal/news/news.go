// Package news fetches recent headlines about a country from a GDELT
// DOC 2.0 compatible endpoint.
package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the public GDELT document API.
const DefaultBaseURL = "https://api.gdeltproject.org/api/v2/doc/doc"

// ErrUnavailable covers rate limiting, network failures and unreadable
// responses alike.
var ErrUnavailable = errors.New("news: unavailable")

// Article is one headline.
type Article struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Domain        string `json:"domain"`
	SeenDate      string `json:"seendate"`
	Language      string `json:"language,omitempty"`
	SourceCountry string `json:"sourcecountry,omitempty"`
}

// DisplayTitle returns the title or "Untitled".
func (a Article) DisplayTitle() string {
	if t := strings.TrimSpace(a.Title); t != "" {
		return t
	}
	return "Untitled"
}

// DisplayDomain returns the reported domain, falling back to the URL host.
func (a Article) DisplayDomain() string {
	if a.Domain != "" {
		return a.Domain
	}
	if u, err := url.Parse(a.URL); err == nil {
		return u.Hostname()
	}
	return ""
}

// Published parses SeenDate.
func (a Article) Published() (time.Time, bool) {
	return ParseSeenDate(a.SeenDate)
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseSeenDate understands ISO-8601 timestamps, the compact
// YYYYMMDDHHMMSS form and GDELT's YYYYMMDDTHHMMSSZ. Timestamps without a
// zone are UTC.
func ParseSeenDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if len(s) == 14 {
		if t, err := time.Parse("20060102150405", s); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse("20060102T150405Z", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Query selects headlines.
type Query struct {
	Country    string // display name, quoted in the search
	Language   string // source language, e.g. "english"; empty for any
	Timespan   string // e.g. "3d"
	MaxRecords int
}

// DefaultQuery returns the query used by the detail page.
func DefaultQuery(country string) Query {
	return Query{Country: country, Language: "english", Timespan: "3d", MaxRecords: 8}
}

// BuildURL renders q against the endpoint base.
func BuildURL(base string, q Query) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("news: base url: %w", err)
	}
	if strings.TrimSpace(q.Country) == "" {
		return "", errors.New("news: empty country")
	}
	term := `"` + q.Country + `"`
	if q.Language != "" {
		term += " sourcelang:" + q.Language
	}
	v := u.Query()
	v.Set("query", term)
	v.Set("mode", "artlist")
	v.Set("format", "json")
	v.Set("sort", "datedesc")
	if q.MaxRecords > 0 {
		v.Set("maxrecords", strconv.Itoa(q.MaxRecords))
	}
	if q.Timespan != "" {
		v.Set("timespan", q.Timespan)
	}
	u.RawQuery = v.Encode()
	return u.String(), nil
}

// Client searches headlines.
type Client struct {
	base string
	http *http.Client
	log  *zap.Logger
}

// NewClient returns a client for base (DefaultBaseURL when empty).
func NewClient(base string, timeout time.Duration, log *zap.Logger) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{base: base, http: &http.Client{Timeout: timeout}, log: log}
}

type artlist struct {
	Articles []Article `json:"articles"`
}

// Search returns at most q.MaxRecords articles, newest first as the
// endpoint sorts them. A cancelled context is returned unwrapped so
// callers can tell supersession from failure.
func (c *Client) Search(ctx context.Context, q Query) ([]Article, error) {
	u, err := BuildURL(c.base, q)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		c.log.Debug("news request rejected", zap.String("country", q.Country), zap.Int("http_status", resp.StatusCode))
		return nil, fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	// rate limiting is reported as a plain-text 200
	var list artlist
	if err := json.Unmarshal(body, &list); err != nil {
		c.log.Debug("news response not json", zap.String("country", q.Country), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if q.MaxRecords > 0 && len(list.Articles) > q.MaxRecords {
		list.Articles = list.Articles[:q.MaxRecords]
	}
	return list.Articles, nil
}
