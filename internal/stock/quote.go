// Package stock serves and fetches the headline stock index of a country.
package stock

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrUnavailable means no usable quote could be obtained.
	ErrUnavailable = errors.New("stock: data unavailable")
	// ErrNotFound means the store has no quote for the country.
	ErrNotFound = errors.New("stock: not found")
)

// StatusOK marks a usable quote.
const StatusOK = "ok"

// MaxChangePercent bounds a plausible daily move.
const MaxChangePercent = 15.0

// SignalThreshold is the daily drop, in percent, below which a market
// signal is raised.
const SignalThreshold = -0.5

// Quote is the latest reading of a national stock index.
type Quote struct {
	Status        string    `json:"status"`
	Index         string    `json:"index,omitempty"`
	Value         float64   `json:"value"`
	ChangePercent float64   `json:"change_percent"`
	Source        string    `json:"source,omitempty"`
	UpdatedAt     time.Time `json:"updated_at,omitzero"`
	Error         string    `json:"error,omitempty"`
}

// OK reports whether the quote can be shown.
func (q Quote) OK() bool {
	return q.Status == StatusOK && q.Error == ""
}

// SourceHost returns the host part of the source URL.
func (q Quote) SourceHost() string {
	if q.Source == "" {
		return ""
	}
	u, err := url.Parse(q.Source)
	if err != nil || u.Host == "" {
		return q.Source
	}
	return strings.TrimPrefix(u.Host, "www.")
}

// Signal returns the market signal line, or "" when the index did not
// fall far enough.
func (q Quote) Signal() string {
	if !q.OK() || q.ChangePercent >= SignalThreshold {
		return ""
	}
	return fmt.Sprintf("Stock decline (%.2f%%) may predict stronger populist/right-wing support.", q.ChangePercent)
}

// Change formats the daily move with an explicit sign.
func (q Quote) Change() string {
	if q.ChangePercent >= 0 {
		return fmt.Sprintf("+%.2f%%", q.ChangePercent)
	}
	return fmt.Sprintf("%.2f%%", q.ChangePercent)
}

// Validate checks a quote before it is stored.
func (q Quote) Validate() error {
	switch {
	case strings.TrimSpace(q.Index) == "":
		return errors.New("missing index name")
	case math.IsNaN(q.Value) || math.IsInf(q.Value, 0):
		return errors.New("value is not a number")
	case math.IsNaN(q.ChangePercent) || math.Abs(q.ChangePercent) > MaxChangePercent:
		return fmt.Errorf("change %v%% outside ±%v%%", q.ChangePercent, MaxChangePercent)
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
