package news

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseSeenDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"20250314T093000Z", time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC), true},
		{"20250314093000", time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC), true},
		{"2025-03-14T09:30:00Z", time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC), true},
		{"2025-03-14T09:30:00", time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC), true},
		{"2025-03-14", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"yesterday", time.Time{}, false},
		{"20251399", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseSeenDate(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.True(t, tt.want.Equal(got), "%s: got %v", tt.in, got)
		}
	}

	got, ok := ParseSeenDate("2025-03-14T11:30:00+02:00")
	require.True(t, ok)
	assert.True(t, time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC).Equal(got))
}

func TestArticleDisplay(t *testing.T) {
	a := Article{URL: "https://www.example.org/a/b?c=d"}
	assert.Equal(t, "Untitled", a.DisplayTitle())
	assert.Equal(t, "www.example.org", a.DisplayDomain())

	a = Article{Title: " Budget vote ", Domain: "reuters.com", SeenDate: "20250101T000000Z"}
	assert.Equal(t, "Budget vote", a.DisplayTitle())
	assert.Equal(t, "reuters.com", a.DisplayDomain())
	_, ok := a.Published()
	assert.True(t, ok)
}

func TestBuildURL(t *testing.T) {
	raw, err := BuildURL(DefaultBaseURL, DefaultQuery("Czech Republic"))
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "api.gdeltproject.org", u.Host)
	assert.Equal(t, "/api/v2/doc/doc", u.Path)

	q := u.Query()
	assert.Equal(t, `"Czech Republic" sourcelang:english`, q.Get("query"))
	assert.Equal(t, "artlist", q.Get("mode"))
	assert.Equal(t, "json", q.Get("format"))
	assert.Equal(t, "datedesc", q.Get("sort"))
	assert.Equal(t, "8", q.Get("maxrecords"))
	assert.Equal(t, "3d", q.Get("timespan"))

	raw, err = BuildURL("http://localhost/doc", Query{Country: "Malta"})
	require.NoError(t, err)
	u, _ = url.Parse(raw)
	assert.Equal(t, `"Malta"`, u.Query().Get("query"))
	assert.False(t, u.Query().Has("maxrecords"))

	_, err = BuildURL(DefaultBaseURL, Query{Country: " "})
	assert.Error(t, err)
	_, err = BuildURL("://bad", DefaultQuery("Malta"))
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch q := r.URL.Query().Get("query"); {
		case strings.Contains(q, "Romania"):
			var items []string
			for i := range 10 {
				items = append(items, fmt.Sprintf(`{"title":"headline %d","url":"https://news.example/%d","domain":"news.example","seendate":"20250101T12000%dZ"}`, i, i, i))
			}
			io.WriteString(w, `{"articles":[`+strings.Join(items, ",")+`]}`)
		case strings.Contains(q, "Malta"):
			io.WriteString(w, `{}`)
		case strings.Contains(q, "France"):
			io.WriteString(w, "Please limit requests to one every 5 seconds")
		default:
			w.WriteHeader(http.StatusTooManyRequests)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, zap.NewNop())
	ctx := context.Background()

	arts, err := c.Search(ctx, DefaultQuery("Romania"))
	require.NoError(t, err)
	require.Len(t, arts, 8)
	assert.Equal(t, "headline 0", arts[0].Title)

	arts, err = c.Search(ctx, DefaultQuery("Malta"))
	require.NoError(t, err)
	assert.Empty(t, arts)

	_, err = c.Search(ctx, DefaultQuery("France"))
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = c.Search(ctx, DefaultQuery("Germany"))
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSearchCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := NewClient(srv.URL, 5*time.Second, nil).Search(ctx, DefaultQuery("Romania"))
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, ErrUnavailable)
	case <-time.After(5 * time.Second):
		t.Fatal("search did not return after cancel")
	}
}
