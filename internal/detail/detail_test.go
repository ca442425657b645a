package detail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"euromap/internal/news"
	"euromap/internal/regioninfo"
	"euromap/internal/stock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeStock answers from a map; codes listed in block wait for ctx.
type fakeStock struct {
	quotes map[string]stock.Quote
	block  map[string]bool
	calls  atomic.Int32
}

func (f *fakeStock) Get(ctx context.Context, code string) (stock.Quote, error) {
	f.calls.Add(1)
	if f.block[code] {
		<-ctx.Done()
		return stock.Quote{}, ctx.Err()
	}
	q, ok := f.quotes[code]
	if !ok {
		return stock.Quote{}, fmt.Errorf("%w: %s", stock.ErrUnavailable, code)
	}
	return q, nil
}

type fakeNews struct {
	mu      sync.Mutex
	queries []news.Query
	err     error
	arts    []news.Article
}

func (f *fakeNews) Search(ctx context.Context, q news.Query) ([]news.Article, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.arts, f.err
}

func TestTrackerSupersedes(t *testing.T) {
	var tr Tracker
	ctx1, t1 := tr.Begin(context.Background(), "RO")
	assert.Equal(t, "ro", t1.Code)
	assert.True(t, tr.Current(t1))

	ctx2, t2 := tr.Begin(context.Background(), "fr")
	assert.Greater(t, t2.Seq, t1.Seq)
	assert.NotEqual(t, t1.ID, t2.ID)
	assert.False(t, tr.Current(t1))
	assert.True(t, tr.Current(t2))
	assert.ErrorIs(t, ctx1.Err(), context.Canceled)
	assert.NoError(t, ctx2.Err())

	tr.Cancel()
	assert.False(t, tr.Current(t2))
	assert.ErrorIs(t, ctx2.Err(), context.Canceled)
	tr.Cancel()
}

func TestTrackerConcurrentBegin(t *testing.T) {
	var tr Tracker
	var wg sync.WaitGroup
	tickets := make([]Ticket, 32)
	for i := range tickets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, tickets[i] = tr.Begin(context.Background(), "de")
		}()
	}
	wg.Wait()

	current := 0
	for _, tk := range tickets {
		if tr.Current(tk) {
			current++
		}
	}
	assert.Equal(t, 1, current)
	tr.Cancel()
}

func TestFetchStock(t *testing.T) {
	src := &fakeStock{quotes: map[string]stock.Quote{
		"ro": {Status: stock.StatusOK, Index: "BET", Value: 17000, ChangePercent: -1},
		"fr": {Status: "error"},
	}}
	f := &Fetcher{Stock: src, Info: regioninfo.Default(), Log: zap.NewNop()}

	var tr Tracker
	ctx, tk := tr.Begin(context.Background(), "ro")
	r := f.FetchStock(ctx, tk)
	require.NoError(t, r.Err)
	assert.Equal(t, "BET", r.Quote.Index)
	assert.Equal(t, tk, r.Ticket)

	ctx, tk = tr.Begin(context.Background(), "fr")
	r = f.FetchStock(ctx, tk)
	assert.ErrorIs(t, r.Err, stock.ErrUnavailable)

	ctx, tk = tr.Begin(context.Background(), "de")
	r = f.FetchStock(ctx, tk)
	assert.ErrorIs(t, r.Err, stock.ErrUnavailable)
	assert.False(t, r.Canceled())
	tr.Cancel()

	r = (&Fetcher{}).FetchStock(context.Background(), tk)
	assert.ErrorIs(t, r.Err, stock.ErrUnavailable)
}

func TestFetchNewsUsesDisplayName(t *testing.T) {
	src := &fakeNews{arts: []news.Article{{Title: "a"}}}
	f := &Fetcher{News: src, Info: regioninfo.Default()}

	var tr Tracker
	ctx, tk := tr.Begin(context.Background(), "cz")
	r := f.FetchNews(ctx, tk)
	require.NoError(t, r.Err)
	assert.Len(t, r.Articles, 1)

	ctx, tk = tr.Begin(context.Background(), "xx")
	f.FetchNews(ctx, tk)
	tr.Cancel()

	require.Len(t, src.queries, 2)
	assert.Equal(t, news.DefaultQuery("Czech Republic"), src.queries[0])
	assert.Equal(t, "XX", src.queries[1].Country)

	f.Query = func(c string) news.Query { return news.Query{Country: c, MaxRecords: 3} }
	ctx, tk = tr.Begin(context.Background(), "mt")
	f.FetchNews(ctx, tk)
	tr.Cancel()
	assert.Equal(t, news.Query{Country: "Malta", MaxRecords: 3}, src.queries[2])
}

func TestStaleResultsDropped(t *testing.T) {
	src := &fakeStock{
		quotes: map[string]stock.Quote{"fr": {Status: stock.StatusOK, Index: "CAC 40", Value: 7500}},
		block:  map[string]bool{"ro": true},
	}
	f := &Fetcher{Stock: src, Info: regioninfo.Default()}
	var tr Tracker

	page := NewPage(f.Info, "ro")
	ctx1, t1 := tr.Begin(context.Background(), "ro")
	page.ExpectStock(t1)
	results := make(chan StockResult, 1)
	go func() { results <- f.FetchStock(ctx1, t1) }()

	// user navigates to France before Romania answers
	page = NewPage(f.Info, "fr")
	ctx2, t2 := tr.Begin(context.Background(), "fr")
	page.ExpectStock(t2)

	stale := <-results
	assert.True(t, stale.Canceled())
	assert.False(t, page.ApplyStock(stale))

	fresh := f.FetchStock(ctx2, t2)
	assert.True(t, page.ApplyStock(fresh))
	assert.Equal(t, PanelReady, page.StockState)
	assert.Equal(t, "CAC 40", page.Quote.Index)

	// a duplicate delivery is ignored
	assert.False(t, page.ApplyStock(fresh))
	tr.Cancel()
}

func TestPanelsIndependent(t *testing.T) {
	f := &Fetcher{
		Stock: &fakeStock{quotes: map[string]stock.Quote{}},
		News:  &fakeNews{arts: []news.Article{{Title: "Election called", Domain: "example.com", SeenDate: "20250101T080000Z"}}},
		Info:  regioninfo.Default(),
	}
	var st, nt Tracker
	p := NewPage(f.Info, "ro")

	sctx, stk := st.Begin(context.Background(), "ro")
	nctx, ntk := nt.Begin(context.Background(), "ro")
	p.ExpectStock(stk)
	p.ExpectNews(ntk)
	assert.Equal(t, StockLoading, p.StockMessage())
	assert.Equal(t, NewsLoading, p.NewsMessage())

	assert.True(t, p.ApplyStock(f.FetchStock(sctx, stk)))
	assert.True(t, p.ApplyNews(f.FetchNews(nctx, ntk)))

	assert.Equal(t, PanelFailed, p.StockState)
	assert.Equal(t, StockMissing, p.StockMessage())
	assert.Equal(t, PanelReady, p.NewsState)
	assert.Empty(t, p.NewsMessage())
	require.Len(t, p.Headlines(), 1)
	assert.Equal(t, "Election called", p.Headlines()[0].Title)

	// refreshing news keeps the stock panel as it is
	nctx, ntk = nt.Begin(context.Background(), "ro")
	p.ExpectNews(ntk)
	assert.Equal(t, PanelFailed, p.StockState)
	assert.True(t, p.ApplyNews(NewsResult{Ticket: ntk, Err: news.ErrUnavailable}))
	assert.Equal(t, NewsFailed, p.NewsMessage())
	_ = nctx
	st.Cancel()
	nt.Cancel()
}

func TestPageStates(t *testing.T) {
	info := regioninfo.Default()

	p := NewPage(info, "XX")
	assert.False(t, p.Known)
	assert.Equal(t, "XX", p.Name)
	assert.Equal(t, "🇽🇽 XX", p.Title())
	assert.Empty(t, p.Attributes())

	p = NewPage(info, "ro")
	assert.True(t, p.Known)
	assert.Equal(t, [][2]string{
		{"President", "EPP"},
		{"Government", "EPP / S&D (mixed)"},
		{"AI alignment", "Pro-EU"},
		{"Ideology", "+0.20"},
	}, p.Attributes())

	p.ExpectNews(Ticket{Code: "ro", Seq: 1})
	assert.True(t, p.ApplyNews(NewsResult{Ticket: Ticket{Code: "ro", Seq: 1}}))
	assert.Equal(t, NewsEmpty, p.NewsMessage())

	// results never asked for are ignored
	assert.False(t, p.ApplyStock(StockResult{}))

	many := make([]news.Article, 12)
	p.ExpectNews(Ticket{Code: "ro", Seq: 2})
	p.ApplyNews(NewsResult{Ticket: Ticket{Code: "ro", Seq: 2}, Articles: many})
	assert.Len(t, p.Articles, MaxHeadlines)
	assert.Equal(t, "Untitled", p.Headlines()[0].Title)
	assert.Equal(t, UnknownDate, p.Headlines()[0].When)
}

func TestSignalAndMarkdown(t *testing.T) {
	p := NewPage(regioninfo.Default(), "ro")
	p.ExpectStock(Ticket{Code: "ro", Seq: 1})
	p.ApplyStock(StockResult{Ticket: Ticket{Code: "ro", Seq: 1}, Quote: stock.Quote{
		Status: stock.StatusOK, Index: "BET", Value: 17250.5, ChangePercent: -0.8,
		Source: "https://bvb.ro/x", UpdatedAt: time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC),
	}})
	p.ExpectNews(Ticket{Code: "ro", Seq: 1})
	p.ApplyNews(NewsResult{Ticket: Ticket{Code: "ro", Seq: 1}, Err: errors.New("429")})

	assert.Contains(t, p.Signal(), "-0.80%")
	assert.Equal(t, "17,250.50", FormatValue(p.Quote.Value))
	assert.True(t, strings.HasPrefix(p.StockSourceLine(), "Source: bvb.ro · "))

	md := p.Markdown()
	assert.Contains(t, md, "# 🇷🇴 Romania")
	assert.Contains(t, md, Subtitle)
	assert.Contains(t, md, "**BET** 17,250.50 (-0.80%)")
	assert.Contains(t, md, "Market signal")
	assert.Contains(t, md, NewsFailed)
	assert.Contains(t, md, PredictionsLabel)
}

func TestSnapshot(t *testing.T) {
	f := &Fetcher{
		Stock: &fakeStock{quotes: map[string]stock.Quote{
			"ro": {Status: stock.StatusOK, Index: "BET", Value: 1},
			"de": {Status: stock.StatusOK, Index: "DAX", Value: 2},
		}},
		News: &fakeNews{err: news.ErrUnavailable},
		Info: regioninfo.Default(),
	}

	pages, err := f.Snapshot(context.Background(), []string{"RO", "de", "xx"}, 2)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, "ro", pages[0].Code)
	assert.Equal(t, PanelReady, pages[0].StockState)
	assert.Equal(t, "DAX", pages[1].Quote.Index)
	assert.Equal(t, PanelFailed, pages[2].StockState)
	for _, p := range pages {
		assert.Equal(t, PanelFailed, p.NewsState)
	}

	_, err = f.Snapshot(context.Background(), []string{"ro", " "}, 1)
	assert.Error(t, err)
}

func TestSnapshotCancelled(t *testing.T) {
	src := &fakeStock{block: map[string]bool{"ro": true, "fr": true}}
	f := &Fetcher{Stock: src, News: &fakeNews{}, Info: regioninfo.Default()}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for src.calls.Load() == 0 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()
	_, err := f.Snapshot(ctx, []string{"ro", "fr"}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
