package detail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"euromap/internal/news"
	"euromap/internal/regioninfo"
	"euromap/internal/stock"
)

// StockSource provides quotes; *stock.Client and *stock.Store both fit.
type StockSource interface {
	Get(ctx context.Context, code string) (stock.Quote, error)
}

// NewsSource provides headlines.
type NewsSource interface {
	Search(ctx context.Context, q news.Query) ([]news.Article, error)
}

// StockResult is the outcome of one stock request.
type StockResult struct {
	Ticket Ticket
	Quote  stock.Quote
	Err    error
}

// Canceled reports whether the request was superseded.
func (r StockResult) Canceled() bool { return isCanceled(r.Err) }

// NewsResult is the outcome of one news request.
type NewsResult struct {
	Ticket   Ticket
	Articles []news.Article
	Err      error
}

// Canceled reports whether the request was superseded.
func (r NewsResult) Canceled() bool { return isCanceled(r.Err) }

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// Fetcher loads panel data for a country.
type Fetcher struct {
	Stock StockSource
	News  NewsSource
	Info  *regioninfo.Provider
	Log   *zap.Logger

	// Query builds the news query for a country name; news.DefaultQuery
	// when nil.
	Query func(country string) news.Query
}

func (f *Fetcher) logger() *zap.Logger {
	if f.Log == nil {
		return zap.NewNop()
	}
	return f.Log
}

// FetchStock loads the quote for t.Code.
func (f *Fetcher) FetchStock(ctx context.Context, t Ticket) StockResult {
	if f.Stock == nil {
		return StockResult{Ticket: t, Err: stock.ErrUnavailable}
	}
	q, err := f.Stock.Get(ctx, t.Code)
	if err == nil && !q.OK() {
		err = stock.ErrUnavailable
	}
	if err != nil && !isCanceled(err) {
		f.logger().Debug("stock panel failed",
			zap.String("code", t.Code), zap.Stringer("request", t.ID), zap.Error(err))
	}
	return StockResult{Ticket: t, Quote: q, Err: err}
}

// FetchNews loads headlines for t.Code, searching by display name.
func (f *Fetcher) FetchNews(ctx context.Context, t Ticket) NewsResult {
	if f.News == nil {
		return NewsResult{Ticket: t, Err: news.ErrUnavailable}
	}
	query := news.DefaultQuery
	if f.Query != nil {
		query = f.Query
	}
	arts, err := f.News.Search(ctx, query(f.Info.DisplayName(t.Code)))
	if err != nil && !isCanceled(err) {
		f.logger().Debug("news panel failed",
			zap.String("code", t.Code), zap.Stringer("request", t.ID), zap.Error(err))
	}
	return NewsResult{Ticket: t, Articles: arts, Err: err}
}

// Snapshot fetches complete pages for several countries, at most limit at
// a time. Panel failures are recorded on the pages; only a cancelled ctx
// fails the snapshot.
func (f *Fetcher) Snapshot(ctx context.Context, codes []string, limit int) ([]*Page, error) {
	norm := make([]string, len(codes))
	for i, code := range codes {
		norm[i] = strings.ToLower(strings.TrimSpace(code))
		if norm[i] == "" {
			return nil, fmt.Errorf("detail: empty country code at position %d", i)
		}
	}

	pages := make([]*Page, len(norm))
	eg, egCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		eg.SetLimit(limit)
	}
	for i, code := range norm {
		eg.Go(func() error {
			var stockTrack, newsTrack Tracker
			p := NewPage(f.Info, code)

			sctx, st := stockTrack.Begin(egCtx, code)
			p.ExpectStock(st)
			p.ApplyStock(f.FetchStock(sctx, st))

			nctx, nt := newsTrack.Begin(egCtx, code)
			p.ExpectNews(nt)
			p.ApplyNews(f.FetchNews(nctx, nt))

			stockTrack.Cancel()
			newsTrack.Cancel()
			pages[i] = p
			return egCtx.Err()
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}
