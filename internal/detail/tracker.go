// Package detail loads the data shown on a country page. Each panel is
// fetched on its own and results that arrive after the user has moved on
// are dropped.
package detail

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Ticket identifies one request. Only the latest ticket of a Tracker is
// current.
type Ticket struct {
	Code string
	Seq  uint64
	ID   uuid.UUID
}

// Tracker hands out tickets for one panel and cancels the request of the
// previous ticket whenever a new one begins.
type Tracker struct {
	mu     sync.Mutex
	seq    uint64
	cur    Ticket
	cancel context.CancelFunc
}

// Begin starts a request for code, superseding the previous one.
func (t *Tracker) Begin(parent context.Context, code string) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(parent)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
	t.seq++
	t.cur = Ticket{Code: strings.ToLower(code), Seq: t.seq, ID: uuid.New()}
	t.cancel = cancel
	return ctx, t.cur
}

// Current reports whether tk is the latest ticket and has not been cancelled.
func (t *Tracker) Current(tk Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil && tk.Seq == t.cur.Seq && tk.ID == t.cur.ID
}

// Cancel aborts the in-flight request, if any. Later results are stale.
func (t *Tracker) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}
