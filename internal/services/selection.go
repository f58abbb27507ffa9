package services

import (
	"context"
	"sync"
)

// SelectionGuard makes the latest request per client win. Starting a new
// selection for a client cancels the context of that client's previous one.
type SelectionGuard struct {
	mu     sync.Mutex
	seq    uint64
	active map[string]selection
}

type selection struct {
	seq    uint64
	cancel context.CancelFunc
}

func NewSelectionGuard() *SelectionGuard {
	return &SelectionGuard{active: make(map[string]selection)}
}

// Begin starts a selection for clientID. The returned done func releases it
// and reports whether a newer selection superseded this one. An empty
// clientID is never superseded.
func (g *SelectionGuard) Begin(parent context.Context, clientID string) (context.Context, func() bool) {
	if clientID == "" {
		return parent, func() bool { return false }
	}

	ctx, cancel := context.WithCancel(parent)

	g.mu.Lock()
	g.seq++
	mine := g.seq
	if prev, ok := g.active[clientID]; ok {
		prev.cancel()
	}
	g.active[clientID] = selection{seq: mine, cancel: cancel}
	g.mu.Unlock()

	done := func() bool {
		g.mu.Lock()
		defer g.mu.Unlock()
		defer cancel()

		cur, ok := g.active[clientID]
		if !ok || cur.seq != mine {
			return true
		}
		delete(g.active, clientID)
		return false
	}
	return ctx, done
}

// Active reports how many clients currently hold a selection.
func (g *SelectionGuard) Active() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.active)
}
