// Package completion turns a completion trigger into provider suggestions.
package completion

import (
	"context"
	"net/url"

	"llmlsp/internal/manager"
	"llmlsp/internal/position"
	"llmlsp/internal/provider"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"golang.org/x/sync/semaphore"
)

var log = commonlog.GetLogger("llmlsp.completion")

// Orchestrator resolves documents from the store and hands completion
// requests to a provider. It is safe for concurrent use.
type Orchestrator struct {
	store    *manager.DocumentStore
	provider provider.Provider
	slots    *semaphore.Weighted
}

// NewOrchestrator creates an Orchestrator that allows at most maxConcurrent
// provider calls in flight.
func NewOrchestrator(store *manager.DocumentStore, p provider.Provider, maxConcurrent int) *Orchestrator {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Orchestrator{
		store:    store,
		provider: p,
		slots:    semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Complete returns up to maxSuggestions items for the cursor at pos in uri.
// A URI that is not open is treated as an empty document.
func (o *Orchestrator) Complete(
	ctx context.Context,
	uri string,
	pos protocol.Position,
	maxSuggestions int,
	session provider.Session,
) []protocol.CompletionItem {
	// The snapshot is a copy; no store lock is held past this point.
	snap := o.store.Snapshot(uri)

	req := provider.Request{
		Path:           URIToPath(uri),
		LanguageID:     snap.LanguageID,
		Text:           snap.Text,
		Position:       pos,
		Offset:         position.OffsetOf(snap.Text, pos),
		MaxSuggestions: maxSuggestions,
		Session:        session,
	}

	if err := o.slots.Acquire(ctx, 1); err != nil {
		log.Warningf("no provider slot for %s: %v", uri, err)
		return []protocol.CompletionItem{}
	}
	defer o.slots.Release(1)

	log.Debugf("completing %s at %d:%d (offset %d)", uri, pos.Line, pos.Character, req.Offset)
	return o.provider.Completions(ctx, req)
}

// URIToPath returns the filesystem path of a file:// URI. Other URIs are
// returned unchanged.
func URIToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}
	return u.Path
}
