package manager

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"llmlsp/internal/position"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

var log = commonlog.GetLogger("llmlsp.manager")

// ErrDocumentNotFound is returned when a change targets a URI that is not open.
var ErrDocumentNotFound = errors.New("document not found")

// Snapshot is an immutable copy of a document taken at one instant.
type Snapshot struct {
	URI        string
	Text       string
	LanguageID string
}

type document struct {
	mu         sync.RWMutex
	text       string
	languageID string
}

// DocumentStore holds the text and language of every open document.
//
// The map lock is only held for lookups, inserts and deletes. Each document
// has its own lock, so edits to one URI never block reads of another.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*document
}

// NewDocumentStore creates an empty DocumentStore.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs: make(map[string]*document),
	}
}

func (ds *DocumentStore) get(uri string) (*document, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	doc, ok := ds.docs[uri]
	return doc, ok
}

// Upsert creates the document for uri or replaces its text. The language is
// only changed when languageID is non-nil.
func (ds *DocumentStore) Upsert(uri string, text string, languageID *string) {
	log.Debugf("upserting %s", uri)

	ds.mu.Lock()
	doc, ok := ds.docs[uri]
	if !ok {
		doc = &document{text: text}
		if languageID != nil {
			doc.languageID = *languageID
		}
		ds.docs[uri] = doc
		ds.mu.Unlock()
		return
	}
	ds.mu.Unlock()

	doc.mu.Lock()
	defer doc.mu.Unlock()
	doc.text = text
	if languageID != nil {
		doc.languageID = *languageID
	}
}

// ApplyChanges applies a batch of content change events to the document for
// uri, in order, each against the result of the previous one. Events are
// either protocol.TextDocumentContentChangeEvent or
// protocol.TextDocumentContentChangeEventWhole. The batch is committed as a
// whole; on error the document is left untouched.
func (ds *DocumentStore) ApplyChanges(uri string, changes []any) error {
	doc, ok := ds.get(uri)
	if !ok {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, uri)
	}

	doc.mu.Lock()
	defer doc.mu.Unlock()

	text := doc.text
	for i, raw := range changes {
		switch change := raw.(type) {
		case protocol.TextDocumentContentChangeEvent:
			text = applyChange(text, change)
		case protocol.TextDocumentContentChangeEventWhole:
			text = change.Text
		default:
			return fmt.Errorf("change %d for %s: unexpected change event type %T", i, uri, raw)
		}
	}
	doc.text = text
	return nil
}

// applyChange splices a single ranged edit into text. A change without a range
// replaces the whole document.
func applyChange(text string, change protocol.TextDocumentContentChangeEvent) string {
	if change.Range == nil {
		return change.Text
	}
	start := position.ByteOffset(text, change.Range.Start)
	end := position.ByteOffset(text, change.Range.End)
	if end < start {
		start, end = end, start
	}
	return text[:start] + change.Text + text[end:]
}

// Remove forgets the document for uri.
func (ds *DocumentStore) Remove(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	delete(ds.docs, uri)
}

// Snapshot returns the current text and language of uri. A URI that is not
// open yields an empty snapshot.
func (ds *DocumentStore) Snapshot(uri string) Snapshot {
	doc, ok := ds.get(uri)
	if !ok {
		return Snapshot{URI: uri}
	}

	doc.mu.RLock()
	defer doc.mu.RUnlock()
	return Snapshot{
		URI:        uri,
		Text:       doc.text,
		LanguageID: doc.languageID,
	}
}

// URIs lists the open documents in sorted order.
func (ds *DocumentStore) URIs() []string {
	ds.mu.RLock()
	uris := make([]string, 0, len(ds.docs))
	for uri := range ds.docs {
		uris = append(uris, uri)
	}
	ds.mu.RUnlock()

	sort.Strings(uris)
	return uris
}
