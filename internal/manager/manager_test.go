package manager_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"llmlsp/internal/manager"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func ptr(s string) *string { return &s }

func insertAt(line, character protocol.UInteger, text string) protocol.TextDocumentContentChangeEvent {
	p := protocol.Position{Line: line, Character: character}
	return protocol.TextDocumentContentChangeEvent{
		Range: &protocol.Range{Start: p, End: p},
		Text:  text,
	}
}

func TestDocumentStore(t *testing.T) {
	t.Run("Upsert Then Snapshot", func(t *testing.T) {
		ds := manager.NewDocumentStore()
		ds.Upsert("file:///a.py", "print(1)\n", ptr("python"))

		snap := ds.Snapshot("file:///a.py")
		assert.Equal(t, "print(1)\n", snap.Text)
		assert.Equal(t, "python", snap.LanguageID)
	})

	t.Run("Upsert Keeps Language When Omitted", func(t *testing.T) {
		ds := manager.NewDocumentStore()
		ds.Upsert("file:///a.go", "package a", ptr("go"))
		ds.Upsert("file:///a.go", "package b", nil)

		snap := ds.Snapshot("file:///a.go")
		assert.Equal(t, "package b", snap.Text)
		assert.Equal(t, "go", snap.LanguageID)
	})

	t.Run("Upsert Without Language Defaults To Empty", func(t *testing.T) {
		ds := manager.NewDocumentStore()
		ds.Upsert("file:///notes", "x", nil)
		assert.Equal(t, "", ds.Snapshot("file:///notes").LanguageID)
	})

	t.Run("Close Forgets Document", func(t *testing.T) {
		ds := manager.NewDocumentStore()
		ds.Upsert("file:///u", "x", ptr("go"))
		ds.Remove("file:///u")

		snap := ds.Snapshot("file:///u")
		assert.Equal(t, "", snap.Text)
		assert.Equal(t, "", snap.LanguageID)
		assert.Empty(t, ds.URIs())
	})

	t.Run("Missing Document Snapshot Is Empty", func(t *testing.T) {
		ds := manager.NewDocumentStore()
		snap := ds.Snapshot("file:///never-opened")
		assert.Equal(t, manager.Snapshot{URI: "file:///never-opened"}, snap)
	})

	t.Run("URIs Are Case Sensitive", func(t *testing.T) {
		ds := manager.NewDocumentStore()
		ds.Upsert("file:///A", "upper", nil)
		ds.Upsert("file:///a", "lower", nil)

		assert.Equal(t, []string{"file:///A", "file:///a"}, ds.URIs())
		assert.Equal(t, "upper", ds.Snapshot("file:///A").Text)
	})
}

func TestApplyChanges(t *testing.T) {
	t.Run("Sequential Inserts", func(t *testing.T) {
		ds := manager.NewDocumentStore()
		ds.Upsert("u", "", nil)

		err := ds.ApplyChanges("u", []any{insertAt(0, 0, "A"), insertAt(0, 1, "B")})
		require.NoError(t, err)
		assert.Equal(t, "AB", ds.Snapshot("u").Text)
	})

	t.Run("Delivery Order Is Preserved", func(t *testing.T) {
		forward := manager.NewDocumentStore()
		forward.Upsert("u", "", nil)
		require.NoError(t, forward.ApplyChanges("u", []any{insertAt(0, 0, "A"), insertAt(0, 0, "B")}))

		reverse := manager.NewDocumentStore()
		reverse.Upsert("u", "", nil)
		require.NoError(t, reverse.ApplyChanges("u", []any{insertAt(0, 0, "B"), insertAt(0, 0, "A")}))

		assert.Equal(t, "BA", forward.Snapshot("u").Text)
		assert.Equal(t, "AB", reverse.Snapshot("u").Text)
	})

	t.Run("Range Replacement", func(t *testing.T) {
		ds := manager.NewDocumentStore()
		ds.Upsert("u", "Hello @world \nbye", nil)

		change := protocol.TextDocumentContentChangeEvent{
			Range: &protocol.Range{
				Start: protocol.Position{Line: 0, Character: 6},
				End:   protocol.Position{Line: 0, Character: 12},
			},
			Text: "@universe",
		}
		require.NoError(t, ds.ApplyChanges("u", []any{change}))
		assert.Equal(t, "Hello @universe \nbye", ds.Snapshot("u").Text)
	})

	t.Run("Multi-line Deletion", func(t *testing.T) {
		ds := manager.NewDocumentStore()
		ds.Upsert("u", "one\ntwo\nthree", nil)

		change := protocol.TextDocumentContentChangeEvent{
			Range: &protocol.Range{
				Start: protocol.Position{Line: 0, Character: 3},
				End:   protocol.Position{Line: 2, Character: 0},
			},
		}
		require.NoError(t, ds.ApplyChanges("u", []any{change}))
		assert.Equal(t, "onethree", ds.Snapshot("u").Text)
	})

	t.Run("Edit After Astral Character", func(t *testing.T) {
		ds := manager.NewDocumentStore()
		ds.Upsert("u", "😀x", nil)

		require.NoError(t, ds.ApplyChanges("u", []any{insertAt(0, 2, "-")}))
		assert.Equal(t, "😀-x", ds.Snapshot("u").Text)
	})

	t.Run("Whole Document Replacement", func(t *testing.T) {
		ds := manager.NewDocumentStore()
		ds.Upsert("u", "old", ptr("go"))

		changes := []any{
			protocol.TextDocumentContentChangeEventWhole{Text: "new"},
			protocol.TextDocumentContentChangeEvent{Text: "newer"},
		}
		require.NoError(t, ds.ApplyChanges("u", changes))

		snap := ds.Snapshot("u")
		assert.Equal(t, "newer", snap.Text)
		assert.Equal(t, "go", snap.LanguageID)
	})

	t.Run("Unknown Document", func(t *testing.T) {
		ds := manager.NewDocumentStore()
		err := ds.ApplyChanges("missing", []any{insertAt(0, 0, "A")})
		require.ErrorIs(t, err, manager.ErrDocumentNotFound)
		assert.Empty(t, ds.URIs())
	})

	t.Run("Unsupported Change Leaves Document Untouched", func(t *testing.T) {
		ds := manager.NewDocumentStore()
		ds.Upsert("u", "keep", nil)

		err := ds.ApplyChanges("u", []any{insertAt(0, 0, "X"), "bogus"})
		require.Error(t, err)
		assert.Equal(t, "keep", ds.Snapshot("u").Text)
	})
}

func TestDocumentStoreConcurrency(t *testing.T) {
	ds := manager.NewDocumentStore()
	uris := []string{"file:///u1", "file:///u2"}

	var wg sync.WaitGroup
	for _, uri := range uris {
		wg.Add(1)
		go func(uri string) {
			defer wg.Done()
			ds.Upsert(uri, "", ptr("go"))
			for i := 0; i < 100; i++ {
				if err := ds.ApplyChanges(uri, []any{insertAt(0, protocol.UInteger(i), "x")}); err != nil {
					t.Errorf("apply change to %s: %v", uri, err)
					return
				}
			}
		}(uri)
	}

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				snap := ds.Snapshot(uris[i%2])
				if strings.Trim(snap.Text, "x") != "" {
					t.Errorf("torn snapshot of %s: %q", snap.URI, snap.Text)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	for _, uri := range uris {
		assert.Equal(t, strings.Repeat("x", 100), ds.Snapshot(uri).Text, fmt.Sprintf("final text of %s", uri))
	}
}
