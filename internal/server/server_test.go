package server

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"llmlsp/internal/config"
	"llmlsp/internal/manager"
	"llmlsp/internal/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

type fakeProvider struct {
	mu       sync.Mutex
	settings []config.Settings
	requests []provider.Request
}

func (f *fakeProvider) factory(settings config.Settings) provider.Provider {
	f.mu.Lock()
	f.settings = append(f.settings, settings)
	f.mu.Unlock()
	return provider.ProviderFunc(func(_ context.Context, req provider.Request) []protocol.CompletionItem {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.requests = append(f.requests, req)
		return []protocol.CompletionItem{provider.LineEdit(req.Position.Line, "suggestion", "suggestion\n")}
	})
}

func (f *fakeProvider) lastRequest(t *testing.T) provider.Request {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func newTestServer() (*Server, *fakeProvider) {
	fake := &fakeProvider{}
	s := newServer(Options{
		ProviderName: "fake",
		NewProvider:  fake.factory,
		Settings:     config.Defaults(),
		Version:      "test",
	})
	return s, fake
}

func initializeParams(t *testing.T, raw string) *protocol.InitializeParams {
	t.Helper()
	var params protocol.InitializeParams
	require.NoError(t, json.Unmarshal([]byte(raw), &params))
	return &params
}

func openDocument(t *testing.T, s *Server, uri, languageID, text string) {
	t.Helper()
	err := s.textDocumentDidOpen(&glsp.Context{}, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: languageID, Version: 1, Text: text},
	})
	require.NoError(t, err)
}

func complete(t *testing.T, s *Server, uri string, line, character protocol.UInteger) []protocol.CompletionItem {
	t.Helper()
	result, err := s.handler.TextDocumentCompletion(&glsp.Context{}, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: line, Character: character},
		},
	})
	require.NoError(t, err)
	items, ok := result.([]protocol.CompletionItem)
	require.True(t, ok, "result has type %T", result)
	return items
}

func TestInitialize(t *testing.T) {
	t.Run("Records Client And Advertises Capabilities", func(t *testing.T) {
		s, fake := newTestServer()
		result, err := s.handler.Initialize(&glsp.Context{}, initializeParams(t, `{
			"processId": null,
			"rootUri": null,
			"capabilities": {},
			"clientInfo": {"name": "Neovim", "version": "0.10.1"},
			"initializationOptions": {"max_suggestions": 2}
		}`))
		require.NoError(t, err)

		init, ok := result.(protocol.InitializeResult)
		require.True(t, ok)
		caps := init.Capabilities
		require.NotNil(t, caps.CompletionProvider)
		assert.Equal(t, []string{"{", "(", " "}, caps.CompletionProvider.TriggerCharacters)
		require.NotNil(t, caps.ExecuteCommandProvider)
		assert.Equal(t, config.CommandKeys(), caps.ExecuteCommandProvider.Commands)
		syncOptions, ok := caps.TextDocumentSync.(*protocol.TextDocumentSyncOptions)
		require.True(t, ok)
		assert.Equal(t, protocol.TextDocumentSyncKindIncremental, *syncOptions.Change)

		settings, session, _ := s.state()
		assert.Equal(t, provider.Session{ClientName: "Neovim", ClientVersion: "0.10.1"}, session)
		assert.Equal(t, 2, settings.MaxSuggestions)
		assert.Len(t, fake.settings, 2, "provider is rebuilt with the session settings")
	})

	t.Run("Defaults Without Client Info", func(t *testing.T) {
		s, _ := newTestServer()
		_, err := s.handler.Initialize(&glsp.Context{}, initializeParams(t, `{"processId": null, "rootUri": null, "capabilities": {}}`))
		require.NoError(t, err)

		settings, session, _ := s.state()
		assert.Equal(t, provider.Session{ClientName: "web", ClientVersion: "unknown"}, session)
		assert.Equal(t, config.Defaults(), settings)
	})

	t.Run("Invalid Options Fall Back To Defaults", func(t *testing.T) {
		s, _ := newTestServer()
		_, err := s.handler.Initialize(&glsp.Context{}, initializeParams(t, `{
			"processId": null,
			"rootUri": null,
			"capabilities": {},
			"initializationOptions": {"max_suggestions": 0}
		}`))
		require.NoError(t, err)

		settings, _, _ := s.state()
		assert.Equal(t, config.Defaults(), settings)
	})
}

func TestDocumentLifecycle(t *testing.T) {
	s, fake := newTestServer()
	uri := "file:///project/main.rs"

	openDocument(t, s, uri, "rust", "fn main() {\n}")

	err := s.handler.TextDocumentDidChange(&glsp.Context{}, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEvent{
				Range: &protocol.Range{
					Start: protocol.Position{Line: 0, Character: 11},
					End:   protocol.Position{Line: 0, Character: 11},
				},
				Text: "\n  ",
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "fn main() {\n  \n}", s.store.Snapshot(uri).Text)

	items := complete(t, s, uri, 1, 2)
	require.Len(t, items, 1)
	req := fake.lastRequest(t)
	assert.Equal(t, "/project/main.rs", req.Path)
	assert.Equal(t, "rust", req.LanguageID)
	assert.Equal(t, 14, req.Offset)
	assert.Equal(t, config.Defaults().MaxSuggestions, req.MaxSuggestions)

	err = s.handler.TextDocumentDidClose(&glsp.Context{}, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	assert.Equal(t, manager.Snapshot{URI: uri}, s.store.Snapshot(uri))

	complete(t, s, uri, 1, 2)
	assert.Equal(t, "", fake.lastRequest(t).Text)
}

func TestDidChangeUnknownDocument(t *testing.T) {
	s, _ := newTestServer()
	err := s.handler.TextDocumentDidChange(&glsp.Context{}, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: "file:///nope"},
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "x"}},
	})
	require.ErrorIs(t, err, manager.ErrDocumentNotFound)
}

func TestExecuteCommand(t *testing.T) {
	s, _ := newTestServer()

	var methods []string
	var messages []protocol.ShowMessageParams
	ctx := &glsp.Context{Notify: func(method string, params any) {
		methods = append(methods, method)
		if p, ok := params.(protocol.ShowMessageParams); ok {
			messages = append(messages, p)
		}
	}}

	_, err := s.handler.WorkspaceExecuteCommand(ctx, &protocol.ExecuteCommandParams{Command: "generate_docs"})
	require.NoError(t, err)
	assert.Equal(t, []string{protocol.ServerWindowShowMessage}, methods)
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0].Message, "Generate documentation")
	assert.Contains(t, messages[0].Message, "fake")

	_, err = s.handler.WorkspaceExecuteCommand(ctx, &protocol.ExecuteCommandParams{Command: "format_disk"})
	require.Error(t, err)
}

func TestGuardRecoversPanic(t *testing.T) {
	handle := guard("test/panic", func(*glsp.Context, *protocol.CompletionParams) (any, error) {
		panic("boom")
	})

	result, err := handle(&glsp.Context{}, &protocol.CompletionParams{})
	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	notify := guardNotification("test/panic", func(*glsp.Context, *protocol.InitializedParams) error {
		var m map[string]int
		m["x"] = 1
		return nil
	})
	assert.Error(t, notify(&glsp.Context{}, &protocol.InitializedParams{}))
}

func TestNewServerRejectsInvalidSettings(t *testing.T) {
	fake := &fakeProvider{}
	_, err := NewServer(Options{NewProvider: fake.factory, Settings: config.Settings{}})
	require.Error(t, err)

	srv, err := NewServer(Options{NewProvider: fake.factory, Settings: config.Defaults()})
	require.NoError(t, err)
	assert.NotNil(t, srv)
}

func TestCompletionUsesRequestContext(t *testing.T) {
	p := newGatedProvider()
	s := newServer(Options{
		ProviderName: "gated",
		NewProvider:  func(config.Settings) provider.Provider { return p },
		Settings:     config.Defaults(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan any, 1)
	go func() {
		result, _ := s.textDocumentCompletion(&glsp.Context{Context: ctx}, &protocol.CompletionParams{
			TextDocumentPositionParams: protocol.TextDocumentPositionParams{
				TextDocument: protocol.TextDocumentIdentifier{URI: "file:///ctx.go"},
			},
		})
		done <- result
	}()

	p.waitStarted(t)
	cancel()

	select {
	case err := <-p.cancelled:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("provider call ignored the request context")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("completion handler did not return")
	}
}
