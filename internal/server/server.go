package server

import (
	"sync"

	"llmlsp/internal/completion"
	"llmlsp/internal/config"
	"llmlsp/internal/manager"
	"llmlsp/internal/provider"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const serverName = "llm-lsp"

var log = commonlog.GetLogger("llmlsp.server")

// ProviderFactory builds the completion provider for the effective settings
// of a session.
type ProviderFactory func(settings config.Settings) provider.Provider

// Options configures a Server.
type Options struct {
	ProviderName string
	NewProvider  ProviderFactory
	Settings     config.Settings
	Version      string
	// Debug logs every JSON-RPC message.
	Debug bool
}

type Server struct {
	handler      *protocol.Handler
	store        *manager.DocumentStore
	providerName string
	newProvider  ProviderFactory
	version      string
	debug        bool

	mu           sync.RWMutex
	settings     config.Settings
	session      provider.Session
	orchestrator *completion.Orchestrator
}

// NewServer wires the LSP handlers to a fresh document store. The returned
// Server is ready to run on any transport.
func NewServer(opts Options) (*Server, error) {
	if err := opts.Settings.Validate(); err != nil {
		return nil, err
	}
	return newServer(opts), nil
}

func newServer(opts Options) *Server {
	ls := &Server{
		store:        manager.NewDocumentStore(),
		providerName: opts.ProviderName,
		newProvider:  opts.NewProvider,
		version:      opts.Version,
		debug:        opts.Debug,
		session:      provider.Session{ClientName: "web", ClientVersion: "unknown"},
	}
	ls.configure(opts.Settings)

	ls.handler = &protocol.Handler{
		Initialize:              guard("initialize", ls.initialize),
		Initialized:             guardNotification("initialized", ls.initialized),
		Shutdown:                ls.shutdown,
		SetTrace:                guardNotification("$/setTrace", ls.setTrace),
		TextDocumentDidOpen:     guardNotification("textDocument/didOpen", ls.textDocumentDidOpen),
		TextDocumentDidChange:   guardNotification("textDocument/didChange", ls.textDocumentDidChange),
		TextDocumentDidClose:    guardNotification("textDocument/didClose", ls.textDocumentDidClose),
		TextDocumentCompletion:  guard("textDocument/completion", ls.textDocumentCompletion),
		WorkspaceExecuteCommand: guard("workspace/executeCommand", ls.workspaceExecuteCommand),
	}
	return ls
}

// configure installs settings and rebuilds the provider pipeline for them.
func (s *Server) configure(settings config.Settings) {
	orchestrator := completion.NewOrchestrator(s.store, s.newProvider(settings), settings.MaxConcurrent)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	s.orchestrator = orchestrator
}

func (s *Server) state() (config.Settings, provider.Session, *completion.Orchestrator) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, s.session, s.orchestrator
}
