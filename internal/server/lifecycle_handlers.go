package server

import (
	"llmlsp/internal/config"
	"llmlsp/internal/provider"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) initialize(
	context *glsp.Context,
	params *protocol.InitializeParams,
) (any, error) {
	session := provider.Session{ClientName: "web", ClientVersion: "unknown"}
	if params.ClientInfo != nil {
		session.ClientName = params.ClientInfo.Name
		if params.ClientInfo.Version != nil {
			session.ClientVersion = *params.ClientInfo.Version
		}
	}
	s.mu.Lock()
	s.session = session
	base := s.settings
	s.mu.Unlock()
	log.Infof("Client: %s %s", session.ClientName, session.ClientVersion)

	// Settings
	settings, err := base.Overlay(params.InitializationOptions)
	if err != nil {
		log.Warningf("ignoring initializationOptions: %v", err)
		settings = base
	}
	s.configure(settings)
	log.Infof("Settings: %+v", settings)

	syncKind := protocol.TextDocumentSyncKindIncremental

	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: config.TriggerCharacters,
		ResolveProvider:   &protocol.False,
	}
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: config.CommandKeys(),
	}

	version := s.version
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

func (s *Server) initialized(
	context *glsp.Context,
	params *protocol.InitializedParams,
) error {
	log.Info("Client initialized.")
	return nil
}

func (s *Server) shutdown(context *glsp.Context) error {
	log.Infof("Shutdown with %d open documents", len(s.store.URIs()))
	return nil
}

func (s *Server) setTrace(
	context *glsp.Context,
	params *protocol.SetTraceParams,
) error {
	protocol.SetTraceValue(params.Value)
	return nil
}
