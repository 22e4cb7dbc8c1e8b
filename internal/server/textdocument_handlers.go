package server

import (
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) textDocumentDidOpen(
	context *glsp.Context,
	params *protocol.DidOpenTextDocumentParams,
) error {
	languageID := params.TextDocument.LanguageID
	s.store.Upsert(params.TextDocument.URI, params.TextDocument.Text, &languageID)
	log.Debugf("DidOpen: %s (%s)", params.TextDocument.URI, languageID)
	return nil
}

func (s *Server) textDocumentDidChange(
	context *glsp.Context,
	params *protocol.DidChangeTextDocumentParams,
) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	uri := params.TextDocument.URI
	if err := s.store.ApplyChanges(uri, params.ContentChanges); err != nil {
		log.Warningf("failed to apply changes: %v", err)
		return fmt.Errorf("failed to apply changes: %w", err)
	}
	return nil
}

func (s *Server) textDocumentDidClose(
	context *glsp.Context,
	params *protocol.DidCloseTextDocumentParams,
) error {
	s.store.Remove(params.TextDocument.URI)
	log.Debugf("Closed %s", params.TextDocument.URI)
	return nil
}
