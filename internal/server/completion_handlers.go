package server

import (
	"context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) textDocumentCompletion(
	glspContext *glsp.Context,
	params *protocol.CompletionParams,
) (any, error) {
	if params.Context != nil && params.Context.TriggerCharacter != nil {
		log.Debugf("completion triggered by %q", *params.Context.TriggerCharacter)
	}

	settings, session, orchestrator := s.state()

	parent := glspContext.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, settings.Timeout())
	defer cancel()

	items := orchestrator.Complete(
		ctx,
		params.TextDocument.URI,
		params.Position,
		settings.MaxSuggestions,
		session,
	)
	return items, nil
}
