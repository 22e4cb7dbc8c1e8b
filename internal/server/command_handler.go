package server

import (
	"fmt"

	"llmlsp/internal/config"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) workspaceExecuteCommand(
	context *glsp.Context,
	params *protocol.ExecuteCommandParams,
) (any, error) {
	cmd, ok := config.LookupCommand(params.Command)
	if !ok {
		return nil, fmt.Errorf("unknown command %q", params.Command)
	}

	log.Infof("called %q", cmd.Key)
	context.Notify(protocol.ServerWindowShowMessage, protocol.ShowMessageParams{
		Type:    protocol.MessageTypeInfo,
		Message: fmt.Sprintf("%s is not supported by the %s provider", cmd.Label, s.providerName),
	})
	return nil, nil
}
