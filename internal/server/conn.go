package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// asyncMethods are requests served on their own goroutine. Everything else,
// notably document sync notifications, runs on the read loop in arrival order.
var asyncMethods = map[string]bool{
	protocol.MethodTextDocumentCompletion: true,
}

// connection dispatches one JSON-RPC stream to a glsp.Handler.
type connection struct {
	handler glsp.Handler
	ctx     context.Context
	reply   jsonrpc2.Handler

	mu       sync.Mutex
	inflight map[jsonrpc2.ID]context.CancelFunc
}

func newConnection(ctx context.Context, handler glsp.Handler) *connection {
	c := &connection{
		handler:  handler,
		ctx:      ctx,
		inflight: make(map[jsonrpc2.ID]context.CancelFunc),
	}
	c.reply = jsonrpc2.HandlerWithError(c.dispatch).SuppressErrClosed()
	return c
}

// Handle implements jsonrpc2.Handler.
func (c *connection) Handle(_ context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	switch {
	case req.Method == protocol.MethodCancelRequest:
		c.cancel(req)

	case asyncMethods[req.Method] && !req.Notif:
		ctx, cancel := context.WithCancel(c.ctx)
		c.track(req.ID, cancel)
		go func() {
			defer c.untrack(req.ID)
			c.reply.Handle(ctx, conn, req)
		}()

	default:
		c.reply.Handle(c.ctx, conn, req)
	}
}

func (c *connection) track(id jsonrpc2.ID, cancel context.CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight[id] = cancel
}

func (c *connection) untrack(id jsonrpc2.ID) {
	c.mu.Lock()
	cancel, ok := c.inflight[id]
	delete(c.inflight, id)
	c.mu.Unlock()
	if ok {
		cancel()
	}
}

func (c *connection) cancel(req *jsonrpc2.Request) {
	if req.Params == nil {
		return
	}
	var params struct {
		ID jsonrpc2.ID `json:"id"`
	}
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		log.Warningf("malformed %s: %v", req.Method, err)
		return
	}

	c.mu.Lock()
	cancel, ok := c.inflight[params.ID]
	c.mu.Unlock()
	if ok {
		log.Debugf("cancelling request %s", params.ID)
		cancel()
	}
}

func (c *connection) dispatch(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	glspContext := glsp.Context{
		Method: req.Method,
		Notify: func(method string, params any) {
			if err := conn.Notify(ctx, method, params); err != nil {
				log.Error(err.Error())
			}
		},
		Call: func(method string, params any, result any) {
			if err := conn.Call(ctx, method, params, result); err != nil {
				log.Error(err.Error())
			}
		},
		Context: ctx,
	}
	if req.Params != nil {
		glspContext.Params = *req.Params
	}

	if req.Method == protocol.MethodExit {
		c.handler.Handle(&glspContext)
		return nil, conn.Close()
	}

	result, validMethod, validParams, err := c.handler.Handle(&glspContext)
	switch {
	case !validMethod:
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: fmt.Sprintf("method not supported: %s", req.Method),
		}
	case !validParams:
		rpcErr := &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
		if err != nil {
			rpcErr.Message = err.Error()
		}
		return nil, rpcErr
	case err != nil:
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInvalidRequest,
			Message: err.Error(),
		}
	}
	return result, nil
}

// rpcLogger adapts commonlog to jsonrpc2.Logger.
type rpcLogger struct {
	log commonlog.Logger
}

func (l rpcLogger) Printf(format string, v ...any) {
	l.log.Debugf(strings.TrimSuffix(format, "\n"), v...)
}
