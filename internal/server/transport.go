package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sourcegraph/jsonrpc2"
	wsjsonrpc2 "github.com/sourcegraph/jsonrpc2/websocket"
	"github.com/tliron/commonlog"
	glspserver "github.com/tliron/glsp/server"
)

func (s *Server) connectionOptions() []jsonrpc2.ConnOpt {
	opts := []jsonrpc2.ConnOpt{jsonrpc2.SetLogger(rpcLogger{log})}
	if s.debug {
		opts = append(opts, jsonrpc2.LogMessages(rpcLogger{commonlog.NewScopeLogger(log, "rpc")}))
	}
	return opts
}

// serve runs one JSON-RPC session over stream and blocks until it ends. Work
// still in flight when the peer disconnects is cancelled.
func (s *Server) serve(stream jsonrpc2.ObjectStream) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := jsonrpc2.NewConn(ctx, stream, newConnection(ctx, s.handler), s.connectionOptions()...)
	<-conn.DisconnectNotify()
}

// ServeStream serves a session over a byte stream using LSP base-protocol
// framing.
func (s *Server) ServeStream(stream io.ReadWriteCloser) {
	log.Info("new stream connection")
	s.serve(jsonrpc2.NewBufferedStream(stream, jsonrpc2.VSCodeObjectCodec{}))
	log.Info("stream connection closed")
}

// RunStdio serves a single session on stdin/stdout.
func (s *Server) RunStdio() error {
	log.Notice("reading from stdin, writing to stdout")
	s.ServeStream(glspserver.Stdio{})
	return nil
}

// RunTCP accepts sessions on address until the listener fails.
func (s *Server) RunTCP(address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", address, err)
	}
	defer listener.Close()
	log.Noticef("listening for TCP connections on %s", address)

	for {
		conn, err := listener.Accept()
		if err != nil {
			return err
		}
		go s.ServeStream(conn)
	}
}

// RunWebSocket accepts sessions as WebSocket upgrades on address.
func (s *Server) RunWebSocket(address string) error {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		socket, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warningf("error upgrading HTTP to web socket: %v", err)
			return
		}
		defer socket.Close()

		log.Info("new web socket connection")
		s.serve(wsjsonrpc2.NewObjectStream(socket))
		log.Info("web socket connection closed")
	})

	srv := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Noticef("listening for web socket connections on %s", address)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web socket: %w", err)
	}
	return nil
}
