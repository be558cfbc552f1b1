package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"

	"github.com/sourcegraph/jsonrpc2"
)

// RPCServer exposes the service over JSON-RPC 2.0 on a stream transport.
// Each accepted connection gets its own jsonrpc2 conn; methods mirror the
// HTTP surface.
type RPCServer struct {
	Service *Service
}

// ServeListener accepts connections until the listener closes or the
// context is cancelled.
func (s *RPCServer) ServeListener(ctx context.Context, listener net.Listener) error {
	go func() {
		<-ctx.Done()
		listener.Close()
	}()
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		go s.ServeConn(ctx, conn)
	}
}

// ServeConn drives one JSON-RPC connection to completion.
func (s *RPCServer) ServeConn(ctx context.Context, conn net.Conn) {
	stream := jsonrpc2.NewBufferedStream(conn, jsonrpc2.VSCodeObjectCodec{})
	rpcConn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(s.handle))
	<-rpcConn.DisconnectNotify()
}

func (s *RPCServer) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	log.Printf("rpc %s", req.Method)
	switch req.Method {
	case "agent/react":
		var params ReactRequest
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return s.Service.React(ctx, params)
	case "workflow/run":
		var params WorkflowRequest
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return s.Service.Workflow(ctx, params)
	default:
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: fmt.Sprintf("method not found: %s", req.Method),
		}
	}
}

func unmarshalParams(req *jsonrpc2.Request, out interface{}) error {
	if req.Params == nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "missing params"}
	}
	if err := json.Unmarshal(*req.Params, out); err != nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	return nil
}
