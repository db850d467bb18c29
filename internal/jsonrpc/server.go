package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Server dispatches newline-delimited JSON-RPC 2.0 calls to a MethodRegistry.
type Server struct {
	registry *MethodRegistry
	logger   *slog.Logger
}

// NewServer returns a server for registry. A nil logger uses slog.Default.
func NewServer(registry *MethodRegistry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{registry: registry, logger: logger}
}

// ServeTransport answers calls read from t until the stream ends, a write
// fails or ctx is cancelled. Cancellation is checked between calls.
func (s *Server) ServeTransport(ctx context.Context, t *Transport) {
	for ctx.Err() == nil {
		req, raw, err := t.ReadRequest()
		var resp *Response
		switch {
		case errors.Is(err, io.EOF):
			return
		case errors.Is(err, ErrMalformedMessage):
			resp = &Response{JSONRPC: Version, Error: ErrParseError(err.Error()), ID: json.RawMessage("null")}
		case err != nil:
			s.logger.Debug("RPC read failed", "error", err)
			return
		default:
			resp = s.dispatch(ctx, req, raw)
		}

		if resp == nil {
			continue
		}
		if err := t.WriteResponse(resp); err != nil {
			s.logger.Debug("RPC write failed", "error", err)
			return
		}
	}
}

// dispatch runs one call. It returns nil for notifications.
func (s *Server) dispatch(ctx context.Context, req *Request, raw []byte) *Response {
	notification := !hasID(raw)
	reply := func(result any, rpcErr *Error) *Response {
		if notification {
			return nil
		}
		return &Response{JSONRPC: Version, Result: result, Error: rpcErr, ID: req.ID}
	}

	if req.JSONRPC != Version {
		return reply(nil, ErrInvalidRequest(`jsonrpc field must be "2.0"`))
	}
	handler := s.registry.Lookup(req.Method)
	if handler == nil {
		return reply(nil, ErrMethodNotFound(req.Method))
	}

	start := time.Now()
	result, rpcErr := s.call(ctx, handler, req)
	if rpcErr != nil {
		s.logger.Debug("RPC call failed", "method", req.Method, "code", rpcErr.Code, "error", rpcErr.Message)
		return reply(nil, rpcErr)
	}
	s.logger.Debug("RPC call", "method", req.Method, "duration", time.Since(start))
	return reply(result, nil)
}

// call runs handler, turning a panic into an internal error so one bad call
// does not take the connection down.
func (s *Server) call(ctx context.Context, handler Handler, req *Request) (result any, rpcErr *Error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("RPC handler panicked", "method", req.Method, "panic", r)
			result, rpcErr = nil, ErrInternalError(fmt.Sprint(r))
		}
	}()
	return handler(ctx, req.Params)
}

// hasID reports whether the top-level object has an "id" key. An explicit
// null id still makes the call a request.
func hasID(raw []byte) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return false
	}
	_, ok := obj["id"]
	return ok
}

// ServeStdio serves a single client on the given streams.
func (s *Server) ServeStdio(ctx context.Context, stdin io.Reader, stdout io.Writer) {
	s.ServeTransport(ctx, NewTransport(stdin, stdout))
}
