package jsonrpc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
)

// MaxMessageSize bounds a single request line.
const MaxMessageSize = 4 << 20

// ErrMalformedMessage is returned by ReadRequest for a line that is not a
// JSON object. The stream stays usable.
var ErrMalformedMessage = errors.New("malformed JSON-RPC message")

// Transport frames JSON-RPC messages as one JSON document per line.
type Transport struct {
	scanner *bufio.Scanner

	mu  sync.Mutex
	enc *json.Encoder
}

func NewTransport(r io.Reader, w io.Writer) *Transport {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), MaxMessageSize)
	return &Transport{scanner: sc, enc: json.NewEncoder(w)}
}

// ReadRequest returns the next request and its raw bytes. Blank lines are
// skipped; io.EOF marks the end of the stream.
func (t *Transport) ReadRequest() (*Request, []byte, error) {
	for t.scanner.Scan() {
		line := bytes.TrimSpace(t.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		raw := bytes.Clone(line)
		var req Request
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, raw, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		return &req, raw, nil
	}
	if err := t.scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading request: %w", err)
	}
	return nil, nil, io.EOF
}

// WriteResponse writes resp as one line. Safe for concurrent use.
func (t *Transport) WriteResponse(resp *Response) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enc.Encode(resp)
}

// TCPListener serves every accepted connection with its own Transport.
type TCPListener struct {
	ln     net.Listener
	server *Server
}

func NewTCPListener(addr string, server *Server) (*TCPListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	return &TCPListener{ln: ln, server: server}, nil
}

func (tl *TCPListener) Addr() net.Addr {
	return tl.ln.Addr()
}

// Serve accepts connections until ctx is cancelled, which closes the
// listener and returns nil. Any other accept error is returned.
func (tl *TCPListener) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		tl.ln.Close() //nolint:errcheck
	})
	defer stop()

	for {
		conn, err := tl.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accepting connection: %w", err)
		}
		tl.server.logger.Debug("RPC client connected", "remote", conn.RemoteAddr().String())
		go tl.serveConn(ctx, conn)
	}
}

func (tl *TCPListener) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close() //nolint:errcheck
	// Unblock the pending read when the listener shuts down.
	stop := context.AfterFunc(ctx, func() {
		conn.Close() //nolint:errcheck
	})
	defer stop()
	tl.server.ServeTransport(ctx, NewTransport(conn, conn))
	tl.server.logger.Debug("RPC client disconnected", "remote", conn.RemoteAddr().String())
}

func (tl *TCPListener) Close() error {
	return tl.ln.Close()
}
