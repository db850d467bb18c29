package jsonrpc

import "encoding/json"

// Version is the only protocol version the server speaks.
const Version = "2.0"

// Request is one decoded call. A request whose "id" key is absent is a
// notification and gets no response.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// Response carries either Result or Error, never both.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// Error is a JSON-RPC error object. Data holds call-specific detail such as
// an import report.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Protocol error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Rating engine error codes.
const (
	CodeNotFound          = -32000
	CodeConfigRejected    = -32001
	CodeRatingUnavailable = -32002
)

var messages = map[int]string{
	CodeParseError:        "Parse error",
	CodeInvalidRequest:    "Invalid request",
	CodeMethodNotFound:    "Method not found",
	CodeInvalidParams:     "Invalid params",
	CodeInternalError:     "Internal error",
	CodeNotFound:          "Not found",
	CodeConfigRejected:    "Configuration rejected",
	CodeRatingUnavailable: "Rating unavailable",
}

func newError(code int, data any) *Error {
	return &Error{Code: code, Message: messages[code], Data: data}
}

func ErrParseError(data any) *Error     { return newError(CodeParseError, data) }
func ErrInvalidRequest(data any) *Error { return newError(CodeInvalidRequest, data) }
func ErrInvalidParams(data any) *Error  { return newError(CodeInvalidParams, data) }
func ErrInternalError(data any) *Error  { return newError(CodeInternalError, data) }

func ErrMethodNotFound(method string) *Error {
	return newError(CodeMethodNotFound, method)
}

// ErrNotFound reports an environment or model summary that does not exist.
func ErrNotFound(data any) *Error {
	return newError(CodeNotFound, data)
}

// ErrConfigRejected reports payload entries that were rejected on import.
// The valid entries have been applied; data carries the import report.
func ErrConfigRejected(data any) *Error {
	return newError(CodeConfigRejected, data)
}

// ErrRatingUnavailable reports a rating that cannot be computed, such as a
// rating grid with zero axis weights.
func ErrRatingUnavailable(data any) *Error {
	return newError(CodeRatingUnavailable, data)
}
