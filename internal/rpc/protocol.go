package rpc

import (
	"bytes"
	"encoding/json/jsontext"
)

// Version is the protocol version echoed in every response.
const Version = "2.0"

// Protocol-level error codes. Domain errors carry their own codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32000
)

// Request is a single JSON-RPC 2.0 call. Params are positional.
type Request struct {
	JSONRPC string           `json:"jsonrpc"`
	Method  string           `json:"method"`
	Params  []jsontext.Value `json:"params,omitzero"`
	ID      jsontext.Value   `json:"id,omitzero"`
}

// IsNotification reports whether the request expects no response.
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0
}

// Response is a single JSON-RPC 2.0 reply.
type Response struct {
	JSONRPC string         `json:"jsonrpc"`
	Result  any            `json:"result,omitzero"`
	Error   *ErrorObject   `json:"error,omitzero"`
	ID      jsontext.Value `json:"id"`
}

// ErrorObject is the wire form of a failed call.
type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func resultResponse(id jsontext.Value, result any) Response {
	return Response{JSONRPC: Version, Result: result, ID: normalizeID(id)}
}

func errorResponse(id jsontext.Value, code int, message string) Response {
	return Response{JSONRPC: Version, Error: &ErrorObject{Code: code, Message: message}, ID: normalizeID(id)}
}

// normalizeID ensures an absent id serializes as null rather than being
// dropped, since the id member is required in responses.
func normalizeID(id jsontext.Value) jsontext.Value {
	if len(id) == 0 {
		return jsontext.Value("null")
	}
	return id
}

// isNull reports whether a raw value is absent or JSON null.
func isNull(v jsontext.Value) bool {
	return len(v) == 0 || bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
