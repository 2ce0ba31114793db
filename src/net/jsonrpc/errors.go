package jsonrpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Reserved JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Ledger error codes, in the server error range.
const (
	CodeCollision       = -32001
	CodeIllegalState    = -32002
	CodeUnsuitablePeer  = -32003
	CodeValidationError = -32004
	CodeInvalidArgument = -32005
	CodeNotFound        = -32006
	CodeLimitExceeded   = -32007
	CodeNodeUnavailable = -32008
)

var codeNames = map[int]string{
	CodeParseError:      "parse error",
	CodeInvalidRequest:  "invalid request",
	CodeMethodNotFound:  "method not found",
	CodeInvalidParams:   "invalid params",
	CodeInternalError:   "internal error",
	CodeCollision:       "collision",
	CodeIllegalState:    "illegal state",
	CodeUnsuitablePeer:  "unsuitable peer",
	CodeValidationError: "validation error",
	CodeInvalidArgument: "invalid argument",
	CodeNotFound:        "not found",
	CodeLimitExceeded:   "limit exceeded",
	CodeNodeUnavailable: "node unavailable",
}

// Error is an error object returned by a node.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	name, ok := codeNames[e.Code]
	if !ok {
		name = "server error"
	}
	return fmt.Sprintf("jsonrpc: %s (%d): %s", name, e.Code, e.Message)
}

// IsCode reports whether err is an *Error with the given code.
func IsCode(err error, code int) bool {
	var rpcErr *Error
	return errors.As(err, &rpcErr) && rpcErr.Code == code
}

// ErrMalformedMessage is returned when a response can not be decoded.
var ErrMalformedMessage = errors.New("jsonrpc: malformed message")
