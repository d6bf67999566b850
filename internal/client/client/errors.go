package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies every failure the transport (and the services built on it)
// can surface.
type Kind int

const (
	KindCommunication Kind = iota + 1
	KindMalformedResponse
	KindServer
	KindAPI
	KindStore
	KindNotFound
	KindUnprocessable
)

func (k Kind) String() string {
	switch k {
	case KindCommunication:
		return "communication"
	case KindMalformedResponse:
		return "malformed_response"
	case KindServer:
		return "server"
	case KindAPI:
		return "api"
	case KindStore:
		return "store"
	case KindNotFound:
		return "not_found"
	case KindUnprocessable:
		return "unprocessable"
	default:
		return "unknown"
	}
}

var (
	// ErrUnavailable matches any KindCommunication error.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized matches API errors with status 401 or 403.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound matches KindNotFound errors.
	ErrNotFound = errors.New("not found")
)

// FieldError is one entry of a validation_error response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the tagged error value returned by the transport. Status is set
// for KindAPI and KindNotFound errors that came from an HTTP response.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.String() + " error"
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnavailable:
		return e.Kind == KindCommunication
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Kind == KindNotFound
	}
	return false
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Unprocessable reports a failed client-side precondition.
func Unprocessable(format string, args ...any) error {
	return &Error{Kind: KindUnprocessable, Message: fmt.Sprintf(format, args...)}
}

// StoreError wraps a local persistence failure. Errors that already carry a
// Kind are returned unchanged.
func StoreError(err error) error {
	if err == nil || KindOf(err) != 0 {
		return err
	}
	return &Error{Kind: KindStore, Message: "local store: " + err.Error(), Err: err}
}

func communicationError(err error) error {
	return &Error{Kind: KindCommunication, Message: "could not reach the server: " + err.Error(), Err: err}
}

func malformedResponse(err error) error {
	return &Error{Kind: KindMalformedResponse, Message: "invalid response from server: " + err.Error(), Err: err}
}

func serverError(msg string, fields []FieldError) error {
	if len(fields) > 0 {
		var b strings.Builder
		b.WriteString(msg)
		for _, f := range fields {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(f.Field)
			b.WriteString(": ")
			b.WriteString(f.Message)
		}
		msg = b.String()
	}
	return &Error{Kind: KindServer, Message: msg, Fields: fields}
}

func apiError(status int, msg string) error {
	kind := KindAPI
	if status == http.StatusNotFound {
		kind = KindNotFound
	}
	return &Error{Kind: kind, Status: status, Message: msg}
}

// DecodeReason says why a payload could not be decoded.
type DecodeReason int

const (
	DataCorrupted DecodeReason = iota + 1
	TypeMismatch
	MissingKey
)

func (r DecodeReason) String() string {
	switch r {
	case DataCorrupted:
		return "data corrupted"
	case TypeMismatch:
		return "type mismatch"
	case MissingKey:
		return "missing key"
	default:
		return "decode failure"
	}
}

// DecodeError describes a payload decode failure. Path is the dotted JSON
// path when known.
type DecodeError struct {
	Reason DecodeReason
	Path   string
	Detail string
	Err    error
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Reason.String())
	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// decodeFailure turns a payload decode error into a KindServer error whose
// chain contains a *DecodeError.
func decodeFailure(err error) error {
	var de *DecodeError
	if !errors.As(err, &de) {
		de = classifyJSONError(err)
	}
	return &Error{Kind: KindServer, Message: "could not decode server response: " + de.Error(), Err: de}
}

func classifyJSONError(err error) *DecodeError {
	var (
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)
	switch {
	case errors.As(err, &typeErr):
		return &DecodeError{
			Reason: TypeMismatch,
			Path:   typeErr.Field,
			Detail: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
			Err:    err,
		}
	case errors.As(err, &syntaxErr):
		return &DecodeError{Reason: DataCorrupted, Detail: syntaxErr.Error(), Err: err}
	default:
		return &DecodeError{Reason: DataCorrupted, Detail: err.Error(), Err: err}
	}
}
