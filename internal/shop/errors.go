package shop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed request.
type Kind int

const (
	KindServerError Kind = iota
	KindValidation
	KindNotFound
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindNetwork:
		return "network"
	default:
		return "server_error"
	}
}

// genericMessage is shown when the backend did not supply any text.
func (k Kind) genericMessage() string {
	switch k {
	case KindValidation:
		return "The request was rejected. Check the values and try again."
	case KindNotFound:
		return "That item no longer exists."
	case KindNetwork:
		return "Could not reach the store. Check your connection and try again."
	default:
		return "Something went wrong. Please try again."
	}
}

// Error is returned for every failed request made by Client.
type Error struct {
	Op        string // operation name, e.g. "update cart item"
	Kind      Kind
	Status    int    // HTTP status; zero for transport failures
	Message   string // server-supplied message, verbatim
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Status > 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage returns text suitable for a notification.
func (e *Error) UserMessage() string {
	if e == nil {
		return ""
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		return msg
	}
	return e.Kind.genericMessage()
}

// NewError builds an Error for failures detected before any request is made.
func NewError(op string, kind Kind, message string) *Error {
	return &Error{Op: op, Kind: kind, Message: message}
}

// AsError normalizes any error into *Error. Context cancellation and deadline
// errors are network failures; anything else unknown is a server error.
func AsError(op string, err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	kind := KindServerError
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		kind = KindNetwork
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// KindOf reports the Kind of err, defaulting to KindServerError.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindServerError
}

func classifyStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusNotFound, http.StatusGone:
		return KindNotFound
	default:
		return KindServerError
	}
}

// errorMessage extracts {message} or {error} from an error body.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(payload.Message); msg != "" {
		return msg
	}
	return strings.TrimSpace(payload.Error)
}
