package api

import (
	"errors"
	"fmt"
)

// GenericMessage is shown when no response was received at all.
const GenericMessage = "An unexpected error occurred. Please try again."

// ErrSessionExpired matches (errors.Is) any 401 from the backend. It is
// never retried here; the host hands it to the account selector.
var ErrSessionExpired = errors.New("session expired")

// ErrNotFound matches (errors.Is) any 404 from the backend.
var ErrNotFound = errors.New("not found")

// Kind classifies an Error by origin.
type Kind int

const (
	// KindNetwork means no response was received.
	KindNetwork Kind = iota
	// KindBackend is a structured rejection from the server.
	KindBackend
	// KindSessionExpired is a 401.
	KindSessionExpired
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindBackend:
		return "backend"
	case KindSessionExpired:
		return "session-expired"
	default:
		return "unknown"
	}
}

// Error is returned by every Client call that fails. Message is safe to
// show to the user verbatim.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the sentinels by status.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrSessionExpired:
		return e.Kind == KindSessionExpired
	case ErrNotFound:
		return e.Kind == KindBackend && e.StatusCode == 404
	}
	return false
}

func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: GenericMessage, Err: err}
}

func backendError(status int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}
	kind := KindBackend
	if status == 401 {
		kind = KindSessionExpired
	}
	return &Error{Kind: kind, StatusCode: status, Message: message}
}

// Message extracts the user-visible text from err: the backend message for
// *Error, err.Error() for anything else.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
