package api

import (
	"encoding/json"
	"fmt"

	interrors "github.com/caloriediary/go-diary-client/internal/errors"
	"github.com/caloriediary/go-diary-client/internal/utils"
)

// ErrorKind classifies every failed backend call into exactly one bucket.
// Callers never see transport-specific error shapes.
type ErrorKind int

const (
	// KindRequest is a failure before the request was even sent.
	KindRequest ErrorKind = iota
	// KindServer is a non-success status with a response body.
	KindServer
	// KindNoResponse is a request that got no answer (network/timeout).
	KindNoResponse
)

const (
	fallbackServerMessage = "An unexpected error occurred. Please try again later."
	noResponseMessage     = "No response from the server. Check your connection."
	unreadableBodyMessage = "The server answered with a response that could not be read."
)

// Error is the single failure shape surfaced by the client.
type Error struct {
	Kind    ErrorKind
	Status  int    // HTTP status, set for KindServer only
	Message string // the one user-facing message
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Message extracts the user-facing message from any error returned by this
// package, falling back to err.Error() for foreign errors.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if interrors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

func requestError(cause error) *Error {
	return &Error{Kind: KindRequest, Message: cause.Error(), cause: cause}
}

func noResponseError(cause error) *Error {
	return &Error{
		Kind:    KindNoResponse,
		Message: noResponseMessage,
		cause:   fmt.Errorf("%w: %v", interrors.ErrNoResponse, cause),
	}
}

// unreadableBodyError covers a success status whose body failed to decode.
// The server did not reject the call, so the message must not claim it did.
func unreadableBodyError(status int, cause error) *Error {
	return &Error{
		Kind:    KindServer,
		Status:  status,
		Message: unreadableBodyMessage,
		cause:   cause,
	}
}

func serverError(status int, raw []byte) *Error {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(raw, &body)

	return &Error{
		Kind:    KindServer,
		Status:  status,
		Message: utils.FirstNonEmpty(body.Message, body.Error, fallbackServerMessage),
		cause:   interrors.ErrServerRejected,
	}
}
