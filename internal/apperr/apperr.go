// Package apperr defines the error taxonomy shared by the payment flows.
// Handlers map these types onto HTTP responses; services never inspect
// status codes directly.
package apperr

import "fmt"

// ValidationError reports bad or missing caller input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validation(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown transaction, order or creator.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

func NotFound(format string, args ...interface{}) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

// GatewayError reports a failed or malformed upstream gateway call.
// Webhook deliveries answer it with a 5xx so the gateway redelivers;
// polling clients see it resolved to a failed payment status.
type GatewayError struct {
	Msg string
	Err error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *GatewayError) Unwrap() error { return e.Err }

func Gateway(msg string, err error) error {
	return &GatewayError{Msg: msg, Err: err}
}

// PersistenceError reports a failed ledger store write or read.
type PersistenceError struct {
	Msg string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func Persistence(msg string, err error) error {
	return &PersistenceError{Msg: msg, Err: err}
}
