// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for clientconnect.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	ErrTransportClosed   = errors.New("transport is closed")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrResourceExhausted = errors.New("resource exhausted")
	ErrAlreadyExists     = errors.New("resource already exists")
	ErrNotFound          = errors.New("resource not found")
	ErrClosed            = errors.New("client connect is shut down")

	// Call lifecycle errors.
	ErrNotHotpatched = errors.New("api is not hotpatched")
	ErrInvalidHandle = errors.New("invalid call handle")
	ErrNotReady      = errors.New("call result is not ready")

	// Shared socket errors.
	ErrSocketUnavailable = errors.New("shared socket is exclusively held")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeResourceExhausted
	ErrCodeAlreadyExists
	ErrCodeNotFound
	ErrCodeNotHotpatched
	ErrCodeInvalidHandle
	ErrCodeNotReady
	ErrCodeSocketUnavailable
	ErrCodeTransport
	ErrCodeInternal
)

var codeSentinels = map[ErrorCode]error{
	ErrCodeInvalidArgument:   ErrInvalidArgument,
	ErrCodeResourceExhausted: ErrResourceExhausted,
	ErrCodeAlreadyExists:     ErrAlreadyExists,
	ErrCodeNotFound:          ErrNotFound,
	ErrCodeNotHotpatched:     ErrNotHotpatched,
	ErrCodeInvalidHandle:     ErrInvalidHandle,
	ErrCodeNotReady:          ErrNotReady,
	ErrCodeSocketUnavailable: ErrSocketUnavailable,
	ErrCodeTransport:         ErrTransportClosed,
}

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// Unwrap exposes the sentinel matching the error code so errors.Is works
// against both the structured and the plain form.
func (e *Error) Unwrap() error {
	return codeSentinels[e.Code]
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
