// Package errors provides error handling for segstream.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - PII-safe error formatting
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "try a lighter model mode")
//
//	// Check errors
//	if errors.Is(err, errors.ErrModelUnavailable) {
//	    // handle unavailable model
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is            = crdb.Is
	IsAny         = crdb.IsAny
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	UnwrapOnce    = crdb.UnwrapOnce
	UnwrapAll     = crdb.UnwrapAll
	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
	Join          = crdb.Join
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Common sentinel errors for use across segstream.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrSessionClosed indicates the peer is gone; callers stop sending and
	// move toward teardown instead of reporting a failure.
	ErrSessionClosed = New("session closed")

	// ErrModelUnavailable indicates a backend could not be produced for a mode
	ErrModelUnavailable = New("model unavailable")

	// ErrFrameDropped indicates admission refused a frame (cap or rate);
	// dropped frames are counted, never reported to the client.
	ErrFrameDropped = New("frame dropped")

	// ErrPoolClosed indicates the model pool has been cleared for shutdown
	ErrPoolClosed = New("model pool closed")
)

// IsSessionClosed checks if an error is or wraps ErrSessionClosed
func IsSessionClosed(err error) bool {
	return err != nil && Is(err, ErrSessionClosed)
}

// IsFrameDropped checks if an error is or wraps ErrFrameDropped
func IsFrameDropped(err error) bool {
	return err != nil && Is(err, ErrFrameDropped)
}
