// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dgenerr defines the typed error taxonomy returned across the
// module's public boundary: construction-time argument validation,
// allocation failure, NUMA topology unavailability, and internal
// invariant violations each get their own Kind so callers can branch on
// errors.Is / errors.As instead of string-matching messages.
package dgenerr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind int

const (
	// KindInvalidArgument marks malformed constructor or call arguments:
	// size 0, a ratio < 1.0, a non-block-aligned chunk size, an unknown
	// numa_mode, an invalid pinned node, or a streaming buffer smaller
	// than one block.
	KindInvalidArgument Kind = iota
	// KindResourceExhausted marks an allocation failure for an output
	// buffer or a worker pool.
	KindResourceExhausted
	// KindTopologyUnavailable marks a NUMA probe or bind failure under
	// numa_mode=force.
	KindTopologyUnavailable
	// KindInternal marks worker-thread poisoning or a violated pool
	// invariant. Internal errors are fatal to the generator that
	// produced them.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindResourceExhausted:
		return "resource_exhausted"
	case KindTopologyUnavailable:
		return "topology_unavailable"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned across the module boundary.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("dgen: %s: %s", e.Kind, e.msg)
}

// Is reports whether target shares this error's Kind, so callers can
// write errors.Is(err, dgenerr.KindResourceExhausted) equivalents via
// the package-level sentinel values below.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// InvalidArgument constructs a KindInvalidArgument error.
func InvalidArgument(format string, args ...any) *Error {
	return newf(KindInvalidArgument, format, args...)
}

// ResourceExhausted constructs a KindResourceExhausted error.
func ResourceExhausted(format string, args ...any) *Error {
	return newf(KindResourceExhausted, format, args...)
}

// TopologyUnavailable constructs a KindTopologyUnavailable error.
func TopologyUnavailable(format string, args ...any) *Error {
	return newf(KindTopologyUnavailable, format, args...)
}

// Internal constructs a KindInternal error.
func Internal(format string, args ...any) *Error {
	return newf(KindInternal, format, args...)
}

// sentinels usable with errors.Is(err, dgenerr.ErrInvalidArgument) et al.
// via the Is method above comparing Kind, not identity.
var (
	ErrInvalidArgument     = &Error{Kind: KindInvalidArgument}
	ErrResourceExhausted   = &Error{Kind: KindResourceExhausted}
	ErrTopologyUnavailable = &Error{Kind: KindTopologyUnavailable}
	ErrInternal            = &Error{Kind: KindInternal}
)

// KindOf returns the Kind of err if it is (or wraps) a *Error, and
// reports ok=false otherwise.
func KindOf(err error) (k Kind, ok bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
