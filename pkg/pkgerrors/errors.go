/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package pkgerrors defines the error kinds shared across the transformer, combiner, and
// score-computer subsystems: Parse, Verification, Storage, NotFound, Protocol, and Argument.
// Each kind wraps an underlying error so callers can classify failures with errors.As/Is
// without string matching, and propagation policy (fatal vs. skip-and-log) can key off kind.
package pkgerrors

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by store lookups when no record exists for a key.
var ErrNotFound = errors.New("not found")

// NewParse returns a 'parse' error that wraps the given error, indicating malformed input
// (credential JSON, wire message, archive entry) that cannot be salvaged by retrying.
func NewParse(err error) error {
	return &parseError{err: err}
}

// NewParsef returns a 'parse' error built from a format string.
func NewParsef(format string, a ...interface{}) error {
	return &parseError{err: fmt.Errorf(format, a...)}
}

// IsParse returns true if the given error is a 'parse' error.
func IsParse(err error) bool {
	e := &parseError{}

	return errors.As(err, &e)
}

// NewVerification returns a 'verification' error that wraps the given error, indicating a
// credential or signature failed cryptographic verification.
func NewVerification(err error) error {
	return &verificationError{err: err}
}

// NewVerificationf returns a 'verification' error built from a format string.
func NewVerificationf(format string, a ...interface{}) error {
	return &verificationError{err: fmt.Errorf(format, a...)}
}

// IsVerification returns true if the given error is a 'verification' error.
func IsVerification(err error) bool {
	e := &verificationError{}

	return errors.As(err, &e)
}

// NewStorage returns a 'storage' error that wraps the given error, indicating a transient
// failure of the underlying storage.Provider/storage.Store that a retry may resolve.
func NewStorage(err error) error {
	return &storageError{err: err}
}

// NewStoragef returns a 'storage' error built from a format string.
func NewStoragef(format string, a ...interface{}) error {
	return &storageError{err: fmt.Errorf(format, a...)}
}

// IsStorage returns true if the given error is a 'storage' error.
func IsStorage(err error) bool {
	e := &storageError{}

	return errors.As(err, &e)
}

// NewNotFound returns a 'not found' error that wraps ErrNotFound (or a more specific cause),
// indicating the requested peer index, mapping, or checkpoint does not exist.
func NewNotFound(err error) error {
	if err == nil {
		err = ErrNotFound
	}

	return &notFoundError{err: err}
}

// NewNotFoundf returns a 'not found' error built from a format string.
func NewNotFoundf(format string, a ...interface{}) error {
	return &notFoundError{err: fmt.Errorf(format, a...)}
}

// IsNotFound returns true if the given error is a 'not found' error.
func IsNotFound(err error) bool {
	e := &notFoundError{}

	return errors.As(err, &e)
}

// NewProtocol returns a 'protocol' error that wraps the given error, indicating a collaborator
// (indexer, compute service) returned a response that violates the expected RPC contract.
func NewProtocol(err error) error {
	return &protocolError{err: err}
}

// NewProtocolf returns a 'protocol' error built from a format string.
func NewProtocolf(format string, a ...interface{}) error {
	return &protocolError{err: fmt.Errorf(format, a...)}
}

// IsProtocol returns true if the given error is a 'protocol' error.
func IsProtocol(err error) bool {
	e := &protocolError{}

	return errors.As(err, &e)
}

// NewArgument returns an 'argument' error that wraps the given error, indicating a caller
// passed an invalid configuration or request parameter.
func NewArgument(err error) error {
	return &argumentError{err: err}
}

// NewArgumentf returns an 'argument' error built from a format string.
func NewArgumentf(format string, a ...interface{}) error {
	return &argumentError{err: fmt.Errorf(format, a...)}
}

// IsArgument returns true if the given error is an 'argument' error.
func IsArgument(err error) bool {
	e := &argumentError{}

	return errors.As(err, &e)
}

type parseError struct{ err error }

func (e *parseError) Error() string { return e.err.Error() }
func (e *parseError) Unwrap() error { return e.err }

type verificationError struct{ err error }

func (e *verificationError) Error() string { return e.err.Error() }
func (e *verificationError) Unwrap() error { return e.err }

type storageError struct{ err error }

func (e *storageError) Error() string { return e.err.Error() }
func (e *storageError) Unwrap() error { return e.err }

type notFoundError struct{ err error }

func (e *notFoundError) Error() string { return e.err.Error() }
func (e *notFoundError) Unwrap() error { return e.err }

type protocolError struct{ err error }

func (e *protocolError) Error() string { return e.err.Error() }
func (e *protocolError) Unwrap() error { return e.err }

type argumentError struct{ err error }

func (e *argumentError) Error() string { return e.err.Error() }
func (e *argumentError) Unwrap() error { return e.err }
