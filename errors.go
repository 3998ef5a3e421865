// Copyright 2012 James Cooper. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package beecp

import "fmt"

// CreateFailedError is returned when the connection factory could not open a
// raw driver connection.
type CreateFailedError struct {
	Cause error
}

func (err *CreateFailedError) Error() string {
	return fmt.Sprintf("beecp: connection create failed: %v", err.Cause)
}

func (err *CreateFailedError) Unwrap() error { return err.Cause }

// RequestTimeoutError is returned when an acquire could not be satisfied
// before its deadline, either during semaphore admission or while enlisted on
// the wait queue.
type RequestTimeoutError struct {
	Waited string
}

func (err *RequestTimeoutError) Error() string {
	return fmt.Sprintf("beecp: acquire timed out after %s", err.Waited)
}

// RequestInterruptError is returned when the caller's context was cancelled
// while an acquire was blocked on admission or on the wait queue.
type RequestInterruptError struct {
	Cause error
}

func (err *RequestInterruptError) Error() string {
	return fmt.Sprintf("beecp: acquire interrupted: %v", err.Cause)
}

func (err *RequestInterruptError) Unwrap() error { return err.Cause }

// PoolClosedError is returned when an operation is attempted against a pool
// that has entered Closed, or is currently Clearing.
type PoolClosedError struct {
	State PoolState
}

func (err *PoolClosedError) Error() string {
	return fmt.Sprintf("beecp: pool is %s", err.State)
}

// ConfigInvalidError is returned by Config.Validate when one or more fields
// fail validation at Open time.
type ConfigInvalidError struct {
	Field  string
	Reason string
}

func (err *ConfigInvalidError) Error() string {
	return fmt.Sprintf("beecp: invalid config field %s: %s", err.Field, err.Reason)
}

// ProxyMissingError is returned by a Proxy method called after the Proxy was
// closed, or when the raw connection does not implement the driver interface
// the method forwards to.
type ProxyMissingError struct {
	Reason string
}

func (err *ProxyMissingError) Error() string {
	return fmt.Sprintf("beecp: no proxy available: %s", err.Reason)
}

// TesterFaultError wraps a panic or error recovered while probing connection
// liveness. It is never returned to an Acquire caller: the tester treats a
// fault as "not alive" and the pool removes the connection.
type TesterFaultError struct {
	Cause error
}

func (err *TesterFaultError) Error() string {
	return fmt.Sprintf("beecp: tester fault: %v", err.Cause)
}

func (err *TesterFaultError) Unwrap() error { return err.Cause }

// IsTerminal reports whether err reflects a pool state the caller cannot
// retry past without external intervention (the pool is closed, or the
// config the pool was opened with was invalid).
func IsTerminal(err error) bool {
	if err == nil {
		return false
	}
	switch err.(type) {
	case *PoolClosedError, *ConfigInvalidError:
		return true
	default:
		return false
	}
}

// IsRetryable reports whether err reflects a transient condition (a timeout,
// an interrupted wait, or a single failed create) that a caller may
// reasonably retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch err.(type) {
	case *RequestTimeoutError, *RequestInterruptError, *CreateFailedError:
		return true
	default:
		return false
	}
}
