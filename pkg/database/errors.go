package database

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotSupported is returned by providers for contract operations their
// engine cannot serve (e.g. real-time subscriptions on DynamoDB). Callers
// detect it with errors.Is.
var ErrNotSupported = errors.New("operation not supported by provider")

// NotFoundError reports that the target of a read, update, or delete-adjacent
// operation does not exist. Reads return (nil, nil) for absent documents;
// updates return this error. Deletes of absent ids succeed (idempotent
// delete is an intentional asymmetry carried over from the original design).
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %s/%s not found", e.Collection, e.ID)
}

// ConflictError reports a create with an id that already exists.
type ConflictError struct {
	Collection string
	ID         string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("document %s/%s already exists", e.Collection, e.ID)
}

// ValidationError reports structurally malformed query or operation input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "validation failed on " + e.Field + ": " + e.Reason
	}
	return "validation failed: " + e.Reason
}

// UnavailableError reports a connection or transport failure of the engine.
type UnavailableError struct {
	Provider string
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("provider %s unavailable: %v", e.Provider, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// OperationError is a single failed item inside a batch.
type OperationError struct {
	Index      int
	Collection string
	ID         string
	Err        error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operation %d (%s/%s): %v", e.Index, e.Collection, e.ID, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// BatchError reports partial application of a batch. Applied holds the indexes
// of operations that succeeded; Failed holds per-operation errors. Providers
// with true batch atomicity never return this with Applied non-empty.
type BatchError struct {
	Applied []int
	Failed  []*OperationError
}

func (e *BatchError) Error() string {
	msgs := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		msgs = append(msgs, f.Error())
	}
	return fmt.Sprintf("batch partially failed (%d applied, %d failed): %s",
		len(e.Applied), len(e.Failed), strings.Join(msgs, "; "))
}

// SyncConflictError reports an offline write that collided with a newer
// server-side write during flush.
type SyncConflictError struct {
	Record ConflictRecord
}

func (e *SyncConflictError) Error() string {
	return fmt.Sprintf("sync conflict on %s/%s (winner: %s)",
		e.Record.Collection, e.Record.ID, e.Record.Winner)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsUnavailable reports whether err is an UnavailableError.
func IsUnavailable(err error) bool {
	var u *UnavailableError
	return errors.As(err, &u)
}

// AsBatchError extracts a BatchError from err, if present.
func AsBatchError(err error) (*BatchError, bool) {
	var b *BatchError
	ok := errors.As(err, &b)
	return b, ok
}
