package core

import (
	"errors"
	"fmt"
)

// State errors: the requested transition is undefined for the store's
// current state. Read-only failures, nothing is mutated.
var (
	ErrNoCurrentMaster  = errors.New("no current master")
	ErrNoPreviousMaster = errors.New("no previous master to revert to")
	ErrMasterNotFound   = errors.New("master not found")
)

// ErrDuplicateContent is returned by the store when an insert would violate
// content uniqueness. Callers are expected to look the content up first, so
// surfacing this error usually means a call site skipped the check.
var ErrDuplicateContent = errors.New("content already exists in store")

// ValidationError reports commit input that is invalid on its face: empty
// message, duplicate slot types in the working set, malformed filenames.
// The store is untouched.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError. Exported so the workspace scanner
// can classify malformed filenames the same way Commit classifies its input.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ReconcileError reports a working set that cannot be reconciled against the
// current master: a partial commit adding or dropping slots, a branch
// directive naming a bad parent, a corrupt current composition. Raised
// before the transaction commits; no partial writes survive.
type ReconcileError struct {
	Msg string
}

func (e *ReconcileError) Error() string { return e.Msg }

func reconcilef(format string, args ...any) error {
	return &ReconcileError{Msg: fmt.Sprintf(format, args...)}
}
