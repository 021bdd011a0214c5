package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrSmallFeeNotConfirmed is returned when a fee below one percent is submitted
// without the explicit confirmation the console asks the operator for.
var ErrSmallFeeNotConfirmed = errors.New("fee below 1% requires confirmation")

// ErrBackendUnavailable indicates the platform backend could not be reached or
// answered with a server-side failure.
var ErrBackendUnavailable = errors.New("backend unavailable")

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// PrecisionError reports an amount that the codec refuses to convert: not a
// finite decimal, too many fractional digits, or outside the allowed range.
// It is fatal to the single conversion and is never retried.
type PrecisionError struct {
	Op     string
	Input  string
	Reason string
}

func (e *PrecisionError) Error() string {
	return fmt.Sprintf("%s(%q): %s", e.Op, e.Input, e.Reason)
}

// Is lets callers treat precision failures as ordinary validation failures.
func (e *PrecisionError) Is(target error) bool {
	return target == ErrValidation
}

// AssociationOperation names the REST primitive an AssociationOperationError came from.
type AssociationOperation string

const (
	OpRemoveOne AssociationOperation = "removeOne"
	OpAddMany   AssociationOperation = "addMany"
)

// AssociationOperationError is the failure of a single removeOne/addMany call.
type AssociationOperationError struct {
	Op       AssociationOperation
	ParentID string
	Codes    []string
	Err      error
}

func (e *AssociationOperationError) Error() string {
	return fmt.Sprintf("%s %s [%s]: %v", e.Op, e.ParentID, strings.Join(e.Codes, ","), e.Err)
}

func (e *AssociationOperationError) Unwrap() error { return e.Err }

// PartialReconcileFailure is returned when at least one operation of a
// reconcile pass failed. Server state is then neither the old nor the desired
// set; callers have to re-fetch the parent to learn the real one.
type PartialReconcileFailure struct {
	ParentID string
	Kind     string
	Failures []*AssociationOperationError
}

func (e *PartialReconcileFailure) Error() string {
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("partial reconcile failure for %s %s (%d failed): %s",
		e.Kind, e.ParentID, len(e.Failures), strings.Join(msgs, "; "))
}

// Unwrap exposes every failed operation to errors.Is / errors.As.
func (e *PartialReconcileFailure) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// FailedCodes returns every code whose operation failed, in failure order.
func (e *PartialReconcileFailure) FailedCodes() []string {
	var codes []string
	for _, f := range e.Failures {
		codes = append(codes, f.Codes...)
	}
	return codes
}

// ScalarUpdateError wraps a failure of the parent's non-association update.
// It is reported separately from association failures since the two are
// independent calls with independent failure windows.
type ScalarUpdateError struct {
	ParentID string
	Err      error
}

func (e *ScalarUpdateError) Error() string {
	return fmt.Sprintf("scalar update of %s failed: %v", e.ParentID, e.Err)
}

func (e *ScalarUpdateError) Unwrap() error { return e.Err }
