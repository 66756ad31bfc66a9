// Package apperrors defines the job lifecycle engine's error taxonomy and
// the normalization step the Error Router applies before notifying and
// recording a failure. It mirrors the to_dict() shape the original
// orchestrator's ResourceLockedException (and siblings) exposed, so any
// error the pipeline raises collapses to the same {message, code,
// details} envelope regardless of where it originated.
package apperrors

import (
	"errors"
	"fmt"
)

// Code classifies a failure for the event record and the notifier.
type Code string

const (
	CodeLocked                Code = "LOCKED"
	CodeConfigParseError      Code = "CONFIG_PARSE_ERROR"
	CodeConfigValidationError Code = "CONFIG_VALIDATION_ERROR"
	CodeConfigError           Code = "CONFIG_ERROR"
	CodeDeployRequestFailed   Code = "DEPLOY_REQUEST_FAILED"
	CodeHooksFailed           Code = "HOOKS_FAILED"
	CodeInternal              Code = "INTERNAL"
)

// JobError is the normalized shape appended to JOB_FAILED events and
// handed to the notifier.
type JobError struct {
	Message string
	Code    Code
	Details map[string]any
	cause   error
}

func (e *JobError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *JobError) Unwrap() error { return e.cause }

// ToDict matches the shape ResourceLockedException.to_dict() produced,
// for errors that want to expose one explicitly.
func (e *JobError) ToDict() map[string]any {
	d := map[string]any{
		"message": e.Message,
		"code":    string(e.Code),
	}
	if len(e.Details) > 0 {
		d["details"] = e.Details
	}
	return d
}

// New builds a JobError with the given code and message, optionally
// wrapping a cause.
func New(code Code, message string, cause error) *JobError {
	return &JobError{Message: message, Code: code, cause: cause}
}

// WithDetails attaches structured details (e.g. {"name": app, "key": lockKey}).
func (e *JobError) WithDetails(d map[string]any) *JobError {
	e.Details = d
	return e
}

// toDicter is honored the way the Python source honored objects exposing
// to_dict(): any error that can describe itself wins over generic wrapping.
type toDicter interface {
	ToDict() map[string]any
}

// Normalize converts any error into the {message, code, details} envelope
// the Error Router persists and notifies with. Errors that already carry
// a JobError (directly, or transitively via errors.As) are passed through;
// anything else becomes {message: err.Error(), code: INTERNAL}.
func Normalize(err error) map[string]any {
	if err == nil {
		return nil
	}
	var td toDicter
	if errors.As(err, &td) {
		return td.ToDict()
	}
	return map[string]any{
		"message": err.Error(),
		"code":    string(CodeInternal),
	}
}

// LockedError is raised when the lock retry budget is exhausted.
func LockedError(key string) *JobError {
	return New(CodeLocked, fmt.Sprintf("could not acquire lock %s", key), nil).
		WithDetails(map[string]any{"key": key})
}

// HooksFailedError is raised when readiness finds failed hooks.
func HooksFailedError(failed []string) *JobError {
	return New(CodeHooksFailed, "one or more required hooks failed", nil).
		WithDetails(map[string]any{"failed": failed})
}

// DeployRequestFailedError is raised when a deployer rejects the request
// fatally, or retry budget is exhausted on a transient failure.
func DeployRequestFailedError(deployer string, statusCode int, cause error) *JobError {
	msg := fmt.Sprintf("deploy request to %s failed", deployer)
	return New(CodeDeployRequestFailed, msg, cause).
		WithDetails(map[string]any{"deployer": deployer, "status_code": statusCode})
}
