// Package srerr defines the narrow error-value hierarchy that every
// transport or validation failure is translated into before it crosses a
// tool boundary. Nothing below the tool surface is allowed to let a raw
// transport exception escape; it must first become one of these Kinds.
package srerr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a control-plane error.
type Kind string

const (
	RegistryNotFound       Kind = "RegistryNotFound"
	RegistryUnreachable    Kind = "RegistryUnreachable"
	ReadonlyBlocked        Kind = "ReadonlyBlocked"
	SubjectNotFound        Kind = "SubjectNotFound"
	VersionNotFound        Kind = "VersionNotFound"
	SchemaInvalid          Kind = "SchemaInvalid"
	CompatibilityViolation Kind = "CompatibilityViolation"
	ImportModeUnsupported  Kind = "ImportModeUnsupported"
	ConflictExists         Kind = "ConflictExists"
	TaskCancelled          Kind = "TaskCancelled"
	TaskShuttingDown       Kind = "TaskShuttingDown"
	ElicitationExpired     Kind = "ElicitationExpired"
	ElicitationInvalid     Kind = "ElicitationInvalid"
	ElicitationDuplicate   Kind = "ElicitationDuplicate"
	WorkflowUnknown        Kind = "WorkflowUnknown"
	WorkflowStepMissing    Kind = "WorkflowStepMissing"
	PersistenceFailure     Kind = "PersistenceFailure"
)

// Error is a control-plane error value. It carries a Kind for programmatic
// dispatch and a human message for display; Details is optional extra
// context (e.g. the offending registry name).
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New creates an *Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithDetails attaches structured detail fields and returns the receiver,
// for chaining at the construction site.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// As reports whether err (or one wrapped inside it) is an *Error of kind k.
func As(err error, k Kind) bool {
	var se *Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Kind == k
}

// Of extracts the *Error from err, if any.
func Of(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
