// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dashboard

import (
	"errors"
	"fmt"
)

// Sentinel errors for the dashboard domain.
var (
	// ErrHomeProtected indicates an attempt to remove or rename the
	// default home. This is a user-facing warning, not an internal bug.
	ErrHomeProtected = errors.New("the default home cannot be removed or renamed")
)

// ProgrammingError indicates an invariant violated by a caller or an
// internal bug: entities handed to the merge engine without identifiers,
// or references to panes assumed to be present. Not user-recoverable.
type ProgrammingError struct {
	msg string
}

// Programmingf builds a ProgrammingError from a format string.
func Programmingf(format string, args ...any) *ProgrammingError {
	return &ProgrammingError{msg: fmt.Sprintf(format, args...)}
}

func (e *ProgrammingError) Error() string {
	return e.msg
}

// NotFoundError indicates a named home, pane or dashlet is absent.
// Expected at the controller boundary, where it maps to a 404.
type NotFoundError struct {
	// Kind is the entity kind: "home", "pane" or "dashlet".
	Kind string

	// Name is the requested name or id.
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %q", e.Kind, e.Name)
}

// NotFound builds a NotFoundError for the given entity kind and name.
func NotFound(kind, name string) *NotFoundError {
	return &NotFoundError{Kind: kind, Name: name}
}

// ConfigurationError indicates the dashboard cannot be rendered at all,
// e.g. no active pane can be determined. Surfaces as a degraded UI
// state rather than a crash.
type ConfigurationError struct {
	msg string
}

// Configurationf builds a ConfigurationError from a format string.
func Configurationf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{msg: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	return e.msg
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsProgrammingError reports whether err is (or wraps) a ProgrammingError.
func IsProgrammingError(err error) bool {
	var pe *ProgrammingError
	return errors.As(err, &pe)
}

// IsConfigurationError reports whether err is (or wraps) a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
