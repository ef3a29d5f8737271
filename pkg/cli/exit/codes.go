// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package exit

import "fmt"

// Code is a process exit code.
type Code struct {
	code int
}

// Int returns the numeric value of the code.
func (c Code) Int() int { return c.code }

func (c Code) String() string { return fmt.Sprintf("exit code %d", c.code) }

// Codes that are common to all commands follow.

// Success (0) represents a normal process termination.
func Success() Code { return Code{0} }

// UnspecifiedError (1) indicates the process has terminated with an
// error condition. The specific cause of the error can be found in
// the logging output.
func UnspecifiedError() Code { return Code{1} }

// UnspecifiedGoPanic (2) indicates the process has terminated due to
// an uncaught Go panic or some other error in the Go runtime.
func UnspecifiedGoPanic() Code { return Code{2} }

// CommandLineFlagError (4) indicates there was an error in the
// command-line parameters.
func CommandLineFlagError() Code { return Code{4} }

// Command-specific exit codes are allocated down from 125.

// 'verify' exit codes.

// VerificationFailed indicates that the 'verify' command found a filter
// whose scan plan selects different rows than the filter itself.
func VerificationFailed() Code { return Code{125} }
