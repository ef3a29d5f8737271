// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package log implements leveled, context-aware logging. Entries carry the
// logging tags attached to the context with the logtags package, and
// arguments are rendered through the redact package so that user data can
// be marked or removed from the output.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Severity is the importance of a log entry.
type Severity int32

const (
	// SeverityInfo is used for informational messages.
	SeverityInfo Severity = iota + 1
	// SeverityWarning is used for unexpected conditions that do not prevent
	// the operation from completing.
	SeverityWarning
	// SeverityError is used for failed operations.
	SeverityError
)

// Char returns the one-letter abbreviation that starts each entry.
func (s Severity) Char() byte {
	switch s {
	case SeverityInfo:
		return 'I'
	case SeverityWarning:
		return 'W'
	case SeverityError:
		return 'E'
	}
	return '?'
}

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	}
	return fmt.Sprintf("Severity(%d)", int32(s))
}

// loggerT is the process-wide logger.
type loggerT struct {
	verbosity int32 // atomic
	redact    int32 // atomic; 1 when unsafe values are removed
	counter   uint64

	mu struct {
		sync.Mutex
		w   io.Writer
		now func() time.Time
	}
}

var mainLog = func() *loggerT {
	l := &loggerT{}
	l.mu.w = os.Stderr
	l.mu.now = time.Now
	return l
}()

// SetOutput redirects log output to w and returns a function restoring the
// previous sink.
func SetOutput(w io.Writer) (restore func()) {
	mainLog.mu.Lock()
	defer mainLog.mu.Unlock()
	prev := mainLog.mu.w
	mainLog.mu.w = w
	return func() {
		mainLog.mu.Lock()
		defer mainLog.mu.Unlock()
		mainLog.mu.w = prev
	}
}

// SetVerbosity sets the level up to which V returns true and VEventf logs,
// and returns a function restoring the previous level.
func SetVerbosity(level int32) (restore func()) {
	prev := atomic.SwapInt32(&mainLog.verbosity, level)
	return func() { atomic.StoreInt32(&mainLog.verbosity, prev) }
}

// SetRedaction controls whether values not marked safe are replaced by a
// redaction marker in log output.
func SetRedaction(on bool) {
	var v int32
	if on {
		v = 1
	}
	atomic.StoreInt32(&mainLog.redact, v)
}

// setClock replaces the time source for entries. Used in tests.
func setClock(now func() time.Time) (restore func()) {
	mainLog.mu.Lock()
	defer mainLog.mu.Unlock()
	prev := mainLog.mu.now
	mainLog.mu.now = now
	return func() {
		mainLog.mu.Lock()
		defer mainLog.mu.Unlock()
		mainLog.mu.now = prev
	}
}

// V returns whether logging at the given verbosity level is enabled.
func V(level int32) bool {
	return atomic.LoadInt32(&mainLog.verbosity) >= level
}

// Infof logs to the INFO severity.
func Infof(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, SeverityInfo, format, args)
}

// Warningf logs to the WARNING severity.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, SeverityWarning, format, args)
}

// Errorf logs to the ERROR severity.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, SeverityError, format, args)
}

// VEventf logs to the INFO severity if the verbosity is at least level.
func VEventf(ctx context.Context, level int32, format string, args ...interface{}) {
	if V(level) {
		addStructured(ctx, SeverityInfo, format, args)
	}
}
