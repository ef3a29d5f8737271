// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
)

// FormatWithContextTags formats the string and prepends the context
// tags.
//
// Redaction markers are *not* inserted. The resulting
// string is generally unsafe for reporting.
func FormatWithContextTags(ctx context.Context, format string, args ...interface{}) string {
	var buf strings.Builder
	if tags := formatTags(ctx); tags != "" {
		buf.WriteString(tags.StripMarkers())
		buf.WriteByte(' ')
	}
	buf.WriteString(redact.Sprintf(format, args...).StripMarkers())
	return buf.String()
}

// formatTags renders the logging tags of ctx as "[k1=v1,k2]". Tag values
// are unsafe unless they implement redact.SafeValue.
func formatTags(ctx context.Context) redact.RedactableString {
	tags := logtags.FromContext(ctx)
	if tags == nil {
		return ""
	}
	var b redact.StringBuilder
	b.SafeRune('[')
	for i, t := range tags.Get() {
		if i > 0 {
			b.SafeRune(',')
		}
		b.SafeString(redact.SafeString(t.Key()))
		if v := t.Value(); v != nil {
			if len(t.Key()) > 1 {
				b.SafeRune('=')
			}
			b.Print(v)
		}
	}
	b.SafeRune(']')
	return b.RedactableString()
}

// addStructured formats an entry and writes it to the output sink:
//
//	I261016 09:30:00.000000 [tags] 12 message
//
// The number is a per-process entry counter.
func addStructured(ctx context.Context, sev Severity, format string, args []interface{}) {
	msg := redact.Sprintf(format, args...)
	tags := formatTags(ctx)
	n := atomic.AddUint64(&mainLog.counter, 1)

	render := func(s redact.RedactableString) string {
		if atomic.LoadInt32(&mainLog.redact) == 1 {
			return string(s.Redact())
		}
		return string(s)
	}

	mainLog.mu.Lock()
	defer mainLog.mu.Unlock()
	now := mainLog.mu.now().UTC()
	var buf strings.Builder
	buf.WriteByte(sev.Char())
	buf.WriteString(now.Format("060102 15:04:05.000000"))
	if tags != "" {
		buf.WriteByte(' ')
		buf.WriteString(render(tags))
	}
	fmt.Fprintf(&buf, " %d %s", n, render(msg))
	if !strings.HasSuffix(buf.String(), "\n") {
		buf.WriteByte('\n')
	}
	// Write errors have nowhere to go.
	_, _ = io.WriteString(mainLog.mu.w, buf.String())
}
