// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package keys defines the byte-string row keys addressed by range scans and
// the successor operations used to turn inclusive bounds into exclusive ones.
package keys

import (
	"bytes"
	"strings"

	"github.com/cockroachdb/redact"
)

// Key is a row key, or a prefix of one. Keys are ordered byte-lexicographically.
type Key []byte

// KeyMin is the smallest possible key.
var KeyMin = Key{}

// Compare returns -1, 0 or +1 depending on whether k sorts before, equal to,
// or after other.
func (k Key) Compare(other Key) int {
	return bytes.Compare(k, other)
}

// Equal returns whether two keys are identical.
func (k Key) Equal(other Key) bool {
	return bytes.Equal(k, other)
}

// Less returns whether k sorts strictly before other.
func (k Key) Less(other Key) bool {
	return bytes.Compare(k, other) < 0
}

// Clone returns a copy of the key that does not alias k.
func (k Key) Clone() Key {
	if k == nil {
		return nil
	}
	c := make(Key, len(k))
	copy(c, k)
	return c
}

// Next returns the next key in lexicographic sort order: k with a zero byte
// appended. The result never aliases k.
func (k Key) Next() Key {
	n := make(Key, len(k)+1)
	copy(n, k)
	return n
}

// PrefixEnd returns the smallest key that sorts after every key having k as a
// prefix. The last byte that is not 0xff is incremented and everything after
// it is dropped:
//
//	ABC         -> ABD
//	ABC\xff     -> ABD
//	\x00\xff    -> \x01
//
// If k is empty or consists entirely of 0xff bytes there is no finite
// successor; ok is false and the caller must treat the bound as unbounded.
func (k Key) PrefixEnd() (_ Key, ok bool) {
	i := len(k) - 1
	for ; i >= 0 && k[i] == 0xff; i-- {
	}
	if i < 0 {
		return nil, false
	}
	end := make(Key, i+1)
	copy(end, k[:i+1])
	end[i]++
	return end, true
}

// Concat returns a new key holding k followed by suffix.
func (k Key) Concat(suffix Key) Key {
	n := make(Key, 0, len(k)+len(suffix))
	n = append(n, k...)
	return append(n, suffix...)
}

// String prints the key with printable ASCII shown as-is and every other
// byte hex-escaped.
func (k Key) String() string {
	var buf strings.Builder
	const hex = "0123456789abcdef"
	for _, b := range k {
		if b >= 0x20 && b < 0x7f && b != '\\' {
			buf.WriteByte(b)
			continue
		}
		buf.WriteString(`\x`)
		buf.WriteByte(hex[b>>4])
		buf.WriteByte(hex[b&0xf])
	}
	return buf.String()
}

// SafeFormat implements the redact.SafeFormatter interface. Key contents are
// user data and are therefore printed as unsafe.
func (k Key) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(k.String())
}

var _ redact.SafeFormatter = Key(nil)
