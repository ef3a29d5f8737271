// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package keys

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/redact"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestKeyPrefixEnd(t *testing.T) {
	a := Key("a1")
	aNext := a.Next()
	aEnd, ok := a.PrefixEnd()
	require.True(t, ok)
	if bytes.Compare(a, aEnd) >= 0 {
		t.Errorf("expected end key to be greater")
	}
	if bytes.Compare(aNext, aEnd) >= 0 {
		t.Errorf("expected end key to be greater than next")
	}

	testCases := []struct {
		key Key
		end Key
		ok  bool
	}{
		{Key{}, nil, false},
		{Key{0}, Key{0x01}, true},
		{Key{0xff}, nil, false},
		{Key{0xff, 0xff}, nil, false},
		{Key{0xff, 0xfe}, Key{0xff, 0xff}, true},
		{Key{0x00, 0x00}, Key{0x00, 0x01}, true},
		{Key{0x00, 0xff}, Key{0x01}, true},
		{Key{0x00, 0xff, 0xff}, Key{0x01}, true},
		{Key{0x00, 0x00, 0x00, 0x05}, Key{0x00, 0x00, 0x00, 0x06}, true},
		{Key("ABC\xff\xff"), Key("ABD"), true},
	}
	for i, c := range testCases {
		end, ok := c.key.PrefixEnd()
		if ok != c.ok || !bytes.Equal(end, c.end) {
			t.Errorf("%d: unexpected prefix end for %q: %q (ok=%t)", i, c.key, end, ok)
		}
	}
}

func TestPrefixEndDoesNotAlias(t *testing.T) {
	k := Key{0x01, 0x02}
	end, ok := k.PrefixEnd()
	require.True(t, ok)
	end[0] = 0x7f
	require.Equal(t, Key{0x01, 0x02}, k)
}

func TestKeyNext(t *testing.T) {
	require.Equal(t, Key{0x00}, KeyMin.Next())
	require.Equal(t, Key("a\x00"), Key("a").Next())
	require.True(t, Key("a").Less(Key("a").Next()))
}

func TestKeyString(t *testing.T) {
	testCases := []struct {
		key      Key
		expected string
	}{
		{Key{}, ""},
		{Key("abc"), "abc"},
		{Key{0x00, 0x00, 0x00, 0x05}, `\x00\x00\x00\x05`},
		{Key("a\\b"), `a\x5cb`},
		{Key{0xff, 'z'}, `\xffz`},
	}
	for _, c := range testCases {
		require.Equal(t, c.expected, c.key.String())
	}
	require.Equal(t, "key ‹abc›", string(redact.Sprintf("key %v", Key("abc"))))
}

func TestPrefixEndProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("prefix end sorts after the key and every extension of it", prop.ForAll(
		func(b []byte, suffix []byte) bool {
			k := Key(b)
			end, ok := k.PrefixEnd()
			if !ok {
				// Only the empty key and all-0xff keys lack a successor.
				for _, c := range b {
					if c != 0xff {
						return false
					}
				}
				return true
			}
			return k.Less(end) && k.Concat(suffix).Less(end)
		},
		gen.SliceOf(gen.UInt8()),
		gen.SliceOf(gen.UInt8()),
	))

	properties.Property("nothing between the key and its prefix end lacks the prefix", prop.ForAll(
		func(b []byte, x []byte) bool {
			k := Key(b)
			end, ok := k.PrefixEnd()
			if !ok {
				return true
			}
			between := k.Compare(Key(x)) < 0 && Key(x).Less(end)
			return !between || bytes.HasPrefix(x, k)
		},
		gen.SliceOf(gen.UInt8()),
		gen.SliceOf(gen.UInt8()),
	))

	properties.TestingRun(t)
}
