// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package encoding implements the order-preserving key encodings used for
// row key columns. Every encoding here sorts byte-lexicographically in the
// same order as the values it encodes.
package encoding

import (
	"github.com/cockroachdb/errors"
)

// EncodeUint32Ascending encodes the uint32 value using a big-endian 4 byte
// representation. The bytes are appended to the supplied buffer and
// the final buffer is returned.
func EncodeUint32Ascending(b []byte, v uint32) []byte {
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// DecodeUint32Ascending decodes a uint32 from the input buffer, treating
// the input as a big-endian 4 byte uint32 representation. The remainder
// of the input buffer and the decoded uint32 are returned.
func DecodeUint32Ascending(b []byte) ([]byte, uint32, error) {
	if len(b) < 4 {
		return nil, 0, errors.Errorf("insufficient bytes to decode uint32 int value")
	}
	v := (uint32(b[0]) << 24) | (uint32(b[1]) << 16) |
		(uint32(b[2]) << 8) | uint32(b[3])
	return b[4:], v, nil
}

// EncodeUint64Ascending encodes the uint64 value using a big-endian 8 byte
// representation. The bytes are appended to the supplied buffer and
// the final buffer is returned.
func EncodeUint64Ascending(b []byte, v uint64) []byte {
	return append(b,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// DecodeUint64Ascending decodes a uint64 from the input buffer, treating
// the input as a big-endian 8 byte uint64 representation. The remainder
// of the input buffer and the decoded uint64 are returned.
func DecodeUint64Ascending(b []byte) ([]byte, uint64, error) {
	if len(b) < 8 {
		return nil, 0, errors.Errorf("insufficient bytes to decode uint64 int value")
	}
	v := (uint64(b[0]) << 56) | (uint64(b[1]) << 48) |
		(uint64(b[2]) << 40) | (uint64(b[3]) << 32) |
		(uint64(b[4]) << 24) | (uint64(b[5]) << 16) |
		(uint64(b[6]) << 8) | uint64(b[7])
	return b[8:], v, nil
}

// EncodeInt32Ascending encodes a signed 32 bit integer in 4 bytes with the
// sign bit flipped, so that negative values sort before positive ones.
func EncodeInt32Ascending(b []byte, v int32) []byte {
	return EncodeUint32Ascending(b, uint32(v)^(1<<31))
}

// DecodeInt32Ascending decodes a value encoded by EncodeInt32Ascending.
func DecodeInt32Ascending(b []byte) ([]byte, int32, error) {
	rem, v, err := DecodeUint32Ascending(b)
	return rem, int32(v ^ (1 << 31)), err
}

// EncodeInt64Ascending encodes a signed 64 bit integer in 8 bytes with the
// sign bit flipped.
func EncodeInt64Ascending(b []byte, v int64) []byte {
	return EncodeUint64Ascending(b, uint64(v)^(1<<63))
}

// DecodeInt64Ascending decodes a value encoded by EncodeInt64Ascending.
func DecodeInt64Ascending(b []byte) ([]byte, int64, error) {
	rem, v, err := DecodeUint64Ascending(b)
	return rem, int64(v ^ (1 << 63)), err
}

// EncodeBoolAscending encodes false as 0x00 and true as 0x01.
func EncodeBoolAscending(b []byte, v bool) []byte {
	if v {
		return append(b, 0x01)
	}
	return append(b, 0x00)
}

// Complement returns a copy of b with every bit inverted. For values of a
// fixed width the complement reverses the sort order, which is how
// descending key columns are encoded.
func Complement(b []byte) []byte {
	c := append([]byte(nil), b...)
	onesComplement(c)
	return c
}
