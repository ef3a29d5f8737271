// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

//go:build 386 || amd64

package encoding

import "unsafe"

const wordSize = int(unsafe.Sizeof(uintptr(0)))

// onesComplement inverts b in place a machine word at a time. Unaligned
// word access is only safe on these architectures.
func onesComplement(b []byte) {
	n := len(b)
	if w := n / wordSize; w > 0 {
		words := unsafe.Slice((*uintptr)(unsafe.Pointer(unsafe.SliceData(b))), w)
		for i := range words {
			words[i] = ^words[i]
		}
	}
	for i := n - n%wordSize; i < n; i++ {
		b[i] = ^b[i]
	}
}
