// Copyright 2023 Sneller, Inc.
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

// Package text has small helpers for treating raw field
// bytes as strings and numbers without copying them.
package text

import (
	"strconv"
	"unsafe"
)

// String returns b as a string without copying.
// The result aliases b; the caller must not let it
// escape past the lifetime of the backing buffer.
func String(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return *(*string)(unsafe.Pointer(&b))
}

// Float64 parses b as a decimal floating-point number.
// It does not allocate.
func Float64(b []byte) (float64, bool) {
	if len(b) == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(String(b), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Index parses b as a non-negative decimal integer (no
// sign, leading zeros allowed) and reports whether the
// entire input was numeric. "0" is accepted; values too
// large for the overflow guard report false.
func Index(b []byte) (int, bool) {
	if len(b) == 0 {
		return 0, false
	}
	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		if n > (1<<31)/10 {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
