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

// Package utf8 measures the display width of raw field
// bytes for aligned table output.
package utf8

import "encoding/binary"

const asciiMask = 0x8080808080808080

// Width returns the display width of a field: the number
// of UTF-8 codepoints in b. Lead bytes count one cell,
// continuation bytes (0b10xx_xxxx) count zero, and any
// malformed non-continuation byte counts one. Equivalently,
// the result is the number of non-continuation bytes.
//
// Typical fields are pure ASCII, so those are consumed
// eight bytes per step; only chunks containing a high bit
// fall back to the per-byte tail.
func Width(b []byte) int {
	width := 0
	for len(b) > 0 {
		if len(b) >= 8 && binary.LittleEndian.Uint64(b)&asciiMask == 0 {
			width += 8
			b = b[8:]
			continue
		}
		if b[0]&0xc0 != 0x80 {
			width++
		}
		b = b[1:]
	}
	return width
}
