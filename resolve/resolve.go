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

// Package resolve binds user selectors (header names or
// 1-based column indices) to zero-based column indices.
package resolve

import (
	"errors"
	"fmt"

	"github.com/dchest/siphash"

	"github.com/SnellerInc/skim/internal/text"
)

var (
	// ErrUnknownColumn indicates a selector that names no
	// header column.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrIndexRange indicates a numeric selector outside
	// [1, number of columns].
	ErrIndexRange = errors.New("column index out of range")
)

// fixed siphash keys; the index is not defending against
// adversarial headers, it only needs a good distribution
const (
	hashK0 = 0x736b696d2d636f6c // "skim-col"
	hashK1 = 0x68656164657278ff
)

// Header is the resolved header row. The constructor deep
// copies the field bytes, so a Header outlives the parser
// scratch it was built from, and it carries a small
// hash index so that selector resolution over wide
// headers stays O(1) per lookup.
type Header struct {
	names [][]byte
	// open-addressing table of name -> column+1,
	// zero means empty; duplicate names keep the
	// first (lowest) column
	slots []int32
	mask  uint64
}

// NewHeader builds a Header from the parsed header record.
func NewHeader(fields [][]byte) *Header {
	h := &Header{names: make([][]byte, len(fields))}
	for i := range fields {
		h.names[i] = append([]byte(nil), fields[i]...)
	}
	size := uint64(8)
	for size < 2*uint64(len(fields)) {
		size *= 2
	}
	h.slots = make([]int32, size)
	h.mask = size - 1
	for i := range h.names {
		h.insert(i)
	}
	return h
}

// Len returns the number of columns.
func (h *Header) Len() int { return len(h.names) }

// Name returns the name of column i.
func (h *Header) Name(i int) []byte { return h.names[i] }

// Names returns the backing name slices.
func (h *Header) Names() [][]byte { return h.names }

func (h *Header) insert(col int) {
	name := h.names[col]
	slot := siphash.Hash(hashK0, hashK1, name) & h.mask
	for {
		cur := h.slots[slot]
		if cur == 0 {
			h.slots[slot] = int32(col + 1)
			return
		}
		if string(h.names[cur-1]) == string(name) {
			// first occurrence wins
			return
		}
		slot = (slot + 1) & h.mask
	}
}

func (h *Header) lookup(name []byte) (int, bool) {
	slot := siphash.Hash(hashK0, hashK1, name) & h.mask
	for {
		cur := h.slots[slot]
		if cur == 0 {
			return 0, false
		}
		if string(h.names[cur-1]) == string(name) {
			return int(cur - 1), true
		}
		slot = (slot + 1) & h.mask
	}
}

// Resolve maps a selector to a zero-based column index.
// A selector that parses as a positive integer is a
// 1-based column index and must lie in [1, Len];
// anything else names a column by exact byte equality,
// first match winning.
func (h *Header) Resolve(selector string) (int, error) {
	if n, ok := text.Index([]byte(selector)); ok && n > 0 {
		if n > h.Len() {
			return 0, fmt.Errorf("%w: %d not in [1, %d]", ErrIndexRange, n, h.Len())
		}
		return n - 1, nil
	}
	if col, ok := h.lookup([]byte(selector)); ok {
		return col, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownColumn, selector)
}
