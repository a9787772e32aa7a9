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

// Package rank keeps the top-N records by a key column.
package rank

import (
	"bytes"

	"golang.org/x/exp/slices"

	"github.com/SnellerInc/skim/chop"
	"github.com/SnellerInc/skim/internal/text"
)

// MaxLimit is the largest permitted candidate buffer.
const MaxLimit = 10000

// key is a captured ranking key: the raw field bytes plus
// the parsed numeric value when the field is a number.
type key struct {
	raw     []byte
	num     float64
	numeric bool
}

// compare orders two keys: numerically when both sides
// parse as numbers, by raw bytes otherwise. The mixed
// numeric/text case is therefore decided pairwise, which
// is not transitive over adversarial inputs; that
// behavior is deliberate and load-bearing for
// compatibility, do not "fix" it here.
func compare(a, b *key) int {
	if a.numeric && b.numeric {
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		default:
			return 0
		}
	}
	return bytes.Compare(a.raw, b.raw)
}

type entry struct {
	row chop.Row
	key key
	seq int // insertion order, breaks emission ties
}

// TopN maintains at most limit candidate rows, replacing
// the minimum-key entry whenever a strictly greater key
// arrives. Replacement does a linear scan for the
// minimum: for limit <= MaxLimit that beats a heap on
// cache locality, and a heap substitution would not
// change observable behavior.
type TopN struct {
	col     int
	limit   int
	seq     int
	entries []entry
}

// New returns a TopN ranking by column col with the given
// candidate limit; limit must be in [1, MaxLimit].
func New(col, limit int) *TopN {
	return &TopN{
		col:     col,
		limit:   limit,
		entries: make([]entry, 0, limit),
	}
}

// Add offers one record. The record is deep-copied only
// if it is admitted.
func (t *TopN) Add(fields [][]byte, quoted []bool) {
	var raw []byte
	if t.col < len(fields) {
		raw = fields[t.col]
	}
	k := key{raw: raw}
	k.num, k.numeric = text.Float64(raw)

	if len(t.entries) < t.limit {
		t.insert(fields, quoted, &k)
		return
	}
	min := 0
	for i := 1; i < len(t.entries); i++ {
		if compare(&t.entries[i].key, &t.entries[min].key) < 0 {
			min = i
		}
	}
	if compare(&k, &t.entries[min].key) <= 0 {
		return
	}
	t.seq++
	row := chop.CopyRow(fields, quoted)
	t.entries[min] = entry{row: row, key: t.capture(&row, &k), seq: t.seq}
}

func (t *TopN) insert(fields [][]byte, quoted []bool, k *key) {
	t.seq++
	row := chop.CopyRow(fields, quoted)
	t.entries = append(t.entries, entry{row: row, key: t.capture(&row, k), seq: t.seq})
}

// capture rebinds the key bytes to the deep-copied row so
// the key survives the parser scratch being overwritten.
func (t *TopN) capture(row *chop.Row, k *key) key {
	out := *k
	if t.col < len(row.Fields) {
		out.raw = row.Fields[t.col]
	}
	return out
}

// Rows returns the ranked rows in descending key order,
// ties broken by insertion order.
func (t *TopN) Rows() []chop.Row {
	slices.SortStableFunc(t.entries, func(a, b entry) bool {
		if c := compare(&a.key, &b.key); c != 0 {
			return c > 0
		}
		return a.seq < b.seq
	})
	out := make([]chop.Row, len(t.entries))
	for i := range t.entries {
		out[i] = t.entries[i].row
	}
	return out
}
