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

// Package sample draws a uniform bounded sample from a
// row stream using Vitter's Algorithm R.
package sample

import "github.com/SnellerInc/skim/chop"

// Reservoir holds at most N deep-copied rows such that
// after M offered rows each row has probability
// min(1, N/M) of being present.
type Reservoir struct {
	rows []chop.Row
	n    int
	seen int64
	rng  *rng
}

// New returns a Reservoir of size n (n >= 1). The error
// is from seeding the random source.
func New(n int) (*Reservoir, error) {
	g, err := newRNG()
	if err != nil {
		return nil, err
	}
	return &Reservoir{
		rows: make([]chop.Row, 0, n),
		n:    n,
		rng:  g,
	}, nil
}

// Add offers one record. The first N rows fill the
// reservoir; row number i > N replaces a random slot
// with probability N/i. The record is deep-copied only
// when admitted; a replaced row is dropped for the
// collector.
func (r *Reservoir) Add(fields [][]byte, quoted []bool) {
	r.seen++
	if len(r.rows) < r.n {
		r.rows = append(r.rows, chop.CopyRow(fields, quoted))
		return
	}
	j := r.rng.intn(r.seen)
	if j < int64(r.n) {
		r.rows[j] = chop.CopyRow(fields, quoted)
	}
}

// Rows returns the sampled rows in reservoir order.
func (r *Reservoir) Rows() []chop.Row {
	return r.rows
}
