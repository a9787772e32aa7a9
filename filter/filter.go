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

// Package filter compiles and evaluates row predicates of
// the form "field op value".
package filter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/SnellerInc/skim/glob"
	"github.com/SnellerInc/skim/internal/text"
)

// ErrSyntax indicates a filter expression with no
// operator or with an empty field name.
var ErrSyntax = errors.New("bad filter expression")

// Op is a comparison operator.
type Op uint8

const (
	OpEq Op = iota // =
	OpNe           // !=
	OpLt           // <
	OpGt           // >
	OpLe           // <=
	OpGe           // >=
	OpMatch        // ~ (glob)
)

// operator spellings, two-byte operators first so that
// they win over their one-byte prefixes at the same
// position
var spellings = []struct {
	text string
	op   Op
}{
	{"!=", OpNe},
	{"<=", OpLe},
	{">=", OpGe},
	{"=", OpEq},
	{"~", OpMatch},
	{"<", OpLt},
	{">", OpGt},
}

// Predicate is one compiled filter. The zero column
// binding is not meaningful until Bind has been called;
// the orchestrator binds every predicate exactly once
// after reading the header.
type Predicate struct {
	// Field is the selector text on the left-hand side.
	Field string

	col     int
	op      Op
	value   []byte
	num     float64
	numeric bool
}

// Parse compiles one "field op value" expression.
//
// The expression splits at the first occurrence of an
// operator, preferring two-byte operators at the same
// position. Whitespace around the operator is trimmed
// from both sides, so "Total Amount > 100" filters the
// "Total Amount" column. An operator at position zero
// (empty field name) is an error. The right-hand side is
// additionally parsed as a number once, here, so that
// per-row evaluation never re-parses it.
func Parse(expr string) (*Predicate, error) {
	field, op, value, ok := split(expr)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrSyntax, expr)
	}
	p := &Predicate{
		Field: field,
		col:   -1,
		op:    op,
		value: []byte(value),
	}
	p.num, p.numeric = text.Float64(p.value)
	return p, nil
}

// split finds the leftmost operator position and cuts
// the expression there.
func split(expr string) (field string, op Op, value string, ok bool) {
	for i := 0; i < len(expr); i++ {
		for _, s := range spellings {
			if !strings.HasPrefix(expr[i:], s.text) {
				continue
			}
			field = strings.TrimSpace(expr[:i])
			value = strings.TrimSpace(expr[i+len(s.text):])
			if field == "" {
				return "", 0, "", false
			}
			return field, s.op, value, true
		}
	}
	return "", 0, "", false
}

// Bind fixes the column index the predicate reads.
func (p *Predicate) Bind(col int) { p.col = col }

// Eval evaluates the predicate against one parsed record.
//
// A column index beyond the record's width is false. The
// '~' operator always glob-matches the raw field bytes.
// For the ordered operators, a numeric right-hand side
// forces numeric comparison: a field that does not parse
// as a number is a mismatch, never a lexicographic
// fallback. A non-numeric right-hand side compares raw
// bytes.
func (p *Predicate) Eval(fields [][]byte) bool {
	if p.col < 0 || p.col >= len(fields) {
		return false
	}
	f := fields[p.col]
	if p.op == OpMatch {
		return glob.Match(p.value, f)
	}
	if p.numeric {
		n, ok := text.Float64(f)
		if !ok {
			return false
		}
		return holds(p.op, cmpFloat(n, p.num))
	}
	return holds(p.op, bytes.Compare(f, p.value))
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func holds(op Op, cmp int) bool {
	switch op {
	case OpEq:
		return cmp == 0
	case OpNe:
		return cmp != 0
	case OpLt:
		return cmp < 0
	case OpGt:
		return cmp > 0
	case OpLe:
		return cmp <= 0
	case OpGe:
		return cmp >= 0
	}
	return false
}

// All reports whether fields passes every predicate.
// An empty predicate list passes trivially.
func All(preds []*Predicate, fields [][]byte) bool {
	for _, p := range preds {
		if !p.Eval(fields) {
			return false
		}
	}
	return true
}
