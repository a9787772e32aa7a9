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

// Package aggr implements single-pass streaming
// aggregation over one column.
package aggr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SnellerInc/skim/internal/text"
)

// ErrSyntax indicates an aggregation spec that is not
// "func:field" with a known function.
var ErrSyntax = errors.New("bad aggregation")

// Func is an aggregation function.
type Func uint8

const (
	Sum Func = iota
	Min
	Max
	Count
	Mean
)

var funcNames = [...]string{
	Sum:   "sum",
	Min:   "min",
	Max:   "max",
	Count: "count",
	Mean:  "mean",
}

func (f Func) String() string { return funcNames[f] }

// Aggregator is the running state of one aggregation.
// count counts non-empty fields; the numeric functions
// accumulate over fields that parse as numbers and taint
// themselves on the first field that does not.
type Aggregator struct {
	// Field is the selector text naming the column.
	Field string
	// Fn is the aggregation function.
	Fn Func

	col     int
	total   float64
	extreme float64
	count   int64
	seeded  bool
	tainted bool
}

// Parse compiles one "func:field" spec. The field part
// may itself contain colons; only the first colon splits.
func Parse(spec string) (*Aggregator, error) {
	fn, field, ok := strings.Cut(spec, ":")
	if !ok || field == "" {
		return nil, fmt.Errorf("%w %q", ErrSyntax, spec)
	}
	for f, name := range funcNames {
		if fn == name {
			return &Aggregator{Field: field, Fn: Func(f), col: -1}, nil
		}
	}
	return nil, fmt.Errorf("%w %q: unknown function %q", ErrSyntax, spec, fn)
}

// Bind fixes the column index the aggregator reads.
func (a *Aggregator) Bind(col int) { a.col = col }

// Observe feeds one record. A column index beyond the
// record's width observes an empty field.
func (a *Aggregator) Observe(fields [][]byte) {
	var f []byte
	if a.col < len(fields) {
		f = fields[a.col]
	}
	if a.Fn == Count {
		if len(f) > 0 {
			a.count++
		}
		return
	}
	n, ok := text.Float64(f)
	if !ok {
		a.tainted = true
		return
	}
	a.count++
	a.total += n
	if !a.seeded {
		a.extreme = n
		a.seeded = true
		return
	}
	switch a.Fn {
	case Min:
		if n < a.extreme {
			a.extreme = n
		}
	case Max:
		if n > a.extreme {
			a.extreme = n
		}
	}
}

// Tainted reports whether a non-numeric value reached a
// numeric function.
func (a *Aggregator) Tainted() bool { return a.tainted }

// Name returns the output column header, "func(field)".
func (a *Aggregator) Name() string {
	return a.Fn.String() + "(" + a.Field + ")"
}

// Value renders the aggregate. A tainted numeric
// aggregator yields the empty string; the caller is
// responsible for the accompanying warning.
func (a *Aggregator) Value() string {
	if a.Fn != Count && a.tainted {
		return ""
	}
	switch a.Fn {
	case Count:
		return strconv.FormatInt(a.count, 10)
	case Sum:
		return formatNum(a.total)
	case Mean:
		if a.count == 0 {
			return "0"
		}
		return formatNum(a.total / float64(a.count))
	default: // Min, Max
		return formatNum(a.extreme)
	}
}

// formatNum renders the shortest plain decimal form:
// integral results print without a fraction or exponent.
func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
