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

package emit

import (
	"bufio"

	"github.com/SnellerInc/skim/chop"
	"github.com/SnellerInc/skim/utf8"
)

// SampleBytes caps the cumulative field bytes the table
// writer buffers while estimating column widths.
const SampleBytes = 1 << 20

// Table writes records as an aligned table. Column widths
// start from the header's display widths and are refined
// over a bounded prefix of the data: rows are buffered
// until SampleBytes of field bytes accumulate or the row
// cap is hit, whichever comes first. Then the header, a
// separator, and the buffered rows are emitted and all
// later rows stream with the widths frozen. Values wider
// than their column are emitted verbatim and may misalign
// later rows; nothing is truncated.
//
// A display width is the number of UTF-8 codepoints, so a
// field of k multi-byte codepoints occupies k cells.
type Table struct {
	w          *bufio.Writer
	widths     []int
	header     chop.Row
	showHeader bool
	rows       []chop.Row
	pending    int
	maxRows    int // -1 when no row cap is in effect
	flushed    bool
}

// NewTable returns a Table writing to w. header provides
// the initial column widths; when showHeader is false the
// header row and separator are suppressed (the widths are
// still seeded from it). maxRows is the run's output row
// cap, or -1 for none; it only ends width sampling early,
// and the Table itself writes every row it is given.
func NewTable(w *bufio.Writer, header [][]byte, showHeader bool, maxRows int) *Table {
	t := &Table{
		w:          w,
		widths:     make([]int, len(header)),
		header:     chop.CopyRow(header, nil),
		showHeader: showHeader,
		maxRows:    maxRows,
	}
	for i, f := range header {
		t.widths[i] = utf8.Width(f)
	}
	return t
}

// Add emits one record, or buffers it while the width
// sample is still being collected.
func (t *Table) Add(fields [][]byte) error {
	if t.flushed {
		return t.writeRow(fields)
	}
	row := chop.CopyRow(fields, nil)
	t.rows = append(t.rows, row)
	t.pending += row.Bytes()
	t.widen(row.Fields)
	if t.pending >= SampleBytes || (t.maxRows >= 0 && len(t.rows) >= t.maxRows) {
		return t.Flush()
	}
	return nil
}

// Flush ends the sampling phase: it emits the header, the
// separator, and every buffered row. Calling it again, or
// after the sample already spilled, is a no-op. The
// caller must call it once after the last Add so that a
// short input still produces output.
func (t *Table) Flush() error {
	if t.flushed {
		return nil
	}
	t.flushed = true
	if t.showHeader {
		if err := t.writeRow(t.header.Fields); err != nil {
			return err
		}
		if err := t.separator(); err != nil {
			return err
		}
	}
	for i := range t.rows {
		if err := t.writeRow(t.rows[i].Fields); err != nil {
			return err
		}
	}
	t.rows = nil
	return nil
}

func (t *Table) widen(fields [][]byte) {
	for len(t.widths) < len(fields) {
		t.widths = append(t.widths, 0)
	}
	for i, f := range fields {
		if w := utf8.Width(f); w > t.widths[i] {
			t.widths[i] = w
		}
	}
}

func (t *Table) writeRow(fields [][]byte) error {
	for i, f := range fields {
		if i > 0 {
			if _, err := t.w.WriteString(" | "); err != nil {
				return err
			}
		}
		if _, err := t.w.Write(f); err != nil {
			return err
		}
		width := 0
		if i < len(t.widths) {
			width = t.widths[i]
		}
		if err := t.pad(width - utf8.Width(f)); err != nil {
			return err
		}
	}
	return t.w.WriteByte('\n')
}

func (t *Table) separator() error {
	for i, w := range t.widths {
		if i > 0 {
			if _, err := t.w.WriteString("-+-"); err != nil {
				return err
			}
		}
		for j := 0; j < w; j++ {
			if err := t.w.WriteByte('-'); err != nil {
				return err
			}
		}
	}
	return t.w.WriteByte('\n')
}

func (t *Table) pad(n int) error {
	for j := 0; j < n; j++ {
		if err := t.w.WriteByte(' '); err != nil {
			return err
		}
	}
	return nil
}
