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

// Package pipe runs the row pipeline: it selects the
// processing mode, binds selectors against the header,
// drives the scan loop, and routes rows into the right
// writer.
package pipe

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/SnellerInc/skim/aggr"
	"github.com/SnellerInc/skim/chop"
	"github.com/SnellerInc/skim/emit"
	"github.com/SnellerInc/skim/filter"
	"github.com/SnellerInc/skim/rank"
	"github.com/SnellerInc/skim/resolve"
	"github.com/SnellerInc/skim/sample"
)

// Config is the bound run configuration. The argument
// phase owns mutual-exclusion validation; Run assumes a
// consistent Config.
type Config struct {
	// Select lists projection selectors in output order.
	Select []string
	// Filters are ANDed row predicates.
	Filters []*filter.Predicate
	// Head caps output rows; -1 means no cap.
	Head int
	// Top names the ranking key column ("" = off).
	Top string
	// SampleN is the reservoir size (0 = off).
	SampleN int
	// Aggs are the aggregators in declaration order.
	Aggs []*aggr.Aggregator
	// Table selects aligned output.
	Table bool
	// NoHeader suppresses the header row in the output.
	NoHeader bool
}

// DefaultLimit is the ranking buffer size used when
// --top is given without an explicit head cap.
const DefaultLimit = 10

// errStop terminates the scan loop early without
// reporting a failure (head cap reached).
var errStop = errors.New("stop")

// Run processes one stream from in to out, writing
// warnings and nothing else to errw. The returned error
// is the single diagnostic line for the process exit
// path; output produced before a failure has already
// been flushed downstream of it.
func Run(cfg *Config, in io.Reader, out, errw io.Writer) error {
	w := bufio.NewWriterSize(out, chop.ReadBuffer)
	err := run(cfg, in, w, errw)
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	return err
}

func run(cfg *Config, in io.Reader, w *bufio.Writer, errw io.Writer) error {
	if cfg.fastPath() {
		return passThrough(in, w, cfg.Head)
	}
	r := &runner{
		cfg: cfg,
		lr:  chop.NewLineReader(in, nil),
		sp:  chop.NewSplitter(),
		w:   w,
	}
	return r.run(errw)
}

// fastPath reports whether the run is a plain copy: no
// transform requested at all, except possibly a head cap.
func (cfg *Config) fastPath() bool {
	return len(cfg.Select) == 0 &&
		len(cfg.Filters) == 0 &&
		cfg.Top == "" &&
		cfg.SampleN == 0 &&
		len(cfg.Aggs) == 0 &&
		!cfg.Table &&
		!cfg.NoHeader
}

// passThrough copies the stream to the output. With no
// head cap the copy is byte-exact; with a cap it emits
// the header line plus up to head data lines.
func passThrough(in io.Reader, w *bufio.Writer, head int) error {
	if head < 0 {
		buf := make([]byte, 64<<10)
		for {
			n, rerr := in.Read(buf)
			if n > 0 {
				if _, werr := w.Write(buf[:n]); werr != nil {
					return werr
				}
			}
			if rerr != nil {
				// a mid-stream read failure ends the copy;
				// what was produced still flushes
				return nil
			}
		}
	}
	lr := chop.NewLineReader(in, nil)
	for lr.Line() < head+1 {
		line, err := lr.Next()
		if err != nil {
			if errors.Is(err, chop.ErrLineTooLong) {
				return err
			}
			return nil
		}
		if _, err := w.Write(line); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}

type runner struct {
	cfg  *Config
	lr   *chop.LineReader
	sp   *chop.Splitter
	w    *bufio.Writer
	hdr  *resolve.Header
	head chop.Row // deep copy of the header record
	proj *projector
}

func (r *runner) run(errw io.Writer) error {
	line, err := r.lr.Next()
	if err == io.EOF {
		// empty input: no output at all
		return nil
	}
	if err != nil {
		return err
	}
	if err := r.sp.Split(line); err != nil {
		return fmt.Errorf("line %d: %w", r.lr.Line(), err)
	}
	r.hdr = resolve.NewHeader(r.sp.Fields)
	r.head = chop.CopyRow(r.sp.Fields, r.sp.Quoted)
	if err := r.bind(); err != nil {
		return err
	}

	switch {
	case r.cfg.Top != "":
		return r.runTop()
	case len(r.cfg.Aggs) > 0:
		return r.runAggregate(errw)
	case r.cfg.SampleN > 0:
		return r.runSample()
	default:
		return r.runStream()
	}
}

// bind resolves the filter, aggregation, and projection
// selectors against the header, exactly once. The --top
// key column is resolved separately, by runTop.
func (r *runner) bind() error {
	for _, p := range r.cfg.Filters {
		col, err := r.hdr.Resolve(p.Field)
		if err != nil {
			return fmt.Errorf("filter: %w", err)
		}
		p.Bind(col)
	}
	for _, a := range r.cfg.Aggs {
		col, err := r.hdr.Resolve(a.Field)
		if err != nil {
			return fmt.Errorf("aggregation: %w", err)
		}
		a.Bind(col)
	}
	if len(r.cfg.Select) > 0 {
		cols := make([]int, len(r.cfg.Select))
		for i, sel := range r.cfg.Select {
			col, err := r.hdr.Resolve(sel)
			if err != nil {
				return fmt.Errorf("select: %w", err)
			}
			cols[i] = col
		}
		r.proj = newProjector(cols)
	}
	return nil
}

// scan drives the filtered row loop: each is called for
// every record that passes all predicates. Returning
// errStop ends the scan without error. A malformed record
// is fatal with its line number; a mid-stream read
// failure just ends the loop.
func (r *runner) scan(each func(fields [][]byte, quoted []bool) error) error {
	for {
		line, err := r.lr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if errors.Is(err, chop.ErrLineTooLong) {
				return err
			}
			return nil
		}
		if err := r.sp.Split(line); err != nil {
			return fmt.Errorf("line %d: %w", r.lr.Line(), err)
		}
		if !filter.All(r.cfg.Filters, r.sp.Fields) {
			continue
		}
		if err := each(r.sp.Fields, r.sp.Quoted); err != nil {
			if err == errStop {
				return nil
			}
			return err
		}
	}
}

// sink is where projected rows go: delimited or aligned.
type sink interface {
	header(fields [][]byte, quoted []bool) error
	row(fields [][]byte, quoted []bool) error
	flush() error
}

// newSink builds the output sink. header is the
// already-projected header record; maxRows is the table
// width-sampling row cap (-1 for none).
func (r *runner) newSink(header chop.Row, maxRows int) sink {
	if r.cfg.Table {
		return &tableSink{t: emit.NewTable(r.w, header.Fields, !r.cfg.NoHeader, maxRows)}
	}
	return &csvSink{c: emit.NewCSV(r.w)}
}

type csvSink struct {
	c *emit.CSV
}

func (s *csvSink) header(fields [][]byte, quoted []bool) error {
	return s.c.WriteRow(fields, quoted)
}
func (s *csvSink) row(fields [][]byte, quoted []bool) error {
	return s.c.WriteRow(fields, quoted)
}
func (s *csvSink) flush() error { return nil }

type tableSink struct {
	t *emit.Table
}

// the Table emits its own header during Flush
func (s *tableSink) header(fields [][]byte, quoted []bool) error { return nil }
func (s *tableSink) row(fields [][]byte, quoted []bool) error    { return s.t.Add(fields) }
func (s *tableSink) flush() error                                { return s.t.Flush() }

// emitHeader sends the projected header to the sink
// unless it is suppressed.
func (r *runner) emitHeader(s sink) error {
	if r.cfg.NoHeader {
		return nil
	}
	fields, quoted := r.project(r.head.Fields, r.head.Quoted)
	return s.header(fields, quoted)
}

func (r *runner) project(fields [][]byte, quoted []bool) ([][]byte, []bool) {
	if r.proj == nil {
		return fields, quoted
	}
	return r.proj.apply(fields, quoted)
}

// runStream is the row-by-row path (delimited or table)
// with the head cap and early termination.
func (r *runner) runStream() error {
	s := r.newSink(r.projectedHeader(), r.cfg.Head)
	if err := r.emitHeader(s); err != nil {
		return err
	}
	emitted := 0
	if r.cfg.Head != 0 {
		err := r.scan(func(fields [][]byte, quoted []bool) error {
			pf, pq := r.project(fields, quoted)
			if err := s.row(pf, pq); err != nil {
				return err
			}
			emitted++
			if r.cfg.Head >= 0 && emitted >= r.cfg.Head {
				return errStop
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return s.flush()
}

// runTop ranks by the key column and emits at the end.
func (r *runner) runTop() error {
	col, err := r.hdr.Resolve(r.cfg.Top)
	if err != nil {
		return fmt.Errorf("top: %w", err)
	}
	limit := r.cfg.Head
	if limit < 0 {
		limit = DefaultLimit
	}
	if limit == 0 {
		return r.emitRows(nil)
	}
	t := rank.New(col, limit)
	err = r.scan(func(fields [][]byte, quoted []bool) error {
		t.Add(fields, quoted)
		return nil
	})
	if err != nil {
		return err
	}
	return r.emitRows(t.Rows())
}

// runSample fills the reservoir and emits at the end.
func (r *runner) runSample() error {
	res, err := sample.New(r.cfg.SampleN)
	if err != nil {
		return fmt.Errorf("sample: %w", err)
	}
	err = r.scan(func(fields [][]byte, quoted []bool) error {
		res.Add(fields, quoted)
		return nil
	})
	if err != nil {
		return err
	}
	return r.emitRows(res.Rows())
}

// emitRows writes fully-buffered rows (ranking, sampling)
// through the sink with projection applied at emission.
func (r *runner) emitRows(rows []chop.Row) error {
	s := r.newSink(r.projectedHeader(), -1)
	if err := r.emitHeader(s); err != nil {
		return err
	}
	for i := range rows {
		pf, pq := r.project(rows[i].Fields, rows[i].Quoted)
		if err := s.row(pf, pq); err != nil {
			return err
		}
	}
	return s.flush()
}

// runAggregate scans once and emits the one-row summary.
// Tainted aggregators get an empty value and one warning
// line each on the error stream.
func (r *runner) runAggregate(errw io.Writer) error {
	err := r.scan(func(fields [][]byte, quoted []bool) error {
		for _, a := range r.cfg.Aggs {
			a.Observe(fields)
		}
		return nil
	})
	if err != nil {
		return err
	}
	names := make([][]byte, len(r.cfg.Aggs))
	values := make([][]byte, len(r.cfg.Aggs))
	for i, a := range r.cfg.Aggs {
		names[i] = []byte(a.Name())
		values[i] = []byte(a.Value())
		if a.Tainted() {
			fmt.Fprintf(errw, "warning: non-numeric value in %s\n", a.Name())
		}
	}
	if r.cfg.Table {
		t := emit.NewTable(r.w, names, !r.cfg.NoHeader, -1)
		if err := t.Add(values); err != nil {
			return err
		}
		return t.Flush()
	}
	c := emit.NewCSV(r.w)
	if !r.cfg.NoHeader {
		if err := c.WriteRow(names, nil); err != nil {
			return err
		}
	}
	return c.WriteRow(values, nil)
}

// projectedHeader returns the header record with the
// projection applied, deep-copied so the sink may retain
// it.
func (r *runner) projectedHeader() chop.Row {
	fields, quoted := r.project(r.head.Fields, r.head.Quoted)
	return chop.CopyRow(fields, quoted)
}

// projector applies a column projection in place over
// reused output arrays, so projection costs no per-row
// allocation. Missing source columns project to empty
// fields.
type projector struct {
	cols   []int
	fields [][]byte
	quoted []bool
}

func newProjector(cols []int) *projector {
	return &projector{
		cols:   cols,
		fields: make([][]byte, len(cols)),
		quoted: make([]bool, len(cols)),
	}
}

func (p *projector) apply(fields [][]byte, quoted []bool) ([][]byte, []bool) {
	for i, c := range p.cols {
		if c < len(fields) {
			p.fields[i] = fields[c]
			p.quoted[i] = c < len(quoted) && quoted[c]
		} else {
			p.fields[i] = nil
			p.quoted[i] = false
		}
	}
	return p.fields, p.quoted
}
