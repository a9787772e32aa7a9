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

package pipe

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/SnellerInc/skim/aggr"
	"github.com/SnellerInc/skim/chop"
	"github.com/SnellerInc/skim/filter"
)

const scores = "name,score,dept\n" +
	"Alice,9,Eng\n" +
	"Bob,8,Sales\n" +
	"Cara,10,Eng\n" +
	"Dan,7,Ops\n"

func mustFilter(t *testing.T, expr string) *filter.Predicate {
	t.Helper()
	p, err := filter.Parse(expr)
	if err != nil {
		t.Fatalf("cannot parse filter %q: %s", expr, err)
	}
	return p
}

func mustAgg(t *testing.T, spec string) *aggr.Aggregator {
	t.Helper()
	a, err := aggr.Parse(spec)
	if err != nil {
		t.Fatalf("cannot parse aggregation %q: %s", spec, err)
	}
	return a
}

func runPipe(t *testing.T, cfg *Config, input string) (string, string) {
	t.Helper()
	var out, errw bytes.Buffer
	if err := Run(cfg, strings.NewReader(input), &out, &errw); err != nil {
		t.Fatalf("cannot run: %s", err)
	}
	return out.String(), errw.String()
}

func TestTopTable(t *testing.T) {
	cfg := &Config{
		Head:   4,
		Top:    "score",
		Table:  true,
		Select: []string{"name", "score"},
	}
	got, _ := runPipe(t, cfg, scores)
	want := "name  | score\n" +
		"------+------\n" +
		"Cara  | 10   \n" +
		"Alice | 9    \n" +
		"Bob   | 8    \n" +
		"Dan   | 7    \n"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestTopDelimited(t *testing.T) {
	cfg := &Config{
		Head:   4,
		Top:    "score",
		Select: []string{"name", "score"},
	}
	got, _ := runPipe(t, cfg, scores)
	want := "name,score\nCara,10\nAlice,9\nBob,8\nDan,7\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTopFiltered(t *testing.T) {
	cfg := &Config{
		Head:    2,
		Top:     "score",
		Select:  []string{"name", "score"},
		Filters: []*filter.Predicate{mustFilter(t, "dept=Eng")},
	}
	got, _ := runPipe(t, cfg, scores)
	want := "name,score\nCara,10\nAlice,9\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTableStreaming(t *testing.T) {
	cfg := &Config{
		Head:   -1,
		Table:  true,
		Select: []string{"name", "score"},
	}
	got, _ := runPipe(t, cfg, scores)
	want := "name  | score\n" +
		"------+------\n" +
		"Alice | 9    \n" +
		"Bob   | 8    \n" +
		"Cara  | 10   \n" +
		"Dan   | 7    \n"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestSampleCount(t *testing.T) {
	cfg := &Config{Head: -1, SampleN: 2}
	got, _ := runPipe(t, cfg, scores)
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3 (header + 2 rows)", len(lines))
	}
	if lines[0] != "name,score,dept" {
		t.Errorf("header = %q", lines[0])
	}
	for _, l := range lines[1:] {
		if !strings.Contains(scores, l+"\n") {
			t.Errorf("sampled row %q not in input", l)
		}
	}
}

func TestSampleUnderfill(t *testing.T) {
	cfg := &Config{Head: -1, SampleN: 100}
	got, _ := runPipe(t, cfg, scores)
	if got != scores {
		t.Errorf("sample larger than input must emit every row:\n%q", got)
	}
}

func TestAggregate(t *testing.T) {
	cfg := &Config{
		Head: -1,
		Aggs: []*aggr.Aggregator{mustAgg(t, "sum:score"), mustAgg(t, "count:name")},
	}
	got, errw := runPipe(t, cfg, scores)
	want := "sum(score),count(name)\n34,4\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if errw != "" {
		t.Errorf("unexpected warnings: %q", errw)
	}
}

func TestAggregateTainted(t *testing.T) {
	input := "name,score\nAlice,9\nBob,oops\n"
	cfg := &Config{
		Head: -1,
		Aggs: []*aggr.Aggregator{mustAgg(t, "sum:score"), mustAgg(t, "count:name")},
	}
	got, errw := runPipe(t, cfg, input)
	want := "sum(score),count(name)\n,2\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if !strings.Contains(errw, "sum(score)") {
		t.Errorf("missing taint warning, stderr = %q", errw)
	}
}

func TestFastPathRoundTrip(t *testing.T) {
	// with no options at all the output is byte-identical,
	// including CRLF, blank lines, and a missing final
	// terminator
	inputs := []string{
		scores,
		"a,b\r\n1,2\r\n",
		"x\n\n\ny\n",
		"no-terminator",
		"",
	}
	for _, in := range inputs {
		cfg := &Config{Head: -1}
		got, _ := runPipe(t, cfg, in)
		if got != in {
			t.Errorf("round trip of %q = %q", in, got)
		}
	}
}

func TestFastPathHead(t *testing.T) {
	cfg := &Config{Head: 2}
	got, _ := runPipe(t, cfg, scores)
	want := "name,score,dept\nAlice,9,Eng\nBob,8,Sales\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHeadZero(t *testing.T) {
	cfg := &Config{Head: 0, Select: []string{"name"}}
	got, _ := runPipe(t, cfg, scores)
	if got != "name\n" {
		t.Errorf("head 0 must emit only the header, got %q", got)
	}
	cfg = &Config{Head: 0, Select: []string{"name"}, NoHeader: true}
	got, _ = runPipe(t, cfg, scores)
	if got != "" {
		t.Errorf("head 0 with no-header must emit nothing, got %q", got)
	}
}

func TestProjection(t *testing.T) {
	cfg := &Config{Head: -1, Select: []string{"dept", "name"}}
	got, _ := runPipe(t, cfg, scores)
	want := "dept,name\nEng,Alice\nSales,Bob\nEng,Cara\nOps,Dan\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestProjectionByIndex(t *testing.T) {
	cfg := &Config{Head: -1, Select: []string{"2", "1"}}
	got, _ := runPipe(t, cfg, scores)
	want := "score,name\n9,Alice\n8,Bob\n10,Cara\n7,Dan\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestProjectionIdempotent(t *testing.T) {
	cfg := &Config{Head: -1, Select: []string{"name", "score"}}
	once, _ := runPipe(t, cfg, scores)
	cfg2 := &Config{Head: -1, Select: []string{"name", "score"}}
	twice, _ := runPipe(t, cfg2, once)
	if once != twice {
		t.Errorf("projection is not idempotent:\n%q\n%q", once, twice)
	}
}

func TestQuotePassThrough(t *testing.T) {
	input := "name,note\n" +
		"\"Alice\",\"likes, commas\"\n" +
		"Bob,plain\n"
	cfg := &Config{Head: -1, Select: []string{"name", "note"}}
	got, _ := runPipe(t, cfg, input)
	// originally-quoted fields stay quoted, unquoted stay raw
	if got != input {
		t.Errorf("got %q, want %q", got, input)
	}
}

func TestFilterRejectsAll(t *testing.T) {
	cfg := &Config{Head: -1, Filters: []*filter.Predicate{mustFilter(t, "score>100")}}
	got, _ := runPipe(t, cfg, scores)
	if got != "name,score,dept\n" {
		t.Errorf("got %q", got)
	}
}

func TestEmptyInput(t *testing.T) {
	for _, cfg := range []*Config{
		{Head: -1, Select: []string{"1"}},
		{Head: -1, Table: true},
		{Head: -1, SampleN: 3},
	} {
		var out, errw bytes.Buffer
		if err := Run(cfg, strings.NewReader(""), &out, &errw); err != nil {
			t.Fatalf("empty input: %s", err)
		}
		if out.Len() != 0 {
			t.Errorf("empty input produced %q", out.String())
		}
	}
}

func TestHeaderOnly(t *testing.T) {
	cfg := &Config{Head: -1, Select: []string{"name"}}
	got, _ := runPipe(t, cfg, "name,score\n")
	if got != "name\n" {
		t.Errorf("got %q", got)
	}
	cfg = &Config{Head: -1, Select: []string{"name"}, NoHeader: true}
	got, _ = runPipe(t, cfg, "name,score\n")
	if got != "" {
		t.Errorf("got %q", got)
	}
}

func TestNoHeader(t *testing.T) {
	cfg := &Config{Head: -1, NoHeader: true}
	got, _ := runPipe(t, cfg, scores)
	want := "Alice,9,Eng\nBob,8,Sales\nCara,10,Eng\nDan,7,Ops\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBadBindings(t *testing.T) {
	cases := []*Config{
		{Head: -1, Select: []string{"bogus"}},
		{Head: -1, Select: []string{"9"}},
		{Head: -1, Filters: []*filter.Predicate{mustFilter(t, "bogus=1")}},
		{Head: -1, Top: "bogus"},
		{Head: -1, Aggs: []*aggr.Aggregator{mustAgg(t, "sum:bogus")}},
	}
	for i, cfg := range cases {
		var out, errw bytes.Buffer
		err := Run(cfg, strings.NewReader(scores), &out, &errw)
		if err == nil {
			t.Errorf("case %d: unresolved selector must fail", i)
			continue
		}
		if !strings.Contains(err.Error(), "bogus") && !strings.Contains(err.Error(), "9") {
			t.Errorf("case %d: diagnostic %q does not name the selector", i, err)
		}
	}
}

func TestParseErrorLineNumber(t *testing.T) {
	input := "name,score\nAlice,9\n\"broken\n"
	cfg := &Config{Head: -1, Select: []string{"name"}}
	var out, errw bytes.Buffer
	err := Run(cfg, strings.NewReader(input), &out, &errw)
	if !errors.Is(err, chop.ErrUnterminatedQuote) {
		t.Fatalf("got %v, want ErrUnterminatedQuote", err)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("diagnostic %q does not name line 3", err)
	}
	// output produced before the failure still flushed
	if !strings.HasPrefix(out.String(), "name\nAlice\n") {
		t.Errorf("pre-failure output lost: %q", out.String())
	}
}

func TestEarlyTermination(t *testing.T) {
	// the scan must stop at the head cap instead of
	// draining the stream
	r := &countingReader{data: []byte(scores)}
	cfg := &Config{Head: 1, Select: []string{"name"}}
	var out, errw bytes.Buffer
	if err := Run(cfg, r, &out, &errw); err != nil {
		t.Fatalf("cannot run: %s", err)
	}
	if out.String() != "name\nAlice\n" {
		t.Errorf("got %q", out.String())
	}
	// a read past the end fails, but scan swallows read
	// failures, so draining is checked on the offset
	if r.off >= len(r.data) {
		t.Errorf("scan drained the stream (%d of %d bytes read)", r.off, len(r.data))
	}
}

type countingReader struct {
	data []byte
	off  int
}

func (c *countingReader) Read(p []byte) (int, error) {
	if c.off >= len(c.data) {
		return 0, errors.New("read past early-termination point")
	}
	// dribble one byte at a time so the head cap is
	// observable mid-stream
	p[0] = c.data[c.off]
	c.off++
	return 1, nil
}

func TestMidStreamReadFailure(t *testing.T) {
	// an I/O failure after some rows stops the loop
	// without an error; prior output flushes
	r := &failingReader{data: []byte("name\nAlice\nBob\n"), failAt: 11}
	cfg := &Config{Head: -1, Select: []string{"name"}}
	var out, errw bytes.Buffer
	if err := Run(cfg, r, &out, &errw); err != nil {
		t.Fatalf("read failure must not surface: %s", err)
	}
	if out.String() != "name\nAlice\n" {
		t.Errorf("got %q", out.String())
	}
}

type failingReader struct {
	data   []byte
	off    int
	failAt int
}

func (f *failingReader) Read(p []byte) (int, error) {
	if f.off >= f.failAt {
		return 0, errors.New("disk on fire")
	}
	p[0] = f.data[f.off]
	f.off++
	return 1, nil
}

func TestTopDefaultLimit(t *testing.T) {
	var input strings.Builder
	input.WriteString("k\n")
	for i := 0; i < 50; i++ {
		input.WriteString("5\n")
	}
	cfg := &Config{Head: -1, Top: "k"}
	got, _ := runPipe(t, cfg, input.String())
	lines := strings.Count(got, "\n")
	if lines != DefaultLimit+1 {
		t.Errorf("got %d lines, want %d", lines, DefaultLimit+1)
	}
}

func TestAggregateTable(t *testing.T) {
	cfg := &Config{
		Head:  -1,
		Table: true,
		Aggs:  []*aggr.Aggregator{mustAgg(t, "sum:score")},
	}
	got, _ := runPipe(t, cfg, scores)
	want := "sum(score)\n----------\n34        \n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
