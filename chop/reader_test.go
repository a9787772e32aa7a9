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

package chop

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func readAll(t *testing.T, input string) []string {
	t.Helper()
	r := NewLineReader(strings.NewReader(input), nil)
	var lines []string
	for {
		line, err := r.Next()
		if err == io.EOF {
			return lines
		}
		if err != nil {
			t.Fatalf("cannot read line: %s", err)
		}
		lines = append(lines, string(line))
	}
}

func TestLineReader(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single", "abc\n", []string{"abc"}},
		{"no terminator", "abc", []string{"abc"}},
		{"crlf", "abc\r\ndef\r\n", []string{"abc", "def"}},
		{"blank lines skipped", "a\n\n\nb\n", []string{"a", "b"}},
		{"cr-only line skipped", "a\n\r\nb\n", []string{"a", "b"}},
		{"trailing blank", "a\n\n", []string{"a"}},
		{"interior cr kept", "a\rb\n", []string{"a\rb"}},
		{"final line crlf no lf", "a\nb\r", []string{"a", "b"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := readAll(t, c.input)
			if len(got) != len(c.want) {
				t.Fatalf("got %d lines %q, want %d", len(got), got, len(c.want))
			}
			for i := range got {
				if got[i] != c.want[i] {
					t.Errorf("line %d: got %q, want %q", i, got[i], c.want[i])
				}
			}
		})
	}
}

func TestLineReaderCounter(t *testing.T) {
	r := NewLineReader(strings.NewReader("h\n\nx\n\n\ny\n"), nil)
	for i, want := range []string{"h", "x", "y"} {
		line, err := r.Next()
		if err != nil {
			t.Fatalf("cannot read line: %s", err)
		}
		if string(line) != want {
			t.Fatalf("line %d: got %q", i, line)
		}
		if r.Line() != i+1 {
			t.Errorf("after %q: Line() = %d, want %d", want, r.Line(), i+1)
		}
	}
}

func TestLineReaderLong(t *testing.T) {
	// spans many bufio refills
	long := strings.Repeat("x", ReadBuffer*3+17)
	got := readAll(t, long+"\nshort\n")
	if len(got) != 2 || got[0] != long || got[1] != "short" {
		t.Fatalf("long line mangled (got %d lines)", len(got))
	}
}

func TestLineTooLong(t *testing.T) {
	exact := bytes.Repeat([]byte{'y'}, MaxLine)
	r := NewLineReader(bytes.NewReader(append(exact, '\n')), nil)
	line, err := r.Next()
	if err != nil {
		t.Fatalf("line of exactly MaxLine bytes: %s", err)
	}
	if len(line) != MaxLine {
		t.Fatalf("got %d bytes, want %d", len(line), MaxLine)
	}

	over := bytes.Repeat([]byte{'y'}, MaxLine+1)
	r = NewLineReader(bytes.NewReader(append(over, '\n')), nil)
	_, err = r.Next()
	if !errors.Is(err, ErrLineTooLong) {
		t.Fatalf("MaxLine+1 bytes: got %v, want ErrLineTooLong", err)
	}

	// unterminated over-long line fails too
	r = NewLineReader(bytes.NewReader(over), nil)
	_, err = r.Next()
	if !errors.Is(err, ErrLineTooLong) {
		t.Fatalf("unterminated over-long line: got %v", err)
	}
}

func TestLineReaderSliceReuse(t *testing.T) {
	r := NewLineReader(strings.NewReader("first\nsecond\n"), nil)
	a, err := r.Next()
	if err != nil {
		t.Fatalf("cannot read line: %s", err)
	}
	if string(a) != "first" {
		t.Fatalf("got %q", a)
	}
	b, err := r.Next()
	if err != nil {
		t.Fatalf("cannot read line: %s", err)
	}
	// the slice from the first call now observes
	// the second line's bytes
	if &a[0] != &b[0] {
		t.Error("Next did not reuse the line buffer")
	}
}
