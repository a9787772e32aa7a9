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

import "bytes"

// Splitter chops one line into fields plus a was-quoted
// mask. It owns three reusable buffers: the field slice
// array, the mask, and a quote-unescape scratch area.
//
// After a successful Split, Fields and Quoted describe
// the record. Field slices alias either the line passed
// to Split or the scratch buffer; both are overwritten by
// the next call, so callers must not retain them (see
// CopyRow).
//
// Split never allocates.
type Splitter struct {
	// Fields holds the field slices of the last record.
	Fields [][]byte
	// Quoted holds the was-quoted mask of the last record;
	// Quoted[i] is true iff Fields[i] appeared wrapped in
	// double quotes in the source line.
	Quoted []bool

	scratch []byte // unescaped quoted-field bytes
	used    int    // scratch fill point
}

// NewSplitter returns a Splitter with all three buffers
// allocated up front (MaxFields field slots and a MaxLine
// scratch).
func NewSplitter() *Splitter {
	return &Splitter{
		Fields:  make([][]byte, 0, MaxFields),
		Quoted:  make([]bool, 0, MaxFields),
		scratch: make([]byte, MaxLine),
	}
}

// ScratchUsed returns the number of scratch bytes the last
// Split consumed. It is zero unless the record contained a
// quoted field with an escaped quote.
func (s *Splitter) ScratchUsed() int { return s.used }

// Split parses line into s.Fields and s.Quoted.
//
// Grammar per field: a field starting with '"' extends to
// the matching closing quote, with "" standing for one
// literal quote; any other field extends to the next ','
// or end-of-line. After a closing quote the next byte must
// be ',' or end-of-line. A trailing ',' yields a final
// empty field.
func (s *Splitter) Split(line []byte) error {
	s.Fields = s.Fields[:0]
	s.Quoted = s.Quoted[:0]
	s.used = 0

	i := 0
	for {
		if len(s.Fields) == MaxFields {
			return ErrTooManyFields
		}
		if i < len(line) && line[i] == '"' {
			field, next, err := s.quoted(line, i)
			if err != nil {
				return err
			}
			s.Fields = append(s.Fields, field)
			s.Quoted = append(s.Quoted, true)
			if next == len(line) {
				return nil
			}
			if line[next] != ',' {
				return ErrMalformedQuote
			}
			i = next + 1
			continue
		}
		rest := line[i:]
		j := bytes.IndexByte(rest, ',')
		if j < 0 {
			s.Fields = append(s.Fields, rest)
			s.Quoted = append(s.Quoted, false)
			return nil
		}
		s.Fields = append(s.Fields, rest[:j])
		s.Quoted = append(s.Quoted, false)
		i += j + 1
	}
}

// quoted parses the quoted field starting at line[start]
// (which is '"'). It returns the field contents and the
// position just past the closing quote.
//
// The fast path applies when the field contains no ""
// escape: the returned slice aliases line directly. With
// escapes, the unescaped bytes are appended to the scratch
// buffer instead.
func (s *Splitter) quoted(line []byte, start int) ([]byte, int, error) {
	i := start + 1
	j := bytes.IndexByte(line[i:], '"')
	if j < 0 {
		return nil, 0, ErrUnterminatedQuote
	}
	q := i + j
	if q+1 >= len(line) || line[q+1] != '"' {
		// fast path: zero copy
		return line[start+1 : q], q + 1, nil
	}
	return s.quotedSlow(line, start, q)
}

// quotedSlow handles a quoted field whose first quote pair
// sits at line[esc:esc+2]. The total unescaped length of
// all fields in a line never exceeds the line length, so
// the scratch (MaxLine bytes) always has room.
func (s *Splitter) quotedSlow(line []byte, start, esc int) ([]byte, int, error) {
	w := s.used
	w += copy(s.scratch[w:], line[start+1:esc])
	s.scratch[w] = '"'
	w++
	i := esc + 2
	for {
		j := bytes.IndexByte(line[i:], '"')
		if j < 0 {
			return nil, 0, ErrUnterminatedQuote
		}
		q := i + j
		w += copy(s.scratch[w:], line[i:q])
		if q+1 < len(line) && line[q+1] == '"' {
			s.scratch[w] = '"'
			w++
			i = q + 2
			continue
		}
		field := s.scratch[s.used:w]
		s.used = w
		return field, q + 1, nil
	}
}
