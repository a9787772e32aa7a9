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
	"bufio"
	"io"
)

// LineReader yields one logical line at a time from a
// buffered byte stream. A line is the byte sequence up to
// and not including the next '\n'; a trailing '\r' is
// stripped. Empty lines (after stripping) are skipped
// transparently. The final line of the stream does not
// need a terminator.
//
// The slice returned by Next aliases the reader's line
// buffer and is only valid until the next call.
type LineReader struct {
	src  *bufio.Reader
	buf  []byte // line assembly buffer, cap MaxLine
	line int    // logical lines returned so far
}

// NewLineReader returns a LineReader over r.
// buf is the line assembly buffer; if its capacity is
// below MaxLine it is reallocated. Passing a shared
// buffer lets the caller account for the single 1MiB
// ceiling explicitly.
func NewLineReader(r io.Reader, buf []byte) *LineReader {
	if cap(buf) < MaxLine {
		buf = make([]byte, MaxLine)
	}
	return &LineReader{
		src: bufio.NewReaderSize(r, ReadBuffer),
		buf: buf[:MaxLine],
	}
}

// Line returns the number of logical (non-empty) lines
// returned so far; after the first successful Next it is 1.
func (r *LineReader) Line() int { return r.line }

// Next returns the next non-empty logical line.
// At end of stream it returns io.EOF; a line longer than
// MaxLine returns ErrLineTooLong. Any other error comes
// from the underlying reader.
func (r *LineReader) Next() ([]byte, error) {
	for {
		line, err := r.fill()
		if err != nil {
			return nil, err
		}
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}
		if len(line) == 0 {
			continue
		}
		r.line++
		return line, nil
	}
}

// fill assembles one raw line (terminator removed) into
// r.buf, spanning as many bufio refills as necessary.
func (r *LineReader) fill() ([]byte, error) {
	n := 0
	for {
		frag, err := r.src.ReadSlice('\n')
		if len(frag) > 0 && frag[len(frag)-1] == '\n' {
			frag = frag[:len(frag)-1]
			if n+len(frag) > MaxLine {
				return nil, ErrLineTooLong
			}
			n += copy(r.buf[n:], frag)
			return r.buf[:n], nil
		}
		// no terminator in this fragment: either the
		// bufio buffer filled up or the stream ended
		if n+len(frag) > MaxLine {
			return nil, ErrLineTooLong
		}
		n += copy(r.buf[n:], frag)
		switch err {
		case bufio.ErrBufferFull:
			continue
		case io.EOF:
			if n == 0 {
				return nil, io.EOF
			}
			return r.buf[:n], nil
		default:
			return nil, err
		}
	}
}
