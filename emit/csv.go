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

// Package emit writes records back out, either as
// delimited text or as an aligned table.
package emit

import (
	"bufio"
	"bytes"
)

// CSV writes records in the input dialect: fields joined
// by ',', records terminated by '\n'.
type CSV struct {
	w *bufio.Writer
}

// NewCSV returns a CSV writer on top of w. The caller
// owns flushing w.
func NewCSV(w *bufio.Writer) *CSV {
	return &CSV{w: w}
}

// needsQuote reports whether f cannot be emitted raw.
func needsQuote(f []byte) bool {
	return bytes.IndexAny(f, ",\"\n\r") >= 0
}

// writeQuoted writes f wrapped in quotes with inner
// quotes doubled.
func (c *CSV) writeQuoted(f []byte) error {
	if err := c.w.WriteByte('"'); err != nil {
		return err
	}
	for {
		j := bytes.IndexByte(f, '"')
		if j < 0 {
			break
		}
		if _, err := c.w.Write(f[:j+1]); err != nil {
			return err
		}
		if err := c.w.WriteByte('"'); err != nil {
			return err
		}
		f = f[j+1:]
	}
	if _, err := c.w.Write(f); err != nil {
		return err
	}
	return c.w.WriteByte('"')
}

// WriteField emits one field with minimal quoting: quotes
// are added only when the field contains ',', '"', '\n'
// or '\r'.
func (c *CSV) WriteField(f []byte) error {
	if needsQuote(f) {
		return c.writeQuoted(f)
	}
	_, err := c.w.Write(f)
	return err
}

// WriteRow emits one record. quoted is the record's
// was-quoted mask, or nil for synthesized rows.
//
// A field whose was-quoted bit is set is re-quoted, so a
// field that arrived quoted leaves quoted and round-trips
// byte-for-byte. Unquoted fields are written raw: their
// bytes cannot contain ',' or a record terminator, and
// re-examining them could only over-quote fields with
// interior '"' bytes.
func (c *CSV) WriteRow(fields [][]byte, quoted []bool) error {
	for i, f := range fields {
		if i > 0 {
			if err := c.w.WriteByte(','); err != nil {
				return err
			}
		}
		var err error
		switch {
		case quoted != nil && i < len(quoted) && quoted[i]:
			err = c.writeQuoted(f)
		case quoted != nil:
			_, err = c.w.Write(f)
		default:
			err = c.WriteField(f)
		}
		if err != nil {
			return err
		}
	}
	return c.w.WriteByte('\n')
}
