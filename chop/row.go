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

// Row is a deep copy of one parsed record: the field
// slices plus the was-quoted mask. Buffering operators
// (ranking, sampling, table width estimation) copy rows
// at well-defined insertion points; everything else works
// on the Splitter's transient output.
type Row struct {
	Fields [][]byte
	Quoted []bool
}

// CopyRow deep-copies a record. All field bytes land in a
// single backing buffer so a buffered row costs one
// allocation for the bytes plus the two headers.
func CopyRow(fields [][]byte, quoted []bool) Row {
	n := 0
	for i := range fields {
		n += len(fields[i])
	}
	buf := make([]byte, 0, n)
	out := make([][]byte, len(fields))
	for i := range fields {
		start := len(buf)
		buf = append(buf, fields[i]...)
		out[i] = buf[start:len(buf):len(buf)]
	}
	var mask []bool
	if quoted != nil {
		mask = make([]bool, len(quoted))
		copy(mask, quoted)
	}
	return Row{Fields: out, Quoted: mask}
}

// Bytes returns the cumulative field byte size of the row.
func (r *Row) Bytes() int {
	n := 0
	for i := range r.Fields {
		n += len(r.Fields[i])
	}
	return n
}
