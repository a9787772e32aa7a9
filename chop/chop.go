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

// Package chop turns a byte stream into logical lines and
// chops each line into its comma-separated fields.
//
// The package is built around a strict reuse discipline:
// the LineReader yields slices into one caller-visible
// line buffer, and the Splitter produces field slices that
// alias either that line or a single quote-unescape
// scratch buffer. Nothing on the per-record path
// allocates; callers that need a record to survive the
// next read take an explicit deep copy with CopyRow.
package chop

import "errors"

const (
	// MaxLine is the maximum length of one logical
	// line, excluding the record terminator.
	MaxLine = 1 << 20
	// MaxFields is the maximum number of fields in
	// one record.
	MaxFields = 4096
	// ReadBuffer is the size of the buffered read
	// area in front of the input stream.
	ReadBuffer = 256 << 10
)

// The parser failure set is closed: every malformed input
// maps to exactly one of these sentinels. Callers attach
// line numbers with fmt.Errorf("...: %w", ...) and classify
// with errors.Is.
var (
	// ErrLineTooLong indicates a line over MaxLine bytes.
	ErrLineTooLong = errors.New("line too long")
	// ErrTooManyFields indicates a record with more than
	// MaxFields fields.
	ErrTooManyFields = errors.New("too many fields")
	// ErrUnterminatedQuote indicates a quoted field with
	// no closing quote before end-of-line.
	ErrUnterminatedQuote = errors.New("unterminated quoted field")
	// ErrMalformedQuote indicates trailing bytes after a
	// closing quote that are neither ',' nor end-of-line.
	ErrMalformedQuote = errors.New("malformed quoted field")
)
