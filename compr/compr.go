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

// Package compr wraps third-party decompression libraries
// behind transparent input sniffing: a stream that starts
// with a known compression magic is decompressed on the
// fly, and anything else passes through untouched.
package compr

import (
	"bufio"
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Reader returns r, possibly wrapped in a streaming
// decompressor, by peeking at the first bytes of the
// stream. Plain input is never consumed, so wrapping an
// uncompressed stream is byte-transparent.
func Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, 512)
	magic, err := br.Peek(4)
	if err != nil && len(magic) < 2 {
		// streams shorter than any magic are plain input
		return br, nil
	}
	switch {
	case bytes.HasPrefix(magic, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		return zr, nil
	case bytes.HasPrefix(magic, zstdMagic):
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	}
	return br, nil
}
