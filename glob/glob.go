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

// Package glob implements '*'-wildcard matching over raw bytes.
package glob

// Match reports whether text matches pattern.
// The only metacharacter is '*', which matches
// zero or more arbitrary bytes; every other byte
// matches itself. An empty pattern matches only
// the empty text.
//
// The implementation is two-pointer backtracking:
// on a mismatch we fall back to the most recent '*'
// and re-anchor the text one byte further along.
// Worst case is O(len(pattern)*len(text)); typical
// patterns run in linear time.
func Match(pattern, text []byte) bool {
	pi, ti := 0, 0
	star := -1 // position of the last '*' in pattern
	anchor := 0
	for ti < len(text) {
		switch {
		case pi < len(pattern) && pattern[pi] == '*':
			star = pi
			pi++
			anchor = ti
		case pi < len(pattern) && pattern[pi] == text[ti]:
			pi++
			ti++
		case star >= 0:
			pi = star + 1
			anchor++
			ti = anchor
		default:
			return false
		}
	}
	// trailing '*'s match the empty tail
	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}
