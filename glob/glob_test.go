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

package glob

import "testing"

func TestMatch(t *testing.T) {
	cases := []struct {
		pattern, text string
		want          bool
	}{
		{"", "", true},
		{"", "x", false},
		{"*", "", true},
		{"*", "anything", true},
		{"**", "anything", true},
		{"abc", "abc", true},
		{"abc", "abd", false},
		{"abc", "ab", false},
		{"a*c", "ac", true},
		{"a*c", "abc", true},
		{"a*c", "abbbc", true},
		{"a*c", "abcb", false},
		{"*c", "abc", true},
		{"a*", "abc", true},
		{"a*b*c", "aXbYc", true},
		{"a*b*c", "acb", false},
		{"*a*a*a*", "aaa", true},
		{"*a*a*a*a*", "aaa", false},
		// backtracking: the first '*' must re-anchor
		// past the failed literal run
		{"*ab", "aab", true},
		{"*aab", "aaab", true},
		{"a", "", false},
		{"*x*", "abc", false},
		// bytes, not runes: '*' consumes individual
		// UTF-8 bytes just fine
		{"é*", "éclair", true},
		{"*é", "café", true},
	}
	for _, c := range cases {
		if got := Match([]byte(c.pattern), []byte(c.text)); got != c.want {
			t.Errorf("Match(%q, %q) = %v, want %v", c.pattern, c.text, got, c.want)
		}
	}
}

func FuzzMatchTerminates(f *testing.F) {
	f.Add("*a*b*", "aabbb")
	f.Add("", "")
	f.Add("****", "xyz")
	f.Fuzz(func(t *testing.T, pattern, text string) {
		// must terminate and never panic
		Match([]byte(pattern), []byte(text))
	})
}
