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

package sample

import (
	"crypto/rand"
	"encoding/binary"

	"golang.org/x/crypto/chacha20"
)

// rng produces uniform integers from a chacha20 keystream
// seeded once from the operating system entropy source.
// This keeps the draws cryptographically strong without
// paying a system call per row.
type rng struct {
	c   *chacha20.Cipher
	buf [512]byte
	pos int
}

func newRNG() (*rng, error) {
	var key [chacha20.KeySize]byte
	if _, err := rand.Read(key[:]); err != nil {
		return nil, err
	}
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		return nil, err
	}
	g := &rng{c: c}
	g.pos = len(g.buf)
	return g, nil
}

func (g *rng) uint64() uint64 {
	if g.pos == len(g.buf) {
		for i := range g.buf {
			g.buf[i] = 0
		}
		g.c.XORKeyStream(g.buf[:], g.buf[:])
		g.pos = 0
	}
	v := binary.LittleEndian.Uint64(g.buf[g.pos:])
	g.pos += 8
	return v
}

// intn returns a uniform integer in [0, n).
// Rejection sampling removes the modulo bias.
func (g *rng) intn(n int64) int64 {
	if n <= 0 {
		return 0
	}
	max := ^uint64(0) - ^uint64(0)%uint64(n)
	for {
		v := g.uint64()
		if v < max {
			return int64(v % uint64(n))
		}
	}
}
