// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package util

import (
	"math/rand"

	"github.com/shenwei356/kmers"
	"github.com/twotwotwo/sorts/sortutil"
)

// https://gist.github.com/badboy/6267743 .
// version with mask: https://gist.github.com/lh3/974ced188be2f90422cc .
func Hash64(key uint64) uint64 {
	key = (^key) + (key << 21) // key = (key << 21) - key - 1
	key = key ^ (key >> 24)
	key = (key + (key << 3)) + (key << 8) // key * 265
	key = key ^ (key >> 14)
	key = (key + (key << 2)) + (key << 4) // key * 21
	key = key ^ (key >> 28)
	key = key + (key << 31)
	return key
}

// UniqUint64s removes duplicates in a uint64 list, the list is sorted.
func UniqUint64s(list *[]uint64) {
	if len(*list) == 0 || len(*list) == 1 {
		return
	}

	sortutil.Uint64s(*list)

	var i, j int
	var p, v uint64
	var flag bool
	p = (*list)[0]
	for i = 1; i < len(*list); i++ {
		v = (*list)[i]
		if v == p {
			if !flag {
				j = i // mark insertion position
				flag = true
			}
			continue
		}

		if flag { // need to insert to previous position
			(*list)[j] = v
			j++
		}
		p = v
	}
	if j > 0 {
		*list = (*list)[:j]
	}
}

// Reverse reverses a list in place.
func Reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// maximum k-mer size supported by kmers.Decode
const maxK = 32

// RandomSeq returns a random DNA sequence of length n.
// The sequence is built by decoding hashed random integers as k-mers.
func RandomSeq(r *rand.Rand, n int) []byte {
	s := make([]byte, 0, n)
	var k int
	for len(s) < n {
		k = min(maxK, n-len(s))
		s = append(s, kmers.Decode(Hash64(r.Uint64())>>(64-k<<1), k)...)
	}
	return s
}

// Mutate returns a copy of s with random substitutions and indels,
// each base is edited with the probability rate.
func Mutate(r *rand.Rand, s []byte, rate float64) []byte {
	const bases = "ACGT"
	m := make([]byte, 0, len(s)+len(s)/4+1)
	for _, c := range s {
		if r.Float64() >= rate {
			m = append(m, c)
			continue
		}
		switch r.Intn(3) {
		case 0: // substitution
			m = append(m, bases[r.Intn(4)])
		case 1: // insertion
			m = append(m, c, bases[r.Intn(4)])
		default: // deletion
		}
	}
	return m
}
