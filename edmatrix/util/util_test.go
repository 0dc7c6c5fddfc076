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
	"bytes"
	"math/rand"
	"testing"
)

func TestUniqUint64s(t *testing.T) {
	tests := []struct {
		list   []uint64
		expect []uint64
	}{
		{nil, nil},
		{[]uint64{1}, []uint64{1}},
		{[]uint64{3, 1, 2}, []uint64{1, 2, 3}},
		{[]uint64{3, 1, 3, 2, 1, 1}, []uint64{1, 2, 3}},
		{[]uint64{5, 5, 5}, []uint64{5}},
	}
	for i, test := range tests {
		list := append([]uint64(nil), test.list...)
		UniqUint64s(&list)
		if len(list) != len(test.expect) {
			t.Errorf("#%d, expected %v, returned %v", i, test.expect, list)
			continue
		}
		for j, v := range list {
			if v != test.expect[j] {
				t.Errorf("#%d, expected %v, returned %v", i, test.expect, list)
				break
			}
		}
	}
}

func TestReverse(t *testing.T) {
	s := []byte("ACGTT")
	Reverse(s)
	if string(s) != "TTGCA" {
		t.Errorf("unexpected reversed bytes: %s", s)
	}

	v := []int{1, 2, 3, 4}
	Reverse(v)
	for i, x := range []int{4, 3, 2, 1} {
		if v[i] != x {
			t.Errorf("unexpected reversed ints: %v", v)
			break
		}
	}

	Reverse([]int(nil))
}

func TestRandomSeq(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for _, n := range []int{0, 1, 31, 32, 33, 100, 1000} {
		s := RandomSeq(r, n)
		if len(s) != n {
			t.Errorf("length: expected %d, returned %d", n, len(s))
		}
		for _, c := range s {
			if bytes.IndexByte([]byte("ACGT"), c) < 0 {
				t.Errorf("unexpected base: %c", c)
				break
			}
		}
	}

	a := RandomSeq(rand.New(rand.NewSource(11)), 200)
	b := RandomSeq(rand.New(rand.NewSource(11)), 200)
	if !bytes.Equal(a, b) {
		t.Errorf("sequences from the same seed should be identical")
	}
}

func TestMutate(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	s := RandomSeq(r, 500)

	if m := Mutate(r, s, 0); !bytes.Equal(m, s) {
		t.Errorf("no edits expected with a rate of 0")
	}

	m := Mutate(r, s, 0.1)
	if bytes.Equal(m, s) {
		t.Errorf("edits expected with a rate of 0.1")
	}
	if len(m) < len(s)/2 || len(m) > len(s)*2 {
		t.Errorf("unexpected length of the mutated sequence: %d", len(m))
	}
}
