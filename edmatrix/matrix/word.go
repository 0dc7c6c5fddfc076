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

// Package matrix stores the score and trace matrices of a bit-parallel
// edit distance computation in their compressed, column-wise form.
//
// Row r (r >= 1) of a column lives in block (r-1)/w at bit (r-1)%w,
// where w is the bit width of the Word type. Row 0 is never stored,
// it is derived from the Policy of the matrix.
package matrix

import "math/bits"

// Word is the unsigned integer type a block of a column is packed into.
type Word interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// WordSize returns the number of bits of a Word type.
func WordSize[W Word]() int {
	var w W
	return bits.OnesCount64(uint64(^w))
}

// BlockCount returns the number of blocks needed to store
// rows 1..rows-1 of a column.
func BlockCount[W Word](rows int) int {
	if rows <= 1 {
		return 0
	}
	w := WordSize[W]()
	return (rows - 1 + w - 1) / w
}

// locate returns the block index and the bit offset of a row (>= 1).
func locate(row, w int) (int, int) {
	return (row - 1) / w, (row - 1) % w
}

// lowMask returns a word with the lowest n bits set.
func lowMask[W Word](n, w int) W {
	if n >= w {
		return ^W(0)
	}
	return W(1)<<n - 1
}

func popcount[W Word](x W) int {
	return bits.OnesCount64(uint64(x))
}

// BitLen returns the minimum number of bits to represent x.
func BitLen[W Word](x W) int {
	return bits.Len64(uint64(x))
}
