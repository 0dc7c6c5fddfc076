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

package matrix

// blockBuffer stores blocks of all columns in a single slice.
// Columns might have different numbers of blocks.
type blockBuffer[W Word] struct {
	blocks  []W
	offsets []int // offsets[c] is the start of column c, len(offsets) == cols+1
}

func newBlockBuffer[W Word]() *blockBuffer[W] {
	return &blockBuffer[W]{
		blocks:  make([]W, 0, 64),
		offsets: []int{0},
	}
}

// reserve grows the capacity for n more columns with at most perCol blocks each.
func (b *blockBuffer[W]) reserve(n, perCol int) {
	if n <= 0 {
		return
	}
	if need := len(b.blocks) + n*perCol; need > cap(b.blocks) {
		blocks := make([]W, len(b.blocks), need)
		copy(blocks, b.blocks)
		b.blocks = blocks
	}
	if need := len(b.offsets) + n; need > cap(b.offsets) {
		offsets := make([]int, len(b.offsets), need)
		copy(offsets, b.offsets)
		b.offsets = offsets
	}
}

// append adds a column. The blocks are copied.
func (b *blockBuffer[W]) append(col []W) {
	b.blocks = append(b.blocks, col...)
	b.offsets = append(b.offsets, len(b.blocks))
}

func (b *blockBuffer[W]) cols() int {
	return len(b.offsets) - 1
}

// column returns the blocks of a column, the capacity of the slice is
// limited so appending to it never overwrites the next column.
func (b *blockBuffer[W]) column(c int) []W {
	s, e := b.offsets[c], b.offsets[c+1]
	return b.blocks[s:e:e]
}

// blockAt returns the i-th block of a column, or 0 if the column
// has fewer blocks.
func (b *blockBuffer[W]) blockAt(c, i int) W {
	s := b.offsets[c] + i
	if s >= b.offsets[c+1] {
		return 0
	}
	return b.blocks[s]
}
