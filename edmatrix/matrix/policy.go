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

import "strings"

// Policy decides the base case of the matrices and whether
// cells outside the error band are absent.
type Policy struct {
	// SemiGlobal means gaps at both ends of the database sequence
	// (the horizontal one) are free: row 0 scores 0 everywhere
	// and every cell in row 0 terminates a traceback.
	SemiGlobal bool

	// MaxErrors means columns are pruned by a maximum number of errors
	// and every column carries the number of rows it covers.
	MaxErrors bool
}

func (p Policy) String() string {
	var b strings.Builder
	if p.SemiGlobal {
		b.WriteString("semi-global")
	} else {
		b.WriteString("global")
	}
	if p.MaxErrors {
		b.WriteString("+max-errors")
	}
	return b.String()
}

// base returns the score (the number of errors) of row 0 in a column.
func (p Policy) base(col int) int {
	if p.SemiGlobal {
		return 0
	}
	return col
}

// terminates tells whether a row-0 cell ends a traceback.
func (p Policy) terminates(col int) bool {
	return p.SemiGlobal || col == 0
}

// MaxRows returns the number of rows of a column that lie inside the
// error band. mask has a single bit set, marking the last active cell
// in the block with index block, and score is the number of errors of
// that cell. The last active cell is included only if its score does
// not exceed maxErrors.
//
// A zero mask stands for row 0.
func MaxRows[W Word](mask W, block int, score, maxErrors int) int {
	n := block*WordSize[W]() + BitLen(mask)
	if score <= maxErrors {
		n++
	}
	return n
}
