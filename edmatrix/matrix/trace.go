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

// TraceMatrix is the traceback matrix of an edit distance computation,
// stored column by column as three flag planes. In column c, bit r-1 of
// a plane is set if cell (r, c) can be reached from that direction.
//
// Block boundaries need no special care when decoding: the producer
// already carries the horizontal and diagonal differences from one
// block to the next when computing the planes.
type TraceMatrix[W Word] struct {
	rows   int
	w      int
	policy Policy

	left, diagonal, up *blockBuffer[W]
	maxRows            []int
}

// NewTraceMatrix creates an empty trace matrix with a fixed number of rows.
func NewTraceMatrix[W Word](rows int, policy Policy) *TraceMatrix[W] {
	return &TraceMatrix[W]{
		rows:     rows,
		w:        WordSize[W](),
		policy:   policy,
		left:     newBlockBuffer[W](),
		diagonal: newBlockBuffer[W](),
		up:       newBlockBuffer[W](),
		maxRows:  make([]int, 0, 64),
	}
}

// Rows returns the number of rows.
func (m *TraceMatrix[W]) Rows() int { return m.rows }

// Cols returns the number of columns added.
func (m *TraceMatrix[W]) Cols() int { return len(m.maxRows) }

// Policy returns the matrix policy.
func (m *TraceMatrix[W]) Policy() Policy { return m.policy }

// Reserve preallocates space for n more columns.
func (m *TraceMatrix[W]) Reserve(n int) {
	nb := BlockCount[W](m.rows)
	m.left.reserve(n, nb)
	m.diagonal.reserve(n, nb)
	m.up.reserve(n, nb)
	if need := len(m.maxRows) + n; need > cap(m.maxRows) {
		maxRows := make([]int, len(m.maxRows), need)
		copy(maxRows, m.maxRows)
		m.maxRows = maxRows
	}
}

// AddColumn appends a column of the three flag planes, see ScoreMatrix.AddColumn
// for maxRows.
func (m *TraceMatrix[W]) AddColumn(left, diagonal, up []W, maxRows int) {
	m.left.append(left)
	m.diagonal.append(diagonal)
	m.up.append(up)
	m.maxRows = append(m.maxRows, maxRows)
}

// At returns the traceback directions of a cell.
// ok is false if the cell is outside of the error band.
// An error wrapping ErrOutOfRange is returned for invalid coordinates.
func (m *TraceMatrix[W]) At(row, col int) (d Directions, ok bool, err error) {
	if err = checkRange(row, col, m.rows, m.Cols()); err != nil {
		return Terminator, false, err
	}
	if m.policy.MaxErrors && row >= m.maxRows[col] {
		return Terminator, false, nil
	}

	if row == 0 {
		if m.policy.terminates(col) {
			return Terminator, true, nil
		}
		return Left, true, nil
	}

	block, offset := locate(row, m.w)
	bit := W(1) << offset
	if m.diagonal.blockAt(col, block)&bit > 0 {
		d |= Diagonal
	}
	if m.up.blockAt(col, block)&bit > 0 {
		d |= Up
	}
	if m.left.blockAt(col, block)&bit > 0 {
		d |= Left
	}
	return d, true, nil
}
