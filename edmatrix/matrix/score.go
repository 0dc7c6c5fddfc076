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

// ScoreMatrix is the score matrix of an edit distance computation,
// stored column by column as vertical differences between adjacent rows.
// In column c, bit r-1 of VP is set if row r is one more than row r-1,
// and bit r-1 of VN is set if it is one less. The two planes never
// share a set bit.
//
// Columns are appended by a single producer. After that, the matrix is
// read-only and safe for concurrent use.
type ScoreMatrix[W Word] struct {
	rows   int
	w      int
	policy Policy

	vp, vn  *blockBuffer[W]
	maxRows []int
}

// NewScoreMatrix creates an empty score matrix with a fixed number of rows,
// i.e., the query length plus one.
func NewScoreMatrix[W Word](rows int, policy Policy) *ScoreMatrix[W] {
	return &ScoreMatrix[W]{
		rows:    rows,
		w:       WordSize[W](),
		policy:  policy,
		vp:      newBlockBuffer[W](),
		vn:      newBlockBuffer[W](),
		maxRows: make([]int, 0, 64),
	}
}

// Rows returns the number of rows.
func (m *ScoreMatrix[W]) Rows() int { return m.rows }

// Cols returns the number of columns added.
func (m *ScoreMatrix[W]) Cols() int { return len(m.maxRows) }

// Policy returns the matrix policy.
func (m *ScoreMatrix[W]) Policy() Policy { return m.policy }

// Reserve preallocates space for n more columns.
func (m *ScoreMatrix[W]) Reserve(n int) {
	nb := BlockCount[W](m.rows)
	m.vp.reserve(n, nb)
	m.vn.reserve(n, nb)
	if need := len(m.maxRows) + n; need > cap(m.maxRows) {
		maxRows := make([]int, len(m.maxRows), need)
		copy(maxRows, m.maxRows)
		m.maxRows = maxRows
	}
}

// AddColumn appends a column. Blocks are copied, so the caller can reuse them.
// maxRows is the number of rows of the column inside the error band,
// it is only used when the policy has MaxErrors, see MaxRows.
//
// Blocks beyond the band might be omitted, missing blocks are read as 0.
func (m *ScoreMatrix[W]) AddColumn(vp, vn []W, maxRows int) {
	m.vp.append(vp)
	m.vn.append(vn)
	m.maxRows = append(m.maxRows, maxRows)
}

// Column returns the stored blocks of a column. They must not be modified.
func (m *ScoreMatrix[W]) Column(col int) (vp, vn []W) {
	return m.vp.column(col), m.vn.column(col)
}

// Band returns the number of leading rows of a column that are present.
func (m *ScoreMatrix[W]) Band(col int) int {
	if !m.policy.MaxErrors || m.maxRows[col] > m.rows {
		return m.rows
	}
	return m.maxRows[col]
}

// At returns the score of a cell, which is the negated number of errors.
// ok is false if the cell is outside of the error band.
// An error wrapping ErrOutOfRange is returned for invalid coordinates.
func (m *ScoreMatrix[W]) At(row, col int) (score int, ok bool, err error) {
	if err = checkRange(row, col, m.rows, m.Cols()); err != nil {
		return 0, false, err
	}
	if m.policy.MaxErrors && row >= m.maxRows[col] {
		return 0, false, nil
	}

	errs := m.policy.base(col)
	if row > 0 {
		block, offset := locate(row, m.w)
		for i := 0; i < block; i++ {
			errs = blockDelta(m.vp.blockAt(col, i), m.vn.blockAt(col, i), m.w, m.w, errs)
		}
		errs = blockDelta(m.vp.blockAt(col, block), m.vn.blockAt(col, block), offset+1, m.w, errs)
	}
	return -errs, true, nil
}

// blockDelta adds the vertical differences of the lowest n rows of a block
// to the running sum carried over from the blocks above.
func blockDelta[W Word](vp, vn W, n, w, carry int) int {
	mask := lowMask[W](n, w)
	return carry + popcount(vp&mask) - popcount(vn&mask)
}
