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

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// RowWise decodes all cells into a row-major table,
// cells outside of the error band are filled with inf.
// It is mainly for debugging and testing.
func (m *ScoreMatrix[W]) RowWise(inf int) [][]int {
	cols := m.Cols()
	table := make([][]int, m.rows)
	for r := range table {
		table[r] = make([]int, cols)
	}

	// walking down each column is cheaper than calling At for every cell
	for c := 0; c < cols; c++ {
		band := m.Band(c)
		errs := m.policy.base(c)
		for r := 0; r < m.rows; r++ {
			if r >= band {
				table[r][c] = inf
				continue
			}
			if r > 0 {
				block, offset := locate(r, m.w)
				bit := W(1) << offset
				if m.vp.blockAt(c, block)&bit > 0 {
					errs++
				}
				if m.vn.blockAt(c, block)&bit > 0 {
					errs--
				}
			}
			table[r][c] = -errs
		}
	}
	return table
}

// Dense returns the score matrix as a gonum dense matrix,
// cells outside of the error band are NaN.
// nil is returned for a matrix without any column.
func (m *ScoreMatrix[W]) Dense() *mat.Dense {
	cols := m.Cols()
	if m.rows <= 0 || cols == 0 {
		return nil
	}
	nan := math.NaN()
	data := make([]float64, m.rows*cols)
	for r, row := range m.RowWise(math.MinInt) {
		for c, v := range row {
			if v == math.MinInt {
				data[r*cols+c] = nan
			} else {
				data[r*cols+c] = float64(v)
			}
		}
	}
	return mat.NewDense(m.rows, cols, data)
}

// RowWise decodes all cells into a row-major table,
// cells outside of the error band are Absent.
func (m *TraceMatrix[W]) RowWise() [][]Directions {
	cols := m.Cols()
	table := make([][]Directions, m.rows)
	for r := range table {
		table[r] = make([]Directions, cols)
		for c := 0; c < cols; c++ {
			d, ok, _ := m.At(r, c)
			if !ok {
				d = Absent
			}
			table[r][c] = d
		}
	}
	return table
}
