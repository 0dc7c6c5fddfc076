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

import "fmt"

// PathIterator walks an optimal alignment backward, from a cell
// towards a terminator. It is single-use and not safe for concurrent use,
// though many iterators can walk the same matrix at the same time.
type PathIterator[W Word] struct {
	m        *TraceMatrix[W]
	row, col int
	done     bool
	err      error
}

// TracePath returns an iterator of the traceback path ending at (row, col).
// An error wrapping ErrOutOfRange is returned for invalid coordinates.
func (m *TraceMatrix[W]) TracePath(row, col int) (*PathIterator[W], error) {
	if err := checkRange(row, col, m.rows, m.Cols()); err != nil {
		return nil, err
	}
	return &PathIterator[W]{m: m, row: row, col: col}, nil
}

// Next moves one step back and returns the direction taken.
// If a cell has more than one direction, up is preferred over left,
// and left over diagonal. false is returned once a terminator is reached,
// or the walk fails, see Err.
func (it *PathIterator[W]) Next() (Directions, bool) {
	if it.done {
		return Terminator, false
	}

	d, ok, err := it.m.At(it.row, it.col)
	if err != nil {
		it.done, it.err = true, err
		return Terminator, false
	}
	if !ok {
		it.done = true
		it.err = fmt.Errorf("%w: (%d, %d)", ErrUnreachable, it.row, it.col)
		return Terminator, false
	}

	d = d.Pick()
	switch d {
	case Up:
		it.row--
	case Left:
		it.col--
	case Diagonal:
		it.row--
		it.col--
	default:
		it.done = true
		return Terminator, false
	}
	return d, true
}

// Coordinate returns the current cell. After the walk is finished,
// it is the first cell of the alignment.
func (it *PathIterator[W]) Coordinate() (row, col int) {
	return it.row, it.col
}

// Err returns the error stopping the walk, if any.
func (it *PathIterator[W]) Err() error {
	return it.err
}

// Path returns all directions of the traceback path ending at (row, col),
// from the last cell to the first one.
func (m *TraceMatrix[W]) Path(row, col int) ([]Directions, error) {
	it, err := m.TracePath(row, col)
	if err != nil {
		return nil, err
	}
	path := make([]Directions, 0, row+col)
	for {
		d, ok := it.Next()
		if !ok {
			break
		}
		path = append(path, d)
	}
	return path, it.Err()
}
