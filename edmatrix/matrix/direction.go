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

// Directions is a set of traceback directions of a cell,
// a cell might be reached from more than one neighbour.
type Directions uint8

const (
	// Diagonal means a match or a substitution, from (row-1, col-1).
	Diagonal Directions = 1 << iota
	// Up means a gap in the database sequence, from (row-1, col).
	Up
	// Left means a gap in the query sequence, from (row, col-1).
	Left

	// Absent only appears in the row-wise views of a matrix,
	// marking cells outside of the error band.
	Absent Directions = 1 << 7
)

// Terminator is the empty set, a traceback stops here.
const Terminator Directions = 0

// Has tells whether all directions of d2 are in d.
func (d Directions) Has(d2 Directions) bool {
	return d&d2 == d2
}

// Pick chooses one direction, in the priority of up, left and diagonal.
// Terminator is returned for the empty set.
func (d Directions) Pick() Directions {
	switch {
	case d&Up > 0:
		return Up
	case d&Left > 0:
		return Left
	case d&Diagonal > 0:
		return Diagonal
	}
	return Terminator
}

// String returns a compact notation: N for Terminator,
// and a combination of D (diagonal), u (up) and l (left).
func (d Directions) String() string {
	if d == Absent {
		return "-"
	}
	if d == Terminator {
		return "N"
	}
	b := make([]byte, 0, 3)
	if d&Diagonal > 0 {
		b = append(b, 'D')
	}
	if d&Up > 0 {
		b = append(b, 'u')
	}
	if d&Left > 0 {
		b = append(b, 'l')
	}
	return string(b)
}

// Arrow returns an arrow for a single direction, for printing matrices.
func (d Directions) Arrow() string {
	switch d.Pick() {
	case Diagonal:
		return "↘︎"
	case Up:
		return "↓"
	case Left:
		return "→"
	}
	if d == Absent {
		return "■"
	}
	return "×"
}
