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

package align

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/shenwei356/edmatrix/edmatrix/matrix"
	"github.com/shenwei356/edmatrix/edmatrix/util"
)

// Aligner computes unit-cost edit distances with the full dynamic
// programming matrix (Needleman-Wunsch). Every cell keeps all the
// directions it can be reached from, so the matrices are directly
// comparable to these of EditDistance.
//
// It is slow and memory-hungry, and mainly used for verification.
// An Aligner reuses its matrices and is not safe for concurrent use.
type Aligner struct {
	Options *AlignOptions

	// reusable variables
	scores []int               // score matrix, number of errors
	dirs   []matrix.Directions // direction matrix
	h, w   int                 // shape of the last computed matrices
	buf    bytes.Buffer        // only for print the matrix
}

// AlignOptions contains all alignment options.
type AlignOptions struct {
	// free end gaps for the database sequence
	SemiGlobal bool

	// save alignment strings
	// AT-GTTAT
	// || | ||
	// ATCG-TAC
	SaveAlignments bool
	// save matrix in the bytes buffer
	SaveMatrix bool
}

// DefaultAlignOptions is the default AlignOptions.
var DefaultAlignOptions = AlignOptions{
	SemiGlobal: false,

	SaveAlignments: false,
	SaveMatrix:     false,
}

// AlignResult holds the details of the alignment.
type AlignResult struct {
	Score   int // negated number of errors
	Len     int // length of alignment
	Matches int // number of matches
	Gaps    int // number of gaps

	BackRow, BackCol   int // the last cell
	FrontRow, FrontCol int // the first cell

	AlignA []byte // Alignment string for the database sequence
	AlignM []byte // Matching symbols, "|" for match, " " for mismatch
	AlignB []byte // Alignment string for the query

	Matrix []byte // Matrix text, note that it's not thread-safe, only for debugging.
}

// Reset resets all the values.
func (r *AlignResult) Reset() {
	r.Score = 0
	r.Len = 0
	r.Matches = 0
	r.Gaps = 0
	r.BackRow, r.BackCol = 0, 0
	r.FrontRow, r.FrontCol = 0, 0

	if r.AlignA != nil {
		r.AlignA = r.AlignA[:0]
	}
	if r.AlignM != nil {
		r.AlignM = r.AlignM[:0]
	}
	if r.AlignB != nil {
		r.AlignB = r.AlignB[:0]
	}
	r.Matrix = nil
}

var poolAlignResult = &sync.Pool{New: func() interface{} {
	r := &AlignResult{}
	// they are inilialized the might not be used when SaveAlignments is false.
	r.AlignA = make([]byte, 0, 1024)
	r.AlignB = make([]byte, 0, 1024)
	r.AlignM = make([]byte, 0, 1024)
	return r
}}

// NewAligner returns an aligner.
func NewAligner(options *AlignOptions) *Aligner {
	alg := &Aligner{
		Options: options,
		scores:  make([]int, 1<<16),
		dirs:    make([]matrix.Directions, 1<<16),
	}
	return alg
}

// RecycleAlignResult recycles an alignment result.
func RecycleAlignResult(r *AlignResult) {
	poolAlignResult.Put(r)
}

// Rows returns the number of rows of the last computed matrices.
func (alg *Aligner) Rows() int { return alg.h }

// Cols returns the number of columns of the last computed matrices.
func (alg *Aligner) Cols() int { return alg.w }

// ScoreAt returns the score (negated number of errors) of a cell
// of the last computed matrix.
func (alg *Aligner) ScoreAt(row, col int) int {
	return -alg.scores[idx(row, col, alg.w)]
}

// DirectionsAt returns the traceback directions of a cell
// of the last computed matrix.
func (alg *Aligner) DirectionsAt(row, col int) matrix.Directions {
	return alg.dirs[idx(row, col, alg.w)]
}

// Align aligns a query (rows) to a database sequence (columns).
// Please remember to recycle the result after using
// by calling RecycleAlignResult.
func (alg *Aligner) Align(database, query []byte) *AlignResult {
	h := len(query) + 1    // height of the matrix
	w := len(database) + 1 // width of the matrix
	alg.h, alg.w = h, w

	// ---------------------------------------------------
	// initialize

	var i, j, k int

	n := h * w
	// use reusable matrices
	if n > len(alg.scores) {
		alg.scores = make([]int, n)
		alg.dirs = make([]matrix.Directions, n)
	}
	scores := alg.scores[:n]
	dirs := alg.dirs[:n]

	semi := alg.Options.SemiGlobal

	// topleft most cell
	scores[0] = 0
	dirs[0] = matrix.Terminator
	// the first column
	for i = 1; i < h; i++ {
		k = idx(i, 0, w)
		scores[k] = i
		dirs[k] = matrix.Up
	}
	// the first row
	for j = 1; j < w; j++ {
		k = idx(0, j, w)
		if semi {
			scores[k] = 0
			dirs[k] = matrix.Terminator
		} else {
			scores[k] = j
			dirs[k] = matrix.Left
		}
	}

	// ---------------------------------------------------
	// compute

	var min, sDiag, sUp, sLeft int
	var d matrix.Directions
	for i = 1; i < h; i++ {
		for j = 1; j < w; j++ {
			k = idx(i, j, w)

			sDiag = scores[idx(i-1, j-1, w)]
			if query[i-1] != database[j-1] {
				sDiag++
			}
			sUp = scores[idx(i-1, j, w)] + 1
			sLeft = scores[idx(i, j-1, w)] + 1

			min = sDiag
			if sUp < min {
				min = sUp
			}
			if sLeft < min {
				min = sLeft
			}

			d = matrix.Terminator
			if sDiag == min {
				d |= matrix.Diagonal
			}
			if sUp == min {
				d |= matrix.Up
			}
			if sLeft == min {
				d |= matrix.Left
			}

			dirs[k] = d
			scores[k] = min
		}
	}

	// ---------------------------------------------------
	// traceback

	r := poolAlignResult.Get().(*AlignResult)
	r.Reset()

	if alg.Options.SaveMatrix {
		r.Matrix = alg.printMatrix(database, query, scores, dirs)
	}

	i = h - 1
	j = w - 1
	if semi { // the best cell in the last row, the rightmost one for ties
		for c := w - 2; c >= 0; c-- {
			if scores[idx(i, c, w)] < scores[idx(i, j, w)] {
				j = c
			}
		}
	}
	r.BackRow, r.BackCol = i, j
	r.Score = -scores[idx(i, j, w)]

	save := alg.Options.SaveAlignments
	for d = dirs[idx(i, j, w)].Pick(); d != matrix.Terminator; d = dirs[idx(i, j, w)].Pick() {
		r.Len++

		switch d {
		case matrix.Diagonal:
			if save {
				r.AlignA = append(r.AlignA, database[j-1])
				r.AlignB = append(r.AlignB, query[i-1])
			}
			if database[j-1] == query[i-1] {
				r.Matches++
				if save {
					r.AlignM = append(r.AlignM, '|')
				}
			} else if save {
				r.AlignM = append(r.AlignM, ' ')
			}

			i--
			j--
		case matrix.Up:
			if save {
				r.AlignA = append(r.AlignA, '-')
				r.AlignB = append(r.AlignB, query[i-1])
				r.AlignM = append(r.AlignM, ' ')
			}

			r.Gaps++
			i--
		case matrix.Left:
			if save {
				r.AlignA = append(r.AlignA, database[j-1])
				r.AlignB = append(r.AlignB, '-')
				r.AlignM = append(r.AlignM, ' ')
			}

			r.Gaps++
			j--
		}
	}
	r.FrontRow, r.FrontCol = i, j

	if save {
		util.Reverse(r.AlignA)
		util.Reverse(r.AlignB)
		util.Reverse(r.AlignM)
	}

	return r
}

func (alg *Aligner) printMatrix(database, query []byte, scores []int, dirs []matrix.Directions) []byte {
	h := len(query) + 1
	w := len(database) + 1
	var i, j, k int
	buf := &alg.buf

	buf.Reset()

	// database
	buf.WriteString(fmt.Sprintf("%c  %s%-3s", ' ', " ", " "))
	for j = 0; j < len(database); j++ {
		buf.WriteString(fmt.Sprintf("  %s%3c", " ", database[j]))
	}
	buf.WriteByte('\n')

	for i = 0; i < h; i++ {
		if i == 0 {
			buf.WriteString(fmt.Sprintf("%c", ' '))
		} else {
			buf.WriteString(fmt.Sprintf("%c", query[i-1]))
		}

		for j = 0; j < w; j++ {
			k = idx(i, j, w)
			buf.WriteString(fmt.Sprintf("  %s%3d", dirs[k].Arrow(), -scores[k]))
		}
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

func idx(i, j, w int) int {
	return (i * w) + j
}
