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
	"sync"

	"github.com/biogo/hts/sam"
	"github.com/shenwei356/edmatrix/edmatrix/matrix"
	"github.com/shenwei356/edmatrix/edmatrix/util"
)

// PathWalker walks a traceback path backward, from the last cell of an alignment.
type PathWalker interface {
	Next() (matrix.Directions, bool)
	Coordinate() (row, col int)
	Err() error
}

// Alignment is the aligned form of a database sequence and a query.
//
//	ACGTAC-G-TA  Database
//	|    | | |
//	A---ACCGGT-  Query
type Alignment struct {
	Len        int // length of alignment
	Matches    int // number of matches
	Mismatches int // number of mismatches
	Gaps       int // number of gaps
	GapRegions int // number of gap regions

	// coordinates of the first and the last cells,
	// Begin is 0-based and End is exclusive.
	DatabaseBegin, DatabaseEnd int
	QueryBegin, QueryEnd       int

	Database []byte // gapped database sequence
	Markers  []byte // "|" for match, " " for others
	Query    []byte // gapped query

	Cigar sam.Cigar // the database is the reference
}

// Reset resets all the values.
func (a *Alignment) Reset() {
	a.Len = 0
	a.Matches = 0
	a.Mismatches = 0
	a.Gaps = 0
	a.GapRegions = 0
	a.DatabaseBegin, a.DatabaseEnd = 0, 0
	a.QueryBegin, a.QueryEnd = 0, 0
	a.Database = a.Database[:0]
	a.Markers = a.Markers[:0]
	a.Query = a.Query[:0]
	a.Cigar = a.Cigar[:0]
}

var poolAlignment = &sync.Pool{New: func() interface{} {
	return &Alignment{
		Database: make([]byte, 0, 1024),
		Markers:  make([]byte, 0, 1024),
		Query:    make([]byte, 0, 1024),
		Cigar:    make(sam.Cigar, 0, 64),
	}
}}

// RecycleAlignment recycles an Alignment.
func RecycleAlignment(a *Alignment) {
	if a != nil {
		poolAlignment.Put(a)
	}
}

// Identity returns the percentage of matches in the alignment.
func (a *Alignment) Identity() float64 {
	if a.Len == 0 {
		return 0
	}
	return float64(a.Matches) / float64(a.Len) * 100
}

// BuildAlignment replays a traceback path over the two sequences.
// The database sequence lies along the columns and the query along the rows.
// Please remember to recycle the result after using by calling RecycleAlignment.
func BuildAlignment(database, query []byte, path PathWalker) (*Alignment, error) {
	a := poolAlignment.Get().(*Alignment)
	a.Reset()

	row, col := path.Coordinate()
	a.QueryEnd, a.DatabaseEnd = row, col

	var d, pre matrix.Directions
	var ok bool
	var op, preOp sam.CigarOpType
	var opLen int
	for {
		d, ok = path.Next()
		if !ok {
			break
		}
		a.Len++

		switch d {
		case matrix.Diagonal:
			a.Database = append(a.Database, database[col-1])
			a.Query = append(a.Query, query[row-1])
			if database[col-1] == query[row-1] {
				a.Markers = append(a.Markers, '|')
				a.Matches++
				op = sam.CigarEqual
			} else {
				a.Markers = append(a.Markers, ' ')
				a.Mismatches++
				op = sam.CigarMismatch
			}
			row--
			col--
		case matrix.Up:
			a.Database = append(a.Database, '-')
			a.Query = append(a.Query, query[row-1])
			a.Markers = append(a.Markers, ' ')
			a.Gaps++
			if pre != matrix.Up {
				a.GapRegions++
			}
			op = sam.CigarInsertion
			row--
		case matrix.Left:
			a.Database = append(a.Database, database[col-1])
			a.Query = append(a.Query, '-')
			a.Markers = append(a.Markers, ' ')
			a.Gaps++
			if pre != matrix.Left {
				a.GapRegions++
			}
			op = sam.CigarDeletion
			col--
		}
		pre = d

		if opLen > 0 && op == preOp {
			opLen++
			continue
		}
		if opLen > 0 {
			a.Cigar = append(a.Cigar, sam.NewCigarOp(preOp, opLen))
		}
		preOp, opLen = op, 1
	}
	if opLen > 0 {
		a.Cigar = append(a.Cigar, sam.NewCigarOp(preOp, opLen))
	}
	if err := path.Err(); err != nil {
		RecycleAlignment(a)
		return nil, err
	}

	a.QueryBegin, a.DatabaseBegin = path.Coordinate()

	util.Reverse(a.Database)
	util.Reverse(a.Markers)
	util.Reverse(a.Query)
	util.Reverse(a.Cigar)

	return a, nil
}
