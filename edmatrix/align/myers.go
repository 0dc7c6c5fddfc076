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
	"github.com/shenwei356/edmatrix/edmatrix/matrix"
)

// EditDistanceOptions contains the options of the bit-parallel edit distance.
type EditDistanceOptions struct {
	// SemiGlobal makes gaps at both ends of the database sequence free,
	// i.e., the query is searched in the database.
	SemiGlobal bool

	// MaxErrors is the maximum number of errors, negative values for no limit.
	// Cells exceeding it are pruned from the matrices.
	MaxErrors int

	// keep the score matrix in the result
	ScoreMatrix bool
	// keep the trace matrix in the result, needed for alignments
	TraceMatrix bool
}

// DefaultEditDistanceOptions is the default EditDistanceOptions.
var DefaultEditDistanceOptions = EditDistanceOptions{
	SemiGlobal: false,
	MaxErrors:  -1,

	ScoreMatrix: false,
	TraceMatrix: true,
}

// EditDistance computes unit-cost edit distances with the bit-vector
// algorithm of Myers, extended to queries spanning more than one word
// by Hyyrö, and optionally pruned with the cut-off of Ukkonen.
// The query is laid along the rows and the database along the columns.
//
// An EditDistance reuses its internal buffers and is not safe for
// concurrent use. Create one for each goroutine.
type EditDistance[W matrix.Word] struct {
	Options *EditDistanceOptions

	w int

	// reusable variables
	vp, vn, hp, hn, diag []W
	peq                  []W       // match masks of each query symbol, plus an all-zero one
	symbols              [256]int  // symbol -> offset in peq
	used                 []byte    // symbols set in the last query

	// state of the current computation
	bc        int  // number of blocks
	score     int  // errors of the last active cell
	mask      W    // the last active cell in block last
	last      int  // block of the last active cell
	lastMask  W    // the last row in the last block
	top       int  // number of blocks computed in the previous column
	hp0       W    // carry-in of the horizontal difference of row 0
	exhausted bool // no cell can be within the budget any more
}

// NewEditDistance returns an EditDistance with the given options.
// A nil options means DefaultEditDistanceOptions.
func NewEditDistance[W matrix.Word](options *EditDistanceOptions) *EditDistance[W] {
	if options == nil {
		opt := DefaultEditDistanceOptions
		options = &opt
	}
	ed := &EditDistance[W]{
		Options: options,
		w:       matrix.WordSize[W](),
		used:    make([]byte, 0, 16),
	}
	for i := range ed.symbols {
		ed.symbols[i] = -1
	}
	return ed
}

// EditDistanceResult is the result of EditDistance.Align.
type EditDistanceResult[W matrix.Word] struct {
	// Score is the negated number of errors, only valid when Found.
	Score int
	// Found is false when no alignment is within the error budget.
	Found bool

	// the last cell of the alignment, row for the query, column for the database.
	BackRow, BackCol int
	// the first cell of the alignment, only available with the trace matrix.
	FrontRow, FrontCol int

	Policy matrix.Policy

	Scores *matrix.ScoreMatrix[W] // nil if not saved
	Traces *matrix.TraceMatrix[W] // nil if not saved
}

// Distance returns the number of errors.
func (r *EditDistanceResult[W]) Distance() int {
	return -r.Score
}

// TracePath returns the traceback path of the alignment.
func (r *EditDistanceResult[W]) TracePath() (*matrix.PathIterator[W], error) {
	if r.Traces == nil {
		return nil, ErrNoTraceMatrix
	}
	if !r.Found {
		return nil, ErrNotFound
	}
	return r.Traces.TracePath(r.BackRow, r.BackCol)
}

// Align computes the edit distance between a database sequence and a query.
// Bytes are compared as they are, so the case should be unified before.
func (ed *EditDistance[W]) Align(database, query []byte) *EditDistanceResult[W] {
	opt := ed.Options
	m, n := len(query), len(database)
	k := opt.MaxErrors
	pruned := k >= 0

	r := &EditDistanceResult[W]{
		Policy: matrix.Policy{SemiGlobal: opt.SemiGlobal, MaxErrors: pruned},
	}
	if opt.ScoreMatrix {
		r.Scores = matrix.NewScoreMatrix[W](m+1, r.Policy)
		r.Scores.Reserve(n + 1)
	}
	if opt.TraceMatrix {
		r.Traces = matrix.NewTraceMatrix[W](m+1, r.Policy)
		r.Traces.Reserve(n + 1)
	}

	if m == 0 {
		ed.alignEmptyQuery(r, n)
		return r
	}

	ed.init(query)

	// best hit in the last row for semi-global alignment
	best, bestCol := -1, 0

	hit := !pruned || (ed.score <= k && ed.atLastRow())
	if hit && opt.SemiGlobal {
		best, bestCol = ed.score, 0
	}
	ed.addColumn(r)

	for j, c := range database {
		hit = ed.next(c)
		if hit && opt.SemiGlobal && (best < 0 || ed.score <= best) {
			best, bestCol = ed.score, j+1
		}
		ed.addColumn(r)
	}

	r.BackRow = m
	if opt.SemiGlobal {
		r.Found = best >= 0
		r.Score = -best
		r.BackCol = bestCol
	} else {
		r.Found = hit
		r.Score = -ed.score
		r.BackCol = n
	}
	if !r.Found {
		r.Score = 0
	}

	ed.front(r)
	return r
}

// alignEmptyQuery handles the matrices with a single row.
func (ed *EditDistance[W]) alignEmptyQuery(r *EditDistanceResult[W], n int) {
	k := ed.Options.MaxErrors
	for j := 0; j <= n; j++ {
		var maxRows int
		if k >= 0 && (ed.Options.SemiGlobal || j <= k) {
			maxRows = 1
		}
		if r.Scores != nil {
			r.Scores.AddColumn(nil, nil, maxRows)
		}
		if r.Traces != nil {
			r.Traces.AddColumn(nil, nil, nil, maxRows)
		}
	}

	r.BackRow, r.BackCol = 0, n
	if ed.Options.SemiGlobal {
		r.Found = true
	} else {
		r.Found = k < 0 || n <= k
		if r.Found {
			r.Score = -n
		}
	}
	ed.front(r)
}

// front walks the trace matrix to find the first cell of the alignment.
func (ed *EditDistance[W]) front(r *EditDistanceResult[W]) {
	if r.Traces == nil || !r.Found {
		return
	}
	it, err := r.Traces.TracePath(r.BackRow, r.BackCol)
	if err != nil {
		return
	}
	for {
		if _, ok := it.Next(); !ok {
			break
		}
	}
	r.FrontRow, r.FrontCol = it.Coordinate()
}

// init prepares the match masks and column 0.
func (ed *EditDistance[W]) init(query []byte) {
	w := ed.w
	m := len(query)
	bc := (m - 1 + w) / w
	ed.bc = bc

	// match masks
	for _, c := range ed.used {
		ed.symbols[c] = -1
	}
	ed.used = ed.used[:0]
	for _, c := range query {
		if ed.symbols[c] < 0 {
			ed.symbols[c] = len(ed.used) * bc
			ed.used = append(ed.used, c)
		}
	}
	ed.peq = resize(ed.peq, (len(ed.used)+1)*bc)
	for i := range ed.peq {
		ed.peq[i] = 0
	}
	for j, c := range query {
		ed.peq[ed.symbols[c]+j/w] |= W(1) << (j % w)
	}

	// column 0
	ed.vp = resize(ed.vp, bc)
	ed.vn = resize(ed.vn, bc)
	ed.hp = resize(ed.hp, bc)
	ed.hn = resize(ed.hn, bc)
	ed.diag = resize(ed.diag, bc)
	for i := 0; i < bc; i++ {
		ed.vp[i] = ^W(0)
		ed.vn[i], ed.hp[i], ed.hn[i], ed.diag[i] = 0, 0, 0, 0
	}

	if ed.Options.SemiGlobal {
		ed.hp0 = 0
	} else {
		ed.hp0 = 1
	}
	ed.exhausted = false
	ed.top = bc

	ed.score = m
	ed.mask = W(1) << ((m - 1) % w)
	ed.last = bc - 1
	ed.lastMask = ed.mask
	if k := ed.Options.MaxErrors; k >= 0 {
		lm := min(k, m-1)
		ed.mask = W(1) << (lm % w)
		ed.last = min(lm/w, bc-1)
		ed.score = lm + 1
	}
}

func (ed *EditDistance[W]) atLastRow() bool {
	return ed.mask == ed.lastMask && ed.last == ed.bc-1
}

// maxRows returns the band height of the current column.
func (ed *EditDistance[W]) maxRows() int {
	if ed.exhausted {
		return 0
	}
	return matrix.MaxRows(ed.mask, ed.last, ed.score, ed.Options.MaxErrors)
}

func (ed *EditDistance[W]) addColumn(r *EditDistanceResult[W]) {
	var maxRows int
	nb := ed.bc
	if ed.Options.MaxErrors >= 0 {
		maxRows = ed.maxRows()
		// only blocks covering rows 1..maxRows-1
		if maxRows <= 1 {
			nb = 0
		} else {
			nb = min(nb, (maxRows-2)/ed.w+1)
		}
	}
	if r.Scores != nil {
		r.Scores.AddColumn(ed.vp[:nb], ed.vn[:nb], maxRows)
	}
	if r.Traces != nil {
		r.Traces.AddColumn(ed.hp[:nb], ed.diag[:nb], ed.vp[:nb], maxRows)
	}
}

type carries[W matrix.Word] struct {
	d0, hp, hn W
}

// compute advances block i by one column, with the carries from block i-1.
func (ed *EditDistance[W]) compute(eq W, i int, c *carries[W]) {
	vp, vn := ed.vp[i], ed.vn[i]

	x := eq | vn
	t := vp + (x & vp) + c.d0
	d0 := (t ^ vp) | x
	hn := vp & d0
	hp := vn | ^(vp | d0)

	if c.d0 != 0 {
		c.d0 = bool2word[W](t <= vp)
	} else {
		c.d0 = bool2word[W](t < vp)
	}

	x = hp<<1 | c.hp
	ed.vn[i] = x & d0
	ed.vp[i] = hn<<1 | ^(x | d0) | c.hn

	c.hp = hp >> (ed.w - 1)
	c.hn = hn >> (ed.w - 1)

	ed.hp[i], ed.hn[i] = hp, hn
	ed.diag[i] = ^(eq ^ d0)
}

// advance updates the score of the last active cell by the difference marked in p or n.
func (ed *EditDistance[W]) advance(p, n, mask W) {
	if p&mask != 0 {
		ed.score++
	} else if n&mask != 0 {
		ed.score--
	}
}

// next computes the column of the database symbol c,
// and tells whether the last row is within the budget.
func (ed *EditDistance[W]) next(c byte) bool {
	if ed.exhausted {
		return false
	}

	eq := ed.peq[len(ed.used)*ed.bc:] // not in the query
	if i := ed.symbols[c]; i >= 0 {
		eq = ed.peq[i:]
	}

	w := ed.w
	carry := carries[W]{hp: ed.hp0}
	for i := 0; i <= ed.last; i++ {
		ed.compute(eq[i], i, &carry)
	}
	ed.advance(ed.hp[ed.last], ed.hn[ed.last], ed.mask)

	k := ed.Options.MaxErrors
	if k < 0 {
		return true
	}

	// the last active cell might move to the next block
	top := ed.last + 1
	if ed.mask>>(w-1) != 0 && top < ed.bc {
		if top >= ed.top { // not computed in the previous column
			ed.vp[top], ed.vn[top] = ^W(0), 0
		}
		ed.compute(eq[top], top, &carry)
		top++
	}
	ed.top = top

	for ed.score > k {
		ed.advance(ed.vn[ed.last], ed.vp[ed.last], ed.mask)
		ed.mask >>= 1
		if ed.mask != 0 {
			continue
		}
		if ed.last == 0 {
			if !ed.Options.SemiGlobal { // even row 0 exceeds the budget
				ed.exhausted = true
				return false
			}
			break // row 0 is free in semi-global alignment
		}
		ed.last--
		ed.mask = W(1) << (w - 1)
	}

	if ed.atLastRow() {
		return true
	}

	// one row below the last active cell
	if ed.mask == 0 {
		ed.mask = 1
	} else {
		ed.mask <<= 1
		if ed.mask == 0 {
			ed.mask = 1
			ed.last++
		}
	}
	ed.advance(ed.vp[ed.last], ed.vn[ed.last], ed.mask)
	return false
}

func bool2word[W matrix.Word](b bool) W {
	if b {
		return 1
	}
	return 0
}

func resize[W matrix.Word](s []W, n int) []W {
	if n <= cap(s) {
		return s[:n]
	}
	return make([]W, n)
}
