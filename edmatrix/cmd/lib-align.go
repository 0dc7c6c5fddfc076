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

package cmd

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/rdleal/intervalst/interval"
	"github.com/shenwei356/edmatrix/edmatrix/align"
	"github.com/shenwei356/edmatrix/edmatrix/matrix"
	"github.com/shenwei356/edmatrix/edmatrix/util"
	"github.com/twotwotwo/sorts"
	"gonum.org/v1/gonum/mat"
)

// PairResult is the alignment of a query against a target.
type PairResult struct {
	QueryIdx, TargetIdx int

	Found bool
	Dist  int

	// 0-based, End is exclusive
	QBegin, QEnd int
	TBegin, TEnd int

	Alignment *align.Alignment
}

// Hit is an approximate occurrence of a pattern in a target.
type Hit struct {
	Begin, End int // 0-based, End is exclusive
	Dist       int
	Strand     byte
}

// MatrixDump holds row-major views of the matrices of a pair.
type MatrixDump struct {
	Policy matrix.Policy
	Scores [][]int
	Traces [][]matrix.Directions
	Dense  *mat.Dense

	Result *PairResult
}

// absent cells in MatrixDump.Scores
const absentScore = 1 << 30

// pairAligner hides the word type of the matrices.
type pairAligner interface {
	Align(target, query []byte) (*PairResult, error)
	Search(target, pattern []byte, strand byte, hits []*Hit) ([]*Hit, error)
	Dump(target, query []byte) (*MatrixDump, error)
}

// wordSizes are the supported word sizes of matrices.
var wordSizes = []int{8, 16, 32, 64}

// newPairAligner returns a pairAligner using words of the given size in bits.
// The reference aligner is also run to verify every result when verify is true.
func newPairAligner(wordSize int, opt align.EditDistanceOptions, verify bool) (pairAligner, error) {
	opt.TraceMatrix = true

	switch wordSize {
	case 8:
		return newEDAligner[uint8](opt, verify), nil
	case 16:
		return newEDAligner[uint16](opt, verify), nil
	case 32:
		return newEDAligner[uint32](opt, verify), nil
	case 64:
		return newEDAligner[uint64](opt, verify), nil
	}
	return nil, fmt.Errorf("unsupported word size: %d, available: %v", wordSize, wordSizes)
}

// poolPairAligner returns a pool of pairAligners, one for each goroutine.
func poolPairAligner(wordSize int, opt align.EditDistanceOptions, verify bool) (*sync.Pool, error) {
	if _, err := newPairAligner(wordSize, opt, verify); err != nil {
		return nil, err
	}
	return &sync.Pool{New: func() interface{} {
		pa, _ := newPairAligner(wordSize, opt, verify)
		return pa
	}}, nil
}

type edAligner[W matrix.Word] struct {
	opt align.EditDistanceOptions
	ed  *align.EditDistance[W]
	dp  *align.Aligner // nil for no verification
}

func newEDAligner[W matrix.Word](opt align.EditDistanceOptions, verify bool) *edAligner[W] {
	a := &edAligner[W]{opt: opt}
	a.ed = align.NewEditDistance[W](&a.opt)
	if verify {
		a.dp = align.NewAligner(&align.AlignOptions{SemiGlobal: opt.SemiGlobal})
	}
	return a
}

func (a *edAligner[W]) Align(target, query []byte) (*PairResult, error) {
	a.ed.Options.ScoreMatrix = false
	r := a.ed.Align(target, query)

	if err := a.verify(target, query, r); err != nil {
		return nil, err
	}

	pr := &PairResult{Found: r.Found}
	if !r.Found {
		return pr, nil
	}
	pr.Dist = r.Distance()

	it, err := r.TracePath()
	if err != nil {
		return nil, err
	}
	pr.Alignment, err = align.BuildAlignment(target, query, it)
	if err != nil {
		return nil, errors.Wrap(err, "build alignment")
	}
	pr.QBegin, pr.QEnd = pr.Alignment.QueryBegin, pr.Alignment.QueryEnd
	pr.TBegin, pr.TEnd = pr.Alignment.DatabaseBegin, pr.Alignment.DatabaseEnd

	return pr, nil
}

// verify compares the result with the one of the full dynamic programming.
func (a *edAligner[W]) verify(target, query []byte, r *align.EditDistanceResult[W]) error {
	if a.dp == nil {
		return nil
	}

	dp := a.dp.Align(target, query)
	defer align.RecycleAlignResult(dp)

	k := a.opt.MaxErrors
	found := k < 0 || -dp.Score <= k
	if r.Found != found {
		return fmt.Errorf("verification failed for %s and %s: found: %v, expected: %v",
			target, query, r.Found, found)
	}
	if !found {
		return nil
	}
	if r.Score != dp.Score || r.BackCol != dp.BackCol || r.FrontCol != dp.FrontCol {
		return fmt.Errorf("verification failed for %s and %s: score %d [%d, %d], expected: %d [%d, %d]",
			target, query, r.Score, r.FrontCol, r.BackCol, dp.Score, dp.FrontCol, dp.BackCol)
	}
	return nil
}

func (a *edAligner[W]) Search(target, pattern []byte, strand byte, hits []*Hit) ([]*Hit, error) {
	a.ed.Options.ScoreMatrix = true
	r := a.ed.Align(target, pattern)
	if !r.Found {
		return hits, nil
	}

	m := len(pattern)
	k := a.opt.MaxErrors
	var score int
	var ok bool
	var err error
	var it *matrix.PathIterator[W]
	for col := 1; col <= len(target); col++ {
		score, ok, err = r.Scores.At(m, col)
		if err != nil {
			return hits, err
		}
		if !ok || (k >= 0 && -score > k) {
			continue
		}

		it, err = r.Traces.TracePath(m, col)
		if err != nil {
			return hits, err
		}
		for {
			if _, ok = it.Next(); !ok {
				break
			}
		}
		if err = it.Err(); err != nil {
			return hits, err
		}
		_, begin := it.Coordinate()

		hits = append(hits, &Hit{Begin: begin, End: col, Dist: -score, Strand: strand})
	}
	return hits, nil
}

func (a *edAligner[W]) Dump(target, query []byte) (*MatrixDump, error) {
	a.ed.Options.ScoreMatrix = true
	r := a.ed.Align(target, query)

	d := &MatrixDump{
		Policy: r.Policy,
		Scores: r.Scores.RowWise(absentScore),
		Traces: r.Traces.RowWise(),
		Dense:  r.Scores.Dense(),
	}

	a.ed.Options.ScoreMatrix = false
	var err error
	d.Result, err = a.Align(target, query)
	return d, err
}

// ------------------------------------------------------------------

// Hits is a list of hits, sorted by distances and then positions.
type Hits []*Hit

func (s Hits) Len() int { return len(s) }
func (s Hits) Less(i, j int) bool {
	if s[i].Dist != s[j].Dist {
		return s[i].Dist < s[j].Dist
	}
	if s[i].Begin != s[j].Begin {
		return s[i].Begin < s[j].Begin
	}
	if s[i].End != s[j].End {
		return s[i].End < s[j].End
	}
	return s[i].Strand < s[j].Strand
}
func (s Hits) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

// mergeHits keeps the best of overlapping hits, i.e., the one with fewer errors.
// The returned hits are sorted by positions.
func mergeHits(hits []*Hit) ([]*Hit, error) {
	if len(hits) < 2 {
		return hits, nil
	}

	sorts.Quicksort(Hits(hits))

	cmpFn := func(x, y int) int { return x - y }
	itree := interval.NewSearchTree[*Hit, int](cmpFn)

	merged := make([]*Hit, 0, 8)
	for _, h := range hits {
		if h.Begin >= h.End { // aligned to no target base
			continue
		}
		// doubled coordinates, so one-base hits are not point intervals
		// and adjacent hits do not intersect.
		begin, end := h.Begin<<1, h.End<<1-1
		if _, ok := itree.AnyIntersection(begin, end); ok {
			continue
		}
		if err := itree.Insert(begin, end, h); err != nil {
			return nil, errors.Wrapf(err, "insert hit [%d, %d)", h.Begin, h.End)
		}
		merged = append(merged, h)
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].Begin < merged[j].Begin })
	return merged, nil
}

// uniqEnds returns the distinct end positions of hits and their minimum distances.
func uniqEnds(hits []*Hit) [][2]int {
	keys := make([]uint64, len(hits))
	for i, h := range hits {
		keys[i] = uint64(h.End)<<32 | uint64(h.Dist)
	}
	util.UniqUint64s(&keys)

	ends := make([][2]int, 0, len(keys))
	pre := -1
	var end int
	for _, key := range keys {
		end = int(key >> 32)
		if end == pre { // keys are sorted, the first one has the minimum distance
			continue
		}
		ends = append(ends, [2]int{end, int(key & 0xffffffff)})
		pre = end
	}
	return ends
}
