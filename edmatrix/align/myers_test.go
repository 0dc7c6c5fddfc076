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
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/shenwei356/edmatrix/edmatrix/matrix"
	"github.com/shenwei356/edmatrix/edmatrix/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// compareWithDP checks the matrices and the result of EditDistance
// against these of the full dynamic programming.
func compareWithDP[W matrix.Word](t *testing.T, ed *EditDistance[W], alg *Aligner, database, query []byte) bool {
	t.Helper()

	opt := ed.Options
	alg.Options.SemiGlobal = opt.SemiGlobal
	k := opt.MaxErrors

	r := ed.Align(database, query)
	dp := alg.Align(database, query)
	defer RecycleAlignResult(dp)

	tag := func() string {
		return fmt.Sprintf("w=%d, %s, k=%d, database=%s, query=%s",
			matrix.WordSize[W](), r.Policy, k, database, query)
	}

	m, n := len(query), len(database)
	for col := 0; col <= n; col++ {
		for row := 0; row <= m; row++ {
			expect := alg.ScoreAt(row, col)

			score, ok, err := r.Scores.At(row, col)
			if err != nil {
				t.Errorf("%s: unexpected error: %s", tag(), err)
				return false
			}
			if ok && score != expect {
				t.Errorf("%s: score of (%d, %d): expected %d, returned %d", tag(), row, col, expect, score)
				return false
			}
			if !ok && (k < 0 || -expect <= k) {
				t.Errorf("%s: cell (%d, %d) with %d errors is missing", tag(), row, col, -expect)
				return false
			}

			d, ok2, err := r.Traces.At(row, col)
			if err != nil {
				t.Errorf("%s: unexpected error: %s", tag(), err)
				return false
			}
			if ok2 != ok {
				t.Errorf("%s: presence of (%d, %d) differs in the two matrices", tag(), row, col)
				return false
			}
			if ok && d != alg.DirectionsAt(row, col) {
				t.Errorf("%s: directions of (%d, %d): expected %s, returned %s",
					tag(), row, col, alg.DirectionsAt(row, col), d)
				return false
			}
		}
	}

	found := k < 0 || -dp.Score <= k
	if r.Found != found {
		t.Errorf("%s: found: expected %v, returned %v", tag(), found, r.Found)
		return false
	}
	if !found {
		return true
	}
	if r.Score != dp.Score {
		t.Errorf("%s: score: expected %d, returned %d", tag(), dp.Score, r.Score)
		return false
	}
	if r.BackRow != dp.BackRow || r.BackCol != dp.BackCol {
		t.Errorf("%s: last cell: expected (%d, %d), returned (%d, %d)",
			tag(), dp.BackRow, dp.BackCol, r.BackRow, r.BackCol)
		return false
	}
	if r.FrontRow != dp.FrontRow || r.FrontCol != dp.FrontCol {
		t.Errorf("%s: first cell: expected (%d, %d), returned (%d, %d)",
			tag(), dp.FrontRow, dp.FrontCol, r.FrontRow, r.FrontCol)
		return false
	}
	return true
}

func randomPairs(r *rand.Rand, n int) [][2][]byte {
	pairs := make([][2][]byte, 0, n)
	var q, d []byte
	for i := 0; i < n; i++ {
		q = util.RandomSeq(r, r.Intn(150))
		switch i % 3 {
		case 0: // unrelated
			d = util.RandomSeq(r, r.Intn(150))
		case 1: // similar
			d = util.Mutate(r, q, 0.1)
		default: // embedded in a longer sequence
			d = append(util.RandomSeq(r, r.Intn(40)), util.Mutate(r, q, 0.05)...)
			d = append(d, util.RandomSeq(r, r.Intn(40))...)
		}
		pairs = append(pairs, [2][]byte{d, q})
	}
	return pairs
}

func testWithDP[W matrix.Word](t *testing.T, pairs [][2][]byte) {
	alg := NewAligner(&AlignOptions{})
	for _, semi := range []bool{false, true} {
		for _, k := range []int{-1, 0, 3, 10, 40} {
			ed := NewEditDistance[W](&EditDistanceOptions{
				SemiGlobal:  semi,
				MaxErrors:   k,
				ScoreMatrix: true,
				TraceMatrix: true,
			})
			for _, p := range pairs {
				if !compareWithDP(t, ed, alg, p[0], p[1]) {
					return
				}
			}
		}
	}
}

func TestEditDistanceWithDP(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	pairs := randomPairs(r, 300)
	pairs = append(pairs,
		[2][]byte{nil, nil},
		[2][]byte{[]byte("ACGT"), nil},
		[2][]byte{nil, []byte("ACGT")},
		[2][]byte{[]byte("A"), []byte("A")},
		[2][]byte{[]byte("A"), []byte("C")},
		[2][]byte{[]byte("ACGTACGTA"), []byte("AACCGGTAAACCGGTTA")},
		[2][]byte{[]byte("AAAAAAAAAAAAAAAA"), []byte("CCCCCCCCCCCCCCCCCCCC")},
	)

	t.Run("uint8", func(t *testing.T) { testWithDP[uint8](t, pairs) })
	t.Run("uint16", func(t *testing.T) { testWithDP[uint16](t, pairs) })
	t.Run("uint32", func(t *testing.T) { testWithDP[uint32](t, pairs) })
	t.Run("uint64", func(t *testing.T) { testWithDP[uint64](t, pairs) })
}

func TestEditDistanceFixture(t *testing.T) {
	database := []byte("ACGTACGTA")
	query := []byte("AACCGGTAAACCGGTTA")

	ed := NewEditDistance[uint8](nil)
	r := ed.Align(database, query)

	require.True(t, r.Found)
	require.Nil(t, r.Scores)
	require.NotNil(t, r.Traces)
	assert.Equal(t, -8, r.Score)
	assert.Equal(t, 8, r.Distance())
	assert.Equal(t, 17, r.BackRow)
	assert.Equal(t, 9, r.BackCol)
	assert.Equal(t, 0, r.FrontRow)
	assert.Equal(t, 0, r.FrontCol)

	path, err := r.Traces.Path(r.BackRow, r.BackCol)
	require.NoError(t, err)
	var s []byte
	for _, d := range path {
		s = append(s, d.String()...)
	}
	assert.Equal(t, "DuDuDuDuuDDuDuDuD", string(s))

	d, ok, err := r.Traces.At(3, 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, matrix.Diagonal|matrix.Up|matrix.Left, d)
}

func TestEditDistanceSemiGlobal(t *testing.T) {
	tests := []struct {
		database, query   string
		maxErrors         int
		found             bool
		score             int
		frontCol, backCol int
	}{
		{"TTTACGTTT", "ACGT", -1, true, 0, 3, 7},
		{"AACGTTACGA", "ACGA", -1, true, 0, 6, 10},
		{"AACGTTACGA", "ACGT", -1, true, 0, 1, 5},
		{"GGGGACTTGG", "ACGT", -1, true, -1, 4, 8},
		{"GGGGACTTGG", "ACGT", 1, true, -1, 4, 8},
		{"GGGGACTTGG", "ACGT", 0, false, 0, 0, 0},
		{"ACGT", "", 0, true, 0, 4, 4},
		{"", "ACG", -1, true, -3, 0, 0},
		{"", "ACG", 2, false, 0, 0, 0},
	}

	for i, test := range tests {
		ed := NewEditDistance[uint64](&EditDistanceOptions{
			SemiGlobal:  true,
			MaxErrors:   test.maxErrors,
			TraceMatrix: true,
		})
		r := ed.Align([]byte(test.database), []byte(test.query))
		if r.Found != test.found {
			t.Errorf("#%d, found: expected %v, returned %v", i, test.found, r.Found)
			continue
		}
		if !r.Found {
			if _, err := r.TracePath(); !errors.Is(err, ErrNotFound) {
				t.Errorf("#%d, ErrNotFound expected, returned %v", i, err)
			}
			continue
		}
		if r.Score != test.score {
			t.Errorf("#%d, score: expected %d, returned %d", i, test.score, r.Score)
		}
		if r.FrontCol != test.frontCol || r.BackCol != test.backCol {
			t.Errorf("#%d, columns: expected [%d, %d], returned [%d, %d]",
				i, test.frontCol, test.backCol, r.FrontCol, r.BackCol)
		}
		if r.FrontRow != 0 || r.BackRow != len(test.query) {
			t.Errorf("#%d, rows: expected [0, %d], returned [%d, %d]",
				i, len(test.query), r.FrontRow, r.BackRow)
		}
	}
}

func TestEditDistanceMaxErrors(t *testing.T) {
	database := []byte("AAAAAAAAAAAAAAAA")
	query := []byte("CCCCCCCCCCCCCCCCCCCC")

	ed := NewEditDistance[uint8](&EditDistanceOptions{
		MaxErrors:   2,
		ScoreMatrix: true,
		TraceMatrix: true,
	})
	r := ed.Align(database, query)
	require.False(t, r.Found)
	assert.Equal(t, 0, r.Score)
	assert.True(t, r.Policy.MaxErrors)

	_, err := r.TracePath()
	assert.ErrorIs(t, err, ErrNotFound)

	// pruned cells
	_, ok, err := r.Scores.At(len(query), len(database))
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = r.Traces.At(0, len(database))
	require.NoError(t, err)
	assert.False(t, ok)

	// the band of the first columns
	for col := 0; col <= 2; col++ {
		score, ok, err := r.Scores.At(0, col)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, -col, score)
	}
	assert.Equal(t, 3, r.Scores.Band(0))
	assert.Equal(t, 0, r.Scores.Band(len(database)))

	// the same sequences are within a larger budget
	ed.Options.MaxErrors = 20
	r = ed.Align(database, query)
	require.True(t, r.Found)
	assert.Equal(t, -20, r.Score)
}

func TestEditDistanceNoTraceMatrix(t *testing.T) {
	ed := NewEditDistance[uint32](&EditDistanceOptions{MaxErrors: -1})
	r := ed.Align([]byte("ACGT"), []byte("AGT"))
	require.True(t, r.Found)
	assert.Equal(t, -1, r.Score)
	assert.Nil(t, r.Scores)
	assert.Nil(t, r.Traces)

	_, err := r.TracePath()
	assert.ErrorIs(t, err, ErrNoTraceMatrix)
}

func TestEditDistanceReuse(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	ed := NewEditDistance[uint16](&EditDistanceOptions{MaxErrors: -1, ScoreMatrix: true})
	fresh := func(database, query []byte) int {
		return NewEditDistance[uint16](&EditDistanceOptions{MaxErrors: -1}).Align(database, query).Score
	}

	for i := 0; i < 50; i++ {
		q := util.RandomSeq(r, r.Intn(100))
		d := util.Mutate(r, q, 0.2)
		if s1, s2 := ed.Align(d, q).Score, fresh(d, q); s1 != s2 {
			t.Errorf("#%d, reused: %d, fresh: %d", i, s1, s2)
		}
	}
}

func BenchmarkEditDistance(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	query := util.RandomSeq(r, 1000)
	database := util.Mutate(r, query, 0.05)

	for _, k := range []int{-1, 100} {
		ed := NewEditDistance[uint64](&EditDistanceOptions{MaxErrors: k, TraceMatrix: true})
		b.Run(ed.Align(database, query).Policy.String(), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				ed.Align(database, query)
			}
		})
	}
}
