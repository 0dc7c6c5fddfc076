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
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// global trace matrix of the database ACGTACGTA (columns)
// and the query AACCGGTAAACCGGTTA (rows)
var pathColumns = []traceColumn{
	{left: []uint8{0b0000_0000, 0b0000_0000, 0b0000_0000}, diagonal: []uint8{0b0000_0000, 0b0000_0000, 0b0000_0000}, up: []uint8{0b1111_1111, 0b1111_1111, 0b0000_0001}},
	{left: []uint8{0b0000_0000, 0b0000_0000, 0b0000_0000}, diagonal: []uint8{0b1000_0011, 0b0000_0011, 0b0000_0001}, up: []uint8{0b1111_1110, 0b1111_1111, 0b0000_0001}},
	{left: []uint8{0b0000_0001, 0b0000_0000, 0b0000_0000}, diagonal: []uint8{0b0000_1110, 0b0000_1100, 0b0000_0000}, up: []uint8{0b1111_1000, 0b1111_1111, 0b0000_0001}},
	{left: []uint8{0b0000_0111, 0b0000_0000, 0b0000_0000}, diagonal: []uint8{0b0011_1110, 0b0011_0000, 0b0000_0000}, up: []uint8{0b1110_0000, 0b1111_1111, 0b0000_0001}},
	{left: []uint8{0b0001_1111, 0b0000_0000, 0b0000_0000}, diagonal: []uint8{0b0111_1110, 0b1100_0000, 0b0000_0000}, up: []uint8{0b1000_0000, 0b1111_1111, 0b0000_0001}},
	{left: []uint8{0b0111_1101, 0b0000_0000, 0b0000_0000}, diagonal: []uint8{0b1111_1111, 0b0000_0011, 0b0000_0001}, up: []uint8{0b0000_0100, 0b1111_1111, 0b0000_0001}},
	{left: []uint8{0b1111_0011, 0b0000_0000, 0b0000_0000}, diagonal: []uint8{0b0111_1100, 0b0000_1111, 0b0000_0000}, up: []uint8{0b0001_1000, 0b1111_1010, 0b0000_0001}},
	{left: []uint8{0b1100_0111, 0b0000_0101, 0b0000_0000}, diagonal: []uint8{0b0111_1000, 0b0011_1111, 0b0000_0000}, up: []uint8{0b0110_0000, 0b1110_0100, 0b0000_0001}},
	{left: []uint8{0b1001_1111, 0b0001_1011, 0b0000_0000}, diagonal: []uint8{0b0111_1000, 0b1111_1111, 0b0000_0000}, up: []uint8{0b1000_0000, 0b1000_1000, 0b0000_0001}},
	{left: []uint8{0b0111_1111, 0b0111_0100, 0b0000_0000}, diagonal: []uint8{0b1111_1011, 0b1111_1111, 0b0000_0001}, up: []uint8{0b0000_0000, 0b0001_0101, 0b0000_0000}},
}

var pathMatrix = []string{
	"N  l  l  l  l  l   l   l   l   l",
	"u  D  l  l  l  Dl  l   l   l   Dl",
	"u  Du D  Dl Dl D   l   l   l   Dl",
	"u  u  D  Dl Dl Dul D   l   l   l",
	"u  u  Du D  Dl Dl  Du  D   Dl  Dl",
	"u  u  u  D  Dl Dl  Dul D   Dl  Dl",
	"u  u  u  Du D  Dl  Dl  Du  D   Dl",
	"u  u  u  u  D  Dl  Dl  Dul D   Dl",
	"u  Du u  u  u  D   l   l   ul  D",
	"u  Du u  u  u  Du  D   Dl  Dl  Du",
	"u  Du u  u  u  Du  Du  D   Dl  D",
	"u  u  Du u  u  u   D   Dul D   Dul",
	"u  u  Du u  u  u   Du  D   Dul D",
	"u  u  u  Du u  u   u   D   Dl  Dul",
	"u  u  u  Du u  u   u   Du  D   Dl",
	"u  u  u  u  Du u   u   u   D   Dl",
	"u  u  u  u  Du u   u   u   Du  D",
	"u  Du u  u  u  Du  u   u   u   D",
}

func pathString(path []Directions) string {
	var b strings.Builder
	for _, d := range path {
		b.WriteString(d.String())
	}
	return b.String()
}

func TestTracePath(t *testing.T) {
	m := buildTraceMatrix(18, Policy{}, pathColumns)
	require.Equal(t, normalizeTraceRows(pathMatrix), formatTraceTable(m.RowWise()))

	tests := []struct {
		row, col int
		path     string
	}{
		{0, 0, ""},
		{1, 1, "D"},
		{0, 9, "lllllllll"},
		{17, 0, "uuuuuuuuuuuuuuuuu"},
		{1, 2, "lD"},
		{2, 1, "uD"},
		{7, 9, "lDuDuDDlllD"},
		{10, 9, "DllDDDuDuDuD"},
		{11, 9, "uDllDDDuDuDuD"},
		{17, 9, "DuDuDuDuuDDuDuDuD"},
	}
	for i, test := range tests {
		path, err := m.Path(test.row, test.col)
		if err != nil {
			t.Errorf("#%d, (%d, %d): %s", i, test.row, test.col, err)
			continue
		}
		if s := pathString(path); s != test.path {
			t.Errorf("#%d, (%d, %d): expected %s, got %s", i, test.row, test.col, test.path, s)
		}

		// every path goes back to the origin in a global matrix
		var ups, lefts, diagonals int
		for _, d := range path {
			switch d {
			case Up:
				ups++
			case Left:
				lefts++
			case Diagonal:
				diagonals++
			}
		}
		if ups+diagonals != test.row || lefts+diagonals != test.col {
			t.Errorf("#%d, (%d, %d): path %s does not reach the origin", i, test.row, test.col, pathString(path))
		}
	}
}

func TestTracePathIterator(t *testing.T) {
	m := buildTraceMatrix(18, Policy{}, pathColumns)

	it, err := m.TracePath(2, 1)
	require.NoError(t, err)

	d, ok := it.Next()
	assert.True(t, ok)
	assert.Equal(t, Up, d)
	r, c := it.Coordinate()
	assert.Equal(t, [2]int{1, 1}, [2]int{r, c})

	d, ok = it.Next()
	assert.True(t, ok)
	assert.Equal(t, Diagonal, d)

	_, ok = it.Next()
	assert.False(t, ok)
	_, ok = it.Next() // exhausted iterators stay exhausted
	assert.False(t, ok)
	r, c = it.Coordinate()
	assert.Equal(t, [2]int{0, 0}, [2]int{r, c})
	assert.NoError(t, it.Err())
}

func TestTracePathOutOfRange(t *testing.T) {
	m := buildTraceMatrix(18, Policy{}, pathColumns)
	require.Equal(t, 10, m.Cols())
	require.Equal(t, 18, m.Rows())

	for i, rc := range [][2]int{{0, 10}, {18, 0}, {18, 9}, {17, 10}} {
		it, err := m.TracePath(rc[0], rc[1])
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("#%d, (%d, %d): expected ErrOutOfRange, got %v", i, rc[0], rc[1], err)
		}
		if it != nil {
			t.Errorf("#%d, (%d, %d): unexpected iterator", i, rc[0], rc[1])
		}
	}
}

func TestTracePathSemiGlobal(t *testing.T) {
	c := traceCases[8] // semi_global/single_word
	require.Equal(t, "semi_global/single_word", c.name)
	m := buildTraceMatrix(c.rows, c.policy, c.cols)

	// row 0 terminates anywhere
	for col := 0; col < m.Cols(); col++ {
		path, err := m.Path(0, col)
		require.NoError(t, err)
		assert.Empty(t, path)
	}

	it, err := m.TracePath(8, 9)
	require.NoError(t, err)
	n := 0
	for {
		if _, ok := it.Next(); !ok {
			break
		}
		n++
	}
	require.NoError(t, it.Err())
	r, _ := it.Coordinate()
	assert.Equal(t, 0, r)
	assert.Greater(t, n, 0)
}

func TestTracePathUnreachable(t *testing.T) {
	m := NewTraceMatrix[uint8](4, Policy{MaxErrors: true})
	m.AddColumn([]uint8{0}, []uint8{0}, []uint8{0b0000_0111}, 2)
	m.AddColumn([]uint8{0}, []uint8{0b0000_0001}, []uint8{0b0000_0110}, 4)

	// (3, 1) -> up (2, 1) -> up (1, 1) -> diagonal (0, 0)
	path, err := m.Path(3, 1)
	require.NoError(t, err)
	assert.Equal(t, "uuD", pathString(path))

	// column 0 only has 2 rows, (3, 1) -> left (3, 0) is absent
	m2 := NewTraceMatrix[uint8](4, Policy{MaxErrors: true})
	m2.AddColumn([]uint8{0}, []uint8{0}, []uint8{0b0000_0111}, 2)
	m2.AddColumn([]uint8{0b0000_0100}, []uint8{0}, []uint8{0}, 4)
	path, err = m2.Path(3, 1)
	assert.True(t, errors.Is(err, ErrUnreachable), "%v", err)
	assert.Equal(t, "l", pathString(path))
}

func BenchmarkTracePath(b *testing.B) {
	m := buildTraceMatrix(18, Policy{}, pathColumns)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		it, _ := m.TracePath(17, 9)
		for {
			if _, ok := it.Next(); !ok {
				break
			}
		}
	}
}
