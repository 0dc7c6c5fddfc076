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
	"image/color"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// scoreGrid shows a score matrix as a plotter.GridXYZ,
// columns for the target and rows for the query, row 0 on the top.
type scoreGrid struct {
	m *mat.Dense
}

func (g scoreGrid) Dims() (c, r int) {
	r, c = g.m.Dims()
	return c, r
}

func (g scoreGrid) Z(c, r int) float64 {
	rows, _ := g.m.Dims()
	return -g.m.At(rows-1-r, c) // number of errors
}

func (g scoreGrid) X(c int) float64 { return float64(c) }

func (g scoreGrid) Y(r int) float64 { return float64(r) }

// Min returns the minimum number of errors of present cells.
func (g scoreGrid) Min() float64 {
	min, _ := g.minMax()
	return min
}

// Max returns the maximum number of errors of present cells.
func (g scoreGrid) Max() float64 {
	_, max := g.minMax()
	return max
}

func (g scoreGrid) minMax() (float64, float64) {
	min, max := math.Inf(1), math.Inf(-1)
	c, r := g.Dims()
	var v float64
	for i := 0; i < c; i++ {
		for j := 0; j < r; j++ {
			v = g.Z(i, j)
			if math.IsNaN(v) {
				continue
			}
			min = math.Min(min, v)
			max = math.Max(max, v)
		}
	}
	if math.IsInf(min, 1) { // all cells are absent
		return 0, 1
	}
	if max == min {
		max = min + 1
	}
	return min, max
}

// plotScoreMatrix saves the heatmap of a score matrix,
// the format is decided by the extension of the file: png, svg, pdf, etc.
func plotScoreMatrix(m *mat.Dense, title string, file string) error {
	if m == nil {
		return errors.New("no matrix to plot")
	}
	g := scoreGrid{m: m}

	h := plotter.NewHeatMap(g, palette.Heat(16, 1))
	h.NaN = color.Gray{Y: 0xe0}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "target"
	p.Y.Label.Text = "query"
	p.Add(h)

	rows, cols := m.Dims()
	width := vg.Length(max(cols, 10))*0.4*vg.Centimeter + 2*vg.Centimeter
	height := vg.Length(max(rows, 10))*0.4*vg.Centimeter + 2*vg.Centimeter

	return errors.Wrap(p.Save(width, height, file), "save plot")
}
