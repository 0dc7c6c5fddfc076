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
	"fmt"
)

// ErrOutOfRange means the coordinate is outside of the matrix.
var ErrOutOfRange = errors.New("matrix: coordinate out of range")

// ErrUnreachable means a traceback stepped onto a cell outside of the error band.
var ErrUnreachable = errors.New("matrix: traceback reached a cell outside of the band")

func checkRange(row, col, rows, cols int) error {
	if row < 0 || row >= rows || col < 0 || col >= cols {
		return fmt.Errorf("%w: (%d, %d) of a %d x %d matrix", ErrOutOfRange, row, col, rows, cols)
	}
	return nil
}
