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
	"bufio"
	"fmt"
	"strings"

	"github.com/shenwei356/edmatrix/edmatrix/align"
	"github.com/spf13/cobra"
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Show the score and trace matrices of a pair of sequences",
	Long: `Show the score and trace matrices of a pair of sequences

Matrices:
  1. Score matrix: number of errors of each cell, "." for cells pruned by -k/--max-errors.
  2. Trace matrix: directions each cell can be reached from:
       D: diagonal, u: up, l: left, N: none, -: pruned.
     The traceback prefers up, then left, then diagonal.

The heatmap of the score matrix can be saved with -p/--plot.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		query := strings.ToUpper(getFlagString(cmd, "query"))
		target := strings.ToUpper(getFlagString(cmd, "target"))

		edOpt := align.EditDistanceOptions{
			SemiGlobal: getFlagBool(cmd, "semi-global"),
			MaxErrors:  getFlagInt(cmd, "max-errors"),
		}
		wordSize := getFlagPositiveInt(cmd, "word-size")
		outFile := getFlagString(cmd, "out-file")
		plotFile := getFlagString(cmd, "plot-file")
		if getFlagBool(cmd, "plot") && plotFile == "" {
			if isStdin(outFile) {
				plotFile = "edmatrix.png"
			} else {
				name, _, _ := filepathTrimExtension(outFile, nil)
				plotFile = name + ".png"
			}
		}

		pa, err := newPairAligner(wordSize, edOpt, true)
		checkError(err)

		d, err := pa.Dump([]byte(target), []byte(query))
		checkError(err)

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			w.Close()
		}()

		writeMatrixDump(outfh, d, []byte(target), []byte(query))

		if plotFile != "" {
			title := fmt.Sprintf("%s, %d x %d", d.Policy, len(query)+1, len(target)+1)
			checkError(plotScoreMatrix(d.Dense, title, plotFile))
			if opt.Verbose {
				log.Infof("heatmap saved to %s", plotFile)
			}
		}
	},
}

func writeMatrixDump(outfh *bufio.Writer, d *MatrixDump, target, query []byte) {
	fmt.Fprintf(outfh, "policy: %s\n", d.Policy)

	r := d.Result
	if r.Found {
		fmt.Fprintf(outfh, "distance: %d, query: [%d, %d], target: [%d, %d]\n",
			r.Dist, r.QBegin+1, r.QEnd, r.TBegin+1, r.TEnd)
	} else {
		fmt.Fprintf(outfh, "no alignment within the error budget\n")
	}

	header := func() {
		fmt.Fprintf(outfh, "%4s%4s", "", "")
		for _, c := range target {
			fmt.Fprintf(outfh, "%4c", c)
		}
		outfh.WriteByte('\n')
	}
	label := func(row int) byte {
		if row == 0 {
			return ' '
		}
		return query[row-1]
	}

	fmt.Fprintf(outfh, "\nscore matrix:\n")
	header()
	for i, row := range d.Scores {
		fmt.Fprintf(outfh, "%4c", label(i))
		for _, s := range row {
			if s == absentScore {
				fmt.Fprintf(outfh, "%4s", ".")
			} else {
				fmt.Fprintf(outfh, "%4d", -s)
			}
		}
		outfh.WriteByte('\n')
	}

	fmt.Fprintf(outfh, "\ntrace matrix:\n")
	header()
	for i, row := range d.Traces {
		fmt.Fprintf(outfh, "%4c", label(i))
		for _, t := range row {
			fmt.Fprintf(outfh, "%4s", t)
		}
		outfh.WriteByte('\n')
	}

	if r.Found {
		a := r.Alignment
		fmt.Fprintf(outfh, "\nalignment (cigar: %s, identity: %.2f%%):\n", a.Cigar, a.Identity())
		fmt.Fprintf(outfh, "  target  %s\n", a.Database)
		fmt.Fprintf(outfh, "          %s\n", a.Markers)
		fmt.Fprintf(outfh, "  query   %s\n", a.Query)
		align.RecycleAlignment(a)
	}
}

func init() {
	RootCmd.AddCommand(matrixCmd)

	matrixCmd.Flags().StringP("query", "q", "",
		formatFlagUsage(`Query sequence, laid along the rows.`))

	matrixCmd.Flags().StringP("target", "t", "",
		formatFlagUsage(`Target sequence, laid along the columns.`))

	matrixCmd.Flags().BoolP("semi-global", "s", false,
		formatFlagUsage(`Do not penalize gaps at both ends of the target.`))

	matrixCmd.Flags().IntP("max-errors", "k", -1,
		formatFlagUsage(`Maximum number of errors, negative values for no limit.`))

	matrixCmd.Flags().IntP("word-size", "W", 8,
		formatFlagUsage(`Word size of matrix blocks in bits, available values: 8, 16, 32, 64.`))

	matrixCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports the ".gz" suffix ("-" for stdout).`))

	matrixCmd.Flags().BoolP("plot", "p", false,
		formatFlagUsage(`Plot the heatmap of the score matrix, saved to the out file with the extension ".png".`))

	matrixCmd.Flags().StringP("plot-file", "", "",
		formatFlagUsage(`Heatmap file, supported formats: png, jpg, svg, pdf, eps. It implies -p/--plot.`))

	matrixCmd.SetUsageTemplate(usageTemplate(""))
}
