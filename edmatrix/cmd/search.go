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
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/edmatrix/edmatrix/align"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search patterns in target sequences allowing errors",
	Long: `Search patterns in target sequences allowing errors

Attentions:
  1. Input format should be (gzipped) FASTA or FASTQ from files or stdin.
  2. Every end position in a target with at most -k/--max-errors errors is a hit,
     overlapping hits are merged, and only the one with the fewest errors is kept.
     With -e/--ends-only, all end positions are reported instead.
  3. With -B/--both-strands, the reverse complement of patterns are also searched,
     and the positions are all on the positive strand of targets.
  4. The positions are 1-based.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		seq.ValidateSeq = false

		var fhLog *os.File
		if opt.Log2File {
			fhLog = addLog(opt.LogFile, opt.Verbose)
		}

		outputLog := opt.Verbose || opt.Log2File

		timeStart := time.Now()
		defer func() {
			if outputLog {
				log.Info()
				log.Infof("elapsed time: %s", time.Since(timeStart))
				log.Info()
			}
			if opt.Log2File {
				fhLog.Close()
			}
		}()

		// ---------------------------------------------------------------

		patterns := make([]*SeqRecord, 0, 8)
		for _, p := range getFlagStringSlice(cmd, "pattern") {
			if p == "" {
				continue
			}
			patterns = append(patterns, &SeqRecord{ID: []byte(p), Seq: []byte(strings.ToUpper(p))})
		}
		if patternFile := getFlagString(cmd, "pattern-file"); patternFile != "" {
			_patterns, err := readSeqs([]string{patternFile})
			checkError(err)
			patterns = append(patterns, _patterns...)
		}
		if len(patterns) == 0 {
			checkError(fmt.Errorf("flag -p/--pattern or -f/--pattern-file needed"))
		}
		for _, p := range patterns {
			if len(p.Seq) == 0 {
				checkError(fmt.Errorf("empty pattern: %s", p.ID))
			}
		}

		k := getFlagNonNegativeInt(cmd, "max-errors")
		wordSize := getFlagPositiveInt(cmd, "word-size")
		bothStrands := getFlagBool(cmd, "both-strands")
		endsOnly := getFlagBool(cmd, "ends-only")
		outFile := getFlagString(cmd, "out-file")

		pool, err := poolPairAligner(wordSize, align.EditDistanceOptions{SemiGlobal: true, MaxErrors: k}, false)
		checkError(err)

		if bothStrands {
			for _, p := range patterns {
				if _, err = revcom(p.Seq); err != nil {
					checkError(fmt.Errorf("invalid DNA pattern %s: %s", p.ID, err))
				}
			}
		}

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)

		outFileClean := filepath.Clean(outFile)
		for _, file := range files {
			if !isStdin(file) && filepath.Clean(file) == outFileClean {
				checkError(fmt.Errorf("out file should not be one of the input file"))
			}
		}

		if outputLog {
			log.Infof("edmatrix v%s", VERSION)
			log.Info()
			log.Infof("searching %d pattern(s) with at most %d error(s) in %d file(s) ...", len(patterns), k, len(files))
		}

		// ---------------------------------------------------------------

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			w.Close()
		}()

		if endsOnly {
			fmt.Fprintf(outfh, "pattern\ttarget\tend\tdist\n")
		} else {
			fmt.Fprintf(outfh, "pattern\ttarget\tstrand\tstart\tend\tdist\tmatched\n")
		}

		type result struct {
			id     uint64 // order of the target
			target *SeqRecord
			hits   [][]*Hit // for each pattern
		}

		// outputter, in the order of targets
		var nHits int
		ch := make(chan *result, opt.NumCPUs)
		done := make(chan int)
		go func() {
			var id uint64
			buf := make(map[uint64]*result, opt.NumCPUs)
			output := func(r *result) {
				for i, hits := range r.hits {
					if endsOnly {
						for _, e := range uniqEnds(hits) {
							fmt.Fprintf(outfh, "%s\t%s\t%d\t%d\n", patterns[i].ID, r.target.ID, e[0], e[1])
							nHits++
						}
						continue
					}
					for _, h := range hits {
						fmt.Fprintf(outfh, "%s\t%s\t%c\t%d\t%d\t%d\t%s\n", patterns[i].ID, r.target.ID, h.Strand,
							h.Begin+1, h.End, h.Dist, r.target.Seq[h.Begin:h.End])
						nHits++
					}
				}
			}

			for r := range ch {
				if r.id != id {
					buf[r.id] = r
					continue
				}
				output(r)
				id++
				for {
					_r, ok := buf[id]
					if !ok {
						break
					}
					output(_r)
					delete(buf, id)
					id++
				}
			}
			done <- 1
		}()

		var wg sync.WaitGroup
		tokens := make(chan int, opt.NumCPUs)
		var id uint64

		checkError(eachSeq(files, func(target *SeqRecord) error {
			tokens <- 1
			wg.Add(1)

			go func(target *SeqRecord, id uint64) {
				defer func() {
					wg.Done()
					<-tokens
				}()

				pa := pool.Get().(pairAligner)
				defer pool.Put(pa)

				r := &result{id: id, target: target, hits: make([][]*Hit, len(patterns))}
				for i, p := range patterns {
					r.hits[i] = searchPattern(pa, target.Seq, p.Seq, bothStrands, endsOnly)
				}
				ch <- r
			}(target, id)

			id++
			return nil
		}))

		wg.Wait()
		close(ch)
		<-done

		if outputLog {
			log.Infof("%d hit(s) in %d sequence(s) saved to %s", nHits, id, outFile)
		}
	},
}

// searchPattern returns hits of a pattern on one or both strands,
// overlapping hits are merged unless all hits are needed.
func searchPattern(pa pairAligner, target, pattern []byte, bothStrands, all bool) []*Hit {
	hits, err := pa.Search(target, pattern, '+', nil)
	checkError(err)

	if bothStrands {
		rc, err := revcom(pattern)
		checkError(err)
		hits, err = pa.Search(target, rc, '-', hits)
		checkError(err)
	}

	if all {
		return hits
	}

	hits, err = mergeHits(hits)
	checkError(err)
	return hits
}

func init() {
	RootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringSliceP("pattern", "p", []string{},
		formatFlagUsage(`Pattern sequences, multiple values supported.`))

	searchCmd.Flags().StringP("pattern-file", "f", "",
		formatFlagUsage(`Pattern file in (gzipped) FASTA/Q format.`))

	searchCmd.Flags().StringP("infile-list", "X", "",
		formatFlagUsage(`File of input files list (one file per line). If given, they are appended to files from CLI arguments.`))

	searchCmd.Flags().IntP("max-errors", "k", 1,
		formatFlagUsage(`Maximum number of errors.`))

	searchCmd.Flags().IntP("word-size", "W", 64,
		formatFlagUsage(`Word size of matrix blocks in bits, available values: 8, 16, 32, 64.`))

	searchCmd.Flags().BoolP("both-strands", "B", false,
		formatFlagUsage(`Also search the reverse complement sequences of patterns.`))

	searchCmd.Flags().BoolP("ends-only", "e", false,
		formatFlagUsage(`Report all end positions of hits, without merging overlapping hits.`))

	searchCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports the ".gz" suffix ("-" for stdout).`))

	searchCmd.SetUsageTemplate(usageTemplate(""))
}
