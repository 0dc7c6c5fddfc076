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
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/edmatrix/edmatrix/align"
	"github.com/shenwei356/edmatrix/edmatrix/matrix"
	"github.com/spf13/cobra"
	"github.com/twotwotwo/sorts"
	"github.com/twotwotwo/sorts/sortutil"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

var alignCmd = &cobra.Command{
	Use:   "align",
	Short: "Align queries against target sequences with bit-parallel edit distance",
	Long: `Align queries against target sequences with bit-parallel edit distance

Attentions:
  1. Input format should be (gzipped) FASTA or FASTQ. Sequences are upper-cased.
  2. Every query is aligned against every target sequence.
  3. The positions are 1-based.
  4. With -s/--semi-global, gaps at both ends of the target are free,
     i.e., the query is searched in the target.
  5. With -k/--max-errors, pairs with more errors are not reported,
     and cells exceeding the budget are pruned from the matrices.
  6. Output columns:
       query, qlen, target, tlen, dist, qstart, qend, tstart, tend,
       matches, identity, cigar
     and with -a/--show-alignment:
       target alignment, match markers, query alignment

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

		queryFile := getFlagString(cmd, "query")
		if queryFile == "" {
			checkError(fmt.Errorf("flag -q/--query needed"))
		}
		targetFiles := getFlagStringSlice(cmd, "target")
		inDir := getFlagString(cmd, "in-dir")
		reFileStr := getFlagString(cmd, "file-regexp")
		if len(targetFiles) == 0 && inDir == "" {
			checkError(fmt.Errorf("flag -t/--target or --in-dir needed"))
		}

		edOpt := align.EditDistanceOptions{
			SemiGlobal: getFlagBool(cmd, "semi-global"),
			MaxErrors:  getFlagInt(cmd, "max-errors"),
		}
		wordSize := getFlagPositiveInt(cmd, "word-size")
		verify := getFlagBool(cmd, "verify")
		showAlignment := getFlagBool(cmd, "show-alignment")

		outFile := getFlagString(cmd, "out-file")

		pool, err := poolPairAligner(wordSize, edOpt, verify)
		checkError(err)

		// ---------------------------------------------------------------
		// input files

		if inDir != "" {
			reFile, err := regexp.Compile("(?i)" + reFileStr)
			checkError(err)

			files, err := getFileListFromDir(inDir, reFile, opt.NumCPUs)
			checkError(err)
			if len(files) == 0 {
				checkError(fmt.Errorf("no files found in %s matching %s", inDir, reFileStr))
			}
			targetFiles = append(targetFiles, files...)
		}
		sortutil.Strings(targetFiles)

		outFileClean := filepath.Clean(outFile)
		for _, file := range append(targetFiles, queryFile) {
			if !isStdin(file) && filepath.Clean(file) == outFileClean {
				checkError(fmt.Errorf("out file should not be one of the input file"))
			}
		}

		queries, err := readSeqs([]string{queryFile})
		checkError(err)
		if len(queries) == 0 {
			checkError(fmt.Errorf("no sequences in %s", queryFile))
		}

		if outputLog {
			log.Infof("edmatrix v%s", VERSION)
			log.Info()
			log.Infof("%d queries, %d target file(s)", len(queries), len(targetFiles))
			policy := matrix.Policy{SemiGlobal: edOpt.SemiGlobal, MaxErrors: edOpt.MaxErrors >= 0}
			log.Infof("  policy: %s, max errors: %d, word size: %d", policy, edOpt.MaxErrors, wordSize)
			if opt.Config.File != "" {
				log.Infof("  config file: %s", opt.Config.File)
			}
			log.Info()
		}

		// ---------------------------------------------------------------
		// process bar

		showProgressBar := len(targetFiles) > 1 && opt.Verbose

		var pbs *mpb.Progress
		var bar *mpb.Bar
		var chDuration chan time.Duration
		var doneDuration chan int
		if showProgressBar {
			pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
			bar = pbs.AddBar(int64(len(targetFiles)),
				mpb.PrependDecorators(
					decor.Name("processed files: ", decor.WC{W: len("processed files: "), C: decor.DindentRight}),
					decor.Name("", decor.WCSyncSpaceR),
					decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(
					decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
					decor.EwmaETA(decor.ET_STYLE_GO, 10),
					decor.OnComplete(decor.Name(""), ". done"),
				),
			)

			chDuration = make(chan time.Duration, opt.NumCPUs)
			doneDuration = make(chan int)
			go func() {
				for t := range chDuration {
					bar.EwmaIncrBy(1, t)
				}
				doneDuration <- 1
			}()
		}

		// ---------------------------------------------------------------
		// aligning

		targets := make([]*SeqRecord, 0, 1024)
		results := make(PairResults, 0, 1024)

		ch := make(chan []*PairResult, opt.NumCPUs)
		done := make(chan int)
		go func() {
			for rs := range ch {
				results = append(results, rs...)
			}
			done <- 1
		}()

		var wg sync.WaitGroup
		tokens := make(chan int, opt.NumCPUs)

		for _, file := range targetFiles {
			timeFile := time.Now()

			checkError(eachSeq([]string{file}, func(target *SeqRecord) error {
				targets = append(targets, target)
				tIdx := len(targets) - 1

				tokens <- 1
				wg.Add(1)

				go func(target *SeqRecord, tIdx int) {
					defer func() {
						wg.Done()
						<-tokens
					}()

					pa := pool.Get().(pairAligner)
					defer pool.Put(pa)

					rs := make([]*PairResult, 0, len(queries))
					for qIdx, query := range queries {
						r, err := pa.Align(target.Seq, query.Seq)
						checkError(err)
						if !r.Found {
							continue
						}
						r.QueryIdx, r.TargetIdx = qIdx, tIdx
						rs = append(rs, r)
					}
					ch <- rs
				}(target, tIdx)

				return nil
			}))

			if showProgressBar {
				chDuration <- time.Since(timeFile)
			}
		}

		wg.Wait()
		close(ch)
		<-done

		if showProgressBar {
			close(chDuration)
			<-doneDuration
			pbs.Wait()
		}

		// ---------------------------------------------------------------
		// output

		sorts.Quicksort(results)

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			w.Close()
		}()

		fmt.Fprintf(outfh, "query\tqlen\ttarget\ttlen\tdist\tqstart\tqend\ttstart\ttend\tmatches\tidentity\tcigar")
		if showAlignment {
			fmt.Fprintf(outfh, "\ttalign\tmarkers\tqalign")
		}
		outfh.WriteByte('\n')

		var q, t *SeqRecord
		var a *align.Alignment
		for _, r := range results {
			q, t, a = queries[r.QueryIdx], targets[r.TargetIdx], r.Alignment

			fmt.Fprintf(outfh, "%s\t%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%.3f\t%s",
				q.ID, len(q.Seq), t.ID, len(t.Seq), r.Dist,
				r.QBegin+1, r.QEnd, r.TBegin+1, r.TEnd,
				a.Matches, a.Identity(), a.Cigar)
			if showAlignment {
				fmt.Fprintf(outfh, "\t%s\t%s\t%s", a.Database, a.Markers, a.Query)
			}
			outfh.WriteByte('\n')

			align.RecycleAlignment(a)
		}

		if outputLog {
			log.Infof("%d alignments of %d queries against %d targets saved to %s",
				len(results), len(queries), len(targets), outFile)
		}
	},
}

// PairResults is sorted by query and then target.
type PairResults []*PairResult

func (s PairResults) Len() int { return len(s) }
func (s PairResults) Less(i, j int) bool {
	if s[i].QueryIdx != s[j].QueryIdx {
		return s[i].QueryIdx < s[j].QueryIdx
	}
	return s[i].TargetIdx < s[j].TargetIdx
}
func (s PairResults) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

func init() {
	RootCmd.AddCommand(alignCmd)

	alignCmd.Flags().StringP("query", "q", "",
		formatFlagUsage(`Query file in (gzipped) FASTA/Q format ("-" for stdin).`))

	alignCmd.Flags().StringSliceP("target", "t", []string{},
		formatFlagUsage(`Target files in (gzipped) FASTA/Q format, multiple values supported.`))

	alignCmd.Flags().StringP("in-dir", "I", "",
		formatFlagUsage(`Directory containing target files. Directory symlinks are followed.`))

	alignCmd.Flags().StringP("file-regexp", "r", `\.(f[aq](st[aq])?|fna)(\.gz|\.xz|\.zst|\.bz2)?$`,
		formatFlagUsage(`Regular expression for matching target files in -I/--in-dir, case ignored.`))

	alignCmd.Flags().BoolP("semi-global", "s", false,
		formatFlagUsage(`Do not penalize gaps at both ends of targets.`))

	alignCmd.Flags().IntP("max-errors", "k", -1,
		formatFlagUsage(`Maximum number of errors, negative values for no limit.`))

	alignCmd.Flags().IntP("word-size", "W", 64,
		formatFlagUsage(`Word size of matrix blocks in bits, available values: 8, 16, 32, 64.`))

	alignCmd.Flags().BoolP("verify", "", false,
		formatFlagUsage(`Verify every alignment with the full dynamic programming matrix, slow.`))

	alignCmd.Flags().BoolP("show-alignment", "a", false,
		formatFlagUsage(`Output the alignment strings.`))

	alignCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports the ".gz" suffix ("-" for stdout).`))

	alignCmd.SetUsageTemplate(usageTemplate(""))
}
