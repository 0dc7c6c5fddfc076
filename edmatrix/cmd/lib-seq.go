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
	"bytes"
	"io"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
)

// SeqRecord is an upper-cased sequence and its ID.
type SeqRecord struct {
	ID  []byte
	Seq []byte
}

// readSeqs reads all sequences of (gzipped) FASTA/Q files.
func readSeqs(files []string) ([]*SeqRecord, error) {
	records := make([]*SeqRecord, 0, 64)
	err := eachSeq(files, func(r *SeqRecord) error {
		records = append(records, r)
		return nil
	})
	return records, err
}

// eachSeq calls fn for every sequence of (gzipped) FASTA/Q files.
func eachSeq(files []string, fn func(*SeqRecord) error) error {
	var record *fastx.Record
	for _, file := range files {
		fastxReader, err := fastx.NewReader(nil, file, "")
		if err != nil {
			return errors.Wrap(err, file)
		}

		for {
			record, err = fastxReader.Read()
			if err != nil {
				if err == io.EOF {
					break
				}
				fastxReader.Close()
				return errors.Wrap(err, file)
			}

			err = fn(&SeqRecord{
				ID:  append([]byte(nil), record.ID...),
				Seq: bytes.ToUpper(record.Seq.Seq),
			})
			if err != nil {
				fastxReader.Close()
				return err
			}
		}
		fastxReader.Close()
	}
	return nil
}

// revcom returns the reverse complement sequence of s.
func revcom(s []byte) ([]byte, error) {
	_s, err := seq.NewSeq(seq.DNAredundant, append([]byte(nil), s...))
	if err != nil {
		return nil, err
	}
	_s.RevComInplace()
	return _s.Seq, nil
}
