// Package extract turns genomic coordinate files and genome-scale inputs
// (BED loci, fasta sequence, bigwig signal) into the tensors and sampled
// regions the bpnet stages consume.
package extract

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/klauspost/compress/gzip"
	"github.com/pbenner/gonetics"
)

// Locus is one genomic window, zero-based half-open.
type Locus struct {
	Chrom string
	Start int
	End   int
}

// openMaybeGzip opens path, transparently decompressing a .gz suffix.
func openMaybeGzip(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &gzipReadCloser{gz, f}, nil
}

type gzipReadCloser struct {
	*gzip.Reader
	f *os.File
}

func (r *gzipReadCloser) Close() error {
	err := r.Reader.Close()
	if e := r.f.Close(); err == nil {
		err = e
	}
	return err
}

// ReadLoci reads BED loci from path (.gz accepted), keeps those on the
// given chromosomes (all when chroms is empty), and re-centers each locus
// to a window-sized interval around its midpoint when window > 0. The
// result is sorted by chromosome then start.
func ReadLoci(path string, chroms []string, window int) ([]Locus, error) {
	r, err := openMaybeGzip(path)
	if err != nil {
		return nil, errors.E(err, "open loci:", path)
	}
	defer r.Close()
	granges := gonetics.GRanges{}
	if err := granges.ReadBed3(r); err != nil {
		return nil, errors.E(err, "parse loci:", path)
	}

	var keep map[string]bool
	if len(chroms) > 0 {
		keep = make(map[string]bool, len(chroms))
		for _, c := range chroms {
			keep[c] = true
		}
	}
	loci := make([]Locus, 0, granges.Length())
	for i := 0; i < granges.Length(); i++ {
		chrom := granges.Seqnames[i]
		if keep != nil && !keep[chrom] {
			continue
		}
		start, end := granges.Ranges[i].From, granges.Ranges[i].To
		if window > 0 {
			mid := (start + end) / 2
			start = mid - window/2
			end = start + window
		}
		loci = append(loci, Locus{Chrom: chrom, Start: start, End: end})
	}
	sortLoci(loci)
	return loci, nil
}

// WriteLoci writes loci as a three-column BED file.
func WriteLoci(path string, loci []Locus) error {
	seqnames := make([]string, len(loci))
	from := make([]int, len(loci))
	to := make([]int, len(loci))
	for i, l := range loci {
		seqnames[i] = l.Chrom
		from[i] = l.Start
		to[i] = l.End
	}
	granges := gonetics.NewGRanges(seqnames, from, to, nil)
	if err := granges.ExportBed3(path, strings.HasSuffix(path, ".gz")); err != nil {
		return errors.E(err, "write loci:", path)
	}
	return nil
}

func sortLoci(loci []Locus) {
	sort.Slice(loci, func(i, j int) bool {
		if loci[i].Chrom != loci[j].Chrom {
			return loci[i].Chrom < loci[j].Chrom
		}
		return loci[i].Start < loci[j].Start
	})
}
