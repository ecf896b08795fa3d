package extract

import (
	"context"
	"math"
	"math/rand"
	"os"
	"sort"

	"github.com/biogo/store/llrb"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/pbenner/gonetics"

	"github.com/AndreaMariani-AM/bpnet-lite-custom/sequence"
)

// NegativesOpts controls GC-matched negative sampling. At least one of
// Fasta and BigWig must be given: the fasta drives GC matching and N
// filtering, the bigwig drives signal rejection, and either one supplies
// the chromosome lengths.
type NegativesOpts struct {
	Peaks  string // BED of positive loci (required)
	Fasta  string // genome fasta
	BigWig string // signal track used to reject covered windows
	Out    string // output BED path

	// BinWidth is the GC-fraction bin width used to match negatives to
	// the peak GC distribution.
	BinWidth float64
	// MaxN is the maximum tolerated fraction of non-ACGT bases in a
	// candidate window.
	MaxN float64
	// Beta scales the median peak signal; candidate windows above
	// Beta x median are rejected as covered.
	Beta      float64
	InWindow  int
	OutWindow int
	Seed      int64
	Verbose   bool
}

// DefaultNegativesOpts holds the documented defaults of the negatives
// subcommand.
var DefaultNegativesOpts = NegativesOpts{
	BinWidth:  0.02,
	MaxN:      0.1,
	Beta:      0.5,
	InWindow:  2114,
	OutWindow: 1000,
}

// peakStart keys a windowed peak by its start coordinate. All indexed
// peaks share the same window length, so overlap queries reduce to a
// start-range check.
type peakStart int

func (p peakStart) Compare(c llrb.Comparable) int { return int(p) - int(c.(peakStart)) }

type peakIndex struct {
	trees  map[string]*llrb.Tree
	window int
}

func newPeakIndex(loci []Locus, window int) *peakIndex {
	idx := &peakIndex{trees: make(map[string]*llrb.Tree), window: window}
	for _, l := range loci {
		tree := idx.trees[l.Chrom]
		if tree == nil {
			tree = &llrb.Tree{}
			idx.trees[l.Chrom] = tree
		}
		tree.Insert(peakStart(l.Start))
	}
	return idx
}

// overlaps reports whether [start, start+window) intersects any peak.
func (idx *peakIndex) overlaps(chrom string, start int) bool {
	tree := idx.trees[chrom]
	if tree == nil {
		return false
	}
	got := tree.Ceil(peakStart(start - idx.window + 1))
	return got != nil && int(got.(peakStart)) < start+idx.window
}

// SampleNegatives draws one negative window per peak: windows that do
// not overlap any peak, contain few enough N bases, carry little signal,
// and (when a fasta is given) reproduce the GC-fraction histogram of the
// peak set. Sampling is deterministic for a given seed.
func SampleNegatives(ctx context.Context, opts NegativesOpts) ([]Locus, error) {
	if opts.Fasta == "" && opts.BigWig == "" {
		return nil, errors.E("negative sampling needs a fasta or a bigwig for chromosome lengths")
	}
	peaks, err := ReadLoci(opts.Peaks, nil, opts.InWindow)
	if err != nil {
		return nil, err
	}

	var genome gonetics.StringSet
	if opts.Fasta != "" {
		if genome, err = ReadGenome(opts.Fasta); err != nil {
			return nil, err
		}
	}
	var track *signalTrack
	if opts.BigWig != "" {
		if track, err = readSignalTrack(opts.BigWig, opts.OutWindow); err != nil {
			return nil, err
		}
	}
	lengths := chromLengths(genome, track)

	// GC histogram of the peak windows. Peaks outside their chromosome
	// cannot be profiled and are skipped. Without a fasta every peak
	// lands in one bin and matching degenerates to counting.
	needed := make(map[int]int)
	var peakSignals []float64
	kept := 0
	for _, p := range peaks {
		n, ok := lengths[p.Chrom]
		if !ok || p.Start < 0 || p.End > n {
			continue
		}
		bin := 0
		if genome != nil {
			bin = gcBin(sequence.GCFraction(genome[p.Chrom][p.Start:p.End]), opts.BinWidth)
		}
		needed[bin]++
		kept++
		if track != nil {
			peakSignals = append(peakSignals, track.mean(p.Chrom, p.Start, p.End))
		}
	}
	threshold := math.Inf(1)
	if track != nil && len(peakSignals) > 0 {
		threshold = opts.Beta * median(peakSignals)
	}

	idx := newPeakIndex(peaks, opts.InWindow)

	// Candidate windows tile each chromosome end to end; a seeded
	// shuffle removes positional bias while staying reproducible.
	var candidates []Locus
	for _, chrom := range sortedKeys(lengths) {
		n := lengths[chrom]
		for start := 0; start+opts.InWindow <= n; start += opts.InWindow {
			candidates = append(candidates, Locus{Chrom: chrom, Start: start, End: start + opts.InWindow})
		}
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	var negatives []Locus
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(negatives) == kept {
			break
		}
		bin := 0
		if genome != nil {
			seq := genome[c.Chrom][c.Start:c.End]
			bin = gcBin(sequence.GCFraction(seq), opts.BinWidth)
			if sequence.NFraction(seq) > opts.MaxN {
				continue
			}
		}
		if needed[bin] == 0 {
			continue
		}
		if idx.overlaps(c.Chrom, c.Start) {
			continue
		}
		if track != nil && track.mean(c.Chrom, c.Start, c.End) > threshold {
			continue
		}
		needed[bin]--
		negatives = append(negatives, c)
	}
	if opts.Verbose {
		log.Printf("sampled %d matched negatives for %d peaks", len(negatives), kept)
	}
	if len(negatives) < kept {
		log.Debug.Printf("candidate pool exhausted: %d of %d peaks unmatched", kept-len(negatives), kept)
	}
	sortLoci(negatives)

	if opts.Out != "" {
		if err := WriteLoci(opts.Out, negatives); err != nil {
			return nil, err
		}
	}
	return negatives, nil
}

func chromLengths(genome gonetics.StringSet, track *signalTrack) map[string]int {
	lengths := make(map[string]int)
	if genome != nil {
		for chrom, seq := range genome {
			lengths[chrom] = len(seq)
		}
		return lengths
	}
	for chrom, n := range track.lengths {
		lengths[chrom] = n
	}
	return lengths
}

func gcBin(gc, width float64) int {
	if width <= 0 {
		return 0
	}
	return int(gc / width)
}

func median(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// signalTrack holds binned mean coverage per chromosome, read once from
// a bigwig file.
type signalTrack struct {
	bins    map[string][]float64
	lengths map[string]int
	binSize int
}

func readSignalTrack(path string, binSize int) (*signalTrack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.E(err, "open bigwig:", path)
	}
	defer f.Close()
	reader, err := gonetics.NewBigWigReader(f)
	if err != nil {
		return nil, errors.E(err, "read bigwig:", path)
	}
	track := &signalTrack{
		bins:    make(map[string][]float64),
		lengths: make(map[string]int),
		binSize: binSize,
	}
	for _, chrom := range reader.Genome.Seqnames {
		n, err := reader.Genome.SeqLength(chrom)
		if err != nil {
			return nil, errors.E(err, "read bigwig:", path, chrom)
		}
		values, size, err := reader.QuerySequence(chrom, gonetics.BinMean, binSize, 0, math.NaN())
		if err != nil {
			return nil, errors.E(err, "query bigwig:", path, chrom)
		}
		track.bins[chrom] = values
		track.lengths[chrom] = n
		track.binSize = size
	}
	return track, nil
}

// mean returns the average signal over [start, end), treating missing
// bins as zero.
func (t *signalTrack) mean(chrom string, start, end int) float64 {
	bins := t.bins[chrom]
	if len(bins) == 0 || end <= start {
		return 0
	}
	var sum float64
	var n int
	for i := start / t.binSize; i <= (end-1)/t.binSize; i++ {
		if i < 0 || i >= len(bins) {
			continue
		}
		if !math.IsNaN(bins[i]) {
			sum += bins[i]
		}
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
