package extract

import (
	"context"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/pbenner/gonetics"

	"github.com/AndreaMariani-AM/bpnet-lite-custom/npz"
	"github.com/AndreaMariani-AM/bpnet-lite-custom/sequence"
)

// ReadGenome loads a fasta file into memory, keyed by sequence name.
func ReadGenome(path string) (gonetics.StringSet, error) {
	seqs := gonetics.StringSet{}
	if err := seqs.ImportFasta(path); err != nil {
		return nil, errors.E(err, "read fasta:", path)
	}
	return seqs, nil
}

// OneHotLoci one-hot encodes the genome sequence under each locus into a
// (loci x 4 x window) tensor. Loci falling outside their chromosome are
// dropped; the kept loci are returned alongside the tensor in matching
// order. Encoding is data parallel across loci.
func OneHotLoci(ctx context.Context, genome gonetics.StringSet, loci []Locus, window int, verbose bool) (*npz.Array, []Locus, error) {
	kept := make([]Locus, 0, len(loci))
	for _, l := range loci {
		seq, ok := genome[l.Chrom]
		if !ok || l.Start < 0 || l.End > len(seq) || l.End-l.Start != window {
			log.Debug.Printf("dropping out-of-bounds locus %s:%d-%d", l.Chrom, l.Start, l.End)
			continue
		}
		kept = append(kept, l)
	}
	if verbose {
		log.Printf("one-hot encoding %d loci (%d dropped)", len(kept), len(loci)-len(kept))
	}
	out := npz.NewArray(len(kept), sequence.Channels, window)
	stride := sequence.Channels * window
	err := traverse.Each(len(kept), func(i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		l := kept[i]
		sequence.OneHot(genome[l.Chrom][l.Start:l.End], out.Data[i*stride:(i+1)*stride])
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return out, kept, nil
}
