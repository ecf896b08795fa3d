package cmd

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"v.io/x/lib/cmdline"

	"github.com/AndreaMariani-AM/bpnet-lite-custom/extract"
)

type negativesFlags struct {
	peaks     *string
	fasta     *string
	bigwig    *string
	out       *string
	binWidth  *float64
	maxN      *float64
	beta      *float64
	inWindow  *int
	outWindow *int
	seed      *int64
	verbose   *bool
}

func newCmdNegatives() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "negatives",
		Short: "Sample GC-matched negative loci for a peak set",
	}
	defaults := extract.DefaultNegativesOpts
	flags := negativesFlags{
		peaks:     cmd.Flags.String("peaks", "", "Input peaks BED path (required)"),
		fasta:     cmd.Flags.String("fasta", "", "Genome fasta path; drives GC matching and N filtering"),
		bigwig:    cmd.Flags.String("bigwig", "", "Optional signal bigwig; windows with signal above -beta x the median peak signal are rejected"),
		out:       cmd.Flags.String("o", "", "Output BED path (required)"),
		binWidth:  cmd.Flags.Float64("bin-width", defaults.BinWidth, "GC fraction bin width used to match the peak GC distribution"),
		maxN:      cmd.Flags.Float64("max-n", defaults.MaxN, "Maximum fraction of N bases tolerated in a negative window"),
		beta:      cmd.Flags.Float64("beta", defaults.Beta, "Signal multiplier applied to the median peak signal"),
		inWindow:  cmd.Flags.Int("in-window", defaults.InWindow, "Input window width"),
		outWindow: cmd.Flags.Int("out-window", defaults.OutWindow, "Output window width; also the bigwig bin size"),
		seed:      cmd.Flags.Int64("seed", 0, "Random seed for candidate shuffling"),
		verbose:   cmd.Flags.Bool("v", false, "Report sampling progress"),
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if *flags.peaks == "" || *flags.out == "" {
			return fmt.Errorf("negatives: -peaks and -o are required")
		}
		if *flags.fasta == "" && *flags.bigwig == "" {
			return fmt.Errorf("negatives: at least one of -fasta and -bigwig is required")
		}
		opts := extract.NegativesOpts{
			Peaks:     *flags.peaks,
			Fasta:     *flags.fasta,
			BigWig:    *flags.bigwig,
			Out:       *flags.out,
			BinWidth:  *flags.binWidth,
			MaxN:      *flags.maxN,
			Beta:      *flags.beta,
			InWindow:  *flags.inWindow,
			OutWindow: *flags.outWindow,
			Seed:      *flags.seed,
			Verbose:   *flags.verbose,
		}
		_, err := extract.SampleNegatives(vcontext.Background(), opts)
		return err
	})
	return cmd
}
