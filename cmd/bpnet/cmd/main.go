// Package cmd implements the bpnet command line. Every subcommand except
// negatives takes a single -p flag naming a JSON parameter file; the
// parameter semantics live in the config and pipeline packages.
package cmd

import (
	"fmt"
	"log"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"v.io/x/lib/cmdline"

	"github.com/AndreaMariani-AM/bpnet-lite-custom/pipeline"
	"github.com/AndreaMariani-AM/bpnet-lite-custom/tools"
)

// newParamCmd builds a subcommand that merges a parameter file and hands
// it to the given stage handler.
func newParamCmd(name, short string, stage func(env *cmdline.Env, params string) error) *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  name,
		Short: short,
	}
	params := cmd.Flags.String("p", "", "JSON parameter file (required)")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return fmt.Errorf("%s takes no positional arguments, but got %v", name, argv)
		}
		if *params == "" {
			return fmt.Errorf("%s: -p parameter file is required", name)
		}
		return stage(env, *params)
	})
	return cmd
}

func newCmdFit() *cmdline.Command {
	return newParamCmd("fit", "Fit a BPNet model to sequence and signal data",
		func(env *cmdline.Env, params string) error {
			return pipeline.Fit(vcontext.Background(), tools.DefaultBackend(), params)
		})
}

func newCmdPredict() *cmdline.Command {
	return newParamCmd("predict", "Predict signal profiles and counts for loci",
		func(env *cmdline.Env, params string) error {
			return pipeline.Predict(vcontext.Background(), tools.DefaultBackend(), params)
		})
}

func newCmdAttribute() *cmdline.Command {
	return newParamCmd("attribute", "Compute per-base attribution scores for loci",
		func(env *cmdline.Env, params string) error {
			return pipeline.Attribute(vcontext.Background(), tools.DefaultBackend(), params)
		})
}

func newCmdMarginalize() *cmdline.Command {
	return newParamCmd("marginalize", "Measure marginal motif effects on model output",
		func(env *cmdline.Env, params string) error {
			return pipeline.Marginalize(vcontext.Background(), tools.DefaultBackend(), params)
		})
}

func newCmdPipeline() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "pipeline",
		Short: "Run fit, predict, attribute, motif discovery, report and marginalize in order",
	}
	params := cmd.Flags.String("p", "", "JSON pipeline parameter file (required)")
	modisco := cmd.Flags.String("modisco", pipeline.DefaultModisco, "Motif discovery executable")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if *params == "" {
			return fmt.Errorf("pipeline: -p parameter file is required")
		}
		r := &pipeline.Runner{
			Backend: tools.DefaultBackend(),
			Execer:  tools.ProcExecer{},
			Modisco: *modisco,
		}
		return r.Run(vcontext.Background(), *params)
	})
	return cmd
}

// Run parses and dispatches the bpnet command line, exiting nonzero on
// any failure.
func Run() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bpnet",
			Short:    "Train and interpret BPNet profile models",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdNegatives(),
				newCmdFit(),
				newCmdPredict(),
				newCmdAttribute(),
				newCmdMarginalize(),
				newCmdPipeline(),
			},
		})
}
