// Package tools runs the external model-side executables behind the
// pipeline's collaborator interfaces. Each stage tool receives the stage
// parameter file via -p and inherits stdout/stderr, so its progress is
// visible to the operator; a nonzero exit aborts the calling stage.
package tools

import (
	"context"
	"os"
	"os/exec"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"

	"github.com/AndreaMariani-AM/bpnet-lite-custom/config"
)

// CmdBackend implements pipeline.Backend by invoking one executable per
// stage.
type CmdBackend struct {
	FitCmd         string
	PredictCmd     string
	AttributeCmd   string
	MarginalizeCmd string
}

// DefaultBackend names the conventional stage executables.
func DefaultBackend() *CmdBackend {
	return &CmdBackend{
		FitCmd:         "bpnet-train",
		PredictCmd:     "bpnet-predict",
		AttributeCmd:   "bpnet-attribute",
		MarginalizeCmd: "bpnet-marginalize",
	}
}

func (b *CmdBackend) Fit(ctx context.Context, params config.Config, paramsPath string) error {
	return run(ctx, b.FitCmd, "-p", paramsPath)
}

func (b *CmdBackend) Predict(ctx context.Context, params config.Config, paramsPath string) error {
	return run(ctx, b.PredictCmd, "-p", paramsPath)
}

func (b *CmdBackend) Attribute(ctx context.Context, params config.Config, paramsPath string) error {
	return run(ctx, b.AttributeCmd, "-p", paramsPath)
}

func (b *CmdBackend) Marginalize(ctx context.Context, params config.Config, paramsPath string) error {
	return run(ctx, b.MarginalizeCmd, "-p", paramsPath)
}

// ProcExecer implements pipeline.Execer for the modisco tools.
type ProcExecer struct{}

func (ProcExecer) Run(ctx context.Context, name string, args ...string) error {
	return run(ctx, name, args...)
}

func run(ctx context.Context, name string, args ...string) error {
	log.Debug.Printf("exec: %s %v", name, args)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.E(err, "run:", name)
	}
	return nil
}
