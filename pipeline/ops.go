package pipeline

import (
	"context"

	"github.com/AndreaMariani-AM/bpnet-lite-custom/config"
)

// Backend runs the model-side operations: training, prediction,
// attribution and marginalization. Implementations receive the merged,
// validated stage parameters together with the path of the stage
// parameter file they were loaded from, so exec-style backends can hand
// the file to an external tool unchanged.
type Backend interface {
	Fit(ctx context.Context, params config.Config, paramsPath string) error
	Predict(ctx context.Context, params config.Config, paramsPath string) error
	Attribute(ctx context.Context, params config.Config, paramsPath string) error
	Marginalize(ctx context.Context, params config.Config, paramsPath string) error
}

// Execer launches an external command and waits for it. Used for the
// modisco motif discovery and report tools, which keep their own CLI.
type Execer interface {
	Run(ctx context.Context, name string, args ...string) error
}
