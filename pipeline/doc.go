// Package pipeline sequences the bpnet stages: fit, predict, attribute,
// motif discovery, report and marginalize. Each stage driver derives its
// parameter subset from the live pipeline configuration, writes a stage
// parameter file, and invokes the stage operation; the first failure
// aborts the remaining stages. Model-side operations are delegated to a
// Backend, and the modisco motif/report tools run as external commands
// through an Execer.
package pipeline
