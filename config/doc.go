// Package config implements the parameter model shared by every bpnet
// stage: optional values with an explicit unset state, default parameter
// tables, merging of user-supplied JSON parameter files against those
// tables, and derivation of per-stage parameter subsets from a pipeline
// configuration.
package config
