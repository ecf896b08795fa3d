package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/grailbio/base/errors"
)

// Config maps option names to optional values. The default tables hand
// out fresh Configs so callers may mutate their copy freely; a Config
// obtained from a table is never shared.
type Config map[string]Value

// exemptFields are the keys permitted to remain unset after a merge.
// The list is global across stages.
var exemptFields = map[string]bool{
	"controls":          true,
	"warning_threshold": true,
	"early_stopping":    true,
}

// MissingParameterError reports a required field that remained unset
// after merging user parameters against a stage's defaults.
type MissingParameterError struct {
	Key string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("required parameter %q is not set", e.Key)
}

// Merge loads a user parameter file and merges it against a stage's
// default table: every key of defaults appears in the result, user values
// win where present, and any key left unset that is not exempt is an
// error. Callers never re-validate.
func Merge(path string, defaults Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.E(err, "read parameters:", path)
	}
	var user Config
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, errors.E(err, "parse parameters:", path)
	}
	return Apply(user, defaults)
}

// Apply is the in-process form of Merge for callers that already hold the
// user configuration. Neither argument is mutated.
func Apply(user, defaults Config) (Config, error) {
	merged := user.Clone()
	for k, dv := range defaults {
		if _, ok := merged[k]; !ok {
			merged[k] = dv
		}
	}
	// Sorted so the first reported missing key is deterministic.
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !merged[k].IsSet() && !exemptFields[k] {
			return nil, &MissingParameterError{Key: k}
		}
	}
	return merged, nil
}

// ExtractSubset derives the parameter subset for one stage from the
// top-level pipeline configuration. Keys of stageDefaults present at the
// top level are carried over as fallbacks, then the nested override block
// pipeline[stageKey] wins per key. Unset override entries never clobber a
// top-level value. No required-ness is validated here; the stage merges
// the subset against its own defaults later.
func ExtractSubset(pipeline, stageDefaults Config, stageKey string) Config {
	subset := make(Config)
	for k := range stageDefaults {
		if v, ok := pipeline[k]; ok {
			subset[k] = v
		}
	}
	if block, ok := pipeline[stageKey]; ok {
		if overrides, ok := block.Sub(); ok {
			for k, v := range overrides {
				if v.IsSet() {
					subset[k] = v
				}
			}
		}
	}
	return subset
}

// Clone returns a shallow copy. Values are immutable once stored, so a
// shallow copy suffices.
func (c Config) Clone() Config {
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// SetDefault assigns value under key when the key is missing or unset.
// Used to inject derived artifact filenames without clobbering an
// explicit user choice.
func (c Config) SetDefault(key string, value interface{}) {
	if cur, ok := c[key]; ok && cur.IsSet() {
		return
	}
	c[key] = New(value)
}

// FillFrom inserts every key of defaults that is missing from c. Unlike
// Apply it performs no validation; the modisco stages use it because they
// build a command line instead of merging a parameter file.
func (c Config) FillFrom(defaults Config) {
	for k, v := range defaults {
		if _, ok := c[k]; !ok {
			c[k] = v
		}
	}
}

// WriteFile serializes c as a stage parameter file. Parameter files are
// written once before a stage runs and never rewritten.
func (c Config) WriteFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.E(err, "encode parameters:", path)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.E(err, "write parameters:", path)
	}
	return nil
}
