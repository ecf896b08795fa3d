package pipeline

import "fmt"

// StageError reports which pipeline stage failed. Stages already run keep
// their artifacts on disk; nothing is rolled back.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// InvalidOutputError reports an unrecognized attribution output selector.
type InvalidOutputError struct {
	Output string
}

func (e *InvalidOutputError) Error() string {
	return fmt.Sprintf("invalid attribution output %q, must be \"profile\" or \"count\"", e.Output)
}
