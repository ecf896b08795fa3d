package config

// Default parameter tables, one per stage. Each call returns a fresh
// Config so the tables behave as immutable templates under repeated
// merges. Unset entries are required fields the user must supply, except
// for the exempt ones (controls, warning_threshold, early_stopping).
//
// Derived artifact filenames (profile/counts/ohe/attr outputs and the
// marginalization directory) are deliberately absent from the tables;
// they are injected after merging with Config.SetDefault so that an
// omitted filename defaults from the run name instead of failing
// validation.

var (
	trainingChroms = []string{
		"chr1", "chr2", "chr3", "chr4", "chr5", "chr6", "chr7", "chr9",
		"chr11", "chr12", "chr13", "chr14", "chr15", "chr16", "chr17",
		"chr18", "chr19", "chr20", "chr21", "chr22",
	}
	validationChroms = []string{"chr8", "chr10"}
)

// FitDefaults returns the default parameters of the fit stage.
func FitDefaults() Config {
	return Config{
		"n_filters":           New(64),
		"n_layers":            New(8),
		"profile_output_bias": New(true),
		"count_output_bias":   New(true),
		"in_window":           New(2114),
		"out_window":          New(1000),
		"max_jitter":          New(128),
		"reverse_complement":  New(true),
		"max_epochs":          New(50),
		"validation_iter":     New(100),
		"lr":                  New(0.001),
		"alpha":               New(1),
		"batch_size":          New(64),
		"min_counts":          New(0),
		"max_counts":          New(99999999),
		"seed":                New(0),
		"verbose":             New(false),
		"training_chroms":     New(append([]string(nil), trainingChroms...)),
		"validation_chroms":   New(append([]string(nil), validationChroms...)),
		"name":                Unset(),
		"sequences":           Unset(),
		"loci":                Unset(),
		"signals":             Unset(),
		"controls":            Unset(),
		"early_stopping":      Unset(),
	}
}

// PredictDefaults returns the default parameters of the predict stage.
func PredictDefaults() Config {
	return Config{
		"batch_size": New(64),
		"in_window":  New(2114),
		"out_window": New(1000),
		"chroms":     New(append([]string(nil), validationChroms...)),
		"verbose":    New(false),
		"name":       Unset(),
		"model":      Unset(),
		"sequences":  Unset(),
		"loci":       Unset(),
		"controls":   Unset(),
	}
}

// AttributeDefaults returns the default parameters of the attribute
// stage. The output selector must resolve to "profile" or "count".
func AttributeDefaults() Config {
	return Config{
		"batch_size":        New(64),
		"in_window":         New(2114),
		"out_window":        New(1000),
		"chroms":            New(append([]string(nil), validationChroms...)),
		"output":            New("profile"),
		"n_shuffles":        New(20),
		"seed":              New(0),
		"verbose":           New(false),
		"name":              Unset(),
		"model":             Unset(),
		"sequences":         Unset(),
		"loci":              Unset(),
		"warning_threshold": Unset(),
	}
}

// MarginalizeDefaults returns the default parameters of the marginalize
// stage.
func MarginalizeDefaults() Config {
	return Config{
		"batch_size": New(64),
		"in_window":  New(2114),
		"out_window": New(1000),
		"n_loci":     New(100),
		"shuffle":    New(false),
		"seed":       New(0),
		"verbose":    New(false),
		"name":       Unset(),
		"model":      Unset(),
		"sequences":  Unset(),
		"loci":       Unset(),
		"motifs":     Unset(),
	}
}

// ModiscoMotifsDefaults returns the defaults of the motif discovery
// stage. This stage builds a command line rather than a parameter file.
func ModiscoMotifsDefaults() Config {
	return Config{
		"n_seqlets": New(100000),
		"verbose":   New(false),
	}
}

// ModiscoReportDefaults returns the defaults of the report stage. motifs
// is an optional MEME motif database to annotate the report with.
func ModiscoReportDefaults() Config {
	return Config{
		"motifs":  Unset(),
		"verbose": New(false),
	}
}

// PipelineDefaults returns the default top-level pipeline parameters.
// model is intentionally not in the table: an absent model survives
// validation and tells the controller to run the fit stage, while a
// user-provided model path skips it.
func PipelineDefaults() Config {
	return Config{
		"name":       Unset(),
		"sequences":  Unset(),
		"loci":       Unset(),
		"signals":    Unset(),
		"controls":   Unset(),
		"verbose":    New(false),
		"batch_size": New(64),
		"in_window":  New(2114),
		"out_window": New(1000),
		"max_jitter": New(128),
		"chroms":     New(append([]string(nil), validationChroms...)),

		"fit_parameters":            New(Config{}),
		"predict_parameters":        New(Config{}),
		"attribute_parameters":      New(Config{}),
		"modisco_motifs_parameters": New(Config{}),
		"modisco_report_parameters": New(Config{}),
		"marginalize_parameters":    New(Config{}),
	}
}
