package pipeline

import (
	"context"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"

	"github.com/AndreaMariani-AM/bpnet-lite-custom/config"
)

// DefaultModisco is the motif discovery executable used when Runner's
// Modisco field is empty.
const DefaultModisco = "modisco"

// Runner drives a full pipeline run. The pipeline configuration is owned
// by the Runner for the duration of Run and mutated only between stages,
// as each stage writes its artifact paths back for the following stages
// to pick up as top-level fallbacks.
type Runner struct {
	Backend Backend
	Execer  Execer
	// Modisco is the motif discovery executable, DefaultModisco when
	// empty.
	Modisco string
}

// Run merges the pipeline parameter file against the pipeline defaults
// and executes the stages in their fixed order, stopping at the first
// failure.
func (r *Runner) Run(ctx context.Context, paramsPath string) error {
	pcfg, err := config.Merge(paramsPath, config.PipelineDefaults())
	if err != nil {
		return err
	}
	return r.RunConfig(ctx, pcfg)
}

// RunConfig executes the stages against an already-merged pipeline
// configuration.
func (r *Runner) RunConfig(ctx context.Context, pcfg config.Config) error {
	if _, ok := pcfg["name"].Str(); !ok {
		return errors.E("pipeline configuration has no run name")
	}
	steps := []struct {
		stage Stage
		fn    func(context.Context, config.Config) error
	}{
		{StageFit, r.fit},
		{StagePredict, r.predict},
		{StageAttribute, r.attribute},
		{StageMotifs, r.modiscoMotifs},
		{StageReport, r.modiscoReport},
		{StageMarginalize, r.marginalize},
	}
	for _, s := range steps {
		if err := s.fn(ctx, pcfg); err != nil {
			return &StageError{Stage: s.stage, Err: err}
		}
	}
	if pcfg["verbose"].Bool() {
		name, _ := pcfg["name"].Str()
		log.Printf("pipeline %s complete", name)
	}
	return nil
}

func (r *Runner) modisco() string {
	if r.Modisco == "" {
		return DefaultModisco
	}
	return r.Modisco
}

// fit trains a model unless the pipeline configuration already names
// one; a provided model skips the stage entirely and no parameter file
// is written.
func (r *Runner) fit(ctx context.Context, pcfg config.Config) error {
	if pcfg["model"].IsSet() {
		if pcfg["verbose"].Bool() {
			log.Printf("model provided, skipping fit")
		}
		return nil
	}
	name, _ := pcfg["name"].Str()
	subset := config.ExtractSubset(pcfg, config.FitDefaults(), "fit_parameters")
	path := ParamPath(name, StageFit)
	if err := subset.WriteFile(path); err != nil {
		return err
	}
	if err := Fit(ctx, r.Backend, path); err != nil {
		return err
	}
	pcfg["model"] = config.New(name + ".torch")
	return nil
}

func (r *Runner) predict(ctx context.Context, pcfg config.Config) error {
	name, _ := pcfg["name"].Str()
	subset := config.ExtractSubset(pcfg, config.PredictDefaults(), "predict_parameters")
	subset.SetDefault("profile_filename", name+".y_profiles.npz")
	subset.SetDefault("counts_filename", name+".y_counts.npz")
	path := ParamPath(name, StagePredict)
	if err := subset.WriteFile(path); err != nil {
		return err
	}
	if err := Predict(ctx, r.Backend, path); err != nil {
		return err
	}
	pcfg["profile_filename"] = subset["profile_filename"]
	pcfg["counts_filename"] = subset["counts_filename"]
	return nil
}

func (r *Runner) attribute(ctx context.Context, pcfg config.Config) error {
	name, _ := pcfg["name"].Str()
	subset := config.ExtractSubset(pcfg, config.AttributeDefaults(), "attribute_parameters")
	subset.SetDefault("ohe_filename", name+".ohe.npz")
	subset.SetDefault("attr_filename", name+".attr.npz")
	path := ParamPath(name, StageAttribute)
	if err := subset.WriteFile(path); err != nil {
		return err
	}
	if err := Attribute(ctx, r.Backend, path); err != nil {
		return err
	}
	pcfg["ohe_filename"] = subset["ohe_filename"]
	pcfg["attr_filename"] = subset["attr_filename"]
	return nil
}

// modiscoMotifs runs motif discovery. The modisco tool keeps its own CLI,
// so this stage builds an argument list instead of a parameter file.
func (r *Runner) modiscoMotifs(ctx context.Context, pcfg config.Config) error {
	name, _ := pcfg["name"].Str()
	subset := config.ExtractSubset(pcfg, config.ModiscoMotifsDefaults(), "modisco_motifs_parameters")
	subset.FillFrom(config.ModiscoMotifsDefaults())
	subset.SetDefault("output_filename", name+"_modisco_results.h5")

	ohe, _ := pcfg["ohe_filename"].Str()
	attr, _ := pcfg["attr_filename"].Str()
	if ohe == "" || attr == "" {
		return errors.E("motif discovery needs the one-hot and attribution archives from the attribute stage")
	}
	nSeqlets, _ := subset["n_seqlets"].Int()
	results, _ := subset["output_filename"].Str()
	if subset["verbose"].Bool() || pcfg["verbose"].Bool() {
		log.Printf("running %s motifs on %s", r.modisco(), attr)
	}
	err := r.Execer.Run(ctx, r.modisco(),
		"motifs", "-s", ohe, "-a", attr, "-n", strconv.Itoa(nSeqlets), "-o", results)
	if err != nil {
		return err
	}
	pcfg["modisco_results_filename"] = config.New(results)
	return nil
}

// modiscoReport renders the motif report, again via the external CLI.
func (r *Runner) modiscoReport(ctx context.Context, pcfg config.Config) error {
	name, _ := pcfg["name"].Str()
	subset := config.ExtractSubset(pcfg, config.ModiscoReportDefaults(), "modisco_report_parameters")
	subset.FillFrom(config.ModiscoReportDefaults())
	subset.SetDefault("output_folder", name+"_modisco/")

	results, _ := pcfg["modisco_results_filename"].Str()
	folder, _ := subset["output_folder"].Str()
	args := []string{"report", "-i", results, "-o", folder, "-s", folder}
	if db, ok := subset["motifs"].Str(); ok {
		args = append(args, "-m", db)
	}
	if subset["verbose"].Bool() || pcfg["verbose"].Bool() {
		log.Printf("rendering motif report into %s", folder)
	}
	return r.Execer.Run(ctx, r.modisco(), args...)
}

func (r *Runner) marginalize(ctx context.Context, pcfg config.Config) error {
	name, _ := pcfg["name"].Str()
	subset := config.ExtractSubset(pcfg, config.MarginalizeDefaults(), "marginalize_parameters")
	subset.SetDefault("output_filename_prefix", name+"_marginalize/")
	path := ParamPath(name, StageMarginalize)
	if err := subset.WriteFile(path); err != nil {
		return err
	}
	return Marginalize(ctx, r.Backend, path)
}
