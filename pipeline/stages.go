package pipeline

import (
	"context"
	"fmt"

	"github.com/grailbio/base/log"

	"github.com/AndreaMariani-AM/bpnet-lite-custom/config"
	"github.com/AndreaMariani-AM/bpnet-lite-custom/extract"
	"github.com/AndreaMariani-AM/bpnet-lite-custom/npz"
)

// Stage names the pipeline stages in their fixed execution order.
type Stage string

const (
	StageFit         Stage = "fit"
	StagePredict     Stage = "predict"
	StageAttribute   Stage = "attribute"
	StageMotifs      Stage = "modisco_motifs"
	StageReport      Stage = "modisco_report"
	StageMarginalize Stage = "marginalize"
)

// ParamPath returns the stage parameter file path derived from the run
// name. Later stages rely on this convention to find earlier artifacts.
func ParamPath(name string, stage Stage) string {
	return fmt.Sprintf("%s.bpnet.%s.json", name, stage)
}

// Fit merges a fit parameter file against the fit defaults and hands it
// to the backend trainer. The trained model is expected at
// <name>.torch.
func Fit(ctx context.Context, be Backend, paramsPath string) error {
	params, err := config.Merge(paramsPath, config.FitDefaults())
	if err != nil {
		return err
	}
	if params["verbose"].Bool() {
		name, _ := params["name"].Str()
		log.Printf("fitting model %s", name)
	}
	return be.Fit(ctx, params, paramsPath)
}

// Predict merges a predict parameter file, fills the derived output
// archive names, and hands it to the backend predictor.
func Predict(ctx context.Context, be Backend, paramsPath string) error {
	params, err := config.Merge(paramsPath, config.PredictDefaults())
	if err != nil {
		return err
	}
	name, _ := params["name"].Str()
	params.SetDefault("profile_filename", name+".y_profiles.npz")
	params.SetDefault("counts_filename", name+".y_counts.npz")
	if params["verbose"].Bool() {
		log.Printf("predicting profiles for %s", name)
	}
	return be.Predict(ctx, params, paramsPath)
}

// Attribute merges an attribute parameter file, validates the output
// selector, one-hot encodes the loci into the ohe archive, and hands the
// parameters to the backend attributor, which writes the attribution
// archive.
func Attribute(ctx context.Context, be Backend, paramsPath string) error {
	params, err := config.Merge(paramsPath, config.AttributeDefaults())
	if err != nil {
		return err
	}
	output, _ := params["output"].Str()
	if output != "profile" && output != "count" {
		return &InvalidOutputError{Output: output}
	}
	name, _ := params["name"].Str()
	params.SetDefault("ohe_filename", name+".ohe.npz")
	params.SetDefault("attr_filename", name+".attr.npz")

	seqPath, _ := params["sequences"].Str()
	lociPath, _ := params["loci"].Str()
	chroms, _ := params["chroms"].Strs()
	window, _ := params["in_window"].Int()
	verbose := params["verbose"].Bool()

	genome, err := extract.ReadGenome(seqPath)
	if err != nil {
		return err
	}
	loci, err := extract.ReadLoci(lociPath, chroms, window)
	if err != nil {
		return err
	}
	ohe, _, err := extract.OneHotLoci(ctx, genome, loci, window, verbose)
	if err != nil {
		return err
	}
	oheFile, _ := params["ohe_filename"].Str()
	if err := npz.WriteNPZ(oheFile, map[string]*npz.Array{"arr_0": ohe}); err != nil {
		return err
	}
	if verbose {
		log.Printf("wrote %d one-hot loci to %s", ohe.Shape[0], oheFile)
	}
	return be.Attribute(ctx, params, paramsPath)
}

// Marginalize merges a marginalize parameter file, fills the derived
// output directory, and hands it to the backend.
func Marginalize(ctx context.Context, be Backend, paramsPath string) error {
	params, err := config.Merge(paramsPath, config.MarginalizeDefaults())
	if err != nil {
		return err
	}
	name, _ := params["name"].Str()
	params.SetDefault("output_filename_prefix", name+"_marginalize/")
	if params["verbose"].Bool() {
		log.Printf("marginalizing motifs for %s", name)
	}
	return be.Marginalize(ctx, params, paramsPath)
}
