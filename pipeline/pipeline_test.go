package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"

	"github.com/AndreaMariani-AM/bpnet-lite-custom/config"
	"github.com/AndreaMariani-AM/bpnet-lite-custom/npz"
	"github.com/AndreaMariani-AM/bpnet-lite-custom/pipeline"
)

// recorder logs every collaborator invocation in order so tests can
// check stage sequencing across the Backend and Execer boundaries.
type recorder struct {
	calls  []string
	argvs  [][]string
	failAt string
	params map[string]config.Config
}

func newRecorder() *recorder {
	return &recorder{params: make(map[string]config.Config)}
}

func (r *recorder) record(op string, params config.Config) error {
	r.calls = append(r.calls, op)
	r.params[op] = params
	if op == r.failAt {
		return errors.New("backend exploded")
	}
	return nil
}

func (r *recorder) Fit(ctx context.Context, params config.Config, path string) error {
	return r.record("fit", params)
}

func (r *recorder) Predict(ctx context.Context, params config.Config, path string) error {
	return r.record("predict", params)
}

func (r *recorder) Attribute(ctx context.Context, params config.Config, path string) error {
	return r.record("attribute", params)
}

func (r *recorder) Marginalize(ctx context.Context, params config.Config, path string) error {
	return r.record("marginalize", params)
}

func (r *recorder) Run(ctx context.Context, name string, args ...string) error {
	r.argvs = append(r.argvs, append([]string{name}, args...))
	return r.record("exec:"+args[0], nil)
}

// testPipelineConfig builds a merged pipeline configuration over a tiny
// genome fixture so the attribute stage can really extract sequence.
func testPipelineConfig(t *testing.T, dir string) config.Config {
	fasta := filepath.Join(dir, "genome.fa")
	assert.NoError(t, os.WriteFile(fasta,
		[]byte(">chr1\nACGTACGTACGTACGTACGTACGTACGT\n"), 0644))
	bed := filepath.Join(dir, "peaks.bed")
	assert.NoError(t, os.WriteFile(bed, []byte("chr1\t4\t10\nchr1\t12\t18\n"), 0644))

	pcfg := config.Config{
		"name":       config.New(filepath.Join(dir, "run")),
		"sequences":  config.New(fasta),
		"loci":       config.New(bed),
		"signals":    config.New([]string{filepath.Join(dir, "signal.bw")}),
		"motifs":     config.New(filepath.Join(dir, "motifs.fa")),
		"chroms":     config.New([]string{"chr1"}),
		"in_window":  config.New(6),
		"out_window": config.New(4),
		"verbose":    config.New(false),
	}
	merged, err := config.Apply(pcfg, config.PipelineDefaults())
	assert.NoError(t, err)
	return merged
}

func TestPipelineStageOrder(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	rec := newRecorder()
	r := &pipeline.Runner{Backend: rec, Execer: rec}

	pcfg := testPipelineConfig(t, tempDir)
	ctx := vcontext.Background()
	assert.NoError(t, r.RunConfig(ctx, pcfg))

	expect.EQ(t, rec.calls, []string{
		"fit", "predict", "attribute", "exec:motifs", "exec:report", "marginalize",
	})

	// The fit stage writes the trained model path back for later stages.
	name, _ := pcfg["name"].Str()
	model, _ := pcfg["model"].Str()
	expect.EQ(t, model, name+".torch")
	predictModel, _ := rec.params["predict"]["model"].Str()
	expect.EQ(t, predictModel, name+".torch")

	// Each parameter-file stage left its audit record on disk.
	for _, stage := range []pipeline.Stage{
		pipeline.StageFit, pipeline.StagePredict,
		pipeline.StageAttribute, pipeline.StageMarginalize,
	} {
		if _, err := os.Stat(pipeline.ParamPath(name, stage)); err != nil {
			t.Errorf("missing parameter file for stage %s: %v", stage, err)
		}
	}

	// The attribute stage produced the one-hot archive consumed by
	// modisco.
	ohe, _ := pcfg["ohe_filename"].Str()
	expect.EQ(t, ohe, name+".ohe.npz")
	arrays, err := npz.ReadNPZ(ohe)
	assert.NoError(t, err)
	expect.EQ(t, arrays["arr_0"].Shape, []int{2, 4, 6})

	// Modisco argv threading: the motifs invocation names the ohe/attr
	// archives and the report consumes the motifs output.
	expect.EQ(t, rec.argvs[0], []string{
		"modisco", "motifs", "-s", name + ".ohe.npz", "-a", name + ".attr.npz",
		"-n", "100000", "-o", name + "_modisco_results.h5",
	})
	// The top-level motif database reaches the report as -m.
	motifsDB, _ := pcfg["motifs"].Str()
	expect.EQ(t, rec.argvs[1], []string{
		"modisco", "report", "-i", name + "_modisco_results.h5",
		"-o", name + "_modisco/", "-s", name + "_modisco/",
		"-m", motifsDB,
	})
}

func TestPipelineSkipsFitWhenModelProvided(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	rec := newRecorder()
	r := &pipeline.Runner{Backend: rec, Execer: rec}

	pcfg := testPipelineConfig(t, tempDir)
	pcfg["model"] = config.New(filepath.Join(tempDir, "existing.torch"))
	ctx := vcontext.Background()
	assert.NoError(t, r.RunConfig(ctx, pcfg))

	expect.EQ(t, rec.calls[0], "predict")
	for _, c := range rec.calls {
		expect.NEQ(t, c, "fit")
	}
	// No fit parameter file may be written for a skipped stage.
	name, _ := pcfg["name"].Str()
	_, err := os.Stat(pipeline.ParamPath(name, pipeline.StageFit))
	expect.True(t, os.IsNotExist(err))
	// The provided model is reused downstream.
	predictModel, _ := rec.params["predict"]["model"].Str()
	expect.EQ(t, predictModel, filepath.Join(tempDir, "existing.torch"))
}

func TestPipelineStopsAtFirstFailure(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	rec := newRecorder()
	rec.failAt = "predict"
	r := &pipeline.Runner{Backend: rec, Execer: rec}

	pcfg := testPipelineConfig(t, tempDir)
	ctx := vcontext.Background()
	err := r.RunConfig(ctx, pcfg)

	var stageErr *pipeline.StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected StageError, got %v", err)
	}
	expect.EQ(t, stageErr.Stage, pipeline.StagePredict)
	expect.EQ(t, rec.calls, []string{"fit", "predict"})
	expect.EQ(t, len(rec.argvs), 0)
}

func TestPipelineStageOverrides(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	rec := newRecorder()
	r := &pipeline.Runner{Backend: rec, Execer: rec}

	pcfg := testPipelineConfig(t, tempDir)
	pcfg["fit_parameters"] = config.New(map[string]interface{}{
		"batch_size": 16,
		"sequences":  nil, // unset override must not erase the top-level fasta
	})
	ctx := vcontext.Background()
	assert.NoError(t, r.RunConfig(ctx, pcfg))

	bs, _ := rec.params["fit"]["batch_size"].Int()
	expect.EQ(t, bs, 16)
	seqs, _ := rec.params["fit"]["sequences"].Str()
	fasta, _ := pcfg["sequences"].Str()
	expect.EQ(t, seqs, fasta)
	// Other stages keep the top-level batch size.
	bs, _ = rec.params["predict"]["batch_size"].Int()
	expect.EQ(t, bs, 64)
}

func TestPipelineInvalidOutputSelector(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	rec := newRecorder()
	r := &pipeline.Runner{Backend: rec, Execer: rec}

	pcfg := testPipelineConfig(t, tempDir)
	pcfg["attribute_parameters"] = config.New(map[string]interface{}{
		"output": "wiggle",
	})
	ctx := vcontext.Background()
	err := r.RunConfig(ctx, pcfg)

	var invalid *pipeline.InvalidOutputError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidOutputError, got %v", err)
	}
	expect.EQ(t, invalid.Output, "wiggle")
	// The attribute backend was never reached.
	for _, c := range rec.calls {
		expect.NEQ(t, c, "attribute")
	}
}

func TestRunFromParameterFile(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	fasta := filepath.Join(tempDir, "genome.fa")
	assert.NoError(t, os.WriteFile(fasta,
		[]byte(">chr1\nACGTACGTACGTACGTACGTACGTACGT\n"), 0644))
	bed := filepath.Join(tempDir, "peaks.bed")
	assert.NoError(t, os.WriteFile(bed, []byte("chr1\t4\t10\n"), 0644))

	body := `{
		"name": ` + quote(filepath.Join(tempDir, "run")) + `,
		"sequences": ` + quote(fasta) + `,
		"loci": ` + quote(bed) + `,
		"signals": [` + quote(filepath.Join(tempDir, "signal.bw")) + `],
		"motifs": ` + quote(filepath.Join(tempDir, "motifs.fa")) + `,
		"chroms": ["chr1"],
		"in_window": 6,
		"out_window": 4
	}`
	path := filepath.Join(tempDir, "pipeline.json")
	assert.NoError(t, os.WriteFile(path, []byte(body), 0644))

	rec := newRecorder()
	r := &pipeline.Runner{Backend: rec, Execer: rec}
	ctx := vcontext.Background()
	assert.NoError(t, r.Run(ctx, path))
	expect.EQ(t, rec.calls, []string{
		"fit", "predict", "attribute", "exec:motifs", "exec:report", "marginalize",
	})
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `\`, `\\`) + `"`
}
