package tools_test

import (
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil/expect"

	"github.com/AndreaMariani-AM/bpnet-lite-custom/tools"
)

func TestCmdBackendExitStatus(t *testing.T) {
	ctx := vcontext.Background()
	ok := &tools.CmdBackend{FitCmd: "true"}
	expect.NoError(t, ok.Fit(ctx, nil, "params.json"))

	bad := &tools.CmdBackend{FitCmd: "false"}
	err := bad.Fit(ctx, nil, "params.json")
	expect.NotNil(t, err)
	expect.HasSubstr(t, err.Error(), "false")
}

func TestProcExecer(t *testing.T) {
	ctx := vcontext.Background()
	expect.NoError(t, tools.ProcExecer{}.Run(ctx, "true"))
	expect.NotNil(t, tools.ProcExecer{}.Run(ctx, "this-command-does-not-exist"))
}
