package cmd

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jptrs93/dmxproto/internal/generate"
)

const orderSchema = `
syntax = "proto3";
package shop;

enum Status { UNKNOWN = 0; ACTIVE = 1; }

message Order {
  option (dmxp_channel) = "orders";
  string id = 1;
  Status status = 2;
}

channel audit (Order) publish;
`

type testState struct {
	*globalState
	out *bytes.Buffer
}

func newTestState(t *testing.T, env map[string]string) testState {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "schemas/order.dmxp", []byte(orderSchema), 0o644))
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	out := &bytes.Buffer{}
	if env == nil {
		env = map[string]string{}
	}
	return testState{
		globalState: &globalState{
			ctx:    context.Background(),
			fs:     fs,
			env:    env,
			stdout: out,
			logger: logger,
		},
		out: out,
	}
}

func (ts testState) run(args ...string) error {
	root := newRootCommand(ts.globalState)
	root.cmd.SetArgs(args)
	return root.cmd.ExecuteContext(ts.ctx)
}

func (ts testState) read(t *testing.T, path string) string {
	t.Helper()
	data, err := afero.ReadFile(ts.fs, path)
	require.NoError(t, err)
	return string(data)
}

func TestGenerateDefaultTargets(t *testing.T) {
	ts := newTestState(t, nil)
	require.NoError(t, ts.run("generate", "--out", "gen", "schemas/order.dmxp"))

	assert.Contains(t, ts.read(t, "gen/order.dmxp.go"), "package shop")
	assert.Contains(t, ts.read(t, "gen/order_dmxp.rs"), "pub struct Order")
	assert.Contains(t, ts.read(t, "gen/order.dmxp.js"), "ORDER_CHANNEL")
	assert.Contains(t, ts.out.String(), "generated 3 files for 1 schemas")
}

func TestGenerateConfigPrecedence(t *testing.T) {
	ts := newTestState(t, map[string]string{
		"DMXPROTO_TARGETS":    "proto",
		"DMXPROTO_GO_PACKAGE": "orderspb",
	})
	require.NoError(t, afero.WriteFile(ts.fs, "dmxproto.yaml", []byte(`
targets: [go, js]
out: from-file
base_name: bus
`), 0o644))

	// env replaces the file's targets, the flag replaces both.
	require.NoError(t, ts.run("generate", "--target", "go,descriptor", "schemas/order.dmxp"))

	assert.Contains(t, ts.read(t, "from-file/bus.dmxp.go"), "package orderspb")
	assert.Regexp(t, `"name":\s+"bus.proto"`, ts.read(t, "from-file/bus.descriptor.json"))
	exists, err := afero.Exists(ts.fs, "from-file/bus.dmxp.proto")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGenerateExplicitConfigFile(t *testing.T) {
	ts := newTestState(t, nil)
	require.NoError(t, afero.WriteFile(ts.fs, "conf/custom.yaml", []byte("targets: [proto]\nout: proto-out\n"), 0o644))

	require.NoError(t, ts.run("generate", "-c", "conf/custom.yaml", "schemas/order.dmxp"))
	assert.Contains(t, ts.read(t, "proto-out/order.dmxp.proto"), "channel audit (Order) publish;")
}

func TestGenerateLink(t *testing.T) {
	ts := newTestState(t, nil)
	require.NoError(t, ts.run("generate", "--link", "--target", "descriptor", "schemas/order.dmxp"))
	assert.Regexp(t, `"type":\s+"TYPE_ENUM"`, ts.read(t, "order.descriptor.json"))
}

func TestGenerateErrors(t *testing.T) {
	ts := newTestState(t, nil)
	require.NoError(t, afero.WriteFile(ts.fs, "schemas/broken.dmxp", []byte("message A {\n  string a = 1;\n"), 0o644))

	err := ts.run("generate", "--target", "cobol", "schemas/order.dmxp")
	assert.ErrorIs(t, err, generate.ErrUnknownTarget)

	err = ts.run("generate", "schemas/broken.dmxp")
	assert.ErrorContains(t, err, "schemas/broken.dmxp")

	err = ts.run("generate", "--base-name", "x", "schemas/order.dmxp", "schemas/broken.dmxp")
	assert.ErrorContains(t, err, "base name")

	err = ts.run("generate", "schemas/missing.dmxp")
	assert.ErrorContains(t, err, "load schemas/missing.dmxp")

	err = ts.run("generate")
	assert.Error(t, err)
}

func TestParsePrintsTree(t *testing.T) {
	ts := newTestState(t, nil)
	require.NoError(t, ts.run("parse", "schemas/order.dmxp"))
	out := ts.out.String()
	assert.Contains(t, out, "package: shop")
	assert.Contains(t, out, "name: Order")
	assert.Contains(t, out, "kind: message")
	assert.NotContains(t, out, "kind: enum")

	ts.out.Reset()
	require.NoError(t, ts.run("parse", "--link", "schemas/order.dmxp"))
	assert.Contains(t, ts.out.String(), "kind: enum")
}

func TestBuildEnvMap(t *testing.T) {
	assert.Equal(t, map[string]string{
		"A":     "1",
		"B":     "x=y",
		"EMPTY": "",
	}, buildEnvMap([]string{"A=1", "B=x=y", "EMPTY="}))
}
