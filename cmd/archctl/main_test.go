package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loveq369/symkernel/archive"
	"github.com/loveq369/symkernel/exprjson"
	"github.com/loveq369/symkernel/kernel"
)

func TestEncodeThenDecodeRoundTrips(t *testing.T) {
	dir := t.TempDir()
	exprPath := filepath.Join(dir, "expr.json")
	garcPath := filepath.Join(dir, "out.garc")
	outPath := filepath.Join(dir, "out.json")

	x := kernel.NewSymbol("x")
	e := kernel.AddOf(kernel.PowOf(x, kernel.Int(2)), kernel.Int(1))
	data, err := exprjson.Marshal(e)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(exprPath, data, 0644))

	require.NoError(t, runEncode(nil, []string{exprPath, garcPath}))
	require.NoError(t, runDecode(nil, []string{garcPath, outPath}))

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(got, &m))
	decoded, err := exprjson.FromMap(m)
	require.NoError(t, err)
	assert.True(t, decoded.Equal(e), "got %s, want %s", decoded, e)
}

func TestRunEncodeRejectsMissingFile(t *testing.T) {
	dir := t.TempDir()
	err := runEncode(nil, []string{filepath.Join(dir, "nope.json"), filepath.Join(dir, "out.garc")})
	assert.Error(t, err)
}

func TestRunEncodeRejectsMalformedExprJSON(t *testing.T) {
	dir := t.TempDir()
	exprPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(exprPath, []byte(`{"type":"bogus"}`), 0644))
	err := runEncode(nil, []string{exprPath, filepath.Join(dir, "out.garc")})
	assert.Error(t, err)
}

func TestRunCheckSucceedsOnWellFormedArchive(t *testing.T) {
	dir := t.TempDir()
	garcPath := filepath.Join(dir, "ok.garc")

	x := kernel.NewSymbol("x")
	e := kernel.MulOf(x, kernel.Int(3))
	f, err := os.Create(garcPath)
	require.NoError(t, err)
	require.NoError(t, archive.Write(f, e))
	require.NoError(t, f.Close())

	assert.NoError(t, runCheck(nil, []string{garcPath}))
}

func TestRunInspectWritesTextAndLatex(t *testing.T) {
	dir := t.TempDir()
	garcPath := filepath.Join(dir, "ok.garc")

	x := kernel.NewSymbol("x")
	e := kernel.PowOf(x, kernel.Int(2))
	var buf bytes.Buffer
	require.NoError(t, archive.Write(&buf, e))
	require.NoError(t, os.WriteFile(garcPath, buf.Bytes(), 0644))

	assert.NoError(t, runInspect(nil, []string{garcPath}))
}

func TestReadArchiveRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	garcPath := filepath.Join(dir, "corrupt.garc")
	require.NoError(t, os.WriteFile(garcPath, []byte("not a garc file"), 0644))

	_, err := readArchive(garcPath)
	assert.Error(t, err)
}
