package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runValidate(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newValidateCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if args == nil {
		args = []string{} // nil would make cobra fall back to os.Args
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeExperiment(t, dir, "")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("name: x\ndataset: {path: a.csv, target: y}\nmodels: [{kind: svm}]\n"), 0o644))

	dup := filepath.Join(dir, "dup.yaml")
	require.NoError(t, os.WriteFile(dup, []byte("name: x\ndataset: {path: a.csv, target: y}\nmodels: [{kind: knn, name: m}, {kind: dummy, name: m}]\n"), 0o644))

	out, err := runValidate(t, good)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+good)

	out, err = runValidate(t, good, bad, dup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 experiment file(s) invalid")
	assert.Contains(t, out, "✗ "+bad)
	assert.Contains(t, out, "/models/0/kind")
	assert.Contains(t, out, "duplicate name")

	_, err = runValidate(t, filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateCommand_Directory(t *testing.T) {
	dir := t.TempDir()
	writeExperiment(t, dir, "")

	out, err := runValidate(t, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "experiment.yaml")
	assert.Contains(t, out, "✓ ")

	_, err = runValidate(t, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no experiment files found")
}
