package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmiot/mountio/abc"
)

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, abc.DeployFile), []byte("d"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, abc.ExecuteFile), []byte("e"), 0o644))

	var out bytes.Buffer
	require.NoError(t, run(&out, &abc.Mounts{Dir: dir}))

	lines := out.String()
	assert.Regexp(t, regexp.MustCompile(`(?m)^a\(\): -\d+$`), lines)
	assert.Contains(t, lines, "b(): 4.2\n")
	assert.Contains(t, lines, "c(): 2147483647, file 'outFile' contains: '42'\n")

	data, err := os.ReadFile(filepath.Join(dir, abc.OutputFile))
	require.NoError(t, err)
	assert.Equal(t, "42", string(data))
}

func TestRunFailsWhenOutputUnreadable(t *testing.T) {
	// Nonexistent directory: c() fails with 404 and the read-back aborts.
	m := &abc.Mounts{Dir: filepath.Join(t.TempDir(), "gone")}

	var out bytes.Buffer
	err := run(&out, m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read back outFile")
}
