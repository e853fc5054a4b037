package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestImportExportJobs(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "shiprec.db")
	in := filepath.Join(dir, "countries.csv")
	require.NoError(t, os.WriteFile(in, []byte("\"Code\",\"Name\"\n\"GB\",\"United Kingdom\"\n\"FR\",\"France\"\n"), 0o600))

	out, err := execute(t, "--sqlite-path", db, "import", "countries", in)
	require.NoError(t, err)
	assert.Equal(t, "Imported 2 countries records from countries.csv\n", out)

	exported := filepath.Join(dir, "out", "countries-copy.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(exported), 0o750))
	out, err = execute(t, "--sqlite-path", db, "export", "countries", exported)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 countries records")

	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Equal(t, "\"Code\",\"Name\"\n\"GB\",\"United Kingdom\"\n\"FR\",\"France\"\n", string(data))

	out, err = execute(t, "--sqlite-path", db, "jobs")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Country Export")
	assert.Contains(t, lines[2], "Country Import")
}

func TestImport_FailureReportsCode(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "countries.csv")
	require.NoError(t, os.WriteFile(in, []byte("\"Code\",\"Name\"\n\"bad\"\n"), 0o600))

	_, err := execute(t, "--store", "memory", "import", "countries", in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IMP001")
	assert.Contains(t, err.Error(), "Invalid record format at line 2")
}

func TestImport_UnknownKind(t *testing.T) {
	_, err := execute(t, "--store", "memory", "import", "whales", "x.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KND001")
}

func TestExportAll(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "--store", "memory", "export-all", dir, "--stamp", "test")
	require.NoError(t, err)
	assert.Contains(t, out, "vessels")

	_, err = os.Stat(filepath.Join(dir, "sightings-test.csv"))
	assert.NoError(t, err)
}

func TestKinds(t *testing.T) {
	out, err := execute(t, "kinds")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 8)
	assert.True(t, strings.HasPrefix(lines[0], "countries"))
	assert.Contains(t, lines[5], "16 columns")
}

func TestBadStoreFlag(t *testing.T) {
	_, err := execute(t, "--store", "oracle", "jobs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER")
}
