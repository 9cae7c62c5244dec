package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpgo/actuarial-engine/internal/output"
)

const bdConfig = "../../internal/config/testdata/bd_participant.yaml"

// run executes the CLI with args and returns what it wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), err
}

func TestComputeFormats(t *testing.T) {
	out, err := run(t, "compute", "-c", bdConfig)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ACTUARIAL VALUATION SUMMARY"))
	assert.Contains(t, out, "Mortality table: BR_EMS_2021 (MALE)")

	out, err = run(t, "compute", "-c", bdConfig, "-f", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "BD,PUC,"))

	out, err = run(t, "compute", "-c", bdConfig, "-f", "monthly")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), (120-30)*12+1)
}

func TestComputeToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	out, err := run(t, "compute", "-c", bdConfig, "-f", "json", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "BD", decoded["plan_type"])
	assert.Contains(t, decoded, "assumptions")
}

func TestComputeErrors(t *testing.T) {
	_, err := run(t, "compute", "-c", bdConfig, "-f", "pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, output.ErrUnsupportedFormat)

	_, err = run(t, "compute", "-c", "does-not-exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")

	_, err = run(t, "compute")
	require.Error(t, err)
}

func TestSolve(t *testing.T) {
	out, err := run(t, "solve", "-c", bdConfig)
	require.NoError(t, err)
	assert.Contains(t, out, "SOLVER")
	assert.Contains(t, out, "Target: CONTRIBUTION_RATE")
}

func TestTablesListAndShow(t *testing.T) {
	out, err := run(t, "tables", "list")
	require.NoError(t, err)
	codes := strings.Fields(out)
	assert.Contains(t, codes, "BR_EMS_2021")
	assert.Contains(t, codes, "ALVARO_VINDAS")

	out, err = run(t, "tables", "show", "AT_2000", "--gender", "female", "--to-age", "3")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "AT_2000 (FEMALE) ages 0-"))
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 6)

	_, err = run(t, "tables", "show", "NO_SUCH_TABLE")
	require.Error(t, err)
}

func TestTablesImport(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test_table.yaml")
	db := filepath.Join(dir, "tables.db")
	require.NoError(t, os.WriteFile(file, []byte(`code: TEST_TABLE
kind: mortality
min_age: 60
rates:
  male: [0.01, 0.02, 0.03]
`), 0644))

	out, err := run(t, "tables", "import", "--db", db, "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 table(s) for TEST_TABLE")

	out, err = run(t, "tables", "list", "--tables-db", db)
	require.NoError(t, err)
	assert.Contains(t, strings.Fields(out), "TEST_TABLE")

	out, err = run(t, "tables", "show", "TEST_TABLE", "--tables-db", db, "-g", "male")
	require.NoError(t, err)
	assert.Contains(t, out, "TEST_TABLE (MALE) ages 60-62")
	assert.Contains(t, out, "0.02000000")

	_, err = run(t, "tables", "import", "--file", file)
	require.Error(t, err)
}

func TestExample(t *testing.T) {
	out, err := run(t, "example")
	require.NoError(t, err)
	assert.Contains(t, out, "participant:")
	assert.Contains(t, out, "mortality_table: BR_EMS_2021")

	path := filepath.Join(t.TempDir(), "example.yaml")
	_, err = run(t, "example", "-o", path)
	require.NoError(t, err)

	out, err = run(t, "compute", "-c", path, "-f", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "BD,PUC,")
}
