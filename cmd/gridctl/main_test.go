package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terraingrid/placement"
	"terraingrid/symgrid"
)

const testPlan = `
name: valley
seed: 5
root: {rows: 32, cols: 16}
levels:
  - {name: river, rows: 8, cols: 16, offset: 10}
  - {name: decor, kind: basic, parent: river, rows: 4, cols: 16, offset: 2}
features:
  - {name: bridge, level: river, orientation: horizontal, row: 0, col: 2, length: 6}
  - {name: fence, level: decor, orientation: h, row: 1, col: 10, length: 4}
  - {name: trees, orientation: vertical, length: 3, count: 5}
`

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--no-color"))

	err := cmd.Execute()

	return out.String(), err
}

func writePlan(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "valley.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testPlan), 0o600))

	return path
}

func TestRunCommandWritesSnapshot(t *testing.T) {
	dir := t.TempDir()
	plan := writePlan(t, dir)
	snapDir := filepath.Join(dir, "out")

	out, err := executeCommand(t, "run", plan, "--snapshot-dir", snapDir, "--grid")
	require.NoError(t, err)

	assert.Contains(t, out, "== valley (seed 5)")
	assert.Contains(t, out, "bridge")
	assert.Contains(t, out, "Total: 7")
	assert.Contains(t, out, "river")

	snapPath := filepath.Join(snapDir, "valley.sgrd")
	assert.Contains(t, out, "snapshot: "+snapPath)
	require.FileExists(t, snapPath)

	out, err = executeCommand(t, "inspect", snapPath, "--segments")
	require.NoError(t, err)
	assert.Contains(t, out, "32x16 free=487 reserved=25")
	assert.Contains(t, out, "Free runs:")
}

func TestRunCommandSeedOverride(t *testing.T) {
	plan := writePlan(t, t.TempDir())

	out, err := executeCommand(t, "run", plan, "--seed", "42", "--parallel", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "== valley (seed 42)")
}

func TestRunCommandErrors(t *testing.T) {
	_, err := executeCommand(t, "run")
	require.Error(t, err)

	_, err = executeCommand(t, "run", filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = executeCommand(t, "run", writePlan(t, t.TempDir()), "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestPrintCommand(t *testing.T) {
	plan := writePlan(t, t.TempDir())

	out, err := executeCommand(t, "print", plan, "--meta")
	require.NoError(t, err)

	assert.Contains(t, out, `level "root" 32x16`)
	assert.Contains(t, out, `level "river" 8x16`)
	assert.Contains(t, out, "valley 32x16 seed 5")

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	grid := lines[len(lines)-32:]
	for _, line := range grid {
		assert.Len(t, line, 16)
	}
	assert.Equal(t, "######", grid[10][2:8])
	assert.Equal(t, 4, strings.Count(grid[13][10:14], "#"))
}

func TestInspectCommandRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.sgrd")
	require.NoError(t, os.WriteFile(path, []byte("not a snapshot"), 0o600))

	_, err := executeCommand(t, "inspect", path)
	require.ErrorIs(t, err, symgrid.ErrBadSnapshot)
}

func TestInspectCommandRejectsOversizedHeaders(t *testing.T) {
	header := func(rows, cols uint16, n uint32) []byte {
		b := binary.LittleEndian.AppendUint32(nil, 0x5347_5244)
		b = binary.LittleEndian.AppendUint16(b, 1)
		b = binary.LittleEndian.AppendUint16(b, rows)
		b = binary.LittleEndian.AppendUint16(b, cols)
		return binary.LittleEndian.AppendUint32(b, n)
	}
	dir := t.TempDir()

	for name, data := range map[string][]byte{
		"huge count": header(65535, 65535, 2_000_000_000),
		"huge grid":  header(4096, 4096, 0),
	} {
		path := filepath.Join(dir, strings.ReplaceAll(name, " ", "_")+".sgrd")
		require.NoError(t, os.WriteFile(path, data, 0o600))

		_, err := executeCommand(t, "inspect", path)
		require.ErrorIs(t, err, symgrid.ErrBadSnapshot, name)
	}
}

func TestRenderGrid(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderGrid(&buf, [][]bool{{true, false}, {false, false}}))
	assert.Equal(t, "#.\n..\n", buf.String())
}

func TestTables(t *testing.T) {
	stats := statsTable([]placement.LevelStats{{Name: "root", Rows: 4, Cols: 4, FreeCells: 10, HSegments: 5, VSegments: 6}})
	assert.Contains(t, stats, "4x4")
	assert.Contains(t, stats, "root")

	ps := placementsTable([]placement.Placement{{Feature: "wall", Level: "root", Orientation: symgrid.Vertical, Segment: symgrid.Seg(1, 2, 3), RootRow: 1}})
	assert.Contains(t, ps, "wall")
	assert.Contains(t, ps, "vertical")
	assert.Contains(t, ps, "Total: 1")
}
