package placement_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terraingrid/placement"
	"terraingrid/symgrid"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newArena(slots int) *symgrid.Arena {
	return symgrid.NewArena(symgrid.ArenaConfig{Slots: slots, MaxDim: 64, Logger: discardLogger})
}

func mustParse(t *testing.T, src string) *placement.Plan {
	t.Helper()
	p, err := placement.ParsePlan([]byte(src))
	require.NoError(t, err)
	return p
}

func TestTreeApplyValley(t *testing.T) {
	t.Parallel()

	arena := newArena(2)
	tree, err := placement.Build(mustParse(t, valleyPlan), arena, discardLogger)
	require.NoError(t, err)
	defer tree.Close()
	assert.Equal(t, 2, arena.InUse())

	placements, err := tree.Apply(context.Background())
	require.NoError(t, err)
	require.Len(t, placements, 7)

	bridge := placements[0]
	assert.Equal(t, "bridge", bridge.Feature)
	assert.Equal(t, "river", bridge.Level)
	assert.Equal(t, symgrid.Seg(0, 2, 6), bridge.Segment)
	assert.Equal(t, 10, bridge.RootRow)

	fence := placements[1]
	assert.Equal(t, "props", fence.Level)
	assert.Equal(t, symgrid.Horizontal, fence.Orientation)
	assert.Equal(t, 13, fence.RootRow)

	root := tree.Root()
	for c := 10; c < 14; c++ {
		used, err := root.IsReserved(13, c)
		require.NoError(t, err)
		assert.True(t, used, "root (13,%d)", c)
	}
	river, ok := tree.Level("river")
	require.True(t, ok)
	used, err := river.(*symgrid.Level).IsReserved(3, 11)
	require.NoError(t, err)
	assert.True(t, used, "fence passes through the basic level into river")

	for _, p := range placements[2:] {
		assert.Equal(t, "trees", p.Feature)
		assert.Equal(t, symgrid.Vertical, p.Orientation)
		assert.Equal(t, 3, p.Segment.Length)
		assert.Equal(t, p.Segment.Row, p.RootRow)
	}

	stats := tree.Stats()
	require.Len(t, stats, 2)
	assert.Equal(t, placement.LevelStats{Name: "root", Rows: 32, Cols: 16, FreeCells: 512 - 6 - 4 - 15,
		HSegments: stats[0].HSegments, VSegments: stats[0].VSegments}, stats[0])
	assert.Equal(t, "river", stats[1].Name)
	assert.Equal(t, 1, stats[1].Depth)
	assert.Equal(t, 128-6-4, stats[1].FreeCells)

	tree.Close()
	assert.Equal(t, 0, arena.InUse())
	_, err = tree.Apply(context.Background())
	assert.ErrorIs(t, err, symgrid.ErrDestroyed)
}

func TestTreeApplyIsReproducible(t *testing.T) {
	t.Parallel()

	arena := newArena(4)
	run := func() []placement.Placement {
		tree, err := placement.Build(mustParse(t, valleyPlan), arena, discardLogger)
		require.NoError(t, err)
		defer tree.Close()
		out, err := tree.Apply(context.Background())
		require.NoError(t, err)
		return out
	}
	assert.Equal(t, run(), run())
}

func TestTreeApplyConflicts(t *testing.T) {
	t.Parallel()

	arena := newArena(2)
	p := mustParse(t, `
root: {rows: 4, cols: 4}
features:
  - {name: wall, orientation: h, row: 1, col: 0, length: 4}
  - {name: door, orientation: v, row: 0, col: 2, length: 3}
`)
	tree, err := placement.Build(p, arena, discardLogger)
	require.NoError(t, err)
	defer tree.Close()

	placements, err := tree.Apply(context.Background())
	require.ErrorIs(t, err, symgrid.ErrNoSpace)
	assert.Contains(t, err.Error(), `feature "door"`)
	require.Len(t, placements, 1)
	assert.Equal(t, "wall", placements[0].Feature)

	used, err := tree.Root().IsReserved(0, 2)
	require.NoError(t, err)
	assert.False(t, used, "failed feature must not leave partial reservations")
}

func TestTreeApplyOptionalFeatures(t *testing.T) {
	t.Parallel()

	arena := newArena(1)
	p := mustParse(t, `
root: {rows: 2, cols: 2}
features:
  - {name: logs, orientation: h, length: 2, count: 5, optional: true}
  - {name: rock, orientation: v, row: 0, col: 0, length: 1, optional: true}
`)
	tree, err := placement.Build(p, arena, discardLogger)
	require.NoError(t, err)
	defer tree.Close()

	placements, err := tree.Apply(context.Background())
	require.NoError(t, err)
	assert.Len(t, placements, 2)
	assert.Equal(t, 0, tree.Root().Set(symgrid.Horizontal).FreeCells())
}

func TestTreeApplyRequiredRandomFeatureFails(t *testing.T) {
	t.Parallel()

	arena := newArena(1)
	p := mustParse(t, `
root: {rows: 2, cols: 2}
features:
  - {name: logs, orientation: h, length: 2, count: 3}
`)
	tree, err := placement.Build(p, arena, discardLogger)
	require.NoError(t, err)
	defer tree.Close()

	placements, err := tree.Apply(context.Background())
	require.ErrorIs(t, err, symgrid.ErrNoFittingSpace)
	assert.Contains(t, err.Error(), `feature "logs" #2`)
	assert.Len(t, placements, 2)
}

func TestTreeApplyHonoursContext(t *testing.T) {
	t.Parallel()

	arena := newArena(1)
	tree, err := placement.Build(mustParse(t, `
root: {rows: 4, cols: 4}
features: [{orientation: h, length: 1}]
`), arena, discardLogger)
	require.NoError(t, err)
	defer tree.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	placements, err := tree.Apply(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, placements)
}

func TestBuildReleasesLevelsOnFailure(t *testing.T) {
	t.Parallel()

	arena := newArena(1)
	_, err := placement.Build(mustParse(t, valleyPlan), arena, discardLogger)
	require.ErrorIs(t, err, symgrid.ErrPoolExhausted)
	assert.Contains(t, err.Error(), `level "river"`)
	assert.Equal(t, 0, arena.InUse())

	big := mustParse(t, `
root: {rows: 100, cols: 4}
features: [{orientation: h, length: 1}]
`)
	_, err = placement.Build(big, arena, discardLogger)
	require.ErrorIs(t, err, symgrid.ErrOutOfRange)
	assert.Equal(t, 0, arena.InUse())
}

func TestRunProducesSnapshot(t *testing.T) {
	t.Parallel()

	arena := newArena(2)
	res, err := placement.Run(context.Background(), mustParse(t, valleyPlan), arena, discardLogger)
	require.NoError(t, err)
	assert.Equal(t, 0, arena.InUse())

	assert.Equal(t, "valley", res.Plan)
	assert.Len(t, res.Placements, 7)
	require.Len(t, res.Grid, 32)

	snap, err := symgrid.ReadSnapshot(bytes.NewReader(res.Snapshot))
	require.NoError(t, err)
	assert.Equal(t, res.Grid, snap.Occupancy())

	reserved := 0
	for _, row := range res.Grid {
		for _, used := range row {
			if used {
				reserved++
			}
		}
	}
	assert.Equal(t, 6+4+15, reserved)
}

func TestRunAll(t *testing.T) {
	t.Parallel()

	arena := newArena(4)
	var plans []*placement.Plan
	for seed := uint64(1); seed <= 6; seed++ {
		p := mustParse(t, valleyPlan)
		p.Seed = seed
		plans = append(plans, p)
	}
	assert.Equal(t, 2, placement.ParallelLimit(plans, arena.Capacity()))

	results, err := placement.RunAll(context.Background(), plans, arena, discardLogger, 0)
	require.NoError(t, err)
	require.Len(t, results, 6)
	for _, r := range results {
		require.NotNil(t, r)
		assert.Len(t, r.Placements, 7)
	}
	assert.Equal(t, 0, arena.InUse())

	// 同一种子结果相同
	again, err := placement.Run(context.Background(), plans[3], arena, discardLogger)
	require.NoError(t, err)
	assert.Equal(t, results[3].Placements, again.Placements)
}

func TestRunAllStopsOnFirstError(t *testing.T) {
	t.Parallel()

	arena := newArena(2)
	bad := mustParse(t, `
root: {rows: 2, cols: 2}
features: [{name: logs, orientation: h, length: 2, count: 3}]
`)
	_, err := placement.RunAll(context.Background(), []*placement.Plan{mustParse(t, valleyPlan), bad}, arena, discardLogger, 1)
	require.ErrorIs(t, err, symgrid.ErrNoFittingSpace)
	assert.Equal(t, 0, arena.InUse())
}

func TestParallelLimit(t *testing.T) {
	t.Parallel()

	p := mustParse(t, valleyPlan)
	assert.Equal(t, 4, placement.ParallelLimit([]*placement.Plan{p}, 8))
	assert.Equal(t, 1, placement.ParallelLimit([]*placement.Plan{p}, 1))
	assert.Equal(t, 3, placement.ParallelLimit(nil, 3))
}
