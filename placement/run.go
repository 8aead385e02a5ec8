package placement

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"terraingrid/symgrid"
)

// Result 一个 plan 执行后的结果，树已销毁.
type Result struct {
	Plan       string
	Placements []Placement
	Stats      []LevelStats
	Grid       [][]bool // 根层占用，true 为已预留
	Snapshot   []byte   // 根层二进制快照
}

// Run 构建树、放置所有特征、记录根层状态，最后销毁树.
func Run(ctx context.Context, p *Plan, arena *symgrid.Arena, logger *slog.Logger) (*Result, error) {
	t, err := Build(p, arena, logger)
	if err != nil {
		return nil, err
	}
	defer t.Close()

	placements, err := t.Apply(ctx)
	if err != nil {
		return nil, fmt.Errorf("apply plan %q: %w", p.Name, err)
	}

	var snap bytes.Buffer
	if err := t.Root().WriteSnapshot(&snap); err != nil {
		return nil, fmt.Errorf("snapshot plan %q: %w", p.Name, err)
	}
	return &Result{
		Plan:       p.Name,
		Placements: placements,
		Stats:      t.Stats(),
		Grid:       t.Root().Occupancy(symgrid.Horizontal),
		Snapshot:   snap.Bytes(),
	}, nil
}

// RunAll 并发执行多个 plan，每个 plan 一棵独立的树. limit <= 0 时按 arena 槽位数推算并发度，
// 保证同时存活的层不会超过槽位数. 第一个错误会取消其余 plan.
func RunAll(ctx context.Context, plans []*Plan, arena *symgrid.Arena, logger *slog.Logger, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = ParallelLimit(plans, arena.Capacity())
	}
	results := make([]*Result, len(plans))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, p := range plans {
		g.Go(func() error {
			res, err := Run(ctx, p, arena, logger)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ParallelLimit 在 slots 个槽位内最多能同时跑几个 plan，至少为 1.
func ParallelLimit(plans []*Plan, slots int) int {
	need := 1
	for _, p := range plans {
		need = max(need, p.SlotsNeeded())
	}
	return max(1, slots/need)
}
