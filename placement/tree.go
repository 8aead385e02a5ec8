package placement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"terraingrid/symgrid"
)

// Placement 一次成功的放置.
type Placement struct {
	Feature     string
	Level       string
	Orientation symgrid.Orientation
	Segment     symgrid.Segment // 所在层的坐标
	RootRow     int             // 换算到根层的起始行
}

// LevelStats 一个 full 层的占用统计.
type LevelStats struct {
	Name      string
	Depth     int
	Rows      int
	Cols      int
	FreeCells int
	HSegments int
	VSegments int
}

type treeLevel struct {
	spec       LevelSpec
	depth      int
	rootOffset int
	r          symgrid.Reserver
	full       *symgrid.Level
}

// Tree 一个 plan 实例化出来的层级树，只能在一个 goroutine 内使用.
type Tree struct {
	plan   *Plan
	logger *slog.Logger
	rnd    symgrid.Rand

	levels map[string]*treeLevel
	order  []*treeLevel // 父层在前
	closed bool
}

// Build 按 plan 创建层级树，full 层的 slab 从 arena 获取.
// 失败时已创建的层全部销毁.
func Build(p *Plan, arena *symgrid.Arena, logger *slog.Logger) (*Tree, error) {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tree{
		plan:   p,
		logger: logger.With("plan", p.Name),
		rnd:    symgrid.NewSeededRand(p.Seed),
		levels: make(map[string]*treeLevel, len(p.Levels)+1),
	}

	specs := append([]LevelSpec{p.Root}, p.Levels...)
	for _, spec := range specs {
		if err := t.add(spec, arena); err != nil {
			t.Close()
			return nil, fmt.Errorf("build plan %q: level %q: %w", p.Name, spec.Name, err)
		}
	}
	t.logger.Debug("placement tree built", "levels", len(t.order), "slots", arena.InUse())
	return t, nil
}

func (t *Tree) add(spec LevelSpec, arena *symgrid.Arena) error {
	tl := &treeLevel{spec: spec}
	var parent symgrid.Reserver
	if spec.Parent != "" {
		p, ok := t.levels[spec.Parent]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownParent, spec.Parent)
		}
		parent = p.r
		tl.depth = p.depth + 1
		tl.rootOffset = p.rootOffset + spec.Offset
	}

	switch spec.Kind {
	case KindFull:
		opts := []symgrid.Option{
			symgrid.WithArena(arena),
			symgrid.WithName(spec.Name),
			symgrid.WithRand(t.rnd),
			symgrid.WithLogger(t.logger),
		}
		if parent != nil {
			opts = append(opts, symgrid.WithParent(parent, spec.Offset))
		}
		l, err := symgrid.NewLevel(spec.Rows, spec.Cols, opts...)
		if err != nil {
			return err
		}
		tl.r, tl.full = l, l
	case KindBasic:
		b, err := symgrid.NewBasicLevel(spec.Name, spec.Rows, spec.Cols, parent, spec.Offset)
		if err != nil {
			return err
		}
		tl.r = b
	case KindPassThrough:
		tl.r = symgrid.NewPassThroughLevel(spec.Name, parent, spec.Offset)
	default:
		return fmt.Errorf("%w, got %q", ErrInvalidKind, spec.Kind)
	}

	t.levels[spec.Name] = tl
	t.order = append(t.order, tl)
	return nil
}

// Root 根层.
func (t *Tree) Root() *symgrid.Level {
	if len(t.order) == 0 {
		return nil
	}
	return t.order[0].full
}

// Level 按名字取层.
func (t *Tree) Level(name string) (symgrid.Reserver, bool) {
	tl, ok := t.levels[name]
	if !ok {
		return nil, false
	}
	return tl.r, true
}

// Apply 按顺序放置所有特征. 出错时返回已完成的放置和错误，树保持出错前的状态.
func (t *Tree) Apply(ctx context.Context) ([]Placement, error) {
	if t.closed {
		return nil, fmt.Errorf("apply plan %q: %w", t.plan.Name, symgrid.ErrDestroyed)
	}
	var out []Placement
	for _, f := range t.plan.Features {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		tl, ok := t.levels[f.Level]
		if !ok {
			return out, fmt.Errorf("feature %q: %w: %q", f.Name, ErrUnknownLevel, f.Level)
		}
		o, err := symgrid.ParseOrientation(f.Orientation)
		if err != nil {
			return out, fmt.Errorf("feature %q: %w", f.Name, err)
		}

		if f.Fixed() {
			seg := symgrid.Seg(*f.Row, *f.Col, f.Length)
			if err := reserve(tl.r, o, seg); err != nil {
				if f.Optional && isNoSpace(err) {
					t.logger.Debug("optional feature skipped", "feature", f.Name, "level", f.Level, "err", err)
					continue
				}
				return out, fmt.Errorf("feature %q: %w", f.Name, err)
			}
			out = append(out, t.placement(f, tl, o, seg))
			continue
		}

		if tl.full == nil {
			return out, fmt.Errorf("feature %q: %w", f.Name, ErrRandomOnUntracked)
		}
		for i := 0; i < f.Count; i++ {
			seg, err := reserveRandom(tl.full, o, f.Length)
			if err != nil {
				if f.Optional && isNoSpace(err) {
					t.logger.Debug("optional feature exhausted", "feature", f.Name, "level", f.Level, "placed", i, "wanted", f.Count)
					break
				}
				return out, fmt.Errorf("feature %q #%d: %w", f.Name, i, err)
			}
			out = append(out, t.placement(f, tl, o, seg))
		}
	}
	t.logger.Info("plan applied", "placements", len(out))
	return out, nil
}

func (t *Tree) placement(f FeatureSpec, tl *treeLevel, o symgrid.Orientation, seg symgrid.Segment) Placement {
	return Placement{
		Feature:     f.Name,
		Level:       tl.spec.Name,
		Orientation: o,
		Segment:     seg,
		RootRow:     seg.Row + tl.rootOffset,
	}
}

func reserve(r symgrid.Reserver, o symgrid.Orientation, seg symgrid.Segment) error {
	if o == symgrid.Horizontal {
		return r.ReserveHorizontal(seg.Row, seg.Col, seg.Length)
	}
	return r.ReserveVertical(seg.Row, seg.Col, seg.Length)
}

func reserveRandom(l *symgrid.Level, o symgrid.Orientation, length int) (symgrid.Segment, error) {
	if o == symgrid.Horizontal {
		return l.ReserveRandomFittingHorizontal(length)
	}
	return l.ReserveRandomFittingVertical(length)
}

// 父层拒绝（随机挑中的位置在父层已被占）同样算放不下
func isNoSpace(err error) bool {
	return errors.Is(err, symgrid.ErrNoSpace) || errors.Is(err, symgrid.ErrNoFittingSpace)
}

// Stats 所有 full 层的统计，父层在前.
func (t *Tree) Stats() []LevelStats {
	var out []LevelStats
	for _, tl := range t.order {
		if tl.full == nil || tl.full.Destroyed() {
			continue
		}
		h, v := tl.full.Set(symgrid.Horizontal), tl.full.Set(symgrid.Vertical)
		out = append(out, LevelStats{
			Name:      tl.spec.Name,
			Depth:     tl.depth,
			Rows:      tl.full.Rows(),
			Cols:      tl.full.Cols(),
			FreeCells: h.FreeCells(),
			HSegments: h.Ends().Len(),
			VSegments: v.Ends().Len(),
		})
	}
	return out
}

// Close 先子后父销毁所有层，重复调用无副作用.
func (t *Tree) Close() {
	if t.closed {
		return
	}
	t.closed = true
	for i := len(t.order) - 1; i >= 0; i-- {
		t.order[i].r.Destroy()
	}
}
