package symgrid

import (
	"fmt"
	"log/slog"
)

// Reserver 各种层共有的预留接口.
type Reserver interface {
	ReserveVertical(row, col, length int) error
	ReserveHorizontal(row, col, length int) error
	Destroy()
}

// levelInfo 诊断输出用于沿父链向上遍历.
type levelInfo interface {
	Name() string
	Rows() int
	Cols() int
	Parent() (Reserver, int)
}

func reserveOn(r Reserver, o Orientation, row, col, length int) error {
	if o == Horizontal {
		return r.ReserveHorizontal(row, col, length)
	}
	return r.ReserveVertical(row, col, length)
}

// checkOn 沿父链试查一次预留，不修改任何层.
// 不认识的 Reserver 实现无法试查，视为通过.
func checkOn(r Reserver, o Orientation, row, col, length int) error {
	switch v := r.(type) {
	case *Level:
		if v.slab == nil {
			return fmt.Errorf("%w: %q", ErrDestroyed, v.name)
		}
		if err := checkBounds(v.rows, v.cols, o, row, col, length); err != nil {
			return err
		}
		if err := v.sets[o].Check(row, col, length); err != nil {
			return err
		}
		if v.parent != nil {
			return checkOn(v.parent, o, row+v.offset, col, length)
		}
	case *BasicLevel:
		if err := checkBounds(v.rows, v.cols, o, row, col, length); err != nil {
			return err
		}
		if v.parent != nil {
			return checkOn(v.parent, o, row+v.offset, col, length)
		}
	case *PassThroughLevel:
		if v.parent != nil {
			return checkOn(v.parent, o, row+v.offset, col, length)
		}
	}
	return nil
}

func checkBounds(rows, cols int, o Orientation, row, col, length int) error {
	seg := Seg(row, col, length)
	if length < 1 || row < 0 || col < 0 || row >= rows || col >= cols ||
		seg.End(o) > o.lineLen(rows, cols) {
		return fmt.Errorf("%w: %s %v in %dx%d grid", ErrOutOfRange, o, seg, rows, cols)
	}
	return nil
}

type options struct {
	name   string
	parent Reserver
	offset int
	arena  *Arena
	rnd    Rand
	logger *slog.Logger
}

// Option 层的构造选项.
type Option func(*options)

// WithParent 预留同步到 parent，行坐标加 rowOffset. parent 不归子层所有.
func WithParent(parent Reserver, rowOffset int) Option {
	return func(o *options) {
		o.parent = parent
		o.offset = rowOffset
	}
}

// WithArena 指定 slab 来源.
func WithArena(a *Arena) Option {
	return func(o *options) { o.arena = a }
}

// WithRand 指定随机预留使用的随机源.
func WithRand(rnd Rand) Option {
	return func(o *options) { o.rnd = rnd }
}

// WithName 诊断输出中的层名.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger 指定日志.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Level 完整记账的网格层：横纵两个方向各一个 OrientedSegmentSet.
//
// 任意方向的预留都会：
//  1. 先在本层试查（不修改）；
//  2. 同方向、行坐标加偏移后同步到父层；
//  3. 在本层该方向上切分；
//  4. 在正交方向上为每个覆盖到的格子预留长度为 1 的段.
//
// 任何一步失败，本层及所有祖先层都保持不变.
type Level struct {
	name   string
	rows   int
	cols   int
	parent Reserver
	offset int

	arena  *Arena
	slab   *slab
	sets   [2]*OrientedSegmentSet
	rnd    Rand
	logger *slog.Logger
}

// NewLevel 创建 rows x cols 的层，slab 从 Arena 获取，用完必须 Destroy.
func NewLevel(rows, cols int, opts ...Option) (*Level, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.arena == nil {
		o.arena = DefaultArena()
	}
	if o.rnd == nil {
		o.rnd = newDefaultRand()
	}
	if o.logger == nil {
		o.logger = o.arena.logger
	}
	if o.name == "" {
		o.name = fmt.Sprintf("level-%dx%d", rows, cols)
	}

	s, err := o.arena.acquire(rows, cols)
	if err != nil {
		return nil, fmt.Errorf("new level %q: %w", o.name, err)
	}

	l := &Level{
		name:   o.name,
		rows:   rows,
		cols:   cols,
		parent: o.parent,
		offset: o.offset,
		arena:  o.arena,
		slab:   s,
		rnd:    o.rnd,
		logger: o.logger,
	}
	for _, or := range []Orientation{Horizontal, Vertical} {
		l.sets[or] = newOrientedSegmentSet(or, rows, cols, &s.sides[or])
	}
	return l, nil
}

func (l *Level) Name() string { return l.name }
func (l *Level) Rows() int    { return l.rows }
func (l *Level) Cols() int    { return l.cols }

// Parent 返回父层及行偏移，无父层时返回 nil.
func (l *Level) Parent() (Reserver, int) { return l.parent, l.offset }

// Set 返回某个方向的空闲段集合，层已销毁时返回 nil.
func (l *Level) Set(o Orientation) *OrientedSegmentSet {
	if l.slab == nil {
		return nil
	}
	return l.sets[o]
}

// ReserveVertical 预留第 col 列的 [row, row+length) 行.
func (l *Level) ReserveVertical(row, col, length int) error {
	return l.reserve(Vertical, row, col, length)
}

// ReserveHorizontal 预留第 row 行的 [col, col+length) 列.
func (l *Level) ReserveHorizontal(row, col, length int) error {
	return l.reserve(Horizontal, row, col, length)
}

// ReserveRandomFittingVertical 在所有能放下长度为 length 的纵向位置中随机预留一个.
func (l *Level) ReserveRandomFittingVertical(length int) (Segment, error) {
	return l.reserveRandomFitting(Vertical, length)
}

// ReserveRandomFittingHorizontal 在所有能放下长度为 length 的横向位置中随机预留一个.
func (l *Level) ReserveRandomFittingHorizontal(length int) (Segment, error) {
	return l.reserveRandomFitting(Horizontal, length)
}

func (l *Level) reserve(o Orientation, row, col, length int) error {
	if l.slab == nil {
		return fmt.Errorf("%w: %q", ErrDestroyed, l.name)
	}
	if err := checkBounds(l.rows, l.cols, o, row, col, length); err != nil {
		return err
	}
	if err := l.sets[o].Check(row, col, length); err != nil {
		l.logger.Debug("symgrid reserve rejected", "level", l.name, "orientation", o, "row", row, "col", col, "len", length)
		return err
	}
	return l.commit(o, Seg(row, col, length))
}

func (l *Level) reserveRandomFitting(o Orientation, length int) (Segment, error) {
	if l.slab == nil {
		return Segment{}, fmt.Errorf("%w: %q", ErrDestroyed, l.name)
	}
	if length < 1 {
		return Segment{}, fmt.Errorf("%w: length %d", ErrOutOfRange, length)
	}
	seg, err := l.sets[o].Pick(length, l.rnd)
	if err != nil {
		l.logger.Debug("symgrid random reserve failed", "level", l.name, "orientation", o, "len", length)
		return Segment{}, err
	}
	if err := l.commit(o, seg); err != nil {
		return Segment{}, err
	}
	return seg, nil
}

// commit 调用方已确认 seg 在本层可预留
func (l *Level) commit(o Orientation, seg Segment) error {
	if l.parent != nil {
		if err := reserveOn(l.parent, o, seg.Row+l.offset, seg.Col, seg.Length); err != nil {
			l.logger.Debug("symgrid parent rejected", "level", l.name, "orientation", o, "segment", seg.String(), "offset", l.offset)
			return fmt.Errorf("level %q parent: %w", l.name, err)
		}
	}

	if err := l.sets[o].Reserve(seg.Row, seg.Col, seg.Length); err != nil {
		panic(fmt.Sprintf("symgrid: level %q checked %s %v but reserve failed: %v", l.name, o, seg, err))
	}
	orth := l.sets[o.Orthogonal()]
	for i := 0; i < seg.Length; i++ {
		r, c := seg.Cell(o, i)
		if err := orth.Reserve(r, c, 1); err != nil {
			panic(fmt.Sprintf("symgrid: level %q %s cell (%d,%d) out of sync: %v", l.name, o.Orthogonal(), r, c, err))
		}
	}
	return nil
}

// Destroy 归还 slab，之后的预留返回 ErrDestroyed. 重复调用无副作用.
func (l *Level) Destroy() {
	if l.slab == nil {
		return
	}
	s := l.slab
	l.slab = nil
	l.sets = [2]*OrientedSegmentSet{}
	l.arena.release(s)
}

// Destroyed 是否已销毁.
func (l *Level) Destroyed() bool { return l.slab == nil }

// FreeSegments 某个方向的所有空闲段.
func (l *Level) FreeSegments(o Orientation) []Segment {
	if l.slab == nil {
		return nil
	}
	return l.sets[o].FreeSegments()
}

// Occupancy 按某个方向的索引重建的占用网格.
func (l *Level) Occupancy(o Orientation) [][]bool {
	if l.slab == nil {
		return nil
	}
	return l.sets[o].Occupancy()
}

// IsReserved 单个格子是否已被预留.
func (l *Level) IsReserved(row, col int) (bool, error) {
	if err := checkBounds(l.rows, l.cols, Horizontal, row, col, 1); err != nil {
		return false, err
	}
	if l.slab == nil {
		return false, fmt.Errorf("%w: %q", ErrDestroyed, l.name)
	}
	return l.sets[Horizontal].Check(row, col, 1) != nil, nil
}
