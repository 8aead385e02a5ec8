package symgrid

import "fmt"

// EndPositionIndex 单个方向上按 (垂直坐标, 结束位置) 有序的空闲段集合，用于 best fit 查找.
type EndPositionIndex struct {
	tree segmentTree
}

func (e *EndPositionIndex) init(o Orientation, st *sideStore) {
	e.tree.init(o, st.nodes)
}

// Orientation 索引的方向.
func (e *EndPositionIndex) Orientation() Orientation { return e.tree.o }

// Len 空闲段个数.
func (e *EndPositionIndex) Len() int { return e.tree.size }

// Insert 加入一个空闲段.
func (e *EndPositionIndex) Insert(s Segment) {
	e.tree.insert(s)
}

// Find 返回完整覆盖请求区间的空闲段.
// 先取第一个结束位置 >= 请求起点的段，再确认它在同一条线上且起点不晚于请求起点、终点不早于请求终点.
func (e *EndPositionIndex) Find(row, col, length int) (Segment, error) {
	o := e.tree.o
	req := Seg(row, col, length)
	if length < 1 {
		return Segment{}, fmt.Errorf("%w: %s %v", ErrOutOfRange, o, req)
	}
	idx := e.tree.ceiling(req.Line(o), req.Start(o))
	if idx == nilIdx {
		return Segment{}, fmt.Errorf("%w: %s %v", ErrNoSpace, o, req)
	}
	found := e.tree.node(idx).seg
	if !found.Contains(o, req) {
		return Segment{}, fmt.Errorf("%w: %s %v (nearest free %v)", ErrNoSpace, o, req, found)
	}
	return found, nil
}

// Reserve 从包含请求区间的空闲段中切出请求区间.
// 返回被移除的原段以及 0~2 个余段（左、右），不存在的余段为零值.
func (e *EndPositionIndex) Reserve(row, col, length int) (removed Segment, rem [2]Segment, err error) {
	removed, err = e.Find(row, col, length)
	if err != nil {
		return Segment{}, rem, err
	}

	o := e.tree.o
	req := Seg(row, col, length)
	line := req.Line(o)
	if !e.tree.deleteExact(removed) {
		panic(fmt.Sprintf("symgrid: %s segment %v found but not deleted", o, removed))
	}
	if n := req.Start(o) - removed.Start(o); n > 0 {
		rem[0] = at(o, line, removed.Start(o), n)
		e.tree.insert(rem[0])
	}
	if n := removed.End(o) - req.End(o); n > 0 {
		rem[1] = at(o, line, req.End(o), n)
		e.tree.insert(rem[1])
	}
	return removed, rem, nil
}

// Each 按 (线, 位置) 升序遍历空闲段.
func (e *EndPositionIndex) Each(visit func(s Segment) bool) {
	e.tree.foreach(visit)
}
