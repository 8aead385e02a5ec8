package symgrid

import "fmt"

// LengthIndex 单个方向上按长度索引的空闲段集合.
//
// 长度维度上两棵 Fenwick（段数、格子数）回答"长度 >= m 的段共有多少个可用起点"；
// 所有段再放进一棵按 (长度, row*cols+col) 排序、带子树大小的红黑树，用于按名次取段.
// 枚举顺序等价于按 hash = len*rows*cols + row*cols + col 升序，段内按起点升序.
// 节点数组来自 slab，容量按最大空闲段数预分配，索引本身不再额外分配内存.
type LengthIndex struct {
	o      Orientation
	rows   int
	cols   int
	cells  int
	maxLen int
	tree   segmentTree
	st     *sideStore
}

func (l *LengthIndex) init(o Orientation, rows, cols int, st *sideStore) {
	l.o = o
	l.rows = rows
	l.cols = cols
	l.cells = rows * cols
	l.maxLen = o.lineLen(rows, cols)
	l.st = st
	l.tree.initKeyed(o, func(s Segment) (int, int) { return s.Length, l.pos(s) }, st.lenNodes)
}

// Hash 返回段在枚举顺序中的键.
func (l *LengthIndex) Hash(s Segment) int {
	return s.Length*l.cells + s.Row*l.cols + s.Col
}

func (l *LengthIndex) pos(s Segment) int {
	return s.Row*l.cols + s.Col
}

// Insert 加入一个长度为 s.Length 的空闲段.
func (l *LengthIndex) Insert(s Segment) {
	l.tree.insert(s)
	l.update(s, 1)
}

// Delete 移除一个空闲段，段必须存在.
func (l *LengthIndex) Delete(s Segment) {
	if !l.tree.deleteExact(s) {
		panic(fmt.Sprintf("symgrid: length index has no %s segment %v", l.o, s))
	}
	l.update(s, -1)
}

func (l *LengthIndex) update(s Segment, delta int) {
	n := s.Length
	fenwickAdd(l.st.lenCnt, l.maxLen, n, delta)
	fenwickAdd(l.st.lenSum, l.maxLen, n, delta*n)
}

// Len 索引内的段数.
func (l *LengthIndex) Len() int {
	return fenwickPrefix(l.st.lenCnt, l.maxLen)
}

// fittingBefore 返回长度在 [minLength, upTo] 内的段贡献的起点数
func (l *LengthIndex) fittingBefore(minLength, upTo int) int {
	if upTo < minLength {
		return 0
	}
	cnt := fenwickPrefix(l.st.lenCnt, upTo) - fenwickPrefix(l.st.lenCnt, minLength-1)
	sum := fenwickPrefix(l.st.lenSum, upTo) - fenwickPrefix(l.st.lenSum, minLength-1)
	return sum - (minLength-1)*cnt
}

// CountFittingSpaces 所有长度 >= minLength 的段的可用起点总数，长度为 N 的段贡献 N-minLength+1 个.
func (l *LengthIndex) CountFittingSpaces(minLength int) int {
	if minLength < 1 {
		minLength = 1
	}
	if minLength > l.maxLen {
		return 0
	}
	return l.fittingBefore(minLength, l.maxLen)
}

// KthFittingSpace 返回第 k 个（从 1 开始）可用起点上长度为 minLength 的段.
// 同一组空闲段、同样的 (minLength, k) 总是得到同一个结果.
func (l *LengthIndex) KthFittingSpace(minLength, k int) (Segment, error) {
	if minLength < 1 {
		return Segment{}, fmt.Errorf("%w: length %d", ErrOutOfRange, minLength)
	}
	total := l.CountFittingSpaces(minLength)
	if k < 1 || k > total {
		return Segment{}, fmt.Errorf("%w: k=%d not in [1, %d]", ErrOutOfRange, k, total)
	}

	// 二分找最小的 n，使长度在 [minLength, n] 内的起点数 >= k
	lo, hi := minLength, l.maxLen
	for lo < hi {
		mid := (lo + hi) / 2
		if l.fittingBefore(minLength, mid) >= k {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	n := lo

	r := k - l.fittingBefore(minLength, n-1) - 1 // 0-indexed
	per := n - minLength + 1
	idx, off := r/per, r%per

	// 长度更短的段都排在前面
	x := l.tree.selectAt(fenwickPrefix(l.st.lenCnt, n-1) + idx)
	if x == nilIdx {
		panic(fmt.Sprintf("symgrid: %s length index lost rank %d of length %d", l.o, idx, n))
	}
	seg := l.tree.node(x).seg
	return at(l.o, seg.Line(l.o), seg.Start(l.o)+off, minLength), nil
}

// Each 按枚举顺序遍历长度 >= minLength 的段，visit 返回 false 早停.
func (l *LengthIndex) Each(minLength int, visit func(s Segment) bool) {
	if minLength < 1 {
		minLength = 1
	}
	for x := l.tree.ceiling(minLength, 0); x != nilIdx; x = l.tree.next(x) {
		if !visit(l.tree.node(x).seg) {
			return
		}
	}
}

// FreeArraysIfCleanedUp 索引已空时把节点池收回到初始状态，返回是否收回.
func (l *LengthIndex) FreeArraysIfCleanedUp() bool {
	if l.tree.size != 0 {
		return false
	}
	l.tree.initKeyed(l.o, l.tree.key, l.st.lenNodes)
	return true
}
