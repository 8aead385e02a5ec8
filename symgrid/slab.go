package symgrid

import "unsafe"

// slab 一个层的全部后备存储：两个方向各一份，按形状档位（行列向上取 2 的幂）分配.
// 所有数组在创建时按上限一次分配好，之后不再增长.
type slab struct {
	key   shapeKey
	sides [2]sideStore
}

// sideStore 单个方向的存储：两棵红黑树的节点数组 + 长度维度的 Fenwick 数组.
type sideStore struct {
	// nodes 按结束位置的树，lenNodes 按长度的树
	nodes    []segmentNode
	lenNodes []segmentNode

	// 以长度为下标的 Fenwick：段数 / 格子数
	lenCnt []int
	lenSum []int
}

func newSlab(key shapeKey) *slab {
	s := &slab{key: key}
	rows, cols := key.rows(), key.cols()
	for _, o := range []Orientation{Horizontal, Vertical} {
		lineLen := o.lineLen(rows, cols)
		st := &s.sides[o]
		maxSegs := maxFreeSegments(o, rows, cols)
		st.nodes = make([]segmentNode, 0, maxSegs)
		st.lenNodes = make([]segmentNode, 0, maxSegs)
		st.lenCnt = make([]int, lineLen+1)
		st.lenSum = make([]int, lineLen+1)
	}
	return s
}

// maxFreeSegments 一条长度为 n 的线最多 ceil(n/2) 个空闲段
func maxFreeSegments(o Orientation, rows, cols int) int {
	return o.lines(rows, cols) * ((o.lineLen(rows, cols) + 1) / 2)
}

// slabBytes 返回某个形状档位的 slab 占用的字节数，与层上做过多少次预留无关.
func slabBytes(key shapeKey) int {
	rows, cols := key.rows(), key.cols()
	node := int(unsafe.Sizeof(segmentNode{}))
	word := int(unsafe.Sizeof(int(0)))
	total := 0
	for _, o := range []Orientation{Horizontal, Vertical} {
		total += 2*maxFreeSegments(o, rows, cols)*node + 2*(o.lineLen(rows, cols)+1)*word
	}
	return total
}

func (st *sideStore) reset() {
	st.nodes = st.nodes[:0]
	st.lenNodes = st.lenNodes[:0]
	clear(st.lenCnt)
	clear(st.lenSum)
}

func (s *slab) reset() {
	for i := range s.sides {
		s.sides[i].reset()
	}
}
