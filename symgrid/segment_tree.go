package symgrid

const (
	nilIdx int32 = -1
)

type color uint8

const (
	red   color = 0
	black color = 1
)

// segmentNode ：数组索引版红黑树节点
type segmentNode struct {
	seg                 Segment
	left, right, parent int32
	size                int32 // 子树节点数
	color               color
}

// nodePool ：节点池（数组 + free list），数组来自 slab，容量预先按最大空闲段数分配
type nodePool struct {
	nodes    []segmentNode
	freeHead int32 // 用 nodes[idx].left 串 free list
}

func (p *nodePool) reset(nodes []segmentNode) {
	p.nodes = nodes[:0]
	p.freeHead = nilIdx
}

// alloc 返回新节点索引
func (p *nodePool) alloc(seg Segment) int32 {
	var idx int32
	if p.freeHead != nilIdx {
		idx = p.freeHead
		p.freeHead = p.nodes[idx].left // left 作为 nextFree
	} else {
		idx = int32(len(p.nodes))
		p.nodes = append(p.nodes, segmentNode{})
	}

	p.nodes[idx] = segmentNode{
		seg:    seg,
		left:   nilIdx,
		right:  nilIdx,
		parent: nilIdx,
		size:   1,
		color:  red,
	}
	return idx
}

func (p *nodePool) free(idx int32) {
	if idx < 0 {
		return
	}
	p.nodes[idx].left = p.freeHead
	p.freeHead = idx
}

// segmentKey 把段映射成排序用的二元组
type segmentKey func(s Segment) (int, int)

// segmentTree ：同一方向上的空闲段集合，默认按 (所在线, 最后一格) 排序.
// 同一条线上的空闲段互不相交，所以按最后一格排序与按起点排序一致.
// 每个节点记录子树大小，支持按名次取段.
type segmentTree struct {
	o    Orientation
	key  segmentKey
	root int32
	size int
	pool nodePool
}

func (t *segmentTree) init(o Orientation, nodes []segmentNode) {
	t.initKeyed(o, func(s Segment) (int, int) { return s.Line(o), s.Last(o) }, nodes)
}

func (t *segmentTree) initKeyed(o Orientation, key segmentKey, nodes []segmentNode) {
	t.o = o
	t.key = key
	t.root = nilIdx
	t.size = 0
	t.pool.reset(nodes)
}

func (t *segmentTree) node(i int32) *segmentNode { return &t.pool.nodes[i] }

func (t *segmentTree) sizeOf(i int32) int32 {
	if i == nilIdx {
		return 0
	}
	return t.pool.nodes[i].size
}

func (t *segmentTree) resize(i int32) {
	n := t.node(i)
	n.size = t.sizeOf(n.left) + t.sizeOf(n.right) + 1
}

// cmpKey 比较 (line, last) 二元组
func cmpKey(aLine, aLast, bLine, bLast int) int {
	if aLine != bLine {
		if aLine < bLine {
			return -1
		}
		return 1
	}
	if aLast < bLast {
		return -1
	}
	if aLast > bLast {
		return 1
	}
	return 0
}

func (t *segmentTree) cmp(a, b Segment) int {
	a1, a2 := t.key(a)
	b1, b2 := t.key(b)
	return cmpKey(a1, a2, b1, b2)
}

func (t *segmentTree) leftRotate(x int32) {
	nx := t.node(x)
	y := nx.right
	if y == nilIdx {
		return
	}
	ny := t.node(y)

	nx.right = ny.left
	if ny.left != nilIdx {
		t.node(ny.left).parent = x
	}

	ny.parent = nx.parent
	if nx.parent == nilIdx {
		t.root = y
	} else if x == t.node(nx.parent).left {
		t.node(nx.parent).left = y
	} else {
		t.node(nx.parent).right = y
	}

	ny.left = x
	nx.parent = y

	ny.size = nx.size
	t.resize(x)
}

func (t *segmentTree) rightRotate(y int32) {
	ny := t.node(y)
	x := ny.left
	if x == nilIdx {
		return
	}
	nx := t.node(x)

	ny.left = nx.right
	if nx.right != nilIdx {
		t.node(nx.right).parent = y
	}

	nx.parent = ny.parent
	if ny.parent == nilIdx {
		t.root = x
	} else if y == t.node(ny.parent).right {
		t.node(ny.parent).right = x
	} else {
		t.node(ny.parent).left = x
	}

	nx.right = y
	ny.parent = x

	nx.size = ny.size
	t.resize(y)
}

func (t *segmentTree) insertFixup(z int32) {
	for {
		p := t.node(z).parent
		if p == nilIdx || t.node(p).color == black {
			break
		}
		g := t.node(p).parent
		if g == nilIdx {
			break
		}

		if p == t.node(g).left {
			y := t.node(g).right // uncle
			if y != nilIdx && t.node(y).color == red {
				t.node(p).color = black
				t.node(y).color = black
				t.node(g).color = red
				z = g
				continue
			}
			if z == t.node(p).right {
				z = p
				t.leftRotate(z)
				p = t.node(z).parent
				g = t.node(p).parent
			}
			t.node(p).color = black
			t.node(g).color = red
			t.rightRotate(g)
		} else {
			y := t.node(g).left
			if y != nilIdx && t.node(y).color == red {
				t.node(p).color = black
				t.node(y).color = black
				t.node(g).color = red
				z = g
				continue
			}
			if z == t.node(p).left {
				z = p
				t.rightRotate(z)
				p = t.node(z).parent
				g = t.node(p).parent
			}
			t.node(p).color = black
			t.node(g).color = red
			t.leftRotate(g)
		}
	}
	if t.root != nilIdx {
		t.node(t.root).color = black
	}
}

// insert ：插入一个空闲段，调用方保证与已有段不相交
func (t *segmentTree) insert(seg Segment) {
	z := t.pool.alloc(seg)

	y := nilIdx
	x := t.root
	for x != nilIdx {
		y = x
		t.node(x).size++
		if t.cmp(seg, t.node(x).seg) < 0 {
			x = t.node(x).left
		} else {
			x = t.node(x).right
		}
	}
	t.node(z).parent = y
	if y == nilIdx {
		t.root = z
	} else if t.cmp(seg, t.node(y).seg) < 0 {
		t.node(y).left = z
	} else {
		t.node(y).right = z
	}

	t.insertFixup(z)
	t.size++
}

func (t *segmentTree) minimum(x int32) int32 {
	for x != nilIdx && t.node(x).left != nilIdx {
		x = t.node(x).left
	}
	return x
}

func (t *segmentTree) transplant(u, v int32) {
	pu := t.node(u).parent
	if pu == nilIdx {
		t.root = v
	} else if u == t.node(pu).left {
		t.node(pu).left = v
	} else {
		t.node(pu).right = v
	}
	if v != nilIdx {
		t.node(v).parent = pu
	}
}

// findExact ：按完全相等查找节点
func (t *segmentTree) findExact(seg Segment) int32 {
	x := t.root
	for x != nilIdx {
		n := t.node(x)
		c := t.cmp(seg, n.seg)
		if c == 0 {
			if n.seg != seg {
				return nilIdx
			}
			return x
		}
		if c < 0 {
			x = n.left
		} else {
			x = n.right
		}
	}
	return nilIdx
}

// ceiling 返回第一个键 >= (a, b) 的节点
func (t *segmentTree) ceiling(a, b int) int32 {
	res := nilIdx
	x := t.root
	for x != nilIdx {
		n := t.node(x)
		if k1, k2 := t.key(n.seg); cmpKey(k1, k2, a, b) >= 0 {
			res = x
			x = n.left
		} else {
			x = n.right
		}
	}
	return res
}

func (t *segmentTree) deleteFixup(x int32, xParent int32) {
	// nilIdx 视为黑色哨兵，xParent 由调用处传入
	for (x != t.root) && (x == nilIdx || t.node(x).color == black) {
		if xParent == nilIdx {
			break
		}
		if x == t.node(xParent).left {
			w := t.node(xParent).right
			if w != nilIdx && t.node(w).color == red {
				t.node(w).color = black
				t.node(xParent).color = red
				t.leftRotate(xParent)
				w = t.node(xParent).right
			}
			wl, wr := nilIdx, nilIdx
			if w != nilIdx {
				wl = t.node(w).left
				wr = t.node(w).right
			}
			if (wl == nilIdx || t.node(wl).color == black) &&
				(wr == nilIdx || t.node(wr).color == black) {
				if w != nilIdx {
					t.node(w).color = red
				}
				x = xParent
				xParent = t.node(x).parent
			} else {
				if wr == nilIdx || t.node(wr).color == black {
					if wl != nilIdx {
						t.node(wl).color = black
					}
					t.node(w).color = red
					t.rightRotate(w)
					w = t.node(xParent).right
					wr = t.node(w).right
				}
				t.node(w).color = t.node(xParent).color
				t.node(xParent).color = black
				if wr != nilIdx {
					t.node(wr).color = black
				}
				t.leftRotate(xParent)
				x = t.root
				xParent = nilIdx
			}
		} else {
			w := t.node(xParent).left
			if w != nilIdx && t.node(w).color == red {
				t.node(w).color = black
				t.node(xParent).color = red
				t.rightRotate(xParent)
				w = t.node(xParent).left
			}
			wl, wr := nilIdx, nilIdx
			if w != nilIdx {
				wl = t.node(w).left
				wr = t.node(w).right
			}
			if (wl == nilIdx || t.node(wl).color == black) &&
				(wr == nilIdx || t.node(wr).color == black) {
				if w != nilIdx {
					t.node(w).color = red
				}
				x = xParent
				xParent = t.node(x).parent
			} else {
				if wl == nilIdx || t.node(wl).color == black {
					if wr != nilIdx {
						t.node(wr).color = black
					}
					t.node(w).color = red
					t.leftRotate(w)
					w = t.node(xParent).left
					wl = t.node(w).left
				}
				t.node(w).color = t.node(xParent).color
				t.node(xParent).color = black
				if wl != nilIdx {
					t.node(wl).color = black
				}
				t.rightRotate(xParent)
				x = t.root
				xParent = nilIdx
			}
		}
	}
	if x != nilIdx {
		t.node(x).color = black
	}
}

// deleteExact ：按完全相等删除，返回是否删除成功
func (t *segmentTree) deleteExact(seg Segment) bool {
	z := t.findExact(seg)
	if z == nilIdx {
		return false
	}

	y := z
	yOriginalColor := t.node(y).color
	var x, xParent int32

	// 实际摘掉的位置：z 或其后继，从它的父节点向上子树大小都减一
	gone := z
	if t.node(z).left != nilIdx && t.node(z).right != nilIdx {
		gone = t.minimum(t.node(z).right)
	}
	for p := t.node(gone).parent; p != nilIdx; p = t.node(p).parent {
		t.node(p).size--
	}

	if t.node(z).left == nilIdx {
		x = t.node(z).right
		xParent = t.node(z).parent
		t.transplant(z, t.node(z).right)
	} else if t.node(z).right == nilIdx {
		x = t.node(z).left
		xParent = t.node(z).parent
		t.transplant(z, t.node(z).left)
	} else {
		y = t.minimum(t.node(z).right)
		yOriginalColor = t.node(y).color
		x = t.node(y).right

		if t.node(y).parent == z {
			xParent = y
			if x != nilIdx {
				t.node(x).parent = y
			}
		} else {
			xParent = t.node(y).parent
			t.transplant(y, t.node(y).right)
			t.node(y).right = t.node(z).right
			t.node(t.node(y).right).parent = y
		}
		t.transplant(z, y)
		t.node(y).left = t.node(z).left
		t.node(t.node(y).left).parent = y
		t.node(y).color = t.node(z).color
		t.node(y).size = t.node(z).size
	}

	t.pool.free(z)
	t.size--

	if yOriginalColor == black {
		t.deleteFixup(x, xParent)
	}
	return true
}

// next 中序后继
func (t *segmentTree) next(x int32) int32 {
	if r := t.node(x).right; r != nilIdx {
		return t.minimum(r)
	}
	p := t.node(x).parent
	for p != nilIdx && x == t.node(p).right {
		x = p
		p = t.node(p).parent
	}
	return p
}

// selectAt 返回中序第 rank 个节点（从 0 开始），越界返回 nilIdx
func (t *segmentTree) selectAt(rank int) int32 {
	if rank < 0 || rank >= t.size {
		return nilIdx
	}
	r := int32(rank)
	x := t.root
	for x != nilIdx {
		ls := t.sizeOf(t.node(x).left)
		switch {
		case r < ls:
			x = t.node(x).left
		case r == ls:
			return x
		default:
			r -= ls + 1
			x = t.node(x).right
		}
	}
	return nilIdx
}

// foreach 中序遍历（不分配），visit 返回 false 早停
func (t *segmentTree) foreach(visit func(seg Segment) bool) {
	if t.root < 0 {
		return
	}
	var st [64]int32
	top := 0
	cur := t.root

	for cur != nilIdx || top > 0 {
		for cur != nilIdx {
			st[top] = cur
			top++
			cur = t.node(cur).left
		}
		top--
		x := st[top]
		if !visit(t.node(x).seg) {
			return
		}
		cur = t.node(x).right
	}
}
