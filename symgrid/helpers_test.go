package symgrid

import (
	"io"
	"log/slog"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestArena(t testing.TB, slots int) *Arena {
	t.Helper()
	return NewArena(ArenaConfig{Slots: slots, MaxDim: 64, Logger: discardLogger})
}

// newTestLevel 创建一个测试结束时自动 Destroy 的层
func newTestLevel(t testing.TB, a *Arena, rows, cols int, opts ...Option) *Level {
	t.Helper()
	all := append([]Option{WithArena(a), WithRand(NewSeededRand(7))}, opts...)
	l, err := NewLevel(rows, cols, all...)
	require.NoError(t, err)
	t.Cleanup(l.Destroy)
	return l
}

// newTestSide 单独取一份方向存储，用于直接测试索引
func newTestSide(o Orientation, rows, cols int) *sideStore {
	s := newSlab(shapeOf(rows, cols))
	return &s.sides[o]
}

// requireConsistent 检查一个层的两个方向、两种索引互相一致
func requireConsistent(t testing.TB, l *Level) {
	t.Helper()
	h, v := l.Occupancy(Horizontal), l.Occupancy(Vertical)
	require.Equal(t, h, v, "horizontal and vertical occupancy differ")

	for _, o := range []Orientation{Horizontal, Vertical} {
		set := l.Set(o)
		byEnd := map[Segment]bool{}
		set.Ends().Each(func(s Segment) bool {
			byEnd[s] = true
			return true
		})
		byLen := map[Segment]bool{}
		set.Lengths().Each(1, func(s Segment) bool {
			byLen[s] = true
			return true
		})
		require.Equal(t, byEnd, byLen, "%s indices hold different free sets", o)
		require.Equal(t, set.Ends().Len(), set.Lengths().Len())
		requireRBTree(t, &set.ends.tree)
		requireRBTree(t, &set.lengths.tree)
	}
}

// requireRBTree 检查红黑树性质与父指针
func requireRBTree(t testing.TB, tr *segmentTree) {
	t.Helper()
	if tr.root == nilIdx {
		require.Equal(t, 0, tr.size)
		return
	}
	require.Equal(t, black, tr.node(tr.root).color, "root must be black")
	require.Equal(t, nilIdx, tr.node(tr.root).parent)

	count := 0
	var walk func(x int32) int
	walk = func(x int32) int {
		if x == nilIdx {
			return 1
		}
		count++
		n := tr.node(x)
		require.Equal(t, tr.sizeOf(n.left)+tr.sizeOf(n.right)+1, n.size, "subtree size of %v", n.seg)
		if n.left != nilIdx {
			require.Equal(t, x, tr.node(n.left).parent)
			require.Negative(t, tr.cmp(tr.node(n.left).seg, n.seg))
		}
		if n.right != nilIdx {
			require.Equal(t, x, tr.node(n.right).parent)
			require.Positive(t, tr.cmp(tr.node(n.right).seg, n.seg))
		}
		if n.color == red {
			for _, c := range []int32{n.left, n.right} {
				if c != nilIdx {
					require.Equal(t, black, tr.node(c).color, "red node with red child")
				}
			}
		}
		lh, rh := walk(n.left), walk(n.right)
		require.Equal(t, lh, rh, "black height mismatch")
		if n.color == black {
			return lh + 1
		}
		return lh
	}
	walk(tr.root)
	require.Equal(t, tr.size, count)
}

// levelBytes 层当前持有的后备数组字节数，按容量计
func levelBytes(l *Level) int {
	node := int(unsafe.Sizeof(segmentNode{}))
	word := int(unsafe.Sizeof(int(0)))
	total := 0
	for _, set := range l.sets {
		total += cap(set.ends.tree.pool.nodes) * node
		total += cap(set.lengths.tree.pool.nodes) * node
		total += (cap(set.lengths.st.lenCnt) + cap(set.lengths.st.lenSum)) * word
	}
	return total
}
