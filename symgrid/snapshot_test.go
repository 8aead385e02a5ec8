package symgrid

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_WriteReadRestore(t *testing.T) {
	a := newTestArena(t, 2)
	src := newTestLevel(t, a, 6, 10)
	require.NoError(t, src.ReserveHorizontal(0, 2, 5))
	require.NoError(t, src.ReserveVertical(1, 9, 5))
	require.NoError(t, src.ReserveVertical(3, 0, 3))
	for i := 0; i < 6; i++ {
		_, err := src.ReserveRandomFittingHorizontal(2)
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	require.NoError(t, src.WriteSnapshot(&buf))

	snap, err := ReadSnapshot(&buf)
	require.NoError(t, err)
	assert.Equal(t, 6, snap.Rows)
	assert.Equal(t, 10, snap.Cols)
	assert.Equal(t, src.FreeSegments(Horizontal), snap.Free)
	assert.Equal(t, src.Occupancy(Horizontal), snap.Occupancy())

	dst := newTestLevel(t, a, 6, 10)
	require.NoError(t, dst.Restore(snap))
	assert.Equal(t, src.Occupancy(Horizontal), dst.Occupancy(Horizontal))
	assert.Equal(t, src.FreeSegments(Vertical), dst.FreeSegments(Vertical))
	requireConsistent(t, dst)

	// 再次恢复同一份快照会与已有占用冲突
	assert.ErrorIs(t, dst.Restore(snap), ErrNoSpace)
}

func TestSnapshot_RestorePropagatesToParent(t *testing.T) {
	a := newTestArena(t, 4)
	src := newTestLevel(t, a, 2, 4)
	require.NoError(t, src.ReserveHorizontal(1, 1, 2))

	var buf bytes.Buffer
	require.NoError(t, src.WriteSnapshot(&buf))
	snap, err := ReadSnapshot(&buf)
	require.NoError(t, err)

	parent := newTestLevel(t, a, 8, 4)
	child := newTestLevel(t, a, 2, 4, WithParent(parent, 5))
	require.NoError(t, child.Restore(snap))

	used, err := parent.IsReserved(6, 2)
	require.NoError(t, err)
	assert.True(t, used)

	wrong := newTestLevel(t, a, 2, 5)
	assert.ErrorIs(t, wrong.Restore(snap), ErrOutOfRange)
}

func TestSnapshot_RestoreConflictChangesNothing(t *testing.T) {
	a := newTestArena(t, 4)
	src := newTestLevel(t, a, 3, 4)
	require.NoError(t, src.ReserveHorizontal(0, 0, 2))
	require.NoError(t, src.ReserveHorizontal(2, 0, 3))

	var buf bytes.Buffer
	require.NoError(t, src.WriteSnapshot(&buf))
	snap, err := ReadSnapshot(&buf)
	require.NoError(t, err)

	// 本层第 2 行冲突：第 0 行也不能被写入
	dst := newTestLevel(t, a, 3, 4)
	require.NoError(t, dst.ReserveHorizontal(2, 1, 1))
	before := dst.Occupancy(Horizontal)
	require.ErrorIs(t, dst.Restore(snap), ErrNoSpace)
	assert.Equal(t, before, dst.Occupancy(Horizontal))
	used, err := dst.IsReserved(0, 0)
	require.NoError(t, err)
	assert.False(t, used)
	requireConsistent(t, dst)

	// 父层冲突：子层与父层都不变
	parent := newTestLevel(t, a, 8, 4)
	child := newTestLevel(t, a, 3, 4, WithParent(parent, 4))
	require.NoError(t, parent.ReserveHorizontal(6, 2, 1))
	parentBefore := parent.Occupancy(Horizontal)
	require.ErrorIs(t, child.Restore(snap), ErrNoSpace)
	assert.Equal(t, parentBefore, parent.Occupancy(Horizontal))
	assert.Equal(t, 12, child.Set(Horizontal).FreeCells())
	requireConsistent(t, parent)
	requireConsistent(t, child)
}

func TestSnapshot_FullyReservedLevel(t *testing.T) {
	a := newTestArena(t, 1)
	l := newTestLevel(t, a, 3, 3)
	for r := 0; r < 3; r++ {
		require.NoError(t, l.ReserveHorizontal(r, 0, 3))
	}
	var buf bytes.Buffer
	require.NoError(t, l.WriteSnapshot(&buf))
	assert.Equal(t, 4+2+2+2+4, buf.Len())

	snap, err := ReadSnapshot(&buf)
	require.NoError(t, err)
	assert.Empty(t, snap.Free)
}

func TestReadSnapshot_RejectsBadData(t *testing.T) {
	header := func(magic uint32, version, rows, cols uint16, n uint32) []byte {
		b := binary.LittleEndian.AppendUint32(nil, magic)
		b = binary.LittleEndian.AppendUint16(b, version)
		b = binary.LittleEndian.AppendUint16(b, rows)
		b = binary.LittleEndian.AppendUint16(b, cols)
		return binary.LittleEndian.AppendUint32(b, n)
	}
	seg := func(b []byte, row, col, length uint16) []byte {
		b = binary.LittleEndian.AppendUint16(b, row)
		b = binary.LittleEndian.AppendUint16(b, col)
		return binary.LittleEndian.AppendUint16(b, length)
	}

	cases := map[string][]byte{
		"empty":           nil,
		"short header":    header(snapshotMagic, snapshotVersion, 4, 4, 1)[:7],
		"bad magic":       header(0xdeadbeef, snapshotVersion, 4, 4, 0),
		"bad version":     header(snapshotMagic, 9, 4, 4, 0),
		"zero rows":       header(snapshotMagic, snapshotVersion, 0, 4, 0),
		"too many":        header(snapshotMagic, snapshotVersion, 2, 2, 3),
		"truncated":       seg(header(snapshotMagic, snapshotVersion, 4, 4, 2), 0, 0, 4),
		"segment outside": seg(header(snapshotMagic, snapshotVersion, 4, 4, 1), 1, 2, 3),
		"zero length":     seg(header(snapshotMagic, snapshotVersion, 4, 4, 1), 1, 2, 0),
		"header only":     header(snapshotMagic, snapshotVersion, 65535, 65535, 2_000_000_000),
		"count past data": seg(header(snapshotMagic, snapshotVersion, 65535, 65535, 1_000_000), 0, 0, 4),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadSnapshot(bytes.NewReader(data))
			assert.ErrorIs(t, err, ErrBadSnapshot)
		})
	}
}

func TestWriteSnapshot_DestroyedLevel(t *testing.T) {
	a := newTestArena(t, 1)
	l, err := NewLevel(2, 2, WithArena(a))
	require.NoError(t, err)
	l.Destroy()
	assert.ErrorIs(t, l.WriteSnapshot(&bytes.Buffer{}), ErrDestroyed)
}
