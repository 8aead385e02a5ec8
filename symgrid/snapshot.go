package symgrid

import (
	"fmt"
	"io"
)

// Snapshot 某一时刻一个层的占用，以横向空闲段表示.
type Snapshot struct {
	Rows int
	Cols int
	Free []Segment
}

// Occupancy 以 [row][col] 返回占用情况，true 表示已预留.
func (s *Snapshot) Occupancy() [][]bool {
	grid := make([][]bool, s.Rows)
	for r := range grid {
		grid[r] = make([]bool, s.Cols)
		for c := range grid[r] {
			grid[r][c] = true
		}
	}
	for _, seg := range s.Free {
		for i := 0; i < seg.Length; i++ {
			r, c := seg.Cell(Horizontal, i)
			grid[r][c] = false
		}
	}
	return grid
}

// WriteSnapshot 以小端二进制写出层的占用.
//
//	magic u32 | version u16 | rows u16 | cols u16 | n u32 | n x (row u16, col u16, len u16)
func (l *Level) WriteSnapshot(w io.Writer) error {
	if l.slab == nil {
		return fmt.Errorf("%w: %q", ErrDestroyed, l.name)
	}
	bw := NewBinWriter(w, true)
	bw.WriteUint32(snapshotMagic)
	bw.WriteUint16(snapshotVersion)
	bw.WriteUint16(uint16(l.rows))
	bw.WriteUint16(uint16(l.cols))
	ends := &l.sets[Horizontal].ends
	bw.WriteUint32(uint32(ends.Len()))
	ends.Each(func(seg Segment) bool {
		bw.WriteUint16(uint16(seg.Row))
		bw.WriteUint16(uint16(seg.Col))
		bw.WriteUint16(uint16(seg.Length))
		return true
	})
	return bw.Flush()
}

// ReadSnapshot 解析 WriteSnapshot 的输出.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	br := NewBinReader(r, true)
	magic := br.ReadUint32()
	version := br.ReadUint16()
	if err := br.Err(); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrBadSnapshot, err)
	}
	if magic != snapshotMagic || version != snapshotVersion {
		return nil, fmt.Errorf("%w: magic %#x version %d", ErrBadSnapshot, magic, version)
	}

	s := &Snapshot{Rows: int(br.ReadUint16()), Cols: int(br.ReadUint16())}
	n := int(br.ReadUint32())
	if err := br.Err(); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrBadSnapshot, err)
	}
	if s.Rows == 0 || s.Cols == 0 || n > s.Rows*((s.Cols+1)/2) {
		return nil, fmt.Errorf("%w: %dx%d with %d segments", ErrBadSnapshot, s.Rows, s.Cols, n)
	}

	// n 来自文件头，只能作为上限，数组随实际读到的段增长
	s.Free = make([]Segment, 0, min(n, snapshotPrealloc))
	for i := 0; i < n; i++ {
		seg := Seg(int(br.ReadUint16()), int(br.ReadUint16()), int(br.ReadUint16()))
		if br.Err() != nil {
			break
		}
		if checkBounds(s.Rows, s.Cols, Horizontal, seg.Row, seg.Col, seg.Length) != nil {
			return nil, fmt.Errorf("%w: segment %v outside %dx%d", ErrBadSnapshot, seg, s.Rows, s.Cols)
		}
		s.Free = append(s.Free, seg)
	}
	if err := br.Err(); err != nil {
		return nil, fmt.Errorf("%w: segments: %w", ErrBadSnapshot, err)
	}
	return s, nil
}

// Restore 把快照中的已预留格子按行合并成横向段写入本层，本层尺寸必须与快照一致.
// 预留照常同步到父层. 写入前先沿父链试查全部段，任何一段冲突都不做修改.
func (l *Level) Restore(s *Snapshot) error {
	if l.slab == nil {
		return fmt.Errorf("%w: %q", ErrDestroyed, l.name)
	}
	if s.Rows != l.rows || s.Cols != l.cols {
		return fmt.Errorf("%w: snapshot %dx%d, level %dx%d", ErrOutOfRange, s.Rows, s.Cols, l.rows, l.cols)
	}

	var runs []Segment
	for r, row := range s.Occupancy() {
		for c := 0; c < len(row); {
			if !row[c] {
				c++
				continue
			}
			start := c
			for c < len(row) && row[c] {
				c++
			}
			runs = append(runs, Seg(r, start, c-start))
		}
	}

	// 各段互不相交，映射到祖先层后也互不相交，逐段对照当前状态试查即可
	for _, run := range runs {
		if err := checkOn(l, Horizontal, run.Row, run.Col, run.Length); err != nil {
			return fmt.Errorf("restore row %d: %w", run.Row, err)
		}
	}
	for _, run := range runs {
		if err := l.ReserveHorizontal(run.Row, run.Col, run.Length); err != nil {
			return fmt.Errorf("restore row %d: %w", run.Row, err)
		}
	}
	return nil
}
