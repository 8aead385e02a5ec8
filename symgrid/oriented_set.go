package symgrid

import "fmt"

// OrientedSegmentSet 单层网格单个方向的空闲段集合.
// ends 与 lengths 是同一批空闲段的两种索引，每次变更都同时更新两者.
type OrientedSegmentSet struct {
	o       Orientation
	rows    int
	cols    int
	ends    EndPositionIndex
	lengths LengthIndex
}

// newOrientedSegmentSet 用整条线作为初始空闲段
func newOrientedSegmentSet(o Orientation, rows, cols int, st *sideStore) *OrientedSegmentSet {
	s := &OrientedSegmentSet{o: o, rows: rows, cols: cols}
	s.ends.init(o, st)
	s.lengths.init(o, rows, cols, st)
	lineLen := o.lineLen(rows, cols)
	for line := 0; line < o.lines(rows, cols); line++ {
		s.insert(at(o, line, 0, lineLen))
	}
	return s
}

// Orientation 集合的方向.
func (s *OrientedSegmentSet) Orientation() Orientation { return s.o }

// Ends 按结束位置的索引.
func (s *OrientedSegmentSet) Ends() *EndPositionIndex { return &s.ends }

// Lengths 按长度的索引.
func (s *OrientedSegmentSet) Lengths() *LengthIndex { return &s.lengths }

func (s *OrientedSegmentSet) insert(seg Segment) {
	s.ends.Insert(seg)
	s.lengths.Insert(seg)
}

// Check 请求区间能否预留，不修改任何状态.
func (s *OrientedSegmentSet) Check(row, col, length int) error {
	_, err := s.ends.Find(row, col, length)
	return err
}

// Reserve 预留指定区间；失败时两个索引都不变.
func (s *OrientedSegmentSet) Reserve(row, col, length int) error {
	removed, rem, err := s.ends.Reserve(row, col, length)
	if err != nil {
		return err
	}
	s.lengths.Delete(removed)
	for _, r := range rem {
		if !r.IsZero() {
			s.lengths.Insert(r)
		}
	}
	return nil
}

// CountFittingSpaces 长度为 length 的段可以放置的位置数.
func (s *OrientedSegmentSet) CountFittingSpaces(length int) int {
	return s.lengths.CountFittingSpaces(length)
}

// Pick 在所有可放置位置中均匀随机挑一个，不修改状态.
func (s *OrientedSegmentSet) Pick(length int, rnd Rand) (Segment, error) {
	n := s.lengths.CountFittingSpaces(length)
	if n == 0 {
		return Segment{}, fmt.Errorf("%w: %s length %d", ErrNoFittingSpace, s.o, length)
	}
	return s.lengths.KthFittingSpace(length, 1+rnd.IntN(n))
}

// ReserveRandomFitting 随机挑一个可放置位置并预留.
func (s *OrientedSegmentSet) ReserveRandomFitting(length int, rnd Rand) (Segment, error) {
	seg, err := s.Pick(length, rnd)
	if err != nil {
		return Segment{}, err
	}
	if err := s.Reserve(seg.Row, seg.Col, seg.Length); err != nil {
		return Segment{}, err
	}
	return seg, nil
}

// FreeSegments 按 (线, 位置) 升序返回所有空闲段.
func (s *OrientedSegmentSet) FreeSegments() []Segment {
	out := make([]Segment, 0, s.ends.Len())
	s.ends.Each(func(seg Segment) bool {
		out = append(out, seg)
		return true
	})
	return out
}

// FreeCells 空闲格子总数.
func (s *OrientedSegmentSet) FreeCells() int {
	return s.lengths.CountFittingSpaces(1)
}

// Occupancy 以 [row][col] 返回占用情况，true 表示已预留.
func (s *OrientedSegmentSet) Occupancy() [][]bool {
	grid := make([][]bool, s.rows)
	for r := range grid {
		grid[r] = make([]bool, s.cols)
		for c := range grid[r] {
			grid[r][c] = true
		}
	}
	s.ends.Each(func(seg Segment) bool {
		for i := 0; i < seg.Length; i++ {
			r, c := seg.Cell(s.o, i)
			grid[r][c] = false
		}
		return true
	})
	return grid
}
