package symgrid

import "fmt"

// Segment 表示某一方向上的一段连续格子，方向由上下文决定（不存储）.
// 坐标从 0 开始，区间左闭右开：
//   - 横向：第 Row 行的 [Col, Col+Length) 列
//   - 纵向：第 Col 列的 [Row, Row+Length) 行
type Segment struct {
	Row, Col, Length int
}

// Seg 构造一个 Segment.
func Seg(row, col, length int) Segment {
	return Segment{Row: row, Col: col, Length: length}
}

// IsZero 是否为空段（用作"无余段"）.
func (s Segment) IsZero() bool { return s.Length == 0 }

// Line 返回段所在的线（横向为行号，纵向为列号）.
func (s Segment) Line(o Orientation) int {
	if o == Horizontal {
		return s.Row
	}
	return s.Col
}

// Start 返回段在线上的起点, inclusive.
func (s Segment) Start(o Orientation) int {
	if o == Horizontal {
		return s.Col
	}
	return s.Row
}

// End 返回段在线上的终点, exclusive.
func (s Segment) End(o Orientation) int {
	return s.Start(o) + s.Length
}

// Last 返回段在线上的最后一格.
func (s Segment) Last(o Orientation) int {
	return s.End(o) - 1
}

// Contains 判断同一方向上 s 是否完整覆盖 other.
func (s Segment) Contains(o Orientation, other Segment) bool {
	return s.Line(o) == other.Line(o) &&
		s.Start(o) <= other.Start(o) && other.End(o) <= s.End(o)
}

// Cell 返回段内第 i 格的 (row, col).
func (s Segment) Cell(o Orientation, i int) (row, col int) {
	if o == Horizontal {
		return s.Row, s.Col + i
	}
	return s.Row + i, s.Col
}

// at 在同一条线上构造一个起点为 start 的段.
func at(o Orientation, line, start, length int) Segment {
	if o == Horizontal {
		return Segment{Row: line, Col: start, Length: length}
	}
	return Segment{Row: start, Col: line, Length: length}
}

func (s Segment) String() string {
	return fmt.Sprintf("(row=%d, col=%d, len=%d)", s.Row, s.Col, s.Length)
}
