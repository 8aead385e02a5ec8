package symgrid

import (
	"fmt"
	"strings"
)

// Orientation 段的方向.
type Orientation uint8

const (
	// Horizontal 沿列方向延伸，位于某一行内.
	Horizontal Orientation = iota
	// Vertical 沿行方向延伸，位于某一列内.
	Vertical
)

// Orthogonal 返回正交方向.
func (o Orientation) Orthogonal() Orientation {
	if o == Horizontal {
		return Vertical
	}
	return Horizontal
}

// lines 返回 rows x cols 网格在该方向上的线数.
func (o Orientation) lines(rows, cols int) int {
	if o == Horizontal {
		return rows
	}
	return cols
}

// lineLen 返回 rows x cols 网格在该方向上每条线的长度，也是最长段长.
func (o Orientation) lineLen(rows, cols int) int {
	if o == Horizontal {
		return cols
	}
	return rows
}

func (o Orientation) String() string {
	if o == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// ParseOrientation 解析 "horizontal"/"h" 或 "vertical"/"v"，大小写不敏感.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "h":
		return Horizontal, nil
	case "vertical", "v":
		return Vertical, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidOrientation, s)
}
