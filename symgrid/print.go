package symgrid

import (
	"bufio"
	"fmt"
	"io"
)

var (
	_ Reserver  = (*Level)(nil)
	_ Reserver  = (*BasicLevel)(nil)
	_ Reserver  = (*PassThroughLevel)(nil)
	_ levelInfo = (*Level)(nil)
	_ levelInfo = (*BasicLevel)(nil)
	_ levelInfo = (*PassThroughLevel)(nil)
)

const (
	freeGlyph     = '.'
	reservedGlyph = '#'
)

// PrintGrid 按行输出当前占用，'#' 为已预留，'.' 为空闲.
func (l *Level) PrintGrid(w io.Writer) error {
	if l.slab == nil {
		return fmt.Errorf("%w: %q", ErrDestroyed, l.name)
	}
	bw := bufio.NewWriter(w)
	for _, row := range l.sets[Horizontal].Occupancy() {
		for _, used := range row {
			if used {
				_ = bw.WriteByte(reservedGlyph)
			} else {
				_ = bw.WriteByte(freeGlyph)
			}
		}
		_ = bw.WriteByte('\n')
	}
	return bw.Flush()
}

// PrintMetaData 输出本层及父链信息.
func (l *Level) PrintMetaData(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if l.slab == nil {
		fmt.Fprintf(bw, "level %q %dx%d destroyed\n", l.name, l.rows, l.cols)
	} else {
		h, v := l.sets[Horizontal], l.sets[Vertical]
		fmt.Fprintf(bw, "level %q %dx%d free=%d h_segments=%d v_segments=%d\n",
			l.name, l.rows, l.cols, h.FreeCells(), h.ends.Len(), v.ends.Len())
	}
	var cur levelInfo = l
	for depth := 1; ; depth++ {
		parent, offset := cur.Parent()
		if parent == nil {
			break
		}
		info, ok := parent.(levelInfo)
		if !ok {
			fmt.Fprintf(bw, "%*sparent %T offset=%d\n", depth*2, "", parent, offset)
			break
		}
		fmt.Fprintf(bw, "%*sparent %q %dx%d offset=%d\n", depth*2, "", info.Name(), info.Rows(), info.Cols(), offset)
		cur = info
	}
	return bw.Flush()
}
