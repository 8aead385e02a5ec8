package symgrid

import "fmt"

// BasicLevel 只做边界检查并同步到父层，不在本层记账.
// 适用于调用方在外部保证不重叠、只需要把占用写进父层的场景.
type BasicLevel struct {
	name   string
	rows   int
	cols   int
	parent Reserver
	offset int
}

// NewBasicLevel 创建一个不记账的层，parent 可为 nil.
func NewBasicLevel(name string, rows, cols int, parent Reserver, rowOffset int) (*BasicLevel, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: grid %dx%d", ErrOutOfRange, rows, cols)
	}
	return &BasicLevel{name: name, rows: rows, cols: cols, parent: parent, offset: rowOffset}, nil
}

func (b *BasicLevel) Name() string            { return b.name }
func (b *BasicLevel) Rows() int               { return b.rows }
func (b *BasicLevel) Cols() int               { return b.cols }
func (b *BasicLevel) Parent() (Reserver, int) { return b.parent, b.offset }

func (b *BasicLevel) ReserveVertical(row, col, length int) error {
	return b.reserve(Vertical, row, col, length)
}

func (b *BasicLevel) ReserveHorizontal(row, col, length int) error {
	return b.reserve(Horizontal, row, col, length)
}

func (b *BasicLevel) reserve(o Orientation, row, col, length int) error {
	if err := checkBounds(b.rows, b.cols, o, row, col, length); err != nil {
		return err
	}
	if b.parent == nil {
		return nil
	}
	if err := reserveOn(b.parent, o, row+b.offset, col, length); err != nil {
		return fmt.Errorf("level %q parent: %w", b.name, err)
	}
	return nil
}

// Destroy 没有需要释放的存储.
func (b *BasicLevel) Destroy() {}

// PassThroughLevel 不做任何检查，只把预留原样（加行偏移）转给父层；没有父层时总是成功.
type PassThroughLevel struct {
	name   string
	parent Reserver
	offset int
}

// NewPassThroughLevel 创建直通层.
func NewPassThroughLevel(name string, parent Reserver, rowOffset int) *PassThroughLevel {
	return &PassThroughLevel{name: name, parent: parent, offset: rowOffset}
}

func (p *PassThroughLevel) Name() string            { return p.name }
func (p *PassThroughLevel) Rows() int               { return 0 }
func (p *PassThroughLevel) Cols() int               { return 0 }
func (p *PassThroughLevel) Parent() (Reserver, int) { return p.parent, p.offset }

func (p *PassThroughLevel) ReserveVertical(row, col, length int) error {
	if p.parent == nil {
		return nil
	}
	return p.parent.ReserveVertical(row+p.offset, col, length)
}

func (p *PassThroughLevel) ReserveHorizontal(row, col, length int) error {
	if p.parent == nil {
		return nil
	}
	return p.parent.ReserveHorizontal(row+p.offset, col, length)
}

func (p *PassThroughLevel) Destroy() {}
