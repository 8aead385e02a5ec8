package symgrid

import "errors"

var (
	// ErrNoSpace 请求的格子不在同一个空闲段内，或跨越了已预留的边界.
	ErrNoSpace = errors.New("symgrid: no space")

	// ErrNoFittingSpace 没有长度足够的空闲段.
	ErrNoFittingSpace = errors.New("symgrid: no fitting space")

	// ErrPoolExhausted 固定大小的缓冲池已无空槽.
	ErrPoolExhausted = errors.New("symgrid: no buffer available")

	// ErrOutOfRange 坐标、长度或序号越界.
	ErrOutOfRange = errors.New("symgrid: out of range")

	// ErrDestroyed 层已 Destroy，不可再使用.
	ErrDestroyed = errors.New("symgrid: level destroyed")

	// ErrInvalidOrientation 无法识别的方向名.
	ErrInvalidOrientation = errors.New("symgrid: invalid orientation")

	// ErrBadSnapshot 快照数据无法解析.
	ErrBadSnapshot = errors.New("symgrid: bad snapshot")
)
