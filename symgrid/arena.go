package symgrid

import (
	"fmt"
	"log/slog"
	"math/bits"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/syncmap"
)

// ArenaConfig 描述 Arena 的内存预算.
type ArenaConfig struct {
	// Slots 同时存活的层数上限，每层占一个 slab.
	Slots int
	// MaxDim 单层网格允许的最大行数/列数.
	MaxDim int
	Logger *slog.Logger
}

// DefaultArenaConfig 默认预算.
func DefaultArenaConfig() ArenaConfig {
	return ArenaConfig{Slots: DefaultArenaSlots, MaxDim: DefaultMaxDim}
}

var (
	defaultArenaOnce sync.Once
	defaultArena     *Arena
)

// DefaultArena 返回包级默认 Arena，未指定 WithArena 的层从这里取 slab.
func DefaultArena() *Arena {
	defaultArenaOnce.Do(func() {
		defaultArena = NewArena(DefaultArenaConfig())
	})
	return defaultArena
}

// Arena 固定槽位的 slab 池.
// 槽位用完时 acquire 直接失败（ErrPoolExhausted），不扩容；slab 按形状分档缓存复用.
// 使用中与缓存中的 slab 合计不超过槽位数，峰值内存不超过 Budget().
// 可以被多个 goroutine 共享，但单棵层级树只能在一个 goroutine 内使用.
type Arena struct {
	slots  chan struct{}
	maxDim int
	logger *slog.Logger

	// shapeKey -> chan *slab
	shapes syncmap.Map

	createdCnt atomic.Int32
	cached     atomic.Int32
}

// NewArena 按配置创建 Arena.
func NewArena(cfg ArenaConfig) *Arena {
	if cfg.Slots <= 0 {
		cfg.Slots = DefaultArenaSlots
	}
	if cfg.MaxDim <= 0 {
		cfg.MaxDim = DefaultMaxDim
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Arena{
		slots:  make(chan struct{}, cfg.Slots),
		maxDim: cfg.MaxDim,
		logger: logger,
	}
}

// Capacity 槽位总数.
func (a *Arena) Capacity() int { return cap(a.slots) }

// InUse 已被占用的槽位数.
func (a *Arena) InUse() int { return len(a.slots) }

// Created 累计新建过的 slab 数（复用不计）.
func (a *Arena) Created() int { return int(a.createdCnt.Load()) }

// MaxDim 单层网格允许的最大行数/列数.
func (a *Arena) MaxDim() int { return a.maxDim }

// Cached 缓存中的空闲 slab 数.
func (a *Arena) Cached() int { return int(a.cached.Load()) }

// SlabBytes rows x cols 的层占用的后备存储字节数.
func (a *Arena) SlabBytes(rows, cols int) int { return slabBytes(shapeOf(rows, cols)) }

// Budget 所有槽位都装着最大尺寸 slab 时的字节数.
func (a *Arena) Budget() int { return cap(a.slots) * a.SlabBytes(a.maxDim, a.maxDim) }

// Scoped 创建一个层并执行 fn，无论 fn 返回错误还是 panic，层都会被 Destroy.
func (a *Arena) Scoped(rows, cols int, fn func(l *Level) error, opts ...Option) error {
	all := append(append([]Option(nil), opts...), WithArena(a))
	l, err := NewLevel(rows, cols, all...)
	if err != nil {
		return err
	}
	defer l.Destroy()
	return fn(l)
}

type shapeKey struct {
	rowBits, colBits uint8
}

func shapeOf(rows, cols int) shapeKey {
	return shapeKey{
		rowBits: uint8(bits.Len(uint(rows - 1))),
		colBits: uint8(bits.Len(uint(cols - 1))),
	}
}

func (k shapeKey) rows() int { return 1 << k.rowBits }
func (k shapeKey) cols() int { return 1 << k.colBits }

func (a *Arena) freeList(key shapeKey) chan *slab {
	if v, ok := a.shapes.Load(key); ok {
		return v.(chan *slab)
	}
	v, _ := a.shapes.LoadOrStore(key, make(chan *slab, cap(a.slots)))
	return v.(chan *slab)
}

// acquire 占用一个槽位并返回一个干净的 slab
func (a *Arena) acquire(rows, cols int) (*slab, error) {
	if rows <= 0 || cols <= 0 || rows > a.maxDim || cols > a.maxDim {
		return nil, fmt.Errorf("%w: grid %dx%d (max %d)", ErrOutOfRange, rows, cols, a.maxDim)
	}

	select {
	case a.slots <- struct{}{}:
	default:
		a.logger.Warn("symgrid arena exhausted", "slots", cap(a.slots), "rows", rows, "cols", cols)
		return nil, fmt.Errorf("%w: all %d slots in use", ErrPoolExhausted, cap(a.slots))
	}

	key := shapeOf(rows, cols)
	select {
	case s := <-a.freeList(key):
		a.cached.Add(-1)
		return s, nil
	default:
	}

	// 新建前腾出别的形状的缓存，保证使用中 + 缓存中不超过槽位数
	if int(a.cached.Load())+len(a.slots) > cap(a.slots) {
		a.evictOne()
	}
	a.createdCnt.Add(1)
	a.logger.Debug("symgrid arena new slab", "rows", key.rows(), "cols", key.cols())
	return newSlab(key), nil
}

// release 清空 slab 并归还槽位
func (a *Arena) release(s *slab) {
	if s == nil {
		return
	}
	s.reset()
	select {
	case a.freeList(s.key) <- s:
		a.cached.Add(1)
	default:
		// 同一形状的 slab 不会超过槽位数，走到这里说明重复归还
		a.logger.Error("symgrid arena free list full, slab dropped", "rows", s.key.rows(), "cols", s.key.cols())
	}
	<-a.slots
}

// evictOne 丢弃任意一个缓存的 slab
func (a *Arena) evictOne() {
	a.shapes.Range(func(k, v any) bool {
		select {
		case <-v.(chan *slab):
			a.cached.Add(-1)
			key := k.(shapeKey)
			a.logger.Debug("symgrid arena evicted slab", "rows", key.rows(), "cols", key.cols())
			return false
		default:
			return true
		}
	})
}

// Trim 丢弃所有缓存的空闲 slab，已占用的不受影响.
func (a *Arena) Trim() (dropped int) {
	a.shapes.Range(func(_, v any) bool {
		ch := v.(chan *slab)
		for {
			select {
			case <-ch:
				dropped++
				a.cached.Add(-1)
			default:
				return true
			}
		}
	})
	if dropped > 0 {
		a.logger.Debug("symgrid arena trimmed", "slabs", dropped)
	}
	return dropped
}
