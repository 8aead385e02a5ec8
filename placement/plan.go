// Package placement 把 YAML 描述的地形特征按顺序放进一棵 symgrid 层级树.
package placement

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"terraingrid/symgrid"
)

// 层类型
const (
	KindFull        = "full"
	KindBasic       = "basic"
	KindPassThrough = "passthrough"
)

const defaultRootName = "root"

var (
	ErrMissingName       = errors.New("level name is required")
	ErrDuplicateLevel    = errors.New("duplicate level name")
	ErrInvalidKind       = errors.New("level kind must be one of: full, basic, passthrough")
	ErrInvalidDims       = errors.New("level rows and cols must be positive")
	ErrUnknownParent     = errors.New("parent must be declared before its children")
	ErrUnknownLevel      = errors.New("feature refers to an unknown level")
	ErrInvalidLength     = errors.New("feature length must be positive")
	ErrInvalidCount      = errors.New("feature count must be positive")
	ErrInvalidPosition   = errors.New("fixed features need both row and col and count 1")
	ErrRandomOnUntracked = errors.New("random features need a full level")
	ErrNoFeatures        = errors.New("at least one feature is required")
)

// Plan 一次地形生成：根层、子层和按顺序放置的特征.
type Plan struct {
	Name     string        `yaml:"name"`
	Seed     uint64        `yaml:"seed"`     // 随机放置使用的种子，同一个 plan 结果可复现
	Root     LevelSpec     `yaml:"root"`     // 根层，总是 full
	Levels   []LevelSpec   `yaml:"levels"`   // 子层，父层必须先声明
	Features []FeatureSpec `yaml:"features"` // 按顺序放置
}

// LevelSpec 层定义.
type LevelSpec struct {
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"`   // full（默认）、basic、passthrough
	Rows   int    `yaml:"rows"`   // passthrough 忽略
	Cols   int    `yaml:"cols"`   // passthrough 忽略
	Parent string `yaml:"parent"` // 默认根层
	Offset int    `yaml:"offset"` // 映射到父层时的行偏移
}

// FeatureSpec 一种特征：固定位置放一次，或随机放 Count 次.
type FeatureSpec struct {
	Name        string `yaml:"name"`
	Level       string `yaml:"level"`       // 默认根层
	Orientation string `yaml:"orientation"` // horizontal / vertical
	Length      int    `yaml:"length"`
	Count       int    `yaml:"count"` // 默认 1
	Row         *int   `yaml:"row"`   // 与 col 同时给出时为固定位置
	Col         *int   `yaml:"col"`
	Optional    bool   `yaml:"optional"` // 放不下时跳过而不是失败
}

// Fixed 是否固定位置.
func (f *FeatureSpec) Fixed() bool { return f.Row != nil || f.Col != nil }

// LoadPlan 从 YAML 文件读取并校验 plan.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file %s: %w", path, err)
	}
	p, err := ParsePlan(data)
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", path, err)
	}
	if p.Name == "" {
		p.Name = path
	}
	return p, nil
}

// ParsePlan 解析 YAML，补默认值并校验.
func ParsePlan(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse plan YAML: %w", err)
	}
	applyDefaults(&p)
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	return &p, nil
}

func applyDefaults(p *Plan) {
	if p.Root.Name == "" {
		p.Root.Name = defaultRootName
	}
	p.Root.Kind = KindFull
	p.Root.Parent = ""
	p.Root.Offset = 0

	for i := range p.Levels {
		l := &p.Levels[i]
		if l.Kind == "" {
			l.Kind = KindFull
		}
		if l.Parent == "" {
			l.Parent = p.Root.Name
		}
	}
	for i := range p.Features {
		f := &p.Features[i]
		if f.Level == "" {
			f.Level = p.Root.Name
		}
		if f.Count == 0 {
			f.Count = 1
		}
		if f.Name == "" {
			f.Name = fmt.Sprintf("feature-%d", i)
		}
	}
}

// Validate 检查层树结构和每个特征；ParsePlan 已调用过.
func (p *Plan) Validate() error {
	if p.Root.Rows <= 0 || p.Root.Cols <= 0 {
		return fmt.Errorf("%w: root %dx%d", ErrInvalidDims, p.Root.Rows, p.Root.Cols)
	}

	kinds := map[string]string{p.Root.Name: KindFull}
	for i, l := range p.Levels {
		if l.Name == "" {
			return fmt.Errorf("levels[%d]: %w", i, ErrMissingName)
		}
		if _, dup := kinds[l.Name]; dup {
			return fmt.Errorf("levels[%d]: %w: %q", i, ErrDuplicateLevel, l.Name)
		}
		if _, ok := kinds[l.Parent]; !ok {
			return fmt.Errorf("levels[%d] %q: %w: %q", i, l.Name, ErrUnknownParent, l.Parent)
		}
		switch l.Kind {
		case KindFull, KindBasic:
			if l.Rows <= 0 || l.Cols <= 0 {
				return fmt.Errorf("levels[%d] %q: %w: %dx%d", i, l.Name, ErrInvalidDims, l.Rows, l.Cols)
			}
		case KindPassThrough:
		default:
			return fmt.Errorf("levels[%d] %q: %w, got %q", i, l.Name, ErrInvalidKind, l.Kind)
		}
		kinds[l.Name] = l.Kind
	}

	if len(p.Features) == 0 {
		return ErrNoFeatures
	}
	for i, f := range p.Features {
		kind, ok := kinds[f.Level]
		if !ok {
			return fmt.Errorf("features[%d] %q: %w: %q", i, f.Name, ErrUnknownLevel, f.Level)
		}
		if _, err := symgrid.ParseOrientation(f.Orientation); err != nil {
			return fmt.Errorf("features[%d] %q: %w", i, f.Name, err)
		}
		if f.Length <= 0 {
			return fmt.Errorf("features[%d] %q: %w, got %d", i, f.Name, ErrInvalidLength, f.Length)
		}
		if f.Count < 0 {
			return fmt.Errorf("features[%d] %q: %w, got %d", i, f.Name, ErrInvalidCount, f.Count)
		}
		if f.Fixed() {
			if f.Row == nil || f.Col == nil || f.Count != 1 {
				return fmt.Errorf("features[%d] %q: %w", i, f.Name, ErrInvalidPosition)
			}
			continue
		}
		if kind != KindFull {
			return fmt.Errorf("features[%d] %q: %w, %q is %s", i, f.Name, ErrRandomOnUntracked, f.Level, kind)
		}
	}
	return nil
}

// SlotsNeeded 构建这个 plan 需要占用的 Arena 槽位数（每个 full 层一个）.
func (p *Plan) SlotsNeeded() int {
	n := 1
	for _, l := range p.Levels {
		if l.Kind == KindFull {
			n++
		}
	}
	return n
}
