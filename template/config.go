package template

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/notewell/cornell/binding"
	"github.com/notewell/cornell/layout"
)

// YAML 前端：与 DSL 等价的声明能力，适合程序生成或不想学语法的人。
// 长度一律用毫米数值，颜色用 "#RRGGBB" 字符串。

// Config 是 YAML 模板文件的顶层结构。
type Config struct {
	Name        string `yaml:"name"`
	Paper       string `yaml:"paper"`
	Orientation string `yaml:"orientation,omitempty"` // portrait / landscape

	// Margin 支持单值（四边相同）或 1~4 个值的列表（CSS 语义）。
	Margin  marginList     `yaml:"margin,omitempty"`
	Binding *BindingConfig `yaml:"binding,omitempty"`

	Meta     map[string]string         `yaml:"meta,omitempty"`
	Patterns map[string]map[string]any `yaml:"patterns,omitempty"`

	// Data 给 ${path} 占位符提供取值，可被外部数据覆盖。
	Data map[string]any `yaml:"data,omitempty"`

	Areas []*NodeConfig `yaml:"areas"`
}

// BindingConfig 描述装订边距。
type BindingConfig struct {
	Side  string  `yaml:"side"`
	Width float64 `yaml:"width,omitempty"` // 毫米，缺省 10
}

// NodeConfig 描述一个区域节点。指针字段区分“未设置”与“显式为零”。
type NodeConfig struct {
	Type string `yaml:"type"`
	Axis string `yaml:"axis,omitempty"`

	Width  *float64 `yaml:"width,omitempty"`  // 固定宽（毫米）
	Height *float64 `yaml:"height,omitempty"` // 固定高（毫米）
	Ratio  *float64 `yaml:"ratio,omitempty"`  // 父分轴上的比例份额

	Label    string `yaml:"label,omitempty"`
	Align    string `yaml:"align,omitempty"`
	VAlign   string `yaml:"valign,omitempty"`
	Position string `yaml:"position,omitempty"`

	Spacing *float64   `yaml:"spacing,omitempty"`
	Padding marginList `yaml:"padding,omitempty"`

	Grid         string         `yaml:"grid,omitempty"`
	GridOverride map[string]any `yaml:"grid_override,omitempty"`

	// LineCount 按格线步长推导固定高度，与 Height 互斥。
	LineCount *int `yaml:"line_count,omitempty"`

	Border    *bool    `yaml:"border,omitempty"`
	MinWidth  *float64 `yaml:"min_width,omitempty"`
	MinHeight *float64 `yaml:"min_height,omitempty"`

	Children []*NodeConfig `yaml:"children,omitempty"`
}

// marginList 接受标量或序列两种写法。
type marginList []float64

func (m *marginList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := node.Decode(&v); err != nil {
			return err
		}
		*m = marginList{v}
		return nil
	case yaml.SequenceNode:
		var vs []float64
		if err := node.Decode(&vs); err != nil {
			return err
		}
		*m = marginList(vs)
		return nil
	default:
		return fmt.Errorf("template: margin 只接受数值或数值列表")
	}
}

// FromYAML 读取 YAML 模板并构建 Template。extra 中的数据覆盖
// 文件内嵌的 data。
func FromYAML(r io.Reader, extra map[string]any) (*Template, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("template: 解析 YAML 失败: %w", err)
	}
	return cfg.Build(extra)
}

// Build 把配置翻译成可求解的 Template。
func (cfg *Config) Build(extra map[string]any) (*Template, error) {
	if len(cfg.Areas) == 0 {
		return nil, fmt.Errorf("template: areas 不能为空")
	}
	paper := cfg.Paper
	if paper == "" {
		paper = "A4"
	}
	size, err := PaperSize(paper)
	if err != nil {
		return nil, err
	}
	switch cfg.Orientation {
	case "", "portrait":
	case "landscape":
		size.W, size.H = size.H, size.W
	default:
		return nil, fmt.Errorf("template: 未知方向 %q", cfg.Orientation)
	}

	margin := resolveMargins(cfg.Margin)
	if cfg.Binding != nil {
		width := cfg.Binding.Width
		if width == 0 {
			width = defaultBindingWidth
		}
		if err := margin.applyBinding(cfg.Binding.Side, width); err != nil {
			return nil, err
		}
	}

	t := &Template{
		Name:     cfg.Name,
		Meta:     cfg.Meta,
		Patterns: layout.NewPatternRegistry(),
	}
	if t.Meta == nil {
		t.Meta = map[string]string{}
	}
	for name, kv := range cfg.Patterns {
		p := layout.GridPattern{Name: name, Style: layout.LineSolid, OffsetX: layout.Mm(2), OffsetY: layout.Mm(4)}
		if err := fillPattern(&p, stringify(kv)); err != nil {
			return nil, err
		}
		t.Patterns.Register(p)
	}

	data := map[string]any{}
	for k, v := range cfg.Data {
		data[k] = v
	}
	for k, v := range extra {
		data[k] = v
	}

	root := layout.NewArea(layout.KindGroup)
	root.Axis = layout.AxisVertical
	root.Width = layout.Fixed(size.W)
	root.Height = layout.Fixed(size.H)
	root.BorderEnabled = false
	root.Spacing = 5
	root.Padding = layout.Padding{
		Top: margin.Top, Right: margin.Right,
		Bottom: margin.Bottom, Left: margin.Left,
	}
	cb := &configBuilder{tpl: t, data: data}
	for _, nc := range cfg.Areas {
		child, err := cb.build(nc, root.Axis)
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, child)
	}
	t.Root = root
	t.Bounds = layout.Rect{W: size.W, H: size.H}
	return t, nil
}

type configBuilder struct {
	tpl  *Template
	data map[string]any
}

func (cb *configBuilder) build(nc *NodeConfig, parentAxis layout.Axis) (*layout.Area, error) {
	kind, err := kindByName(nc.Type)
	if err != nil {
		return nil, err
	}
	a := layout.NewArea(kind)
	applyKindDefaults(a)

	switch nc.Axis {
	case "":
	case "horizontal":
		a.Axis = layout.AxisHorizontal
	case "vertical":
		a.Axis = layout.AxisVertical
	default:
		return nil, fmt.Errorf("template: 未知排列方向 %q", nc.Axis)
	}

	if nc.Width != nil {
		a.Width = layout.Fixed(*nc.Width)
	}
	if nc.Height != nil {
		a.Height = layout.Fixed(*nc.Height)
	}
	if nc.Ratio != nil {
		if parentAxis == layout.AxisHorizontal {
			a.Width = layout.Ratio(*nc.Ratio)
		} else {
			a.Height = layout.Ratio(*nc.Ratio)
		}
	}
	if nc.Label != "" {
		a.Label = binding.Interpolate(nc.Label, cb.data)
	}
	if nc.Align != "" {
		a.TextAlign = nc.Align
	}
	if nc.VAlign != "" {
		a.VerticalAlign = nc.VAlign
	}
	if nc.Position != "" {
		a.TextPosition = nc.Position
	}
	if nc.Spacing != nil {
		a.Spacing = *nc.Spacing
	}
	if len(nc.Padding) > 0 {
		m := resolveMargins(nc.Padding)
		a.Padding = layout.Padding{Top: m.Top, Right: m.Right, Bottom: m.Bottom, Left: m.Left}
	}
	if nc.Grid != "" {
		a.GridLineType = nc.Grid
	}
	if len(nc.GridOverride) > 0 {
		a.GridOverride = &layout.GridPattern{}
		if err := fillPattern(a.GridOverride, stringify(nc.GridOverride)); err != nil {
			return nil, err
		}
	}
	if nc.LineCount != nil {
		name := a.GridLineType
		if name == "" {
			name = "single_line"
			a.GridLineType = name
		}
		p, err := cb.tpl.Patterns.Lookup(name)
		if err != nil {
			return nil, err
		}
		step := p.Step()
		if step <= 0 {
			return nil, fmt.Errorf("template: 格线 %q 无法按行数推导高度", name)
		}
		_, offY := p.Offsets()
		a.Height = layout.Fixed(float64(*nc.LineCount)*step + offY)
	}
	if nc.Border != nil {
		a.BorderEnabled = *nc.Border
	}
	if nc.MinWidth != nil {
		a.MinWidth = *nc.MinWidth
	}
	if nc.MinHeight != nil {
		a.MinHeight = *nc.MinHeight
	}

	if len(nc.Children) > 0 && a.Axis == layout.AxisNone {
		a.Axis = layout.AxisVertical
	}
	for _, c := range nc.Children {
		child, err := cb.build(c, a.Axis)
		if err != nil {
			return nil, err
		}
		a.Children = append(a.Children, child)
	}
	return a, nil
}

// stringify 把 YAML 的标量或列表值转成 fillPattern 接受的字符串形式。
func stringify(kv map[string]any) map[string]string {
	out := make(map[string]string, len(kv))
	for k, v := range kv {
		if list, ok := v.([]any); ok {
			parts := make([]string, len(list))
			for i, e := range list {
				parts[i] = fmt.Sprint(e)
			}
			out[k] = strings.Join(parts, " ")
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}
