package template

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/notewell/cornell/binding"
	"github.com/notewell/cornell/dsl"
	"github.com/notewell/cornell/layout"
)

// template 包把两种前端（DSL 与 YAML 配置）统一翻译成 layout 的
// 声明树。区域语义角色的默认值集中在这里，layout 本身不认识
// “康奈尔”或“页眉”。

// Template 是一次构建的产物：可直接交给 layout.Resolve 求解。
type Template struct {
	Name     string
	Meta     map[string]string
	Root     *layout.Area
	Bounds   layout.Rect
	Patterns *layout.PatternRegistry
}

// Resolve 用模板自带的格线注册表求解布局。
func (t *Template) Resolve(m layout.Measurer) (*layout.Result, error) {
	if err := t.Root.Validate(); err != nil {
		return nil, err
	}
	return layout.Resolve(t.Root, t.Bounds, layout.ResolveOptions{
		Measurer: m,
		Patterns: t.Patterns,
	})
}

// pagePresets 是常用纸张的毫米尺寸（竖向）。
var pagePresets = map[string]layout.Size{
	"A0": {W: 841, H: 1189},
	"A1": {W: 594, H: 841},
	"A2": {W: 420, H: 594},
	"A3": {W: 297, H: 420},
	"A4": {W: 210, H: 297},
	"A5": {W: 148, H: 210},
	"A6": {W: 105, H: 148},
	"B3": {W: 353, H: 500},
	"B4": {W: 250, H: 353},
	"B5": {W: 176, H: 250},
}

// PaperSize 返回命名纸张的毫米尺寸。
func PaperSize(name string) (layout.Size, error) {
	if s, ok := pagePresets[strings.ToUpper(name)]; ok {
		return s, nil
	}
	return layout.Size{}, fmt.Errorf("template: 未知纸张规格 %q", name)
}

// applyKindDefaults 给每种语义角色套上缺省属性；显式声明总是覆盖缺省。
func applyKindDefaults(a *layout.Area) {
	switch a.Kind {
	case layout.KindHeader:
		a.Axis = layout.AxisHorizontal
		a.Height = layout.Fixed(18)
		a.Spacing = 5
	case layout.KindField:
		a.MinHeight = 8
		a.Padding = layout.Padding{Top: 2, Right: 3, Bottom: 2, Left: 3}
	case layout.KindQuote:
		a.Height = layout.Fixed(14)
		a.Padding = layout.Padding{Top: 2, Right: 3, Bottom: 2, Left: 3}
		a.TextAlign = "center"
	case layout.KindCornell:
		a.Axis = layout.AxisVertical
		a.Height = layout.Ratio(1)
	case layout.KindTitle:
		a.Height = layout.Fixed(14)
		a.Padding = layout.Padding{Top: 2, Right: 3, Bottom: 2, Left: 3}
	case layout.KindContent:
		a.Axis = layout.AxisHorizontal
		a.Height = layout.Ratio(1)
	case layout.KindKeywords:
		a.Width = layout.Ratio(0.3)
	case layout.KindNotes:
		a.Width = layout.Ratio(0.7)
		a.GridLineType = "single_line"
	case layout.KindSummary:
		a.Height = layout.Fixed(14)
		a.GridLineType = "single_line"
	case layout.KindFooter:
		a.Axis = layout.AxisHorizontal
		a.Height = layout.Fixed(16)
	case layout.KindReviewBox:
		a.BorderEnabled = false
		a.TextAlign = "center"
		a.VerticalAlign = "middle"
	}
}

// kindByName 把 DSL/YAML 里的角色名映射到 layout.Kind。
func kindByName(name string) (layout.Kind, error) {
	switch strings.ToLower(name) {
	case "header":
		return layout.KindHeader, nil
	case "field":
		return layout.KindField, nil
	case "quote":
		return layout.KindQuote, nil
	case "cornell":
		return layout.KindCornell, nil
	case "title":
		return layout.KindTitle, nil
	case "content":
		return layout.KindContent, nil
	case "keywords":
		return layout.KindKeywords, nil
	case "notes":
		return layout.KindNotes, nil
	case "summary":
		return layout.KindSummary, nil
	case "footer":
		return layout.KindFooter, nil
	case "review", "reviewbox", "review_box":
		return layout.KindReviewBox, nil
	case "group", "box":
		return layout.KindGroup, nil
	default:
		return "", fmt.Errorf("template: 未知区域角色 %q", name)
	}
}

// margins 描述页边距（毫米）。
type margins struct {
	Top, Right, Bottom, Left float64
}

// resolveMargins 支持 CSS 式 1/2/3/4 值语义，多余的值忽略。
func resolveMargins(vals []float64) margins {
	switch len(vals) {
	case 0:
		return margins{}
	case 1:
		v := vals[0]
		return margins{Top: v, Right: v, Bottom: v, Left: v}
	case 2:
		return margins{Top: vals[0], Bottom: vals[0], Right: vals[1], Left: vals[1]}
	case 3:
		return margins{Top: vals[0], Right: vals[1], Bottom: vals[2]}
	default:
		return margins{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}
	}
}

// applyBinding 给装订侧追加额外边距。
func (m *margins) applyBinding(side string, width float64) error {
	switch strings.ToLower(side) {
	case "left":
		m.Left += width
	case "right":
		m.Right += width
	case "top":
		m.Top += width
	default:
		return fmt.Errorf("template: 未知装订方向 %q", side)
	}
	return nil
}

const defaultBindingWidth = 10

// FromDSL 把解析好的模板文档构建成可求解的 Template。
// data 提供 ${path} 占位符的取值，可为 nil（此时只有内置占位符生效）。
func FromDSL(doc *dsl.Document, data map[string]any) (*Template, error) {
	if doc == nil {
		return nil, fmt.Errorf("template: 文档为空")
	}
	t := &Template{
		Name:     doc.Name,
		Meta:     map[string]string{},
		Patterns: layout.NewPatternRegistry(),
	}
	b := &builder{tpl: t, data: data}

	var page *dsl.PageSection
	for _, s := range doc.Sections {
		switch {
		case s.Meta != nil:
			for _, st := range s.Meta.Block.Statements {
				if st.Assignment != nil {
					t.Meta[st.Assignment.Key] = st.Assignment.Value.Text()
				}
			}
		case s.Patterns != nil:
			if err := b.registerPatterns(s.Patterns); err != nil {
				return nil, err
			}
		case s.Page != nil:
			if page != nil {
				return nil, fmt.Errorf("template: 模板只允许一个 page section")
			}
			page = s.Page
		}
	}
	if page == nil {
		return nil, fmt.Errorf("template: 缺少 page section")
	}
	if err := b.buildPage(page); err != nil {
		return nil, err
	}
	return t, nil
}

type builder struct {
	tpl  *Template
	data map[string]any
}

// interp 替换标签占位符；data 为空时仍可取到内置的日期占位符。
func (b *builder) interp(s string) string {
	return binding.Interpolate(s, b.data)
}

// registerPatterns 把 patterns section 里的 pattern 命令注册进模板
// 自己的注册表，可覆盖同名内置格线。
func (b *builder) registerPatterns(sec *dsl.PatternsSection) error {
	for _, st := range sec.Block.Statements {
		cmd := st.Command
		if cmd == nil {
			continue
		}
		if cmd.Name != "pattern" {
			return fmt.Errorf("template: patterns 内只允许 pattern 声明，遇到 %q", cmd.Name)
		}
		if len(cmd.Args) == 0 {
			return fmt.Errorf("template: pattern 缺少名字 (%s)", cmd.Pos)
		}
		p := layout.GridPattern{Name: cmd.Args[0].Value, Style: layout.LineSolid, OffsetX: layout.Mm(2), OffsetY: layout.Mm(4)}
		if cmd.Block != nil {
			if err := fillPattern(&p, blockAssignments(cmd.Block)); err != nil {
				return err
			}
		}
		b.tpl.Patterns.Register(p)
	}
	return nil
}

// buildPage 解析 page 头部参数并构建区域树的根。
func (b *builder) buildPage(page *dsl.PageSection) error {
	size, err := PaperSize(page.Spec.Size)
	if err != nil {
		return err
	}

	var margin margins
	args := page.Spec.Params
	for i := 0; i < len(args); i++ {
		switch args[i].Value {
		case "landscape":
			size.W, size.H = size.H, size.W
		case "portrait":
			// 竖向是缺省
		case "margin":
			var vals []float64
			for i+1 < len(args) && args[i+1].Type == "Number" {
				l, err := layout.ParseLength(args[i+1].Value)
				if err != nil {
					return err
				}
				vals = append(vals, l.MM())
				i++
			}
			if len(vals) == 0 {
				return fmt.Errorf("template: margin 缺少数值")
			}
			margin = resolveMargins(vals)
		case "binding":
			if i+1 >= len(args) {
				return fmt.Errorf("template: binding 缺少方向")
			}
			side := args[i+1].Value
			i++
			width := float64(defaultBindingWidth)
			if i+1 < len(args) && args[i+1].Type == "Number" {
				l, err := layout.ParseLength(args[i+1].Value)
				if err != nil {
					return err
				}
				width = l.MM()
				i++
			}
			if err := margin.applyBinding(side, width); err != nil {
				return err
			}
		default:
			return fmt.Errorf("template: 未知 page 参数 %q (%s)", args[i].Value, args[i].Pos)
		}
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

	for _, st := range page.Block.Statements {
		if st.Command == nil {
			continue
		}
		child, err := b.buildArea(st.Command, root.Axis)
		if err != nil {
			return err
		}
		root.Children = append(root.Children, child)
	}
	b.tpl.Root = root
	b.tpl.Bounds = layout.Rect{W: size.W, H: size.H}
	return nil
}

// buildArea 把一个 area 命令递归翻译成声明节点。parentAxis 决定
// ratio/height/width 等简写落在哪个轴上。
func (b *builder) buildArea(cmd *dsl.Command, parentAxis layout.Axis) (*layout.Area, error) {
	if cmd.Name != "area" {
		return nil, fmt.Errorf("template: page 内只允许 area 声明，遇到 %q (%s)", cmd.Name, cmd.Pos)
	}
	if len(cmd.Args) == 0 {
		return nil, fmt.Errorf("template: area 缺少角色名 (%s)", cmd.Pos)
	}
	kind, err := kindByName(cmd.Args[0].Value)
	if err != nil {
		return nil, err
	}
	a := layout.NewArea(kind)
	applyKindDefaults(a)

	if err := b.applyAreaArgs(a, cmd.Args[1:], parentAxis); err != nil {
		return nil, err
	}
	if cmd.Block != nil {
		if err := b.applyAreaBlock(a, cmd.Block); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// applyAreaArgs 处理 area 头部的键值参数。
func (b *builder) applyAreaArgs(a *layout.Area, args []*dsl.Lexeme, parentAxis layout.Axis) error {
	need := func(i int) (*dsl.Lexeme, error) {
		if i+1 >= len(args) {
			return nil, fmt.Errorf("template: area 参数 %q 缺少取值", args[i].Value)
		}
		return args[i+1], nil
	}
	lengthAt := func(i int) (float64, error) {
		v, err := need(i)
		if err != nil {
			return 0, err
		}
		l, err := layout.ParseLength(v.Value)
		if err != nil {
			return 0, err
		}
		return l.MM(), nil
	}

	for i := 0; i < len(args); i++ {
		switch args[i].Value {
		case "width":
			mm, err := lengthAt(i)
			if err != nil {
				return err
			}
			a.Width = layout.Fixed(mm)
			i++
		case "height":
			mm, err := lengthAt(i)
			if err != nil {
				return err
			}
			a.Height = layout.Fixed(mm)
			i++
		case "ratio":
			v, err := need(i)
			if err != nil {
				return err
			}
			f, err := parseRatio(v.Value)
			if err != nil {
				return err
			}
			if parentAxis == layout.AxisHorizontal {
				a.Width = layout.Ratio(f)
			} else {
				a.Height = layout.Ratio(f)
			}
			i++
		case "auto":
			if parentAxis == layout.AxisHorizontal {
				a.Width = layout.Auto()
			} else {
				a.Height = layout.Auto()
			}
		case "axis":
			v, err := need(i)
			if err != nil {
				return err
			}
			switch v.Value {
			case "horizontal":
				a.Axis = layout.AxisHorizontal
			case "vertical":
				a.Axis = layout.AxisVertical
			default:
				return fmt.Errorf("template: 未知排列方向 %q", v.Value)
			}
			i++
		case "spacing":
			mm, err := lengthAt(i)
			if err != nil {
				return err
			}
			a.Spacing = mm
			i++
		case "padding":
			var vals []float64
			for i+1 < len(args) && args[i+1].Type == "Number" {
				l, err := layout.ParseLength(args[i+1].Value)
				if err != nil {
					return err
				}
				vals = append(vals, l.MM())
				i++
			}
			if len(vals) == 0 {
				return fmt.Errorf("template: padding 缺少数值")
			}
			m := resolveMargins(vals)
			a.Padding = layout.Padding{Top: m.Top, Right: m.Right, Bottom: m.Bottom, Left: m.Left}
		case "grid":
			v, err := need(i)
			if err != nil {
				return err
			}
			a.GridLineType = v.Value
			i++
		case "min-width":
			mm, err := lengthAt(i)
			if err != nil {
				return err
			}
			a.MinWidth = mm
			i++
		case "min-height":
			mm, err := lengthAt(i)
			if err != nil {
				return err
			}
			a.MinHeight = mm
			i++
		case "noborder":
			a.BorderEnabled = false
		default:
			return fmt.Errorf("template: 未知 area 参数 %q (%s)", args[i].Value, args[i].Pos)
		}
	}
	return nil
}

// applyAreaBlock 处理 area 块体：赋值语句设置属性，嵌套 area 生成子树。
func (b *builder) applyAreaBlock(a *layout.Area, blk *dsl.Block) error {
	for _, st := range blk.Statements {
		switch {
		case st.Assignment != nil:
			if err := b.applyAssignment(a, st.Assignment); err != nil {
				return err
			}
		case st.Text != nil:
			a.Label = b.interp(string(st.Text.Value))
		case st.Command != nil:
			if a.Axis == layout.AxisNone {
				// 有子区域却未声明方向时按纵向排
				a.Axis = layout.AxisVertical
			}
			child, err := b.buildArea(st.Command, a.Axis)
			if err != nil {
				return err
			}
			a.Children = append(a.Children, child)
		}
	}
	return nil
}

func (b *builder) applyAssignment(a *layout.Area, as *dsl.Assignment) error {
	val := as.Value.Text()
	switch as.Key {
	case "label":
		a.Label = b.interp(val)
	case "align":
		a.TextAlign = val
	case "valign":
		a.VerticalAlign = val
	case "position":
		a.TextPosition = val
	case "grid":
		a.GridLineType = val
	case "line_count", "line-count":
		// 行数 × 格线步长推导固定高度
		l, err := layout.ParseLength(val)
		if err != nil {
			return err
		}
		name := a.GridLineType
		if name == "" {
			name = "single_line"
			a.GridLineType = name
		}
		p, err := b.tpl.Patterns.Lookup(name)
		if err != nil {
			return err
		}
		step := p.Step()
		if step <= 0 {
			return fmt.Errorf("template: 格线 %q 无法按行数推导高度", name)
		}
		_, offY := p.Offsets()
		a.Height = layout.Fixed(l.Value*step + offY)
	default:
		return b.applyPatternOverride(a, as.Key, val)
	}
	return nil
}

// applyPatternOverride 把 grid_ 前缀的赋值转成节点级格线覆盖。
func (b *builder) applyPatternOverride(a *layout.Area, key, val string) error {
	if !strings.HasPrefix(key, "grid_") && !strings.HasPrefix(key, "grid-") {
		return fmt.Errorf("template: 未知 area 属性 %q", key)
	}
	if a.GridOverride == nil {
		a.GridOverride = &layout.GridPattern{}
	}
	return fillPattern(a.GridOverride, map[string]string{key[len("grid_"):]: val})
}

// parseRatio 接受 0.3 与 30% 两种写法。
func parseRatio(s string) (float64, error) {
	if v, ok := strings.CutSuffix(s, "%"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("template: 非法比例 %q", s)
		}
		return f / 100, nil
	}
	l, err := layout.ParseLength(s)
	if err != nil {
		return 0, err
	}
	return l.Value, nil
}

// fillPattern 按键值填充格线参数，DSL 与 YAML 共用。
func fillPattern(p *layout.GridPattern, kv map[string]string) error {
	for key, val := range kv {
		switch key {
		case "spacing":
			l, err := layout.ParseLength(val)
			if err != nil {
				return err
			}
			v := l.MM()
			p.Spacing = &v
		case "cell", "cell_size":
			l, err := layout.ParseLength(val)
			if err != nil {
				return err
			}
			v := l.MM()
			p.CellSize = &v
		case "rows", "row_heights":
			p.RowHeights = p.RowHeights[:0]
			for _, f := range strings.Fields(val) {
				l, err := layout.ParseLength(f)
				if err != nil {
					return err
				}
				p.RowHeights = append(p.RowHeights, l.MM())
			}
		case "style":
			switch layout.LineStyle(val) {
			case layout.LineSolid, layout.LineDashed, layout.LineDotted:
				p.Style = layout.LineStyle(val)
			default:
				return fmt.Errorf("template: 未知线型 %q", val)
			}
		case "color":
			c, err := parseHexColor(val)
			if err != nil {
				return err
			}
			p.Primary = &c
		case "secondary":
			c, err := parseHexColor(val)
			if err != nil {
				return err
			}
			p.Secondary = &c
		case "offset_x":
			l, err := layout.ParseLength(val)
			if err != nil {
				return err
			}
			p.OffsetX = layout.Mm(l.MM())
		case "offset_y":
			l, err := layout.ParseLength(val)
			if err != nil {
				return err
			}
			p.OffsetY = layout.Mm(l.MM())
		default:
			return fmt.Errorf("template: 未知格线属性 %q", key)
		}
	}
	return nil
}

// blockAssignments 收集块内的全部赋值，键冲突时后者覆盖前者。
func blockAssignments(b *dsl.Block) map[string]string {
	out := map[string]string{}
	for _, st := range b.Statements {
		if st.Assignment != nil {
			out[st.Assignment.Key] = st.Assignment.Value.Text()
		}
	}
	return out
}

// parseHexColor 解析 #RGB / #RRGGBB。
func parseHexColor(s string) (layout.Color, error) {
	h := strings.TrimPrefix(s, "#")
	var c layout.Color
	var err error
	switch len(h) {
	case 3:
		_, err = fmt.Sscanf(h, "%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R *= 17
		c.G *= 17
		c.B *= 17
	case 6:
		_, err = fmt.Sscanf(h, "%2x%2x%2x", &c.R, &c.G, &c.B)
	default:
		return c, fmt.Errorf("template: 非法颜色 %q", s)
	}
	if err != nil {
		return c, fmt.Errorf("template: 非法颜色 %q", s)
	}
	return c, nil
}
