package layout

// 格线类型注册表。求解器只用它校验引用并把解析后的参数带入输出，
// 真正的画线发生在渲染器。内置的六种格线参数取自练字/笔记纸的
// 常见规格：四线三格 4/6/4mm、英语三线 8mm、田字格 30mm、横线 8mm、
// 点阵 20mm，默认起绘偏移 2mm/4mm。

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

var (
	colorBlack     = Color{R: 0, G: 0, B: 0}
	colorLightGrey = Color{R: 211, G: 211, B: 211}
	colorBlue      = Color{R: 0, G: 0, B: 255}
)

// LineStyle 描述格线的线型。
type LineStyle string

const (
	LineSolid  LineStyle = "solid"
	LineDashed LineStyle = "dashed"
	LineDotted LineStyle = "dotted"
)

// GridPattern 描述一种格线的绘制参数。不适用于该类型的字段保持
// nil/零值缺省，调用方据此区分“未设置”与“显式为零”。
type GridPattern struct {
	Name string `json:"name"`

	// Spacing 为行距或点距（mm）；RowHeights 仅四线三格使用（mm）。
	Spacing    *float64  `json:"spacing,omitempty"`
	CellSize   *float64  `json:"cellSize,omitempty"`
	RowHeights []float64 `json:"rowHeights,omitempty"`

	Style     LineStyle `json:"style,omitempty"`
	Primary   *Color    `json:"primary,omitempty"`
	Secondary *Color    `json:"secondary,omitempty"`

	// 相对内容框左上角的起绘偏移（mm）。指针区分“未设置”与
	// “显式为零”，覆盖时才能把内置偏移清零。
	OffsetX *float64 `json:"offsetX,omitempty"`
	OffsetY *float64 `json:"offsetY,omitempty"`
}

// Offsets 返回起绘偏移的数值形式，未设置按 0。
func (p GridPattern) Offsets() (x, y float64) {
	if p.OffsetX != nil {
		x = *p.OffsetX
	}
	if p.OffsetY != nil {
		y = *p.OffsetY
	}
	return x, y
}

// Merge 返回以 o 中已设置字段覆盖后的副本；o 未设置的字段保持原值。
// 这是每个节点覆盖格线参数的途径，注册表本身不被修改。
func (p GridPattern) Merge(o GridPattern) GridPattern {
	out := p
	if o.Spacing != nil {
		out.Spacing = o.Spacing
	}
	if o.CellSize != nil {
		out.CellSize = o.CellSize
	}
	if len(o.RowHeights) > 0 {
		out.RowHeights = o.RowHeights
	}
	if o.Style != "" {
		out.Style = o.Style
	}
	if o.Primary != nil {
		out.Primary = o.Primary
	}
	if o.Secondary != nil {
		out.Secondary = o.Secondary
	}
	if o.OffsetX != nil {
		out.OffsetX = o.OffsetX
	}
	if o.OffsetY != nil {
		out.OffsetY = o.OffsetY
	}
	return out
}

// PatternBlank 是保留名：合法引用，但不绘制任何格线。
const PatternBlank = "blank"

// PatternRegistry 维护名字到格线参数的映射。初始化完成后只读，
// 并发查询是安全的。
type PatternRegistry struct {
	entries map[string]GridPattern
}

// Mm 返回毫米数值的指针，便于填写格线参数的可选字段。
func Mm(v float64) *float64 { return &v }

// NewPatternRegistry 返回预置六种内置格线的注册表。
func NewPatternRegistry() *PatternRegistry {
	r := &PatternRegistry{entries: map[string]GridPattern{}}
	for _, p := range []GridPattern{
		{Name: PatternBlank},
		{
			Name:      "dotted",
			Spacing:   Mm(20),
			Style:     LineDotted,
			Primary:   &colorLightGrey,
			OffsetX:   Mm(2),
			OffsetY:   Mm(4),
		},
		{
			Name:       "four_line_three_grid",
			RowHeights: []float64{4, 6, 4},
			Style:      LineSolid,
			Primary:    &colorBlack,
			Secondary:  &colorBlue,
			OffsetX:    Mm(2),
			OffsetY:    Mm(4),
		},
		{
			Name:      "english_grid",
			Spacing:   Mm(8),
			Style:     LineSolid,
			Primary:   &colorBlack,
			Secondary: &colorLightGrey,
			OffsetX:   Mm(2),
			OffsetY:   Mm(4),
		},
		{
			Name:     "tianzige",
			CellSize: Mm(30),
			Style:    LineSolid,
			Primary:  &colorBlack,
			OffsetX:  Mm(2),
			OffsetY:  Mm(4),
		},
		{
			Name:    "single_line",
			Spacing: Mm(8),
			Style:   LineSolid,
			Primary: &colorLightGrey,
			OffsetX: Mm(2),
			OffsetY: Mm(4),
		},
	} {
		r.entries[p.Name] = p
	}
	return r
}

// Register 注册或覆盖一个命名格线。仅应在初始化阶段调用。
func (r *PatternRegistry) Register(p GridPattern) {
	if p.Name == "" {
		return
	}
	r.entries[p.Name] = p
}

// Lookup 按名字返回格线参数的副本。未注册的名字返回
// UnknownPatternError；"blank" 始终合法。
func (r *PatternRegistry) Lookup(name string) (GridPattern, error) {
	if p, ok := r.entries[name]; ok {
		return p, nil
	}
	return GridPattern{}, &UnknownPatternError{Name: name}
}

// Step 返回该格线沿纵向重复一次所占的长度（mm），用于按行数推导
// 区域高度。无法推导时返回 0。
func (p GridPattern) Step() float64 {
	if len(p.RowHeights) > 0 {
		sum := 0.0
		for _, h := range p.RowHeights {
			sum += h
		}
		return sum
	}
	if p.CellSize != nil {
		return *p.CellSize
	}
	if p.Spacing != nil {
		return *p.Spacing
	}
	return 0
}

var defaultPatterns = NewPatternRegistry()

// DefaultPatterns 返回进程级共享的内置注册表（只读）。
func DefaultPatterns() *PatternRegistry { return defaultPatterns }
