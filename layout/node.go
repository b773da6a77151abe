package layout

// 该文件定义声明式区域树：每个节点描述一块矩形区域的尺寸意图、
// 内边距、对齐与格线引用。树在构造阶段校验完毕后即视为只读，
// Resolve 不会修改任何输入节点。

// Kind 标识区域在模板中的语义角色。求解器不关心 Kind，
// 它只用于模板构建阶段的默认值推导与调试输出。
type Kind string

const (
	KindHeader    Kind = "header"
	KindField     Kind = "field"
	KindQuote     Kind = "quote"
	KindCornell   Kind = "cornellModule"
	KindTitle     Kind = "title"
	KindContent   Kind = "content"
	KindKeywords  Kind = "keywords"
	KindNotes     Kind = "notes"
	KindSummary   Kind = "summary"
	KindFooter    Kind = "footer"
	KindReviewBox Kind = "reviewBox"
	KindGroup     Kind = "genericGroup"
)

// Axis 描述子区域的排列方向；AxisNone 表示叶子节点。
type Axis int

const (
	AxisNone Axis = iota
	AxisHorizontal
	AxisVertical
)

func (a Axis) String() string {
	switch a {
	case AxisHorizontal:
		return "horizontal"
	case AxisVertical:
		return "vertical"
	default:
		return "none"
	}
}

// Cross 返回交叉轴。仅对 horizontal/vertical 有意义。
func (a Axis) Cross() Axis {
	switch a {
	case AxisHorizontal:
		return AxisVertical
	case AxisVertical:
		return AxisHorizontal
	default:
		return AxisNone
	}
}

// SizeMode 是单轴尺寸声明的变体标签。
type SizeMode int

const (
	SizeAuto  SizeMode = iota // 跟随内容，可增长
	SizeFixed                 // 显式毫米值，求解过程中不变
	SizeRatio                 // 父区域剩余空间的比例份额
)

func (m SizeMode) String() string {
	switch m {
	case SizeFixed:
		return "fixed"
	case SizeRatio:
		return "ratio"
	default:
		return "auto"
	}
}

// Dim 是单一轴向的尺寸声明。Value 在 SizeFixed 下为毫米，
// 在 SizeRatio 下为 (0,1] 区间内的比例，SizeAuto 下无意义。
type Dim struct {
	Mode  SizeMode `json:"mode"`
	Value float64  `json:"value,omitempty"`
}

// Auto 返回内容驱动的尺寸声明。
func Auto() Dim { return Dim{Mode: SizeAuto} }

// Fixed 返回固定毫米值的尺寸声明。
func Fixed(mm float64) Dim { return Dim{Mode: SizeFixed, Value: mm} }

// Ratio 返回按比例分配剩余空间的尺寸声明。
func Ratio(f float64) Dim { return Dim{Mode: SizeRatio, Value: f} }

// Padding 为四边内边距（毫米），恒为非负；区域增长时保持不变。
type Padding struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

func (p Padding) Horizontal() float64 { return p.Left + p.Right }
func (p Padding) Vertical() float64   { return p.Top + p.Bottom }

// Area 是声明树中的一个节点。Children 的顺序即排布与遍历顺序。
type Area struct {
	Kind   Kind
	Axis   Axis
	Width  Dim
	Height Dim

	// Label 为待测量/排布的文本内容，空串表示无文本。
	Label string

	Padding Padding

	// 以下属性对求解器不透明，原样带入输出供渲染器使用；
	// 只有 Spacing 参与几何计算（相邻子区域之间的间隔，毫米）。
	TextAlign     string
	VerticalAlign string
	TextPosition  string
	Spacing       float64

	// GridLineType 引用格线注册表中的名字；空串或 "blank" 表示无格线。
	// GridOverride 在查表结果上做值合并，不会写回注册表。
	GridLineType string
	GridOverride *GridPattern

	// BorderEnabled 默认开启；不影响几何。
	BorderEnabled bool

	// MinWidth/MinHeight 为硬下限，即使内容更小也会保持。
	MinWidth  float64
	MinHeight float64

	Children []*Area
}

// NewArea 返回带默认属性（边框开启、自动尺寸）的节点。
func NewArea(kind Kind) *Area {
	return &Area{Kind: kind, BorderEnabled: true}
}

// dim 返回该节点沿指定轴的尺寸声明。
func (a *Area) dim(axis Axis) Dim {
	if axis == AxisHorizontal {
		return a.Width
	}
	return a.Height
}

// Validate 递归校验整棵声明树。校验只发生在构造阶段：
// 通过校验的树在求解阶段不会再产生 ConfigError。
func (a *Area) Validate() error {
	if a == nil {
		return &ConfigError{Reason: "节点为空"}
	}
	if a.Axis == AxisNone && len(a.Children) > 0 {
		return &ConfigError{Kind: a.Kind, Reason: "axis 为 none 的节点不允许有子区域"}
	}
	for _, d := range []Dim{a.Width, a.Height} {
		switch d.Mode {
		case SizeRatio:
			if d.Value <= 0 || d.Value > 1 {
				return &ConfigError{Kind: a.Kind, Reason: "ratio 必须落在 (0,1] 区间"}
			}
		case SizeFixed:
			if d.Value < 0 {
				return &ConfigError{Kind: a.Kind, Reason: "固定尺寸不允许为负"}
			}
		}
	}
	if a.Padding.Top < 0 || a.Padding.Right < 0 || a.Padding.Bottom < 0 || a.Padding.Left < 0 {
		return &ConfigError{Kind: a.Kind, Reason: "内边距不允许为负"}
	}
	if a.Spacing < 0 {
		return &ConfigError{Kind: a.Kind, Reason: "spacing 不允许为负"}
	}
	if a.MinWidth < 0 || a.MinHeight < 0 {
		return &ConfigError{Kind: a.Kind, Reason: "最小尺寸不允许为负"}
	}
	for _, c := range a.Children {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}
