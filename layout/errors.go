package layout

import "fmt"

// 错误分类：构造期错误（ConfigError）、查表错误（UnknownPatternError）、
// 求解期致命错误（OverconstrainedError）。非致命的溢出以 OverflowWarning
// 附在 Result 上，由调用方决定重排、记录还是接受裁剪。

// ConfigError 表示非法的区域声明，只在树构造阶段出现。
type ConfigError struct {
	Kind   Kind
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("layout: 非法区域声明: %s", e.Reason)
	}
	return fmt.Sprintf("layout: 非法区域声明 %s: %s", e.Kind, e.Reason)
}

// UnknownPatternError 表示引用了未注册的格线类型。
type UnknownPatternError struct {
	Name string
}

func (e *UnknownPatternError) Error() string {
	return fmt.Sprintf("layout: 未注册的格线类型 %q", e.Name)
}

// OverconstrainedError 表示固定/最小尺寸之和超过可用空间，
// 布局在比例分配之前就已不可满足；整次求解失败，不产生部分结果。
type OverconstrainedError struct {
	Kind      Kind
	Axis      Axis
	Available float64 // 扣除间隔后的可分配长度（mm）
	Required  float64 // 固定与自动子区域合计需要的长度（mm）
}

func (e *OverconstrainedError) Error() string {
	return fmt.Sprintf("layout: %s 区域沿 %s 轴空间不足: 需要 %.2fmm，可用 %.2fmm",
		e.Kind, e.Axis, e.Required, e.Available)
}

// OverflowWarning 记录一次无法向上传播的内容增长：某个 fixed 祖先
// 挡住了扩张，几何按其原尺寸保留，内容在该处概念上被裁剪。
type OverflowWarning struct {
	Kind  Kind    `json:"kind"`
	Axis  Axis    `json:"-"`
	Delta float64 `json:"delta"` // 未被吸收的增长量（mm）
}

func (w OverflowWarning) String() string {
	return fmt.Sprintf("%s 区域沿 %s 轴溢出 %.2fmm（被固定尺寸裁剪）", w.Kind, w.Axis, w.Delta)
}
