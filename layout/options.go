package layout

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Size 是一次文本测量的结果（mm）。
type Size struct {
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Measurer 报告文本在给定换行宽度下的渲染尺寸。实现必须是纯函数：
// 相同输入返回相同输出，求解结果才可复现、可用桩替身测试。
type Measurer interface {
	MeasureLabel(text string, maxWidth float64) (Size, error)
}

// ResolveOptions 配置求解所需的外部能力。
type ResolveOptions struct {
	// Measurer 为空时使用按字符数的粗略估计，
	// 纯几何模板无需引入字体栈即可求解。
	Measurer Measurer

	// Patterns 为空时使用内置注册表。
	Patterns *PatternRegistry
}

// roughMeasurer 按 12pt 字号估算文本尺寸：无字体环境下的保底实现。
type roughMeasurer struct{}

const (
	roughCharWidth  = 12 * PtToMm * 0.55 // 每字符估宽（mm）
	roughLineHeight = 12 * PtToMm * 1.4  // 每行估高（mm）
)

func (roughMeasurer) MeasureLabel(text string, maxWidth float64) (Size, error) {
	if text == "" {
		return Size{}, nil
	}
	maxW := 0.0
	lines := 0
	for _, raw := range strings.Split(text, "\n") {
		w := roughCharWidth * float64(utf8.RuneCountInString(raw))
		if maxWidth > 0 && w > maxWidth {
			lines += int(math.Ceil(w / maxWidth))
			w = maxWidth
		} else {
			lines++
		}
		if w > maxW {
			maxW = w
		}
	}
	return Size{W: maxW, H: float64(lines) * roughLineHeight}, nil
}
