package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// 长度单位。包内一律以 mm 计算，Length 只在解析外部输入时出现，
// 进入布局树之前统一换算为 mm。

// Unit 表示长度值在输入中携带的单位。
type Unit int

const (
	UnitNone Unit = iota // 裸数字（视为 mm）
	UnitMM
	UnitCM
	UnitIN
	UnitPT
)

// pt 与 mm 的换算常数。
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

func (u Unit) String() string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length 保留数值与其原始单位。
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// MM 返回换算为毫米的数值；裸数字按毫米处理。
func (l Length) MM() float64 {
	switch l.Unit {
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * 25.4
	case UnitPT:
		return l.Value * PtToMm
	default:
		return l.Value
	}
}

// PT 返回换算为磅的数值，渲染器设置字号时使用。
func (l Length) PT() float64 {
	if l.Unit == UnitPT {
		return l.Value
	}
	return l.MM() * MmToPt
}

// ParseLength 解析带单位后缀的长度字面量，如 "12mm"、"8.5pt"、"1in"。
// 无后缀的数字按毫米处理。
func ParseLength(s string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return Length{}, fmt.Errorf("空的长度字面量")
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("非法的长度字面量 %q", s)
	}
	return Length{Value: f, Unit: unit}, nil
}
