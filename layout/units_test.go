package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		mm := pt * PtToMm
		back := mm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt mm=%g back=%g diff=%g", pt, mm, back, diff)
		}
	}
}

// TestLengthConversions 覆盖 Length 在常见单位上到 mm/pt 的换算。
func TestLengthConversions(t *testing.T) {
	if got := (Length{Value: 1, Unit: UnitIN}).MM(); math.Abs(got-25.4) > 1e-9 {
		t.Fatalf("1in 转 mm 期望 25.4，实际 %g", got)
	}
	if got := (Length{Value: 2.54, Unit: UnitCM}).MM(); math.Abs(got-25.4) > 1e-9 {
		t.Fatalf("2.54cm 转 mm 期望 25.4，实际 %g", got)
	}
	if got := (Length{Value: 12, Unit: UnitPT}).MM(); math.Abs(got-12*PtToMm) > 1e-9 {
		t.Fatalf("12pt 转 mm 期望 %g，实际 %g", 12*PtToMm, got)
	}
	if got := (Length{Value: 10, Unit: UnitMM}).PT(); math.Abs(got-10*MmToPt) > 1e-9 {
		t.Fatalf("10mm 转 pt 期望 %g，实际 %g", 10*MmToPt, got)
	}
	// 裸数字按 mm 处理
	if got := (Length{Value: 7}).MM(); got != 7 {
		t.Fatalf("裸数字应按 mm: %g", got)
	}
}

// TestParseLength 验证长度字面量解析：单位后缀、空白、非法输入。
func TestParseLength(t *testing.T) {
	good := []struct {
		in   string
		want Length
	}{
		{"12mm", Length{Value: 12, Unit: UnitMM}},
		{"8.5pt", Length{Value: 8.5, Unit: UnitPT}},
		{"1in", Length{Value: 1, Unit: UnitIN}},
		{"2.5cm", Length{Value: 2.5, Unit: UnitCM}},
		{" 30 ", Length{Value: 30, Unit: UnitNone}},
		{"4 MM", Length{Value: 4, Unit: UnitMM}},
	}
	for _, c := range good {
		got, err := ParseLength(c.in)
		if err != nil {
			t.Fatalf("解析 %q 失败: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("解析 %q: got=%+v want=%+v", c.in, got, c.want)
		}
	}
	for _, bad := range []string{"", "mm", "abc", "12px"} {
		if _, err := ParseLength(bad); err == nil {
			t.Fatalf("非法字面量 %q 未报错", bad)
		}
	}
}
