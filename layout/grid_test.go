package layout

import (
	"errors"
	"testing"
)

// TestBuiltinPatterns 逐一核对六种内置格线的关键参数。
func TestBuiltinPatterns(t *testing.T) {
	reg := NewPatternRegistry()

	blank, err := reg.Lookup(PatternBlank)
	if err != nil {
		t.Fatalf("blank 查表失败: %v", err)
	}
	if blank.Spacing != nil || blank.CellSize != nil || len(blank.RowHeights) != 0 {
		t.Fatalf("blank 不应携带绘制参数: %+v", blank)
	}

	four, err := reg.Lookup("four_line_three_grid")
	if err != nil {
		t.Fatalf("four_line_three_grid 查表失败: %v", err)
	}
	if len(four.RowHeights) != 3 || four.RowHeights[0] != 4 || four.RowHeights[1] != 6 || four.RowHeights[2] != 4 {
		t.Fatalf("四线三格行高错误: %v", four.RowHeights)
	}
	if four.Secondary == nil || *four.Secondary != (Color{B: 255}) {
		t.Fatalf("四线三格第二线色应为蓝色: %+v", four.Secondary)
	}

	dotted, _ := reg.Lookup("dotted")
	if dotted.Style != LineDotted || dotted.Spacing == nil || *dotted.Spacing != 20 {
		t.Fatalf("点阵参数错误: %+v", dotted)
	}

	tzg, _ := reg.Lookup("tianzige")
	if tzg.CellSize == nil || *tzg.CellSize != 30 {
		t.Fatalf("田字格边长错误: %+v", tzg.CellSize)
	}

	for _, name := range []string{"english_grid", "single_line"} {
		p, err := reg.Lookup(name)
		if err != nil {
			t.Fatalf("%s 查表失败: %v", name, err)
		}
		if p.Spacing == nil || *p.Spacing != 8 {
			t.Fatalf("%s 行距应为 8mm: %+v", name, p.Spacing)
		}
		if x, y := p.Offsets(); x != 2 || y != 4 {
			t.Fatalf("%s 起绘偏移错误: %g/%g", name, x, y)
		}
	}
}

// TestLookupUnknown 验证未注册名字返回可用 errors.As 匹配的错误。
func TestLookupUnknown(t *testing.T) {
	_, err := NewPatternRegistry().Lookup("septagram")
	var ue *UnknownPatternError
	if !errors.As(err, &ue) {
		t.Fatalf("期望 UnknownPatternError，实际 %v", err)
	}
	if ue.Name != "septagram" {
		t.Fatalf("错误未携带名字: %+v", ue)
	}
}

// TestRegisterCustom 验证自定义格线可注册并查到。
func TestRegisterCustom(t *testing.T) {
	reg := NewPatternRegistry()
	reg.Register(GridPattern{Name: "wide_line", Spacing: Mm(12), Style: LineSolid})
	p, err := reg.Lookup("wide_line")
	if err != nil {
		t.Fatalf("自定义格线查表失败: %v", err)
	}
	if *p.Spacing != 12 {
		t.Fatalf("自定义行距错误: %g", *p.Spacing)
	}
}

// TestMergeOverrides 验证值合并只覆盖已设置字段。
func TestMergeOverrides(t *testing.T) {
	base, _ := NewPatternRegistry().Lookup("english_grid")
	merged := base.Merge(GridPattern{Spacing: Mm(10), Style: LineDashed})
	if *merged.Spacing != 10 || merged.Style != LineDashed {
		t.Fatalf("覆盖字段未生效: %+v", merged)
	}
	if merged.Primary == nil || *merged.Primary != (Color{}) {
		t.Fatalf("未覆盖字段被改动: %+v", merged.Primary)
	}
	if *base.Spacing != 8 {
		t.Fatalf("Merge 修改了原值: %g", *base.Spacing)
	}
}

// TestMergeResetsOffsets 验证覆盖可以把内置偏移显式清零，
// 未覆盖的偏移保持原值。
func TestMergeResetsOffsets(t *testing.T) {
	base, _ := NewPatternRegistry().Lookup("single_line")
	merged := base.Merge(GridPattern{OffsetX: Mm(0)})
	x, y := merged.Offsets()
	if x != 0 {
		t.Fatalf("显式清零未生效: %g", x)
	}
	if y != 4 {
		t.Fatalf("未覆盖的偏移被改动: %g", y)
	}
	if bx, _ := base.Offsets(); bx != 2 {
		t.Fatalf("Merge 修改了原值: %g", bx)
	}
}

// TestPatternStep 验证纵向重复步长的推导优先级：行高组 > 田字格边长 > 行距。
func TestPatternStep(t *testing.T) {
	cases := []struct {
		name string
		want float64
	}{
		{"four_line_three_grid", 14},
		{"tianzige", 30},
		{"english_grid", 8},
		{"single_line", 8},
		{"dotted", 20},
		{PatternBlank, 0},
	}
	reg := NewPatternRegistry()
	for _, c := range cases {
		p, err := reg.Lookup(c.name)
		if err != nil {
			t.Fatalf("%s 查表失败: %v", c.name, err)
		}
		if got := p.Step(); got != c.want {
			t.Fatalf("%s 步长: got=%g want=%g", c.name, got, c.want)
		}
	}
}
