package template

import (
	"math"
	"strings"
	"testing"

	"github.com/notewell/cornell/dsl"
	"github.com/notewell/cornell/layout"
)

const dailyTemplate = `
template cornell_daily v1 {
  meta {
    author: "notewell"
  }

  patterns {
    pattern wide_line {
      spacing: 10mm
      style: solid
      color: #D3D3D3
    }
  }

  page A4 margin 10mm binding left 8mm {
    area header {
      area field ratio 0.6 { label: "姓名：${student.name}" }
      area field ratio 0.4 { label: "日期：${date}" }
    }
    area quote { "每日一句" }
    area cornell {
      area title { label: "主题" }
      area content ratio 1 {
        area keywords { }
        area notes grid wide_line { }
      }
      area summary { }
    }
    area footer noborder { }
  }
}
`

func buildDSL(t *testing.T, src string, data map[string]any) *Template {
	t.Helper()
	doc, err := dsl.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("解析 DSL 失败: %v", err)
	}
	tpl, err := FromDSL(doc, data)
	if err != nil {
		t.Fatalf("构建模板失败: %v", err)
	}
	return tpl
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

// TestBuildDailyTemplate 端到端：DSL → 模板 → 求解，并校验几何不变式。
func TestBuildDailyTemplate(t *testing.T) {
	tpl := buildDSL(t, dailyTemplate, map[string]any{
		"student": map[string]any{"name": "李明"},
	})
	if tpl.Name != "cornell_daily" || tpl.Meta["author"] != "notewell" {
		t.Fatalf("模板头/meta 错误: %s %v", tpl.Name, tpl.Meta)
	}
	root := tpl.Root
	if !near(root.Padding.Left, 18) || !near(root.Padding.Right, 10) {
		t.Fatalf("装订边距未叠加: %+v", root.Padding)
	}
	if len(root.Children) != 4 {
		t.Fatalf("顶层区域数量: got=%d want=4", len(root.Children))
	}
	if root.Children[0].Children[0].Label != "姓名：李明" {
		t.Fatalf("占位符未替换: %q", root.Children[0].Children[0].Label)
	}

	res, err := tpl.Resolve(nil)
	if err != nil {
		t.Fatalf("求解失败: %v", err)
	}
	if !near(res.Root.Rect.W, 210) || !near(res.Root.Rect.H, 297) {
		t.Fatalf("页面尺寸错误: %+v", res.Root.Rect)
	}
	if err := layout.CheckGeometry(res.Root); err != nil {
		t.Fatalf("几何不变式失败: %v", err)
	}
}

// TestKindDefaults 验证语义角色的缺省属性与显式覆盖。
func TestKindDefaults(t *testing.T) {
	tpl := buildDSL(t, dailyTemplate, nil)
	root := tpl.Root

	header := root.Children[0]
	if header.Axis != layout.AxisHorizontal || header.Height != layout.Fixed(18) || !near(header.Spacing, 5) {
		t.Fatalf("header 缺省错误: %+v", header)
	}
	cornell := root.Children[2]
	if cornell.Axis != layout.AxisVertical || cornell.Height != layout.Ratio(1) {
		t.Fatalf("cornell 缺省错误: %+v", cornell)
	}
	content := cornell.Children[1]
	keywords, notes := content.Children[0], content.Children[1]
	if keywords.Width != layout.Ratio(0.3) || notes.Width != layout.Ratio(0.7) {
		t.Fatalf("笔记区比例缺省错误: %v/%v", keywords.Width, notes.Width)
	}
	if notes.GridLineType != "wide_line" {
		t.Fatalf("显式 grid 未覆盖缺省: %q", notes.GridLineType)
	}
	footer := root.Children[3]
	if footer.BorderEnabled {
		t.Fatalf("noborder 未生效")
	}
}

// TestCustomPatternRegistered 验证 patterns section 进了模板注册表。
func TestCustomPatternRegistered(t *testing.T) {
	tpl := buildDSL(t, dailyTemplate, nil)
	p, err := tpl.Patterns.Lookup("wide_line")
	if err != nil {
		t.Fatalf("自定义格线未注册: %v", err)
	}
	if p.Spacing == nil || !near(*p.Spacing, 10) || p.Style != layout.LineSolid {
		t.Fatalf("自定义格线参数错误: %+v", p)
	}
	if p.Primary == nil || (*p.Primary != layout.Color{R: 0xD3, G: 0xD3, B: 0xD3}) {
		t.Fatalf("自定义格线颜色错误: %+v", p.Primary)
	}
}

// TestLineCountDerivesHeight 验证 line_count 按格线步长推导固定高度。
func TestLineCountDerivesHeight(t *testing.T) {
	src := `template t v1 {
  page A4 {
    area notes {
      line_count: 5
    }
  }
}`
	tpl := buildDSL(t, src, nil)
	notes := tpl.Root.Children[0]
	// single_line 步长 8mm，5 行 + 起绘偏移 4mm
	if notes.Height != layout.Fixed(5*8+4) {
		t.Fatalf("line_count 推导高度错误: %+v", notes.Height)
	}
}

// TestRatioPercentArg 验证比例参数接受百分比写法。
func TestRatioPercentArg(t *testing.T) {
	src := `template t v1 {
  page A4 {
    area content {
      area keywords ratio 25% { label: "线索" }
      area notes ratio 75% { label: "笔记" }
    }
  }
}`
	tpl := buildDSL(t, src, nil)
	content := tpl.Root.Children[0]
	if content.Children[0].Width != layout.Ratio(0.25) {
		t.Fatalf("百分比比例未换算: %+v", content.Children[0].Width)
	}
	if content.Children[1].Width != layout.Ratio(0.75) {
		t.Fatalf("百分比比例未换算: %+v", content.Children[1].Width)
	}
}

// TestPaperSizes 抽查纸张规格表。
func TestPaperSizes(t *testing.T) {
	cases := map[string]layout.Size{
		"A4": {W: 210, H: 297},
		"a5": {W: 148, H: 210},
		"B5": {W: 176, H: 250},
		"A0": {W: 841, H: 1189},
	}
	for name, want := range cases {
		got, err := PaperSize(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got != want {
			t.Fatalf("%s: got=%+v want=%+v", name, got, want)
		}
	}
	if _, err := PaperSize("C9"); err == nil {
		t.Fatalf("未知纸张未报错")
	}
}

// TestBuildErrors 覆盖构建期的常见错误。
func TestBuildErrors(t *testing.T) {
	for name, src := range map[string]string{
		"未知角色":    `template t v1 { page A4 { area sidebar { } } }`,
		"未知格线属性":  `template t v1 { page A4 { area notes { grid_flavor: sweet } } }`,
		"缺少 page": `template t v1 { meta { author: "x" } }`,
		"两个 page": `template t v1 { page A4 { } page A5 { } }`,
		"未知纸张":    `template t v1 { page C9 { } }`,
	} {
		doc, err := dsl.ParseString(src)
		if err != nil {
			t.Fatalf("%s: 解析失败 %v", name, err)
		}
		if _, err := FromDSL(doc, nil); err == nil {
			t.Fatalf("%s: 未报错", name)
		}
	}
}

// TestGridOverrideAssignment 验证 grid_ 前缀赋值生成节点级覆盖。
func TestGridOverrideAssignment(t *testing.T) {
	src := `template t v1 {
  page A4 {
    area notes {
      grid_spacing: 12mm
      grid_style: dashed
    }
  }
}`
	tpl := buildDSL(t, src, nil)
	o := tpl.Root.Children[0].GridOverride
	if o == nil || o.Spacing == nil || !near(*o.Spacing, 12) || o.Style != layout.LineDashed {
		t.Fatalf("格线覆盖错误: %+v", o)
	}
}
