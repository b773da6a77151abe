package canvasrenderer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/notewell/cornell/layout"
)

// noFont 返回一个永远加载不到字体的渲染器，逼出估算与纯几何路径。
func noFont() *Renderer {
	return New(Options{Fonts: []Resource{{Path: "/nonexistent/font.ttf"}}})
}

// TestRenderGeometryOnly 验证无字体环境下纯几何模板可以渲染出 PDF。
func TestRenderGeometryOnly(t *testing.T) {
	root := layout.NewArea(layout.KindGroup)
	root.Axis = layout.AxisVertical
	root.Width = layout.Fixed(100)
	root.Height = layout.Fixed(150)
	root.BorderEnabled = false
	root.Spacing = 5
	root.Children = []*layout.Area{
		{Kind: layout.KindNotes, Height: layout.Ratio(0.7), GridLineType: "single_line", BorderEnabled: true},
		{Kind: layout.KindSummary, Height: layout.Ratio(0.3), GridLineType: "tianzige", BorderEnabled: true},
	}
	res, err := layout.Resolve(root, layout.Rect{W: 100, H: 150}, layout.ResolveOptions{})
	if err != nil {
		t.Fatalf("求解失败: %v", err)
	}
	data, err := noFont().Render(res)
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("输出不是 PDF，首字节: %q", data[:min(8, len(data))])
	}
}

// TestRenderLabelWithoutFont 验证有标签但无字体时报错而非静默丢字。
func TestRenderLabelWithoutFont(t *testing.T) {
	root := layout.NewArea(layout.KindTitle)
	root.Width = layout.Fixed(100)
	root.Height = layout.Fixed(14)
	root.Label = "主题"
	res, err := layout.Resolve(root, layout.Rect{W: 100, H: 14}, layout.ResolveOptions{})
	if err != nil {
		t.Fatalf("求解失败: %v", err)
	}
	if _, err := noFont().Render(res); err == nil {
		t.Fatalf("缺字体渲染标签未报错")
	}
}

// TestMeasureLabelFallback 验证无字体时按字符数估算且口径稳定。
func TestMeasureLabelFallback(t *testing.T) {
	r := noFont()
	sz, err := r.MeasureLabel("四个汉字", 0)
	if err != nil {
		t.Fatalf("测量失败: %v", err)
	}
	if sz.W <= 0 || sz.H <= 0 {
		t.Fatalf("估算尺寸应为正: %+v", sz)
	}
	// 限宽折行后高度增加、宽度不超过限宽
	narrow, err := r.MeasureLabel("四个汉字", sz.W/2)
	if err != nil {
		t.Fatalf("测量失败: %v", err)
	}
	if narrow.H <= sz.H || narrow.W > sz.W/2+1e-9 {
		t.Fatalf("限宽折行不成立: %+v vs %+v", narrow, sz)
	}
	// 空串恒为零
	if z, _ := r.MeasureLabel("", 100); z != (layout.Size{}) {
		t.Fatalf("空串应为零尺寸: %+v", z)
	}
}

// TestTokenize 验证空白段与词段的交替切分。
func TestTokenize(t *testing.T) {
	got := tokenize("hello  world 你好")
	want := []string{"hello", "  ", "world", " ", "你好"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("切分错误: %v", got)
	}
	if len(tokenize("")) != 0 {
		t.Fatalf("空串应无词元")
	}
}

// TestEstimateSizeMultiline 验证显式换行与宽度折行都计入行数。
func TestEstimateSizeMultiline(t *testing.T) {
	one := estimateSize("abcd", 0, 4)
	two := estimateSize("ab\ncd", 0, 4)
	if two.H <= one.H {
		t.Fatalf("显式换行未增加高度: %+v vs %+v", two, one)
	}
	wrapped := estimateSize("abcdefgh", one.W, 4)
	if wrapped.H <= one.H {
		t.Fatalf("宽度折行未增加高度: %+v", wrapped)
	}
}
