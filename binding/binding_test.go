package binding

import (
	"testing"
	"time"
)

// TestInterpolatePaths 覆盖点号路径与数组下标。
func TestInterpolatePaths(t *testing.T) {
	data := map[string]any{
		"student": map[string]any{"name": "李明"},
		"tags":    []any{"语文", "数学"},
		"week":    map[string]string{"label": "第三周"},
	}
	cases := []struct {
		in, want string
	}{
		{"姓名：${student.name}", "姓名：李明"},
		{"科目：${tags[1]}", "科目：数学"},
		{"${week.label}", "第三周"},
		{"${missing.path}", "${missing.path}"},
		{"${tags[9]}", "${tags[9]}"},
		{"无占位符", "无占位符"},
		{"${ student.name }", "李明"},
	}
	for _, c := range cases {
		if got := Interpolate(c.in, data); got != c.want {
			t.Fatalf("Interpolate(%q): got=%q want=%q", c.in, got, c.want)
		}
	}
}

// TestInterpolateBuiltins 验证数据缺席时回退到内置日期占位符。
func TestInterpolateBuiltins(t *testing.T) {
	orig := now
	now = func() time.Time { return time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC) }
	defer func() { now = orig }()

	cases := []struct {
		in, want string
	}{
		{"日期：${date}", "日期：2025-03-05"},
		{"${year}年${month}月${day}日", "2025年3月5日"},
		{"${weekday}", "星期三"},
	}
	for _, c := range cases {
		if got := Interpolate(c.in, nil); got != c.want {
			t.Fatalf("Interpolate(%q): got=%q want=%q", c.in, got, c.want)
		}
	}
}

// TestDataOverridesBuiltin 验证外部数据优先于内置占位符。
func TestDataOverridesBuiltin(t *testing.T) {
	data := map[string]any{"date": "2025-01-01"}
	if got := Interpolate("${date}", data); got != "2025-01-01" {
		t.Fatalf("外部数据未覆盖内置值: %q", got)
	}
}
