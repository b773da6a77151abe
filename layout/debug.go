package layout

import (
	"encoding/json"
	"io"
)

// 调试输出：把求解结果序列化成稳定的 JSON 树，便于人工核对几何
// 或在外部工具里做可视化比对。

type debugNode struct {
	Kind     Kind         `json:"kind"`
	Label    string       `json:"label,omitempty"`
	Axis     string       `json:"axis,omitempty"`
	Rect     Rect         `json:"rect"`
	Content  Rect         `json:"content"`
	Pattern  *GridPattern `json:"pattern,omitempty"`
	Children []*debugNode `json:"children,omitempty"`
}

type debugResult struct {
	Root     *debugNode `json:"root"`
	Warnings []string   `json:"warnings,omitempty"`
}

func debugTree(n *Resolved) *debugNode {
	if n == nil {
		return nil
	}
	out := &debugNode{
		Kind:    n.Area.Kind,
		Label:   n.Area.Label,
		Rect:    n.Rect,
		Content: n.Content,
		Pattern: n.Pattern,
	}
	if n.Area.Axis != AxisNone {
		out.Axis = n.Area.Axis.String()
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, debugTree(c))
	}
	return out
}

// WriteDebugJSON 把求解结果以缩进 JSON 写入 w。
func WriteDebugJSON(w io.Writer, res *Result) error {
	if res == nil {
		return &ConfigError{Reason: "结果为空"}
	}
	d := debugResult{Root: debugTree(res.Root)}
	for _, warn := range res.Warnings {
		d.Warnings = append(d.Warnings, warn.String())
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
