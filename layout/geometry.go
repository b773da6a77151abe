package layout

import (
	"fmt"
	"math"
)

// 输出几何与不变式校验。坐标以根区域左上角为原点，y 轴向下，单位毫米。

const geomEps = 1e-6

// Rect 表示一个绝对定位的矩形。
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Inset 返回去掉内边距后的矩形；过大的内边距收缩为空矩形而非负矩形。
func (r Rect) Inset(p Padding) Rect {
	out := Rect{
		X: r.X + p.Left,
		Y: r.Y + p.Top,
		W: r.W - p.Horizontal(),
		H: r.H - p.Vertical(),
	}
	if out.W < 0 {
		out.W = 0
	}
	if out.H < 0 {
		out.H = 0
	}
	return out
}

func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Contains 判断 o 是否完全落在 r 内（允许极小浮点误差）。
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X-geomEps && o.Y >= r.Y-geomEps &&
		o.Right() <= r.Right()+geomEps && o.Bottom() <= r.Bottom()+geomEps
}

// Intersects 判断两个矩形是否有面积相交（仅共边不算）。
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right()-geomEps && o.X < r.Right()-geomEps &&
		r.Y < o.Bottom()-geomEps && o.Y < r.Bottom()-geomEps
}

// Resolved 是求解输出树的节点，与输入 Area 一一对应、形状相同。
// 每次 Resolve 都分配全新的输出树，节点本身是纯数据。
type Resolved struct {
	Area     *Area        // 对应的声明节点（只读引用）
	Rect     Rect         // 外框
	Content  Rect         // 外框减去内边距，子区域与文本的可用范围
	Pattern  *GridPattern // 解析并合并覆盖后的格线参数；无格线时为 nil
	Children []*Resolved
}

// Result 汇总一次求解：几何树与途中收集的非致命溢出警告。
type Result struct {
	Root     *Resolved
	Warnings []OverflowWarning
}

// CheckGeometry 校验输出树的几何不变式：子区域包含于父内容框、
// 兄弟区域互不相交、相邻间隔等于声明的 spacing、尺寸不低于下限。
// 带溢出警告的结果允许违反包含性（裁剪语义），调用方应先检查警告。
func CheckGeometry(n *Resolved) error {
	if n == nil {
		return nil
	}
	a := n.Area
	if n.Rect.W < a.MinWidth-geomEps || n.Rect.H < a.MinHeight-geomEps {
		return fmt.Errorf("layout: %s 区域 %.2fx%.2f 低于最小尺寸 %.2fx%.2f",
			a.Kind, n.Rect.W, n.Rect.H, a.MinWidth, a.MinHeight)
	}
	for i, c := range n.Children {
		if !n.Content.Contains(c.Rect) {
			return fmt.Errorf("layout: %s 的第 %d 个子区域 %s 超出内容框", a.Kind, i, c.Area.Kind)
		}
		for j := i + 1; j < len(n.Children); j++ {
			if c.Rect.Intersects(n.Children[j].Rect) {
				return fmt.Errorf("layout: %s 的子区域 %d 与 %d 相交", a.Kind, i, j)
			}
		}
	}
	for i := 0; i+1 < len(n.Children); i++ {
		var gap float64
		if a.Axis == AxisHorizontal {
			gap = n.Children[i+1].Rect.X - n.Children[i].Rect.Right()
		} else {
			gap = n.Children[i+1].Rect.Y - n.Children[i].Rect.Bottom()
		}
		if math.Abs(gap-a.Spacing) > geomEps {
			return fmt.Errorf("layout: %s 的子区域 %d/%d 间隔 %.4fmm，声明为 %.4fmm",
				a.Kind, i, i+1, gap, a.Spacing)
		}
	}
	for _, c := range n.Children {
		if err := CheckGeometry(c); err != nil {
			return err
		}
	}
	return nil
}
