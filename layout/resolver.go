package layout

import "math"

// 两趟求解：
//
// 第一趟自上而下做临时分配：fixed 子区域取声明值，auto 叶子按交叉轴
// 可用宽度实测文本后取实测与最小值中的较大者，剩余空间按比例权重
// 瓜分。结构性需求（固定值加最小值）超过可用空间是声明本身的矛盾，
// 直接以 OverconstrainedError 失败；文本撑出的超量留给第二趟，只产生
// 警告，不会让求解失败。
//
// 第二趟自下而上做内容调和。此时每个节点的内容框宽度已定，文本
// 折行测量有了依据：叶子按实测尺寸撑大自己，增长沿分轴推移后续
// 兄弟；父区域先用自身空余吸收，吸收不下再增长。fixed 节点从不
// 改变尺寸：增长传播到 fixed 祖先即停，并记录一条 OverflowWarning
//（概念上在该处裁剪）。两趟遍历保证终止，不存在“反复重排直到
// 稳定”的固定点循环。
//
// 最小尺寸在两趟之后做最终托底（只向上钳制，从不缩小）。

// Resolve 把声明树求解为绝对几何。bounds 给出根节点的初始外框；
// 根节点 fixed 的轴以 bounds 为硬上限，否则根自身也可增长，
// 最终页面尺寸即求解后的根几何。输入树不会被修改。
func Resolve(root *Area, bounds Rect, opts ResolveOptions) (*Result, error) {
	if root == nil {
		return nil, &ConfigError{Reason: "根节点为空"}
	}
	r := &resolver{measure: opts.Measurer, patterns: opts.Patterns}
	if r.measure == nil {
		r.measure = roughMeasurer{}
	}
	if r.patterns == nil {
		r.patterns = DefaultPatterns()
	}

	node, err := r.place(root, bounds)
	if err != nil {
		return nil, err
	}
	if _, _, err := r.reconcile(node); err != nil {
		return nil, err
	}
	r.clampMinimums(node)
	return &Result{Root: node, Warnings: r.warnings}, nil
}

type resolver struct {
	measure  Measurer
	patterns *PatternRegistry
	warnings []OverflowWarning
}

func (r *resolver) warn(a *Area, axis Axis, delta float64) {
	r.warnings = append(r.warnings, OverflowWarning{Kind: a.Kind, Axis: axis, Delta: delta})
}

// place 第一趟：给 a 及其子树分配临时几何。
func (r *resolver) place(a *Area, outer Rect) (*Resolved, error) {
	node := &Resolved{Area: a, Rect: outer, Content: outer.Inset(a.Padding)}
	if a.GridLineType != "" && a.GridLineType != PatternBlank {
		p, err := r.patterns.Lookup(a.GridLineType)
		if err != nil {
			return nil, err
		}
		if a.GridOverride != nil {
			p = p.Merge(*a.GridOverride)
		}
		node.Pattern = &p
	}
	if len(a.Children) == 0 {
		return node, nil
	}

	content := node.Content
	main := content.W
	if a.Axis == AxisVertical {
		main = content.H
	}
	gaps := a.Spacing * float64(len(a.Children)-1)
	divisible := main - gaps

	// fixed 子区域取声明值，auto 叶子先实测文本再与最小值取大，
	// 剩余部分按比例权重分配。超约束只看结构性需求（固定值加最小值）：
	// 文本撑出的超量不在这里失败，留给第二趟产生警告。
	extents := make([]float64, len(a.Children))
	used := 0.0
	structural := 0.0
	ratioSum := 0.0
	for i, c := range a.Children {
		switch d := c.dim(a.Axis); d.Mode {
		case SizeFixed:
			extents[i] = d.Value
			used += d.Value
			structural += d.Value
		case SizeAuto:
			need := c.MinHeight
			if a.Axis == AxisHorizontal {
				need = c.MinWidth
			}
			ext := need
			switch {
			case len(c.Children) > 0:
				// auto 容器的占位来自子孙的固定值与最小值，
				// 这部分不可让步，一并计入结构性需求。
				ext = math.Max(ext, structuralNeed(c, a.Axis))
				need = ext
			case c.Label != "":
				measured, err := r.autoExtent(c, a.Axis, crossExtent(c, a, content))
				if err != nil {
					return nil, err
				}
				ext = math.Max(ext, measured)
			}
			extents[i] = ext
			used += ext
			structural += need
		case SizeRatio:
			ratioSum += d.Value
		}
	}
	if structural-divisible > geomEps {
		return nil, &OverconstrainedError{Kind: a.Kind, Axis: a.Axis, Available: divisible, Required: structural}
	}
	remaining := math.Max(divisible-used, 0)
	if ratioSum > 0 {
		for i, c := range a.Children {
			if d := c.dim(a.Axis); d.Mode == SizeRatio {
				extents[i] = remaining * d.Value / ratioSum
			}
		}
	}

	cursor := content.X
	if a.Axis == AxisVertical {
		cursor = content.Y
	}
	for i, c := range a.Children {
		cross := crossExtent(c, a, content)
		var box Rect
		if a.Axis == AxisHorizontal {
			box = Rect{X: cursor, Y: content.Y, W: extents[i], H: cross}
		} else {
			box = Rect{X: content.X, Y: cursor, W: cross, H: extents[i]}
		}
		child, err := r.place(c, box)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
		cursor += extents[i] + a.Spacing
	}
	return node, nil
}

// structuralNeed 给出区域沿 axis 不可让步的最小长度：固定值直接生效，
// 容器按子区域的结构需求汇总（分轴求和加间隔，交叉轴取最大）再加上
// 内边距。文本不参与，实测留给第二趟。
func structuralNeed(a *Area, axis Axis) float64 {
	if d := a.dim(axis); d.Mode == SizeFixed {
		return d.Value
	}
	min := a.MinHeight
	pad := a.Padding.Vertical()
	if axis == AxisHorizontal {
		min = a.MinWidth
		pad = a.Padding.Horizontal()
	}
	if len(a.Children) == 0 {
		return min
	}
	need := 0.0
	if a.Axis == axis {
		need = a.Spacing * float64(len(a.Children)-1)
		for _, c := range a.Children {
			need += structuralNeed(c, axis)
		}
	} else {
		for _, c := range a.Children {
			need = math.Max(need, structuralNeed(c, axis))
		}
	}
	return math.Max(min, need+pad)
}

// autoExtent 给出 auto 叶子沿分轴的实测长度。竖排时文本按交叉轴
// 可用宽度折行取高；横排时宽度就是待求量，不设折行上限。
func (r *resolver) autoExtent(c *Area, axis Axis, cross float64) (float64, error) {
	if axis == AxisVertical {
		sz, err := r.measure.MeasureLabel(c.Label, cross-c.Padding.Horizontal())
		if err != nil {
			return 0, err
		}
		return sz.H + c.Padding.Vertical(), nil
	}
	sz, err := r.measure.MeasureLabel(c.Label, 0)
	if err != nil {
		return 0, err
	}
	return sz.W + c.Padding.Horizontal(), nil
}

// crossExtent 给出子区域沿交叉轴的长度：未声明时铺满父内容框。
func crossExtent(c *Area, parent *Area, content Rect) float64 {
	full := content.H
	if parent.Axis == AxisVertical {
		full = content.W
	}
	switch d := c.dim(parent.Axis.Cross()); d.Mode {
	case SizeFixed:
		return d.Value
	case SizeRatio:
		return full * d.Value
	default:
		return full
	}
}

// reconcile 第二趟：后序遍历，返回节点自身吸收的增长量（dw, dh）。
func (r *resolver) reconcile(n *Resolved) (dw, dh float64, err error) {
	a := n.Area

	if len(n.Children) == 0 {
		if a.Label == "" {
			return 0, 0, nil
		}
		sz, err := r.measure.MeasureLabel(a.Label, n.Content.W)
		if err != nil {
			return 0, 0, err
		}
		// 纵向溢出撑高；横向只有 auto 宽度允许增长（典型场景是
		// 不可断词比换行宽度还宽），否则改动宽度会推翻刚做的折行测量。
		if delta := sz.H - n.Content.H; delta > geomEps {
			if a.Height.Mode == SizeFixed {
				r.warn(a, AxisVertical, delta)
			} else {
				n.Rect.H += delta
				n.Content.H += delta
				dh = delta
			}
		}
		if delta := sz.W - n.Content.W; delta > geomEps {
			if a.Width.Mode == SizeAuto {
				n.Rect.W += delta
				n.Content.W += delta
				dw = delta
			} else {
				r.warn(a, AxisHorizontal, delta)
			}
		}
		return dw, dh, nil
	}

	// 子区域先各自完成增长；沿分轴的增长把后续兄弟整体后移。
	shift := 0.0
	for _, c := range n.Children {
		if shift > geomEps {
			translate(c, a.Axis, shift)
		}
		cdw, cdh, err := r.reconcile(c)
		if err != nil {
			return 0, 0, err
		}
		if a.Axis == AxisHorizontal {
			shift += cdw
		} else {
			shift += cdh
		}
	}

	// 内容框必须盖住每个子区域调整后的外框；第一趟留下的空余先行
	// 吸收增长，只有真正超出内容框的部分才需要放大自己。
	axisNeed := 0.0
	crossNeed := 0.0
	for _, c := range n.Children {
		var along, across float64
		if a.Axis == AxisHorizontal {
			along = c.Rect.Right() - n.Content.Right()
			across = c.Rect.Bottom() - n.Content.Bottom()
		} else {
			along = c.Rect.Bottom() - n.Content.Bottom()
			across = c.Rect.Right() - n.Content.Right()
		}
		axisNeed = math.Max(axisNeed, along)
		crossNeed = math.Max(crossNeed, across)
	}

	if axisNeed > geomEps {
		if a.dim(a.Axis).Mode == SizeFixed {
			r.warn(a, a.Axis, axisNeed)
		} else if a.Axis == AxisHorizontal {
			n.Rect.W += axisNeed
			n.Content.W += axisNeed
			dw = axisNeed
		} else {
			n.Rect.H += axisNeed
			n.Content.H += axisNeed
			dh = axisNeed
		}
	}
	if crossNeed > geomEps {
		cross := a.Axis.Cross()
		if a.dim(cross).Mode == SizeFixed {
			r.warn(a, cross, crossNeed)
		} else if cross == AxisHorizontal {
			n.Rect.W += crossNeed
			n.Content.W += crossNeed
			dw += crossNeed
		} else {
			n.Rect.H += crossNeed
			n.Content.H += crossNeed
			dh += crossNeed
		}
	}
	return dw, dh, nil
}

// translate 平移整棵子树。
func translate(n *Resolved, axis Axis, d float64) {
	if axis == AxisHorizontal {
		n.Rect.X += d
		n.Content.X += d
	} else {
		n.Rect.Y += d
		n.Content.Y += d
	}
	for _, c := range n.Children {
		translate(c, axis, d)
	}
}

// clampMinimums 最终托底：尺寸不足最小值的节点只向上钳制，不再向上
// 传播。钳制把子区域撑出父内容框时补记一条 OverflowWarning，语义与
// fixed 祖先处的溢出裁剪一致；钳制前已有的溢出第二趟已经报过。
func (r *resolver) clampMinimums(n *Resolved) {
	a := n.Area
	if d := a.MinWidth - n.Rect.W; d > geomEps {
		n.Rect.W += d
		n.Content.W += d
	}
	if d := a.MinHeight - n.Rect.H; d > geomEps {
		n.Rect.H += d
		n.Content.H += d
	}
	for _, c := range n.Children {
		overR := math.Max(c.Rect.Right()-n.Content.Right(), 0)
		overB := math.Max(c.Rect.Bottom()-n.Content.Bottom(), 0)
		r.clampMinimums(c)
		if d := c.Rect.Right() - n.Content.Right() - overR; d > geomEps {
			r.warn(c.Area, AxisHorizontal, d)
		}
		if d := c.Rect.Bottom() - n.Content.Bottom() - overB; d > geomEps {
			r.warn(c.Area, AxisVertical, d)
		}
	}
}
