package canvasrenderer

import "github.com/notewell/cornell/layout"

// 格线几何的纯计算：把格线参数展开为一组线段与圆点，单位毫米，
// 坐标为页面绝对坐标。绘制调用在 renderer.go，这里不碰 canvas，
// 方便在无字体环境下单测。

const gridLineWidth = 0.2

type stroke struct {
	x1, y1, x2, y2 float64
	color          layout.Color
	width          float64
	dashed         bool
}

type dot struct {
	x, y, r float64
	color   layout.Color
}

// patternGeometry 把格线参数在 box（通常是区域内容框）内展开。
// 起绘点为 box 左上角加上 Offset，超出右/下边界的线不生成。
func patternGeometry(p *layout.GridPattern, box layout.Rect) ([]stroke, []dot) {
	if p == nil {
		return nil, nil
	}
	primary := layout.Color{}
	if p.Primary != nil {
		primary = *p.Primary
	}
	secondary := primary
	if p.Secondary != nil {
		secondary = *p.Secondary
	}
	offX, offY := p.Offsets()
	x0 := box.X + offX
	y0 := box.Y + offY
	x1 := box.Right() - offX
	y1 := box.Bottom()
	if x1 <= x0 || y1 <= y0 {
		return nil, nil
	}

	switch {
	case len(p.RowHeights) > 0:
		return fourLineStrokes(p, primary, secondary, x0, y0, x1, y1), nil
	case p.CellSize != nil && *p.CellSize > 0:
		return tianzigeStrokes(*p.CellSize, primary, secondary, x0, y0, x1, y1), nil
	case p.Spacing != nil && *p.Spacing > 0 && p.Style == layout.LineDotted:
		return nil, dotLattice(*p.Spacing, primary, x0, y0, x1, y1)
	case p.Spacing != nil && *p.Spacing > 0:
		return ruledStrokes(p, primary, secondary, x0, y0, x1, y1), nil
	default:
		return nil, nil
	}
}

// fourLineStrokes 按行高组重复绘制四条横线；外侧两条用主色，
// 内侧两条用第二色（拼音练习纸的惯例）。
func fourLineStrokes(p *layout.GridPattern, primary, secondary layout.Color, x0, y0, x1, y1 float64) []stroke {
	group := 0.0
	for _, h := range p.RowHeights {
		group += h
	}
	if group <= 0 {
		return nil
	}
	var out []stroke
	dashed := p.Style == layout.LineDashed
	for top := y0; top+group <= y1+1e-9; top += group {
		ys := []float64{top, top + p.RowHeights[0]}
		acc := p.RowHeights[0]
		for _, h := range p.RowHeights[1:] {
			acc += h
			ys = append(ys, top+acc)
		}
		for i, y := range ys {
			c := primary
			if i != 0 && i != len(ys)-1 {
				c = secondary
			}
			out = append(out, stroke{x0, y, x1, y, c, gridLineWidth, dashed})
		}
	}
	return out
}

// tianzigeStrokes 画正方形田字格：外框实线，中间十字虚线。
func tianzigeStrokes(cell float64, primary, secondary layout.Color, x0, y0, x1, y1 float64) []stroke {
	var out []stroke
	for top := y0; top+cell <= y1+1e-9; top += cell {
		for left := x0; left+cell <= x1+1e-9; left += cell {
			right, bottom := left+cell, top+cell
			out = append(out,
				stroke{left, top, right, top, primary, gridLineWidth, false},
				stroke{left, bottom, right, bottom, primary, gridLineWidth, false},
				stroke{left, top, left, bottom, primary, gridLineWidth, false},
				stroke{right, top, right, bottom, primary, gridLineWidth, false},
				stroke{left, top + cell/2, right, top + cell/2, secondary, gridLineWidth, true},
				stroke{left + cell/2, top, left + cell/2, bottom, secondary, gridLineWidth, true},
			)
		}
	}
	return out
}

// ruledStrokes 画等距横线；设置了第二色时在行间补一条虚的辅助线
//（英语练习纸的中线）。
func ruledStrokes(p *layout.GridPattern, primary, secondary layout.Color, x0, y0, x1, y1 float64) []stroke {
	spacing := *p.Spacing
	var out []stroke
	dashed := p.Style == layout.LineDashed
	for y := y0; y <= y1+1e-9; y += spacing {
		out = append(out, stroke{x0, y, x1, y, primary, gridLineWidth, dashed})
		if p.Secondary != nil && y+spacing <= y1+1e-9 {
			mid := y + spacing/2
			out = append(out, stroke{x0, mid, x1, mid, secondary, gridLineWidth, true})
		}
	}
	return out
}

// dotLattice 画等距点阵。
func dotLattice(spacing float64, c layout.Color, x0, y0, x1, y1 float64) []dot {
	const dotRadius = 0.25
	var out []dot
	for y := y0; y <= y1+1e-9; y += spacing {
		for x := x0; x <= x1+1e-9; x += spacing {
			out = append(out, dot{x, y, dotRadius, c})
		}
	}
	return out
}
