// Package canvasrenderer 基于 github.com/tdewolff/canvas 把布局结果
// 渲染成 PDF。除文本外的绘制都不依赖字体；没有可用字体时纯几何
// 模板照常输出，文本测量退化为按字符数估算。
package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/notewell/cornell/layout"
	"github.com/notewell/cornell/renderer"
)

const (
	borderWidth     = 0.3
	defaultFontSize = 12 * layout.PtToMm // mm
)

// systemFontPaths 按优先级尝试的系统中文字体。
var systemFontPaths = []string{
	"/System/Library/Fonts/PingFang.ttc",
	"/System/Library/Fonts/STHeiti Light.ttc",
	"C:\\Windows\\Fonts\\msyh.ttc",
	"C:\\Windows\\Fonts\\simsun.ttc",
	"/usr/share/fonts/truetype/wqy/wqy-microhei.ttc",
	"/usr/share/fonts/truetype/arphic/uming.ttc",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

// Resource 以字节或路径提供字体。
type Resource struct {
	Bytes []byte
	Path  string
}

// Options 配置渲染器。
type Options struct {
	Meta renderer.DocumentMeta

	// Fonts 按顺序尝试加载，第一个成功的生效；为空时尝试系统字体。
	Fonts []Resource

	// FontSize 为标签字号（毫米），零值取 12pt。
	FontSize float64

	// TextColor 为标签颜色，零值取深灰。
	TextColor *layout.Color
}

// Renderer 把 Resolved 树画成单页 PDF，同时实现 layout.Measurer，
// 让求解与渲染共用同一套文本度量。
type Renderer struct {
	opts Options

	fontOnce   sync.Once
	fontFamily *canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

// New 返回带默认选项的渲染器。
func New(opts Options) *Renderer {
	if opts.FontSize <= 0 {
		opts.FontSize = defaultFontSize
	}
	if opts.TextColor == nil {
		opts.TextColor = &layout.Color{R: 30, G: 30, B: 30}
	}
	return &Renderer{opts: opts}
}

// Render 输出 PDF 字节。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil || result.Root == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	w := result.Root.Rect.W
	h := result.Root.Rect.H

	var buf bytes.Buffer
	writer := pdf.New(&buf, w, h, nil)
	meta := r.opts.Meta
	writer.SetInfo(meta.Title, meta.Subject, strings.Join(meta.Keywords, ", "), meta.Author, meta.Creator)

	c := canvas.New(w, h)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 与布局一致：左上角为原点

	if err := r.drawNode(ctx, result.Root); err != nil {
		return nil, err
	}
	c.RenderTo(writer)

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawNode(ctx *canvas.Context, n *layout.Resolved) error {
	a := n.Area
	if a.BorderEnabled {
		ctx.SetFillColor(color.RGBA{})
		ctx.SetStrokeColor(rgb(layout.Color{}))
		ctx.SetStrokeWidth(borderWidth)
		ctx.SetDashes(0)
		ctx.DrawPath(n.Rect.X, n.Rect.Y, canvas.Rectangle(n.Rect.W, n.Rect.H))
	}
	if n.Pattern != nil {
		r.drawPattern(ctx, n.Pattern, n.Content)
	}
	if a.Label != "" {
		if err := r.drawLabel(ctx, n); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := r.drawNode(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) drawPattern(ctx *canvas.Context, p *layout.GridPattern, box layout.Rect) {
	strokes, dots := patternGeometry(p, box)
	for _, s := range strokes {
		ctx.SetStrokeColor(rgb(s.color))
		ctx.SetStrokeWidth(s.width)
		if s.dashed {
			ctx.SetDashes(0, 1.5, 1)
		} else {
			ctx.SetDashes(0)
		}
		path := &canvas.Path{}
		path.MoveTo(0, 0)
		path.LineTo(s.x2-s.x1, s.y2-s.y1)
		ctx.DrawPath(s.x1, s.y1, path)
	}
	ctx.SetDashes(0)
	for _, d := range dots {
		ctx.SetFillColor(rgb(d.color))
		ctx.SetStrokeColor(color.RGBA{})
		ctx.DrawPath(d.x-d.r, d.y-d.r, canvas.Circle(d.r))
	}
}

func (r *Renderer) drawLabel(ctx *canvas.Context, n *layout.Resolved) error {
	face, err := r.face()
	if err != nil {
		return fmt.Errorf("绘制标签 %q 需要字体: %w", n.Area.Label, err)
	}
	lines := r.wrap(face, n.Area.Label, n.Content.W)
	metrics := face.Metrics()
	lineHeight := metrics.LineHeight
	block := float64(len(lines)) * lineHeight

	var align canvas.TextAlign
	var anchorX float64
	switch strings.ToLower(n.Area.TextAlign) {
	case "center":
		align = canvas.Center
		anchorX = n.Content.X + n.Content.W/2
	case "right", "end":
		align = canvas.Right
		anchorX = n.Content.Right()
	default:
		align = canvas.Left
		anchorX = n.Content.X
	}
	cursorY := n.Content.Y
	switch strings.ToLower(n.Area.VerticalAlign) {
	case "middle", "center":
		cursorY += math.Max((n.Content.H-block)/2, 0)
	case "bottom":
		cursorY += math.Max(n.Content.H-block, 0)
	}

	for _, line := range lines {
		baseline := cursorY + metrics.Ascent
		ctx.DrawText(anchorX, baseline, canvas.NewTextLine(face, line, align))
		cursorY += lineHeight
	}
	return nil
}

// MeasureLabel 实现 layout.Measurer：贪心折行后给出文本块尺寸。
// 字体不可用时退化为按字符数估算，保证纯几何环境可用。
func (r *Renderer) MeasureLabel(text string, maxWidth float64) (layout.Size, error) {
	if text == "" {
		return layout.Size{}, nil
	}
	face, err := r.face()
	if err != nil {
		return estimateSize(text, maxWidth, r.opts.FontSize), nil
	}
	lines := r.wrap(face, text, maxWidth)
	metrics := face.Metrics()
	maxW := 0.0
	for _, line := range lines {
		if w := face.TextWidth(line); w > maxW {
			maxW = w
		}
	}
	return layout.Size{W: maxW, H: float64(len(lines)) * metrics.LineHeight}, nil
}

// wrap 做贪心折行：优先在空白处断行，单个词超宽时按字符硬切。
func (r *Renderer) wrap(face *canvas.FontFace, text string, maxWidth float64) []string {
	limit := maxWidth
	if limit <= 0 {
		limit = math.MaxFloat64
	}
	var lines []string
	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r", ""), "\n") {
		var sb strings.Builder
		width := 0.0
		emit := func() {
			lines = append(lines, sb.String())
			sb.Reset()
			width = 0
		}
		for _, token := range tokenize(raw) {
			tw := face.TextWidth(token)
			if width > 0 && width+tw > limit {
				emit()
				if strings.TrimSpace(token) == "" {
					continue // 行首不保留空白
				}
			}
			if tw > limit {
				for _, chunk := range hardSplit(face, token, limit) {
					cw := face.TextWidth(chunk)
					if width > 0 && width+cw > limit {
						emit()
					}
					sb.WriteString(chunk)
					width += cw
				}
				continue
			}
			sb.WriteString(token)
			width += tw
		}
		emit()
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

// tokenize 把文本切成空白段与非空白段的交替序列。
func tokenize(s string) []string {
	var tokens []string
	var sb strings.Builder
	var inSpace bool
	for _, r := range s {
		isSpace := unicode.IsSpace(r)
		if sb.Len() > 0 && isSpace != inSpace {
			tokens = append(tokens, sb.String())
			sb.Reset()
		}
		inSpace = isSpace
		sb.WriteRune(r)
	}
	if sb.Len() > 0 {
		tokens = append(tokens, sb.String())
	}
	return tokens
}

// hardSplit 把超宽词按宽度上限切成若干段。
func hardSplit(face *canvas.FontFace, token string, limit float64) []string {
	var parts []string
	var sb strings.Builder
	for _, r := range token {
		sb.WriteRune(r)
		if face.TextWidth(sb.String()) > limit && utf8.RuneCountInString(sb.String()) > 1 {
			s := []rune(sb.String())
			parts = append(parts, string(s[:len(s)-1]))
			sb.Reset()
			sb.WriteRune(r)
		}
	}
	if sb.Len() > 0 {
		parts = append(parts, sb.String())
	}
	return parts
}

// estimateSize 是无字体时的保底估算，口径与布局侧的缺省估算一致。
func estimateSize(text string, maxWidth, fontSize float64) layout.Size {
	charW := fontSize * 0.55
	lineH := fontSize * 1.4
	maxW := 0.0
	lines := 0
	for _, raw := range strings.Split(text, "\n") {
		w := charW * float64(utf8.RuneCountInString(raw))
		if maxWidth > 0 && w > maxWidth {
			lines += int(math.Ceil(w / maxWidth))
			w = maxWidth
		} else {
			lines++
		}
		maxW = math.Max(maxW, w)
	}
	return layout.Size{W: maxW, H: float64(lines) * lineH}
}

// face 惰性加载字体：先试注入的资源，再试系统字体。
func (r *Renderer) face() (*canvas.FontFace, error) {
	r.fontOnce.Do(func() {
		sources := r.opts.Fonts
		if len(sources) == 0 {
			for _, p := range systemFontPaths {
				sources = append(sources, Resource{Path: p})
			}
		}
		for _, res := range sources {
			data := res.Bytes
			if len(data) == 0 && res.Path != "" {
				data, _ = os.ReadFile(res.Path)
			}
			if len(data) == 0 {
				continue
			}
			family := canvas.NewFontFamily("cornell")
			if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
				continue
			}
			r.fontFamily = family
			return
		}
	})
	if r.fontFamily == nil {
		return nil, fmt.Errorf("没有可用字体")
	}
	sizePt := r.opts.FontSize * layout.MmToPt
	return r.fontFamily.Face(sizePt, rgb(*r.opts.TextColor), canvas.FontRegular, canvas.FontNormal), nil
}

func rgb(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, 1)
}
