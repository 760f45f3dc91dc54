package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/rshade/scrollviz/internal/chart"
)

const (
	background = "#ffffff"
	foreground = "#1a1a2e"
	gridColor  = "#d8dee9"

	margin      = 40.0
	titleHeight = 36.0
	labelHeight = 24.0
	fontSize    = 13.0
	donutHole   = 0.55
)

// rect is an axis-aligned box in pixels.
type rect struct {
	X, Y, W, H float64
}

func (r rect) centre() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Painter rasterizes figures at a fixed size.
type Painter struct {
	width  int
	height int
	face   font.Face
}

// NewPainter returns a painter for width x height images using the Go
// regular font.
func NewPainter(width, height int) (*Painter, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	ttf, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	return &Painter{width: width, height: height, face: face}, nil
}

// plot returns the area left for the figure once margins and the title are
// taken out.
func (p *Painter) plot() rect {
	return rect{
		X: margin,
		Y: margin + titleHeight,
		W: float64(p.width) - 2*margin,
		H: float64(p.height) - 2*margin - titleHeight,
	}
}

// Paint draws fig onto a fresh image.
func (p *Painter) Paint(fig chart.Figure) image.Image {
	dc := gg.NewContext(p.width, p.height)
	dc.SetHexColor(background)
	dc.Clear()
	dc.SetFontFace(p.face)

	if fig.Title != "" {
		dc.SetHexColor(foreground)
		dc.DrawStringAnchored(fig.Title, float64(p.width)/2, margin+titleHeight/2, 0.5, 0.5)
	}

	area := p.plot()
	switch fig.Kind {
	case chart.KindBar:
		drawBars(dc, area, fig)
	case chart.KindPie:
		drawWheel(dc, area, fig.Items, 0)
	case chart.KindDonut:
		drawWheel(dc, area, fig.Items, donutHole)
	case chart.KindGrouped:
		drawGrouped(dc, area, fig)
	case chart.KindStacked:
		drawStacked(dc, area, fig)
	case chart.KindDonuts:
		drawDonutRow(dc, area, fig.Groups)
	case chart.KindGauge:
		drawGauge(dc, area, fig.Fraction)
	case chart.KindHierarchy:
		drawPacked(dc, area, fig.Root)
	}
	return dc.Image()
}

// WritePNG paints fig and encodes it to w.
func (p *Painter) WritePNG(w io.Writer, fig chart.Figure) error {
	return png.Encode(w, p.Paint(fig))
}

// SavePNG paints fig to the file at path.
func (p *Painter) SavePNG(path string, fig chart.Figure) error {
	return gg.NewContextForImage(p.Paint(fig)).SavePNG(path)
}

func drawBars(dc *gg.Context, area rect, fig chart.Figure) {
	n := len(fig.Items)
	maxValue := fig.MaxValue()
	if n == 0 || maxValue <= 0 {
		return
	}

	bars := rect{X: area.X, Y: area.Y, W: area.W, H: area.H - labelHeight}
	drawBaseline(dc, bars)

	slot := bars.W / float64(n)
	for i, item := range fig.Items {
		h := math.Max(item.Value, 0) / maxValue * bars.H
		x := bars.X + float64(i)*slot + slot*0.1

		dc.SetHexColor(chart.Color(i))
		dc.DrawRectangle(x, bars.Y+bars.H-h, slot*0.8, h)
		dc.Fill()

		dc.SetHexColor(foreground)
		dc.DrawStringAnchored(fit(dc, item.Name, slot), x+slot*0.4, bars.Y+bars.H+labelHeight/2, 0.5, 0.5)
	}
}

func drawGrouped(dc *gg.Context, area rect, fig chart.Figure) {
	series := fig.Series()
	maxValue := fig.MaxValue()
	if len(fig.Groups) == 0 || len(series) == 0 || maxValue <= 0 {
		return
	}

	index := make(map[string]int, len(series))
	for i, name := range series {
		index[name] = i
	}

	bars := rect{X: area.X, Y: area.Y, W: area.W, H: area.H - 2*labelHeight}
	drawBaseline(dc, bars)

	groupSlot := bars.W / float64(len(fig.Groups))
	barSlot := groupSlot * 0.8 / float64(len(series))
	for g, group := range fig.Groups {
		left := bars.X + float64(g)*groupSlot + groupSlot*0.1
		for _, item := range group.Items {
			s := index[item.Name]
			h := math.Max(item.Value, 0) / maxValue * bars.H
			dc.SetHexColor(chart.Color(s))
			dc.DrawRectangle(left+float64(s)*barSlot, bars.Y+bars.H-h, barSlot*0.9, h)
			dc.Fill()
		}
		dc.SetHexColor(foreground)
		dc.DrawStringAnchored(fit(dc, group.Name, groupSlot), left+groupSlot*0.4, bars.Y+bars.H+labelHeight/2, 0.5, 0.5)
	}

	drawLegend(dc, series, area.X, area.Y+area.H-labelHeight/2)
}

// drawStacked draws one full-height column per group, split by share.
func drawStacked(dc *gg.Context, area rect, fig chart.Figure) {
	series := fig.Series()
	if len(fig.Groups) == 0 || len(series) == 0 {
		return
	}

	index := make(map[string]int, len(series))
	for i, name := range series {
		index[name] = i
	}

	bars := rect{X: area.X, Y: area.Y, W: area.W, H: area.H - 2*labelHeight}
	drawBaseline(dc, bars)

	slot := bars.W / float64(len(fig.Groups))
	for g, group := range fig.Groups {
		x := bars.X + float64(g)*slot + slot*0.1
		bottom := bars.Y + bars.H
		for _, item := range group.Items {
			h := math.Max(item.Value, 0) * bars.H
			dc.SetHexColor(chart.Color(index[item.Name]))
			dc.DrawRectangle(x, bottom-h, slot*0.8, h)
			dc.Fill()
			bottom -= h
		}
		dc.SetHexColor(foreground)
		dc.DrawStringAnchored(fit(dc, group.Name, slot), x+slot*0.4, bars.Y+bars.H+labelHeight/2, 0.5, 0.5)
	}

	drawLegend(dc, series, area.X, area.Y+area.H-labelHeight/2)
}

// drawWheel draws a pie, or a donut when hole is the inner radius fraction.
func drawWheel(dc *gg.Context, area rect, items []chart.Item, hole float64) {
	cx, cy := area.centre()
	r := math.Min(area.W, area.H) / 2 * 0.9
	wedges(dc, cx, cy, r, hole, items)
}

func wedges(dc *gg.Context, cx, cy, r, hole float64, items []chart.Item) {
	total := 0.0
	for _, item := range items {
		total += math.Max(item.Value, 0)
	}
	if total <= 0 {
		return
	}

	angle := -math.Pi / 2
	for i, item := range items {
		if item.Value <= 0 {
			continue
		}
		sweep := item.Value / total * 2 * math.Pi
		dc.SetHexColor(chart.Color(i))
		if hole > 0 {
			dc.DrawArc(cx, cy, r, angle, angle+sweep)
			dc.DrawArc(cx, cy, r*hole, angle+sweep, angle)
		} else {
			dc.MoveTo(cx, cy)
			dc.DrawArc(cx, cy, r, angle, angle+sweep)
		}
		dc.ClosePath()
		dc.Fill()

		if sweep > 0.25 {
			mid := angle + sweep/2
			lr := r * (1 + hole) / 2
			if hole == 0 {
				lr = r * 0.65
			}
			dc.SetHexColor(background)
			dc.DrawStringAnchored(item.Name, cx+lr*math.Cos(mid), cy+lr*math.Sin(mid), 0.5, 0.5)
		}
		angle += sweep
	}
}

func drawDonutRow(dc *gg.Context, area rect, groups []chart.Group) {
	n := len(groups)
	if n == 0 {
		return
	}
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := (n + cols - 1) / cols
	cellW := area.W / float64(cols)
	cellH := area.H / float64(rows)

	for i, group := range groups {
		cell := rect{
			X: area.X + float64(i%cols)*cellW,
			Y: area.Y + float64(i/cols)*cellH,
			W: cellW,
			H: cellH - labelHeight,
		}
		cx, cy := cell.centre()
		r := math.Min(cell.W, cell.H) / 2 * 0.85
		wedges(dc, cx, cy, r, donutHole, group.Items)

		dc.SetHexColor(foreground)
		dc.DrawStringAnchored(fit(dc, group.Name, cellW), cx, cell.Y+cell.H+labelHeight/2, 0.5, 0.5)
	}
}

func drawGauge(dc *gg.Context, area rect, fraction float64) {
	cx := area.X + area.W/2
	cy := area.Y + area.H*0.75
	r := math.Min(area.W/2, area.H*0.7)
	width := r * 0.25

	dc.SetLineWidth(width)
	dc.SetLineCap(gg.LineCapButt)

	dc.SetHexColor(gridColor)
	dc.DrawArc(cx, cy, r-width/2, math.Pi, 2*math.Pi)
	dc.Stroke()

	if fraction > 0 {
		dc.SetHexColor(chart.Color(0))
		dc.DrawArc(cx, cy, r-width/2, math.Pi, math.Pi+fraction*math.Pi)
		dc.Stroke()
	}

	dc.SetHexColor(foreground)
	dc.DrawStringAnchored(fmt.Sprintf("%.0f%%", fraction*100), cx, cy-width, 0.5, 0.5)
}

func drawPacked(dc *gg.Context, area rect, root *chart.Node) {
	if root == nil {
		return
	}
	cx, cy := area.centre()
	r := math.Min(area.W, area.H) / 2 * 0.95

	for _, c := range pack(root, cx, cy, r) {
		dc.SetHexColor(chart.DepthColor(c.node.Depth))
		dc.DrawCircle(c.x, c.y, c.r)
		dc.Fill()
		if len(c.node.Children) == 0 && c.r > 18 {
			dc.SetHexColor(background)
			dc.DrawStringAnchored(fit(dc, c.node.ID, 2*c.r), c.x, c.y, 0.5, 0.5)
		}
	}
}

// circle is one placed hierarchy node.
type circle struct {
	node    *chart.Node
	x, y, r float64
}

// pack places node in the circle (x, y, r) and its children around a ring
// inside it, each with area proportional to its value. Parents come before
// their children in the result.
func pack(node *chart.Node, x, y, r float64) []circle {
	out := []circle{{node: node, x: x, y: y, r: r}}
	if len(node.Children) == 0 {
		return out
	}

	radii := make([]float64, len(node.Children))
	ring, largest := 0.0, 0.0
	for i, child := range node.Children {
		radii[i] = math.Sqrt(math.Max(child.Value, 0))
		ring += 2 * radii[i]
		largest = math.Max(largest, radii[i])
	}
	if largest == 0 {
		return out
	}

	if len(node.Children) == 1 {
		return append(out, pack(node.Children[0], x, y, r*0.8)...)
	}

	ringR := math.Max(ring/(2*math.Pi), largest)
	scale := r * 0.9 / (ringR + largest)

	angle := -math.Pi / 2
	for i, child := range node.Children {
		step := radii[i] / ring * 2 * math.Pi
		angle += step
		cx := x + ringR*scale*math.Cos(angle)
		cy := y + ringR*scale*math.Sin(angle)
		out = append(out, pack(child, cx, cy, radii[i]*scale)...)
		angle += step
	}
	return out
}

func drawBaseline(dc *gg.Context, area rect) {
	dc.SetHexColor(gridColor)
	dc.SetLineWidth(1)
	dc.DrawLine(area.X, area.Y+area.H, area.X+area.W, area.Y+area.H)
	dc.Stroke()
}

func drawLegend(dc *gg.Context, names []string, x, y float64) {
	for i, name := range names {
		dc.SetHexColor(chart.Color(i))
		dc.DrawRectangle(x, y-5, 10, 10)
		dc.Fill()
		dc.SetHexColor(foreground)
		dc.DrawStringAnchored(name, x+14, y, 0, 0.5)
		w, _ := dc.MeasureString(name)
		x += w + 32
	}
}

// fit shortens s with an ellipsis until it is at most width pixels wide.
func fit(dc *gg.Context, s string, width float64) string {
	if w, _ := dc.MeasureString(s); w <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "…"
		if w, _ := dc.MeasureString(candidate); w <= width {
			return candidate
		}
	}
	return ""
}
