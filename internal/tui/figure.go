package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/scrollviz/internal/chart"
)

const (
	pieMark   = "■"
	donutMark = "◉"
	minBar    = 4
)

//nolint:gochecknoglobals // Shared number printer.
var printer = message.NewPrinter(language.English)

// FormatNumber groups thousands and keeps two decimals for fractional values.
func FormatNumber(v float64) string {
	switch {
	case math.IsInf(v, 0) || math.IsNaN(v):
		return fmt.Sprint(v)
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return printer.Sprintf("%d", int64(v))
	default:
		return printer.Sprintf("%.2f", v)
	}
}

// RenderFigure draws fig as text at most width columns wide.
func RenderFigure(fig chart.Figure, width int) string {
	width = max(width, minBar+8)

	var body string
	switch fig.Kind {
	case chart.KindBar:
		body = renderBars(fig.Items, width)
	case chart.KindPie:
		body = renderShares(fig.Items, width, pieMark)
	case chart.KindDonut:
		body = renderShares(fig.Items, width, donutMark)
	case chart.KindGrouped:
		body = renderGrouped(fig, width)
	case chart.KindStacked:
		body = renderStacked(fig, width)
	case chart.KindDonuts:
		body = renderDonuts(fig.Groups, width)
	case chart.KindGauge:
		body = renderGauge(fig.Fraction, width)
	case chart.KindHierarchy:
		body = renderTree(fig.Root)
	}

	if fig.Title == "" {
		return body
	}
	return lipgloss.JoinVertical(lipgloss.Left, HeaderStyle.Render(fig.Title), "", body)
}

func colored(i int, s string) string {
	return seriesStyle(i).Render(s)
}

func seriesStyle(i int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(chart.Color(i)))
}

// drawable maps a value to a bar length: negative and non-finite values draw
// nothing.
func drawable(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// hbars draws rows as horizontal bars, one terminal line per row, each line
// width columns wide. Rows with several values are stacked left to right.
func hbars(rows []barchart.BarData, width int, maxValue float64) []string {
	lines := make([]string, len(rows))
	blank := strings.Repeat(" ", max(width, 0))
	for i := range lines {
		lines[i] = blank
	}
	if len(rows) == 0 || width <= 0 || !(maxValue > 0) || math.IsInf(maxValue, 0) {
		return lines
	}

	bc := barchart.New(width, len(rows),
		barchart.WithDataSet(rows),
		barchart.WithMaxValue(maxValue),
		barchart.WithHorizontalBars(),
		barchart.WithNoAxis(),
		barchart.WithBarGap(0),
	)
	bc.Draw()

	for i, line := range strings.Split(bc.View(), "\n") {
		if i < len(lines) {
			lines[i] = line
		}
	}
	return lines
}

func barRow(label string, value float64, style lipgloss.Style) barchart.BarData {
	return barchart.BarData{
		Label:  label,
		Values: []barchart.BarValue{{Name: label, Value: drawable(value), Style: style}},
	}
}

func renderBars(items []chart.Item, width int) string {
	maxValue, labelW, valueW := 0.0, 0, 0
	rows := make([]barchart.BarData, 0, len(items))
	for i, item := range items {
		maxValue = max(maxValue, drawable(item.Value))
		labelW = max(labelW, lipgloss.Width(item.Name))
		valueW = max(valueW, len(FormatNumber(item.Value)))
		rows = append(rows, barRow(item.Name, item.Value, seriesStyle(i)))
	}
	labelW = min(labelW, width/3)
	barW := max(width-labelW-valueW-2, minBar)

	bars := hbars(rows, barW, maxValue)
	lines := make([]string, 0, len(items))
	for i, item := range items {
		lines = append(lines, fmt.Sprintf("%s %s %s",
			LabelStyle.Render(pad(item.Name, labelW)),
			bars[i],
			ValueStyle.Render(FormatNumber(item.Value)),
		))
	}
	return strings.Join(lines, "\n")
}

// renderShares draws a single stacked bar with a legend of shares.
func renderShares(items []chart.Item, width int, mark string) string {
	values := make([]barchart.BarValue, len(items))
	total := 0.0
	for i, item := range items {
		v := drawable(item.Value)
		values[i] = barchart.BarValue{Name: item.Name, Value: v, Style: seriesStyle(i)}
		total += v
	}

	lines := hbars([]barchart.BarData{{Values: values}}, width, total)
	for i, item := range items {
		share := 0.0
		if total > 0 && !math.IsInf(total, 0) {
			share = values[i].Value / total * 100
		}
		lines = append(lines, fmt.Sprintf("%s %s %s %s",
			colored(i, mark),
			LabelStyle.Render(item.Name),
			ValueStyle.Render(FormatNumber(item.Value)),
			MutedStyle.Render(fmt.Sprintf("(%.1f%%)", share)),
		))
	}
	return strings.Join(lines, "\n")
}

func seriesIndex(series []string) map[string]int {
	index := make(map[string]int, len(series))
	for i, name := range series {
		index[name] = i
	}
	return index
}

func renderGrouped(fig chart.Figure, width int) string {
	series := fig.Series()
	index := seriesIndex(series)

	maxValue := drawable(fig.MaxValue())
	labelW, valueW := 0, 0
	for _, name := range series {
		labelW = max(labelW, lipgloss.Width(name))
	}
	for _, group := range fig.Groups {
		for _, item := range group.Items {
			valueW = max(valueW, len(FormatNumber(item.Value)))
		}
	}
	labelW = min(labelW, width/3)
	barW := max(width-labelW-valueW-4, minBar)

	var lines []string
	for _, group := range fig.Groups {
		lines = append(lines, ValueStyle.Render(group.Name))

		rows := make([]barchart.BarData, 0, len(group.Items))
		for _, item := range group.Items {
			rows = append(rows, barRow(item.Name, item.Value, seriesStyle(index[item.Name])))
		}
		bars := hbars(rows, barW, maxValue)
		for i, item := range group.Items {
			lines = append(lines, fmt.Sprintf("  %s %s %s",
				LabelStyle.Render(pad(item.Name, labelW)),
				bars[i],
				FormatNumber(item.Value),
			))
		}
	}
	return strings.Join(lines, "\n")
}

// renderStacked draws one full-width bar per group, split by share, followed
// by a legend of series.
func renderStacked(fig chart.Figure, width int) string {
	series := fig.Series()
	index := seriesIndex(series)

	labelW := 0
	for _, group := range fig.Groups {
		labelW = max(labelW, lipgloss.Width(group.Name))
	}
	labelW = min(labelW, width/3)
	barW := max(width-labelW-1, minBar)

	rows := make([]barchart.BarData, 0, len(fig.Groups))
	for _, group := range fig.Groups {
		values := make([]barchart.BarValue, 0, len(group.Items))
		for _, item := range group.Items {
			values = append(values, barchart.BarValue{
				Name:  item.Name,
				Value: drawable(item.Value),
				Style: seriesStyle(index[item.Name]),
			})
		}
		rows = append(rows, barchart.BarData{Label: group.Name, Values: values})
	}
	bars := hbars(rows, barW, 1)

	lines := make([]string, 0, len(fig.Groups)+1)
	for i, group := range fig.Groups {
		lines = append(lines, LabelStyle.Render(pad(group.Name, labelW))+" "+bars[i])
	}

	legend := make([]string, 0, len(series))
	for i, name := range series {
		legend = append(legend, colored(i, pieMark)+" "+LabelStyle.Render(name))
	}
	if len(legend) > 0 {
		lines = append(lines, "", lipgloss.NewStyle().Width(width).Render(strings.Join(legend, "  ")))
	}
	return strings.Join(lines, "\n")
}

func renderDonuts(groups []chart.Group, width int) string {
	blocks := make([]string, 0, len(groups))
	for _, group := range groups {
		blocks = append(blocks, lipgloss.JoinVertical(lipgloss.Left,
			ValueStyle.Render(group.Name),
			renderShares(group.Items, width, donutMark),
		))
	}
	return strings.Join(blocks, "\n\n")
}

func renderGauge(fraction float64, width int) string {
	bar := progress.New(
		progress.WithSolidFill(chart.Color(0)),
		progress.WithWidth(width),
	)
	return bar.ViewAs(min(drawable(fraction), 1))
}

func renderTree(root *chart.Node) string {
	var lines []string
	root.Walk(func(n *chart.Node) {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(chart.DepthColor(n.Depth))).Render("●")
		lines = append(lines, fmt.Sprintf("%s%s %s %s",
			strings.Repeat("  ", max(n.Depth, 0)), dot, n.ID, MutedStyle.Render(FormatNumber(n.Value))))
	})
	return strings.Join(lines, "\n")
}

// pad truncates or right-pads s to exactly width display columns.
func pad(s string, width int) string {
	w := lipgloss.Width(s)
	if w > width {
		runes := []rune(s)
		if width <= 1 {
			return string(runes[:max(width, 0)])
		}
		for lipgloss.Width(string(runes)) > width-1 {
			runes = runes[:len(runes)-1]
		}
		return string(runes) + "…"
	}
	return s + strings.Repeat(" ", width-w)
}
