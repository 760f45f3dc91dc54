// Package tui is the interactive storyboard reader: the narrative scrolls on
// the left and the single chart surface is drawn on the right.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"

	"github.com/rshade/scrollviz/internal/chart"
	"github.com/rshade/scrollviz/internal/coordinator"
	"github.com/rshade/scrollviz/internal/loader"
	"github.com/rshade/scrollviz/internal/scroll"
	"github.com/rshade/scrollviz/internal/story"
)

// ViewState is the reader state.
type ViewState int

const (
	// ViewStateReading is the normal scrolling state.
	ViewStateReading ViewState = iota
	// ViewStateQuitting means the program is exiting.
	ViewStateQuitting
)

// Layout constants.
const (
	defaultWidth      = 100
	defaultHeight     = 30
	defaultChartWidth = 48
	minTextWidth      = 20
	headerHeight      = 2
	footerHeight      = 2
	stepGap           = 1
	paneGap           = 3
)

// Model is the Bubble Tea model for the reader.
type Model struct {
	ctx    context.Context
	story  *story.Storyboard
	logger zerolog.Logger

	// Chart pipeline
	surface *chart.Surface
	sched   *cmdScheduler
	coord   *coordinator.Coordinator
	loaders map[int]*loader.Loader
	fetcher loader.Fetcher

	// Narrative
	theme    string
	rendered []string
	muted    []string
	layout   scroll.Layout
	tracker  *scroll.Tracker
	viewport viewport.Model
	progress progress.Model

	// Display
	chartWidth int
	width      int
	height     int
	ready      bool
	state      ViewState
}

// Option configures a Model.
type Option func(*Model)

// WithTheme sets the glamour style name. Resolve "auto" with ResolveTheme
// before the program starts.
func WithTheme(theme string) Option {
	return func(m *Model) {
		m.theme = theme
	}
}

// WithChartWidth sets the chart pane width in columns.
func WithChartWidth(width int) Option {
	return func(m *Model) {
		if width > 0 {
			m.chartWidth = width
		}
	}
}

// WithLogger sets the logger. The reader owns the terminal, so the logger
// must not write to stderr.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Model) {
		m.logger = logger
	}
}

// WithFetcher overrides the data file fetcher.
func WithFetcher(f loader.Fetcher) Option {
	return func(m *Model) {
		m.fetcher = f
	}
}

// NewModel creates a reader for sb. Loads run as tea.Cmds and complete in
// Update.
func NewModel(ctx context.Context, sb *story.Storyboard, opts ...Option) *Model {
	m := &Model{
		ctx:        ctx,
		story:      sb,
		logger:     zerolog.Nop(),
		surface:    &chart.Surface{},
		sched:      &cmdScheduler{},
		theme:      "notty",
		tracker:    scroll.NewTracker(),
		chartWidth: defaultChartWidth,
		state:      ViewStateReading,
	}
	for _, opt := range opts {
		opt(m)
	}

	fetcher := m.fetcher
	if fetcher == nil {
		fetcher = sb.Fetcher(loader.HTTPFetcher{})
	}
	slots := sb.Bind(m.surface, m.logger,
		loader.WithScheduler(m.sched),
		loader.WithFetcher(fetcher),
		loader.WithContext(ctx),
	)
	m.loaders = story.Loaders(slots)
	m.coord = coordinator.New(slots, m.logger)
	m.progress = progress.New(progress.WithSolidFill(chart.Color(1)), progress.WithoutPercentage())

	m.resize(defaultWidth, defaultHeight)
	return m
}

// Init emits the first visible step.
func (m *Model) Init() tea.Cmd {
	m.observe()
	return m.sched.drain()
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.observe()
		return m, m.sched.drain()

	case fetchDoneMsg:
		msg.complete(msg.table, msg.err)
		m.refreshContent()
		return m, m.sched.drain()

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.observe()
		return m, tea.Batch(cmd, m.sched.drain())
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "ctrl+c", "q":
		m.state = ViewStateQuitting
		return m, tea.Quit
	case "n", "tab":
		m.jump(1)
	case "p", "shift+tab":
		m.jump(-1)
	case "g", "home":
		m.viewport.GotoTop()
	case "G", "end":
		m.viewport.GotoBottom()
	default:
		m.viewport, cmd = m.viewport.Update(msg)
	}

	m.observe()
	return m, tea.Batch(cmd, m.sched.drain())
}

// jump scrolls so the step delta positions away from the current one starts
// at the top of the viewport.
func (m *Model) jump(delta int) {
	if len(m.layout) == 0 {
		return
	}
	target := max(m.tracker.Current(), 0) + delta
	target = min(max(target, 0), len(m.layout)-1)
	m.viewport.SetYOffset(m.layout[target].Start)
}

// observe feeds the scroll position to the tracker and activates the step it
// reports.
func (m *Model) observe() {
	index, changed := m.tracker.Observe(m.layout, m.viewport.YOffset, m.viewport.Height)
	if !changed {
		return
	}
	m.logger.Debug().Int("step", index).Msg("step in view")
	m.coord.SetActiveIndex(index)
	m.refreshContent()
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	textWidth := max(width-m.chartWidth-paneGap, minTextWidth)
	vpHeight := max(height-headerHeight-footerHeight, 1)

	if !m.ready {
		m.viewport = viewport.New(textWidth, vpHeight)
		m.viewport.MouseWheelEnabled = true
		m.ready = true
	} else {
		m.viewport.Width = textWidth
		m.viewport.Height = vpHeight
	}
	m.progress.Width = max(width/3, 10)

	m.renderSteps(textWidth)
	m.refreshContent()
}

// renderSteps renders every step's markdown once per width. Heights do not
// depend on highlighting, so the layout is computed here.
func (m *Model) renderSteps(width int) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.theme),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		m.logger.Warn().Err(err).Str("theme", m.theme).Msg("markdown renderer unavailable, using plain text")
	}

	m.rendered = make([]string, len(m.story.Steps))
	m.muted = make([]string, len(m.story.Steps))
	heights := make([]int, len(m.story.Steps))
	for i, step := range m.story.Steps {
		md := stepMarkdown(step)
		out := ""
		if renderer != nil {
			out, err = renderer.Render(md)
			if err != nil {
				m.logger.Warn().Err(err).Int("step", i).Msg("failed to render step")
				out = ""
			}
		}
		if out == "" {
			out = lipgloss.NewStyle().Width(width).Render(md)
		}
		out = trimBlankLines(out)

		m.rendered[i] = out
		m.muted[i] = MutedStyle.Render(ansi.Strip(out))
		heights[i] = lipgloss.Height(out)
	}
	m.layout = scroll.Stack(heights, stepGap)
}

// refreshContent rebuilds the viewport content, emphasizing highlighted steps.
func (m *Model) refreshContent() {
	highlighted := make(map[int]bool)
	for _, i := range m.coord.Highlighted() {
		highlighted[i] = true
	}

	blocks := make([]string, len(m.rendered))
	for i := range m.rendered {
		if highlighted[i] {
			blocks[i] = m.rendered[i]
		} else {
			blocks[i] = m.muted[i]
		}
	}

	// Trailing blank lines let the last step scroll to the top.
	content := strings.Join(blocks, strings.Repeat("\n", stepGap+1)) +
		strings.Repeat("\n", m.viewport.Height)
	m.viewport.SetContent(content)
}

// View renders the reader.
func (m *Model) View() string {
	if m.state == ViewStateQuitting {
		return ""
	}

	title := m.story.Title
	if title == "" {
		title = "scrollviz"
	}
	header := lipgloss.JoinVertical(lipgloss.Left,
		HeaderStyle.Render(title),
		RuleStyle.Render(strings.Repeat("─", max(m.width, 1))),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.viewport.View(),
		strings.Repeat(" ", paneGap),
		m.chartPane(),
	)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.statusLine(), RenderHelp())
}

func (m *Model) chartPane() string {
	var b strings.Builder
	if l, ok := m.loaders[m.tracker.Current()]; ok {
		switch {
		case l.IsBusy():
			b.WriteString(MutedStyle.Render("Loading "+l.Path()+"…") + "\n\n")
		case l.IsFailed():
			b.WriteString(ErrorStyle.Render("Could not load "+l.Path()) + "\n\n")
		}
	}

	if fig, ok := m.surface.Figure(); ok {
		b.WriteString(RenderFigure(fig, m.chartWidth))
	} else {
		b.WriteString(MutedStyle.Render("No chart yet"))
	}

	return lipgloss.NewStyle().
		Width(m.chartWidth).
		MaxHeight(m.viewport.Height).
		Render(b.String())
}

func (m *Model) statusLine() string {
	p := m.coord.Progress()
	fraction := 1.0
	if p.Total > 0 {
		fraction = float64(p.Loaded+p.Failed) / float64(p.Total)
	}

	status := fmt.Sprintf(" %d/%d charts loaded", p.Loaded, p.Total)
	if p.Failed > 0 {
		status += ErrorStyle.Render(fmt.Sprintf(", %d failed", p.Failed))
	}
	if p.Busy > 0 {
		status += MutedStyle.Render(fmt.Sprintf(", %d loading", p.Busy))
	}
	return m.progress.ViewAs(fraction) + LabelStyle.Render(status)
}

// State returns the view state.
func (m *Model) State() ViewState { return m.state }

// Coordinator exposes the coordinator driving the chart surface.
func (m *Model) Coordinator() *coordinator.Coordinator { return m.coord }

// Surface exposes the chart surface.
func (m *Model) Surface() *chart.Surface { return m.surface }

// CurrentStep returns the step the reader is looking at, or -1.
func (m *Model) CurrentStep() int { return m.tracker.Current() }

func stepMarkdown(step story.Step) string {
	if title := strings.TrimSpace(step.Title); title != "" {
		return "## " + title + "\n\n" + step.Text
	}
	return step.Text
}

// trimBlankLines drops leading and trailing whitespace-only lines.
func trimBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(ansi.Strip(lines[start])) == "" {
		start++
	}
	for end > start && strings.TrimSpace(ansi.Strip(lines[end-1])) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

// ResolveTheme turns "auto" (or an empty theme) into a concrete glamour style.
// It must run before the program takes over the terminal.
func ResolveTheme(theme string, isTerminal bool) string {
	if theme != "" && theme != "auto" {
		return theme
	}
	if !isTerminal {
		return "notty"
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
