package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tui "github.com/charmbracelet/bubbletea"
	styles "github.com/charmbracelet/lipgloss"
	plot "github.com/chriskim06/drawille-go"

	"github.com/hyperscalers/marketcap-race/race"
)

var (
	selectedColor = styles.AdaptiveColor{Light: "0", Dark: "9"}
	borderColor   = styles.AdaptiveColor{Light: "#555", Dark: "#555"}
	selectedFg    = styles.NewStyle().Foreground(selectedColor)
	borderFg      = styles.NewStyle().Foreground(borderColor)
	plotStyle     = styles.NewStyle().
			BorderStyle(styles.NormalBorder()).
			Foreground(borderColor).
			BorderForeground(borderColor)

	barPalette = []styles.Color{"9", "10", "11", "12", "13", "14", "208", "135"}
)

type frameMsg struct {
	frame race.Frame
	links *race.Links
}

type statusMsg string

type clockMsg time.Time

type playerDoneMsg struct{}

// uiRenderer bridges the playback loop to the TUI event loop. RenderFrame
// posts the frame and then holds the loop for the transition duration; the
// next frame is emitted only after that, so the screen never skips ahead of
// the animation.
type uiRenderer struct {
	program *tui.Program
	metrics *frameMetrics
}

func (r *uiRenderer) RenderFrame(f race.Frame, links *race.Links, transition time.Duration) {
	r.program.Send(frameMsg{frame: f, links: links})
	time.Sleep(transition)
	r.metrics.observeFrame(time.Now())
}

func (r *uiRenderer) Status(text string) {
	r.program.Send(statusMsg(text))
}

func (r *uiRenderer) FrameTimestamp(ts time.Time) {
	r.program.Send(clockMsg(ts))
}

type model struct {
	player  *race.Player
	metrics *frameMetrics

	width, height  int
	leftPaneWidth  int
	rightPaneWidth int

	help help.Model
	plot *plot.Canvas

	frame    race.Frame
	links    *race.Links
	lastTime time.Time
	clock    time.Time
	status   string

	selected      int
	history       map[string][]float64
	categoryOf    map[string]string
	categoryColor map[string]styles.Color

	catChoices    []string // "" means all
	catIdx        int
	windowChoices []int
	windowIdx     int
}

func newModel(player *race.Player, metrics *frameMetrics, categoryOf map[string]string) *model {
	const (
		defaultWidth  = 100
		defaultHeight = 30
	)

	p := plot.NewCanvas(defaultWidth/2, defaultHeight-4)
	p.NumDataPoints = config.PlotSpan
	p.ShowAxis = false
	p.LineColors = make([]plot.Color, 2)

	colors := make(map[string]styles.Color)
	for i, c := range player.Categories() {
		colors[c] = barPalette[i%len(barPalette)]
	}

	catChoices := append([]string{""}, player.Categories()...)
	windowChoices := []int{0, 3, 5, 10, 20}
	windowIdx := 0
	for i, y := range windowChoices {
		if y == config.WindowYears {
			windowIdx = i
		}
	}

	m := &model{
		player:        player,
		metrics:       metrics,
		help:          help.New(),
		plot:          &p,
		history:       make(map[string][]float64),
		categoryOf:    categoryOf,
		categoryColor: colors,
		catChoices:    catChoices,
		windowChoices: windowChoices,
		windowIdx:     windowIdx,
		status:        "ready",
	}
	m.leftPaneWidth, m.rightPaneWidth = computePaneWidths(defaultWidth, config.ViewSplit)
	return m
}

func (m *model) Init() tui.Cmd {
	if config.AutoPlay {
		m.player.Play()
	}
	return m.runPlayer()
}

func (m *model) runPlayer() tui.Cmd {
	return func() tui.Msg {
		m.player.Run()
		return playerDoneMsg{}
	}
}

func (m *model) Update(msg tui.Msg) (tui.Model, tui.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		// A rewind (restart or resynthesis) invalidates the plotted history.
		if !m.lastTime.IsZero() && msg.frame.Time.Before(m.lastTime) {
			m.history = make(map[string][]float64)
		}
		m.frame = msg.frame
		m.links = msg.links
		m.lastTime = msg.frame.Time
		for _, e := range msg.frame.Entries {
			series := append(m.history[e.Entity], e.Value)
			if len(series) > config.PlotSpan {
				series = series[len(series)-config.PlotSpan:]
			}
			m.history[e.Entity] = series
		}
		if n := len(m.frame.Visible()); m.selected >= n && n > 0 {
			m.selected = n - 1
		}
		return m, nil
	case clockMsg:
		m.clock = time.Time(msg)
		return m, nil
	case statusMsg:
		m.status = string(msg)
		return m, nil
	case playerDoneMsg:
		return m, tui.Quit
	case tui.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.leftPaneWidth, m.rightPaneWidth = computePaneWidths(m.width, config.ViewSplit)
		bottomLines := 2 // status + help
		if config.StatsEnabled {
			bottomLines += 5
		}
		available := max(1, m.height-bottomLines)
		plotHeight := max(1, available-3)
		plotWidth := max(1, m.rightPaneWidth-2)
		m.resizePlot(plotWidth, plotHeight)
		return m, nil
	case tui.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tui.KeyMsg) (tui.Model, tui.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.player.Stop()
		return m, tui.Quit
	case key.Matches(msg, keys.PlayPause):
		if m.player.Playing() {
			m.player.Pause()
			m.status = "paused"
		} else {
			m.player.Play()
			m.status = "playing"
		}
	case key.Matches(msg, keys.Restart):
		m.player.Restart()
	case key.Matches(msg, keys.Faster):
		m.player.SetSpeed(m.player.FrameDuration() / 2)
	case key.Matches(msg, keys.Slower):
		m.player.SetSpeed(min(m.player.FrameDuration()*2, 5*time.Second))
	case key.Matches(msg, keys.MoreBars):
		m.player.SetTopN(m.player.TopN() + 1)
	case key.Matches(msg, keys.FewerBars):
		m.player.SetTopN(m.player.TopN() - 1)
	case key.Matches(msg, keys.Window):
		m.windowIdx = (m.windowIdx + 1) % len(m.windowChoices)
		m.player.SetWindowYears(m.windowChoices[m.windowIdx])
	case key.Matches(msg, keys.Category):
		m.catIdx = (m.catIdx + 1) % len(m.catChoices)
		if m.catChoices[m.catIdx] == "" {
			m.player.SetCategories(nil)
		} else {
			m.player.SetCategories([]string{m.catChoices[m.catIdx]})
		}
	case key.Matches(msg, keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, keys.Down):
		if m.selected < len(m.frame.Visible())-1 {
			m.selected++
		}
	}
	return m, nil
}

func (m *model) resizePlot(w, h int) {
	p := plot.NewCanvas(w, h)
	p.NumDataPoints = m.plot.NumDataPoints
	p.ShowAxis = m.plot.ShowAxis
	p.LineColors = m.plot.LineColors
	m.plot = &p
}

func (m *model) View() string {
	leftW := max(1, m.leftPaneWidth)
	if m.frame.Entries == nil {
		return borderFg.Render("waiting for data...") + "\n" + m.help.View(keys)
	}

	left := m.renderBars(leftW)
	right := m.renderPlot()
	view := styles.JoinHorizontal(styles.Top, left, right)

	parts := []string{view, m.statusLine()}
	if config.StatsEnabled {
		parts = append(parts, m.statsBlock())
	}
	parts = append(parts, m.help.View(keys))
	return styles.JoinVertical(styles.Left, parts...)
}

func (m *model) renderBars(width int) string {
	visible := m.frame.Visible()
	var maxVal float64
	if len(visible) > 0 {
		maxVal = visible[0].Value
	}

	nameW := 0
	for _, e := range visible {
		nameW = max(nameW, len(e.Entity))
	}
	nameW = min(max(nameW, 4), 18)

	// rank(3) + marker(1) + name + value(10) + spaces(4)
	barArea := max(1, width-nameW-18)

	var b strings.Builder
	for i, e := range visible {
		barLen := 0
		if maxVal > 0 {
			barLen = int(e.Value / maxVal * float64(barArea))
		}
		color := m.categoryColor[m.categoryOf[e.Entity]]
		bar := styles.NewStyle().Foreground(color).Render(strings.Repeat("█", barLen))

		line := fmt.Sprintf("%2d %s %-*s %s %9.1f",
			e.Rank+1, m.movementMarker(e), nameW, clip(e.Entity, nameW), bar, e.Value)
		if i == m.selected {
			line = selectedFg.Render(line)
		}
		b.WriteString(line)
		b.WriteRune('\n')
	}
	return styles.NewStyle().Width(width).Render(b.String())
}

// movementMarker reports where the entity came from: rising, falling, newly
// visible, or steady.
func (m *model) movementMarker(e race.RankedEntry) string {
	if m.links == nil {
		return " "
	}
	pred, ok := m.links.Predecessor(e)
	if !ok {
		return "+"
	}
	switch {
	case pred.Rank >= m.frame.TopK && e.Rank < m.frame.TopK:
		return "+"
	case pred.Rank > e.Rank:
		return "▲"
	case pred.Rank < e.Rank:
		return "▼"
	}
	return " "
}

func (m *model) renderPlot() string {
	visible := m.frame.Visible()
	if len(visible) == 0 {
		return plotStyle.Render("")
	}
	sel := min(m.selected, len(visible)-1)
	entity := visible[sel].Entity

	series := m.history[entity]
	data := make([]float64, m.plot.NumDataPoints)
	offset := len(data) - len(series)
	for i, v := range series {
		if offset+i >= 0 {
			data[offset+i] = v
		}
	}

	var highlight plot.Color
	if styles.DefaultRenderer().HasDarkBackground() {
		highlight = plot.Red
	} else {
		highlight = plot.Black
	}
	m.plot.LineColors[0] = highlight
	m.plot.Fill([][]float64{data})

	label := entity
	if !m.clock.IsZero() {
		gap := m.rightPaneWidth - 2 - len(entity) - len("Jan 2006")
		if gap > 0 {
			label = entity + strings.Repeat(" ", gap) + borderFg.Render(m.clock.Format("Jan 2006"))
		}
	}
	return plotStyle.Render(styles.JoinVertical(styles.Top, m.plot.String(), label))
}

func (m *model) statusLine() string {
	cursor, total := m.player.Position()
	window := "all"
	if y := m.player.WindowYears(); y > 0 {
		window = fmt.Sprintf("%dy", y)
	}
	category := "all"
	if m.catChoices[m.catIdx] != "" {
		category = m.catChoices[m.catIdx]
	}
	state := "paused"
	if m.player.Playing() {
		state = "playing"
	}
	return borderFg.Render(fmt.Sprintf("%s · frame %d/%d · %s/frame · top %d · window %s · category %s · %s",
		state, min(cursor+1, total), total, m.player.FrameDuration(), m.player.TopN(), window, category, m.status))
}

func (m *model) statsBlock() string {
	snap := m.metrics.snapshot()
	lines := []string{
		"PACING",
		fmt.Sprintf("frames shown: %d", snap.frames),
		fmt.Sprintf("frame interval avg: %s", formatMetricDuration(snap.interval.avg)),
		fmt.Sprintf("frame interval max: %s", formatMetricDuration(snap.interval.max)),
		fmt.Sprintf("effective fps: %.1f", snap.fps),
	}
	statsStyle := styles.NewStyle().Foreground(styles.AdaptiveColor{Light: "1", Dark: "9"})
	return statsStyle.Render(strings.Join(lines, "\n"))
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func computePaneWidths(totalWidth int, splitPercent int) (left, right int) {
	if totalWidth <= 1 {
		return 1, 1
	}
	left = totalWidth * splitPercent / 100
	left = max(left, 1)
	left = min(left, totalWidth-1)

	const minPane = 24
	if totalWidth >= minPane*2 {
		left = max(left, minPane)
		left = min(left, totalWidth-minPane)
	}
	return left, totalWidth - left
}

type keyMap struct {
	PlayPause key.Binding
	Restart   key.Binding
	Faster    key.Binding
	Slower    key.Binding
	MoreBars  key.Binding
	FewerBars key.Binding
	Window    key.Binding
	Category  key.Binding
	Up        key.Binding
	Down      key.Binding
	Quit      key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.Restart, k.Faster, k.Slower, k.Category, k.Window, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.Restart, k.Quit},
		{k.Faster, k.Slower, k.MoreBars, k.FewerBars},
		{k.Window, k.Category, k.Up, k.Down},
	}
}

var keys = keyMap{
	PlayPause: key.NewBinding(
		key.WithKeys(" ", "p"),
		key.WithHelp("space", "play/pause"),
	),
	Restart: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "restart"),
	),
	Faster: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "faster"),
	),
	Slower: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "slower"),
	),
	MoreBars: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "more bars"),
	),
	FewerBars: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "fewer bars"),
	),
	Window: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "window"),
	),
	Category: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "category"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "select up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "select down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func formatMetricDuration(d time.Duration) string {
	if d <= 0 {
		return "0.000ms"
	}
	return fmt.Sprintf("%.3fms", float64(d)/float64(time.Millisecond))
}
