package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/dotdrop/internal/archive"
	"github.com/san-kum/dotdrop/internal/overlay"
	"github.com/san-kum/dotdrop/internal/session"
	"github.com/san-kum/dotdrop/internal/viz"
)

type page int

const (
	pageDots page = iota
	pageArchive
)

// headerRows is the number of terminal rows above the field.
const headerRows = 1

// createButton is drawn at the left of the header while the create
// control is visible.
const createButton = "[ + ]"

type model struct {
	sess  *session.Session
	field *viz.Field
	theme viz.Theme
	start time.Time
	fps   int

	page   page
	month  int
	status string

	width  int
	height int
}

// NewApp returns the bubbletea model for the terminal front-end. The
// session's stage is resized to the terminal on the first size message.
func NewApp(sess *session.Session, theme string) tea.Model {
	cfg := sess.Config()
	m := model{
		sess:   sess,
		field:  viz.NewField(80, 21, cfg.TUI.CellWidth, cfg.TUI.CellHeight),
		theme:  viz.GetTheme(theme),
		start:  time.Now(),
		fps:    cfg.TUI.FPS,
		width:  80,
		height: 24,
	}
	sess.Resize(m.field.Viewport())
	return m
}

// Run starts the terminal program with mouse motion and focus reporting.
func Run(sess *session.Session, theme string) error {
	p := tea.NewProgram(NewApp(sess, theme),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	)
	_, err := p.Run()
	return err
}

type tickMsg time.Time

func (m model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd { return m.tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg), nil
	case tea.BlurMsg:
		m.sess.Engine.PointerLeave()
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.field.Resize(m.width, m.fieldRows())
		m.sess.Resize(m.field.Viewport())
		return m, nil
	case tickMsg:
		if err := m.sess.Pump(time.Time(msg).Sub(m.start)); err != nil {
			m.status = "config: " + err.Error()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m model) fieldRows() int {
	rows := m.height - headerRows - 2
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.sess.Overlay.Open() {
		return m.promptKey(msg), nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		if err := m.sess.Close(); err != nil {
			m.status = err.Error()
		}
		return m, tea.Quit
	case "n", "+":
		if m.sess.Stage.CreateControlVisible() {
			m.page = pageDots
			m.sess.Overlay.OpenCreate()
		}
	case "t":
		m.theme = viz.NextTheme(m.theme.Name)
	case "tab":
		if m.page == pageDots {
			m.sess.Engine.PointerLeave()
			m.page = pageArchive
		} else {
			m.page = pageDots
		}
	case "left", "h":
		if m.page == pageArchive {
			m.month = (m.month + len(archive.MonthChips) - 1) % len(archive.MonthChips)
		}
	case "right", "l":
		if m.page == pageArchive {
			m.month = (m.month + 1) % len(archive.MonthChips)
		}
	}
	return m, nil
}

func (m model) promptKey(msg tea.KeyMsg) model {
	ov := m.sess.Overlay
	switch msg.Type {
	case tea.KeyEsc:
		ov.Close()
	case tea.KeyEnter:
		if msg.Alt {
			ov.Newline()
			return m
		}
		if err := ov.Submit(); err != nil {
			m.status = err.Error()
		}
	case tea.KeyBackspace:
		ov.Backspace()
	case tea.KeySpace:
		ov.Type(" ")
	case tea.KeyRunes:
		ov.Type(string(msg.Runes))
	}
	return m
}

func (m model) handleMouse(msg tea.MouseMsg) model {
	if m.page != pageDots || m.sess.Overlay.Open() {
		return m
	}
	eng := m.sess.Engine
	row := msg.Y - headerRows
	inField := row >= 0 && row < m.field.Canvas.Height && msg.X >= 0 && msg.X < m.field.Canvas.Width
	p := m.field.ToViewport(msg.X, row)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m
		}
		if msg.Y < headerRows && msg.X < len(createButton) && m.sess.Stage.CreateControlVisible() {
			m.sess.Overlay.OpenCreate()
			return m
		}
		if inField {
			eng.PointerDown(p)
		}
	case tea.MouseActionMotion:
		if !inField {
			eng.PointerLeave()
			return m
		}
		eng.PointerMove(p)
	case tea.MouseActionRelease:
		if inField {
			eng.PointerUp(p)
		} else {
			eng.PointerLeave()
		}
	}
	return m
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")

	switch m.page {
	case pageDots:
		m.field.Draw(m.sess.Stage, m.sess.FloorLine())
		b.WriteString(m.field.Render(m.theme))
	case pageArchive:
		b.WriteString(m.archiveView(m.fieldRows()))
	}
	b.WriteString("\n")

	if m.sess.Overlay.Open() {
		b.WriteString(m.promptView())
	} else {
		b.WriteString(m.footer())
	}
	return b.String()
}

func (m model) header() string {
	var parts []string
	if m.sess.Stage.CreateControlVisible() {
		parts = append(parts, viz.StatusRunning.Render(createButton))
	} else {
		parts = append(parts, viz.Subtle.Render(createButton))
	}
	tabs := map[page]string{pageDots: "dots", pageArchive: "archive"}
	for _, p := range []page{pageDots, pageArchive} {
		if p == m.page {
			parts = append(parts, viz.TabActive.Render(tabs[p]))
		} else {
			parts = append(parts, viz.TabInactive.Render(tabs[p]))
		}
	}
	parts = append(parts,
		viz.MetricLabel.Render("dots ")+viz.MetricValue.Render(fmt.Sprint(m.sess.Engine.Len())),
		viz.MetricLabel.Render("drag ")+viz.MetricValue.Render(m.sess.Engine.DragPhase().String()),
	)
	return strings.Join(parts, "  ")
}

func (m model) footer() string {
	if m.status != "" {
		return viz.StatusPaused.Render(m.status)
	}
	hint := "n new  ·  hold a dot to drag  ·  drop it on the top band to delete  ·  click to describe  ·  tab archive  ·  t theme  ·  q quit"
	if m.page == pageArchive {
		hint = "←/→ month  ·  tab dots  ·  q quit"
	}
	return viz.KeyHint.Render(hint)
}

func (m model) promptView() string {
	ov := m.sess.Overlay
	title := "new word"
	if ov.Mode() == overlay.ModeDescribe {
		title = "describe " + ov.Word()
	}
	body := ov.Text() + "█"
	hint := "enter save  ·  esc cancel"
	if ov.Mode() == overlay.ModeDescribe {
		hint = "enter save  ·  alt+enter newline  ·  esc cancel"
	}
	return viz.GlassPanel.Render(lipgloss.JoinVertical(lipgloss.Left,
		viz.MetricLabel.Render(title),
		viz.ListWord.Render(body),
		viz.KeyHint.Render(hint),
	))
}

func (m model) archiveView(rows int) string {
	month := archive.MonthChips[m.month]

	chips := make([]string, len(archive.MonthChips))
	for i, c := range archive.MonthChips {
		if i == m.month {
			chips[i] = viz.ChipActive.Render(c)
		} else {
			chips[i] = viz.Chip.Render(c)
		}
	}
	lines := []string{lipgloss.JoinHorizontal(lipgloss.Top, chips...)}

	if entries := m.sess.Archive.Entries(); len(entries) > 0 {
		perMonth := make([]float64, 12)
		for _, e := range entries {
			perMonth[e.Date.Month()-1]++
		}
		lines = append(lines, viz.MetricLabel.Render("by month ")+viz.SparklineChart(perMonth, 12))
	}
	lines = append(lines, viz.Separator(min(m.width, 60)))

	groups := m.sess.Archive.List(month)
	if len(groups) == 0 {
		lines = append(lines, "", viz.Subtle.Render("nothing dropped yet"))
	}
	for _, g := range groups {
		lines = append(lines, viz.DateSubtitle.Render(g.Label))
		for _, e := range g.Entries {
			lines = append(lines, "  "+viz.ListWord.Render(e.Word)+"  "+
				viz.ListMeta.Render(fmt.Sprintf("%s | %d", e.Date.Format(archive.DateLabel), e.Count)))
			if e.Line != "" {
				for _, l := range strings.Split(e.Line, "\n") {
					lines = append(lines, "    "+viz.ListLine.Render(l))
				}
			}
		}
	}

	out := strings.Split(strings.Join(lines, "\n"), "\n")
	for len(out) < rows {
		out = append(out, "")
	}
	return strings.Join(out[:rows], "\n")
}
