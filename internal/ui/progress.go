package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"kestrel/internal/buildpipeline"
)

type progressModel struct {
	title      string
	events     <-chan buildpipeline.Event
	spinner    spinner.Model
	prog       progress.Model
	items      []fileItem
	index      map[string]int
	stageLabel string
	width      int
	done       bool
}

type fileItem struct {
	path    string
	status  string
	stage   buildpipeline.Stage
	elapsed time.Duration
}

type eventMsg buildpipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders pipeline progress.
func NewProgressModel(title string, files []string, events <-chan buildpipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76 // Default width

	items := make([]fileItem, 0, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items = append(items, fileItem{path: file, status: "queued"})
		index[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		ev := buildpipeline.Event(msg)
		cmd := m.applyEvent(ev)
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.header()))
	b.WriteString("\n\n")

	// 2 отступ + 12 статус + 1 пробел + место под время
	nameWidth := max(m.width-statusWidth-17, 20)
	for _, item := range m.items {
		b.WriteString("  ")
		b.WriteString(styleStatus(item.status).Render(fmt.Sprintf("%*s", statusWidth, item.status)))
		b.WriteByte(' ')
		b.WriteString(truncate(item.path, nameWidth))
		if finished(item.status) && item.elapsed > 0 {
			fmt.Fprintf(&b, "  %.1f ms", float64(item.elapsed)/float64(time.Millisecond))
		}
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.prog.ViewAs(1))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteByte('\n')
	if summary := m.summary(); summary != "" {
		b.WriteString(summaryStyle.Render(summary))
		b.WriteByte('\n')
	}
	return b.String()
}

const statusWidth = 12

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	summaryStyle = lipgloss.NewStyle().Faint(true)
)

func (m *progressModel) header() string {
	header := m.title
	if m.stageLabel != "" {
		header += " (" + m.stageLabel + ")"
	}
	if m.done {
		return "done: " + header
	}
	return m.spinner.View() + " " + header
}

// summary counts finished files by outcome, e.g. "3 done, 1 cached".
func (m *progressModel) summary() string {
	counts := map[string]int{}
	for _, item := range m.items {
		if finished(item.status) {
			counts[item.status]++
		}
	}
	var parts []string
	for _, status := range []string{"done", "cached", "error"} {
		if n := counts[status]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, status))
		}
	}
	return strings.Join(parts, ", ")
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev buildpipeline.Event) tea.Cmd {
	label := statusLabel(ev.Stage, ev.Status)
	if ev.File == "" {
		if label != "" {
			m.stageLabel = label
		}
		return nil
	}
	idx, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	item := &m.items[idx]
	if finished(item.status) {
		// поздние события после ошибки или записи не откатывают статус
		return nil
	}
	if label != "" {
		item.status = label
		item.stage = ev.Stage
	}
	item.elapsed += ev.Elapsed
	return m.prog.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range m.items {
		if finished(item.status) {
			total += 1.0
		} else {
			total += progressFromStage(item.stage)
		}
	}
	return total / float64(len(m.items))
}

func finished(status string) bool {
	return status == "done" || status == "cached" || status == "error"
}

func progressFromStage(stage buildpipeline.Stage) float64 {
	switch stage {
	case buildpipeline.StageLoad:
		return 0.1
	case buildpipeline.StageAnalyze:
		return 0.3
	case buildpipeline.StageGenerate:
		return 0.6
	case buildpipeline.StageWrite:
		return 0.9
	default:
		return 0.0
	}
}

// statusLabel maps an event to the file's status column. Only the final
// write stage (or an error in any stage) finishes a file.
func statusLabel(stage buildpipeline.Stage, status buildpipeline.Status) string {
	switch status {
	case buildpipeline.StatusQueued:
		return "queued"
	case buildpipeline.StatusError:
		return "error"
	case buildpipeline.StatusCached:
		return "cached"
	case buildpipeline.StatusDone:
		if stage == buildpipeline.StageWrite || stage == "" {
			return "done"
		}
		return ""
	case buildpipeline.StatusWorking:
		return stageLabel(stage)
	default:
		return ""
	}
}

func stageLabel(stage buildpipeline.Stage) string {
	switch stage {
	case buildpipeline.StageLoad:
		return "loading"
	case buildpipeline.StageAnalyze:
		return "analyzing"
	case buildpipeline.StageGenerate:
		return "generating"
	case buildpipeline.StageWrite:
		return "writing"
	default:
		return ""
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "cached":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "loading", "analyzing", "generating", "writing":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
