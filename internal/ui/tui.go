package ui

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// TUIRenderer shows a live progress display using bubbletea.
type TUIRenderer struct {
	mu      sync.Mutex
	cfg     Config
	program *tea.Program
	model   *embedModel
	started bool
	done    chan struct{}
}

// NewTUIRenderer creates a TUI renderer. Fails on non-TTY output.
func NewTUIRenderer(cfg Config) (*TUIRenderer, error) {
	if !IsTTY(cfg.Output) {
		return nil, fmt.Errorf("output is not a TTY")
	}

	model := newEmbedModel()
	if cfg.NoColor || DetectNoColor() {
		model.styles = NoColorStyles()
	}

	return &TUIRenderer{
		cfg:   cfg,
		model: model,
		done:  make(chan struct{}),
	}, nil
}

// Start implements Renderer.
func (r *TUIRenderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}

	var opts []tea.ProgramOption
	if f, ok := r.cfg.Output.(*os.File); ok {
		opts = append(opts, tea.WithOutput(f))
	}

	r.program = tea.NewProgram(r.model, opts...)
	r.started = true

	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()
	return nil
}

// UpdateProgress implements Renderer.
func (r *TUIRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program != nil {
		r.program.Send(progressMsg(event))
	}
}

// Complete implements Renderer.
func (r *TUIRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program != nil {
		r.program.Send(completeMsg(stats))
	}
}

// Stop implements Renderer.
func (r *TUIRenderer) Stop() error {
	r.mu.Lock()
	program := r.program
	r.mu.Unlock()

	if program != nil {
		program.Quit()
		<-r.done
	}
	return nil
}

type progressMsg ProgressEvent

type completeMsg CompletionStats

// embedModel is the bubbletea model for the embed run: one progress bar
// per table, a spinner while work is in flight, a summary at the end.
type embedModel struct {
	styles  Styles
	spinner spinner.Model

	order  []string
	bars   map[string]progress.Model
	state  map[string]ProgressEvent
	stats  *CompletionStats
	closed bool
}

func newEmbedModel() *embedModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &embedModel{
		styles:  DefaultStyles(),
		spinner: sp,
		bars:    map[string]progress.Model{},
		state:   map[string]ProgressEvent{},
	}
}

// Init implements tea.Model.
func (m *embedModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m *embedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		ev := ProgressEvent(msg)
		if _, ok := m.bars[ev.Table]; !ok {
			m.bars[ev.Table] = progress.New(progress.WithDefaultGradient())
			m.order = append(m.order, ev.Table)
		}
		m.state[ev.Table] = ev
		return m, nil

	case completeMsg:
		stats := CompletionStats(msg)
		m.stats = &stats
		m.closed = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.closed = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *embedModel) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Header.Render("fascase embed") + "\n\n")

	tables := make([]string, len(m.order))
	copy(tables, m.order)
	sort.Strings(tables)

	for _, table := range tables {
		ev := m.state[table]
		bar := m.bars[table]

		pct := 0.0
		if ev.Total > 0 {
			pct = float64(ev.Done) / float64(ev.Total)
		}

		label := m.styles.Active.Render(table)
		if ev.Done >= ev.Total && ev.Total > 0 {
			label = m.styles.Done.Render(table)
		}
		sb.WriteString(fmt.Sprintf("%s %s %s\n",
			label,
			bar.ViewAs(pct),
			m.styles.Label.Render(fmt.Sprintf("%d/%d", ev.Done, ev.Total))))
	}

	if m.stats != nil {
		sb.WriteString("\n")
		for _, t := range m.stats.Tables {
			sb.WriteString(m.styles.Done.Render(
				fmt.Sprintf("%s: %d rows (%d embedded, %d cached)", t.Table, t.Rows, t.Embedded, t.Cached)) + "\n")
		}
		sb.WriteString(m.styles.Label.Render(
			fmt.Sprintf("model %s, total %s", m.stats.Model, m.stats.Duration.Round(timeRound))) + "\n")
	} else if !m.closed {
		sb.WriteString("\n" + m.spinner.View() + m.styles.Label.Render(" embedding..."))
	}

	return m.styles.Panel.Render(sb.String())
}
