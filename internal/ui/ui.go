package ui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/procdash/internal/backend"
	"github.com/Dicklesworthstone/procdash/internal/config"
	"github.com/Dicklesworthstone/procdash/internal/dashboard"
	"github.com/Dicklesworthstone/procdash/internal/export"
	"github.com/Dicklesworthstone/procdash/internal/model"
	"github.com/Dicklesworthstone/procdash/internal/theme"
)

// SampleSource is a live metric feed: the backend push channel or the
// local sampler.
type SampleSource interface {
	Stream(ctx context.Context) <-chan model.MetricSample
}

// Deps are the collaborators the dashboard talks to.
type Deps struct {
	Backend backend.Backend
	Samples SampleSource // optional
	Themes  <-chan theme.Mode
	Theme   theme.Mode
	Logger  *slog.Logger
}

type uiMode int

const (
	normalMode uiMode = iota
	searchMode
	confirmKillMode
	loadingMode
	resultMode
	helpMode
)

// Model renders the dashboard and turns input into controller events.
type Model struct {
	cfg       config.Config
	ctrl      *dashboard.Controller
	backend   backend.Backend
	samples   <-chan model.MetricSample
	themes    <-chan theme.Mode
	ctx       context.Context
	ctxCancel context.CancelFunc
	log       *slog.Logger
	now       func() time.Time

	styles   styles
	table    table.Model
	search   textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	help     help.Model

	mode        uiMode
	searchGen   int
	killPID     int
	resultTitle string
	width       int
	height      int
}

func New(cfg config.Config, deps Deps) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	ctrl := dashboard.New(dashboard.Options{
		Theme:      deps.Theme,
		Thresholds: cfg.Thresholds,
		Muted:      cfg.MuteAlerts,
		Logger:     log,
	})

	var samples <-chan model.MetricSample
	if deps.Samples != nil {
		samples = deps.Samples.Stream(ctx)
	}

	ti := textinput.New()
	ti.Placeholder = "search name, pid, user..."
	ti.Prompt = "/ "
	ti.CharLimit = 64

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	st := stylesFor(ctrl.Theme().IsDark())
	t := table.New(
		table.WithColumns(Columns(ctrl.Store().Sort(), 120)),
		table.WithFocused(true),
		table.WithHeight(20),
	)
	t.SetStyles(st.table)

	m := &Model{
		cfg:       cfg,
		ctrl:      ctrl,
		backend:   deps.Backend,
		samples:   samples,
		themes:    deps.Themes,
		ctx:       ctx,
		ctxCancel: cancel,
		log:       log,
		now:       time.Now,
		styles:    st,
		table:     t,
		search:    ti,
		spinner:   spin,
		viewport:  viewport.New(80, 20),
		help:      help.New(),
		width:     120,
		height:    40,
	}
	return m
}

// Controller exposes the dashboard state, mainly for tests.
func (m *Model) Controller() *dashboard.Controller { return m.ctrl }

// Messages
type (
	tickMsg      time.Time
	searchMsg    struct{ gen int }
	processesMsg struct {
		seq     uint64
		records []model.ProcessRecord
		err     error
	}
	sampleMsg struct {
		sample model.MetricSample
		ok     bool
	}
	themeMsg struct {
		mode theme.Mode
		ok   bool
	}
	actionMsg struct {
		op      dashboard.Op
		message string
		err     error
	}
	analysisMsg struct {
		target string
		op     dashboard.Op
		title  string
		body   string
		err    error
	}
	exportMsg struct {
		path  string
		count int
		err   error
	}
	systemInfoMsg struct {
		info *model.SystemInfo
		err  error
	}
)

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchCmd(m.ctrl.ManualRefresh()),
		tickCmd(m.cfg.RefreshInterval),
		waitSample(m.samples),
		waitTheme(m.themes),
	)
}

// waitSample blocks on the next pushed sample.
func waitSample(ch <-chan model.MetricSample) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		return sampleMsg{sample: s, ok: ok}
	}
}

func waitTheme(ch <-chan theme.Mode) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		mode, ok := <-ch
		return themeMsg{mode: mode, ok: ok}
	}
}

func (m *Model) requestCtx(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(m.ctx)
	}
	return context.WithTimeout(m.ctx, timeout)
}

func (m *Model) fetchCmd(seq uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestCtx(m.cfg.RequestTimeout)
		defer cancel()
		recs, err := m.backend.Processes(ctx)
		return processesMsg{seq: seq, records: recs, err: err}
	}
}

func (m *Model) killCmd(pid int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestCtx(m.cfg.RequestTimeout)
		defer cancel()
		msg, err := m.backend.Kill(ctx, pid)
		return actionMsg{op: dashboard.OpKill, message: msg, err: err}
	}
}

func (m *Model) priorityCmd(pid int, action backend.PriorityAction) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestCtx(m.cfg.RequestTimeout)
		defer cancel()
		msg, err := m.backend.SetPriority(ctx, pid, action)
		return actionMsg{op: dashboard.OpPriority, message: msg, err: err}
	}
}

func (m *Model) analyzeProcessCmd(pid int) tea.Cmd {
	target := dashboard.ProcessTarget(pid)
	return func() tea.Msg {
		ctx, cancel := m.requestCtx(m.cfg.AnalysisTimeout)
		defer cancel()
		res, err := m.backend.AnalyzeProcess(ctx, pid)
		out := analysisMsg{target: target, op: dashboard.OpAnalyzeProcess, title: processTitle(pid), err: err}
		if err == nil {
			out.body = formatProcessAnalysis(res)
		}
		return out
	}
}

func (m *Model) analyzeSystemCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestCtx(m.cfg.AnalysisTimeout)
		defer cancel()
		res, err := m.backend.AnalyzeSystem(ctx)
		out := analysisMsg{target: dashboard.SystemTarget, op: dashboard.OpAnalyzeSystem, title: "System Analysis", err: err}
		if err == nil {
			out.body = formatSystemAnalysis(res)
		}
		return out
	}
}

// systemInfoCmd is nil when the backend cannot describe its host.
func (m *Model) systemInfoCmd() tea.Cmd {
	si, ok := m.backend.(backend.SystemInfoer)
	if !ok {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := m.requestCtx(m.cfg.RequestTimeout)
		defer cancel()
		info, err := si.SystemInfo(ctx)
		return systemInfoMsg{info: info, err: err}
	}
}

// exportCmd writes the unfiltered snapshot, copied before the command runs.
func (m *Model) exportCmd() tea.Cmd {
	recs := append([]model.ProcessRecord(nil), m.ctrl.Store().All()...)
	dir, now := m.cfg.ExportDir, m.now()
	return func() tea.Msg {
		path, err := export.ToFile(dir, recs, now)
		return exportMsg{path: path, count: len(recs), err: err}
	}
}

func (m *Model) saveThemeCmd(mode theme.Mode) tea.Cmd {
	path, log := m.cfg.StateFile, m.log
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		if err := theme.Save(path, mode); err != nil {
			log.Warn("save theme preference", "path", path, "err", err)
		}
		return nil
	}
}

// RunTUI starts the Bubble Tea program.
func RunTUI(cfg config.Config, deps Deps) error {
	m := New(cfg, deps)
	defer m.ctxCancel()
	prog := tea.NewProgram(m, tea.WithAltScreen())
	_, err := prog.Run()
	return err
}

// HasDarkBackground reports the terminal's background, used when no theme
// preference is stored.
func HasDarkBackground() bool { return lipgloss.HasDarkBackground() }
