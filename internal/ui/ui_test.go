package ui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dicklesworthstone/procdash/internal/backend"
	"github.com/Dicklesworthstone/procdash/internal/chart"
	"github.com/Dicklesworthstone/procdash/internal/config"
	"github.com/Dicklesworthstone/procdash/internal/dashboard"
	"github.com/Dicklesworthstone/procdash/internal/model"
	"github.com/Dicklesworthstone/procdash/internal/store"
	"github.com/Dicklesworthstone/procdash/internal/theme"
)

type fakeBackend struct {
	records  []model.ProcessRecord
	killed   []int
	priority []backend.PriorityAction
	killErr  error
}

func (f *fakeBackend) Processes(context.Context) ([]model.ProcessRecord, error) {
	return f.records, nil
}

func (f *fakeBackend) Kill(_ context.Context, pid int) (string, error) {
	if f.killErr != nil {
		return "", f.killErr
	}
	f.killed = append(f.killed, pid)
	return "Process terminated", nil
}

func (f *fakeBackend) SetPriority(_ context.Context, _ int, action backend.PriorityAction) (string, error) {
	f.priority = append(f.priority, action)
	return "Priority changed", nil
}

func (f *fakeBackend) AnalyzeProcess(context.Context, int) (*model.ProcessAnalysis, error) {
	return &model.ProcessAnalysis{Analysis: "fine", Anomalies: "none"}, nil
}

func (f *fakeBackend) AnalyzeSystem(context.Context) (*model.SystemAnalysis, error) {
	return &model.SystemAnalysis{Analysis: "ok"}, nil
}

// hostBackend is a fakeBackend that can also describe its host.
type hostBackend struct {
	*fakeBackend
	info  *model.SystemInfo
	err   error
	calls int
}

func (h *hostBackend) SystemInfo(context.Context) (*model.SystemInfo, error) {
	h.calls++
	return h.info, h.err
}

func testRecords() []model.ProcessRecord {
	return []model.ProcessRecord{
		{PID: 3, Name: "gamma", User: "root", CPUPercent: 1},
		{PID: 1, Name: "alpha", User: "alice", CPUPercent: 50},
		{PID: 2, Name: "beta", User: "bob", CPUPercent: 7.25},
	}
}

func newTestModel(t *testing.T) (*Model, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{records: testRecords()}
	return newTestModelWith(t, fb), fb
}

func newTestModelWith(t *testing.T, b backend.Backend) *Model {
	t.Helper()
	cfg := config.Default()
	cfg.StateFile = ""
	cfg.ExportDir = t.TempDir()
	m := New(cfg, Deps{
		Backend: b,
		Theme:   theme.Dark,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	t.Cleanup(m.ctxCancel)
	load(m)
	return m
}

func load(m *Model) {
	m.Update(m.fetchCmd(m.ctrl.ManualRefresh())())
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func press(m *Model, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

func TestRefreshFillsTable(t *testing.T) {
	m, _ := newTestModel(t)
	if got := len(m.table.Rows()); got != 3 {
		t.Fatalf("table has %d rows, want 3", got)
	}
	if m.ctrl.LastUpdate().IsZero() {
		t.Fatalf("LastUpdate not set")
	}
}

func TestKillRequiresSelection(t *testing.T) {
	m, fb := newTestModel(t)
	if cmd := press(m, runes("K")); cmd != nil {
		t.Fatalf("kill without selection returned a command")
	}
	if m.mode != normalMode {
		t.Fatalf("mode = %v, want normal", m.mode)
	}
	if status, _ := m.ctrl.Status(); status != "Please select a process first" {
		t.Fatalf("status = %q", status)
	}
	if len(fb.killed) != 0 {
		t.Fatalf("backend called: %v", fb.killed)
	}
}

func TestKillConfirmAndRefresh(t *testing.T) {
	m, fb := newTestModel(t)
	m.ctrl.Select(2)
	press(m, runes("K"))
	if m.mode != confirmKillMode || m.killPID != 2 {
		t.Fatalf("mode = %v pid = %d, want confirm for 2", m.mode, m.killPID)
	}
	cmd := press(m, runes("y"))
	if cmd == nil {
		t.Fatalf("confirm returned no command")
	}
	refresh := press(m, cmd())
	if len(fb.killed) != 1 || fb.killed[0] != 2 {
		t.Fatalf("killed = %v, want [2]", fb.killed)
	}
	if status, _ := m.ctrl.Status(); status != "Process terminated" {
		t.Fatalf("status = %q", status)
	}
	if refresh == nil {
		t.Fatalf("kill success did not trigger a refresh")
	}
	if _, ok := refresh().(processesMsg); !ok {
		t.Fatalf("refresh command produced %T", refresh())
	}
}

func TestKillFailureShowsServerMessage(t *testing.T) {
	m, fb := newTestModel(t)
	fb.killErr = &backend.APIError{Op: "kill process", Status: 403, Message: "Access denied"}
	m.ctrl.Select(1)
	press(m, runes("K"))
	cmd := press(m, runes("y"))
	press(m, cmd())
	if text, ok := m.ctrl.Alert(); !ok || text != "Access denied" {
		t.Fatalf("Alert() = %q, %v", text, ok)
	}
	if pid, ok := m.ctrl.Store().Selected(); ok {
		t.Fatalf("selection %d kept after failed kill", pid)
	}
	for _, row := range m.table.Rows() {
		if row[0] == selectedMarker {
			t.Fatalf("row %s still marked after failed kill", row[1])
		}
	}
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if _, ok := m.ctrl.Alert(); ok {
		t.Fatalf("alert not dismissed")
	}
}

func TestPriorityKeys(t *testing.T) {
	m, fb := newTestModel(t)
	m.ctrl.Select(1)
	press(m, press(m, runes("+"))())
	press(m, press(m, runes("-"))())
	if len(fb.priority) != 2 || fb.priority[0] != backend.Raise || fb.priority[1] != backend.Lower {
		t.Fatalf("priority = %v", fb.priority)
	}
}

func TestSearchDebounce(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, runes("/"))
	if m.mode != searchMode {
		t.Fatalf("mode = %v, want search", m.mode)
	}
	press(m, runes("b"), runes("e"))
	if m.ctrl.Store().Term() != "" {
		t.Fatalf("filter applied before debounce")
	}
	press(m, searchMsg{gen: m.searchGen - 1})
	if m.ctrl.Store().Term() != "" {
		t.Fatalf("stale debounce applied")
	}
	press(m, searchMsg{gen: m.searchGen})
	if m.ctrl.Store().Term() != "be" || len(m.table.Rows()) != 1 {
		t.Fatalf("term = %q rows = %d", m.ctrl.Store().Term(), len(m.table.Rows()))
	}

	press(m, tea.KeyMsg{Type: tea.KeyEscape})
	if m.ctrl.Store().Term() != "" || len(m.table.Rows()) != 3 || m.mode != normalMode {
		t.Fatalf("escape did not clear search: term %q rows %d", m.ctrl.Store().Term(), len(m.table.Rows()))
	}
}

func TestSortKeyMarksHeader(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, runes("3"))
	if s := m.ctrl.Store().Sort(); s.Column != store.ColumnCPU || s.Direction != store.Ascending {
		t.Fatalf("sort = %+v", s)
	}
	if rows := m.table.Rows(); rows[0][1] != "3" {
		t.Fatalf("first row pid = %s, want 3", rows[0][1])
	}
	press(m, runes("3"))
	if rows := m.table.Rows(); rows[0][1] != "1" {
		t.Fatalf("first row pid = %s after toggle, want 1", rows[0][1])
	}
}

func TestPausedDropsSamples(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, runes("p"))
	if !m.ctrl.Paused() {
		t.Fatalf("not paused")
	}
	for i := 0; i < 3; i++ {
		press(m, sampleMsg{sample: model.MetricSample{CPU: model.Float(5)}, ok: true})
	}
	press(m, runes("p"))
	if n := m.ctrl.Charts().Chart(chart.CPU).Len(); n != 0 {
		t.Fatalf("cpu chart has %d points, want 0", n)
	}
}

func TestTickWhilePausedSkipsFetch(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, runes("p"))
	before := m.ctrl.Store().Len()
	if _, ok := m.ctrl.RefreshTimerFired(); ok {
		t.Fatalf("timer refresh allowed while paused")
	}
	press(m, tickMsg(time.Now()))
	if m.ctrl.Store().Len() != before {
		t.Fatalf("store changed on paused tick")
	}
}

func TestAnalyzeSystemFlow(t *testing.T) {
	m, _ := newTestModel(t)
	cmd := press(m, runes("A"))
	if m.mode != loadingMode || cmd == nil {
		t.Fatalf("mode = %v, want loading", m.mode)
	}
	if err := m.ctrl.BeginAnalysis(dashboard.SystemTarget); !errors.Is(err, dashboard.ErrAnalysisInFlight) {
		t.Fatalf("duplicate analysis err = %v", err)
	}
	press(m, m.analyzeSystemCmd()())
	if m.mode != resultMode || m.resultTitle != "System Analysis" {
		t.Fatalf("mode = %v title = %q", m.mode, m.resultTitle)
	}
	if m.ctrl.Analyzing() {
		t.Fatalf("analysis still in flight")
	}
	press(m, tea.KeyMsg{Type: tea.KeyEscape})
	if m.mode != normalMode {
		t.Fatalf("result modal not closed")
	}
}

func TestAnalysisFailureAlerts(t *testing.T) {
	m, _ := newTestModel(t)
	m.ctrl.Select(1)
	press(m, runes("a"))
	press(m, analysisMsg{target: dashboard.ProcessTarget(1), op: dashboard.OpAnalyzeProcess, err: errors.New("timeout")})
	if text, ok := m.ctrl.Alert(); !ok || text != "Error analyzing process" {
		t.Fatalf("Alert() = %q, %v", text, ok)
	}
	if m.mode != normalMode {
		t.Fatalf("mode = %v, want normal", m.mode)
	}
}

func TestThemeToggleAndWatch(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, runes("t"))
	if m.ctrl.Theme() != theme.Light || m.ctrl.Charts().Palette().Dark {
		t.Fatalf("theme toggle did not retheme")
	}
	press(m, themeMsg{mode: theme.Dark, ok: true})
	if m.ctrl.Theme() != theme.Dark {
		t.Fatalf("watched theme not applied")
	}
}

func TestExport(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, press(m, runes("e"))())
	status, isErr := m.ctrl.Status()
	if isErr || !strings.HasPrefix(status, "Exported 3 processes to ") {
		t.Fatalf("status = %q, %v", status, isErr)
	}
}

func TestSelectWithEnter(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	pid, ok := m.ctrl.Store().Selected()
	if !ok || pid != 3 {
		t.Fatalf("Selected() = %d, %v, want 3", pid, ok)
	}
	if m.table.Rows()[0][0] != selectedMarker {
		t.Fatalf("selected row not marked")
	}
}

func TestViewRenders(t *testing.T) {
	m, _ := newTestModel(t)
	if out := m.View(); !strings.Contains(out, "procdash") || !strings.Contains(out, "gamma") {
		t.Fatalf("View() missing header or rows")
	}
	press(m, tea.KeyMsg{Type: tea.KeyTab})
	if out := m.View(); !strings.Contains(out, "CPU") {
		t.Fatalf("graphs view missing CPU chart")
	}
}

func TestSystemTabLocal(t *testing.T) {
	hb := &hostBackend{
		fakeBackend: &fakeBackend{records: testRecords()},
		info: &model.SystemInfo{
			OS: "linux", Node: "box", Release: "6.1.0", Machine: "x86_64",
			PhysicalCores: 4, LogicalCores: 8, TotalMemory: 16 << 30, DiskPercent: 42.5,
		},
	}
	m := newTestModelWith(t, hb)
	if cmd := press(m, tea.KeyMsg{Type: tea.KeyTab}); cmd != nil {
		t.Fatalf("graphs tab requested system info")
	}
	cmd := press(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.ctrl.Tab() != dashboard.TabSystem || cmd == nil {
		t.Fatalf("tab = %v, cmd nil = %v", m.ctrl.Tab(), cmd == nil)
	}
	if out := m.View(); !strings.Contains(out, "Loading system information") {
		t.Fatalf("system tab before lookup:\n%s", out)
	}
	press(m, cmd())
	if hb.calls != 1 {
		t.Fatalf("SystemInfo called %d times", hb.calls)
	}
	out := m.View()
	for _, want := range []string{"System Information", "Node Name:", "box", "Logical CPUs:", "8", "16 GB", "42.5%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("system tab missing %q:\n%s", want, out)
		}
	}

	hb.err = errors.New("host gone")
	press(m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyTab})
	press(m, press(m, tea.KeyMsg{Type: tea.KeyTab})())
	if out := m.View(); !strings.Contains(out, "box") {
		t.Fatalf("failed lookup dropped the last description:\n%s", out)
	}
}

func TestSystemTabRemote(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, tea.KeyMsg{Type: tea.KeyTab})
	if cmd := press(m, tea.KeyMsg{Type: tea.KeyTab}); cmd != nil {
		t.Fatalf("remote backend returned a system info command")
	}
	if out := m.View(); !strings.Contains(out, "only available in local mode") {
		t.Fatalf("remote system tab:\n%s", out)
	}
}
