// Package dashboard owns the dashboard state and maps every event (timers,
// pushed samples, user actions, request completions) to a state transition.
// It is driven from a single goroutine and does no I/O of its own.
package dashboard

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dicklesworthstone/procdash/internal/backend"
	"github.com/Dicklesworthstone/procdash/internal/chart"
	"github.com/Dicklesworthstone/procdash/internal/config"
	"github.com/Dicklesworthstone/procdash/internal/model"
	"github.com/Dicklesworthstone/procdash/internal/store"
	"github.com/Dicklesworthstone/procdash/internal/theme"
)

var (
	ErrNoSelection      = errors.New("no process selected")
	ErrAnalysisInFlight = errors.New("analysis already in progress")
)

// UpdateMode gates the periodic refresh and live sample forwarding.
type UpdateMode int

const (
	Enabled UpdateMode = iota
	Paused
)

func (m UpdateMode) String() string {
	if m == Paused {
		return "paused"
	}
	return "live"
}

type Tab int

const (
	TabProcesses Tab = iota
	TabGraphs
	TabSystem
)

var tabNames = [...]string{"Processes", "Graphs", "System"}

// Tabs lists every tab in display order.
var Tabs = []Tab{TabProcesses, TabGraphs, TabSystem}

func (t Tab) String() string { return tabNames[t] }

// Op names a backend operation for fallback error text.
type Op int

const (
	OpRefresh Op = iota
	OpKill
	OpPriority
	OpAnalyzeProcess
	OpAnalyzeSystem
	OpExport
)

var fallbacks = [...]string{
	OpRefresh:        "Failed to refresh processes. Please try again.",
	OpKill:           "Error killing process",
	OpPriority:       "Error changing priority",
	OpAnalyzeProcess: "Error analyzing process",
	OpAnalyzeSystem:  "Error analyzing system",
	OpExport:         "Error exporting processes",
}

var opNames = [...]string{"refresh", "kill", "priority", "analyze process", "analyze system", "export"}

func (o Op) String() string   { return opNames[o] }
func (o Op) Fallback() string { return fallbacks[o] }

// Options seed a Controller.
type Options struct {
	Theme      theme.Mode
	Thresholds config.Thresholds
	Muted      bool
	Logger     *slog.Logger
}

// Controller is the dashboard state. Its methods are the only mutators.
type Controller struct {
	store      *store.Store
	charts     *chart.Set
	mode       UpdateMode
	muted      bool
	theme      theme.Mode
	tab        Tab
	thresholds config.Thresholds

	issuedSeq  uint64
	appliedSeq uint64
	inFlight   map[string]struct{}

	status     string
	statusErr  bool
	alert      string
	lastUpdate time.Time

	sysInfo    *model.SystemInfo
	sysInfoErr error

	log *slog.Logger
}

func New(opts Options) *Controller {
	if !opts.Theme.Valid() {
		opts.Theme = theme.Dark
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Thresholds == (config.Thresholds{}) {
		opts.Thresholds = config.Default().Thresholds
	}
	return &Controller{
		store:      store.New(),
		charts:     chart.NewSet(opts.Theme.IsDark()),
		muted:      opts.Muted,
		theme:      opts.Theme,
		thresholds: opts.Thresholds,
		inFlight:   make(map[string]struct{}),
		log:        opts.Logger,
	}
}

func (c *Controller) Store() *store.Store    { return c.store }
func (c *Controller) Charts() *chart.Set     { return c.charts }
func (c *Controller) Mode() UpdateMode       { return c.mode }
func (c *Controller) Paused() bool           { return c.mode == Paused }
func (c *Controller) Muted() bool            { return c.muted }
func (c *Controller) Theme() theme.Mode      { return c.theme }
func (c *Controller) Tab() Tab               { return c.tab }
func (c *Controller) LastUpdate() time.Time  { return c.lastUpdate }
func (c *Controller) Status() (string, bool) { return c.status, c.statusErr }

// Alert returns the pending blocking alert, if any.
func (c *Controller) Alert() (string, bool) { return c.alert, c.alert != "" }

func (c *Controller) DismissAlert() { c.alert = "" }

func (c *Controller) SetTab(t Tab) {
	if t >= 0 && int(t) < len(tabNames) {
		c.tab = t
	}
}

func (c *Controller) NextTab() { c.tab = (c.tab + 1) % Tab(len(tabNames)) }

// SetSystemInfo records the result of a host description lookup. A failed
// lookup keeps the last good description.
func (c *Controller) SetSystemInfo(info *model.SystemInfo, err error) {
	if err != nil {
		c.log.Warn("system info failed", "err", err)
		c.sysInfoErr = err
		return
	}
	c.sysInfo, c.sysInfoErr = info, nil
}

// SystemInfo returns the last host description and the last lookup error.
func (c *Controller) SystemInfo() (*model.SystemInfo, error) { return c.sysInfo, c.sysInfoErr }

// SetStatus replaces the status line.
func (c *Controller) SetStatus(text string, isErr bool) {
	c.status, c.statusErr = text, isErr
}

// raise surfaces text as a blocking alert, or only on the status line while
// alerts are muted.
func (c *Controller) raise(text string) {
	c.SetStatus(text, true)
	if !c.muted {
		c.alert = text
	}
}

// RefreshTimerFired starts a periodic refresh. It reports false while paused.
func (c *Controller) RefreshTimerFired() (uint64, bool) {
	if c.mode == Paused {
		return 0, false
	}
	return c.nextSeq(), true
}

// ManualRefresh starts a user-requested refresh regardless of update mode.
func (c *Controller) ManualRefresh() uint64 { return c.nextSeq() }

func (c *Controller) nextSeq() uint64 {
	c.issuedSeq++
	return c.issuedSeq
}

func (c *Controller) stale(seq uint64) bool { return seq <= c.appliedSeq }

// RefreshSucceeded loads records fetched by refresh seq. A reply older than
// one already applied is discarded and false is returned.
func (c *Controller) RefreshSucceeded(seq uint64, records []model.ProcessRecord, now time.Time) bool {
	if c.stale(seq) {
		c.log.Debug("discarding stale refresh", "seq", seq, "applied", c.appliedSeq)
		return false
	}
	c.appliedSeq = seq
	c.store.Load(records)
	c.lastUpdate = now
	return true
}

// RefreshFailed reports a failed refresh. The store keeps its previous
// snapshot.
func (c *Controller) RefreshFailed(seq uint64, err error) bool {
	if c.stale(seq) {
		return false
	}
	c.log.Warn("refresh failed", "seq", seq, "err", err)
	c.raise(backend.Message(err, OpRefresh.Fallback()))
	return true
}

// PushSampleReceived forwards a live sample to the charts unless paused.
// Samples received while paused are dropped.
func (c *Controller) PushSampleReceived(s model.MetricSample, now time.Time) bool {
	if c.mode == Paused {
		return false
	}
	c.charts.Append(s, now)
	if w := c.thresholdWarning(s); w != "" && !c.muted {
		c.SetStatus(w, true)
	}
	return true
}

func (c *Controller) thresholdWarning(s model.MetricSample) string {
	checks := []struct {
		label string
		v     *float64
		limit float64
	}{
		{"CPU", s.CPU, c.thresholds.CPU},
		{"memory", s.Memory, c.thresholds.Memory},
		{"disk", s.Disk, c.thresholds.Disk},
	}
	for _, ch := range checks {
		if ch.v != nil && *ch.v > ch.limit {
			c.log.Warn("threshold exceeded", "metric", ch.label, "value", *ch.v, "limit", ch.limit, "muted", c.muted)
			return fmt.Sprintf("High %s usage: %.1f%%", ch.label, *ch.v)
		}
	}
	return ""
}

func (c *Controller) ToggleUpdates() UpdateMode {
	if c.mode == Paused {
		c.mode = Enabled
	} else {
		c.mode = Paused
	}
	c.SetStatus("Updates "+c.mode.String(), false)
	return c.mode
}

// ToggleAlerts flips the mute flag and reports whether alerts are muted.
func (c *Controller) ToggleAlerts() bool {
	c.muted = !c.muted
	if c.muted {
		c.alert = ""
		c.SetStatus("Alerts muted", false)
	} else {
		c.SetStatus("Alerts enabled", false)
	}
	return c.muted
}

// ToggleTheme flips the theme and rethemes every chart.
func (c *Controller) ToggleTheme() theme.Mode {
	c.ApplyTheme(c.theme.Toggle())
	return c.theme
}

// ApplyTheme sets the theme, e.g. after the preference file changed.
func (c *Controller) ApplyTheme(m theme.Mode) {
	if !m.Valid() {
		return
	}
	c.theme = m
	c.charts.Retheme(m.IsDark())
}

func (c *Controller) SetFilter(term string) { c.store.SetFilter(term) }

func (c *Controller) SortBy(col store.Column) error {
	if err := c.store.SetSort(col); err != nil {
		c.log.Warn("sort rejected", "column", string(col), "err", err)
		return err
	}
	return nil
}

func (c *Controller) Select(pid int) { c.store.Select(pid) }

// RequireSelection returns the selected pid, or ErrNoSelection after setting
// a status message.
func (c *Controller) RequireSelection() (int, error) {
	pid, ok := c.store.Selected()
	if !ok {
		c.SetStatus("Please select a process first", true)
		return 0, ErrNoSelection
	}
	return pid, nil
}

// ProcessTarget and SystemTarget identify analysis requests.
func ProcessTarget(pid int) string { return fmt.Sprintf("process:%d", pid) }

const SystemTarget = "system"

// BeginAnalysis marks target in flight, refusing a second request for it.
func (c *Controller) BeginAnalysis(target string) error {
	if _, ok := c.inFlight[target]; ok {
		c.SetStatus("Analysis already running", true)
		return fmt.Errorf("%w: %s", ErrAnalysisInFlight, target)
	}
	c.inFlight[target] = struct{}{}
	return nil
}

func (c *Controller) EndAnalysis(target string) { delete(c.inFlight, target) }

func (c *Controller) Analyzing() bool { return len(c.inFlight) > 0 }

// ActionSucceeded records a server confirmation.
func (c *Controller) ActionSucceeded(op Op, message string) {
	c.log.Info("action succeeded", "op", op.String(), "message", message)
	c.SetStatus(message, false)
}

// ActionFailed surfaces err as an alert and returns the displayed text.
func (c *Controller) ActionFailed(op Op, err error) string {
	text := backend.Message(err, op.Fallback())
	c.log.Warn("action failed", "op", op.String(), "err", err)
	c.raise(text)
	return text
}
