package tui

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jackchuka/rootscan/internal/model"
	"github.com/jackchuka/rootscan/internal/report"
)

// Backend runs detection and applies decisions for the dashboard.
type Backend interface {
	// Watch blocks until ctx is done, sending a report after every scan.
	Watch(ctx context.Context, reports chan<- report.Report) error
	// Rescan schedules a full scan.
	Rescan()
	// Reconcile compares the last detection with the current mappings,
	// detecting first only when no result is cached.
	Reconcile(ctx context.Context) (report.Report, error)
	Accept(ctx context.Context, roots ...model.Root) error
	Ignore(ctx context.Context, roots ...model.Root) error
	Remove(ctx context.Context, roots ...model.Root) error
	ContentRoots() []string
}

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseScanning
	PhaseApplying
)

type ViewFilter int

const (
	ViewAll ViewFilter = iota
	ViewUnregistered
	ViewInvalid
	ViewUnreachable
)

// RowStatus is where a root stands relative to the mappings.
type RowStatus int

const (
	StatusTracked RowStatus = iota
	StatusUnregistered
	StatusInvalid
	StatusUnreachable
)

func (s RowStatus) String() string {
	switch s {
	case StatusUnregistered:
		return "unregistered"
	case StatusInvalid:
		return "invalid"
	case StatusUnreachable:
		return "unreachable"
	default:
		return "tracked"
	}
}

type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastSuccess
	ToastError
)

type Toast struct {
	ID        int
	Message   string
	Level     ToastLevel
	CreatedAt time.Time
}

type TableRow struct {
	Root   model.Root
	Status RowStatus
}

type AnimState struct {
	frame    int
	glowFade map[model.Root]int
}

func newAnimState() AnimState {
	return AnimState{glowFade: make(map[model.Root]int)}
}

type SummaryData struct {
	Detected     int
	Unregistered int
	Invalid      int
	Unreachable  int
	ByKind       map[model.Kind]int
}

type Model struct {
	ctx     context.Context
	backend Backend
	reports <-chan report.Report
	stopped <-chan error

	report  report.Report
	scanned bool
	rows    []TableRow
	cursor  int

	width, height int
	scrollOffset  int

	phase       Phase
	filterMode  bool
	filterInput textinput.Model
	filterText  string
	viewFilter  ViewFilter
	showHelp    bool
	lastScan    time.Time

	summary SummaryData
	anim    AnimState
	toasts  []Toast

	keys        keyMap
	nextToastID int
	animRunning bool
}

// NewModel returns a dashboard fed by reports. stopped receives the watch
// result once reports is closed.
func NewModel(ctx context.Context, backend Backend, reports <-chan report.Report, stopped <-chan error) *Model {
	ti := textinput.New()
	ti.Placeholder = "filter roots..."
	ti.CharLimit = 50

	return &Model{
		ctx:         ctx,
		backend:     backend,
		reports:     reports,
		stopped:     stopped,
		keys:        newKeyMap(),
		filterInput: ti,
		viewFilter:  ViewAll,
		anim:        newAnimState(),
	}
}

func (m *Model) Init() tea.Cmd {
	m.phase = PhaseScanning
	m.animRunning = true
	return tea.Batch(
		m.listenForReports(),
		func() tea.Msg { return animTickMsg{} },
	)
}

type reportMsg struct {
	report report.Report
	// scanned is false when only the mappings changed.
	scanned bool
	applied string
}
type watchStoppedMsg struct{ err error }
type errMsg struct{ err error }
type animTickMsg struct{}
type toastExpiredMsg struct{ id int }

// setReport replaces the current report and highlights roots that were not
// in the previous one.
func (m *Model) setReport(rep report.Report) {
	if m.scanned {
		before := model.NewRootSet(m.report.Detected...)
		for _, r := range rep.Detected {
			if !before.Has(r) {
				m.anim.glowFade[r] = 0
			}
		}
	}
	m.report = rep
	m.scanned = true
	m.refresh()
}

func (m *Model) buildRows() {
	all := classify(m.report)

	var rows []TableRow
	for _, row := range all {
		if !matchesView(row.Status, m.viewFilter) {
			continue
		}
		if m.filterText != "" &&
			!containsIgnoreCase(row.Root.DisplayName(), m.filterText) &&
			!containsIgnoreCase(row.Root.Path, m.filterText) {
			continue
		}
		rows = append(rows, row)
	}
	m.rows = rows

	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) refresh() {
	m.computeSummary()
	m.buildRows()
}

func (m *Model) computeSummary() {
	s := SummaryData{
		Detected:     len(m.report.Detected),
		Unregistered: len(m.report.Unregistered),
		Invalid:      len(m.report.Invalid),
		Unreachable:  len(m.report.Unreachable),
		ByKind:       make(map[model.Kind]int),
	}
	for _, r := range m.report.Detected {
		s.ByKind[r.Kind]++
	}
	m.summary = s
}

// classify flattens a report into rows ordered by path. Mapping problems
// take precedence over the detected state of the same root.
func classify(rep report.Report) []TableRow {
	status := make(map[model.Root]RowStatus)
	for _, r := range rep.Detected {
		status[r] = StatusTracked
	}
	for _, r := range rep.Unregistered {
		status[r] = StatusUnregistered
	}
	for _, r := range rep.Unreachable {
		status[r] = StatusUnreachable
	}
	for _, r := range rep.Invalid {
		status[r] = StatusInvalid
	}

	roots := make([]model.Root, 0, len(status))
	for r := range status {
		roots = append(roots, r)
	}
	model.SortRoots(roots)

	rows := make([]TableRow, len(roots))
	for i, r := range roots {
		rows[i] = TableRow{Root: r, Status: status[r]}
	}
	return rows
}

func matchesView(s RowStatus, v ViewFilter) bool {
	switch v {
	case ViewUnregistered:
		return s == StatusUnregistered
	case ViewInvalid:
		return s == StatusInvalid
	case ViewUnreachable:
		return s == StatusUnreachable
	default:
		return true
	}
}

func (m *Model) selectedRow() *TableRow {
	if len(m.rows) == 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return &m.rows[m.cursor]
}

func (m *Model) addToast(msg string, level ToastLevel) tea.Cmd {
	id := m.nextToastID
	m.nextToastID++
	m.toasts = append(m.toasts, Toast{
		ID:        id,
		Message:   msg,
		Level:     level,
		CreatedAt: time.Now(),
	})
	return tea.Tick(3*time.Second, func(_ time.Time) tea.Msg {
		return toastExpiredMsg{id}
	})
}

func (m *Model) updateAnimState() {
	m.anim.frame++

	if m.anim.frame%3 == 0 {
		for r, step := range m.anim.glowFade {
			if step >= len(glowBorderColors)-1 {
				delete(m.anim.glowFade, r)
			} else {
				m.anim.glowFade[r] = step + 1
			}
		}
	}
}

func (m *Model) animTick() tea.Cmd {
	m.animRunning = true
	return tea.Tick(100*time.Millisecond, func(_ time.Time) tea.Msg {
		return animTickMsg{}
	})
}

func (m *Model) hasActiveAnimations() bool {
	return len(m.anim.glowFade) > 0 || m.phase != PhaseIdle
}

func (m *Model) ensureAnimTick() tea.Cmd {
	if m.animRunning {
		return nil
	}
	return m.animTick()
}

func (m *Model) listenForReports() tea.Cmd {
	return func() tea.Msg {
		rep, ok := <-m.reports
		if !ok {
			return watchStoppedMsg{err: <-m.stopped}
		}
		return reportMsg{report: rep, scanned: true}
	}
}

// apply runs a mapping decision, then reconciles the last detection
// against the updated mappings.
func (m *Model) apply(verb string, fn func(context.Context, ...model.Root) error, roots []model.Root) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, 30*time.Second)
		defer cancel()

		if err := fn(ctx, roots...); err != nil {
			return errMsg{err}
		}
		rep, err := m.backend.Reconcile(ctx)
		if err != nil {
			return errMsg{err}
		}
		return reportMsg{report: rep, applied: fmt.Sprintf("%s %d root(s)", verb, len(roots))}
	}
}

func (m *Model) copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("pbcopy")
		case "windows":
			cmd = exec.Command("clip")
		default:
			if _, err := exec.LookPath("xclip"); err == nil {
				cmd = exec.Command("xclip", "-selection", "clipboard")
			} else {
				cmd = exec.Command("xsel", "--clipboard", "--input")
			}
		}
		cmd.Stdin = strings.NewReader(text)
		_ = cmd.Run()
		return nil
	}
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Run shows the dashboard until the user quits. Detection keeps running in
// the background for as long as the dashboard is open.
func Run(ctx context.Context, backend Backend) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reports := make(chan report.Report)
	stopped := make(chan error, 1)
	go func() {
		err := backend.Watch(ctx, reports)
		stopped <- err
		close(reports)
	}()

	m := NewModel(ctx, backend, reports, stopped)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
