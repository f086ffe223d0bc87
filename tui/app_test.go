package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/jackchuka/rootscan/internal/model"
	"github.com/jackchuka/rootscan/internal/report"
)

type fakeBackend struct {
	rescans  int
	accepted []model.Root
	ignored  []model.Root
	removed  []model.Root
	next     report.Report
	err      error
}

func (f *fakeBackend) Watch(ctx context.Context, _ chan<- report.Report) error {
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeBackend) Rescan() { f.rescans++ }

func (f *fakeBackend) Reconcile(context.Context) (report.Report, error) {
	return f.next, nil
}

func (f *fakeBackend) Accept(_ context.Context, roots ...model.Root) error {
	f.accepted = append(f.accepted, roots...)
	return f.err
}

func (f *fakeBackend) Ignore(_ context.Context, roots ...model.Root) error {
	f.ignored = append(f.ignored, roots...)
	return f.err
}

func (f *fakeBackend) Remove(_ context.Context, roots ...model.Root) error {
	f.removed = append(f.removed, roots...)
	return f.err
}

func (f *fakeBackend) ContentRoots() []string { return []string{"/src"} }

var (
	gitA   = model.NewRoot(model.KindGit, "/src/a")
	hgB    = model.NewRoot(model.KindHg, "/src/b")
	svnC   = model.NewRoot(model.KindSvn, "/src/c")
	goneD  = model.NewRoot(model.KindGit, "/src/d")
	staleE = model.NewRoot(model.KindHg, "/src/e")
)

func sampleReport() report.Report {
	return report.Report{
		Detected:     []model.Root{gitA, hgB, svnC},
		Unregistered: []model.Root{hgB},
		Invalid:      []model.Root{staleE},
		Unreachable:  []model.Root{goneD},
	}
}

func newTestModel(b Backend) *Model {
	m := NewModel(context.Background(), b, make(chan report.Report), make(chan error, 1))
	m.width, m.height = 120, 40
	// Keep animation ticks out of returned commands.
	m.animRunning = true
	return m
}

// execCmd runs cmd and any batched commands, collecting their messages.
func execCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, execCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (m *Model) selectRoot(t *testing.T, r model.Root) {
	t.Helper()
	for i, row := range m.rows {
		if row.Root == r {
			m.cursor = i
			return
		}
	}
	t.Fatalf("root %v not in rows", r)
}

func TestClassify(t *testing.T) {
	got := classify(sampleReport())
	want := []TableRow{
		{Root: gitA, Status: StatusTracked},
		{Root: hgB, Status: StatusUnregistered},
		{Root: svnC, Status: StatusTracked},
		{Root: goneD, Status: StatusUnreachable},
		{Root: staleE, Status: StatusInvalid},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("classify mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildRowsFilters(t *testing.T) {
	tests := []struct {
		name   string
		view   ViewFilter
		filter string
		want   []model.Root
	}{
		{"all", ViewAll, "", []model.Root{gitA, hgB, svnC, goneD, staleE}},
		{"unregistered", ViewUnregistered, "", []model.Root{hgB}},
		{"invalid", ViewInvalid, "", []model.Root{staleE}},
		{"unreachable", ViewUnreachable, "", []model.Root{goneD}},
		{"text filter", ViewAll, "/src/C", []model.Root{svnC}},
		{"view and text", ViewUnregistered, "a", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(&fakeBackend{})
			m.viewFilter = tt.view
			m.filterText = tt.filter
			m.setReport(sampleReport())

			var got []model.Root
			for _, row := range m.rows {
				got = append(got, row.Root)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("rows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSetReportGlowsOnlyNewRoots(t *testing.T) {
	m := newTestModel(&fakeBackend{})
	m.setReport(report.Report{Detected: []model.Root{gitA}})
	if len(m.anim.glowFade) != 0 {
		t.Errorf("first report glows %v, want none", m.anim.glowFade)
	}

	m.setReport(report.Report{Detected: []model.Root{gitA, hgB}})
	if _, ok := m.anim.glowFade[hgB]; !ok {
		t.Errorf("new root %v does not glow", hgB)
	}
	if _, ok := m.anim.glowFade[gitA]; ok {
		t.Errorf("known root %v glows", gitA)
	}
}

func TestSummaryCountsKinds(t *testing.T) {
	m := newTestModel(&fakeBackend{})
	m.setReport(sampleReport())

	s := m.summary
	if s.Detected != 3 || s.Unregistered != 1 || s.Invalid != 1 || s.Unreachable != 1 {
		t.Errorf("summary = %+v", s)
	}
	want := map[model.Kind]int{model.KindGit: 1, model.KindHg: 1, model.KindSvn: 1}
	if diff := cmp.Diff(want, s.ByKind); diff != "" {
		t.Errorf("ByKind mismatch (-want +got):\n%s", diff)
	}
}

func TestAcceptRegistersSelectedRoot(t *testing.T) {
	fb := &fakeBackend{next: report.Report{Detected: []model.Root{gitA, hgB, svnC}}}
	m := newTestModel(fb)
	m.setReport(sampleReport())
	m.selectRoot(t, hgB)

	_, cmd := m.handleKey(keyPress("a"))
	if m.phase != PhaseApplying {
		t.Errorf("phase = %v, want PhaseApplying", m.phase)
	}
	msgs := execCmd(cmd)
	if diff := cmp.Diff([]model.Root{hgB}, fb.accepted); diff != "" {
		t.Errorf("accepted mismatch (-want +got):\n%s", diff)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	rm, ok := msgs[0].(reportMsg)
	if !ok {
		t.Fatalf("message = %T, want reportMsg", msgs[0])
	}
	if rm.applied != "Registered 1 root(s)" {
		t.Errorf("applied = %q", rm.applied)
	}

	m.Update(rm)
	if m.phase != PhaseIdle {
		t.Errorf("phase = %v, want PhaseIdle", m.phase)
	}
	if len(m.toasts) != 1 {
		t.Errorf("toasts = %d, want 1", len(m.toasts))
	}
	if m.summary.Unregistered != 0 {
		t.Errorf("Unregistered = %d after reconcile, want 0", m.summary.Unregistered)
	}
}

func TestDecisionKeysRespectRowStatus(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		root   model.Root
		called func(*fakeBackend) []model.Root
		want   bool
	}{
		{"accept tracked", "a", gitA, func(f *fakeBackend) []model.Root { return f.accepted }, false},
		{"ignore unregistered", "i", hgB, func(f *fakeBackend) []model.Root { return f.ignored }, true},
		{"ignore invalid", "i", staleE, func(f *fakeBackend) []model.Root { return f.ignored }, false},
		{"remove unreachable", "x", goneD, func(f *fakeBackend) []model.Root { return f.removed }, true},
		{"remove invalid", "x", staleE, func(f *fakeBackend) []model.Root { return f.removed }, true},
		{"remove tracked", "x", gitA, func(f *fakeBackend) []model.Root { return f.removed }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeBackend{}
			m := newTestModel(fb)
			m.setReport(sampleReport())
			m.selectRoot(t, tt.root)

			_, cmd := m.handleKey(keyPress(tt.key))
			execCmd(cmd)

			got := len(tt.called(fb)) == 1
			if got != tt.want {
				t.Errorf("backend called = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAcceptAllRegistersEveryUnregistered(t *testing.T) {
	fb := &fakeBackend{}
	m := newTestModel(fb)
	m.setReport(report.Report{
		Detected:     []model.Root{gitA, hgB},
		Unregistered: []model.Root{gitA, hgB},
	})

	_, cmd := m.handleKey(keyPress("A"))
	execCmd(cmd)
	if diff := cmp.Diff([]model.Root{gitA, hgB}, fb.accepted); diff != "" {
		t.Errorf("accepted mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyErrorShowsToast(t *testing.T) {
	fb := &fakeBackend{err: errors.New("disk full")}
	m := newTestModel(fb)
	m.setReport(sampleReport())
	m.selectRoot(t, hgB)

	_, cmd := m.handleKey(keyPress("a"))
	msgs := execCmd(cmd)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if _, ok := msgs[0].(errMsg); !ok {
		t.Fatalf("message = %T, want errMsg", msgs[0])
	}
	m.Update(msgs[0])
	if len(m.toasts) != 1 || m.toasts[0].Level != ToastError {
		t.Errorf("toasts = %+v, want one error toast", m.toasts)
	}
}

func TestRescanKey(t *testing.T) {
	fb := &fakeBackend{}
	m := newTestModel(fb)
	m.phase = PhaseIdle

	m.handleKey(keyPress("r"))
	if fb.rescans != 1 {
		t.Errorf("rescans = %d, want 1", fb.rescans)
	}
	if m.phase != PhaseScanning {
		t.Errorf("phase = %v, want PhaseScanning", m.phase)
	}
}

func TestScanReportRearmsListener(t *testing.T) {
	reports := make(chan report.Report, 1)
	stopped := make(chan error, 1)
	m := NewModel(context.Background(), &fakeBackend{}, reports, stopped)
	m.animRunning = true
	m.phase = PhaseScanning

	reports <- sampleReport()
	msg := m.listenForReports()()
	rm, ok := msg.(reportMsg)
	if !ok || !rm.scanned {
		t.Fatalf("message = %#v, want scanned reportMsg", msg)
	}

	_, cmd := m.Update(rm)
	if m.phase != PhaseIdle {
		t.Errorf("phase = %v, want PhaseIdle", m.phase)
	}
	if m.lastScan.IsZero() {
		t.Error("lastScan not set")
	}

	stopped <- errors.New("inotify limit")
	close(reports)
	msgs := execCmd(cmd)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	ws, ok := msgs[0].(watchStoppedMsg)
	if !ok || ws.err == nil {
		t.Fatalf("message = %#v, want watchStoppedMsg with error", msgs[0])
	}
}

func TestViewRendersRows(t *testing.T) {
	m := newTestModel(&fakeBackend{})
	m.setReport(sampleReport())

	view := m.View()
	for _, want := range []string{"rootscan", "unregistered", "unreachable", "/src/e", "CONTENT ROOTS"} {
		if !containsIgnoreCase(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
