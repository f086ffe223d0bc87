package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jackchuka/rootscan/internal/model"
	"github.com/jackchuka/rootscan/internal/report"
)

func TestPrintRoots(t *testing.T) {
	var buf bytes.Buffer
	printRoots(&buf, []model.Root{
		model.NewRoot(model.KindGit, "/src/a"),
		model.NewRoot(model.KindHg, "/src/b"),
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "Git") || !strings.HasSuffix(lines[0], "/src/a") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "Hg") || !strings.HasSuffix(lines[1], "/src/b") {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestPrintRootsEmpty(t *testing.T) {
	var buf bytes.Buffer
	printRoots(&buf, nil)
	if !strings.Contains(buf.String(), "no roots found") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrintReport(t *testing.T) {
	tests := []struct {
		name    string
		rep     report.Report
		want    []string
		notWant []string
	}{
		{
			name:    "clean",
			rep:     report.Report{Detected: []model.Root{model.NewRoot(model.KindGit, "/src/a")}},
			want:    []string{"1 detected", "up to date"},
			notWant: []string{"Unregistered", "Invalid", "Unreachable"},
		},
		{
			name: "sections",
			rep: report.Report{
				Detected:     []model.Root{model.NewRoot(model.KindGit, "/src/a")},
				Unregistered: []model.Root{model.NewRoot(model.KindGit, "/src/a")},
				Unreachable:  []model.Root{model.NewRoot(model.KindSvn, "/gone")},
			},
			want:    []string{"Unregistered", "(1)", "/src/a", "Unreachable", "/gone"},
			notWant: []string{"Invalid", "up to date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printReport(&buf, tt.rep)
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output contains %q:\n%s", w, out)
				}
			}
		})
	}
}
