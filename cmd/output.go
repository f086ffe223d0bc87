package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/jackchuka/rootscan/internal/model"
	"github.com/jackchuka/rootscan/internal/report"
)

var (
	styleKind    = lipgloss.NewStyle().Foreground(lipgloss.Color("73")).Width(4)
	styleSection = lipgloss.NewStyle().Bold(true)
	styleOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("71"))
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("179"))
	styleBad     = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
	styleNone    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

func printRoots(w io.Writer, roots []model.Root) {
	if len(roots) == 0 {
		fmt.Fprintln(w, styleNone.Render("no roots found"))
		return
	}
	for _, r := range roots {
		fmt.Fprintf(w, "%s %s\n", styleKind.Render(string(r.Kind)), r.Path)
	}
}

func printReport(w io.Writer, rep report.Report) {
	fmt.Fprintf(w, "%s %d detected\n", styleOK.Render("●"), len(rep.Detected))
	if rep.Clean() {
		fmt.Fprintln(w, styleOK.Render("mappings are up to date"))
		return
	}
	printSection(w, "Unregistered", styleWarn, rep.Unregistered)
	printSection(w, "Invalid", styleBad, rep.Invalid)
	printSection(w, "Unreachable", styleBad, rep.Unreachable)
}

func printSection(w io.Writer, title string, style lipgloss.Style, roots []model.Root) {
	if len(roots) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s %s\n", styleSection.Render(title), style.Render(fmt.Sprintf("(%d)", len(roots))))
	for _, r := range roots {
		fmt.Fprintf(w, "  %s %s\n", styleKind.Render(string(r.Kind)), r.Path)
	}
}
