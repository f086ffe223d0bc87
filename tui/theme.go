package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jackchuka/rootscan/internal/model"
)

// ANSI 256 color palette
var (
	// Status colors
	colorTrackedGreen = lipgloss.Color("71")
	colorPendingAmber = lipgloss.Color("179")
	colorDangerRed    = lipgloss.Color("167")
	colorCriticalRd   = lipgloss.Color("196")

	// Accent
	colorCyan = lipgloss.Color("73")
	colorGold = lipgloss.Color("220")

	// Text
	colorFg  = lipgloss.Color("253")
	colorDim = lipgloss.Color("242")

	// Selection
	colorSelBg = lipgloss.Color("238")
	colorSelFg = lipgloss.Color("255")

	colorBarEmpty = lipgloss.Color("238") // ░ empty bar segments
	colorTableHdr = lipgloss.Color("245") // table header text
	colorRowAlt   = lipgloss.Color("234") // alternating row bg
)

// Kind accents, one per VCS.
var kindColors = map[model.Kind]lipgloss.Color{
	model.KindGit: lipgloss.Color("208"),
	model.KindHg:  lipgloss.Color("69"),
	model.KindSvn: lipgloss.Color("140"),
}

// Left-border accent for new roots: flash bright/off, then fade out
var glowBorderColors = []lipgloss.Color{
	lipgloss.Color("46"),  // on
	lipgloss.Color("236"), // off
	lipgloss.Color("46"),  // on
	lipgloss.Color("236"), // off
	lipgloss.Color("46"),  // on
	lipgloss.Color("34"),  // fade
	lipgloss.Color("28"),  // fade
	lipgloss.Color("23"),  // fade
	lipgloss.Color("236"), // gone
}

// Braille spinner frames
var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// Unicode icons
const (
	iconTracked      = "●"
	iconUnregistered = "○"
	iconInvalid      = "⚠"
	iconUnreachable  = "✕"
	iconStar         = "★"
)

// Lipgloss styles
var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim      = lipgloss.NewStyle().Foreground(colorDim)
	styleRootName = lipgloss.NewStyle().Foreground(colorFg).Bold(true)
	styleTracked  = lipgloss.NewStyle().Foreground(colorTrackedGreen)
	stylePending  = lipgloss.NewStyle().Foreground(colorPendingAmber)
	styleInvalid  = lipgloss.NewStyle().Foreground(colorCriticalRd).Bold(true)
	styleMissing  = lipgloss.NewStyle().Foreground(colorDangerRed)

	styleBarEmpty = lipgloss.NewStyle().Foreground(colorBarEmpty)
	styleTableHdr = lipgloss.NewStyle().Foreground(colorTableHdr).Bold(true)

	styleKey       = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	styleActiveTab = lipgloss.NewStyle().Foreground(colorCyan).Bold(true).Underline(true)

	styleToastBox = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			Padding(0, 1)
)

func kindStyle(k model.Kind) lipgloss.Style {
	c, ok := kindColors[k]
	if !ok {
		c = colorFg
	}
	return lipgloss.NewStyle().Foreground(c)
}

// statusIcon returns the icon and style for a row status.
func statusIcon(s RowStatus) (string, lipgloss.Style) {
	switch s {
	case StatusUnregistered:
		return iconUnregistered, stylePending
	case StatusInvalid:
		return iconInvalid, styleInvalid
	case StatusUnreachable:
		return iconUnreachable, styleMissing
	default:
		return iconTracked, styleTracked
	}
}

func renderSpinner(frame int) string {
	f := spinnerFrames[frame%len(spinnerFrames)]
	return lipgloss.NewStyle().Foreground(colorCyan).Render(f)
}

func truncateWithEllipsis(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	if maxWidth <= 1 {
		return "…"
	}
	runes := []rune(s)
	for i := len(runes) - 1; i >= 0; i-- {
		candidate := string(runes[:i]) + "…"
		if lipgloss.Width(candidate) <= maxWidth {
			return candidate
		}
	}
	return "…"
}

// truncateLeft keeps the end of s, which is the informative part of a path.
func truncateLeft(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	for i := 1; i < len(runes); i++ {
		candidate := "…" + string(runes[i:])
		if lipgloss.Width(candidate) <= maxWidth {
			return candidate
		}
	}
	return "…"
}

func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
