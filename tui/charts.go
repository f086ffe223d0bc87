package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// withBg applies a background color to a style when bg is non-empty.
func withBg(s lipgloss.Style, bg lipgloss.Color) lipgloss.Style {
	if bg != "" {
		return s.Background(bg)
	}
	return s
}

// renderHBar renders a single-color horizontal bar.
// Returns: "████░░░░" with value/maxValue proportion filled.
func renderHBar(value, maxValue, width int, fg lipgloss.Color) string {
	if maxValue <= 0 || width <= 0 {
		return ""
	}
	value = min(max(value, 0), maxValue)

	filled := value * width / maxValue
	if filled == 0 && value > 0 {
		filled = 1
	}
	empty := width - filled

	var b strings.Builder
	if filled > 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(fg).Render(strings.Repeat("█", filled)))
	}
	if empty > 0 {
		b.WriteString(styleBarEmpty.Render(strings.Repeat("░", empty)))
	}
	return b.String()
}

type barSegment struct {
	value int
	color lipgloss.Color
}

// segmentWidths splits width across segments in proportion to their values.
// The rounding remainder goes to the largest segment.
func segmentWidths(segments []barSegment, width int) []int {
	widths := make([]int, len(segments))
	total := 0
	for _, s := range segments {
		total += max(s.value, 0)
	}
	if total == 0 || width <= 0 {
		return widths
	}

	used, largest := 0, 0
	for i, s := range segments {
		widths[i] = max(s.value, 0) * width / total
		used += widths[i]
		if s.value > segments[largest].value {
			largest = i
		}
	}
	widths[largest] += width - used
	return widths
}

// renderSegmentedBar renders one bar made of colored segments, such as the
// share of each VCS kind among detected roots.
func renderSegmentedBar(segments []barSegment, width int, bg lipgloss.Color) string {
	widths := segmentWidths(segments, width)

	var b strings.Builder
	drawn := 0
	for i, s := range segments {
		if widths[i] == 0 {
			continue
		}
		b.WriteString(withBg(lipgloss.NewStyle().Foreground(s.color), bg).Render(strings.Repeat("█", widths[i])))
		drawn += widths[i]
	}
	if drawn == 0 && width > 0 {
		return withBg(styleBarEmpty, bg).Render(strings.Repeat("░", width))
	}
	return b.String()
}
