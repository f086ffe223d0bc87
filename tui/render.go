package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jackchuka/rootscan/internal/model"
)

func (m *Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	if m.showHelp {
		sections = append(sections, m.renderHelp())
		return lipgloss.Place(m.width, m.height, lipgloss.Left, lipgloss.Top,
			strings.Join(sections, "\n"))
	}

	sections = append(sections, m.renderSummaryPanel())
	sections = append(sections, m.renderTable())
	sections = append(sections, m.renderFooter())

	view := lipgloss.Place(m.width, m.height, lipgloss.Left, lipgloss.Top,
		strings.Join(sections, "\n"))

	// Overlay toasts bottom-right
	if len(m.toasts) > 0 {
		toast := m.renderToasts()
		x := m.width - lipgloss.Width(toast) - 2
		y := m.height - lipgloss.Height(toast) - 2
		view = placeOverlay(x, y, toast, view)
	}

	return view
}

func (m *Model) renderHeader() string {
	title := lipgloss.NewStyle().Foreground(lipgloss.Color("44")).Bold(true).Render("rootscan")

	var spinner string
	switch m.phase {
	case PhaseScanning:
		spinner = "  " + renderSpinner(m.anim.frame) + " Scanning..."
	case PhaseApplying:
		spinner = "  " + renderSpinner(m.anim.frame) + " Saving mappings..."
	}

	s := m.summary
	bold := lipgloss.NewStyle().Bold(true)
	stats := styleDim.Render("roots ") + bold.Foreground(lipgloss.Color("255")).Render(fmt.Sprintf("%d", s.Detected))
	if s.Unregistered > 0 {
		stats += "  " + styleDim.Render("new ") + bold.Foreground(colorPendingAmber).Render(fmt.Sprintf("%d", s.Unregistered))
	}
	if n := s.Invalid + s.Unreachable; n > 0 {
		stats += "  " + styleDim.Render("stale ") + bold.Foreground(colorDangerRed).Render(fmt.Sprintf("%d", n))
	}
	if !m.lastScan.IsZero() {
		stats += "  " + styleDim.Render(m.lastScan.Format(time.TimeOnly))
	}

	left := title + spinner
	if m.filterMode {
		left += "  " + m.filterInput.View()
	} else if m.filterText != "" {
		left += "  " + styleDim.Render("filter: "+m.filterText)
	}

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(stats), 1)
	line := left + strings.Repeat(" ", gap) + stats
	sep := styleDim.Render(strings.Repeat("─", m.width))

	return line + "\n" + sep
}

// --- Summary panel ---

type summaryRow struct {
	style lipgloss.Style
	label string
	value int
	color lipgloss.Color
}

func renderSummaryColumn(header string, rows []summaryRow, maxVal, barW int) string {
	col := styleTableHdr.Render(header)
	for _, r := range rows {
		col += "\n" + r.style.Render(r.label) + renderHBar(r.value, maxVal, barW, r.color)
	}
	return col
}

func (m *Model) renderSummaryPanel() string {
	s := m.summary
	if !m.scanned {
		return ""
	}

	barW := 12
	total := max(s.Detected+s.Invalid+s.Unreachable, 1)
	tracked := s.Detected - s.Unregistered

	statusCol := renderSummaryColumn("MAPPINGS", []summaryRow{
		{styleTracked, fmt.Sprintf(" tracked      %3d ", tracked), tracked, colorTrackedGreen},
		{stylePending, fmt.Sprintf(" unregistered %3d ", s.Unregistered), s.Unregistered, colorPendingAmber},
		{styleInvalid, fmt.Sprintf(" invalid      %3d ", s.Invalid), s.Invalid, colorCriticalRd},
		{styleMissing, fmt.Sprintf(" unreachable  %3d ", s.Unreachable), s.Unreachable, colorDangerRed},
	}, total, barW)

	kinds := []model.Kind{model.KindGit, model.KindHg, model.KindSvn}
	segments := make([]barSegment, len(kinds))
	kindCol := styleTableHdr.Render("KINDS") + "\n"
	for i, k := range kinds {
		segments[i] = barSegment{value: s.ByKind[k], color: kindColors[k]}
		kindCol += kindStyle(k).Render(fmt.Sprintf(" %-4s %3d", k, s.ByKind[k])) + "\n"
	}
	kindCol += " " + renderSegmentedBar(segments, barW, "")

	rootsCol := styleTableHdr.Render("CONTENT ROOTS")
	contentRoots := m.backend.ContentRoots()
	rootsW := max(m.width-lipgloss.Width(statusCol)-lipgloss.Width(kindCol)-8, 10)
	for i, r := range contentRoots {
		if i == 3 && len(contentRoots) > 4 {
			rootsCol += "\n" + styleDim.Render(fmt.Sprintf(" ...and %d more", len(contentRoots)-3))
			break
		}
		rootsCol += "\n " + styleDim.Render(truncateLeft(r, rootsW))
	}

	gap := "   "
	panel := lipgloss.JoinHorizontal(lipgloss.Top, statusCol, gap, kindCol, gap, rootsCol)

	sep := styleDim.Render(strings.Repeat("─", m.width))
	return panel + "\n" + sep
}

// --- Table ---

func (m *Model) renderTable() string {
	visRows := m.visibleRows()
	tableHeight := visRows + 1 // +1 for header

	if len(m.rows) == 0 {
		msg := "No roots found"
		switch {
		case !m.scanned:
			msg = "Waiting for the first scan"
		case m.filterText != "" || m.viewFilter != ViewAll:
			msg = "No roots match filter"
		}
		return padLines("\n "+styleDim.Render(msg), m.width, tableHeight)
	}

	cols := computeColumns(m.width)

	hdr := " " +
		styleTableHdr.Render(padRight("", 2)) +
		styleTableHdr.Render(padRight("KIND", cols.kind)) +
		styleTableHdr.Render(padRight("NAME", cols.name)) +
		styleTableHdr.Render(padRight("PATH", cols.path)) +
		styleTableHdr.Render(padRight("STATUS", cols.status))

	// Keep cursor in view
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+visRows {
		m.scrollOffset = m.cursor - visRows + 1
	}
	m.scrollOffset = max(m.scrollOffset, 0)

	end := min(m.scrollOffset+visRows, len(m.rows))

	tableLines := []string{hdr}
	for i := m.scrollOffset; i < end; i++ {
		tableLines = append(tableLines, m.renderTableRow(m.rows[i], cols, i == m.cursor, i%2 == 1))
	}
	for len(tableLines) < tableHeight {
		tableLines = append(tableLines, "")
	}
	return strings.Join(tableLines, "\n")
}

type columnWidths struct {
	kind   int
	name   int
	path   int
	status int
}

func computeColumns(width int) columnWidths {
	usable := max(width-4, 40) // leading space, icon, margin

	c := columnWidths{
		kind:   5,
		name:   usable * 22 / 100,
		status: 14,
	}
	c.name = max(c.name, 10)
	c.path = max(usable-c.kind-c.name-c.status, 10)
	return c
}

// --- Row rendering ---

// rowRenderer holds per-row styling state shared across cell renderers.
type rowRenderer struct {
	bg      func(lipgloss.Style) lipgloss.Style
	rowBg   lipgloss.Style
	hasGlow bool
	prefix  string
}

func (m *Model) newRowRenderer(root model.Root, selected, alt bool) rowRenderer {
	step, hasGlow := m.anim.glowFade[root]

	bg := func(base lipgloss.Style) lipgloss.Style {
		if selected {
			return base.Background(colorSelBg)
		}
		if alt {
			return base.Background(colorRowAlt)
		}
		return base
	}

	var prefix string
	if hasGlow {
		prefix = lipgloss.NewStyle().Foreground(glowBorderColors[step]).Render("▎")
	}

	return rowRenderer{
		bg:      bg,
		rowBg:   bg(lipgloss.NewStyle()),
		hasGlow: hasGlow,
		prefix:  prefix,
	}
}

func (r rowRenderer) nameCell(root model.Root, width int, selected bool) string {
	nameStyle := r.bg(styleRootName)
	if selected && !r.hasGlow {
		nameStyle = nameStyle.Foreground(colorSelFg)
	}
	return r.rowBg.Width(width).Render(nameStyle.Render(truncateWithEllipsis(root.DisplayName(), width-1)))
}

func (m *Model) renderTableRow(row TableRow, cols columnWidths, selected, alt bool) string {
	r := m.newRowRenderer(row.Root, selected, alt)

	leading := r.rowBg.Render(" ")
	if r.prefix != "" {
		leading = r.prefix
	}

	icon, iconStyle := statusIcon(row.Status)
	line := leading +
		r.rowBg.Width(2).Render(r.bg(iconStyle).Render(icon)) +
		r.rowBg.Width(cols.kind).Render(r.bg(kindStyle(row.Root.Kind)).Render(string(row.Root.Kind))) +
		r.nameCell(row.Root, cols.name, selected) +
		r.rowBg.Width(cols.path).Render(r.bg(styleDim).Render(truncateLeft(row.Root.Path, cols.path-1))) +
		r.rowBg.Width(cols.status).Render(r.bg(iconStyle).Render(row.Status.String()))

	return r.rowBg.Width(m.width).Render(line)
}

// --- Footer, toasts, help ---

func (m *Model) renderFooter() string {
	sep := styleDim.Render(strings.Repeat("─", m.width))

	type viewTab struct {
		key    string
		label  string
		filter ViewFilter
	}
	tabs := []viewTab{
		{"1", "all", ViewAll},
		{"2", "new", ViewUnregistered},
		{"3", "invalid", ViewInvalid},
		{"4", "unreachable", ViewUnreachable},
	}

	var parts []string
	parts = append(parts, styleKey.Render("/")+" search")
	parts = append(parts, styleKey.Render("a")+" register")
	parts = append(parts, styleKey.Render("i")+" ignore")
	parts = append(parts, styleKey.Render("x")+" remove")
	parts = append(parts, styleKey.Render("r")+" rescan")

	for _, t := range tabs {
		if m.viewFilter == t.filter {
			parts = append(parts, styleActiveTab.Render(t.key+" "+t.label))
		} else {
			parts = append(parts, styleKey.Render(t.key)+" "+t.label)
		}
	}

	parts = append(parts, styleKey.Render("?")+" help")
	parts = append(parts, styleKey.Render("q")+" quit")

	return sep + "\n " + truncateWithEllipsis(strings.Join(parts, "  "), m.width-2)
}

func (m *Model) renderToasts() string {
	var toastStrs []string
	for _, t := range m.toasts {
		var bc lipgloss.Color
		var icon string
		switch t.Level {
		case ToastSuccess:
			bc = colorGold
			icon = iconStar + " "
		case ToastError:
			bc = colorDangerRed
			icon = iconInvalid + " "
		default:
			bc = colorCyan
		}
		toastStrs = append(toastStrs, styleToastBox.BorderForeground(bc).Render(icon+t.Message))
	}
	return strings.Join(toastStrs, "\n")
}

func (m *Model) renderHelp() string {
	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(colorCyan).
		Padding(1, 2).
		Width(50).
		Render(styleTitle.Render("HELP") + "\n\n" + m.keys.helpText() + "\n\n" + styleDim.Render("press any key to close"))

	availH := max(m.height-4, 10)
	return lipgloss.Place(m.width, availH, lipgloss.Center, lipgloss.Center, box)
}

// --- Layout utilities ---

// placeOverlay writes fg on top of bg at the given column (x) and row (y).
// It handles ANSI-styled strings correctly using ansi.Cut.
func placeOverlay(x, y int, fg, bg string) string {
	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")
	x = max(x, 0)

	for i, fgLine := range fgLines {
		bgIdx := y + i
		if bgIdx < 0 || bgIdx >= len(bgLines) {
			continue
		}
		bgLine := bgLines[bgIdx]
		fgW := ansi.StringWidth(fgLine)
		bgW := ansi.StringWidth(bgLine)

		if x >= bgW {
			bgLines[bgIdx] = bgLine + strings.Repeat(" ", x-bgW) + fgLine
			continue
		}

		left := ansi.Cut(bgLine, 0, x)
		var right string
		if x+fgW < bgW {
			right = ansi.Cut(bgLine, x+fgW, bgW)
		}
		bgLines[bgIdx] = left + fgLine + right
	}
	return strings.Join(bgLines, "\n")
}

func padLines(content string, width, height int) string {
	lines := strings.Split(content, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w < width {
			lines[i] = line + strings.Repeat(" ", width-w)
		}
	}
	return strings.Join(lines, "\n")
}
