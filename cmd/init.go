package cmd

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jackchuka/rootscan/internal/config"
	"github.com/jackchuka/rootscan/internal/model"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up rootscan config interactively",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

type initStep int

const (
	stepWelcome   initStep = iota
	stepOverwrite          // only if config exists
	stepRoots
	stepDepth
	stepKinds
	stepConfirm
	stepDone
)

var (
	styleInitTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("73"))
	styleInitSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("71"))
	styleInitWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("179"))
	styleInitDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

var initKinds = []model.Kind{model.KindGit, model.KindHg, model.KindSvn}

type initModel struct {
	step         initStep
	input        textinput.Model
	roots        []string
	warnings     map[int]string // index → warning message
	depth        int
	kinds        map[model.Kind]bool
	kindCursor   int
	configPath   string
	configExists bool
	invalid      string
	err          error
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := cfgFile
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}

	_, err := os.Stat(configPath)

	ti := textinput.New()
	ti.Placeholder = "~/src"
	ti.CharLimit = 256
	ti.Width = 50

	defaults := config.NewConfig()
	m := &initModel{
		step:         stepWelcome,
		input:        ti,
		warnings:     make(map[int]string),
		depth:        defaults.MaxDepth,
		kinds:        map[model.Kind]bool{model.KindGit: true, model.KindHg: true, model.KindSvn: true},
		configPath:   configPath,
		configExists: err == nil,
	}

	result, err := tea.NewProgram(m).Run()
	if err != nil {
		return err
	}
	if final, ok := result.(*initModel); ok && final.err != nil {
		return final.err
	}
	return nil
}

func (m *initModel) Init() tea.Cmd {
	return nil
}

func (m *initModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	key := keyMsg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.step {
	case stepWelcome:
		switch key {
		case "enter":
			if m.configExists {
				m.step = stepOverwrite
				return m, nil
			}
			return m, m.focusInput(stepRoots, "")
		case "q", "esc":
			return m, tea.Quit
		}

	case stepOverwrite:
		if key == "y" || key == "Y" {
			return m, m.focusInput(stepRoots, "")
		}
		return m, tea.Quit

	case stepRoots:
		switch key {
		case "enter":
			m.addRoot(strings.TrimSpace(m.input.Value()))
			return m, nil
		case "esc":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case stepDepth:
		switch key {
		case "enter":
			val := strings.TrimSpace(m.input.Value())
			if val != "" {
				n, err := strconv.Atoi(val)
				if err != nil || n < 0 {
					m.invalid = "  Depth must be a non-negative number"
					return m, nil
				}
				m.depth = n
			}
			m.invalid = ""
			m.input.Blur()
			m.step = stepKinds
			return m, nil
		case "esc":
			return m, m.focusInput(stepRoots, "")
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case stepKinds:
		switch key {
		case "up", "k":
			m.kindCursor = max(m.kindCursor-1, 0)
		case "down", "j":
			m.kindCursor = min(m.kindCursor+1, len(initKinds)-1)
		case " ", "x":
			kind := initKinds[m.kindCursor]
			m.kinds[kind] = !m.kinds[kind]
		case "enter":
			if len(m.selectedKinds()) == 0 {
				m.invalid = "  Select at least one kind"
				return m, nil
			}
			m.invalid = ""
			m.step = stepConfirm
		case "esc":
			return m, m.focusInput(stepDepth, strconv.Itoa(m.depth))
		}

	case stepConfirm:
		switch key {
		case "enter":
			cfg := config.NewConfig()
			cfg.ContentRoots = m.roots
			cfg.MaxDepth = m.depth
			cfg.Kinds = m.selectedKinds()
			m.err = config.Save(cfg, m.configPath)
			m.step = stepDone
			return m, tea.Quit
		case "esc":
			m.step = stepKinds
		}

	case stepDone:
		return m, tea.Quit
	}

	return m, nil
}

func (m *initModel) focusInput(step initStep, value string) tea.Cmd {
	m.step = step
	m.invalid = ""
	m.input.SetValue(value)
	m.input.Focus()
	return textinput.Blink
}

// addRoot records a content root, or moves on once at least one is entered.
func (m *initModel) addRoot(val string) {
	if val == "" {
		if len(m.roots) == 0 {
			m.invalid = "  Add at least one content root"
			return
		}
		m.focusInput(stepDepth, strconv.Itoa(m.depth))
		return
	}
	m.invalid = ""
	m.input.Reset()
	if slices.Contains(m.roots, val) {
		return
	}
	expanded, exists := expandAndCheck(val)
	m.roots = append(m.roots, val)
	if !exists {
		m.warnings[len(m.roots)-1] = fmt.Sprintf("  %s does not exist yet", expanded)
	}
}

func (m *initModel) selectedKinds() []model.Kind {
	var kinds []model.Kind
	for _, k := range initKinds {
		if m.kinds[k] {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func (m *initModel) View() string {
	var b strings.Builder

	switch m.step {
	case stepWelcome:
		b.WriteString(styleInitTitle.Render("Welcome to rootscan!"))
		b.WriteString("\n\nConfig will be saved to ")
		b.WriteString(styleInitDim.Render(m.configPath))
		b.WriteString("\n\n")
		b.WriteString(styleInitDim.Render("Press Enter to continue, Esc to cancel"))
		b.WriteString("\n")

	case stepOverwrite:
		b.WriteString(styleInitWarn.Render("Config already exists"))
		b.WriteString(" at ")
		b.WriteString(styleInitDim.Render(m.configPath))
		b.WriteString("\n\nOverwrite? ")
		b.WriteString(styleInitDim.Render("[y/N]"))
		b.WriteString("\n")

	case stepRoots:
		b.WriteString(styleInitTitle.Render("Content roots"))
		b.WriteString("\n\n")
		for i, p := range m.roots {
			b.WriteString(styleInitSuccess.Render("  + " + p))
			b.WriteString("\n")
			if w, ok := m.warnings[i]; ok {
				b.WriteString(styleInitWarn.Render(w))
				b.WriteString("\n")
			}
		}
		if len(m.roots) == 0 {
			b.WriteString("Enter a directory to search for working copies:\n")
		} else {
			b.WriteString("\nEnter another path (or press Enter to continue):\n")
		}
		b.WriteString(m.input.View())
		b.WriteString("\n")

	case stepDepth:
		b.WriteString(styleInitTitle.Render("Scan depth"))
		b.WriteString("\n\nHow many levels below each content root to search:\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")

	case stepKinds:
		b.WriteString(styleInitTitle.Render("Version-control systems"))
		b.WriteString("\n\n")
		for i, k := range initKinds {
			cursor := "  "
			if i == m.kindCursor {
				cursor = "> "
			}
			check := "[ ]"
			if m.kinds[k] {
				check = styleInitSuccess.Render("[x]")
			}
			fmt.Fprintf(&b, "%s%s %s\n", cursor, check, k)
		}
		b.WriteString("\n")
		b.WriteString(styleInitDim.Render("[Space] Toggle  [Enter] Continue  [Esc] Back"))
		b.WriteString("\n")

	case stepConfirm:
		b.WriteString(styleInitTitle.Render("Ready to write config"))
		fmt.Fprintf(&b, " with %d content root(s):\n\n", len(m.roots))
		for _, p := range m.roots {
			b.WriteString("  - " + p + "\n")
		}
		fmt.Fprintf(&b, "\n  depth: %d\n  kinds: %v\n\n", m.depth, m.selectedKinds())
		b.WriteString(styleInitDim.Render("[Enter] Write config  [Esc] Go back"))
		b.WriteString("\n")

	case stepDone:
		if m.err != nil {
			b.WriteString(styleInitWarn.Render("Error: " + m.err.Error()))
			b.WriteString("\n")
		} else {
			b.WriteString(styleInitSuccess.Render("Config saved to " + m.configPath))
			b.WriteString("\n\nRun ")
			b.WriteString(styleInitTitle.Render("rootscan scan"))
			b.WriteString(" to list your working copies.\n")
		}
	}

	if m.invalid != "" {
		b.WriteString(styleInitWarn.Render(m.invalid))
		b.WriteString("\n")
	}
	return b.String()
}

func expandAndCheck(path string) (expanded string, exists bool) {
	expanded = config.ExpandHome(path)
	_, err := os.Stat(expanded)
	return expanded, err == nil
}
