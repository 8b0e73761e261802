package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wasmkit/wasm-codec/wasm"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSections modelState = iota
	stateEntries
	stateHex
)

type inspectModel struct {
	err        error
	filename   string
	data       []byte
	sections   []wasm.SectionInfo
	module     *wasm.Module
	decodeErr  error
	selected   int
	state      modelState
	entryTitle string
	entries    []string
	hexView    string
	filter     textinput.Model
}

func newInspectModel(filename string) *inspectModel {
	filter := textinput.New()
	filter.Placeholder = "filter"
	filter.Prompt = "/ "
	filter.Width = 30
	return &inspectModel{
		filename: filename,
		state:    stateSections,
		filter:   filter,
	}
}

type loadedMsg struct {
	err       error
	data      []byte
	sections  []wasm.SectionInfo
	module    *wasm.Module
	decodeErr error
}

func (m *inspectModel) Init() tea.Cmd {
	return m.loadModule
}

func (m *inspectModel) loadModule() tea.Msg {
	data, err := os.ReadFile(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}

	sections, err := wasm.Sections(data)
	if err != nil {
		return loadedMsg{err: err}
	}

	// A full decode can fail on inputs a scan accepts; keep browsing the
	// raw sections in that case.
	module, decodeErr := wasm.ParseModule(data)

	return loadedMsg{data: data, sections: sections, module: module, decodeErr: decodeErr}
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateEntries && m.filter.Focused() {
			switch msg.String() {
			case "enter", "esc":
				m.filter.Blur()
				return m, nil
			case "ctrl+c":
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSections && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSections && m.selected < len(m.sections)-1 {
				m.selected++
			}

		case "/":
			if m.state == stateEntries {
				m.filter.Focus()
				return m, textinput.Blink
			}

		case "enter":
			if m.state == stateSections && len(m.sections) > 0 {
				m.openSection(m.sections[m.selected])
			}

		case "esc":
			if m.state != stateSections {
				m.state = stateSections
				m.entries = nil
				m.hexView = ""
				m.filter.SetValue("")
				m.filter.Blur()
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.data = msg.data
		m.sections = msg.sections
		m.module = msg.module
		m.decodeErr = msg.decodeErr
	}

	return m, nil
}

// openSection switches to a decoded entry list for sections the codec
// understands as name/type pairs, and a hex dump for everything else.
func (m *inspectModel) openSection(s wasm.SectionInfo) {
	if m.module != nil {
		switch s.ID {
		case wasm.SectionImport:
			if imports, err := m.module.ImportTypes(); err == nil {
				m.entryTitle = "Imports"
				m.entries = make([]string, 0, len(imports))
				for _, imp := range imports {
					m.entries = append(m.entries,
						nameStyle.Render(imp.Module+"."+imp.Name)+": "+typeStyle.Render(imp.Type.String()))
				}
				m.state = stateEntries
				return
			}
		case wasm.SectionExport:
			if exports, err := m.module.ExportTypes(); err == nil {
				m.entryTitle = "Exports"
				m.entries = make([]string, 0, len(exports))
				for _, exp := range exports {
					m.entries = append(m.entries,
						nameStyle.Render(exp.Name)+": "+typeStyle.Render(exp.Type.String()))
				}
				m.state = stateEntries
				return
			}
		case wasm.SectionType:
			m.entryTitle = "Types"
			m.entries = make([]string, 0, len(m.module.Types))
			for i, ft := range m.module.Types {
				m.entries = append(m.entries, fmt.Sprintf("%3d: %s", i, typeStyle.Render(ft.String())))
			}
			m.state = stateEntries
			return
		}
	}

	payload, err := wasm.ScanSection(m.data, s.ID)
	if err != nil || payload == nil {
		payload = nil
	}
	m.entryTitle = s.Name
	m.hexView = hex.Dump(payload)
	m.state = stateHex
}

func (m *inspectModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.sections == nil {
		return "Loading module..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("WASM Inspector"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSections:
		if m.decodeErr != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("decode: %v", m.decodeErr)))
			b.WriteString("\n\n")
		}
		b.WriteString("Sections:\n\n")
		for i, s := range m.sections {
			line := fmt.Sprintf("%2d %-10s offset %6d  size %6d", s.ID, s.Name, s.Offset, s.Size)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter open • q quit"))

	case stateEntries:
		b.WriteString(m.entryTitle)
		b.WriteString("\n\n")
		query := strings.ToLower(m.filter.Value())
		shown := 0
		for _, e := range m.entries {
			if query != "" && !strings.Contains(strings.ToLower(e), query) {
				continue
			}
			b.WriteString("  " + e + "\n")
			shown++
		}
		if shown == 0 {
			b.WriteString(helpStyle.Render("  (no entries)"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if m.filter.Focused() {
			b.WriteString(m.filter.View())
			b.WriteString("\n")
			b.WriteString(helpStyle.Render("enter apply • esc back"))
		} else {
			b.WriteString(helpStyle.Render("/ filter • esc back • q quit"))
		}

	case stateHex:
		b.WriteString(m.entryTitle)
		b.WriteString(" section payload\n\n")
		if m.hexView == "" {
			b.WriteString(helpStyle.Render("  (empty)"))
			b.WriteString("\n")
		} else {
			b.WriteString(m.hexView)
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("esc back • q quit"))
	}

	return b.String()
}

func runInteractive(filename string) error {
	p := tea.NewProgram(newInspectModel(filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
