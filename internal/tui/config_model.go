package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/geminichat/internal/config"
	"github.com/diogo/geminichat/internal/render"
)

// configView represents the current view in the settings menu
type configView int

const (
	viewMain configView = iota
	viewMarkdownSelect
	viewThemeSelect
)

// Menu item indices for main view
const (
	menuVerbose = iota
	menuCopyToClipboard
	menuMarkdownStyle
	menuTUITheme
	menuExit
	menuItemCount
)

// feedbackClearMsg is sent to clear feedback messages
type feedbackClearMsg struct{}

// ConfigModel is the interactive settings editor
type ConfigModel struct {
	config     config.Config
	configPath string
	save       func(config.Config) error

	// Navigation
	view          configView
	cursor        int
	styleCursor   int
	themeCursor   int
	markdownNames []string
	themeNames    []string

	feedback        string
	feedbackTimeout time.Duration

	width  int
	height int
	ready  bool
}

// NewConfigModel creates a settings editor for cfg. Every change is written
// with config.SaveConfig.
func NewConfigModel(cfg config.Config) ConfigModel {
	configPath, _ := config.GetConfigPath()

	markdownNames := make([]string, 0)
	for _, s := range render.MarkdownStyles() {
		markdownNames = append(markdownNames, s.Name)
	}
	themeNames := render.ThemeNames()

	ApplyTheme(cfg.TUITheme)

	return ConfigModel{
		config:          cfg,
		configPath:      configPath,
		save:            config.SaveConfig,
		markdownNames:   markdownNames,
		themeNames:      themeNames,
		styleCursor:     indexOf(markdownNames, cfg.Markdown.Style),
		themeCursor:     indexOf(themeNames, cfg.TUITheme),
		feedbackTimeout: 2 * time.Second,
	}
}

func indexOf(list []string, value string) int {
	for i, v := range list {
		if v == value {
			return i
		}
	}
	return 0
}

// Config returns the settings as currently edited
func (m ConfigModel) Config() config.Config {
	return m.config
}

// Init initializes the model
func (m ConfigModel) Init() tea.Cmd {
	return nil
}

// clearFeedback returns a command that clears the feedback message after a delay
func clearFeedback(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return feedbackClearMsg{}
	})
}

// Update handles messages and updates the model
func (m ConfigModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case feedbackClearMsg:
		m.feedback = ""

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if m.view != viewMain {
				m.view = viewMain
				return m, nil
			}
			return m, tea.Quit

		case "up", "k":
			m.moveCursor(-1)

		case "down", "j":
			m.moveCursor(1)

		case "enter", " ":
			return m.handleSelect()
		}
	}

	return m, nil
}

func (m *ConfigModel) moveCursor(delta int) {
	wrap := func(v, n int) int {
		return ((v % n) + n) % n
	}
	switch m.view {
	case viewMain:
		m.cursor = wrap(m.cursor+delta, menuItemCount)
	case viewMarkdownSelect:
		m.styleCursor = wrap(m.styleCursor+delta, len(m.markdownNames))
	case viewThemeSelect:
		m.themeCursor = wrap(m.themeCursor+delta, len(m.themeNames))
	}
}

// handleSelect handles menu item selection
func (m ConfigModel) handleSelect() (tea.Model, tea.Cmd) {
	switch m.view {
	case viewMain:
		switch m.cursor {
		case menuVerbose:
			m.config.Verbose = !m.config.Verbose
			return m.persist(fmt.Sprintf("Verbose logging %s", onOff(m.config.Verbose)))
		case menuCopyToClipboard:
			m.config.CopyToClipboard = !m.config.CopyToClipboard
			return m.persist(fmt.Sprintf("Copy to clipboard %s", onOff(m.config.CopyToClipboard)))
		case menuMarkdownStyle:
			m.view = viewMarkdownSelect
		case menuTUITheme:
			m.view = viewThemeSelect
		case menuExit:
			return m, tea.Quit
		}

	case viewMarkdownSelect:
		m.config.Markdown.Style = m.markdownNames[m.styleCursor]
		m.view = viewMain
		return m.persist("Markdown style set to " + m.config.Markdown.Style)

	case viewThemeSelect:
		m.config.TUITheme = m.themeNames[m.themeCursor]
		ApplyTheme(m.config.TUITheme)
		m.view = viewMain
		return m.persist("TUI theme set to " + m.config.TUITheme)
	}

	return m, nil
}

func (m ConfigModel) persist(success string) (tea.Model, tea.Cmd) {
	if err := m.save(m.config); err != nil {
		m.feedback = fmt.Sprintf("Error: %v", err)
	} else {
		m.feedback = success
	}
	return m, clearFeedback(m.feedbackTimeout)
}

func onOff(v bool) string {
	if v {
		return "enabled"
	}
	return "disabled"
}

// View renders the settings menu
func (m ConfigModel) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	sections := []string{
		headerStyle.Width(contentWidth).Render(titleStyle.Render("✦ Configuration")),
		configPanelStyle.Width(contentWidth).Render(lipgloss.JoinVertical(lipgloss.Left,
			configSectionStyle.Render("Paths"),
			"   Config:  "+configPathStyle.Render(m.configPath),
			"   Backend: "+configPathStyle.Render(m.config.BackendURL),
		)),
	}

	var body string
	switch m.view {
	case viewMain:
		body = m.renderMainMenu()
	case viewMarkdownSelect:
		body = m.renderMarkdownSelect()
	case viewThemeSelect:
		body = m.renderThemeSelect()
	}
	sections = append(sections, configPanelStyle.Width(contentWidth).Render(body))

	if m.feedback != "" {
		sections = append(sections, noticeStyle.Render("✓ "+m.feedback))
	}

	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ConfigModel) menuLine(selected bool, label, value string) string {
	cursor := "  "
	style := configItemStyle
	if selected {
		cursor = configCursorStyle.Render("▸ ")
		style = configSelectedStyle
	}
	if value == "" {
		return cursor + style.Render(label)
	}
	return cursor + style.Render(fmt.Sprintf("%-20s", label)) + value
}

// renderMainMenu renders the main settings menu
func (m ConfigModel) renderMainMenu() string {
	items := []string{
		configSectionStyle.Render("⚙ Settings"),
		"",
		m.menuLine(m.cursor == menuVerbose, "Verbose Logging", renderBool(m.config.Verbose)),
		m.menuLine(m.cursor == menuCopyToClipboard, "Copy to Clipboard", renderBool(m.config.CopyToClipboard)),
		m.menuLine(m.cursor == menuMarkdownStyle, "Markdown Style", configValueStyle.Render(m.config.Markdown.Style)),
		m.menuLine(m.cursor == menuTUITheme, "TUI Theme", configValueStyle.Render(m.config.TUITheme)),
		"",
		m.menuLine(m.cursor == menuExit, "Exit", ""),
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (m ConfigModel) renderMarkdownSelect() string {
	items := []string{configSectionStyle.Render("Select Markdown Style"), ""}
	for i, s := range render.MarkdownStyles() {
		line := m.menuLine(i == m.styleCursor, s.Name+" - "+s.Description, "")
		if s.Name == m.config.Markdown.Style {
			line += configValueStyle.Render(" (current)")
		}
		items = append(items, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (m ConfigModel) renderThemeSelect() string {
	items := []string{configSectionStyle.Render("Select TUI Theme"), ""}
	for i, name := range m.themeNames {
		theme, _ := render.LookupTheme(name)
		line := m.menuLine(i == m.themeCursor, theme.Name+" - "+theme.Description, "")
		if name == m.config.TUITheme {
			line += configValueStyle.Render(" (current)")
		}
		items = append(items, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func renderBool(value bool) string {
	if value {
		return configEnabledStyle.Render("enabled")
	}
	return configDisabledStyle.Render("disabled")
}

// renderStatusBar renders the bottom status bar
func (m ConfigModel) renderStatusBar(width int) string {
	escDesc := "Exit"
	if m.view != viewMain {
		escDesc = "Back"
	}
	shortcuts := [][2]string{
		{"↑↓", "Navigate"},
		{"Enter", "Select"},
		{"Esc", escDesc},
	}

	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s[0])+statusDescStyle.Render(" "+s[1]))
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// RunConfig starts the settings editor
func RunConfig(cfg config.Config) error {
	p := tea.NewProgram(
		NewConfigModel(cfg),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
