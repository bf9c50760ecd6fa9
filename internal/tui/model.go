package tui

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ppiankov/levovulns/internal/models"
)

// mode represents the current UI interaction mode.
type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeFilterCategory
)

const defaultTableHeight = 15

// Model is the top-level Bubble Tea model for the browse TUI.
type Model struct {
	// Data (immutable after init)
	report   *models.Report
	allVulns []models.Vulnerability

	// UI state
	table           table.Model
	searchInput     textinput.Model
	filteredVulns   []models.Vulnerability
	filters         filterState
	sortBy          sortField
	mode            mode
	categoryChoices []string
	riskChoices     []string
	categoryCursor  int
	width           int
	height          int
	statusMsg       string
	// clipboard is captured here for testing instead of writing to stdout
	clipboard string
}

// New creates a new TUI model from a report.
func New(report *models.Report) Model {
	vulns := make([]models.Vulnerability, len(report.Vulnerabilities))
	copy(vulns, report.Vulnerabilities)

	sortVulns(vulns, sortByRisk)
	t := newTable(buildRows(vulns), defaultTableHeight)

	ti := textinput.New()
	ti.Placeholder = "search..."
	ti.CharLimit = 64

	return Model{
		report:          report,
		allVulns:        vulns,
		filteredVulns:   vulns,
		table:           t,
		searchInput:     ti,
		sortBy:          sortByRisk,
		mode:            modeNormal,
		categoryChoices: uniqueCategories(vulns),
		riskChoices:     uniqueRisks(vulns),
		width:           80,
		height:          24,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		tableH := msg.Height - headerHeight - detailHeight - 3
		if tableH < 3 {
			tableH = 3
		}
		m.table.SetHeight(tableH)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	switch m.mode {
	case modeSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	default:
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeFilterCategory:
		return m.handleFilterCategoryKey(msg)
	default:
		return m.handleNormalKey(msg)
	}
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Search):
		m.mode = modeSearch
		m.searchInput.Focus()
		return m, textinput.Blink
	case key.Matches(msg, keys.FilterCategory):
		m.mode = modeFilterCategory
		m.categoryCursor = 0
		return m, nil
	case key.Matches(msg, keys.FilterRisk):
		m.filters.Risk = nextRisk(m.riskChoices, m.filters.Risk)
		m.rebuildTable()
		if m.filters.Risk != "" {
			m.statusMsg = fmt.Sprintf("Risk: %s", m.filters.Risk)
		} else {
			m.statusMsg = ""
		}
		return m, nil
	case key.Matches(msg, keys.Sort):
		m.sortBy = (m.sortBy + 1) % sortField(sortFieldCount)
		m.rebuildTable()
		m.statusMsg = fmt.Sprintf("Sort: %s", sortFieldName(m.sortBy))
		return m, nil
	case key.Matches(msg, keys.Copy):
		m.copySelected()
		return m, nil
	case key.Matches(msg, keys.ClearFilter):
		m.filters = filterState{}
		m.statusMsg = ""
		m.rebuildTable()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filters.SearchText = m.searchInput.Value()
		m.mode = modeNormal
		m.searchInput.Blur()
		m.rebuildTable()
		return m, nil
	case "esc":
		m.mode = modeNormal
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleFilterCategoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.categoryCursor > 0 {
			m.categoryCursor--
		}
	case "down", "j":
		if m.categoryCursor < len(m.categoryChoices) {
			m.categoryCursor++
		}
	case "enter":
		if m.categoryCursor == 0 {
			m.filters.Category = ""
		} else if m.categoryCursor <= len(m.categoryChoices) {
			m.filters.Category = m.categoryChoices[m.categoryCursor-1]
		}
		m.mode = modeNormal
		m.rebuildTable()
		if m.filters.Category != "" {
			m.statusMsg = fmt.Sprintf("Filter: %s", m.filters.Category)
		} else {
			m.statusMsg = ""
		}
	case "esc":
		m.mode = modeNormal
	}
	return m, nil
}

func (m *Model) rebuildTable() {
	filtered := applyFilters(m.allVulns, m.filters)
	sortVulns(filtered, m.sortBy)
	m.filteredVulns = filtered
	m.table.SetRows(buildRows(filtered))
}

func (m *Model) selected() *models.Vulnerability {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.filteredVulns) {
		return nil
	}
	return &m.filteredVulns[cursor]
}

// copySelected writes the selected vulnerability to clipboard via OSC 52.
func (m *Model) copySelected() {
	v := m.selected()
	if v == nil {
		m.statusMsg = "Nothing to copy"
		return
	}
	text := fmt.Sprintf("[%s] %s › %s", riskLabel(v.Risk), v.Endpoint, v.TestCaseName)
	if code := v.CWECode(); code != "" {
		text += " (" + code + ")"
	}
	if e := v.EvidenceText(); e != "" {
		text += " -- " + e
	}
	m.clipboard = text
	m.statusMsg = "Copied!"
	// OSC 52 clipboard escape: works in most modern terminals
	fmt.Printf("\033]52;c;%s\a", base64.StdEncoding.EncodeToString([]byte(text)))
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(renderHeader(m.report, m.width))
	b.WriteString("\n")

	if m.mode == modeSearch {
		b.WriteString(styleSearchPrompt.Render("/ "))
		b.WriteString(m.searchInput.View())
		b.WriteString("\n")
	}

	if m.mode == modeFilterCategory {
		b.WriteString(m.renderCategoryFilter())
		b.WriteString("\n")
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")

	b.WriteString(renderDetail(m.selected(), m.width))
	b.WriteString("\n")

	b.WriteString(m.renderFooter())

	return b.String()
}

func (m *Model) renderCategoryFilter() string {
	var b strings.Builder
	b.WriteString("Filter by category:\n")

	options := append([]string{"All"}, m.categoryChoices...)
	for i, opt := range options {
		cursor := "  "
		if i == m.categoryCursor {
			cursor = "> "
		}
		b.WriteString(fmt.Sprintf("%s%s\n", cursor, opt))
	}
	return b.String()
}

func (m *Model) renderFooter() string {
	left := "q:quit  /:search  f:category  r:risk  s:sort  c:copy  esc:clear"
	right := fmt.Sprintf("%d/%d vulnerabilities", len(m.filteredVulns), len(m.allVulns))

	if m.statusMsg != "" {
		right = m.statusMsg + "  " + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return styleFooter.Render(left + strings.Repeat(" ", gap) + right)
}

// Run starts the Bubble Tea program. Called from the browse command.
func Run(report *models.Report) error {
	m := New(report)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
