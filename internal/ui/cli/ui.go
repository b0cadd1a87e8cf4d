package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"codelens/internal/core/ports"
	"codelens/internal/data/history"
	"codelens/internal/engine/syntax"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type panelMode int

const (
	panelResults panelMode = iota
	panelDetails
)

// entry is the latest outcome for one watched file. failure is set when
// the file could not be analyzed.
type entry struct {
	result  ports.AnalysisResult
	failure string
}

type model struct {
	resultList list.Model
	mode       panelMode
	entries    map[string]entry
	paths      []string
	stats      *history.Stats
	showStats  bool
	lastUpdate time.Time
	removed    int

	selected         string
	sourceJumpStatus string
}

type updateMsg struct {
	results  []ports.AnalysisResult
	removed  []string
	failures map[string]string
}

type sourceJumpResultMsg struct {
	target string
	err    error
}

func initialModel(stats *history.Stats) model {
	resultList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	resultList.Title = "Analyzed Files"
	resultList.SetShowStatusBar(false)
	resultList.SetFilteringEnabled(true)

	return model{
		resultList: resultList,
		mode:       panelResults,
		entries:    make(map[string]entry),
		stats:      stats,
		lastUpdate: time.Now(),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return handleKeyActions(msg, m)
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		height := msg.Height - v - 8
		if height < 5 {
			height = 5
		}
		m.resultList.SetSize(msg.Width-h, height)
	case updateMsg:
		m = m.apply(msg)
	case sourceJumpResultMsg:
		if msg.err != nil {
			m.sourceJumpStatus = statusStyle.Render(fmt.Sprintf("Source jump failed: %v", msg.err))
		} else {
			m.sourceJumpStatus = statusStyle.Render(fmt.Sprintf("Opened source: %s", msg.target))
		}
	}

	var cmd tea.Cmd
	if m.mode == panelResults {
		m.resultList, cmd = m.resultList.Update(msg)
	}
	return m, cmd
}

// apply folds one watch batch into the model. Entries are keyed by path so
// a re-analyzed file replaces its previous outcome.
func (m model) apply(msg updateMsg) model {
	entries := make(map[string]entry, len(m.entries)+len(msg.results))
	for k, v := range m.entries {
		entries[k] = v
	}
	for _, res := range msg.results {
		entries[res.Path] = entry{result: res}
	}
	for path, reason := range msg.failures {
		entries[path] = entry{result: ports.AnalysisResult{Path: path}, failure: reason}
	}
	for _, path := range msg.removed {
		if _, ok := entries[path]; ok {
			delete(entries, path)
			m.removed++
		}
	}
	m.entries = entries
	m.lastUpdate = time.Now()

	m.paths = m.paths[:0:0]
	for path := range entries {
		m.paths = append(m.paths, path)
	}
	sort.Strings(m.paths)

	items := make([]list.Item, 0, len(m.paths))
	for _, path := range m.paths {
		items = append(items, item{title: path, desc: describe(entries[path])})
	}
	m.resultList.SetItems(items)

	if _, ok := entries[m.selected]; !ok && m.mode == panelDetails {
		m.mode = panelResults
		m.selected = ""
	}
	return m
}

func describe(e entry) string {
	if e.failure != "" {
		return "Failed: " + e.failure
	}
	res := e.result
	desc := fmt.Sprintf("%s | %s | %s", res.Syntax.Verdict, res.Complexity, res.Execution.Status)
	if n := len(res.Tokens.InvalidTokens); n > 0 {
		desc += fmt.Sprintf(" | %d invalid tokens", n)
	}
	return desc
}

func (m model) counts() (correct, incorrect, failed int) {
	for _, e := range m.entries {
		switch {
		case e.failure != "":
			failed++
		case e.result.Syntax.Verdict == syntax.Correct:
			correct++
		default:
			incorrect++
		}
	}
	return correct, incorrect, failed
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d files | %d removed",
		m.lastUpdate.Format("15:04:05"), len(m.entries), m.removed))

	correct, incorrect, failed := m.counts()
	var summary string
	if incorrect == 0 && failed == 0 {
		summary = successStyle.Render("All Correct")
	} else {
		summary = fmt.Sprintf("%s | %s | %s",
			successStyle.Render(fmt.Sprintf("%d correct", correct)),
			errorStyle.Render(fmt.Sprintf("%d incorrect", incorrect)),
			warnStyle.Render(fmt.Sprintf("%d failed", failed)))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("CodeLens Monitor"), status, summary)
	help := renderHelp(m)

	body := m.resultList.View()
	if m.mode == panelDetails {
		body = renderDetails(m)
	}
	if m.showStats {
		body += "\n\n" + renderStatsOverlay(m.stats)
	}
	if m.sourceJumpStatus != "" {
		body += "\n\n" + m.sourceJumpStatus
	}

	return docStyle.Render(header + "\n" + help + "\n\n" + body)
}
