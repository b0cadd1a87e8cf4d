package cli

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func handleKeyActions(msg tea.KeyMsg, m model) (tea.Model, tea.Cmd) {
	// Let the list consume keys while its filter input is open.
	if m.mode == panelResults && m.resultList.SettingFilter() {
		var cmd tea.Cmd
		m.resultList, cmd = m.resultList.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "s":
		m.showStats = !m.showStats
		return m, nil
	case "o":
		path := m.focusedPath()
		if path == "" || strings.HasPrefix(path, "<") {
			m.sourceJumpStatus = statusStyle.Render("No source file available.")
			return m, nil
		}
		return m, jumpToSourceCmd(sourceTarget{file: path, line: 1})
	}

	if m.mode == panelDetails {
		switch msg.String() {
		case "esc", "backspace":
			m.mode = panelResults
			m.selected = ""
		}
		return m, nil
	}

	if msg.String() == "enter" {
		if path := m.focusedPath(); path != "" {
			m.selected = path
			m.mode = panelDetails
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

// focusedPath is the open detail file, or the highlighted list row.
func (m model) focusedPath() string {
	if m.mode == panelDetails {
		return m.selected
	}
	if it, ok := m.resultList.SelectedItem().(item); ok {
		return it.title
	}
	return ""
}

type sourceTarget struct {
	file string
	line int
}

func jumpToSourceCmd(target sourceTarget) tea.Cmd {
	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	args := []string{target.file}
	if strings.Contains(editor, "vim") || strings.Contains(editor, "nvim") || strings.HasSuffix(editor, "/vi") || editor == "vi" {
		args = []string{fmt.Sprintf("+%d", target.line), target.file}
	}
	cmd := exec.Command(editor, args...)
	label := fmt.Sprintf("%s:%d", target.file, target.line)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return sourceJumpResultMsg{target: label, err: err}
	})
}
