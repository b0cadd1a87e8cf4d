package cli

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"codelens/internal/core/app"
	"codelens/internal/core/ports"
	"codelens/internal/data/history"
)

func runUI(ctx context.Context, a *app.App, initial []ports.AnalysisResult, stats *history.Stats) error {
	m := initialModel(stats)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	a.SetUpdateHandler(func(u app.Update) {
		p.Send(updateMsg{results: u.Results, removed: u.Removed, failures: u.Failures})
	})
	defer a.SetUpdateHandler(nil)

	go p.Send(updateMsg{results: initial})

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
