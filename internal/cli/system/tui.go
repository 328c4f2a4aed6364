package system

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/carelog/internal/cli"
	"github.com/julianstephens/carelog/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Load(bg); err != nil {
		return err
	}
	ctx.PerformAutomaticBackup()

	answers, err := ctx.Answers(bg)
	if err != nil {
		return err
	}

	m := tui.NewModel(bg, tui.Deps{
		Medicines: ctx.Book.Medicines,
		Scheduler: ctx.Scheduler,
		Answers:   answers,
		Location:  ctx.Location,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}
