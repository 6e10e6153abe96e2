package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/statement-flow/internal/statement"
	tea "github.com/charmbracelet/bubbletea"
)

// Run opens the statement browser and blocks until the user quits or ctx is
// canceled.
func Run(ctx context.Context, session *statement.Session, opts ...Option) error {
	m, err := New(ctx, session, opts...)
	if err != nil {
		return fmt.Errorf("failed to create statement browser: %w", err)
	}

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if m.config.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	if _, err := tea.NewProgram(m, programOpts...).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("statement browser failed: %w", err)
	}
	return nil
}
