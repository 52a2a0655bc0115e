package client

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/cloo-solutions/scratch/internal/tui"
)

// BrowseCmd creates the interactive browse command.
func BrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse and edit notes interactively",
		Long: `Opens a terminal UI with your notes.

Keys:
  /      search notes (case-sensitive)
  enter  open the selected note
  b      bulk replace text across all notes
  r      reload
  q      quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			loc, err := e.settings.Location()
			if err != nil {
				return err
			}

			model := tui.New(tui.Deps{
				Store:      e.notes,
				Creator:    e.notes,
				Session:    e.session,
				Reporter:   e.reporter,
				TimeLayout: e.settings.TimeFormat,
				Location:   loc,
				Replace:    e.settings.ReplaceOptions(),
			})

			final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			if m, ok := final.(tui.Model); ok {
				m.Close()
			}
			if err != nil {
				return fmt.Errorf("terminal UI failed: %w", err)
			}
			return nil
		},
	}
}
