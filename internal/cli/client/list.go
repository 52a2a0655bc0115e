package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/scratch/internal/views"
)

// ListCmd creates the list command.
func ListCmd() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List your notes",
		Long:    "Lists every note in the order the server returns them, optionally narrowed to notes containing --search.",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			home, err := e.homeView()
			if err != nil {
				return err
			}
			defer home.Close()

			if err := home.Sync(cmd.Context()); err != nil {
				return fmt.Errorf("list failed: %w", err)
			}
			home.SetSearchTerm(search)

			page := home.Render()
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), page)
			}
			printHomePage(cmd.OutOrStdout(), page)
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Only show notes containing this text (case-sensitive)")

	return cmd
}

func printHomePage(w io.Writer, page views.HomePage) {
	if !page.Authenticated {
		fmt.Fprintln(w, page.Lander.Title)
		fmt.Fprintln(w, page.Lander.Tagline)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Run 'scratch auth login' to sign in.")
		return
	}

	if page.Loading {
		fmt.Fprintln(w, "Loading...")
		return
	}

	notes := page.Items[1:]
	if len(notes) == 0 {
		if strings.TrimSpace(page.SearchTerm) != "" {
			fmt.Fprintf(w, "No notes contain %q.\n", page.SearchTerm)
		} else {
			fmt.Fprintln(w, "No notes yet. Create one with 'scratch add'.")
		}
		return
	}

	fmt.Fprintf(w, "Found %d notes:\n\n", len(notes))
	for i, item := range notes {
		title := firstLine(item.Title)
		if item.HasAttachment {
			title += " [attachment]"
		}
		fmt.Fprintf(w, "%d. %s\n", i+1, title)
		fmt.Fprintf(w, "   Created: %s\n", item.Created)
		fmt.Fprintf(w, "   ID: %s\n", item.NoteID)
		if i < len(notes)-1 {
			fmt.Fprintln(w, strings.Repeat("-", 40))
		}
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + "..."
	}
	return s
}
