package client

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/scratch/internal/views"
)

type bulkReplaceOutput struct {
	DryRun  bool               `json:"dry_run"`
	Matched int                `json:"matched"`
	Updated []string           `json:"updated"`
	Failed  []bulkFailedOutput `json:"failed,omitempty"`
}

type bulkFailedOutput struct {
	NoteID string `json:"note_id"`
	Error  string `json:"error"`
}

// BulkReplaceCmd creates the bulk-replace command.
func BulkReplaceCmd() *cobra.Command {
	var (
		concurrency int
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "bulk-replace <original> <replacement>",
		Short: "Replace text across all notes",
		Long: `Replaces every occurrence of <original> with <replacement> in every note.

Matching is literal and case-sensitive. Each matching note is written once.
If some writes fail, the others stay applied and the failed note IDs are listed.

Examples:
  scratch bulk-replace "colour" "color"
  scratch bulk-replace "TODO" "DONE" --dry-run`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()
			if err := e.requireAuth(); err != nil {
				return err
			}

			opts := e.settings.ReplaceOptions()
			if cmd.Flags().Changed("concurrency") {
				opts.MaxConcurrency = concurrency
			}

			if dryRun {
				return runBulkDryRun(cmd, e, args[0], args[1], outputJSON)
			}

			nav := &navigator{}
			form := views.NewBulkReplaceView(e.notes, nav, e.reporter, opts)
			defer form.Close()
			form.SetOriginalText(args[0])
			form.SetNewText(args[1])

			result, err := form.Submit(cmd.Context())
			if errors.Is(err, views.ErrFormIncomplete) {
				return fmt.Errorf("both <original> and <replacement> must be non-empty")
			}

			out := toBulkOutput(result, false)
			if outputJSON {
				if jerr := writeJSON(cmd.OutOrStdout(), out); jerr != nil {
					return jerr
				}
			} else {
				printBulkResult(cmd.OutOrStdout(), out)
			}

			if err != nil {
				return fmt.Errorf("bulk replace failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", views.DefaultMaxConcurrency, "Maximum parallel note updates (0 for unlimited)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List matching notes without changing them")

	return cmd
}

func runBulkDryRun(cmd *cobra.Command, e *env, original, replacement string, outputJSON bool) error {
	if original == "" || replacement == "" {
		return fmt.Errorf("both <original> and <replacement> must be non-empty")
	}

	notes, err := e.notes.ListNotes(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list notes: %w", err)
	}
	plan := views.PlanReplace(notes, original, replacement)

	if outputJSON {
		out := bulkReplaceOutput{DryRun: true, Matched: len(plan), Updated: []string{}}
		for _, r := range plan {
			out.Updated = append(out.Updated, r.Note.ID)
		}
		return writeJSON(cmd.OutOrStdout(), out)
	}

	w := cmd.OutOrStdout()
	if len(plan) == 0 {
		fmt.Fprintln(w, "No notes match.")
		return nil
	}
	fmt.Fprintf(w, "%d notes would change:\n\n", len(plan))
	for _, r := range plan {
		fmt.Fprintf(w, "%s\n  - %s\n  + %s\n", r.Note.ID, firstLine(r.Note.Content), firstLine(r.NewContent))
	}
	return nil
}

func toBulkOutput(result *views.ReplaceResult, dryRun bool) bulkReplaceOutput {
	out := bulkReplaceOutput{DryRun: dryRun, Updated: []string{}}
	if result == nil {
		return out
	}
	out.Matched = result.Matched
	out.Updated = append(out.Updated, result.Updated...)
	for _, f := range result.Failed {
		out.Failed = append(out.Failed, bulkFailedOutput{NoteID: f.NoteID, Error: f.Err.Error()})
	}
	return out
}

func printBulkResult(w io.Writer, out bulkReplaceOutput) {
	if out.Matched == 0 {
		fmt.Fprintln(w, "No notes match.")
		return
	}
	fmt.Fprintf(w, "Updated %d of %d matching notes.\n", len(out.Updated), out.Matched)
	for _, f := range out.Failed {
		fmt.Fprintf(w, "  failed %s: %s\n", f.NoteID, f.Error)
	}
}
