package client

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

// GetCmd creates the get command.
func GetCmd() *cobra.Command {
	var download string

	cmd := &cobra.Command{
		Use:     "get <note_id>",
		Short:   "Show a note by ID",
		Long:    "Retrieves a note by its ID and displays the full content. With --download the attachment is saved to the given path.",
		Aliases: []string{"view"},
		Args:    cobra.ExactArgs(1),
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

			ctx := cmd.Context()
			note, err := e.notes.GetNote(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get note: %w", err)
			}

			if download != "" {
				if !note.HasAttachment() {
					return fmt.Errorf("note %s has no attachment", note.ID)
				}
				link, err := e.notes.AttachmentDownloadURL(ctx, note.ID)
				if err != nil {
					return fmt.Errorf("failed to get attachment URL: %w", err)
				}
				if download == "." {
					download = filepath.Base(note.Attachment)
				}
				if err := e.api.DownloadFile(ctx, link.URL, download); err != nil {
					return err
				}
			}

			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), NoteFromDomain(note))
			}

			loc, err := e.settings.Location()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "ID: %s\n", note.ID)
			fmt.Fprintf(w, "Created: %s\n", note.CreatedAt.In(loc).Format(e.settings.TimeFormat))
			if note.HasAttachment() {
				fmt.Fprintf(w, "Attachment: %s\n", note.Attachment)
			}
			if download != "" {
				fmt.Fprintf(w, "Saved attachment to %s\n", download)
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "--- Content ---")
			fmt.Fprintln(w, note.Content)
			return nil
		},
	}

	cmd.Flags().StringVarP(&download, "download", "d", "", "Save the attachment to this path ('.' keeps its file name)")

	return cmd
}
