package client

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// AddCmd creates the add command.
func AddCmd() *cobra.Command {
	var attach string

	cmd := &cobra.Command{
		Use:   "add [content]",
		Short: "Create a note",
		Long: `Creates a note. Content comes from the argument or, when omitted, from stdin.

Examples:
  scratch add "Buy milk"
  echo "meeting notes" | scratch add
  scratch add "Receipt" --attach receipt.pdf`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			content, err := readContent(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()
			if err := e.requireAuth(); err != nil {
				return err
			}

			ctx := cmd.Context()
			var key string
			if attach != "" {
				contentType := mime.TypeByExtension(filepath.Ext(attach))
				if contentType == "" {
					contentType = "application/octet-stream"
				}
				upload, err := e.notes.AttachmentUploadURL(ctx, filepath.Base(attach), contentType)
				if err != nil {
					return fmt.Errorf("failed to get upload URL: %w", err)
				}
				if err := e.api.UploadFile(ctx, upload.URL, attach, contentType); err != nil {
					return err
				}
				key = upload.Key
			}

			note, err := e.notes.CreateNote(ctx, content, key)
			if err != nil {
				return fmt.Errorf("failed to create note: %w", err)
			}

			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), NoteFromDomain(note))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created note: %s\n", note.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&attach, "attach", "a", "", "File to attach to the note")

	return cmd
}

// DeleteCmd creates the delete command.
func DeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <note_id>",
		Short:   "Delete a note",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()
			if err := e.requireAuth(); err != nil {
				return err
			}

			if err := e.notes.DeleteNote(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete note: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted note: %s\n", args[0])
			return nil
		},
	}
}

func readContent(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		if args[0] == "" {
			return "", fmt.Errorf("note content must not be empty")
		}
		return args[0], nil
	}

	if f, ok := stdin.(*os.File); ok {
		if stat, err := f.Stat(); err == nil && stat.Mode()&os.ModeCharDevice != 0 {
			return "", fmt.Errorf("no content given: pass it as an argument or pipe it on stdin")
		}
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	content := strings.TrimRight(string(data), "\n")
	if content == "" {
		return "", fmt.Errorf("note content must not be empty")
	}
	return content, nil
}
