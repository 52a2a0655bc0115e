package admin

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/scratch/internal/service"
)

func UserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
		Long:  "Create and list users",
	}

	cmd.AddCommand(UserCreateCmd())
	cmd.AddCommand(UserListCmd())

	return cmd
}

type userOutput struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Token     string    `json:"token,omitempty"`
}

func UserCreateCmd() *cobra.Command {
	var (
		output  string
		keyName string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new user",
		Long:  "Create a new user. With --key-name a first API key is issued in the same transaction.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := getDBPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			return runUserCreate(ctx, cmd.OutOrStdout(), newAuthService(pool), args[0], keyName, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text or json)")
	cmd.Flags().StringVar(&keyName, "key-name", "", "Also create an API key with this name")

	return cmd
}

func runUserCreate(ctx context.Context, w io.Writer, svc *service.AuthService, name, keyName, output string) error {
	var out userOutput
	if keyName != "" {
		user, token, err := svc.CreateUserWithKey(ctx, name, keyName)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		out = userOutput{ID: user.ID, Name: user.Name, CreatedAt: user.CreatedAt, Token: token}
	} else {
		user, err := svc.CreateUser(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		out = userOutput{ID: user.ID, Name: user.Name, CreatedAt: user.CreatedAt}
	}

	if output == "json" {
		return printJSON(w, out)
	}

	fmt.Fprintf(w, "User created: %s (%s)\n", out.Name, out.ID)
	if out.Token != "" {
		fmt.Fprintf(w, "Token: %s\n", out.Token)
		fmt.Fprintln(w, "\nSave this token now. It cannot be shown again.")
	}
	return nil
}

func UserListCmd() *cobra.Command {
	var (
		output string
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Long:  "List users, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := getDBPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			result, err := newAuthService(pool).ListUsers(ctx, service.ListUsersInput{Cursor: cursor, Limit: limit})
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}
			return printUsers(cmd.OutOrStdout(), result, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text or json)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func printUsers(w io.Writer, result *service.ListUsersOutput, output string) error {
	if output == "json" {
		items := make([]userOutput, len(result.Items))
		for i, u := range result.Items {
			items[i] = userOutput{ID: u.ID, Name: u.Name, CreatedAt: u.CreatedAt}
		}
		return printJSON(w, map[string]any{
			"items":    items,
			"cursor":   result.Cursor,
			"has_more": result.HasMore,
		})
	}

	if len(result.Items) == 0 {
		fmt.Fprintln(w, "No users found")
		return nil
	}
	fmt.Fprintln(w, "Users:")
	for _, u := range result.Items {
		fmt.Fprintf(w, "  %s: %s (created: %s)\n", u.ID, u.Name, u.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	if result.HasMore && result.Cursor != "" {
		fmt.Fprintf(w, "\nMore results available. Use --cursor %s\n", result.Cursor)
	}
	return nil
}
