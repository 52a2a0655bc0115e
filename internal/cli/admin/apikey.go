package admin

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/scratch/internal/domain"
	"github.com/cloo-solutions/scratch/internal/repository"
)

func APIKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage API keys",
		Long:  "Create, list, and revoke API keys",
	}

	cmd.AddCommand(APIKeyCreateCmd())
	cmd.AddCommand(APIKeyListCmd())
	cmd.AddCommand(APIKeyRevokeCmd())

	return cmd
}

func APIKeyCreateCmd() *cobra.Command {
	var userRef, name, output string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new API key",
		Long:  "Create a new API key for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := getDBPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			userID, err := resolveUserID(ctx, repository.NewUserRepository(pool), userRef)
			if err != nil {
				return err
			}

			token, err := newAuthService(pool).CreateAPIKey(ctx, userID, name)
			if err != nil {
				return fmt.Errorf("failed to create API key: %w", err)
			}

			w := cmd.OutOrStdout()
			if output == "json" {
				return printJSON(w, map[string]string{
					"name":    name,
					"user_id": userID,
					"token":   token,
				})
			}
			fmt.Fprintf(w, "API key created for user %s\n", userID)
			fmt.Fprintf(w, "Key Name: %s\n", name)
			fmt.Fprintf(w, "Token: %s\n", token)
			fmt.Fprintln(w, "\nSave this token now. It cannot be shown again.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&userRef, "user", "u", "", "User ID or name (required)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "API key name (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text or json)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

type apiKeyOutput struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	UserID    string     `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at"`
	Revoked   bool       `json:"revoked"`
}

func APIKeyListCmd() *cobra.Command {
	var userRef, output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List API keys for a user",
		Long:  "List all API keys of a user, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := getDBPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			userID, err := resolveUserID(ctx, repository.NewUserRepository(pool), userRef)
			if err != nil {
				return err
			}

			keys, err := newAuthService(pool).ListAPIKeys(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to list API keys: %w", err)
			}
			return printAPIKeys(cmd.OutOrStdout(), userID, keys, output)
		},
	}

	cmd.Flags().StringVarP(&userRef, "user", "u", "", "User ID or name (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text or json)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func printAPIKeys(w io.Writer, userID string, keys []*domain.APIKey, output string) error {
	if output == "json" {
		items := make([]apiKeyOutput, len(keys))
		for i, key := range keys {
			items[i] = apiKeyOutput{
				ID:        key.ID,
				Name:      key.Name,
				UserID:    key.UserID,
				CreatedAt: key.CreatedAt,
				RevokedAt: key.RevokedAt,
				Revoked:   key.IsRevoked(),
			}
		}
		return printJSON(w, map[string]any{"items": items})
	}

	if len(keys) == 0 {
		fmt.Fprintf(w, "No API keys found for user %s\n", userID)
		return nil
	}
	fmt.Fprintf(w, "API keys for user %s:\n", userID)
	for _, key := range keys {
		fmt.Fprintf(w, "  %s: %s (%s, created: %s)\n", key.ID, key.Name, key.Status(), key.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func APIKeyRevokeCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "revoke <id>",
		Short: "Revoke an API key",
		Long:  "Revoke an API key by its ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			keyID := args[0]

			pool, err := getDBPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := newAuthService(pool).RevokeAPIKey(ctx, keyID); err != nil {
				return fmt.Errorf("failed to revoke API key: %w", err)
			}

			w := cmd.OutOrStdout()
			if output == "json" {
				return printJSON(w, map[string]any{"id": keyID, "revoked": true})
			}
			fmt.Fprintf(w, "API key %s revoked\n", keyID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text or json)")

	return cmd
}
