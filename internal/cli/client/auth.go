package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// promptAPIKey reads a key from the terminal. Replaced in tests.
var promptAPIKey = defaultPromptAPIKey

// AuthCmd creates the auth parent command
func AuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication credentials",
		Long:  "Login, logout, and check authentication status for the scratch CLI",
	}

	cmd.AddCommand(authLoginCmd())
	cmd.AddCommand(authLogoutCmd())
	cmd.AddCommand(authStatusCmd())

	return cmd
}

func authLoginCmd() *cobra.Command {
	var apiKey string
	var apiURL string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with API key",
		Long:  "Store API key and URL in global config (~/.config/scratch/config.json). Prompts for the key when --key is omitted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogin(cmd.OutOrStdout(), apiKey, apiURL)
		},
	}

	cmd.Flags().StringVar(&apiKey, "key", "", "API key (scr_...)")
	cmd.Flags().StringVar(&apiURL, "url", defaultAPIURL, "API URL")

	return cmd
}

func authLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout and clear credentials",
		Long:  "Remove stored credentials from global config",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogout(cmd.OutOrStdout())
		},
	}
}

func authStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Long:  "Display where the active credentials come from",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			flagKey, _ := cmd.Flags().GetString("api-key")
			flagURL, _ := cmd.Flags().GetString("api-url")
			return runAuthStatus(cmd.OutOrStdout(), flagKey, flagURL, outputJSON)
		},
	}
}

func defaultPromptAPIKey() (string, error) {
	fmt.Fprint(os.Stderr, "Enter API key: ")

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}

	input, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

func runAuthLogin(w io.Writer, apiKey, apiURL string) error {
	if apiKey == "" {
		key, err := promptAPIKey()
		if err != nil {
			return fmt.Errorf("failed to read API key: %w", err)
		}
		apiKey = key
	}

	if !IsValidAPIKey(apiKey) {
		return fmt.Errorf("invalid API key format (expected: %s + 64 hex characters)", apiKeyPrefix)
	}
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	config := &GlobalConfig{
		APIKey: apiKey,
		APIURL: apiURL,
	}

	if err := SaveGlobalConfig(config); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	fmt.Fprintln(w, "Successfully logged in")
	return nil
}

func runAuthLogout(w io.Writer) error {
	if err := DeleteGlobalConfig(); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}

	fmt.Fprintln(w, "Successfully logged out")
	return nil
}

type authStatus struct {
	Authenticated bool   `json:"authenticated"`
	Source        string `json:"source"`
	APIKey        string `json:"api_key,omitempty"`
	APIURL        string `json:"api_url,omitempty"`
}

func runAuthStatus(w io.Writer, flagKey, flagURL string, outputJSON bool) error {
	source, apiKey, apiURL := GetCredentialSource(flagKey, flagURL)

	status := authStatus{
		Authenticated: source != SourceNone,
		Source:        string(source),
	}
	if status.Authenticated {
		status.APIKey = maskAPIKey(apiKey)
		status.APIURL = apiURL
	}

	if outputJSON {
		return writeJSON(w, status)
	}

	if !status.Authenticated {
		fmt.Fprintln(w, "Not authenticated")
		fmt.Fprintln(w, "Run 'scratch auth login' to authenticate")
		return nil
	}

	fmt.Fprintf(w, "Authenticated: yes\n")
	fmt.Fprintf(w, "Source: %s\n", status.Source)
	fmt.Fprintf(w, "API Key: %s\n", status.APIKey)
	fmt.Fprintf(w, "API URL: %s\n", status.APIURL)
	return nil
}

func maskAPIKey(key string) string {
	if len(key) < 12 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
