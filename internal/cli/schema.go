// Package cli holds helpers shared by the scratch and scratchd commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const helpJSONFlag = "help-json"

// FlagSchema describes one flag in --help-json output.
type FlagSchema struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
	Inherited   bool   `json:"inherited,omitempty"`
}

// CommandSchema describes a command tree in --help-json output, so scripts
// can discover commands and flags without parsing help text.
type CommandSchema struct {
	Name        string          `json:"name"`
	Use         string          `json:"use,omitempty"`
	Aliases     []string        `json:"aliases,omitempty"`
	Description string          `json:"description,omitempty"`
	Long        string          `json:"long,omitempty"`
	Flags       []FlagSchema    `json:"flags,omitempty"`
	Subcommands []CommandSchema `json:"subcommands,omitempty"`
}

// GenerateSchema walks cmd and its visible subcommands.
func GenerateSchema(cmd *cobra.Command) CommandSchema {
	schema := CommandSchema{
		Name:        cmd.Name(),
		Use:         cmd.Use,
		Aliases:     cmd.Aliases,
		Description: cmd.Short,
		Long:        cmd.Long,
	}

	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if !skipFlag(f) {
			schema.Flags = append(schema.Flags, flagSchema(f, false))
		}
	})
	cmd.InheritedFlags().VisitAll(func(f *pflag.Flag) {
		if !skipFlag(f) {
			schema.Flags = append(schema.Flags, flagSchema(f, true))
		}
	})

	for _, sub := range cmd.Commands() {
		if sub.Hidden || sub.Name() == "help" || sub.Name() == "completion" {
			continue
		}
		schema.Subcommands = append(schema.Subcommands, GenerateSchema(sub))
	}

	return schema
}

func skipFlag(f *pflag.Flag) bool {
	return f.Name == helpJSONFlag || f.Name == "help"
}

// flagSchema reads the annotation cobra's MarkFlagRequired sets on the flag.
func flagSchema(f *pflag.Flag, inherited bool) FlagSchema {
	required := slices.Contains(f.Annotations[cobra.BashCompOneRequiredFlag], "true")
	return FlagSchema{
		Name:        f.Name,
		Shorthand:   f.Shorthand,
		Type:        f.Value.Type(),
		Default:     f.DefValue,
		Description: f.Usage,
		Required:    required,
		Inherited:   inherited,
	}
}

// WriteSchema writes cmd's schema as indented JSON.
func WriteSchema(w io.Writer, cmd *cobra.Command) error {
	data, err := json.MarshalIndent(GenerateSchema(cmd), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// AddHelpJSONFlag adds the --help-json flag to a command.
func AddHelpJSONFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool(helpJSONFlag, false, "Output command schema as JSON")
}

// CheckHelpJSON prints the schema of the command named before --help-json
// and exits. It runs ahead of Execute so required args and flags do not get
// in the way.
func CheckHelpJSON(rootCmd *cobra.Command) {
	i := slices.Index(os.Args, "--"+helpJSONFlag)
	if i < 0 {
		return
	}

	if err := WriteSchema(os.Stdout, findTargetCommand(rootCmd, os.Args[1:i])); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

func findTargetCommand(cmd *cobra.Command, args []string) *cobra.Command {
	for len(args) > 0 {
		next := -1
		for i, sub := range cmd.Commands() {
			if sub.Name() == args[0] || sub.HasAlias(args[0]) {
				next = i
				break
			}
		}
		if next < 0 {
			return cmd
		}
		cmd = cmd.Commands()[next]
		args = args[1:]
	}
	return cmd
}
