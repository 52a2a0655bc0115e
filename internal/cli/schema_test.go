package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree() *cobra.Command {
	root := &cobra.Command{Use: "scratch", Short: "notes"}
	root.PersistentFlags().Bool("output", false, "Output as JSON")
	AddHelpJSONFlag(root)

	list := &cobra.Command{Use: "list", Aliases: []string{"ls"}, Short: "List notes", Run: func(*cobra.Command, []string) {}}
	list.Flags().StringP("search", "s", "", "Only matching notes")

	key := &cobra.Command{Use: "apikey", Short: "Manage keys"}
	create := &cobra.Command{Use: "create", Short: "Create a key", Run: func(*cobra.Command, []string) {}}
	create.Flags().String("user", "", "User")
	_ = create.MarkFlagRequired("user")
	key.AddCommand(create)

	hidden := &cobra.Command{Use: "debug", Hidden: true, Run: func(*cobra.Command, []string) {}}

	root.AddCommand(list, key, hidden)
	return root
}

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema(testTree())

	assert.Equal(t, "scratch", schema.Name)
	require.Len(t, schema.Subcommands, 2, "hidden commands are skipped")
	for _, f := range schema.Flags {
		assert.NotEqual(t, "help-json", f.Name)
	}

	list := schema.Subcommands[1]
	assert.Equal(t, "list", list.Name)
	assert.Equal(t, []string{"ls"}, list.Aliases)

	var names []string
	for _, f := range list.Flags {
		names = append(names, f.Name)
		if f.Name == "output" {
			assert.True(t, f.Inherited)
		}
	}
	assert.ElementsMatch(t, []string{"search", "output"}, names)
}

func TestGenerateSchema_RequiredFlag(t *testing.T) {
	schema := GenerateSchema(testTree())

	create := schema.Subcommands[0].Subcommands[0]
	require.Equal(t, "create", create.Name)
	var user FlagSchema
	for _, f := range create.Flags {
		if f.Name == "user" {
			user = f
		}
	}
	assert.True(t, user.Required)
}

func TestFindTargetCommand(t *testing.T) {
	root := testTree()

	assert.Equal(t, "create", findTargetCommand(root, []string{"apikey", "create"}).Name())
	assert.Equal(t, "list", findTargetCommand(root, []string{"ls"}).Name())
	assert.Equal(t, "apikey", findTargetCommand(root, []string{"apikey", "nope"}).Name())
	assert.Equal(t, "scratch", findTargetCommand(root, nil).Name())
}

func TestWriteSchema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSchema(&buf, testTree()))

	var decoded CommandSchema
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "notes", decoded.Description)
}
