package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"resolve", "reverse", "serve", "cache"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "address-engine", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestResolveCommand_Flags(t *testing.T) {
	listFlag := resolveCmd.Flags().Lookup("list")
	require.NotNil(t, listFlag, "resolve command should have --list flag")
	assert.Equal(t, "false", listFlag.DefValue)

	selectFlag := resolveCmd.Flags().Lookup("select")
	require.NotNil(t, selectFlag, "resolve command should have --select flag")
	assert.Equal(t, "1", selectFlag.DefValue)

	outputFlag := resolveCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag, "resolve command should have --output flag")
	assert.Equal(t, "text", outputFlag.DefValue)
}

func TestReverseCommand_Flags(t *testing.T) {
	for _, name := range []string{"lat", "lng", "output"} {
		flag := reverseCmd.Flags().Lookup(name)
		assert.NotNil(t, flag, "reverse command should have --%s flag", name)
	}
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestCacheCommand_HasSubcommands(t *testing.T) {
	cmds := cacheCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	assert.True(t, names["purge"], "cache should have subcommand purge")
}
