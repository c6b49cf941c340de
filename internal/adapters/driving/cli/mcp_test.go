package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPCmd_HasServeSubcommand(t *testing.T) {
	commands := mcpCmd.Commands()
	require.Len(t, commands, 1)
	assert.Equal(t, "serve", commands[0].Name())
}

func TestMCPServeCmd_Flags(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)

	assert.NotNil(t, mcpServeCmd.Flags().Lookup("no-metrics"))
}

func TestMCPServeCmd_RequiresPipelineServices(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	pipeline.Quiz = nil

	_, err := execute(t, "mcp", "serve")

	assert.EqualError(t, err, "pipeline services not configured")
}
