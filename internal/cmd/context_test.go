package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestNewCommandContext(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("format", "text", "")
	cmd.Flags().Bool("no-color", false, "")
	cmd.Flags().Bool("verbose", false, "")
	cmd.Flags().String("api-url", "", "")

	require.NoError(t, cmd.Flags().Set("format", "json"))
	require.NoError(t, cmd.Flags().Set("verbose", "true"))
	require.NoError(t, cmd.Flags().Set("api-url", "http://localhost:9999"))

	ctx, err := NewCommandContext(cmd)
	require.NoError(t, err)
	require.Equal(t, "json", ctx.Format)
	require.True(t, ctx.Verbose)
	require.False(t, ctx.NoColor)
	require.Equal(t, "http://localhost:9999", ctx.APIURL)
}

func TestNewCommandContextMissingFlag(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	_, err := NewCommandContext(cmd)
	require.Error(t, err)
}
