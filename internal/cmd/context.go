package cmd

import (
	"github.com/spf13/cobra"
)

// CommandContext holds the output and connection flags shared by every
// command, extracted per invocation instead of kept in globals.
type CommandContext struct {
	Format  string
	NoColor bool
	Verbose bool
	APIURL  string
}

// NewCommandContext extracts command context from cobra.Command flags.
// Commands call this in their RunE function to get their configuration.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}

	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		return nil, err
	}

	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, err
	}

	apiURL, err := cmd.Flags().GetString("api-url")
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Format:  format,
		NoColor: noColor,
		Verbose: verbose,
		APIURL:  apiURL,
	}, nil
}
