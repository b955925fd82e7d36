package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qualitasnexus/nexctl/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the configuration after merging defaults, ~/.nexctl/config.yaml,
and NEXCTL_* environment variables.`,
	RunE: run(runConfig),
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// configReport is the config command's output shape
type configReport struct {
	APIURL      string `json:"apiUrl" yaml:"apiUrl"`
	Tenant      string `json:"tenant" yaml:"tenant"`
	LogLevel    string `json:"logLevel" yaml:"logLevel"`
	LogFormat   string `json:"logFormat" yaml:"logFormat"`
	ConfigDir   string `json:"configDir" yaml:"configDir"`
	SessionFile string `json:"sessionFile" yaml:"sessionFile"`
}

func (r configReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Backend:      %s\n", r.APIURL)
	fmt.Fprintf(&b, "Tenant:       %s\n", r.Tenant)
	fmt.Fprintf(&b, "Log level:    %s\n", r.LogLevel)
	fmt.Fprintf(&b, "Log format:   %s\n", r.LogFormat)
	fmt.Fprintf(&b, "Config dir:   %s\n", r.ConfigDir)
	fmt.Fprintf(&b, "Session file: %s", r.SessionFile)
	return b.String()
}

func runConfig(cmd *cobra.Command, app *app, args []string) error {
	return app.print(configReport{
		APIURL:      app.cfg.APIURL,
		Tenant:      app.cfg.Tenant,
		LogLevel:    app.cfg.LogLevel,
		LogFormat:   app.cfg.LogFormat,
		ConfigDir:   config.Dir(),
		SessionFile: app.cfg.SessionPath(),
	})
}
