package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "rankctl",
	Short: "Client for the CogniSynapseRank SEO analysis service",
	Long: `rankctl submits URLs to a CogniSynapseRank server for SEO analysis
and polls the results endpoint until the analysis completes, printing
progress updates along the way.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("rankctl version {{.Version}}\n")
	rootCmd.PersistentFlags().String("server", "http://localhost:8080", "base URL of the analysis server")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
