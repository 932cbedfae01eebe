package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bianoble/modresolve/internal/config"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	configPath string
	verbose    bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "modresolve",
	Short: "Resolve configuration-specific module dependencies",
	Long: `modresolve refines a module dependency graph produced by an initial scan.
It finds every configuration each binary-interface module is compiled under,
rescans the configurations not yet covered, and merges the newly discovered
dependencies back into the graph so it covers all of them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("modresolve %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.ConfigFileName, "path to config file")
	flags.BoolVar(&verbose, "verbose", false, "detailed output")
	flags.BoolVar(&quiet, "quiet", false, "minimal output (errors only)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("staging-dir", "", "directory receiving scanner outputs")

	overrides = config.NewOverrides()
	_ = overrides.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = overrides.BindPFlag(config.KeyStagingDir, flags.Lookup("staging-dir"))

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
