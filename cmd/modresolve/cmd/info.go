package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bianoble/modresolve/internal/cache"
	"github.com/bianoble/modresolve/internal/config"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show modresolve configuration, staging and cache locations",
	Long: `Displays the modresolve version, the configuration chain, the effective
scanner settings, and the staging and cache directories with the cache size.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		hr, err := loadConfig()
		if err != nil {
			return err
		}
		cfg := hr.Config

		fmt.Printf("modresolve %s\n", version)
		fmt.Println("  config chain:")
		for _, layer := range hr.Layers {
			status := "not found"
			if layer.Loaded {
				status = "loaded"
			}
			fmt.Printf("    %-10s %s (%s)\n", string(layer.Level)+":", layer.Path, status)
		}
		if config.EnvNoInherit() {
			fmt.Println("    (inheritance disabled by MODRESOLVE_NO_INHERIT)")
		}

		fmt.Printf("  scanner mode:  %s\n", cfg.Scanner.Mode)
		fmt.Printf("  command:       %s\n", cfg.Scanner.Command)
		fmt.Printf("  parallelism:   %d\n", cfg.Scanner.Parallelism)
		if cfg.Scanner.Timeout != "" {
			fmt.Printf("  timeout:       %s\n", cfg.Scanner.Timeout)
		}
		fmt.Printf("  staging dir:   %s\n", stagingDir(cfg))

		dir := cacheDir(cfg)
		fmt.Printf("  cache dir:     %s\n", dir)
		fmt.Printf("  reuse outputs: %t\n", cfg.Reuse())
		if c, err := cache.New(dir); err == nil {
			if size, err := c.Size(); err == nil {
				fmt.Printf("  cache size:    %s\n", humanSize(size))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
