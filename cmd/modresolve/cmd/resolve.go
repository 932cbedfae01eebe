package cmd

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/bianoble/modresolve/internal/graph"
	"github.com/bianoble/modresolve/internal/resolve"
)

var (
	resolveOutput      string
	resolveDryRun      bool
	resolveMetricsFile string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve GRAPH",
	Short: "Rescan uncovered configurations and update the dependency graph",
	Long: `Walks the dependency graph from its main module, collects every configuration
each binary-interface module is reached with, rescans the configurations not
yet captured, and merges the rescanned dependencies back into the graph.
The graph file is rewritten in place unless --output is given. If any rescan
fails, nothing is written.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hr, err := loadConfig()
		if err != nil {
			return err
		}
		cfg := hr.Config
		logger := newLogger(cfg.LogLevel)

		g, err := loadGraph(args[0])
		if err != nil {
			return err
		}

		scanner, err := newScanner(cfg, logger)
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		eng := &resolve.Engine{
			Scanner:    scanner,
			StagingDir: stagingDir(cfg),
			Logger:     logger,
			Metrics:    resolve.NewMetrics(reg),
		}

		result, err := eng.Resolve(cmd.Context(), g, resolve.Options{DryRun: resolveDryRun})
		if resolveMetricsFile != "" {
			if werr := prometheus.WriteToTextfile(resolveMetricsFile, reg); werr != nil {
				errorf("writing metrics: %s", werr)
			}
		}
		if err != nil {
			return err
		}

		if result.UpToDate() {
			info("Dependency graph is up to date.")
			return nil
		}

		if resolveDryRun {
			info("Dry run — no scanner invoked, graph not written.")
			for _, req := range result.Requests {
				info("  rescan  %s  %s", req.Module.Name, req.CommandLine)
				detail("output: %s", req.OutputPath)
			}
			return nil
		}

		for _, id := range result.Inserted {
			detail("inserted  %s", id)
		}

		out := resolveOutput
		if out == "" {
			out = args[0]
		}
		if err := graph.Save(out, g); err != nil {
			return fmt.Errorf("writing dependency graph: %w", err)
		}

		info("Resolved %d rescan(s): %d module(s) added, %d dependency edge(s) added, %d configuration(s) captured.",
			len(result.Requests), len(result.Inserted), result.EdgesAdded, result.Captured)
		info("Wrote %s", out)
		return nil
	},
}

func init() {
	resolveCmd.Flags().StringVarP(&resolveOutput, "output", "o", "", "write the updated graph here instead of in place")
	resolveCmd.Flags().BoolVar(&resolveDryRun, "dry-run", false, "list the rescans without running them")
	resolveCmd.Flags().StringVar(&resolveMetricsFile, "metrics-file", "", "write Prometheus metrics in text format to this file")
	rootCmd.AddCommand(resolveCmd)
}
