package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/bianoble/modresolve/internal/graph"
	"github.com/bianoble/modresolve/internal/resolve"
	"github.com/bianoble/modresolve/internal/scan"
)

var checkCmd = &cobra.Command{
	Use:   "check GRAPH",
	Short: "Report configurations that still need a rescan",
	Long: `Validates the dependency graph and lists every binary-interface module
configuration that has not been captured yet. Runs no scanner.
Exit 0 if the graph is complete; exit non-zero otherwise. Suitable for CI pipelines.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Validation problems are reported below rather than failing the load.
		g, err := graph.Read(args[0])
		if err != nil {
			return err
		}

		eng := &resolve.Engine{Logger: commandLogger()}
		result, err := eng.Check(g)
		if err != nil {
			return err
		}

		if result.Clean {
			info("All reachable binary-interface modules are captured.")
			return nil
		}

		for _, p := range result.Problems {
			info("  invalid   %s", p)
		}
		if len(result.Problems) > 0 {
			return fmt.Errorf("check failed: %d problem(s) in the dependency graph", len(result.Problems))
		}

		ids := make([]graph.ModuleID, 0, len(result.Pending))
		for id := range result.Pending {
			ids = append(ids, id)
		}
		slices.SortFunc(ids, graph.CompareIDs)
		for _, id := range ids {
			for _, args := range result.Pending[id].Lists() {
				info("  pending   %s  %s", id.Name, scan.RenderCommandLine(args))
			}
		}
		return fmt.Errorf("check failed: %d configuration(s) pending a rescan", result.Pending.Requests())
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
