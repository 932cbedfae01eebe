package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bianoble/modresolve/internal/graph"
)

var mergeOutput string

var mergeCmd = &cobra.Command{
	Use:   "merge BASE OTHER",
	Short: "Combine two dependency graphs of the same main module",
	Long: `Folds OTHER into BASE. Binary-interface modules described by both are merged
(source files, dependencies and captured configurations are unioned; the
module map, context hash and command line of BASE are kept). Other shared
modules gain OTHER's dependencies. Modules only OTHER describes are added.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := commandLogger()

		base, err := loadGraph(args[0])
		if err != nil {
			return err
		}
		other, err := loadGraph(args[1])
		if err != nil {
			return err
		}
		if base.MainModuleName != other.MainModuleName {
			return fmt.Errorf("cannot merge graphs of different main modules '%s' and '%s'", base.MainModuleName, other.MainModuleName)
		}

		result := graph.Combine(base, other)
		for _, c := range result.Conflicts {
			logger.Warn("keeping base description", "conflict", c)
		}
		for _, id := range result.Inserted {
			detail("added   %s", id)
		}
		for _, id := range result.Merged {
			detail("merged  %s", id)
		}

		out := mergeOutput
		if out == "" {
			out = args[0]
		}
		if err := graph.Save(out, base); err != nil {
			return fmt.Errorf("writing dependency graph: %w", err)
		}
		info("Merge complete: %d added, %d merged, %d conflict(s). Wrote %s",
			len(result.Inserted), len(result.Merged), len(result.Conflicts), out)
		return nil
	},
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "write the merged graph here instead of over BASE")
	rootCmd.AddCommand(mergeCmd)
}
