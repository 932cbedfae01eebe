package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"

	"github.com/bianoble/modresolve/internal/graph"
	"github.com/bianoble/modresolve/internal/scan"
)

var (
	showDepth    int
	showCaptured bool
)

var showCmd = &cobra.Command{
	Use:   "show GRAPH",
	Short: "Print the dependency tree of the main module",
	Long: `Prints the modules reachable from the main module as a tree. A module whose
dependencies were already printed is shown once more without its subtree.
With --captured, binary-interface modules list the configurations they
have been scanned under.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph(args[0])
		if err != nil {
			return err
		}
		fmt.Print(renderTree(g, showDepth, showCaptured))
		return nil
	},
}

// renderTree renders g from its main module. depth limits how many levels
// are printed; zero means no limit.
func renderTree(g *graph.Graph, depth int, captured bool) string {
	root := g.MainModuleID()
	tree := treeprint.NewWithRoot(root.String())
	expanded := map[graph.ModuleID]bool{root: true}

	var walk func(branch treeprint.Tree, m *graph.Module, level int)
	walk = func(branch treeprint.Tree, m *graph.Module, level int) {
		for _, dep := range m.DirectDependencies {
			child, err := g.Lookup(dep)
			if err != nil {
				branch.AddMetaNode("missing", dep.String())
				continue
			}
			if captured && child.Details.Clang != nil {
				node := branch.AddMetaBranch(fmt.Sprintf("%d captured", child.Details.Clang.CapturedConfigurations.Len()), dep.String())
				for _, args := range child.Details.Clang.CapturedConfigurations.Lists() {
					node.AddNode("[" + scan.RenderCommandLine(args) + "]")
				}
				if !expanded[dep] && len(child.DirectDependencies) > 0 && (depth == 0 || level < depth) {
					expanded[dep] = true
					walk(node, child, level+1)
				}
				continue
			}
			if expanded[dep] && len(child.DirectDependencies) > 0 {
				branch.AddMetaNode("see above", dep.String())
				continue
			}
			if len(child.DirectDependencies) == 0 || (depth > 0 && level >= depth) {
				branch.AddNode(dep.String())
				continue
			}
			expanded[dep] = true
			walk(branch.AddBranch(dep.String()), child, level+1)
		}
	}

	if m, err := g.Lookup(root); err == nil {
		walk(tree, m, 1)
	}
	return tree.String()
}

func init() {
	showCmd.Flags().IntVar(&showDepth, "depth", 0, "maximum depth to print (0 = unlimited)")
	showCmd.Flags().BoolVar(&showCaptured, "captured", false, "list captured configurations of binary-interface modules")
	rootCmd.AddCommand(showCmd)
}
