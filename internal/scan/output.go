package scan

import (
	"fmt"
	"os"

	"github.com/bianoble/modresolve/internal/graph"
)

// readOutput loads the graph a scanner wrote for req.
func readOutput(req Request) (*graph.Graph, []byte, error) {
	data, err := os.ReadFile(req.OutputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading scan output: %w", err)
	}
	g, err := decodeOutput(req, data)
	if err != nil {
		return nil, nil, err
	}
	return g, data, nil
}

// decodeOutput parses a scan output and checks that it is usable for req:
// it must describe the rescanned module and hold no placeholders.
func decodeOutput(req Request, data []byte) (*graph.Graph, error) {
	g, err := graph.Decode(data, graph.FormatFor(req.OutputPath))
	if err != nil {
		return nil, fmt.Errorf("parsing scan output %s: %w", req.OutputPath, err)
	}
	if !g.Has(req.Module) {
		return nil, fmt.Errorf("scan output %s does not describe %s", req.OutputPath, req.Module)
	}
	for _, id := range g.IDs() {
		if id.Kind == graph.KindPlaceholder {
			return nil, fmt.Errorf("scan output %s contains unresolved placeholder %s", req.OutputPath, id)
		}
	}
	return g, nil
}
