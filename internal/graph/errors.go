package graph

import "fmt"

// MissingModuleError reports a module that is referenced but has no
// description in the graph.
type MissingModuleError struct {
	Module ModuleID
	// Dependent is the module whose dependency list names Module, if known.
	Dependent *ModuleID
}

func (e *MissingModuleError) Error() string {
	if e.Dependent != nil {
		return fmt.Sprintf("module %s (dependency of %s) is missing from the dependency graph", e.Module, *e.Dependent)
	}
	return fmt.Sprintf("module %s is missing from the dependency graph", e.Module)
}

// InvariantViolation is the panic value used when a graph reaches a state an
// earlier pipeline stage should have made impossible. It is a programming
// error and is never recovered by this module.
type InvariantViolation struct {
	Msg string
}

func (e *InvariantViolation) Error() string {
	return "invariant violation: " + e.Msg
}

// Violate panics with an *InvariantViolation.
func Violate(format string, args ...any) {
	panic(&InvariantViolation{Msg: fmt.Sprintf(format, args...)})
}
