package modresolve

import (
	"github.com/bianoble/modresolve/internal/graph"
	"github.com/bianoble/modresolve/internal/resolve"
	"github.com/bianoble/modresolve/internal/scan"
)

// Type aliases re-export the graph model and engine results as the public
// API. Users import "github.com/bianoble/modresolve/pkg/modresolve" and use
// modresolve.Graph, modresolve.Result, etc.

type Graph = graph.Graph
type Module = graph.Module
type ModuleID = graph.ModuleID
type ArgList = graph.ArgList
type ArgSet = graph.ArgSet
type MissingModuleError = graph.MissingModuleError
type InvariantViolation = graph.InvariantViolation

type Scanner = scan.Scanner
type ScanRequest = scan.Request
type ScanResult = scan.Result
type RequestError = scan.RequestError

type ResolveOptions = resolve.Options
type Result = resolve.Result
type CheckResult = resolve.CheckResult
type Needed = resolve.Needed
