package graph

import "slices"

// Module describes one entry of a dependency graph.
//
// Once a module is part of a Graph, SourceFiles and DirectDependencies are
// never nil, and a clang module's CapturedConfigurations is never nil.
type Module struct {
	ID                 ModuleID   `json:"id" yaml:"id"`
	Path               string     `json:"modulePath" yaml:"module_path"`
	SourceFiles        []string   `json:"sourceFiles" yaml:"source_files"`
	DirectDependencies []ModuleID `json:"directDependencies" yaml:"direct_dependencies"`
	Details            Details    `json:"details" yaml:"details"`
}

// Details holds kind-specific metadata. Exactly one field is set, matching
// the module's kind. Placeholders carry none.
type Details struct {
	Source   *SourceDetails   `json:"source,omitempty" yaml:"source,omitempty"`
	Clang    *ClangDetails    `json:"clang,omitempty" yaml:"clang,omitempty"`
	Prebuilt *PrebuiltDetails `json:"prebuilt,omitempty" yaml:"prebuilt,omitempty"`
}

// SourceDetails describes a module compiled from source.
type SourceDetails struct {
	InterfacePath      string   `json:"moduleInterfacePath,omitempty" yaml:"interface_path,omitempty"`
	BridgingHeaderPath string   `json:"bridgingHeaderPath,omitempty" yaml:"bridging_header_path,omitempty"`
	CommandLine        []string `json:"commandLine,omitempty" yaml:"command_line,omitempty"`
	// ExtraArgs are the configuration arguments this module passes down to
	// the binary-interface modules it reaches.
	ExtraArgs ArgList `json:"extraArgs" yaml:"extra_args"`
}

// ClangDetails describes a binary-interface module.
type ClangDetails struct {
	ModuleMapPath string   `json:"moduleMapPath" yaml:"module_map_path"`
	ContextHash   string   `json:"contextHash" yaml:"context_hash"`
	CommandLine   []string `json:"commandLine,omitempty" yaml:"command_line,omitempty"`
	// CapturedConfigurations lists the configurations under which this
	// module's dependency set is already known to be complete. It only grows.
	CapturedConfigurations ArgSet `json:"capturedConfigurations" yaml:"captured_configurations"`
}

// PrebuiltDetails describes a prebuilt external module.
type PrebuiltDetails struct {
	CompiledModulePath   string `json:"compiledModulePath" yaml:"compiled_module_path"`
	ModuleDocPath        string `json:"moduleDocPath,omitempty" yaml:"module_doc_path,omitempty"`
	ModuleSourceInfoPath string `json:"moduleSourceInfoPath,omitempty" yaml:"module_source_info_path,omitempty"`
}

// normalize replaces absent containers with empty ones.
func (m *Module) normalize() {
	if m.SourceFiles == nil {
		m.SourceFiles = []string{}
	}
	if m.DirectDependencies == nil {
		m.DirectDependencies = []ModuleID{}
	}
	if m.Details.Clang != nil && m.Details.Clang.CapturedConfigurations == nil {
		m.Details.Clang.CapturedConfigurations = NewArgSet()
	}
	if m.Details.Source != nil && m.Details.Source.ExtraArgs == nil {
		m.Details.Source.ExtraArgs = ArgList{}
	}
}

// HasDependency reports whether id is a direct dependency of m.
func (m *Module) HasDependency(id ModuleID) bool {
	return slices.Contains(m.DirectDependencies, id)
}

// AddDependencies appends every id not already present and returns how many
// were added.
func (m *Module) AddDependencies(ids ...ModuleID) int {
	added := 0
	for _, id := range ids {
		if m.HasDependency(id) {
			continue
		}
		m.DirectDependencies = append(m.DirectDependencies, id)
		added++
	}
	return added
}

// Clone returns a deep copy of m.
func (m *Module) Clone() *Module {
	out := &Module{
		ID:                 m.ID,
		Path:               m.Path,
		SourceFiles:        slices.Clone(m.SourceFiles),
		DirectDependencies: slices.Clone(m.DirectDependencies),
	}
	if d := m.Details.Source; d != nil {
		out.Details.Source = &SourceDetails{
			InterfacePath:      d.InterfacePath,
			BridgingHeaderPath: d.BridgingHeaderPath,
			CommandLine:        slices.Clone(d.CommandLine),
			ExtraArgs:          slices.Clone(d.ExtraArgs),
		}
	}
	if d := m.Details.Clang; d != nil {
		out.Details.Clang = &ClangDetails{
			ModuleMapPath:          d.ModuleMapPath,
			ContextHash:            d.ContextHash,
			CommandLine:            slices.Clone(d.CommandLine),
			CapturedConfigurations: d.CapturedConfigurations.Clone(),
		}
	}
	if d := m.Details.Prebuilt; d != nil {
		cp := *d
		out.Details.Prebuilt = &cp
	}
	out.normalize()
	return out
}

// detailsMatchKind reports whether exactly the details for m's kind are set.
func (m *Module) detailsMatchKind() bool {
	d := m.Details
	switch m.ID.Kind {
	case KindSource:
		return d.Source != nil && d.Clang == nil && d.Prebuilt == nil
	case KindClang:
		return d.Clang != nil && d.Source == nil && d.Prebuilt == nil
	case KindPrebuilt:
		return d.Prebuilt != nil && d.Source == nil && d.Clang == nil
	case KindPlaceholder:
		return d.Source == nil && d.Clang == nil && d.Prebuilt == nil
	}
	return false
}
