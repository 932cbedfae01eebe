package config

import (
	"errors"
	"fmt"
	"os"
)

// Merge combines two configs where overlay takes precedence over base:
//   - version: must agree if both declare it (non-zero); fatal error on mismatch
//   - scalar settings: a set overlay value replaces the base value
//   - scanner.env: deep merge, overlay keys win
func Merge(base, overlay *Config) (*Config, error) {
	if base == nil {
		return overlay, nil
	}
	if overlay == nil {
		return base, nil
	}

	result := &Config{}
	if err := mergeVersion(base.Version, overlay.Version, &result.Version); err != nil {
		return nil, err
	}

	result.StagingDir = pick(base.StagingDir, overlay.StagingDir)
	result.CacheDir = pick(base.CacheDir, overlay.CacheDir)
	result.LogLevel = pick(base.LogLevel, overlay.LogLevel)
	result.ReuseOutputs = base.ReuseOutputs
	if overlay.ReuseOutputs != nil {
		result.ReuseOutputs = overlay.ReuseOutputs
	}

	result.Scanner = Scanner{
		Mode:        pick(base.Scanner.Mode, overlay.Scanner.Mode),
		Command:     pick(base.Scanner.Command, overlay.Scanner.Command),
		Parallelism: pick(base.Scanner.Parallelism, overlay.Scanner.Parallelism),
		Timeout:     pick(base.Scanner.Timeout, overlay.Scanner.Timeout),
		Env:         mergeEnv(base.Scanner.Env, overlay.Scanner.Env),
	}

	return result, nil
}

// MergeAll merges multiple configs in order (lowest precedence first).
// Returns an error if any version mismatch is found.
func MergeAll(configs []*Config) (*Config, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("no configs to merge")
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		var err error
		result, err = Merge(result, configs[i])
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// HierarchicalOptions controls LoadHierarchical.
type HierarchicalOptions struct {
	ProjectPath      string
	SystemConfigPath string
	UserConfigPath   string
	// NoInherit loads the project layer only.
	NoInherit bool
}

// HierarchicalResult is a merged config plus the layers it came from.
type HierarchicalResult struct {
	Config *Config
	Layers []ConfigLayerInfo
}

// LoadHierarchical loads every discovered layer, merges them, and validates
// the result. Missing system and user layers are skipped; a missing project
// layer is an error unless another layer was loaded.
func LoadHierarchical(opts HierarchicalOptions) (*HierarchicalResult, error) {
	var layers []ConfigLayerInfo
	if opts.NoInherit {
		layers = []ConfigLayerInfo{{Path: opts.ProjectPath, Level: LevelProject}}
	} else {
		layers = DiscoverPaths(DiscoverOptions{
			ProjectPath:      opts.ProjectPath,
			SystemConfigPath: opts.SystemConfigPath,
			UserConfigPath:   opts.UserConfigPath,
		})
	}

	var configs []*Config
	for i := range layers {
		cfg, err := read(layers[i].Path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			layers[i].Err = err
			return nil, fmt.Errorf("%s config: %w", layers[i].Level, err)
		}
		layers[i].Loaded = true
		configs = append(configs, cfg)
	}
	if len(configs) == 0 {
		return nil, fmt.Errorf("no config file found at %s: %w", opts.ProjectPath, os.ErrNotExist)
	}

	merged, err := MergeAll(configs)
	if err != nil {
		return nil, err
	}
	ApplyDefaults(merged)
	if errs := Validate(merged); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return &HierarchicalResult{Config: merged, Layers: layers}, nil
}

func mergeVersion(base, overlay int, out *int) error {
	switch {
	case base == 0 && overlay == 0:
		*out = 0 // neither declares; validation will catch this
	case base == 0:
		*out = overlay
	case overlay == 0:
		*out = base
	case base == overlay:
		*out = base
	default:
		return fmt.Errorf("config version mismatch: one layer declares version %d, another declares version %d — all config layers must agree on version", base, overlay)
	}
	return nil
}

func pick[T comparable](base, overlay T) T {
	var zero T
	if overlay != zero {
		return overlay
	}
	return base
}

func mergeEnv(base, overlay map[string]string) map[string]string {
	if len(base) == 0 && len(overlay) == 0 {
		return nil
	}

	result := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range overlay {
		result[k] = v // overlay wins
	}
	return result
}
