package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ConfigFileName is the default project configuration file.
const ConfigFileName = "modresolve.yaml"

const configDirName = "modresolve"

// fileNames lists the accepted configuration file names in order of
// preference inside a system or user configuration directory.
var fileNames = []string{"modresolve.yaml", "modresolve.yml", "modresolve.toml"}

// ConfigLevel represents the precedence level of a configuration file.
type ConfigLevel string

const (
	LevelSystem  ConfigLevel = "system"
	LevelUser    ConfigLevel = "user"
	LevelProject ConfigLevel = "project"
)

// ConfigLayerInfo describes a discovered config file and its load status.
type ConfigLayerInfo struct {
	Err    error // non-nil if the file exists but failed to load
	Path   string
	Level  ConfigLevel
	Loaded bool
}

// DiscoverOptions controls how config paths are discovered.
type DiscoverOptions struct {
	// ProjectPath is the project-level config path (required).
	ProjectPath string

	// SystemConfigPath overrides the default system config path.
	// Empty means use the OS default. Set to a nonexistent path to skip.
	SystemConfigPath string

	// UserConfigPath overrides the default user config path.
	// Empty means use the OS default. Set to a nonexistent path to skip.
	UserConfigPath string
}

// DiscoverPaths returns the config files to consider, from lowest
// precedence (system) to highest (project), deduplicated by absolute path.
func DiscoverPaths(opts DiscoverOptions) []ConfigLayerInfo {
	var layers []ConfigLayerInfo
	seen := make(map[string]bool)

	add := func(level ConfigLevel, path string) {
		if path == "" {
			return
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if seen[abs] {
			return
		}
		seen[abs] = true
		layers = append(layers, ConfigLayerInfo{Path: path, Level: level})
	}

	sysPath := opts.SystemConfigPath
	if sysPath == "" {
		sysPath = findConfigFile(systemConfigDir())
	}
	add(LevelSystem, sysPath)

	userPath := opts.UserConfigPath
	if userPath == "" {
		userPath = findConfigFile(userConfigDir())
	}
	add(LevelUser, userPath)

	add(LevelProject, opts.ProjectPath)

	return layers
}

// findConfigFile returns the first accepted config file present in dir, or
// the default name in dir when none exists yet.
func findConfigFile(dir string) string {
	if dir == "" {
		return ""
	}
	for _, name := range fileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(dir, ConfigFileName)
}

func systemConfigDir() string {
	if runtime.GOOS == "windows" {
		pd := os.Getenv("ProgramData")
		if pd == "" {
			pd = `C:\ProgramData`
		}
		return filepath.Join(pd, configDirName)
	}
	return filepath.Join("/etc", configDirName)
}

func userConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, configDirName)
}

// EnvNoInherit returns true if MODRESOLVE_NO_INHERIT is set to "1" or "true".
func EnvNoInherit() bool {
	return envBoolTrue("MODRESOLVE_NO_INHERIT")
}

func envBoolTrue(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true"
}
