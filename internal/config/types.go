package config

// Config represents the modresolve.yaml (or modresolve.toml) configuration
// file.
type Config struct {
	Version    int    `yaml:"version" toml:"version"`
	StagingDir string `yaml:"staging_dir,omitempty" toml:"staging_dir,omitempty"`
	CacheDir   string `yaml:"cache_dir,omitempty" toml:"cache_dir,omitempty"`
	// ReuseOutputs serves scan outputs of earlier runs from the cache.
	// Nil means unset, so that a lower layer's value survives the merge.
	ReuseOutputs *bool   `yaml:"reuse_outputs,omitempty" toml:"reuse_outputs,omitempty"`
	LogLevel     string  `yaml:"log_level,omitempty" toml:"log_level,omitempty"`
	Scanner      Scanner `yaml:"scanner" toml:"scanner"`
}

// Scanner configures how rescans are executed.
type Scanner struct {
	Mode string `yaml:"mode,omitempty" toml:"mode,omitempty"` // "exec", "batch"
	// Command is a template; see scan.CommandTemplate for the fields.
	Command     string            `yaml:"command,omitempty" toml:"command,omitempty"`
	Parallelism int               `yaml:"parallelism,omitempty" toml:"parallelism,omitempty"`
	Timeout     string            `yaml:"timeout,omitempty" toml:"timeout,omitempty"`
	Env         map[string]string `yaml:"env,omitempty" toml:"env,omitempty"`
}

// Scanner modes.
const (
	ModeExec  = "exec"
	ModeBatch = "batch"
)

// Reuse reports whether cached scan outputs may be reused.
func (c *Config) Reuse() bool {
	return c.ReuseOutputs != nil && *c.ReuseOutputs
}
