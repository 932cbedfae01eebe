package config

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MODRESOLVE_LOG_LEVEL.
const EnvPrefix = "MODRESOLVE"

// Override keys. Nested keys map to environment variables with the dot
// replaced by an underscore.
const (
	KeyStagingDir         = "staging_dir"
	KeyCacheDir           = "cache_dir"
	KeyReuseOutputs       = "reuse_outputs"
	KeyLogLevel           = "log_level"
	KeyScannerMode        = "scanner.mode"
	KeyScannerCommand     = "scanner.command"
	KeyScannerParallelism = "scanner.parallelism"
	KeyScannerTimeout     = "scanner.timeout"
)

// NewOverrides returns a viper instance that reads MODRESOLVE_* environment
// variables. Callers may bind command-line flags to the Key* names.
func NewOverrides() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range []string{
		KeyStagingDir, KeyCacheDir, KeyReuseOutputs, KeyLogLevel,
		KeyScannerMode, KeyScannerCommand, KeyScannerParallelism, KeyScannerTimeout,
	} {
		_ = v.BindEnv(key)
	}
	return v
}

// ApplyOverrides copies every value set in v over cfg, then re-validates.
func ApplyOverrides(cfg *Config, v *viper.Viper) error {
	if v.IsSet(KeyStagingDir) {
		cfg.StagingDir = v.GetString(KeyStagingDir)
	}
	if v.IsSet(KeyCacheDir) {
		cfg.CacheDir = v.GetString(KeyCacheDir)
	}
	if v.IsSet(KeyReuseOutputs) {
		reuse := v.GetBool(KeyReuseOutputs)
		cfg.ReuseOutputs = &reuse
	}
	if v.IsSet(KeyLogLevel) {
		cfg.LogLevel = v.GetString(KeyLogLevel)
	}
	if v.IsSet(KeyScannerMode) {
		cfg.Scanner.Mode = v.GetString(KeyScannerMode)
	}
	if v.IsSet(KeyScannerCommand) {
		cfg.Scanner.Command = v.GetString(KeyScannerCommand)
	}
	if v.IsSet(KeyScannerParallelism) {
		cfg.Scanner.Parallelism = v.GetInt(KeyScannerParallelism)
	}
	if v.IsSet(KeyScannerTimeout) {
		cfg.Scanner.Timeout = v.GetString(KeyScannerTimeout)
	}

	if errs := Validate(cfg); len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
