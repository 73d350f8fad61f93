// Package config loads autobib's main configuration: the database
// path, provider network timeouts, the reference-chain hop limit, and
// read-only mode. Grounded on the teacher's internal/config/config.go
// viper precedence chain, retargeted from beads' issue-tracker
// settings to autobib's store/provider/resolution settings (spec.md
// §4.5, §4.7, §5).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var v *viper.Viper

// Initialize sets up the viper configuration singleton. Should be
// called once at process startup, before any internal/store.Open or
// internal/resolve.Resolve call.
//
// Precedence, highest to lowest: BIB_-prefixed environment variables >
// project-local .autobib/config.yaml (found by walking up from the
// working directory) > user config dir (os.UserConfigDir()/autobib/
// config.yaml) > home dir (~/.autobib/config.yaml) > these defaults.
func Initialize() error {
	v = viper.New()
	v.SetConfigType("yaml")

	configFileSet := false

	if cwd, err := os.Getwd(); err == nil {
		for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			configPath := filepath.Join(dir, ".autobib", "config.yaml")
			if _, statErr := os.Stat(configPath); statErr == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
				break
			}
		}
	}

	if !configFileSet {
		if configDir, err := os.UserConfigDir(); err == nil {
			configPath := filepath.Join(configDir, "autobib", "config.yaml")
			if _, statErr := os.Stat(configPath); statErr == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
			}
		}
	}

	if !configFileSet {
		if homeDir, err := os.UserHomeDir(); err == nil {
			configPath := filepath.Join(homeDir, ".autobib", "config.yaml")
			if _, statErr := os.Stat(configPath); statErr == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
			}
		}
	}

	// BIB_-prefixed environment variable overrides (spec.md's AMBIENT
	// STACK section), e.g. BIB_DB, BIB_READ_ONLY, BIB_HOP_LIMIT.
	v.SetEnvPrefix("BIB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("db", defaultDBPath())
	v.SetDefault("read-only", false)
	v.SetDefault("hop-limit", 8)
	v.SetDefault("provider.timeout", "15s")
	v.SetDefault("lock-timeout", "200ms")
	v.SetDefault("alias-transform.rules-file", "")
	v.SetDefault("providers-file", "")

	if configFileSet {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: reading %s: %w", v.ConfigFileUsed(), err)
		}
	}

	return nil
}

// defaultDBPath returns ~/.autobib/autobib.db, or "autobib.db" in the
// working directory if the home directory cannot be determined.
func defaultDBPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".autobib", "autobib.db")
	}
	return "autobib.db"
}

// ConfigFileUsed returns the path of the config file that was loaded,
// or "" if none was found.
func ConfigFileUsed() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}

// DBPath returns the configured database file path.
func DBPath() string {
	if v == nil {
		return defaultDBPath()
	}
	return v.GetString("db")
}

// ReadOnly reports whether the store should be opened in read-only
// mode (spec.md §5).
func ReadOnly() bool {
	if v == nil {
		return false
	}
	return v.GetBool("read-only")
}

// HopLimit returns the configured reference-chain hop bound (spec.md
// §4.3), falling back to 8 (DESIGN.md's decided default) if unset.
func HopLimit() int {
	if v == nil {
		return 8
	}
	n := v.GetInt("hop-limit")
	if n <= 0 {
		return 8
	}
	return n
}

// ProviderTimeout returns the per-request HTTP timeout for provider
// resolvers (spec.md §6.4).
func ProviderTimeout() time.Duration {
	if v == nil {
		return 15 * time.Second
	}
	d := v.GetDuration("provider.timeout")
	if d <= 0 {
		return 15 * time.Second
	}
	return d
}

// LockTimeout returns the configured lock-timeout duration (200ms when
// unset or not positive). store.Open does not read it: Open waits for a
// contended write lock until its context is done.
func LockTimeout() time.Duration {
	if v == nil {
		return 200 * time.Millisecond
	}
	d := v.GetDuration("lock-timeout")
	if d <= 0 {
		return 200 * time.Millisecond
	}
	return d
}

// AliasTransformRulesFile returns the path to a user-editable YAML
// alias-transform rule file (spec.md §4.4), or "" if none is
// configured, in which case only the built-in default rules (if any)
// apply.
func AliasTransformRulesFile() string {
	return GetString("alias-transform.rules-file")
}

// ProvidersFile returns the path to a providers.toml overriding
// per-provider network settings (SPEC_FULL.md's DOMAIN STACK table),
// or "" to use built-in defaults.
func ProvidersFile() string {
	return GetString("providers-file")
}

// GetString retrieves an arbitrary string configuration value.
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool retrieves an arbitrary boolean configuration value.
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// Set overrides a configuration value, used by cobra flag binding in
// cmd/autobib where a flag takes precedence over the loaded config.
func Set(key string, value interface{}) {
	if v != nil {
		v.Set(key, value)
	}
}
