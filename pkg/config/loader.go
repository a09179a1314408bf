package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the name of the project-level config file.
const ConfigFileName = "srcsync.toml"

// ConfigDirName is the name of the project-level config directory.
const ConfigDirName = ".srcsync"

// GlobalConfigDir is the name of the global config directory inside user's config.
const GlobalConfigDir = "srcsync"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SRCSYNC_"

// Load loads configuration starting from the current directory. See LoadFrom.
func Load() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return LoadFrom(wd)
}

// LoadFrom loads configuration from all layers in order of precedence:
//  1. Built-in defaults
//  2. Global user config (~/.config/srcsync/config.toml)
//  3. Project config (.srcsync/config.toml or srcsync.toml), searched from
//     dir upwards
//  4. Environment variables (SRCSYNC_*)
//
// CLI flags are applied separately after LoadFrom returns. A config file that
// exists but cannot be decoded is an error; missing files are skipped.
func LoadFrom(dir string) (*Config, error) {
	cfg := NewConfig()
	cfg.Dir = dir

	// Layer 2: Global user config
	if path := GetGlobalConfigPath(); path != "" {
		globalCfg, err := loadConfigFile(path)
		if err != nil {
			return nil, err
		}
		if globalCfg != nil {
			cfg.Merge(globalCfg)
			cfg.Sources = append(cfg.Sources, path)
		}
	}

	// Layer 3: Project config from specified directory
	projectCfg, path, err := loadProjectConfigFrom(dir)
	if err != nil {
		return nil, err
	}
	if projectCfg != nil {
		cfg.Merge(projectCfg)
		cfg.Sources = append(cfg.Sources, path)
		cfg.Dir = projectRoot(path)
	}

	// Layer 4: Environment variables
	applyEnvironmentVariables(cfg)

	return cfg, nil
}

// projectRoot returns the directory a project config file belongs to:
// the parent of .srcsync/ or the directory holding srcsync.toml.
func projectRoot(path string) string {
	dir := filepath.Dir(path)
	if filepath.Base(dir) == ConfigDirName {
		return filepath.Dir(dir)
	}
	return dir
}

// loadProjectConfigFrom looks for project configuration starting from the
// given directory and walking up to the workspace root.
func loadProjectConfigFrom(dir string) (*Config, string, error) {
	current := dir
	for {
		for _, path := range GetProjectConfigPaths(current) {
			cfg, err := loadConfigFile(path)
			if err != nil {
				return nil, "", err
			}
			if cfg != nil {
				return cfg, path, nil
			}
		}

		// Stop at filesystem root or workspace root
		if isWorkspaceRoot(current) {
			break
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return nil, "", nil
}

// isWorkspaceRoot checks if the directory is a workspace root (has .git or a
// top-level qmake project).
func isWorkspaceRoot(dir string) bool {
	markers := []string{".git", ".hg", ".svn"}
	for _, marker := range markers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "*.pro"))
	return len(matches) > 0
}

// loadConfigFile loads a configuration from a TOML file. It returns nil, nil
// when the file does not exist.
func loadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	return &cfg, nil
}

// applyEnvironmentVariables applies SRCSYNC_* environment variables to the config.
func applyEnvironmentVariables(cfg *Config) {
	applyStringEnv(EnvPrefix+"BASE", &cfg.Base)
	applyStringEnv(EnvPrefix+"OUTPUT_DIR", &cfg.OutputDir)
	applyStringEnv(EnvPrefix+"GENERATOR", &cfg.Generator)
	applyStringEnv(EnvPrefix+"COMMAND", &cfg.Command)

	// Make-specific settings. An empty strip prefix is meaningful, so only
	// presence is checked.
	if v, ok := os.LookupEnv(EnvPrefix + "MAKE_STRIP_PREFIX"); ok {
		cfg.Make.StripPrefix = &v
	}
	applyStringEnv(EnvPrefix+"MAKE_PATH_SEPARATOR", &cfg.Make.PathSeparator)
	applyStringEnv(EnvPrefix+"MAKE_VARIABLE", &cfg.Make.Variable)

	// MSBuild-specific settings
	applyStringEnv(EnvPrefix+"MSBUILD_ESCAPE_PREFIX", &cfg.MSBuild.EscapePrefix)
	applyStringEnv(EnvPrefix+"MSBUILD_SENTINEL", &cfg.MSBuild.Sentinel)
	applyStringEnv(EnvPrefix+"MSBUILD_RESOURCE_FILE", &cfg.MSBuild.ResourceFile)

	// SRCSYNC_NO_DISCOVER: comma-separated list of groups to treat as
	// hand-maintained
	if v := os.Getenv(EnvPrefix + "NO_DISCOVER"); v != "" {
		off := false
		for _, name := range splitAndTrim(v) {
			for i := range cfg.Groups {
				if cfg.Groups[i].Name == name {
					cfg.Groups[i].Discover = &off
				}
			}
		}
	}
}

func applyStringEnv(envVar string, target *string) {
	if v := os.Getenv(envVar); v != "" {
		*target = v
	}
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// GetGlobalConfigPath returns the path to the global config file.
func GetGlobalConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, GlobalConfigDir, "config.toml")
}

// GetProjectConfigPaths returns potential project config paths for a given directory.
func GetProjectConfigPaths(dir string) []string {
	return []string{
		filepath.Join(dir, ConfigDirName, "config.toml"),
		filepath.Join(dir, ConfigFileName),
	}
}
