package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/LFroesch/fcmd/internal/logger"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds all fcmd configuration
type Config struct {
	ShowHidden          bool     `mapstructure:"show_hidden"`
	Editor              string   `mapstructure:"editor"`
	Theme               string   `mapstructure:"theme"`
	PendingKeyTimeoutMS int      `mapstructure:"pending_key_timeout_ms"`
	SmallOpMaxItems     int      `mapstructure:"small_op_max_items"`
	SmallOpMaxBytes     int64    `mapstructure:"small_op_max_bytes"`
	UndoCapacity        int      `mapstructure:"undo_capacity"`
	TrashDir            string   `mapstructure:"trash_dir"`
	DBPath              string   `mapstructure:"db_path"`
	FindMaxDepth        int      `mapstructure:"find_max_depth"`
	FindMaxEntries      int      `mapstructure:"find_max_entries"`
	GlobalSearchLimit   int      `mapstructure:"global_search_limit"`
	SkipDirectories     []string `mapstructure:"skip_directories"` // directory names skipped by find (supports wildcards like "Python*")
	Watch               bool     `mapstructure:"watch"`
}

const (
	defaultUndoCapacity = 50
	envPrefix           = "FCMD"
)

// PendingKeyTimeout is the multi-key sequence timeout as a duration.
func (c *Config) PendingKeyTimeout() time.Duration {
	return time.Duration(c.PendingKeyTimeoutMS) * time.Millisecond
}

func configDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		logger.Error("Failed to get home directory: %v", err)
		homeDir = "."
	}
	return filepath.Join(homeDir, ".config", "fcmd")
}

func dataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".local", "share", "fcmd")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("show_hidden", false)
	v.SetDefault("editor", "")
	v.SetDefault("theme", "default")
	v.SetDefault("pending_key_timeout_ms", 600)
	v.SetDefault("small_op_max_items", 16)
	v.SetDefault("small_op_max_bytes", int64(8*1024*1024))
	v.SetDefault("undo_capacity", defaultUndoCapacity)
	v.SetDefault("trash_dir", filepath.Join(dataDir(), "trash"))
	v.SetDefault("db_path", filepath.Join(dataDir(), "fcmd.db"))
	v.SetDefault("find_max_depth", 12)
	v.SetDefault("find_max_entries", 5000)
	v.SetDefault("global_search_limit", 5000)
	v.SetDefault("skip_directories", getDefaultSkipDirectories())
	v.SetDefault("watch", true)

	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// Load reads config from ~/.config/fcmd/config.json, writing the defaults
// there on first run.
func Load() *Config {
	path, err := GetConfigPath()
	if err != nil {
		path = filepath.Join(configDir(), "config.json")
	}
	return LoadFrom(path)
}

// LoadFrom reads config from path. It never fails: unreadable files fall back
// to defaults and out-of-range values are clamped.
func LoadFrom(path string) *Config {
	v := newViper()
	v.SetConfigFile(path)

	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		cfg := unmarshal(v)
		if err := SaveTo(path, cfg); err != nil {
			logger.Warn("Failed to save default config: %v", err)
		}
		return cfg
	}

	if err := v.ReadInConfig(); err != nil {
		logger.Warn("Failed to parse config file %s: %v, using defaults", path, err)
		return unmarshal(newViper())
	}
	return unmarshal(v)
}

// Default returns the built-in configuration without touching disk.
func Default() *Config {
	return unmarshal(newViper())
}

func unmarshal(v *viper.Viper) *Config {
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		logger.Warn("Failed to decode config: %v, using defaults", err)
		config = &Config{}
		_ = newViper().Unmarshal(config)
	}
	validate(config)
	return config
}

func validate(config *Config) {
	if len(config.SkipDirectories) == 0 {
		config.SkipDirectories = getDefaultSkipDirectories()
	}

	if config.PendingKeyTimeoutMS <= 0 {
		config.PendingKeyTimeoutMS = 600
	} else if config.PendingKeyTimeoutMS < 100 {
		logger.Warn("pending_key_timeout_ms too low (%d), using minimum of 100", config.PendingKeyTimeoutMS)
		config.PendingKeyTimeoutMS = 100
	} else if config.PendingKeyTimeoutMS > 5000 {
		logger.Warn("pending_key_timeout_ms too high (%d), using maximum of 5000", config.PendingKeyTimeoutMS)
		config.PendingKeyTimeoutMS = 5000
	}

	if config.SmallOpMaxItems < 0 {
		logger.Warn("small_op_max_items negative (%d), using 0", config.SmallOpMaxItems)
		config.SmallOpMaxItems = 0
	}
	if config.SmallOpMaxBytes < 0 {
		logger.Warn("small_op_max_bytes negative (%d), using 0", config.SmallOpMaxBytes)
		config.SmallOpMaxBytes = 0
	}

	if config.UndoCapacity != defaultUndoCapacity {
		if config.UndoCapacity != 0 {
			logger.Warn("undo_capacity is fixed, ignoring %d", config.UndoCapacity)
		}
		config.UndoCapacity = defaultUndoCapacity
	}

	if config.FindMaxDepth <= 0 {
		config.FindMaxDepth = 12
	} else if config.FindMaxDepth > 32 {
		logger.Warn("find_max_depth too high (%d), using maximum of 32", config.FindMaxDepth)
		config.FindMaxDepth = 32
	}

	if config.FindMaxEntries <= 0 {
		config.FindMaxEntries = 5000
	} else if config.FindMaxEntries < 100 {
		logger.Warn("find_max_entries too low (%d), using minimum of 100", config.FindMaxEntries)
		config.FindMaxEntries = 100
	} else if config.FindMaxEntries > 100000 {
		logger.Warn("find_max_entries too high (%d), using maximum of 100000", config.FindMaxEntries)
		config.FindMaxEntries = 100000
	}

	if config.GlobalSearchLimit <= 0 {
		config.GlobalSearchLimit = 5000
	} else if config.GlobalSearchLimit > 50000 {
		logger.Warn("global_search_limit too high (%d), using maximum of 50000", config.GlobalSearchLimit)
		config.GlobalSearchLimit = 50000
	}

	if config.TrashDir == "" {
		config.TrashDir = filepath.Join(dataDir(), "trash")
	}
	if config.DBPath == "" {
		config.DBPath = filepath.Join(dataDir(), "fcmd.db")
	}
	config.TrashDir = expand(config.TrashDir)
	config.DBPath = expand(config.DBPath)
	if config.Theme == "" {
		config.Theme = "default"
	}
}

func expand(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		logger.Warn("Cannot expand %s: %v", path, err)
		return path
	}
	return expanded
}

// Save writes config to ~/.config/fcmd/config.json
func Save(config *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("cannot get home directory: %w", err)
	}
	return SaveTo(path, config)
}

// SaveTo writes config to path as JSON.
func SaveTo(path string, config *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logger.Error("Failed to create config directory %s: %v", filepath.Dir(path), err)
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("json")
	v.Set("show_hidden", config.ShowHidden)
	v.Set("editor", config.Editor)
	v.Set("theme", config.Theme)
	v.Set("pending_key_timeout_ms", config.PendingKeyTimeoutMS)
	v.Set("small_op_max_items", config.SmallOpMaxItems)
	v.Set("small_op_max_bytes", config.SmallOpMaxBytes)
	v.Set("undo_capacity", config.UndoCapacity)
	v.Set("trash_dir", config.TrashDir)
	v.Set("db_path", config.DBPath)
	v.Set("find_max_depth", config.FindMaxDepth)
	v.Set("find_max_entries", config.FindMaxEntries)
	v.Set("global_search_limit", config.GlobalSearchLimit)
	v.Set("skip_directories", config.SkipDirectories)
	v.Set("watch", config.Watch)

	if err := v.WriteConfigAs(path); err != nil {
		logger.Error("Failed to write config file %s: %v", path, err)
		return fmt.Errorf("cannot write config file: %w", err)
	}
	return nil
}

// getDefaultSkipDirectories returns directories find never descends into.
func getDefaultSkipDirectories() []string {
	return []string{
		".git",
		".svn",
		".hg",
		"target",
		"node_modules",
		"__pycache__",
		".cache",
		"build",
		"dist",
		".next",
		".venv",
		"venv",
	}
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "fcmd", "config.json"), nil
}
