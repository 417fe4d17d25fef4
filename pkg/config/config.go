/*
Package config manages TOML config for snipmatch services.
*/
package config

import (
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/truevox/snipmatch/internal/utils"
)

// workingDirConfig is the config filename probed in the working directory.
const workingDirConfig = "snipmatch.toml"

// Config holds the entire config structure
type Config struct {
	Engine   EngineConfig   `toml:"engine"`
	Snippets SnippetsConfig `toml:"snippets"`
	Server   ServerConfig   `toml:"server"`
	CLI      CliConfig      `toml:"cli"`
}

// EngineConfig has matching engine options.
type EngineConfig struct {
	PrefixChar string `toml:"prefix_char"`
}

// SnippetsConfig holds snippet source options.
type SnippetsConfig struct {
	Paths      []string `toml:"paths"`
	Watch      bool     `toml:"watch"`
	DebounceMs int      `toml:"debounce_ms"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxTextBytes   int  `toml:"max_text_bytes"`
	MaxCompletions int  `toml:"max_completions"`
	TimingLog      bool `toml:"timing_log"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	CompletionLimit int `toml:"completion_limit"`
	PreviewWidth    int `toml:"preview_width"`
}

// PrefixRune returns the configured prefix as a rune, or 0 when no usable
// prefix is set.
func (c *Config) PrefixRune() rune {
	if c.Engine.PrefixChar == "" {
		return 0
	}
	r, size := utf8.DecodeRuneInString(c.Engine.PrefixChar)
	if r == utf8.RuneError && size <= 1 {
		return 0
	}
	return r
}

// Debounce returns the snippet watcher debounce as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Snippets.DebounceMs) * time.Millisecond
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return executableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "snipmatch")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	// Not conventional, fallback from ~/.config if not writable
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "snipmatch")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	return executableDir()
}

func executableDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return filepath.Dir(execPath), nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. snipmatch.toml in the working directory
// 3. Default path: [UserConfigDir]/snipmatch/config.toml
// 4. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	var config *Config
	var err error

	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err = LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	if _, statErr := os.Stat(workingDirConfig); statErr == nil {
		config, err = LoadConfig(workingDirConfig)
		if err == nil {
			log.Debugf("Loaded config from working directory: %s", workingDirConfig)
			return config, utils.GetAbsolutePath(workingDirConfig), nil
		}
		log.Warnf("Failed to load %s from working directory: %v. Trying default path...", workingDirConfig, err)
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err = InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			PrefixChar: ";",
		},
		Snippets: SnippetsConfig{
			Paths:      nil,
			Watch:      true,
			DebounceMs: 500,
		},
		Server: ServerConfig{
			MaxTextBytes:   utils.MaxTextBytes,
			MaxCompletions: 24,
			TimingLog:      false,
		},
		CLI: CliConfig{
			CompletionLimit: 8,
			PreviewWidth:    64,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse attempts to parse a TOML file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if engineSection, ok := utils.ExtractSection(tempConfig, "engine"); ok {
		extractEngineConfig(engineSection, &config.Engine)
	}
	if snippetsSection, ok := utils.ExtractSection(tempConfig, "snippets"); ok {
		extractSnippetsConfig(snippetsSection, &config.Snippets)
	}
	if serverSection, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(serverSection, &config.Server)
	}
	if cliSection, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(cliSection, &config.CLI)
	}
	return config, nil
}

// extractEngineConfig extracts engine configuration from a map
func extractEngineConfig(data map[string]any, engine *EngineConfig) {
	if val, ok := utils.ExtractString(data, "prefix_char"); ok {
		engine.PrefixChar = val
	}
}

// extractSnippetsConfig extracts snippet source configuration from a map
func extractSnippetsConfig(data map[string]any, snippets *SnippetsConfig) {
	if val, ok := utils.ExtractStringSlice(data, "paths"); ok {
		snippets.Paths = val
	}
	if val, ok := utils.ExtractBool(data, "watch"); ok {
		snippets.Watch = val
	}
	if val, ok := utils.ExtractInt64(data, "debounce_ms"); ok {
		snippets.DebounceMs = val
	}
}

// extractServerConfig extracts server configuration from a map
func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_text_bytes"); ok {
		server.MaxTextBytes = val
	}
	if val, ok := utils.ExtractInt64(data, "max_completions"); ok {
		server.MaxCompletions = val
	}
	if val, ok := utils.ExtractBool(data, "timing_log"); ok {
		server.TimingLog = val
	}
}

// extractCliConfig extracts CLI config from a map
func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "completion_limit"); ok {
		cli.CompletionLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "preview_width"); ok {
		cli.PreviewWidth = val
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	configDir := filepath.Dir(defaultPath)
	if err := utils.EnsureDir(configDir); err != nil {
		return err
	}
	config := DefaultConfig()
	return utils.SaveTOMLFile(config, defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the config values and saves to file
func (c *Config) Update(configPath string, prefixChar *string, maxCompletions *int, timingLog, watch *bool) error {
	if prefixChar != nil {
		c.Engine.PrefixChar = *prefixChar
	}
	if maxCompletions != nil {
		c.Server.MaxCompletions = *maxCompletions
	}
	if timingLog != nil {
		c.Server.TimingLog = *timingLog
	}
	if watch != nil {
		c.Snippets.Watch = *watch
	}
	return SaveConfig(c, configPath)
}
