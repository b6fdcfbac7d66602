package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"pipeshell/internal/logger"
)

// ConfigurationServiceName is the registry name of the configuration service.
const ConfigurationServiceName = "configuration"

// EnvPrefix prefixes every pipeshell environment variable and .env key.
const EnvPrefix = "PIPESHELL"

// Configuration keys.
const (
	KeyLogLevel     = "log-level"
	KeyLogFile      = "log-file"
	KeyWorkDir      = "workdir"
	KeyHome         = "home"
	KeyHistoryLimit = "history-limit"
	KeyPrompt       = "prompt"
	KeyColor        = "color"
	KeyTestMode     = "test-mode"
	// KeyShellIntegration enables OSC 133 prompt markers in the interactive shell.
	KeyShellIntegration = "shell-integration"
)

// ConfigPaths represents configuration file paths and their loading status
type ConfigPaths struct {
	ConfigDir        string // Configuration directory path
	ConfigDirExists  bool   // Whether configuration directory exists
	ConfigFile       string // YAML config file path (if given)
	ConfigFileLoaded bool   // Whether the YAML config file was read
	ConfigEnvPath    string // Config .env file path
	ConfigEnvLoaded  bool   // Whether config .env was loaded
	LocalEnvPath     string // Local .env file path
	LocalEnvLoaded   bool   // Whether local .env was loaded
}

// ConfigurationOptions locates the configuration sources.
type ConfigurationOptions struct {
	// ConfigDir holds the user-level .env. Defaults to <user config dir>/pipeshell.
	ConfigDir string
	// LocalDir holds the project-level .env. Defaults to the process working directory.
	LocalDir string
	// ConfigFile is an optional YAML file read before the .env layers.
	ConfigFile string
}

// ConfigurationService provides layered configuration for pipeshell.
// Priority (highest to lowest): bound CLI flags > PIPESHELL_* environment variables >
// local .env > config .env > YAML config file > defaults.
type ConfigurationService struct {
	initialized bool
	viper       *viper.Viper
	options     ConfigurationOptions
	paths       ConfigPaths
}

// NewConfigurationService creates a configuration service over v. A nil v gets a
// private viper instance.
func NewConfigurationService(v *viper.Viper, options ConfigurationOptions) *ConfigurationService {
	if v == nil {
		v = viper.New()
	}
	return &ConfigurationService{viper: v, options: options}
}

// Name returns the service name "configuration" for registration.
func (c *ConfigurationService) Name() string {
	return ConfigurationServiceName
}

// Initialize loads every configuration layer in priority order (lowest to highest).
func (c *ConfigurationService) Initialize() error {
	if c.initialized {
		return nil
	}

	c.loadDefaults()

	if err := c.loadConfigFile(); err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}
	if err := c.loadConfigDotEnv(); err != nil {
		return fmt.Errorf("failed to load config .env: %w", err)
	}
	if err := c.loadLocalDotEnv(); err != nil {
		return fmt.Errorf("failed to load local .env: %w", err)
	}

	c.viper.SetEnvPrefix(EnvPrefix)
	c.viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.viper.AutomaticEnv()

	c.initialized = true
	logger.Debug("Configuration loaded",
		"configEnv", c.paths.ConfigEnvLoaded,
		"localEnv", c.paths.LocalEnvLoaded,
		"configFile", c.paths.ConfigFileLoaded)
	return nil
}

func (c *ConfigurationService) loadDefaults() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "/"
	}
	workDir, err := os.Getwd()
	if err != nil {
		workDir = home
	}

	c.viper.SetDefault(KeyLogLevel, "warn")
	c.viper.SetDefault(KeyLogFile, "")
	c.viper.SetDefault(KeyWorkDir, workDir)
	c.viper.SetDefault(KeyHome, home)
	c.viper.SetDefault(KeyHistoryLimit, 500)
	c.viper.SetDefault(KeyPrompt, "pipeshell> ")
	c.viper.SetDefault(KeyColor, "auto")
	c.viper.SetDefault(KeyTestMode, false)
	c.viper.SetDefault(KeyShellIntegration, false)
}

func (c *ConfigurationService) loadConfigFile() error {
	if c.options.ConfigFile == "" {
		return nil
	}
	c.paths.ConfigFile = c.options.ConfigFile
	c.viper.SetConfigFile(c.options.ConfigFile)
	c.viper.SetConfigType("yaml")
	if err := c.viper.MergeInConfig(); err != nil {
		return err
	}
	c.paths.ConfigFileLoaded = true
	return nil
}

func (c *ConfigurationService) loadConfigDotEnv() error {
	dir := c.options.ConfigDir
	if dir == "" {
		userConfig, err := os.UserConfigDir()
		if err != nil {
			return nil
		}
		dir = filepath.Join(userConfig, "pipeshell")
	}
	c.paths.ConfigDir = dir
	c.paths.ConfigDirExists = dirExists(dir)
	c.paths.ConfigEnvPath = filepath.Join(dir, ".env")

	loaded, err := c.mergeDotEnv(c.paths.ConfigEnvPath)
	c.paths.ConfigEnvLoaded = loaded
	return err
}

func (c *ConfigurationService) loadLocalDotEnv() error {
	dir := c.options.LocalDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil
		}
		dir = wd
	}
	c.paths.LocalEnvPath = filepath.Join(dir, ".env")

	loaded, err := c.mergeDotEnv(c.paths.LocalEnvPath)
	c.paths.LocalEnvLoaded = loaded
	return err
}

// mergeDotEnv merges the PIPESHELL_* entries of a .env file; PIPESHELL_LOG_LEVEL
// becomes log-level. A missing file is not an error.
func (c *ConfigurationService) mergeDotEnv(path string) (bool, error) {
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	settings := make(map[string]any)
	for key, value := range values {
		name, ok := strings.CutPrefix(key, EnvPrefix+"_")
		if !ok {
			continue
		}
		settings[strings.ReplaceAll(strings.ToLower(name), "_", "-")] = value
	}
	if err := c.viper.MergeConfigMap(settings); err != nil {
		return false, err
	}
	return true, nil
}

// GetString returns a configuration value as a string.
func (c *ConfigurationService) GetString(key string) string {
	return c.viper.GetString(key)
}

// GetInt returns a configuration value as an int.
func (c *ConfigurationService) GetInt(key string) int {
	return c.viper.GetInt(key)
}

// GetBool returns a configuration value as a bool.
func (c *ConfigurationService) GetBool(key string) bool {
	return c.viper.GetBool(key)
}

// SetConfigValue overrides a value at the highest priority. Used by tests.
func (c *ConfigurationService) SetConfigValue(key string, value any) {
	c.viper.Set(key, value)
}

// GetAllConfigValues returns every known setting.
func (c *ConfigurationService) GetAllConfigValues() (map[string]any, error) {
	if !c.initialized {
		return nil, fmt.Errorf("configuration service not initialized")
	}
	return c.viper.AllSettings(), nil
}

// GetConfigurationPaths returns configuration file paths and their loading status.
func (c *ConfigurationService) GetConfigurationPaths() (*ConfigPaths, error) {
	if !c.initialized {
		return nil, fmt.Errorf("configuration service not initialized")
	}
	paths := c.paths
	return &paths, nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
