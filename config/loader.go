package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/buildprobe/errors"
	"github.com/kbukum/buildprobe/logger"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BUILDPROBE"

// FileName is the configuration file searched for when none is given.
const FileName = "buildprobe.yml"

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads path into the process environment without overriding variables already set.
func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver handles finding config and env files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// SearchDirs are the directories searched, in order, for buildprobe.yml and .env.
var SearchDirs = []string{".", "testdata", ".."}

// ResolveFiles returns explicit paths if provided, otherwise searches SearchDirs.
func (cr *Resolver) ResolveFiles(opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = cr.find(FileName)
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = cr.find(".env")
	}
	return resolved
}

func (cr *Resolver) find(name string) string {
	for _, dir := range SearchDirs {
		path := filepath.Join(dir, name)
		if cr.FileSystem.Exists(path) {
			return path
		}
	}
	return ""
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load resolves, reads, defaults and validates the configuration.
func Load(opts ...LoaderOption) (*Config, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(lc)

	cfg, err := loadFromResolvedFiles(files, lc.FileSystem)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromResolvedFiles loads configuration from specific files.
func loadFromResolvedFiles(files ResolvedFiles, fs FileSystem) (*Config, error) {
	log := logger.WithComponent("config")
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	setDefaults(v)

	// 1. YAML file over defaults
	if files.ConfigFile != "" && fs.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.InvalidConfig("reading "+files.ConfigFile).WithCause(err)
		}
		log.Debug("config file loaded", logger.Fields(logger.FieldPath, files.ConfigFile))
	}

	// 2. .env into the process environment
	if files.EnvFile != "" && fs.Exists(files.EnvFile) {
		if err := fs.LoadEnv(files.EnvFile); err != nil {
			log.Warn("failed to load .env file", logger.Fields(logger.FieldPath, files.EnvFile, logger.FieldError, err.Error()))
		}
	}

	// 3. BUILDPROBE_* variables over everything
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelimiter, "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.InvalidConfig("decoding configuration").WithCause(err)
	}
	return cfg, nil
}

// keyDelimiter replaces viper's "." so version keys such as "8.5" in
// tool.binaries stay flat.
const keyDelimiter = "::"

func key(parts ...string) string {
	return strings.Join(parts, keyDelimiter)
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault(key("tool", "binary"), DefaultBinary)
	v.SetDefault(key("tool", "binaries"), map[string]string{})
	v.SetDefault(key("tool", "default_version"), "")
	v.SetDefault(key("tool", "detect_version"), true)
	v.SetDefault(key("tool", "version_pattern"), DefaultVersionPattern)
	v.SetDefault(key("tool", "version_env"), DefaultVersionEnv)
	v.SetDefault(key("tool", "home_env"), DefaultHomeEnv)
	v.SetDefault(key("tool", "home_dir"), DefaultHomeDir)
	v.SetDefault(key("tool", "verbose_args"), DefaultVerboseArgs)
	v.SetDefault(key("tool", "config_file"), DefaultConfigFile)
	v.SetDefault(key("tool", "properties_resource"), DefaultPropertiesResource)
	v.SetDefault(key("tool", "properties_path_env"), DefaultPropertiesPathEnv)
	v.SetDefault(key("tool", "timeout"), DefaultTimeout)
	v.SetDefault(key("tool", "grace_period"), DefaultGracePeriod)
	v.SetDefault(key("tool", "env"), map[string]string{})

	v.SetDefault(key("workspace", "temp_prefix"), DefaultTempPrefix)
	v.SetDefault(key("workspace", "resource_dir"), DefaultResourceDir)

	v.SetDefault(key("telemetry", "endpoint"), "")
	v.SetDefault(key("telemetry", "insecure"), false)
	v.SetDefault(key("telemetry", "service_name"), "buildprobe")
	v.SetDefault(key("telemetry", "sample_rate"), 1.0)
	v.SetDefault(key("telemetry", "interval"), 10*time.Second)

	v.SetDefault(key("logging", "level"), "info")
	v.SetDefault(key("logging", "format"), "console")
	v.SetDefault(key("logging", "output"), "stdout")
	v.SetDefault(key("logging", "no_color"), false)
	v.SetDefault(key("logging", "timestamp"), true)
	v.SetDefault(key("logging", "caller"), false)
}
