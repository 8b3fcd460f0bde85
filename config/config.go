package config

import (
	"time"

	"github.com/kbukum/buildprobe/errors"
	"github.com/kbukum/buildprobe/logger"
	"github.com/kbukum/buildprobe/observability"
	"github.com/kbukum/buildprobe/validation"
)

// Default values.
const (
	DefaultBinary             = "gradle"
	DefaultVersionPattern     = `(?m)^Gradle\s+(\S+)`
	DefaultVersionEnv         = "PROBE_TOOL_VERSION"
	DefaultHomeEnv            = "GRADLE_USER_HOME"
	DefaultHomeDir            = ".gradle-home"
	DefaultConfigFile         = "gradle.properties"
	DefaultPropertiesResource = "testkit-gradle.properties"
	DefaultPropertiesPathEnv  = "BUILDPROBE_TESTKIT_PROPERTIES"
	DefaultTimeout            = 10 * time.Minute
	DefaultGracePeriod        = 5 * time.Second
	DefaultTempPrefix         = "buildprobe-"
	DefaultResourceDir        = "testdata"
)

// DefaultVerboseArgs are appended to every tool invocation.
var DefaultVerboseArgs = []string{"--stacktrace", "--info", "--console=plain"}

// Config is the root buildprobe configuration.
type Config struct {
	Tool      ToolConfig      `yaml:"tool" mapstructure:"tool"`
	Workspace WorkspaceConfig `yaml:"workspace" mapstructure:"workspace"`
	Logging   logger.Config   `yaml:"logging" mapstructure:"logging"`
	// Telemetry exports spans and metrics over OTLP when an endpoint is set.
	Telemetry observability.ExportConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// ToolConfig describes how the build tool is located and invoked.
type ToolConfig struct {
	// Binary is the executable used when no version-specific binary is configured.
	Binary string `yaml:"binary" mapstructure:"binary" validate:"required"`
	// Binaries maps a pinned version to an executable.
	Binaries map[string]string `yaml:"binaries" mapstructure:"binaries"`
	// DefaultVersion pins a version for fixtures that do not select one.
	DefaultVersion string `yaml:"default_version" mapstructure:"default_version"`
	// DetectVersion runs `<binary> --version` when nothing pins a version.
	DetectVersion  bool   `yaml:"detect_version" mapstructure:"detect_version"`
	VersionPattern string `yaml:"version_pattern" mapstructure:"version_pattern"`
	VersionEnv     string `yaml:"version_env" mapstructure:"version_env" validate:"required"`

	// HomeEnv names the variable that points the tool at its home directory.
	HomeEnv string `yaml:"home_env" mapstructure:"home_env" validate:"required"`
	// HomeDir is the tool home, relative to the staged workspace.
	HomeDir string `yaml:"home_dir" mapstructure:"home_dir" validate:"required,relpath"`

	VerboseArgs []string `yaml:"verbose_args" mapstructure:"verbose_args"`

	// ConfigFile is the workspace file supplementary properties are appended to.
	ConfigFile         string `yaml:"config_file" mapstructure:"config_file" validate:"required,relpath"`
	PropertiesResource string `yaml:"properties_resource" mapstructure:"properties_resource" validate:"omitempty,relpath"`
	PropertiesPathEnv  string `yaml:"properties_path_env" mapstructure:"properties_path_env"`

	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period" validate:"gt=0"`

	// Env is added to the tool's environment.
	Env map[string]string `yaml:"env" mapstructure:"env"`
}

// BinaryFor returns the executable for a pinned version and whether Binaries
// maps it. Unmapped versions fall back to Binary.
func (c *ToolConfig) BinaryFor(version string) (string, bool) {
	if bin, ok := c.Binaries[version]; ok && version != "" && bin != "" {
		return bin, true
	}
	return c.Binary, false
}

// WorkspaceConfig controls where workspaces are created and templates are read from.
type WorkspaceConfig struct {
	TempPrefix  string `yaml:"temp_prefix" mapstructure:"temp_prefix"`
	ResourceDir string `yaml:"resource_dir" mapstructure:"resource_dir" validate:"required"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.Tool.DetectVersion = true
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields. DetectVersion is left as is.
func (c *Config) ApplyDefaults() {
	t := &c.Tool
	if t.Binary == "" {
		t.Binary = DefaultBinary
	}
	if t.VersionPattern == "" {
		t.VersionPattern = DefaultVersionPattern
	}
	if t.VersionEnv == "" {
		t.VersionEnv = DefaultVersionEnv
	}
	if t.HomeEnv == "" {
		t.HomeEnv = DefaultHomeEnv
	}
	if t.HomeDir == "" {
		t.HomeDir = DefaultHomeDir
	}
	if t.VerboseArgs == nil {
		t.VerboseArgs = append([]string(nil), DefaultVerboseArgs...)
	}
	if t.ConfigFile == "" {
		t.ConfigFile = DefaultConfigFile
	}
	if t.PropertiesResource == "" {
		t.PropertiesResource = DefaultPropertiesResource
	}
	if t.PropertiesPathEnv == "" {
		t.PropertiesPathEnv = DefaultPropertiesPathEnv
	}
	if t.Timeout == 0 {
		t.Timeout = DefaultTimeout
	}
	if t.GracePeriod == 0 {
		t.GracePeriod = DefaultGracePeriod
	}

	if c.Workspace.TempPrefix == "" {
		c.Workspace.TempPrefix = DefaultTempPrefix
	}
	if c.Workspace.ResourceDir == "" {
		c.Workspace.ResourceDir = DefaultResourceDir
	}

	c.Logging.ApplyDefaults()
}

// Validate checks struct tags, the version pattern and the logging section.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := validation.New().
		Pattern("tool.version_pattern", c.Tool.VersionPattern).
		Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return errors.InvalidConfig("logging: " + err.Error()).WithCause(err)
	}
	return nil
}
