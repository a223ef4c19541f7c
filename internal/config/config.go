// Package config loads, merges and validates application configuration.
// Values are layered, lowest precedence first: built-in defaults, an optional
// YAML config file, an optional .env file, MANIFEST_MCP_* environment
// variables and command line flags.
// file: internal/config/config.go
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dkoosis/manifest-mcp/internal/logging"
	"github.com/dkoosis/manifest-mcp/internal/prompts"
)

// EnvPrefix is prepended to every environment override, e.g.
// MANIFEST_MCP_SERVER_NAME for server.name.
const EnvPrefix = "MANIFEST_MCP"

// DefaultManifestDir is the directory name searched for when no manifest
// root is configured.
const DefaultManifestDir = "manifests"

// Configuration keys.
const (
	KeyManifestRoot    = "manifest_root"
	KeyServerName      = "server.name"
	KeyServerVersion   = "server.version"
	KeyProtocolVersion = "server.protocol_version"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
	KeyMetricsAddr     = "metrics.addr"
	KeyFixedAttachment = "attachments.fixed"
)

// ServerConfig is what the server reports about itself during initialize.
type ServerConfig struct {
	Name            string `mapstructure:"name"`
	Version         string `mapstructure:"version"`
	ProtocolVersion string `mapstructure:"protocol_version"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is json or console.
	Format string `mapstructure:"format"`
}

// MetricsConfig controls the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// FixedAttachment lists attachments always added when Prompt is requested.
type FixedAttachment struct {
	Prompt      string               `mapstructure:"prompt"`
	Attachments []prompts.Attachment `mapstructure:"attachments"`
}

// AttachmentsConfig holds the fixed attachment table.
type AttachmentsConfig struct {
	Fixed []FixedAttachment `mapstructure:"fixed"`
}

// Config is the root configuration structure.
type Config struct {
	// ManifestRoot is the directory holding prompts/ and resources/.
	ManifestRoot string            `mapstructure:"manifest_root"`
	Server       ServerConfig      `mapstructure:"server"`
	Log          LogConfig         `mapstructure:"log"`
	Metrics      MetricsConfig     `mapstructure:"metrics"`
	Attachments  AttachmentsConfig `mapstructure:"attachments"`
}

// LoadOptions says where Load looks for configuration beyond the defaults.
type LoadOptions struct {
	// ConfigFile is an explicit YAML file. When empty, manifest-mcp.yaml is
	// looked up in the working directory and ~/.config/manifest-mcp, and a
	// missing file is not an error.
	ConfigFile string
	// EnvFile is a dotenv file loaded into the process environment. When
	// empty, ./.env is loaded if present.
	EnvFile string
	// Flags, when set, are bound to their configuration keys.
	Flags *pflag.FlagSet
	// Executable and WorkDir seed manifest root discovery. Empty values are
	// filled from os.Executable and os.Getwd.
	Executable string
	WorkDir    string
}

// flagKeys maps command line flag names to configuration keys.
var flagKeys = map[string]string{
	"manifest-root": KeyManifestRoot,
	"log-level":     KeyLogLevel,
	"log-format":    KeyLogFormat,
	"metrics-addr":  KeyMetricsAddr,
	"server-name":   KeyServerName,
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:            "mcp-poc-server",
			Version:         "1.0.0",
			ProtocolVersion: "2024-11-05",
		},
		Log: LogConfig{
			Level:  string(logging.LevelInfo),
			Format: logging.FormatJSON,
		},
		Attachments: AttachmentsConfig{
			Fixed: defaultFixedAttachments(),
		},
	}
}

func defaultFixedAttachments() []FixedAttachment {
	defaults := prompts.DefaultFixedAttachments()
	names := make([]string, 0, len(defaults))
	for name := range defaults {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]FixedAttachment, 0, len(names))
	for _, name := range names {
		out = append(out, FixedAttachment{Prompt: name, Attachments: defaults[name]})
	}
	return out
}

// setDefaults registers every key so environment overrides apply to it.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault(KeyManifestRoot, d.ManifestRoot)
	v.SetDefault(KeyServerName, d.Server.Name)
	v.SetDefault(KeyServerVersion, d.Server.Version)
	v.SetDefault(KeyProtocolVersion, d.Server.ProtocolVersion)
	v.SetDefault(KeyLogLevel, d.Log.Level)
	v.SetDefault(KeyLogFormat, d.Log.Format)
	v.SetDefault(KeyMetricsAddr, d.Metrics.Addr)

	fixed := make([]map[string]interface{}, 0, len(d.Attachments.Fixed))
	for _, f := range d.Attachments.Fixed {
		atts := make([]map[string]interface{}, 0, len(f.Attachments))
		for _, a := range f.Attachments {
			atts = append(atts, map[string]interface{}{"kind": string(a.Kind), "path": a.Path, "name": a.Name})
		}
		fixed = append(fixed, map[string]interface{}{"prompt": f.Prompt, "attachments": atts})
	}
	v.SetDefault(KeyFixedAttachment, fixed)
}

// Load merges all configuration sources into a Config and resolves the
// manifest root. It does not validate; call Validate on the result.
func Load(opts LoadOptions) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, opts.ConfigFile); err != nil {
		return nil, err
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrapf(err, "failed to bind flag --%s", name)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}

	if cfg.ManifestRoot == "" {
		exe, wd := opts.Executable, opts.WorkDir
		if exe == "" {
			exe, _ = os.Executable()
		}
		if wd == "" {
			wd, _ = os.Getwd()
		}
		cfg.ManifestRoot = DiscoverManifestRoot(ManifestCandidates(exe, wd))
		logging.GetLogger("config").Debug("Manifest root discovered.", "root", cfg.ManifestRoot)
	}
	if abs, err := filepath.Abs(cfg.ManifestRoot); err == nil {
		cfg.ManifestRoot = abs
	}

	return &cfg, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "failed to load env file: %s", path)
	}
	logging.GetLogger("config").Debug("Loaded env file.", "path", path)
	return nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "failed to read config file: %s", path)
		}
		logging.GetLogger("config").Debug("Loaded config file.", "path", path)
		return nil
	}

	v.SetConfigName("manifest-mcp")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "manifest-mcp"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "failed to read config file")
	}
	logging.GetLogger("config").Debug("Loaded config file.", "path", v.ConfigFileUsed())
	return nil
}

// ManifestCandidates lists where a manifest directory is looked for, in
// order: beside the executable's parent, beside the executable, then in the
// working directory.
func ManifestCandidates(executable, workDir string) []string {
	var out []string
	if executable != "" {
		dir := filepath.Dir(executable)
		out = append(out,
			filepath.Join(dir, "..", DefaultManifestDir),
			filepath.Join(dir, DefaultManifestDir),
		)
	}
	return append(out, filepath.Join(workDir, DefaultManifestDir))
}

// DiscoverManifestRoot returns the first candidate that is a directory, or
// the last candidate when none exists. An absent root serves empty lists.
func DiscoverManifestRoot(candidates []string) string {
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return filepath.Clean(c)
		}
	}
	if len(candidates) == 0 {
		return DefaultManifestDir
	}
	return filepath.Clean(candidates[len(candidates)-1])
}

// FixedAttachmentMap returns the fixed attachments keyed by prompt name.
// Entries for the same prompt are concatenated in order.
func (c *Config) FixedAttachmentMap() map[string][]prompts.Attachment {
	out := make(map[string][]prompts.Attachment, len(c.Attachments.Fixed))
	for _, f := range c.Attachments.Fixed {
		out[f.Prompt] = append(out[f.Prompt], f.Attachments...)
	}
	return out
}

// Validate checks that required fields are present and enumerations hold
// known values.
func (c *Config) Validate() error {
	if c.ManifestRoot == "" {
		return errors.New("manifest_root must not be empty")
	}
	if c.Server.Name == "" {
		return errors.New("server.name must not be empty")
	}
	if c.Server.Version == "" {
		return errors.New("server.version must not be empty")
	}
	if c.Server.ProtocolVersion == "" {
		return errors.New("server.protocol_version must not be empty")
	}

	switch logging.Level(strings.ToLower(c.Log.Level)) {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
	default:
		return errors.Newf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case logging.FormatJSON, logging.FormatConsole:
	default:
		return errors.Newf("log.format %q is not one of json, console", c.Log.Format)
	}

	for i, f := range c.Attachments.Fixed {
		if f.Prompt == "" {
			return errors.Newf("attachments.fixed[%d]: prompt must not be empty", i)
		}
		for j, a := range f.Attachments {
			if err := validateAttachment(a); err != nil {
				return errors.Wrapf(err, "attachments.fixed[%d].attachments[%d]", i, j)
			}
		}
	}
	return nil
}

func validateAttachment(a prompts.Attachment) error {
	switch a.Kind {
	case prompts.AttachDirectory:
		if a.Path == "" {
			return errors.New("directory attachment needs a path")
		}
	case prompts.AttachResource:
		if a.Name == "" {
			return errors.New("resource attachment needs a name")
		}
	default:
		return errors.Newf("unknown attachment kind %q", a.Kind)
	}
	return nil
}
