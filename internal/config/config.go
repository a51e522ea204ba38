// Package config loads codesage settings from defaults, an optional YAML
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, with dots in keys
// replaced by underscores (server.port becomes CODESAGE_SERVER_PORT).
const EnvPrefix = "CODESAGE"

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = "codesage.yaml"

// LLM providers.
const (
	ProviderMistral = "mistral"
	ProviderOpenAI  = "openai"
	ProviderOllama  = "ollama"
	ProviderNone    = "none"
)

// DefaultAllowedExtensions are the file types accepted for upload.
var DefaultAllowedExtensions = []string{
	".py", ".js", ".ts", ".tsx", ".jsx", ".java", ".cpp", ".c",
	".h", ".hpp", ".cs", ".go", ".rs", ".rb", ".php", ".swift",
	".kt", ".scala", ".r", ".sql", ".html", ".css", ".scss", ".json",
	".yaml", ".yml", ".xml", ".md", ".txt",
}

// DefaultIgnoreDirs are skipped when walking a directory.
var DefaultIgnoreDirs = []string{".git", "node_modules", "vendor", "__pycache__", ".venv", "dist", "build"}

type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Upload   UploadConfig   `mapstructure:"upload" yaml:"upload"`
	LLM      LLMConfig      `mapstructure:"llm" yaml:"llm"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	CORSOrigins     []string      `mapstructure:"cors_origins" yaml:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Addr is the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type UploadConfig struct {
	MaxFileSize       int64    `mapstructure:"max_file_size" yaml:"max_file_size"`
	AllowedExtensions []string `mapstructure:"allowed_extensions" yaml:"allowed_extensions"`
}

type LLMConfig struct {
	Provider string        `mapstructure:"provider" yaml:"provider"`
	Endpoint string        `mapstructure:"endpoint" yaml:"endpoint"`
	APIKey   string        `mapstructure:"api_key" yaml:"-"`
	Model    string        `mapstructure:"model" yaml:"model"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Available reports whether a model can be called with these settings.
// Remote providers need an API key; a local ollama server does not.
func (l LLMConfig) Available() bool {
	switch l.Provider {
	case ProviderOllama:
		return true
	case ProviderMistral, ProviderOpenAI:
		return l.APIKey != ""
	default:
		return false
	}
}

// LogValue keeps the API key out of logs.
func (l LLMConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("provider", l.Provider),
		slog.String("endpoint", l.Endpoint),
		slog.String("model", l.Model),
		slog.Bool("has_api_key", l.APIKey != ""),
		slog.Duration("timeout", l.Timeout),
	)
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file"`
}

type AnalysisConfig struct {
	Workers      int      `mapstructure:"workers" yaml:"workers"`
	PreviewChars int      `mapstructure:"preview_chars" yaml:"preview_chars"`
	IgnoreDirs   []string `mapstructure:"ignore_dirs" yaml:"ignore_dirs"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("upload.max_file_size", 10*1024*1024)
	v.SetDefault("upload.allowed_extensions", DefaultAllowedExtensions)

	v.SetDefault("llm.provider", ProviderMistral)
	v.SetDefault("llm.endpoint", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "mistral-medium")
	v.SetDefault("llm.timeout", 60*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")

	v.SetDefault("analysis.workers", 4)
	v.SetDefault("analysis.preview_chars", 500)
	v.SetDefault("analysis.ignore_dirs", DefaultIgnoreDirs)
}

// Default returns the built-in settings without reading a file or the
// environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads settings. An explicit path must exist; without one,
// ./codesage.yaml is used when present. Environment variables override the
// file, and MISTRAL_API_KEY is accepted for llm.api_key.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("llm.api_key", EnvPrefix+"_LLM_API_KEY", "MISTRAL_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind llm.api_key: %w", err)
	}

	switch {
	case path != "":
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	default:
		if _, err := os.Stat(DefaultFile); err == nil {
			v.SetConfigFile(DefaultFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", DefaultFile, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	for i, ext := range c.Upload.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Upload.AllowedExtensions[i] = ext
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range 1-65535", c.Server.Port))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout must not be negative"))
	}
	if c.Upload.MaxFileSize <= 0 {
		errs = append(errs, fmt.Errorf("upload.max_file_size must be positive, got %d", c.Upload.MaxFileSize))
	}
	switch c.LLM.Provider {
	case ProviderMistral, ProviderOpenAI, ProviderOllama, ProviderNone:
	default:
		errs = append(errs, fmt.Errorf("llm.provider %q is not one of mistral, openai, ollama, none", c.LLM.Provider))
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("llm.timeout must be positive"))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of json, text", c.Log.Format))
	}
	if c.Analysis.Workers <= 0 {
		errs = append(errs, fmt.Errorf("analysis.workers must be positive, got %d", c.Analysis.Workers))
	}
	if c.Analysis.PreviewChars < 0 {
		errs = append(errs, fmt.Errorf("analysis.preview_chars must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
