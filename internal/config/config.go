package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/samsaffron/term-md/internal/llm"
	"github.com/samsaffron/term-md/internal/ui"
)

const appName = "term-md"

type Config struct {
	Provider  string          `mapstructure:"provider" yaml:"provider"`
	Assistant AssistantConfig `mapstructure:"assistant" yaml:"assistant"`
	Editor    EditorConfig    `mapstructure:"editor" yaml:"editor"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Anthropic ProviderConfig  `mapstructure:"anthropic" yaml:"anthropic"`
	OpenAI    ProviderConfig  `mapstructure:"openai" yaml:"openai"`
	Gemini    ProviderConfig  `mapstructure:"gemini" yaml:"gemini"`
}

// ProviderConfig configures one text-generation backend. APIKey is a
// fallback for when no key is in the secure store.
type ProviderConfig struct {
	APIKey string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	Model  string `mapstructure:"model" yaml:"model"`
}

type AssistantConfig struct {
	ContextLines int `mapstructure:"context_lines" yaml:"context_lines"` // tail sent with "continue"
	MaxTokens    int `mapstructure:"max_tokens" yaml:"max_tokens"`       // 0 = provider default
}

type EditorConfig struct {
	PreviewStyle string         `mapstructure:"preview_style" yaml:"preview_style"` // auto, dark, light or theme
	WordWrap     int            `mapstructure:"word_wrap" yaml:"word_wrap"`         // 0 = pane width
	SyncScroll   bool           `mapstructure:"sync_scroll" yaml:"sync_scroll"`
	Theme        string         `mapstructure:"theme" yaml:"theme"`
	Colors       ui.ThemeConfig `mapstructure:"colors" yaml:"colors,omitempty"`
}

type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Level string `mapstructure:"level" yaml:"level"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Provider: llm.ProviderGemini,
		Assistant: AssistantConfig{
			ContextLines: 20,
		},
		Editor: EditorConfig{
			PreviewStyle: "auto",
			SyncScroll:   true,
			Theme:        "gruvbox",
		},
		Log: LogConfig{
			Level: "info",
		},
		Anthropic: ProviderConfig{Model: llm.DefaultModel(llm.ProviderAnthropic)},
		OpenAI:    ProviderConfig{Model: llm.DefaultModel(llm.ProviderOpenAI)},
		Gemini:    ProviderConfig{Model: llm.DefaultModel(llm.ProviderGemini)},
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("provider", d.Provider)
	v.SetDefault("assistant.context_lines", d.Assistant.ContextLines)
	v.SetDefault("assistant.max_tokens", d.Assistant.MaxTokens)
	v.SetDefault("editor.preview_style", d.Editor.PreviewStyle)
	v.SetDefault("editor.word_wrap", d.Editor.WordWrap)
	v.SetDefault("editor.sync_scroll", d.Editor.SyncScroll)
	v.SetDefault("editor.theme", d.Editor.Theme)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("anthropic.model", d.Anthropic.Model)
	v.SetDefault("openai.model", d.OpenAI.Model)
	v.SetDefault("gemini.model", d.Gemini.Model)
}

// Load reads config.yaml from the config directory. A missing file is not an
// error.
func Load() (*Config, error) {
	configPath, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config dir: %w", err)
	}
	return LoadFrom(configPath)
}

// LoadFrom reads config.yaml from dir.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix("TERM_MD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolve() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if !validProvider(c.Provider) {
		return fmt.Errorf("unknown provider %q (want one of %s)", c.Provider, strings.Join(llm.ProviderNames(), ", "))
	}
	for _, p := range []*ProviderConfig{&c.Anthropic, &c.OpenAI, &c.Gemini} {
		p.APIKey = expandEnv(p.APIKey)
		p.Model = expandEnv(p.Model)
	}
	c.Log.File = expandPath(expandEnv(c.Log.File))
	if c.Assistant.ContextLines <= 0 {
		c.Assistant.ContextLines = 20
	}
	switch c.Editor.PreviewStyle {
	case "auto", "dark", "light", "theme":
	default:
		return fmt.Errorf("invalid editor.preview_style %q (want auto, dark, light or theme)", c.Editor.PreviewStyle)
	}
	return nil
}

func validProvider(name string) bool {
	for _, p := range llm.ProviderNames() {
		if p == name {
			return true
		}
	}
	return false
}

// Active returns the settings of the selected provider.
func (c *Config) Active() ProviderConfig {
	switch c.Provider {
	case llm.ProviderAnthropic:
		return c.Anthropic
	case llm.ProviderOpenAI:
		return c.OpenAI
	default:
		return c.Gemini
	}
}

// FallbackKey returns the configured key for the active provider, or its
// environment variable when the config has none.
func (c *Config) FallbackKey() string {
	if key := c.Active().APIKey; key != "" {
		return key
	}
	return os.Getenv(llm.EnvVar(c.Provider))
}

// ApplyOverrides applies provider and model overrides to the config.
// If provider is non-empty, it overrides the global provider.
// If model is non-empty, it overrides the model for the active provider.
func (c *Config) ApplyOverrides(provider, model string) error {
	if provider != "" {
		provider = strings.ToLower(provider)
		if !validProvider(provider) {
			return fmt.Errorf("unknown provider %q", provider)
		}
		c.Provider = provider
	}
	if model != "" {
		switch c.Provider {
		case llm.ProviderAnthropic:
			c.Anthropic.Model = model
		case llm.ProviderOpenAI:
			c.OpenAI.Model = model
		default:
			c.Gemini.Model = model
		}
	}
	return nil
}

// Theme resolves the editor theme with color overrides applied.
func (c *Config) Theme() *ui.Theme {
	return ui.ResolveTheme(c.Editor.Theme, c.Editor.Colors)
}

// expandEnv expands ${VAR} or $VAR in a string
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}
	return s
}

// expandPath expands a leading ~/ to the home directory.
func expandPath(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

// GetConfigDir returns the XDG config directory for term-md.
// Uses $XDG_CONFIG_HOME if set, otherwise ~/.config
func GetConfigDir() (string, error) {
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, appName), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", appName), nil
}

// GetConfigPath returns the path where the config file should be located
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// GetStateDir returns the XDG state directory used for logs.
// Uses $XDG_STATE_HOME if set, otherwise ~/.local/state
func GetStateDir() string {
	if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
		return filepath.Join(xdgState, appName)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", appName+"-state") // fallback
	}
	return filepath.Join(homeDir, ".local", "state", appName)
}

// DefaultLogFile is used when log.file is unset.
func DefaultLogFile() string {
	return filepath.Join(GetStateDir(), appName+".log")
}

// Exists returns true if a config file exists
func Exists() bool {
	path, err := GetConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

const header = `# term-md configuration
# provider: gemini, anthropic or openai
# API keys are stored encrypted with "term-md key set". An api_key here
# (for example "$GEMINI_API_KEY") is only used when no key is stored.
# editor.preview_style: auto, dark, light or theme
`

// Marshal renders cfg as commented YAML.
func Marshal(cfg *Config) ([]byte, error) {
	out := *cfg
	for _, p := range []*ProviderConfig{&out.Anthropic, &out.OpenAI, &out.Gemini} {
		p.APIKey = "" // never echo resolved secrets
	}
	body, err := yaml.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return append([]byte(header+"\n"), body...), nil
}

// SaveTo writes cfg to path, creating its directory.
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Save writes the config to disk
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}
