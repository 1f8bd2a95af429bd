package quill

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the file form of the engine options
type Config struct {
	TempDir              string   `yaml:"tempDir"`
	AutoRefresh          bool     `yaml:"autoRefresh"`
	StrictTypes          bool     `yaml:"strictTypes"`
	StrictParsing        bool     `yaml:"strictParsing"`
	Linter               []string `yaml:"linter"`
	Syntax               string   `yaml:"syntax"`
	DisabledCapabilities []string `yaml:"disabledCapabilities"`
	Extensions           []string `yaml:"extensions"`
	TemplateDir          string   `yaml:"templateDir"`
}

// LoadConfig reads a YAML configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigError(ErrMsgConfigRead, path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, NewConfigError(ErrMsgConfigParse, path, err)
	}
	return cfg, nil
}

// ParseConfig parses YAML configuration data
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Syntax != "" {
		if _, err := SyntaxConfig(cfg.Syntax, ""); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// Options converts the configuration into engine options. Extensions are
// looked up by name in available; an unknown name is an error.
func (c *Config) Options(available map[string]Extension) ([]Option, error) {
	opts := []Option{
		WithTempDirectory(c.TempDir),
		WithAutoRefresh(c.AutoRefresh),
		WithStrictTypes(c.StrictTypes),
		WithStrictParsing(c.StrictParsing),
		WithSyntax(c.Syntax),
		WithoutCapabilities(c.DisabledCapabilities...),
	}
	if len(c.Linter) > 0 {
		opts = append(opts, WithLinter(c.Linter...))
	}
	if c.TemplateDir != "" {
		opts = append(opts, WithLoader(NewFileLoader(c.TemplateDir)))
	}
	for _, name := range c.Extensions {
		ext, ok := available[name]
		if !ok {
			return nil, NewConfigError(ErrMsgConfigInvalid, name, nil)
		}
		opts = append(opts, WithExtensions(ext))
	}
	return opts, nil
}
