package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/ardanlabs/rtwbind/generator"
)

// DefaultFile is read when no config path is given. Its absence is not an
// error.
const DefaultFile = "rtwbind.yaml"

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	// Model is the model identifier; empty means take it from the header.
	Model string `yaml:"model"`
	// Header is an explicit header path. It takes precedence over Dir.
	Header string `yaml:"header"`
	// Dir is scanned for the model header.
	Dir     string `yaml:"dir"`
	Mode    string `yaml:"mode"`
	Strict  bool   `yaml:"strict"`
	Package string `yaml:"package"`
	Lib     string `yaml:"lib"`
	Alias   string `yaml:"alias"`
	Output  string `yaml:"output"`
	Debug   bool   `yaml:"debug"`
}

func Default() Config {
	return Config{
		Dir:    "sys",
		Mode:   generator.ModeOwned,
		Output: ".",
	}
}

// Load reads path over the defaults. A missing file is only an error when
// required is set.
func Load(fs afero.Fs, path string, required bool) (Config, error) {
	cfg := Default()

	data, err := afero.ReadFile(fs, path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !required:
		return cfg, nil
	case err != nil:
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap describes the environment variables that override the file.
func (c Config) AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"RTWBIND_MODEL":  {"RTWBIND_MODEL", c.Model, "Model identifier (default: read from the header)"},
		"RTWBIND_HEADER": {"RTWBIND_HEADER", c.Header, "Path to the model header"},
		"RTWBIND_DIR":    {"RTWBIND_DIR", c.Dir, "Directory scanned for the model header (default \"sys\")"},
		"RTWBIND_MODE":   {"RTWBIND_MODE", c.Mode, "Generation mode, owned or global (default \"owned\")"},
		"RTWBIND_STRICT": {"RTWBIND_STRICT", c.Strict, "Fail on unrecognized struct body lines"},
		"RTWBIND_DEBUG":  {"RTWBIND_DEBUG", c.Debug, "Show additional debug information (e.g. RTWBIND_DEBUG=1)"},
	}
}

// ApplyEnv overrides fields from the environment as seen through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, v, err)
		}
		*dst = b
		return nil
	}

	str("RTWBIND_MODEL", &c.Model)
	str("RTWBIND_HEADER", &c.Header)
	str("RTWBIND_DIR", &c.Dir)
	str("RTWBIND_MODE", &c.Mode)

	return errors.Join(
		boolean("RTWBIND_STRICT", &c.Strict),
		boolean("RTWBIND_DEBUG", &c.Debug),
	)
}

func (c Config) Validate() error {
	if _, err := generator.ModeFor(c.Mode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Header == "" && c.Dir == "" {
		return fmt.Errorf("%w: one of header or dir is required", ErrInvalid)
	}
	if c.Output == "" {
		return fmt.Errorf("%w: output directory is empty", ErrInvalid)
	}
	return nil
}

// BindingOptions returns the generator options carried by the config.
func (c Config) BindingOptions() generator.BindingOptions {
	return generator.BindingOptions{
		Package: c.Package,
		Lib:     c.Lib,
		Alias:   c.Alias,
	}
}

// LoadDotEnv loads path into the process environment if it exists.
func LoadDotEnv(fs afero.Fs, path string) error {
	ok, err := afero.Exists(fs, path)
	if err != nil {
		return fmt.Errorf("failed to check if %s exists: %w", path, err)
	}
	if !ok {
		return nil
	}

	f, err := fs.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	env, err := godotenv.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	for k, v := range env {
		if _, set := os.LookupEnv(k); set {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return err
		}
	}

	return nil
}
