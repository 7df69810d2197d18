package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Generator Generator `yaml:"generator"`
	Sandbox   Sandbox   `yaml:"sandbox"`
	Solver    Solver    `yaml:"solver"`
	Results   Results   `yaml:"results"`
	Server    Server    `yaml:"server"`
	Pricing   Pricing   `yaml:"pricing"`
}

type Generator struct {
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	RequestsPerMin int     `yaml:"requests_per_min"`
	SecretsEnvFile string  `yaml:"secrets_env_file"`
}

type Sandbox struct {
	PythonBin      string   `yaml:"python_bin"`
	TimeoutMS      int      `yaml:"timeout_ms"`
	MaxOutputBytes int      `yaml:"max_output_bytes"`
	AllowedImports []string `yaml:"allowed_imports"`
	BlockedTokens  []string `yaml:"blocked_tokens"`
}

type Solver struct {
	Reflection bool `yaml:"reflection"`
	MaxRetries int  `yaml:"max_retries"`
	Parallel   int  `yaml:"parallel"`
}

type Results struct {
	Dir string `yaml:"dir"`
}

type Server struct {
	Addr           string  `yaml:"addr"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

type Pricing struct {
	File string `yaml:"file"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadOrDefault loads the config at path, falling back to defaults when the
// file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

func applyDefaults(cfg *Config) {
	if cfg.Generator.BaseURL == "" {
		cfg.Generator.BaseURL = "https://api.openai.com"
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = "gpt-4o-mini"
	}
	if cfg.Generator.APIKeyEnv == "" {
		cfg.Generator.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Generator.MaxTokens == 0 {
		cfg.Generator.MaxTokens = 1200
	}
	if cfg.Generator.RequestsPerMin == 0 {
		cfg.Generator.RequestsPerMin = 60
	}
	if cfg.Sandbox.PythonBin == "" {
		cfg.Sandbox.PythonBin = "python3"
	}
	if cfg.Sandbox.TimeoutMS == 0 {
		cfg.Sandbox.TimeoutMS = 6000
	}
	if cfg.Sandbox.MaxOutputBytes == 0 {
		cfg.Sandbox.MaxOutputBytes = 64 * 1024
	}
	if cfg.Solver.MaxRetries == 0 {
		cfg.Solver.MaxRetries = 1
	}
	if cfg.Solver.Parallel == 0 {
		cfg.Solver.Parallel = 4
	}
	if cfg.Results.Dir == "" {
		cfg.Results.Dir = "runs"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Server.RateLimitRPS == 0 {
		cfg.Server.RateLimitRPS = 5
	}
	if cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = 10
	}
}

func validate(cfg *Config) error {
	if cfg.Sandbox.TimeoutMS < 0 {
		return fmt.Errorf("sandbox timeout_ms must be non-negative")
	}
	if cfg.Sandbox.MaxOutputBytes < 0 {
		return fmt.Errorf("sandbox max_output_bytes must be non-negative")
	}
	if cfg.Solver.MaxRetries < 0 {
		return fmt.Errorf("solver max_retries must be non-negative")
	}
	if cfg.Solver.Parallel < 1 {
		return fmt.Errorf("solver parallel must be at least 1")
	}
	if cfg.Generator.RequestsPerMin < 1 {
		return fmt.Errorf("generator requests_per_min must be at least 1")
	}
	if cfg.Server.RateLimitRPS < 0 {
		return fmt.Errorf("server rate_limit_rps must be non-negative")
	}
	return nil
}
