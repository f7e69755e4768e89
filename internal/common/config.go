package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full docx-mcp process configuration: document backend
// connection, tenant registry tuning, and the set of transports to expose.
// Most fields have an env var override (see applyEnvOverrides); Logging.Output
// and Logging.TimeFormat are set only by default or file. Loading follows the
// teacher's own default -> file -> env priority chain.
type Config struct {
	Environment string       `toml:"environment"`
	Database    DatabaseConfig `toml:"database"`
	Registry    RegistryConfig `toml:"registry"`
	Transport   TransportConfig `toml:"transport"`
	Logging     LoggingConfig `toml:"logging"`
}

// DatabaseConfig describes the document backend connection. InMemory=true
// uses an embedded, zero-config backend; InMemory=false requires URI,
// Username, and Password.
type DatabaseConfig struct {
	Namespace string `toml:"namespace"`
	InMemory  bool   `toml:"in_memory"`
	URI       string `toml:"uri"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// RegistryConfig tunes the tenant handle cache's eviction behavior.
type RegistryConfig struct {
	TTLSecs      int `toml:"ttl_secs"`
	SweepSecs    int `toml:"sweep_secs"`
	MaxEntries   int `toml:"max_entries"`
}

// TransportConfig selects which surfaces the process exposes and where
// they bind.
type TransportConfig struct {
	EnableStdio        bool   `toml:"enable_stdio"`
	McpServe           bool   `toml:"mcp_serve"`
	IngestServe        bool   `toml:"ingest_serve"`
	McpHTTPAddr        string `toml:"mcp_http_addr"`
	IngestAddr         string `toml:"ingest_addr"`
	IngestTimeoutSecs  int    `toml:"ingest_timeout_secs"`
	IngestMaxBodyBytes int64  `toml:"ingest_max_body_bytes"`
}

// LoggingConfig matches the teacher's own logging shape, trimmed to the
// fields this service's bootstrap actually sets on arbor.
type LoggingConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	Output     []string `toml:"output"`
	TimeFormat string `toml:"time_format"`
}

// RegistryTTL returns the configured TTL as a time.Duration, zero meaning
// eviction is disabled.
func (c Config) RegistryTTL() time.Duration {
	if c.Registry.TTLSecs <= 0 {
		return 0
	}
	return time.Duration(c.Registry.TTLSecs) * time.Second
}

// RegistrySweepInterval returns the configured sweep interval, defaulting
// to the TTL itself when unset, per spec.
func (c Config) RegistrySweepInterval() time.Duration {
	if c.Registry.SweepSecs > 0 {
		return time.Duration(c.Registry.SweepSecs) * time.Second
	}
	return c.RegistryTTL()
}

// IngestTimeout returns the configured per-request ingest deadline.
func (c Config) IngestTimeout() time.Duration {
	return time.Duration(c.Transport.IngestTimeoutSecs) * time.Second
}

// NewDefaultConfig returns the baseline configuration, mirroring spec.md's
// environment-variable default table.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Database: DatabaseConfig{
			Namespace: "docx",
			InMemory:  true,
		},
		Registry: RegistryConfig{
			TTLSecs: 300,
		},
		Transport: TransportConfig{
			EnableStdio:        false,
			McpServe:           true,
			IngestServe:        true,
			McpHTTPAddr:        "127.0.0.1:4020",
			IngestAddr:         "127.0.0.1:4010",
			IngestTimeoutSecs:  30,
			IngestMaxBodyBytes: 26214400,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05.000",
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env,
// mirroring the teacher's LoadFromFile/LoadFromFiles/applyEnvOverrides
// chain. An empty path skips the file stage.
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	config.coerceInMemoryFallback()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// coerceInMemoryFallback forces InMemory back to true when the operator
// asked for a persistent backend but left the URI blank, per spec: a
// missing URI must never crash startup, it must fall back silently.
func (c *Config) coerceInMemoryFallback() {
	if !c.Database.InMemory && c.Database.URI == "" {
		c.Database.InMemory = true
	}
}

// Validate checks the invariants LoadFromFile can't coerce its way out of:
// a persistent backend still needs credentials once a URI is present.
func (c *Config) Validate() error {
	if c.Database.InMemory {
		return nil
	}
	if c.Database.Username == "" || c.Database.Password == "" {
		return fmt.Errorf("database.in_memory is false: username and password are required alongside uri %q", c.Database.URI)
	}
	return nil
}

func applyEnvOverrides(config *Config) {
	if env := os.Getenv("DOCX_ENV"); env != "" {
		config.Environment = env
	}

	if v := os.Getenv("DB_NAMESPACE"); v != "" {
		config.Database.Namespace = v
	}
	if v := os.Getenv("DB_IN_MEMORY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Database.InMemory = b
		}
	}
	if v := os.Getenv("DB_URI"); v != "" {
		config.Database.URI = v
	}
	if v := os.Getenv("DB_USERNAME"); v != "" {
		config.Database.Username = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		config.Database.Password = v
	}

	if v := os.Getenv("REGISTRY_TTL_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Registry.TTLSecs = n
		}
	}
	if v := os.Getenv("REGISTRY_SWEEP_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Registry.SweepSecs = n
		}
	}
	if v := os.Getenv("REGISTRY_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Registry.MaxEntries = n
		}
	}

	if v := os.Getenv("ENABLE_STDIO"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Transport.EnableStdio = b
		}
	}
	if v := os.Getenv("MCP_SERVE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Transport.McpServe = b
		}
	}
	if v := os.Getenv("INGEST_SERVE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Transport.IngestServe = b
		}
	}
	if v := os.Getenv("MCP_HTTP_ADDR"); v != "" {
		config.Transport.McpHTTPAddr = v
	}
	if v := os.Getenv("INGEST_ADDR"); v != "" {
		config.Transport.IngestAddr = v
	}
	if v := os.Getenv("INGEST_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Transport.IngestTimeoutSecs = n
		}
	}
	if v := os.Getenv("INGEST_MAX_BODY_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Transport.IngestMaxBodyBytes = n
		}
	}

	if v := os.Getenv("DOCX_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("DOCX_LOG_FORMAT"); v != "" {
		config.Logging.Format = v
	}
}
