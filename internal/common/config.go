package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Server      ServerConfig   `toml:"server"`
	Railway     RailwayConfig  `toml:"railway"`
	Watchdog    WatchdogConfig `toml:"watchdog"`
	Notify      NotifyConfig   `toml:"notify"`
	Storage     StorageConfig  `toml:"storage"`
	Logging     LoggingConfig  `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"min=1,max=65535"`
	Host string `toml:"host" validate:"required"`
}

// RailwayConfig contains Railway GraphQL API access configuration
type RailwayConfig struct {
	APIURL          string        `toml:"api_url" validate:"required,url"`
	Token           string        `toml:"token"`                          // Railway API token (usually from env)
	ProjectID       string        `toml:"project_id" validate:"required"` // Project whose services are monitored
	LogLimit        int           `toml:"log_limit" validate:"min=1"`     // Log entries fetched per deployment
	RateLimit       int           `toml:"rate_limit" validate:"min=1"`    // API requests per second
	RequestTimeout  time.Duration `toml:"request_timeout"`                // Per-request HTTP timeout
	SelfServiceName string        `toml:"self_service_name"`              // Service name to skip (self-monitoring)
}

// WatchdogConfig controls the poll cycle behavior
type WatchdogConfig struct {
	CheckInterval    time.Duration `toml:"check_interval"`                       // Time between scheduled cycles
	MaxMessageLength int           `toml:"max_message_length" validate:"min=1"` // Alert message truncation length
	BatchThreshold   int           `toml:"batch_threshold" validate:"min=1"`    // Above this many new errors, summarize
	Autostart        bool          `toml:"autostart"`                           // Run a cycle immediately on startup
}

// NotifyConfig contains webhook notification gateway configuration
type NotifyConfig struct {
	WebhookURL   string        `toml:"webhook_url" validate:"omitempty,url"` // Alert gateway base URL (empty disables posting)
	BotName      string        `toml:"bot_name"`
	AlertTimeout time.Duration `toml:"alert_timeout"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings should be exposed in vigil.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Railway: RailwayConfig{
			APIURL:          "https://backboard.railway.app/graphql/v2",
			LogLimit:        50,
			RateLimit:       10,
			RequestTimeout:  30 * time.Second,
			SelfServiceName: "vigil",
		},
		Watchdog: WatchdogConfig{
			CheckInterval:    60 * time.Second,
			MaxMessageLength: 500,
			BatchThreshold:   3,
			Autostart:        true,
		},
		Notify: NotifyConfig{
			BotName:      "vigil",
			AlertTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
	}
}

// LoadFromFiles loads configuration from defaults, then merges each file in
// order (later files override earlier ones), then applies env overrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration against struct validation tags
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
// VIGIL_* variables take priority; the bare names (RAILWAY_API_TOKEN,
// RAILWAY_PROJECT_ID, CHECK_INTERVAL_SECONDS, PORT) are accepted for
// compatibility with existing deployments.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("VIGIL_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("VIGIL_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	} else if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("VIGIL_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Railway configuration
	if apiURL := os.Getenv("VIGIL_RAILWAY_API_URL"); apiURL != "" {
		config.Railway.APIURL = apiURL
	}
	if token := os.Getenv("VIGIL_RAILWAY_TOKEN"); token != "" {
		config.Railway.Token = token
	} else if token := os.Getenv("RAILWAY_API_TOKEN"); token != "" {
		config.Railway.Token = token
	}
	if projectID := os.Getenv("VIGIL_RAILWAY_PROJECT_ID"); projectID != "" {
		config.Railway.ProjectID = projectID
	} else if projectID := os.Getenv("RAILWAY_PROJECT_ID"); projectID != "" {
		config.Railway.ProjectID = projectID
	}
	if logLimit := os.Getenv("VIGIL_RAILWAY_LOG_LIMIT"); logLimit != "" {
		if l, err := strconv.Atoi(logLimit); err == nil {
			config.Railway.LogLimit = l
		}
	}
	if rateLimit := os.Getenv("VIGIL_RAILWAY_RATE_LIMIT"); rateLimit != "" {
		if r, err := strconv.Atoi(rateLimit); err == nil {
			config.Railway.RateLimit = r
		}
	}
	if requestTimeout := os.Getenv("VIGIL_RAILWAY_REQUEST_TIMEOUT"); requestTimeout != "" {
		if d, err := time.ParseDuration(requestTimeout); err == nil {
			config.Railway.RequestTimeout = d
		}
	}
	if selfName := os.Getenv("VIGIL_RAILWAY_SELF_SERVICE_NAME"); selfName != "" {
		config.Railway.SelfServiceName = selfName
	}

	// Watchdog configuration
	if interval := os.Getenv("VIGIL_CHECK_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			config.Watchdog.CheckInterval = d
		}
	} else if seconds := os.Getenv("CHECK_INTERVAL_SECONDS"); seconds != "" {
		if s, err := strconv.Atoi(seconds); err == nil && s > 0 {
			config.Watchdog.CheckInterval = time.Duration(s) * time.Second
		}
	}
	if maxLen := os.Getenv("VIGIL_WATCHDOG_MAX_MESSAGE_LENGTH"); maxLen != "" {
		if l, err := strconv.Atoi(maxLen); err == nil && l > 0 {
			config.Watchdog.MaxMessageLength = l
		}
	}
	if threshold := os.Getenv("VIGIL_WATCHDOG_BATCH_THRESHOLD"); threshold != "" {
		if t, err := strconv.Atoi(threshold); err == nil && t > 0 {
			config.Watchdog.BatchThreshold = t
		}
	}
	if autostart := os.Getenv("VIGIL_WATCHDOG_AUTOSTART"); autostart != "" {
		if a, err := strconv.ParseBool(autostart); err == nil {
			config.Watchdog.Autostart = a
		}
	}

	// Notify configuration
	if webhookURL := os.Getenv("VIGIL_NOTIFY_WEBHOOK_URL"); webhookURL != "" {
		config.Notify.WebhookURL = webhookURL
	} else if webhookURL := os.Getenv("JUGGERNAUT_URL"); webhookURL != "" {
		config.Notify.WebhookURL = webhookURL
	}
	if botName := os.Getenv("VIGIL_NOTIFY_BOT_NAME"); botName != "" {
		config.Notify.BotName = botName
	}
	if alertTimeout := os.Getenv("VIGIL_NOTIFY_ALERT_TIMEOUT"); alertTimeout != "" {
		if d, err := time.ParseDuration(alertTimeout); err == nil {
			config.Notify.AlertTimeout = d
		}
	}

	// Storage configuration
	if badgerPath := os.Getenv("VIGIL_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("VIGIL_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("VIGIL_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("VIGIL_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
