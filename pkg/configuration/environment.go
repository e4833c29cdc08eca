package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/iota-uz/utils/fs"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/inventory/pkg/logging"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

// LoadEnv loads the env files that exist, looking in the working directory first and then
// walking up to the directory that holds go.mod.
func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if fs.FileExists(file) {
			existingFiles = append(existingFiles, file)
		}
	}

	if len(existingFiles) == 0 {
		if root, ok := findModuleRoot(); ok {
			for _, file := range envFiles {
				candidate := filepath.Join(root, file)
				if fs.FileExists(candidate) {
					existingFiles = append(existingFiles, candidate)
				}
			}
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

func findModuleRoot() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for {
		if fs.FileExists(filepath.Join(dir, "go.mod")) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"inventory"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

type LokiOptions struct {
	AppName string `env:"LOKI_APP_NAME" envDefault:"inventory"`
	LogPath string `env:"LOG_PATH" envDefault:"./logs/app.log"`
}

type OpenTelemetryOptions struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	TempoURL    string `env:"OTEL_TEMPO_URL" envDefault:"localhost:4318"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"inventory"`
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type RateLimitOptions struct {
	Enabled   bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	GlobalRPS int    `env:"RATE_LIMIT_GLOBAL_RPS" envDefault:"1000"`
	Storage   string `env:"RATE_LIMIT_STORAGE" envDefault:"memory"` // memory or redis
	RedisURL  string `env:"RATE_LIMIT_REDIS_URL"`
}

// Validate checks the rate limit configuration for errors
func (r *RateLimitOptions) Validate() error {
	if r.GlobalRPS < 0 {
		return fmt.Errorf("rate limit GlobalRPS must be non-negative, got %d", r.GlobalRPS)
	}
	if r.GlobalRPS > 1000000 {
		return fmt.Errorf("rate limit GlobalRPS too high, maximum is 1,000,000, got %d", r.GlobalRPS)
	}
	if r.Storage != "memory" && r.Storage != "redis" {
		return fmt.Errorf("rate limit Storage must be 'memory' or 'redis', got '%s'", r.Storage)
	}
	if r.Storage == "redis" && r.RedisURL == "" {
		return fmt.Errorf("rate limit RedisURL is required when Storage is 'redis'")
	}
	return nil
}

type ImportOptions struct {
	LockBackend   string        `env:"IMPORT_LOCK_BACKEND" envDefault:"postgres"` // postgres or redis
	LockTTL       time.Duration `env:"IMPORT_LOCK_TTL" envDefault:"10m"`
	MaxUploadSize int64         `env:"IMPORT_MAX_UPLOAD_SIZE" envDefault:"33554432"`
}

func (o *ImportOptions) validate(redisURL string) error {
	backend := strings.ToLower(strings.TrimSpace(o.LockBackend))
	if backend == "" {
		backend = "postgres"
	}
	switch backend {
	case "postgres", "redis":
	default:
		return fmt.Errorf("invalid IMPORT_LOCK_BACKEND=%q (expected postgres|redis)", o.LockBackend)
	}
	if backend == "redis" && strings.TrimSpace(redisURL) == "" {
		return fmt.Errorf("IMPORT_LOCK_BACKEND=redis requires REDIS_URL")
	}
	if o.LockTTL <= 0 {
		return fmt.Errorf("IMPORT_LOCK_TTL must be positive, got %s", o.LockTTL)
	}
	if o.MaxUploadSize <= 0 {
		return fmt.Errorf("IMPORT_MAX_UPLOAD_SIZE must be positive, got %d", o.MaxUploadSize)
	}
	o.LockBackend = backend
	return nil
}

type OutboxOptions struct {
	Table             string        `env:"OUTBOX_TABLE" envDefault:"equipment_outbox"`
	RelayEnabled      bool          `env:"OUTBOX_RELAY_ENABLED" envDefault:"true"`
	RelayPollInterval time.Duration `env:"OUTBOX_RELAY_POLL_INTERVAL" envDefault:"1s"`
	RelayBatchSize    int           `env:"OUTBOX_RELAY_BATCH_SIZE" envDefault:"100"`
	RelayMaxAttempts  int           `env:"OUTBOX_RELAY_MAX_ATTEMPTS" envDefault:"25"`
	// Published rows older than this are purged by the relay; zero keeps them.
	Retention time.Duration `env:"OUTBOX_RETENTION" envDefault:"168h"`
}

type Configuration struct {
	Database      DatabaseOptions
	Loki          LokiOptions
	OpenTelemetry OpenTelemetryOptions
	Prometheus    PrometheusOptions
	RateLimit     RateLimitOptions
	Import        ImportOptions
	Outbox        OutboxOptions

	RedisURL         string `env:"REDIS_URL" envDefault:"localhost:6379"`
	ServerPort       int    `env:"PORT" envDefault:"3200"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string `env:"-"`
	Origin           string `env:"ORIGIN" envDefault:"http://localhost:3200"`
	PageSize         int    `env:"PAGE_SIZE" envDefault:"25"`
	MaxPageSize      int    `env:"MAX_PAGE_SIZE" envDefault:"100"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"error"`
	// Header carrying the request id; a random uuid is generated when absent.
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
	// Header carrying the client address; request.RemoteAddr is used when absent.
	RealIPHeader string `env:"REAL_IP_HEADER" envDefault:"X-Real-IP"`
	// Header carrying the acting username set by the authenticating proxy.
	ActorHeader string `env:"ACTOR_HEADER" envDefault:"X-Actor-Username"`
	// Record every successful mutating request in action_logs.
	ActionLogEnabled bool `env:"ACTION_LOG_ENABLED" envDefault:"false"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}
	if err := c.validate(); err != nil {
		return err
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.Loki.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	c.Database.Opts = c.Database.ConnectionString()
	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}
	return nil
}

func (c *Configuration) validate() error {
	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rate limit configuration error: %w", err)
	}
	if err := c.Import.validate(c.RedisURL); err != nil {
		return fmt.Errorf("import configuration error: %w", err)
	}
	if strings.TrimSpace(c.Outbox.Table) == "" {
		return fmt.Errorf("OUTBOX_TABLE must not be empty")
	}
	if c.PageSize <= 0 || c.MaxPageSize < c.PageSize {
		return fmt.Errorf("invalid paging: PAGE_SIZE=%d MAX_PAGE_SIZE=%d", c.PageSize, c.MaxPageSize)
	}
	return nil
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
