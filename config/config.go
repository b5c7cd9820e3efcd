package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the digest system
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	Budget    BudgetConfig    `mapstructure:"budget"`
	Research  ResearchConfig  `mapstructure:"research"`
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	Verify    VerifyConfig    `mapstructure:"verify"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Dedup     DedupConfig     `mapstructure:"dedup"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server and auth settings
type ServerConfig struct {
	Address           string `mapstructure:"address"`
	JWTSecret         string `mapstructure:"jwt_secret"`
	AdminUser         string `mapstructure:"admin_user"`
	AdminPasswordHash string `mapstructure:"admin_password_hash"` // bcrypt hash
}

// BudgetConfig bounds input consumption for a single run
type BudgetConfig struct {
	Ceiling          int64   `mapstructure:"ceiling"`
	ReservedFraction float64 `mapstructure:"reserved_fraction"`
	DegradeMargin    float64 `mapstructure:"degrade_margin"`
	DispatchCost     int64   `mapstructure:"dispatch_cost"`
}

func (b BudgetConfig) Validate() error {
	if b.Ceiling <= 0 {
		return fmt.Errorf("budget.ceiling must be > 0")
	}
	if b.ReservedFraction < 0 || b.ReservedFraction >= 1 {
		return fmt.Errorf("budget.reserved_fraction must be in [0,1)")
	}
	if b.DegradeMargin < 0 {
		return fmt.Errorf("budget.degrade_margin cannot be negative")
	}
	return nil
}

// ResearchConfig drives the controller's planning loop
type ResearchConfig struct {
	Catalogue           []TopicConfig `mapstructure:"catalogue"`
	DiscoveryDispatches int           `mapstructure:"discovery_dispatches"`
	DiscoveryCap        int           `mapstructure:"discovery_cap"`
	MaxAttempts         int           `mapstructure:"max_attempts"`
	PacingInterval      int           `mapstructure:"pacing_interval"`
	MinItems            int           `mapstructure:"min_items"`
}

// TopicConfig is one planned entry in the daily catalogue
type TopicConfig struct {
	Name         string `mapstructure:"name"`
	Category     string `mapstructure:"category"`
	Priority     int    `mapstructure:"priority"`
	Collaborator string `mapstructure:"collaborator"` // search (default) or social
}

func (r ResearchConfig) Validate() error {
	if len(r.Catalogue) == 0 {
		return fmt.Errorf("research.catalogue must contain at least one topic")
	}
	for i, topic := range r.Catalogue {
		if strings.TrimSpace(topic.Name) == "" {
			return fmt.Errorf("research.catalogue[%d].name required", i)
		}
		switch topic.Collaborator {
		case "", "search", "social":
		default:
			return fmt.Errorf("research.catalogue[%d].collaborator must be search or social", i)
		}
	}
	if r.MaxAttempts <= 0 {
		return fmt.Errorf("research.max_attempts must be > 0")
	}
	if r.DiscoveryCap < 0 {
		return fmt.Errorf("research.discovery_cap cannot be negative")
	}
	return nil
}

// GatewayConfig holds per-collaborator endpoint settings
type GatewayConfig struct {
	Search CollaboratorConfig `mapstructure:"search"`
	Video  CollaboratorConfig `mapstructure:"video"`
	Social CollaboratorConfig `mapstructure:"social"`
}

// CollaboratorConfig configures one collaborator endpoint
type CollaboratorConfig struct {
	Endpoint   string        `mapstructure:"endpoint"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

func (g GatewayConfig) Validate() error {
	for _, pair := range []struct {
		name string
		cfg  CollaboratorConfig
	}{{"search", g.Search}, {"video", g.Video}, {"social", g.Social}} {
		if strings.TrimSpace(pair.cfg.Endpoint) == "" {
			return fmt.Errorf("gateway.%s.endpoint required", pair.name)
		}
	}
	return nil
}

// VerifyConfig controls URL liveness checks
type VerifyConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	Concurrency int           `mapstructure:"concurrency"`
}

// FetchConfig controls page-content enrichment
type FetchConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxContentSize int           `mapstructure:"max_content_size"`
	MaxRetries     int           `mapstructure:"max_retries"`
	UseHeadless    bool          `mapstructure:"use_headless"`
}

// DedupConfig controls cross-run repeat suppression
type DedupConfig struct {
	Threshold float64 `mapstructure:"threshold"`
}

func (d DedupConfig) Validate() error {
	if d.Threshold <= 0 || d.Threshold > 1 {
		return fmt.Errorf("dedup.threshold must be in (0,1]")
	}
	return nil
}

// StorageConfig contains history persistence settings
type StorageConfig struct {
	Backend  string         `mapstructure:"backend"` // file, postgres, redis
	File     FileConfig     `mapstructure:"file"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

func (s StorageConfig) Validate() error {
	switch s.Backend {
	case "file", "":
		if strings.TrimSpace(s.File.DataDir) == "" {
			return fmt.Errorf("storage.file.data_dir required for file backend")
		}
	case "postgres":
		return s.Postgres.Validate()
	case "redis":
		return s.Redis.Validate()
	default:
		return fmt.Errorf("storage.backend must be one of file, postgres, redis")
	}
	return nil
}

// FileConfig contains file storage settings
type FileConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// PostgresConfig contains Postgres connection settings
type PostgresConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	DBName   string        `mapstructure:"dbname"`
	SSLMode  string        `mapstructure:"sslmode"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (p PostgresConfig) Validate() error {
	if strings.TrimSpace(p.URL) != "" {
		return nil
	}
	if strings.TrimSpace(p.Host) == "" {
		return fmt.Errorf("storage.postgres.host required when url is not provided")
	}
	if strings.TrimSpace(p.Port) == "" {
		return fmt.Errorf("storage.postgres.port required when url is not provided")
	}
	if strings.TrimSpace(p.DBName) == "" {
		return fmt.Errorf("storage.postgres.dbname required when url is not provided")
	}
	return nil
}

// ConnString assembles a lib/pq connection string from the parts.
func (p PostgresConfig) ConnString() string {
	if strings.TrimSpace(p.URL) != "" {
		return p.URL
	}
	sslmode := p.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, sslmode)
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (r RedisConfig) Validate() error {
	if strings.TrimSpace(r.Host) == "" {
		return fmt.Errorf("storage.redis.host required")
	}
	if strings.TrimSpace(r.Port) == "" {
		return fmt.Errorf("storage.redis.port required")
	}
	return nil
}

// TelemetryConfig contains telemetry and monitoring settings
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetricsPort int    `mapstructure:"metrics_port"`
	LogFile     string `mapstructure:"log_file"`
}

func (t TelemetryConfig) Validate() error {
	if t.Enabled && t.MetricsPort <= 0 {
		return fmt.Errorf("telemetry.metrics_port must be > 0 when telemetry is enabled")
	}
	return nil
}

// LoadConfig loads config from file
func LoadConfig(path string) *Config {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("json")   // REQUIRED if the config file does not have the extension in the name
	viper.SetDefault("general.default_timeout", 2*time.Minute)
	viper.SetDefault("budget.ceiling", 200000)
	viper.SetDefault("budget.reserved_fraction", 0.1)
	viper.SetDefault("budget.degrade_margin", 0.15)
	viper.SetDefault("budget.dispatch_cost", 500)
	viper.SetDefault("research.discovery_dispatches", 2)
	viper.SetDefault("research.discovery_cap", 5)
	viper.SetDefault("research.max_attempts", 3)
	viper.SetDefault("research.pacing_interval", 3)
	viper.SetDefault("research.min_items", 3)
	viper.SetDefault("dedup.threshold", 0.8)
	viper.SetDefault("verify.timeout", 10*time.Second)
	viper.SetDefault("verify.concurrency", 4)
	viper.SetDefault("fetch.enabled", true)
	viper.SetDefault("fetch.timeout", 30*time.Second)
	viper.SetDefault("fetch.max_content_size", 50000)
	viper.SetDefault("fetch.max_retries", 2)
	viper.SetDefault("storage.backend", "file")
	viper.SetDefault("storage.file.data_dir", "./data")

	if path == "" {
		viper.AddConfigPath("./app/config") // path to look for the config file in
		viper.AddConfigPath("./config")     // path to look for the config file in
		viper.AddConfigPath(".")            // optionally look for config in the working directory
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)                                // bin/
		viper.AddConfigPath(filepath.Join(exeDir, ".."))           // repo root
		viper.AddConfigPath(filepath.Join(exeDir, "..", "config")) // repo root/config
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("DAYBRIEF")
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	viper.AutomaticEnv() // read in environment variables that match (DAYBRIEF_*)

	err := viper.ReadInConfig() // Find and read the config file
	if err != nil {             // Handle errors reading the config file
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	// unmarshal config
	var config Config

	if err = viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if err := config.Budget.Validate(); err != nil {
		panic(err)
	}
	if err := config.Research.Validate(); err != nil {
		panic(err)
	}
	if err := config.Gateway.Validate(); err != nil {
		panic(err)
	}
	if err := config.Dedup.Validate(); err != nil {
		panic(err)
	}
	if err := config.Storage.Validate(); err != nil {
		panic(err)
	}
	if err := config.Telemetry.Validate(); err != nil {
		panic(err)
	}
	return &config
}
