package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Geo    GeoConfig    `yaml:"geo" mapstructure:"geo"`
	FTP    FTPConfig    `yaml:"ftp" mapstructure:"ftp"`
	HTTP   HTTPConfig   `yaml:"http" mapstructure:"http"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// GeoConfig configures which series is fetched and where from.
type GeoConfig struct {
	Accession  string `yaml:"accession" mapstructure:"accession"`
	DestDir    string `yaml:"dest_dir" mapstructure:"dest_dir"`
	SOFTSource string `yaml:"soft_source" mapstructure:"soft_source"`
	FTPBase    string `yaml:"ftp_base" mapstructure:"ftp_base"`
	HTTPSBase  string `yaml:"https_base" mapstructure:"https_base"`
	Encoding   string `yaml:"encoding" mapstructure:"encoding"`
}

// FTPConfig configures the FTP transport.
type FTPConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// HTTPConfig configures the HTTPS transport used for SOFT retrieval.
type HTTPConfig struct {
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent         string  `yaml:"user_agent" mapstructure:"user_agent"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// StoreConfig configures the download history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// OutputConfig configures terminal output.
type OutputConfig struct {
	Color    bool `yaml:"color" mapstructure:"color"`
	Progress bool `yaml:"progress" mapstructure:"progress"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// SOFT sources.
const (
	SOFTSourceFTP   = "ftp"
	SOFTSourceHTTPS = "https"
)

// Store drivers.
const (
	DriverNone     = "none"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultSQLitePath is the history database used when the sqlite driver has no
// database_url.
const DefaultSQLitePath = "geo-cli.db"

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GEO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("geo.accession", "GSE244901")
	v.SetDefault("geo.dest_dir", ".")
	v.SetDefault("geo.soft_source", SOFTSourceFTP)
	v.SetDefault("geo.ftp_base", "ftp://ftp.ncbi.nlm.nih.gov")
	v.SetDefault("geo.https_base", "https://ftp.ncbi.nlm.nih.gov")
	v.SetDefault("geo.encoding", "utf-8")
	v.SetDefault("ftp.timeout_secs", 30)
	v.SetDefault("http.timeout_secs", 60)
	v.SetDefault("http.user_agent", "geo-cli/1.0")
	v.SetDefault("http.requests_per_second", 3)
	v.SetDefault("store.driver", DriverNone)
	v.SetDefault("store.database_url", "")
	v.SetDefault("output.color", true)
	v.SetDefault("output.progress", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if cfg.Store.Driver == DriverSQLite && cfg.Store.DatabaseURL == "" {
		cfg.Store.DatabaseURL = DefaultSQLitePath
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Modes are "fetch",
// "show" and "history".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "fetch", "show":
		switch c.Geo.SOFTSource {
		case SOFTSourceFTP, SOFTSourceHTTPS:
		default:
			errs = append(errs, "geo.soft_source must be ftp or https")
		}
		if c.FTP.TimeoutSecs <= 0 {
			errs = append(errs, "ftp.timeout_secs must be > 0")
		}
		if c.HTTP.TimeoutSecs <= 0 {
			errs = append(errs, "http.timeout_secs must be > 0")
		}
		if c.HTTP.RequestsPerSecond <= 0 {
			errs = append(errs, "http.requests_per_second must be > 0")
		}
		if mode == "fetch" && c.Geo.DestDir == "" {
			errs = append(errs, "geo.dest_dir is required")
		}
		errs = append(errs, c.validateStore(false)...)
	case "history":
		errs = append(errs, c.validateStore(true)...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateStore(required bool) []string {
	var errs []string
	switch c.Store.Driver {
	case DriverNone, "":
		if required {
			errs = append(errs, "store.driver must be sqlite or postgres to read history")
		}
	case DriverSQLite:
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required for postgres")
		}
	default:
		errs = append(errs, "store.driver must be none, sqlite or postgres")
	}
	return errs
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
