package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	BackendFile   = "file"
	BackendDiskv  = "diskv"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"

	FormatJSON = "json"
	FormatYAML = "yaml"
)

type Config struct {
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Outputs   OutputsConfig   `mapstructure:"outputs"`
}

type StorageConfig struct {
	Backend    string        `mapstructure:"backend" validate:"oneof=file diskv sqlite mysql"`
	Format     string        `mapstructure:"format" validate:"oneof=json yaml"`
	Key        string        `mapstructure:"key" validate:"required"`
	Directory  string        `mapstructure:"directory" validate:"required"`
	SQLitePath string        `mapstructure:"sqlite_path" validate:"required_if=Backend sqlite"`
	Debounce   time.Duration `mapstructure:"debounce" validate:"gte=0"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
	PingAttempts    uint              `mapstructure:"ping_attempts" validate:"gte=1"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port" validate:"gte=1,lte=65535"`
	CORS CORSConfig `mapstructure:"cors"`
	// URL of a running revisit-server. When set, the CLI sends commands there instead of
	// opening the storage itself.
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type ScheduleConfig struct {
	// TimeZone decides which calendar day "today" is. Empty means the local time zone.
	TimeZone string `mapstructure:"time_zone" validate:"omitempty,timezone"`
}

type TemplatesConfig struct {
	AgendaTemplate string `mapstructure:"agenda_template" validate:"omitempty,file"`
}

type OutputsConfig struct {
	ReportDirectory string `mapstructure:"report_directory"`
	ExportDirectory string `mapstructure:"export_directory"`
}

// Location returns the time zone used for the current day.
func (c ScheduleConfig) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("time.LoadLocation(%s) > %w", c.TimeZone, err)
	}
	return loc, nil
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/revisit")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.format", FormatJSON)
	v.SetDefault("storage.key", "state")
	v.SetDefault("storage.directory", filepath.Join("~", ".local", "share", "revisit"))
	v.SetDefault("storage.sqlite_path", filepath.Join("~", ".local", "share", "revisit", "revisit.db"))
	v.SetDefault("storage.debounce", time.Second)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "revisit")
	v.SetDefault("database.username", "user")
	v.SetDefault("database.ping_attempts", 3)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("templates.agenda_template", "")
	v.SetDefault("outputs.report_directory", filepath.Join("outputs", "reports"))
	v.SetDefault("outputs.export_directory", filepath.Join("outputs", "exports"))

	// Secrets and per-shell overrides are read from the environment only
	if err := v.BindEnv("database.password", "REVISIT_DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind REVISIT_DB_PASSWORD environment variable: %w", err)
	}
	if err := v.BindEnv("server.url", "REVISIT_SERVER"); err != nil {
		return nil, fmt.Errorf("failed to bind REVISIT_SERVER environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	for _, path := range []*string{
		&cfg.Storage.Directory,
		&cfg.Storage.SQLitePath,
		&cfg.Templates.AgendaTemplate,
		&cfg.Outputs.ReportDirectory,
		&cfg.Outputs.ExportDirectory,
	} {
		expanded, err := homedir.Expand(*path)
		if err != nil {
			return nil, fmt.Errorf("homedir.Expand(%s) > %w", *path, err)
		}
		*path = expanded
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
