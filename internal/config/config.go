package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server ServerConfig
	Auth   AuthConfig
	Jobs   JobsConfig
	Forms  FormsConfig
}

type ServerConfig struct {
	Port        string `validate:"required"`
	Env         string
	LogLevel    string
	BodyLimitMB int `validate:"gt=0"`
}

type AuthConfig struct {
	Password string `validate:"required"`
}

type JobsConfig struct {
	TTLMinutes    int `validate:"gt=0"` // retention window for job records
	MaxConcurrent int `validate:"gt=0"` // generation jobs running at once
}

type FormsConfig struct {
	TemplatePath        string `validate:"required"`
	DefaultWorkbookPath string `validate:"required"`
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("APP_PASSWORD")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("server.body_limit_mb", "BODY_LIMIT_MB")
	_ = viper.BindEnv("auth.password", "APP_PASSWORD")
	_ = viper.BindEnv("jobs.ttl_minutes", "JOB_TTL_MINUTES")
	_ = viper.BindEnv("jobs.max_concurrent", "JOBS_MAX_CONCURRENT")
	_ = viper.BindEnv("forms.template_path", "TEMPLATE_PATH")
	_ = viper.BindEnv("forms.default_workbook_path", "DEFAULT_WORKBOOK_PATH")

	// Defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("server.body_limit_mb", 50)
	viper.SetDefault("auth.password", "change-me-in-production")
	viper.SetDefault("jobs.ttl_minutes", 30)
	viper.SetDefault("jobs.max_concurrent", 4)
	viper.SetDefault("forms.template_path", "1099 NEC FORM.pdf")
	viper.SetDefault("forms.default_workbook_path", "1099 NEC Default Format.xlsx")

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("server.port"),
			Env:         viper.GetString("server.env"),
			LogLevel:    viper.GetString("server.log_level"),
			BodyLimitMB: viper.GetInt("server.body_limit_mb"),
		},
		Auth: AuthConfig{
			Password: viper.GetString("auth.password"),
		},
		Jobs: JobsConfig{
			TTLMinutes:    viper.GetInt("jobs.ttl_minutes"),
			MaxConcurrent: viper.GetInt("jobs.max_concurrent"),
		},
		Forms: FormsConfig{
			TemplatePath:        viper.GetString("forms.template_path"),
			DefaultWorkbookPath: viper.GetString("forms.default_workbook_path"),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
