package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config - структура для хранения конфигураций приложения
type Config struct {
	ServerAddress   string        `mapstructure:"SERVER_ADDRESS"`
	PostgresConn    string        `mapstructure:"POSTGRES_CONN"`
	PostgresUser    string        `mapstructure:"POSTGRES_USERNAME"`
	PostgresPass    string        `mapstructure:"POSTGRES_PASSWORD"`
	PostgresHost    string        `mapstructure:"POSTGRES_HOST"`
	PostgresPort    string        `mapstructure:"POSTGRES_PORT"`
	PostgresDB      string        `mapstructure:"POSTGRES_DATABASE"`
	MigrationURL    string        `mapstructure:"MIGRATION_URL"`
	SpacesRegion    string        `mapstructure:"SPACES_REGION"`
	SpacesEndpoint  string        `mapstructure:"SPACES_ENDPOINT"`
	SpacesAccessKey string        `mapstructure:"SPACES_ACCESS_KEY"`
	SpacesSecretKey string        `mapstructure:"SPACES_SECRET_KEY"`
	SpacesBucket    string        `mapstructure:"SPACES_BUCKET"`
	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	JWTTTL          time.Duration `mapstructure:"JWT_TTL"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

var defaults = map[string]any{
	"SERVER_ADDRESS":    "0.0.0.0:8080",
	"POSTGRES_CONN":     "",
	"POSTGRES_USERNAME": "",
	"POSTGRES_PASSWORD": "",
	"POSTGRES_HOST":     "localhost",
	"POSTGRES_PORT":     "5432",
	"POSTGRES_DATABASE": "",
	"MIGRATION_URL":     "file://db/migration",
	"SPACES_REGION":     "",
	"SPACES_ENDPOINT":   "",
	"SPACES_ACCESS_KEY": "",
	"SPACES_SECRET_KEY": "",
	"SPACES_BUCKET":     "",
	"JWT_SECRET":        "",
	"JWT_TTL":           "24h",
	"LOG_LEVEL":         "info",
	"REQUEST_TIMEOUT":   "5s",
	"SHUTDOWN_TIMEOUT":  "10s",
}

// LoadConfig загружает конфигурацию из app.env в каталоге path.
// Переменные окружения перекрывают значения из файла; отсутствие файла не считается ошибкой.
func LoadConfig(path string) (cfg Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
	}
	err = v.Unmarshal(&cfg)
	return
}
