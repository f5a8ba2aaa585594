package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Artifacts   ArtifactsConfig
	Embedding   EmbeddingConfig
	Prediction  PredictionConfig
	Calibration CalibrationConfig
	Limits      LimitsConfig
	Logger      LoggerConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Driver          string // "postgres" or "sqlite"
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SQLitePath      string
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type ArtifactsConfig struct {
	Dir string
	// Versions lists candidate artifact versions, highest priority first.
	Versions []string
}

type EmbeddingConfig struct {
	Enabled bool
	URL     string
	Timeout time.Duration
}

type PredictionConfig struct {
	IntervalMultiplier  float64
	ConfidenceLevel     float64
	FallbackIntervalPct float64
	MinPrice            float64
	MaxPrice            float64
}

type CalibrationConfig struct {
	SoftThreshold     float64
	Damping           float64
	YearWindow        int
	WidenedYearWindow int
	MinComparables    int
	Timeout           time.Duration
}

type LimitsConfig struct {
	MaxImages     int
	MaxImageBytes int64
}

type LoggerConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)

	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "carwiseiq")
	v.SetDefault("DATABASE_PASSWORD", "")
	v.SetDefault("DATABASE_NAME", "carwiseiq")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 2)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DATABASE_SQLITE_PATH", "./carwiseiq.db")

	v.SetDefault("ARTIFACT_DIR", "./artifacts")
	v.SetDefault("ARTIFACT_VERSIONS", "v4,v3,v2")

	v.SetDefault("EMBEDDING_ENABLED", false)
	v.SetDefault("EMBEDDING_URL", "http://localhost:8501")
	v.SetDefault("EMBEDDING_TIMEOUT", "15s")

	v.SetDefault("PREDICTION_INTERVAL_MULTIPLIER", 1.96)
	v.SetDefault("PREDICTION_CONFIDENCE_LEVEL", 0.95)
	v.SetDefault("PREDICTION_FALLBACK_INTERVAL_PCT", 0.20)
	v.SetDefault("PREDICTION_MIN_PRICE", 100.0)
	v.SetDefault("PREDICTION_MAX_PRICE", 2000000.0)

	v.SetDefault("CALIBRATION_SOFT_THRESHOLD", 0.30)
	v.SetDefault("CALIBRATION_DAMPING", 0.50)
	v.SetDefault("CALIBRATION_YEAR_WINDOW", 1)
	v.SetDefault("CALIBRATION_WIDENED_YEAR_WINDOW", 2)
	v.SetDefault("CALIBRATION_MIN_COMPARABLES", 3)
	v.SetDefault("CALIBRATION_TIMEOUT", "5s")

	v.SetDefault("LIMITS_MAX_IMAGES", 8)
	v.SetDefault("LIMITS_MAX_IMAGE_BYTES", 8*1024*1024)

	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")

	// Env
	v.AutomaticEnv()

	versions := splitList(v.GetString("ARTIFACT_VERSIONS"))
	if len(versions) == 0 {
		return nil, fmt.Errorf("ARTIFACT_VERSIONS must list at least one version")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("DATABASE_DRIVER"),
			Host:            v.GetString("DATABASE_HOST"),
			Port:            v.GetInt("DATABASE_PORT"),
			User:            v.GetString("DATABASE_USER"),
			Password:        v.GetString("DATABASE_PASSWORD"),
			Name:            v.GetString("DATABASE_NAME"),
			SSLMode:         v.GetString("DATABASE_SSLMODE"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: durationOr(v, "DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
			SQLitePath:      v.GetString("DATABASE_SQLITE_PATH"),
		},
		Artifacts: ArtifactsConfig{
			Dir:      v.GetString("ARTIFACT_DIR"),
			Versions: versions,
		},
		Embedding: EmbeddingConfig{
			Enabled: v.GetBool("EMBEDDING_ENABLED"),
			URL:     v.GetString("EMBEDDING_URL"),
			Timeout: durationOr(v, "EMBEDDING_TIMEOUT", 15*time.Second),
		},
		Prediction: PredictionConfig{
			IntervalMultiplier:  v.GetFloat64("PREDICTION_INTERVAL_MULTIPLIER"),
			ConfidenceLevel:     v.GetFloat64("PREDICTION_CONFIDENCE_LEVEL"),
			FallbackIntervalPct: v.GetFloat64("PREDICTION_FALLBACK_INTERVAL_PCT"),
			MinPrice:            v.GetFloat64("PREDICTION_MIN_PRICE"),
			MaxPrice:            v.GetFloat64("PREDICTION_MAX_PRICE"),
		},
		Calibration: CalibrationConfig{
			SoftThreshold:     v.GetFloat64("CALIBRATION_SOFT_THRESHOLD"),
			Damping:           v.GetFloat64("CALIBRATION_DAMPING"),
			YearWindow:        v.GetInt("CALIBRATION_YEAR_WINDOW"),
			WidenedYearWindow: v.GetInt("CALIBRATION_WIDENED_YEAR_WINDOW"),
			MinComparables:    v.GetInt("CALIBRATION_MIN_COMPARABLES"),
			Timeout:           durationOr(v, "CALIBRATION_TIMEOUT", 5*time.Second),
		},
		Limits: LimitsConfig{
			MaxImages:     v.GetInt("LIMITS_MAX_IMAGES"),
			MaxImageBytes: v.GetInt64("LIMITS_MAX_IMAGE_BYTES"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
	}

	return cfg, nil
}

func durationOr(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
