package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	// Datenbank: "postgres" für den Betrieb, "sqlite" für lokale Entwicklung
	DBDriver   string `envconfig:"DB_DRIVER" default:"postgres"`
	DBHost     string `envconfig:"DB_HOST"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"content-agent.db"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"8000"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	// Provider-Zugangsdaten werden erst bei der ersten Nutzung geprüft.
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	GeminiModel   string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL"`
	GroqAPIKey    string `envconfig:"GROQ_API_KEY"`
	GroqModel     string `envconfig:"GROQ_MODEL" default:"llama-3.3-70b-versatile"`
	GroqBaseURL   string `envconfig:"GROQ_BASE_URL" default:"https://api.groq.com/openai/v1"`

	SummaryLanguage string `envconfig:"SUMMARY_LANGUAGE" default:"Arabic"`
	SummaryMaxChars int    `envconfig:"SUMMARY_MAX_CHARS" default:"0"`

	FetchTimeout   time.Duration `envconfig:"FETCH_TIMEOUT" default:"15s"`
	FetchUserAgent string        `envconfig:"FETCH_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"`

	HistoryDefaultLimit int `envconfig:"HISTORY_DEFAULT_LIMIT" default:"20"`
	HistoryMaxLimit     int `envconfig:"HISTORY_MAX_LIMIT" default:"100"`

	// Export des Analyseverlaufs nach S3 (optional)
	ExportS3Key      string `envconfig:"EXPORT_S3_KEY"`
	ExportS3Secret   string `envconfig:"EXPORT_S3_SECRET"`
	ExportS3URL      string `envconfig:"EXPORT_S3_URL"`
	ExportS3Region   string `envconfig:"EXPORT_S3_REGION" default:"us-east-1"`
	ExportS3Bucket   string `envconfig:"EXPORT_S3_BUCKET"`
	ExportSchedule   string `envconfig:"EXPORT_SCHEDULE" default:"0 3 * * *"`
	ExportKeep       int    `envconfig:"EXPORT_KEEP" default:"7"`
	ExportMaxRecords int    `envconfig:"EXPORT_MAX_RECORDS" default:"1000"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// ExportEnabled meldet, ob ein S3-Bucket für den Verlaufsexport konfiguriert ist.
func (c *Config) ExportEnabled() bool {
	return c.ExportS3Bucket != "" && c.ExportS3URL != ""
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
