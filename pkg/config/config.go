// Package config loads and validates application configuration from YAML
// files with environment-variable overrides. It provides typed structs for
// every subsystem (Pipeline, Vocabulary, Postgres, Kafka, Redis, Logging,
// Metrics).
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Redis      RedisConfig      `yaml:"redis"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// PipelineConfig enumerates every recognized cleaning option with its
// documented default. Options map one-to-one onto pipeline behavior; there
// are no loose key-value knobs.
type PipelineConfig struct {
	// QualityThreshold is the minimum raw character count a page must have
	// before cleaning is attempted. Shorter pages produce an empty record.
	QualityThreshold int `yaml:"qualityThreshold"`
	// EnableOCRFix toggles ligature expansion, de-spaced word collapsing,
	// and hyphenation merging.
	EnableOCRFix bool `yaml:"enableOcrFix"`
	// PreserveEntities protects lines containing canonical terms from
	// header/footer removal and enables entity extraction on output.
	PreserveEntities bool `yaml:"preserveEntities"`
	// MinRepeatFraction is the fraction of pages a line must appear on to be
	// classified as a header/footer.
	MinRepeatFraction float64 `yaml:"minRepeatFraction"`
	// CorrectionThreshold is the minimum similarity score a vocabulary
	// candidate needs to replace a corrupted word.
	CorrectionThreshold float64 `yaml:"correctionThreshold"`
	// EnableSpellCorrection toggles the trigram-indexed fuzzy corrector.
	EnableSpellCorrection bool `yaml:"enableSpellCorrection"`
	// MaxCandidates bounds the trigram shortlist scored per word.
	MaxCandidates int `yaml:"maxCandidates"`
	// CacheCapacity bounds the correction cache entry count.
	CacheCapacity int `yaml:"cacheCapacity"`
	// SentencesPerParagraph controls paragraph regrouping of cleaned text.
	SentencesPerParagraph int `yaml:"sentencesPerParagraph"`
	// Workers is the per-document page worker pool size.
	Workers int `yaml:"workers"`
}

// VocabularyConfig locates the lexicon and canonical dictionary files loaded
// once at startup.
type VocabularyConfig struct {
	// LexiconPath is a CSV with at least a term column and a binary label
	// column; only rows labeled as domain vocabulary are loaded.
	LexiconPath string `yaml:"lexiconPath"`
	TermColumn  string `yaml:"termColumn"`
	LabelColumn string `yaml:"labelColumn"`
	// DictionaryPath is a JSON map of canonical name to variant spellings.
	DictionaryPath string `yaml:"dictionaryPath"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
	SnapshotEvery   time.Duration `yaml:"snapshotEvery"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	RawPages     string `yaml:"rawPages"`
	CleanedPages string `yaml:"cleanedPages"`
}

// RedisConfig holds Redis connection and page-cache parameters.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics and health server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Pipeline.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultConfig returns a Config with defaults matching the documented
// pipeline contract.
func defaultConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			QualityThreshold:      10,
			EnableOCRFix:          true,
			PreserveEntities:      true,
			MinRepeatFraction:     0.3,
			CorrectionThreshold:   0.75,
			EnableSpellCorrection: true,
			MaxCandidates:         50,
			CacheCapacity:         10000,
			SentencesPerParagraph: 3,
			Workers:               runtime.NumCPU(),
		},
		Vocabulary: VocabularyConfig{
			LexiconPath:    "resources/final_language_dataset.csv",
			TermColumn:     "ASCII",
			LabelColumn:    "label",
			DictionaryPath: "resources/ayurveda_terms.json",
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "corpuscleaner",
			User:            "corpuscleaner",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			SnapshotEvery:   time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "corpus-cleaner-group",
			Topics: KafkaTopics{
				RawPages:     "pages-raw",
				CleanedPages: "pages-cleaned",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			PoolSize: 10,
			CacheTTL: 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

func (p PipelineConfig) validate() error {
	if p.MinRepeatFraction <= 0 || p.MinRepeatFraction > 1 {
		return fmt.Errorf("pipeline.minRepeatFraction must be in (0,1], got %v", p.MinRepeatFraction)
	}
	if p.CorrectionThreshold <= 0 || p.CorrectionThreshold > 1 {
		return fmt.Errorf("pipeline.correctionThreshold must be in (0,1], got %v", p.CorrectionThreshold)
	}
	if p.MaxCandidates <= 0 {
		return fmt.Errorf("pipeline.maxCandidates must be positive, got %d", p.MaxCandidates)
	}
	if p.CacheCapacity < 0 {
		return fmt.Errorf("pipeline.cacheCapacity must be non-negative, got %d", p.CacheCapacity)
	}
	return nil
}

// applyEnvOverrides reads CC_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CC_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("CC_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("CC_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("CC_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("CC_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("CC_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("CC_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CC_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("CC_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("CC_VOCAB_LEXICON"); v != "" {
		cfg.Vocabulary.LexiconPath = v
	}
	if v := os.Getenv("CC_VOCAB_DICTIONARY"); v != "" {
		cfg.Vocabulary.DictionaryPath = v
	}
	if v := os.Getenv("CC_PIPELINE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Pipeline.Workers = n
		}
	}
	if v := os.Getenv("CC_PIPELINE_CORRECTION_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Pipeline.CorrectionThreshold = f
		}
	}
	if v := os.Getenv("CC_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CC_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("CC_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
}
