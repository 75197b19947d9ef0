package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Taxonomy sources.
const (
	TaxonomySourcePostgres = "postgres"
	TaxonomySourceSQLite   = "sqlite"
	TaxonomySourceFile     = "file"
)

// Categorization types.
const (
	CategorizationKeyword = "keyword"
	CategorizationLLM     = "llm"
)

type Config struct {
	Database struct {
		Primary struct {
			DSN string `mapstructure:"dsn"`
		} `mapstructure:"primary"`
	} `mapstructure:"database"`

	Taxonomy struct {
		Source     string `mapstructure:"source"`      // "postgres", "sqlite" or "file"
		SQLitePath string `mapstructure:"sqlite_path"` // used when source is "sqlite"
		File       string `mapstructure:"file"`        // YAML taxonomy, used when source is "file" and by analyze --offline
	} `mapstructure:"taxonomy"`

	Analysis struct {
		MaxInputBytes       int    `mapstructure:"max_input_bytes"`
		TopTags             int    `mapstructure:"top_tags"`
		KeepStopwords       bool   `mapstructure:"keep_stopwords"`
		FailOnTaxonomyError bool   `mapstructure:"fail_on_taxonomy_error"` // false: store "Uncategorized" and carry on
		ReanalyzeAsync      bool   `mapstructure:"reanalyze_async"`        // re-analyze edited bodies on the worker
		Queue               string `mapstructure:"queue"`
	} `mapstructure:"analysis"`

	Categorization struct {
		Type           string `mapstructure:"type"`            // "keyword" or "llm"
		Provider       string `mapstructure:"provider"`        // "openai", "gemini" (if type is "llm")
		Model          string `mapstructure:"model"`           // Model name for the provider
		PromptTemplate string `mapstructure:"prompt_template"` // Path to prompt template file
		AutoApplyTags  bool   `mapstructure:"auto_apply_tags"` // attach auto-tags as content tags
		OpenAIAPIKey   string `mapstructure:"openai_api_key"`
		GeminiAPIKey   string `mapstructure:"gemini_api_key"`
	} `mapstructure:"categorization"`

	Redis struct {
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Worker struct {
		Concurrency int            `mapstructure:"concurrency"`
		Queues      map[string]int `mapstructure:"queues"`
	} `mapstructure:"worker"`

	Server struct {
		Addr string `mapstructure:"addr"`
		Port int    `mapstructure:"port"`
		Mode string `mapstructure:"mode"` // gin mode: debug, release, test
	} `mapstructure:"server"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"` // "text" or "json"
	} `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("taxonomy.source", TaxonomySourcePostgres)
	v.SetDefault("taxonomy.sqlite_path", "inkwell-taxonomy.db")
	v.SetDefault("taxonomy.file", "taxonomy.yaml")

	v.SetDefault("analysis.max_input_bytes", 2<<20)
	v.SetDefault("analysis.top_tags", 5)
	v.SetDefault("analysis.keep_stopwords", false)
	v.SetDefault("analysis.fail_on_taxonomy_error", false)
	v.SetDefault("analysis.reanalyze_async", false)
	v.SetDefault("analysis.queue", "analysis")

	v.SetDefault("categorization.type", CategorizationKeyword)
	v.SetDefault("categorization.auto_apply_tags", false)

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.queues", map[string]int{"analysis": 6, "default": 3})

	v.SetDefault("server.addr", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadConfig reads configFile, or config.yaml from "." and ~/.config/inkwell
// when configFile is empty. A missing default file is not an error.
// INKWELL_* environment variables override file values.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "inkwell"))
		}
	}

	// e.g. analysis.top_tags -> INKWELL_ANALYSIS_TOP_TAGS
	v.SetEnvPrefix("INKWELL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The provider keys also come from the variables their SDKs document.
	_ = v.BindEnv("categorization.openai_api_key", "INKWELL_CATEGORIZATION_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("categorization.gemini_api_key", "INKWELL_CATEGORIZATION_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("database.primary.dsn", "INKWELL_DATABASE_PRIMARY_DSN", "DATABASE_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	return &cfg, nil
}

// ServerAddress joins server.addr and server.port.
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Addr, c.Server.Port)
}
