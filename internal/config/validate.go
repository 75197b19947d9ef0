package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingDatabase is returned by RequirePrimaryDatabase when no DSN is set.
var ErrMissingDatabase = errors.New("database.primary.dsn is required")

/*
Validate checks the settings that must hold whatever command runs:
- Analysis limits
- Taxonomy source
- Categorization provider and keys
- Worker queues
- Server and log settings
The database DSN is checked by RequirePrimaryDatabase, since offline
analysis runs without one.
*/
func (c *Config) Validate() error {
	// Analysis config
	if c.Analysis.MaxInputBytes <= 0 {
		return errors.New("analysis.max_input_bytes must be a positive integer")
	}
	if c.Analysis.TopTags < 1 || c.Analysis.TopTags > 5 {
		return fmt.Errorf("analysis.top_tags must be between 1 and 5, got %d", c.Analysis.TopTags)
	}
	if c.Analysis.ReanalyzeAsync && c.Analysis.Queue == "" {
		return errors.New("analysis.queue is required when analysis.reanalyze_async is true")
	}

	// Taxonomy config
	switch c.Taxonomy.Source {
	case TaxonomySourcePostgres:
	case TaxonomySourceSQLite:
		if c.Taxonomy.SQLitePath == "" {
			return errors.New("taxonomy.sqlite_path is required when taxonomy.source is sqlite")
		}
	case TaxonomySourceFile:
		if c.Taxonomy.File == "" {
			return errors.New("taxonomy.file is required when taxonomy.source is file")
		}
	default:
		return fmt.Errorf("taxonomy.source must be one of postgres, sqlite, file; got %q", c.Taxonomy.Source)
	}

	// Categorization config
	switch c.Categorization.Type {
	case CategorizationKeyword:
	case CategorizationLLM:
		if c.Categorization.Model == "" {
			return errors.New("categorization.model is required when categorization.type is llm")
		}
		switch strings.ToLower(c.Categorization.Provider) {
		case "openai":
			if c.Categorization.OpenAIAPIKey == "" {
				return errors.New("categorization.openai_api_key (or OPENAI_API_KEY) is required for the openai provider")
			}
		case "gemini":
			if c.Categorization.GeminiAPIKey == "" {
				return errors.New("categorization.gemini_api_key (or GEMINI_API_KEY) is required for the gemini provider")
			}
		default:
			return fmt.Errorf("categorization.provider must be openai or gemini, got %q", c.Categorization.Provider)
		}
	default:
		return fmt.Errorf("categorization.type must be keyword or llm, got %q", c.Categorization.Type)
	}

	// Worker config
	if c.Worker.Concurrency <= 0 {
		return errors.New("worker.concurrency must be a positive integer")
	}
	if len(c.Worker.Queues) == 0 {
		return errors.New("worker.queues must define at least one queue")
	}
	for name, priority := range c.Worker.Queues {
		if name == "" {
			return errors.New("worker.queues contains an empty queue name")
		}
		if priority <= 0 {
			return fmt.Errorf("worker.queues priority for queue '%s' must be positive", name)
		}
	}
	if c.Analysis.ReanalyzeAsync {
		if _, ok := c.Worker.Queues[c.Analysis.Queue]; !ok {
			return fmt.Errorf("analysis.queue '%s' is not listed in worker.queues", c.Analysis.Queue)
		}
	}

	// Server and log config
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

// RequirePrimaryDatabase reports ErrMissingDatabase when no DSN is configured.
func (c *Config) RequirePrimaryDatabase() error {
	if strings.TrimSpace(c.Database.Primary.DSN) == "" {
		return ErrMissingDatabase
	}
	return nil
}
