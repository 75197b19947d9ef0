package app

import (
	"context"
	"errors"
	"fmt"

	"inkwell/internal/analysis"
	"inkwell/internal/config"
	"inkwell/internal/services"
	"inkwell/internal/store"
	"inkwell/internal/store/primary"
	"inkwell/internal/store/sqlite"
	"inkwell/internal/store/taxonomyfile"
	"inkwell/pkg/categorizer"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"
)

type App struct {
	Config *config.Config

	ContentStore  store.ContentStore
	TagStore      store.TagStore
	CategoryStore store.CategoryStore // the configured taxonomy source
	JobStore      store.JobStore
	JobClient     store.JobClient

	Analyzer    *analysis.Analyzer
	Categorizer categorizer.ContentCategorizer

	// --- Initialized Services ---
	ContentService        *services.ContentService
	TagService            *services.TagService
	TaxonomyService       *services.TaxonomyService
	CategorizationService *services.CategorizationService
	JobService            *services.JobService

	closers []func() error
}

// NewApp connects the stores named by cfg and builds the services on top.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.RequirePrimaryDatabase(); err != nil {
		return nil, err
	}
	app := &App{Config: cfg}

	if err := app.initPrimaryStore(ctx); err != nil {
		return nil, err
	}
	if err := app.initTaxonomy(); err != nil {
		app.Close()
		return nil, err
	}
	if err := app.initJobClient(); err != nil {
		app.Close()
		return nil, err
	}
	app.Analyzer = NewAnalyzer(cfg, app.CategoryStore)
	if err := app.initCategorizer(ctx); err != nil {
		app.Close()
		return nil, err
	}
	app.initCoreServices()

	log.WithFields(log.Fields{
		"taxonomy":       cfg.Taxonomy.Source,
		"categorization": cfg.Categorization.Type,
	}).Debug("Application initialization complete.")
	return app, nil
}

// NewAnalyzer builds the analysis engine from the analysis config section.
func NewAnalyzer(cfg *config.Config, taxonomy analysis.TaxonomyRepository) *analysis.Analyzer {
	return analysis.NewAnalyzer(analysis.AnalyzerDeps{
		Extractor:     analysis.NewReadabilityExtractor(cfg.Analysis.MaxInputBytes),
		Taxonomy:      taxonomy,
		TopTags:       cfg.Analysis.TopTags,
		KeepStopwords: cfg.Analysis.KeepStopwords,
	})
}

// --- Private Helper Methods ---

func (a *App) initPrimaryStore(ctx context.Context) error {
	ps, err := primary.NewPrimaryStore(ctx, a.Config.Database.Primary.DSN)
	if err != nil {
		return fmt.Errorf("init primary store: %w", err)
	}
	a.closers = append(a.closers, func() error { ps.Close(); return nil })
	a.ContentStore = ps
	a.TagStore = ps
	a.JobStore = ps
	a.CategoryStore = ps
	return nil
}

func (a *App) initTaxonomy() error {
	cfg := a.Config
	switch cfg.Taxonomy.Source {
	case "", config.TaxonomySourcePostgres:
		// categories live next to the content
	case config.TaxonomySourceSQLite:
		ts, err := sqlite.Open(cfg.Taxonomy.SQLitePath)
		if err != nil {
			return fmt.Errorf("init sqlite taxonomy: %w", err)
		}
		a.closers = append(a.closers, ts.Close)
		a.CategoryStore = ts
	case config.TaxonomySourceFile:
		tf, err := taxonomyfile.Load(cfg.Taxonomy.File)
		if err != nil {
			return fmt.Errorf("init taxonomy file: %w", err)
		}
		a.CategoryStore = tf
	default:
		return fmt.Errorf("unknown taxonomy source %q", cfg.Taxonomy.Source)
	}
	return nil
}

func (a *App) initJobClient() error {
	cfg := a.Config
	if cfg.Redis.Address == "" {
		log.Warn("redis.address is empty, background jobs are disabled")
		a.JobClient = services.NoopJobClient{}
		return nil
	}
	jc, err := store.NewAsynqJobClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, a.JobStore, cfg.Analysis.Queue)
	if err != nil {
		return fmt.Errorf("init job client: %w", err)
	}
	a.closers = append(a.closers, jc.Close)
	a.JobClient = jc
	return nil
}

func (a *App) initCategorizer(ctx context.Context) error {
	cfg := a.Config
	keyword := categorizer.NewKeywordCategorizer(a.Analyzer)
	if cfg.Categorization.Type != config.CategorizationLLM {
		a.Categorizer = keyword
		return nil
	}

	promptContent, err := config.LoadPromptContent(cfg.Categorization.PromptTemplate, "categorize.txt")
	if err != nil {
		if !errors.Is(err, config.ErrPromptNotFound) {
			return fmt.Errorf("load categorization prompt: %w", err)
		}
		log.Debugf("No categorization prompt file found, using the built-in prompt: %v", err)
		promptContent = ""
	}

	var completer categorizer.Completer
	switch cfg.Categorization.Provider {
	case "openai":
		completer, err = categorizer.NewOpenAICompleterFromKey(cfg.Categorization.OpenAIAPIKey, cfg.Categorization.Model)
	case "gemini":
		var gc *categorizer.GeminiCompleter
		gc, err = categorizer.NewGeminiCompleter(ctx, cfg.Categorization.GeminiAPIKey, cfg.Categorization.Model)
		if err == nil {
			a.closers = append(a.closers, gc.Close)
			completer = gc
		}
	default:
		err = fmt.Errorf("unsupported LLM categorization provider %q", cfg.Categorization.Provider)
	}
	if err != nil {
		return fmt.Errorf("init categorizer: %w", err)
	}

	log.WithFields(log.Fields{"provider": completer.Name(), "model": cfg.Categorization.Model}).Info("LLM categorization enabled")
	a.Categorizer = categorizer.NewLLMCategorizer(completer, promptContent, keyword)
	return nil
}

func (a *App) initCoreServices() {
	a.TagService = services.NewTagService(a.TagStore)
	a.TaxonomyService = services.NewTaxonomyService(a.CategoryStore)
	a.JobService = services.NewJobService(a.JobStore)
	a.CategorizationService = services.NewCategorizationService(a.Categorizer, a.TagService, a.CategoryStore, a.ContentStore)
	a.ContentService = services.NewContentService(services.ContentServiceDeps{
		ContentStore: a.ContentStore,
		TagService:   a.TagService,
		JobClient:    a.JobClient,
		Analyzer:     a.Analyzer,
		Config:       a.Config,
	})
}

// Close releases every connection opened by NewApp, newest first.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}
	a.closers = nil
}
