package cmd

import (
	"context"
	"fmt"
	"os"

	"inkwell/internal/app"
	"inkwell/internal/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
	logFormat  string
)

// Commands annotated with skipAppAnnotation get the config in their context
// but no App; they open their own connections when they need any.
const skipAppAnnotation = "inkwell/skip-app"

var rootCmd = &cobra.Command{
	Use:   "inkwell",
	Short: "Inkwell content analysis CLI",
	Long: `Inkwell stores written content and analyses it on every write:
word count, reading time, weighted auto-tags and a keyword-based category.`,
	SilenceUsage: true,
	Annotations:  map[string]string{skipAppAnnotation: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cmd.Flags().Changed("log-level") || cfg.Log.Level == "" {
			cfg.Log.Level = logLevel
		}
		if cmd.Flags().Changed("log-format") || cfg.Log.Format == "" {
			cfg.Log.Format = logFormat
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if err := setupLogging(cfg); err != nil {
			return err
		}

		ctx := context.WithValue(cmd.Context(), configKey, cfg)
		if cmd.Annotations[skipAppAnnotation] != "true" {
			appInstance, err := app.NewApp(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			ctx = context.WithValue(ctx, appKey, appInstance)
		}
		cmd.SetContext(ctx)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if appInstance, err := GetAppFromContext(cmd.Context()); err == nil {
			appInstance.Close()
		}
		return nil
	},
}

func setupLogging(cfg *config.Config) error {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	if cfg.Log.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Define a custom type for the context key to avoid collisions.
type contextKey string

const (
	appKey    contextKey = "app"
	configKey contextKey = "config"
)

// GetAppFromContext returns the App built by the root command.
func GetAppFromContext(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	return appInstance, nil
}

// GetConfigFromContext returns the validated config loaded by the root command.
func GetConfigFromContext(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("config not found in context")
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ./config.yaml or ~/.config/inkwell/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check database connectivity and the taxonomy source",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to get app instance: %w", err)
		}

		fmt.Fprintln(out, "Checking database connectivity...")
		if err := appInstance.ContentStore.Ping(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
		fmt.Fprintln(out, "Database connection successful.")

		fmt.Fprintf(out, "Reading taxonomy (%s)...\n", appInstance.Config.Taxonomy.Source)
		cats, err := appInstance.TaxonomyService.ListCategories(ctx)
		if err != nil {
			return fmt.Errorf("taxonomy read failed: %w", err)
		}
		fmt.Fprintf(out, "Taxonomy has %d categories.\n", len(cats))

		if appInstance.Config.Redis.Address == "" {
			fmt.Fprintln(out, "Background jobs are disabled (redis.address is empty).")
		} else {
			fmt.Fprintf(out, "Background jobs enqueue to redis at %s.\n", appInstance.Config.Redis.Address)
		}
		return nil
	},
}
