package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kosarica/price-comparator/config"
	"github.com/kosarica/price-comparator/internal/database"
	"github.com/kosarica/price-comparator/internal/optimizer"
	"github.com/kosarica/price-comparator/internal/pricing"
)

// needsDBAnnotation marks commands that connect to the database before running.
const needsDBAnnotation = "needs-db"

var (
	cfgFile string
	cfg     *config.Config
	logger  *zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pricecomp",
	Short: "Price comparator CLI - store sheet import and price queries",
	Long: `A CLI tool for importing store price and discount sheets and querying
the resulting price data: basket optimization, price history, best and new
discounts, and price alerts.`,
	SilenceUsage:       true,
	PersistentPreRunE:  persistentPreRun,
	PersistentPostRunE: persistentPostRun,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml or ./config.yaml)")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		// Config is optional for some commands, don't fail here
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}
}

// persistentPreRun runs before each command and initializes dependencies
func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	logger = initLogger()

	if cmd.Annotations[needsDBAnnotation] != "true" {
		return nil
	}
	if cfg == nil {
		return fmt.Errorf("config required for %s command but not loaded", cmd.Name())
	}
	if err := initDatabase(cmd.Context()); err != nil {
		return fmt.Errorf("database initialization failed: %w", err)
	}
	logger.Debug().Msg("Database connected")
	return nil
}

func persistentPostRun(cmd *cobra.Command, args []string) error {
	database.Close()
	return nil
}

func initLogger() *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if cfg != nil && cfg.Logging.Level != "" {
		if parsedLevel, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			level = parsedLevel
		}
	}

	// Logs go to stderr so command output on stdout stays parseable.
	var output io.Writer
	if cfg != nil && cfg.Logging.Format == "json" {
		output = os.Stderr
	} else {
		noColor := false
		if cfg != nil {
			noColor = cfg.Logging.NoColor
		}
		output = zerolog.ConsoleWriter{Out: os.Stderr, NoColor: noColor}
	}

	l := zerolog.New(output).Level(level).With().Timestamp().Logger()
	log.Logger = l
	return &l
}

func initDatabase(ctx context.Context) error {
	dbURL := config.GetDatabaseURL()
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL not set")
	}

	if err := database.Connect(ctx, database.PoolConfig{
		URL:             dbURL,
		MaxConns:        cfg.Database.MaxConnections,
		MinConns:        cfg.Database.MinConnections,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	}); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	return nil
}

func repository() *database.Repository {
	return database.NewRepository(database.Pool())
}

// newService loads a price snapshot once and returns a service over it.
func newService(ctx context.Context) (*optimizer.Service, error) {
	cache := optimizer.NewFactCache(repository(), &cfg.Optimizer)
	if err := cache.Warmup(ctx); err != nil {
		return nil, fmt.Errorf("failed to load price data: %w", err)
	}
	return optimizer.NewService(cache, &cfg.Optimizer), nil
}

// dayFlag parses a YYYY-MM-DD flag value, defaulting to today.
func dayFlag(value string) (time.Time, error) {
	if value == "" {
		return pricing.Day(time.Now()), nil
	}
	d, err := pricing.ParseDay(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return d, nil
}

func needsDB() map[string]string {
	return map[string]string{needsDBAnnotation: "true"}
}

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
