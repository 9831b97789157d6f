package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/pgingest/internal/config"
	"github.com/vvka-141/pgingest/internal/db"
	"github.com/vvka-141/pgingest/internal/logging"
	"github.com/vvka-141/pgingest/internal/progress"
	"github.com/vvka-141/pgingest/internal/services"
	"github.com/vvka-141/pgingest/internal/source"
	"github.com/vvka-141/pgingest/internal/tui"
	"github.com/vvka-141/pgingest/pkg/pgingest"
)

// ingestFlags holds the command-line flag values.
type ingestFlags struct {
	username   string
	password   string
	host       string
	port       string
	database   string
	table      string
	url        string
	batchSize  int
	configPath string
	noProgress bool
	verbose    bool
}

type runFunc func(cmd *cobra.Command, flags *ingestFlags) error

var rootCmd = newRootCmd(runIngest)

func newRootCmd(run runFunc) *cobra.Command {
	flags := &ingestFlags{}

	cmd := &cobra.Command{
		Use:   "pgingest",
		Short: "Load a CSV or Parquet file into a PostgreSQL table",
		Long: `pgingest reads a CSV or Parquet file from a URL or local path and loads it
into a PostgreSQL table. The table is dropped and recreated on every run, then
filled in batches with COPY while progress is reported.

When both tpep_pickup_datetime and tpep_dropoff_datetime are present they are
stored as timestamp columns.

Connection settings not covered by flags (PGSSLMODE, PGCONNECT_TIMEOUT, ...)
are read from the environment, which may be populated from a .env file.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Database connection failed
  12 - Unsupported file format (URL must end in .parquet or .csv)
  13 - Datetime conversion failed
  14 - Writing to the table failed
  15 - Source could not be fetched or parsed`,
		Example: `  pgingest --username root --password root --host localhost --port 5432 \
    --db ny_taxi --table yellow_taxi_data \
    --url https://d37ci6vzurychx.cloudfront.net/trip-data/yellow_tripdata_2021-01.parquet`,
		Args:    cobra.NoArgs,
		Version: versionString(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Flag errors above print usage; runtime failures print only the error.
			cmd.SilenceUsage = true
			return run(cmd, flags)
		},
	}
	cmd.SetVersionTemplate("pgingest {{.Version}}\n")

	f := cmd.Flags()
	f.StringVar(&flags.username, "username", "", "user name for postgres")
	f.StringVar(&flags.password, "password", "", "password for postgres")
	f.StringVar(&flags.host, "host", "", "host for postgres")
	f.StringVar(&flags.port, "port", "", "port for postgres")
	f.StringVar(&flags.database, "db", "", "database name for postgres")
	f.StringVar(&flags.table, "table", "", "name of the table where results are written")
	f.StringVar(&flags.url, "url", "", "URL or path of the .parquet or .csv file")
	f.IntVar(&flags.batchSize, "batch-size", pgingest.DefaultBatchSize, "maximum rows per COPY batch")
	f.StringVar(&flags.configPath, "config", "", "path to a pgingest.yaml file (default: ./pgingest.yaml if present)")
	f.BoolVar(&flags.noProgress, "no-progress", false, "disable progress reporting")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")

	for _, name := range []string{"username", "password", "host", "port", "db", "table", "url"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func runIngest(cmd *cobra.Command, flags *ingestFlags) error {
	_ = godotenv.Load()

	fileCfg, err := loadFileConfig(flags.configPath)
	if err != nil {
		return err
	}

	settings := resolveSettings(cmd, flags, fileCfg)
	logger := logging.NewConsoleLogger(flags.verbose)
	cfg := buildIngestConfig(flags, settings)

	observer := progress.ForMode(tui.DetectMode(), !settings.progress, cfg.Table, logger)
	defer progress.Finish(observer)
	fetcher := source.NewURLFetcher(nil, userAgent())
	svc := services.NewIngestionService(db.NewConnector, services.NewSourceFactory(fetcher, logger), logger)

	_, err = svc.Run(context.Background(), cfg, observer)
	return err
}

// settings are the tunables after merging flags, pgingest.yaml and defaults.
type settings struct {
	batchSize int
	progress  bool
}

// resolveSettings applies precedence: explicit flag > pgingest.yaml > default.
func resolveSettings(cmd *cobra.Command, flags *ingestFlags, fileCfg *config.FileConfig) settings {
	s := settings{
		batchSize: fileCfg.BatchSizeOr(pgingest.DefaultBatchSize),
		progress:  fileCfg.ProgressOr(true),
	}
	if cmd.Flags().Changed("batch-size") {
		s.batchSize = flags.batchSize
	}
	if flags.noProgress {
		s.progress = false
	}
	return s
}

// loadFileConfig loads the optional config file. An explicit --config path
// must exist; the implicit ./pgingest.yaml may be absent.
func loadFileConfig(path string) (*config.FileConfig, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w: %w", pgingest.ErrInvalidConfig, err)
		}
		return cfg, nil
	}

	cfg, err := config.LoadFromDir(".")
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}
	return cfg, nil
}

func buildIngestConfig(flags *ingestFlags, s settings) pgingest.IngestConfig {
	return pgingest.IngestConfig{
		Connection: pgingest.ConnectionConfig{
			Username: flags.username,
			Password: flags.password,
			Host:     flags.host,
			Port:     flags.port,
			Database: flags.database,
			AppName:  pgingest.ApplicationName,
		},
		Table:     flags.table,
		SourceURL: flags.url,
		BatchSize: s.batchSize,
		Verbose:   flags.verbose,
	}
}
