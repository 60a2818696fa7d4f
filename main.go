package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"trainingload/internal/config"
	"trainingload/internal/service"
	"trainingload/internal/store"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// env holds everything a command needs once config and storage are open
type env struct {
	cfg      *config.Config
	db       *store.DB
	log      *zap.SugaredLogger
	importer *service.ImportService
	query    *service.QueryService
}

// errConfigCreated stops a command after an example config was written
var errConfigCreated = errors.New("example config created")

func openEnv() (*env, error) {
	// Load configuration
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Println("No config file found. Creating example config...")
		if err := config.CreateExample(); err != nil {
			return nil, fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Printf("\nPlease edit the config file at:\n  %s/config.json\n\n", configDir)
		fmt.Println("Set your FTP, resting and max heart rate, and threshold pace.")
		return nil, errConfigCreated
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		return nil, fmt.Errorf("invalid config at %s/config.json: %w", configDir, err)
	}

	dataDir, err := cfg.DataDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, err
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &env{
		cfg:      cfg,
		db:       db,
		log:      log,
		importer: service.NewImportService(db, cfg.Athlete, log),
		query:    service.NewQueryService(db, cfg.Athlete),
	}, nil
}

func (e *env) Close() error {
	_ = e.log.Sync()
	return e.db.Close()
}

// newLogger writes JSON logs to the data directory so neither the TUI
// nor the MCP stdio transport is disturbed
func newLogger(cfg *config.Config) (*zap.SugaredLogger, error) {
	logPath, err := cfg.LogPath()
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{logPath}
	zcfg.ErrorOutputPaths = []string{logPath}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
