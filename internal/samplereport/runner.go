package samplereport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	repository "github.com/eugene-kuroles/nakama-proj/internal/adapters/repository"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/reports"
	"github.com/eugene-kuroles/nakama-proj/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	reportPermission    = 0644
)

// Loader is the call source a run reads from.
type Loader interface {
	LoadCalls(ctx context.Context, q model.CallQuery) ([]model.Call, error)
}

// Run opens the configured call source, builds the report and writes it to
// the output file or, when none is set, to out.
func Run(ctx context.Context, config *Config, out io.Writer) error {
	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	store, err := openStore(ctx, config)
	if err != nil {
		return fmt.Errorf("open call source: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Get().Warn(context.Background(), "failed to close call source", logger.Error(err))
		}
	}()

	_, err = Report(ctx, config, store, reports.NewBuilder(reports.DefaultSettings()), out)
	return err
}

// Report loads calls from loader, builds the configured report and writes it.
func Report(ctx context.Context, config *Config, loader Loader, builder *reports.Builder, out io.Writer) (*Stats, error) {
	log := logger.Get()
	stats := &Stats{StartTime: time.Now()}

	req, err := config.Request()
	if err != nil {
		return nil, err
	}

	log.Info(ctx, "building sample report",
		logger.String("kind", string(req.Kind)),
		logger.Int64("projectID", req.Query.ProjectID),
		logger.Int64("managerID", req.ManagerID),
		logger.Bool("database", config.DatabaseURL != ""))

	// Step 1: Load calls
	calls, err := loader.LoadCalls(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("load calls: %w", err)
	}
	stats.CallsLoaded = len(calls)
	if len(calls) == 0 {
		log.Warn(ctx, "no calls matched the query; the report will be empty")
	}
	log.Debug(ctx, "calls loaded", logger.Int("calls", len(calls)))

	// Step 2: Build the report
	report, err := builder.Build(ctx, req, calls)
	if err != nil {
		return nil, fmt.Errorf("build %s report: %w", req.Kind, err)
	}

	// Step 3: Encode and write
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')

	if config.OutputFile != "" {
		if err := saveReportToFile(ctx, config.OutputFile, data); err != nil {
			return nil, err
		}
	} else if _, err := out.Write(data); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	stats.BytesWritten = len(data)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "report completed",
		logger.Int("calls", stats.CallsLoaded),
		logger.Int("bytes", stats.BytesWritten),
		logger.Duration("duration", stats.Duration))
	return stats, nil
}

func openStore(ctx context.Context, config *Config) (repository.Store, error) {
	if config.DatabaseURL == "" {
		seed := config.SeedConfig()
		logger.Get().Info(ctx, "using synthetic calls",
			logger.Int("calls", seed.Calls),
			logger.Int("managers", seed.Managers),
			logger.Int64("seed", seed.Seed))
		return repository.NewSeededMemoryStore(seed), nil
	}

	store, err := repository.NewPostgresStore(config.DatabaseURL,
		repository.WithMaxOpenConns(1),
		repository.WithLogger(logger.Named("repository")),
	)
	if err != nil {
		return nil, err
	}
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return store, nil
}

// saveReportToFile writes data to filename, creating parent directories.
func saveReportToFile(ctx context.Context, filename string, data []byte) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(filename, data, reportPermission); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	logger.Get().Info(ctx, "report saved to file", logger.String("filename", filename))
	return nil
}
