package commands

import (
	"fmt"
	"os"

	"github.com/wonny/hivdash/internal/dashboard"
	"github.com/wonny/hivdash/internal/dataset"
	"github.com/wonny/hivdash/internal/model"
	"github.com/wonny/hivdash/pkg/config"
	"github.com/wonny/hivdash/pkg/logger"
)

// app is what every command needs: config, logger and the computed pipeline
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	pipeline *dashboard.Pipeline
}

// bootstrap runs Load -> Aggregate -> Pivot -> Evaluate.
// Input, format and model errors abort the command.
func bootstrap() (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dataPath != "" {
		cfg.Data.Path = dataPath
	}
	if modelPath != "" {
		cfg.Model.Path = modelPath
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.NewWithWriter(cfg, os.Stderr)
	zl := log.Zerolog()

	// 3. Load the Cleaned Table
	opt := dataset.DefaultOptions()
	opt.SkipRows = cfg.Data.SkipRows
	table, err := dataset.NewLoader(opt, zl).Load(cfg.Data.Path)
	if err != nil {
		log.WithError(err).WithField("path", cfg.Data.Path).Error("Failed to load dataset")
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	// 4. Load the model artifact
	adapter, err := model.Load(cfg.Model.Path, zl)
	if err != nil {
		log.WithError(err).WithField("path", cfg.Model.Path).Error("Failed to load model")
		return nil, fmt.Errorf("load model: %w", err)
	}

	// 5. Build the pipeline
	p, err := dashboard.New(table, adapter, dashboard.Options{TopN: cfg.Dashboard.TopN}, zl)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	return &app{cfg: cfg, log: log, pipeline: p}, nil
}
