// Package app wires configuration, logging and the pipeline into one
// runnable application.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prosodylab/prosolia/configs"
	"github.com/prosodylab/prosolia/internal/output"
	"github.com/prosodylab/prosolia/internal/pipeline"
	"github.com/prosodylab/prosolia/pkg/logging"
	"github.com/prosodylab/prosolia/pkg/pitch"
)

// Context holds the application context and configuration
type Context struct {
	// CLI arguments
	InputFile    string
	OutputFile   string
	OutputFormat string
	Verbose      bool

	// Runtime context
	Logger logging.Logger
	Config *configs.Config
}

// App handles one feature extraction run end to end.
type App struct {
	ctx    *Context
	config *configs.Config
	logger logging.Logger
}

// NewApp creates the application: logging first, then configuration, then
// validation. Invalid configuration never reaches the pipeline.
func NewApp(ctx *Context) (*App, error) {
	logger := setupLogging(ctx)
	ctx.Logger = logger

	config, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if ctx.Verbose {
		config.Verbose = true
	}
	if ctx.OutputFormat != "" {
		config.OutputFormat = ctx.OutputFormat
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	ctx.Config = config

	if ctx.Verbose {
		logger.SetLevel(logging.DebugLevel)
	} else {
		logger.SetLevel(logging.ParseLevel(config.LogLevel))
	}

	logger.Debug("Application initialized", logging.Fields{
		"input":         ctx.InputFile,
		"output":        ctx.OutputFile,
		"output_format": config.OutputFormat,
		"kaldi_root":    config.Pitch.KaldiRoot,
	})

	return &App{
		ctx:    ctx,
		config: config,
		logger: logger,
	}, nil
}

// Run executes the pipeline on the input file and writes the result.
func (app *App) Run(ctx context.Context) error {
	startTime := time.Now()

	backend := pitch.NewKaldiBackend(app.config.Pitch.KaldiRoot, app.config.Verbose, app.logger)

	orchestrator, err := pipeline.NewOrchestrator(&pipeline.Config{
		Filterbank: app.config.Filterbank,
		DCT:        app.config.DCT,
	}, backend, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	bundle, err := orchestrator.Run(ctx, app.ctx.InputFile)
	if err != nil {
		return err
	}

	if err := app.writeResults(bundle); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	app.logger.Debug("Run completed", logging.Fields{
		"total_time": time.Since(startTime).Seconds(),
	})

	return nil
}

// writeResults renders the bundle and writes it to the output file, or to
// stdout when the output file is "-".
func (app *App) writeResults(bundle *pipeline.FeatureBundle) error {
	formatter := output.NewFormatter(app.config.OutputFormat)

	data, err := formatter.Format(bundle, true)
	if err != nil {
		return err
	}

	target := app.OutputPath()
	if target == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}

	app.logger.Info("Results written", logging.Fields{
		"output": target,
		"bytes":  len(data),
	})

	return nil
}

// OutputPath resolves the output target: the explicit -o value when given,
// otherwise the input path with its extension swapped for the output format.
func (app *App) OutputPath() string {
	if app.ctx.OutputFile != "" {
		return app.ctx.OutputFile
	}
	ext := ".json"
	switch app.config.OutputFormat {
	case "yaml":
		ext = ".yaml"
	case "csv":
		ext = ".csv"
	}
	base := strings.TrimSuffix(app.ctx.InputFile, filepath.Ext(app.ctx.InputFile))
	return base + ext
}

// setupLogging configures the global logger from the CLI context.
func setupLogging(ctx *Context) logging.Logger {
	logger := logging.NewDefaultLogger()
	if ctx.Verbose {
		logger.SetLevel(logging.DebugLevel)
	}
	logging.SetGlobalLogger(logger)
	return logger
}
