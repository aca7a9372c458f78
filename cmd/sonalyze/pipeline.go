package main

import (
	"context"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"sonalyze/internal/analysis"
	"sonalyze/internal/logging"
	"sonalyze/internal/measurement"
	"sonalyze/internal/services"
)

// analysisRun bundles the outputs of loading and aggregating one export.
type analysisRun struct {
	ctx        context.Context
	logger     *slog.Logger
	collection *measurement.Collection
	summary    *analysis.Summary
}

// loadCollection reads path, or stdin when path is "-".
func (c *commandContext) loadCollection(cmd *cobra.Command, logger *slog.Logger, path string) (*measurement.Collection, error) {
	loader, err := c.loader(logger)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(path) == "-" {
		return loader.LoadReader(cmd.InOrStdin())
	}
	return loader.LoadFile(path)
}

// runAnalysis loads path and aggregates it with the configured parameters.
func (c *commandContext) runAnalysis(cmd *cobra.Command, path string, topN int) (*analysisRun, error) {
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	ctx := services.WithStage(c.runContext(cmd), "analyze")

	col, err := c.loadCollection(cmd, logging.WithContext(ctx, logger), path)
	if err != nil {
		return nil, err
	}
	if boxes := col.BoxIDs(); len(boxes) == 1 {
		ctx = services.WithBoxID(ctx, boxes[0])
	}
	ctxLogger := logging.WithContext(ctx, logger)

	agg, err := c.aggregator(ctxLogger, topN)
	if err != nil {
		return nil, err
	}
	summary, err := agg.Aggregate(col)
	if err != nil {
		return nil, err
	}
	return &analysisRun{ctx: ctx, logger: logger, collection: col, summary: summary}, nil
}
