package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sonalyze/internal/logging"
	"sonalyze/internal/services"
)

func newLLMCommand(ctx *commandContext) *cobra.Command {
	llmCmd := &cobra.Command{
		Use:   "llm",
		Short: "Language model utilities",
	}
	llmCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Verify the configured language model answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			client, err := ctx.llmClient()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if client == nil {
				fmt.Fprintln(out, renderStatusLine("Language model", statusWarn, "disabled or api key missing", colorize))
				return nil
			}
			runCtx := services.WithStage(ctx.runContext(cmd), "llm_check")
			started := time.Now()
			if err := client.HealthCheck(runCtx); err != nil {
				logging.ErrorWithContext(logging.WithContext(runCtx, logger), "language model health check failed", "llm_health",
					logging.String("model", client.Model()),
					logging.Error(err),
				)
				fmt.Fprintln(out, renderStatusLine("Language model", statusError, client.Model(), colorize))
				return err
			}
			latency := time.Since(started).Round(time.Millisecond)
			logging.WithContext(runCtx, logger).Info("language model reachable",
				logging.String("model", client.Model()),
				logging.Duration("latency", latency),
			)
			fmt.Fprintln(out, renderStatusLine("Language model", statusOK, fmt.Sprintf("%s (%s)", client.Model(), latency), colorize))
			return nil
		},
	})
	return llmCmd
}
