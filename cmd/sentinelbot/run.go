package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jdelaire/sentinelbot/core"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Poll Telegram and dispatch commands until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireToken(); err != nil {
				return err
			}

			a, err := buildApp(cfg, newClient(cfg), logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("sentinelbot starting",
				"handlers", a.handlers.Len(),
				"poll_timeout", cfg.PollTimeout,
				"report_chat_id", cfg.ReportChatID,
			)
			err = a.loop.Run(ctx)
			if errors.Is(err, context.Canceled) || errors.Is(err, core.ErrTerminate) {
				logger.Info("sentinelbot stopped")
				return nil
			}
			return err
		},
	}
}
