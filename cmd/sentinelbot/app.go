package main

import (
	"log/slog"

	"github.com/jdelaire/sentinelbot/adapters/telegram"
	"github.com/jdelaire/sentinelbot/core"
	"github.com/jdelaire/sentinelbot/core/ops"
	"github.com/jdelaire/sentinelbot/core/policy"
	"github.com/jdelaire/sentinelbot/internal/config"
	"github.com/jdelaire/sentinelbot/internal/report"
)

// botClient is everything the bot needs from the transport.
type botClient interface {
	core.Fetcher
	core.Sender
	core.FileSource
	core.ResponseRecorder
}

type app struct {
	loop     *core.Loop
	handlers *core.Registry
	ops      *ops.Registry
}

func newClient(cfg config.Config) *telegram.Client {
	return telegram.New(cfg.Token).WithBaseURL(cfg.BaseURL)
}

// buildApp wires handlers, dispatcher, reporter and loop around client.
// Handlers are registered in match order: admin commands first, then the
// public ones.
func buildApp(cfg config.Config, client botClient, logger *slog.Logger) (*app, error) {
	cursor := core.NewCursorStore(0)
	admins := policy.New(cfg.AdminIDs)
	if admins.Len() == 0 {
		logger.Warn("no admin ids configured, admin commands are disabled")
	}

	opsReg := ops.NewRegistry()
	adminOps := []ops.Op{
		&ops.ExecOp{},
		&ops.UploadOp{Files: client},
		&ops.DownloadOp{},
	}
	publicOps := []ops.Op{
		&ops.HelpOp{Registry: opsReg},
		&ops.StatusOp{Cursor: func() int64 { return int64(cursor.Current()) }},
	}

	handlers := core.NewRegistry()
	for _, op := range adminOps {
		if err := opsReg.Register(op); err != nil {
			return nil, err
		}
		if err := handlers.Register(core.NewCommandHandler(op.Name(), op, client, admins, logger)); err != nil {
			return nil, err
		}
	}
	if err := handlers.Register(core.NewGreeting(client)); err != nil {
		return nil, err
	}
	for _, op := range publicOps {
		if err := opsReg.Register(op); err != nil {
			return nil, err
		}
		if err := handlers.Register(core.NewCommandHandler(op.Name(), op, client, nil, logger)); err != nil {
			return nil, err
		}
	}

	loopCfg := core.DefaultLoopConfig()
	loopCfg.PollTimeout = cfg.PollTimeout
	loopCfg.PollInterval = cfg.PollInterval
	loopCfg.ErrorCooldown = cfg.ErrorCooldown
	loopCfg.RestartCooldown = cfg.RestartCooldown

	if cfg.ReportChatID == 0 {
		logger.Warn("REPORT_ERRORS_CHAT_ID not set, failure reports are logged only")
	}
	reporter := report.New(client, cfg.ReportChatID, logger)
	dispatcher := core.NewDispatcher(handlers, client, logger)
	loop := core.NewLoop(client, dispatcher, reporter, client, cursor, loopCfg, logger)

	return &app{loop: loop, handlers: handlers, ops: opsReg}, nil
}
