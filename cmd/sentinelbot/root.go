package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jdelaire/sentinelbot/internal/config"
	"github.com/jdelaire/sentinelbot/internal/keychain"
	"github.com/jdelaire/sentinelbot/internal/logutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func Execute() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "sentinelbot",
		Short:        "Telegram admin bot",
		SilenceUsage: true,
	}

	cobra.OnInitialize(initConfig)

	cmd.PersistentFlags().String("config", "", "Config file path (optional).")
	cmd.PersistentFlags().String("log-level", "", "Logging level: DEBUG|INFO|WARNING|ERROR (defaults to LOGLEVEL or INFO).")
	cmd.PersistentFlags().String("log-format", "", "Logging format: text|json.")
	cmd.PersistentFlags().Bool("debug", false, "Force debug logging.")

	_ = viper.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag(config.KeyLogLevel, cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyLogFormat, cmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag(config.KeyDebug, cmd.PersistentFlags().Lookup("debug"))

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newSendCmd())
	cmd.AddCommand(newKeychainCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func initConfig() {
	if err := config.Bind(viper.GetViper()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to bind config: %v\n", err)
	}
	if err := config.ReadFile(viper.GetViper(), viper.GetString("config")); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
	}
}

// loadConfig resolves the configuration and builds the logger from it.
func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(viper.GetViper(), keychain.Get)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logutil.New(logutil.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Debug:  cfg.Debug,
	})
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}
