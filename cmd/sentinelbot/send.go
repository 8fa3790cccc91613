package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jdelaire/sentinelbot/core"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send [text...]",
		Short: "Send a single message and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				text = strings.TrimSpace(viper.GetString("send.text"))
			}
			if text == "" {
				return errors.New("text argument(s) required")
			}

			if token := strings.TrimSpace(viper.GetString("send.token")); token != "" {
				cfg.Token = token
			}
			if err := cfg.RequireToken(); err != nil {
				return err
			}

			chatID := viper.GetInt64("send.chat_id")
			if chatID == 0 {
				chatID = cfg.ReportChatID
			}
			if chatID == 0 {
				return errors.New("chat id required (use -d, CHAT_ID or REPORT_ERRORS_CHAT_ID)")
			}

			m := core.NewMessage(chatID, text, "cli")
			m.ReplyToMessageID = viper.GetInt64("send.reply_to")
			m.ParseMode = viper.GetString("send.parse_mode")

			res, err := core.Deliver(cmd.Context(), newClient(cfg), m, "message.txt")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sent message %d to chat %d\n", res.MessageID, res.ChatID)
			return nil
		},
	}

	cmd.Flags().StringP("token", "t", "", "Bot token (defaults to BOT_API_TOKEN or the keychain).")
	cmd.Flags().Int64P("chat-id", "d", 0, "Destination chat (defaults to CHAT_ID, then REPORT_ERRORS_CHAT_ID).")
	cmd.Flags().String("text", "", "Message text, used when no arguments are given.")
	cmd.Flags().Int64P("reply-to-message-id", "r", 0, "Message to reply to (defaults to REPLY_TO_MESSAGE_ID).")
	cmd.Flags().String("parse-mode", "", "Telegram parse mode: HTML|MarkdownV2.")

	_ = viper.BindPFlag("send.token", cmd.Flags().Lookup("token"))
	_ = viper.BindPFlag("send.chat_id", cmd.Flags().Lookup("chat-id"))
	_ = viper.BindPFlag("send.text", cmd.Flags().Lookup("text"))
	_ = viper.BindPFlag("send.reply_to", cmd.Flags().Lookup("reply-to-message-id"))
	_ = viper.BindPFlag("send.parse_mode", cmd.Flags().Lookup("parse-mode"))
	_ = viper.BindEnv("send.chat_id", "CHAT_ID")
	_ = viper.BindEnv("send.reply_to", "REPLY_TO_MESSAGE_ID")

	return cmd
}
