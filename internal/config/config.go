// Package config resolves the bot's settings from environment variables,
// an optional config file and the OS keychain.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys and the environment variables bound to them.
const (
	KeyToken           = "telegram.token"
	KeyBaseURL         = "telegram.base_url"
	KeyPollTimeout     = "telegram.poll_timeout"
	KeyLogLevel        = "logging.level"
	KeyLogFormat       = "logging.format"
	KeyDebug           = "debug"
	KeyReportChatID    = "report.chat_id"
	KeyAdminIDs        = "admin.ids"
	KeyPollInterval    = "loop.poll_interval"
	KeyErrorCooldown   = "loop.error_cooldown"
	KeyRestartCooldown = "loop.restart_cooldown"
)

// TokenAccount is the keychain account holding the bot token.
const TokenAccount = "bot_api_token"

var envNames = map[string]string{
	KeyToken:           "BOT_API_TOKEN",
	KeyBaseURL:         "TELEGRAM_BASE_URL",
	KeyPollTimeout:     "GET_UPDATES_TIMEOUT",
	KeyLogLevel:        "LOGLEVEL",
	KeyLogFormat:       "LOG_FORMAT",
	KeyDebug:           "DEBUG",
	KeyReportChatID:    "REPORT_ERRORS_CHAT_ID",
	KeyAdminIDs:        "ADMIN_IDS",
	KeyPollInterval:    "POLL_INTERVAL",
	KeyErrorCooldown:   "ERROR_COOLDOWN",
	KeyRestartCooldown: "RESTART_COOLDOWN",
}

// ErrNoToken is returned when no bot token is configured anywhere.
var ErrNoToken = errors.New("bot token not configured (set BOT_API_TOKEN or run 'sentinelbot keychain set-token')")

// Config is the resolved bot configuration.
type Config struct {
	Token           string
	BaseURL         string
	PollTimeout     time.Duration
	LogLevel        string
	LogFormat       string
	Debug           bool
	ReportChatID    int64
	AdminIDs        []int64
	PollInterval    time.Duration
	ErrorCooldown   time.Duration
	RestartCooldown time.Duration
}

// TokenLookup reads a secret by account name, typically from the keychain.
type TokenLookup func(account string) (string, error)

// Bind registers defaults and environment bindings on v.
func Bind(v *viper.Viper) error {
	v.SetDefault(KeyBaseURL, "https://api.telegram.org")
	v.SetDefault(KeyPollTimeout, 60)
	v.SetDefault(KeyLogLevel, "INFO")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyReportChatID, 0)
	v.SetDefault(KeyPollInterval, "1s")
	v.SetDefault(KeyErrorCooldown, "30s")
	v.SetDefault(KeyRestartCooldown, "60s")

	for key, env := range envNames {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s: %w", env, err)
		}
	}
	return nil
}

// ReadFile merges a config file into v. An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// Load resolves the configuration from v. When no token is set and lookup is
// non-nil, the token is read from lookup. A missing token is not an error
// here; commands that need one call RequireToken.
func Load(v *viper.Viper, lookup TokenLookup) (Config, error) {
	cfg := Config{
		Token:           strings.TrimSpace(v.GetString(KeyToken)),
		BaseURL:         strings.TrimRight(strings.TrimSpace(v.GetString(KeyBaseURL)), "/"),
		LogLevel:        v.GetString(KeyLogLevel),
		LogFormat:       v.GetString(KeyLogFormat),
		Debug:           v.GetBool(KeyDebug),
	}

	secs := v.GetInt(KeyPollTimeout)
	if secs <= 0 {
		return Config{}, fmt.Errorf("%s must be a positive number of seconds, got %q", envNames[KeyPollTimeout], v.GetString(KeyPollTimeout))
	}
	cfg.PollTimeout = time.Duration(secs) * time.Second

	if raw := strings.TrimSpace(v.GetString(KeyReportChatID)); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", envNames[KeyReportChatID], err)
		}
		cfg.ReportChatID = id
	}

	ids, err := parseIDs(v.GetStringSlice(KeyAdminIDs))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", envNames[KeyAdminIDs], err)
	}
	cfg.AdminIDs = ids

	if cfg.PollInterval, err = seconds(v, KeyPollInterval, false); err != nil {
		return Config{}, err
	}
	if cfg.ErrorCooldown, err = seconds(v, KeyErrorCooldown, true); err != nil {
		return Config{}, err
	}
	if cfg.RestartCooldown, err = seconds(v, KeyRestartCooldown, true); err != nil {
		return Config{}, err
	}

	if cfg.Token == "" && lookup != nil {
		token, err := lookup(TokenAccount)
		if err == nil {
			cfg.Token = strings.TrimSpace(token)
		}
	}
	return cfg, nil
}

// RequireToken returns ErrNoToken when the configuration has no token.
func (c Config) RequireToken() error {
	if c.Token == "" {
		return ErrNoToken
	}
	return nil
}

// seconds reads a duration setting. A bare number is a count of seconds,
// matching GET_UPDATES_TIMEOUT; anything else must carry a unit ("500ms",
// "2m"). Zero is rejected when positive is set.
func seconds(v *viper.Viper, key string, positive bool) (time.Duration, error) {
	name := envNames[key]
	raw := strings.TrimSpace(v.GetString(key))

	var d time.Duration
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		d = time.Duration(n) * time.Second
	} else {
		d, err = time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("%s: invalid duration %q (use seconds or a unit such as 30s)", name, raw)
		}
	}

	if d < 0 || (positive && d == 0) {
		return 0, fmt.Errorf("%s must be positive, got %s", name, d)
	}
	return d, nil
}

// parseIDs accepts both list values and comma separated strings.
func parseIDs(items []string) ([]int64, error) {
	var ids []int64
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid id %q: %w", part, err)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
