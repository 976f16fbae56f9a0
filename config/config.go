// Package config resolves runtime settings from .env, the environment, a YAML file and flags.
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	ProviderCoinMarketCap = "coinmarketcap"
	ProviderBinance       = "binance"
	ProviderBybit         = "bybit"

	// CommandAlarms runs the interactive alarm wizard instead of the widget.
	CommandAlarms = "alarms"

	// PlaceholderAPIKey is the value shipped in the sample .env.
	PlaceholderAPIKey = "YOUR_COINMARKETCAP_API_KEY_HERE"

	defaultRefreshMinutes = 5
	defaultDataDir        = "."
)

var (
	// ErrMissingAPIKey CoinMarketCap needs a real API key.
	ErrMissingAPIKey   = errors.New("CMC_API_KEY not found or not set in .env file")
	ErrUnknownProvider = errors.New("unknown price provider")
	ErrUnknownCommand  = errors.New("unknown command")
)

type Config struct {
	// Command is the first positional argument, empty for the widget itself.
	Command string

	Provider        string
	APIKey          string
	RefreshInterval time.Duration
	DataDir         string

	Headless  bool
	WebAddr   string
	WebDomain string

	TelegramBotToken string
	TelegramChatID   string

	// Warnings collects non-fatal problems found while loading.
	Warnings []string
}

// ConfigTmp is the YAML file layout.
type ConfigTmp struct {
	Provider         string `yaml:"provider,omitempty"`
	APIKey           string `yaml:"api_key,omitempty"`
	RefreshMinutes   int    `yaml:"refresh_minutes,omitempty"`
	DataDir          string `yaml:"data_dir,omitempty"`
	WebAddr          string `yaml:"web_addr,omitempty"`
	WebDomain        string `yaml:"web_domain,omitempty"`
	TelegramBotToken string `yaml:"telegram_bot_token,omitempty"`
	TelegramChatID   string `yaml:"telegram_chat_id,omitempty"`
}

// Get loads .env from the working directory and resolves the configuration from process state.
func Get() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return Config{}, errors.Wrap(err, "failed to load .env")
	}
	return Load(os.Args[1:], os.Getenv)
}

// Load resolves settings with precedence flags > YAML file > environment > defaults.
func Load(args []string, getenv func(string) string) (Config, error) {
	fs := flag.NewFlagSet("coinwatch", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to yaml config")
	provider := fs.String("provider", "", "price provider: coinmarketcap, binance or bybit")
	headless := fs.Bool("headless", false, "run without the terminal UI")
	webAddr := fs.String("web", "", "dashboard listen address, e.g. :8080")
	webDomain := fs.String("web-domain", "", "serve the dashboard over HTTPS with ACME certificates for this domain")
	dataDir := fs.String("data-dir", "", "directory for coins.json, alarms.json and the alarm journal")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := fromEnv(getenv)
	cfg.Command = fs.Arg(0)

	if *configPath != "" {
		if err := applyYaml(&cfg, *configPath); err != nil {
			return Config{}, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "provider":
			cfg.Provider = *provider
		case "headless":
			cfg.Headless = *headless
		case "web":
			cfg.WebAddr = *webAddr
		case "web-domain":
			cfg.WebDomain = *webDomain
		case "data-dir":
			cfg.DataDir = *dataDir
		}
	})

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func fromEnv(getenv func(string) string) Config {
	cfg := Config{
		Provider:         ProviderCoinMarketCap,
		APIKey:           strings.TrimSpace(getenv("CMC_API_KEY")),
		RefreshInterval:  defaultRefreshMinutes * time.Minute,
		DataDir:          defaultDataDir,
		WebAddr:          getenv("COINWATCH_WEB_ADDR"),
		TelegramBotToken: getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   getenv("TELEGRAM_CHAT_ID"),
	}

	if p := getenv("COINWATCH_PROVIDER"); p != "" {
		cfg.Provider = p
	}
	if d := getenv("COINWATCH_DATA_DIR"); d != "" {
		cfg.DataDir = d
	}

	if raw := getenv("DEFAULT_REFRESH_INTERVAL"); raw != "" {
		minutes, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || minutes <= 0 {
			cfg.Warnings = append(cfg.Warnings,
				"Invalid DEFAULT_REFRESH_INTERVAL "+strconv.Quote(raw)+". Using default of 5 minutes.")
		} else {
			cfg.RefreshInterval = time.Duration(minutes) * time.Minute
		}
	}

	return cfg
}

func applyYaml(cfg *Config, path string) error {
	f, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read config file")
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return errors.Wrapf(err, "failed to parse config file %s", path)
	}

	if tmp.Provider != "" {
		cfg.Provider = tmp.Provider
	}
	if tmp.APIKey != "" {
		cfg.APIKey = tmp.APIKey
	}
	if tmp.RefreshMinutes < 0 {
		return errors.Errorf("incorrect 'refresh_minutes' param in yaml config: %d", tmp.RefreshMinutes)
	}
	if tmp.RefreshMinutes > 0 {
		cfg.RefreshInterval = time.Duration(tmp.RefreshMinutes) * time.Minute
	}
	if tmp.DataDir != "" {
		cfg.DataDir = tmp.DataDir
	}
	if tmp.WebAddr != "" {
		cfg.WebAddr = tmp.WebAddr
	}
	if tmp.WebDomain != "" {
		cfg.WebDomain = tmp.WebDomain
	}
	if tmp.TelegramBotToken != "" {
		cfg.TelegramBotToken = tmp.TelegramBotToken
	}
	if tmp.TelegramChatID != "" {
		cfg.TelegramChatID = tmp.TelegramChatID
	}

	return nil
}

func (c *Config) validate() error {
	switch c.Command {
	case "", CommandAlarms:
	default:
		return errors.Wrapf(ErrUnknownCommand, "%q", c.Command)
	}

	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	switch c.Provider {
	case ProviderCoinMarketCap:
		// the wizard only edits alarms.json
		if c.Command == CommandAlarms {
			break
		}
		if c.APIKey == "" || c.APIKey == PlaceholderAPIKey {
			return ErrMissingAPIKey
		}
	case ProviderBinance, ProviderBybit:
	default:
		return errors.Wrapf(ErrUnknownProvider, "%q", c.Provider)
	}

	if c.WebDomain != "" && c.WebAddr == "" {
		c.WebAddr = ":443"
	}

	return nil
}

// TelegramEnabled reports whether both bot token and chat id are set.
func (c Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}
