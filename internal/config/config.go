// Package config handles the parsing and validation of application configuration
// from command-line arguments and environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"

	"herald/internal/logger"
	"herald/internal/vars"
)

// Source names for the discovery provider selection.
const (
	SourceFile   = "file"
	SourceMaster = "master"
)

// Config represents the complete application flags configuration.
type Config struct {
	// betteralign:ignore

	Discord   Discord       `group:"Discord Options" env-namespace:"HERALD"`
	Discovery Discovery     `group:"Discovery Options" namespace:"discovery" env-namespace:"HERALD_DISCOVERY"`
	Query     Query         `group:"Query Options" namespace:"query" env-namespace:"HERALD_QUERY"`
	Display   Display       `group:"Display Options" namespace:"display" env-namespace:"HERALD_DISPLAY"`
	Cycle     Cycle         `group:"Cycle Options" namespace:"cycle" env-namespace:"HERALD_CYCLE"`
	History   History       `group:"History Options" namespace:"history" env-namespace:"HERALD_HISTORY"`
	GeoIP     GeoIP         `group:"GeoIP Options" namespace:"geoip" env-namespace:"HERALD_GEOIP"`
	Web       Web           `group:"Web Options" namespace:"web" env-namespace:"HERALD_WEB"`
	Logger    logger.Config `group:"Logger Options" namespace:"log" env-namespace:"HERALD_LOG"`

	Version bool `short:"v" long:"version" description:"Print version and build info"`
}

// Discord holds the bot token and the set of board channels.
type Discord struct {
	// betteralign:ignore

	Token      string   `short:"t" long:"token" env:"TOKEN" description:"Discord bot token"`
	Channels   []string `short:"c" long:"channel" env:"CHANNELS" env-delim:"," description:"Discord channel IDs the board is published to"`
	ClearLimit int      `long:"clear-limit" env:"CLEAR_LIMIT" description:"Recent messages cleared from each channel at startup" default:"50"`
}

// Discovery holds the server list source configuration.
type Discovery struct {
	// betteralign:ignore

	Source  string   `short:"s" long:"source" env:"SOURCE" description:"Server list source" choice:"file" choice:"master" default:"file"`
	Path    string   `long:"path" env:"PATH" description:"Path to the JSON server list (file source)" default:"servers.json"`
	APIKey  string   `long:"api-key" env:"API_KEY" description:"Steam Web API key (master source)"`
	AppID   int      `long:"app-id" env:"APP_ID" description:"Steam application ID (master source)" default:"221100"`
	Limit   int      `long:"limit" env:"LIMIT" description:"Maximum servers requested from the directory" default:"500"`
	Regions []string `long:"region" env:"REGIONS" env-delim:"," description:"Server name must contain at least one of these markers" default:"EU" default:"US"`
	Exclude []string `long:"exclude" env:"EXCLUDE" env-delim:"," description:"Server names containing any of these are skipped" default:"EVENT" default:"WINTER"`
}

// Query holds Source Query protocol and retry configuration.
type Query struct {
	// betteralign:ignore

	Timeout    time.Duration `long:"timeout" env:"TIMEOUT" description:"Per-call query timeout" default:"3s"`
	BufferSize uint16        `long:"buffer-size" env:"BUFFER_SIZE" description:"Response body buffer size" default:"1400"`
	Retries    int           `long:"retries" env:"RETRIES" description:"Retry budget per query" default:"1"`
	RetryDelay time.Duration `long:"retry-delay" env:"RETRY_DELAY" description:"Delay before each retry attempt" default:"500ms"`
	Stagger    time.Duration `long:"stagger" env:"STAGGER" description:"Minimum spacing between query pairs to distinct servers" default:"150ms"`
}

// Display holds board filtering and rendering configuration.
type Display struct {
	// betteralign:ignore

	MinPlayers    int    `long:"min-players" env:"MIN_PLAYERS" description:"Exclusive lower population bound" default:"0"`
	MaxPlayers    int    `long:"max-players" env:"MAX_PLAYERS" description:"Inclusive upper population bound" default:"40"`
	PlayerListCap int    `long:"player-list-cap" env:"PLAYER_LIST_CAP" description:"Player list length above which the list is disabled" default:"40"`
	TagLong       string `long:"tag-long" env:"TAG_LONG" description:"Promotional tag rewritten in display names" default:"Hosted by GTXGaming.co.uk"`
	TagShort      string `long:"tag-short" env:"TAG_SHORT" description:"Short form the promotional tag is rewritten to" default:"GTX"`
}

// Cycle holds update scheduling configuration.
type Cycle struct {
	Interval time.Duration `short:"i" long:"interval" env:"INTERVAL" description:"Update cycle interval" default:"60s"`
}

// History holds population history database configuration.
type History struct {
	// betteralign:ignore

	Path        string        `long:"path" env:"PATH" description:"Path to SQLite history database (empty disables history)"`
	PruneBefore time.Duration `long:"prune-before" description:"Delete history samples older than this duration and exit"`
}

// GeoIP holds MaxMind GeoIP configuration.
type GeoIP struct {
	// betteralign:ignore

	Path     string        `short:"g" long:"path" env:"PATH" description:"Path to MMDB file (empty disables country lookup)"`
	URL      string        `long:"url" env:"URL" description:"URL to download MMDB" default:"https://git.io/GeoLite2-Country.mmdb"`
	Interval time.Duration `long:"interval" env:"INTERVAL" description:"Update interval check" default:"24h"`
}

// Web holds the optional status endpoint configuration.
type Web struct {
	// betteralign:ignore

	Address    string        `short:"l" long:"address" env:"LISTEN_ADDRESS" description:"Status endpoint listen address (empty disables)"`
	RateCount  int           `long:"rate-count" env:"RATE_COUNT" description:"Per-IP request limit within the rate window" default:"30"`
	RateWindow time.Duration `long:"rate-window" env:"RATE_WINDOW" description:"Rate limit window duration" default:"1m"`
}

// Parse reads the configuration from flags and environment variables.
// It terminates the application if the configuration is invalid or if the help flag is invoked.
func Parse() *Config {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.Default)
	parser.NamespaceDelimiter = "-"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}

	if cfg.Version {
		vars.Print()
		os.Exit(0)
	}

	if cfg.Discord.Token == "" {
		fmt.Fprintln(os.Stderr,
			"Required flag `-t, --token' or environment variable `HERALD_TOKEN` was not specified!")
		os.Exit(1)
	}

	if len(cfg.Discord.Channels) == 0 {
		fmt.Fprintln(os.Stderr,
			"At least one `-c, --channel' or environment variable `HERALD_CHANNELS` must be specified!")
		os.Exit(1)
	}

	if cfg.Discovery.Source == SourceMaster && cfg.Discovery.APIKey == "" {
		fmt.Fprintln(os.Stderr,
			"Discovery source `master' requires `--discovery-api-key' or environment variable `HERALD_DISCOVERY_API_KEY`!")
		os.Exit(1)
	}

	return &cfg
}
