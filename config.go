package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Seednode/cursorgrid/protocol"
)

type Config struct {
	bind        string
	cols        int
	idleTimeout time.Duration
	port        int
	prefix      string
	profile     bool
	rows        int
	sendBuffer  int
	tileSize    int
	tlsCert     string
	tlsKey      string
	verbose     bool
	version     bool

	// join and bot
	url      string
	name     string
	duration time.Duration
	png      string
	seed     uint64
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if !c.grid().Valid() {
		return fmt.Errorf("invalid grid (cols, rows and tile size must be positive): %dx%d@%d", c.cols, c.rows, c.tileSize)
	}
	if c.idleTimeout < 0 {
		return fmt.Errorf("invalid idle timeout (must not be negative): %s", c.idleTimeout)
	}
	if c.sendBuffer < 1 {
		return fmt.Errorf("invalid send buffer (must be at least 1): %d", c.sendBuffer)
	}
	return nil
}

func (c *Config) validateClient() error {
	if c.url == "" {
		return errors.New("--url is required")
	}
	if n := len([]rune(c.name)); n > protocol.MaxNameLength {
		return fmt.Errorf("invalid name (must be at most %d characters): %q", protocol.MaxNameLength, c.name)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func (c *Config) grid() protocol.Grid {
	return protocol.Grid{TileSize: c.tileSize, Cols: c.cols, Rows: c.rows}
}

func normalize(fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
}

// bindEnv mirrors every flag in fs from CURSORGRID_<FLAG>, unless it was set
// on the command line.
func bindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func applyVerbosity(cfg *Config) {
	if cfg.verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CURSORGRID")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "cursorgrid",
		Short:         "A shared tile grid where everyone sees everyone else's cursor.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		PreRun: func(cmd *cobra.Command, args []string) {
			bindEnv(v, cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			applyVerbosity(cfg)
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()
	normalize(fs)

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: CURSORGRID_BIND)")
	fs.IntVar(&cfg.cols, "cols", 40, "number of grid columns (env: CURSORGRID_COLS)")
	fs.DurationVar(&cfg.idleTimeout, "idle-timeout", 0, "disconnect participants silent for this long, 0 to disable (env: CURSORGRID_IDLE_TIMEOUT)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: CURSORGRID_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: CURSORGRID_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: CURSORGRID_PROFILE)")
	fs.IntVar(&cfg.rows, "rows", 24, "number of grid rows (env: CURSORGRID_ROWS)")
	fs.IntVar(&cfg.sendBuffer, "send-buffer", 16, "outbound messages queued per connection before dropping (env: CURSORGRID_SEND_BUFFER)")
	fs.IntVar(&cfg.tileSize, "tile-size", 32, "tile edge length in logical pixels (env: CURSORGRID_TILE_SIZE)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: CURSORGRID_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: CURSORGRID_TLS_KEY)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: CURSORGRID_VERSION)")

	cmd.PersistentFlags().BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: CURSORGRID_VERBOSE)")

	cmd.AddCommand(newJoinCmd(cfg, v), newBotCmd(cfg, v))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("cursorgrid v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func clientFlags(cfg *Config, fs *pflag.FlagSet) {
	fs.StringVar(&cfg.url, "url", "ws://localhost:8080/ws", "participant websocket URL (env: CURSORGRID_URL)")
	fs.StringVar(&cfg.name, "name", "", "display name shown to other participants (env: CURSORGRID_NAME)")
}

func newJoinCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join a grid in a desktop window.",
		Args:  cobra.ExactArgs(0),
		PreRun: func(cmd *cobra.Command, args []string) {
			bindEnv(v, cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validateClient(); err != nil {
				return err
			}
			applyVerbosity(cfg)
			return runJoin(cmd.Context(), cfg)
		},
	}

	normalize(cmd.Flags())
	clientFlags(cfg, cmd.Flags())

	return cmd
}

func newBotCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Join a grid headlessly and wander around it.",
		Args:  cobra.ExactArgs(0),
		PreRun: func(cmd *cobra.Command, args []string) {
			bindEnv(v, cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validateClient(); err != nil {
				return err
			}
			if cfg.duration < 0 {
				return fmt.Errorf("invalid duration (must not be negative): %s", cfg.duration)
			}
			applyVerbosity(cfg)
			return runBot(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	normalize(fs)
	clientFlags(cfg, fs)
	fs.DurationVar(&cfg.duration, "duration", 0, "leave after this long, 0 to run until interrupted (env: CURSORGRID_DURATION)")
	fs.StringVar(&cfg.png, "png", "", "write the last rendered frame to this PNG file on exit (env: CURSORGRID_PNG)")
	fs.Uint64Var(&cfg.seed, "seed", 0, "seed for the random walk, 0 for a random seed (env: CURSORGRID_SEED)")

	return cmd
}
