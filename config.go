package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sketchbox/sketchbox/game"
)

type Config struct {
	bind           string
	databaseURL    string
	port           int
	prefix         string
	profile        bool
	sessionTimeout time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool

	// game timings, in whole seconds to match the documented
	// environment variables
	wordSelectionTime int
	drawingTime       int
	resultDisplayTime int
	backupInterval    int

	graceWindow time.Duration
	maxRounds   int
	minPlayers  int
	maxPlayers  int
	difficulty  string
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	for flag, val := range map[string]int{
		"word-selection-time": c.wordSelectionTime,
		"drawing-time":        c.drawingTime,
		"result-display-time": c.resultDisplayTime,
		"backup-interval":     c.backupInterval,
	} {
		if val < 1 {
			return fmt.Errorf("--%s must be a positive number of seconds: %d", flag, val)
		}
	}
	if c.maxRounds < 1 {
		return fmt.Errorf("invalid --max-rounds: %d", c.maxRounds)
	}
	if c.minPlayers < 2 {
		return fmt.Errorf("invalid --min-players (need at least 2): %d", c.minPlayers)
	}
	if c.maxPlayers < c.minPlayers {
		return fmt.Errorf("--max-players must be at least --min-players: %d", c.maxPlayers)
	}
	switch c.difficulty {
	case "easy", "medium", "hard":
	default:
		return fmt.Errorf("invalid --difficulty (easy, medium, hard): %s", c.difficulty)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func (c *Config) settings() game.Settings {
	return game.Settings{
		WordSelectionTime: time.Duration(c.wordSelectionTime) * time.Second,
		DrawingTime:       time.Duration(c.drawingTime) * time.Second,
		ResultDisplayTime: time.Duration(c.resultDisplayTime) * time.Second,
		BackupInterval:    time.Duration(c.backupInterval) * time.Second,
		GraceWindow:       c.graceWindow,
		MaxRounds:         c.maxRounds,
		MinPlayers:        c.minPlayers,
		MaxPlayers:        c.maxPlayers,
		Difficulty:        c.difficulty,
	}
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SKETCHBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "sketchbox",
		Short:         "A real-time multiplayer drawing-and-guessing game server.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: SKETCHBOX_BIND)")
	fs.StringVar(&cfg.databaseURL, "database-url", "", "postgres DSN for room snapshots; empty keeps them in memory (env: SKETCHBOX_DATABASE_URL)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: SKETCHBOX_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: SKETCHBOX_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: SKETCHBOX_PROFILE)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle rooms are ended (env: SKETCHBOX_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: SKETCHBOX_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: SKETCHBOX_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: SKETCHBOX_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: SKETCHBOX_VERSION)")

	fs.IntVar(&cfg.wordSelectionTime, "word-selection-time", 10, "word-choice phase duration in seconds (env: WORD_SELECTION_TIME)")
	fs.IntVar(&cfg.drawingTime, "drawing-time", 80, "drawing phase duration in seconds (env: DRAWING_TIME)")
	fs.IntVar(&cfg.resultDisplayTime, "result-display-time", 5, "result phase duration in seconds (env: RESULT_DISPLAY_TIME)")
	fs.IntVar(&cfg.backupInterval, "backup-interval", 300, "room snapshot cadence in seconds (env: BACKUP_INTERVAL)")

	fs.DurationVar(&cfg.graceWindow, "grace-window", 15*time.Second, "time a disconnected player may reconnect before removal (env: SKETCHBOX_GRACE_WINDOW)")
	fs.IntVar(&cfg.maxRounds, "max-rounds", 6, "number of drawing turns per game (env: SKETCHBOX_MAX_ROUNDS)")
	fs.IntVar(&cfg.minPlayers, "min-players", 2, "minimum connected players to start or continue a game (env: SKETCHBOX_MIN_PLAYERS)")
	fs.IntVar(&cfg.maxPlayers, "max-players", 8, "maximum players per room (env: SKETCHBOX_MAX_PLAYERS)")
	fs.StringVar(&cfg.difficulty, "difficulty", "medium", "word difficulty tier: easy, medium or hard (env: SKETCHBOX_DIFFICULTY)")

	// The four game timings are also recognized by their bare,
	// historically documented names.
	bareEnv := map[string]string{
		"word-selection-time": "WORD_SELECTION_TIME",
		"drawing-time":        "DRAWING_TIME",
		"result-display-time": "RESULT_DISPLAY_TIME",
		"backup-interval":     "BACKUP_INTERVAL",
	}

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		if bare, ok := bareEnv[f.Name]; ok {
			_ = v.BindEnv(f.Name, "SKETCHBOX_"+bare, bare)
		} else {
			_ = v.BindEnv(f.Name)
		}
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("sketchbox v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
