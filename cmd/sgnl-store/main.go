// Command sgnl-store inspects and maintains a signal-store data directory.
//
// Usage:
//
//	sgnl-store stat                    Count records per namespace
//	sgnl-store list <kind>             List record ids of a kind
//	sgnl-store get <kind> <id>         Print one record as JSON
//	sgnl-store rm-number <number>      Remove every session of a number
//	sgnl-store export <file>           Write a backup
//	sgnl-store import <file>           Restore a backup
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	flags "github.com/jessevdk/go-flags"
	"golang.org/x/term"

	"github.com/gwillem/signal-store/internal/config"
	"github.com/gwillem/signal-store/internal/store"
)

type globalOpts struct {
	Config  string `short:"c" long:"config" description:"Path to config file (YAML)"`
	DataDir string `long:"data-dir" description:"Data directory (overrides config)"`
	Account string `short:"a" long:"account" description:"Account directory name (overrides config)"`
	Medium  string `short:"m" long:"medium" description:"Storage medium: sqlite, bolt, dir or memory (overrides config)"`
	Seal    bool   `long:"seal" description:"Values are sealed with a passphrase"`
	Verbose bool   `short:"v" long:"verbose" description:"Enable verbose logging"`

	Stat     statCommand     `command:"stat" description:"Count records per namespace"`
	List     listCommand     `command:"list" description:"List record ids of a kind"`
	Get      getCommand      `command:"get" description:"Print one record as JSON"`
	Rm       rmCommand       `command:"rm" description:"Remove one record"`
	RmNumber rmNumberCommand `command:"rm-number" description:"Remove every session of a phone number"`
	Wipe     wipeCommand     `command:"wipe" description:"Remove every record of a kind, or of the whole store"`
	Enqueue  enqueueCommand  `command:"enqueue" description:"Queue a raw envelope file as an unprocessed record"`
	Export   exportCommand   `command:"export" description:"Write a backup of every record"`
	Import   importCommand   `command:"import" description:"Restore records from a backup"`
}

var opts globalOpts

// Output streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	parser.SubcommandsOptional = false

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}

// loadConfig reads the config file (if any) and applies command-line
// overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		var err error
		cfg, err = config.Load(opts.Config)
		if err != nil {
			return nil, err
		}
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if opts.Account != "" {
		cfg.Account = opts.Account
	}
	if opts.Medium != "" {
		cfg.Medium = opts.Medium
	}
	if opts.Seal {
		cfg.Seal.Enabled = true
	}
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore opens the configured account store.
func openStore() (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	logger := cfg.NewLogger(stderr)
	sopts := []store.Option{store.WithLogger(logger)}
	if cfg.Seal.Enabled {
		pass, err := passphrase(cfg, logger)
		if err != nil {
			return nil, err
		}
		sopts = append(sopts, store.WithPassphrase(pass))
	}
	return store.Open(dsn, sopts...)
}

// passphrase returns the seal passphrase from the environment, or prompts
// for it on a terminal.
func passphrase(cfg *config.Config, logger *slog.Logger) (string, error) {
	if p, ok := cfg.Passphrase(); ok {
		logger.Debug("seal passphrase from environment", "var", cfg.Seal.PassphraseEnv)
		return p, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("seal enabled but $%s is not set and stdin is not a terminal", cfg.Seal.PassphraseEnv)
	}
	fmt.Fprint(stderr, "Passphrase: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(stderr)
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	p := strings.TrimSpace(string(b))
	if p == "" {
		return "", fmt.Errorf("empty passphrase")
	}
	return p, nil
}

func success(format string, args ...any) {
	color.New(color.FgGreen).Fprint(stdout, "✓ ")
	fmt.Fprintf(stdout, format+"\n", args...)
}

func warnf(format string, args ...any) {
	color.New(color.FgYellow).Fprint(stderr, "! ")
	fmt.Fprintf(stderr, format+"\n", args...)
}
