package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/tailored-agentic-units/gichat/core/config"
	"github.com/tailored-agentic-units/gichat/kernel"
)

// Build flags
var Version = ""
var Commit = ""
var Date = ""

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Failed to load .env: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := newCommand()
	if err := cmd.ParseAndRun(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func newCommand() *ffcli.Command {
	fs := flag.NewFlagSet("gichat", flag.ExitOnError)

	return &ffcli.Command{
		ShortUsage: "gichat [flags] <subcommand>",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			return flag.ErrHelp
		},
		Subcommands: []*ffcli.Command{
			newServeCommand(),
			newChatCommand(),
			newVersionCommand(),
		},
	}
}

// options holds the flags shared by serve and chat. Empty values leave the
// config file (or the defaults) untouched.
type options struct {
	configFile  string
	provider    string
	model       string
	baseURL     string
	temperature float64
	secrets     string
	instruction string
	observer    string
	verbose     bool
}

func (o *options) register(fs *flag.FlagSet) {
	fs.StringVar(&o.configFile, "config", "", "JSON config file (optional)")
	fs.StringVar(&o.provider, "provider", "", "completion provider (openai, anthropic, ollama)")
	fs.StringVar(&o.model, "model", "", "model identifier (default gpt-4o)")
	fs.StringVar(&o.baseURL, "base-url", "", "provider endpoint override (optional)")
	fs.Float64Var(&o.temperature, "temperature", -1, "sampling temperature (default 0.3)")
	fs.StringVar(&o.secrets, "secrets", "", "TOML secrets file holding the API key (optional)")
	fs.StringVar(&o.instruction, "instruction", "", "file replacing the built-in instruction (optional)")
	fs.StringVar(&o.observer, "observer", "", "event observer (slog, noop)")
	fs.BoolVar(&o.verbose, "verbose", false, "enable debug logging to stderr")
}

// load builds the kernel config: defaults, then the config file, then flags
// and GICHAT_* environment variables.
func (o *options) load() (*kernel.Config, error) {
	cfg := kernel.DefaultConfig()
	if o.configFile != "" {
		loaded, err := kernel.LoadConfig(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	override := kernel.Config{
		Agent: config.AgentConfig{
			Provider: &config.ProviderConfig{Name: o.provider, BaseURL: o.baseURL},
			Model:    &config.ModelConfig{Name: o.model},
		},
		Observer:        o.observer,
		InstructionPath: o.instruction,
		SecretsPath:     o.secrets,
	}
	if o.temperature >= 0 {
		override.Agent.Model.Temperature = &o.temperature
	}
	cfg.Merge(&override)

	return &cfg, nil
}

func (o *options) logger() *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func ffOptions() []ff.Option {
	return []ff.Option{ff.WithEnvVarPrefix("GICHAT")}
}

func newVersionCommand() *ffcli.Command {
	return &ffcli.Command{
		Name:       "version",
		ShortUsage: "gichat version",
		ShortHelp:  "print version",
		Exec: func(ctx context.Context, args []string) error {
			v := Version
			if v == "" {
				if buildInfo, ok := debug.ReadBuildInfo(); ok {
					v = buildInfo.Main.Version
				}
			}
			if v == "" {
				v = "dev"
			}
			fields := []string{v}
			if Commit != "" {
				fields = append(fields, Commit)
			}
			if Date != "" {
				fields = append(fields, Date)
			}
			fmt.Println(strings.Join(fields, " "))
			return nil
		},
	}
}
