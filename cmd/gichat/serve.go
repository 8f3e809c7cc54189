package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/tailored-agentic-units/gichat/kernel"
	"github.com/tailored-agentic-units/gichat/session"
	"github.com/tailored-agentic-units/gichat/web"
)

func newServeCommand() *ffcli.Command {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)

	var (
		opts   options
		addr   string
		rate   int
		logo   string
		idle   string
		header string
	)
	opts.register(fs)
	fs.StringVar(&addr, "addr", "", "listen address (default :8501)")
	fs.IntVar(&rate, "rate", 0, "questions per minute per client (default 20)")
	fs.StringVar(&logo, "logo", "", "logo image shown on the page (optional)")
	fs.StringVar(&idle, "idle-timeout", "", "discard sessions idle this long (default 2h)")
	fs.StringVar(&header, "client-header", "", "proxy header carrying the client address for rate limiting (optional)")

	return &ffcli.Command{
		Name:       "serve",
		ShortUsage: "gichat serve [flags]",
		ShortHelp:  "serve the web chat",
		FlagSet:    fs,
		Options:    ffOptions(),
		Exec: func(ctx context.Context, args []string) error {
			logger := opts.logger()

			cfg, err := opts.load()
			if err != nil {
				return err
			}
			cfg.Server.Addr = pick(addr, cfg.Server.Addr)
			cfg.Server.LogoPath = pick(logo, cfg.Server.LogoPath)
			cfg.Session.IdleTimeout = pick(idle, cfg.Session.IdleTimeout)
			cfg.Server.ClientHeader = pick(header, cfg.Server.ClientHeader)
			if rate > 0 {
				cfg.Server.RatePerMinute = rate
			}

			k, err := kernel.New(cfg)
			if err != nil {
				return fmt.Errorf("failed to start: %w", err)
			}

			sessions, err := session.NewManager(&cfg.Session)
			if err != nil {
				return err
			}

			srv, err := web.New(k, sessions, cfg.Server, logger)
			if err != nil {
				return err
			}

			for _, info := range k.Agents() {
				logger.Info("starting",
					"agent", info.Name,
					"provider", info.Provider,
					"model", info.Model,
					"temperature", cfg.Agent.Model.TemperatureOrDefault(),
				)
			}
			return srv.Run(ctx)
		},
	}
}

func pick(flagValue, current string) string {
	if flagValue != "" {
		return flagValue
	}
	return current
}
