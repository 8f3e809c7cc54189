package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/tailored-agentic-units/gichat/core/protocol"
	"github.com/tailored-agentic-units/gichat/kernel"
	"github.com/tailored-agentic-units/gichat/prompt"
	"github.com/tailored-agentic-units/gichat/session"
)

const historyWidth = 100

var (
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	hintStyle      = lipgloss.NewStyle().Faint(true)
)

func newChatCommand() *ffcli.Command {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)

	var opts options
	opts.register(fs)

	return &ffcli.Command{
		Name:       "chat",
		ShortUsage: "gichat chat [flags]",
		ShortHelp:  "chat in the terminal",
		FlagSet:    fs,
		Options:    ffOptions(),
		Exec: func(ctx context.Context, args []string) error {
			opts.logger()

			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if opts.observer == "" {
				cfg.Observer = "noop"
			}

			k, err := kernel.New(cfg)
			if err != nil {
				return fmt.Errorf("failed to start: %w", err)
			}

			return repl(ctx, k, session.NewMemorySession(), os.Stdin, os.Stdout)
		},
	}
}

func repl(ctx context.Context, k *kernel.Kernel, sess session.Session, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, hintStyle.Render("🏥 GI Emergency Care · /history /clear /quit"))

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, userStyle.Render("🩺 Médecin : "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/clear":
			sess.Clear()
			fmt.Fprintln(out, hintStyle.Render("Conversation effacée."))
			continue
		case "/history":
			printHistory(out, sess.Messages())
			continue
		}

		if err := answer(ctx, k, sess, line, out); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func answer(ctx context.Context, k *kernel.Kernel, sess session.Session, question string, out io.Writer) error {
	ex, err := k.Submit(ctx, sess, question)
	if errors.Is(err, kernel.ErrEmptyQuestion) {
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, assistantStyle.Render("🤖 Assistant :"))
	for ex.Next() {
		fmt.Fprint(out, ex.Fragment())
	}

	result := ex.Commit()
	if !result.OK() {
		fmt.Fprintln(out, noticeStyle.Render("❌ Erreur lors de la génération de la réponse : "+result.Detail()))
		fmt.Fprint(out, prompt.Apology)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out)
	return nil
}

func printHistory(out io.Writer, messages []protocol.Message) {
	if len(messages) == 0 {
		fmt.Fprintln(out, hintStyle.Render("👋 Commencez par poser une question pour démarrer la conversation."))
		return
	}

	for _, msg := range messages {
		if msg.Role == protocol.RoleUser {
			fmt.Fprintln(out, userStyle.Render("🩺 Médecin :")+" "+msg.Content)
			continue
		}
		fmt.Fprintln(out, assistantStyle.Render("🤖 Assistant :"))
		out.Write(markdown.Render(msg.Content, historyWidth, 2))
		fmt.Fprintln(out)
	}
}
