package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/aidbuddy"
	"github.com/aretw0/aidbuddy/internal/presentation/tui"
	"github.com/aretw0/aidbuddy/pkg/runner"
)

// ChatOptions configures an interactive terminal conversation.
type ChatOptions struct {
	SessionID string
	Input     io.Reader
	Output    io.Writer

	// Rich renders Markdown and prints the banner and status line.
	Rich bool
	// Headless drops the prompt, for piped input.
	Headless bool
	Logger   *slog.Logger
}

// RunChat drives a conversation between the terminal and the engine until
// EOF, quit or exit.
func RunChat(ctx context.Context, engine *aidbuddy.Engine, opts ChatOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	runnerOpts := []runner.Option{
		runner.WithIO(opts.Input, opts.Output),
		runner.WithLogger(logger),
		runner.WithHeadless(opts.Headless),
	}
	if opts.Rich {
		tui.PrintBanner(opts.Output)
		render, err := tui.NewRenderer("", 0)
		if err != nil {
			logger.Warn("markdown rendering disabled", "err", err)
		} else {
			runnerOpts = append(runnerOpts, runner.WithRenderer(render))
		}
	}

	resumed := false
	if _, err := engine.Sessions().Get(ctx, opts.SessionID); err == nil {
		resumed = true
	}
	logSessionStatus(logger, opts.SessionID, resumed)

	r := runner.NewRunner(runnerOpts...)
	return r.Run(ctx, func(ctx context.Context, text string) (string, error) {
		p, err := engine.HandleTurn(ctx, opts.SessionID, text)
		if err != nil {
			return "", err
		}
		if !opts.Rich {
			return p.Reply, nil
		}
		return fmt.Sprintf("%s\n\n%s", p.Reply, tui.StatusLine(p.Chapter, p.Progress)), nil
	})
}

func logSessionStatus(logger *slog.Logger, sessionID string, resumed bool) {
	if resumed {
		logger.Info("session resumed", "session_id", sessionID)
		return
	}
	logger.Info("session created", "session_id", sessionID)
}
