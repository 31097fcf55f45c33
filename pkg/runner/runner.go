package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/aidbuddy/internal/logging"
)

// TurnFunc answers one user message. An empty message asks for the opening
// text.
type TurnFunc func(ctx context.Context, text string) (string, error)

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// Runner drives a line-oriented conversation: it prints the opening reply,
// then reads one line per turn until EOF, "quit" or "exit".
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Renderer ContentRenderer
	Logger   *slog.Logger

	// Headless suppresses the prompt, for piped input.
	Headless bool
}

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithIO sets the input and output streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *Runner) {
		if in != nil {
			r.Input = in
		}
		if out != nil {
			r.Output = out
		}
	}
}

// WithRenderer sets the reply renderer.
func WithRenderer(fn ContentRenderer) Option {
	return func(r *Runner) {
		r.Renderer = fn
	}
}

// WithLogger sets the runner logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.Logger = l
		}
	}
}

// WithHeadless toggles the input prompt.
func WithHeadless(headless bool) Option {
	return func(r *Runner) {
		r.Headless = headless
	}
}

// NewRunner creates a new Runner with default Stdin/Stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Input:  os.Stdin,
		Output: os.Stdout,
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type inputResult struct {
	text string
	err  error
}

// Run executes the conversation loop until the input ends or ctx is done.
// Sanitisation errors are reported to the user and the turn is retried.
func (r *Runner) Run(ctx context.Context, turn TurnFunc) error {
	reply, err := turn(ctx, "")
	if err != nil {
		return fmt.Errorf("opening turn: %w", err)
	}
	r.print(reply)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := r.pump(ctx)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.prompt()

		var res inputResult
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res, ok = <-lines:
		}
		if !ok {
			return nil
		}
		if res.err != nil {
			return fmt.Errorf("input error: %w", res.err)
		}

		text := strings.TrimSpace(res.text)
		if lower := strings.ToLower(text); lower == "quit" || lower == "exit" {
			return nil
		}
		if text == "" {
			continue
		}

		reply, err := turn(ctx, text)
		if err != nil {
			if IsInputError(err) {
				fmt.Fprintf(r.Output, "Error: %v. Please try again.\n", err)
				continue
			}
			return err
		}
		r.print(reply)
	}
}

// pump reads lines in the background so that Run can honour cancellation
// while the reader blocks.
func (r *Runner) pump(ctx context.Context) <-chan inputResult {
	out := make(chan inputResult)
	go func() {
		defer close(out)
		reader := bufio.NewReader(r.Input)
		for {
			text, err := reader.ReadString('\n')
			if text != "" {
				select {
				case out <- inputResult{text: text}:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					select {
					case out <- inputResult{err: err}:
					case <-ctx.Done():
					}
				}
				return
			}
		}
	}()
	return out
}

func (r *Runner) prompt() {
	if !r.Headless {
		fmt.Fprint(r.Output, "> ")
	}
}

func (r *Runner) print(msg string) {
	output := msg
	if r.Renderer != nil {
		rendered, err := r.Renderer(msg)
		if err == nil {
			output = rendered
		} else {
			r.Logger.Debug("render failed, printing raw reply", "err", err)
		}
	}
	fmt.Fprintln(r.Output, strings.TrimSpace(output))
}
