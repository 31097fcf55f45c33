package runner_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/aidbuddy/pkg/runner"
)

type echo struct {
	seen []string
}

func (e *echo) turn(ctx context.Context, text string) (string, error) {
	e.seen = append(e.seen, text)
	if text == "" {
		return "welcome", nil
	}
	if text == "big" {
		return "", fmt.Errorf("sanitize: %w", runner.ErrInputTooLarge)
	}
	if text == "boom" {
		return "", errors.New("store down")
	}
	return "you said " + text, nil
}

func TestRunner_Conversation(t *testing.T) {
	var out bytes.Buffer
	e := &echo{}
	r := runner.NewRunner(
		runner.WithIO(strings.NewReader("hello\n\n  estimate  \nquit\nnever\n"), &out),
		runner.WithHeadless(true),
	)

	require.NoError(t, r.Run(context.Background(), e.turn))

	assert.Equal(t, []string{"", "hello", "estimate"}, e.seen)
	assert.Equal(t, "welcome\nyou said hello\nyou said estimate\n", out.String())
}

func TestRunner_EOFWithoutNewline(t *testing.T) {
	var out bytes.Buffer
	e := &echo{}
	r := runner.NewRunner(runner.WithIO(strings.NewReader("last words"), &out))

	require.NoError(t, r.Run(context.Background(), e.turn))
	assert.Equal(t, []string{"", "last words"}, e.seen)
	assert.Contains(t, out.String(), "> ")
}

func TestRunner_InputErrorsAreRetried(t *testing.T) {
	var out bytes.Buffer
	e := &echo{}
	r := runner.NewRunner(
		runner.WithIO(strings.NewReader("big\nok\nEXIT\n"), &out),
		runner.WithHeadless(true),
	)

	require.NoError(t, r.Run(context.Background(), e.turn))
	assert.Contains(t, out.String(), "Please try again.")
	assert.Contains(t, out.String(), "you said ok")
}

func TestRunner_EngineErrorStops(t *testing.T) {
	var out bytes.Buffer
	e := &echo{}
	r := runner.NewRunner(
		runner.WithIO(strings.NewReader("boom\nafter\n"), &out),
		runner.WithHeadless(true),
	)

	err := r.Run(context.Background(), e.turn)
	assert.EqualError(t, err, "store down")
	assert.NotContains(t, e.seen, "after")
}

func TestRunner_Renderer(t *testing.T) {
	var out bytes.Buffer
	r := runner.NewRunner(
		runner.WithIO(strings.NewReader(""), &out),
		runner.WithRenderer(func(s string) (string, error) { return "<" + s + ">\n\n", nil }),
	)

	require.NoError(t, r.Run(context.Background(), (&echo{}).turn))
	assert.Equal(t, "<welcome>\n> ", out.String())
}

func TestRunner_RendererFailureFallsBack(t *testing.T) {
	var out bytes.Buffer
	r := runner.NewRunner(
		runner.WithIO(strings.NewReader(""), &out),
		runner.WithHeadless(true),
		runner.WithRenderer(func(string) (string, error) { return "", errors.New("no tty") }),
	)

	require.NoError(t, r.Run(context.Background(), (&echo{}).turn))
	assert.Equal(t, "welcome\n", out.String())
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	r := runner.NewRunner(runner.WithIO(strings.NewReader("hello\n"), &out), runner.WithHeadless(true))

	err := r.Run(ctx, func(context.Context, string) (string, error) { return "hi", nil })
	assert.ErrorIs(t, err, context.Canceled)
}
