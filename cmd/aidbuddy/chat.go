package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/aidbuddy/internal/cli"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant in the terminal",
	Long: `Starts an interactive conversation. Type quit or exit to leave.
With --session and a redis store the conversation can be resumed later.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		plain, _ := cmd.Flags().GetBool("plain")

		engine, closeStore, err := cli.NewEngine(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		stdinTTY := term.IsTerminal(int(os.Stdin.Fd()))
		stdoutTTY := term.IsTerminal(int(os.Stdout.Fd()))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return cli.RunChat(ctx, engine, cli.ChatOptions{
			SessionID: sessionID,
			Input:     cmd.InOrStdin(),
			Output:    cmd.OutOrStdout(),
			Rich:      stdoutTTY && !plain,
			Headless:  !stdinTTY,
			Logger:    logger,
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("session", "terminal", "Session ID")
	chatCmd.Flags().Bool("plain", false, "Print raw Markdown even on a terminal")

	rootCmd.RunE = chatCmd.RunE
	rootCmd.Flags().AddFlagSet(chatCmd.Flags())
}
