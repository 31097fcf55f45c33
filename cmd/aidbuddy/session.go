package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/aidbuddy/internal/cli"
	"github.com/aretw0/aidbuddy/internal/dialogue"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored sessions",
	Long:  `List, inspect, and remove sessions in the configured store. Most useful with AIDBUDDY_STORE=redis.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all active sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, closeStore, err := cli.NewEngine(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		ids, err := engine.Sessions().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing sessions: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(ids) == 0 {
			fmt.Fprintln(out, "No active sessions found.")
			return nil
		}
		fmt.Fprintln(out, "Active Sessions:")
		for _, id := range ids {
			fmt.Fprintln(out, "- "+id)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, closeStore, err := cli.NewEngine(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		state, err := engine.Sessions().Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading session '%s': %w", args[0], err)
		}
		data, err := json.MarshalIndent(struct {
			ID       string  `json:"session_id"`
			Turns    int     `json:"turns"`
			Progress float64 `json:"progress"`
			Chapter  int     `json:"chapter"`
			State    any     `json:"state"`
		}{state.SessionID, state.Turns, dialogue.Progress(state), dialogue.Chapter(state), state.Snapshot()}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if !all && len(args) == 0 {
			return errors.New("pass session IDs or --all")
		}

		engine, closeStore, err := cli.NewEngine(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		if all {
			args, err = engine.Sessions().List(cmd.Context())
			if err != nil {
				return err
			}
		}

		var errs []error
		out := cmd.OutOrStdout()
		for _, id := range args {
			if err := engine.Sessions().Evict(cmd.Context(), id); err != nil {
				errs = append(errs, fmt.Errorf("error removing '%s': %w", id, err))
				continue
			}
			fmt.Fprintf(out, "Removed session '%s'\n", id)
		}
		return errors.Join(errs...)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
	sessionRmCmd.Flags().Bool("all", false, "Remove every session")
}
