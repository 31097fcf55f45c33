package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/aidbuddy/internal/config"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "aidbuddy",
	Short: "aidbuddy is a conversational FAFSA assistant",
	Long: `aidbuddy walks students through the FAFSA: a rough Pell Grant estimate,
a document checklist and a step-by-step apply walkthrough.

Configuration is read from AIDBUDDY_* environment variables (and an optional
.env file); flags override the environment.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cmd)
		if err != nil {
			return err
		}
		logger = cfg.Logger()
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("env-file", ".env", "Optional dotenv file")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: text or json")
	pf.String("store", "", "Session store: memory or redis")
	pf.String("redis-url", "", "Redis URL (redis://host:port/db)")
	pf.String("award-years", "", "YAML file with extra award-year grant figures")
}

// loadConfig reads the environment and applies the persistent flags that
// were set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	c, err := config.Load(files...)
	if err != nil {
		return nil, err
	}

	overrides := map[string]*string{
		"log-level":   &c.LogLevel,
		"log-format":  &c.LogFormat,
		"store":       &c.Store,
		"redis-url":   &c.Redis.URL,
		"award-years": &c.AwardYearsFile,
	}
	for name, dst := range overrides {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
