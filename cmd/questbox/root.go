package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/isdmx/questbox/config"
)

// cli holds state shared by the subcommands.
type cli struct {
	configPath string
	envFile    string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd(version string) *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "questbox",
		Short: "Sandboxed runner for student game code",
		Long: `questbox validates and runs short Python programs that drive a text
adventure, each in its own short-lived, resource-limited process.

Examples:
  questbox serve
  questbox run level1.py --context has_key=true --context room='"hall"'
  questbox check level1.py`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.load,
	}

	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before the configuration")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override logging.level")

	rootCmd.AddCommand(
		newServeCmd(c),
		newRunCmd(c),
		newCheckCmd(c),
	)

	return rootCmd
}

// load reads the dotenv file and the configuration.
func (c *cli) load(*cobra.Command, []string) error {
	if c.envFile != "" {
		// godotenv.Load does not overwrite variables that are already set.
		if err := godotenv.Load(c.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", c.envFile, err)
		}
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	c.cfg = cfg
	return nil
}
