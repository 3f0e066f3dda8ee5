// Package cmd provides the command-line interface for phasesim.
package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var (
	envFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "phasesim",
	Short: "Run and inspect phased simulations.",
	Long: `phasesim runs simulations in which every component handles the ` +
		`phases of a tick in lockstep. It can also check border files and ` +
		`summarize recorded runs.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadEnv(envFile); err != nil {
			return err
		}

		return setLogLevel(cmd)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"File with environment variables to load before running.")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log verbosity (trace, debug, info, warn, error).")
}

// loadEnv reads the variables of an env file. A missing file is not an error.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

func setLogLevel(cmd *cobra.Command) error {
	level := logLevel

	if !cmd.Flags().Changed("log-level") {
		if env, ok := os.LookupEnv(envPrefix + "LOG_LEVEL"); ok {
			level = env
		}
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}

	logrus.SetLevel(parsed)

	return nil
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
