// =============================================================================
// rcli - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every subcommand is
// attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (rcli)
//   ├── csvCmd     (rcli csv)
//   ├── genpassCmd (rcli genpass)
//   ├── serveCmd   (rcli serve)
//   └── versionCmd (rcli version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads a .env file into the environment, if present
//   2. Reads .rcli.yaml (or the file named by --config)
//   3. Resolves flags, RCLI_* variables, the file and defaults through viper
//   4. Sets up logging on stderr
//
// EXIT CODES:
//   0 success, 2 configuration or usage error, 1 any other failure
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ginjaninja78/rcli/internal/config"
	"github.com/ginjaninja78/rcli/internal/logging"
	"github.com/ginjaninja78/rcli/internal/types"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to an explicit configuration file.
var cfgFile string

// appConfig is the resolved configuration, set before any subcommand runs.
var appConfig *config.Config

// logger is the process logger. It writes to stderr.
var logger = slog.Default()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "rcli",
	Short: "rcli - convert CSV to JSON, YAML or TOML and generate passwords",
	Long: `rcli is a small command-line toolbox.

Key Features:
  - Convert CSV (or XLSX) files to JSON, YAML or TOML
  - Generate random passwords with a zxcvbn strength score
  - Serve both over a small HTTP API

Example Usage:
  rcli csv -i players.csv                     # writes output.json
  rcli csv -i players.csv --format yaml -o -  # prints YAML to stdout
  rcli genpass -l 24 --uppercase --symbols
  rcli serve --addr :8080`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd.ErrOrStderr())
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command and returns the process exit code.
// This is called by main.main().
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return exitCode(err)
}

// usageErrorPrefixes start the messages cobra returns for a missing required
// flag or an unexpected argument or subcommand.
var usageErrorPrefixes = []string{"required flag", "unknown command"}

// exitCode maps an error to the process exit status. Usage errors share the
// status of a ConfigError.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, types.ErrConfig), isUsageError(err):
		return 2
	default:
		return 1
	}
}

func isUsageError(err error) bool {
	for _, prefix := range usageErrorPrefixes {
		if strings.HasPrefix(err.Error(), prefix) {
			return true
		}
	}
	return false
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the persistent flags and their viper bindings.
func init() {
	config.SetDefaults(viper.GetViper())

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return types.NewConfigError("parse flags", err)
	})

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the configuration file (default is .rcli.yaml)",
	)

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig loads .env, the configuration file and the environment into
// appConfig and configures logging.
func initConfig(stderr io.Writer) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return types.NewConfigError("load .env", err)
	}

	v := viper.GetViper()
	config.ConfigureEnv(v)

	used, err := config.ReadFile(v, cfgFile)
	if err != nil {
		return err
	}

	appConfig, err = config.Load(v)
	if err != nil {
		return err
	}

	logger = logging.Setup(appConfig.Log.Level, appConfig.Log.Format, stderr)
	if used != "" {
		logger.Debug("using config file", "path", used)
	}
	return nil
}
