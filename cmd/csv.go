// =============================================================================
// rcli - CSV Command
// =============================================================================
//
// This file defines the 'csv' command, which converts one CSV (or XLSX) file
// to JSON, YAML or TOML.
//
// COMMAND USAGE:
//   rcli csv -i <input> [flags]
//
// FLAGS:
//   -i, --input     : File to convert (required, must exist)
//   -o, --output    : Destination path, "-" for stdout (default output.<format>)
//   --format        : json, yaml or toml (default json)
//   -d, --delimiter : Field separator: ",", ";", "|", "\t" or tab/pipe/...
//   --header        : First row holds column names (default true)
//   --encoding      : Input character encoding (default utf-8)
//   --sheet         : Worksheet of an XLSX input (default first sheet)
//   --watch         : Convert again whenever the input changes
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ginjaninja78/rcli/internal/converter"
	"github.com/ginjaninja78/rcli/internal/encoder"
	"github.com/ginjaninja78/rcli/internal/types"
	"github.com/ginjaninja78/rcli/internal/watcher"
	"github.com/ginjaninja78/rcli/pkg/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// csvInput is the path of the file to convert.
var csvInput string

// csvOutput is the destination path.
var csvOutput string

// csvSheet selects the worksheet of an XLSX input.
var csvSheet string

// csvWatch keeps the command running and converts on every change.
var csvWatch bool

// =============================================================================
// CSV COMMAND DEFINITION
// =============================================================================

// csvCmd represents the 'csv' command.
var csvCmd = &cobra.Command{
	Use:   "csv",
	Short: "Convert CSV to other formats",
	Long: `The csv command reads a CSV file (or the first sheet of an XLSX workbook)
and writes every row as an object keyed by the header names.

Values are always strings. The output is written atomically; on any error
nothing is written.`,
	Example: `  rcli csv -i players.csv
  rcli csv -i players.csv --format toml -o players.toml
  rcli csv -i export.txt -d tab --header=false -o -
  rcli csv -i legacy.csv --encoding windows-1252 --watch`,
	Args: cobra.NoArgs,
	RunE: runCSV,
}

// runCSV validates the arguments, converts once, and optionally watches.
func runCSV(cmd *cobra.Command, args []string) error {
	opts, err := buildConvertOptions()
	if err != nil {
		return err
	}

	conv := converter.New(logger, cmd.OutOrStdout())

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := conv.Run(ctx, opts); err != nil {
		return err
	}

	if !csvWatch {
		return nil
	}

	w := watcher.New(opts.Input, watcher.DefaultDebounce, logger)
	return w.Run(ctx, func(ctx context.Context) error {
		_, err := conv.Run(ctx, opts)
		return err
	})
}

// buildConvertOptions turns flags and configuration into converter options.
// The csv settings are checked before the filesystem is touched. Settings of
// other commands are ignored.
func buildConvertOptions() (converter.Options, error) {
	if err := appConfig.CSV.Validate(); err != nil {
		return converter.Options{}, err
	}
	format, err := encoder.ParseFormat(appConfig.CSV.Format)
	if err != nil {
		return converter.Options{}, err
	}

	if csvInput == "" {
		return converter.Options{}, types.NewConfigError("input", errors.New(`required flag "input" not set`))
	}
	if !utils.FileExists(csvInput) {
		return converter.Options{}, types.NewConfigError("input", fmt.Errorf("input file %q does not exist", csvInput))
	}

	output := csvOutput
	if output == "" {
		output = utils.DefaultOutputPath(format.Extension())
	}

	return converter.Options{
		Input:  csvInput,
		Output: output,
		Format: format,
		CSV:    appConfig.CSV.ParserSettings(),
		Sheet:  csvSheet,
	}, nil
}

// cmdContext returns the command's context, or Background when run directly.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the csv command and binds its flags to configuration keys.
func init() {
	rootCmd.AddCommand(csvCmd)

	flags := csvCmd.Flags()
	flags.StringVarP(&csvInput, "input", "i", "", "Input CSV or XLSX file")
	flags.StringVarP(&csvOutput, "output", "o", "", `Output file, "-" for stdout (default output.<format>)`)
	flags.String("format", "json", "Output format: json, yaml, toml")
	flags.StringP("delimiter", "d", ",", "Field delimiter")
	flags.Bool("header", true, "First row contains column names")
	flags.String("encoding", "utf-8", "Input character encoding")
	flags.StringVar(&csvSheet, "sheet", "", "Worksheet to read from an XLSX input")
	flags.BoolVar(&csvWatch, "watch", false, "Convert again whenever the input changes")

	csvCmd.MarkFlagRequired("input")

	viper.BindPFlag("csv.format", flags.Lookup("format"))
	viper.BindPFlag("csv.delimiter", flags.Lookup("delimiter"))
	viper.BindPFlag("csv.header", flags.Lookup("header"))
	viper.BindPFlag("csv.encoding", flags.Lookup("encoding"))
}
