// =============================================================================
// rcli - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which exposes conversion and
// password generation over HTTP until interrupted.
//
// ENDPOINTS:
//   GET  /health          : liveness probe, returns "ok"
//   POST /api/v1/convert  : CSV body in, encoded document out
//   POST /api/v1/genpass  : JSON options in, password and score out
//
// =============================================================================

package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/ginjaninja78/rcli/internal/encoder"
	"github.com/ginjaninja78/rcli/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serveCmd represents the 'serve' command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve conversion and password generation over HTTP",
	Example: `  rcli serve --addr :8080
  curl --data-binary @players.csv 'localhost:8080/api/v1/convert?format=yaml'`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	for _, section := range []interface{ Validate() error }{appConfig.Server, appConfig.CSV, appConfig.Genpass} {
		if err := section.Validate(); err != nil {
			return err
		}
	}

	format, err := encoder.ParseFormat(appConfig.CSV.Format)
	if err != nil {
		return err
	}

	srv := server.New(server.Options{
		Settings:  appConfig.Server,
		CSV:       appConfig.CSV.ParserSettings(),
		Format:    format,
		Genpass:   appConfig.Genpass.GenpassOptions(),
		Generator: generator,
		Logger:    logger,
	})

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}

// init registers the serve command and binds its flags to configuration keys.
func init() {
	rootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()
	flags.String("addr", ":8080", "Address to listen on")
	flags.Float64("rate-limit", 10, "Requests per second allowed per client IP")
	flags.Int("burst", 20, "Request burst allowed per client IP")

	viper.BindPFlag("server.addr", flags.Lookup("addr"))
	viper.BindPFlag("server.rate_limit", flags.Lookup("rate-limit"))
	viper.BindPFlag("server.burst", flags.Lookup("burst"))
}
