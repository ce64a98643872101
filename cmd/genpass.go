// =============================================================================
// rcli - Genpass Command
// =============================================================================
//
// This file defines the 'genpass' command, which prints a random password and
// its zxcvbn strength score.
//
// COMMAND USAGE:
//   rcli genpass [flags]
//
// OUTPUT:
//   Password: 5092748163025841 Score: 3
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/ginjaninja78/rcli/internal/genpass"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// generator is the random source used by genpass. Tests replace it.
var generator = genpass.New(nil)

// genpassCmd represents the 'genpass' command.
var genpassCmd = &cobra.Command{
	Use:   "genpass",
	Short: "Generate a random password",
	Long: `Generate a random password containing at least one character of every
selected class, and report its strength score (0 to 4).

Digits are selected by default; pass --digits=false to exclude them.`,
	Example: `  rcli genpass
  rcli genpass -l 24 --uppercase --lowercase --symbols`,
	Args: cobra.NoArgs,
	RunE: runGenpass,
}

func runGenpass(cmd *cobra.Command, args []string) error {
	if err := appConfig.Genpass.Validate(); err != nil {
		return err
	}

	pw, err := generator.Generate(appConfig.Genpass.GenpassOptions())
	if err != nil {
		return err
	}

	logger.Debug("generated password",
		"length", len(pw.Text),
		"score", pw.Strength.Score,
		"entropy", pw.Strength.Entropy,
	)

	fmt.Fprintln(cmd.OutOrStdout(), pw.String())
	return nil
}

// init registers the genpass command and binds its flags to configuration keys.
func init() {
	rootCmd.AddCommand(genpassCmd)

	defaults := genpass.DefaultOptions()
	flags := genpassCmd.Flags()
	flags.IntP("length", "l", defaults.Length, fmt.Sprintf("Password length (1-%d)", genpass.MaxLength))
	flags.Bool("uppercase", defaults.Uppercase, "Include uppercase letters")
	flags.Bool("lowercase", defaults.Lowercase, "Include lowercase letters")
	flags.Bool("digits", defaults.Digits, "Include digits")
	flags.Bool("symbols", defaults.Symbols, "Include symbols (!@#$%^&*_)")

	for _, name := range []string{"length", "uppercase", "lowercase", "digits", "symbols"} {
		viper.BindPFlag("genpass."+name, flags.Lookup(name))
	}
}
