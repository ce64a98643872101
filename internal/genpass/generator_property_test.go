package genpass

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestGenerateProperties checks length, class coverage and alphabet
// containment over arbitrary valid options.
func TestGenerateProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	g := New(nil)

	properties.Property("valid options yield a conforming password", prop.ForAll(
		func(length int, upper, lower, digits, symbols bool) bool {
			opts := Options{Length: length, Uppercase: upper, Lowercase: lower, Digits: digits, Symbols: symbols}
			sets := opts.classes()
			if len(sets) == 0 || length < len(sets) {
				return opts.Validate() != nil
			}

			pw, err := g.Generate(opts)
			if err != nil || len(pw.Text) != length {
				return false
			}

			alphabet := strings.Join(sets, "")
			for _, ch := range pw.Text {
				if !strings.ContainsRune(alphabet, ch) {
					return false
				}
			}
			for _, set := range sets {
				if !strings.ContainsAny(pw.Text, set) {
					return false
				}
			}
			return pw.Strength.Score >= 0 && pw.Strength.Score <= 4
		},
		gen.IntRange(0, 64),
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
