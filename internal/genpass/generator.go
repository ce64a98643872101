package genpass

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/ginjaninja78/rcli/internal/types"
)

const (
	uppercaseChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	digitChars     = "0123456789"
	symbolChars    = "!@#$%^&*_"

	// MaxLength matches the range of the length flag.
	MaxLength = 255
)

var (
	ErrNoCharacterClasses = errors.New("at least one character class must be selected")
	ErrLengthInsufficient = errors.New("password length must be at least the number of selected character classes")
	ErrLengthTooLong      = fmt.Errorf("password length must be at most %d", MaxLength)
)

// Options configures the password generator.
type Options struct {
	Length    int
	Uppercase bool
	Lowercase bool
	Digits    bool
	Symbols   bool
}

// DefaultOptions mirrors the genpass flag defaults: 16 characters, digits only.
func DefaultOptions() Options {
	return Options{
		Length: 16,
		Digits: true,
	}
}

// classes returns the character set of every requested class, in a fixed order.
func (o Options) classes() []string {
	var sets []string
	if o.Uppercase {
		sets = append(sets, uppercaseChars)
	}
	if o.Lowercase {
		sets = append(sets, lowercaseChars)
	}
	if o.Digits {
		sets = append(sets, digitChars)
	}
	if o.Symbols {
		sets = append(sets, symbolChars)
	}
	return sets
}

// Validate reports a configuration error for options no password can satisfy.
func (o Options) Validate() error {
	required := len(o.classes())
	switch {
	case required == 0:
		return types.NewConfigError("genpass", ErrNoCharacterClasses)
	case o.Length < required:
		return types.NewConfigError("genpass",
			fmt.Errorf("%w: length %d, classes %d", ErrLengthInsufficient, o.Length, required))
	case o.Length > MaxLength:
		return types.NewConfigError("genpass", ErrLengthTooLong)
	}
	return nil
}

// Password is a generated password and its estimated strength.
type Password struct {
	Text     string
	Strength Strength
}

// String renders the line printed by the CLI.
func (p Password) String() string {
	return fmt.Sprintf("Password: %s Score: %d", p.Text, p.Strength.Score)
}

// Generator draws passwords from a random source.
type Generator struct {
	rand io.Reader
}

// New creates a Generator reading randomness from r. A nil r uses
// crypto/rand.Reader.
func New(r io.Reader) *Generator {
	if r == nil {
		r = rand.Reader
	}
	return &Generator{rand: r}
}

// Generate builds a password containing at least one character of every
// requested class and nothing outside them, then scores it.
func (g *Generator) Generate(opts Options) (Password, error) {
	if err := opts.Validate(); err != nil {
		return Password{}, err
	}

	text, err := g.draw(opts)
	if err != nil {
		return Password{}, err
	}

	return Password{Text: text, Strength: Estimate(text)}, nil
}

// draw assembles the character sequence. Options must already be valid.
func (g *Generator) draw(opts Options) (string, error) {
	requiredSets := opts.classes()

	var pool string
	for _, set := range requiredSets {
		pool += set
	}

	result := make([]byte, opts.Length)

	// Guarantee at least one character from each selected class.
	for i, set := range requiredSets {
		ch, err := g.randChar(set)
		if err != nil {
			return "", err
		}
		result[i] = ch
	}

	// Fill the remaining positions from the full pool.
	for i := len(requiredSets); i < opts.Length; i++ {
		ch, err := g.randChar(pool)
		if err != nil {
			return "", err
		}
		result[i] = ch
	}

	if err := g.shuffle(result); err != nil {
		return "", err
	}

	return string(result), nil
}

// randChar picks a uniformly random character from charset.
func (g *Generator) randChar(charset string) (byte, error) {
	n, err := g.intn(len(charset))
	if err != nil {
		return 0, err
	}
	return charset[n], nil
}

// shuffle performs a Fisher-Yates shuffle.
func (g *Generator) shuffle(data []byte) error {
	for i := len(data) - 1; i > 0; i-- {
		j, err := g.intn(i + 1)
		if err != nil {
			return err
		}
		data[i], data[j] = data[j], data[i]
	}
	return nil
}

// intn returns a uniform integer in [0, n).
func (g *Generator) intn(n int) (int, error) {
	v, err := rand.Int(g.rand, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("random source: %w", err)
	}
	return int(v.Int64()), nil
}
