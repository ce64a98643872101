package genpass

import (
	"github.com/nbutton23/zxcvbn-go"
)

// Strength is a zxcvbn estimate of how guessable a password is.
type Strength struct {
	// Score is the discrete classification, 0 (too guessable) to 4 (very
	// unguessable).
	Score int

	// Entropy is the estimated entropy in bits.
	Entropy float64

	// CrackTime is a human readable offline crack-time estimate.
	CrackTime string
}

var scoreLabels = [...]string{"very weak", "weak", "fair", "strong", "very strong"}

// Label names the score.
func (s Strength) Label() string {
	if s.Score < 0 || s.Score >= len(scoreLabels) {
		return "unknown"
	}
	return scoreLabels[s.Score]
}

// Estimate scores password against zxcvbn's pattern matchers and frequency
// lists.
func Estimate(password string) Strength {
	match := zxcvbn.PasswordStrength(password, nil)
	return Strength{
		Score:     match.Score,
		Entropy:   match.Entropy,
		CrackTime: match.CrackTimeDisplay,
	}
}
