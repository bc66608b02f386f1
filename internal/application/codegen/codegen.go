package codegen

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"
)

const (
	// Prefix is the fixed human-readable part of every validator code.
	Prefix = "CERT"

	// SuffixLength random characters from a 62-symbol alphabet give ~119 bits of entropy.
	SuffixLength = 20

	alphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	dateLayout = "20060102"

	// bytes >= rejectAbove are discarded so every symbol is equally likely (248 = 4*62).
	rejectAbove = 248
)

var codeRe = regexp.MustCompile(`^` + Prefix + `-[0-9]{8}-[A-Za-z0-9]{20}$`)

var ErrShortRandom = errors.New("random source exhausted")

// Generator mints validator codes of the form CERT-YYYYMMDD-<20 random alphanumerics>.
// The zero value is ready to use.
type Generator struct {
	Now  func() time.Time
	Rand io.Reader
}

// Generate returns a new code. It fails only when the random source fails.
func (g *Generator) Generate() (string, error) {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	src := rand.Reader
	if g.Rand != nil {
		src = g.Rand
	}
	suffix, err := randomString(src, SuffixLength)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return Prefix + "-" + now().UTC().Format(dateLayout) + "-" + suffix, nil
}

// Valid reports whether s has the shape of a validator code. It does not say the code exists.
func Valid(s string) bool {
	return codeRe.MatchString(s)
}

func randomString(src io.Reader, n int) (string, error) {
	out := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for len(out) < n {
		if _, err := io.ReadFull(src, buf); err != nil {
			return "", fmt.Errorf("%w: %v", ErrShortRandom, err)
		}
		for _, b := range buf {
			if b >= rejectAbove {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
