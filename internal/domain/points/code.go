package points

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// CodeAlphabet is uppercase letters and digits without I, O, 0 and 1.
const (
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	CodeLength   = 6
)

// CodeGenerator makes redemption codes and their storage digests.
type CodeGenerator struct {
	rand io.Reader
	key  []byte
}

// NewCodeGenerator returns a generator reading from crypto/rand. key keys the
// digest; it may be empty.
func NewCodeGenerator(key []byte) *CodeGenerator {
	return &CodeGenerator{rand: rand.Reader, key: key}
}

// WithReader swaps the entropy source, for tests.
func (g *CodeGenerator) WithReader(r io.Reader) *CodeGenerator {
	return &CodeGenerator{rand: r, key: g.key}
}

func (g *CodeGenerator) New() (string, error) {
	// 256 is a multiple of len(CodeAlphabet), so byte % 32 is unbiased.
	buf := make([]byte, CodeLength)
	if _, err := io.ReadFull(g.rand, buf); err != nil {
		return "", fmt.Errorf("read code entropy: %w", err)
	}
	var sb strings.Builder
	sb.Grow(CodeLength)
	for _, b := range buf {
		sb.WriteByte(CodeAlphabet[int(b)%len(CodeAlphabet)])
	}
	return sb.String(), nil
}

// Digest is the stored form of a code. Input is normalized first so staff
// can type it in either case.
func (g *CodeGenerator) Digest(code string) (string, error) {
	h, err := blake2b.New256(g.key)
	if err != nil {
		return "", fmt.Errorf("init digest: %w", err)
	}
	h.Write([]byte(Normalize(code)))
	return hex.EncodeToString(h.Sum(nil)), nil
}

func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode reports whether code could have been produced by New.
func ValidCode(code string) bool {
	code = Normalize(code)
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(CodeAlphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}
