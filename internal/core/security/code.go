package security

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

const (
	codeMin  = 100000
	codeSpan = 900000
)

// CodeGenerator draws six-digit verification codes uniformly from
// 100000-999999 using a cryptographically secure source.
type CodeGenerator struct {
	source io.Reader
}

func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{source: rand.Reader}
}

func (g *CodeGenerator) Generate() (string, error) {
	n, err := rand.Int(g.source, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", codeMin+n.Int64()), nil
}
