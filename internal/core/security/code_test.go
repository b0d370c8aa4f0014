package security

import (
	"bytes"
	"errors"
	"strconv"
	"testing"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy unavailable") }

func TestCodeGenerator_SixDigits(t *testing.T) {
	g := NewCodeGenerator()
	for i := 0; i < 500; i++ {
		code, err := g.Generate()
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}

		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("code %q is not numeric: %v", code, err)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("code %d out of range", n)
		}
	}
}

func TestCodeGenerator_LowerBound(t *testing.T) {
	g := &CodeGenerator{source: bytes.NewReader(make([]byte, 64))}
	code, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if code != "100000" {
		t.Fatalf("expected 100000, got %q", code)
	}
}

func TestCodeGenerator_SourceError(t *testing.T) {
	g := &CodeGenerator{source: failingReader{}}
	if _, err := g.Generate(); err == nil {
		t.Fatalf("expected error from a failing source")
	}
}
