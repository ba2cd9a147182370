package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestBankCommandSummarisesFile(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"bank", filepath.Join("..", "bank", "testdata", "sample.tex")})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("bank: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "4 questions, max difficulty 3") {
		t.Fatalf("unexpected summary:\n%s", got)
	}
	if !strings.Contains(got, "week  3:") || !strings.Contains(got, "logic,sets") {
		t.Fatalf("expected week 3 line with both topics:\n%s", got)
	}
}

func TestBankCommandFallsBackToDemo(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"bank", "--config", filepath.Join(t.TempDir(), "missing.yaml")})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("bank: %v", err)
	}
	if !strings.Contains(out.String(), "9 questions") {
		t.Fatalf("expected demo bank summary, got:\n%s", out.String())
	}
}

func TestBankCommandRejectsMissingFile(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"bank", filepath.Join(t.TempDir(), "nope.tex")})

	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error for missing bank file")
	}
}
