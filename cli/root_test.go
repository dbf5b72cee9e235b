package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// flag values stick to a command, so every run gets its own tree
	cmd := newRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()

	return out.String(), err
}

func TestTransform(t *testing.T) {
	// n = 46349 * 46351, e = 65537, d = 1715614073
	out, err := run(t, "transform", "0x78563412", "65537", "2148322499")
	if err != nil {
		t.Fatal(err.Error())
	}
	if strings.TrimSpace(out) != "771742533" {
		t.Fatalf("unexpected ciphertext '%s'", out)
	}

	out, err = run(t, "transform", "771742533", "1715614073", "2148322499")
	if err != nil {
		t.Fatal(err.Error())
	}
	if strings.TrimSpace(out) != "2018915346" {
		t.Fatalf("unexpected plaintext '%s'", out)
	}

	if _, err := run(t, "transform", "1", "two", "3"); err == nil {
		t.Fatal("expected malformed number to fail")
	}
	if _, err := run(t, "transform", "1", "2", "0"); err == nil {
		t.Fatal("expected zero modulus to fail")
	}
	if _, err := run(t, "transform", "1", "2"); err == nil {
		t.Fatal("expected missing argument to fail")
	}
}

func TestIsPrime(t *testing.T) {
	tests := map[string]string{
		"65537":                "65537 may be prime.",
		"65535":                "65535 is not prime.",
		"561":                  "561 is not prime.",
		"18446744073709551557": "18446744073709551557 may be prime.",
	}

	for n, expected := range tests {
		out, err := run(t, "isprime", n, "--seed", "3")
		if err != nil {
			t.Fatal(err.Error())
		}
		if strings.TrimSpace(out) != expected {
			t.Fatalf("expected '%s', got '%s'", expected, out)
		}
	}
}

func TestIsPrimeRejectsRounds(t *testing.T) {
	for _, rounds := range []string{"0", "-3"} {
		out, err := run(t, "isprime", "9", "--rounds", rounds)
		if err == nil {
			t.Fatalf("expected %s rounds to fail, got '%s'", rounds, out)
		}
	}

	out, err := run(t, "isprime", "9", "--seed", "3")
	if err != nil {
		t.Fatal(err.Error())
	}
	if strings.TrimSpace(out) != "9 is not prime." {
		t.Fatalf("rounds of an earlier run leaked: '%s'", out)
	}
}

func TestDocExample(t *testing.T) {
	out, err := run(t, "doc", "example")
	if err != nil {
		t.Fatal(err.Error())
	}
	if !strings.Contains(out, "version: 1") {
		t.Fatalf("example lacks a version:\n%s", out)
	}
}

func TestKeygen(t *testing.T) {
	out, err := run(t, "keygen", "--seed", "42", "--width", "64")
	if err != nil {
		t.Fatal(err.Error())
	}
	for _, s := range []string{"seed : 42\n", "p : ", "q : ", "e : ", "d : ", "N : "} {
		if !strings.Contains(out, s) {
			t.Fatalf("output lacks '%s':\n%s", s, out)
		}
	}

	if _, err := run(t, "keygen", "--width", "16"); err == nil {
		t.Fatal("expected unsupported width to fail")
	}
}

func TestDemo(t *testing.T) {
	out, err := run(t, "demo", "--seed", "7")
	if err != nil {
		t.Fatal(err.Error())
	}
	if !strings.Contains(out, "1. plain text : [78563412]") {
		t.Fatalf("unexpected plaintext blocks:\n%s", out)
	}
	if !strings.Contains(out, "RSA Decryption: SUCCESS!") {
		t.Fatalf("round trip failed:\n%s", out)
	}

	path := filepath.Join(t.TempDir(), "keygen.yaml")
	if err := os.WriteFile(path, []byte("version: 1\nwidth: 64\nlogLevel: none\n"), 0644); err != nil {
		t.Fatal(err.Error())
	}
	out, err = run(t, "demo", "--config", path, "--message", "hello world")
	if err != nil {
		t.Fatal(err.Error())
	}
	if !strings.Contains(out, "RSA Decryption: SUCCESS!") {
		t.Fatalf("round trip failed:\n%s", out)
	}

	if _, err := run(t, "demo", "--config", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected missing config to fail")
	}
}
