package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# local overrides\n" +
		"SYNAPSE_TEST_PLAIN=hello\n" +
		"export SYNAPSE_TEST_EXPORTED=\"world\"\n" +
		"SYNAPSE_TEST_TAKEN=from-file\n" +
		"not-a-pair\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("SYNAPSE_TEST_PLAIN", "")
	t.Setenv("SYNAPSE_TEST_EXPORTED", "")
	t.Setenv("SYNAPSE_TEST_TAKEN", "from-env")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := os.Getenv("SYNAPSE_TEST_PLAIN"); got != "hello" {
		t.Errorf("plain var = %q, want hello", got)
	}
	if got := os.Getenv("SYNAPSE_TEST_EXPORTED"); got != "world" {
		t.Errorf("exported var = %q, want world (quotes stripped)", got)
	}
	// The real environment always wins over the file.
	if got := os.Getenv("SYNAPSE_TEST_TAKEN"); got != "from-env" {
		t.Errorf("preset var = %q, want from-env", got)
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	err := LoadDotEnv(filepath.Join(t.TempDir(), "does-not-exist"))
	if !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
