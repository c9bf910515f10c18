package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearMatchengineEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MatchMethod != MethodGeneral {
		t.Errorf("expected the default match_method to be general, got %q", cfg.MatchMethod)
	}
	if cfg.WorkerCount != 0 {
		t.Errorf("expected the default worker_count to be 0 (engine picks), got %d", cfg.WorkerCount)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearMatchengineEnv(t)

	body := "store_uri: /tmp/store.duckdb\nworker_count: 4\n"
	if err := os.WriteFile(filepath.Join(home, ".matchengine.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config fixture: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StoreURI != "/tmp/store.duckdb" {
		t.Errorf("got store_uri=%q", cfg.StoreURI)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("got worker_count=%d", cfg.WorkerCount)
	}
}

func TestLoadEnvOverridesConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearMatchengineEnv(t)

	body := "worker_count: 4\n"
	if err := os.WriteFile(filepath.Join(home, ".matchengine.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config fixture: %v", err)
	}
	t.Setenv("MATCHENGINE_WORKER_COUNT", "9")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WorkerCount != 9 {
		t.Errorf("expected the environment variable to win, got worker_count=%d", cfg.WorkerCount)
	}
}

func TestLoadAnnotatedMethodRequiresToken(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearMatchengineEnv(t)
	t.Setenv("MATCHENGINE_MATCH_METHOD", "annotated")

	if _, err := Load(); err == nil {
		t.Errorf("expected match_method=annotated with no annotation_token to fail validation")
	}
}

func TestLoadAnnotatedMethodWithTokenSucceeds(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearMatchengineEnv(t)
	t.Setenv("MATCHENGINE_MATCH_METHOD", "annotated")
	t.Setenv("MATCHENGINE_ANNOTATION_TOKEN", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MatchMethod != MethodAnnotated || cfg.AnnotationToken != "secret" {
		t.Errorf("got %+v", cfg)
	}
}

func TestDefaultPathJoinsHomeDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	want := filepath.Join(home, ".matchengine.yaml")
	if got := DefaultPath(); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}

func clearMatchengineEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MATCHENGINE_STORE_URI", "MATCHENGINE_WORKER_COUNT", "MATCHENGINE_ANNOTATION_ENDPOINT",
		"MATCHENGINE_ANNOTATION_TOKEN", "MATCHENGINE_TUMOR_TREE_PATH", "MATCHENGINE_MATCH_METHOD",
	} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unsetenv %s: %v", key, err)
		}
	}
}
