package llm

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadGitHubToken_ChronoscribeEnvTakesPriority(t *testing.T) {
	t.Setenv("CHRONOSCRIBE_GITHUB_TOKEN", "cs-token")
	t.Setenv("GITHUB_TOKEN", "generic-token")

	token, err := LoadGitHubToken()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if token != "cs-token" {
		t.Errorf("token = %q, want %q", token, "cs-token")
	}
}

func TestLoadGitHubToken_FallsBackToGenericEnv(t *testing.T) {
	t.Setenv("CHRONOSCRIBE_GITHUB_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "generic-token")

	token, err := LoadGitHubToken()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if token != "generic-token" {
		t.Errorf("token = %q, want %q", token, "generic-token")
	}
}

func TestLoadTokenFromFile_ExtractsOAuthToken(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "github-copilot-token.json")
	const body = `{"github.com": {"oauth_token": "file-token"}}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	token, err := loadTokenFromFile(path)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if token != "file-token" {
		t.Errorf("token = %q, want %q", token, "file-token")
	}
}

func TestLoadTokenFromFile_MissingFile(t *testing.T) {
	if _, err := loadTokenFromFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}
