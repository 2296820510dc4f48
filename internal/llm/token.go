package llm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// LoadGitHubToken loads the GitHub OAuth token the Copilot provider
// exchanges for a Copilot bearer token. It checks in order:
// 1. CHRONOSCRIBE_GITHUB_TOKEN, chronoscribe's own override
// 2. GITHUB_TOKEN, the generic fallback most CI and shells already set
// 3. <config dir>/chronoscribe/github-copilot-token.json, a
//    chronoscribe-scoped override using the same {host: {oauth_token}}
//    shape as GitHub's own files, for operators who don't want
//    chronoscribe reading the IDE extension's credential file directly
// 4. ~/.config/github-copilot/{hosts,apps}.json, wherever the GitHub
//    Copilot IDE extension itself last wrote its OAuth token — this path
//    is GitHub's, not chronoscribe's, and can't be moved
func LoadGitHubToken() (string, error) {
	if token := os.Getenv("CHRONOSCRIBE_GITHUB_TOKEN"); token != "" {
		return token, nil
	}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token, nil
	}

	configDir, err := getConfigDir()
	if err != nil {
		return "", fmt.Errorf("getting config directory: %w", err)
	}

	filePaths := []string{
		filepath.Join(configDir, "chronoscribe", "github-copilot-token.json"),
		filepath.Join(configDir, "github-copilot", "hosts.json"),
		filepath.Join(configDir, "github-copilot", "apps.json"),
	}

	for _, filePath := range filePaths {
		token, err := loadTokenFromFile(filePath)
		if err == nil && token != "" {
			return token, nil
		}
	}

	return "", fmt.Errorf("GitHub token not found: set CHRONOSCRIBE_GITHUB_TOKEN/GITHUB_TOKEN or authenticate with GitHub Copilot in your IDE")
}

// getConfigDir returns the user's config directory based on OS.
func getConfigDir() (string, error) {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if runtime.GOOS == "windows" {
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return localAppData, nil
		}
		return filepath.Join(home, "AppData", "Local"), nil
	}

	return filepath.Join(home, ".config"), nil
}

// loadTokenFromFile reads a hosts.json-shaped credential file (GitHub's own,
// or chronoscribe's scoped override) and extracts the oauth_token.
func loadTokenFromFile(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}

	var config map[string]map[string]any
	if err := json.Unmarshal(data, &config); err != nil {
		return "", err
	}

	for key, value := range config {
		if strings.Contains(key, "github.com") {
			if oauthToken, ok := value["oauth_token"].(string); ok {
				return oauthToken, nil
			}
		}
	}

	return "", fmt.Errorf("oauth_token not found in %s", filePath)
}
