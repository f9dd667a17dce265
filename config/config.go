package config

import (
	"fmt"
	"os"
	"strconv"
)

// Store backend names accepted in STORE_BACKEND.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendGitHub = "github"
)

// Config holds all configuration for the service, read from the environment.
type Config struct {
	// Port is the HTTP server port.
	Port int

	// WebhookSecret is the bearer token expected on the ingestion endpoint.
	WebhookSecret string

	// StoreBackend selects the post store implementation: file, badger or github.
	StoreBackend string

	// ContentDir is the post directory for the file backend.
	ContentDir string

	// BadgerPath is the database directory for the badger backend.
	BadgerPath string

	// GitHub settings for the remote content backend.
	GitHubToken       string
	GitHubOwner       string
	GitHubRepo        string
	GitHubBranch      string
	GitHubContentPath string

	// OpenAIKey and TranslationModel configure the translation provider.
	// Translation is skipped when the key is empty.
	OpenAIKey        string
	TranslationModel string

	// RevalidateURL is the rendering layer's revalidation endpoint. Optional;
	// revalidation is skipped when empty.
	RevalidateURL    string
	RevalidateSecret string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	port := 8080
	if p := os.Getenv("PORT"); p != "" {
		var err error
		port, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
	}

	backend := os.Getenv("STORE_BACKEND")
	if backend == "" {
		backend = BackendFile
	}

	cfg := &Config{
		Port:              port,
		WebhookSecret:     os.Getenv("WEBHOOK_SECRET"),
		StoreBackend:      backend,
		ContentDir:        getenvDefault("CONTENT_DIR", "content/posts"),
		BadgerPath:        getenvDefault("BADGER_PATH", "data/badger"),
		GitHubToken:       os.Getenv("GITHUB_TOKEN"),
		GitHubOwner:       os.Getenv("GITHUB_OWNER"),
		GitHubRepo:        os.Getenv("GITHUB_REPO"),
		GitHubBranch:      getenvDefault("GITHUB_BRANCH", "main"),
		GitHubContentPath: getenvDefault("GITHUB_CONTENT_PATH", "content/posts"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		TranslationModel:  getenvDefault("TRANSLATION_MODEL", "gpt-4o-mini"),
		RevalidateURL:     os.Getenv("REVALIDATE_URL"),
		RevalidateSecret:  os.Getenv("REVALIDATE_SECRET"),
	}

	switch backend {
	case BackendFile, BackendBadger:
		// Directory defaults are always usable.
	case BackendGitHub:
		if cfg.GitHubToken == "" || cfg.GitHubOwner == "" || cfg.GitHubRepo == "" {
			return nil, fmt.Errorf("github backend requires GITHUB_TOKEN, GITHUB_OWNER and GITHUB_REPO")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q (must be file, badger or github)", backend)
	}

	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
