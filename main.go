package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pressroom/app/ratelimit"
	"pressroom/app/repositories"
	"pressroom/app/routes"
	"pressroom/app/services"
	"pressroom/config"
)

const cliVersion = "1.0.0"

// Webhook rate limit: 10 requests per client per minute.
const (
	rateLimitCeiling = 10
	rateLimitWindow  = time.Minute
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "help":
		printHelp()
	case "version":
		fmt.Printf("pressroom version %s\n", cliVersion)
	case "serve":
		serve()
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	helpText := `Usage: pressroom <command>
Commands:
  help       Display this help message.
  version    Show version information.
  serve      Run the content webhook and read API server.
Configuration is read from the environment (a .env file is honored);
see config/config.go for the full variable list.
`
	fmt.Println(helpText)
}

// serve wires the configured store, translator and revalidator into the HTTP
// server and runs it until SIGINT/SIGTERM.
func serve() {
	// Missing .env is fine; variables may come from the real environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.WebhookSecret == "" {
		log.Printf("Warning: WEBHOOK_SECRET is not set; the ingestion endpoint will reject every request")
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open post store: %v", err)
	}
	defer store.Close()

	var translator services.Translator
	if cfg.OpenAIKey != "" {
		translator = services.NewOpenAITranslator(cfg.OpenAIKey, cfg.TranslationModel)
	} else {
		log.Printf("OPENAI_API_KEY is not set; posts will be published without translations")
	}

	var revalidator services.Revalidator
	if cfg.RevalidateURL != "" {
		revalidator = services.NewHTTPRevalidator(cfg.RevalidateURL, cfg.RevalidateSecret)
	}

	limiter := ratelimit.New(rateLimitCeiling, rateLimitWindow)
	router := routes.SetupRoutes(cfg.WebhookSecret, store, translator, revalidator, limiter)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting content service on port %d (store backend: %s)", cfg.Port, cfg.StoreBackend)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

func openStore(cfg *config.Config) (repositories.PostStore, error) {
	switch cfg.StoreBackend {
	case config.BackendFile:
		return repositories.NewFilePostStore(cfg.ContentDir)
	case config.BackendBadger:
		return repositories.NewBadgerPostStore(cfg.BadgerPath)
	case config.BackendGitHub:
		return repositories.NewGitHubPostStore(cfg.GitHubToken, cfg.GitHubOwner, cfg.GitHubRepo, cfg.GitHubBranch, cfg.GitHubContentPath), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
