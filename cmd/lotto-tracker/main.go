package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/robfig/cron/v3"

	"github.com/zombor/lotto-tracker/internal/lottery"
	"github.com/zombor/lotto-tracker/internal/scanning"
	"github.com/zombor/lotto-tracker/internal/ticket"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

// cronLogger sends cron's own logging through slog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("lotto-tracker")
	var (
		port           = fs.IntLong("port", 8080, "HTTP server port")
		dbPath         = fs.StringLong("db", "lotto-tracker.db", "Database file path")
		storagePath    = fs.StringLong("storage", "./tickets", "Ticket photo directory path")
		scannerType    = fs.StringLong("scanner", "gemini", "Scanner type: 'gemini' or 'ollama'")
		geminiKey      = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel    = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL      = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel    = fs.StringLong("ollama-model", "llava", "Ollama model name (e.g., llava, llava-phi3, bakllava, qwen2-vl)")
		authUser       = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass       = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		gracePeriod    = fs.DurationLong("grace-period", ticket.DefaultGracePeriod, "How long after its draw day an unsettled ticket expires")
		prizePolicy    = fs.StringLong("prize-policy", string(lottery.PolicyJackpot), "Which matches make a winner: 'jackpot' or 'tiers'")
		expireSchedule = fs.StringLong("expire-schedule", "@every 1h", "Cron schedule for the ticket expiry sweep (empty disables it)")
		showVersion    = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("LOTTO_TRACKER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	policy, err := lottery.ParsePrizePolicy(*prizePolicy)
	if err != nil {
		slog.Error("Invalid prize policy", "error", err)
		os.Exit(1)
	}
	if *gracePeriod < 0 {
		slog.Error("Grace period must not be negative", "grace_period", *gracePeriod)
		os.Exit(1)
	}

	// Initialize database
	slog.Info("Initializing database...")
	db, err := ticket.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize scanner based on type
	var scanner scanning.Scanner
	switch *scannerType {
	case "gemini":
		// Get Gemini API key from flag or environment
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini scanner...", "model", *geminiModel)
		scanner, err = scanning.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama scanner...", "url", *ollamaURL, "model", *ollamaModel)
		scanner, err = scanning.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid scanner type", "type", *scannerType, "valid", "gemini or ollama")
		os.Exit(1)
	}
	defer scanner.Close()

	// Initialize storage
	slog.Info("Initializing storage...")
	store, err := ticket.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	// Initialize service
	ticketService := ticket.NewService(db, scanner, store, ticket.Options{
		Policy:      policy,
		GracePeriod: *gracePeriod,
	})

	// Schedule the expiry sweep
	if *expireSchedule != "" {
		sweeper := cron.New(cron.WithLogger(cronLogger{}))
		_, err := sweeper.AddFunc(*expireSchedule, func() {
			if _, err := ticketService.ExpireTickets(); err != nil {
				slog.Error("Expiry sweep failed", "error", err)
			}
		})
		if err != nil {
			slog.Error("Invalid expire schedule", "schedule", *expireSchedule, "error", err)
			os.Exit(1)
		}
		sweeper.Start()
		defer sweeper.Stop()
		slog.Info("Expiry sweep scheduled", "schedule", *expireSchedule, "grace_period", *gracePeriod)
	}

	// Initialize server
	basicAuth := ticket.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := ticket.NewServer(ticketService, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started",
		"address", fmt.Sprintf("http://localhost%s", addr),
		"prize_policy", policy,
	)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
