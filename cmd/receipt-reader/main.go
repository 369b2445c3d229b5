package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/receipt-reader/internal/extraction"
	"github.com/zombor/receipt-reader/internal/receipt"
	"github.com/zombor/receipt-reader/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

type options struct {
	backend       string
	geminiKey     string
	geminiModel   string
	ollamaURL     string
	ollamaModel   string
	tesseractLang string
	azureEndpoint string
	azureKey      string
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error: loading .env: %v\n", err)
		os.Exit(1)
	}

	flags := ff.NewFlagSet("receipt-reader")
	var (
		port          = flags.IntLong("port", 8080, "HTTP server port")
		dbPath        = flags.StringLong("db", "receipt-reader.db", "Database file path")
		storagePath   = flags.StringLong("storage", "./uploads", "Storage directory path")
		backend       = flags.StringLong("backend", "gemini", "OCR backend: gemini, ollama, tesseract or azure")
		geminiKey     = flags.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel   = flags.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL     = flags.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel   = flags.StringLong("ollama-model", "qwen2.5vl", "Ollama vision model name")
		tesseractLang = flags.StringLong("tesseract-lang", "eng+ind", "Tesseract languages joined with +")
		azureEndpoint = flags.StringLong("azure-endpoint", "", "Azure Computer Vision endpoint")
		azureKey      = flags.StringLong("azure-key", "", "Azure Computer Vision key")
		lineThreshold = flags.Float64Long("line-threshold", 0, "Max vertical distance between words on one line (0 derives it from word height)")
		authUser      = flags.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass      = flags.StringLong("auth-pass", "", "Basic auth password (optional)")
		scanPath      = flags.StringLong("scan", "", "Read a single receipt file, print the result as JSON and exit")
		debug         = flags.BoolLong("debug", "Enable debug logging")
		showVersion   = flags.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(flags, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_READER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(flags))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx := context.Background()

	recognizer, err := newRecognizer(ctx, options{
		backend:       *backend,
		geminiKey:     *geminiKey,
		geminiModel:   *geminiModel,
		ollamaURL:     *ollamaURL,
		ollamaModel:   *ollamaModel,
		tesseractLang: *tesseractLang,
		azureEndpoint: *azureEndpoint,
		azureKey:      *azureKey,
	})
	if err != nil {
		slog.Error("Failed to initialize backend", "backend", *backend, "error", err)
		os.Exit(1)
	}
	defer recognizer.Close()

	reader := scanning.NewReader(recognizer, *lineThreshold)

	if *scanPath != "" {
		if err := scanFile(ctx, reader, *scanPath); err != nil {
			slog.Error("Failed to read receipt", "path", *scanPath, "error", err)
			os.Exit(1)
		}
		return
	}

	// Initialize database
	slog.Info("Initializing database...")
	db, err := receipt.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize storage
	slog.Info("Initializing storage...")
	store, err := receipt.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	receiptService := receipt.NewService(db, reader, store)

	basicAuth := receipt.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := receipt.NewServer(receiptService, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "backend", recognizer.Name())
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}

// newRecognizer builds the OCR backend named by opts.backend
func newRecognizer(ctx context.Context, opts options) (scanning.Recognizer, error) {
	switch opts.backend {
	case "gemini":
		apiKey := opts.geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, errors.New("gemini API key is required: set --gemini-key or GEMINI_API_KEY")
		}
		slog.Info("Initializing Gemini backend...", "model", opts.geminiModel)
		return scanning.NewGemini(ctx, apiKey, opts.geminiModel)
	case "ollama":
		slog.Info("Initializing Ollama backend...", "url", opts.ollamaURL, "model", opts.ollamaModel)
		return scanning.NewOllama(opts.ollamaURL, opts.ollamaModel)
	case "tesseract":
		slog.Info("Initializing Tesseract backend...", "languages", opts.tesseractLang)
		return scanning.NewTesseract(scanning.TesseractConfig{
			Languages: strings.Split(opts.tesseractLang, "+"),
		})
	case "azure":
		slog.Info("Initializing Azure backend...", "endpoint", opts.azureEndpoint)
		return scanning.NewAzure(opts.azureEndpoint, opts.azureKey)
	default:
		return nil, fmt.Errorf("unknown backend %q: want gemini, ollama, tesseract or azure", opts.backend)
	}
}

type scanOutput struct {
	File   string            `json:"file"`
	Items  []extraction.Item `json:"items"`
	Total  float64           `json:"total"`
	Failed bool              `json:"failed"`
}

// scanFile reads one receipt from disk and writes the result to stdout
func scanFile(ctx context.Context, reader *scanning.Reader, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	result, err := reader.Read(ctx, data, http.DetectContentType(data))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(scanOutput{
		File:   filepath.Base(path),
		Items:  result.ItemList(),
		Total:  result.Total,
		Failed: result.Failed(),
	})
}
