package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/alexanderramin/pblcoach/internal/cli"
	"github.com/alexanderramin/pblcoach/internal/config"
	"github.com/alexanderramin/pblcoach/internal/db"
	"github.com/alexanderramin/pblcoach/internal/dialogue"
	"github.com/alexanderramin/pblcoach/internal/intelligence"
	"github.com/alexanderramin/pblcoach/internal/llm"
	"github.com/alexanderramin/pblcoach/internal/narrative"
	"github.com/alexanderramin/pblcoach/internal/repository"
	"github.com/alexanderramin/pblcoach/internal/session"
	"github.com/alexanderramin/pblcoach/internal/stage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Narrative phrases: built-in pack, optionally overridden from YAML
	pack := narrative.DefaultPack()
	if cfg.NarrativePack != "" {
		if pack, err = narrative.LoadPackFile(cfg.NarrativePack); err != nil {
			return err
		}
	}

	engine := dialogue.NewEngine(
		stage.Default(),
		narrative.NewGenerator(pack, nil),
		dialogue.ClassifierPolicy{
			ImmediateMinLength: cfg.ImmediateMinLength,
			ReviewMaxAttempts:  cfg.ReviewMaxAttempts,
		},
		logger,
	)

	opts := session.Options{CacheSize: cfg.SessionCache}
	if cfg.LogUseCases {
		opts.Observer = session.NewLogUseCaseObserver(os.Stderr)
	}

	// Wire the LLM coach (only when enabled); otherwise replies are the
	// deterministic narrative text.
	if cfg.LLM.Enabled {
		var observer llm.Observer = llm.NoopObserver{}
		if cfg.LLM.LogCalls {
			observer = llm.NewLogObserver(slog.New(slog.NewTextHandler(os.Stderr, nil)))
		}
		opts.Coach = intelligence.NewCoachService(llm.NewOllamaClient(cfg.LLM, observer))
	}

	manager, err := session.NewManager(engine,
		repository.NewSQLiteConversationRepo(database),
		db.NewSQLiteUnitOfWork(database),
		opts,
	)
	if err != nil {
		return err
	}

	app := &cli.App{Sessions: manager}

	// Detect interactive terminal for the design conversation.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}
