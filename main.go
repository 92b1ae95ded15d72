package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"paceline/internal/config"
	"paceline/internal/intervals"
	"paceline/internal/service"
	"paceline/internal/store"
	"paceline/internal/tui"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	exportPath := flag.String("export", "", "write all local data to a JSON snapshot and exit")
	importPath := flag.String("import", "", "load a JSON snapshot into the local store and exit")
	replace := flag.Bool("replace", false, "with -import, clear existing data first")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Println("No config file found. Creating example config...")
		if err := config.CreateExample(); err != nil {
			return fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Printf("\nPlease edit the config file at:\n  %s/config.json\n\n", configDir)
		fmt.Println("You need an intervals.icu API key and athlete id.")
		fmt.Println("Get them from: https://intervals.icu/settings")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		fmt.Printf("Config validation failed: %v\n\n", err)
		fmt.Printf("Please edit the config file at:\n  %s/config.json\n", configDir)
		return nil
	}

	// Open database
	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if *exportPath != "" {
		return exportSnapshot(db, *exportPath)
	}
	if *importPath != "" {
		return importSnapshot(db, *importPath, *replace)
	}

	// The client only exists once credentials are configured. Services take
	// a nil remote and degrade to local-only reads.
	var remote service.Remote
	if cfg.Configured() {
		client, err := intervals.NewClient(cfg.Intervals.APIKey, cfg.Intervals.AthleteID, intervals.Options{
			BaseURL:     cfg.Intervals.BaseURL,
			MaxInFlight: cfg.Sync.MaxInFlight,
			Pacing:      time.Duration(cfg.Sync.PacingMs) * time.Millisecond,
			RetryBudget: cfg.Sync.RetryBudget,
			RetryStep:   time.Duration(cfg.Sync.RetryStepMs) * time.Millisecond,
		})
		if err != nil {
			return fmt.Errorf("creating client: %w", err)
		}
		remote = client
	} else {
		fmt.Println("No API key configured; running with local data only.")
	}

	// Create services
	syncSvc := service.NewSyncService(remote, db, cfg.Sync)
	querySvc := service.NewQueryService(db, syncSvc, cfg.Athlete, cfg.Plan)

	// Launch TUI
	app := tui.NewApp(db, syncSvc, querySvc, cfg.Display)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}

func exportSnapshot(db *store.DB, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}
	defer f.Close()

	if err := db.Export(f); err != nil {
		return fmt.Errorf("exporting: %w", err)
	}

	fmt.Printf("Exported local data to %s\n", path)
	return nil
}

func importSnapshot(db *store.DB, path string, replace bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening snapshot file: %w", err)
	}
	defer f.Close()

	if err := db.Import(f, replace); err != nil {
		return fmt.Errorf("importing: %w", err)
	}

	fmt.Printf("Imported snapshot from %s\n", path)
	return nil
}
