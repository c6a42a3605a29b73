package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/jask/glyphtrace/internal/catalog"
	"github.com/jask/glyphtrace/internal/config"
	"github.com/jask/glyphtrace/internal/database"
	"github.com/jask/glyphtrace/internal/database/repository"
	"github.com/jask/glyphtrace/internal/game"
	"github.com/jask/glyphtrace/internal/logging"
	"github.com/jask/glyphtrace/internal/recognition"
	"github.com/jask/glyphtrace/internal/service"
	"github.com/jask/glyphtrace/internal/tui"
)

func main() {
	_ = godotenv.Load()

	gameID := flag.String("game", "", "start straight into this game id")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: glyphtrace [-game id] [init-config]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.Arg(0) == "init-config" {
		if err := config.Save(config.Defaults()); err != nil {
			log.Fatalf("init-config: %v", err)
		}
		fmt.Println("wrote", config.Path())
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	closer, err := logging.Setup(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer closer.Close()

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	router := game.NewRouter(cat, game.WithPolicy(game.NewPlaceholderPolicy(cfg.Game.Seed)))
	fetcher := &recognition.Fetcher{
		Client:  &http.Client{},
		BaseURL: cfg.Recognition.ModelBaseURL,
		Timeout: cfg.Recognition.FetchTimeout,
	}
	scores := &service.ScoreboardService{Results: repository.NewResultRepo(db)}

	zlog.Info().
		Int("games", cat.Len()).
		Str("db", cfg.Database.Path).
		Str("model_base_url", cfg.Recognition.ModelBaseURL).
		Msg("starting glyphtrace")

	app := tui.New(ctx, router, tui.Services{Scoreboard: scores, Loader: fetcher}, *gameID)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		zlog.Error().Err(err).Msg("program exited")
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
}
