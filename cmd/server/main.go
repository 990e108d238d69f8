package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"topoview/internal/canvas"
	"topoview/internal/config"
	"topoview/internal/engine"
	"topoview/internal/export"
	"topoview/internal/handler"
	"topoview/internal/hub"
	"topoview/internal/layout"
	"topoview/internal/panel"
	"topoview/internal/repository/sqlite"
	"topoview/internal/service"
)

func main() {
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	engineURL := flag.String("engine", "", "analysis engine base URL (overrides config)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	cfg, cfgPath, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}
	if cfgPath != "" {
		log.Info().Str("path", cfgPath).Msg("config loaded")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *engineURL != "" {
		cfg.Engine.BaseURL = *engineURL
	}

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("could not open database")
	}
	defer repo.Close()
	log.Info().Str("path", cfg.Database.Path).Msg("database opened")

	eventBus := service.NewEventBus()

	sseHub := hub.New(log)
	eventBus.Subscribe(sseHub.EventChannel())
	go sseHub.Run()

	client := engine.NewClient(cfg.Engine.BaseURL, cfg.Engine.Timeout.Duration(), log)

	layoutCfg := layout.DefaultConfig(cfg.Canvas.Width, cfg.Canvas.Height)
	layoutCfg.LinkDistance = cfg.Layout.LinkDistance
	layoutCfg.ChargeStrength = cfg.Layout.ChargeStrength
	layoutCfg.CollisionRadius = cfg.Layout.CollisionRadius
	if cfg.Layout.AlphaDecay > 0 {
		layoutCfg.AlphaDecay = cfg.Layout.AlphaDecay
	}

	var cv *canvas.Canvas
	pn := panel.New(client, panel.Options{
		Debounce: cfg.Panel.Debounce.Duration(),
		OnClose:  func() { cv.ClearSelection() },
		OnChange: func(v panel.View) {
			eventBus.Publish(service.Event{Type: service.EventPanelChanged, Payload: v})
		},
		Log: log,
	})
	cv = canvas.New(client, repo, eventBus, canvas.Options{
		Width:    cfg.Canvas.Width,
		Height:   cfg.Canvas.Height,
		MinScale: cfg.Canvas.MinScale,
		MaxScale: cfg.Canvas.MaxScale,
		Layout:   layoutCfg,
		OnSelect: pn.Open,
		Log:      log,
	})

	exporter := export.New(cv, int(cfg.Canvas.Width), int(cfg.Canvas.Height), log)
	vh := handler.NewViewHandler(cv, pn, exporter, repo, cfg.Engine.DefaultNetwork, log)

	server := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     handler.NewRouter(vh, sseHub, log),
		ReadTimeout: 10 * time.Second,
		// No write timeout; SSE connections stay open indefinitely.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("engine", cfg.Engine.BaseURL).Msg("server listening")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	cv.Destroy()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server stopped")
}
