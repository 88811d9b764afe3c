// main is the entry point of the Herald application.
// It initializes the configuration, logger, GeoIP provider, history database,
// Discord session and the update cycle, then runs until interrupted.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"herald/internal/board"
	"herald/internal/config"
	"herald/internal/cycle"
	"herald/internal/discovery"
	"herald/internal/geoip"
	"herald/internal/logger"
	"herald/internal/query"
	"herald/internal/snapshot"
	"herald/internal/storage"
	"herald/internal/web"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Parse()

	logger.Setup(cfg.Logger)
	log.Info().Msg("Starting herald service...")

	// GeoIP (optional)
	var geoProvider *geoip.Provider
	if cfg.GeoIP.Path != "" {
		if err := geoip.EnsureDB(cfg.GeoIP.Path, cfg.GeoIP.URL, cfg.GeoIP.Interval); err != nil {
			log.Error().Err(err).Msg("Failed to download GeoIP database")
		}

		var err error
		geoProvider, err = geoip.Open(cfg.GeoIP.Path)
		if err != nil {
			log.Error().Err(err).Msg("Failed to open GeoIP database, country detection disabled")
			geoProvider = nil
		} else {
			defer func() {
				if err := geoProvider.Close(); err != nil {
					log.Error().Err(err).Msg("Error closing GeoIP provider")
				}
			}()
		}
	}

	// History database (optional)
	var recorder *storage.Recorder
	if cfg.History.Path != "" {
		var err error
		recorder, err = storage.New(cfg.History.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize history database")
		}
		defer func() {
			if err := recorder.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing history database")
			}
		}()
	}

	// History maintenance task
	if cfg.History.PruneBefore > 0 {
		if recorder == nil {
			log.Fatal().Msg("--history-prune-before requires --history-path")
		}

		count, err := recorder.PruneBefore(cfg.History.PruneBefore)
		if err != nil {
			log.Error().Err(err).Msg("Failed to prune history samples")
		} else {
			log.Info().Int64("deleted", count).Msg("Prune finished")
		}
		return
	}

	// Discord session
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid Discord token")
	}
	if err := session.Open(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Discord")
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing Discord session")
		}
	}()

	surfaces := make([]board.Surface, 0, len(cfg.Discord.Channels))
	for _, id := range cfg.Discord.Channels {
		surfaces = append(surfaces, board.NewChannel(session, id))
	}

	// Discovery provider, selected once at startup
	var provider discovery.Provider
	switch cfg.Discovery.Source {
	case config.SourceMaster:
		provider = discovery.NewMaster(
			cfg.Discovery.APIKey, cfg.Discovery.AppID, cfg.Discovery.Limit,
			cfg.Discovery.Regions, cfg.Discovery.Exclude, cfg.Query.Timeout)
	default:
		provider = &discovery.File{Path: cfg.Discovery.Path}
	}

	// Query engine
	cache := query.NewCache()
	transport := &query.A2S{Timeout: cfg.Query.Timeout, BufferSize: cfg.Query.BufferSize}
	client := query.NewClient(transport, cache, cfg.Query.Retries, cfg.Query.RetryDelay)
	limiter := rate.NewLimiter(rate.Every(cfg.Query.Stagger), 1)

	builder := snapshot.New(client, cache, limiter, geoProvider, snapshot.Options{
		MinPlayers:    cfg.Display.MinPlayers,
		MaxPlayers:    cfg.Display.MaxPlayers,
		PlayerListCap: cfg.Display.PlayerListCap,
		TagLong:       cfg.Display.TagLong,
		TagShort:      cfg.Display.TagShort,
	})

	state := web.NewState()
	cycleCfg := cycle.Config{
		Provider:   provider,
		Builder:    builder,
		Surfaces:   surfaces,
		OnSnapshot: state.Set,
		Interval:   cfg.Cycle.Interval,
		ClearLimit: cfg.Discord.ClearLimit,
	}
	if recorder != nil {
		cycleCfg.History = recorder
	}
	runner := cycle.New(cycleCfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Status endpoint (optional)
	var httpServer *http.Server
	if cfg.Web.Address != "" {
		httpServer = &http.Server{
			Addr:         cfg.Web.Address,
			Handler:      web.New(state, recorder, cfg.Web.RateCount, cfg.Web.RateWindow).Run(),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		go func() {
			log.Info().Str("address", cfg.Web.Address).Msg("Status endpoint listening")
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal().Err(err).Msg("Status endpoint failed")
			}
		}()
	}

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down...")
		cancel()
	}()

	runner.Initialize(ctx)
	runner.Run(ctx)

	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Status endpoint forced to shutdown")
		}
	}

	log.Info().Msg("Herald exited")
}
