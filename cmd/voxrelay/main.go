// Voxrelay is a request/response relay daemon for a browser voice-assistant
// front end: it augments chat messages with live web-search context, forwards
// them to a hosted language model, synthesizes the completion to speech, and
// returns both in one JSON payload.
//
// Usage:
//
//	voxrelay [flags]
//	voxrelay --config /path/to/voxrelay.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/voxrelay/voxrelay/docs"
	"github.com/voxrelay/voxrelay/internal/completion"
	geminicompl "github.com/voxrelay/voxrelay/internal/completion/gemini"
	groqcompl "github.com/voxrelay/voxrelay/internal/completion/groq"
	"github.com/voxrelay/voxrelay/internal/config"
	"github.com/voxrelay/voxrelay/internal/health"
	"github.com/voxrelay/voxrelay/internal/relay"
	"github.com/voxrelay/voxrelay/internal/search"
	"github.com/voxrelay/voxrelay/internal/speech"
	groqspeech "github.com/voxrelay/voxrelay/internal/speech/groq"
	"github.com/voxrelay/voxrelay/internal/transport"
	httptransport "github.com/voxrelay/voxrelay/internal/transport/http"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/voxrelay.local.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("voxrelay %s\n", version)
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging.
	config.SetupLogging(cfg.Logging)
	slog.Info("voxrelay starting", "version", version)

	// A missing credential is a configuration error, reported here rather
	// than surfacing as a provider failure mid-request.
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize the completion backend.
	var client completion.Client
	switch cfg.Completion.Backend {
	case "groq":
		client, err = groqcompl.New(cfg.Completion.Groq)
		if err == nil {
			slog.Info("using groq completion", "model", cfg.Completion.Groq.Model)
		}
	case "gemini":
		client, err = geminicompl.New(ctx, cfg.Completion.Gemini)
		if err == nil {
			slog.Info("using gemini completion", "model", cfg.Completion.Gemini.Model)
		}
	default:
		slog.Error("unknown completion backend", "backend", cfg.Completion.Backend)
		os.Exit(1)
	}
	if err != nil {
		slog.Error("failed to initialize completion backend", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	// Initialize the speech synthesizer (optional).
	var synthesizer speech.Synthesizer
	defaultVoice := ""
	if cfg.Speech.Enabled {
		groqSynth, err := groqspeech.New(cfg.Speech.Groq)
		if err != nil {
			slog.Error("failed to initialize speech backend", "error", err)
			os.Exit(1)
		}
		synthesizer = groqSynth
		defaultVoice = groqSynth.DefaultVoice()
		defer groqSynth.Close()
		slog.Info("using groq speech", "model", cfg.Speech.Groq.Model, "voice", defaultVoice)
	} else {
		slog.Info("speech synthesis disabled, responses will be text-only")
	}

	// Initialize the web-search adapter (optional).
	var searcher relay.Searcher
	if cfg.Search.Enabled {
		searcher = search.NewAdapter(cfg.Search, nil)
		slog.Info("web search enabled",
			"max_results", cfg.Search.MaxResults, "cache_ttl", cfg.Search.CacheTTL)
	} else {
		slog.Info("web search disabled, prompts carry no live context")
	}

	// Create the relay engine.
	engine := relay.New(searcher, client, synthesizer, relay.Options{
		DefaultVoice:      defaultVoice,
		CompletionTimeout: cfg.Completion.Timeout,
		SpeechTimeout:     cfg.Speech.Timeout,
	})

	// Start health check servers.
	healthServer := health.New(cfg.Server.HealthPort, cfg.Server.GRPCHealthPort)
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	// Start the transport.
	transports := []transport.Transport{
		httptransport.New(cfg.Server.Port),
	}

	var wg sync.WaitGroup
	for _, t := range transports {
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(ctx, engine.Handle); err != nil {
				slog.Error("transport failed", "name", t.Name(), "error", err)
			}
		}(t)
	}

	// Mark as ready once all transports are started.
	healthServer.SetReady(true)
	slog.Info("voxrelay ready",
		"port", cfg.Server.Port,
		"health_port", cfg.Server.HealthPort)

	// Block until shutdown signal.
	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")

	// Close all transports gracefully.
	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}

	wg.Wait()
	slog.Info("voxrelay stopped")
}
