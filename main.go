package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"nowplaying/core"
	"nowplaying/logging"
	"nowplaying/radio"
	"nowplaying/render"
	"nowplaying/webui"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

var cli struct {
	EnvFile string           `help:"Env file to load before reading configuration." default:".env" type:"path"`
	Once    bool             `help:"Fetch and render a single time, then exit."`
	Service string           `help:"Service control action." enum:",install,uninstall,start,stop" default:""`
	Version kong.VersionFlag `help:"Print version and exit."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("nowplaying"),
		kong.Description("Renders ABC Radio now-playing metadata to a fixed-size e-paper image."),
		kong.Vars{"version": version},
	)

	if cli.Service != "" {
		if err := controlService(cli.Service); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(core.ExitCodeError)
		}
		fmt.Printf("Service %s: done\n", cli.Service)
		return
	}

	// Load .env file if it exists
	if err := godotenv.Load(cli.EnvFile); err != nil && !os.IsNotExist(err) {
		// Use fmt here since logger isn't initialized yet
		fmt.Printf("Warning: could not load %s: %v\n", cli.EnvFile, err)
	}

	isDevelopment := os.Getenv("DEV_MODE") == "true"

	logger, err := logging.NewLogger(isDevelopment, getLogFile())
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(core.ExitCodeError)
	}
	defer func() {
		_ = logger.Sync()
	}()

	cfg, err := core.LoadConfig()
	if err != nil {
		if cfgErr, ok := core.IsConfigError(err); ok {
			color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "Configuration error [%s]: %s\n", cfgErr.Code, cfgErr.Message)
			fmt.Fprintf(os.Stderr, "  Action: %s\n", cfgErr.Action)
			os.Exit(core.ExitCodeError)
		}
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	printBanner(cfg)

	logger.Info("Configuration loaded",
		zap.String("station", cfg.Station),
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.String("color_mode", cfg.ColorMode.String()),
		zap.String("output_dir", cfg.OutputDir),
		zap.String("listen", fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort)),
		zap.Bool("dev_mode", isDevelopment),
	)

	renderer, err := render.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize renderer", zap.Error(err))
	}
	radioClient := radio.NewClient(cfg, logger)

	if cli.Once {
		os.Exit(runOnce(radioClient, renderer, logger))
	}

	run := func(ctx context.Context) error {
		return runApp(ctx, cfg, logger, radioClient, renderer)
	}

	if runningUnderServiceManager() {
		if err := runUnderService(run); err != nil {
			logger.Fatal("Service run failed", zap.Error(err))
		}
		return
	}

	// Interactive: cancel on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Received interrupt signal. Shutting down...")
		cancel()
	}()

	if err := runApp(ctx, cfg, logger, radioClient, renderer); err != nil {
		logger.Fatal("Run failed", zap.Error(err))
	}
	logger.Info("Goodbye!")
}

// runApp starts the artifact server and the poll loop, then blocks until
// the context is canceled or the server fails to listen.
func runApp(ctx context.Context, cfg *core.Config, logger *logging.Logger, radioClient *radio.Client, renderer *render.Renderer) error {
	server := webui.NewServer(cfg, logger, version)
	serverErr := server.Start()

	poller := NewPoller(radioClient, renderer, cfg.PollInterval, logger)
	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		poller.Run(ctx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("artifact server failed: %w", err)
		}
	}

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Warn("Server shutdown incomplete", zap.Error(err))
	}
	<-pollerDone
	return runErr
}

// runOnce performs a single fetch and render, for cron-style deployments.
func runOnce(radioClient *radio.Client, renderer *render.Renderer, logger *logging.Logger) int {
	ctx := context.Background()

	meta, err := radioClient.CurrentSong(ctx)
	if err != nil {
		logger.Error("Failed to fetch current song", zap.Error(err))
		return core.ExitCodeError
	}
	if meta == nil {
		logger.Info("Nothing playing; no render needed")
		return core.ExitCodeSuccess
	}

	result, err := renderer.RenderIfChanged(ctx, *meta)
	if err != nil {
		logger.Error("Render failed", zap.Error(err))
		return core.ExitCodeError
	}
	if result.Rendered {
		logger.Info("Rendered", zap.String("image", result.ImagePath), zap.String("hash", result.Hash))
	} else {
		logger.Info("Song unchanged; image kept", zap.String("hash", result.Hash))
	}
	return core.ExitCodeSuccess
}

// getLogFile reads the log file path directly from the environment so the
// logger can come up before configuration is validated.
func getLogFile() string {
	if v := os.Getenv("LOG_FILE"); v != "" {
		return v
	}
	return "nowplaying.log"
}

// printBanner writes the startup summary to the console.
func printBanner(cfg *core.Config) {
	title := color.New(color.FgCyan, color.Bold)
	title.Printf("nowplaying %s\n", version)
	fmt.Printf("  station:    %s (%s)\n", cfg.Station, cfg.StationLabel())
	fmt.Printf("  canvas:     %dx%d, %s\n", cfg.Width, cfg.Height, cfg.ColorMode)
	fmt.Printf("  artifacts:  %s\n", cfg.ImagePath())
	fmt.Printf("  listening:  http://%s:%d/\n", cfg.ServerHost, cfg.ServerPort)
}
