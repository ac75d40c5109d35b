package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/oldirty/AirCodum/capture"
	"github.com/oldirty/AirCodum/codec"
	"github.com/oldirty/AirCodum/config"
	"github.com/oldirty/AirCodum/engine"
	"github.com/oldirty/AirCodum/input"
	"github.com/oldirty/AirCodum/session"
	"github.com/oldirty/AirCodum/status"
	"github.com/oldirty/AirCodum/transport"
)

const (
	DefaultConfigPath = "config.toml"
	AppName           = "AirCodum Screen Streamer"
	AppVersion        = "1.0.0"
)

// Application wires the capture engine, its duplex listener, and the
// optional status endpoint into one process lifecycle.
type Application struct {
	config *config.Config
	logger *zap.Logger

	engine    *engine.CaptureEngine
	listener  *transport.Listener
	statusSrv *http.Server
}

func main() {
	var (
		configPath = flag.String("config", DefaultConfigPath, "Path to configuration file")
		logLevel   = flag.String("log-level", "", "Log level (debug, info, warn, error); overrides config file")
		version    = flag.Bool("version", false, "Show version information")
		help       = flag.Bool("help", false, "Show help information")
	)
	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, AppVersion)
		fmt.Printf("Go version: %s\n", runtime.Version())
		fmt.Printf("Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}

	if *help {
		fmt.Printf("%s v%s\n\n", AppName, AppVersion)
		fmt.Println("Samples the host display, encodes frames to JPEG, and streams")
		fmt.Println("them to one or more remote viewers over a WebSocket connection.")
		fmt.Println("\nUsage:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	level := cfg.Logging.Level
	if *logLevel != "" {
		level = *logLevel
	}

	logger, err := createLogger(level, cfg.Logging.MaxLogFiles)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting "+AppName,
		zap.String("version", AppVersion),
		zap.String("go_version", runtime.Version()),
		zap.String("platform", runtime.GOOS+"/"+runtime.GOARCH))

	app, err := NewApplication(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start application", zap.Error(err))
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	sig := <-signalCh
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	app.Stop()
	logger.Info("shutdown complete")
}

// NewApplication constructs the capture engine and its external
// collaborators (screen source, codec, input injector) from cfg, but does
// not yet start sampling or accepting connections.
func NewApplication(cfg *config.Config, logger *zap.Logger) (*Application, error) {
	real, err := capture.DetectScreenSize(context.Background())
	if err != nil {
		logger.Warn("screen size detection degraded", zap.Error(err))
	}
	logger.Info("detected screen size", zap.Int("width", real.Width), zap.Int("height", real.Height))

	source := capture.NewLinuxScreenSource()
	imgCodec := codec.New()

	eng := engine.Initialize(real, source, imgCodec, logger.Named("engine"))
	eng.SetMemoryCeiling(int64(cfg.Engine.MaxMemoryMB) * 1024 * 1024)
	eng.SetLimits(engine.Limits{
		CoalesceMaxWait:          time.Duration(cfg.Engine.CoalesceMaxWaitMs) * time.Millisecond,
		PerformanceCheckInterval: time.Duration(cfg.Engine.PerformanceCheckSeconds) * time.Second,
		MinWidth:                 cfg.Engine.MinWidth,
		MaxWidth:                 cfg.Engine.MaxWidth,
		MinQuality:               cfg.Engine.MinJPEGQuality,
		MaxQuality:               cfg.Engine.MaxJPEGQuality,
	})

	injector, err := input.NewLinuxInjector()
	if err != nil {
		logger.Warn("input injector degraded to ydotool-only fallback", zap.Error(err))
	}

	newOpts := func() session.Options {
		return session.Options{Injector: injector}
	}

	listener := transport.New(cfg.Listener.Address, eng, real, logger.Named("listener"), newOpts)

	app := &Application{
		config:   cfg,
		logger:   logger,
		engine:   eng,
		listener: listener,
	}

	if cfg.Status.Address != "" {
		handlers := status.NewHandlers(eng, logger.Named("status"))
		app.statusSrv = &http.Server{Addr: cfg.Status.Address, Handler: handlers.NewMux()}
	}

	return app, nil
}

// Start binds the duplex listener and, if configured, the status
// endpoint. The sampler loop itself does not start until the first
// viewer subscribes (see engine.CaptureEngine.Subscribe).
func (a *Application) Start() error {
	notification, err := a.listener.Start()
	if err != nil {
		return fmt.Errorf("failed to start listener: %w", err)
	}
	a.logger.Info(notification)

	if a.statusSrv != nil {
		ln := a.statusSrv.Addr
		go func() {
			if err := a.statusSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				a.logger.Error("status endpoint serve error", zap.Error(err))
			}
		}()
		a.logger.Info("status endpoint listening", zap.String("address", ln))
	}

	return nil
}

// Stop tears down every component best-effort: a failure in one step never
// skips the rest, and Stop itself never returns an error.
func (a *Application) Stop() {
	a.logger.Info("stopping application")

	a.listener.Stop()

	if a.statusSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.statusSrv.Shutdown(ctx); err != nil {
			a.logger.Error("error shutting down status endpoint", zap.Error(err))
		}
	}

	engine.Shutdown()
}

// createLogger builds a zap logger that writes to stdout and a rotating
// log file, pruning all but the most recent maxFiles log files on
// startup.
func createLogger(level string, maxFiles int) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	const logDir = "logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log dir: %w", err)
	}
	ts := time.Now().Format("20060102-150405")
	logFile := filepath.Join(logDir, fmt.Sprintf("aircodum-%s.log", ts))

	if maxFiles <= 0 {
		maxFiles = 20
	}
	files, _ := filepath.Glob(filepath.Join(logDir, "aircodum-*.log"))
	if len(files) > maxFiles {
		sort.Strings(files)
		for _, f := range files[:len(files)-maxFiles] {
			_ = os.Remove(f)
		}
	}

	cfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout", logFile},
		ErrorOutputPaths: []string{"stderr", logFile},
	}

	return cfg.Build()
}
