package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rincewound/klemme/config"
	"github.com/rincewound/klemme/format"
	"github.com/rincewound/klemme/monitor"
	"github.com/rincewound/klemme/serial"
	"github.com/rincewound/klemme/tui"
)

var (
	version   = "0.3.0"
	buildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to settings file (default: per-user config dir)")
	listPorts := flag.Bool("list-ports", false, "List available serial ports and exit")
	listEncodings := flag.Bool("list-encodings", false, "List display encodings and exit")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Display version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "klemme - interactive serial port monitor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("klemme version %s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	if *listPorts {
		ports, err := serial.ListPorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Available serial ports:")
		if len(ports) == 0 {
			fmt.Println("  (none found)")
		} else {
			for _, port := range ports {
				fmt.Printf("  %s\n", port)
			}
		}
		os.Exit(0)
	}

	if *listEncodings {
		fmt.Println("Display encodings:")
		for _, name := range format.List() {
			enc, err := format.Get(name)
			if err != nil {
				continue
			}
			fmt.Printf("  %-10s - %s\n", name, enc.Title())
		}
		os.Exit(0)
	}

	settingsPath := *configPath
	if settingsPath == "" {
		var err error
		settingsPath, err = config.DefaultPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resolving settings path: %v\n", err)
			os.Exit(1)
		}
	}

	settings, err := config.Load(settingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
		os.Exit(1)
	}

	if err := config.Validate(settings, format.List()); err != nil {
		fmt.Fprintf(os.Stderr, "Settings validation failed:\n  %v\n", err)
		os.Exit(1)
	}

	logger := setupLogging(settings, settingsPath, *debug)
	slog.SetDefault(logger)

	ports, err := serial.ListPorts()
	if err != nil {
		logger.Warn("Failed to enumerate serial ports", "error", err)
	}

	logger.Info("klemme starting",
		"version", version,
		"settings", settingsPath,
		"ports", len(ports),
	)

	coord := monitor.New(logger)
	runCtx, cancel := context.WithCancel(context.Background())
	coordDone := make(chan struct{})
	go func() {
		defer close(coordDone)
		coord.Run(runCtx)
	}()

	program := tea.NewProgram(tui.New(logger, settings, coord, ports), tea.WithAltScreen())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("Received shutdown signal", "signal", sig)
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		logger.Error("Terminal program failed", "error", err)
	}

	// Graceful shutdown
	cancel()
	<-coordDone

	if err := settings.Save(settingsPath); err != nil {
		logger.Warn("Failed to save settings", "error", err)
	}

	stats := coord.Stats()
	logger.Info("klemme stopped",
		"bytes_received", stats.BytesReceived,
		"bytes_sent", stats.BytesSent,
		"errors", stats.Errors,
	)
}

func setupLogging(settings *config.Settings, settingsPath string, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	} else {
		switch settings.Logging.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// The terminal belongs to the UI, so logs always go to a file.
	basePath := settings.Logging.BasePath
	if basePath == "" {
		basePath = filepath.Dir(settingsPath)
	}

	writer := &lumberjack.Logger{
		Filename:   filepath.Join(basePath, settings.Logging.Filename),
		MaxSize:    settings.Logging.MaxSizeMB,
		MaxBackups: settings.Logging.MaxBackups,
		Compress:   settings.Logging.Compress,
	}
	return slog.New(slog.NewJSONHandler(writer, opts))
}
