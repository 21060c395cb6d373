package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"FindIt/internal/cli/commands"
	"FindIt/internal/config"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	cfg := config.NewConfig()

	if cfg.Version {
		printVersion(os.Stdout, cfg)
		return
	}

	// Ctrl+C прерывает запрос к серверу, локальная копия ленты при этом не портится:
	// сообщения дописываются в ней одной транзакцией.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	exitCode := commands.Dispatch(ctx, cfg, flag.Args())
	if exitCode == 0 {
		return
	}
	os.Exit(exitCode)
}

// printVersion показывает, с каким сервером и какой локальной копией работает клиент.
func printVersion(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "ficli %s (built %s)\n", version, buildDate)
	fmt.Fprintf(w, "server:   %s\n", cfg.BaseURL)
	fmt.Fprintf(w, "threads:  %s\n", cfg.ClientDBPath)
	fmt.Fprintf(w, "token:    %s\n", cfg.TokenFile)
}
