package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marildoC/runroom/internal/config"
	"github.com/marildoC/runroom/internal/lang"
	"github.com/marildoC/runroom/internal/runner"
	"github.com/marildoC/runroom/internal/server"
)

var portFlag int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the runroom server",
	Long: `Start the HTTP server with the WebSocket session gateway.

Examples:
  runroom serve
  runroom serve --port 9090`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	langs := lang.Builtin()
	if cfg.Runner.LanguagesFile != "" {
		if err := langs.LoadFile(cfg.Runner.LanguagesFile); err != nil {
			return fmt.Errorf("loading languages: %w", err)
		}
	}
	log.Printf("Languages: %v", langs.Keys())

	engine := runner.New(langs, runner.Options{
		PollInterval:    cfg.Runner.PollInterval,
		MaxImageDim:     cfg.Runner.MaxImageDim,
		PrepopulatePath: cfg.Runner.PrepopulatePath,
	})

	port := cfg.Server.Port
	if portFlag > 0 {
		port = portFlag
	}

	srv := server.New(cfg, engine, langs)

	// Graceful shutdown on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		srv.Shutdown(context.Background())
	}()

	if err := srv.Start(port); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
