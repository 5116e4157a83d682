package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/wovenlabs/loom/internal/config"
	"github.com/wovenlabs/loom/internal/engine"
	"github.com/wovenlabs/loom/internal/llm"
	"github.com/wovenlabs/loom/internal/server"
	"github.com/wovenlabs/loom/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

// openEngine builds the full stack from environment config: database,
// LLM client, and a replayed engine. A missing LLM configuration is a
// warning, not a failure — the graph stays readable without it.
func openEngine() (*engine.Engine, config.Config, error) {
	cfg := config.FromEnv()

	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, cfg, fmt.Errorf("resolve db path: %w", err)
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return nil, cfg, fmt.Errorf("open database: %w", err)
	}

	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: LLM not configured (%v), extraction disabled\n", err)
		llmClient = nil
	} else {
		fmt.Fprintf(os.Stderr, "  llm: %s (%s)\n", cfg.LLM.Provider, cfg.LLM.Model)
	}

	eng := engine.New(db, llmClient)
	if err := eng.Replay(); err != nil {
		db.Close()
		return nil, cfg, fmt.Errorf("replay graph: %w", err)
	}

	return eng, cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	eng, cfg, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.DB.Close()

	srv := server.New(eng, VersionString(), cfg.Server.Origins())
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Fprintf(os.Stderr, "loom serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  db: %s\n", eng.DB.Path)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-done
	fmt.Fprintln(os.Stderr, "\nshutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
