// Command ftsd runs the full-text search service: an HTTP server exposing
// the index registry under /index.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corewire/ftsearch/internal/api"
	"github.com/corewire/ftsearch/internal/logging"
	"github.com/corewire/ftsearch/internal/registry"
)

func main() {
	var (
		help = flag.Bool("help", false, "Show help message")
		port = flag.Int("port", 8001, "Port to run the server on")
	)
	flag.Parse()

	if *help {
		fmt.Printf("ftsd - in-memory multi-tenant full-text search service\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		flag.PrintDefaults()
		return
	}

	log := logging.New()
	reg := registry.New()
	server := api.New(reg, log)

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", *port),
		Handler:        server.Router(),
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Info("starting server", "port", *port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "error", err.Error())
		os.Exit(1)
	}

	log.Info("server exited")
}
