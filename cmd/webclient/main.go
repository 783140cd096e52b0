package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/caloriediary/go-diary-client/api"
	"github.com/caloriediary/go-diary-client/feed"
	"github.com/caloriediary/go-diary-client/internal/config"
	"github.com/caloriediary/go-diary-client/server"
	"github.com/caloriediary/go-diary-client/session"
	"github.com/caloriediary/go-diary-client/session/boltvault"
	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running web client: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Web client stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := os.MkdirAll(c.GetDataFolder(), 0o755); err != nil {
		return fmt.Errorf("create data folder: %w", err)
	}
	vault, err := boltvault.Open(filepath.Join(c.GetDataFolder(), "session.db"))
	if err != nil {
		return fmt.Errorf("open session vault: %w", err)
	}
	defer func() { _ = vault.Close() }()

	client, err := api.New(c.GetAPIBaseURL(), c.GetAPITimeout())
	if err != nil {
		return fmt.Errorf("create api client: %w", err)
	}
	store, err := session.New(client, vault, session.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("create session store: %w", err)
	}
	statsFeed, err := feed.New(client, store)
	if err != nil {
		return fmt.Errorf("create stats feed: %w", err)
	}
	ui, err := server.New(c, client, store, statsFeed, logger)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: ui}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func listenAndServe(server *http.Server) error {
	log.Printf("Web client listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
