package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caloriediary/go-diary-client/internal/config"
	"github.com/caloriediary/go-diary-client/stubserver"
	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error running api stub: %s\n", err)
	}
	log.Printf("API stub stopped\n")
}

func run() error {
	figure.NewFigure("Diary API Stub", "cybermedium", true).Print()
	fmt.Println()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	stub := stubserver.New(
		stubserver.WithAutoLogin(config.GetEnv("STUB_AUTO_LOGIN", "") == "true"),
		stubserver.WithLogger(logger),
	)

	port := config.GetEnv("STUB_PORT", "5678")
	httpServer := &http.Server{Addr: ":" + port, Handler: stub}

	go func() {
		log.Printf("API stub listening on %s\n", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("server.ListenAndServe: %s\n", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
