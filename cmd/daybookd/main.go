package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/julianstephens/daybook/internal/errors"
	"github.com/julianstephens/daybook/internal/logger"
	"github.com/julianstephens/daybook/internal/server"
	"github.com/julianstephens/daybook/internal/storage"
)

func main() {
	addr := flag.String("addr", ":8787", "listen address")
	dbPath := flag.String("db", "~/.config/daybook/daybookd.db", "server database file")
	token := flag.String("token", os.Getenv("DAYBOOKD_TOKEN"), "bearer token required on API routes (empty disables auth)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	path := storage.ExpandPath(*dbPath)
	if err := logger.Init(logger.Config{Debug: *debug, ConfigDir: "."}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	if !*debug {
		gin.SetMode(gin.ReleaseMode)
	}

	repo, err := server.OpenRepo(path)
	if err != nil {
		apperrors.Fatal(err)
	}
	defer repo.Close()

	srv := &http.Server{
		Addr:    *addr,
		Handler: server.NewRouter(repo, *token),
	}

	go func() {
		logger.Info("daybookd listening", "addr", *addr, "db", path)
		fmt.Printf("daybookd listening on %s\n", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			apperrors.Fatal(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		repo.Close()
		apperrors.Fatal(fmt.Errorf("shutdown failed: %w", err))
	}
}
