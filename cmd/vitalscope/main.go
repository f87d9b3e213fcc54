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

	"go.uber.org/zap"

	"github.com/vitalscope/vitalscope/config"
	"github.com/vitalscope/vitalscope/internal/app"
	"github.com/vitalscope/vitalscope/internal/webapi"
	"github.com/vitalscope/vitalscope/internal/webserver"
)

func main() {
	var (
		configFile string
		initdb     bool
	)
	flag.StringVar(&configFile, "c", "", "config file path")
	flag.BoolVar(&initdb, "initdb", false, "drop and recreate all tables, then exit")
	flag.Parse()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	application := app.NewApplication(cfg)
	application.Init(cfg)

	if initdb {
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}

	ws := webserver.Init(cfg)
	webserver.Use(webapi.WithAppContext(application))
	webapi.RegisterRoutes()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		zap.S().Info("shutting down")
		application.Scheduler().Stop()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := ws.Shutdown(ctx); err != nil {
			zap.S().Errorf("shutdown error: %v", err)
		}
	}()

	if err := ws.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zap.S().Fatalf("web server error: %v", err)
	}
}
