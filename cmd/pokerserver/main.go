// Command pokerserver runs the authoritative multi-table Hold'em engine:
// it loads the fixed table set from HCL, wires the in-memory persistence
// queue and escrow boundary, starts the tick loop, and serves the HTTP
// and agent APIs until signalled to stop.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/muesli/termenv"

	"github.com/holdemtable/server/internal/auth"
	"github.com/holdemtable/server/internal/config"
	"github.com/holdemtable/server/internal/escrow"
	"github.com/holdemtable/server/internal/httpapi"
	"github.com/holdemtable/server/internal/persist"
	"github.com/holdemtable/server/internal/table"
	"github.com/holdemtable/server/internal/tableman"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"pokerserver.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	Bots     int    `short:"b" long:"bots" help:"Extra bots to add to each configured table on startup"`
}

func main() {
	ctx := kong.Parse(&CLI)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		ctx.Exit(1)
	}
	if CLI.Addr != "" {
		cfg.Server.Address = CLI.Addr
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}

	logger := log.New(os.Stderr)
	logger.SetColorProfile(termenv.TrueColor)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	logger.Info("starting pokerserver", "addr", cfg.Server.Address, "tables", len(cfg.Tables))

	store := persist.NewInMemoryStore()
	queue := persist.NewQueue(store, logger, 256)
	esc := escrow.NewMock()
	keys := auth.NewStore()

	bg := context.Background()
	mgr, err := tableman.New(bg, cfg.Tables, quartz.NewReal(), logger, queue, store, esc, tableman.DefaultTimings())
	if err != nil {
		logger.Error("failed to build table manager", "err", err)
		ctx.Exit(1)
	}

	for _, tc := range cfg.Tables {
		for i := 0; i < CLI.Bots; i++ {
			if err := mgr.AddBot(tc.Name, table.Fish); err != nil {
				logger.Warn("failed to add startup bot", "table", tc.Name, "err", err)
				break
			}
		}
	}

	srv := httpapi.New(mgr, esc, keys, logger)

	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: srv.Handler(),
	}

	runCtx, cancel := context.WithCancel(bg)
	mgr.Start(runCtx)

	stopBroadcast := make(chan struct{})
	go broadcastLoop(mgr, srv, cfg.Server.TickInterval(), stopBroadcast)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Address)
		serveErr <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("shutting down")
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "err", err)
		}
	}

	close(stopBroadcast)
	cancel()
	mgr.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(bg, 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "err", err)
	}
}

// broadcastLoop periodically pushes every table's current view to its
// websocket subscribers. tableman has no dependency on httpapi, so this
// goroutine is the bridge between the tick loop and the stream endpoint
// rather than a callback wired into Manager itself.
func broadcastLoop(mgr *tableman.Manager, srv *httpapi.Server, period time.Duration, stop <-chan struct{}) {
	if period <= 0 {
		period = 500 * time.Millisecond
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			for _, t := range mgr.ListTables() {
				srv.Broadcast(t.ID)
			}
		}
	}
}
