package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/cli"
	"github.com/hailam/chessrules/internal/game"
	"github.com/hailam/chessrules/internal/server"
	"github.com/hailam/chessrules/internal/storage"
)

var (
	serve      = flag.Bool("serve", false, "serve the HTTP API instead of the console")
	addr       = flag.String("addr", "", "listen address for -serve (default :8080)")
	dataDir    = flag.String("data", "", "directory for the statistics database")
	noStats    = flag.Bool("nostats", false, "do not record game statistics")
	startFEN   = flag.String("fen", "", "start from this position instead of the initial one")
	debug      = flag.Bool("debug", false, "check board consistency after every move")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	board.DebugMoveValidation = *debug

	store := openStorage()
	if store != nil {
		defer store.Close()
	}

	var session *game.Session
	if store != nil {
		session = game.NewSession(store)
	} else {
		session = game.NewSession(nil)
	}
	if *startFEN != "" {
		if err := session.LoadFEN(*startFEN); err != nil {
			log.Fatal(err)
		}
	}

	if *serve {
		runServer(session)
		return
	}

	// The console takes a nil StatsSource when statistics are off.
	var stats cli.StatsSource
	if store != nil {
		stats = store
	}
	if err := cli.New(session, stats).Run(os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// openStorage opens the statistics database, or returns nil when statistics
// are disabled or unavailable.
func openStorage() *storage.Storage {
	if *noStats {
		return nil
	}
	// CHESSPLAY_DATA_DIR is resolved by storage when -data is not given.
	var (
		store *storage.Storage
		err   error
	)
	if *dataDir != "" {
		store, err = storage.Open(*dataDir)
	} else {
		store, err = storage.NewStorage()
	}
	if err != nil {
		log.Printf("Warning: statistics disabled: %v", err)
		return nil
	}
	return store
}

func runServer(session *game.Session) {
	listen := *addr
	if listen == "" {
		listen = os.Getenv("CHESSPLAY_ADDR")
	}
	if listen == "" {
		listen = ":8080"
	}

	srv := server.New(session)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Run(ctx.Done())

	httpServer := &http.Server{
		Addr:    listen,
		Handler: srv.Router(),
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	log.Printf("listening on %s", listen)
	select {
	case <-sigCtx.Done():
		log.Printf("shutdown signal received: %v", sigCtx.Err())
	case err, ok := <-serverErrCh:
		if ok {
			log.Printf("server error: %v", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("graceful shutdown failed: %v", err)
		if closeErr := httpServer.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			log.Printf("forced close failed: %v", closeErr)
		}
	}
}
