// Spins up the skipmap server, compatible w/ the Redis protocol.

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/nobletooth/skipmap/pkg/port"
	"github.com/nobletooth/skipmap/pkg/store"
	"github.com/nobletooth/skipmap/pkg/utils"
)

var printVersion = flag.Bool("print_version", false, "Print the version and exit.")

func main() {
	flag.Parse()
	utils.InitLogging()

	if *printVersion {
		slog.Info("Skipmap build info.", "version", utils.Version, "commit", utils.Commit, "build", utils.BuildTime)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, os.Kill)

	go func() { // Listen for OS interrupts in the background.
		sig := <-signals
		slog.Info("Received termination signal, cancelling server context.", "signal", sig)
		cancel()
	}()

	kv := store.NewStore()
	if err := port.RunRedisServer(ctx, kv); err != nil {
		slog.Error("Skipmap server stopped.", "err", err)
		os.Exit(1)
	}
}
