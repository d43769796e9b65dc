package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cosmosops/analyticalctl/internal/build"
	"github.com/cosmosops/analyticalctl/internal/cmd/root"
	"github.com/cosmosops/analyticalctl/internal/iostreams"
)

var (
	// version, commit and date are set by the linker at release time
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func registerSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigs)
		sig := <-sigs
		fmt.Fprintln(os.Stderr, "received", sig, ", terminating...")
		cancel()
	}()
	return ctx
}

func main() {
	ctx := registerSignalHandler()
	bi := &build.Info{
		Version: version,
		Commit:  commit,
		Date:    date,
	}
	os.Exit(root.Execute(ctx, iostreams.GetOSIOStreams(), bi))
}
