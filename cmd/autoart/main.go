package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ok-very/autoart/internal/telemetry"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := telemetry.Init(ctx, "autoart", version); err != nil {
		fmt.Fprintf(os.Stderr, "autoart: telemetry init: %v\n", err)
	}
	defer telemetry.Shutdown(context.Background())

	if err := Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "autoart: %v\n", err)
		os.Exit(1)
	}
}
