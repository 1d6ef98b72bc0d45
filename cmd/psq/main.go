package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/kailas-cloud/paramsearch/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "psq:", err)
		stop()
		os.Exit(1)
	}
}
