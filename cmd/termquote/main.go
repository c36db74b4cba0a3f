// cmd/termquote/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/quote-harvest/termquote/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.Execute(ctx)
}
