package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/strokeguard/strokeguard/internal/presentation/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cli.Execute(ctx)
}
