// Package main provides gradectl, which runs grade queries against a local
// dataset without starting the HTTP server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/collegegrades/grades-api/internal/config"
	"github.com/collegegrades/grades-api/internal/dataset"
	"github.com/collegegrades/grades-api/internal/engine"
	"github.com/collegegrades/grades-api/internal/logging"
)

func main() {
	if err := rootCmd(openStore).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore logs to logOut so stdout carries only the query result.
func openStore(ctx context.Context, cfg *config.Config, logOut io.Writer) (*engine.Store, error) {
	logger, closer := logging.NewWithWriter(cfg.Logging, logOut)
	defer closer.Close()
	return dataset.LoadStore(ctx, cfg, logger)
}
