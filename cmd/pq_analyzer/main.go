// Command pq_analyzer summarizes the harmonic content of a power-quality
// instrument export per load band and checks it against IEEE 519-2014.
//
// Usage:
//
//	pq_analyzer [-config file.yaml] <input.xlsx> <output.xlsx|output.pdf>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/user/pq_analyzer_go/internal/config"
	"github.com/user/pq_analyzer_go/internal/logging"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("pq_analyzer", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML configuration file")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: pq_analyzer [-config file.yaml] <input.xlsx> <output.xlsx|output.pdf>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return exitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return exitError
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		return exitError
	}
	defer logger.Sync()
	logger, _ = logging.WithRun(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApp(cfg, logger)
	if err := app.GenerateReport(ctx, fs.Arg(0), fs.Arg(1)); err != nil {
		logger.Error("Report generation failed", zap.Error(err))
		return exitError
	}
	return exitOK
}
