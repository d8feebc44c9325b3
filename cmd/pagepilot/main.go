// Command pagepilot is an interactive shell around the agent controller.
//
// Lines starting with "/" manage the working context (page, selection, post,
// notes and personas); every other line is sent to the agent.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jllopis/pagepilot/pkg/config"
	"github.com/jllopis/pagepilot/pkg/telemetry"
)

var version = "dev"

func main() {
	// SIGINT is scoped to each agent turn by the shell.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fatal(err)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out, logOut io.Writer) error {
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			printUsage(out)
			return nil
		case "--version":
			fmt.Fprintf(out, "pagepilot %s\n", version)
			return nil
		}
	}

	cfg, err := config.LoadWithCLI(args)
	if err != nil {
		return err
	}

	level := new(slog.LevelVar)
	level.Set(telemetry.ParseLogLevel(cfg.Log.Level))
	logger := telemetry.NewLoggerWithLevel(logOut, level, cfg.Log.Format)
	slog.SetDefault(logger)

	watcher, err := config.WatchCLI(args, config.WithWatchLogger(telemetry.Component(logger, "config")))
	if err != nil {
		return err
	}
	if watcher != nil {
		watcher.OnChange(func(ch config.Change) {
			for _, section := range ch.Sections {
				if section == "log" {
					level.Set(telemetry.ParseLogLevel(ch.Current.Log.Level))
					continue
				}
				logger.Warn("config.reload.restart_required", slog.String("section", section))
			}
		})
		watcher.Start(ctx)
		defer watcher.Stop()
	}

	shutdown, err := telemetry.InitWithConfig("pagepilot", version, telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
		OTLPTimeout:  cfg.Telemetry.OTLPTimeout,
		Output:       logOut,
		SessionID:    cfg.Store.SessionID,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("telemetry.shutdown.error", slog.String("error", err.Error()))
		}
	}()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return newShell(a, in, out).Run(ctx)
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `pagepilot - page-aware assistant shell

Usage:
  pagepilot [--config <file>] [--profile <name>] [--set key=value ...]

Flags:
  --config   YAML configuration file
  --profile  overlay <config>.<profile>.yaml when present
  --set      override a configuration key, e.g. --set llm.provider=mock
  --version  print version and exit

Type /help inside the shell for the list of commands.
`)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "pagepilot: %v\n", err)
	os.Exit(1)
}
