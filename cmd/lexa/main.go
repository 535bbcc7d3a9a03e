// Lexa - legal assistant API server entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lexabot/lexa/internal/infra/config"
	"github.com/lexabot/lexa/internal/infra/sqlite"
	"github.com/lexabot/lexa/internal/metrics"
	"github.com/lexabot/lexa/internal/server"
	"github.com/lexabot/lexa/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("lexa", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	}
	if *showHelp {
		printHelp(out)
		return 0
	}

	switch fs.Arg(0) {
	case "", "serve":
		return serve(out)
	case "migrate":
		return migrate(out)
	default:
		fmt.Fprintf(out, "unknown command %q\n\n", fs.Arg(0)) //nolint:errcheck
		printHelp(out)
		return 2
	}
}

// serve runs the HTTP server until SIGINT/SIGTERM, then shuts down gracefully.
func serve(out io.Writer) int {
	cfg := config.Load()

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(out, "logger init failed: %v\n", err) //nolint:errcheck
		return 1
	}
	defer log.Sync() //nolint:errcheck

	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		log.Error("database open failed", zap.Error(err))
		return 1
	}
	if err := sqlite.MigrateUp(db); err != nil {
		log.Error("migrations failed", zap.Error(err))
		db.Close() //nolint:errcheck
		return 1
	}

	col := metrics.NewCollector("lexa", prometheus.DefaultRegisterer)

	srvCfg := server.DefaultConfig()
	srvCfg.Addr = cfg.Addr
	srv := server.NewServer(db, srvCfg, cfg, log, col)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultConfig().WriteTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", zap.Error(err))
		return 1
	}
	return 0
}

// migrate applies pending migrations and exits.
func migrate(out io.Writer) int {
	cfg := config.Load()

	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(out, "database open failed: %v\n", err) //nolint:errcheck
		return 1
	}
	defer db.Close() //nolint:errcheck

	if err := sqlite.MigrateUp(db); err != nil {
		fmt.Fprintf(out, "migrations failed: %v\n", err) //nolint:errcheck
		return 1
	}

	ver, err := sqlite.MigrationVersion(db)
	if err != nil {
		fmt.Fprintf(out, "migration version lookup failed: %v\n", err) //nolint:errcheck
		return 1
	}
	fmt.Fprintf(out, "database at migration version %d\n", ver) //nolint:errcheck
	return 0
}

func printHelp(out io.Writer) {
	helpText := `Lexa - legal assistant API

Usage:
  lexa [options] [command]

Options:
  --version    Show version information
  --help       Show this help message

Commands:
  serve        Start the API server (default)
  migrate      Run database migrations

Environment:
  LEXA_ADDR, LEXA_DB_PATH, JWT_SECRET, JWT_EXPIRY_HOURS,
  OPENAI_API_KEY, GEMINI_API_KEY, MISTRAL_API_KEY

Examples:
  lexa --version
  lexa serve
  lexa migrate`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}
