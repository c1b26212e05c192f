package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/stickyscroll/internal/config"
	"github.com/jask/stickyscroll/internal/database"
	"github.com/jask/stickyscroll/internal/database/repository"
	"github.com/jask/stickyscroll/internal/logging"
	"github.com/jask/stickyscroll/internal/service"
	"github.com/jask/stickyscroll/internal/tui"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code. Deferred cleanups finish before main
// exits with it.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("stickyscroll", flag.ContinueOnError)
	fs.SetOutput(stderr)
	list := fs.Bool("list", false, "list stored gesture traces and exit")
	replay := fs.String("replay", "", "replay the named trace and report divergence")
	del := fs.String("delete", "", "delete the named trace")
	prune := fs.Int("prune", -1, "keep only the N newest traces")
	reset := fs.Bool("reset", false, "delete every stored trace")
	writeConfig := fs.Bool("write-config", false, "write the effective configuration to the config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	if *writeConfig {
		if err := config.Save(cfg); err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, "config written")
		return 0
	}

	closeLog, err := logging.Init(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(stderr, "log: %v\n", err)
		return 1
	}
	defer closeLog()
	logger := slog.Default()

	// Open creates the data directory the migrations need
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		logger.Error("migrate", "err", err)
		fmt.Fprintf(stderr, "migrate: %v\n", err)
		return 1
	}
	if v, _, err := database.Version(cfg.Database.Path); err == nil {
		logger.Info("database ready", "path", cfg.Database.Path, "schema", v)
	}

	traces := &service.TraceService{
		Traces:  repository.NewTraceRepo(db),
		Physics: cfg.Physics,
		Logger:  logger,
	}

	// reset before seeding, otherwise it would wipe the fresh sample
	if *reset {
		maintenance := &service.MaintenanceService{DB: db, Logger: logger}
		n, err := maintenance.Reset(ctx)
		if err != nil {
			return report(stderr, err)
		}
		fmt.Fprintf(stdout, "removed %d traces\n", n)
		return 0
	}

	if err := traces.SeedSample(ctx); err != nil {
		return report(stderr, err)
	}

	switch {
	case *list:
		return report(stderr, listTraces(ctx, stdout, traces))
	case *replay != "":
		return report(stderr, replayTrace(ctx, stdout, traces, *replay))
	case *del != "":
		if err := traces.Delete(ctx, *del); err != nil {
			return report(stderr, err)
		}
		fmt.Fprintf(stdout, "deleted %s\n", *del)
		return 0
	case *prune >= 0:
		n, err := traces.Prune(ctx, *prune)
		if err != nil {
			return report(stderr, err)
		}
		fmt.Fprintf(stdout, "removed %d traces\n", n)
		return 0
	}

	p := tea.NewProgram(tui.New(ctx, cfg, traces, logger), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		log.Printf("error: %v", err)
		return 1
	}
	return 0
}

func listTraces(ctx context.Context, w io.Writer, traces *service.TraceService) error {
	list, err := traces.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(w, "no traces")
		return nil
	}
	for _, t := range list {
		fmt.Fprintf(w, "%-24s header=%-4d events=%-5d %s\n",
			t.Name, t.HeaderHeight, t.EventCount, t.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func replayTrace(ctx context.Context, w io.Writer, traces *service.TraceService, name string) error {
	steps, err := traces.Replay(ctx, name)
	if err != nil {
		return err
	}
	for _, st := range steps {
		mark := " "
		if st.Diverged() {
			mark = "!"
		}
		fmt.Fprintf(w, "%s %4d %-9s want=%-4d got=%d\n", mark, st.Index, st.Kind, st.Want, st.Got)
	}
	if err := traces.Verify(ctx, name); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %d events replayed, no divergence\n", name, len(steps))
	return nil
}

// report prints err and maps it to an exit code: 2 for an unknown trace
// name, 1 for anything else.
func report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintln(w, err)
	var nf *service.NotFoundError
	if errors.As(err, &nf) {
		return 2
	}
	slog.Error("command failed", "err", err)
	return 1
}
