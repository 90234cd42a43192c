package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/mheland/notegraph/pkg/config"
	"github.com/mheland/notegraph/pkg/cycles"
	"github.com/mheland/notegraph/pkg/graph"
	"github.com/mheland/notegraph/pkg/links"
	"github.com/mheland/notegraph/pkg/logging"
	"github.com/mheland/notegraph/pkg/output"
	"github.com/mheland/notegraph/pkg/physics"
	"github.com/mheland/notegraph/pkg/scene"
	"github.com/mheland/notegraph/pkg/vault"
	"github.com/mheland/notegraph/pkg/watcher"
	"github.com/mheland/notegraph/pkg/web"
)

func main() {
	flags := pflag.NewFlagSet("notegraph", pflag.ExitOnError)
	flags.String("vault", ".", "Path to the notes vault root")
	flags.Bool("web", false, "Start web server instead of printing to console")
	flags.Int("port", 8080, "Port for web server (only used with --web)")
	flags.Bool("watch", false, "Rebuild the graph when vault files change")
	flags.Bool("open", true, "Open browser when the web server starts")
	flags.CountP("verbose", "v", "Increase log verbosity (-v, -vv)")
	flags.String("physics", "classic", "Physics constant preset (classic or dense)")
	flags.Int("reveal-interval", 150, "Milliseconds between node reveals")
	flags.Float64("fade-step", 0.1, "Per-frame opacity increment for revealed nodes")
	flags.Int("fetch-workers", 4, "Concurrent note content reads during a build")
	flags.Int("fetch-timeout", 5000, "Per-note read timeout in milliseconds")
	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logging.SetLevel(logging.LevelFromVerbosity(cfg.VerboseCnt))

	v, err := vault.Open(cfg.Vault)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	phys, err := physics.PresetConfig(cfg.PhysicsPreset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.WebMode {
		runWebServer(cfg, v, phys)
		return
	}

	if err := runReport(cfg, v); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runReport builds the graph once and prints a colorized console report
func runReport(cfg *config.Config, v *vault.Vault) error {
	files, err := v.ListNotes()
	if err != nil {
		return fmt.Errorf("scanning vault: %w", err)
	}

	builder := graph.NewBuilder(graph.BuilderOptions{
		Resolver:     links.NameResolver{},
		FetchWorkers: cfg.FetchWorkers,
		FetchTimeout: time.Duration(cfg.FetchTimeoutMs) * time.Millisecond,
	})
	g, err := builder.Build(context.Background(), files, v)
	if err != nil {
		return fmt.Errorf("building graph: %w", err)
	}

	output.PrintGraphReport(cfg.Vault, g, cycles.FindLinkCycles(g))
	return nil
}

// runWebServer starts the HTTP server, runs the initial build in the
// background, and optionally watches the vault for changes.
func runWebServer(cfg *config.Config, v *vault.Vault, phys physics.Config) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	server := web.NewServer()
	sc := scene.New(scene.Options{
		Vault:     v,
		Publisher: server.Publisher(),
		Physics:   phys,
		Builder: graph.BuilderOptions{
			Resolver:     links.NameResolver{},
			FetchWorkers: cfg.FetchWorkers,
			FetchTimeout: time.Duration(cfg.FetchTimeoutMs) * time.Millisecond,
		},
		RevealInterval: time.Duration(cfg.RevealIntervalMs) * time.Millisecond,
		FadeStep:       cfg.FadeStep,
		Navigate: func(noteID string) {
			logging.Info("navigate requested", "note", noteID)
		},
	})
	defer sc.Close()
	server.SetScene(sc)

	sc.Start(ctx)

	url := fmt.Sprintf("http://localhost:%d", cfg.Port)
	fmt.Printf("Starting web server on %s\n", url)

	go func() {
		if err := server.Start(cfg.Port); err != nil {
			logging.Fatal("web server failed", "error", err)
		}
	}()

	// Initial build runs in the background so the page loads immediately
	go func() {
		if err := sc.Rebuild(ctx); err != nil {
			logging.Error("initial build failed", "error", err)
		}
	}()

	if cfg.Watch {
		if err := startWatcher(ctx, cfg.Vault, sc); err != nil {
			logging.Error("failed to start vault watcher", "error", err)
		}
	}

	if cfg.OpenBrowser {
		time.Sleep(500 * time.Millisecond)
		fmt.Println("Opening browser...")
		openBrowser(url)
	}

	<-ctx.Done()
	fmt.Println("\nShutting down")
}

// startWatcher wires debounced vault changes into scene rebuilds
func startWatcher(ctx context.Context, root string, sc *scene.Scene) error {
	vw, err := watcher.NewVaultWatcher(root)
	if err != nil {
		return err
	}
	if err := vw.Start(ctx); err != nil {
		return err
	}

	debouncer := watcher.NewDebouncer(vw.Events(), 500*time.Millisecond, 3*time.Second)
	debouncer.Start(ctx)

	go func() {
		for event := range debouncer.Output() {
			logging.Info("vault changed, rebuilding", "files", len(event.Paths))
			if err := sc.Rebuild(ctx); err != nil {
				logging.Error("rebuild after vault change failed", "error", err)
			}
		}
	}()
	return nil
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "linux":
		cmd = "xdg-open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		logging.Warn("cannot open browser on platform", "platform", runtime.GOOS)
		return
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		logging.Warn("failed to open browser", "error", err)
	}
}
