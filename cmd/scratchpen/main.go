// ABOUTME: CLI entrypoint for the scratchpen playground server.
// ABOUTME: Wires together the session store, snapshot database, directory watcher, TUI console, and signal handling.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scratchpen/scratchpen/editor"
	"github.com/scratchpen/scratchpen/pad"
	"github.com/scratchpen/scratchpen/store"
	"github.com/scratchpen/scratchpen/tui"
	"github.com/scratchpen/scratchpen/watch"
)

var version = "dev"

// cliConfig holds configuration parsed from flags.
type cliConfig struct {
	port        int
	bind        string
	dataDir     string
	watchDir    string
	delayMS     int
	noPersist   bool
	tuiMode     bool
	showVersion bool
}

func main() {
	loadDotEnv(".env")

	cfg := parseFlags()

	if cfg.showVersion {
		fmt.Printf("scratchpen %s\n", version)
		os.Exit(0)
	}

	os.Exit(run(cfg))
}

// parseFlags parses command-line flags and returns a populated cliConfig.
func parseFlags() cliConfig {
	var cfg cliConfig

	fs := flag.NewFlagSet("scratchpen", flag.ContinueOnError)
	fs.IntVar(&cfg.port, "port", 0, "Listen port on 127.0.0.1 (default: 3475)")
	fs.StringVar(&cfg.bind, "bind", "", "Full bind address, overrides -port")
	fs.StringVar(&cfg.dataDir, "data-dir", "", "Snapshot database directory (default: $XDG_DATA_HOME/scratchpen)")
	fs.StringVar(&cfg.watchDir, "watch", "", "Watch a directory and mirror changed files into a pad")
	fs.IntVar(&cfg.delayMS, "delay", 0, "Preview debounce delay in milliseconds (default: 400)")
	fs.BoolVar(&cfg.noPersist, "no-persist", false, "Disable snapshot persistence")
	fs.BoolVar(&cfg.tuiMode, "tui", false, "Run with the interactive terminal console")
	fs.BoolVar(&cfg.showVersion, "version", false, "Print version and exit")

	fs.Usage = func() {
		printHelp(os.Stderr, version)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	return cfg
}

// run builds the server from environment and flags, then serves until
// interrupted. Returns an exit code.
func run(cfg cliConfig) int {
	envCfg, err := editor.ConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	// Flags take precedence over environment variables.
	if cfg.bind != "" {
		envCfg.Bind = cfg.bind
	} else if cfg.port != 0 {
		envCfg.Bind = fmt.Sprintf("127.0.0.1:%d", cfg.port)
	}
	if cfg.delayMS > 0 {
		envCfg.RenderDelay = time.Duration(cfg.delayMS) * time.Millisecond
	}
	if cfg.dataDir != "" {
		envCfg.DataDir = cfg.dataDir
	}

	var snaps *store.Store
	if !cfg.noPersist {
		dataDir, err := resolveDataDir(envCfg.DataDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not resolve data dir: %v\n", err)
		} else {
			if err := os.MkdirAll(dataDir, 0o755); err != nil {
				fmt.Fprintf(os.Stderr, "warning: could not create data dir: %v\n", err)
			} else {
				snaps, err = store.Open(filepath.Join(dataDir, "scratchpen.db"))
				if err != nil {
					fmt.Fprintf(os.Stderr, "warning: snapshots disabled: %v\n", err)
					snaps = nil
				}
			}
		}
	}
	if snaps != nil {
		defer snaps.Close()
	}

	storeOpts := []editor.StoreOption{
		editor.WithRenderDelay(envCfg.RenderDelay),
		editor.WithSaver(editor.SaverFromSnapshots(snaps)),
	}

	// In TUI mode the console observes store activity through the bridge.
	var bridge *tui.EventBridge
	var program *tea.Program
	if cfg.tuiMode {
		model := tui.NewAppModel(envCfg.Bind)
		program = tea.NewProgram(model, tea.WithAltScreen())
		bridge = tui.NewEventBridge(program.Send)
		storeOpts = append(storeOpts, editor.WithEvents(func(event, sessionID string) {
			bridge.Notify(tui.EventType(event), sessionID, "")
		}))
	}

	sessions := editor.NewStore(envCfg.MaxSessions, envCfg.SessionTTL, storeOpts...)
	stopCleanup := sessions.StartCleanup(10 * time.Minute)
	defer stopCleanup()

	serverOpts := []editor.ServerOption{}
	if snaps != nil {
		serverOpts = append(serverOpts, editor.WithSnapshots(snaps))
	}
	srv := editor.NewServer(sessions, serverOpts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	// Watch mode mirrors a local directory into a dedicated pad.
	if cfg.watchDir != "" {
		sess := srv.CreatePad(pad.NewFileSet(), pad.DefaultUIState())
		apply := watch.ApplyTo(sess)
		watcher, err := watch.New(cfg.watchDir, func(name string, kind pad.Kind, content string) error {
			if err := apply(name, kind, content); err != nil {
				return err
			}
			if bridge != nil {
				bridge.Notify(tui.EventWatch, sess.ID, name+kind.Ext())
			}
			return nil
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		watcher.Start()
		defer func() { _ = watcher.Stop() }()
		fmt.Fprintf(os.Stderr, "watching %s -> http://%s/pads/%s\n", cfg.watchDir, envCfg.Bind, sess.ID)
	}

	httpServer := &http.Server{
		Addr:    envCfg.Bind,
		Handler: srv,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	if cfg.tuiMode {
		// Serve in the background; the TUI owns the terminal until quit.
		errCh := make(chan error, 1)
		go func() {
			errCh <- httpServer.ListenAndServe()
		}()

		if _, err := program.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		cancel()
		if err := <-errCh; err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Fprintf(os.Stderr, "scratchpen listening on http://%s\n", envCfg.Bind)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	return 0
}
