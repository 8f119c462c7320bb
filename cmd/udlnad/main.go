// Command udlnad serves one or more local media directories over
// DLNA/UPnP: SSDP discovery, a ContentDirectory/ConnectionManager SOAP
// surface, and range-aware HTTP streaming.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/udlna/udlna/conf"
	"github.com/udlna/udlna/log"
	"github.com/udlna/udlna/media"
	"github.com/udlna/udlna/scanner"
	"github.com/udlna/udlna/server/dlna"
)

// rescanDebounce coalesces bursts of filesystem events (e.g. an
// extraction tool writing many files in quick succession) into a
// single rescan.
const rescanDebounce = 2 * time.Second

var cliArgs conf.CLIArgs

func main() {
	root := &cobra.Command{
		Use:   "udlnad [paths...]",
		Short: "A minimal DLNA/UPnP media server",
		Args:  cobra.MinimumNArgs(1),
		// main prints the single "error: ..." line itself.
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliArgs.Paths = args
			return run(cliArgs)
		},
	}

	var port int
	var name string
	root.Flags().IntVar(&port, "port", 0, "HTTP port (default 8200)")
	root.Flags().StringVar(&name, "name", "", "friendly server name")
	root.Flags().StringVar(&cliArgs.ConfigPath, "config", "", "path to config file")
	root.Flags().BoolVar(&cliArgs.Localhost, "localhost", false, "bind HTTP to 127.0.0.1 only")

	root.PreRun = func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("port") {
			cliArgs.Port = &port
		}
		if cmd.Flags().Changed("name") {
			cliArgs.Name = &name
		}
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args conf.CLIArgs) error {
	log.SetLevelString(os.Getenv("UDLNA_LOG_LEVEL"))

	for _, p := range args.Paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("invalid path: %s", p)
		}
	}

	var fileCfg *conf.FileConfig
	if path, ok := conf.FindConfigFile(args.ConfigPath); ok {
		fc, err := conf.LoadFile(path)
		if err != nil {
			return fmt.Errorf("cannot read config file %s: %w", path, err)
		}
		fileCfg = &fc
	}
	cfg := conf.Resolve(fileCfg, args)

	lib, stats := scanner.Scan(cfg.Paths)
	if stats.Total == 0 {
		return fmt.Errorf("no media found under %v", cfg.Paths)
	}

	hostname, _ := os.Hostname()
	router := dlna.New(lib, hostname, cfg.Name, cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var forcing atomic.Bool
	go watchForceExit(ctx, &forcing)

	watcher := scanner.NewWatcher(cfg.Paths)
	defer watcher.Close()
	go watchAndRescan(ctx, watcher, lib, cfg.Paths)

	if err := router.StartSSDP(ctx); err != nil {
		return fmt.Errorf("SSDP startup failed: %w", err)
	}

	addr := httpBindAddr(cfg)
	srv := &http.Server{Addr: addr, Handler: router.Routes()}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind HTTP listener: %w", err)
	}

	log.Info("udlna started", "name", cfg.Name, "addr", addr, "items", stats.Total)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(listener) }()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			log.Error(context.Background(), "HTTP server error", err)
		}
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	router.StopSSDP()

	return nil
}

// watchForceExit observes a second interrupt after shutdown begins and
// forces an immediate exit rather than waiting for graceful drain.
func watchForceExit(ctx context.Context, forcing *atomic.Bool) {
	<-ctx.Done()
	if !forcing.CompareAndSwap(false, true) {
		return
	}
	second, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-second.Done()
	os.Exit(1)
}

// watchAndRescan consumes filesystem change events and triggers a
// full rescan at most once per rescanDebounce, swapping the result
// into lib — the only writer of lib once the server is serving.
func watchAndRescan(ctx context.Context, w *scanner.Watcher, lib *media.Library, paths []string) {
	ticker := time.NewTicker(rescanDebounce)
	defer ticker.Stop()

	var dirty bool
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-w.Events:
			if !ok {
				return
			}
			dirty = true
		case <-ticker.C:
			if !dirty {
				continue
			}
			dirty = false
			newLib, stats := scanner.Scan(paths)
			lib.Replace(newLib.Snapshot())
			log.Info("library rescanned", "items", stats.Total)
		}
	}
}

func httpBindAddr(cfg conf.ServerConfig) string {
	host := "0.0.0.0"
	if cfg.Localhost {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("%s:%d", host, cfg.Port)
}
