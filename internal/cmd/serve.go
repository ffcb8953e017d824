package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atikulmunna/logloom/internal/filterstore"
	"github.com/atikulmunna/logloom/internal/hub"
	"github.com/atikulmunna/logloom/internal/server"
	"github.com/atikulmunna/logloom/internal/session"
	"github.com/atikulmunna/logloom/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve [paths...]",
	Short: "Serve the merged view over HTTP with live updates",
	Long: `Start the web viewer. Files given on the command line are loaded at
startup; more can be uploaded through the UI or POST /api/files.

Examples:
  logloom serve
  logloom serve app.log db.log --port 8080
  logloom serve app.log -f app.log=errors.json --watch`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "7860", "port to listen on")
	serveCmd.Flags().Bool("watch", false, "reload filter files when they change on disk")
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// --- Set up context with graceful shutdown ---
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nlogloom shutting down...")
		cancel()
	}()

	// --- Load files given up front ---
	sess := newSession()
	if len(args) > 0 {
		var err error
		if sess, err = loadSession(cmd, args); err != nil {
			return err
		}
	}

	// --- Wire session changes to websocket clients ---
	var srv *server.Server
	h := hub.New(func() hub.View { return srv.View() })
	srv = server.New(sess, h)
	sess.OnChange(h.Notify)
	go h.Start(ctx)

	files, err := filterFiles(cmd)
	if err != nil {
		return err
	}
	applyOnLoad(sess, files)

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		if err := watchFilterFiles(ctx, sess, files); err != nil {
			return fmt.Errorf("failed to watch filter files: %w", err)
		}
	}

	addr := ":" + viper.GetString("port")
	fmt.Fprintf(os.Stderr, "logloom serving %d file(s) on http://localhost%s\n", len(sess.Files()), addr)
	for _, id := range sess.Files() {
		fmt.Fprintf(os.Stderr, "   • %s (%d lines)\n", id, sess.LineCount(id))
	}

	return srv.Start(ctx, addr)
}

// applyOnLoad attaches each filter file to its log the first time that log is
// loaded, e.g. by an upload after startup. Logs already loaded are skipped.
func applyOnLoad(sess *session.Session, files map[string]string) {
	var mu sync.Mutex
	pending := make(map[string]string)
	for file, path := range files {
		if !sess.Has(file) {
			pending[file] = path
		}
	}

	sess.OnChange(func() {
		mu.Lock()
		ready := make(map[string]string)
		for file, path := range pending {
			if sess.Has(file) {
				ready[file] = path
				delete(pending, file)
			}
		}
		mu.Unlock()

		for file, path := range ready {
			chain, err := filterstore.Load(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "load filters for %s: %v\n", file, err)
				continue
			}
			sess.ReplaceFilters(file, chain)
			fmt.Fprintf(os.Stderr, "applied %d filter(s) from %s to %s\n", len(chain), path, file)
		}
	})
}

// watchFilterFiles reloads a log's chain whenever its filter file is rewritten.
func watchFilterFiles(ctx context.Context, sess *session.Session, files map[string]string) error {
	if len(files) == 0 {
		return nil
	}

	byPath := make(map[string]string, len(files))
	paths := make([]string, 0, len(files))
	for file, path := range files {
		// Watcher reports absolute paths; key the reverse lookup the same way.
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		byPath[abs] = file
		paths = append(paths, abs)
	}
	w, err := watcher.New(paths)
	if err != nil {
		return err
	}

	go w.Start(ctx)
	go func() {
		for ev := range w.Events {
			file, ok := byPath[ev.Path]
			if !ok {
				continue
			}
			chain, err := filterstore.Load(ev.Path)
			if err != nil {
				// Editors may leave a half-written file; the next write retries.
				fmt.Fprintf(os.Stderr, "reload %s: %v\n", ev.Path, err)
				continue
			}
			sess.ReplaceFilters(file, chain)
			fmt.Fprintf(os.Stderr, "reloaded %d filter(s) for %s\n", len(chain), file)
		}
	}()
	return nil
}
