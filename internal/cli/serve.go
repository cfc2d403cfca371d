package cli

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/claude_sessions/internal/claudehistory"
	"github.com/baaaaaaaka/claude_sessions/internal/config"
	"github.com/baaaaaaaka/claude_sessions/internal/logger"
	"github.com/baaaaaaaka/claude_sessions/internal/watch"
	"github.com/baaaaaaaka/claude_sessions/internal/web"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and push project updates over WebSocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := root.loadSettings()
			if err != nil {
				return err
			}
			store, err := root.openStore()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = settings.Serve.Addr
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, store, settings, ln, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from settings, 127.0.0.1:3008)")
	return cmd
}

// serve runs the API on ln and broadcasts the project list whenever the
// projects directory settles after a change.
func serve(ctx context.Context, store *claudehistory.Store, settings config.Settings, ln net.Listener, out io.Writer) error {
	log := logger.Component("serve")
	srv := web.NewServer(store, settings.UI)

	w, err := watch.New(store.ProjectsDir(), settings.Serve.Debounce, func() {
		srv.BroadcastProjects(ctx)
	})
	if err != nil {
		_ = ln.Close()
		return err
	}
	if err := w.Start(); err != nil {
		_ = w.Stop()
		_ = ln.Close()
		return err
	}
	defer func() {
		if err := w.Stop(); err != nil {
			log.Warn("stop watcher", "err", err)
		}
	}()

	_, _ = fmt.Fprintf(out, "Listening on http://%s\n", ln.Addr())
	return srv.ServeListener(ctx, ln)
}
