package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/claude_sessions/internal/claudehistory"
	"github.com/baaaaaaaka/claude_sessions/internal/config"
	"github.com/baaaaaaaka/claude_sessions/internal/logger"
	"github.com/baaaaaaaka/claude_sessions/internal/reconcile"
	"github.com/baaaaaaaka/claude_sessions/internal/tui"
	"github.com/baaaaaaaka/claude_sessions/internal/watch"
)

var browseFn = tui.Browse

func newBrowseCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse projects and sessions in a terminal UI",
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
			if root.logFile == "" {
				// The screen belongs to the browser.
				logger.SetOutput(io.Discard)
			}
			return runBrowse(cmd.Context(), root, store, settings, cmd.OutOrStdout())
		},
	}
}

// runBrowse opens the browser with a live feed of directory changes and
// prints the chosen session, if any, as JSON.
func runBrowse(ctx context.Context, root *rootOptions, store *claudehistory.Store, settings config.Settings, out io.Writer) error {
	changes := make(chan struct{}, 1)
	w, err := watch.New(store.ProjectsDir(), settings.Serve.Debounce, func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		_ = w.Stop()
		return err
	}
	defer func() { _ = w.Stop() }()

	selection, err := browseFn(ctx, tui.Options{
		Store:   store,
		Holder:  reconcile.NewHolder(nil),
		Changes: changes,
		UI:      settings.UI,
		Version: version,
	})
	if err != nil || selection == nil {
		return err
	}
	return root.writeJSON(out, selection)
}
