package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/baaaaaaaka/claude_sessions/internal/claudehistory"
	"github.com/baaaaaaaka/claude_sessions/internal/config"
	"github.com/baaaaaaaka/claude_sessions/internal/logger"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

type rootOptions struct {
	claudeDir    string
	settingsPath string
	logFile      string
	debug        bool
	pretty       bool
}

func Execute() int {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		return exitCode(err)
	}
	return 0
}

// exitCode maps store failures onto distinct process exit codes.
func exitCode(err error) int {
	switch claudehistory.KindOf(err) {
	case claudehistory.KindNotFound:
		return 3
	case claudehistory.KindConflict:
		return 4
	case claudehistory.KindInvalidArgument:
		return 2
	}
	return 1
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "claude-sessions",
		Short:         "Browse and manage Claude Code projects and sessions",
		SilenceErrors: false,
		SilenceUsage:  true,
		Version:       buildVersion(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger.SetDebug(opts.debug)
			return logger.Init(opts.logFile)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			logger.Close()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.claudeDir, "claude-dir", "", "Override Claude data dir (default: $CLAUDE_DIR or ~/.claude)")
	cmd.PersistentFlags().StringVar(&opts.settingsPath, "settings", "", "Override settings file path (default: OS user config dir)")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "Write logs to this file instead of stderr")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(
		newProjectsCmd(opts),
		newSessionsCmd(opts),
		newMessagesCmd(opts),
		newRenameCmd(opts),
		newDeleteSessionCmd(opts),
		newDeleteProjectCmd(opts),
		newAddCmd(opts),
		newServeCmd(opts),
		newBrowseCmd(opts),
	)

	return cmd
}

func buildVersion() string {
	v := version
	if commit != "" {
		v += " (" + commit + ")"
	}
	if date != "" {
		v += " " + date
	}
	return v
}

func (o *rootOptions) openStore() (*claudehistory.Store, error) {
	dir, err := claudehistory.ResolveClaudeDir(o.claudeDir)
	if err != nil {
		return nil, err
	}
	return claudehistory.NewStore(claudehistory.Options{ClaudeDir: dir})
}

func (o *rootOptions) loadSettings() (config.Settings, error) {
	s, err := config.LoadSettings(o.settingsPath)
	if err != nil {
		return s, fmt.Errorf("load settings: %w", err)
	}
	return s, nil
}

// writeJSON prints v as one line, or indented when asked to or when out is a
// terminal.
func (o *rootOptions) writeJSON(out io.Writer, v any) error {
	var (
		data []byte
		err  error
	)
	if o.pretty || isTerminal(out) {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
