package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/claude_sessions/internal/claudehistory"
)

func newProjectsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects with their first page of sessions as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := root.openStore()
			if err != nil {
				return err
			}
			projects := store.ListProjects(cmd.Context())
			return root.writeJSON(cmd.OutOrStdout(), map[string]any{"projects": projects})
		},
	}
}

func newSessionsCmd(root *rootOptions) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "sessions <project>",
		Short: "List one page of a project's sessions as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := root.openStore()
			if err != nil {
				return err
			}
			page := store.Sessions(cmd.Context(), args[0], limit, offset)
			return root.writeJSON(cmd.OutOrStdout(), page)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", claudehistory.DefaultPageSize, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Sessions to skip")
	return cmd
}

func newMessagesCmd(root *rootOptions) *cobra.Command {
	var text, tools, raw bool
	var maxChars int

	cmd := &cobra.Command{
		Use:   "messages <project> <session>",
		Short: "Print a session's records in timestamp order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := root.openStore()
			if err != nil {
				return err
			}
			records := store.Messages(cmd.Context(), args[0], args[1])
			if !text {
				return root.writeJSON(cmd.OutOrStdout(), map[string]any{"messages": records})
			}
			settings, err := root.loadSettings()
			if err != nil {
				return err
			}
			opts := claudehistory.RenderOptions{
				ExpandTools: settings.UI.AutoExpandTools,
				Raw:         settings.UI.ShowRawParameters,
			}
			if cmd.Flags().Changed("tools") {
				opts.ExpandTools = tools
			}
			if cmd.Flags().Changed("raw") {
				opts.Raw = raw
			}
			out := claudehistory.FormatMessages(claudehistory.RenderMessages(records, opts), maxChars)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&text, "text", false, "Render as readable text instead of JSON")
	cmd.Flags().BoolVar(&tools, "tools", false, "Include tool calls and results (text mode)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Show each record as JSON (text mode)")
	cmd.Flags().IntVar(&maxChars, "max-chars", 0, "Truncate each message to this many characters (text mode)")
	return cmd
}

func newRenameCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <project> [display-name]",
		Short: "Set a project's display name; omit the name to clear it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := root.openStore()
			if err != nil {
				return err
			}
			name := ""
			if len(args) == 2 {
				name = args[1]
			}
			if err := store.Rename(args[0], name); err != nil {
				return err
			}
			return root.writeJSON(cmd.OutOrStdout(), map[string]bool{"success": true})
		},
	}
}

func newDeleteSessionCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-session <project> <session>",
		Short: "Remove a session's records from its transcript",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := root.openStore()
			if err != nil {
				return err
			}
			if err := store.DeleteSession(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			return root.writeJSON(cmd.OutOrStdout(), map[string]bool{"success": true})
		},
	}
}

func newDeleteProjectCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-project <project>",
		Short: "Delete a project that has no sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := root.openStore()
			if err != nil {
				return err
			}
			if err := store.DeleteProject(cmd.Context(), args[0]); err != nil {
				return err
			}
			return root.writeJSON(cmd.OutOrStdout(), map[string]bool{"success": true})
		},
	}
}

func newAddCmd(root *rootOptions) *cobra.Command {
	var displayName string

	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Register a project directory by hand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := root.openStore()
			if err != nil {
				return err
			}
			project, err := store.AddManually(args[0], displayName)
			if err != nil {
				return err
			}
			return root.writeJSON(cmd.OutOrStdout(), map[string]any{"success": true, "project": project})
		},
	}
	cmd.Flags().StringVar(&displayName, "name", "", "Display name for the project")
	return cmd
}
