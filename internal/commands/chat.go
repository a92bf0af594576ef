package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diogo/geminichat/internal/logger"
)

// NewChatCmd creates the interactive chat command
func NewChatCmd(deps *Dependencies, opts *rootOptions) *cobra.Command {
	deps = deps.withDefaults()
	if opts == nil {
		opts = &rootOptions{}
	}

	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session against the chat backend.

Enter sends, Ctrl+L or /clear clears the conversation, Ctrl+Y copies the
last reply. Type 'exit', 'quit', or press Esc or Ctrl+C to end the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(cmd, deps, opts.backend)

			// The alt screen owns stdout, so diagnostics go to a file
			log, closeLog, err := logger.NewFileLogger(cfg.LogFile, cfg.Verbose)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v (logging disabled)\n", err)
				log, closeLog = zap.NewNop(), func() error { return nil }
			}
			defer func() { _ = closeLog() }()

			client, err := deps.NewClient(cfg, log)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			defer client.Close()

			log.Info("chat session started", zap.String("backend", client.URL()))
			return deps.TUI.RunChat(cmd.Context(), client, cfg, log)
		},
	}
}
