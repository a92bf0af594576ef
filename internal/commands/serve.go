package commands

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diogo/geminichat/internal/config"
	"github.com/diogo/geminichat/internal/logger"
	"github.com/diogo/geminichat/internal/server"
)

// NewServeCmd creates the command running the development chat backend
func NewServeCmd() *cobra.Command {
	var (
		addr     string
		provider string
		debug    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat backend and web page",
		Long: `Serve POST /api/chat, GET /api/health and the browser chat page.

Settings come from the environment (a .env file in the working directory
is loaded first):
  GEMINICHAT_ADDR / PORT       listen address (default :8080)
  ALLOWED_ORIGIN               CORS origin (default *)
  CHAT_PROVIDER                echo, gemini or openai (default echo)
  GEMINI_API_KEY, GEMINI_MODEL
  OPENAI_API_KEY, OPENAI_MODEL
  PROVIDER_TIMEOUT_SECONDS     bound on each provider call (default 60)
  GEMINICHAT_DEBUG             debug logging`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadServerConfig()
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("provider") {
				cfg.Provider = strings.ToLower(provider)
			}
			if cmd.Flags().Changed("debug") {
				cfg.Debug = debug
			}

			log := logger.NewWriterLogger(cmd.ErrOrStderr(), cfg.Debug, false)
			defer func() { _ = log.Sync() }()

			for _, w := range cfg.Warnings() {
				log.Warn(w)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, err := server.NewProvider(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to create chat provider: %w", err)
			}

			log.Info("starting chat backend",
				zap.String("addr", cfg.Addr),
				zap.String("provider", p.Name()),
				zap.String("allowed_origin", cfg.AllowedOrigin),
				zap.Duration("provider_timeout", cfg.ProviderTimeout),
			)
			return server.New(cfg, p, log).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().StringVar(&provider, "provider", config.ProviderEcho, "Reply provider (echo, gemini, openai)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	return cmd
}
