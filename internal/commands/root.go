// Package commands provides CLI commands for geminichat.
package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diogo/geminichat/internal/config"
	"github.com/diogo/geminichat/internal/logger"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootOptions holds the flags of the root command
type rootOptions struct {
	backend string
	output  string
	file    string
	raw     bool
}

// NewRootCmd builds the full command tree
func NewRootCmd(deps *Dependencies) *cobra.Command {
	deps = deps.withDefaults()
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "geminichat [prompt]",
		Short: "Terminal and web front-end for a Gemini chat backend",
		Long: `geminichat talks to a chat backend that answers POST /api/chat with
{"reply": "..."}. It can send a single message, run an interactive chat
in the terminal, or serve the backend itself.

Examples:
  geminichat chat                       Start interactive chat
  geminichat serve                      Run the chat backend on :8080
  geminichat "What is Go?"              Send a single message
  geminichat -f prompt.md               Read the message from a file
  cat prompt.md | geminichat            Read the message from stdin
  geminichat "Hello" -o reply.md        Save the reply to a file
  geminichat --backend http://host:9000 "Hi"`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(cmd.OutOrStdout(), "geminichat %s (built %s)\n", Version, BuildTime)
				return nil
			}

			prompt, ok, err := readPrompt(cmd, opts, args)
			if err != nil {
				return err
			}
			if !ok {
				return cmd.Help()
			}

			cfg := loadConfig(cmd, deps, opts.backend)
			return runQuery(cmd, deps, cfg, opts, prompt)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "Chat backend base URL (overrides config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Save reply to file")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read message from file")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Print the raw reply without styling")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(NewChatCmd(deps, opts))
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewConfigCmd(deps))

	return cmd
}

// rootCmd represents the base command
var rootCmd = NewRootCmd(NewDependencies())

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// readPrompt picks the message from --file, piped stdin or the positional
// argument, in that order. ok is false when none was given.
func readPrompt(cmd *cobra.Command, opts *rootOptions, args []string) (string, bool, error) {
	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if len(args) > 0 {
		return args[0], true, nil
	}

	if hasPipedInput(cmd.InOrStdin()) {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), true, nil
	}

	return "", false, nil
}

// hasPipedInput reports whether in carries data rather than a terminal
func hasPipedInput(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return in != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// loadConfig reads the user config and applies the --backend override. A
// broken config file is reported and the defaults are used.
func loadConfig(cmd *cobra.Command, deps *Dependencies, backend string) config.Config {
	cfg, err := deps.LoadConfig()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v (using defaults)\n", err)
	}
	if backend != "" {
		cfg.BackendURL = strings.TrimRight(backend, "/")
	}
	return cfg
}

// verboseLogger logs debug output to stderr when verbose is set
func verboseLogger(cmd *cobra.Command, verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	return logger.NewWriterLogger(cmd.ErrOrStderr(), true, false)
}
