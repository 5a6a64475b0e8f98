// lokitd: HTTP service that merges machine translations into gettext PO
// catalogs and batch-translates UI strings through AI chat providers.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset = "\033[0m"
	colorRed   = "\033[0;31m"
)

func logError(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lokitd",
		Short: "Localization service: PO catalog merge and AI batch translation",
		Long: `lokitd: localization service for gettext PO catalogs.

Endpoints:
  POST /api/download     Merge a JSON translation mapping into a PO catalog
  POST /api/translation  Translate an array of UI strings with an AI provider
  GET  /healthz          Liveness probe

AI Providers (OpenAI-compatible chat completions):
  DeepSeek     https://api.deepseek.com
  OpenAI       https://api.openai.com/v1
  Groq         https://api.groq.com/openai/v1
  OpenRouter   https://openrouter.ai/api/v1
  Ollama       http://localhost:11434/v1

More providers can be added in lokitd.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		logError(os.Stderr, "%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "lokitd version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}

	return cmd
}
