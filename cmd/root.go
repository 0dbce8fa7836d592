package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sitegen",
	Short: "AI code-generation studio backend",
	Long: `sitegen serves the AI code-generation studio: a thin backend that
proxies chat-completion requests to multiple LLM providers and streams
generated source back to the browser over server-sent events.

Provider credentials are read from the environment (or a .env file):
  GROQ_API_KEY, OPENAI_API_KEY, DEEPSEEK_API_KEY, KIMI_API_KEY`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
