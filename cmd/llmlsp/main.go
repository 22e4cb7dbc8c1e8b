package main

import (
	"fmt"
	"os"

	_ "github.com/tliron/commonlog/simple"

	"github.com/spf13/cobra"
)

// Version will be set during the build process using ldflags
var Version = "(dev) v0.0.0"

var (
	rootCmd = &cobra.Command{
		Use:   "llm-lsp",
		Short: "A language server that serves LLM code completions",
		Long: `llm-lsp keeps the editor's open documents in sync and answers
completion requests with suggestions from a hosted model provider.`,
		SilenceUsage: true,
	}
	serverCmd = &cobra.Command{
		Use:   "server",
		Short: "Run the language server",
		Long:  `Runs the language server over stdio unless --tcp or --websocket is given.`,
		Args:  cobra.NoArgs,
		RunE:  runServer,
	}
	generateConfigCmd = &cobra.Command{
		Use:   "generate-config",
		Short: "Authenticate with a provider and store its credentials",
		Args:  cobra.NoArgs,
		RunE:  runGenerateConfig,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version of the program",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("llm-lsp server version %s\n", Version)
		},
	}

	providerName   string
	tcpAddress     string
	wsAddress      string
	logfile        string
	verbosity      int
	traceFile      string
	settingsFile   string
	configProvider string
)

func init() {
	serverCmd.Flags().StringVar(&providerName, "provider", "codeium", "Completion provider to use")
	serverCmd.Flags().StringVar(&tcpAddress, "tcp", "", "Listen on a TCP address instead of stdio")
	serverCmd.Flags().StringVar(&wsAddress, "websocket", "", "Listen on a WebSocket address instead of stdio")
	serverCmd.Flags().StringVar(&logfile, "logfile", "", "Path to log file")
	serverCmd.Flags().IntVarP(&verbosity, "verbose", "v", 1, "Log verbosity (0 quiet, higher is louder)")
	serverCmd.Flags().StringVar(&traceFile, "trace-file", "", "Write traces and metrics to this file")
	serverCmd.Flags().StringVar(&settingsFile, "settings", "", "JSON file with default settings")
	serverCmd.MarkFlagsMutuallyExclusive("tcp", "websocket")

	generateConfigCmd.Flags().StringVar(&configProvider, "provider", "", "Provider to authenticate with (prompted when empty)")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(generateConfigCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
