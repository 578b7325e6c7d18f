package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	debugMode  bool
	serverURL  string
)

func main() {
	rootCommand := newRootCommand()
	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to execute a command: %+v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "revisit",
		Short:         "Track what to review and when",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debugMode)
			return nil
		},
	}
	flags := rootCommand.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default is ./config.yml or $HOME/.config/revisit/config.yml)")
	flags.BoolVar(&debugMode, "debug", false, "enable debug logging")
	flags.StringVar(&serverURL, "server", "", "URL of a running revisit-server to send commands to")

	rootCommand.AddCommand(
		newSubjectsCommand(),
		newItemsCommand(),
		newRemoveCommand(),
		newListCommand(),
		newValidateCommand(),
		newReportCommand(),
		newSyncCommand(),
		newAnalyzeCommand(),
	)
	return rootCommand
}

func setupLogger(debugMode bool) {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	}))
	slog.SetDefault(logger)
}
