package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"farchat/chatapi"
	"farchat/config"
	"farchat/model"
	"farchat/ui"
)

const (
	Version = "v0.01.00"
	License = "Apache-2.0"
)

var (
	verbose bool

	// logger is the stderr logger for non-interactive subcommands
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:     "farchat",
	Short:   "Terminal chat client for spreadsheet analysis",
	Version: Version,
	Long: `farchat talks to a chat endpoint that can run Sum, Average and
LinearRegression over an attached spreadsheet, with optional Function
Augmented Reasoning (FAR).

Run without arguments to start the interactive chat interface.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The interactive UI logs to the debug file only
		if cmd == cmd.Root() {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging for subcommands")
	rootCmd.AddCommand(benchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runChat() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize debug logging after config is loaded
	config.InitDebugLog(cfg.DataDir())
	defer config.CloseDebugLog()

	client, err := chatapi.NewClient(cfg.ChatURL(), nil)
	if err != nil {
		errorMsg := fmt.Sprintf("The chat endpoint is not usable:\n\n%v\n\n"+
			"Fix [endpoint] in %s\nor set FARCHAT_ENDPOINT.",
			err, config.GetUserConfigPath(cfg.DataDir()))
		return showErrorModal("Configuration Error", errorMsg)
	}

	if config.DebugLog != nil {
		config.DebugLog.Infow("Starting farchat", "version", Version, "endpoint", client.Endpoint(), "functions", cfg.Functions)
	}

	appModel := model.NewModel(cfg, client, Version, License)
	defer appModel.Shutdown()

	p := tea.NewProgram(
		ui.NewAppView(appModel),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run program: %w", err)
	}

	return nil
}

func showErrorModal(title, message string) error {
	p := tea.NewProgram(
		ui.NewErrorModal(title, message),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to show error: %w", err)
	}
	return nil
}
