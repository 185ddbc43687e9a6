package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"farchat/bench"
	"farchat/config"
	"farchat/ollama"
	"farchat/storage"
)

var (
	benchPromptsFile string
	benchContextFile string
	benchModel       string
	benchHost        string
	benchNumPredict  int
	benchNoSave      bool
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Replay a prompt list against an Ollama model and record timings",
	Long: `Sends each prompt to Ollama's /api/generate endpoint without streaming
and records how long each generation took.

The default prompt list asks for sums, averages and correlations of rows of
a financial model. Use --context to place the spreadsheet text ahead of every
prompt. Results are printed as JSON lines and saved to bench.db in the data
directory.`,
	RunE: runBench,
}

var benchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved benchmark runs",
	RunE:  runBenchList,
}

var benchShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Print every result of a saved run as JSON lines",
	Args:  cobra.ExactArgs(1),
	RunE:  runBenchShow,
}

func init() {
	benchCmd.Flags().StringVar(&benchPromptsFile, "prompts", "", "File with one prompt per line (default: built-in list)")
	benchCmd.Flags().StringVar(&benchContextFile, "context", "", "File whose text is placed before every prompt")
	benchCmd.Flags().StringVar(&benchModel, "model", "", "Ollama model (default from config)")
	benchCmd.Flags().StringVar(&benchHost, "host", "", "Ollama host URL (default from config)")
	benchCmd.Flags().IntVar(&benchNumPredict, "num-predict", 0, "Maximum tokens to generate per prompt (default from config)")
	benchCmd.Flags().BoolVar(&benchNoSave, "no-save", false, "Do not store the run in bench.db")

	benchCmd.AddCommand(benchListCmd)
	benchCmd.AddCommand(benchShowCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	host := firstNonEmpty(benchHost, cfg.BenchHost)
	modelName := firstNonEmpty(benchModel, cfg.BenchModel)
	numPredict := cfg.BenchNumPredict
	if benchNumPredict > 0 {
		numPredict = benchNumPredict
	}

	prompts := bench.DefaultPrompts
	if benchPromptsFile != "" {
		prompts, err = bench.LoadPrompts(benchPromptsFile)
		if err != nil {
			return err
		}
	}

	var promptContext string
	if benchContextFile != "" {
		promptContext, err = bench.LoadContext(benchContextFile)
		if err != nil {
			return err
		}
	}

	client, err := ollama.NewClient(host, modelName, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sugar := logger.Sugar()
	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("ollama at %s is not reachable: %w", client.BaseURL(), err)
	}
	if ok, err := client.HasModel(ctx); err == nil && !ok {
		sugar.Warnw("Model not found on server, generation will likely fail", "model", modelName, "host", host)
	}

	sugar.Infow("Starting benchmark", "model", modelName, "host", host, "prompts", len(prompts), "numPredict", numPredict, "contextChars", len(promptContext))

	runner := bench.NewRunner(client, bench.Options{
		Context:    promptContext,
		NumPredict: numPredict,
		Host:       host,
	}, sugar)

	run, runErr := runner.Run(ctx, prompts)

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, result := range run.Results {
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	}

	if !benchNoSave {
		if err := saveRun(cfg, run); err != nil {
			return err
		}
	}

	sugar.Infow("Benchmark finished", "run", run.ID, "passed", run.Passed, "failed", run.Failed, "duration", run.Duration)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func saveRun(cfg *config.Config, run *bench.Run) error {
	store, err := storage.NewBenchStorage(config.GetBenchDBPath(cfg.DataDir()))
	if err != nil {
		return fmt.Errorf("failed to open bench store: %w", err)
	}
	defer store.Close()

	if err := store.SaveRun(run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

func runBenchList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := storage.NewBenchStorage(config.GetBenchDBPath(cfg.DataDir()))
	if err != nil {
		return fmt.Errorf("failed to open bench store: %w", err)
	}
	defer store.Close()

	runs, err := store.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No benchmark runs saved yet.")
		return nil
	}
	for _, run := range runs {
		fmt.Fprintf(out, "%s  %s\n", run.ID, run.Summary())
	}
	return nil
}

func runBenchShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := storage.NewBenchStorage(config.GetBenchDBPath(cfg.DataDir()))
	if err != nil {
		return fmt.Errorf("failed to open bench store: %w", err)
	}
	defer store.Close()

	run, err := store.LoadRun(args[0])
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("no run with id %s", args[0])
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, result := range run.Results {
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
