package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/avinier/multibagger/config"
	"github.com/avinier/multibagger/internal/display"
	"github.com/avinier/multibagger/internal/research"
	"github.com/avinier/multibagger/internal/server"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "multibagger",
		Short: "Multibagger - multi-agent stock discovery",
		Long: `Multibagger runs a panel of specialist analysis agents over small and
mid cap stocks and ranks them by multibagger potential. Agents cover
fundamentals, management quality, policy tailwinds, smart money flows,
and technicals; their scores are weighted into a single conviction tier.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			return nil
		},
	}

	rootCmd.AddCommand(newAnalyzeCmd(cfg))
	rootCmd.AddCommand(newBatchCmd(cfg))
	rootCmd.AddCommand(newServeCmd(cfg))
	rootCmd.AddCommand(newStatusCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze SYMBOL",
		Short: "Analyze one stock symbol",
		Long: `Run the full agent panel over a single symbol and print the detailed
result. Example: multibagger analyze TANLA.NS`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			system, err := research.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			result := system.AnalyzeOne(cmd.Context(), args[0])
			fmt.Print(display.RenderResult(&result))

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
			}
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Also print the raw result as JSON")
	return cmd
}

func newBatchCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch SYMBOL [SYMBOL...]",
		Short: "Analyze a list of symbols and print the ranked report",
		Long: `Run the agent panel over multiple symbols concurrently and print the
ranked discovery report. Symbols may also be passed comma-separated.
Example: multibagger batch TANLA.NS KPIT.NS SYRMA.NS`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			system, err := research.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			symbols := splitSymbols(args)
			report := system.AnalyzeBatch(cmd.Context(), symbols)
			fmt.Print(display.RenderReport(report))
			return nil
		},
	}
	return cmd
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP bridge server",
		Long:  `Serve the analysis system as a JSON API for external frontends.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(cfg).ListenAndServe(ctx)
		},
	}
}

func newStatusCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show system status",
		RunE: func(cmd *cobra.Command, args []string) error {
			system, err := research.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(system.Status(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Results dir:        %s\n", cfg.ResultsDir)
			fmt.Printf("Data cache dir:     %s\n", cfg.DataCacheDir)
			fmt.Printf("Backend order:      %s\n", strings.Join(cfg.BackendOrder, " -> "))
			fmt.Printf("Groq key set:       %t\n", cfg.GroqAPIKey != "")
			fmt.Printf("DeepSeek key set:   %t\n", cfg.DeepSeekAPIKey != "")
			fmt.Printf("OpenAI key set:     %t\n", cfg.OpenAIAPIKey != "")
			fmt.Printf("NewsAPI key set:    %t\n", cfg.NewsAPIKey != "")
			fmt.Printf("Agent weights:      %v\n", cfg.AgentWeights)
			fmt.Printf("Thresholds:         high=%.2f watchlist=%.2f strong=%.2f\n",
				cfg.HighConvictionThreshold, cfg.WatchlistThreshold, cfg.StrongAgentThreshold)
			fmt.Printf("Batch workers:      %d\n", cfg.BatchWorkers)
			fmt.Printf("HTTP addr:          %s\n", cfg.HTTPAddr)
			fmt.Printf("Cache enabled:      %t\n", cfg.CacheEnabled)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Println("Configuration OK")
			if !cfg.HasInferenceCredentials() {
				fmt.Println("Warning: no inference credentials, the system will run degraded")
			}
			return nil
		},
	})

	return configCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Multibagger v1.0.0")
			fmt.Println("Multi-agent stock discovery system")
		},
	}
}

// splitSymbols flattens args, accepting both space and comma separation.
func splitSymbols(args []string) []string {
	var symbols []string
	for _, arg := range args {
		for _, s := range strings.Split(arg, ",") {
			s = strings.TrimSpace(s)
			if s != "" {
				symbols = append(symbols, s)
			}
		}
	}
	return symbols
}
