package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"phenostats/adapters/excel"
	"phenostats/adapters/stats/engine"
	"phenostats/internal"
	"phenostats/internal/config"
	"phenostats/internal/testkit"
)

func main() {
	// Optional .env for local runs; environment wins over defaults either way.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "phenostats-cli",
		Short: "Cohort statistics runner for variant distance, survival and phenotype comparisons",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newDemoCmd(),
		newClassifyCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [workbook.xlsx]",
		Short: "Run the full cohort analysis on an Excel workbook",
		Long: `Run the distance comparison, survival analysis and phenotype prevalence
comparison on a cohort workbook and print the result record as JSON.

The workbook path defaults to COHORT_FILE from the environment.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			path := cfg.Paths.CohortFile
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no workbook given and COHORT_FILE is not set")
			}

			req, err := excel.NewCohortLoader(path).Load()
			if err != nil {
				return err
			}

			eng := engine.NewStatsEngine(cfg.Engine)
			analysis, err := eng.RunCohortAnalysis(context.Background(), *req)
			if err != nil {
				return err
			}

			internal.DefaultLogger.Info("analysis %s finished in %dms (%d comparisons)",
				analysis.Manifest.AnalysisID, analysis.Manifest.RuntimeMs, analysis.Manifest.TotalComparisons)
			return printJSON(analysis)
		},
	}
}

func newDemoCmd() *cobra.Command {
	var seed int64
	var groupSize int

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the analysis on a seeded synthetic cohort",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			genCfg := testkit.DefaultCohortConfig()
			genCfg.Seed = seed
			if groupSize > 0 {
				genCfg.GroupSize = groupSize
			}
			req := testkit.GenerateCohort(genCfg)

			internal.DefaultLogger.Info("generated cohort seed=%d group_size=%d", genCfg.Seed, genCfg.GroupSize)

			eng := engine.NewStatsEngine(cfg.Engine)
			analysis, err := eng.RunCohortAnalysis(context.Background(), req)
			if err != nil {
				return err
			}
			return printJSON(analysis)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "RNG seed for the synthetic cohort")
	cmd.Flags().IntVar(&groupSize, "group-size", 0, "override subjects per group")
	return cmd
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [distance...]",
		Short: "Classify variant-to-DNA distances into close/medium/far buckets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng := engine.NewDefaultStatsEngine()
			for _, arg := range args {
				distance, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return fmt.Errorf("bad distance %q: %w", arg, err)
				}
				category, err := eng.ClassifyDistance(distance)
				if err != nil {
					return err
				}
				fmt.Printf("%.2f\t%s\n", distance, category)
			}
			return nil
		},
	}
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
