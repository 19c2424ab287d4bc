package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"eureka/internal/config"
	"eureka/internal/engine"
	"eureka/internal/logging"
	"eureka/internal/rules"
	"eureka/internal/snapshot"
)

var (
	// Global flags
	verbose    bool
	workspace  string
	configPath string

	// Run flags
	eternal          bool
	maxCycles        int
	maxTasksPerCycle int
	timeout          time.Duration
	minPriority      int
	randomSeed       int64

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "eureka",
	Short: "eureka - an automated concept-discovery engine",
	Long: `eureka grows a knowledge base of concepts by working a prioritized
agenda of tasks. Heuristic rules examine one concept at a time, create
specializations and generalizations, conjecture about what is valuable,
and prune what is not - including the rules themselves.

Start with 'eureka init' to write a default configuration, then
'eureka run' to let the engine loose on the seed network.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg = zap.NewDevelopmentConfig()
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return logging.Initialize(workspace, resolveConfigPath())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// runCmd drives the discovery loop
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the discovery loop until the agenda drains or a limit is hit",
	Long: `Seeds the core concept network, installs the built-in rule set, and
works the agenda: highest-priority task first, every relevant heuristic
applied in order, effects folded back into the knowledge base.

The wall clock is checked between tasks only; a task in flight always
finishes. Results are snapshotted to SQLite afterwards.`,
	RunE: runDiscovery,
}

// statsCmd lists persisted run summaries
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show summaries of past runs",
	RunE:  showStats,
}

// topCmd lists the most valuable units of the latest run
var topCmd = &cobra.Command{
	Use:   "top [run-id]",
	Short: "Show the highest-worth units of a run (default: the latest)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  showTopUnits,
}

// initCmd writes a default configuration file
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file into the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.DefaultConfig()
		path := resolveConfigPath()
		if err := cfg.Save(path); err != nil {
			return err
		}
		fmt.Printf("Wrote default configuration to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", ".", "Project directory (data lives in <workspace>/.eureka)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <workspace>/.eureka/config.yaml)")

	runCmd.Flags().BoolVar(&eternal, "eternal", false, "Keep regenerating tasks when the agenda drains")
	runCmd.Flags().IntVar(&maxCycles, "max-cycles", 0, "Cycle limit, 0 uses the configured value")
	runCmd.Flags().IntVar(&maxTasksPerCycle, "max-tasks-per-cycle", 0, "Tasks per cycle, 0 uses the configured value")
	runCmd.Flags().DurationVar(&timeout, "timeout", 0, "Wall-clock limit, 0 uses the configured value")
	runCmd.Flags().IntVar(&minPriority, "min-priority", 0, "Agenda insertion floor, 0 uses the configured value")
	runCmd.Flags().Int64Var(&randomSeed, "seed", 0, "Random seed for reproducible runs, 0 seeds from the clock")

	topCmd.Flags().Int("limit", 15, "Number of units to show")
	statsCmd.Flags().Int("limit", 10, "Number of runs to show")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return filepath.Join(dataDir(), "config.yaml")
}

// dataDir is where the config, logs, and snapshot database live.
func dataDir() string {
	return filepath.Join(workspace, ".eureka")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, err
	}

	// CLI flags win over file values.
	if eternal {
		cfg.Run.EternalMode = true
	}
	if maxCycles > 0 {
		cfg.Run.MaxCycles = maxCycles
	}
	if maxTasksPerCycle > 0 {
		cfg.Run.MaxTasksPerCycle = maxTasksPerCycle
	}
	if timeout > 0 {
		cfg.Run.Timeout = timeout.String()
	}
	if minPriority > 0 {
		cfg.Agenda.MinPriority = minPriority
	}
	if randomSeed != 0 {
		cfg.Run.RandomSeed = randomSeed
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runDiscovery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng := engine.New(cfg, engine.WithLogger(logger))
	eng.SeedCoreNetwork()
	eng.SeedInitialTasks()
	if err := rules.RegisterAll(eng.Heuristics()); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetTimeout())
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now().UTC()
	stats, runErr := eng.Run(ctx)
	finished := time.Now().UTC()

	// A timeout or interrupt is a normal way for a run to end.
	if runErr != nil && !errors.Is(runErr, context.DeadlineExceeded) && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	store, err := snapshot.NewStore(dataDir())
	if err != nil {
		return err
	}
	defer store.Close()

	runID, err := store.SaveRun(snapshot.RunInfo{
		StartedAt:         started,
		FinishedAt:        finished,
		Cycles:            stats.Cycles,
		TasksExecuted:     stats.TasksExecuted,
		TasksCompleted:    stats.TasksCompleted,
		TasksFailed:       stats.TasksFailed,
		TasksAborted:      stats.TasksAborted,
		UnitsAtStart:      stats.UnitsAtStart,
		UnitsAtEnd:        stats.UnitsAtEnd,
		DuplicatesRemoved: stats.DuplicatesRemoved,
	})
	if err != nil {
		return err
	}
	if err := store.SaveUnits(runID, eng.Units()); err != nil {
		return err
	}
	if err := store.SaveHeuristicRecords(runID, eng.Heuristics()); err != nil {
		return err
	}

	fmt.Printf("Run %s finished in %s\n", runID, finished.Sub(started).Round(time.Millisecond))
	fmt.Printf("  cycles:             %d\n", stats.Cycles)
	fmt.Printf("  tasks executed:     %d (%d completed, %d failed, %d aborted)\n",
		stats.TasksExecuted, stats.TasksCompleted, stats.TasksFailed, stats.TasksAborted)
	fmt.Printf("  units:              %d -> %d\n", stats.UnitsAtStart, stats.UnitsAtEnd)
	fmt.Printf("  duplicates removed: %d\n", stats.DuplicatesRemoved)
	return nil
}

func showStats(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := snapshot.NewStore(dataDir())
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet. Try 'eureka run'.")
		return nil
	}

	for _, r := range runs {
		fmt.Printf("%s  %s  cycles=%d tasks=%d (ok=%d fail=%d) units=%d->%d dups=%d\n",
			r.ID, r.StartedAt.Format(time.RFC3339), r.Cycles, r.TasksExecuted,
			r.TasksCompleted, r.TasksFailed, r.UnitsAtStart, r.UnitsAtEnd, r.DuplicatesRemoved)
	}
	return nil
}

func showTopUnits(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := snapshot.NewStore(dataDir())
	if err != nil {
		return err
	}
	defer store.Close()

	var runID string
	if len(args) == 1 {
		runID = args[0]
	} else {
		runs, err := store.ListRuns(1)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet. Try 'eureka run'.")
			return nil
		}
		runID = runs[0].ID
	}

	units, err := store.TopUnits(runID, limit)
	if err != nil {
		return err
	}
	if len(units) == 0 {
		fmt.Printf("Run %s recorded no units.\n", runID)
		return nil
	}

	fmt.Printf("Top units of run %s:\n", runID)
	for _, u := range units {
		fmt.Printf("  %4d  %-32s %v\n", u.Worth, u.Name, u.Isa)
	}
	return nil
}
