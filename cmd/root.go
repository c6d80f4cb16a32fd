// Package cmd wires the unframe CLI to the harness core.
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unframe/unframe/internal/config"
	"github.com/unframe/unframe/internal/harness"
)

var cfgFile string

// Root command flags
var (
	rootDir       string
	rootExtraArgs string
	rootMaxTime   int
	rootDryRun    bool
	rootOutput    string
	rootTag       string
	rootVerbose   bool
	rootJobs      int
)

var logger *zap.Logger

// NewRootCmd creates the root command for the unframe CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "unframe",
		Short: "YAML-driven test and benchmark runner",
		Long: `unframe expands YAML test specifications into concrete tasks, one per
parameter combination, runs them as external processes under a timeout,
and classifies each as pass or fail while recording structured
performance output.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zcfg := zap.NewProductionConfig()
			zcfg.Encoding = "console"
			zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
			if rootVerbose {
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
		RunE: runRoot,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./unframe.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "tests directory")
	rootCmd.PersistentFlags().StringVarP(&rootExtraArgs, "extra-args", "e", "{}", `extra args JSON object, e.g. '{"account":"proj123","partition":"dev-g"}'`)
	rootCmd.PersistentFlags().StringVarP(&rootTag, "tag", "t", "", "run only tests matching this tag")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.Flags().IntVarP(&rootMaxTime, "maxtime", "m", 0, "seconds to wait for all tests to complete (0 waits forever)")
	rootCmd.Flags().BoolVarP(&rootDryRun, "dry-run", "n", false, "only display which tasks would run")
	rootCmd.Flags().StringVarP(&rootOutput, "output", "o", "", "performance log output directory")
	rootCmd.Flags().IntVarP(&rootJobs, "jobs", "j", 0, "tasks to run concurrently per test (0 uses config)")

	_ = rootCmd.MarkPersistentFlagRequired("dir")

	rootCmd.AddCommand(newListCmd())

	return rootCmd
}

func runRoot(cmd *cobra.Command, args []string) error {
	opts, cfg, err := loadOptions()
	if err != nil {
		return err
	}

	suite, err := harness.Load(opts, cfg, logger)
	if err != nil {
		return err
	}

	// Stop outstanding child processes on interrupt instead of leaking them.
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return suite.Run(ctx)
}

func loadOptions() (config.Options, *config.Config, error) {
	extraArgs, err := config.ParseExtraArgs(rootExtraArgs)
	if err != nil {
		return config.Options{}, nil, err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return config.Options{}, nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.LoadConfigWithFile(workDir, cfgFile)
	if err != nil {
		return config.Options{}, nil, fmt.Errorf("failed to load config: %w", err)
	}

	opts := config.Options{
		Dir:       rootDir,
		Tag:       rootTag,
		MaxTime:   time.Duration(rootMaxTime) * time.Second,
		OutputDir: rootOutput,
		DryRun:    rootDryRun,
		Verbose:   rootVerbose,
		Jobs:      rootJobs,
		ExtraArgs: extraArgs,
	}
	return opts, cfg, nil
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
