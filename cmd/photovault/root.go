package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"photovault/internal/config"
	"photovault/internal/convert"
	"photovault/internal/engine"
	"photovault/internal/ledger"
	"photovault/internal/logging"
	"photovault/internal/metadata"
	"photovault/internal/placement"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "photovault <source_dir> <target_dir> [dir_suffix]",
		Short:         "Deduplicate and archive photos into a date-structured tree",
		Args:          cobra.RangeArgs(2, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `photovault copies new photo and video files from a source directory into a
date-structured archive, skipping files it has archived before. Progress and
diagnostics go to the log file; a run prints nothing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchive(cmd, configFlag, args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newHistoryCommand(&configFlag))
	rootCmd.AddCommand(newConfigCommand(&configFlag))

	return rootCmd
}

func runArchive(cmd *cobra.Command, configPath string, args []string) error {
	sourceDir, err := requireDirectory(args[0], "source directory")
	if err != nil {
		return err
	}
	targetDir, err := requireDirectory(args[1], "target directory")
	if err != nil {
		return err
	}
	suffix := ""
	if len(args) > 2 {
		suffix = args[2]
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if suffix == "" {
		suffix = cfg.Archive.DirSuffix
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	logger = logger.With(logging.String(logging.FieldRunID, uuid.NewString()))

	logger.Info("starting archive run",
		logging.String("source_dir", sourceDir),
		logging.String("target_dir", targetDir),
		logging.String("dir_suffix", suffix))

	store := ledger.Open(cfg.Paths.StateFile, logger)
	policy := placement.New(placement.Options{
		Root:               targetDir,
		Suffix:             suffix,
		RawExtension:       cfg.Archive.RawExtension,
		ConvertedExtension: cfg.Archive.ConvertedExtension,
		Converter:          convert.NewCLI(convert.WithBinary(cfg.Conversion.Binary)),
		Dates:              metadata.NewExifReader(),
	}, logger)

	eng, err := engine.New(store, policy, logger)
	if err != nil {
		return err
	}

	if _, err := eng.Run(cmd.Context(), sourceDir); err != nil {
		logging.ErrorWithContext(logger, "archive run failed", "run_failed", logging.Error(err))
		return err
	}
	return nil
}

// requireDirectory enforces the startup contract: both directories must
// already exist. Their absence aborts the run before any state is touched.
func requireDirectory(path, label string) (string, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", label, err)
	}
	info, err := os.Stat(expanded)
	if err != nil {
		return "", fmt.Errorf("%s %s does not exist: %w", label, path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s %s is not a directory", label, path)
	}
	return expanded, nil
}
