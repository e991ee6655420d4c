// Photo Archiver - A tool to archive camera output by modification date
//
// This tool walks an input directory for photos, and copies each one into a
// date partitioned archive (<output>/YYYY/YYYY-MM-DD/), checking that every
// copy has exactly the size of its source.
//
// Features:
//   - JPG, DNG and NEF discovery (case-insensitive extensions)
//   - Sidecar directories ("jpg", "DxO") archived as a single unit
//   - Permission and modification time preserving copies
//   - Size verification of every copy, stopping at the first failure
//   - Camera make/model annotation from EXIF
//
// Usage:
//
//	photo-archiver <input_path> <output_path>
//
// Produced directory structure:
//
//	<output_path>/
//	└── 2024/
//	    └── 2024-03-05/
//	        ├── IMG_001.jpg
//	        └── jpg/          <- sidecar directory, copied whole
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"photo-archiver/internal/archive"
	"photo-archiver/internal/discover"
	"photo-archiver/internal/logging"
)

// =============================================================================
// Command
// =============================================================================

// newRootCmd builds the command. Any argument count other than two prints
// usage and succeeds without doing anything.
func newRootCmd(fs afero.Fs, log zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "photo-archiver <input_path> <output_path>",
		Short: "Archive photos into YYYY/YYYY-MM-DD directories",
		Long: "Photo Archiver copies JPG, DNG and NEF files found under input_path into\n" +
			"output_path/YYYY/YYYY-MM-DD/ by modification date. Directories named\n" +
			"\"jpg\" or \"DxO\" are copied as one unit. Every copy is verified by size\n" +
			"and the run stops at the first failure.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,

		// Both arguments are paths and may start with "-".
		DisableFlagParsing: true,

		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && (args[0] == "-h" || args[0] == "--help") {
				return cmd.Help()
			}
			if len(args) != 2 {
				return cmd.Usage()
			}
			return run(fs, log, args[0], args[1])
		},
	}
}

// =============================================================================
// Core Archive Logic
// =============================================================================

// run discovers every asset under input, then archives them one by one below
// output. A missing input is reported and is not an error.
func run(fs afero.Fs, log zerolog.Logger, input, output string) error {
	exists, err := afero.Exists(fs, input)
	if err != nil {
		return fmt.Errorf("check input %s: %w", input, err)
	}
	if !exists {
		log.Warn().Str("input", input).Msg("input path does not exist")
		return nil
	}

	inputAbs, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	outputAbs, err := filepath.Abs(output)
	if err != nil {
		return err
	}

	log.Info().Str("in", inputAbs).Str("out", outputAbs).Msg("photo archiver")

	assets, err := discover.New(fs, discover.WithLogger(log)).Discover(inputAbs)
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}
	log.Info().Int("assets", len(assets)).Msg("found assets to archive")

	stats, err := archive.New(fs, outputAbs, archive.WithLogger(log)).Run(assets)
	if err != nil {
		// Run stops at assets[stats.Assets]; everything after it is untouched.
		log.Warn().
			Int("archived", stats.Assets).
			Str("failed", assets[stats.Assets].Path).
			Int("untouched", len(assets)-stats.Assets-1).
			Msg("stopping")
		return fmt.Errorf("archive: %w", err)
	}

	log.Info().Int("assets", stats.Assets).Int64("bytes", stats.Bytes).Msg("done")
	return nil
}

// =============================================================================
// Main Entry Point
// =============================================================================

func main() {
	log := logging.New(os.Stdout, uuid.NewString())

	if err := newRootCmd(afero.NewOsFs(), log).Execute(); err != nil {
		log.Error().Err(err).Msg("aborted")
		os.Exit(1)
	}
}
