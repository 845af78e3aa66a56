package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/learnstack/pagegen/internal/pipeline"
	"github.com/learnstack/pagegen/internal/store"
)

var (
	buildFresh bool
	buildJSON  bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Process changed source files and rebuild the manifest",
	Long: `build hashes every source file, reprocesses the ones whose content
changed since the last run, and rebuilds the manifest from the cache. Use
--fresh to discard the cache and process everything from scratch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.New(cfg.CacheDir)
		if err != nil {
			return err
		}
		if buildFresh {
			logger.Info("clearing cache for a fresh build", "dir", st.Dir())
			if err := st.Clear(); err != nil {
				return err
			}
		}

		runner := pipeline.New(cfg, st, logger)
		snap, err := runner.Run(cmd.Context())
		if err != nil {
			return err
		}

		if buildJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}

		fmt.Printf("processed %d, skipped %d, failed %d (%d pages, %d tutorial links) in %dms\n",
			snap.Processed, snap.Skipped, snap.Failed, snap.Pages, snap.Tutorials, snap.DurationMs)
		for _, e := range snap.Errors {
			fmt.Fprintln(os.Stderr, "failed:", e)
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().BoolVar(&buildFresh, "fresh", false, "discard the cache and rebuild everything")
	buildCmd.Flags().BoolVar(&buildJSON, "json", false, "print the run summary as JSON")
	rootCmd.AddCommand(buildCmd)
}
