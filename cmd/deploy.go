package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/learnstack/pagegen/internal/deploy"
	"github.com/learnstack/pagegen/internal/store"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Render SEO files and precompress the cache for publishing",
	Long: `deploy renders sitemap.xml and robots.txt from the cached artifacts
and writes a .gz sidecar next to every servable file. It requires a manifest,
so run build first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.New(cfg.CacheDir)
		if err != nil {
			return err
		}

		res, err := deploy.Prepare(st, cfg, logger)
		if err != nil {
			return err
		}

		fmt.Printf("sitemap entries %d, compressed files %d\n", res.SitemapEntries, res.Compressed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deployCmd)
}
