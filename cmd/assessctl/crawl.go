package main

import (
	"errors"
	"fmt"

	"github.com/okian/assessrec/internal/adapters/catalog"
	"github.com/okian/assessrec/internal/bootstrap"
	"github.com/spf13/cobra"
)

type crawlOptions struct {
	url  string
	json bool
}

func crawlCmd(root *rootOptions) *cobra.Command {
	opts := &crawlOptions{}
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl the product catalog and refresh the snapshot",
		Long: `Fetch the catalog from the live sources, bypassing the cache and the
stored snapshot, and save the result to the configured store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			if opts.url != "" {
				cfg.CatalogURL = opts.url
			}
			if cfg.CatalogURL == "" {
				return errors.New("no catalog url configured")
			}
			c, err := bootstrap.Build(cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			recs, err := c.Catalog.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			info := c.Catalog.Info()
			if info.Source != catalog.CrawlerSourceName {
				return fmt.Errorf("crawl returned no records; catalog fell back to %s", info.Source)
			}
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), recs)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d assessments from %s\n", info.Size, info.Source)
			printRecords(cmd.OutOrStdout(), recs)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.url, "url", "", "catalog page URL (overrides catalog_url)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the records as JSON")
	return cmd
}
