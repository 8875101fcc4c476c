package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/webangle/teardown-cli/internal/scrape"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the analysis cache",
}

var cachePurgeURL string

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired cache entries, or one entry by URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		if cachePurgeURL != "" {
			key := scrape.CanonicalKey(scrape.NormalizeURL(cachePurgeURL))
			deleted, err := st.DeleteAnalysis(ctx, key)
			if err != nil {
				return eris.Wrap(err, "purge entry")
			}
			if deleted {
				fmt.Printf("purged %s\n", key)
			} else {
				fmt.Printf("no entry for %s\n", key)
			}
			return nil
		}

		n, err := st.DeleteExpired(ctx)
		if err != nil {
			return eris.Wrap(err, "purge expired")
		}
		zap.L().Info("cache purged", zap.Int("deleted", n))
		fmt.Printf("deleted %d expired entries\n", n)
		return nil
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		stats, err := st.Stats(ctx)
		if err != nil {
			return eris.Wrap(err, "cache stats")
		}
		fmt.Printf("entries: %d (expired: %d)\n", stats.Total, stats.Expired)
		return nil
	},
}

func init() {
	cachePurgeCmd.Flags().StringVar(&cachePurgeURL, "url", "", "purge a single entry by URL")
	cacheCmd.AddCommand(cachePurgeCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	rootCmd.AddCommand(cacheCmd)
}
