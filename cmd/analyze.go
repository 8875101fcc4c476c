package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/webangle/teardown-cli/internal/model"
	"github.com/webangle/teardown-cli/internal/pipeline"
)

var (
	analyzeURL     string
	analyzeJSON    bool
	analyzeNoCache bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a full teardown for a single website",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, st, err := initAnalyzer(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		result, err := a.Run(ctx, analyzeURL, pipeline.RunOptions{SkipCache: analyzeNoCache})
		if err != nil {
			return eris.Wrap(err, "analyze")
		}

		zap.L().Info("analysis complete",
			zap.String("url", result.URL),
			zap.Int("overall_score", result.Meta.OverallScore),
			zap.Int("opportunities", len(result.Opportunities)),
			zap.Bool("cache_hit", result.Meta.CacheHit),
		)

		if analyzeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		printSummary(result)
		return nil
	},
}

func printSummary(r *model.AnalysisResult) {
	fmt.Printf("%s  (%s, confidence %.1f)\n", r.URL, r.Classification.SiteType, r.Classification.Confidence)
	fmt.Printf("Overall score: %d  [performance %d | style %d | responsive %d | content %d]\n",
		r.Meta.OverallScore,
		r.Meta.Scores.Performance, r.Meta.Scores.Style,
		r.Meta.Scores.Responsive, r.Meta.Scores.Content,
	)
	fmt.Printf("Tech: %s\n", strings.Join(r.TechStack.Hints, ", "))
	if len(r.Contact.Emails) > 0 {
		fmt.Printf("Emails: %s\n", strings.Join(r.Contact.Emails, ", "))
	}
	if len(r.Contact.Phones) > 0 {
		fmt.Printf("Phones: %s\n", strings.Join(r.Contact.Phones, ", "))
	}

	fmt.Println("\nOpportunities:")
	for _, o := range r.Opportunities {
		fmt.Printf("  [%s] %s (%s)\n", o.ID, o.Title, o.Confidence)
		if o.Issue != "" {
			fmt.Printf("      issue: %s\n", o.Issue)
		}
		if o.PitchAngle != "" {
			fmt.Printf("      pitch: %s\n", o.PitchAngle)
		}
	}
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeURL, "url", "", "website URL to analyze (required)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the full result as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeNoCache, "no-cache", false, "skip the cache and force a fresh analysis")
	_ = analyzeCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(analyzeCmd)
}
