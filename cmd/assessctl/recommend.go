package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	service "github.com/okian/assessrec/internal/app"
	"github.com/okian/assessrec/internal/domain/model"
	"github.com/okian/assessrec/pkg/logger"
	"github.com/spf13/cobra"
)

type recommendOptions struct {
	query   string
	url     string
	explain bool
	json    bool
}

func recommendCmd(root *rootOptions) *cobra.Command {
	opts := &recommendOptions{}
	cmd := &cobra.Command{
		Use:   "recommend [query]",
		Short: "Recommend assessments for a query or job description URL",
		Long: `Recommend assessments for free text or the text of a job posting.

Examples:
  assessctl recommend "Java developer who can lead a team, under 40 minutes"
  assessctl recommend --url https://example.com/jobs/123 --json
  assessctl recommend --query "sales manager" --explain`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && opts.query == "" {
				opts.query = args[0]
			}
			c, log, err := root.build(cmd)
			if err != nil {
				return err
			}
			defer func() {
				if err := c.Close(); err != nil {
					log.Warn(cmd.Context(), "close failed", logger.Error(err))
				}
			}()
			return runRecommend(cmd, c.Service, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "free-text query")
	cmd.Flags().StringVarP(&opts.url, "url", "u", "", "job description URL (ignored when a query is given)")
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "print the pipeline trace")
	cmd.Flags().BoolVar(&opts.json, "json", false, "output as JSON")
	return cmd
}

func runRecommend(cmd *cobra.Command, svc *service.Service, opts *recommendOptions) error {
	req := service.Request{Query: opts.query, URL: opts.url}
	out := cmd.OutOrStdout()

	if opts.explain {
		exp, err := svc.Explain(cmd.Context(), req)
		if err != nil {
			return err
		}
		if opts.json {
			return writeJSON(out, exp)
		}
		printExplanation(out, exp)
		return nil
	}

	recs, err := svc.RecommendRequest(cmd.Context(), req)
	if err != nil {
		return err
	}
	if opts.json {
		return writeJSON(out, struct {
			Recommendations []model.AssessmentRecord `json:"recommendations"`
		}{Recommendations: recs})
	}
	printRecords(out, recs)
	return nil
}

func printRecords(w io.Writer, recs []model.AssessmentRecord) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "No recommendations.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tDURATION\tTYPE\tREMOTE\tADAPTIVE")
	for i, r := range recs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1, r.Name, r.Duration, r.TestType, r.RemoteTestingSupport, r.AdaptiveSupport)
	}
	_ = tw.Flush()
}

func printExplanation(w io.Writer, exp *service.Explanation) {
	fmt.Fprintf(w, "Skills:       %v\n", exp.Features.Skills)
	if exp.Features.HasMaxDuration() {
		fmt.Fprintf(w, "Max duration: %d minutes\n", exp.Features.MaxDuration)
	} else {
		fmt.Fprintln(w, "Max duration: none")
	}
	fmt.Fprintf(w, "Catalog:      %d records\n", exp.CatalogSize)
	for _, s := range exp.Steps {
		fmt.Fprintf(w, "Filter %-8s %d -> %d (dropped %d)\n", s.Name+":", s.Initial, s.Left, s.Dropped)
	}
	if exp.Fallback {
		fmt.Fprintln(w, "Fallback:     every record was filtered out; ranking the leading catalog records")
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSCORE\tNAME\tDURATION")
	for i, sc := range exp.Scored {
		fmt.Fprintf(tw, "%d\t%.4f\t%s\t%s\n", i+1, sc.Score, sc.Record.Name, sc.Record.Duration)
	}
	_ = tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
