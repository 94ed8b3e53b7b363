package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/okian/assessrec/internal/evalharness"
	"github.com/okian/assessrec/pkg/logger"
	"github.com/spf13/cobra"
)

type evaluateOptions struct {
	dataset     string
	server      string
	concurrency int
	timeout     time.Duration
	out         string
	json        bool
}

func evaluateCmd(root *rootOptions) *cobra.Command {
	opts := &evaluateOptions{}
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score the recommender against a labelled dataset (Recall@3, MAP@3)",
		Long: `Run every case of a YAML dataset and report Recall@3 and MAP@3.

Dataset format:
  cases:
    - name: java-dev
      query: Java developer, 40 minutes
      relevant: [SHL Java Programming Assessment]

Cases with an empty relevant list are reported as degenerate and left out of
the means. With --server the running HTTP API is evaluated instead of an
in-process recommender.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvaluate(cmd, root, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.dataset, "dataset", "d", "", "dataset YAML file")
	cmd.Flags().StringVarP(&opts.server, "server", "s", "", "base URL of a running server, e.g. http://localhost:9080")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "n", 4, "cases evaluated concurrently")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "per-request timeout for --server")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write the JSON summary to this file")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the JSON summary instead of a table")
	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}

func runEvaluate(cmd *cobra.Command, root *rootOptions, opts *evaluateOptions) error {
	ctx := cmd.Context()
	ds, err := evalharness.LoadDataset(opts.dataset)
	if err != nil {
		return err
	}

	var rec evalharness.Recommender
	var log logger.Logger
	if opts.server != "" {
		_, log, err = root.loadConfig(cmd)
		if err != nil {
			return err
		}
		remote := evalharness.NewHTTPRecommender(opts.server, opts.timeout)
		if err := remote.CheckHealth(ctx); err != nil {
			return err
		}
		rec = remote
	} else {
		c, l, err := root.build(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()
		rec, log = c.Service, l
	}

	runner := evalharness.NewRunner(rec,
		evalharness.WithConcurrency(opts.concurrency),
		evalharness.WithLogger(log.Named("evaluate")),
	)
	sum, err := runner.Run(ctx, ds)
	if err != nil {
		return err
	}

	if opts.out != "" {
		if err := evalharness.WriteSummary(opts.out, sum); err != nil {
			return err
		}
		log.Info(ctx, "summary written", logger.String("path", opts.out))
	}
	if opts.json {
		return writeJSON(cmd.OutOrStdout(), sum)
	}
	printSummary(cmd.OutOrStdout(), sum)
	return nil
}

func printSummary(w io.Writer, sum *evalharness.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CASE\tSTATUS\tRECALL@3\tMAP@3")
	for _, c := range sum.Cases {
		if c.Metrics == nil {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\n", c.Name, c.Status)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%.4f\t%.4f\n", c.Name, c.Status, c.Metrics.Recall, c.Metrics.MAP)
	}
	if sum.Mean != nil {
		fmt.Fprintf(tw, "MEAN\t%d scored\t%.4f\t%.4f\n", sum.Scored, sum.Mean.Recall, sum.Mean.MAP)
	} else {
		fmt.Fprintln(tw, "MEAN\tno scored cases\t-\t-")
	}
	_ = tw.Flush()
	if sum.Degenerate > 0 || sum.Failed > 0 {
		fmt.Fprintf(w, "\n%d degenerate, %d failed\n", sum.Degenerate, sum.Failed)
	}
}
