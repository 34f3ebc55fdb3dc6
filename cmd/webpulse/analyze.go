package main

import (
	"fmt"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/babdulhakim2/webpulse/internal/capture"
	"github.com/babdulhakim2/webpulse/internal/engine"
	"github.com/babdulhakim2/webpulse/internal/report"
)

func newAnalyzeCmd(d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Capture a URL from every region and print the full report",
		Example: `  webpulse analyze https://example.com
  webpulse analyze https://example.com --regions us-east,eu-west --format markdown
  webpulse analyze https://example.com --kv-optimized -o report.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := analyzeRequest(cmd, args[0])
			format, _ := cmd.Flags().GetString("format")

			rt, err := loadRuntime(cmd, d)
			if err != nil {
				return err
			}
			res, err := rt.Engine.Analyze(cmd.Context(), req)
			if err != nil {
				return err
			}

			out, closeOut, err := openOutput(cmd)
			if err != nil {
				return err
			}
			defer closeOut()

			if format == "markdown" || format == "md" {
				_, err = report.NewMarkdownWriter(out).Write(&res.Report)
			} else {
				_, err = report.NewJSONWriter(out, report.WithPrettyPrint()).WriteValue(res.Value())
			}
			return err
		},
	}

	addCaptureFlags(cmd)
	cmd.Flags().Int("width", capture.DefaultWidth, "Viewport width in pixels")
	cmd.Flags().Int("height", capture.DefaultHeight, "Viewport height in pixels")
	cmd.Flags().Bool("full-page", false, "Capture the full scrollable page")
	cmd.Flags().Bool("no-comparison", false, "Skip pairwise region comparisons")
	cmd.Flags().Bool("no-issues", false, "Skip issue detection")
	cmd.Flags().Bool("kv-optimized", false, "Print the reduced report without raw console and network entries")
	cmd.Flags().StringP("format", "f", "json", "Output format: json or markdown")
	return cmd
}

func analyzeRequest(cmd *cobra.Command, url string) engine.AnalyzeRequest {
	flags := cmd.Flags()
	regions, _ := flags.GetStringSlice("regions")
	timeout, _ := flags.GetDuration("timeout")
	width, _ := flags.GetInt("width")
	height, _ := flags.GetInt("height")
	fullPage, _ := flags.GetBool("full-page")
	noComparison, _ := flags.GetBool("no-comparison")
	noIssues, _ := flags.GetBool("no-issues")
	kv, _ := flags.GetBool("kv-optimized")

	compare, detect := !noComparison, !noIssues
	return engine.AnalyzeRequest{
		URL:                    url,
		Regions:                regions,
		EnableVisualComparison: &compare,
		EnableIssueDetection:   &detect,
		KVOptimized:            kv,
		Width:                  width,
		Height:                 height,
		FullPage:               fullPage,
		Timeout:                timeout,
	}
}

func newIssuesCmd(d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issues <url>",
		Short: "Capture a URL and list detected issues per region as JSON",
		Example: `  webpulse issues https://example.com --severity high
  webpulse issues https://example.com --types performance,missing_resource`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			regions, _ := cmd.Flags().GetStringSlice("regions")
			types, _ := cmd.Flags().GetStringSlice("types")
			severity, _ := cmd.Flags().GetString("severity")
			timeout, _ := cmd.Flags().GetDuration("timeout")

			rt, err := loadRuntime(cmd, d)
			if err != nil {
				return err
			}
			res, err := rt.Engine.AnalyzeIssues(cmd.Context(), engine.IssuesRequest{
				URL:            args[0],
				Regions:        regions,
				IssueTypes:     types,
				SeverityFilter: severity,
				Timeout:        timeout,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd, res)
		},
	}

	addCaptureFlags(cmd)
	cmd.Flags().StringSlice("types", nil, "Issue types to keep (layout, missing_resource, rendering, performance)")
	cmd.Flags().String("severity", "low", "Minimum severity to keep (low, medium, high, critical)")
	return cmd
}

func newCompareCmd(d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "compare <url>",
		Short:   "Rank and compare regions by performance as JSON",
		Example: `  webpulse compare https://example.com --regions us-east,ap-northeast --network`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			regions, _ := cmd.Flags().GetStringSlice("regions")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			network, _ := cmd.Flags().GetBool("network")
			noRecs, _ := cmd.Flags().GetBool("no-recommendations")

			rt, err := loadRuntime(cmd, d)
			if err != nil {
				return err
			}
			recs := !noRecs
			res, err := rt.Engine.ComparePerformance(cmd.Context(), engine.CompareRequest{
				URL:                     args[0],
				Regions:                 regions,
				IncludeNetworkAnalysis:  network,
				GenerateRecommendations: &recs,
				Timeout:                 timeout,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd, res)
		},
	}

	addCaptureFlags(cmd)
	cmd.Flags().Bool("network", false, "Include per-region network summaries")
	cmd.Flags().Bool("no-recommendations", false, "Skip recommendations")
	_ = cmd.MarkFlagRequired("regions")
	return cmd
}

func newRegionsCmd(d deps) *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "List the regions a URL can be captured from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadRuntime(cmd, d)
			if err != nil {
				return err
			}
			out, closeOut, err := openOutput(cmd)
			if err != nil {
				return err
			}
			defer closeOut()

			var rows [][]string
			for _, r := range rt.Registry.All() {
				rows = append(rows, []string{r.Name, r.Location, r.Endpoint})
			}
			return markdown.NewMarkdown(out).
				Table(markdown.TableSet{Header: []string{"Region", "Location", "Endpoint"}, Rows: rows}).
				Build()
		},
	}
}

func addCaptureFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("regions", "r", nil, "Regions to capture from (default: all)")
	cmd.Flags().Duration("timeout", capture.DefaultTimeout, "Per-region capture timeout")
}

func writeJSON(cmd *cobra.Command, v any) error {
	out, closeOut, err := openOutput(cmd)
	if err != nil {
		return err
	}
	defer closeOut()
	if _, err := report.NewJSONWriter(out, report.WithPrettyPrint()).WriteValue(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
