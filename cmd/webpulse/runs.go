package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/babdulhakim2/webpulse/internal/capture"
	"github.com/babdulhakim2/webpulse/internal/report"
	"github.com/babdulhakim2/webpulse/internal/temporal/workflows"
)

func newSubmitCmd(d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit <url>",
		Short: "Start a durable analysis run on the Temporal workers",
		Long: `submit validates the request locally, then starts a regional analysis
workflow. Captures run on the capture queue workers; follow the run with
"webpulse status <workflow-id>".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd, d)
			if err != nil {
				return err
			}
			plan, err := rt.Engine.Plan(analyzeRequest(cmd, args[0]))
			if err != nil {
				return err
			}

			q, closeQ, err := d.querier(cmd.Context())
			if err != nil {
				return err
			}
			defer closeQ()

			started, err := q.StartAnalysis(cmd.Context(),
				workflows.InputFromRequest(plan.ID, plan.Capture, plan.Regions, plan.Options))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "started workflow %s (run=%s)\n", started.WorkflowID, started.RunID)
			return nil
		},
	}

	addCaptureFlags(cmd)
	cmd.Flags().Int("width", capture.DefaultWidth, "Viewport width in pixels")
	cmd.Flags().Int("height", capture.DefaultHeight, "Viewport height in pixels")
	cmd.Flags().Bool("full-page", false, "Capture the full scrollable page")
	cmd.Flags().Bool("no-comparison", false, "Skip pairwise region comparisons")
	cmd.Flags().Bool("no-issues", false, "Skip issue detection")
	return cmd
}

func newStatusCmd(d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <workflow-id>",
		Short: "Show progress of a durable analysis run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			showReport, _ := cmd.Flags().GetBool("report")

			q, closeQ, err := d.querier(cmd.Context())
			if err != nil {
				return err
			}
			defer closeQ()

			state, err := q.GetWorkflowState(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !showReport {
				return writeJSON(cmd, state)
			}
			if !state.Done() || state.Report == nil {
				return fmt.Errorf("workflow %s is still %s (%d/%d regions settled)",
					args[0], state.Phase, state.Settled, state.Total)
			}

			out, closeOut, err := openOutput(cmd)
			if err != nil {
				return err
			}
			defer closeOut()
			_, err = report.NewMarkdownWriter(out).Write(state.Report)
			return err
		},
	}
	cmd.Flags().Bool("report", false, "Print the finished report as markdown")
	return cmd
}
