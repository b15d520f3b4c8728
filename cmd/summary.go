package cmd

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hydroponica/ecdash/internal/names"
	"github.com/hydroponica/ecdash/internal/session"
	"github.com/hydroponica/ecdash/internal/stats"
)

var sumGroup string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Load the datasets and print per-group summary statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		sess, err := session.Open(c)
		if err != nil {
			return err
		}
		for _, w := range sess.Report.Warnings {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %s\n", w)
		}

		sums := sess.Summaries
		if sumGroup != "" {
			sums = filterGroup(sums, sumGroup)
			if len(sums) == 0 {
				return fmt.Errorf("group %q is not configured", sumGroup)
			}
		}
		fmt.Print(renderSummary(sums))

		if sumGroup == "" {
			if best, ok := sess.Best(); ok {
				fmt.Printf("\n[BEST]\n%s (EC %.1f): mean fresh weight %.4g g\n", best.Group, best.EC, best.MeanFreshWeight)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringVarP(&sumGroup, "group", "g", "", "restrict output to one group")
}

func filterGroup(sums []stats.GroupSummary, group string) []stats.GroupSummary {
	var out []stats.GroupSummary
	for _, s := range sums {
		if names.Equal(s.Group, group) {
			out = append(out, s)
		}
	}
	return out
}

func renderSummary(sums []stats.GroupSummary) string {
	var b strings.Builder
	b.WriteString("[ENVIRONMENT]\n")
	for _, s := range sums {
		if s.EnvCount == 0 {
			fmt.Fprintf(&b, "- %s (EC %.1f): no data\n", s.Group, s.EC)
			continue
		}
		fmt.Fprintf(&b, "- %s (EC %.1f, n=%d): temp %s°C, humidity %s%%, pH %s, EC %s\n",
			s.Group, s.EC, s.EnvCount,
			fmtMean(s.Temperature), fmtMean(s.Humidity), fmtMean(s.PH), fmtMean(s.MeasuredEC))
	}
	b.WriteString("\n[GROWTH]\n")
	for _, s := range sums {
		if s.GrowthCount == 0 {
			fmt.Fprintf(&b, "- %s (EC %.1f): no data\n", s.Group, s.EC)
			continue
		}
		fmt.Fprintf(&b, "- %s (EC %.1f, n=%d): leaves %s, shoot %s mm, root %s mm, weight %s g",
			s.Group, s.EC, s.GrowthCount,
			fmtMean(s.LeafCount), fmtMean(s.ShootLength), fmtMean(s.RootLength), fmtMean(s.FreshWeight))
		if r := float64(s.ShootRootCorr); !math.IsNaN(r) {
			fmt.Fprintf(&b, ", shoot~root r=%.3f", r)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func fmtMean(m stats.FieldMean) string {
	if m.Count == 0 || math.IsNaN(m.Mean) {
		return "—"
	}
	return fmt.Sprintf("%.4g", m.Mean)
}
