package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hayabusaracing/rig/pkg/thrust"
)

func printValidityReport(cmd *cobra.Command, a *thrust.Analysis) {
	c := a.Consistency

	cmd.Println(bold("Thrust data validity analysis:"))
	cmd.Println()

	cmd.Println(bold("Individual attempts:"))
	for i, s := range a.Attempts {
		cmd.Printf("  %s:\n", thrust.AttemptName(i))
		cmd.Printf("    Peak thrust: %s\n", bold("%.3f N", s.Peak))
		cmd.Printf("    Total impulse: %s\n", bold("%.3f N·s", s.Impulse))
		cmd.Printf("    Mean thrust: %s\n", bold("%.3f N", s.Mean))
		cmd.Printf("    Thrust std dev: %s\n", bold("%.3f N", s.StdDev))
	}
	cmd.Println()

	cmd.Println(bold("Consistency:"))
	printVariation(cmd, "Peak thrust", "N", c.Peak)
	printVariation(cmd, "Total impulse", "N·s", c.Impulse)
	printVariation(cmd, "Mean thrust", "N", c.Mean)
	for _, p := range c.Correlations {
		cmd.Printf("  Correlation %s vs %s: %.4f\n", thrust.AttemptName(p.A), thrust.AttemptName(p.B), p.R)
	}
	cmd.Printf("  Average inter-attempt correlation: %s (%s)\n", bold("%.4f", c.MeanCorrelation), ratingText(c.CorrelationRating))
	cmd.Println()

	v := a.Validity
	cmd.Println(bold("Overall validity:"))
	cmd.Printf("  Score: %s\n", bold("%d/%d", v.Score, thrust.MaxScore))
	cmd.Printf("  Assessment: %s - %s\n", verdictText(v.Verdict), v.Detail)
	cmd.Println()

	cmd.Println(bold("Recommendations:"))
	for _, r := range v.Recommendations {
		cmd.Printf("  %s %s\n", bool2Text(v.Reliable), r)
	}
	cmd.Println()
}

func printVariation(cmd *cobra.Command, name, unit string, v thrust.Variation) {
	cmd.Printf("  %s:\n", name)
	cmd.Printf("    Range: %.3f - %.3f %s\n", v.Min, v.Max, unit)
	cmd.Printf("    Coefficient of variation: %s (%s)\n", bold("%.2f%%", v.CV), ratingText(v.Rating))
}

func printDecaySummary(cmd *cobra.Command, s thrust.Summary, attempts [thrust.NumAttempts]thrust.AttemptStats) {
	cmd.Println(bold("Thrust decay summary:"))
	cmd.Printf("  Total samples: %d\n", s.Samples)
	cmd.Printf("  Total duration: %s\n", bold("%.2f s", s.Duration))
	cmd.Printf("  Peak average thrust: %s\n", bold("%.4f N", s.PeakAverage))
	cmd.Printf("  Final average thrust: %s\n", bold("%.4f N", s.Final))
	cmd.Printf("  Total thrust decay: %s\n", bold("%.4f N", s.TotalDecay))
	if s.HalfPeak != nil {
		cmd.Printf("  50%% decay reached at: %s (sample %d)\n", bold("%.2f s", s.HalfPeak.Seconds()), s.HalfPeak.Index)
	} else {
		cmd.Printf("  50%% decay: %s\n", color.YellowString("not reached in dataset"))
	}

	cmd.Println("  Attempt statistics (N):")
	for i, st := range attempts {
		cmd.Printf("    %-10sMax=%.4f, Min=%.4f, Mean=%.4f\n", thrust.AttemptName(i)+":", st.Peak, st.Min, st.Mean)
	}
}
