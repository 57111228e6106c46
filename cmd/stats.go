package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "View application statistics",
	Long:  "Display counts per status, your response rate and how many applications you sent this week",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, userID, err := session(cmd)
		if err != nil {
			return err
		}

		s, err := a.Tracker.Stats(cmd.Context(), userID)
		if err != nil {
			return err
		}

		if s.Total == 0 {
			cmd.Println("No applications yet. Add one with 'jobseeker job add'")
			return nil
		}

		cmd.Println(titleStyle.Render("Application Statistics"))

		cmd.Printf("\n%s\n", labelStyle.Render("Overview"))
		cmd.Printf("  Total Applications: %d\n", s.Total)
		cmd.Printf("  This Week: %d\n", s.WeeklyApplications)
		cmd.Printf("  Response Rate: %d%%\n", s.ResponseRate)

		cmd.Printf("\n%s\n", labelStyle.Render("Status Breakdown"))
		rows := []struct {
			label string
			n     int
		}{
			{"Applied", s.Applied},
			{"In Review", s.InReview},
			{"Interview", s.Interview},
			{"Offer", s.Offer},
			{"Rejected", s.Rejected},
		}
		for _, r := range rows {
			pct := float64(r.n) / float64(s.Total) * 100
			cmd.Printf("  %-10s %3d %s %s\n", r.label, r.n, bar(pct), mutedStyle.Render(fmt.Sprintf("%.1f%%", pct)))
		}
		return nil
	},
}

// bar draws pct as a twenty cell gauge
func bar(pct float64) string {
	filled := int(pct / 5)
	return successStyle.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", 20-filled))
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
