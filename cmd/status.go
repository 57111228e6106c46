package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/khrees2412/jobseeker/internal/jobquery"
	"github.com/khrees2412/jobseeker/internal/tracker"
	"github.com/khrees2412/jobseeker/pkg/models"
	"github.com/spf13/cobra"
)

const pageSize = 100

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "View applications grouped by status",
	Long:  "View and manage your job application statuses",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, userID, err := session(cmd)
		if err != nil {
			return err
		}

		filter, _ := cmd.Flags().GetString("filter")
		var only models.Status
		if filter != "" {
			if only, err = models.ParseStatus(filter); err != nil {
				return err
			}
		}

		jobs, err := allJobs(cmd.Context(), a.Tracker, userID, string(only))
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			if only != "" {
				cmd.Printf("No applications with status '%s'\n", only)
				return nil
			}
			cmd.Println("No applications yet. Add one with 'jobseeker job add'")
			return nil
		}

		cmd.Println(titleStyle.Render("Your Applications"))

		groups := map[models.Status][]*models.JobApplication{}
		for _, job := range jobs {
			groups[job.Status] = append(groups[job.Status], job)
		}

		for _, st := range models.Statuses {
			group := groups[st]
			if len(group) == 0 {
				continue
			}
			cmd.Printf("\n%s (%d)\n", renderStatus(st), len(group))
			for _, job := range group {
				cmd.Printf("  • %s at %s\n", job.Position, job.Company)
				cmd.Printf("    %s %s | Applied: %s\n",
					labelStyle.Render("ID:"),
					job.ID,
					job.DateApplied.Format("Jan 2, 2006"))
				if job.Notes != "" {
					cmd.Printf("    %s %s\n", labelStyle.Render("Notes:"), job.Notes)
				}
			}
		}

		cmd.Printf("\n%s %d\n", labelStyle.Render("Total Applications:"), len(jobs))
		return nil
	},
}

var updateStatusCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update application status",
	Args:  cobra.ExactArgs(1),
	Example: `  jobseeker status update 7c9e... --status interview
  jobseeker status update 7c9e... --status rejected --notes "Not a good fit"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, userID, err := session(cmd)
		if err != nil {
			return err
		}

		raw, _ := cmd.Flags().GetString("status")
		if raw == "" {
			return fmt.Errorf("status is required. Use --status")
		}
		st, err := models.ParseStatus(raw)
		if err != nil {
			return fmt.Errorf("%w. Must be one of: %v", err, models.Statuses)
		}

		in := tracker.UpdateInput{Status: &st, Notes: changedString(cmd, "notes")}
		job, err := a.Tracker.Update(cmd.Context(), userID, args[0], in)
		if err != nil {
			return err
		}

		cmd.Printf("✓ %s at %s is now %s\n", job.Position, job.Company, renderStatus(job.Status))
		if job.Notes != "" && in.Notes != nil {
			cmd.Printf("  Notes: %s\n", job.Notes)
		}
		return nil
	},
}

// allJobs walks every page of userID's applications
func allJobs(ctx context.Context, svc *tracker.Service, userID, status string) ([]*models.JobApplication, error) {
	var jobs []*models.JobApplication
	for page := 1; ; page++ {
		result, err := svc.List(ctx, userID, jobquery.Params{
			Status: status,
			SortBy: "newest",
			Page:   strconv.Itoa(page),
			Limit:  strconv.Itoa(pageSize),
		})
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, result.Records...)
		if page >= result.Pages {
			return jobs, nil
		}
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.AddCommand(updateStatusCmd)

	statusCmd.Flags().String("filter", "", "Only show applications with this status")
	updateStatusCmd.Flags().String("status", "", "New status")
	updateStatusCmd.Flags().String("notes", "", "Replace the notes")
}
