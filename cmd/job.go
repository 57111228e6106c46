package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/khrees2412/jobseeker/internal/jobquery"
	"github.com/khrees2412/jobseeker/internal/tracker"
	"github.com/khrees2412/jobseeker/pkg/models"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Manage job applications",
	Long:  "Add, list, view, update and remove your job applications",
}

var addJobCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a job application",
	Example: `  jobseeker job add --url https://boards.greenhouse.io/acme/jobs/123
  jobseeker job add --company "Acme Inc" --position "Software Engineer" --location Remote
  jobseeker job add --company Globex --position SRE --status "In Review" --date 2024-05-01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, userID, err := session(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		flags := cmd.Flags()

		var in tracker.CreateInput
		url, _ := flags.GetString("url")
		if url != "" {
			cmd.Printf("Fetching job details from %s...\n", url)
			posting, err := a.Importer.Import(ctx, url)
			if err != nil {
				if !flags.Changed("company") || !flags.Changed("position") {
					return fmt.Errorf("could not read job URL: %w (provide --company and --position instead)", err)
				}
				cmd.Printf("Warning: could not parse job URL: %v\n", err)
			} else {
				in.Company = posting.Company
				in.Position = posting.Position
				in.Location = posting.Location
				in.Notes = posting.Description
			}
			in.URL = url
		}

		// Explicit flags win over anything read from the page
		if v := changedString(cmd, "company"); v != nil {
			in.Company = *v
		}
		if v := changedString(cmd, "position"); v != nil {
			in.Position = *v
		}
		if v := changedString(cmd, "location"); v != nil {
			in.Location = *v
		}
		if v := changedString(cmd, "notes"); v != nil {
			in.Notes = *v
		}
		in.Salary, _ = flags.GetString("salary")

		if in.Status, err = statusFlag(cmd); err != nil {
			return err
		}
		if in.JobType, err = jobTypeFlag(cmd); err != nil {
			return err
		}
		if in.DateApplied, err = dateFlag(cmd); err != nil {
			return err
		}

		job, err := a.Tracker.Create(ctx, userID, in)
		if err != nil {
			return err
		}

		cmd.Printf("%s %s at %s (ID: %s)\n", successStyle.Render("✓ Job added:"), job.Position, job.Company, job.ID)
		return nil
	},
}

var listJobsCmd = &cobra.Command{
	Use:   "list",
	Short: "List your job applications",
	Example: `  jobseeker job list
  jobseeker job list --status Interview --sort company
  jobseeker job list --search acme --page 2 --limit 20`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, userID, err := session(cmd)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		var p jobquery.Params
		p.Status, _ = flags.GetString("status")
		p.Search, _ = flags.GetString("search")
		p.SortBy, _ = flags.GetString("sort")
		page, _ := flags.GetInt("page")
		limit, _ := flags.GetInt("limit")
		p.Page, p.Limit = strconv.Itoa(page), strconv.Itoa(limit)

		if p.Status != "" && p.Status != jobquery.StatusAll {
			st, err := models.ParseStatus(p.Status)
			if err != nil {
				return err
			}
			p.Status = string(st)
		}

		result, err := a.Tracker.List(cmd.Context(), userID, p)
		if err != nil {
			return err
		}

		if result.Total == 0 {
			cmd.Println("No job applications found. Add one with 'jobseeker job add'")
			return nil
		}

		cmd.Println(titleStyle.Render("Job Applications"))
		for i, job := range result.Records {
			n := (result.Page-1)*limitOf(limit) + i + 1
			cmd.Printf("\n%s. %s at %s  %s\n", labelStyle.Render(strconv.Itoa(n)), job.Position, job.Company, renderStatus(job.Status))
			cmd.Printf("   %s %s\n", labelStyle.Render("ID:"), job.ID)
			if job.Location != "" {
				cmd.Printf("   %s %s\n", labelStyle.Render("Location:"), job.Location)
			}
			cmd.Printf("   %s %s (%s)\n", labelStyle.Render("Applied:"), job.DateApplied.Format("Jan 2, 2006"), daysAgo(job.DaysAgo))
		}
		cmd.Println(mutedStyle.Render(fmt.Sprintf("\nPage %d of %d, %d of %d applications", result.Page, result.Pages, result.Count, result.Total)))
		return nil
	},
}

var showJobCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show details of a job application",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, userID, err := session(cmd)
		if err != nil {
			return err
		}

		job, err := a.Tracker.Get(cmd.Context(), userID, args[0])
		if err != nil {
			return err
		}
		printJob(cmd, job)
		return nil
	},
}

var updateJobCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields of a job application",
	Args:  cobra.ExactArgs(1),
	Example: `  jobseeker job update 7c9e... --status Offer --salary "$120k"
  jobseeker job update 7c9e... --notes "Recruiter call on Friday"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, userID, err := session(cmd)
		if err != nil {
			return err
		}

		in := tracker.UpdateInput{
			Company:  changedString(cmd, "company"),
			Position: changedString(cmd, "position"),
			URL:      changedString(cmd, "url"),
			Notes:    changedString(cmd, "notes"),
			Salary:   changedString(cmd, "salary"),
			Location: changedString(cmd, "location"),
		}
		if cmd.Flags().Changed("status") {
			st, err := statusFlag(cmd)
			if err != nil {
				return err
			}
			in.Status = &st
		}
		if cmd.Flags().Changed("type") {
			jt, err := jobTypeFlag(cmd)
			if err != nil {
				return err
			}
			in.JobType = &jt
		}
		if in.DateApplied, err = dateFlag(cmd); err != nil {
			return err
		}

		if in == (tracker.UpdateInput{}) {
			cmd.Println("No fields to update. Use flags like --status, --notes, etc.")
			return nil
		}

		job, err := a.Tracker.Update(cmd.Context(), userID, args[0], in)
		if err != nil {
			return err
		}
		cmd.Println(successStyle.Render("✓ Job application updated"))
		printJob(cmd, job)
		return nil
	},
}

var removeJobCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm"},
	Short:   "Remove a job application",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, userID, err := session(cmd)
		if err != nil {
			return err
		}

		job, err := a.Tracker.Get(cmd.Context(), userID, args[0])
		if err != nil {
			return err
		}
		if err := a.Tracker.Delete(cmd.Context(), userID, job.ID); err != nil {
			return err
		}

		cmd.Printf("✓ Removed job application: %s at %s\n", job.Position, job.Company)
		return nil
	},
}

func printJob(cmd *cobra.Command, job *models.JobApplication) {
	cmd.Println(titleStyle.Render(job.Position))
	cmd.Printf("%s %s\n", labelStyle.Render("Company:"), job.Company)
	cmd.Printf("%s %s\n", labelStyle.Render("Status:"), renderStatus(job.Status))
	cmd.Printf("%s %s\n", labelStyle.Render("Type:"), job.JobType)
	if job.Location != "" {
		cmd.Printf("%s %s\n", labelStyle.Render("Location:"), job.Location)
	}
	if job.Salary != "" {
		cmd.Printf("%s %s\n", labelStyle.Render("Salary:"), job.Salary)
	}
	if job.URL != "" {
		cmd.Printf("%s %s\n", labelStyle.Render("URL:"), job.URL)
	}
	cmd.Printf("%s %s (%s)\n", labelStyle.Render("Applied:"), job.DateApplied.Format("Jan 2, 2006"), daysAgo(job.DaysAgo))
	cmd.Printf("%s %s\n", labelStyle.Render("ID:"), mutedStyle.Render(job.ID))

	if job.Notes != "" {
		cmd.Println(labelStyle.Render("\nNotes:"))
		cmd.Println(job.Notes)
	}
}

func daysAgo(n int) string {
	switch n {
	case 0:
		return "today"
	case 1:
		return "1 day ago"
	default:
		return fmt.Sprintf("%d days ago", n)
	}
}

func limitOf(limit int) int {
	if limit < 1 {
		return jobquery.DefaultLimit
	}
	return limit
}

func statusFlag(cmd *cobra.Command) (models.Status, error) {
	raw, _ := cmd.Flags().GetString("status")
	if raw == "" {
		return "", nil
	}
	return models.ParseStatus(raw)
}

func jobTypeFlag(cmd *cobra.Command) (models.JobType, error) {
	raw, _ := cmd.Flags().GetString("type")
	if raw == "" {
		return "", nil
	}
	return models.ParseJobType(raw)
}

func dateFlag(cmd *cobra.Command) (*time.Time, error) {
	if !cmd.Flags().Changed("date") {
		return nil, nil
	}
	raw, _ := cmd.Flags().GetString("date")
	t, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --date %q: use YYYY-MM-DD", raw)
	}
	return &t, nil
}

func addJobFields(cmd *cobra.Command) {
	cmd.Flags().String("company", "", "Company name")
	cmd.Flags().String("position", "", "Position title")
	cmd.Flags().String("status", "", "Applied, In Review, Interview, Offer or Rejected")
	cmd.Flags().String("type", "", "Full-time, Part-time, Contract, Internship or Remote")
	cmd.Flags().String("date", "", "Date applied (YYYY-MM-DD)")
	cmd.Flags().String("location", "", "Job location")
	cmd.Flags().String("salary", "", "Salary or range")
	cmd.Flags().String("notes", "", "Free-form notes")
}

func init() {
	rootCmd.AddCommand(jobCmd)
	jobCmd.AddCommand(addJobCmd, listJobsCmd, showJobCmd, updateJobCmd, removeJobCmd)

	addJobFields(addJobCmd)
	addJobCmd.Flags().String("url", "", "Job posting URL to import details from")

	addJobFields(updateJobCmd)
	updateJobCmd.Flags().String("url", "", "Job posting URL")

	listJobsCmd.Flags().String("status", "", "Filter by status (or \"all\")")
	listJobsCmd.Flags().String("search", "", "Match company or position")
	listJobsCmd.Flags().String("sort", "", "newest (default), oldest, company or status")
	listJobsCmd.Flags().Int("page", jobquery.DefaultPage, "Page number")
	listJobsCmd.Flags().Int("limit", jobquery.DefaultLimit, "Results per page")
}
