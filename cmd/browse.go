package cmd

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/khrees2412/jobseeker/internal/app"
	"github.com/khrees2412/jobseeker/internal/tracker"
	"github.com/khrees2412/jobseeker/pkg/models"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse applications interactively",
	Long:  "Step through your applications, view details and move them through the pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, userID, err := session(cmd)
		if err != nil {
			return err
		}
		b := &browser{cmd: cmd, app: a, userID: userID, in: bufio.NewReader(cmd.InOrStdin())}
		return b.run()
	},
}

type browser struct {
	cmd    *cobra.Command
	app    *app.App
	userID string
	in     *bufio.Reader
}

func (b *browser) readLine() (string, bool) {
	b.cmd.Print("\n> ")
	line, err := b.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}

func (b *browser) run() error {
	for {
		jobs, err := allJobs(b.cmd.Context(), b.app.Tracker, b.userID, "")
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			b.cmd.Println("No job applications found. Add one with 'jobseeker job add'")
			return nil
		}

		b.cmd.Println(titleStyle.Render("Application Browser"))
		b.cmd.Println("Press 'q' to quit, or enter a number to view details")
		b.cmd.Println()
		for i, job := range jobs {
			b.cmd.Printf("%d. %s at %s  %s\n", i+1, job.Position, job.Company, renderStatus(job.Status))
		}

		input, ok := b.readLine()
		if !ok || strings.EqualFold(input, "q") {
			return nil
		}

		n, err := strconv.Atoi(input)
		if err != nil || n < 1 || n > len(jobs) {
			b.cmd.Println("Invalid selection")
			continue
		}
		if err := b.details(jobs[n-1]); err != nil {
			return err
		}
	}
}

// details shows one application until the user goes back
func (b *browser) details(job *models.JobApplication) error {
	for {
		b.cmd.Println("\n" + strings.Repeat("=", 60))
		printJob(b.cmd, job)

		b.cmd.Println("\nOptions:")
		b.cmd.Println("  [s] Change status")
		b.cmd.Println("  [d] Delete")
		b.cmd.Println("  [b] Back to list")

		choice, ok := b.readLine()
		if !ok {
			return nil
		}

		switch strings.ToLower(choice) {
		case "s":
			updated, err := b.changeStatus(job)
			if err != nil {
				b.cmd.Println(errorStyle.Render("Error:"), describe(err))
				continue
			}
			if updated != nil {
				job = updated
			}
		case "d":
			if err := b.app.Tracker.Delete(b.cmd.Context(), b.userID, job.ID); err != nil {
				b.cmd.Println(errorStyle.Render("Error:"), describe(err))
				continue
			}
			b.cmd.Println("✓ Deleted")
			return nil
		case "b":
			return nil
		default:
			b.cmd.Println("Invalid choice")
		}
	}
}

func (b *browser) changeStatus(job *models.JobApplication) (*models.JobApplication, error) {
	for i, st := range models.Statuses {
		b.cmd.Printf("  [%d] %s\n", i+1, renderStatus(st))
	}
	input, ok := b.readLine()
	if !ok {
		return nil, nil
	}

	var st models.Status
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(models.Statuses) {
		st = models.Statuses[n-1]
	} else if st, err = models.ParseStatus(input); err != nil {
		return nil, err
	}

	updated, err := b.app.Tracker.Update(b.cmd.Context(), b.userID, job.ID, tracker.UpdateInput{Status: &st})
	if err != nil {
		return nil, err
	}
	b.cmd.Printf("✓ Status updated to %s\n", renderStatus(updated.Status))
	return updated, nil
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
