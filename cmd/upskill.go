package cmd

import (
	"strings"

	"github.com/khrees2412/jobseeker/internal/gamification"
	"github.com/spf13/cobra"
)

var upskillCmd = &cobra.Command{
	Use:   "upskill",
	Short: "Daily challenges, courses and learning progress",
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show your upskill progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, userID, err := session(cmd)
		if err != nil {
			return err
		}

		p, err := a.Ledger.Progress(cmd.Context(), userID)
		if err != nil {
			return err
		}

		cmd.Println(titleStyle.Render("Upskill Progress"))
		cmd.Printf("%s %d\n", labelStyle.Render("Courses Completed:"), p.CoursesCompleted)
		cmd.Printf("%s %d\n", labelStyle.Render("Challenges Completed:"), p.ChallengesCompleted)
		cmd.Printf("%s %d\n", labelStyle.Render("Resources Accessed:"), p.UpskillProgress.ResourcesAccessed)
		cmd.Printf("%s %s\n", labelStyle.Render("Today's Challenge:"), doneMark(p.DailyChallengeCompleted))
		if len(p.Interests) > 0 {
			cmd.Printf("%s %s\n", labelStyle.Render("Career Interests:"), strings.Join(p.Interests, ", "))
		}
		return nil
	},
}

var challengeCmd = &cobra.Command{
	Use:   "challenge",
	Short: "Show today's challenge",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, userID, err := session(cmd)
		if err != nil {
			return err
		}

		dc, err := a.Ledger.DailyChallenge(cmd.Context(), userID)
		if err != nil {
			return err
		}

		cmd.Println(titleStyle.Render(dc.Challenge.Title))
		cmd.Println(dc.Challenge.Description)
		cmd.Printf("\n%s %s\n", labelStyle.Render("Type:"), dc.Challenge.Type)
		cmd.Printf("%s %s\n", labelStyle.Render("Status:"), doneMark(dc.Completed))
		if !dc.Completed {
			cmd.Println(mutedStyle.Render("\nDone? Run 'jobseeker upskill complete-challenge'"))
		}
		return nil
	},
}

var completeChallengeCmd = &cobra.Command{
	Use:   "complete-challenge",
	Short: "Mark today's challenge as done",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, userID, err := session(cmd)
		if err != nil {
			return err
		}

		res, err := a.Ledger.CompleteChallenge(cmd.Context(), userID)
		if err != nil {
			return err
		}
		cmd.Printf("%s %d challenges completed so far\n", successStyle.Render("✓ Challenge completed!"), res.TotalChallenges)
		return nil
	},
}

var completeCourseCmd = &cobra.Command{
	Use:     "complete-course <name>",
	Short:   "Record a finished course",
	Args:    cobra.ExactArgs(1),
	Example: `  jobseeker upskill complete-course "Go by Example" --platform Udemy`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, userID, err := session(cmd)
		if err != nil {
			return err
		}

		platform, _ := cmd.Flags().GetString("platform")
		res, err := a.Ledger.CompleteCourse(cmd.Context(), userID, gamification.CourseInput{
			CourseName: args[0],
			Platform:   platform,
		})
		if err != nil {
			return err
		}
		cmd.Printf("%s %s (%d courses total)\n", successStyle.Render("✓ Course completed:"), res.CourseName, res.TotalCourses)
		return nil
	},
}

var trackResourceCmd = &cobra.Command{
	Use:     "track [name]",
	Short:   "Record that you used a learning resource",
	Args:    cobra.MaximumNArgs(1),
	Example: `  jobseeker upskill track "Effective Go" --type article`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, userID, err := session(cmd)
		if err != nil {
			return err
		}

		in := gamification.ResourceInput{}
		in.ResourceType, _ = cmd.Flags().GetString("type")
		if len(args) > 0 {
			in.ResourceName = args[0]
		}

		total, err := a.Ledger.TrackResource(cmd.Context(), userID, in)
		if err != nil {
			return err
		}
		cmd.Printf("✓ Resource tracked (%d total)\n", total)
		return nil
	},
}

var interestsCmd = &cobra.Command{
	Use:     "interests <interest>...",
	Short:   "Replace your career interests",
	Args:    cobra.ArbitraryArgs,
	Example: `  jobseeker upskill interests "Backend" "Cloud" "DevOps"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, userID, err := session(cmd)
		if err != nil {
			return err
		}

		interests, err := a.Ledger.UpdateCareerInterests(cmd.Context(), userID, append([]string{}, args...))
		if err != nil {
			return err
		}
		if len(interests) == 0 {
			cmd.Println("✓ Career interests cleared")
			return nil
		}
		cmd.Printf("✓ Career interests: %s\n", strings.Join(interests, ", "))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show completed courses and challenges",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, userID, err := session(cmd)
		if err != nil {
			return err
		}

		h, err := a.Ledger.LearningHistory(cmd.Context(), userID)
		if err != nil {
			return err
		}

		cmd.Println(titleStyle.Render("Learning History"))
		cmd.Printf("%s (%d)\n", labelStyle.Render("Courses"), len(h.Courses))
		for _, c := range h.Courses {
			cmd.Printf("  • %s %s %s\n", c.CourseName, mutedStyle.Render("on "+c.Platform), c.CompletedAt.Local().Format("Jan 2, 2006"))
		}
		cmd.Printf("\n%s (%d)\n", labelStyle.Render("Challenges"), len(h.Challenges))
		for _, c := range h.Challenges {
			cmd.Printf("  • %s\n", c.CompletedAt.Local().Format("Mon Jan 2, 2006 15:04"))
		}
		return nil
	},
}

func doneMark(done bool) string {
	if done {
		return successStyle.Render("✓ done")
	}
	return mutedStyle.Render("not done yet")
}

func init() {
	rootCmd.AddCommand(upskillCmd)
	upskillCmd.AddCommand(progressCmd, challengeCmd, completeChallengeCmd, completeCourseCmd,
		trackResourceCmd, interestsCmd, historyCmd)

	completeCourseCmd.Flags().String("platform", "", "Where you took the course (default \""+gamification.DefaultPlatform+"\")")
	trackResourceCmd.Flags().String("type", "", "Kind of resource, e.g. video or article")
}
