package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/khrees2412/jobseeker/internal/app"
	"github.com/khrees2412/jobseeker/internal/apperr"
	"github.com/spf13/cobra"
)

// application is built once per invocation and closed by Execute
var application *app.App

var rootCmd = &cobra.Command{
	Use:   "jobseeker",
	Short: "Job application tracker with daily upskill challenges",
	Long: `Jobseeker tracks your job applications, summarises how your search is going
and keeps you learning with daily challenges. Run it as a CLI or serve the
same operations over HTTP with 'jobseeker serve'.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize app with all dependencies
		a, err := app.NewApp(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}
		application = a

		// Store app in command context
		cmd.SetContext(app.SetAppInContext(cmd.Context(), a))
		return nil
	},
}

// Execute runs the root command
func Execute() {
	// Cancel in-flight work on Ctrl-C or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)

	// Cleanup: waits for pending XP awards before closing the database
	if application != nil {
		application.Close()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), describe(err))
		os.Exit(1)
	}
}

// describe renders err for a terminal. Field causes of validation errors
// are listed one per line.
func describe(err error) string {
	var e *apperr.Error
	if !errors.As(err, &e) || e.Kind == apperr.KindInternal {
		return err.Error()
	}
	if len(e.Fields) <= 1 {
		return e.Message
	}
	var b strings.Builder
	b.WriteString(e.Message)
	for _, f := range e.Fields {
		fmt.Fprintf(&b, "\n  %s: %s", f.Field, f.Message)
	}
	return b.String()
}

// session returns the container and the signed-in user
func session(cmd *cobra.Command) (*app.App, string, error) {
	a, err := app.FromContext(cmd.Context())
	if err != nil {
		return nil, "", err
	}
	if a.Config.CurrentUser == "" {
		return nil, "", errors.New("not signed in. Run 'jobseeker user login' or 'jobseeker user register' first")
	}
	return a, a.Config.CurrentUser, nil
}
