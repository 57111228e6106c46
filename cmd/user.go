package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/khrees2412/jobseeker/internal/app"
	"github.com/khrees2412/jobseeker/internal/auth"
	"github.com/khrees2412/jobseeker/internal/config"
	"github.com/khrees2412/jobseeker/pkg/models"
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage your account",
	Long:  "Register, sign in and update the profile that owns your applications",
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Example: `  jobseeker user register --name "Ada Lovelace" --email ada@example.com
  jobseeker user register --name Ada --email ada@example.com --role "Backend Developer"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		in := auth.RegisterInput{}
		in.Name, _ = cmd.Flags().GetString("name")
		in.Email, _ = cmd.Flags().GetString("email")
		in.Password, _ = cmd.Flags().GetString("password")
		in.Role, _ = cmd.Flags().GetString("role")
		in.Location, _ = cmd.Flags().GetString("location")

		if in.Password == "" {
			if in.Password, err = prompt(cmd, "Password: "); err != nil {
				return err
			}
		}

		s, err := a.Auth.Register(cmd.Context(), in)
		if err != nil {
			return err
		}
		if err := config.Set("current_user", s.User.ID); err != nil {
			return fmt.Errorf("save session: %w", err)
		}

		cmd.Println(successStyle.Render("✓ Account created."), "Signed in as", s.User.Email)
		printToken(cmd, s.Token)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:     "login",
	Short:   "Sign in",
	Example: `  jobseeker user login --email ada@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		in := auth.LoginInput{}
		in.Email, _ = cmd.Flags().GetString("email")
		in.Password, _ = cmd.Flags().GetString("password")
		if in.Password == "" {
			if in.Password, err = prompt(cmd, "Password: "); err != nil {
				return err
			}
		}

		s, err := a.Auth.Login(cmd.Context(), in)
		if err != nil {
			return err
		}
		if err := config.Set("current_user", s.User.ID); err != nil {
			return fmt.Errorf("save session: %w", err)
		}

		cmd.Println(successStyle.Render("✓ Signed in as"), s.User.Email)
		printToken(cmd, s.Token)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Set("current_user", ""); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		cmd.Println("✓ Signed out")
		return nil
	},
}

var showUserCmd = &cobra.Command{
	Use:   "show",
	Short: "Display your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, userID, err := session(cmd)
		if err != nil {
			return err
		}

		u, err := a.Auth.Me(cmd.Context(), userID)
		if err != nil {
			return err
		}
		printUser(cmd, u)
		return nil
	},
}

var setUserCmd = &cobra.Command{
	Use:   "set",
	Short: "Update profile fields",
	Example: `  jobseeker user set --location "Lagos, Nigeria" --phone "+234 800 000 0000"
  jobseeker user set --skills 12 --years 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, userID, err := session(cmd)
		if err != nil {
			return err
		}

		var in auth.ProfileInput
		flags := cmd.Flags()
		in.Name = changedString(cmd, "name")
		in.Role = changedString(cmd, "role")
		in.Location = changedString(cmd, "location")
		in.Phone = changedString(cmd, "phone")
		if flags.Changed("skills") {
			n, _ := flags.GetInt("skills")
			in.SkillsCount = &n
		}
		if flags.Changed("years") {
			n, _ := flags.GetInt("years")
			in.YearsExperience = &n
		}

		if in == (auth.ProfileInput{}) {
			cmd.Println("No fields to update. Use flags like --name, --location, etc.")
			return nil
		}

		u, err := a.Auth.UpdateProfile(cmd.Context(), userID, in)
		if err != nil {
			return err
		}
		cmd.Println(successStyle.Render("✓ Profile updated successfully!"))
		printUser(cmd, u)
		return nil
	},
}

func printUser(cmd *cobra.Command, u *models.User) {
	cmd.Println(titleStyle.Render(u.Name))
	cmd.Printf("%s %s\n", labelStyle.Render("Email:"), valueStyle.Render(u.Email))
	cmd.Printf("%s %s\n", labelStyle.Render("Role:"), valueStyle.Render(u.Role))
	if u.Location != "" {
		cmd.Printf("%s %s\n", labelStyle.Render("Location:"), valueStyle.Render(u.Location))
	}
	if u.Phone != "" {
		cmd.Printf("%s %s\n", labelStyle.Render("Phone:"), valueStyle.Render(u.Phone))
	}
	cmd.Printf("%s %d\n", labelStyle.Render("Skills:"), u.SkillsCount)
	cmd.Printf("%s %d\n", labelStyle.Render("Years of Experience:"), u.YearsExperience)
	cmd.Printf("%s %d%%\n", labelStyle.Render("Profile Complete:"), u.ProfileComplete)
	cmd.Printf("%s %d\n", labelStyle.Render("XP:"), u.XP)
}

func printToken(cmd *cobra.Command, token string) {
	if show, _ := cmd.Flags().GetBool("token"); show {
		cmd.Printf("%s %s\n", labelStyle.Render("Token:"), token)
	}
}

// prompt reads one line from the command's input
func prompt(cmd *cobra.Command, label string) (string, error) {
	cmd.Print(labelStyle.Render(label))
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// changedString returns the flag value only when it was set explicitly
func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(registerCmd, loginCmd, logoutCmd, showUserCmd, setUserCmd)

	registerCmd.Flags().String("name", "", "Your name")
	registerCmd.Flags().String("email", "", "Email address")
	registerCmd.Flags().String("password", "", "Password (prompted when omitted)")
	registerCmd.Flags().String("role", "", "Target role (default \""+auth.DefaultRole+"\")")
	registerCmd.Flags().String("location", "", "Where you are based")
	registerCmd.Flags().Bool("token", false, "Print the API token")

	loginCmd.Flags().String("email", "", "Email address")
	loginCmd.Flags().String("password", "", "Password (prompted when omitted)")
	loginCmd.Flags().Bool("token", false, "Print the API token")

	setUserCmd.Flags().String("name", "", "Update name")
	setUserCmd.Flags().String("role", "", "Update target role")
	setUserCmd.Flags().String("location", "", "Update location")
	setUserCmd.Flags().String("phone", "", "Update phone")
	setUserCmd.Flags().Int("skills", 0, "Number of skills")
	setUserCmd.Flags().Int("years", 0, "Years of experience")
}
