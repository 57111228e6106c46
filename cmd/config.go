package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/khrees2412/jobseeker/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  "View and update configuration settings",
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(titleStyle.Render("Configuration"))
		cmd.Printf("%s %s\n", labelStyle.Render("Config File:"), config.GetConfigPath())

		keys := viper.AllKeys()
		sort.Strings(keys)
		for _, key := range keys {
			value := fmt.Sprint(viper.Get(key))
			if config.IsSecret(key) {
				// Show whether a secret is set, never the secret itself
				if value != "" {
					value = "✓ Configured"
				} else {
					value = "✗ Not configured"
				}
			}
			cmd.Printf("%s %s\n", labelStyle.Render(key+":"), valueStyle.Render(value))
		}
	},
}

var setConfigCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Update a configuration value",
	Args:  cobra.ExactArgs(2),
	Example: `  jobseeker config set server.addr :9000
  jobseeker config set challenge.timezone Africa/Lagos
  jobseeker config set import.use_browser true
  jobseeker config set log.level debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := strings.ToLower(args[0]), args[1]

		// Validate key
		known := map[string]bool{}
		for _, k := range viper.AllKeys() {
			known[k] = true
		}
		if !known[key] {
			valid := viper.AllKeys()
			sort.Strings(valid)
			return fmt.Errorf("invalid key %q. Must be one of: %s", key, strings.Join(valid, ", "))
		}
		if key == "challenge.timezone" {
			probe := config.Config{Challenge: config.ChallengeConfig{Timezone: value}}
			if _, err := probe.Location(); err != nil {
				return err
			}
		}

		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("error updating config: %w", err)
		}

		cmd.Printf("✓ Configuration updated: %s\n", key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(setConfigCmd)
}
