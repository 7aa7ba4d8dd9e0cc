package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uplift-labs/uplift/pkg/affirmations"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View and change user settings",
	Long:  `Show your profile and appearance settings, change individual values, or reset them to defaults.`,
}

var showSettingsCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		settings := eng.settings.Get()
		fmt.Println("User Settings:")
		fmt.Printf("Age Group:     %s\n", settings.Age)
		fmt.Printf("Design Theme:  %s\n", settings.DesignTheme)
		fmt.Printf("Color Theme:   %s\n", settings.ColorTheme)
		fmt.Printf("Dark Mode:     %t\n", settings.IsDarkMode)
		fmt.Printf("Language:      %s\n", settings.Language)
		fmt.Printf("Notifications: enabled=%t morning=%s evening=%s\n",
			settings.Notifications.Enabled,
			settings.Notifications.MorningTime,
			settings.Notifications.EveningTime)
		if eng.settings.IsFirstRun() {
			fmt.Println("\nFirst run: these are the defaults, nothing has been saved yet.")
		}
		return nil
	},
}

var setSettingsCmd = &cobra.Command{
	Use:   "set",
	Short: "Change one or more settings values",
	Long: `Change settings values. Only the flags you pass are changed; everything
else keeps its current value.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch affirmations.SettingsPatch

		if cmd.Flags().Changed("age") {
			ageStr, _ := cmd.Flags().GetString("age")
			age := affirmations.AgeGroup(ageStr)
			if !affirmations.ValidAgeGroup(age) {
				return fmt.Errorf("unknown age group: %s", ageStr)
			}
			patch.Age = &age
		}
		if cmd.Flags().Changed("language") {
			langStr, _ := cmd.Flags().GetString("language")
			lang := affirmations.Language(langStr)
			if !affirmations.ValidLanguage(lang) {
				return fmt.Errorf("unknown language: %s", langStr)
			}
			patch.Language = &lang
		}
		if cmd.Flags().Changed("design-theme") {
			theme, _ := cmd.Flags().GetString("design-theme")
			patch.DesignTheme = &theme
		}
		if cmd.Flags().Changed("color-theme") {
			theme, _ := cmd.Flags().GetString("color-theme")
			patch.ColorTheme = &theme
		}
		if cmd.Flags().Changed("dark-mode") {
			dark, _ := cmd.Flags().GetBool("dark-mode")
			patch.IsDarkMode = &dark
		}
		if cmd.Flags().Changed("notifications") || cmd.Flags().Changed("morning-time") || cmd.Flags().Changed("evening-time") {
			var np affirmations.NotificationsPatch
			if cmd.Flags().Changed("notifications") {
				enabled, _ := cmd.Flags().GetBool("notifications")
				np.Enabled = &enabled
			}
			if cmd.Flags().Changed("morning-time") {
				morning, _ := cmd.Flags().GetString("morning-time")
				np.MorningTime = &morning
			}
			if cmd.Flags().Changed("evening-time") {
				evening, _ := cmd.Flags().GetString("evening-time")
				np.EveningTime = &evening
			}
			patch.Notifications = &np
		}

		if patch == (affirmations.SettingsPatch{}) {
			return fmt.Errorf("no settings flags provided, see 'uplift settings set --help'")
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		if !eng.settings.Update(patch) {
			return fmt.Errorf("failed to persist settings")
		}
		fmt.Println("Settings updated.")
		return nil
	},
}

var setupSettingsCmd = &cobra.Command{
	Use:   "setup",
	Short: "Run the first-time profile setup",
	Long: `Record your age bracket (and optionally language), completing the
first-run setup. Recommendations and the daily special use these values.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ageStr, _ := cmd.Flags().GetString("age")
		age := affirmations.AgeGroup(ageStr)
		if !affirmations.ValidAgeGroup(age) {
			return fmt.Errorf("unknown age group: %s", ageStr)
		}

		patch := affirmations.SettingsPatch{Age: &age}
		if cmd.Flags().Changed("language") {
			langStr, _ := cmd.Flags().GetString("language")
			lang := affirmations.Language(langStr)
			if !affirmations.ValidLanguage(lang) {
				return fmt.Errorf("unknown language: %s", langStr)
			}
			patch.Language = &lang
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		alreadySetUp := !eng.settings.IsFirstRun()
		if !eng.settings.Update(patch) {
			return fmt.Errorf("failed to persist settings")
		}
		if alreadySetUp {
			fmt.Println("Profile updated.")
		} else {
			fmt.Println("Setup complete. Try 'uplift today' for your first daily affirmation.")
		}
		return nil
	},
}

var resetSettingsCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset all settings to defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		if !eng.settings.Reset() {
			return fmt.Errorf("failed to reset settings")
		}
		fmt.Println("Settings reset to defaults.")
		return nil
	},
}

func initSettingsCmd() {
	setSettingsCmd.Flags().String("age", "", "Age group (20s, 30s, 40s, 50s, 60s+)")
	setSettingsCmd.Flags().String("language", "", "Interface language (ja, en)")
	setSettingsCmd.Flags().String("design-theme", "", "Design theme name")
	setSettingsCmd.Flags().String("color-theme", "", "Color theme name")
	setSettingsCmd.Flags().Bool("dark-mode", false, "Enable or disable dark mode")
	setSettingsCmd.Flags().Bool("notifications", false, "Enable or disable reminder notifications")
	setSettingsCmd.Flags().String("morning-time", "", "Morning reminder time (HH:MM)")
	setSettingsCmd.Flags().String("evening-time", "", "Evening reminder time (HH:MM)")

	setupSettingsCmd.Flags().String("age", "", "Age group (20s, 30s, 40s, 50s, 60s+) (required)")
	setupSettingsCmd.Flags().String("language", "", "Interface language (ja, en)")
	setupSettingsCmd.MarkFlagRequired("age")

	settingsCmd.AddCommand(showSettingsCmd, setSettingsCmd, setupSettingsCmd, resetSettingsCmd)
}
