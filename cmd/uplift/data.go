package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/uplift-labs/uplift/pkg/affirmations"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Export, inspect and reset app data",
	Long:  `Export your settings and activity as JSON, show catalog statistics, or wipe all app data.`,
}

var exportDataCmd = &cobra.Command{
	Use:   "export",
	Short: "Export settings and activity as JSON",
	Long:  `Write the full user data bundle (settings and activity) as JSON to stdout or to a file given with --out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, _ := cmd.Flags().GetString("out")

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		raw, err := affirmations.ExportJSON(eng.settings, eng.activity, eng.service.Now())
		if err != nil {
			return fmt.Errorf("failed to build export: %w", err)
		}

		if outPath == "" {
			fmt.Println(string(raw))
			return nil
		}
		if err := os.WriteFile(outPath, raw, 0644); err != nil {
			return fmt.Errorf("failed to write export to '%s': %w", outPath, err)
		}
		fmt.Printf("Exported app data to %s\n", outPath)
		return nil
	},
}

var resetDataCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all app data",
	Long: `Delete all persisted app data: settings, favorites, likes, your own
submissions and the daily-special memo. The shipped catalog is unaffected.
Requires --yes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		confirmed, _ := cmd.Flags().GetBool("yes")
		if !confirmed {
			return errors.New("refusing to delete app data without --yes")
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		if !affirmations.ResetAll(eng.kv) {
			return errors.New("failed to reset app data")
		}
		fmt.Println("All app data deleted.")
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog and activity statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		stats, err := eng.service.Stats()
		if err != nil {
			return fmt.Errorf("failed to compute stats: %w", err)
		}
		prefs, err := eng.service.Preferences()
		if err != nil {
			return fmt.Errorf("failed to compute preferences: %w", err)
		}

		fmt.Printf("Catalog: %d affirmation(s)\n\n", stats.Total)
		fmt.Println("Themes:")
		for _, theme := range affirmations.ThemeOrder {
			fmt.Printf("  %-12s %d\n", theme, stats.Themes[theme])
		}
		fmt.Println("Scenes:")
		for _, scene := range affirmations.SceneOrder {
			fmt.Printf("  %-12s %d\n", scene, stats.Scenes[scene])
		}
		fmt.Println("Age Groups:")
		for _, age := range affirmations.AgeGroupOrder {
			fmt.Printf("  %-12s %d\n", age, stats.AgeGroups[age])
		}

		fmt.Printf("\nActivity: %d like(s), %d favorite(s)\n", prefs.TotalLikes, prefs.TotalFavorites)
		if len(prefs.FavoriteThemes) > 0 {
			fmt.Printf("Most liked themes: ")
			for i, theme := range prefs.FavoriteThemes {
				if i > 0 {
					fmt.Print(", ")
				}
				fmt.Print(theme)
			}
			fmt.Println()
		}
		return nil
	},
}

func initDataCmd() {
	exportDataCmd.Flags().String("out", "", "Write the export to this file instead of stdout")
	resetDataCmd.Flags().Bool("yes", false, "Confirm deletion of all app data")

	dataCmd.AddCommand(exportDataCmd, resetDataCmd, statsCmd)
}
