package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's featured affirmation",
	Long: `Show the daily special. The pick is stable for the whole calendar day
and leans toward the theme you have liked the most.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		item, err := eng.service.DailySpecial()
		if err != nil {
			return fmt.Errorf("failed to compute the daily affirmation: %w", err)
		}
		if item == nil {
			fmt.Println("No affirmation available for today.")
			return nil
		}

		fmt.Printf("Today's affirmation (%s):\n\n", eng.service.Now().Format("2006-01-02"))
		printAffirmation(*item, eng.activity)
		return nil
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Pick an affirmation for right now",
	Long: `Pick an affirmation matching the current time of day and your stored
profile. Morning, work and evening hours each get their own scene.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		item, err := eng.service.Recommended()
		if err != nil {
			return fmt.Errorf("failed to compute a recommendation: %w", err)
		}
		if item == nil {
			fmt.Println("No recommendation available.")
			return nil
		}

		printAffirmation(*item, eng.activity)
		return nil
	},
}

func initTodayCmd() {
	// No flags beyond the persistent ones.
}
