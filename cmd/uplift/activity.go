package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uplift-labs/uplift/pkg/affirmations"
)

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Manage your favorite affirmations",
	Long:  `Add affirmations to, remove them from, and list your favorites.`,
}

var addFavoriteCmd = &cobra.Command{
	Use:   "add [id]",
	Short: "Mark an affirmation as a favorite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		if _, err := eng.service.ByID(args[0]); errors.Is(err, affirmations.ErrAffirmationNotFound) {
			return fmt.Errorf("affirmation not found: %s", args[0])
		} else if err != nil {
			return err
		}

		if !eng.activity.AddFavorite(args[0]) {
			return fmt.Errorf("failed to persist favorite for '%s'", args[0])
		}
		fmt.Printf("Affirmation '%s' added to favorites.\n", args[0])
		return nil
	},
}

var removeFavoriteCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove an affirmation from your favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		if !eng.activity.RemoveFavorite(args[0]) {
			return fmt.Errorf("failed to persist favorite removal for '%s'", args[0])
		}
		fmt.Printf("Affirmation '%s' removed from favorites.\n", args[0])
		return nil
	},
}

var listFavoritesCmd = &cobra.Command{
	Use:   "list",
	Short: "List your favorite affirmations",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		items, err := eng.service.Filtered(affirmations.Filters{OnlyFavorites: true})
		if err != nil {
			return fmt.Errorf("failed to list favorites: %w", err)
		}

		if len(items) == 0 {
			fmt.Println("No favorites yet. Use 'uplift favorites add [id]' to add one.")
			return nil
		}
		for _, item := range items {
			printAffirmationLine(item, eng.activity)
		}
		fmt.Printf("\n%d favorite(s)\n", len(items))
		return nil
	},
}

var likeCmd = &cobra.Command{
	Use:   "like [id]",
	Short: "Toggle the like mark on an affirmation",
	Long: `Toggle the like mark on an affirmation. Liking the same affirmation
again removes the like. Likes drive the theme choice for the daily special.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		if _, err := eng.service.ByID(args[0]); errors.Is(err, affirmations.ErrAffirmationNotFound) {
			return fmt.Errorf("affirmation not found: %s", args[0])
		} else if err != nil {
			return err
		}

		if !eng.activity.ToggleLike(args[0]) {
			return fmt.Errorf("failed to persist like for '%s'", args[0])
		}
		if eng.activity.IsLiked(args[0]) {
			fmt.Printf("Affirmation '%s' liked.\n", args[0])
		} else {
			fmt.Printf("Like removed from affirmation '%s'.\n", args[0])
		}
		return nil
	},
}

func initFavoritesCmd() {
	favoritesCmd.AddCommand(addFavoriteCmd, removeFavoriteCmd, listFavoritesCmd)
}
