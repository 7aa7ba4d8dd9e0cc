package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/uplift-labs/uplift/pkg/affirmations"
)

var (
	themeFlag         string
	sceneFlag         string
	ageGroupFlag      string
	languageFlag      string
	favoritesOnlyFlag bool
	mineOnlyFlag      bool
	sortFlag          string
)

// filtersFromFlags builds the engine filter set from the shared flags.
func filtersFromFlags() affirmations.Filters {
	return affirmations.Filters{
		Theme:             affirmations.Theme(themeFlag),
		Scene:             affirmations.Scene(sceneFlag),
		AgeGroup:          affirmations.AgeGroup(ageGroupFlag),
		Language:          affirmations.Language(languageFlag),
		OnlyFavorites:     favoritesOnlyFlag,
		OnlyUserGenerated: mineOnlyFlag,
	}
}

var affirmationsCmd = &cobra.Command{
	Use:   "affirmations",
	Short: "Browse and manage the affirmation catalog",
	Long:  `List, search, show, add and remove affirmations in the local catalog.`,
}

var listAffirmationsCmd = &cobra.Command{
	Use:   "list",
	Short: "List affirmations, optionally filtered",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		items, err := eng.service.Filtered(filtersFromFlags())
		if err != nil {
			return fmt.Errorf("failed to list affirmations: %w", err)
		}
		if sortFlag != "" {
			items = eng.service.Sorted(items, affirmations.SortOption(sortFlag))
		}

		if len(items) == 0 {
			fmt.Println("No affirmations match the given filters.")
			return nil
		}
		for _, item := range items {
			printAffirmationLine(item, eng.activity)
		}
		fmt.Printf("\n%d affirmation(s)\n", len(items))
		return nil
	},
}

var searchAffirmationsCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search affirmation text, translation and author",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		query := strings.Join(args, " ")
		items, err := eng.service.Search(query, filtersFromFlags())
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		if len(items) == 0 {
			fmt.Printf("No affirmations match '%s'.\n", query)
			return nil
		}
		for _, item := range items {
			printAffirmationLine(item, eng.activity)
		}
		fmt.Printf("\n%d match(es)\n", len(items))
		return nil
	},
}

var randomAffirmationCmd = &cobra.Command{
	Use:   "random",
	Short: "Pick a random affirmation, optionally filtered",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		filters := filtersFromFlags()
		item, err := eng.service.Random(&filters)
		if err != nil {
			return fmt.Errorf("failed to pick an affirmation: %w", err)
		}
		if item == nil {
			fmt.Println("No affirmations match the given filters.")
			return nil
		}
		printAffirmation(*item, eng.activity)
		return nil
	},
}

var showAffirmationCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a single affirmation by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		item, err := eng.service.ByID(args[0])
		if errors.Is(err, affirmations.ErrAffirmationNotFound) {
			return fmt.Errorf("affirmation not found: %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to load affirmation: %w", err)
		}
		printAffirmation(item, eng.activity)
		return nil
	},
}

var addAffirmationCmd = &cobra.Command{
	Use:   "add",
	Short: "Submit a personal affirmation to the local catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		textEn, _ := cmd.Flags().GetString("text-en")
		author, _ := cmd.Flags().GetString("author")
		tagsStr, _ := cmd.Flags().GetString("tags")

		if text == "" {
			return errors.New("affirmation text is required")
		}
		if n := len([]rune(text)); n < 10 || n > 200 {
			return errors.New("affirmation text must be between 10 and 200 characters")
		}
		if !affirmations.ValidTheme(affirmations.Theme(themeFlag)) {
			return fmt.Errorf("unknown theme: %s", themeFlag)
		}
		if !affirmations.ValidScene(affirmations.Scene(sceneFlag)) {
			return fmt.Errorf("unknown scene: %s", sceneFlag)
		}
		if !affirmations.ValidAgeGroup(affirmations.AgeGroup(ageGroupFlag)) {
			return fmt.Errorf("unknown age group: %s", ageGroupFlag)
		}
		if languageFlag == "" {
			languageFlag = string(affirmations.LangJapanese)
		}
		if !affirmations.ValidLanguage(affirmations.Language(languageFlag)) {
			return fmt.Errorf("unknown language: %s", languageFlag)
		}

		var tags []string
		for _, tag := range strings.Split(tagsStr, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		item, err := eng.service.AddUserAffirmation(affirmations.NewAffirmation{
			Text:   text,
			TextEn: textEn,
			Author: author,
			Categories: affirmations.Categories{
				Theme:    affirmations.Theme(themeFlag),
				Scene:    affirmations.Scene(sceneFlag),
				AgeGroup: affirmations.AgeGroup(ageGroupFlag),
			},
			Tags:     tags,
			Language: affirmations.Language(languageFlag),
		})
		if err != nil {
			return fmt.Errorf("failed to add affirmation: %w", err)
		}

		fmt.Println("Affirmation added.")
		printAffirmation(item, eng.activity)
		return nil
	},
}

var removeAffirmationCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a user-submitted affirmation",
	Long:  `Remove an affirmation you submitted yourself. Catalog-shipped affirmations cannot be removed.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		err = eng.service.RemoveUserAffirmation(args[0])
		if errors.Is(err, affirmations.ErrAffirmationNotFound) {
			return fmt.Errorf("affirmation not found: %s", args[0])
		}
		if errors.Is(err, affirmations.ErrNotUserGenerated) {
			return fmt.Errorf("affirmation %s is part of the shipped catalog and cannot be removed", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to remove affirmation: %w", err)
		}

		fmt.Printf("Affirmation '%s' removed.\n", args[0])
		return nil
	},
}

func initAffirmationsCmd() {
	affirmationsCmd.PersistentFlags().StringVar(&themeFlag, "theme", "", "Theme filter (confidence, love, success, health)")
	affirmationsCmd.PersistentFlags().StringVar(&sceneFlag, "scene", "", "Scene filter (morning, evening, work)")
	affirmationsCmd.PersistentFlags().StringVar(&ageGroupFlag, "age", "", "Age group filter (20s, 30s, 40s, 50s, 60s+)")
	affirmationsCmd.PersistentFlags().StringVar(&languageFlag, "language", "", "Language filter (ja, en)")

	listAffirmationsCmd.Flags().BoolVar(&favoritesOnlyFlag, "favorites", false, "Only list favorited affirmations")
	listAffirmationsCmd.Flags().BoolVar(&mineOnlyFlag, "mine", false, "Only list your own submissions")
	listAffirmationsCmd.Flags().StringVar(&sortFlag, "sort", "", "Sort order (latest, oldest, alphabetical, random)")

	addAffirmationCmd.Flags().String("text", "", "Affirmation text, 10 to 200 characters (required)")
	addAffirmationCmd.Flags().String("text-en", "", "Optional English translation")
	addAffirmationCmd.Flags().String("author", "", "Optional attribution")
	addAffirmationCmd.Flags().String("tags", "", "Comma-separated list of tags")
	addAffirmationCmd.MarkFlagRequired("text")

	affirmationsCmd.AddCommand(
		listAffirmationsCmd,
		searchAffirmationsCmd,
		randomAffirmationCmd,
		showAffirmationCmd,
		addAffirmationCmd,
		removeAffirmationCmd,
	)
}
