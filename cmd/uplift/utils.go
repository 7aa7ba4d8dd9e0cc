package main

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/uplift-labs/uplift/pkg/affirmations"
	pkgdb "github.com/uplift-labs/uplift/pkg/db"
	"github.com/uplift-labs/uplift/pkg/kvstore"
	"github.com/uplift-labs/uplift/pkg/utils"
)

var (
	dbPath      string
	walMode     bool
	syncMode    string
	catalogPath string
)

// engine bundles everything a CLI command needs to work with the app data.
type engine struct {
	db       *sql.DB
	kv       *kvstore.Store
	service  *affirmations.Service
	settings *affirmations.SettingsStore
	activity *affirmations.ActivityStore
}

func (e *engine) Close() error {
	return e.db.Close()
}

// openEngine opens the database at the --db path (or the OS default),
// upgrades the schema if needed and loads the affirmation catalog.
func openEngine() (*engine, error) {
	resolvedPath, err := utils.ResolveAndEnsureDBPath(dbPath)
	if err != nil {
		return nil, err
	}

	dbConn, err := pkgdb.OpenDBConnection(resolvedPath, walMode, syncMode)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at '%s': %w", resolvedPath, err)
	}

	if err := pkgdb.UpgradeDB(dbConn, resolvedPath, pkgdb.TargetSchemaVersion); err != nil {
		dbConn.Close()
		return nil, err
	}

	kv := kvstore.New(dbConn, nil)
	if !affirmations.MigrateData(kv, nil) {
		dbConn.Close()
		return nil, fmt.Errorf("failed to migrate app data in '%s'", resolvedPath)
	}

	settings := affirmations.NewSettingsStore(kv)
	activity := affirmations.NewActivityStore(kv, nil)
	service := affirmations.NewService(settings, activity, nil)
	if err := service.Initialize(catalogPath); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("failed to load affirmation catalog: %w", err)
	}

	return &engine{
		db:       dbConn,
		kv:       kv,
		service:  service,
		settings: settings,
		activity: activity,
	}, nil
}

// printAffirmation renders a single affirmation with its activity marks.
func printAffirmation(item affirmations.Affirmation, activity *affirmations.ActivityStore) {
	fmt.Printf("ID:        %s\n", item.ID)
	fmt.Printf("Text:      %s\n", item.Text)
	if item.TextEn != "" {
		fmt.Printf("English:   %s\n", item.TextEn)
	}
	if item.Author != "" {
		fmt.Printf("Author:    %s\n", item.Author)
	}
	fmt.Printf("Theme:     %s\n", item.Categories.Theme)
	fmt.Printf("Scene:     %s\n", item.Categories.Scene)
	fmt.Printf("Age Group: %s\n", item.Categories.AgeGroup)
	fmt.Printf("Language:  %s\n", item.Language)
	if len(item.Tags) > 0 {
		fmt.Printf("Tags:      %s\n", strings.Join(item.Tags, ", "))
	}
	if item.IsUserGenerated {
		fmt.Println("Origin:    user submission")
	}
	if activity != nil {
		var marks []string
		if activity.IsFavorite(item.ID) {
			marks = append(marks, "favorite")
		}
		if activity.IsLiked(item.ID) {
			marks = append(marks, "liked")
		}
		if len(marks) > 0 {
			fmt.Printf("Marks:     %s\n", strings.Join(marks, ", "))
		}
	}
}

// printAffirmationLine renders a compact one-line listing entry.
func printAffirmationLine(item affirmations.Affirmation, activity *affirmations.ActivityStore) {
	mark := " "
	if activity != nil && activity.IsFavorite(item.ID) {
		mark = "*"
	}
	fmt.Printf("%s %-22s [%s/%s/%s] %s\n",
		mark, item.ID,
		item.Categories.Theme, item.Categories.Scene, item.Categories.AgeGroup,
		item.Text)
}
