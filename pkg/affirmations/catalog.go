package affirmations

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
)

//go:embed data/affirmations.json
var embeddedCatalog []byte

// LoadCatalog parses the static content asset at path. An empty path loads
// the catalog bundled with the binary. Unknown fields in the asset are
// ignored; missing optional fields default to absent.
func LoadCatalog(path string) ([]Affirmation, error) {
	raw := embeddedCatalog
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file '%s': %w", path, err)
		}
		raw = data
	}

	var file CatalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog data: %w", err)
	}

	return file.Affirmations, nil
}

// mergeCatalog concatenates the static items with user-submitted ones,
// dropping any item whose id collides with one already merged. A collision
// is a logic error in the data, not a user mistake, so it is logged.
func mergeCatalog(static, userItems []Affirmation, log *zap.Logger) []Affirmation {
	merged := make([]Affirmation, 0, len(static)+len(userItems))
	seen := make(map[string]bool, len(static)+len(userItems))

	for _, item := range static {
		if seen[item.ID] {
			log.Warn("duplicate affirmation id in static catalog, dropping", zap.String("id", item.ID))
			continue
		}
		seen[item.ID] = true
		merged = append(merged, item)
	}

	for _, item := range userItems {
		if seen[item.ID] {
			log.Warn("user affirmation id collides with catalog, dropping", zap.String("id", item.ID))
			continue
		}
		seen[item.ID] = true
		merged = append(merged, item)
	}

	return merged
}
