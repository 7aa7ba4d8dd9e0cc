package affirmations

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/uplift-labs/uplift/pkg/kvstore"
)

// CurrentDataVersion is the data-format version this code writes. Any
// schema change to the settings or activity records must add a concrete
// step to MigrateData rather than silently changing defaults.
const CurrentDataVersion = 1

// MigrateData runs pending data migrations and bumps the stored version
// marker. On a fresh install the marker is simply set to the current
// version. Returns false if the marker could not be persisted.
func MigrateData(kv *kvstore.Store, logger *zap.Logger) bool {
	if logger == nil {
		logger = zap.NewNop()
	}

	storedVersion := kvstore.Get(kv, KeyDataVersion, 0)
	if storedVersion >= CurrentDataVersion {
		return true
	}

	if storedVersion < 1 {
		migrateToVersion1(kv)
	}

	if !kvstore.Set(kv, KeyDataVersion, CurrentDataVersion) {
		logger.Error("failed to persist data version marker", zap.Int("version", CurrentDataVersion))
		return false
	}
	logger.Info("data migration completed",
		zap.Int("from", storedVersion),
		zap.Int("to", CurrentDataVersion))
	return true
}

// migrateToVersion1 is the initial version: nothing to transform yet.
func migrateToVersion1(kv *kvstore.Store) {}

// ExportBundle is the on-demand user data export. There is deliberately no
// import counterpart; the bundle exists for the user to save externally.
type ExportBundle struct {
	Settings   UserSettings `json:"settings"`
	Activity   UserActivity `json:"activity"`
	ExportedAt time.Time    `json:"exportedAt"`
}

// Export bundles the current settings and activity records.
func Export(settings *SettingsStore, activity *ActivityStore, now time.Time) ExportBundle {
	return ExportBundle{
		Settings:   settings.Get(),
		Activity:   activity.Get(),
		ExportedAt: now,
	}
}

// ExportJSON renders the export bundle as indented JSON.
func ExportJSON(settings *SettingsStore, activity *ActivityStore, now time.Time) ([]byte, error) {
	return json.MarshalIndent(Export(settings, activity, now), "", "  ")
}

// ResetAll deletes every known persistent key, returning the app to its
// first-run state. The caller should reinitialize the engine afterwards.
func ResetAll(kv *kvstore.Store) bool {
	return kv.ClearAll(KnownStorageKeys)
}
