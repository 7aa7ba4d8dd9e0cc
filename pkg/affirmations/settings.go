package affirmations

import (
	"github.com/uplift-labs/uplift/pkg/kvstore"
)

// SettingsStore owns the per-device UserSettings record. All mutation goes
// through its methods; readers get value copies.
type SettingsStore struct {
	kv *kvstore.Store
}

// NewSettingsStore creates a SettingsStore over kv.
func NewSettingsStore(kv *kvstore.Store) *SettingsStore {
	return &SettingsStore{kv: kv}
}

// SettingsPatch is a partial update of UserSettings. Nil fields leave the
// current value untouched. The Notifications sub-object merges field by
// field rather than being replaced wholesale.
type SettingsPatch struct {
	Age           *AgeGroup           `json:"age,omitempty"`
	DesignTheme   *string             `json:"designTheme,omitempty"`
	ColorTheme    *string             `json:"colorTheme,omitempty"`
	IsDarkMode    *bool               `json:"isDarkMode,omitempty"`
	Language      *Language           `json:"language,omitempty"`
	Notifications *NotificationsPatch `json:"notifications,omitempty"`
}

// NotificationsPatch is a partial update of the Notifications sub-object.
type NotificationsPatch struct {
	Enabled     *bool   `json:"enabled,omitempty"`
	MorningTime *string `json:"morningTime,omitempty"`
	EveningTime *string `json:"eveningTime,omitempty"`
}

// Get reads the settings record, defaulting to the hardcoded defaults on
// first access or unreadable storage.
func (s *SettingsStore) Get() UserSettings {
	return kvstore.Get(s.kv, KeyUserSettings, DefaultUserSettings())
}

// Set overwrites the whole settings record.
func (s *SettingsStore) Set(settings UserSettings) bool {
	return kvstore.Set(s.kv, KeyUserSettings, settings)
}

// Update applies patch over the current record and persists the result.
func (s *SettingsStore) Update(patch SettingsPatch) bool {
	settings := s.Get()

	if patch.Age != nil {
		settings.Age = *patch.Age
	}
	if patch.DesignTheme != nil {
		settings.DesignTheme = *patch.DesignTheme
	}
	if patch.ColorTheme != nil {
		settings.ColorTheme = *patch.ColorTheme
	}
	if patch.IsDarkMode != nil {
		settings.IsDarkMode = *patch.IsDarkMode
	}
	if patch.Language != nil {
		settings.Language = *patch.Language
	}
	if patch.Notifications != nil {
		if patch.Notifications.Enabled != nil {
			settings.Notifications.Enabled = *patch.Notifications.Enabled
		}
		if patch.Notifications.MorningTime != nil {
			settings.Notifications.MorningTime = *patch.Notifications.MorningTime
		}
		if patch.Notifications.EveningTime != nil {
			settings.Notifications.EveningTime = *patch.Notifications.EveningTime
		}
	}

	return s.Set(settings)
}

// UpdateAge records the user's age bracket. Writing any settings value also
// marks the first-run setup as complete.
func (s *SettingsStore) UpdateAge(age AgeGroup) bool {
	return s.Update(SettingsPatch{Age: &age})
}

// ToggleDarkMode flips the dark-mode flag.
func (s *SettingsStore) ToggleDarkMode() bool {
	settings := s.Get()
	dark := !settings.IsDarkMode
	return s.Update(SettingsPatch{IsDarkMode: &dark})
}

// IsFirstRun reports whether the settings record has never been persisted.
// Presence of the key is the signal; a record the user explicitly set back
// to defaults does not count as a first run.
func (s *SettingsStore) IsFirstRun() bool {
	return !s.kv.Has(KeyUserSettings)
}

// Reset deletes the settings record, reverting subsequent reads to defaults.
func (s *SettingsStore) Reset() bool {
	return s.kv.Remove(KeyUserSettings)
}
