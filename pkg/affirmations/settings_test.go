package affirmations

import (
	"reflect"
	"testing"
)

func TestSettingsDefaultOnFirstAccess(t *testing.T) {
	settings, _, _ := setupTestStores(t)

	got := settings.Get()
	if !reflect.DeepEqual(got, DefaultUserSettings()) {
		t.Errorf("Expected defaults on first access, got %+v", got)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	settings, _, _ := setupTestStores(t)

	record := UserSettings{
		Age:         Age50s,
		DesignTheme: "empowerment",
		ColorTheme:  "cool-blue",
		IsDarkMode:  true,
		Language:    LangEnglish,
		Notifications: Notifications{
			Enabled:     true,
			MorningTime: "07:15",
			EveningTime: "22:30",
		},
	}

	if !settings.Set(record) {
		t.Fatal("Set failed")
	}
	if got := settings.Get(); !reflect.DeepEqual(got, record) {
		t.Errorf("Round-trip mismatch: stored %+v, got %+v", record, got)
	}
}

func TestSettingsUpdatePatchesOnlyGivenFields(t *testing.T) {
	settings, _, _ := setupTestStores(t)

	age := Age40s
	if !settings.Update(SettingsPatch{Age: &age}) {
		t.Fatal("Update failed")
	}

	got := settings.Get()
	if got.Age != Age40s {
		t.Errorf("Expected patched age %s, got %s", Age40s, got.Age)
	}
	if got.DesignTheme != DefaultUserSettings().DesignTheme {
		t.Errorf("Unpatched field changed: got design theme %s", got.DesignTheme)
	}
}

func TestSettingsNotificationsDeepMerge(t *testing.T) {
	settings, _, _ := setupTestStores(t)

	enabled := true
	if !settings.Update(SettingsPatch{Notifications: &NotificationsPatch{Enabled: &enabled}}) {
		t.Fatal("Update failed")
	}

	got := settings.Get().Notifications
	if !got.Enabled {
		t.Error("Expected notifications to be enabled")
	}
	// A partial patch of the sub-object must not wipe its other fields.
	if got.MorningTime != "08:00" || got.EveningTime != "21:00" {
		t.Errorf("Partial notifications patch replaced sibling fields: %+v", got)
	}
}

func TestSettingsToggleDarkMode(t *testing.T) {
	settings, _, _ := setupTestStores(t)

	settings.ToggleDarkMode()
	if !settings.Get().IsDarkMode {
		t.Error("Expected dark mode on after first toggle")
	}
	settings.ToggleDarkMode()
	if settings.Get().IsDarkMode {
		t.Error("Expected dark mode off after second toggle")
	}
}

func TestSettingsIsFirstRun(t *testing.T) {
	settings, _, _ := setupTestStores(t)

	if !settings.IsFirstRun() {
		t.Error("Expected first run before any write")
	}

	settings.UpdateAge(Age20s)
	if settings.IsFirstRun() {
		t.Error("Expected first run to be over after setup")
	}

	// Explicitly setting everything back to defaults is not a first run:
	// the record is present, which is the signal.
	settings.Set(DefaultUserSettings())
	if settings.IsFirstRun() {
		t.Error("A persisted default record must not look like a first run")
	}

	settings.Reset()
	if !settings.IsFirstRun() {
		t.Error("Expected first run again after reset")
	}
}
