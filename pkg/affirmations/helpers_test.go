package affirmations

import (
	"testing"
	"time"

	pkgdb "github.com/uplift-labs/uplift/pkg/db"
	"github.com/uplift-labs/uplift/pkg/kvstore"
)

// testClock is a settable wall clock for deterministic store and engine
// behavior in tests.
type testClock struct {
	current time.Time
}

func (c *testClock) Now() time.Time {
	return c.current
}

func (c *testClock) Set(t time.Time) {
	c.current = t
}

func setupTestKV(t *testing.T) *kvstore.Store {
	t.Helper()

	testDB, err := pkgdb.OpenDBConnection(":memory:", false, "NORMAL")
	if err != nil {
		t.Fatalf("OpenDBConnection failed: %v", err)
	}
	t.Cleanup(func() { testDB.Close() })

	if err := pkgdb.UpgradeDB(testDB, ":memory:", pkgdb.TargetSchemaVersion); err != nil {
		t.Fatalf("UpgradeDB failed: %v", err)
	}

	return kvstore.New(testDB, nil)
}

func setupTestStores(t *testing.T) (*SettingsStore, *ActivityStore, *testClock) {
	t.Helper()

	kv := setupTestKV(t)
	clock := &testClock{current: time.Date(2025, 6, 15, 10, 0, 0, 0, time.Local)}
	return NewSettingsStore(kv), NewActivityStore(kv, clock.Now), clock
}

// testItem builds a catalog affirmation with the given classification.
func testItem(id string, theme Theme, scene Scene, age AgeGroup, lang Language) Affirmation {
	return Affirmation{
		ID:         id,
		Text:       "テスト用のアファメーション " + id,
		Categories: Categories{Theme: theme, Scene: scene, AgeGroup: age},
		Language:   lang,
		CreatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local),
	}
}
