package affirmations

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/uplift-labs/uplift/pkg/kvstore"
)

func setupTestService(t *testing.T, catalog []Affirmation) (*Service, *SettingsStore, *ActivityStore, *testClock) {
	t.Helper()

	settings, activity, clock := setupTestStores(t)
	svc := NewService(settings, activity, nil,
		WithClock(clock.Now),
		WithRandSource(rand.NewSource(1)))
	if err := svc.InitializeWithCatalog(catalog); err != nil {
		t.Fatalf("InitializeWithCatalog failed: %v", err)
	}
	return svc, settings, activity, clock
}

func standardCatalog() []Affirmation {
	return []Affirmation{
		testItem("aff_1", ThemeConfidence, SceneMorning, Age30s, LangJapanese),
		testItem("aff_2", ThemeLove, SceneMorning, Age30s, LangJapanese),
		testItem("aff_3", ThemeSuccess, SceneWork, Age30s, LangJapanese),
		testItem("aff_4", ThemeConfidence, SceneWork, Age20s, LangJapanese),
		testItem("aff_5", ThemeHealth, SceneEvening, Age30s, LangJapanese),
		testItem("aff_6", ThemeLove, SceneEvening, Age30s, LangEnglish),
	}
}

func TestUninitializedServiceFailsLoudly(t *testing.T) {
	settings, activity, clock := setupTestStores(t)
	svc := NewService(settings, activity, nil, WithClock(clock.Now))

	if _, err := svc.All(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("All: expected ErrNotInitialized, got %v", err)
	}
	if _, err := svc.Filtered(Filters{}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Filtered: expected ErrNotInitialized, got %v", err)
	}
	if _, err := svc.Random(nil); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Random: expected ErrNotInitialized, got %v", err)
	}
	if _, err := svc.DailySpecial(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("DailySpecial: expected ErrNotInitialized, got %v", err)
	}
}

func TestFilterConjunction(t *testing.T) {
	svc, _, _, _ := setupTestService(t, standardCatalog())

	got, err := svc.Filtered(Filters{Theme: ThemeConfidence, Scene: SceneWork})
	if err != nil {
		t.Fatalf("Filtered failed: %v", err)
	}

	if len(got) != 1 || got[0].ID != "aff_4" {
		t.Errorf("Expected exactly [aff_4] for theme=confidence AND scene=work, got %v", idsOf(got))
	}
}

func TestFilterEmptyDimensionsMeanNoConstraint(t *testing.T) {
	svc, _, _, _ := setupTestService(t, standardCatalog())

	got, err := svc.Filtered(Filters{})
	if err != nil {
		t.Fatalf("Filtered failed: %v", err)
	}
	if len(got) != 6 {
		t.Errorf("Expected the whole catalog with no active predicates, got %d items", len(got))
	}
}

func TestFilterPreservesCatalogOrder(t *testing.T) {
	svc, _, _, _ := setupTestService(t, standardCatalog())

	got, _ := svc.Filtered(Filters{AgeGroup: Age30s})
	want := []string{"aff_1", "aff_2", "aff_3", "aff_5", "aff_6"}
	gotIDs := idsOf(got)
	for i, id := range want {
		if gotIDs[i] != id {
			t.Fatalf("Catalog order not preserved: expected %v, got %v", want, gotIDs)
		}
	}
}

func TestTextSearchAcrossFieldsCaseInsensitive(t *testing.T) {
	catalog := standardCatalog()
	catalog[2].Author = "Haruki Tanaka"
	catalog[4].TextEn = "My body is my ally."
	svc, _, _, _ := setupTestService(t, catalog)

	// Match on author only; casing differs from the stored value.
	got, err := svc.Search("haruki", Filters{})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "aff_3" {
		t.Errorf("Expected author-only match [aff_3], got %v", idsOf(got))
	}

	// Match on the English text only.
	got, _ = svc.Search("ALLY", Filters{})
	if len(got) != 1 || got[0].ID != "aff_5" {
		t.Errorf("Expected textEn match [aff_5], got %v", idsOf(got))
	}

	// Search combines with other dimensions (AND).
	got, _ = svc.Search("haruki", Filters{Theme: ThemeLove})
	if len(got) != 0 {
		t.Errorf("Expected no results when search and theme conflict, got %v", idsOf(got))
	}
}

func TestFavoritesOnlyFilter(t *testing.T) {
	svc, _, activity, _ := setupTestService(t, standardCatalog())

	activity.AddFavorite("aff_2")
	activity.AddFavorite("aff_5")

	got, err := svc.Filtered(Filters{OnlyFavorites: true})
	if err != nil {
		t.Fatalf("Filtered failed: %v", err)
	}
	gotIDs := idsOf(got)
	if len(gotIDs) != 2 || gotIDs[0] != "aff_2" || gotIDs[1] != "aff_5" {
		t.Errorf("Expected [aff_2 aff_5], got %v", gotIDs)
	}
}

func TestRandomEmptyCandidatesReturnsNil(t *testing.T) {
	svc, _, _, _ := setupTestService(t, standardCatalog())

	got, err := svc.Random(&Filters{Theme: ThemeHealth, Scene: SceneMorning})
	if err != nil {
		t.Fatalf("Random failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for empty candidate set, got %v", got.ID)
	}
}

func TestRandomPicksFromCandidates(t *testing.T) {
	svc, _, _, _ := setupTestService(t, standardCatalog())

	for i := 0; i < 20; i++ {
		got, err := svc.Random(&Filters{Scene: SceneEvening})
		if err != nil {
			t.Fatalf("Random failed: %v", err)
		}
		if got == nil {
			t.Fatal("Expected a pick from a non-empty candidate set")
		}
		if got.ID != "aff_5" && got.ID != "aff_6" {
			t.Errorf("Random pick %s is outside the candidate set", got.ID)
		}
	}
}

func TestSceneForHourPrecedence(t *testing.T) {
	cases := []struct {
		hour int
		want Scene
	}{
		{0, SceneMorning}, // before any window: default
		{5, SceneMorning},
		{6, SceneMorning},
		{9, SceneMorning},  // morning wins over the overlapping work window
		{10, SceneMorning}, // likewise
		{11, SceneMorning},
		{12, SceneWork},
		{17, SceneWork},
		{18, SceneEvening},
		{23, SceneEvening},
	}
	for _, tc := range cases {
		if got := sceneForHour(tc.hour); got != tc.want {
			t.Errorf("sceneForHour(%d) = %s, want %s", tc.hour, got, tc.want)
		}
	}
}

func TestRecommendedUsesTimeOfDayAndSettings(t *testing.T) {
	svc, settings, _, clock := setupTestService(t, standardCatalog())

	settings.UpdateAge(Age30s)

	// Hour 10 sits inside both the morning and work windows; morning must win.
	clock.Set(time.Date(2025, 6, 15, 10, 0, 0, 0, time.Local))
	for i := 0; i < 10; i++ {
		got, err := svc.Recommended()
		if err != nil {
			t.Fatalf("Recommended failed: %v", err)
		}
		if got == nil {
			t.Fatal("Expected a recommendation")
		}
		if got.Categories.Scene != SceneMorning {
			t.Errorf("At hour 10 expected scene=morning, got %s (item %s)", got.Categories.Scene, got.ID)
		}
	}
}

func TestDailySpecialMemoization(t *testing.T) {
	svc, _, activity, clock := setupTestService(t, standardCatalog())

	clock.Set(time.Date(2025, 6, 15, 10, 0, 0, 0, time.Local))
	activity.ToggleLike("aff_2") // love
	activity.ToggleLike("aff_6") // love

	first, err := svc.DailySpecial()
	if err != nil {
		t.Fatalf("DailySpecial failed: %v", err)
	}
	if first == nil {
		t.Fatal("Expected a daily special")
	}

	// Intervening likes would change a fresh computation, but today's pick
	// is fixed.
	activity.ToggleLike("aff_2")
	activity.ToggleLike("aff_6")
	activity.ToggleLike("aff_1")
	activity.ToggleLike("aff_4")

	second, err := svc.DailySpecial()
	if err != nil {
		t.Fatalf("DailySpecial failed: %v", err)
	}
	if second == nil || second.ID != first.ID {
		t.Errorf("Same-day call must return the memoized pick %s, got %v", first.ID, second)
	}

	// The following day recomputes.
	clock.Set(time.Date(2025, 6, 16, 10, 0, 0, 0, time.Local))
	third, err := svc.DailySpecial()
	if err != nil {
		t.Fatalf("DailySpecial failed: %v", err)
	}
	if third == nil {
		t.Fatal("Expected a recomputed daily special")
	}
	if id, ok := activity.TodaySpecial(); !ok || id != third.ID {
		t.Errorf("Recomputed pick %s should be memoized for the new day, memo=%q ok=%v", third.ID, id, ok)
	}
}

func TestDailySpecialUsesMostLikedTheme(t *testing.T) {
	svc, settings, activity, clock := setupTestService(t, standardCatalog())

	settings.UpdateAge(Age30s)
	clock.Set(time.Date(2025, 6, 15, 10, 0, 0, 0, time.Local))

	// Two love likes against one confidence like.
	activity.ToggleLike("aff_2")
	activity.ToggleLike("aff_6")
	activity.ToggleLike("aff_1")

	got, err := svc.DailySpecial()
	if err != nil {
		t.Fatalf("DailySpecial failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected a daily special")
	}
	if got.Categories.Theme != ThemeLove {
		t.Errorf("Expected the most-liked theme love, got %s (item %s)", got.Categories.Theme, got.ID)
	}
}

func TestMostLikedThemeTieBreak(t *testing.T) {
	svc, _, activity, _ := setupTestService(t, standardCatalog())

	// confidence: 2 likes, love: 2 likes. The canonical enumeration order
	// puts confidence first, and a strict comparison keeps it there.
	activity.ToggleLike("aff_1")
	activity.ToggleLike("aff_4")
	activity.ToggleLike("aff_2")
	activity.ToggleLike("aff_6")

	for i := 0; i < 5; i++ {
		svc.mu.Lock()
		theme, ok := svc.mostLikedThemeLocked()
		svc.mu.Unlock()
		if !ok {
			t.Fatal("Expected a most-liked theme")
		}
		if theme != ThemeConfidence {
			t.Errorf("Tie must resolve to the first theme in canonical order, got %s", theme)
		}
	}
}

func TestDailySpecialFallsBackToRecommendation(t *testing.T) {
	svc, _, activity, clock := setupTestService(t, standardCatalog())

	clock.Set(time.Date(2025, 6, 15, 10, 0, 0, 0, time.Local))

	// No likes at all: fall back to the time-of-day recommendation and
	// still memoize the pick.
	got, err := svc.DailySpecial()
	if err != nil {
		t.Fatalf("DailySpecial failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected a fallback daily special")
	}
	if id, ok := activity.TodaySpecial(); !ok || id != got.ID {
		t.Errorf("Fallback pick should be memoized, memo=%q ok=%v", id, ok)
	}
}

func TestAddUserAffirmation(t *testing.T) {
	svc, _, activity, _ := setupTestService(t, standardCatalog())

	item, err := svc.AddUserAffirmation(NewAffirmation{
		Text:       "私は毎日、少しずつ強くなっています。",
		Categories: Categories{Theme: ThemeConfidence, Scene: SceneMorning, AgeGroup: Age30s},
		Language:   LangJapanese,
	})
	if err != nil {
		t.Fatalf("AddUserAffirmation failed: %v", err)
	}

	if !item.IsUserGenerated {
		t.Error("Submitted item must be flagged user-generated")
	}
	if item.ID == "" {
		t.Error("Submitted item must get an id")
	}

	// Visible through the engine and persisted in the activity record.
	if _, err := svc.ByID(item.ID); err != nil {
		t.Errorf("Expected submitted item in catalog: %v", err)
	}
	stored := activity.Get().UserAffirmations
	if len(stored) != 1 || stored[0].ID != item.ID {
		t.Errorf("Expected submitted item persisted, got %v", stored)
	}
}

func TestUserAffirmationSurvivesReinitialize(t *testing.T) {
	svc, settings, activity, clock := setupTestService(t, standardCatalog())

	item, err := svc.AddUserAffirmation(NewAffirmation{
		Text:       "復元されるアファメーション",
		Categories: Categories{Theme: ThemeLove, Scene: SceneEvening, AgeGroup: Age40s},
		Language:   LangJapanese,
	})
	if err != nil {
		t.Fatalf("AddUserAffirmation failed: %v", err)
	}

	// A fresh engine over the same stores recovers the submission at load.
	fresh := NewService(settings, activity, nil, WithClock(clock.Now))
	if err := fresh.InitializeWithCatalog(standardCatalog()); err != nil {
		t.Fatalf("InitializeWithCatalog failed: %v", err)
	}
	if _, err := fresh.ByID(item.ID); err != nil {
		t.Errorf("Expected user item recovered at startup: %v", err)
	}
}

func TestRemoveUserAffirmationProvenance(t *testing.T) {
	svc, _, _, _ := setupTestService(t, standardCatalog())

	// Catalog-shipped items are refused by the mutator itself.
	err := svc.RemoveUserAffirmation("aff_1")
	if !errors.Is(err, ErrNotUserGenerated) {
		t.Errorf("Expected ErrNotUserGenerated for catalog item, got %v", err)
	}

	item, err := svc.AddUserAffirmation(NewAffirmation{
		Text:       "消されるアファメーション",
		Categories: Categories{Theme: ThemeHealth, Scene: SceneWork, AgeGroup: Age30s},
		Language:   LangJapanese,
	})
	if err != nil {
		t.Fatalf("AddUserAffirmation failed: %v", err)
	}

	if err := svc.RemoveUserAffirmation(item.ID); err != nil {
		t.Fatalf("RemoveUserAffirmation failed: %v", err)
	}
	if _, err := svc.ByID(item.ID); !errors.Is(err, ErrAffirmationNotFound) {
		t.Errorf("Expected item gone from catalog, got %v", err)
	}

	if err := svc.RemoveUserAffirmation("no-such-id"); !errors.Is(err, ErrAffirmationNotFound) {
		t.Errorf("Expected ErrAffirmationNotFound for unknown id, got %v", err)
	}
}

func TestMergeCatalogDropsDuplicateIDs(t *testing.T) {
	settings, activity, clock := setupTestStores(t)

	dup := testItem("aff_1", ThemeLove, SceneWork, Age20s, LangJapanese)
	dup.IsUserGenerated = true
	activity.AddUserAffirmation(dup)

	svc := NewService(settings, activity, nil, WithClock(clock.Now))
	if err := svc.InitializeWithCatalog(standardCatalog()); err != nil {
		t.Fatalf("InitializeWithCatalog failed: %v", err)
	}

	all, _ := svc.All()
	count := 0
	for _, item := range all {
		if item.ID == "aff_1" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected id uniqueness across the merged catalog, found %d copies of aff_1", count)
	}
}

func TestPopularOrdersByLikes(t *testing.T) {
	svc, _, activity, _ := setupTestService(t, standardCatalog())

	activity.ToggleLike("aff_5")

	got, err := svc.Popular(3)
	if err != nil {
		t.Fatalf("Popular failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(got))
	}
	if got[0].ID != "aff_5" {
		t.Errorf("Expected the liked item first, got %v", idsOf(got))
	}
	// Ties keep catalog order.
	if got[1].ID != "aff_1" || got[2].ID != "aff_2" {
		t.Errorf("Expected stable catalog order among ties, got %v", idsOf(got))
	}
}

func TestStats(t *testing.T) {
	svc, _, _, _ := setupTestService(t, standardCatalog())

	stats, err := svc.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 6 {
		t.Errorf("Expected total 6, got %d", stats.Total)
	}
	if stats.Themes[ThemeConfidence] != 2 || stats.Themes[ThemeLove] != 2 {
		t.Errorf("Unexpected theme counts: %v", stats.Themes)
	}
	if stats.Languages[LangEnglish] != 1 {
		t.Errorf("Expected 1 English item, got %d", stats.Languages[LangEnglish])
	}
}

func TestPreferences(t *testing.T) {
	svc, _, activity, _ := setupTestService(t, standardCatalog())

	activity.ToggleLike("aff_2") // love, morning
	activity.ToggleLike("aff_6") // love, evening
	activity.ToggleLike("aff_3") // success, work
	activity.AddFavorite("aff_1")

	prefs, err := svc.Preferences()
	if err != nil {
		t.Fatalf("Preferences failed: %v", err)
	}
	if prefs.TotalLikes != 3 || prefs.TotalFavorites != 1 {
		t.Errorf("Unexpected totals: %+v", prefs)
	}
	if len(prefs.FavoriteThemes) == 0 || prefs.FavoriteThemes[0] != ThemeLove {
		t.Errorf("Expected love as the top theme, got %v", prefs.FavoriteThemes)
	}
}

func TestSorted(t *testing.T) {
	items := []Affirmation{
		{ID: "b", Text: "b", CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "a", Text: "a", CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "c", Text: "c", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	svc, _, _, _ := setupTestService(t, nil)

	latest := svc.Sorted(items, SortLatest)
	if latest[0].ID != "a" || latest[2].ID != "c" {
		t.Errorf("SortLatest wrong order: %v", idsOf(latest))
	}

	oldest := svc.Sorted(items, SortOldest)
	if oldest[0].ID != "c" || oldest[2].ID != "a" {
		t.Errorf("SortOldest wrong order: %v", idsOf(oldest))
	}

	alpha := svc.Sorted(items, SortAlphabetical)
	if alpha[0].ID != "a" || alpha[1].ID != "b" || alpha[2].ID != "c" {
		t.Errorf("SortAlphabetical wrong order: %v", idsOf(alpha))
	}

	// The input slice must not be modified.
	if items[0].ID != "b" {
		t.Error("Sorted must not modify its input")
	}
}

// End-to-end: empty catalog behavior, then a small catalog exercised
// through filtering and favorites.
func TestEngineEndToEnd(t *testing.T) {
	svc, _, _, _ := setupTestService(t, nil)

	got, err := svc.Random(nil)
	if err != nil {
		t.Fatalf("Random on empty catalog failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil pick from empty catalog, got %v", got.ID)
	}

	items := []Affirmation{
		testItem("e2e_1", ThemeConfidence, SceneMorning, Age20s, LangJapanese),
		testItem("e2e_2", ThemeLove, SceneEvening, Age30s, LangJapanese),
		testItem("e2e_3", ThemeSuccess, SceneWork, Age40s, LangJapanese),
	}
	svc2, _, activity2, _ := setupTestService(t, items)

	byTheme, err := svc2.Filtered(Filters{Theme: items[1].Categories.Theme})
	if err != nil {
		t.Fatalf("Filtered failed: %v", err)
	}
	if len(byTheme) != 1 || byTheme[0].ID != "e2e_2" {
		t.Errorf("Expected exactly [e2e_2], got %v", idsOf(byTheme))
	}

	activity2.AddFavorite("e2e_1")
	favs, err := svc2.Filtered(Filters{OnlyFavorites: true})
	if err != nil {
		t.Fatalf("Filtered failed: %v", err)
	}
	if len(favs) != 1 || favs[0].ID != "e2e_1" {
		t.Errorf("Expected exactly [e2e_1], got %v", idsOf(favs))
	}
}

func TestLoadEmbeddedCatalog(t *testing.T) {
	items, err := LoadCatalog("")
	if err != nil {
		t.Fatalf("LoadCatalog with embedded asset failed: %v", err)
	}
	if len(items) == 0 {
		t.Fatal("Embedded catalog should not be empty")
	}

	seen := map[string]bool{}
	for _, item := range items {
		if item.ID == "" || item.Text == "" {
			t.Errorf("Catalog item missing id or text: %+v", item)
		}
		if seen[item.ID] {
			t.Errorf("Duplicate id in embedded catalog: %s", item.ID)
		}
		seen[item.ID] = true
		if !ValidTheme(item.Categories.Theme) || !ValidScene(item.Categories.Scene) || !ValidAgeGroup(item.Categories.AgeGroup) {
			t.Errorf("Catalog item %s has an unknown category: %+v", item.ID, item.Categories)
		}
		if !ValidLanguage(item.Language) {
			t.Errorf("Catalog item %s has an unknown language: %s", item.ID, item.Language)
		}
	}
}

func idsOf(items []Affirmation) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func TestServiceConcurrentAccess(t *testing.T) {
	svc, _, _, _ := setupTestService(t, standardCatalog())

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if _, err := svc.Random(nil); err != nil {
					t.Errorf("Random failed: %v", err)
					return
				}
				if _, err := svc.Filtered(Filters{OnlyUserGenerated: true}); err != nil {
					t.Errorf("Filtered failed: %v", err)
					return
				}
			}
		}()
	}
	for g := 0; g < 2; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				_, err := svc.AddUserAffirmation(NewAffirmation{
					Text: "並行アクセスの中でも安全に追加できます",
					Categories: Categories{
						Theme:    ThemeSuccess,
						Scene:    SceneWork,
						AgeGroup: Age30s,
					},
					Language: LangJapanese,
				})
				if err != nil {
					t.Errorf("AddUserAffirmation failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	mine, err := svc.Filtered(Filters{OnlyUserGenerated: true})
	if err != nil {
		t.Fatalf("Filtered failed: %v", err)
	}
	if len(mine) != 40 {
		t.Errorf("Expected 40 user submissions after concurrent adds, got %d", len(mine))
	}
}

func TestDailySpecialToleratesMemoWriteFailure(t *testing.T) {
	// A nil database handle stands in for unavailable storage: every write
	// returns false, every read yields the default.
	kv := kvstore.New(nil, nil)
	clock := &testClock{current: time.Date(2025, 6, 15, 10, 0, 0, 0, time.Local)}
	settings := NewSettingsStore(kv)
	activity := NewActivityStore(kv, clock.Now)
	svc := NewService(settings, activity, nil,
		WithClock(clock.Now),
		WithRandSource(rand.NewSource(1)))
	if err := svc.InitializeWithCatalog(standardCatalog()); err != nil {
		t.Fatalf("InitializeWithCatalog failed: %v", err)
	}

	got, err := svc.DailySpecial()
	if err != nil {
		t.Fatalf("DailySpecial failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected a pick even when the memo cannot be persisted")
	}
	if _, ok := activity.TodaySpecial(); ok {
		t.Error("Memo must not appear persisted on unavailable storage")
	}
}
