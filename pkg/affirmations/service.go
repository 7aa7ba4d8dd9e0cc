package affirmations

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNotInitialized is returned when an engine operation runs before the
	// one-shot catalog load. Callers should treat this as a precondition
	// violation, not an empty result.
	ErrNotInitialized = errors.New("affirmation service is not initialized")
	// ErrAffirmationNotFound is returned when no catalog item has the
	// requested id.
	ErrAffirmationNotFound = errors.New("affirmation not found")
	// ErrNotUserGenerated is returned when a caller attempts to remove a
	// catalog-shipped affirmation.
	ErrNotUserGenerated = errors.New("affirmation is not user-generated")
	// ErrStorageFailed is returned when a mutation could not be persisted.
	ErrStorageFailed = errors.New("failed to persist change")
)

// Service is the content selection and personalization engine. It holds the
// merged catalog and read references to the settings and activity stores;
// all user-state mutation flows through explicit store calls.
type Service struct {
	settings *SettingsStore
	activity *ActivityStore
	log      *zap.Logger

	// mu guards the catalog, the initialization state and the random
	// source. The HTTP and MCP front ends call into a single Service from
	// concurrent goroutines.
	mu          sync.Mutex
	catalog     []Affirmation
	catalogPath string
	initialized bool

	now func() time.Time
	rng *rand.Rand
}

// Option configures a Service at construction time.
type Option func(*Service)

// WithClock overrides the wall clock, for deterministic selection in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRandSource overrides the random source used for uniform picks.
func WithRandSource(src rand.Source) Option {
	return func(s *Service) { s.rng = rand.New(src) }
}

// NewService creates an uninitialized engine. Call Initialize before use.
// logger may be nil.
func NewService(settings *SettingsStore, activity *ActivityStore, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		settings: settings,
		activity: activity,
		log:      logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(s.now().UnixNano()))
	}
	return s
}

// Initialize performs the one-shot catalog load: static items from the data
// asset at catalogPath (empty path loads the embedded catalog), merged with
// user-submitted affirmations recovered from the activity store. Calling
// Initialize on an already-initialized service is a no-op.
func (s *Service) Initialize(catalogPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initializeLocked(catalogPath)
}

func (s *Service) initializeLocked(catalogPath string) error {
	if s.initialized {
		return nil
	}

	static, err := LoadCatalog(catalogPath)
	if err != nil {
		return fmt.Errorf("failed to initialize affirmation service: %w", err)
	}

	s.catalogPath = catalogPath
	return s.initializeWithCatalogLocked(static)
}

// InitializeWithCatalog initializes the engine from an already-parsed static
// item set, merging in user-submitted affirmations from the activity store.
func (s *Service) InitializeWithCatalog(static []Affirmation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initializeWithCatalogLocked(static)
}

func (s *Service) initializeWithCatalogLocked(static []Affirmation) error {
	userItems := s.activity.Get().UserAffirmations
	s.catalog = mergeCatalog(static, userItems, s.log)
	s.initialized = true
	s.log.Info("affirmation catalog loaded",
		zap.Int("static", len(static)),
		zap.Int("user", len(userItems)),
		zap.Int("total", len(s.catalog)))
	return nil
}

// Reinitialize discards the loaded catalog and loads it again from the
// same asset. Used after external changes such as a data reset.
func (s *Service) Reinitialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = false
	s.catalog = nil
	return s.initializeLocked(s.catalogPath)
}

// Initialized reports whether the catalog load has completed.
func (s *Service) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Now returns the engine's current wall-clock time.
func (s *Service) Now() time.Time {
	return s.now()
}

// All returns a copy of the merged catalog in catalog order.
func (s *Service) All() ([]Affirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, ErrNotInitialized
	}
	out := make([]Affirmation, len(s.catalog))
	copy(out, s.catalog)
	return out, nil
}

// ByID returns the catalog item with the given id.
func (s *Service) ByID(id string) (Affirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byIDLocked(id)
}

func (s *Service) byIDLocked(id string) (Affirmation, error) {
	if !s.initialized {
		return Affirmation{}, ErrNotInitialized
	}
	for _, item := range s.catalog {
		if item.ID == id {
			return item, nil
		}
	}
	return Affirmation{}, ErrAffirmationNotFound
}

// Filtered returns the items satisfying every active predicate in filters.
// Dimensions combine with AND; the text query is an OR across text, textEn
// and author, matched case-insensitively. Result order preserves catalog
// order; no sort is applied here.
func (s *Service) Filtered(filters Filters) ([]Affirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filteredLocked(filters)
}

func (s *Service) filteredLocked(filters Filters) ([]Affirmation, error) {
	if !s.initialized {
		return nil, ErrNotInitialized
	}

	var favorites map[string]bool
	if filters.OnlyFavorites {
		activity := s.activity.Get()
		favorites = make(map[string]bool, len(activity.Favorites))
		for _, id := range activity.Favorites {
			favorites[id] = true
		}
	}

	query := strings.ToLower(strings.TrimSpace(filters.SearchQuery))

	var out []Affirmation
	for _, item := range s.catalog {
		if filters.Theme != "" && item.Categories.Theme != filters.Theme {
			continue
		}
		if filters.Scene != "" && item.Categories.Scene != filters.Scene {
			continue
		}
		if filters.AgeGroup != "" && item.Categories.AgeGroup != filters.AgeGroup {
			continue
		}
		if filters.Language != "" && item.Language != filters.Language {
			continue
		}
		if filters.OnlyFavorites && !favorites[item.ID] {
			continue
		}
		if filters.OnlyUserGenerated && !item.IsUserGenerated {
			continue
		}
		if filters.HasEnglish && item.TextEn == "" {
			continue
		}
		if query != "" && !matchesQuery(item, query) {
			continue
		}
		out = append(out, item)
	}

	return out, nil
}

// matchesQuery reports whether the lowercased query appears in the item's
// text, English text, or author.
func matchesQuery(item Affirmation, query string) bool {
	if strings.Contains(strings.ToLower(item.Text), query) {
		return true
	}
	if item.TextEn != "" && strings.Contains(strings.ToLower(item.TextEn), query) {
		return true
	}
	if item.Author != "" && strings.Contains(strings.ToLower(item.Author), query) {
		return true
	}
	return false
}

// Search composes Filtered with the text predicate set to query.
func (s *Service) Search(query string, filters Filters) ([]Affirmation, error) {
	filters.SearchQuery = query
	return s.Filtered(filters)
}

// Random picks one item uniformly from the candidates matching filters
// (the whole catalog when filters is nil). Returns nil on an empty
// candidate set; that is a normal outcome, not an error.
func (s *Service) Random(filters *Filters) (*Affirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.randomLocked(filters)
}

func (s *Service) randomLocked(filters *Filters) (*Affirmation, error) {
	if !s.initialized {
		return nil, ErrNotInitialized
	}

	candidates := s.catalog
	if filters != nil {
		filtered, err := s.filteredLocked(*filters)
		if err != nil {
			return nil, err
		}
		candidates = filtered
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	pick := candidates[s.rng.Intn(len(candidates))]
	return &pick, nil
}

// sceneForHour maps a device-local hour to a scene. The branches are
// ordered: the morning window wins for hours 9-11 even though the work
// window also covers them, and work effectively applies for 12-17.
func sceneForHour(hour int) Scene {
	scene := SceneMorning
	if hour >= 6 && hour < 12 {
		scene = SceneMorning
	} else if hour >= 18 && hour < 24 {
		scene = SceneEvening
	} else if hour >= 9 && hour < 18 {
		scene = SceneWork
	}
	return scene
}

// Recommended picks a random item for the current time of day combined with
// the user's stored age bracket and language.
func (s *Service) Recommended() (*Affirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recommendedLocked()
}

func (s *Service) recommendedLocked() (*Affirmation, error) {
	if !s.initialized {
		return nil, ErrNotInitialized
	}

	settings := s.settings.Get()
	filters := Filters{
		Scene:    sceneForHour(s.now().Hour()),
		AgeGroup: settings.Age,
		Language: settings.Language,
	}
	return s.randomLocked(&filters)
}

// DailySpecial returns today's featured affirmation, computed at most once
// per device-local calendar day. Once memoized, the same item is returned
// for the rest of the day regardless of intervening likes or filter
// changes; that is the intended "today's pick is fixed" contract.
func (s *Service) DailySpecial() (*Affirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, ErrNotInitialized
	}

	if id, ok := s.activity.TodaySpecial(); ok {
		item, err := s.byIDLocked(id)
		if err != nil {
			if errors.Is(err, ErrAffirmationNotFound) {
				// Memoized item no longer exists (e.g. deleted user item);
				// fall through and recompute.
				s.log.Warn("memoized daily special is gone, recomputing", zap.String("id", id))
			} else {
				return nil, err
			}
		} else {
			return &item, nil
		}
	}

	settings := s.settings.Get()
	if theme, ok := s.mostLikedThemeLocked(); ok {
		filters := Filters{
			Theme:    theme,
			AgeGroup: settings.Age,
			Language: settings.Language,
		}
		special, err := s.randomLocked(&filters)
		if err != nil {
			return nil, err
		}
		if special != nil {
			if !s.activity.SetDailySpecial(special.ID) {
				s.log.Warn("failed to persist daily special memo", zap.String("id", special.ID))
			}
			return special, nil
		}
	}

	// No likes yet, or nothing matched the preferred theme: fall back to the
	// time-of-day recommendation.
	recommended, err := s.recommendedLocked()
	if err != nil {
		return nil, err
	}
	if recommended != nil {
		if !s.activity.SetDailySpecial(recommended.ID) {
			s.log.Warn("failed to persist daily special memo", zap.String("id", recommended.ID))
		}
	}
	return recommended, nil
}

// mostLikedThemeLocked aggregates theme frequency over the user's liked
// items. Themes are visited in canonical order with a strict greater-than
// comparison, so the first theme reaching the maximum count wins ties.
func (s *Service) mostLikedThemeLocked() (Theme, bool) {
	activity := s.activity.Get()

	counts := make(map[Theme]int, len(ThemeOrder))
	liked := 0
	for _, id := range activity.Likes {
		item, err := s.byIDLocked(id)
		if err != nil {
			continue
		}
		counts[item.Categories.Theme]++
		liked++
	}
	if liked == 0 {
		return "", false
	}

	best := ThemeOrder[0]
	bestCount := 0
	for _, theme := range ThemeOrder {
		if counts[theme] > bestCount {
			best = theme
			bestCount = counts[theme]
		}
	}
	return best, true
}

// Popular returns up to limit items ordered by like count, most liked
// first. Items with equal counts keep catalog order.
func (s *Service) Popular(limit int) ([]Affirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, ErrNotInitialized
	}

	activity := s.activity.Get()
	likeCounts := make(map[string]int, len(activity.Likes))
	for _, id := range activity.Likes {
		likeCounts[id]++
	}

	out := make([]Affirmation, len(s.catalog))
	copy(out, s.catalog)
	sort.SliceStable(out, func(i, j int) bool {
		return likeCounts[out[i].ID] > likeCounts[out[j].ID]
	})

	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// CategoryStats counts catalog items per classification axis.
type CategoryStats struct {
	Themes    map[Theme]int    `json:"themes"`
	Scenes    map[Scene]int    `json:"scenes"`
	AgeGroups map[AgeGroup]int `json:"ageGroups"`
	Languages map[Language]int `json:"languages"`
	Total     int              `json:"total"`
}

// Stats aggregates per-category counts over the merged catalog.
func (s *Service) Stats() (CategoryStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return CategoryStats{}, ErrNotInitialized
	}

	stats := CategoryStats{
		Themes:    make(map[Theme]int, len(ThemeOrder)),
		Scenes:    make(map[Scene]int, len(SceneOrder)),
		AgeGroups: make(map[AgeGroup]int, len(AgeGroupOrder)),
		Languages: make(map[Language]int, 2),
		Total:     len(s.catalog),
	}
	for _, item := range s.catalog {
		stats.Themes[item.Categories.Theme]++
		stats.Scenes[item.Categories.Scene]++
		stats.AgeGroups[item.Categories.AgeGroup]++
		stats.Languages[item.Language]++
	}
	return stats, nil
}

// UserPreferences summarizes the user's like/favorite history.
type UserPreferences struct {
	FavoriteThemes []Theme `json:"favoriteThemes"`
	FavoriteScenes []Scene `json:"favoriteScenes"`
	TotalLikes     int     `json:"totalLikes"`
	TotalFavorites int     `json:"totalFavorites"`
}

// Preferences analyzes the user's liked items and returns their preferred
// themes and scenes, most frequent first. Only categories with at least one
// like are included.
func (s *Service) Preferences() (UserPreferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return UserPreferences{}, ErrNotInitialized
	}

	activity := s.activity.Get()
	themeCounts := make(map[Theme]int, len(ThemeOrder))
	sceneCounts := make(map[Scene]int, len(SceneOrder))
	for _, id := range activity.Likes {
		item, err := s.byIDLocked(id)
		if err != nil {
			continue
		}
		themeCounts[item.Categories.Theme]++
		sceneCounts[item.Categories.Scene]++
	}

	prefs := UserPreferences{
		FavoriteThemes: []Theme{},
		FavoriteScenes: []Scene{},
		TotalLikes:     len(activity.Likes),
		TotalFavorites: len(activity.Favorites),
	}
	for _, theme := range ThemeOrder {
		if themeCounts[theme] > 0 {
			prefs.FavoriteThemes = append(prefs.FavoriteThemes, theme)
		}
	}
	sort.SliceStable(prefs.FavoriteThemes, func(i, j int) bool {
		return themeCounts[prefs.FavoriteThemes[i]] > themeCounts[prefs.FavoriteThemes[j]]
	})
	for _, scene := range SceneOrder {
		if sceneCounts[scene] > 0 {
			prefs.FavoriteScenes = append(prefs.FavoriteScenes, scene)
		}
	}
	sort.SliceStable(prefs.FavoriteScenes, func(i, j int) bool {
		return sceneCounts[prefs.FavoriteScenes[i]] > sceneCounts[prefs.FavoriteScenes[j]]
	})

	return prefs, nil
}

// NewAffirmation is the caller-supplied part of a user submission. ID,
// creation time and provenance are assigned by the engine.
type NewAffirmation struct {
	Text       string     `json:"text"`
	TextEn     string     `json:"textEn,omitempty"`
	Author     string     `json:"author,omitempty"`
	Source     string     `json:"source,omitempty"`
	Categories Categories `json:"categories"`
	Tags       []string   `json:"tags,omitempty"`
	Language   Language   `json:"language"`
}

// AddUserAffirmation creates a locally authored affirmation, appends it to
// the in-memory catalog and persists it through the activity store. The id
// is namespaced and randomized to keep the merged-catalog uniqueness
// invariant.
func (s *Service) AddUserAffirmation(input NewAffirmation) (Affirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return Affirmation{}, ErrNotInitialized
	}

	now := s.now()
	item := Affirmation{
		ID:              fmt.Sprintf("user_%d_%s", now.UnixMilli(), uuid.NewString()[:8]),
		Text:            input.Text,
		TextEn:          input.TextEn,
		Author:          input.Author,
		Source:          input.Source,
		Categories:      input.Categories,
		Tags:            input.Tags,
		Language:        input.Language,
		CreatedAt:       now,
		IsUserGenerated: true,
	}

	s.catalog = append(s.catalog, item)

	if !s.activity.AddUserAffirmation(item) {
		// The in-memory catalog keeps the item for this session even though
		// the write failed, matching the degraded-persistence policy.
		s.log.Error("failed to persist user affirmation", zap.String("id", item.ID))
		return item, ErrStorageFailed
	}

	s.log.Info("user affirmation added", zap.String("id", item.ID))
	return item, nil
}

// RemoveUserAffirmation deletes a locally authored affirmation. The
// provenance check lives here, in the mutator, rather than being left to
// callers: catalog-shipped items are refused.
func (s *Service) RemoveUserAffirmation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}

	item, err := s.byIDLocked(id)
	if err != nil {
		return err
	}
	if !item.IsUserGenerated {
		return fmt.Errorf("cannot remove '%s': %w", id, ErrNotUserGenerated)
	}

	kept := s.catalog[:0]
	for _, existing := range s.catalog {
		if existing.ID != id {
			kept = append(kept, existing)
		}
	}
	s.catalog = kept

	if !s.activity.RemoveUserAffirmation(id) {
		s.log.Error("failed to persist user affirmation removal", zap.String("id", id))
		return ErrStorageFailed
	}

	s.log.Info("user affirmation removed", zap.String("id", id))
	return nil
}

// Sorted returns items ordered by the given option. The input slice is not
// modified. SortRandom shuffles with the engine's random source.
func (s *Service) Sorted(items []Affirmation, option SortOption) []Affirmation {
	out := make([]Affirmation, len(items))
	copy(out, items)

	switch option {
	case SortLatest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	case SortAlphabetical:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Text < out[j].Text })
	case SortRandom:
		s.mu.Lock()
		s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		s.mu.Unlock()
	}

	return out
}
