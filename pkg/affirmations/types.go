// Package affirmations holds the affirmation catalog, the typed user
// settings/activity stores, and the selection engine that picks content
// based on time of day and the user's like history.
package affirmations

import "time"

// Theme is the closed set of affirmation themes.
type Theme string

const (
	ThemeConfidence Theme = "confidence"
	ThemeLove       Theme = "love"
	ThemeSuccess    Theme = "success"
	ThemeHealth     Theme = "health"
)

// ThemeOrder is the canonical enumeration order of themes. Frequency
// aggregation iterates in this order so ties resolve deterministically.
var ThemeOrder = []Theme{ThemeConfidence, ThemeLove, ThemeSuccess, ThemeHealth}

// Scene is the closed set of usage scenes.
type Scene string

const (
	SceneMorning Scene = "morning"
	SceneEvening Scene = "evening"
	SceneWork    Scene = "work"
)

// SceneOrder is the canonical enumeration order of scenes.
var SceneOrder = []Scene{SceneMorning, SceneEvening, SceneWork}

// AgeGroup is the closed set of age brackets.
type AgeGroup string

const (
	Age20s     AgeGroup = "20s"
	Age30s     AgeGroup = "30s"
	Age40s     AgeGroup = "40s"
	Age50s     AgeGroup = "50s"
	Age60sPlus AgeGroup = "60s+"
)

// AgeGroupOrder is the canonical enumeration order of age brackets.
var AgeGroupOrder = []AgeGroup{Age20s, Age30s, Age40s, Age50s, Age60sPlus}

// Language is the primary language of an affirmation's text.
type Language string

const (
	LangJapanese Language = "ja"
	LangEnglish  Language = "en"
)

// Affirmation is a single displayable text snippet with attribution and
// category tags.
type Affirmation struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	TextEn     string     `json:"textEn,omitempty"`
	Author     string     `json:"author,omitempty"`
	Source     string     `json:"source,omitempty"`
	Categories Categories `json:"categories"`
	Tags       []string   `json:"tags,omitempty"`
	Language   Language   `json:"language"`
	CreatedAt  time.Time  `json:"createdAt"`
	// IsUserGenerated distinguishes catalog-shipped items from locally
	// submitted ones; only the latter may be deleted.
	IsUserGenerated bool `json:"isUserGenerated"`
}

// Categories is the fixed triple of classification axes on an affirmation.
type Categories struct {
	Theme    Theme    `json:"theme"`
	Scene    Scene    `json:"scene"`
	AgeGroup AgeGroup `json:"ageGroup"`
}

// CatalogFile is the shape of the static content asset.
type CatalogFile struct {
	Affirmations []Affirmation `json:"affirmations"`
}

// Filters selects a subset of the catalog. The zero value of each field
// means "no constraint on that dimension". Dimensions combine with AND;
// the text query matches text, textEn, or author (OR across those fields,
// case-insensitive substring).
type Filters struct {
	Theme             Theme    `json:"theme,omitempty"`
	Scene             Scene    `json:"scene,omitempty"`
	AgeGroup          AgeGroup `json:"ageGroup,omitempty"`
	Language          Language `json:"language,omitempty"`
	OnlyFavorites     bool     `json:"onlyFavorites,omitempty"`
	OnlyUserGenerated bool     `json:"onlyUserGenerated,omitempty"`
	HasEnglish        bool     `json:"hasEnglish,omitempty"`
	SearchQuery       string   `json:"searchQuery,omitempty"`
}

// SortOption orders a result set. Sorting is a presentation concern applied
// on top of filtering; Filtered itself preserves catalog order.
type SortOption string

const (
	SortLatest       SortOption = "latest"
	SortOldest       SortOption = "oldest"
	SortAlphabetical SortOption = "alphabetical"
	SortRandom       SortOption = "random"
)

// Notifications holds the user's reminder preferences. Times are "HH:MM"
// strings in device-local time.
type Notifications struct {
	Enabled     bool   `json:"enabled"`
	MorningTime string `json:"morningTime,omitempty"`
	EveningTime string `json:"eveningTime,omitempty"`
}

// UserSettings is the single per-device preference record.
type UserSettings struct {
	Age           AgeGroup      `json:"age"`
	DesignTheme   string        `json:"designTheme"`
	ColorTheme    string        `json:"colorTheme"`
	IsDarkMode    bool          `json:"isDarkMode"`
	Language      Language      `json:"language"`
	Notifications Notifications `json:"notifications"`
}

// DefaultUserSettings returns the hardcoded defaults used on first access.
func DefaultUserSettings() UserSettings {
	return UserSettings{
		Age:         Age30s,
		DesignTheme: "healing",
		ColorTheme:  "warm-healing",
		IsDarkMode:  false,
		Language:    LangJapanese,
		Notifications: Notifications{
			Enabled:     false,
			MorningTime: "08:00",
			EveningTime: "21:00",
		},
	}
}

// DailySpecial memoizes the day's featured affirmation. Date is the
// device-local calendar date in YYYY-MM-DD form.
type DailySpecial struct {
	Date          string `json:"date"`
	AffirmationID string `json:"affirmationId"`
}

// UserActivity is the single per-device interaction record.
type UserActivity struct {
	Favorites        []string      `json:"favorites"`
	Likes            []string      `json:"likes"`
	UserAffirmations []Affirmation `json:"userAffirmations"`
	DailySpecial     *DailySpecial `json:"dailySpecial,omitempty"`
	LastVisit        time.Time     `json:"lastVisit"`
}

// DefaultUserActivity returns the empty activity record used on first access.
func DefaultUserActivity(now time.Time) UserActivity {
	return UserActivity{
		Favorites:        []string{},
		Likes:            []string{},
		UserAffirmations: []Affirmation{},
		LastVisit:        now,
	}
}

// Persistent key space. Readers tolerate any key being absent.
const (
	KeyUserSettings     = "uplift-settings"
	KeyUserActivity     = "uplift-activity"
	KeyDataVersion      = "uplift-data-version"
	KeyAffirmationCache = "uplift-affirmation-cache" // reserved
	KeyLastSync         = "uplift-last-sync"         // reserved
)

// KnownStorageKeys is the fixed set of keys a full reset deletes.
var KnownStorageKeys = []string{
	KeyUserSettings,
	KeyUserActivity,
	KeyDataVersion,
	KeyAffirmationCache,
	KeyLastSync,
}

// ValidTheme reports whether t is a member of the closed theme set.
func ValidTheme(t Theme) bool {
	for _, known := range ThemeOrder {
		if t == known {
			return true
		}
	}
	return false
}

// ValidScene reports whether s is a member of the closed scene set.
func ValidScene(s Scene) bool {
	for _, known := range SceneOrder {
		if s == known {
			return true
		}
	}
	return false
}

// ValidAgeGroup reports whether a is a member of the closed age bracket set.
func ValidAgeGroup(a AgeGroup) bool {
	for _, known := range AgeGroupOrder {
		if a == known {
			return true
		}
	}
	return false
}

// ValidLanguage reports whether l is a supported language.
func ValidLanguage(l Language) bool {
	return l == LangJapanese || l == LangEnglish
}
