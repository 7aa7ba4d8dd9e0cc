package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/uplift-labs/uplift/pkg/affirmations"
)

// CreateAffirmationRequest is the payload for a user submission. Text
// bounds match the submission form: 10 to 200 characters.
type CreateAffirmationRequest struct {
	Text     string   `json:"text" validate:"required,min=10,max=200"`
	TextEn   string   `json:"textEn,omitempty" validate:"omitempty,max=200"`
	Author   string   `json:"author,omitempty" validate:"omitempty,max=100"`
	Source   string   `json:"source,omitempty" validate:"omitempty,max=100"`
	Theme    string   `json:"theme" validate:"required,oneof=confidence love success health"`
	Scene    string   `json:"scene" validate:"required,oneof=morning evening work"`
	AgeGroup string   `json:"ageGroup" validate:"required,oneof=20s 30s 40s 50s 60s+"`
	Language string   `json:"language" validate:"required,oneof=ja en"`
	Tags     []string `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=32"`
}

// filtersFromQuery reads the filter dimensions off the query string.
func filtersFromQuery(c echo.Context) affirmations.Filters {
	return affirmations.Filters{
		Theme:             affirmations.Theme(c.QueryParam("theme")),
		Scene:             affirmations.Scene(c.QueryParam("scene")),
		AgeGroup:          affirmations.AgeGroup(c.QueryParam("ageGroup")),
		Language:          affirmations.Language(c.QueryParam("language")),
		OnlyFavorites:     c.QueryParam("onlyFavorites") == "true",
		OnlyUserGenerated: c.QueryParam("onlyUserGenerated") == "true",
		HasEnglish:        c.QueryParam("hasEnglish") == "true",
		SearchQuery:       c.QueryParam("q"),
	}
}

// mapEngineError converts engine sentinels to HTTP errors.
func mapEngineError(err error) error {
	switch {
	case errors.Is(err, affirmations.ErrNotInitialized):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Catalog is not loaded yet")
	case errors.Is(err, affirmations.ErrAffirmationNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Affirmation not found")
	case errors.Is(err, affirmations.ErrNotUserGenerated):
		return echo.NewHTTPError(http.StatusForbidden, "Only user-submitted affirmations can be deleted")
	case errors.Is(err, affirmations.ErrStorageFailed):
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to persist change")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// Health reports liveness and whether the catalog load completed.
func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":      "ok",
		"initialized": s.service.Initialized(),
	})
}

// ListAffirmations returns the filtered catalog, optionally sorted.
func (s *Server) ListAffirmations(c echo.Context) error {
	items, err := s.service.Filtered(filtersFromQuery(c))
	if err != nil {
		return mapEngineError(err)
	}

	if sortOpt := c.QueryParam("sort"); sortOpt != "" {
		items = s.service.Sorted(items, affirmations.SortOption(sortOpt))
	}

	if items == nil {
		items = []affirmations.Affirmation{}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": items, "count": len(items)})
}

// GetAffirmation returns a single catalog item by id.
func (s *Server) GetAffirmation(c echo.Context) error {
	item, err := s.service.ByID(c.Param("id"))
	if err != nil {
		return mapEngineError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": item})
}

// RandomAffirmation picks one item matching the query filters.
func (s *Server) RandomAffirmation(c echo.Context) error {
	filters := filtersFromQuery(c)
	item, err := s.service.Random(&filters)
	if err != nil {
		return mapEngineError(err)
	}
	if item == nil {
		return echo.NewHTTPError(http.StatusNotFound, "No affirmation matches the given filters")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": item})
}

// RecommendedAffirmation picks an item for the current time of day and the
// stored user profile.
func (s *Server) RecommendedAffirmation(c echo.Context) error {
	item, err := s.service.Recommended()
	if err != nil {
		return mapEngineError(err)
	}
	if item == nil {
		return echo.NewHTTPError(http.StatusNotFound, "No recommendation available")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": item})
}

// DailySpecial returns today's featured affirmation.
func (s *Server) DailySpecial(c echo.Context) error {
	item, err := s.service.DailySpecial()
	if err != nil {
		return mapEngineError(err)
	}
	if item == nil {
		return echo.NewHTTPError(http.StatusNotFound, "No daily special available")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": item})
}

// Stats returns per-category catalog counts.
func (s *Server) Stats(c echo.Context) error {
	stats, err := s.service.Stats()
	if err != nil {
		return mapEngineError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": stats})
}

// CreateAffirmation accepts a user submission.
func (s *Server) CreateAffirmation(c echo.Context) error {
	var req CreateAffirmationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	item, err := s.service.AddUserAffirmation(affirmations.NewAffirmation{
		Text:   req.Text,
		TextEn: req.TextEn,
		Author: req.Author,
		Source: req.Source,
		Categories: affirmations.Categories{
			Theme:    affirmations.Theme(req.Theme),
			Scene:    affirmations.Scene(req.Scene),
			AgeGroup: affirmations.AgeGroup(req.AgeGroup),
		},
		Tags:     req.Tags,
		Language: affirmations.Language(req.Language),
	})
	if err != nil {
		return mapEngineError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": item})
}

// DeleteAffirmation removes a user-submitted item. Catalog-shipped items
// are refused by the engine.
func (s *Server) DeleteAffirmation(c echo.Context) error {
	if err := s.service.RemoveUserAffirmation(c.Param("id")); err != nil {
		return mapEngineError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// GetSettings returns the user settings record plus the first-run flag.
func (s *Server) GetSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"data":       s.settings.Get(),
		"isFirstRun": s.settings.IsFirstRun(),
	})
}

// UpdateSettings applies a partial settings update.
func (s *Server) UpdateSettings(c echo.Context) error {
	var patch affirmations.SettingsPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if patch.Age != nil && !affirmations.ValidAgeGroup(*patch.Age) {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown age group")
	}
	if patch.Language != nil && !affirmations.ValidLanguage(*patch.Language) {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown language")
	}

	if !s.settings.Update(patch) {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to persist settings")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": s.settings.Get()})
}

// AddFavorite marks an affirmation as a favorite.
func (s *Server) AddFavorite(c echo.Context) error {
	id := c.Param("id")
	if _, err := s.service.ByID(id); err != nil {
		return mapEngineError(err)
	}
	if !s.activity.AddFavorite(id) {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to persist favorite")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"favorite": true}})
}

// RemoveFavorite unmarks a favorite. Removing an absent favorite succeeds.
func (s *Server) RemoveFavorite(c echo.Context) error {
	if !s.activity.RemoveFavorite(c.Param("id")) {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to persist favorite removal")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"favorite": false}})
}

// ToggleLike flips like membership for an affirmation.
func (s *Server) ToggleLike(c echo.Context) error {
	id := c.Param("id")
	if _, err := s.service.ByID(id); err != nil {
		return mapEngineError(err)
	}
	if !s.activity.ToggleLike(id) {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to persist like")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"liked": s.activity.IsLiked(id)}})
}

// Preferences summarizes the user's like and favorite history.
func (s *Server) Preferences(c echo.Context) error {
	prefs, err := s.service.Preferences()
	if err != nil {
		return mapEngineError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": prefs})
}

// ExportData returns the full user data bundle for external saving.
func (s *Server) ExportData(c echo.Context) error {
	raw, err := affirmations.ExportJSON(s.settings, s.activity, s.service.Now())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to build export")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="uplift-export.json"`)
	return c.JSONBlob(http.StatusOK, raw)
}

// ResetData deletes all persisted app data and reloads the catalog.
func (s *Server) ResetData(c echo.Context) error {
	if !affirmations.ResetAll(s.kv) {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to reset app data")
	}
	if err := s.service.Reinitialize(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to reload catalog after reset")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
