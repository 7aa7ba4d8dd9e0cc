package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/uplift-labs/uplift/pkg/affirmations"
)

// registerTools wires every tool onto the raw MCP server.
func (s *UpliftMCPServer) registerTools() {
	s.registerPingTool()
	s.registerDailyTools()
	s.registerCatalogTools()
	s.registerSubmissionTools()
	s.registerActivityTools()
	s.registerDataTools()
}

// filtersFromArguments reads the optional filter dimensions off a tool call.
func filtersFromArguments(args map[string]interface{}) affirmations.Filters {
	var filters affirmations.Filters
	if theme, ok := args["theme"].(string); ok {
		filters.Theme = affirmations.Theme(theme)
	}
	if scene, ok := args["scene"].(string); ok {
		filters.Scene = affirmations.Scene(scene)
	}
	if age, ok := args["age_group"].(string); ok {
		filters.AgeGroup = affirmations.AgeGroup(age)
	}
	if lang, ok := args["language"].(string); ok {
		filters.Language = affirmations.Language(lang)
	}
	if onlyFav, ok := args["only_favorites"].(bool); ok {
		filters.OnlyFavorites = onlyFav
	}
	if onlyUser, ok := args["only_user_generated"].(bool); ok {
		filters.OnlyUserGenerated = onlyUser
	}
	return filters
}

// jsonResult marshals v and wraps it in a text result.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize result to JSON: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func withFilterArguments(opts ...mcp.ToolOption) []mcp.ToolOption {
	return append(opts,
		mcp.WithString("theme", mcp.Description("Optional theme filter: confidence, love, success or health.")),
		mcp.WithString("scene", mcp.Description("Optional scene filter: morning, evening or work.")),
		mcp.WithString("age_group", mcp.Description("Optional age group filter: 20s, 30s, 40s, 50s or 60s+.")),
		mcp.WithString("language", mcp.Description("Optional language filter: ja or en.")),
		mcp.WithBoolean("only_favorites", mcp.Description("Restrict to favorited affirmations.")),
		mcp.WithBoolean("only_user_generated", mcp.Description("Restrict to user-submitted affirmations.")),
	)
}

func (s *UpliftMCPServer) registerPingTool() {
	pingTool := mcp.NewTool("ping",
		mcp.WithDescription("Responds with 'pong' to check if the Uplift MCP server is alive."),
	)
	s.mcpServer.AddTool(pingTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("pong_uplift"), nil
	})
}

func (s *UpliftMCPServer) registerDailyTools() {
	dailyTool := mcp.NewTool("get_daily_affirmation",
		mcp.WithDescription("Returns today's featured affirmation. The pick is stable for the whole calendar day."),
	)
	s.mcpServer.AddTool(dailyTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		item, err := s.service.DailySpecial()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to compute daily affirmation: %v", err)), nil
		}
		if item == nil {
			return mcp.NewToolResultError("No affirmation available for today."), nil
		}
		return jsonResult(item)
	})

	recommendedTool := mcp.NewTool("get_recommended_affirmation",
		mcp.WithDescription("Picks an affirmation matching the current time of day and the stored user profile."),
	)
	s.mcpServer.AddTool(recommendedTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		item, err := s.service.Recommended()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to compute recommendation: %v", err)), nil
		}
		if item == nil {
			return mcp.NewToolResultError("No recommendation available."), nil
		}
		return jsonResult(item)
	})

	randomTool := mcp.NewTool("get_random_affirmation",
		withFilterArguments(
			mcp.WithDescription("Picks a random affirmation, optionally constrained by filters."),
		)...,
	)
	s.mcpServer.AddTool(randomTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filters := filtersFromArguments(request.Params.Arguments)
		item, err := s.service.Random(&filters)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to pick an affirmation: %v", err)), nil
		}
		if item == nil {
			return mcp.NewToolResultError("No affirmation matches the given filters."), nil
		}
		return jsonResult(item)
	})
}

func (s *UpliftMCPServer) registerCatalogTools() {
	listTool := mcp.NewTool("list_affirmations",
		withFilterArguments(
			mcp.WithDescription("Lists affirmations from the catalog, optionally filtered."),
		)...,
	)
	s.mcpServer.AddTool(listTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		items, err := s.service.Filtered(filtersFromArguments(request.Params.Arguments))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list affirmations: %v", err)), nil
		}
		if len(items) == 0 {
			return mcp.NewToolResultText("[]"), nil
		}
		return jsonResult(items)
	})

	searchTool := mcp.NewTool("search_affirmations",
		withFilterArguments(
			mcp.WithDescription("Searches affirmation text, translation and author for a phrase."),
			mcp.WithString("query", mcp.Required(), mcp.Description("Text to search for (case-insensitive).")),
		)...,
	)
	s.mcpServer.AddTool(searchTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, queryOk := request.Params.Arguments["query"].(string)
		if !queryOk || query == "" {
			return mcp.NewToolResultError("'query' parameter is required and must be a non-empty string."), nil
		}

		items, err := s.service.Search(query, filtersFromArguments(request.Params.Arguments))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to search affirmations: %v", err)), nil
		}
		if len(items) == 0 {
			return mcp.NewToolResultText("[]"), nil
		}
		return jsonResult(items)
	})

	statsTool := mcp.NewTool("get_category_stats",
		mcp.WithDescription("Returns catalog counts per theme, scene, age group and language."),
	)
	s.mcpServer.AddTool(statsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := s.service.Stats()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to compute stats: %v", err)), nil
		}
		return jsonResult(stats)
	})
}

func (s *UpliftMCPServer) registerSubmissionTools() {
	addTool := mcp.NewTool("add_affirmation",
		mcp.WithDescription("Submits a personal affirmation to the local catalog."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Affirmation text, 10 to 200 characters.")),
		mcp.WithString("text_en", mcp.Description("Optional English translation.")),
		mcp.WithString("author", mcp.Description("Optional attribution.")),
		mcp.WithString("theme", mcp.Required(), mcp.Description("Theme: confidence, love, success or health.")),
		mcp.WithString("scene", mcp.Required(), mcp.Description("Scene: morning, evening or work.")),
		mcp.WithString("age_group", mcp.Required(), mcp.Description("Age group: 20s, 30s, 40s, 50s or 60s+.")),
		mcp.WithString("language", mcp.Required(), mcp.Description("Language: ja or en.")),
	)
	s.mcpServer.AddTool(addTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, textOk := request.Params.Arguments["text"].(string)
		if !textOk || text == "" {
			return mcp.NewToolResultError("'text' parameter is required and must be a non-empty string."), nil
		}
		if n := len([]rune(text)); n < 10 || n > 200 {
			return mcp.NewToolResultError("'text' must be between 10 and 200 characters."), nil
		}

		theme, _ := request.Params.Arguments["theme"].(string)
		if !affirmations.ValidTheme(affirmations.Theme(theme)) {
			return mcp.NewToolResultError(fmt.Sprintf("Unknown theme '%s'.", theme)), nil
		}
		scene, _ := request.Params.Arguments["scene"].(string)
		if !affirmations.ValidScene(affirmations.Scene(scene)) {
			return mcp.NewToolResultError(fmt.Sprintf("Unknown scene '%s'.", scene)), nil
		}
		age, _ := request.Params.Arguments["age_group"].(string)
		if !affirmations.ValidAgeGroup(affirmations.AgeGroup(age)) {
			return mcp.NewToolResultError(fmt.Sprintf("Unknown age group '%s'.", age)), nil
		}
		lang, _ := request.Params.Arguments["language"].(string)
		if !affirmations.ValidLanguage(affirmations.Language(lang)) {
			return mcp.NewToolResultError(fmt.Sprintf("Unknown language '%s'.", lang)), nil
		}

		textEn, _ := request.Params.Arguments["text_en"].(string)
		author, _ := request.Params.Arguments["author"].(string)

		item, err := s.service.AddUserAffirmation(affirmations.NewAffirmation{
			Text:   text,
			TextEn: textEn,
			Author: author,
			Categories: affirmations.Categories{
				Theme:    affirmations.Theme(theme),
				Scene:    affirmations.Scene(scene),
				AgeGroup: affirmations.AgeGroup(age),
			},
			Language: affirmations.Language(lang),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to add affirmation: %v", err)), nil
		}
		return jsonResult(item)
	})

	removeTool := mcp.NewTool("remove_affirmation",
		mcp.WithDescription("Removes a user-submitted affirmation. Catalog-shipped items cannot be removed."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the affirmation to remove.")),
	)
	s.mcpServer.AddTool(removeTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, idOk := request.Params.Arguments["id"].(string)
		if !idOk || id == "" {
			return mcp.NewToolResultError("'id' parameter is required and must be a non-empty string."), nil
		}
		if err := s.service.RemoveUserAffirmation(id); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to remove affirmation '%s': %v", id, err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Affirmation '%s' removed.", id)), nil
	})
}

func (s *UpliftMCPServer) registerActivityTools() {
	likeTool := mcp.NewTool("toggle_like",
		mcp.WithDescription("Toggles the like mark on an affirmation. Likes drive the daily-special theme choice."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the affirmation to like or unlike.")),
	)
	s.mcpServer.AddTool(likeTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, idOk := request.Params.Arguments["id"].(string)
		if !idOk || id == "" {
			return mcp.NewToolResultError("'id' parameter is required and must be a non-empty string."), nil
		}
		if _, err := s.service.ByID(id); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Affirmation '%s' not found.", id)), nil
		}
		if !s.activity.ToggleLike(id) {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to persist like for '%s'.", id)), nil
		}
		return jsonResult(map[string]interface{}{"id": id, "liked": s.activity.IsLiked(id)})
	})

	addFavTool := mcp.NewTool("add_favorite",
		mcp.WithDescription("Marks an affirmation as a favorite."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the affirmation to favorite.")),
	)
	s.mcpServer.AddTool(addFavTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, idOk := request.Params.Arguments["id"].(string)
		if !idOk || id == "" {
			return mcp.NewToolResultError("'id' parameter is required and must be a non-empty string."), nil
		}
		if _, err := s.service.ByID(id); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Affirmation '%s' not found.", id)), nil
		}
		if !s.activity.AddFavorite(id) {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to persist favorite for '%s'.", id)), nil
		}
		return jsonResult(map[string]interface{}{"id": id, "favorite": true})
	})

	removeFavTool := mcp.NewTool("remove_favorite",
		mcp.WithDescription("Removes an affirmation from the favorites list."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the affirmation to unfavorite.")),
	)
	s.mcpServer.AddTool(removeFavTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, idOk := request.Params.Arguments["id"].(string)
		if !idOk || id == "" {
			return mcp.NewToolResultError("'id' parameter is required and must be a non-empty string."), nil
		}
		if !s.activity.RemoveFavorite(id) {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to persist favorite removal for '%s'.", id)), nil
		}
		return jsonResult(map[string]interface{}{"id": id, "favorite": false})
	})

	listFavTool := mcp.NewTool("list_favorites",
		mcp.WithDescription("Lists all favorited affirmations."),
	)
	s.mcpServer.AddTool(listFavTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		items, err := s.service.Filtered(affirmations.Filters{OnlyFavorites: true})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list favorites: %v", err)), nil
		}
		if len(items) == 0 {
			return mcp.NewToolResultText("[]"), nil
		}
		return jsonResult(items)
	})
}

func (s *UpliftMCPServer) registerDataTools() {
	exportTool := mcp.NewTool("export_data",
		mcp.WithDescription("Exports the full user data bundle (settings and activity) as JSON."),
	)
	s.mcpServer.AddTool(exportTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := affirmations.ExportJSON(s.settings, s.activity, s.service.Now())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to build export: %v", err)), nil
		}
		return mcp.NewToolResultText(string(raw)), nil
	})
}
