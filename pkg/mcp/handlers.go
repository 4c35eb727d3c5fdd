package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/unowned-ai/aquarium/pkg/tanks"
)

const defaultRecentLimit = 5

// RegisterTools registers every aquarium tool on s.
func RegisterTools(s *server.MCPServer, k *tanks.Keeper) {
	s.AddTool(mcp.NewTool("list_tanks",
		mcp.WithDescription("Lists all tanks."),
	), listTanksHandler(k))

	s.AddTool(mcp.NewTool("get_tank",
		mcp.WithDescription("Retrieves a tank with its fish and most recent maintenance."),
		mcp.WithString("tank_id", mcp.Required(), mcp.Description("UUID of the tank.")),
	), getTankHandler(k))

	s.AddTool(mcp.NewTool("create_tank",
		mcp.WithDescription("Creates a new tank."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Display name.")),
		mcp.WithNumber("size_gallons", mcp.Required(), mcp.Description("Volume in gallons, must be positive.")),
		mcp.WithString("tank_type", mcp.Required(), mcp.Description("freshwater, saltwater or brackish.")),
		mcp.WithString("location", mcp.Description("Where the tank stands.")),
		mcp.WithString("equipment", mcp.Description("Comma-separated equipment list.")),
	), createTankHandler(k))

	s.AddTool(mcp.NewTool("delete_tank",
		mcp.WithDescription("Deletes a tank together with its fish and maintenance logs."),
		mcp.WithString("tank_id", mcp.Required(), mcp.Description("UUID of the tank.")),
	), deleteTankHandler(k))

	s.AddTool(mcp.NewTool("list_fish",
		mcp.WithDescription("Lists fish, optionally only those in one tank."),
		mcp.WithString("tank_id", mcp.Description("UUID of a tank to filter by.")),
	), listFishHandler(k))

	s.AddTool(mcp.NewTool("add_fish",
		mcp.WithDescription("Adds a fish to an existing tank."),
		mcp.WithString("tank_id", mcp.Required(), mcp.Description("UUID of the tank.")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name of the fish.")),
		mcp.WithString("species", mcp.Required(), mcp.Description("Species of the fish.")),
		mcp.WithString("health_status", mcp.Description("healthy, sick, recovering or deceased. Defaults to healthy.")),
		mcp.WithString("birth_date", mcp.Description("Birth date as YYYY-MM-DD.")),
		mcp.WithString("size", mcp.Description("Free-form size.")),
		mcp.WithString("color", mcp.Description("Free-form color.")),
		mcp.WithString("feeding_preferences", mcp.Description("Free-form feeding notes.")),
		mcp.WithString("notes", mcp.Description("Free-form notes.")),
	), addFishHandler(k))

	s.AddTool(mcp.NewTool("update_fish_health",
		mcp.WithDescription("Sets the health status of a fish."),
		mcp.WithString("fish_id", mcp.Required(), mcp.Description("UUID of the fish.")),
		mcp.WithString("health_status", mcp.Required(), mcp.Description("healthy, sick, recovering or deceased.")),
	), updateFishHealthHandler(k))

	s.AddTool(mcp.NewTool("move_fish",
		mcp.WithDescription("Moves a fish to another existing tank."),
		mcp.WithString("fish_id", mcp.Required(), mcp.Description("UUID of the fish.")),
		mcp.WithString("tank_id", mcp.Required(), mcp.Description("UUID of the target tank.")),
	), moveFishHandler(k))

	s.AddTool(mcp.NewTool("log_maintenance",
		mcp.WithDescription("Records a maintenance activity for a tank. Use record_water_test for readings."),
		mcp.WithString("tank_id", mcp.Required(), mcp.Description("UUID of the tank.")),
		mcp.WithString("activity_type", mcp.Required(), mcp.Description("water_change, filter_clean, feeding, water_test, equipment_check or medication.")),
		mcp.WithString("description", mcp.Description("What was done.")),
		mcp.WithNumber("percentage", mcp.Description("Percentage of water changed, for water_change.")),
	), logMaintenanceHandler(k))

	s.AddTool(mcp.NewTool("record_water_test",
		mcp.WithDescription("Records a water test and makes it the tank's current parameters."),
		mcp.WithString("tank_id", mcp.Required(), mcp.Description("UUID of the tank.")),
		mcp.WithNumber("temperature", mcp.Description("Degrees Fahrenheit.")),
		mcp.WithNumber("ph", mcp.Description("pH.")),
		mcp.WithNumber("ammonia", mcp.Description("Ammonia in ppm.")),
		mcp.WithNumber("nitrite", mcp.Description("Nitrite in ppm.")),
		mcp.WithNumber("nitrate", mcp.Description("Nitrate in ppm.")),
		mcp.WithNumber("salinity", mcp.Description("Salinity in ppt.")),
		mcp.WithString("notes", mcp.Description("Notes for the log entry.")),
	), recordWaterTestHandler(k))

	s.AddTool(mcp.NewTool("list_maintenance",
		mcp.WithDescription("Lists maintenance logs, newest first."),
		mcp.WithString("tank_id", mcp.Description("UUID of a tank to filter by.")),
		mcp.WithString("activity_type", mcp.Description("Activity type to filter by.")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of logs to return.")),
	), listMaintenanceHandler(k))

	s.AddTool(mcp.NewTool("water_history",
		mcp.WithDescription("Lists a tank's water test readings, newest first."),
		mcp.WithString("tank_id", mcp.Required(), mcp.Description("UUID of the tank.")),
		mcp.WithNumber("limit", mcp.Description(fmt.Sprintf("Maximum number of readings. Defaults to %d.", tanks.DefaultHistoryLimit))),
	), waterHistoryHandler(k))

	s.AddTool(mcp.NewTool("summary",
		mcp.WithDescription("Aggregates fish, health and maintenance counts per tank."),
	), summaryHandler(k))
}

// failure turns a manager error into a tool error. Validation problems are
// reported as such; anything else is an internal failure.
func failure(action string, err error) *mcp.CallToolResult {
	if errors.Is(err, tanks.ErrValidation) {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid input: %v", err))
	}
	return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", action, err))
}

func listTanksHandler(k *tanks.Keeper) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		all, err := k.Tanks.GetAll(ctx)
		if err != nil {
			return failure("list tanks", err), nil
		}
		return jsonResult(all)
	}
}

// TankDetails is the get_tank payload.
type TankDetails struct {
	Tank              tanks.Tank             `json:"tank"`
	Fish              []tanks.Fish           `json:"fish"`
	RecentMaintenance []tanks.MaintenanceLog `json:"recent_maintenance"`
}

func getTankHandler(k *tanks.Keeper) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, bad := requireID(request, "tank_id")
		if bad != nil {
			return bad, nil
		}
		tank, ok, err := k.Tanks.GetByID(ctx, id)
		if err != nil {
			return failure("get tank", err), nil
		}
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("Tank '%s' not found.", id)), nil
		}
		fish, err := k.Fish.GetByTank(ctx, id)
		if err != nil {
			return failure("list fish", err), nil
		}
		logs, err := k.Maintenance.GetByTank(ctx, id)
		if err != nil {
			return failure("list maintenance", err), nil
		}
		if len(logs) > defaultRecentLimit {
			logs = logs[:defaultRecentLimit]
		}
		return jsonResult(TankDetails{Tank: tank, Fish: fish, RecentMaintenance: logs})
	}
}

func createTankHandler(k *tanks.Keeper) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError("'name' parameter is required and must be a string."), nil
		}
		size, err := request.RequireFloat("size_gallons")
		if err != nil {
			return mcp.NewToolResultError("'size_gallons' parameter is required and must be a number."), nil
		}
		tankType, err := request.RequireString("tank_type")
		if err != nil {
			return mcp.NewToolResultError("'tank_type' parameter is required and must be a string."), nil
		}

		tank, err := tanks.NewTank(tanks.TankInput{
			Name:        name,
			SizeGallons: size,
			TankType:    tankType,
			Location:    request.GetString("location", ""),
			Equipment:   splitList(request.GetString("equipment", "")),
		})
		if err != nil {
			return failure("create tank", err), nil
		}
		if err := k.Tanks.Add(ctx, tank); err != nil {
			return failure("create tank", err), nil
		}
		return jsonResult(tank)
	}
}

func deleteTankHandler(k *tanks.Keeper) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, bad := requireID(request, "tank_id")
		if bad != nil {
			return bad, nil
		}
		res, ok, err := k.DeleteTank(ctx, id)
		if err != nil {
			return failure("delete tank", err), nil
		}
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("Tank '%s' not found.", id)), nil
		}
		return jsonResult(res)
	}
}

func listFishHandler(k *tanks.Keeper) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tankID, bad := optionalID(request, "tank_id")
		if bad != nil {
			return bad, nil
		}
		var (
			fish []tanks.Fish
			err  error
		)
		if tankID != nil {
			fish, err = k.Fish.GetByTank(ctx, *tankID)
		} else {
			fish, err = k.Fish.GetAll(ctx)
		}
		if err != nil {
			return failure("list fish", err), nil
		}
		return jsonResult(fish)
	}
}

func addFishHandler(k *tanks.Keeper) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tankID, bad := requireID(request, "tank_id")
		if bad != nil {
			return bad, nil
		}
		in := tanks.FishInput{
			Name:               request.GetString("name", ""),
			Species:            request.GetString("species", ""),
			TankID:             tankID,
			HealthStatus:       request.GetString("health_status", ""),
			Size:               optionalString(request, "size"),
			Color:              optionalString(request, "color"),
			FeedingPreferences: optionalString(request, "feeding_preferences"),
			Notes:              optionalString(request, "notes"),
		}
		if raw := request.GetString("birth_date", ""); raw != "" {
			birth, err := time.Parse("2006-01-02", raw)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("'birth_date' must be YYYY-MM-DD: %v", err)), nil
			}
			in.BirthDate = &birth
		}

		fish, err := tanks.NewFish(in)
		if err != nil {
			return failure("add fish", err), nil
		}
		ok, err := k.AddFish(ctx, fish)
		if err != nil {
			return failure("add fish", err), nil
		}
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("Tank '%s' not found.", tankID)), nil
		}
		return jsonResult(fish)
	}
}

func updateFishHealthHandler(k *tanks.Keeper) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fishID, bad := requireID(request, "fish_id")
		if bad != nil {
			return bad, nil
		}
		status, err := tanks.ParseHealthStatus(request.GetString("health_status", ""))
		if err != nil {
			return failure("update fish health", err), nil
		}
		ok, err := k.Fish.UpdateHealthStatus(ctx, fishID, status)
		if err != nil {
			return failure("update fish health", err), nil
		}
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("Fish '%s' not found.", fishID)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Fish '%s' is now %s.", fishID, status)), nil
	}
}

func moveFishHandler(k *tanks.Keeper) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fishID, bad := requireID(request, "fish_id")
		if bad != nil {
			return bad, nil
		}
		tankID, bad := requireID(request, "tank_id")
		if bad != nil {
			return bad, nil
		}
		ok, err := k.MoveFish(ctx, fishID, tankID)
		if err != nil {
			return failure("move fish", err), nil
		}
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("Fish '%s' or tank '%s' not found.", fishID, tankID)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Fish '%s' moved to tank '%s'.", fishID, tankID)), nil
	}
}

func logMaintenanceHandler(k *tanks.Keeper) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tankID, bad := requireID(request, "tank_id")
		if bad != nil {
			return bad, nil
		}
		activity, err := tanks.ParseActivityType(request.GetString("activity_type", ""))
		if err != nil {
			return failure("log maintenance", err), nil
		}
		log, ok, err := k.LogActivity(ctx, tankID, activity, request.GetString("description", ""), request.GetInt("percentage", 0))
		if err != nil {
			return failure("log maintenance", err), nil
		}
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("Tank '%s' not found.", tankID)), nil
		}
		return jsonResult(log)
	}
}

func recordWaterTestHandler(k *tanks.Keeper) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tankID, bad := requireID(request, "tank_id")
		if bad != nil {
			return bad, nil
		}
		params := tanks.NewWaterParameters(time.Time{})
		params.Temperature = optionalFloat(request, "temperature")
		params.PH = optionalFloat(request, "ph")
		params.Ammonia = optionalFloat(request, "ammonia")
		params.Nitrite = optionalFloat(request, "nitrite")
		params.Nitrate = optionalFloat(request, "nitrate")
		params.Salinity = optionalFloat(request, "salinity")

		log, ok, err := k.RecordWaterTest(ctx, tankID, params, request.GetString("notes", ""))
		if err != nil {
			return failure("record water test", err), nil
		}
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("Tank '%s' not found.", tankID)), nil
		}
		return jsonResult(log)
	}
}

func listMaintenanceHandler(k *tanks.Keeper) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tankID, bad := optionalID(request, "tank_id")
		if bad != nil {
			return bad, nil
		}

		var (
			logs []tanks.MaintenanceLog
			err  error
		)
		switch raw := request.GetString("activity_type", ""); {
		case raw != "":
			activity, perr := tanks.ParseActivityType(raw)
			if perr != nil {
				return failure("list maintenance", perr), nil
			}
			logs, err = k.Maintenance.GetByActivityType(ctx, activity, tankID)
		case tankID != nil:
			logs, err = k.Maintenance.GetByTank(ctx, *tankID)
		default:
			logs, err = k.Maintenance.GetAll(ctx)
		}
		if err != nil {
			return failure("list maintenance", err), nil
		}
		if limit := request.GetInt("limit", 0); limit > 0 && len(logs) > limit {
			logs = logs[:limit]
		}
		return jsonResult(logs)
	}
}

func waterHistoryHandler(k *tanks.Keeper) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tankID, bad := requireID(request, "tank_id")
		if bad != nil {
			return bad, nil
		}
		history, err := k.Maintenance.GetWaterParamHistory(ctx, tankID, request.GetInt("limit", tanks.DefaultHistoryLimit))
		if err != nil {
			return failure("read water history", err), nil
		}
		return jsonResult(history)
	}
}

func summaryHandler(k *tanks.Keeper) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s, err := k.Summary(ctx)
		if err != nil {
			return failure("build summary", err), nil
		}
		return jsonResult(s)
	}
}
