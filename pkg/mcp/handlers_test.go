package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unowned-ai/aquarium/pkg/storage"
	"github.com/unowned-ai/aquarium/pkg/tanks"
)

func call(t *testing.T, h server.ToolHandlerFunc, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func decode[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	require.False(t, res.IsError, resultText(t, res))
	var v T
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &v))
	return v
}

func newKeeper() *tanks.Keeper {
	return tanks.NewKeeper(storage.NewMemory())
}

func createTank(t *testing.T, k *tanks.Keeper, name string) tanks.Tank {
	t.Helper()
	return decode[tanks.Tank](t, call(t, createTankHandler(k), map[string]any{
		"name":         name,
		"size_gallons": 29.0,
		"tank_type":    "freshwater",
		"equipment":    "Filter, Heater",
	}))
}

func TestCreateAndListTanks(t *testing.T) {
	k := newKeeper()
	tank := createTank(t, k, "Community")
	assert.Equal(t, []string{"Filter", "Heater"}, tank.Equipment)

	all := decode[[]tanks.Tank](t, call(t, listTanksHandler(k), nil))
	require.Len(t, all, 1)
	assert.Equal(t, tank.ID, all[0].ID)

	res := call(t, createTankHandler(k), map[string]any{"name": "Bad", "size_gallons": -5.0, "tank_type": "freshwater"})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "Invalid input")

	res = call(t, createTankHandler(k), map[string]any{"name": "Bad", "size_gallons": 10.0, "tank_type": "reef"})
	assert.True(t, res.IsError)

	res = call(t, createTankHandler(k), map[string]any{"size_gallons": 10.0, "tank_type": "freshwater"})
	assert.True(t, res.IsError)
}

func TestFishTools(t *testing.T) {
	k := newKeeper()
	a := createTank(t, k, "A")
	b := createTank(t, k, "B")

	fish := decode[tanks.Fish](t, call(t, addFishHandler(k), map[string]any{
		"tank_id":    a.ID.String(),
		"name":       "Nemo",
		"species":    "Clownfish",
		"birth_date": "2023-05-01",
		"color":      "orange",
	}))
	assert.Equal(t, tanks.Healthy, fish.HealthStatus)
	require.NotNil(t, fish.Color)
	assert.Equal(t, "orange", *fish.Color)
	require.NotNil(t, fish.BirthDate)

	res := call(t, addFishHandler(k), map[string]any{"tank_id": uuid.NewString(), "name": "Lost", "species": "Guppy"})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "not found")

	res = call(t, updateFishHealthHandler(k), map[string]any{"fish_id": fish.ID.String(), "health_status": "bogus"})
	assert.True(t, res.IsError)

	res = call(t, updateFishHealthHandler(k), map[string]any{"fish_id": fish.ID.String(), "health_status": "sick"})
	require.False(t, res.IsError, resultText(t, res))

	res = call(t, moveFishHandler(k), map[string]any{"fish_id": fish.ID.String(), "tank_id": uuid.NewString()})
	assert.True(t, res.IsError)

	res = call(t, moveFishHandler(k), map[string]any{"fish_id": fish.ID.String(), "tank_id": b.ID.String()})
	require.False(t, res.IsError, resultText(t, res))

	inB := decode[[]tanks.Fish](t, call(t, listFishHandler(k), map[string]any{"tank_id": b.ID.String()}))
	require.Len(t, inB, 1)
	assert.Equal(t, tanks.Sick, inB[0].HealthStatus)

	inA := decode[[]tanks.Fish](t, call(t, listFishHandler(k), map[string]any{"tank_id": a.ID.String()}))
	assert.Empty(t, inA)

	res = call(t, listFishHandler(k), map[string]any{"tank_id": "not-a-uuid"})
	assert.True(t, res.IsError)
}

func TestMaintenanceTools(t *testing.T) {
	k := newKeeper()
	tank := createTank(t, k, "A")
	id := tank.ID.String()

	log := decode[tanks.MaintenanceLog](t, call(t, logMaintenanceHandler(k), map[string]any{
		"tank_id":       id,
		"activity_type": "water_change",
		"description":   "Vacuumed gravel",
		"percentage":    25.0,
	}))
	assert.Equal(t, "25% water change. Vacuumed gravel", log.Description)

	res := call(t, logMaintenanceHandler(k), map[string]any{"tank_id": id, "activity_type": "vacuum"})
	assert.True(t, res.IsError)
	res = call(t, logMaintenanceHandler(k), map[string]any{"tank_id": uuid.NewString(), "activity_type": "feeding"})
	assert.True(t, res.IsError)

	test := decode[tanks.MaintenanceLog](t, call(t, recordWaterTestHandler(k), map[string]any{
		"tank_id": id,
		"ph":      7.4,
		"nitrate": 10.0,
	}))
	assert.Equal(t, "Water parameters tested", test.Description)
	require.NotNil(t, test.WaterParams)
	assert.Nil(t, test.WaterParams.Ammonia)
	assert.Equal(t, 7.4, *test.WaterParams.PH)

	details := decode[TankDetails](t, call(t, getTankHandler(k), map[string]any{"tank_id": id}))
	require.NotNil(t, details.Tank.CurrentParameters)
	assert.Equal(t, 10.0, *details.Tank.CurrentParameters.Nitrate)
	assert.Len(t, details.RecentMaintenance, 2)

	history := decode[[]tanks.WaterParameters](t, call(t, waterHistoryHandler(k), map[string]any{"tank_id": id}))
	assert.Len(t, history, 1)

	logs := decode[[]tanks.MaintenanceLog](t, call(t, listMaintenanceHandler(k), map[string]any{"tank_id": id, "limit": 1.0}))
	assert.Len(t, logs, 1)

	changes := decode[[]tanks.MaintenanceLog](t, call(t, listMaintenanceHandler(k), map[string]any{"activity_type": "water_change"}))
	require.Len(t, changes, 1)
	assert.Equal(t, log.ID, changes[0].ID)
}

func TestRecordWaterTest_NullReadingIsNotMeasured(t *testing.T) {
	k := newKeeper()
	tank := createTank(t, k, "A")

	test := decode[tanks.MaintenanceLog](t, call(t, recordWaterTestHandler(k), map[string]any{
		"tank_id": tank.ID.String(),
		"ph":      7.0,
		"ammonia": nil,
		"nitrite": 0.0,
	}))
	require.NotNil(t, test.WaterParams)
	assert.Nil(t, test.WaterParams.Ammonia)
	require.NotNil(t, test.WaterParams.Nitrite)
	assert.Equal(t, 0.0, *test.WaterParams.Nitrite)
	assert.Equal(t, 7.0, *test.WaterParams.PH)
}

func TestDeleteTankAndSummary(t *testing.T) {
	k := newKeeper()
	doomed := createTank(t, k, "Doomed")
	kept := createTank(t, k, "Kept")
	call(t, addFishHandler(k), map[string]any{"tank_id": doomed.ID.String(), "name": "A", "species": "Guppy"})
	call(t, addFishHandler(k), map[string]any{"tank_id": kept.ID.String(), "name": "B", "species": "Guppy", "health_status": "recovering"})
	call(t, logMaintenanceHandler(k), map[string]any{"tank_id": doomed.ID.String(), "activity_type": "feeding"})

	res := decode[tanks.CascadeResult](t, call(t, deleteTankHandler(k), map[string]any{"tank_id": doomed.ID.String()}))
	assert.Equal(t, tanks.CascadeResult{FishRemoved: 1, LogsRemoved: 1}, res)

	missing := call(t, deleteTankHandler(k), map[string]any{"tank_id": doomed.ID.String()})
	assert.True(t, missing.IsError)

	s := decode[tanks.Summary](t, call(t, summaryHandler(k), nil))
	assert.Equal(t, 1, s.TotalTanks)
	assert.Equal(t, 1, s.TotalFish)
	require.Len(t, s.Tanks, 1)
	assert.Equal(t, 1, s.Tanks[0].Health[tanks.Recovering])
	assert.Equal(t, 0, s.Activities[tanks.Feeding])
}

func TestNewAquariumMCPServer(t *testing.T) {
	k := newKeeper()
	s := NewAquariumMCPServer(k)
	require.NotNil(t, s.MCPRawServer())
	assert.Same(t, k, s.Keeper())
}
