package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unowned-ai/aquarium/pkg/storage"
	"github.com/unowned-ai/aquarium/pkg/tanks"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send feeds msg to the model and then the messages produced by the returned command.
func send(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(model)
	for cmd != nil {
		out := cmd()
		if out == nil {
			break
		}
		next, cmd = m.Update(out)
		m = next.(model)
	}
	return m
}

func typeText(t *testing.T, m model, s string) model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(model)
}

func seededKeeper(t *testing.T) (*tanks.Keeper, tanks.Tank) {
	t.Helper()
	ctx := context.Background()
	k := tanks.NewKeeper(storage.NewMemory())
	tank, err := tanks.NewTank(tanks.TankInput{Name: "Reef", SizeGallons: 40, TankType: "saltwater"})
	require.NoError(t, err)
	require.NoError(t, k.Tanks.Add(ctx, tank))
	fish, err := tanks.NewFish(tanks.FishInput{Name: "Nemo", Species: "Clownfish", TankID: tank.ID})
	require.NoError(t, err)
	ok, err := k.AddFish(ctx, fish)
	require.NoError(t, err)
	require.True(t, ok)
	_, err = k.Maintenance.LogFeeding(ctx, tank.ID, "pellets")
	require.NoError(t, err)
	return k, tank
}

func TestModel_LoadsTanksAndContents(t *testing.T) {
	k, tank := seededKeeper(t)
	m := initModel(k, "memory")
	m = send(t, m, listTanks(k)())

	require.Len(t, m.tanks, 1)
	assert.Equal(t, tank.ID, m.tanks[0].ID)
	require.Len(t, m.fish, 1)
	assert.Equal(t, "Nemo", m.fish[0].Name)
	require.Len(t, m.logs, 1)

	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()
	assert.Contains(t, view, "Reef")
	assert.Contains(t, view, "Nemo")
	assert.Contains(t, view, "Feeding")
}

func TestModel_CreateTank(t *testing.T) {
	k, _ := seededKeeper(t)
	m := send(t, initModel(k, "memory"), listTanks(k)())

	m = send(t, m, key("n"))
	require.True(t, m.tankCreating)

	// An empty name does not advance the form
	m = send(t, m, key("enter"))
	assert.Equal(t, stepName, m.tankCreatingStep)
	assert.NotEmpty(t, m.tankCreatingError)

	m = typeText(t, m, "Planted")
	m = send(t, m, key("enter"))
	m = typeText(t, m, "-5")
	m = send(t, m, key("enter"))
	m = typeText(t, m, "freshwater")
	m = send(t, m, key("enter"))
	assert.True(t, m.tankCreating, "negative size is rejected")
	assert.Contains(t, m.tankCreatingError, "size_gallons")

	m = send(t, m, key("esc"))
	assert.False(t, m.tankCreating)

	m = send(t, m, key("n"))
	m = typeText(t, m, "Planted")
	m = send(t, m, key("enter"))
	m = typeText(t, m, "20")
	m = send(t, m, key("enter"))
	m = typeText(t, m, "freshwater")
	m = send(t, m, key("enter"))

	assert.False(t, m.tankCreating)
	require.Len(t, m.tanks, 2)
	assert.Equal(t, 1, m.tankCursor)
	assert.Equal(t, "Planted", m.tanks[1].Name)
	assert.Empty(t, m.fish)

	stored, err := k.Tanks.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestModel_DeleteTankCascades(t *testing.T) {
	k, _ := seededKeeper(t)
	m := send(t, initModel(k, "memory"), listTanks(k)())

	// Default choice is No
	m = send(t, m, key("d"))
	require.True(t, m.tankDeleting)
	m = send(t, m, key("enter"))
	assert.False(t, m.tankDeleting)
	assert.Len(t, m.tanks, 1)

	m = send(t, m, key("d"))
	m = send(t, m, key("up"))
	m = send(t, m, key("enter"))
	assert.Empty(t, m.tanks)
	assert.Empty(t, m.fish)
	assert.True(t, strings.HasPrefix(m.status, "Removed Reef with 1 fish and 1 logs"))

	fish, err := k.Fish.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, fish)
}

func TestModel_RefreshAndQuit(t *testing.T) {
	k, _ := seededKeeper(t)
	m := initModel(k, "memory")
	m = send(t, m, key("r"))
	assert.Len(t, m.tanks, 1)

	next, cmd := m.Update(key("q"))
	m = next.(model)
	assert.True(t, m.quitting)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Lights off")
}

func TestModel_FishColumn(t *testing.T) {
	k, _ := seededKeeper(t)
	m := send(t, initModel(k, "memory"), listTanks(k)())
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	m = send(t, m, key("l"))
	assert.Equal(t, 1, m.columnFocus)
	assert.Contains(t, m.View(), "Clownfish")

	m = send(t, m, key("h"))
	assert.Equal(t, 0, m.columnFocus)
}
