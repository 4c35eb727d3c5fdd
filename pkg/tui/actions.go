package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/unowned-ai/aquarium/pkg/tanks"
)

const recentLogsLimit = 5

type tanksLoadedMsg []tanks.Tank

// tankContentsMsg carries what lives in one tank and its latest maintenance.
type tankContentsMsg struct {
	tankID uuid.UUID
	fish   []tanks.Fish
	logs   []tanks.MaintenanceLog
}

type tankCreatedMsg tanks.Tank

type tankDeletedMsg struct {
	tank   tanks.Tank
	result tanks.CascadeResult
}

// List tanks from the store and return tea data
func listTanks(k *tanks.Keeper) tea.Cmd {
	return func() tea.Msg {
		all, err := k.Tanks.GetAll(context.Background())
		if err != nil {
			return err
		}
		return tanksLoadedMsg(all)
	}
}

// Load fish and recent maintenance for one tank
func loadTankContents(k *tanks.Keeper, tankID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		fish, err := k.Fish.GetByTank(ctx, tankID)
		if err != nil {
			return err
		}
		logs, err := k.Maintenance.GetByTank(ctx, tankID)
		if err != nil {
			return err
		}
		if len(logs) > recentLogsLimit {
			logs = logs[:recentLogsLimit]
		}
		return tankContentsMsg{tankID: tankID, fish: fish, logs: logs}
	}
}

func createTank(k *tanks.Keeper, tank tanks.Tank) tea.Cmd {
	return func() tea.Msg {
		if err := k.Tanks.Add(context.Background(), tank); err != nil {
			return err
		}
		return tankCreatedMsg(tank)
	}
}

// Delete a tank with everything in it
func deleteTank(k *tanks.Keeper, tank tanks.Tank) tea.Cmd {
	return func() tea.Msg {
		res, _, err := k.DeleteTank(context.Background(), tank.ID)
		if err != nil {
			return err
		}
		return tankDeletedMsg{tank: tank, result: res}
	}
}
