package tanks

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/unowned-ai/aquarium/pkg/storage"
)

// DefaultHistoryLimit is the number of readings shown when no limit is given.
const DefaultHistoryLimit = 10

// MaintenanceManager records and queries maintenance logs. Every list it returns
// is ordered by log date, most recent first.
type MaintenanceManager struct {
	store storage.Backend
	opts  options
}

func NewMaintenanceManager(store storage.Backend, opts ...Option) *MaintenanceManager {
	return &MaintenanceManager{store: store, opts: newOptions(opts)}
}

func (m *MaintenanceManager) load(ctx context.Context) ([]MaintenanceLog, error) {
	return loadAll(ctx, m.store, storage.Maintenance, decodeLog, m.opts)
}

func (m *MaintenanceManager) save(ctx context.Context, logs []MaintenanceLog) error {
	return saveAll(ctx, m.store, storage.Maintenance, logs, encodeLog)
}

// sortNewestFirst orders logs by date descending; logs with equal dates keep their stored order.
func sortNewestFirst(logs []MaintenanceLog) []MaintenanceLog {
	slices.SortStableFunc(logs, func(a, b MaintenanceLog) int {
		return b.Date.Compare(a.Date)
	})
	return logs
}

func filterLogs(logs []MaintenanceLog, keep func(MaintenanceLog) bool) []MaintenanceLog {
	out := []MaintenanceLog{}
	for _, l := range logs {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

// GetAll returns every readable log.
func (m *MaintenanceManager) GetAll(ctx context.Context) ([]MaintenanceLog, error) {
	logs, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	return sortNewestFirst(logs), nil
}

// GetByID returns the log with id; ok is false when it does not exist.
func (m *MaintenanceManager) GetByID(ctx context.Context, id uuid.UUID) (MaintenanceLog, bool, error) {
	logs, err := m.load(ctx)
	if err != nil {
		return MaintenanceLog{}, false, err
	}
	for _, l := range logs {
		if l.ID == id {
			return l, true, nil
		}
	}
	return MaintenanceLog{}, false, nil
}

// GetByTank returns the logs of one tank.
func (m *MaintenanceManager) GetByTank(ctx context.Context, tankID uuid.UUID) ([]MaintenanceLog, error) {
	logs, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	return sortNewestFirst(filterLogs(logs, func(l MaintenanceLog) bool { return l.TankID == tankID })), nil
}

// GetRecent returns at most limit logs across all tanks.
func (m *MaintenanceManager) GetRecent(ctx context.Context, limit int) ([]MaintenanceLog, error) {
	if limit <= 0 {
		return []MaintenanceLog{}, nil
	}
	logs, err := m.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

// GetByActivityType returns the logs of one activity type, limited to one tank when tankID is not nil.
func (m *MaintenanceManager) GetByActivityType(ctx context.Context, activity ActivityType, tankID *uuid.UUID) ([]MaintenanceLog, error) {
	logs, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	return sortNewestFirst(filterLogs(logs, func(l MaintenanceLog) bool {
		if tankID != nil && l.TankID != *tankID {
			return false
		}
		return l.ActivityType == activity
	})), nil
}

// GetWaterParamHistory returns the readings attached to a tank's water tests, newest first.
func (m *MaintenanceManager) GetWaterParamHistory(ctx context.Context, tankID uuid.UUID, limit int) ([]WaterParameters, error) {
	if limit <= 0 {
		return []WaterParameters{}, nil
	}
	tests, err := m.GetByActivityType(ctx, WaterTest, &tankID)
	if err != nil {
		return nil, err
	}
	history := []WaterParameters{}
	for _, l := range tests {
		if l.WaterParams == nil {
			continue
		}
		history = append(history, *l.WaterParams)
		if len(history) == limit {
			break
		}
	}
	return history, nil
}

// Add persists a log built by NewMaintenanceLog.
func (m *MaintenanceManager) Add(ctx context.Context, log MaintenanceLog) error {
	logs, err := m.load(ctx)
	if err != nil {
		return err
	}
	return m.save(ctx, append(logs, log))
}

func (m *MaintenanceManager) logActivity(ctx context.Context, in MaintenanceInput) (MaintenanceLog, error) {
	log, err := NewMaintenanceLog(in)
	if err != nil {
		return MaintenanceLog{}, err
	}
	if err := m.Add(ctx, log); err != nil {
		return MaintenanceLog{}, err
	}
	return log, nil
}

// LogWaterChange records a water change. A positive percentage is prefixed to the
// description as "N% water change.".
func (m *MaintenanceManager) LogWaterChange(ctx context.Context, tankID uuid.UUID, description string, percentage int) (MaintenanceLog, error) {
	if percentage > 0 {
		description = strings.TrimSpace(fmt.Sprintf("%d%% water change. %s", percentage, description))
	}
	return m.logActivity(ctx, MaintenanceInput{TankID: tankID, ActivityType: string(WaterChange), Description: description})
}

func (m *MaintenanceManager) LogFeeding(ctx context.Context, tankID uuid.UUID, description string) (MaintenanceLog, error) {
	return m.logActivity(ctx, MaintenanceInput{TankID: tankID, ActivityType: string(Feeding), Description: description})
}

// LogWaterTest records a water test with its readings. Empty notes become
// "Water parameters tested".
func (m *MaintenanceManager) LogWaterTest(ctx context.Context, tankID uuid.UUID, params WaterParameters, notes string) (MaintenanceLog, error) {
	if notes == "" {
		notes = "Water parameters tested"
	}
	if params.DateTested.IsZero() {
		params.DateTested = time.Now()
	}
	return m.logActivity(ctx, MaintenanceInput{TankID: tankID, ActivityType: string(WaterTest), Description: notes, WaterParams: &params})
}

func (m *MaintenanceManager) LogFilterClean(ctx context.Context, tankID uuid.UUID, description string) (MaintenanceLog, error) {
	return m.logActivity(ctx, MaintenanceInput{TankID: tankID, ActivityType: string(FilterClean), Description: description})
}

func (m *MaintenanceManager) LogEquipmentCheck(ctx context.Context, tankID uuid.UUID, description string) (MaintenanceLog, error) {
	return m.logActivity(ctx, MaintenanceInput{TankID: tankID, ActivityType: string(EquipmentCheck), Description: description})
}

func (m *MaintenanceManager) LogMedication(ctx context.Context, tankID uuid.UUID, description string) (MaintenanceLog, error) {
	return m.logActivity(ctx, MaintenanceInput{TankID: tankID, ActivityType: string(Medication), Description: description})
}

// Delete removes one log.
func (m *MaintenanceManager) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	logs, err := m.load(ctx)
	if err != nil {
		return false, err
	}
	for i, l := range logs {
		if l.ID == id {
			if err := m.save(ctx, append(logs[:i], logs[i+1:]...)); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// DeleteByTank removes every log of tankID, with their readings, and returns how many were removed.
func (m *MaintenanceManager) DeleteByTank(ctx context.Context, tankID uuid.UUID) (int, error) {
	logs, err := m.load(ctx)
	if err != nil {
		return 0, err
	}
	kept := filterLogs(logs, func(l MaintenanceLog) bool { return l.TankID != tankID })
	deleted := len(logs) - len(kept)
	if deleted == 0 {
		return 0, nil
	}
	if err := m.save(ctx, kept); err != nil {
		return 0, err
	}
	return deleted, nil
}

// ActivityBreakdown counts logs per activity type, optionally for one tank.
func (m *MaintenanceManager) ActivityBreakdown(ctx context.Context, tankID *uuid.UUID) (map[ActivityType]int, error) {
	logs, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[ActivityType]int, len(ActivityTypes))
	for _, a := range ActivityTypes {
		counts[a] = 0
	}
	for _, l := range logs {
		if tankID != nil && l.TankID != *tankID {
			continue
		}
		counts[l.ActivityType]++
	}
	return counts, nil
}
