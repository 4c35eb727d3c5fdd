package tanks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/unowned-ai/aquarium/pkg/storage"
)

// Keeper bundles the three managers over one backend and owns the operations
// that span collections.
type Keeper struct {
	Tanks       *TankManager
	Fish        *FishManager
	Maintenance *MaintenanceManager

	store storage.Backend
	opts  []Option
}

func NewKeeper(store storage.Backend, opts ...Option) *Keeper {
	return &Keeper{
		Tanks:       NewTankManager(store, opts...),
		Fish:        NewFishManager(store, opts...),
		Maintenance: NewMaintenanceManager(store, opts...),
		store:       store,
		opts:        opts,
	}
}

// Store returns the backend the managers persist to.
func (k *Keeper) Store() storage.Backend { return k.store }

// CascadeResult counts what DeleteTank removed besides the tank itself.
type CascadeResult struct {
	FishRemoved int `json:"fish_removed"`
	LogsRemoved int `json:"logs_removed"`
}

// DeleteTank removes a tank with its fish and maintenance logs, in that order.
// On a transactional backend the three steps commit together; otherwise each
// step commits on its own and a failure leaves the earlier steps applied.
func (k *Keeper) DeleteTank(ctx context.Context, id uuid.UUID) (CascadeResult, bool, error) {
	if _, ok, err := k.Tanks.GetByID(ctx, id); err != nil || !ok {
		return CascadeResult{}, false, err
	}

	var (
		res     CascadeResult
		deleted bool
	)
	cascade := func(store storage.Backend) error {
		res = CascadeResult{}
		var err error
		if res.FishRemoved, err = NewFishManager(store, k.opts...).DeleteByTank(ctx, id); err != nil {
			return err
		}
		if res.LogsRemoved, err = NewMaintenanceManager(store, k.opts...).DeleteByTank(ctx, id); err != nil {
			return err
		}
		deleted, err = NewTankManager(store, k.opts...).Delete(ctx, id)
		return err
	}

	var err error
	if tx, ok := k.store.(storage.Transactor); ok {
		err = tx.WithinTx(ctx, cascade)
	} else {
		err = cascade(k.store)
	}
	if err != nil {
		return CascadeResult{}, false, err
	}
	return res, deleted, nil
}

// AddFish stores a fish after checking that its tank exists.
func (k *Keeper) AddFish(ctx context.Context, fish Fish) (bool, error) {
	if _, ok, err := k.Tanks.GetByID(ctx, fish.TankID); err != nil || !ok {
		return false, err
	}
	return true, k.Fish.Add(ctx, fish)
}

// MoveFish moves a fish into an existing tank.
func (k *Keeper) MoveFish(ctx context.Context, fishID, tankID uuid.UUID) (bool, error) {
	if _, ok, err := k.Tanks.GetByID(ctx, tankID); err != nil || !ok {
		return false, err
	}
	return k.Fish.MoveToTank(ctx, fishID, tankID)
}

// LogActivity records one maintenance activity on an existing tank. The percentage
// only applies to water changes. A water test logged here carries no readings;
// use RecordWaterTest for those.
func (k *Keeper) LogActivity(ctx context.Context, tankID uuid.UUID, activity ActivityType, description string, percentage int) (MaintenanceLog, bool, error) {
	if !activity.Valid() {
		_, err := ParseActivityType(string(activity))
		return MaintenanceLog{}, false, err
	}
	if _, ok, err := k.Tanks.GetByID(ctx, tankID); err != nil || !ok {
		return MaintenanceLog{}, false, err
	}

	var (
		log MaintenanceLog
		err error
	)
	switch activity {
	case WaterChange:
		log, err = k.Maintenance.LogWaterChange(ctx, tankID, description, percentage)
	case Feeding:
		log, err = k.Maintenance.LogFeeding(ctx, tankID, description)
	case FilterClean:
		log, err = k.Maintenance.LogFilterClean(ctx, tankID, description)
	case EquipmentCheck:
		log, err = k.Maintenance.LogEquipmentCheck(ctx, tankID, description)
	case Medication:
		log, err = k.Maintenance.LogMedication(ctx, tankID, description)
	default:
		log, err = k.Maintenance.logActivity(ctx, MaintenanceInput{TankID: tankID, ActivityType: string(activity), Description: description})
	}
	if err != nil {
		return MaintenanceLog{}, false, err
	}
	return log, true, nil
}

// RecordWaterTest logs a water test and makes its readings the tank's current parameters.
func (k *Keeper) RecordWaterTest(ctx context.Context, tankID uuid.UUID, params WaterParameters, notes string) (MaintenanceLog, bool, error) {
	if _, ok, err := k.Tanks.GetByID(ctx, tankID); err != nil || !ok {
		return MaintenanceLog{}, false, err
	}
	log, err := k.Maintenance.LogWaterTest(ctx, tankID, params, notes)
	if err != nil {
		return MaintenanceLog{}, false, err
	}
	if _, err := k.Tanks.UpdateWaterParams(ctx, tankID, *log.WaterParams); err != nil {
		return MaintenanceLog{}, false, err
	}
	return log, true, nil
}

// TankSummary aggregates one tank.
type TankSummary struct {
	Tank             Tank                 `json:"tank"`
	FishCount        int                  `json:"fish_count"`
	Health           map[HealthStatus]int `json:"health"`
	MaintenanceCount int                  `json:"maintenance_count"`
	LastMaintenance  *time.Time           `json:"last_maintenance"`
}

// Summary aggregates every tank plus totals across the whole collection.
type Summary struct {
	Tanks        []TankSummary        `json:"tanks"`
	TotalTanks   int                  `json:"total_tanks"`
	TotalGallons float64              `json:"total_gallons"`
	TotalFish    int                  `json:"total_fish"`
	Activities   map[ActivityType]int `json:"activities"`
}

// Summary reads all three collections once and aggregates them per tank.
func (k *Keeper) Summary(ctx context.Context) (Summary, error) {
	tanks, err := k.Tanks.GetAll(ctx)
	if err != nil {
		return Summary{}, err
	}
	fish, err := k.Fish.GetAll(ctx)
	if err != nil {
		return Summary{}, err
	}
	logs, err := k.Maintenance.GetAll(ctx)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Tanks:      make([]TankSummary, 0, len(tanks)),
		TotalTanks: len(tanks),
		TotalFish:  len(fish),
		Activities: make(map[ActivityType]int, len(ActivityTypes)),
	}
	for _, a := range ActivityTypes {
		s.Activities[a] = 0
	}
	for _, l := range logs {
		s.Activities[l.ActivityType]++
	}

	for _, t := range tanks {
		ts := TankSummary{Tank: t, Health: make(map[HealthStatus]int, len(HealthStatuses))}
		for _, h := range HealthStatuses {
			ts.Health[h] = 0
		}
		for _, f := range fish {
			if f.TankID == t.ID {
				ts.FishCount++
				ts.Health[f.HealthStatus]++
			}
		}
		// logs are newest first
		for _, l := range logs {
			if l.TankID != t.ID {
				continue
			}
			if ts.LastMaintenance == nil {
				d := l.Date
				ts.LastMaintenance = &d
			}
			ts.MaintenanceCount++
		}
		s.TotalGallons += t.SizeGallons
		s.Tanks = append(s.Tanks, ts)
	}
	return s, nil
}

// Orphans lists fish and logs whose tank no longer exists.
type Orphans struct {
	Fish []Fish           `json:"fish"`
	Logs []MaintenanceLog `json:"logs"`
}

// Empty reports whether nothing dangles.
func (o Orphans) Empty() bool {
	return len(o.Fish) == 0 && len(o.Logs) == 0
}

// Orphans finds fish and logs left behind by an interrupted cascade. It does not repair them.
func (k *Keeper) Orphans(ctx context.Context) (Orphans, error) {
	tanks, err := k.Tanks.GetAll(ctx)
	if err != nil {
		return Orphans{}, err
	}
	known := make(map[uuid.UUID]bool, len(tanks))
	for _, t := range tanks {
		known[t.ID] = true
	}

	fish, err := k.Fish.GetAll(ctx)
	if err != nil {
		return Orphans{}, err
	}
	logs, err := k.Maintenance.GetAll(ctx)
	if err != nil {
		return Orphans{}, err
	}

	o := Orphans{Fish: []Fish{}, Logs: []MaintenanceLog{}}
	for _, f := range fish {
		if !known[f.TankID] {
			o.Fish = append(o.Fish, f)
		}
	}
	for _, l := range logs {
		if !known[l.TankID] {
			o.Logs = append(o.Logs, l)
		}
	}
	return o, nil
}
