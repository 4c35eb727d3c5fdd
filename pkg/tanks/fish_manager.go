package tanks

import (
	"context"

	"github.com/google/uuid"
	"github.com/unowned-ai/aquarium/pkg/storage"
)

// FishManager provides CRUD over the fish collection.
type FishManager struct {
	store storage.Backend
	opts  options
}

func NewFishManager(store storage.Backend, opts ...Option) *FishManager {
	return &FishManager{store: store, opts: newOptions(opts)}
}

func (m *FishManager) load(ctx context.Context) ([]Fish, error) {
	return loadAll(ctx, m.store, storage.Fish, decodeFish, m.opts)
}

func (m *FishManager) save(ctx context.Context, fish []Fish) error {
	return saveAll(ctx, m.store, storage.Fish, fish, encodeFish)
}

// GetAll returns every readable fish.
func (m *FishManager) GetAll(ctx context.Context) ([]Fish, error) {
	return m.load(ctx)
}

// GetByID returns the fish with id; ok is false when it does not exist.
func (m *FishManager) GetByID(ctx context.Context, id uuid.UUID) (Fish, bool, error) {
	fish, err := m.load(ctx)
	if err != nil {
		return Fish{}, false, err
	}
	for _, f := range fish {
		if f.ID == id {
			return f, true, nil
		}
	}
	return Fish{}, false, nil
}

// GetByTank returns the fish living in tankID, in no particular order.
func (m *FishManager) GetByTank(ctx context.Context, tankID uuid.UUID) ([]Fish, error) {
	fish, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	out := []Fish{}
	for _, f := range fish {
		if f.TankID == tankID {
			out = append(out, f)
		}
	}
	return out, nil
}

// Add persists a fish built by NewFish. It does not check that the tank exists;
// Keeper.AddFish does.
func (m *FishManager) Add(ctx context.Context, fish Fish) error {
	all, err := m.load(ctx)
	if err != nil {
		return err
	}
	return m.save(ctx, append(all, fish))
}

// Update replaces the stored fish with the same identifier.
func (m *FishManager) Update(ctx context.Context, fish Fish) (bool, error) {
	return m.mutate(ctx, fish.ID, func(f *Fish) { *f = fish })
}

// MoveToTank changes only the fish's tank.
func (m *FishManager) MoveToTank(ctx context.Context, fishID, tankID uuid.UUID) (bool, error) {
	if tankID == uuid.Nil {
		return false, nil
	}
	return m.mutate(ctx, fishID, func(f *Fish) { f.TankID = tankID })
}

// UpdateHealthStatus sets a new status. An invalid status reports false and
// leaves the fish unchanged.
func (m *FishManager) UpdateHealthStatus(ctx context.Context, fishID uuid.UUID, status HealthStatus) (bool, error) {
	if !status.Valid() {
		return false, nil
	}
	return m.mutate(ctx, fishID, func(f *Fish) { f.HealthStatus = status })
}

// mutate applies change to the fish with id and saves the collection.
func (m *FishManager) mutate(ctx context.Context, id uuid.UUID, change func(*Fish)) (bool, error) {
	fish, err := m.load(ctx)
	if err != nil {
		return false, err
	}
	for i := range fish {
		if fish[i].ID != id {
			continue
		}
		change(&fish[i])
		if err := m.save(ctx, fish); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// Delete removes one fish.
func (m *FishManager) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	fish, err := m.load(ctx)
	if err != nil {
		return false, err
	}
	for i, f := range fish {
		if f.ID == id {
			return true, m.save(ctx, append(fish[:i], fish[i+1:]...))
		}
	}
	return false, nil
}

// DeleteByTank removes every fish in tankID and returns how many were removed.
func (m *FishManager) DeleteByTank(ctx context.Context, tankID uuid.UUID) (int, error) {
	fish, err := m.load(ctx)
	if err != nil {
		return 0, err
	}
	kept := fish[:0]
	for _, f := range fish {
		if f.TankID != tankID {
			kept = append(kept, f)
		}
	}
	deleted := len(fish) - len(kept)
	if deleted == 0 {
		return 0, nil
	}
	if err := m.save(ctx, kept); err != nil {
		return 0, err
	}
	return deleted, nil
}
