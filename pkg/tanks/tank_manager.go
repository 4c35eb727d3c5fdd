package tanks

import (
	"context"

	"github.com/google/uuid"
	"github.com/unowned-ai/aquarium/pkg/storage"
)

// TankManager provides CRUD over the tanks collection.
type TankManager struct {
	store storage.Backend
	opts  options
}

func NewTankManager(store storage.Backend, opts ...Option) *TankManager {
	return &TankManager{store: store, opts: newOptions(opts)}
}

func (m *TankManager) load(ctx context.Context) ([]Tank, error) {
	return loadAll(ctx, m.store, storage.Tanks, decodeTank, m.opts)
}

func (m *TankManager) save(ctx context.Context, tanks []Tank) error {
	return saveAll(ctx, m.store, storage.Tanks, tanks, encodeTank)
}

// GetAll returns every readable tank.
func (m *TankManager) GetAll(ctx context.Context) ([]Tank, error) {
	return m.load(ctx)
}

// GetByID returns the tank with id; ok is false when it does not exist.
func (m *TankManager) GetByID(ctx context.Context, id uuid.UUID) (Tank, bool, error) {
	tanks, err := m.load(ctx)
	if err != nil {
		return Tank{}, false, err
	}
	for _, t := range tanks {
		if t.ID == id {
			return t, true, nil
		}
	}
	return Tank{}, false, nil
}

// Add persists a tank built by NewTank.
func (m *TankManager) Add(ctx context.Context, tank Tank) error {
	tanks, err := m.load(ctx)
	if err != nil {
		return err
	}
	return m.save(ctx, append(tanks, tank))
}

// Update replaces the stored tank with the same identifier. It reports false
// and changes nothing when no such tank exists.
func (m *TankManager) Update(ctx context.Context, tank Tank) (bool, error) {
	tanks, err := m.load(ctx)
	if err != nil {
		return false, err
	}
	for i, t := range tanks {
		if t.ID == tank.ID {
			tanks[i] = tank
			return true, m.save(ctx, tanks)
		}
	}
	return false, nil
}

// Delete removes a tank record only. Use Keeper.DeleteTank to remove its fish and logs too.
func (m *TankManager) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tanks, err := m.load(ctx)
	if err != nil {
		return false, err
	}
	for i, t := range tanks {
		if t.ID == id {
			return true, m.save(ctx, append(tanks[:i], tanks[i+1:]...))
		}
	}
	return false, nil
}

// UpdateWaterParams overwrites the tank's current parameters snapshot.
func (m *TankManager) UpdateWaterParams(ctx context.Context, id uuid.UUID, params WaterParameters) (bool, error) {
	if err := params.validate("current_parameters"); err != nil {
		return false, err
	}
	tanks, err := m.load(ctx)
	if err != nil {
		return false, err
	}
	for i, t := range tanks {
		if t.ID == id {
			p := params
			p.DateTested = normalizeTimestamp(p.DateTested)
			tanks[i].CurrentParameters = &p
			return true, m.save(ctx, tanks)
		}
	}
	return false, nil
}
