package tanks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unowned-ai/aquarium/pkg/storage"
)

func TestParseTimestamp_Layouts(t *testing.T) {
	want := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for _, s := range []string{
		"2024-03-01T10:00:00Z",
		"2024-03-01T10:00:00.000000000Z",
		"2024-03-01T11:00:00+01:00",
		"2024-03-01T10:00:00",
		"2024-03-01 10:00:00",
	} {
		got, err := parseTimestamp(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), "%s parsed as %s", s, got)
		assert.Equal(t, time.UTC, got.Location())
	}

	day, err := parseTimestamp("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), day)

	_, err = parseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestFormatTimestamp_SortsLexically(t *testing.T) {
	early := formatTimestamp(time.Date(2024, 3, 1, 10, 0, 0, 5, time.UTC))
	late := formatTimestamp(time.Date(2024, 3, 1, 10, 0, 0, 500, time.UTC))
	assert.Less(t, early, late)
	assert.Equal(t, "2024-03-01T10:00:00.000000005Z", early)
}

func TestDecodeFish_MissingHealthDefaultsToHealthy(t *testing.T) {
	r := storage.Record{
		"id":         "0b6f7a3e-9a40-4a3c-8f2e-8c9f3d1b2a10",
		"name":       "Nemo",
		"species":    "Clownfish",
		"tank_id":    "5f0e1c2d-3b4a-4c5d-8e6f-7a8b9c0d1e2f",
		"date_added": "2024-01-15",
	}
	f, err := decodeFish(r)
	require.NoError(t, err)
	assert.Equal(t, Healthy, f.HealthStatus)
	assert.Nil(t, f.Notes)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), f.DateAdded)
}

func TestDecode_RejectsMalformed(t *testing.T) {
	tankID := "5f0e1c2d-3b4a-4c5d-8e6f-7a8b9c0d1e2f"
	tests := []struct {
		name   string
		decode func() error
	}{
		{"tank without name", func() error {
			_, err := decodeTank(storage.Record{"id": tankID, "size_gallons": 10.0, "tank_type": "freshwater"})
			return err
		}},
		{"tank with bad type", func() error {
			_, err := decodeTank(storage.Record{"id": tankID, "name": "A", "size_gallons": 10.0, "tank_type": "reef"})
			return err
		}},
		{"tank with string size", func() error {
			_, err := decodeTank(storage.Record{"id": tankID, "name": "A", "size_gallons": "ten", "tank_type": "freshwater"})
			return err
		}},
		{"fish with bad id", func() error {
			_, err := decodeFish(storage.Record{"id": "nope", "name": "A", "species": "B", "tank_id": tankID, "date_added": "2024-01-01"})
			return err
		}},
		{"fish with bogus health", func() error {
			_, err := decodeFish(storage.Record{"id": tankID, "name": "A", "species": "B", "tank_id": tankID, "date_added": "2024-01-01", "health_status": "bogus"})
			return err
		}},
		{"log with bad date", func() error {
			_, err := decodeLog(storage.Record{"id": tankID, "tank_id": tankID, "date": "soon", "activity_type": "feeding", "description": ""})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.decode())
		})
	}
}

func TestTankCodec_RoundTrip(t *testing.T) {
	tank, err := NewTank(TankInput{Name: "Reef", SizeGallons: 40, TankType: "saltwater", Equipment: []string{"Skimmer"}})
	require.NoError(t, err)
	params := NewWaterParameters(time.Date(2024, 3, 1, 10, 0, 0, 123, time.UTC))
	salinity := 35.0
	params.Salinity = &salinity
	tank.CurrentParameters = &params

	got, err := decodeTank(encodeTank(tank))
	require.NoError(t, err)
	assert.Equal(t, tank, got)
}
