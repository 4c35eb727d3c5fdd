package tanks

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/unowned-ai/aquarium/pkg/storage"
)

const (
	// dateLayout is used for calendar days (date_added, birth_date).
	dateLayout = "2006-01-02"
	// timestampLayout is fixed width so stored timestamps sort lexically in time order.
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// timestampLayouts are accepted when reading; values without a zone are taken as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	dateLayout,
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return normalizeTimestamp(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	// Tolerate full timestamps where a calendar day is expected.
	t, err := parseTimestamp(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}
	return normalizeDate(t), nil
}

func optionalString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func optionalFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func recordID(r storage.Record, key string) (uuid.UUID, error) {
	s, err := r.Str(key)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("field %q: %w", key, err)
	}
	return id, nil
}

func encodeParams(p *WaterParameters) any {
	if p == nil {
		return nil
	}
	return storage.Record{
		"date_tested": formatTimestamp(p.DateTested),
		"temperature": optionalFloat(p.Temperature),
		"ph":          optionalFloat(p.PH),
		"ammonia":     optionalFloat(p.Ammonia),
		"nitrite":     optionalFloat(p.Nitrite),
		"nitrate":     optionalFloat(p.Nitrate),
		"salinity":    optionalFloat(p.Salinity),
	}
}

func decodeParams(r storage.Record, key string) (*WaterParameters, error) {
	sub, ok, err := r.Sub(key)
	if err != nil || !ok {
		return nil, err
	}
	raw, err := sub.Str("date_tested")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	tested, err := parseTimestamp(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}

	p := &WaterParameters{DateTested: tested}
	fields := []struct {
		key string
		dst **float64
	}{
		{"temperature", &p.Temperature},
		{"ph", &p.PH},
		{"ammonia", &p.Ammonia},
		{"nitrite", &p.Nitrite},
		{"nitrate", &p.Nitrate},
		{"salinity", &p.Salinity},
	}
	for _, f := range fields {
		v, err := sub.OptFloat(f.key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		*f.dst = v
	}
	return p, nil
}

func encodeTank(t Tank) storage.Record {
	equipment := make([]any, 0, len(t.Equipment))
	for _, item := range t.Equipment {
		equipment = append(equipment, item)
	}
	return storage.Record{
		"id":                 t.ID.String(),
		"name":               t.Name,
		"size_gallons":       t.SizeGallons,
		"tank_type":          string(t.TankType),
		"location":           t.Location,
		"equipment":          equipment,
		"current_parameters": encodeParams(t.CurrentParameters),
	}
}

func decodeTank(r storage.Record) (Tank, error) {
	var (
		t   Tank
		err error
	)
	if t.ID, err = recordID(r, "id"); err != nil {
		return Tank{}, err
	}
	if t.Name, err = r.Str("name"); err != nil {
		return Tank{}, err
	}
	if t.SizeGallons, err = r.Float("size_gallons"); err != nil {
		return Tank{}, err
	}
	tankType, err := r.Str("tank_type")
	if err != nil {
		return Tank{}, err
	}
	t.TankType = TankType(tankType)

	location, err := r.OptStr("location")
	if err != nil {
		return Tank{}, err
	}
	if location != nil {
		t.Location = *location
	}
	if t.Equipment, err = r.Strings("equipment"); err != nil {
		return Tank{}, err
	}
	if t.Equipment == nil {
		t.Equipment = []string{}
	}
	if t.CurrentParameters, err = decodeParams(r, "current_parameters"); err != nil {
		return Tank{}, err
	}
	return t, t.validate()
}

func encodeFish(f Fish) storage.Record {
	var birth any
	if f.BirthDate != nil {
		birth = formatDate(*f.BirthDate)
	}
	return storage.Record{
		"id":                  f.ID.String(),
		"name":                f.Name,
		"species":             f.Species,
		"tank_id":             f.TankID.String(),
		"date_added":          formatDate(f.DateAdded),
		"birth_date":          birth,
		"health_status":       string(f.HealthStatus),
		"size":                optionalString(f.Size),
		"color":               optionalString(f.Color),
		"feeding_preferences": optionalString(f.FeedingPreferences),
		"notes":               optionalString(f.Notes),
	}
}

func decodeFish(r storage.Record) (Fish, error) {
	var (
		f   Fish
		err error
	)
	if f.ID, err = recordID(r, "id"); err != nil {
		return Fish{}, err
	}
	if f.TankID, err = recordID(r, "tank_id"); err != nil {
		return Fish{}, err
	}
	if f.Name, err = r.Str("name"); err != nil {
		return Fish{}, err
	}
	if f.Species, err = r.Str("species"); err != nil {
		return Fish{}, err
	}

	added, err := r.Str("date_added")
	if err != nil {
		return Fish{}, err
	}
	if f.DateAdded, err = parseDate(added); err != nil {
		return Fish{}, err
	}
	birth, err := r.OptStr("birth_date")
	if err != nil {
		return Fish{}, err
	}
	if birth != nil && *birth != "" {
		d, err := parseDate(*birth)
		if err != nil {
			return Fish{}, err
		}
		f.BirthDate = &d
	}

	// Older documents may omit the status; they were healthy by default.
	status, err := r.OptStr("health_status")
	if err != nil {
		return Fish{}, err
	}
	f.HealthStatus = Healthy
	if status != nil {
		f.HealthStatus = HealthStatus(*status)
	}

	for _, opt := range []struct {
		key string
		dst **string
	}{
		{"size", &f.Size},
		{"color", &f.Color},
		{"feeding_preferences", &f.FeedingPreferences},
		{"notes", &f.Notes},
	} {
		if *opt.dst, err = r.OptStr(opt.key); err != nil {
			return Fish{}, err
		}
	}
	return f, f.validate()
}

func encodeLog(l MaintenanceLog) storage.Record {
	return storage.Record{
		"id":            l.ID.String(),
		"tank_id":       l.TankID.String(),
		"date":          formatTimestamp(l.Date),
		"activity_type": string(l.ActivityType),
		"description":   l.Description,
		"water_params":  encodeParams(l.WaterParams),
	}
}

func decodeLog(r storage.Record) (MaintenanceLog, error) {
	var (
		l   MaintenanceLog
		err error
	)
	if l.ID, err = recordID(r, "id"); err != nil {
		return MaintenanceLog{}, err
	}
	if l.TankID, err = recordID(r, "tank_id"); err != nil {
		return MaintenanceLog{}, err
	}
	date, err := r.Str("date")
	if err != nil {
		return MaintenanceLog{}, err
	}
	if l.Date, err = parseTimestamp(date); err != nil {
		return MaintenanceLog{}, err
	}
	activity, err := r.Str("activity_type")
	if err != nil {
		return MaintenanceLog{}, err
	}
	l.ActivityType = ActivityType(activity)
	if l.Description, err = r.Str("description"); err != nil {
		return MaintenanceLog{}, err
	}
	if l.WaterParams, err = decodeParams(r, "water_params"); err != nil {
		return MaintenanceLog{}, err
	}
	return l, l.validate()
}
