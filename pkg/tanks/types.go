package tanks

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TankType is the water chemistry a tank is set up for.
type TankType string

const (
	Freshwater TankType = "freshwater"
	Saltwater  TankType = "saltwater"
	Brackish   TankType = "brackish"
)

// TankTypes lists every valid tank type.
var TankTypes = []TankType{Freshwater, Saltwater, Brackish}

func (t TankType) Valid() bool {
	switch t {
	case Freshwater, Saltwater, Brackish:
		return true
	}
	return false
}

func (t TankType) String() string { return string(t) }

// ParseTankType validates s as a tank type.
func ParseTankType(s string) (TankType, error) {
	t := TankType(s)
	if !t.Valid() {
		return "", invalid("tank_type", s, "must be one of freshwater, saltwater, brackish")
	}
	return t, nil
}

// HealthStatus is the condition of a fish.
type HealthStatus string

const (
	Healthy    HealthStatus = "healthy"
	Sick       HealthStatus = "sick"
	Recovering HealthStatus = "recovering"
	Deceased   HealthStatus = "deceased"
)

// HealthStatuses lists every valid health status.
var HealthStatuses = []HealthStatus{Healthy, Sick, Recovering, Deceased}

func (h HealthStatus) Valid() bool {
	switch h {
	case Healthy, Sick, Recovering, Deceased:
		return true
	}
	return false
}

func (h HealthStatus) String() string { return string(h) }

// Icon is the one-character marker used in listings.
func (h HealthStatus) Icon() string {
	switch h {
	case Healthy:
		return "✓"
	case Sick:
		return "✗"
	case Recovering:
		return "↻"
	case Deceased:
		return "†"
	}
	return "?"
}

// ParseHealthStatus validates s as a health status.
func ParseHealthStatus(s string) (HealthStatus, error) {
	h := HealthStatus(s)
	if !h.Valid() {
		return "", invalid("health_status", s, "must be one of healthy, sick, recovering, deceased")
	}
	return h, nil
}

// ActivityType is the kind of maintenance recorded in a log.
type ActivityType string

const (
	WaterChange    ActivityType = "water_change"
	FilterClean    ActivityType = "filter_clean"
	Feeding        ActivityType = "feeding"
	WaterTest      ActivityType = "water_test"
	EquipmentCheck ActivityType = "equipment_check"
	Medication     ActivityType = "medication"
)

// ActivityTypes lists every valid activity type.
var ActivityTypes = []ActivityType{WaterChange, FilterClean, Feeding, WaterTest, EquipmentCheck, Medication}

func (a ActivityType) Valid() bool {
	switch a {
	case WaterChange, FilterClean, Feeding, WaterTest, EquipmentCheck, Medication:
		return true
	}
	return false
}

func (a ActivityType) String() string { return string(a) }

// DisplayName is the human readable activity name.
func (a ActivityType) DisplayName() string {
	switch a {
	case WaterChange:
		return "Water Change"
	case FilterClean:
		return "Filter Cleaning"
	case Feeding:
		return "Feeding"
	case WaterTest:
		return "Water Test"
	case EquipmentCheck:
		return "Equipment Check"
	case Medication:
		return "Medication"
	}
	return string(a)
}

// ParseActivityType validates s as an activity type.
func ParseActivityType(s string) (ActivityType, error) {
	a := ActivityType(s)
	if !a.Valid() {
		return "", invalid("activity_type", s, "must be one of water_change, filter_clean, feeding, water_test, equipment_check, medication")
	}
	return a, nil
}

// WaterParameters is one water quality reading. A nil field was not measured.
type WaterParameters struct {
	DateTested  time.Time `json:"date_tested"`
	Temperature *float64  `json:"temperature"` // Fahrenheit
	PH          *float64  `json:"ph"`
	Ammonia     *float64  `json:"ammonia"` // ppm
	Nitrite     *float64  `json:"nitrite"` // ppm
	Nitrate     *float64  `json:"nitrate"` // ppm
	Salinity    *float64  `json:"salinity"` // ppt
}

// NewWaterParameters starts a reading taken at the given time; a zero time means now.
func NewWaterParameters(testedAt time.Time) WaterParameters {
	if testedAt.IsZero() {
		testedAt = time.Now()
	}
	return WaterParameters{DateTested: normalizeTimestamp(testedAt)}
}

func (p WaterParameters) String() string {
	parts := []string{"Tested: " + p.DateTested.Format("2006-01-02 15:04")}
	add := func(label string, v *float64, unit string) {
		if v != nil {
			parts = append(parts, fmt.Sprintf("%s: %g%s", label, *v, unit))
		}
	}
	add("Temp", p.Temperature, "°F")
	add("pH", p.PH, "")
	add("Ammonia", p.Ammonia, " ppm")
	add("Nitrite", p.Nitrite, " ppm")
	add("Nitrate", p.Nitrate, " ppm")
	add("Salinity", p.Salinity, " ppt")
	return strings.Join(parts, " | ")
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// validate rejects readings that are not finite numbers. field prefixes the
// reported field name.
func (p WaterParameters) validate(field string) error {
	for _, m := range []struct {
		name  string
		value *float64
	}{
		{"temperature", p.Temperature},
		{"ph", p.PH},
		{"ammonia", p.Ammonia},
		{"nitrite", p.Nitrite},
		{"nitrate", p.Nitrate},
		{"salinity", p.Salinity},
	} {
		if m.value != nil && !finite(*m.value) {
			return invalid(field+"."+m.name, *m.value, "must be a finite number")
		}
	}
	return nil
}

// Tank is a single aquarium.
type Tank struct {
	ID                uuid.UUID        `json:"id"`
	Name              string           `json:"name"`
	SizeGallons       float64          `json:"size_gallons"`
	TankType          TankType         `json:"tank_type"`
	Location          string           `json:"location"`
	Equipment         []string         `json:"equipment"`
	CurrentParameters *WaterParameters `json:"current_parameters"`
}

// TankInput holds the caller-supplied fields of a tank.
type TankInput struct {
	Name        string
	SizeGallons float64
	TankType    string
	Location    string
	Equipment   []string
}

// NewTank validates in and returns a tank with a fresh identifier.
func NewTank(in TankInput) (Tank, error) {
	return Tank{ID: uuid.New()}.With(in)
}

// With returns a validated replacement for t that keeps its identifier and current parameters.
func (t Tank) With(in TankInput) (Tank, error) {
	tankType, err := ParseTankType(in.TankType)
	if err != nil {
		return Tank{}, err
	}
	for _, item := range in.Equipment {
		if strings.TrimSpace(item) == "" {
			return Tank{}, invalid("equipment", nil, "items must not be empty")
		}
		if strings.Contains(item, ",") {
			return Tank{}, invalid("equipment", item, "must not contain a comma")
		}
	}

	out := Tank{
		ID:                t.ID,
		Name:              strings.TrimSpace(in.Name),
		SizeGallons:       in.SizeGallons,
		TankType:          tankType,
		Location:          in.Location,
		Equipment:         append([]string{}, in.Equipment...),
		CurrentParameters: t.CurrentParameters,
	}
	if err := out.validate(); err != nil {
		return Tank{}, err
	}
	return out, nil
}

func (t Tank) validate() error {
	if t.ID == uuid.Nil {
		return invalid("id", nil, "must be set")
	}
	if t.Name == "" {
		return invalid("name", nil, "must not be empty")
	}
	if !finite(t.SizeGallons) || t.SizeGallons <= 0 {
		return invalid("size_gallons", t.SizeGallons, "must be a positive number")
	}
	if !t.TankType.Valid() {
		_, err := ParseTankType(string(t.TankType))
		return err
	}
	if t.CurrentParameters != nil {
		return t.CurrentParameters.validate("current_parameters")
	}
	return nil
}

func (t Tank) String() string {
	return fmt.Sprintf("%s (%ggal %s)", t.Name, t.SizeGallons, t.TankType)
}

// Input returns the editable fields of t, ready to be changed and passed to With.
func (t Tank) Input() TankInput {
	return TankInput{
		Name:        t.Name,
		SizeGallons: t.SizeGallons,
		TankType:    string(t.TankType),
		Location:    t.Location,
		Equipment:   append([]string{}, t.Equipment...),
	}
}

// Fish lives in exactly one tank.
type Fish struct {
	ID                 uuid.UUID    `json:"id"`
	Name               string       `json:"name"`
	Species            string       `json:"species"`
	TankID             uuid.UUID    `json:"tank_id"`
	DateAdded          time.Time    `json:"date_added"`
	BirthDate          *time.Time   `json:"birth_date"`
	HealthStatus       HealthStatus `json:"health_status"`
	Size               *string      `json:"size"`
	Color              *string      `json:"color"`
	FeedingPreferences *string      `json:"feeding_preferences"`
	Notes              *string      `json:"notes"`
}

// FishInput holds the caller-supplied fields of a fish. A zero DateAdded means today
// and an empty HealthStatus means healthy.
type FishInput struct {
	Name               string
	Species            string
	TankID             uuid.UUID
	DateAdded          time.Time
	BirthDate          *time.Time
	HealthStatus       string
	Size               *string
	Color              *string
	FeedingPreferences *string
	Notes              *string
}

// NewFish validates in and returns a fish with a fresh identifier.
func NewFish(in FishInput) (Fish, error) {
	dateAdded := in.DateAdded
	if dateAdded.IsZero() {
		dateAdded = time.Now().UTC()
	}
	return Fish{ID: uuid.New(), DateAdded: normalizeDate(dateAdded)}.With(in)
}

// With returns a validated replacement for f. The identifier and date added never change.
func (f Fish) With(in FishInput) (Fish, error) {
	status := Healthy
	if in.HealthStatus != "" {
		var err error
		if status, err = ParseHealthStatus(in.HealthStatus); err != nil {
			return Fish{}, err
		}
	}

	var birth *time.Time
	if in.BirthDate != nil {
		d := normalizeDate(*in.BirthDate)
		birth = &d
	}

	out := Fish{
		ID:                 f.ID,
		Name:               strings.TrimSpace(in.Name),
		Species:            strings.TrimSpace(in.Species),
		TankID:             in.TankID,
		DateAdded:          f.DateAdded,
		BirthDate:          birth,
		HealthStatus:       status,
		Size:               optional(in.Size),
		Color:              optional(in.Color),
		FeedingPreferences: optional(in.FeedingPreferences),
		Notes:              optional(in.Notes),
	}
	if err := out.validate(); err != nil {
		return Fish{}, err
	}
	return out, nil
}

func (f Fish) validate() error {
	if f.ID == uuid.Nil {
		return invalid("id", nil, "must be set")
	}
	if f.Name == "" {
		return invalid("name", nil, "must not be empty")
	}
	if f.Species == "" {
		return invalid("species", nil, "must not be empty")
	}
	if f.TankID == uuid.Nil {
		return invalid("tank_id", nil, "must reference a tank")
	}
	if f.DateAdded.IsZero() {
		return invalid("date_added", nil, "must be set")
	}
	if !f.HealthStatus.Valid() {
		_, err := ParseHealthStatus(string(f.HealthStatus))
		return err
	}
	return nil
}

// Input returns the editable fields of f, ready to be changed and passed to With.
func (f Fish) Input() FishInput {
	return FishInput{
		Name:               f.Name,
		Species:            f.Species,
		TankID:             f.TankID,
		DateAdded:          f.DateAdded,
		BirthDate:          f.BirthDate,
		HealthStatus:       string(f.HealthStatus),
		Size:               f.Size,
		Color:              f.Color,
		FeedingPreferences: f.FeedingPreferences,
		Notes:              f.Notes,
	}
}

func (f Fish) String() string {
	return fmt.Sprintf("%s (%s) [%s]", f.Name, f.Species, f.HealthStatus.Icon())
}

// MaintenanceLog is an immutable record of work done on a tank.
type MaintenanceLog struct {
	ID           uuid.UUID        `json:"id"`
	TankID       uuid.UUID        `json:"tank_id"`
	Date         time.Time        `json:"date"`
	ActivityType ActivityType     `json:"activity_type"`
	Description  string           `json:"description"`
	WaterParams  *WaterParameters `json:"water_params"`
}

// MaintenanceInput holds the caller-supplied fields of a log. A zero Date means now.
type MaintenanceInput struct {
	TankID       uuid.UUID
	ActivityType string
	Description  string
	Date         time.Time
	WaterParams  *WaterParameters
}

// NewMaintenanceLog validates in and returns a log with a fresh identifier.
func NewMaintenanceLog(in MaintenanceInput) (MaintenanceLog, error) {
	activity, err := ParseActivityType(in.ActivityType)
	if err != nil {
		return MaintenanceLog{}, err
	}
	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}

	var params *WaterParameters
	if in.WaterParams != nil {
		p := *in.WaterParams
		p.DateTested = normalizeTimestamp(p.DateTested)
		params = &p
	}

	log := MaintenanceLog{
		ID:           uuid.New(),
		TankID:       in.TankID,
		Date:         normalizeTimestamp(date),
		ActivityType: activity,
		Description:  in.Description,
		WaterParams:  params,
	}
	if err := log.validate(); err != nil {
		return MaintenanceLog{}, err
	}
	return log, nil
}

func (l MaintenanceLog) validate() error {
	if l.ID == uuid.Nil {
		return invalid("id", nil, "must be set")
	}
	if l.TankID == uuid.Nil {
		return invalid("tank_id", nil, "must reference a tank")
	}
	if !l.ActivityType.Valid() {
		_, err := ParseActivityType(string(l.ActivityType))
		return err
	}
	if l.WaterParams != nil && l.ActivityType != WaterTest {
		return invalid("water_params", nil, "only water_test logs carry parameters")
	}
	if l.WaterParams != nil {
		if l.WaterParams.DateTested.IsZero() {
			return invalid("water_params.date_tested", nil, "must be set")
		}
		return l.WaterParams.validate("water_params")
	}
	return nil
}

func (l MaintenanceLog) String() string {
	return fmt.Sprintf("[%s] %s: %s", l.Date.Format("2006-01-02 15:04"), l.ActivityType.DisplayName(), l.Description)
}

// optional maps an empty string to absent.
func optional(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

// normalizeTimestamp drops the monotonic reading and location so a value compares equal
// to itself after a round trip through storage.
func normalizeTimestamp(t time.Time) time.Time {
	return t.UTC().Round(0)
}

// normalizeDate keeps only the calendar day, at UTC midnight.
func normalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
