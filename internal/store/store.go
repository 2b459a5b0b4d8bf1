// Package store supplies the engine's record collections. The analytics code
// never touches storage directly; it consumes the snapshots a Repository
// returns for a user and time window.
package store

import (
	"sort"

	"github.com/mwalther/diametrics/internal/models"
)

// Repository is the data boundary of the engine: per-user, per-window record
// sets, returned sorted chronologically. Implementations own all I/O.
type Repository interface {
	GlucoseReadings(userID string, w models.TimeWindow) ([]models.GlucoseReading, error)
	Meals(userID string, w models.TimeWindow) ([]models.Meal, error)
	Activities(userID string, w models.TimeWindow) ([]models.Activity, error)
	InsulinDoses(userID string, w models.TimeWindow) ([]models.InsulinDose, error)
}

// MemoryStore is the reference in-memory Repository, backed by per-user
// record slices. It returns sorted copies so callers can never mutate the
// stored data.
type MemoryStore struct {
	readings   map[string][]models.GlucoseReading
	meals      map[string][]models.Meal
	activities map[string][]models.Activity
	doses      map[string][]models.InsulinDose
}

// NewMemoryStore creates an empty in-memory repository.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		readings:   make(map[string][]models.GlucoseReading),
		meals:      make(map[string][]models.Meal),
		activities: make(map[string][]models.Activity),
		doses:      make(map[string][]models.InsulinDose),
	}
}

// AddReadings appends glucose readings for a user.
func (s *MemoryStore) AddReadings(userID string, readings ...models.GlucoseReading) {
	s.readings[userID] = append(s.readings[userID], readings...)
}

// AddMeals appends meals for a user.
func (s *MemoryStore) AddMeals(userID string, meals ...models.Meal) {
	s.meals[userID] = append(s.meals[userID], meals...)
}

// AddActivities appends activities for a user.
func (s *MemoryStore) AddActivities(userID string, activities ...models.Activity) {
	s.activities[userID] = append(s.activities[userID], activities...)
}

// AddDoses appends insulin doses for a user.
func (s *MemoryStore) AddDoses(userID string, doses ...models.InsulinDose) {
	s.doses[userID] = append(s.doses[userID], doses...)
}

// GlucoseReadings returns the user's readings inside the window, sorted
// chronologically. Window bounds are inclusive.
func (s *MemoryStore) GlucoseReadings(userID string, w models.TimeWindow) ([]models.GlucoseReading, error) {
	out := []models.GlucoseReading{}
	for _, r := range s.readings[userID] {
		if w.Contains(r.Timestamp) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// Meals returns the user's meals inside the window, sorted chronologically.
func (s *MemoryStore) Meals(userID string, w models.TimeWindow) ([]models.Meal, error) {
	out := []models.Meal{}
	for _, m := range s.meals[userID] {
		if w.Contains(m.Timestamp) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// Activities returns the user's activities inside the window, sorted
// chronologically.
func (s *MemoryStore) Activities(userID string, w models.TimeWindow) ([]models.Activity, error) {
	out := []models.Activity{}
	for _, a := range s.activities[userID] {
		if w.Contains(a.Timestamp) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// InsulinDoses returns the user's doses inside the window, sorted
// chronologically.
func (s *MemoryStore) InsulinDoses(userID string, w models.TimeWindow) ([]models.InsulinDose, error) {
	out := []models.InsulinDose{}
	for _, d := range s.doses[userID] {
		if w.Contains(d.Timestamp) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}
