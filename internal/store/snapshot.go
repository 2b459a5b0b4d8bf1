package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mwalther/diametrics/internal/models"
)

// Snapshot is the on-disk JSON shape the CLI loads: one user's full record
// sets. Timestamps are ISO-8601 UTC strings.
type Snapshot struct {
	UserID     string                  `json:"user_id"`
	Readings   []models.GlucoseReading `json:"glucose_readings"`
	Meals      []models.Meal           `json:"meals,omitempty"`
	Activities []models.Activity       `json:"activities,omitempty"`
	Doses      []models.InsulinDose    `json:"insulin_doses,omitempty"`
}

// LoadSnapshot reads a snapshot file into a fresh MemoryStore and returns the
// store together with the snapshot's user ID.
func LoadSnapshot(path string) (*MemoryStore, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, "", fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	if snap.UserID == "" {
		snap.UserID = "default"
	}

	s := NewMemoryStore()
	s.AddReadings(snap.UserID, snap.Readings...)
	s.AddMeals(snap.UserID, snap.Meals...)
	s.AddActivities(snap.UserID, snap.Activities...)
	s.AddDoses(snap.UserID, snap.Doses...)
	return s, snap.UserID, nil
}
