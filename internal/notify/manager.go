// Package notify surfaces high-priority insights as desktop notifications.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/mwalther/diametrics/internal/models"
)

// Priorities eligible for desktop alerts.
const (
	priorityHigh   = "high"
	priorityMedium = "medium"
)

// Manager sends insight notifications with per-type repeat suppression.
type Manager struct {
	repeatAfter   time.Duration
	includeMedium bool
	lastAlertTime map[string]time.Time
	mu            sync.Mutex

	// send is swappable for tests.
	send func(title, message string) error
	now  func() time.Time
}

// NewManager creates a notification manager. A zero repeatAfter suppresses
// every repeat of an insight type for the manager's lifetime.
func NewManager(repeatAfter time.Duration, includeMedium bool) *Manager {
	return &Manager{
		repeatAfter:   repeatAfter,
		includeMedium: includeMedium,
		lastAlertTime: make(map[string]time.Time),
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		now: time.Now,
	}
}

// Notify sends a desktop notification for each eligible insight, skipping
// types alerted recently. It returns the number of notifications sent.
func (m *Manager) Notify(insightList []models.Insight) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sent := 0
	for _, ins := range insightList {
		if !m.eligible(ins) {
			continue
		}
		if last, ok := m.lastAlertTime[ins.Type]; ok {
			if m.repeatAfter <= 0 || m.now().Sub(last) < m.repeatAfter {
				continue
			}
		}

		title, message := formatNotification(ins)
		if err := m.send(title, message); err != nil {
			return sent, fmt.Errorf("sending notification %q: %w", ins.Type, err)
		}
		m.lastAlertTime[ins.Type] = m.now()
		sent++
	}
	return sent, nil
}

// eligible reports whether an insight's priority warrants a notification.
func (m *Manager) eligible(ins models.Insight) bool {
	switch ins.Priority {
	case priorityHigh:
		return true
	case priorityMedium:
		return m.includeMedium
	}
	return false
}

// ClearAlertState clears the repeat suppression for one insight type, or for
// all types when the argument is empty.
func (m *Manager) ClearAlertState(insightType string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if insightType == "" {
		m.lastAlertTime = make(map[string]time.Time)
	} else {
		delete(m.lastAlertTime, insightType)
	}
}

// SendTestNotification verifies the desktop notification path end to end.
func (m *Manager) SendTestNotification() error {
	return m.send("Diametrics", "Test notification - alerts are working!")
}

// formatNotification builds the notification title and body for an insight.
func formatNotification(ins models.Insight) (string, string) {
	title := ins.Title
	if ins.Priority == priorityHigh {
		title = "⚠️ " + title
	}
	message := ins.Message
	if ins.SuggestedAction != "" {
		message = fmt.Sprintf("%s %s", ins.Message, ins.SuggestedAction)
	}
	return title, message
}
