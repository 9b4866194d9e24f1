// Package events publishes month change notifications so other devices of
// the same user can refresh their copy.
package events

import (
	"encoding/json"
	"time"
)

// Routing keys on the events exchange.
const (
	RoutingHoursSaved    = "hours.saved"
	RoutingModelsChanged = "models.changed"
)

// HoursSaved is published after a month's salary and days were replaced.
// It carries counts only; consumers fetch the month through the API.
type HoursSaved struct {
	UserID  string    `json:"userId"`
	Month   string    `json:"month"`
	Days    int       `json:"days"`
	Salary  string    `json:"salary"`
	SavedAt time.Time `json:"savedAt"`
}

// ModelsChanged is published after a calculation model registry changed.
type ModelsChanged struct {
	UserID    string    `json:"userId"`
	Month     string    `json:"month"`
	Models    int       `json:"models"`
	Reason    string    `json:"reason"`
	ChangedAt time.Time `json:"changedAt"`
}

// ToJSON converts the message to JSON bytes
func (m HoursSaved) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ToJSON converts the message to JSON bytes
func (m ModelsChanged) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// HoursSavedFromJSON decodes a HoursSaved message.
func HoursSavedFromJSON(data []byte) (*HoursSaved, error) {
	var msg HoursSaved
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
