package alert

import (
	"time"

	"github.com/streamtip/donatio/internal/models"
)

type State int

const (
	Empty State = iota
	Showing
	Expiring
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Showing:
		return "showing"
	case Expiring:
		return "expiring"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type EventKind string

const (
	// EventShown fires on entering Showing.
	EventShown EventKind = "shown"
	// EventHidden fires on entering Expiring, when the exit animation starts.
	EventHidden EventKind = "hidden"
	// EventClosed fires when the slot is empty again.
	EventClosed EventKind = "closed"
)

type Event struct {
	Kind         EventKind                   `json:"kind"`
	Generation   uint64                      `json:"generation"`
	Notification models.DonationNotification `json:"notification"`
	At           time.Time                   `json:"at"`
}

type Snapshot struct {
	State        State                        `json:"state"`
	Visible      bool                         `json:"visible"`
	Generation   uint64                       `json:"generation"`
	Notification *models.DonationNotification `json:"notification,omitempty"`
}
