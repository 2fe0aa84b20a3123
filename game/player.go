package game

import "github.com/google/uuid"

// PlayerStatus tracks connection state across the disconnect grace window.
type PlayerStatus string

const (
	StatusConnected    PlayerStatus = "connected"
	StatusDisconnected PlayerStatus = "disconnected"
	StatusRemoved      PlayerStatus = "removed"
)

// Player is one seat in a room's turn order. The ID is stable for the
// whole connection-session: a reconnect within the grace window resumes
// the same Player. Whether a player is the drawer is derived from the
// room's drawer index, never stored here.
type Player struct {
	ID     string
	Name   string
	Score  int
	Status PlayerStatus

	// graceGen invalidates grace-window expiries that outlive a
	// reconnect; bumped on every status change.
	graceGen uint64
}

func newPlayer(id, name string) *Player {
	if id == "" {
		id = uuid.NewString()
	}

	return &Player{
		ID:     id,
		Name:   name,
		Status: StatusConnected,
	}
}
