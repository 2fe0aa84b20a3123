package game

import "time"

// Timer is the slice of *time.Timer a room needs: stop it, nothing else.
// The room never inspects timer identity; stale firings are detected by
// the phase-generation counter carried in the expiry event.
type Timer interface {
	Stop() bool
}

// TimerFactory schedules fn once after d. Swappable so tests can fire
// deadlines by hand.
type TimerFactory func(d time.Duration, fn func()) Timer

func realTimer(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
