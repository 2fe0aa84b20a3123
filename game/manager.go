package game

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"sync"
	"time"
)

const (
	// gameOverLinger is how long a finished room sticks around before
	// the reaper tears it down, so clients can fetch the final ranking.
	gameOverLinger = time.Minute

	// restoreHorizon drops snapshots of rooms too old to be worth
	// resurrecting after a restart.
	restoreHorizon = 24 * time.Hour
)

// Manager owns the process-wide map of room ID to state machine. Rooms
// are created on first join and torn down by the reaper once finished or
// idle. The manager also runs the persistence bridge: a periodic
// snapshot of every active room, written through the SnapshotStore.
type Manager struct {
	cfg   Settings
	bank  *WordBank
	hub   *Hub
	store SnapshotStore
	logf  func(string, ...any)

	idleTimeout time.Duration

	mu    sync.Mutex
	rooms map[string]*Room
}

func NewManager(cfg Settings, bank *WordBank, store SnapshotStore, idleTimeout time.Duration, logf func(string, ...any)) *Manager {
	if logf == nil {
		logf = func(string, ...any) {}
	}

	return &Manager{
		cfg:         cfg,
		bank:        bank,
		hub:         NewHub(),
		store:       store,
		logf:        logf,
		idleTimeout: idleTimeout,
		rooms:       make(map[string]*Room),
	}
}

func (m *Manager) Hub() *Hub {
	return m.hub
}

func (m *Manager) room(roomID string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// JoinRoom adds a player to a room, creating the room on first join.
// Returns the player's stable identifier.
func (m *Manager) JoinRoom(roomID, playerID, name string) (string, error) {
	m.mu.Lock()
	room, ok := m.rooms[roomID]
	if !ok {
		room = newRoom(roomID, m.cfg, m.bank, m.hub, m.logf)
		m.rooms[roomID] = room
		go room.run()
		m.logf("GAMES: Created room %s", roomID)
	}
	m.mu.Unlock()

	return room.Join(playerID, name)
}

func (m *Manager) LeaveRoom(roomID, playerID string) error {
	room, err := m.room(roomID)
	if err != nil {
		return err
	}
	return room.Leave(playerID)
}

func (m *Manager) StartGame(roomID, playerID string) error {
	room, err := m.room(roomID)
	if err != nil {
		return err
	}
	return room.Start(playerID)
}

func (m *Manager) ChooseWord(roomID, playerID string, index int) error {
	room, err := m.room(roomID)
	if err != nil {
		return err
	}
	return room.ChooseWord(playerID, index)
}

func (m *Manager) SubmitGuess(roomID, playerID, text string) error {
	room, err := m.room(roomID)
	if err != nil {
		return err
	}
	return room.Guess(playerID, text)
}

func (m *Manager) DrawStroke(roomID, playerID string, stroke json.RawMessage) error {
	room, err := m.room(roomID)
	if err != nil {
		return err
	}
	return room.Stroke(playerID, stroke)
}

func (m *Manager) ClearCanvas(roomID, playerID string) error {
	room, err := m.room(roomID)
	if err != nil {
		return err
	}
	return room.ClearCanvas(playerID)
}

func (m *Manager) Chat(roomID, playerID, text string) error {
	room, err := m.room(roomID)
	if err != nil {
		return err
	}
	return room.Chat(playerID, text)
}

func (m *Manager) Disconnect(roomID, playerID string) {
	room, err := m.room(roomID)
	if err != nil {
		return
	}
	room.Disconnect(playerID)
}

func (m *Manager) Reconnect(roomID, playerID string) error {
	room, err := m.room(roomID)
	if err != nil {
		return err
	}
	return room.Reconnect(playerID)
}

// NewRoomID generates a crypto-random room ID, retrying on the unlikely
// collision with a live room.
func (m *Manager) NewRoomID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	for {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, 8)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		id := string(out)

		m.mu.Lock()
		_, exists := m.rooms[id]
		m.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// Restore loads every stored snapshot and reconstructs its room with the
// original phase deadline, so a restart never grants extra time. Rooms
// already over, or past the restore horizon, have their snapshots
// deleted instead.
func (m *Manager) Restore() error {
	snaps, err := m.store.LoadAll()
	if err != nil {
		return err
	}

	for roomID, data := range snaps {
		snap, err := UnmarshalSnapshot(data)
		if err != nil {
			m.logf("STORE: Dropping unreadable snapshot for %s: %v", roomID, err)
			_ = m.store.Delete(roomID)
			continue
		}

		if snap.Phase == PhaseGameOver || time.Since(snap.CreatedAt) > restoreHorizon || len(snap.Players) == 0 {
			_ = m.store.Delete(roomID)
			continue
		}

		room := restoreRoom(snap, m.cfg, m.bank, m.hub, m.logf)
		room.resume()

		m.mu.Lock()
		m.rooms[roomID] = room
		m.mu.Unlock()

		go room.run()
		m.logf("STORE: Restored room %s in phase %s", roomID, snap.Phase)
	}

	return nil
}

// Run drives the backup and reaper loops until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	backup := time.NewTicker(m.cfg.BackupInterval)
	defer backup.Stop()

	reapEvery := m.idleTimeout / 2
	if reapEvery <= 0 {
		reapEvery = time.Minute
	}
	reap := time.NewTicker(reapEvery)
	defer reap.Stop()

	for {
		select {
		case <-backup.C:
			m.backupAll()
		case <-reap.C:
			m.reap()
		case <-ctx.Done():
			return
		}
	}
}

// backupAll snapshots every active room and writes the results out.
// Each room answers its snapshot request on its own event queue, one at
// a time; store writes happen afterwards, outside every room's queue, so
// neither a slow room nor a slow store can stall the other.
func (m *Manager) backupAll() {
	m.mu.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		rooms = append(rooms, room)
	}
	m.mu.Unlock()

	type pending struct {
		roomID string
		data   []byte
	}
	writes := make([]pending, 0, len(rooms))

	for _, room := range rooms {
		if room.Terminal() {
			continue
		}

		snap, err := room.Snapshot()
		if err != nil {
			continue // room closed mid-backup
		}
		data, err := snap.Marshal()
		if err != nil {
			m.logf("STORE: Failed to encode snapshot for %s: %v", room.ID(), err)
			continue
		}
		writes = append(writes, pending{roomID: room.ID(), data: data})
	}

	for _, w := range writes {
		// Failures are logged and retried on the next interval; the
		// game never stops for the store.
		if err := m.store.Save(w.roomID, w.data); err != nil {
			m.logf("STORE: Failed to save snapshot for %s: %v", w.roomID, err)
		}
	}
}

// reap tears down rooms that are finished (after a short linger) or have
// been idle past the timeout.
func (m *Manager) reap() {
	now := time.Now()

	m.mu.Lock()
	doomed := make([]*Room, 0)
	for id, room := range m.rooms {
		idle := now.Sub(room.LastActive())
		if (room.Terminal() && idle > gameOverLinger) || (m.idleTimeout > 0 && idle > m.idleTimeout) {
			delete(m.rooms, id)
			doomed = append(doomed, room)
		}
	}
	m.mu.Unlock()

	for _, room := range doomed {
		m.teardown(room)
	}
}

func (m *Manager) teardown(room *Room) {
	room.close()
	m.hub.DropRoom(room.ID())
	if err := m.store.Delete(room.ID()); err != nil {
		m.logf("STORE: Failed to delete snapshot for %s: %v", room.ID(), err)
	}
	m.logf("GAMES: Tore down room %s", room.ID())
}
