package game

import (
	"encoding/json"
	"time"
)

// SnapshotStore maps room identifiers to serialized session snapshots.
// Implementations live in the storage package.
type SnapshotStore interface {
	Save(roomID string, data []byte) error
	LoadAll() (map[string][]byte, error)
	Delete(roomID string) error
}

// PlayerSnapshot is one player's persistent state.
type PlayerSnapshot struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Score  int          `json:"score"`
	Status PlayerStatus `json:"status"`
}

// Snapshot is a point-in-time, self-contained serialization of a room:
// everything needed to reconstruct it after a restart except ephemeral
// guess events and the timer object itself. The absolute Deadline is
// stored so a restored phase resumes against the original clock.
type Snapshot struct {
	RoomID      string           `json:"room_id"`
	Phase       Phase            `json:"phase"`
	Players     []PlayerSnapshot `json:"players"`
	HostID      string           `json:"host_id"`
	DrawerIndex int              `json:"drawer_index"`
	Round       int              `json:"round"`
	MaxRounds   int              `json:"max_rounds"`
	Word        string           `json:"word,omitempty"`
	Candidates  []string         `json:"candidates,omitempty"`
	Guessed     []string         `json:"guessed,omitempty"`
	GuessOrder  []string         `json:"guess_order,omitempty"`
	RoundDeltas map[string]int   `json:"round_deltas,omitempty"`
	Deadline    time.Time        `json:"deadline,omitempty"`
	DrawStart   time.Time        `json:"draw_start,omitempty"`
	WordsUsed   []string         `json:"words_used,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	TakenAt     time.Time        `json:"taken_at"`
}

func (s *Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// buildSnapshot runs on the room goroutine.
func (r *Room) buildSnapshot() *Snapshot {
	snap := &Snapshot{
		RoomID:      r.id,
		Phase:       r.phase,
		HostID:      r.hostID,
		DrawerIndex: r.drawerIndex,
		Round:       r.round,
		MaxRounds:   r.cfg.MaxRounds,
		Word:        r.word,
		Candidates:  append([]string(nil), r.candidates...),
		Deadline:    r.deadline,
		DrawStart:   r.drawStart,
		CreatedAt:   r.createdAt,
		TakenAt:     r.now(),
	}

	for _, p := range r.players {
		snap.Players = append(snap.Players, PlayerSnapshot{
			ID:     p.ID,
			Name:   p.Name,
			Score:  p.Score,
			Status: p.Status,
		})
	}
	for id := range r.guessed {
		snap.Guessed = append(snap.Guessed, id)
	}
	snap.GuessOrder = append([]string(nil), r.guessOrder...)
	if len(r.roundDeltas) > 0 {
		snap.RoundDeltas = make(map[string]int, len(r.roundDeltas))
		for id, d := range r.roundDeltas {
			snap.RoundDeltas[id] = d
		}
	}
	for w := range r.wordsUsed {
		snap.WordsUsed = append(snap.WordsUsed, w)
	}

	return snap
}

// restoreRoom rebuilds a room from a snapshot. Every player comes back as
// disconnected-pending with a fresh grace window, since no sockets
// survive a restart; identities are preserved so reconnects resume them.
// The phase timer is re-armed against the stored deadline: if it already
// passed, the expiry fires immediately instead of granting extra time.
func restoreRoom(snap *Snapshot, cfg Settings, bank *WordBank, hub *Hub, logf func(string, ...any)) *Room {
	r := newRoom(snap.RoomID, cfg, bank, hub, logf)
	r.phase = snap.Phase
	r.hostID = snap.HostID
	r.drawerIndex = snap.DrawerIndex
	r.round = snap.Round
	r.cfg.MaxRounds = snap.MaxRounds
	r.word = snap.Word
	r.candidates = append([]string(nil), snap.Candidates...)
	r.deadline = snap.Deadline
	r.drawStart = snap.DrawStart
	r.createdAt = snap.CreatedAt

	for _, ps := range snap.Players {
		p := &Player{
			ID:    ps.ID,
			Name:  ps.Name,
			Score: ps.Score,
		}
		switch ps.Status {
		case StatusRemoved:
			continue
		default:
			p.Status = StatusDisconnected
		}
		r.players = append(r.players, p)
	}
	for _, id := range snap.Guessed {
		r.guessed[id] = true
	}
	r.guessOrder = append([]string(nil), snap.GuessOrder...)
	for id, d := range snap.RoundDeltas {
		r.roundDeltas[id] = d
	}
	for _, w := range snap.WordsUsed {
		r.wordsUsed[w] = true
	}

	return r
}

// resume arms the restored room's timers. Called before the run
// goroutine starts, while nothing else can touch the room; an overdue
// deadline fires into the event queue and is handled as soon as the
// loop comes up.
func (r *Room) resume() {
	switch r.phase {
	case PhaseWordSelection, PhaseDrawing, PhaseRoundResult:
		r.armPhaseTimerAt(r.deadline)
		if r.phase == PhaseDrawing {
			r.armHintTimer()
		}
	}

	for _, p := range r.players {
		if p.Status != StatusDisconnected {
			continue
		}
		p.graceGen++
		gen := p.graceGen
		id := p.ID
		r.newTimer(r.cfg.GraceWindow, func() {
			r.post(evGraceOver{playerID: id, gen: gen})
		})
	}
}
