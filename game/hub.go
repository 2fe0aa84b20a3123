package game

import "sync"

// sendBuffer bounds how far a subscriber may fall behind before it is
// dropped. A dropped subscriber resyncs via the full-state message it
// receives on reconnect.
const sendBuffer = 64

// Subscriber is one connection's view of a room's event stream.
type Subscriber struct {
	roomID   string
	playerID string
	ch       chan any
}

// C drains the ordered event stream. Closed when the subscriber is
// dropped or the room is torn down.
func (s *Subscriber) C() <-chan any {
	return s.ch
}

func (s *Subscriber) PlayerID() string {
	return s.playerID
}

// Hub fans room events out to subscribed connections. It holds only room
// identifiers and subscriber sets, never game state, and relays payloads
// opaquely in the order each room emitted them. A subscriber that cannot
// keep up is dropped rather than buffered without bound.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*Subscriber]bool
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Subscriber]bool),
	}
}

func (h *Hub) Subscribe(roomID, playerID string) *Subscriber {
	sub := &Subscriber{
		roomID:   roomID,
		playerID: playerID,
		ch:       make(chan any, sendBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.rooms[roomID]
	if !ok {
		subs = make(map[*Subscriber]bool)
		h.rooms[roomID] = subs
	}
	subs[sub] = true

	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.rooms[sub.roomID]
	if !ok {
		return
	}
	if subs[sub] {
		delete(subs, sub)
		close(sub.ch)
	}
	if len(subs) == 0 {
		delete(h.rooms, sub.roomID)
	}
}

// Broadcast delivers msg to every subscriber of roomID.
func (h *Hub) Broadcast(roomID string, msg any) {
	h.send(roomID, msg, func(*Subscriber) bool { return true })
}

// BroadcastExcept delivers msg to everyone in the room but playerID.
func (h *Hub) BroadcastExcept(roomID, playerID string, msg any) {
	h.send(roomID, msg, func(s *Subscriber) bool { return s.playerID != playerID })
}

// SendTo delivers msg only to subscribers belonging to playerID.
func (h *Hub) SendTo(roomID, playerID string, msg any) {
	h.send(roomID, msg, func(s *Subscriber) bool { return s.playerID == playerID })
}

func (h *Hub) send(roomID string, msg any, want func(*Subscriber) bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.rooms[roomID]
	for sub := range subs {
		if !want(sub) {
			continue
		}

		select {
		case sub.ch <- msg:
		default:
			delete(subs, sub)
			close(sub.ch)
		}
	}
}

// DropRoom disconnects every subscriber of a torn-down room.
func (h *Hub) DropRoom(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.rooms[roomID] {
		close(sub.ch)
	}
	delete(h.rooms, roomID)
}
