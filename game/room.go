package game

import (
	"encoding/json"
	"errors"
	"math/rand"
	"sort"
	"strings"
	"sync/atomic"
	"time"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomClosed       = errors.New("room closed")
	ErrRoomFull         = errors.New("room is full")
	ErrGameOver         = errors.New("game is over")
	ErrNotHost          = errors.New("only the host can start the game")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrAlreadyStarted   = errors.New("game already in progress")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrWrongPhase       = errors.New("not accepted in this phase")
	ErrBadWordIndex     = errors.New("no such word candidate")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrEmptyGuess       = errors.New("guess cannot be empty")
)

const hintInterval = 10 * time.Second

// Room is one game instance. All state below the event channel is owned
// by the run goroutine: every externally visible operation, timer expiry
// included, is posted onto events and handled there in arrival order, so
// the room behaves single-threaded without ever sharing a lock with
// other rooms.
type Room struct {
	id   string
	cfg  Settings
	bank *WordBank
	hub  *Hub
	logf func(string, ...any)

	events chan roomEvent
	done   chan struct{}

	// swappable for tests
	now      func() time.Time
	newTimer TimerFactory

	// state owned by run()
	phase       Phase
	phaseGen    uint64
	players     []*Player // turn order
	hostID      string
	drawerIndex int
	round       int
	word        string
	candidates  []string
	guessed     map[string]bool
	guessOrder  []string
	roundDeltas map[string]int
	deadline    time.Time
	drawStart   time.Time
	wordsUsed   map[string]bool
	createdAt   time.Time

	phaseTimer Timer
	hintTimer  Timer

	lastActive atomic.Int64
	terminal   atomic.Bool
}

type roomEvent any

type joinReply struct {
	playerID string
	err      error
}

type (
	evJoin struct {
		playerID string
		name     string
		reply    chan joinReply
	}
	evLeave struct {
		playerID string
		reply    chan error
	}
	evStart struct {
		playerID string
		reply    chan error
	}
	evChooseWord struct {
		playerID string
		index    int
		reply    chan error
	}
	evGuess struct {
		playerID string
		text     string
		reply    chan error
	}
	evStroke struct {
		playerID string
		stroke   json.RawMessage
		clear    bool
		reply    chan error
	}
	evChat struct {
		playerID string
		text     string
		reply    chan error
	}
	evDisconnect struct {
		playerID string
	}
	evReconnect struct {
		playerID string
		reply    chan error
	}
	evExpiry struct {
		gen uint64
	}
	evHintTick struct {
		gen uint64
	}
	evGraceOver struct {
		playerID string
		gen      uint64
	}
	evSnapshot struct {
		reply chan *Snapshot
	}
)

func newRoom(id string, cfg Settings, bank *WordBank, hub *Hub, logf func(string, ...any)) *Room {
	r := &Room{
		id:          id,
		cfg:         cfg,
		bank:        bank,
		hub:         hub,
		logf:        logf,
		events:      make(chan roomEvent, 64),
		done:        make(chan struct{}),
		now:         time.Now,
		newTimer:    realTimer,
		phase:       PhaseLobby,
		guessed:     make(map[string]bool),
		roundDeltas: make(map[string]int),
		wordsUsed:   make(map[string]bool),
	}
	r.createdAt = time.Now()
	r.touch()

	return r
}

func (r *Room) ID() string {
	return r.id
}

// Terminal reports whether the room has nothing left to do: game over or
// no players remain. Read by the reaper without touching room state.
func (r *Room) Terminal() bool {
	return r.terminal.Load()
}

// LastActive is the wall-clock time of the last handled event.
func (r *Room) LastActive() time.Time {
	return time.Unix(0, r.lastActive.Load())
}

func (r *Room) touch() {
	r.lastActive.Store(time.Now().UnixNano())
}

// run consumes the event queue until the room is closed. It is the only
// goroutine that touches game state.
func (r *Room) run() {
	for {
		select {
		case ev := <-r.events:
			r.touch()
			r.handle(ev)
		case <-r.done:
			r.stopPhaseTimer()
			r.stopHintTimer()
			return
		}
	}
}

func (r *Room) close() {
	select {
	case <-r.done:
	default:
		close(r.done)
	}
}

// post enqueues an event unless the room has been torn down.
func (r *Room) post(ev roomEvent) bool {
	select {
	case r.events <- ev:
		return true
	case <-r.done:
		return false
	}
}

func (r *Room) call(ev roomEvent, reply chan error) error {
	if !r.post(ev) {
		return ErrRoomClosed
	}
	select {
	case err := <-reply:
		return err
	case <-r.done:
		return ErrRoomClosed
	}
}

// Join adds a player, or resumes them if the ID already has a seat.
// A empty playerID gets a fresh identity.
func (r *Room) Join(playerID, name string) (string, error) {
	reply := make(chan joinReply, 1)
	if !r.post(evJoin{playerID: playerID, name: name, reply: reply}) {
		return "", ErrRoomClosed
	}
	select {
	case res := <-reply:
		return res.playerID, res.err
	case <-r.done:
		return "", ErrRoomClosed
	}
}

func (r *Room) Leave(playerID string) error {
	reply := make(chan error, 1)
	return r.call(evLeave{playerID: playerID, reply: reply}, reply)
}

func (r *Room) Start(playerID string) error {
	reply := make(chan error, 1)
	return r.call(evStart{playerID: playerID, reply: reply}, reply)
}

func (r *Room) ChooseWord(playerID string, index int) error {
	reply := make(chan error, 1)
	return r.call(evChooseWord{playerID: playerID, index: index, reply: reply}, reply)
}

func (r *Room) Guess(playerID, text string) error {
	reply := make(chan error, 1)
	return r.call(evGuess{playerID: playerID, text: text, reply: reply}, reply)
}

func (r *Room) Stroke(playerID string, stroke json.RawMessage) error {
	reply := make(chan error, 1)
	return r.call(evStroke{playerID: playerID, stroke: stroke, reply: reply}, reply)
}

func (r *Room) ClearCanvas(playerID string) error {
	reply := make(chan error, 1)
	return r.call(evStroke{playerID: playerID, clear: true, reply: reply}, reply)
}

func (r *Room) Chat(playerID, text string) error {
	reply := make(chan error, 1)
	return r.call(evChat{playerID: playerID, text: text, reply: reply}, reply)
}

func (r *Room) Disconnect(playerID string) {
	r.post(evDisconnect{playerID: playerID})
}

func (r *Room) Reconnect(playerID string) error {
	reply := make(chan error, 1)
	return r.call(evReconnect{playerID: playerID, reply: reply}, reply)
}

// Snapshot returns a self-contained copy of the room's persistent state.
func (r *Room) Snapshot() (*Snapshot, error) {
	reply := make(chan *Snapshot, 1)
	if !r.post(evSnapshot{reply: reply}) {
		return nil, ErrRoomClosed
	}
	select {
	case snap := <-reply:
		return snap, nil
	case <-r.done:
		return nil, ErrRoomClosed
	}
}

func (r *Room) handle(ev roomEvent) {
	switch ev := ev.(type) {
	case evJoin:
		ev.reply <- r.handleJoin(ev.playerID, ev.name)
	case evLeave:
		r.handleLeave(ev.playerID)
		ev.reply <- nil
	case evStart:
		ev.reply <- r.handleStart(ev.playerID)
	case evChooseWord:
		ev.reply <- r.handleChooseWord(ev.playerID, ev.index)
	case evGuess:
		ev.reply <- r.handleGuess(ev.playerID, ev.text)
	case evStroke:
		ev.reply <- r.handleStroke(ev.playerID, ev.stroke, ev.clear)
	case evChat:
		ev.reply <- r.handleChat(ev.playerID, ev.text)
	case evDisconnect:
		r.handleDisconnect(ev.playerID)
	case evReconnect:
		ev.reply <- r.handleReconnect(ev.playerID)
	case evExpiry:
		r.handleExpiry(ev.gen)
	case evHintTick:
		r.handleHintTick(ev.gen)
	case evGraceOver:
		r.handleGraceOver(ev.playerID, ev.gen)
	case evSnapshot:
		ev.reply <- r.buildSnapshot()
	}
}

func (r *Room) player(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) drawer() *Player {
	if r.drawerIndex < 0 || r.drawerIndex >= len(r.players) {
		return nil
	}
	return r.players[r.drawerIndex]
}

func (r *Room) drawerID() string {
	if d := r.drawer(); d != nil && r.phase != PhaseLobby && r.phase != PhaseGameOver {
		return d.ID
	}
	return ""
}

func (r *Room) connectedCount() int {
	n := 0
	for _, p := range r.players {
		if p.Status == StatusConnected {
			n++
		}
	}
	return n
}

// eligibleCount is the number of connected players who may guess this
// round, i.e. everyone connected but the drawer.
func (r *Room) eligibleCount() int {
	n := 0
	drawerID := r.drawerID()
	for _, p := range r.players {
		if p.Status == StatusConnected && p.ID != drawerID {
			n++
		}
	}
	return n
}

func (r *Room) allEligibleGuessed() bool {
	drawerID := r.drawerID()
	any := false
	for _, p := range r.players {
		if p.Status != StatusConnected || p.ID == drawerID {
			continue
		}
		if !r.guessed[p.ID] {
			return false
		}
		any = true
	}
	return any
}

func (r *Room) playerInfos() []PlayerInfo {
	drawerID := r.drawerID()
	infos := make([]PlayerInfo, 0, len(r.players))
	for _, p := range r.players {
		infos = append(infos, PlayerInfo{
			ID:        p.ID,
			Name:      p.Name,
			Score:     p.Score,
			Connected: p.Status == StatusConnected,
			Host:      p.ID == r.hostID,
			Drawer:    p.ID == drawerID,
			Guessed:   r.guessed[p.ID],
		})
	}
	return infos
}

func (r *Room) broadcastPlayerList() {
	r.hub.Broadcast(r.id, PlayerListMessage{
		Type:    "player_list",
		Players: r.playerInfos(),
	})
}

func (r *Room) broadcastPhase() {
	msg := PhaseChangedMessage{
		Type:      "phase_changed",
		Phase:     r.phase,
		Deadline:  r.deadline,
		DrawerID:  r.drawerID(),
		Round:     r.round,
		MaxRounds: r.cfg.MaxRounds,
	}
	if r.phase == PhaseDrawing {
		msg.Hint = MaskWord(r.word)
	}
	r.hub.Broadcast(r.id, msg)
}

// --- timers ---

// armPhaseTimer starts the single deadline timer for the current phase.
// Bumping phaseGen first makes any in-flight expiry from the previous
// phase stale; a stale firing compares generations and is discarded, so
// a cancelled timer can never mutate state.
func (r *Room) armPhaseTimer(d time.Duration) {
	r.phaseGen++
	gen := r.phaseGen

	r.stopPhaseTimer()
	r.deadline = r.now().Add(d)
	r.phaseTimer = r.newTimer(d, func() {
		r.post(evExpiry{gen: gen})
	})
}

// armPhaseTimerAt is armPhaseTimer against an absolute deadline, used
// when restoring a snapshot: the stored deadline is honored as-is, never
// recomputed, so a restart grants no extra time.
func (r *Room) armPhaseTimerAt(deadline time.Time) {
	r.phaseGen++
	gen := r.phaseGen

	r.stopPhaseTimer()
	r.deadline = deadline
	r.phaseTimer = r.newTimer(time.Until(deadline), func() {
		r.post(evExpiry{gen: gen})
	})
}

func (r *Room) stopPhaseTimer() {
	if r.phaseTimer != nil {
		r.phaseTimer.Stop()
		r.phaseTimer = nil
	}
}

func (r *Room) armHintTimer() {
	gen := r.phaseGen

	r.stopHintTimer()
	r.hintTimer = r.newTimer(hintInterval, func() {
		r.post(evHintTick{gen: gen})
	})
}

func (r *Room) stopHintTimer() {
	if r.hintTimer != nil {
		r.hintTimer.Stop()
		r.hintTimer = nil
	}
}

// --- event handlers ---

func (r *Room) handleJoin(playerID, name string) joinReply {
	if p := r.player(playerID); p != nil {
		// Same identity rejoining: treat as reconnect.
		if err := r.handleReconnect(playerID); err != nil {
			return joinReply{err: err}
		}
		return joinReply{playerID: playerID}
	}

	if r.phase == PhaseGameOver {
		return joinReply{err: ErrGameOver}
	}
	if len(r.players) >= r.cfg.MaxPlayers {
		return joinReply{err: ErrRoomFull}
	}

	p := newPlayer(playerID, name)
	r.players = append(r.players, p)
	if r.hostID == "" {
		r.hostID = p.ID
	}

	r.logf("GAMES: Player %q joined %s", name, r.id)
	r.broadcastPlayerList()

	// Late joiners get caught up like a reconnect would.
	if r.phase != PhaseLobby {
		r.hub.SendTo(r.id, p.ID, r.syncFor(p.ID))
	}

	return joinReply{playerID: p.ID}
}

func (r *Room) handleLeave(playerID string) {
	p := r.player(playerID)
	if p == nil || p.Status == StatusRemoved {
		return
	}

	// Leaving the drawer's seat mid-round abandons the round first.
	if playerID == r.drawerID() && (r.phase == PhaseDrawing || r.phase == PhaseWordSelection) {
		r.endRound(false)
	}

	r.removePlayer(playerID)
}

func (r *Room) handleStart(playerID string) error {
	if r.phase == PhaseGameOver {
		return ErrGameOver
	}
	if r.phase != PhaseLobby {
		return ErrAlreadyStarted
	}
	if playerID != r.hostID {
		return ErrNotHost
	}
	if r.connectedCount() < r.cfg.MinPlayers {
		return ErrNotEnoughPlayers
	}

	// Shuffle the turn order once at start for fairness.
	rand.Shuffle(len(r.players), func(i, j int) {
		r.players[i], r.players[j] = r.players[j], r.players[i]
	})

	r.round = 1
	r.drawerIndex = 0
	if r.players[0].Status != StatusConnected {
		r.advanceDrawer()
	}

	r.logf("GAMES: Game started in %s with %d players", r.id, r.connectedCount())
	r.enterWordSelection()

	return nil
}

func (r *Room) enterWordSelection() {
	r.phase = PhaseWordSelection
	r.word = ""
	r.candidates = r.bank.Candidates(r.cfg.Difficulty, 3, r.wordsUsed)
	r.guessed = make(map[string]bool)
	r.guessOrder = nil
	r.roundDeltas = make(map[string]int)
	r.stopHintTimer()

	r.armPhaseTimer(r.cfg.WordSelectionTime)
	r.broadcastPhase()
	r.hub.SendTo(r.id, r.drawerID(), WordCandidatesMessage{
		Type:       "word_candidates",
		Candidates: r.candidates,
		Deadline:   r.deadline,
	})
}

func (r *Room) handleChooseWord(playerID string, index int) error {
	if r.phase != PhaseWordSelection {
		return ErrWrongPhase
	}
	if playerID != r.drawerID() {
		return ErrNotYourTurn
	}
	if index < 0 || index >= len(r.candidates) {
		return ErrBadWordIndex
	}

	r.startDrawing(r.candidates[index], false)

	return nil
}

func (r *Room) startDrawing(word string, auto bool) {
	r.phase = PhaseDrawing
	r.word = word
	r.wordsUsed[strings.ToLower(word)] = true
	r.drawStart = r.now()

	r.armPhaseTimer(r.cfg.DrawingTime)
	r.armHintTimer()
	r.broadcastPhase()
	r.hub.SendTo(r.id, r.drawerID(), WordAssignedMessage{
		Type:         "word_assigned",
		Word:         word,
		AutoSelected: auto,
	})

	if auto {
		r.logf("GAMES: Auto-selected word for %s", r.id)
	}
}

func (r *Room) handleGuess(playerID, text string) error {
	p := r.player(playerID)
	if p == nil || p.Status != StatusConnected {
		return ErrPlayerNotFound
	}
	if r.phase != PhaseDrawing {
		return ErrWrongPhase
	}
	if playerID == r.drawerID() {
		return ErrNotYourTurn
	}

	guess := strings.TrimSpace(text)
	if guess == "" {
		return ErrEmptyGuess
	}

	// Players who already found the word keep chatting; their guesses
	// are no longer scored.
	if r.guessed[playerID] {
		return r.handleChat(playerID, guess)
	}

	if !strings.EqualFold(guess, r.word) {
		r.hub.SendTo(r.id, playerID, GuessResultMessage{
			Type:     "guess_result",
			PlayerID: playerID,
			Correct:  false,
		})
		return nil
	}

	elapsed := r.now().Sub(r.drawStart)
	fraction := float64(elapsed) / float64(r.cfg.DrawingTime)
	rank := len(r.guessOrder)
	delta := GuessScore(MaxGuessScore, fraction, rank)

	p.Score += delta
	r.guessed[playerID] = true
	r.guessOrder = append(r.guessOrder, playerID)
	r.roundDeltas[playerID] = delta

	// The guesser learns the word; everyone else only that it was found.
	r.hub.SendTo(r.id, playerID, GuessResultMessage{
		Type:       "guess_result",
		PlayerID:   playerID,
		PlayerName: p.Name,
		Correct:    true,
		ScoreDelta: delta,
		Word:       r.word,
	})
	r.hub.BroadcastExcept(r.id, playerID, GuessResultMessage{
		Type:       "guess_result",
		PlayerID:   playerID,
		PlayerName: p.Name,
		Correct:    true,
		ScoreDelta: delta,
	})
	r.broadcastPlayerList()

	if r.allEligibleGuessed() {
		r.endRound(true)
	}

	return nil
}

func (r *Room) handleStroke(playerID string, stroke json.RawMessage, clear bool) error {
	if r.phase != PhaseDrawing {
		return ErrWrongPhase
	}
	if playerID != r.drawerID() {
		return ErrNotYourTurn
	}

	if clear {
		r.hub.BroadcastExcept(r.id, playerID, CanvasClearedMessage{Type: "canvas_cleared"})
		return nil
	}

	r.hub.BroadcastExcept(r.id, playerID, StrokeMessage{
		Type:     "stroke",
		DrawerID: playerID,
		Stroke:   stroke,
	})

	return nil
}

func (r *Room) handleChat(playerID, text string) error {
	p := r.player(playerID)
	if p == nil || p.Status != StatusConnected {
		return ErrPlayerNotFound
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	r.hub.Broadcast(r.id, ChatMessage{
		Type:      "chat",
		PlayerID:  playerID,
		Name:      p.Name,
		Text:      text,
		Timestamp: r.now(),
	})

	return nil
}

func (r *Room) handleDisconnect(playerID string) {
	p := r.player(playerID)
	if p == nil || p.Status != StatusConnected {
		return // duplicate disconnect is a stale signal
	}

	p.Status = StatusDisconnected
	p.graceGen++
	gen := p.graceGen
	r.newTimer(r.cfg.GraceWindow, func() {
		r.post(evGraceOver{playerID: playerID, gen: gen})
	})

	r.logf("GAMES: Player %q disconnected from %s", p.Name, r.id)
	r.broadcastPlayerList()

	// The drawer leaving abandons the round on the spot: reveal and
	// settle now, not when the grace window runs out.
	if playerID == r.drawerID() && (r.phase == PhaseDrawing || r.phase == PhaseWordSelection) {
		r.endRound(false)
		return
	}

	// A departed guesser may have been the last holdout.
	if r.phase == PhaseDrawing && r.allEligibleGuessed() {
		r.endRound(true)
	}
}

func (r *Room) handleReconnect(playerID string) error {
	p := r.player(playerID)
	if p == nil || p.Status == StatusRemoved {
		return ErrPlayerNotFound
	}

	p.Status = StatusConnected
	p.graceGen++

	r.logf("GAMES: Player %q reconnected to %s", p.Name, r.id)
	r.broadcastPlayerList()
	r.hub.SendTo(r.id, playerID, r.syncFor(playerID))

	return nil
}

// syncFor builds the full-state catch-up for one player. The secret word
// travels only to the drawer or to players who already guessed it.
func (r *Room) syncFor(playerID string) SyncMessage {
	msg := SyncMessage{
		Type:      "sync",
		Phase:     r.phase,
		Deadline:  r.deadline,
		DrawerID:  r.drawerID(),
		Round:     r.round,
		MaxRounds: r.cfg.MaxRounds,
		Players:   r.playerInfos(),
	}

	if r.phase == PhaseDrawing {
		msg.Hint = ProgressiveHint(r.word, r.now().Sub(r.drawStart))
	}
	if playerID == r.drawerID() || r.guessed[playerID] {
		msg.Word = r.word
	}
	if playerID == r.drawerID() && r.phase == PhaseWordSelection {
		msg.Candidates = r.candidates
	}

	return msg
}

func (r *Room) handleExpiry(gen uint64) {
	if gen != r.phaseGen {
		return // stale firing from an already-exited phase
	}

	switch r.phase {
	case PhaseWordSelection:
		// No choice made: the first candidate proceeds so the round
		// always starts.
		if len(r.candidates) > 0 {
			r.startDrawing(r.candidates[0], true)
		} else {
			r.endRound(false)
		}
	case PhaseDrawing:
		r.endRound(false)
	case PhaseRoundResult:
		r.nextTurn()
	}
}

func (r *Room) handleHintTick(gen uint64) {
	if gen != r.phaseGen || r.phase != PhaseDrawing {
		return
	}

	elapsed := r.now().Sub(r.drawStart)
	r.hub.BroadcastExcept(r.id, r.drawerID(), HintMessage{
		Type: "hint",
		Hint: ProgressiveHint(r.word, elapsed),
	})

	if elapsed+hintInterval < r.cfg.DrawingTime {
		r.armHintTimer()
	}
}

func (r *Room) handleGraceOver(playerID string, gen uint64) {
	p := r.player(playerID)
	if p == nil || p.Status != StatusDisconnected || p.graceGen != gen {
		return // reconnected in time, or already handled
	}

	r.removePlayer(playerID)
}

// removePlayer drops a player for good and recomputes turn order.
func (r *Room) removePlayer(playerID string) {
	idx := -1
	for i, p := range r.players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	p := r.players[idx]
	p.Status = StatusRemoved
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	delete(r.guessed, p.ID)

	// When the drawer itself goes, stepping back keeps the next
	// rotation landing on their successor rather than skipping it.
	// An index of -1 simply means nobody holds the pencil right now.
	if idx <= r.drawerIndex {
		r.drawerIndex--
	}
	if len(r.players) > 0 && r.drawerIndex >= len(r.players) {
		r.drawerIndex = 0
	}

	if p.ID == r.hostID {
		r.hostID = ""
		for _, next := range r.players {
			if next.Status == StatusConnected {
				r.hostID = next.ID
				break
			}
		}
	}

	r.logf("GAMES: Player %q removed from %s", p.Name, r.id)

	if len(r.players) == 0 {
		r.terminal.Store(true)
		return
	}

	r.broadcastPlayerList()

	if r.phase != PhaseLobby && r.phase != PhaseGameOver && r.connectedCount() < r.cfg.MinPlayers {
		r.gameOver()
		return
	}

	if r.phase == PhaseDrawing && r.allEligibleGuessed() {
		r.endRound(true)
	}
}

// endRound settles the current turn: drawer bonus, ranked deltas, word
// reveal, and the result-display countdown.
func (r *Room) endRound(allGuessed bool) {
	drawerID := r.drawerID()

	bonus := DrawerBonus(len(r.guessOrder), r.eligibleCount())
	if d := r.drawer(); d != nil && bonus > 0 {
		d.Score += bonus
		r.roundDeltas[drawerID] = bonus
	}

	results := make([]RoundScore, 0, len(r.players))
	for _, p := range r.players {
		results = append(results, RoundScore{
			PlayerID: p.ID,
			Name:     p.Name,
			Delta:    r.roundDeltas[p.ID],
			Score:    p.Score,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Delta > results[j].Delta
	})
	for i := range results {
		results[i].Rank = i + 1
	}

	word := r.word
	r.phase = PhaseRoundResult
	r.stopHintTimer()
	r.armPhaseTimer(r.cfg.ResultDisplayTime)

	r.broadcastPhase()
	if word != "" {
		r.hub.Broadcast(r.id, WordRevealedMessage{Type: "word_revealed", Word: word})
	}
	r.hub.Broadcast(r.id, RoundResultMessage{
		Type:    "round_result",
		Word:    word,
		Results: results,
	})
	r.broadcastPlayerList()

	r.logf("GAMES: Round %d ended in %s (all guessed: %t)", r.round, r.id, allGuessed)
}

// nextTurn runs on result-display expiry: rotate the drawer and start the
// next round, or finish the game.
func (r *Room) nextTurn() {
	if r.round >= r.cfg.MaxRounds || r.connectedCount() < r.cfg.MinPlayers {
		r.gameOver()
		return
	}

	r.round++
	r.advanceDrawer()
	r.enterWordSelection()
}

// advanceDrawer moves the drawer index to the next connected player in
// turn order, skipping disconnected seats.
func (r *Room) advanceDrawer() {
	if len(r.players) == 0 {
		return
	}

	for i := 1; i <= len(r.players); i++ {
		next := (r.drawerIndex + i) % len(r.players)
		if r.players[next].Status == StatusConnected {
			r.drawerIndex = next
			return
		}
	}
}

func (r *Room) gameOver() {
	r.phase = PhaseGameOver
	r.phaseGen++ // anything still in flight is now stale
	r.stopPhaseTimer()
	r.stopHintTimer()
	r.deadline = time.Time{}
	r.terminal.Store(true)

	ranking := make([]RoundScore, 0, len(r.players))
	for _, p := range r.players {
		ranking = append(ranking, RoundScore{
			PlayerID: p.ID,
			Name:     p.Name,
			Score:    p.Score,
		})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Score > ranking[j].Score
	})
	for i := range ranking {
		ranking[i].Rank = i + 1
	}

	r.broadcastPhase()
	r.hub.Broadcast(r.id, GameOverMessage{Type: "game_over", Ranking: ranking})

	r.logf("GAMES: Game over in %s", r.id)
}
