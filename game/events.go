package game

import (
	"encoding/json"
	"time"
)

// Phase is one stage of a room's lifecycle.
type Phase string

const (
	PhaseLobby         Phase = "lobby"
	PhaseWordSelection Phase = "word_selection"
	PhaseDrawing       Phase = "drawing"
	PhaseRoundResult   Phase = "round_result"
	PhaseGameOver      Phase = "game_over"
)

// PlayerInfo is the wire representation of one player.
type PlayerInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Connected bool   `json:"connected"`
	Host      bool   `json:"host,omitempty"`
	Drawer    bool   `json:"drawer,omitempty"`
	Guessed   bool   `json:"guessed,omitempty"`
}

// PhaseChangedMessage announces a phase transition to the whole room.
type PhaseChangedMessage struct {
	Type      string    `json:"type"` // "phase_changed"
	Phase     Phase     `json:"phase"`
	Deadline  time.Time `json:"deadline,omitempty"`
	DrawerID  string    `json:"drawer_id,omitempty"`
	Round     int       `json:"round"`
	MaxRounds int       `json:"max_rounds"`
	Hint      string    `json:"hint,omitempty"` // masked word during drawing
}

// WordCandidatesMessage is sent to the drawer only.
type WordCandidatesMessage struct {
	Type       string    `json:"type"` // "word_candidates"
	Candidates []string  `json:"candidates"`
	Deadline   time.Time `json:"deadline"`
}

// WordAssignedMessage tells the drawer which word they are drawing.
type WordAssignedMessage struct {
	Type         string `json:"type"` // "word_assigned"
	Word         string `json:"word"`
	AutoSelected bool   `json:"auto_selected,omitempty"`
}

// WordRevealedMessage uncovers the secret word at round end.
type WordRevealedMessage struct {
	Type string `json:"type"` // "word_revealed"
	Word string `json:"word"`
}

// GuessResultMessage reports a guess outcome. Incorrect results go only to
// the guesser; correct results are broadcast without the word.
type GuessResultMessage struct {
	Type       string `json:"type"` // "guess_result"
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name,omitempty"`
	Correct    bool   `json:"correct"`
	ScoreDelta int    `json:"score_delta,omitempty"`
	Word       string `json:"word,omitempty"` // guesser's own copy only
}

// RoundScore is one row of a round or game result.
type RoundScore struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Delta    int    `json:"delta"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

// RoundResultMessage carries the revealed word and ranked score deltas.
type RoundResultMessage struct {
	Type    string       `json:"type"` // "round_result"
	Word    string       `json:"word"`
	Results []RoundScore `json:"results"`
}

// PlayerListMessage is broadcast whenever membership or scores change.
type PlayerListMessage struct {
	Type    string       `json:"type"` // "player_list"
	Players []PlayerInfo `json:"players"`
}

// HintMessage carries a progressive hint to non-drawers mid-round.
type HintMessage struct {
	Type string `json:"type"` // "hint"
	Hint string `json:"hint"`
}

// StrokeMessage relays an opaque canvas stroke from the drawer.
type StrokeMessage struct {
	Type     string          `json:"type"` // "stroke"
	DrawerID string          `json:"drawer_id"`
	Stroke   json.RawMessage `json:"stroke"`
}

// CanvasClearedMessage tells clients the drawer wiped the canvas.
type CanvasClearedMessage struct {
	Type string `json:"type"` // "canvas_cleared"
}

// ChatMessage relays non-guess chat.
type ChatMessage struct {
	Type      string    `json:"type"` // "chat"
	PlayerID  string    `json:"player_id"`
	Name      string    `json:"name"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// SyncMessage is the full-state catch-up delivered to a reconnecting
// player. Word and Candidates are populated only when this player is
// entitled to them.
type SyncMessage struct {
	Type       string       `json:"type"` // "sync"
	Phase      Phase        `json:"phase"`
	Deadline   time.Time    `json:"deadline,omitempty"`
	DrawerID   string       `json:"drawer_id,omitempty"`
	Round      int          `json:"round"`
	MaxRounds  int          `json:"max_rounds"`
	Players    []PlayerInfo `json:"players"`
	Hint       string       `json:"hint,omitempty"`
	Word       string       `json:"word,omitempty"`
	Candidates []string     `json:"candidates,omitempty"`
}

// GameOverMessage carries the final ranking. Terminal.
type GameOverMessage struct {
	Type    string       `json:"type"` // "game_over"
	Ranking []RoundScore `json:"ranking"`
}

// ErrorMessage is delivered only to the offending connection.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}
