// Rooms are identified by an 8-character ID in the URL, so a session can
// be shared as a link or a QR code. Each connection is identified by a
// cookie, which survives refreshes and lets a player rejoin mid-game.
//
// The websocket speaks JSON both ways: inbound ClientMessage envelopes
// dispatch to the room's event queue through the Manager, outbound
// messages are whatever the room broadcast through the hub, relayed in
// order by the write pump.

package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/sketchbox/sketchbox/game"
)

// ClientMessage is the inbound envelope. Fields beyond Type are used
// only by the message types noted on them.
type ClientMessage struct {
	Type   string          `json:"type"`             // "join", "leave", "start_game", "choose_word", "guess", "stroke", "clear_canvas", "chat"
	Name   string          `json:"name,omitempty"`   // join
	Index  int             `json:"index,omitempty"`  // choose_word
	Text   string          `json:"text,omitempty"`   // guess / chat
	Stroke json.RawMessage `json:"stroke,omitempty"` // stroke
}

type Client struct {
	conn     *websocket.Conn
	sub      *game.Subscriber
	roomID   string
	playerID string
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const playerCookieName = "sketchbox_id"

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// WebSocket handler that picks the room based on :roomid
func serveWS(cfg *Config, mgr *game.Manager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		roomID := ps.ByName("roomid")
		if roomID == "" {
			http.Error(w, "missing room id", http.StatusBadRequest)
			return
		}

		playerID := getOrSetPlayerID(w, r)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "GAMES: Upgrade error from %s: %v", realIP(r), err)
			return
		}

		client := &Client{
			conn:     conn,
			sub:      mgr.Hub().Subscribe(roomID, playerID),
			roomID:   roomID,
			playerID: playerID,
		}

		go client.writePump()
		client.readPump(mgr)
	}
}

// readPump dispatches inbound messages until the connection drops, then
// reports the disconnect so the room can start the player's grace timer.
func (c *Client) readPump(mgr *game.Manager) {
	joined := false

	defer func() {
		if joined {
			mgr.Disconnect(c.roomID, c.playerID)
		}
		mgr.Hub().Unsubscribe(c.sub)
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		var err error

		switch msg.Type {
		case "join":
			_, err = mgr.JoinRoom(c.roomID, c.playerID, strings.TrimSpace(msg.Name))
			if err == nil {
				joined = true
			}
		case "leave":
			err = mgr.LeaveRoom(c.roomID, c.playerID)
			if err == nil {
				joined = false
			}
		case "start_game":
			err = mgr.StartGame(c.roomID, c.playerID)
		case "choose_word":
			err = mgr.ChooseWord(c.roomID, c.playerID, msg.Index)
		case "guess":
			err = mgr.SubmitGuess(c.roomID, c.playerID, msg.Text)
		case "stroke":
			err = mgr.DrawStroke(c.roomID, c.playerID, msg.Stroke)
		case "clear_canvas":
			err = mgr.ClearCanvas(c.roomID, c.playerID)
		case "chat":
			err = mgr.Chat(c.roomID, c.playerID, msg.Text)
		default:
			// ignore unknown types
		}

		if err != nil {
			mgr.Hub().SendTo(c.roomID, c.playerID, game.ErrorMessage{
				Type:    "error",
				Message: err.Error(),
			})
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.sub.C() {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for the current room URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID := ps.ByName("roomid")
	if roomID == "" {
		http.Error(w, "missing room id", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:roomid/qr; strip trailing "/qr" to get the room URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func getRoomHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		// No securityHeaders here: the page carries its inline client,
		// which the site-wide CSP would reject.
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		_ = getOrSetPlayerID(w, r)

		_, _ = w.Write([]byte(sketchHTML))
	}
}

// redirectNewRoom handles GET /path by generating a new random room ID
// (with server-side collision detection) and redirecting to /path/:roomid.
func redirectNewRoom(cfg *Config, path string, mgr *game.Manager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		roomID := mgr.NewRoomID()
		logf(cfg, "GAMES: Created room link %s/%s", path, roomID)
		http.Redirect(w, r, path+"/"+roomID, http.StatusTemporaryRedirect)
	}
}

// registerSketchGame sets up routes so that:
//   - $path                  → redirects to new random room (8-char ID)
//   - $path/:roomid          → HTML client
//   - $path/:roomid/ws       → WebSocket for that room
//   - $path/:roomid/qr       → PNG QR code for that room URL
func registerSketchGame(cfg *Config, path string, mux *httprouter.Router, mgr *game.Manager) {
	// Root path → redirect to new random room
	mux.GET(path, redirectNewRoom(cfg, path, mgr))

	// Per-room client view (HTML)
	mux.GET(cfg.prefix+path+"/:roomid", getRoomHandler(cfg))

	// Per-room websocket
	mux.GET(cfg.prefix+path+"/:roomid/ws", serveWS(cfg, mgr))

	// Per-room QR code
	mux.GET(cfg.prefix+path+"/:roomid/qr", qrHandler)
}

// Simple HTML client for quick testing
const sketchHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Sketchbox</title>
<style>
  body { font-family: system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 2rem; }
  h1 { margin-bottom: 0.5rem; }
  #status { margin-bottom: 1rem; font-size: 0.9rem; }
  #board { border: 1px solid #888; touch-action: none; }
  #log { margin-top: 1rem; padding: 0; list-style: none; max-height: 16rem; overflow-y: auto; }
  #log li { padding: 0.15rem 0; border-bottom: 1px solid #eee; }
  #controls { margin-top: 0.5rem; }
</style>
</head>
<body>
<h1>Sketchbox</h1>
<div id="status">Connecting…</div>
<canvas id="board" width="640" height="480"></canvas>
<div id="controls">
  <input id="text" placeholder="Guess or chat…">
  <button id="send">Guess</button>
  <button id="chat">Chat</button>
  <button id="start">Start game</button>
  <button id="clear">Clear</button>
</div>
<ul id="log"></ul>

<script>
(function() {
  const statusEl = document.getElementById('status');
  const logEl = document.getElementById('log');
  const board = document.getElementById('board');
  const ctx = board.getContext('2d');

  let drawing = false;
  let amDrawer = false;
  let last = null;

  const proto = (location.protocol === 'https:') ? 'wss://' : 'ws://';
  const wsPath = location.pathname.replace(/\/$/, '') + '/ws';
  const ws = new WebSocket(proto + location.host + wsPath);

  function addLine(text) {
    const li = document.createElement('li');
    li.textContent = text;
    logEl.appendChild(li);
    logEl.scrollTop = logEl.scrollHeight;
  }

  function drawSegment(s) {
    ctx.beginPath();
    ctx.moveTo(s.x0, s.y0);
    ctx.lineTo(s.x1, s.y1);
    ctx.stroke();
  }

  ws.onopen = function() {
    statusEl.textContent = 'Connected.';
    const name = prompt('Enter your name:') || '';
    if (name) {
      ws.send(JSON.stringify({ type: 'join', name: name }));
    }
  };

  ws.onmessage = function(event) {
    let msg;
    try {
      msg = JSON.parse(event.data);
    } catch (e) {
      return;
    }

    switch (msg.type) {
    case 'phase_changed':
      statusEl.textContent = 'Phase: ' + msg.phase +
        (msg.hint ? ' | ' + msg.hint : '');
      if (msg.phase === 'drawing' || msg.phase === 'word_selection') {
        ctx.clearRect(0, 0, board.width, board.height);
      }
      break;
    case 'word_candidates':
      amDrawer = true;
      const pick = prompt('Your turn! Pick a word (1-' + msg.candidates.length + '): ' +
        msg.candidates.join(', '));
      const idx = parseInt(pick, 10) - 1;
      ws.send(JSON.stringify({ type: 'choose_word', index: isNaN(idx) ? 0 : idx }));
      break;
    case 'word_assigned':
      statusEl.textContent = 'Draw: ' + msg.word;
      break;
    case 'word_revealed':
      amDrawer = false;
      addLine('The word was: ' + msg.word);
      break;
    case 'guess_result':
      addLine(msg.player_name + (msg.correct ? ' guessed the word!' : ': (wrong guess)'));
      break;
    case 'round_result':
      (msg.results || []).forEach(function(s) {
        addLine(s.name + ': +' + s.delta + ' (' + s.score + ')');
      });
      break;
    case 'hint':
      statusEl.textContent = 'Hint: ' + msg.hint;
      break;
    case 'stroke':
      drawSegment(msg.stroke);
      break;
    case 'canvas_cleared':
      ctx.clearRect(0, 0, board.width, board.height);
      break;
    case 'chat':
      addLine(msg.name + ': ' + msg.text);
      break;
    case 'game_over':
      amDrawer = false;
      statusEl.textContent = 'Game over!';
      (msg.ranking || []).forEach(function(s) {
        addLine('#' + s.rank + ' ' + s.name + ': ' + s.score);
      });
      break;
    case 'error':
      addLine('Error: ' + msg.message);
      break;
    }
  };

  ws.onclose = function() {
    statusEl.textContent = 'Disconnected.';
  };

  function pos(e) {
    const rect = board.getBoundingClientRect();
    return { x: e.clientX - rect.left, y: e.clientY - rect.top };
  }

  board.addEventListener('pointerdown', function(e) {
    if (!amDrawer) return;
    drawing = true;
    last = pos(e);
  });

  board.addEventListener('pointermove', function(e) {
    if (!drawing || !amDrawer) return;
    const p = pos(e);
    const seg = { x0: last.x, y0: last.y, x1: p.x, y1: p.y };
    drawSegment(seg);
    ws.send(JSON.stringify({ type: 'stroke', stroke: seg }));
    last = p;
  });

  window.addEventListener('pointerup', function() {
    drawing = false;
  });

  document.getElementById('send').onclick = function() {
    const input = document.getElementById('text');
    if (input.value) {
      ws.send(JSON.stringify({ type: 'guess', text: input.value }));
      input.value = '';
    }
  };

  document.getElementById('chat').onclick = function() {
    const input = document.getElementById('text');
    if (input.value) {
      ws.send(JSON.stringify({ type: 'chat', text: input.value }));
      input.value = '';
    }
  };

  document.getElementById('start').onclick = function() {
    ws.send(JSON.stringify({ type: 'start_game' }));
  };

  document.getElementById('clear').onclick = function() {
    if (amDrawer) {
      ws.send(JSON.stringify({ type: 'clear_canvas' }));
    }
  };
})();
</script>
</body>
</html>
`
