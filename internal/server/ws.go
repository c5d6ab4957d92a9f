package server

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/unoarena/server/internal/game"
	"github.com/unoarena/server/internal/models"
)

const (
	sessionSendBuffer = 32
	emoteCooldown     = 2 * time.Second
)

var botNames = []string{"Bot Alpha", "Bot Beta", "Bot Gamma"}

var allowedEmotes = map[string]bool{
	"laugh": true, "plus4": true, "clown": true,
	"cold": true, "hurry": true, "cool": true,
}

// Command is a client-to-server websocket message.
type Command struct {
	Type           string `json:"type"`
	RoomID         string `json:"roomId,omitempty"`
	Username       string `json:"username,omitempty"`
	PlayerID       string `json:"playerId,omitempty"`
	AvatarID       int    `json:"avatarId,omitempty"`
	Mode           string `json:"mode,omitempty"`
	CardID         string `json:"cardId,omitempty"`
	Color          string `json:"color,omitempty"`
	TargetPlayerID string `json:"targetPlayerId,omitempty"`
	EmoteID        string `json:"emoteId,omitempty"`
}

// Event is a server-to-client websocket message.
type Event struct {
	Type     string         `json:"type"`
	State    *game.Snapshot `json:"state,omitempty"`
	RoomID   string         `json:"roomId,omitempty"`
	PlayerID string         `json:"playerId,omitempty"`
	EmoteID  string         `json:"emoteId,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// session is one websocket connection. The read loop owns all fields; the
// out channel is the only cross-goroutine touchpoint.
type session struct {
	conn        *websocket.Conn
	out         chan Event
	roomID      string
	playerID    string
	unsubscribe func()
	lastEmote   time.Time
}

// send queues ev without blocking. A peer too slow to drain its buffer
// loses intermediate states; the next snapshot supersedes them anyway.
func (sess *session) send(ev Event) {
	select {
	case sess.out <- ev:
	default:
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.log.WithError(err).Warn("websocket accept failed")
		return
	}

	sess := &session{
		conn: conn,
		out:  make(chan Event, sessionSendBuffer),
	}
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		for {
			select {
			case ev := <-sess.out:
				writeCtx, writeCancel := context.WithTimeout(ctx, 10*time.Second)
				err := wsjson.Write(writeCtx, conn, ev)
				writeCancel()
				if err != nil {
					cancel()
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	defer func() {
		if sess.unsubscribe != nil {
			sess.unsubscribe()
		}
		s.unregisterSession(sess)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var cmd Command
		if err := wsjson.Read(ctx, conn, &cmd); err != nil {
			return
		}
		s.dispatch(sess, cmd)
	}
}

func (s *Server) dispatch(sess *session, cmd Command) {
	switch cmd.Type {
	case "join-room":
		s.handleJoinRoom(sess, cmd)
	case "start-bot-game":
		s.handleStartBotGame(sess, cmd)
	case "start-game":
		if g := s.sessionGame(sess); g != nil {
			g.StartGame()
		}
	case "draw-card":
		if g := s.sessionGame(sess); g != nil {
			g.DrawCard(sess.playerID)
		}
	case "play-card":
		if g := s.sessionGame(sess); g != nil {
			g.PlayCard(sess.playerID, cmd.CardID, models.Color(cmd.Color), cmd.TargetPlayerID)
		}
	case "pass-turn":
		if g := s.sessionGame(sess); g != nil {
			g.PassTurn(sess.playerID)
		}
	case "declare-uno":
		if g := s.sessionGame(sess); g != nil {
			g.SayUno(sess.playerID)
		}
	case "add-bot":
		s.handleAddBot(sess)
	case "send-emote":
		s.handleEmote(sess, cmd)
	default:
		sess.send(Event{Type: "error", Error: "unknown command: " + cmd.Type})
	}
}

func (s *Server) sessionGame(sess *session) *game.Game {
	if sess.roomID == "" {
		return nil
	}
	return s.rooms.GetRoom(sess.roomID)
}

// handleJoinRoom seats the client, creating the room on first arrival.
func (s *Server) handleJoinRoom(sess *session, cmd Command) {
	if sess.roomID != "" {
		sess.send(Event{Type: "error", Error: "already in a room"})
		return
	}
	if cmd.Username == "" {
		sess.send(Event{Type: "error", Error: "username required"})
		return
	}

	g, player := s.rooms.JoinRoom(cmd.RoomID, cmd.Username, cmd.PlayerID, cmd.AvatarID)
	if player == nil && s.rooms.GetRoom(cmd.RoomID) == nil {
		// First arrival opens the room and becomes its host.
		g, player = s.rooms.CreateRoom(cmd.Username, cmd.PlayerID, cmd.RoomID, cmd.AvatarID, parseMode(cmd.Mode))
	}
	if player == nil {
		sess.send(Event{Type: "error", Error: "could not join room"})
		return
	}
	s.bindSession(sess, g, player.ID)
}

// handleStartBotGame opens a private room, fills it with bots, and starts
// the match immediately.
func (s *Server) handleStartBotGame(sess *session, cmd Command) {
	if sess.roomID != "" {
		sess.send(Event{Type: "error", Error: "already in a room"})
		return
	}
	if cmd.Username == "" {
		sess.send(Event{Type: "error", Error: "username required"})
		return
	}

	code := fmt.Sprintf("bot_match_%s_%d", cmd.Username, time.Now().UnixMilli())
	g, player := s.rooms.CreateRoom(cmd.Username, cmd.PlayerID, code, cmd.AvatarID, parseMode(cmd.Mode))
	if player == nil {
		sess.send(Event{Type: "error", Error: "could not create room"})
		return
	}
	for _, name := range botNames {
		g.AddPlayer(name, true, "", 1+randAvatar())
	}
	s.bindSession(sess, g, player.ID)
	g.StartGame()
}

func (s *Server) handleAddBot(sess *session) {
	g := s.sessionGame(sess)
	if g == nil {
		sess.send(Event{Type: "error", Error: "not in a room"})
		return
	}
	for _, name := range botNames {
		if g.AddPlayer(name, true, "", 1+randAvatar()) != nil {
			return
		}
	}
	sess.send(Event{Type: "error", Error: "could not add bot"})
}

func (s *Server) handleEmote(sess *session, cmd Command) {
	if sess.roomID == "" {
		return
	}
	if !allowedEmotes[cmd.EmoteID] {
		return
	}
	if time.Since(sess.lastEmote) < emoteCooldown {
		return
	}
	sess.lastEmote = time.Now()
	s.fanout(sess.roomID, Event{
		Type:     "emote",
		RoomID:   sess.roomID,
		PlayerID: sess.playerID,
		EmoteID:  cmd.EmoteID,
	})
}

// bindSession ties the seated player to this connection and starts state
// delivery. The subscription callback runs inside the engine's broadcast,
// so it only queues.
func (s *Server) bindSession(sess *session, g *game.Game, playerID string) {
	sess.roomID = g.RoomID
	sess.playerID = playerID
	s.registerSession(sess)
	sess.send(Event{Type: "joined", RoomID: g.RoomID, PlayerID: playerID})
	sess.unsubscribe = g.Subscribe(func(snap game.Snapshot) {
		sess.send(Event{Type: "game-state", State: &snap})
	})
}

// randAvatar picks a random avatar offset; callers add 1 for the 1..12 range.
func randAvatar() int {
	return rand.Intn(12)
}

func parseMode(mode string) models.GameMode {
	switch models.GameMode(mode) {
	case models.ModeChaos:
		return models.ModeChaos
	case models.ModeNoMercy:
		return models.ModeNoMercy
	default:
		return models.ModeStandard
	}
}
