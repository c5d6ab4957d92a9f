// internal/game/snapshot.go
package game

import "github.com/unoarena/server/internal/models"

// PlayerSnapshot is the immutable per-seat view included in a Snapshot.
type PlayerSnapshot struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Hand       []models.Card  `json:"hand"`
	IsBot      bool           `json:"isBot"`
	AvatarID   int            `json:"avatarId"`
	HasSaidUno bool           `json:"hasSaidUno"`
}

// Snapshot is a deep copy of the match state at one instant. Subscribers
// receive it by value and may retain it indefinitely.
type Snapshot struct {
	RoomID           string            `json:"roomId"`
	Players          []PlayerSnapshot  `json:"players"`
	DeckCount        int               `json:"deckCount"`
	DiscardPile      []models.Card     `json:"discardPile"`
	TurnIndex        int               `json:"currentPlayerIndex"`
	Direction        int               `json:"direction"`
	Status           models.GameStatus `json:"status"`
	WinnerID         string            `json:"winnerId,omitempty"`
	ActiveColor      models.Color      `json:"activeColor"`
	Message          string            `json:"message"`
	HasDrawnThisTurn bool              `json:"hasDrawnThisTurn"`
	TurnStartTime    int64             `json:"turnStartTime"`
	Mode             models.GameMode   `json:"mode"`
	Rules            models.GameRules  `json:"rules"`
	PendingDrawValue int               `json:"pendingDrawValue"`
}

// Subscribe registers fn to receive every subsequent state snapshot and
// immediately delivers the current one. The returned closure unsubscribes.
func (g *Game) Subscribe(fn func(Snapshot)) func() {
	g.mu.Lock()
	id := g.nextSubID
	g.nextSubID++
	g.subscribers[id] = fn
	snap := g.snapshot()
	g.mu.Unlock()

	fn(snap)

	return func() {
		g.mu.Lock()
		delete(g.subscribers, id)
		g.mu.Unlock()
	}
}

// SnapshotNow returns the current state as a deep copy.
func (g *Game) SnapshotNow() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

// snapshot builds a deep copy of the state. Assumes lock held.
func (g *Game) snapshot() Snapshot {
	players := make([]PlayerSnapshot, len(g.players))
	for i, p := range g.players {
		hand := make([]models.Card, len(p.Hand))
		for j, c := range p.Hand {
			hand[j] = *c
		}
		players[i] = PlayerSnapshot{
			ID:         p.ID,
			Name:       p.Name,
			Hand:       hand,
			IsBot:      p.IsBot,
			AvatarID:   p.AvatarID,
			HasSaidUno: p.HasSaidUno,
		}
	}
	discard := make([]models.Card, len(g.discardPile))
	for i, c := range g.discardPile {
		discard[i] = *c
	}
	return Snapshot{
		RoomID:           g.RoomID,
		Players:          players,
		DeckCount:        len(g.drawPile),
		DiscardPile:      discard,
		TurnIndex:        g.turnIndex,
		Direction:        g.direction,
		Status:           g.status,
		WinnerID:         g.winnerID,
		ActiveColor:      g.activeColor,
		Message:          g.message,
		HasDrawnThisTurn: g.hasDrawn,
		TurnStartTime:    g.turnStart.UnixMilli(),
		Mode:             g.Mode,
		Rules:            g.Rules,
		PendingDrawValue: g.pendingDraw,
	}
}

// broadcast delivers a fresh snapshot to every subscriber synchronously.
// Assumes lock held; subscriber callbacks must not call back into the game.
func (g *Game) broadcast() {
	if len(g.subscribers) == 0 {
		return
	}
	snap := g.snapshot()
	for _, fn := range g.subscribers {
		fn(snap)
	}
}
