// internal/game/actions.go
package game

import (
	"fmt"
	"time"

	"github.com/unoarena/server/internal/models"
)

// DrawCard draws for the turn holder. With a pending draw stack the full
// penalty is taken and the turn passes; otherwise a single card is drawn,
// at most once per turn.
func (g *Game) DrawCard(playerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != models.StatusPlaying {
		return
	}
	idx := g.playerIndexByID(playerID)
	if idx == -1 || idx != g.turnIndex {
		return
	}

	if g.pendingDraw > 0 {
		n := g.pendingDraw
		g.pendingDraw = 0
		g.drawInto(idx, n)
		g.message = fmt.Sprintf("%s drew %d cards", g.players[idx].Name, n)
		g.logAction(playerID, "draw_penalty", map[string]any{"count": n})
		g.advanceTurn(1)
		g.broadcast()
		return
	}

	if g.hasDrawn {
		return
	}
	before := len(g.players[idx].Hand)
	g.drawInto(idx, 1)
	g.message = fmt.Sprintf("%s drew a card", g.players[idx].Name)
	g.logAction(playerID, "draw_card", nil)

	hand := g.players[idx].Hand
	if len(hand) > before && g.isPlayable(hand[len(hand)-1], g.topDiscard()) {
		// Playable draw: the holder keeps the turn to play or pass it,
		// with a fresh clock to decide.
		g.hasDrawn = true
		g.resetTurnClock()
		g.broadcast()
		g.scheduleBotMove(true)
		return
	}
	g.advanceTurn(1)
	g.broadcast()
}

// PassTurn ends the holder's turn. Only legal after drawing this turn.
func (g *Game) PassTurn(playerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != models.StatusPlaying {
		return
	}
	idx := g.playerIndexByID(playerID)
	if idx == -1 || idx != g.turnIndex || !g.hasDrawn {
		return
	}
	g.message = fmt.Sprintf("%s passed", g.players[idx].Name)
	g.logAction(playerID, "pass_turn", nil)
	g.advanceTurn(1)
	g.broadcast()
}

// PlayCard plays cardID from playerID's hand. Out-of-turn plays are allowed
// only as jump-ins: an exact color+value duplicate of the top discard, with
// the jump-in rule active and no draw stack pending.
func (g *Game) PlayCard(playerID, cardID string, chosenColor models.Color, targetPlayerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != models.StatusPlaying {
		return
	}
	idx := g.playerIndexByID(playerID)
	if idx == -1 {
		return
	}

	player := g.players[idx]
	cardPos := -1
	for i, c := range player.Hand {
		if c.ID == cardID {
			cardPos = i
			break
		}
	}
	if cardPos == -1 {
		return
	}
	card := player.Hand[cardPos]
	top := g.topDiscard()

	if idx != g.turnIndex {
		// Jump-in: an exact printed color+value duplicate steals the turn.
		if !g.Rules.JumpIn || g.pendingDraw > 0 ||
			card.Color != top.Color || card.Value != top.Value {
			return
		}
		g.turnIndex = idx
		g.hasDrawn = false
		g.resetTurnClock()
		g.message = fmt.Sprintf("%s jumped in!", player.Name)
		g.logAction(playerID, "jump_in", map[string]any{"card": string(card.Value)})
	} else if !g.isPlayable(card, top) {
		return
	}

	player.Hand = append(player.Hand[:cardPos], player.Hand[cardPos+1:]...)

	if card.IsWild() {
		card.ChosenColor = chosenColor
		if !isStandardColor(chosenColor) {
			card.ChosenColor = models.ColorRed
		}
		g.activeColor = card.ChosenColor
	} else {
		g.activeColor = card.Color
	}
	card.Rotation = g.rng.Intn(31) - 15
	g.discardPile = append(g.discardPile, card)
	g.message = fmt.Sprintf("%s played %s %s", player.Name, g.activeColor, card.Value)
	g.logAction(playerID, "play_card", map[string]any{
		"card":  string(card.Value),
		"color": string(g.activeColor),
	})

	if len(player.Hand) == 1 && !player.HasSaidUno {
		g.armUnoTimer(player.ID)
	}

	g.applyCardEffect(card, targetPlayerID)

	// Effects resolve before the win check: a seven-zero swap or rotation can
	// hand the empty hand to someone else, and they win instead of the actor.
	if winner := g.emptyHandWinner(); winner != nil {
		g.endGame(winner)
		return
	}
	g.broadcast()
}

// SayUno flags the player as safe from the UNO penalty. Accepted at any
// hand size, so a player can declare first and then play down to one card.
// The flag clears when the turn next reaches them.
func (g *Game) SayUno(playerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != models.StatusPlaying {
		return
	}
	idx := g.playerIndexByID(playerID)
	if idx == -1 || g.players[idx].HasSaidUno {
		return
	}
	g.players[idx].HasSaidUno = true
	if t, ok := g.unoTimers[playerID]; ok {
		t.Stop()
		delete(g.unoTimers, playerID)
	}
	g.message = fmt.Sprintf("%s shouts UNO!", g.players[idx].Name)
	g.logAction(playerID, "say_uno", nil)
	g.broadcast()
}

// emptyHandWinner returns the first player with no cards left, regardless
// of whose action emptied the hand. Assumes lock held.
func (g *Game) emptyHandWinner() *models.Player {
	for _, p := range g.players {
		if len(p.Hand) == 0 {
			return p
		}
	}
	return nil
}

// isPlayable reports whether card may be played on top right now.
// Assumes lock held.
func (g *Game) isPlayable(card, top *models.Card) bool {
	if g.pendingDraw > 0 {
		// Only stacking the same penalty card answers a pending stack.
		return card.Value == top.Value &&
			(card.Value == models.ValueDrawTwo || card.Value == models.ValueWildDrawFour)
	}
	if card.IsWild() {
		return true
	}
	return card.Color == g.activeColor || card.Value == top.Value
}

func isStandardColor(c models.Color) bool {
	for _, sc := range models.StandardColors {
		if c == sc {
			return true
		}
	}
	return false
}

// armUnoTimer starts the grace window for a one-card hand. If it expires
// before the player declares, two penalty cards are dealt. Assumes lock held.
func (g *Game) armUnoTimer(playerID string) {
	if t, ok := g.unoTimers[playerID]; ok {
		t.Stop()
	}
	g.unoTimers[playerID] = time.AfterFunc(g.UnoGrace, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.unoTimers, playerID)

		if g.status != models.StatusPlaying {
			return
		}
		idx := g.playerIndexByID(playerID)
		if idx == -1 || len(g.players[idx].Hand) != 1 || g.players[idx].HasSaidUno {
			return
		}
		g.drawInto(idx, unoPenaltyCardCount)
		g.message = fmt.Sprintf("%s forgot to say UNO! +%d cards", g.players[idx].Name, unoPenaltyCardCount)
		g.logAction(playerID, "uno_penalty", map[string]any{"count": unoPenaltyCardCount})
		g.broadcast()
	})
}
