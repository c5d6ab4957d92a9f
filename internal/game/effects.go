// internal/game/effects.go
package game

import (
	"fmt"
	"time"

	"github.com/unoarena/server/internal/models"
)

// applyCardEffect resolves the played card's side effects and moves the
// turn forward. Assumes lock held.
func (g *Game) applyCardEffect(card *models.Card, targetPlayerID string) {
	switch card.Value {
	case models.ValueSkip:
		g.advanceTurn(2)

	case models.ValueReverse:
		g.direction = -g.direction
		if len(g.players) == 2 {
			// Heads-up, reverse behaves as a skip.
			g.advanceTurn(2)
		} else {
			g.advanceTurn(1)
		}

	case models.ValueDrawTwo:
		g.resolvePenaltyCard(2)

	case models.ValueWildDrawFour:
		g.resolvePenaltyCard(4)

	case models.ValueZero:
		if g.Rules.SevenZero {
			g.rotateHands()
		}
		g.advanceTurn(1)

	case models.ValueSeven:
		if g.Rules.SevenZero {
			g.swapHands(targetPlayerID)
		}
		g.advanceTurn(1)

	default:
		g.advanceTurn(1)
	}
}

// resolvePenaltyCard applies a +2 or +4. With stacking on, the penalty
// accumulates and the responder keeps their turn to answer; otherwise the
// victim draws immediately and is skipped. Assumes lock held.
func (g *Game) resolvePenaltyCard(n int) {
	if g.Rules.Stacking {
		g.pendingDraw += n
		g.advanceTurn(1)
		return
	}
	victim := g.nextIndex(1)
	g.drawInto(victim, n)
	g.advanceTurn(2)
}

// rotateHands shifts every hand one seat along the play direction.
// Assumes lock held.
func (g *Game) rotateHands() {
	n := len(g.players)
	hands := make([][]*models.Card, n)
	for i, p := range g.players {
		hands[i] = p.Hand
	}
	for i := range g.players {
		src := ((i-g.direction)%n + n) % n
		g.players[i].Hand = hands[src]
	}
	g.message = "Hands rotated!"
	g.logAction("", "rotate_hands", map[string]any{"direction": g.direction})
}

// swapHands trades the current holder's hand with the target's. A missing
// or self target falls back to the next player. Assumes lock held.
func (g *Game) swapHands(targetPlayerID string) {
	target := g.playerIndexByID(targetPlayerID)
	if target == -1 || target == g.turnIndex {
		target = g.nextIndex(1)
	}
	holder := g.players[g.turnIndex]
	other := g.players[target]
	holder.Hand, other.Hand = other.Hand, holder.Hand
	g.message = fmt.Sprintf("%s swapped hands with %s!", holder.Name, other.Name)
	g.logAction(holder.ID, "swap_hands", map[string]any{"target": other.ID})
}

// advanceTurn hands the turn to the seat `step` positions away and re-arms
// the clock. A bot holder that cannot answer a pending draw stack takes the
// penalty immediately and play moves on. Assumes lock held.
func (g *Game) advanceTurn(step int) {
	g.turnIndex = g.nextIndex(step)
	g.hasDrawn = false
	g.turnStart = time.Now()

	holder := g.players[g.turnIndex]
	holder.HasSaidUno = false

	if g.pendingDraw > 0 && g.Rules.Stacking && !g.canAnswerStack(holder) {
		n := g.pendingDraw
		g.pendingDraw = 0
		g.drawInto(g.turnIndex, n)
		g.message = fmt.Sprintf("%s had no answer and drew %d cards", holder.Name, n)
		g.logAction(holder.ID, "draw_penalty", map[string]any{"count": n, "forced": true})
		g.advanceTurn(1)
		return
	}

	g.startTurnTimer()
	g.scheduleBotMove(false)
}

// canAnswerStack reports whether p holds a card that continues the pending
// draw stack. Assumes lock held.
func (g *Game) canAnswerStack(p *models.Player) bool {
	top := g.topDiscard()
	if top == nil {
		return false
	}
	for _, c := range p.Hand {
		if c.Value == top.Value {
			return true
		}
	}
	return false
}

// startTurnTimer arms the turn clock. Re-arming bumps turnSerial so a
// previously scheduled expiry becomes a no-op. Assumes lock held.
func (g *Game) startTurnTimer() {
	g.turnSerial++
	serial := g.turnSerial
	if g.turnTimer != nil {
		g.turnTimer.Stop()
	}
	g.turnTimer = time.AfterFunc(g.TurnDuration, func() {
		g.onTurnTimeout(serial)
	})
}

// resetTurnClock restarts the clock for the current holder without moving
// the turn, used when a jump-in reassigns it. Assumes lock held.
func (g *Game) resetTurnClock() {
	g.turnStart = time.Now()
	g.startTurnTimer()
}

func (g *Game) onTurnTimeout(serial int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != models.StatusPlaying || serial != g.turnSerial {
		return
	}

	idx := g.turnIndex
	holder := g.players[idx]
	if g.pendingDraw > 0 {
		n := g.pendingDraw
		g.pendingDraw = 0
		g.drawInto(idx, n)
		g.message = fmt.Sprintf("%s ran out of time and drew %d cards", holder.Name, n)
	} else {
		g.drawInto(idx, 1)
		g.message = fmt.Sprintf("%s ran out of time", holder.Name)
	}
	g.logAction(holder.ID, "turn_timeout", nil)
	g.advanceTurn(1)
	g.broadcast()
}
