// internal/game/bots.go
package game

import (
	"time"

	"github.com/unoarena/server/internal/bot"
	"github.com/unoarena/server/internal/models"
)

// scheduleBotMove arms the think timer when the turn holder is a bot. A
// follow-up move (after drawing) fires quickly; a fresh turn waits a
// humanized delay. Assumes lock held.
func (g *Game) scheduleBotMove(followUp bool) {
	if g.status != models.StatusPlaying {
		return
	}
	holder := g.players[g.turnIndex]
	if !holder.IsBot {
		return
	}
	if g.botTimer != nil {
		g.botTimer.Stop()
	}
	delay := g.BotFollowUp
	if !followUp {
		delay = g.BotDelayBase + time.Duration(g.rng.Int63n(int64(g.BotDelayJitter)+1))
	}
	serial := g.turnSerial
	botID := holder.ID
	g.botTimer = time.AfterFunc(delay, func() {
		g.runBotMove(serial, botID)
	})
}

// runBotMove executes one bot decision. The captured serial guards against
// the turn having moved on while the timer waited.
func (g *Game) runBotMove(serial int, botID string) {
	g.mu.Lock()
	if g.status != models.StatusPlaying || serial != g.turnSerial ||
		g.players[g.turnIndex].ID != botID {
		g.mu.Unlock()
		return
	}
	holder := g.players[g.turnIndex]
	move := bot.Decide(holder.Hand, g.topDiscard(), g.activeColor, g.players, botID, g.pendingDraw)
	hasDrawn := g.hasDrawn
	// Bots remember to declare UNO most of the time, not always.
	declareUno := move.Action == bot.ActionPlay && len(holder.Hand) == 2 &&
		g.rng.Float64() < botUnoRecallChance
	g.mu.Unlock()

	switch move.Action {
	case bot.ActionPlay:
		g.PlayCard(botID, move.CardID, move.ChosenColor, move.TargetPlayerID)
		if declareUno {
			g.SayUno(botID)
		}
	case bot.ActionDraw:
		if hasDrawn {
			g.PassTurn(botID)
		} else {
			g.DrawCard(botID)
		}
	}
}
