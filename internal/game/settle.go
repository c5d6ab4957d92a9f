// internal/game/settle.go
package game

import (
	"context"
	"fmt"
	"time"

	"github.com/unoarena/server/internal/models"
)

// endGame closes the match and settles persistent stats. Assumes lock held.
func (g *Game) endGame(winner *models.Player) {
	g.status = models.StatusGameOver
	g.winnerID = winner.ID
	g.endedAt = time.Now()
	g.message = fmt.Sprintf("%s wins!", winner.Name)

	if g.turnTimer != nil {
		g.turnTimer.Stop()
	}
	if g.botTimer != nil {
		g.botTimer.Stop()
	}
	for id, t := range g.unoTimers {
		t.Stop()
		delete(g.unoTimers, id)
	}
	g.turnSerial++

	g.log.WithField("winner", winner.Name).Info("game over")
	g.logAction(winner.ID, "game_over", map[string]any{"winner": winner.ID})
	g.broadcast()

	if g.users == nil {
		return
	}
	for _, p := range g.players {
		if p.IsBot {
			continue
		}
		go g.settlePlayer(p.ID, p.ID == winner.ID)
	}
}

// settlePlayer applies the end-of-match reward or penalty to one account.
// Failures are logged and not retried.
func (g *Game) settlePlayer(playerID string, won bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := g.users.GetUserByID(ctx, playerID)
	if err != nil {
		g.log.WithError(err).WithField("player", playerID).Warn("settlement lookup failed")
		return
	}
	if user == nil {
		// Guests have no persistent record.
		return
	}

	upd := models.StatsUpdate{MMRDelta: loserMMRDelta, CoinsDelta: loserCoinReward}
	if won {
		upd = models.StatsUpdate{MMRDelta: winnerMMRDelta, Won: true, CoinsDelta: winnerCoinReward}
	}
	if err := g.users.UpdateUserStats(ctx, playerID, upd); err != nil {
		g.log.WithError(err).WithField("player", playerID).Warn("settlement update failed")
	}
}

// EndGame force-finishes the match, declaring the given player the winner.
// Used when a room is torn down while a match is still live.
func (g *Game) EndGame(winnerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status != models.StatusPlaying {
		return
	}
	idx := g.playerIndexByID(winnerID)
	if idx == -1 {
		return
	}
	g.endGame(g.players[idx])
}
