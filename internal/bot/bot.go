// internal/bot/bot.go
//
// Pure decision logic for simulated players. Decide has no side effects and
// no hidden state: the engine calls it under its own lock and applies the
// returned move through the normal command path.
package bot

import "github.com/unoarena/server/internal/models"

// Action is the kind of move a bot wants to make.
type Action string

const (
	ActionPlay Action = "PLAY"
	ActionDraw Action = "DRAW"
)

// Move is a bot's decision for a single turn.
type Move struct {
	Action         Action
	CardID         string
	ChosenColor    models.Color // set only for wild plays
	TargetPlayerID string       // set only for seven-swap plays
}

// Decide maps a bot's view of the table to a move.
//
// Priority: answer an active stack war with a matching +2/+4 or surrender to
// the penalty; otherwise play disruptive specials, then color matches, then
// value matches, then whatever remains (wilds); otherwise draw.
func Decide(hand []*models.Card, top *models.Card, activeColor models.Color, players []*models.Player, selfID string, pendingDraw int) Move {
	if pendingDraw > 0 {
		return decideStackDefense(hand, top)
	}

	var playable []*models.Card
	for _, c := range hand {
		if c.IsWild() || c.Color == activeColor || c.Value == top.Value {
			playable = append(playable, c)
		}
	}
	if len(playable) == 0 {
		return Move{Action: ActionDraw}
	}

	best := pickDisruptive(playable)
	if best == nil {
		best = pickNonWild(playable, func(c *models.Card) bool { return c.Color == activeColor })
	}
	if best == nil {
		best = pickNonWild(playable, func(c *models.Card) bool { return c.Value == top.Value })
	}
	if best == nil {
		best = playable[0]
	}

	move := Move{Action: ActionPlay, CardID: best.ID}
	if best.IsWild() {
		move.ChosenColor = majorityColor(hand)
	}
	if best.Value == models.ValueSeven {
		move.TargetPlayerID = smallestHandOpponent(players, selfID)
	}
	return move
}

// decideStackDefense answers an unresolved +2/+4 chain: play a matching
// stacking card if held, else draw (absorb the full penalty).
func decideStackDefense(hand []*models.Card, top *models.Card) Move {
	var wanted models.Value
	switch top.Value {
	case models.ValueDrawTwo:
		wanted = models.ValueDrawTwo
	case models.ValueWildDrawFour:
		wanted = models.ValueWildDrawFour
	default:
		return Move{Action: ActionDraw}
	}

	for _, c := range hand {
		if c.Value == wanted {
			move := Move{Action: ActionPlay, CardID: c.ID}
			if c.IsWild() {
				move.ChosenColor = models.ColorRed
			}
			return move
		}
	}
	return Move{Action: ActionDraw}
}

// pickDisruptive returns the first candidate whose value disrupts the
// opposition: +2, SKIP, REVERSE, or the 7/0 house-rule cards.
func pickDisruptive(candidates []*models.Card) *models.Card {
	for _, c := range candidates {
		switch c.Value {
		case models.ValueDrawTwo, models.ValueSkip, models.ValueReverse, models.ValueSeven, models.ValueZero:
			return c
		}
	}
	return nil
}

func pickNonWild(candidates []*models.Card, match func(*models.Card) bool) *models.Card {
	for _, c := range candidates {
		if !c.IsWild() && match(c) {
			return c
		}
	}
	return nil
}

// majorityColor returns the color the hand holds most of among non-wild
// cards. Ties break toward the earlier color in the standard enumeration;
// an all-wild hand defaults to RED.
func majorityColor(hand []*models.Card) models.Color {
	counts := make(map[models.Color]int, 4)
	for _, c := range hand {
		if !c.IsWild() {
			counts[c.Color]++
		}
	}
	best := models.ColorRed
	bestCount := counts[models.ColorRed]
	for _, color := range models.StandardColors {
		if counts[color] > bestCount {
			best = color
			bestCount = counts[color]
		}
	}
	return best
}

// smallestHandOpponent picks the opponent closest to winning as the
// seven-swap target. Ties break toward the earlier seat.
func smallestHandOpponent(players []*models.Player, selfID string) string {
	targetID := ""
	minCards := -1
	for _, p := range players {
		if p.ID == selfID {
			continue
		}
		if minCards == -1 || len(p.Hand) < minCards {
			minCards = len(p.Hand)
			targetID = p.ID
		}
	}
	return targetID
}
