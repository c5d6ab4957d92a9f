// internal/game/actions_test.go
package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unoarena/server/internal/models"
)

func TestStackingAccumulatesPendingDraw(t *testing.T) {
	g := newTestGame(t, models.ModeChaos, "alice", "bob", "carol")
	setTurn(g, 0)

	d2a := testCard(models.ColorRed, models.ValueDrawTwo)
	d2b := testCard(models.ColorBlue, models.ValueDrawTwo)
	setHand(g, 0, d2a, testCard(models.ColorBlue, models.ValueOne))
	setHand(g, 1, d2b, testCard(models.ColorGreen, models.ValueOne))
	setHand(g, 2, testCard(models.ColorYellow, models.ValueDrawTwo), testCard(models.ColorYellow, models.ValueOne))
	setTop(g, testCard(models.ColorRed, models.ValueNine))

	g.PlayCard(playerID(g, 0), d2a.ID, "", "")
	snap := g.SnapshotNow()
	assert.Equal(t, 2, snap.PendingDrawValue)
	assert.Equal(t, 1, snap.TurnIndex, "responder keeps the turn, no skip")

	g.PlayCard(playerID(g, 1), d2b.ID, "", "")
	snap = g.SnapshotNow()
	assert.Equal(t, 4, snap.PendingDrawValue)
	assert.Equal(t, 2, snap.TurnIndex)
}

func TestStackAutoResolvesWhenHolderCannotAnswer(t *testing.T) {
	g := newTestGame(t, models.ModeChaos, "alice", "bob", "carol")
	setTurn(g, 0)

	d2 := testCard(models.ColorRed, models.ValueDrawTwo)
	setHand(g, 0, d2, testCard(models.ColorBlue, models.ValueOne))
	setHand(g, 1, testCard(models.ColorGreen, models.ValueOne), testCard(models.ColorGreen, models.ValueTwo))
	setTop(g, testCard(models.ColorRed, models.ValueNine))

	g.PlayCard(playerID(g, 0), d2.ID, "", "")

	snap := g.SnapshotNow()
	assert.Equal(t, 0, snap.PendingDrawValue)
	assert.Equal(t, 4, handSize(g, 1), "no answer in hand takes the penalty at once")
	assert.Equal(t, 2, snap.TurnIndex, "play moves past the penalized seat")
}

func TestStackingRoundTripHeadsUp(t *testing.T) {
	g := newTestGame(t, models.ModeChaos, "alice", "bob")
	setTurn(g, 0)

	d2a := testCard(models.ColorRed, models.ValueDrawTwo)
	d2b := testCard(models.ColorBlue, models.ValueDrawTwo)
	setHand(g, 0, d2a, testCard(models.ColorBlue, models.ValueOne))
	setHand(g, 1, d2b, testCard(models.ColorGreen, models.ValueOne))
	setTop(g, testCard(models.ColorRed, models.ValueNine))

	g.PlayCard(playerID(g, 0), d2a.ID, "", "")
	require.Equal(t, 1, turnIndex(g))

	// Bob answers: the stack comes back to alice, who has no counter left
	// and eats all four cards at once.
	g.PlayCard(playerID(g, 1), d2b.ID, "", "")

	snap := g.SnapshotNow()
	assert.Equal(t, 0, snap.PendingDrawValue)
	assert.Equal(t, 5, handSize(g, 0), "one card left plus four penalty cards")
	assert.Equal(t, 1, snap.TurnIndex)
}

func TestDrawAcceptsFullStackPenalty(t *testing.T) {
	g := newTestGame(t, models.ModeChaos, "alice", "bob", "carol")
	setTurn(g, 0)

	d2a := testCard(models.ColorRed, models.ValueDrawTwo)
	d2b := testCard(models.ColorBlue, models.ValueDrawTwo)
	d2c := testCard(models.ColorGreen, models.ValueDrawTwo)
	setHand(g, 0, d2a, testCard(models.ColorBlue, models.ValueOne))
	setHand(g, 1, d2b, testCard(models.ColorGreen, models.ValueOne))
	setHand(g, 2, d2c, testCard(models.ColorYellow, models.ValueOne))
	setTop(g, testCard(models.ColorRed, models.ValueNine))

	g.PlayCard(playerID(g, 0), d2a.ID, "", "")
	g.PlayCard(playerID(g, 1), d2b.ID, "", "")
	require.Equal(t, 4, g.SnapshotNow().PendingDrawValue)
	require.Equal(t, 2, turnIndex(g))

	// Carol holds a +2 but surrenders: drawing takes the whole stack.
	g.DrawCard(playerID(g, 2))
	snap := g.SnapshotNow()
	assert.Equal(t, 0, snap.PendingDrawValue)
	assert.Equal(t, 6, handSize(g, 2))
	assert.Equal(t, 0, snap.TurnIndex)
}

func TestPlusFourDoesNotAnswerPlusTwo(t *testing.T) {
	g := newTestGame(t, models.ModeChaos, "alice", "bob", "carol")
	setTurn(g, 0)

	d2 := testCard(models.ColorRed, models.ValueDrawTwo)
	w4 := testCard(models.ColorWild, models.ValueWildDrawFour)
	setHand(g, 0, d2, testCard(models.ColorBlue, models.ValueOne))
	setHand(g, 1, w4, d2Copy())
	setTop(g, testCard(models.ColorRed, models.ValueNine))

	g.PlayCard(playerID(g, 0), d2.ID, "", "")
	require.Equal(t, 1, turnIndex(g))

	g.PlayCard(playerID(g, 1), w4.ID, models.ColorBlue, "")
	snap := g.SnapshotNow()
	assert.Equal(t, 2, snap.PendingDrawValue, "mismatched penalty card is rejected")
	assert.Equal(t, 1, snap.TurnIndex)
}

func d2Copy() *models.Card {
	return testCard(models.ColorGreen, models.ValueDrawTwo)
}

func TestJumpInStealsTurn(t *testing.T) {
	g := newTestGame(t, models.ModeChaos, "alice", "bob", "carol")
	setTurn(g, 0)

	top := testCard(models.ColorRed, models.ValueFive)
	setTop(g, top)
	dup := testCard(models.ColorRed, models.ValueFive)
	setHand(g, 2, dup, testCard(models.ColorBlue, models.ValueOne))

	g.PlayCard(playerID(g, 2), dup.ID, "", "")

	snap := g.SnapshotNow()
	assert.Equal(t, dup.ID, snap.DiscardPile[len(snap.DiscardPile)-1].ID)
	assert.Equal(t, 0, snap.TurnIndex, "turn continues from the jumper")
	assert.Equal(t, 1, handSize(g, 2))
}

func TestJumpInRequiresExactMatch(t *testing.T) {
	g := newTestGame(t, models.ModeChaos, "alice", "bob", "carol")
	setTurn(g, 0)

	setTop(g, testCard(models.ColorRed, models.ValueFive))
	near := testCard(models.ColorRed, models.ValueSix)
	setHand(g, 2, near, testCard(models.ColorBlue, models.ValueOne))

	g.PlayCard(playerID(g, 2), near.ID, "", "")
	assert.Equal(t, 0, turnIndex(g))
	assert.Equal(t, 2, handSize(g, 2))
}

func TestJumpInDisabledWithoutRule(t *testing.T) {
	g := newTestGame(t, models.ModeStandard, "alice", "bob", "carol")
	setTurn(g, 0)

	setTop(g, testCard(models.ColorRed, models.ValueFive))
	dup := testCard(models.ColorRed, models.ValueFive)
	setHand(g, 2, dup, testCard(models.ColorBlue, models.ValueOne))

	g.PlayCard(playerID(g, 2), dup.ID, "", "")
	assert.Equal(t, 0, turnIndex(g))
	assert.Equal(t, 2, handSize(g, 2))
}

func TestJumpInMatchesWildOnWild(t *testing.T) {
	g := newTestGame(t, models.ModeChaos, "alice", "bob", "carol")
	setTurn(g, 0)

	top := testCard(models.ColorWild, models.ValueWild)
	top.ChosenColor = models.ColorBlue
	setTop(g, top)
	dup := testCard(models.ColorWild, models.ValueWild)
	setHand(g, 2, dup, testCard(models.ColorRed, models.ValueOne))

	// Printed color and value both read WILD, which is an exact match.
	g.PlayCard(playerID(g, 2), dup.ID, models.ColorGreen, "")

	snap := g.SnapshotNow()
	assert.Equal(t, dup.ID, snap.DiscardPile[len(snap.DiscardPile)-1].ID)
	assert.Equal(t, models.ColorGreen, snap.ActiveColor)
	assert.Equal(t, 1, handSize(g, 2))
}

func TestZeroRotatesHands(t *testing.T) {
	g := newTestGame(t, models.ModeChaos, "alice", "bob", "carol")
	setTurn(g, 0)

	zero := testCard(models.ColorRed, models.ValueZero)
	markerB := testCard(models.ColorGreen, models.ValueOne)
	markerC := testCard(models.ColorYellow, models.ValueTwo)
	keep := testCard(models.ColorBlue, models.ValueOne)
	setHand(g, 0, zero, keep)
	setHand(g, 1, markerB)
	setHand(g, 2, markerC)
	setTop(g, testCard(models.ColorRed, models.ValueNine))

	g.PlayCard(playerID(g, 0), zero.ID, "", "")

	// Direction 1: each hand moves one seat forward, the last wraps to the
	// first.
	g.mu.Lock()
	handA := g.players[0].Hand
	handB := g.players[1].Hand
	handC := g.players[2].Hand
	g.mu.Unlock()
	require.Len(t, handA, 1)
	assert.Equal(t, markerC.ID, handA[0].ID)
	require.Len(t, handB, 1)
	assert.Equal(t, keep.ID, handB[0].ID)
	require.Len(t, handC, 1)
	assert.Equal(t, markerB.ID, handC[0].ID)
	assert.Equal(t, 1, turnIndex(g))
}

func TestSevenSwapsWithTarget(t *testing.T) {
	g := newTestGame(t, models.ModeChaos, "alice", "bob", "carol")
	setTurn(g, 0)

	seven := testCard(models.ColorRed, models.ValueSeven)
	keep := testCard(models.ColorBlue, models.ValueOne)
	marker := testCard(models.ColorGreen, models.ValueTwo)
	setHand(g, 0, seven, keep)
	setHand(g, 2, marker)
	setTop(g, testCard(models.ColorRed, models.ValueNine))

	g.PlayCard(playerID(g, 0), seven.ID, "", playerID(g, 2))

	g.mu.Lock()
	handA := g.players[0].Hand
	handC := g.players[2].Hand
	g.mu.Unlock()
	require.Len(t, handA, 1)
	assert.Equal(t, marker.ID, handA[0].ID)
	require.Len(t, handC, 1)
	assert.Equal(t, keep.ID, handC[0].ID)
}

func TestSevenMissingTargetFallsBackToNext(t *testing.T) {
	g := newTestGame(t, models.ModeChaos, "alice", "bob", "carol")
	setTurn(g, 0)

	seven := testCard(models.ColorRed, models.ValueSeven)
	keep := testCard(models.ColorBlue, models.ValueOne)
	marker := testCard(models.ColorGreen, models.ValueTwo)
	setHand(g, 0, seven, keep)
	setHand(g, 1, marker)
	setTop(g, testCard(models.ColorRed, models.ValueNine))

	g.PlayCard(playerID(g, 0), seven.ID, "", "nobody")

	g.mu.Lock()
	handA := g.players[0].Hand
	g.mu.Unlock()
	require.Len(t, handA, 1)
	assert.Equal(t, marker.ID, handA[0].ID)
}

func TestSevenAsLastCardWinsForSwapTarget(t *testing.T) {
	g := newTestGame(t, models.ModeChaos, "alice", "bob")
	setTurn(g, 0)

	seven := testCard(models.ColorRed, models.ValueSeven)
	setHand(g, 0, seven)
	setTop(g, testCard(models.ColorRed, models.ValueNine))

	// The swap resolves first: alice's emptied hand lands on bob, and the
	// win goes to whoever holds zero cards after the effect.
	g.PlayCard(playerID(g, 0), seven.ID, "", playerID(g, 1))

	snap := g.SnapshotNow()
	assert.Equal(t, models.StatusGameOver, snap.Status)
	assert.Equal(t, playerID(g, 1), snap.WinnerID)
	assert.NotZero(t, handSize(g, 0), "alice inherited bob's cards")
}

func TestZeroAsLastCardWinsForRotationTarget(t *testing.T) {
	g := newTestGame(t, models.ModeChaos, "alice", "bob", "carol")
	setTurn(g, 0)

	zero := testCard(models.ColorRed, models.ValueZero)
	setHand(g, 0, zero)
	setHand(g, 1, testCard(models.ColorGreen, models.ValueOne))
	setHand(g, 2, testCard(models.ColorYellow, models.ValueTwo))
	setTop(g, testCard(models.ColorRed, models.ValueNine))

	g.PlayCard(playerID(g, 0), zero.ID, "", "")

	snap := g.SnapshotNow()
	assert.Equal(t, models.StatusGameOver, snap.Status)
	assert.Equal(t, playerID(g, 1), snap.WinnerID, "the empty hand rotated one seat forward")
}

func TestWinningDrawTwoStillPenalizesVictim(t *testing.T) {
	g := newTestGame(t, models.ModeStandard, "alice", "bob")
	setTurn(g, 0)

	d2 := testCard(models.ColorRed, models.ValueDrawTwo)
	setHand(g, 0, d2)
	before := handSize(g, 1)
	setTop(g, testCard(models.ColorRed, models.ValueNine))

	g.PlayCard(playerID(g, 0), d2.ID, "", "")

	snap := g.SnapshotNow()
	assert.Equal(t, models.StatusGameOver, snap.Status)
	assert.Equal(t, playerID(g, 0), snap.WinnerID)
	assert.Equal(t, before+2, handSize(g, 1), "penalty draw lands before the game closes")
}

func TestUnoPenaltyWhenNotDeclared(t *testing.T) {
	g := newTestGame(t, models.ModeStandard, "alice", "bob")
	g.mu.Lock()
	g.UnoGrace = 50 * time.Millisecond
	g.mu.Unlock()
	cur := turnIndex(g)

	play := testCard(models.ColorRed, models.ValueFive)
	setHand(g, cur, play, testCard(models.ColorBlue, models.ValueOne))
	setTop(g, testCard(models.ColorRed, models.ValueNine))

	g.PlayCard(playerID(g, cur), play.ID, "", "")
	require.Equal(t, 1, handSize(g, cur))

	require.Eventually(t, func() bool {
		return handSize(g, cur) == 3
	}, 2*time.Second, 10*time.Millisecond, "grace expiry adds two penalty cards")
}

func TestSayUnoBeatsTheClock(t *testing.T) {
	g := newTestGame(t, models.ModeStandard, "alice", "bob")
	g.mu.Lock()
	g.UnoGrace = 80 * time.Millisecond
	g.mu.Unlock()
	cur := turnIndex(g)
	id := playerID(g, cur)

	play := testCard(models.ColorRed, models.ValueFive)
	setHand(g, cur, play, testCard(models.ColorBlue, models.ValueOne))
	setTop(g, testCard(models.ColorRed, models.ValueNine))

	g.PlayCard(id, play.ID, "", "")
	g.SayUno(id)

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, handSize(g, cur), "declared in time, no penalty")

	g.mu.Lock()
	saidUno := g.players[cur].HasSaidUno
	g.mu.Unlock()
	assert.True(t, saidUno)
}

func TestSayUnoBeforePenultimatePlay(t *testing.T) {
	g := newTestGame(t, models.ModeStandard, "alice", "bob")
	g.mu.Lock()
	g.UnoGrace = 50 * time.Millisecond
	g.mu.Unlock()
	cur := turnIndex(g)
	id := playerID(g, cur)

	play := testCard(models.ColorRed, models.ValueFive)
	setHand(g, cur, play, testCard(models.ColorBlue, models.ValueOne))
	setTop(g, testCard(models.ColorRed, models.ValueNine))

	// Declaring with two cards in hand sticks, so playing down to one
	// never opens a grace window.
	g.SayUno(id)
	g.mu.Lock()
	saidUno := g.players[cur].HasSaidUno
	g.mu.Unlock()
	require.True(t, saidUno)

	g.PlayCard(id, play.ID, "", "")

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, handSize(g, cur), "declared up front, no penalty")
}

func TestPlayableDrawRestartsTurnClock(t *testing.T) {
	g := newTestGame(t, models.ModeStandard, "alice", "bob")
	cur := turnIndex(g)

	setHand(g, cur, testCard(models.ColorBlue, models.ValueOne))
	setTop(g, testCard(models.ColorRed, models.ValueNine))
	g.mu.Lock()
	g.drawPile = append(g.drawPile, testCard(models.ColorRed, models.ValueFive))
	serialBefore := g.turnSerial
	g.mu.Unlock()

	g.DrawCard(playerID(g, cur))

	g.mu.Lock()
	defer g.mu.Unlock()
	assert.True(t, g.hasDrawn, "playable card keeps the turn open")
	assert.Equal(t, cur, g.turnIndex)
	assert.Greater(t, g.turnSerial, serialBefore, "clock re-armed for the decision")
}

func TestReplenishFromDiscard(t *testing.T) {
	g := newTestGame(t, models.ModeStandard, "alice", "bob")
	cur := turnIndex(g)

	g.mu.Lock()
	// Empty the draw pile into the discard pile, keeping its top.
	g.discardPile = append(g.discardPile, g.drawPile...)
	g.drawPile = nil
	top := g.discardPile[len(g.discardPile)-1]
	discardBefore := len(g.discardPile)
	g.mu.Unlock()

	g.DrawCard(playerID(g, cur))

	g.mu.Lock()
	defer g.mu.Unlock()
	assert.Len(t, g.discardPile, 1, "only the top survives the reshuffle")
	assert.Equal(t, top.ID, g.discardPile[0].ID)
	assert.Equal(t, discardBefore-2, len(g.drawPile), "rest reshuffled, one drawn")
}
