// internal/game/game.go
package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unoarena/server/internal/cache"
	"github.com/unoarena/server/internal/deck"
	"github.com/unoarena/server/internal/models"
)

// Gameplay constants. Timings are fields on Game so tests can shrink them.
const (
	MaxPlayers       = 4
	HandSize         = 7
	DefaultTurnTimer = 30 * time.Second

	unoGraceDefault     = 2 * time.Second
	botDelayBase        = 1500 * time.Millisecond
	botDelayJitter      = 1000 * time.Millisecond
	botFollowUpDelay    = 500 * time.Millisecond
	botUnoRecallChance  = 0.8
	unoPenaltyCardCount = 2
)

// Settlement deltas applied to persistent records at game end.
const (
	winnerMMRDelta   = 25
	winnerCoinReward = 50
	loserMMRDelta    = -10
	loserCoinReward  = 15
)

// UserStore is the persistence collaborator consulted at settlement.
// Implementations must be safe for concurrent use.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUserStats(ctx context.Context, id string, upd models.StatsUpdate) error
}

// Game is the authoritative state machine for a single match. All mutation
// funnels through the exported command methods, which serialize on mu; the
// delayed callbacks (bot move, turn timeout, UNO grace) re-validate state
// under the same lock before acting, because the world may have changed
// while they waited.
type Game struct {
	RoomID string
	Mode   models.GameMode
	Rules  models.GameRules

	// Timings, overridable before StartGame (tests shrink them).
	TurnDuration   time.Duration
	UnoGrace       time.Duration
	BotDelayBase   time.Duration
	BotDelayJitter time.Duration
	BotFollowUp    time.Duration

	mu sync.Mutex

	players     []*models.Player
	drawPile    []*models.Card
	discardPile []*models.Card
	turnIndex   int
	direction   int
	status      models.GameStatus
	winnerID    string
	activeColor models.Color
	message     string
	hasDrawn    bool
	turnStart   time.Time
	pendingDraw int

	// turnSerial increments every time the turn clock is re-armed; a fired
	// timer that captured a stale serial does nothing.
	turnSerial int
	turnTimer  *time.Timer
	botTimer   *time.Timer
	unoTimers  map[string]*time.Timer

	subscribers map[int]func(Snapshot)
	nextSubID   int

	rng         *rand.Rand
	users       UserStore
	actionIndex int
	endedAt     time.Time
	log         *logrus.Entry
}

// New creates a match in LOBBY state with the rule set for mode.
func New(roomID string, mode models.GameMode, users UserStore) *Game {
	return &Game{
		RoomID:         roomID,
		Mode:           mode,
		Rules:          models.RulesForMode(mode),
		TurnDuration:   DefaultTurnTimer,
		UnoGrace:       unoGraceDefault,
		BotDelayBase:   botDelayBase,
		BotDelayJitter: botDelayJitter,
		BotFollowUp:    botFollowUpDelay,
		direction:      1,
		status:         models.StatusLobby,
		activeColor:    models.ColorWild,
		message:        "Waiting for players...",
		turnStart:      time.Now(),
		unoTimers:      make(map[string]*time.Timer),
		subscribers:    make(map[int]func(Snapshot)),
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
		users:          users,
		log:            logrus.WithField("room", roomID),
	}
}

// AddPlayer appends a player in the lobby. Returns the new player, or nil
// when the room is full, the match already started, or the name is taken.
func (g *Game) AddPlayer(name string, isBot bool, externalID string, avatarID int) *models.Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.players) >= MaxPlayers || g.status != models.StatusLobby {
		return nil
	}
	for _, p := range g.players {
		if p.Name == name {
			return nil
		}
	}

	id := externalID
	if isBot {
		id = "bot_" + uuid.NewString()
	} else if id == "" {
		id = "guest_" + uuid.NewString()
	}
	if avatarID <= 0 {
		avatarID = 1
	}

	player := &models.Player{
		ID:       id,
		Name:     name,
		Hand:     []*models.Card{},
		IsBot:    isBot,
		AvatarID: avatarID,
	}
	g.players = append(g.players, player)
	g.logAction(player.ID, "player_join", map[string]any{"name": name, "isBot": isBot})
	g.broadcast()
	return player
}

// StartGame deals 7 cards to every seat, flips a non-wild starter, and
// enters PLAYING. No-op unless the room is a lobby with at least 2 players.
func (g *Game) StartGame() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != models.StatusLobby || len(g.players) < 2 {
		return
	}

	g.drawPile = deck.Generate(g.rng)
	for _, p := range g.players {
		p.Hand = g.drawPile[:HandSize:HandSize]
		g.drawPile = g.drawPile[HandSize:]
	}

	starter := g.popDraw()
	for starter.IsWild() {
		// A wild cannot open the game: bury it and re-shuffle.
		g.drawPile = append([]*models.Card{starter}, g.drawPile...)
		deck.Shuffle(g.rng, g.drawPile)
		starter = g.popDraw()
	}

	g.discardPile = []*models.Card{starter}
	g.activeColor = starter.Color
	g.status = models.StatusPlaying
	g.message = "Game Started!"
	g.turnStart = time.Now()
	g.log.WithField("players", len(g.players)).Info("game started")
	g.logAction("", "game_start", map[string]any{"starter": string(starter.Value)})

	g.startTurnTimer()
	g.broadcast()
	g.scheduleBotMove(false)
}

// Status returns the current lifecycle state.
func (g *Game) Status() models.GameStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Finished reports whether the match ended, and when.
func (g *Game) Finished() (bool, time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status == models.StatusGameOver, g.endedAt
}

// popDraw removes and returns the top draw-pile card. Caller must ensure
// the pile is non-empty.
func (g *Game) popDraw() *models.Card {
	card := g.drawPile[len(g.drawPile)-1]
	g.drawPile = g.drawPile[:len(g.drawPile)-1]
	return card
}

// drawInto moves up to n cards into the hand at playerIndex, replenishing
// the draw pile from the discard pile when it runs dry: the top discard is
// set aside, the rest reshuffled. When both piles are exhausted the draw
// stops short silently. Assumes lock held.
func (g *Game) drawInto(playerIndex, n int) {
	for i := 0; i < n; i++ {
		if len(g.drawPile) == 0 {
			if len(g.discardPile) <= 1 {
				break
			}
			top := g.discardPile[len(g.discardPile)-1]
			rest := g.discardPile[:len(g.discardPile)-1]
			g.discardPile = []*models.Card{top}
			deck.Shuffle(g.rng, rest)
			g.drawPile = rest
			g.log.WithField("reshuffled", len(rest)).Debug("replenished draw pile from discard")
		}
		g.players[playerIndex].Hand = append(g.players[playerIndex].Hand, g.popDraw())
	}
}

func (g *Game) playerIndexByID(playerID string) int {
	for i, p := range g.players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

func (g *Game) topDiscard() *models.Card {
	if len(g.discardPile) == 0 {
		return nil
	}
	return g.discardPile[len(g.discardPile)-1]
}

// nextIndex returns the seat `step` positions away in the current direction.
func (g *Game) nextIndex(step int) int {
	n := len(g.players)
	raw := (g.turnIndex + step*g.direction) % n
	return (raw + n) % n
}

// logAction pushes an action record onto the Redis history queue,
// asynchronously and best-effort. Assumes lock held.
func (g *Game) logAction(actorID, actionType string, payload map[string]any) {
	g.actionIndex++
	if cache.Rdb == nil {
		return
	}
	rec := cache.GameActionRecord{
		RoomID:        g.RoomID,
		ActionIndex:   g.actionIndex,
		ActorID:       actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			logrus.WithError(err).WithField("room", rec.RoomID).
				Warnf("failed publishing action %d (%s)", rec.ActionIndex, rec.ActionType)
		}
	}()
}
